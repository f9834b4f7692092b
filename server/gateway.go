package server

// 入站玩家动作事件：由接入层（WebSocket 主机服务）产出，
// 经 Gateway 同步映射到引擎操作。事件本身不携带任何游戏逻辑。

// UserJoined 玩家进房
type UserJoined struct {
	ClientID ClientID
	Username string
	RoomID   RoomID
}

// UserLeft 玩家离开（断线或主动退出）
type UserLeft struct {
	ClientID ClientID
}

// UserStartedGame 玩家按下开局
type UserStartedGame struct {
	ClientID ClientID
}

// UserShot 玩家朝格子坐标开枪
type UserShot struct {
	ClientID ClientID
	X, Y     int
}

// Host 出站报告的收端（接入层实现）：
// 地图快照点对点、命中回执点对点、游戏结束逐客户端通知
type Host interface {
	ReportMap(snap RoomSnapshot, clientID ClientID)
	ReportZombieHit(clientID ClientID, zombieID int64, killed bool)
	ReportGameOver(clientID ClientID)
}

// Gateway 事件网关：入站事件到引擎操作的纯映射层，
// 同一房间的事件按到达顺序同步派发（引擎内部再统一串行化）
type Gateway struct {
	engine *Engine
}

func NewGateway(engine *Engine) *Gateway {
	return &Gateway{engine: engine}
}

// Dispatch 同步派发一条入站事件；未知事件类型丢弃并告警
func (g *Gateway) Dispatch(ev any) {
	switch c := ev.(type) {
	case UserJoined:
		g.engine.HandleJoin(c.ClientID, c.Username, c.RoomID)
	case UserLeft:
		g.engine.HandleLeave(c.ClientID)
	case UserStartedGame:
		g.engine.HandleStartGame(c.ClientID)
	case UserShot:
		g.engine.HandleShot(c.ClientID, c.X, c.Y)
	default:
		Log.Warnf("gateway: dropping unknown event type %T", ev)
	}
}
