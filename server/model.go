package server

import "time"

// ClientID 客户端唯一标识（全局唯一，由接入层分配）
type ClientID string

// RoomID 房间唯一标识（由客户端选择，外部分配）
type RoomID string

// Client 房间内的玩家（仅标识与显示名，连接由接入层持有）
type Client struct {
	ClientID ClientID
	Username string
}

// Zombie 单个僵尸实体（服务端权威状态）
// ID 进程内严格递增，永不复用；坐标为整数格子坐标
type Zombie struct {
	ID     int64
	X, Y   int
	VX, VY int // 每 Tick 位移：VX 恒为负（朝防线推进），VY ∈ {-1,0,1} 每 Tick 重掷
	Health int
}

// Room 房间世界：权威状态维护在内存，由 Engine 单写者推进
type Room struct {
	RoomID RoomID

	IsStarted bool // 首个 start 事件置位，之后不再回退
	IsFrozen  bool // 无人房间在宽限期内的冻结标记

	StartedAt  time.Time
	LastTickAt time.Time // 上一次 Tick 的时间戳（仅用于观测间隔）

	Zombies    []*Zombie // 插入序 = 出生序
	SpawnRate  float64   // 当前每 Tick 期望刷怪数，随难度单调递增
	TotalTicks int       // 自建房以来处理过的 Tick 数，作为波次相位输入

	Clients map[ClientID]*Client
}

// ZombieState 广播用的僵尸只读快照
type ZombieState struct {
	ID     int64 `json:"id"`
	X      int   `json:"x"`
	Y      int   `json:"y"`
	Health int   `json:"health"`
}

// ClientState 广播用的玩家只读快照
type ClientState struct {
	ClientID ClientID `json:"clientId"`
	Username string   `json:"username"`
}

// RoomSnapshot 整房间只读快照：对外只暴露值拷贝，
// 任何外部组件都不能跨 Tick 持有僵尸的可变引用
type RoomSnapshot struct {
	RoomID    RoomID        `json:"roomId"`
	IsStarted bool          `json:"isStarted"`
	Tick      int           `json:"tick"`
	Zombies   []ZombieState `json:"zombies"`
	Clients   []ClientState `json:"clients"`
}

// snapshot 构造当前房间的值拷贝，调用方须持有 Engine 锁
func (r *Room) snapshot() RoomSnapshot {
	snap := RoomSnapshot{
		RoomID:    r.RoomID,
		IsStarted: r.IsStarted,
		Tick:      r.TotalTicks,
		Zombies:   make([]ZombieState, 0, len(r.Zombies)),
		Clients:   make([]ClientState, 0, len(r.Clients)),
	}
	for _, z := range r.Zombies {
		snap.Zombies = append(snap.Zombies, ZombieState{ID: z.ID, X: z.X, Y: z.Y, Health: z.Health})
	}
	for _, c := range r.Clients {
		snap.Clients = append(snap.Clients, ClientState{ClientID: c.ClientID, Username: c.Username})
	}
	return snap
}

// Rand 引擎使用的随机源；*rand.Rand 天然满足该接口，
// 测试可注入脚本化实现以复现确定性场景
type Rand interface {
	Intn(n int) int
	Float64() float64
}
