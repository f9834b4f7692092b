package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// ClientConn 负责发送（写）数据到客户端的轻量包装
// send 的关闭与入队同锁互斥：断连与广播并发时入队只会静默落空
type ClientConn struct {
	ws     *websocket.Conn
	mu     sync.Mutex
	send   chan []byte
	closed bool
}

func NewClientConn(ws *websocket.Conn) *ClientConn {
	return &ClientConn{
		ws:   ws,
		send: make(chan []byte, 64),
	}
}

// Enqueue 将要发送的消息压入队列（非阻塞，满则丢弃；已关闭则落空）
func (c *ClientConn) Enqueue(b []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- b:
	default:
		// 为了实时性，丢弃旧消息（防止阻塞 Tick）
	}
}

// Close 关闭发送队列以结束写协程；幂等。
// 底层 WS 连接由读/写泵各自的 defer 收尾，这里不直接触碰
func (c *ClientConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// writePump 独立协程，负责从 send 队列写出到 WS
func (c *ClientConn) writePump() {
	defer c.ws.Close()
	for msg := range c.send {
		c.ws.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

// 客户端上行帧
// 示例：{"type":"start"}、{"type":"shoot","x":3,"y":4}
type clientMessage struct {
	Type string `json:"type"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
}

// WsHost WebSocket 主机服务：实现 Host 出站边界，
// 维护 clientId 到连接的映射，并把上行帧翻译成网关事件
type WsHost struct {
	mu    sync.RWMutex
	conns map[ClientID]*ClientConn
}

func NewWsHost() *WsHost {
	return &WsHost{conns: make(map[ClientID]*ClientConn)}
}

// ReportMap 地图快照点对点下发
func (h *WsHost) ReportMap(snap RoomSnapshot, clientID ClientID) {
	payload := struct {
		Type string       `json:"type"`
		Room RoomSnapshot `json:"room"`
	}{Type: "map", Room: snap}
	h.sendTo(clientID, payload)
}

// ReportZombieHit 命中回执点对点下发（仅射手收到）
func (h *WsHost) ReportZombieHit(clientID ClientID, zombieID int64, killed bool) {
	payload := struct {
		Type     string `json:"type"`
		ZombieID int64  `json:"zombieId"`
		Killed   bool   `json:"killed"`
	}{Type: "hit", ZombieID: zombieID, Killed: killed}
	h.sendTo(clientID, payload)
}

// ReportGameOver 破线后逐客户端通知
func (h *WsHost) ReportGameOver(clientID ClientID) {
	payload := struct {
		Type string `json:"type"`
	}{Type: "gameover"}
	h.sendTo(clientID, payload)
}

// BroadcastRooms 把大厅聚合状态推给全部在线连接（大厅观察者）
func (h *WsHost) BroadcastRooms(summary ServerSummary) {
	payload := struct {
		Type   string        `json:"type"`
		Server ServerSummary `json:"server"`
	}{Type: "rooms", Server: summary}
	b, err := json.Marshal(payload)
	if err != nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.conns {
		c.Enqueue(b)
	}
}

func (h *WsHost) sendTo(clientID ClientID, payload any) {
	b, err := json.Marshal(payload)
	if err != nil {
		return
	}
	h.mu.RLock()
	c, ok := h.conns[clientID]
	h.mu.RUnlock()
	if ok {
		c.Enqueue(b)
	}
}

func (h *WsHost) register(clientID ClientID, c *ClientConn) {
	h.mu.Lock()
	h.conns[clientID] = c
	h.mu.Unlock()
}

func (h *WsHost) drop(clientID ClientID) {
	h.mu.Lock()
	c, ok := h.conns[clientID]
	delete(h.conns, clientID)
	h.mu.Unlock()
	if ok {
		c.Close()
	}
}

// readPump 读取客户端上行帧，翻译成网关事件
func (h *WsHost) readPump(c *ClientConn, gw *Gateway, clientID ClientID) {
	defer c.ws.Close()
	// 读泵退出即视为离线：房间端走冻结/宽限期流程
	defer func() {
		h.drop(clientID)
		gw.Dispatch(UserLeft{ClientID: clientID})
	}()
	c.ws.SetReadLimit(1 << 20) // 1MB
	c.ws.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.ws.SetPongHandler(func(string) error { c.ws.SetReadDeadline(time.Now().Add(60 * time.Second)); return nil })

	for {
		_, payload, err := c.ws.ReadMessage()
		if err != nil {
			return
		}
		var cm clientMessage
		if err := json.Unmarshal(payload, &cm); err != nil {
			continue
		}
		switch strings.ToLower(cm.Type) {
		case "start":
			gw.Dispatch(UserStartedGame{ClientID: clientID})
		case "shoot":
			gw.Dispatch(UserShot{ClientID: clientID, X: cm.X, Y: cm.Y})
		default:
			// 未知帧忽略
		}
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// 演示环境：允许所有来源（生产环境需严格限制）
		return true
	},
}

// HandleWS WebSocket 接入：?room=room-1&username=alice
// clientId 由服务端分配，进房事件在连接建立后立即派发
func (h *WsHost) HandleWS(gw *Gateway) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomID := r.URL.Query().Get("room")
		if roomID == "" {
			roomID = "room-1"
		}
		username := r.URL.Query().Get("username")
		if username == "" {
			http.Error(w, "missing username query", http.StatusBadRequest)
			return
		}

		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			Log.Warnf("upgrade error: %v", err)
			return
		}

		clientID := ClientID(uuid.NewString())
		client := NewClientConn(ws)
		h.register(clientID, client)

		go client.writePump()
		gw.Dispatch(UserJoined{ClientID: clientID, Username: username, RoomID: RoomID(roomID)})
		go h.readPump(client, gw, clientID)
	}
}
