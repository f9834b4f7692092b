package server

import (
	"encoding/json"
	"net/http"
	"sync"
)

// RoomSummary 大厅视图的单房间摘要
type RoomSummary struct {
	RoomID     RoomID `json:"roomId"`
	NumPlayers int    `json:"numPlayers"`
	IsStarted  bool   `json:"isStarted"`
}

// ServerSummary 大厅视图的服务器条目（只读展示结构）
type ServerSummary struct {
	ServerID     string        `json:"serverId"`
	HostUsername string        `json:"hostUsername"`
	Rooms        []RoomSummary `json:"rooms"`
}

// Lobby 缓存引擎最近一次广播的房间摘要，供 HTTP 列表接口读取。
// 写入来自引擎锁内的同步回调，读取来自 HTTP 协程，需自带锁。
type Lobby struct {
	mu           sync.RWMutex
	serverID     string
	hostUsername string
	rooms        []RoomSummary
}

func NewLobby(serverID, hostUsername string) *Lobby {
	return &Lobby{serverID: serverID, hostUsername: hostUsername}
}

// Update 作为 RoomsListener 挂到引擎上
func (l *Lobby) Update(rooms []RoomSummary) {
	l.mu.Lock()
	l.rooms = rooms
	l.mu.Unlock()
}

// Summary 当前服务器条目的值拷贝
func (l *Lobby) Summary() ServerSummary {
	l.mu.RLock()
	defer l.mu.RUnlock()
	rooms := make([]RoomSummary, len(l.rooms))
	copy(rooms, l.rooms)
	return ServerSummary{ServerID: l.serverID, HostUsername: l.hostUsername, Rooms: rooms}
}

// HandleRooms 大厅列表接口
// GET /rooms 返回 {serverId, hostUsername, rooms:[{roomId, numPlayers, isStarted}]}
func (l *Lobby) HandleRooms(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(l.Summary())
}
