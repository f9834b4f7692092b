package server

import (
	"sync/atomic"
)

// EngineMetrics 记录引擎运行期的关键指标（用于监控与调试）
type EngineMetrics struct {
	TickCount      int64 // 统计的房间 Tick 次数
	ZombiesSpawned int64 // 成功刷出的僵尸数
	SpawnsDropped  int64 // 因同屏上限被丢弃的刷怪数
	Hits           int64 // 命中次数
	Kills          int64 // 击杀次数
	Breaches       int64 // 破线导致的游戏结束次数
	RoomsCreated   int64 // 累计建房数
	RoomsDestroyed int64 // 累计销毁房间数
	TotalTickNs    int64 // Tick 累计耗时（纳秒）
}

func (m *EngineMetrics) IncSpawned()       { atomic.AddInt64(&m.ZombiesSpawned, 1) }
func (m *EngineMetrics) IncSpawnDropped()  { atomic.AddInt64(&m.SpawnsDropped, 1) }
func (m *EngineMetrics) IncHit()           { atomic.AddInt64(&m.Hits, 1) }
func (m *EngineMetrics) IncKill()          { atomic.AddInt64(&m.Kills, 1) }
func (m *EngineMetrics) IncBreach()        { atomic.AddInt64(&m.Breaches, 1) }
func (m *EngineMetrics) IncRoomCreated()   { atomic.AddInt64(&m.RoomsCreated, 1) }
func (m *EngineMetrics) IncRoomDestroyed() { atomic.AddInt64(&m.RoomsDestroyed, 1) }
func (m *EngineMetrics) AddTick(ns int64) {
	atomic.AddInt64(&m.TickCount, 1)
	atomic.AddInt64(&m.TotalTickNs, ns)
}

// Snapshot 返回只读副本，便于 HTTP 输出
func (m *EngineMetrics) Snapshot() map[string]any {
	tick := atomic.LoadInt64(&m.TickCount)
	total := atomic.LoadInt64(&m.TotalTickNs)
	var avgMs float64
	if tick > 0 {
		avgMs = float64(total) / float64(tick) / 1e6
	}
	return map[string]any{
		"tick_count":      tick,
		"zombies_spawned": atomic.LoadInt64(&m.ZombiesSpawned),
		"spawns_dropped":  atomic.LoadInt64(&m.SpawnsDropped),
		"hits":            atomic.LoadInt64(&m.Hits),
		"kills":           atomic.LoadInt64(&m.Kills),
		"breaches":        atomic.LoadInt64(&m.Breaches),
		"rooms_created":   atomic.LoadInt64(&m.RoomsCreated),
		"rooms_destroyed": atomic.LoadInt64(&m.RoomsDestroyed),
		"avg_tick_ms":     avgMs,
	}
}
