package server

import (
	"encoding/json"
	"net/http"
	"time"
)

// HandleAdminConfig 提供模拟参数的读取与更新（热更新基本规则）
// GET /admin/config  返回当前参数
// POST /admin/config 以 JSON 载荷更新部分字段
func HandleAdminConfig(engine *Engine) http.HandlerFunc {
	type cfg struct {
		BaseSpawnRate      *float64 `json:"baseSpawnRate,omitempty"`
		SpawnRateIncrement *float64 `json:"spawnRateIncrement,omitempty"`
		MaxZombiesPerRoom  *int     `json:"maxZombiesPerRoom,omitempty"`
		ZombieHealth       *int     `json:"zombieHealth,omitempty"`
		ShotDamage         *int     `json:"shotDamage,omitempty"`
		GracePeriodMs      *int     `json:"gracePeriodMs,omitempty"`
	}
	fromTuning := func(t Tuning) cfg {
		graceMs := int(t.GracePeriod / time.Millisecond)
		return cfg{
			BaseSpawnRate:      &t.BaseSpawnRate,
			SpawnRateIncrement: &t.SpawnRateIncrement,
			MaxZombiesPerRoom:  &t.MaxZombiesPerRoom,
			ZombieHealth:       &t.ZombieHealth,
			ShotDamage:         &t.ShotDamage,
			GracePeriodMs:      &graceMs,
		}
	}

	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			cur := fromTuning(engine.TuningSnapshot())
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(cur)
			return
		case http.MethodPost:
			var body cfg
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				http.Error(w, "invalid json", http.StatusBadRequest)
				return
			}
			updated := engine.ApplyTuning(func(t *Tuning) {
				if body.BaseSpawnRate != nil {
					t.BaseSpawnRate = *body.BaseSpawnRate
				}
				if body.SpawnRateIncrement != nil {
					t.SpawnRateIncrement = *body.SpawnRateIncrement
				}
				if body.MaxZombiesPerRoom != nil {
					t.MaxZombiesPerRoom = *body.MaxZombiesPerRoom
				}
				if body.ZombieHealth != nil {
					t.ZombieHealth = *body.ZombieHealth
				}
				if body.ShotDamage != nil {
					t.ShotDamage = *body.ShotDamage
				}
				if body.GracePeriodMs != nil {
					t.GracePeriod = time.Duration(*body.GracePeriodMs) * time.Millisecond
				}
			})
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
			Log.Infof("config updated: spawnRate=%.2f increment=%.2f cap=%d health=%d damage=%d grace=%s",
				updated.BaseSpawnRate, updated.SpawnRateIncrement, updated.MaxZombiesPerRoom,
				updated.ZombieHealth, updated.ShotDamage, updated.GracePeriod)
			return
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
	}
}

// HandleMetrics 输出引擎运行指标
// GET /metrics
func HandleMetrics(engine *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := map[string]any{
			"rooms":   engine.RoomCount(),
			"metrics": engine.Metrics().Snapshot(),
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(payload)
	}
}
