package server

import "time"

// Tuning 模拟参数：集中声明便于测试替换与 /admin/config 热更新
type Tuning struct {
	TickInterval time.Duration // 世界推进周期
	GracePeriod  time.Duration // 空房重连宽限期

	LaneWidth  int // 横向格子数，僵尸从右缘进场
	LaneHeight int // 纵向格子数（赛道高度）

	BaseSpawnRate      float64 // 新房的每 Tick 期望刷怪数
	SpawnRateIncrement float64 // 每 Tick 的难度爬升量
	WaveTickLength     int     // 正弦波次的周期（Tick 数）
	MaxZombiesPerRoom  int     // 同屏僵尸硬上限，超出静默丢弃

	ZombieHealth int // 初始血量
	ShotDamage   int // 单发固定伤害
	ZombieStep   int // 每 Tick 横向推进格数
}

// DefaultTuning 默认参数
func DefaultTuning() Tuning {
	return Tuning{
		TickInterval:       2 * time.Second,
		GracePeriod:        30 * time.Second,
		LaneWidth:          32,
		LaneHeight:         10,
		BaseSpawnRate:      0.5,
		SpawnRateIncrement: 0.1,
		WaveTickLength:     10,
		MaxZombiesPerRoom:  100,
		ZombieHealth:       100,
		ShotDamage:         50,
		ZombieStep:         1,
	}
}
