package server

import (
	"math"
	"sort"
	"sync"
	"time"
)

// RoomsListener 房间聚合状态变化的观察者（大厅视图等）
type RoomsListener func([]RoomSummary)

// Engine 房间注册表 + 僵尸模拟器：持有全部房间状态，
// 周期 Tick 推进世界，并决定房间生命周期。
// 事件处理、Tick、宽限期定时器都会改写共享状态，统一走 mu 串行化（单写者）。
type Engine struct {
	mu           sync.Mutex
	rooms        map[RoomID]*Room
	lastZombieID int64 // 进程级严格递增，与房间状态同锁保护

	tuning    Tuning
	host      Host
	rng       Rand
	metrics   *EngineMetrics
	listeners []RoomsListener

	tickerStarted bool
	quit          chan struct{}
	stopOnce      sync.Once
}

// NewEngine 构造引擎实例；host 为出站报告的收端，rng 可注入以复现测试场景
func NewEngine(tuning Tuning, host Host, rng Rand) *Engine {
	return &Engine{
		rooms:   make(map[RoomID]*Room),
		tuning:  tuning,
		host:    host,
		rng:     rng,
		metrics: &EngineMetrics{},
		quit:    make(chan struct{}),
	}
}

// Metrics 返回运行指标收集器
func (e *Engine) Metrics() *EngineMetrics { return e.metrics }

// OnRoomsChanged 注册大厅观察者；须在 Start 之前完成注册
func (e *Engine) OnRoomsChanged(l RoomsListener) {
	e.listeners = append(e.listeners, l)
}

// Start 启动周期 Tick 循环（进程生命周期内只启动一次）
func (e *Engine) Start() {
	e.mu.Lock()
	if e.tickerStarted {
		e.mu.Unlock()
		return
	}
	e.tickerStarted = true
	interval := e.tuning.TickInterval
	e.mu.Unlock()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-e.quit:
				return
			case <-ticker.C:
				e.advance()
			}
		}
	}()
}

// Stop 停止 Tick 循环（测试与优雅退出用）
func (e *Engine) Stop() {
	e.stopOnce.Do(func() { close(e.quit) })
}

// HandleJoin 进房：未知房间即建房；已冻结房间解冻（取消中的销毁由
// 宽限期回调自行复查，无需显式取消定时器）。入房方立即收到当前地图快照。
func (e *Engine) HandleJoin(clientID ClientID, username string, roomID RoomID) {
	e.mu.Lock()
	defer e.mu.Unlock()

	client := &Client{ClientID: clientID, Username: username}
	room, ok := e.rooms[roomID]
	if !ok {
		room = &Room{
			RoomID:    roomID,
			Zombies:   make([]*Zombie, 0),
			SpawnRate: e.tuning.BaseSpawnRate,
			Clients:   map[ClientID]*Client{clientID: client},
		}
		e.rooms[roomID] = room
		e.metrics.IncRoomCreated()
		Log.Infof("room created: room=%s client=%s user=%s", roomID, clientID, username)
	} else {
		room.Clients[clientID] = client
		if room.IsFrozen {
			room.IsFrozen = false
			Log.Infof("unfreezing room: room=%s client=%s", roomID, clientID)
		}
	}
	e.host.ReportMap(room.snapshot(), clientID)
	e.notifyRoomsChangedLocked()
}

// HandleLeave 离房：房间空了先冻结，给断线玩家留宽限期；
// 未知 clientID 视为已离开，静默忽略
func (e *Engine) HandleLeave(clientID ClientID) {
	e.mu.Lock()
	defer e.mu.Unlock()

	room := e.clientRoomLocked(clientID)
	if room == nil {
		Log.Debugf("leave for unknown client: client=%s", clientID)
		return
	}
	delete(room.Clients, clientID)
	if len(room.Clients) == 0 {
		room.IsFrozen = true
		roomID := room.RoomID
		Log.Infof("freezing room: room=%s grace=%s", roomID, e.tuning.GracePeriod)
		// 到期回调重新检查当前人数，重连解冻无需取消定时器
		time.AfterFunc(e.tuning.GracePeriod, func() { e.reapRoom(roomID) })
	}
	e.notifyRoomsChangedLocked()
}

// HandleStartGame 开局：幂等，已开局的房间直接忽略
func (e *Engine) HandleStartGame(clientID ClientID) {
	e.mu.Lock()
	defer e.mu.Unlock()

	room := e.clientRoomLocked(clientID)
	if room == nil || room.IsStarted {
		return
	}
	room.IsStarted = true
	room.StartedAt = time.Now()
	Log.Infof("game started: room=%s by=%s", room.RoomID, clientID)
	e.notifyRoomsChangedLocked()
}

// HandleShot 射击：按出生序找第一个坐标完全相同的僵尸结算固定伤害，
// 打死即移除；命中与否仅点对点回执射手，未命中不回执
func (e *Engine) HandleShot(clientID ClientID, x, y int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	room := e.clientRoomLocked(clientID)
	if room == nil {
		return
	}
	for i, z := range room.Zombies {
		if z.X != x || z.Y != y {
			continue
		}
		z.Health -= e.tuning.ShotDamage
		killed := z.Health <= 0
		if killed {
			room.Zombies = append(room.Zombies[:i], room.Zombies[i+1:]...)
			e.metrics.IncKill()
		}
		e.metrics.IncHit()
		e.host.ReportZombieHit(clientID, z.ID, killed)
		return
	}
}

// advance 周期 Tick：扫描全部进行中的房间并推进一步
func (e *Engine) advance() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, room := range e.rooms {
		if !room.IsStarted || room.IsFrozen {
			continue
		}
		e.advanceRoomLocked(room)
	}
}

// advanceRoomLocked 推进单个房间；异常只隔离在本房间，不影响同批其他房间
func (e *Engine) advanceRoomLocked(room *Room) {
	defer func() {
		if r := recover(); r != nil {
			Log.Errorf("tick panic isolated: room=%s err=%v", room.RoomID, r)
		}
	}()
	start := time.Now()
	if breached := e.tickRoomLocked(room); breached {
		Log.Infof("defense line breached, game over: room=%s tick=%d", room.RoomID, room.TotalTicks)
		e.metrics.IncBreach()
		for clientID := range room.Clients {
			e.host.ReportGameOver(clientID)
		}
		e.destroyRoomLocked(room.RoomID)
		return
	}
	snap := room.snapshot()
	for clientID := range room.Clients {
		e.host.ReportMap(snap, clientID)
	}
	e.metrics.AddTick(time.Since(start).Nanoseconds())
}

// tickRoomLocked 单房间模拟步：移动 → 刷怪 → 难度爬升 → 破线判定
func (e *Engine) tickRoomLocked(room *Room) (breached bool) {
	now := time.Now()
	if !room.LastTickAt.IsZero() {
		Log.Debugf("tick: room=%s interval=%.2fs zombies=%d", room.RoomID, now.Sub(room.LastTickAt).Seconds(), len(room.Zombies))
	}
	room.LastTickAt = now

	for _, z := range room.Zombies {
		e.moveZombieLocked(z)
	}

	want := e.spawnCountLocked(room)
	for i := 0; i < want; i++ {
		if len(room.Zombies) >= e.tuning.MaxZombiesPerRoom {
			e.metrics.IncSpawnDropped()
			continue
		}
		room.Zombies = append(room.Zombies, e.newZombieLocked())
		e.metrics.IncSpawned()
	}

	room.SpawnRate += e.tuning.SpawnRateIncrement
	room.TotalTicks++

	// 移动把 x 裁剪到最小 -1，停在左缘外一格即视为破线
	for _, z := range room.Zombies {
		if z.X < 0 {
			return true
		}
	}
	return false
}

// moveZombieLocked 先按速度位移并裁剪，再重掷纵向速度：
// 五分之一概率上移、五分之一概率下移（贴边时不出界），其余保持水平
func (e *Engine) moveZombieLocked(z *Zombie) {
	z.X = z.X + z.VX
	if z.X < -1 {
		z.X = -1
	}
	z.Y = z.Y + z.VY
	if z.Y < 0 {
		z.Y = 0
	}
	if z.Y > e.tuning.LaneHeight-1 {
		z.Y = e.tuning.LaneHeight - 1
	}

	switch r := e.rng.Intn(5) - 2; {
	case r == 2 && z.Y < e.tuning.LaneHeight-1:
		z.VY = e.tuning.ZombieStep
	case r == -2 && z.Y > 0:
		z.VY = -e.tuning.ZombieStep
	default:
		z.VY = 0
	}
}

// spawnCountLocked 本 Tick 刷怪数：整流正弦波包络调制基础速率，
// 整数部分向下取整，小数部分作为伯努利概率补足长期期望
func (e *Engine) spawnCountLocked(room *Room) int {
	rate := room.SpawnRate * (math.Sin(float64(room.TotalTicks)*math.Pi/float64(e.tuning.WaveTickLength)) + 1) / 2
	count := int(math.Floor(rate))
	if e.rng.Float64() < rate-math.Floor(rate) {
		count++
	}
	return count
}

// newZombieLocked 新僵尸从右缘随机行进场，恒定向左推进
func (e *Engine) newZombieLocked() *Zombie {
	e.lastZombieID++
	return &Zombie{
		ID:     e.lastZombieID,
		X:      e.tuning.LaneWidth - 1,
		Y:      e.rng.Intn(e.tuning.LaneHeight),
		VX:     -e.tuning.ZombieStep,
		VY:     0,
		Health: e.tuning.ZombieHealth,
	}
}

// reapRoom 宽限期到期回调：人数复查后才销毁，期间重连过的房间保持原状
func (e *Engine) reapRoom(roomID RoomID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	room, ok := e.rooms[roomID]
	if !ok || len(room.Clients) > 0 {
		return
	}
	Log.Infof("grace period expired, deleting room: room=%s", roomID)
	e.destroyRoomLocked(roomID)
}

// destroyRoomLocked 从注册表移除房间并广播聚合状态
func (e *Engine) destroyRoomLocked(roomID RoomID) {
	if _, ok := e.rooms[roomID]; !ok {
		return
	}
	delete(e.rooms, roomID)
	e.metrics.IncRoomDestroyed()
	e.notifyRoomsChangedLocked()
}

// clientRoomLocked 定位客户端当前所在房间；一个 clientID 至多出现在一个房间
func (e *Engine) clientRoomLocked(clientID ClientID) *Room {
	for _, room := range e.rooms {
		if _, ok := room.Clients[clientID]; ok {
			return room
		}
	}
	return nil
}

// notifyRoomsChangedLocked 构建房间聚合摘要并同步推给全部观察者
func (e *Engine) notifyRoomsChangedLocked() {
	summaries := make([]RoomSummary, 0, len(e.rooms))
	for _, room := range e.rooms {
		summaries = append(summaries, RoomSummary{
			RoomID:     room.RoomID,
			NumPlayers: len(room.Clients),
			IsStarted:  room.IsStarted,
		})
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].RoomID < summaries[j].RoomID })
	for _, l := range e.listeners {
		l(summaries)
	}
}

// RoomCount 当前注册表中的房间数（监控用）
func (e *Engine) RoomCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.rooms)
}

// TuningSnapshot 返回当前参数副本（/admin/config GET）
func (e *Engine) TuningSnapshot() Tuning {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tuning
}

// ApplyTuning 热更新参数（/admin/config POST），与模拟同锁串行
func (e *Engine) ApplyTuning(mutate func(*Tuning)) Tuning {
	e.mu.Lock()
	defer e.mu.Unlock()
	mutate(&e.tuning)
	return e.tuning
}
