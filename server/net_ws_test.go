package server

import (
	"sync"
	"testing"
)

// 断连与下发并发：连接指针在锁外被持有期间被 drop，
// 之后的入队必须静默落空，不得 panic（否则会连带杀掉派发协程）
func TestEnqueueAfterConcurrentDropIsNoop(t *testing.T) {
	h := NewWsHost()
	c := NewClientConn(nil)
	h.register("victim", c)

	// 模拟 sendTo 的窗口：RLock 捕获连接、释放锁，然后对端断连
	h.mu.RLock()
	captured := h.conns["victim"]
	h.mu.RUnlock()

	h.drop("victim")

	captured.Enqueue([]byte(`{"type":"gameover"}`))

	// 断连后的点对点与广播路径同样必须安全
	h.ReportGameOver("victim")
	h.BroadcastRooms(ServerSummary{ServerID: "server-1"})
}

func TestCloseIsIdempotent(t *testing.T) {
	c := NewClientConn(nil)
	c.Close()
	c.Close()
	c.Enqueue([]byte("x"))
}

func TestEnqueueRacesClose(t *testing.T) {
	c := NewClientConn(nil)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			c.Enqueue([]byte("x"))
		}
	}()
	go func() {
		defer wg.Done()
		c.Close()
	}()
	wg.Wait()
}
