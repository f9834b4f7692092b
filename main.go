package main

import (
	"flag"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"zombielane/server"
)

// ZombieLane 入口：组装引擎、事件网关与 WebSocket 主机服务，
// 启动 HTTP + WebSocket 服务与周期 Tick
func main() {
	settings := server.LoadSettings()

	var addr string
	flag.StringVar(&addr, "addr", settings.Addr, "server listen address, e.g. :8080")
	flag.Parse()

	// 使用第三方 zap 日志库写入日志文件（带滚动）
	if err := server.InitLogger(settings.LogFile); err != nil {
		panic(err)
	}
	defer server.SyncLogger()

	host := server.NewWsHost()
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	engine := server.NewEngine(server.DefaultTuning(), host, rng)
	gateway := server.NewGateway(engine)
	lobby := server.NewLobby(settings.ServerID, settings.HostUsername)

	// 房间聚合状态：先更新大厅缓存，再推给全部在线连接
	engine.OnRoomsChanged(func(rooms []server.RoomSummary) {
		lobby.Update(rooms)
		host.BroadcastRooms(lobby.Summary())
	})
	engine.Start()
	defer engine.Stop()

	r := mux.NewRouter()
	r.HandleFunc("/ws", host.HandleWS(gateway))
	r.HandleFunc("/rooms", lobby.HandleRooms).Methods(http.MethodGet)
	// 管理与监控接口
	r.HandleFunc("/admin/config", server.HandleAdminConfig(engine))
	r.HandleFunc("/metrics", server.HandleMetrics(engine)).Methods(http.MethodGet)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	// 前后端分离：将 / 映射到 web 目录的静态资源
	r.PathPrefix("/").Handler(http.FileServer(http.Dir("web")))

	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		server.Log.Infof("ZombieLane listening on %s; open http://localhost%v/", addr, addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			server.Log.Fatalf("listen: %v", err)
		}
	}()

	// 优雅退出（Ctrl+C）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	server.Log.Info("Shutting down...")
}
