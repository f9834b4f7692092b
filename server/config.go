package server

import (
	"os"

	"github.com/joho/godotenv"
)

// Settings 进程级配置：监听地址、日志文件与大厅展示信息
type Settings struct {
	Addr         string
	LogFile      string
	ServerID     string
	HostUsername string
}

// LoadSettings 读取 .env 与环境变量，缺省回退默认值
// .env 不存在时静默忽略（容器部署直接注入环境变量）
func LoadSettings() Settings {
	_ = godotenv.Load()
	return Settings{
		Addr:         getenv("ADDR", ":8080"),
		LogFile:      getenv("LOG_FILE", "zombielane.log"),
		ServerID:     getenv("SERVER_ID", "server-1"),
		HostUsername: getenv("HOST_USERNAME", "host"),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
