package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	httpx "github.com/Dev-Yatrik-Patel/Task-Management-System-MicroServices/gateway/internal/http"
	"github.com/Dev-Yatrik-Patel/Task-Management-System-MicroServices/gateway/internal/proxy"
	"github.com/Dev-Yatrik-Patel/Task-Management-System-MicroServices/pkg/config"
	"github.com/Dev-Yatrik-Patel/Task-Management-System-MicroServices/pkg/logger"
	"github.com/Dev-Yatrik-Patel/Task-Management-System-MicroServices/pkg/server"
)

func main() {
	cfg := config.LoadGatewayConfig()
	log := logger.New("gateway", logger.ParseLevel(cfg.LogLevel))

	authUp, err := proxy.New("auth", cfg.AuthServiceURL, cfg.UpstreamTimeout, log)
	if err != nil {
		log.Error("invalid auth upstream", "error", err)
		os.Exit(1)
	}
	taskUp, err := proxy.New("task", cfg.TaskServiceURL, cfg.UpstreamTimeout, log)
	if err != nil {
		log.Error("invalid task upstream", "error", err)
		os.Exit(1)
	}
	userUp, err := proxy.New("user", cfg.UserServiceURL, cfg.UpstreamTimeout, log)
	if err != nil {
		log.Error("invalid user upstream", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	router := httpx.NewRouter(log, cfg.AppName, httpx.Upstreams{Auth: authUp, Task: taskUp, User: userUp})
	if err := server.Run(ctx, cfg.Addr, router, log); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
