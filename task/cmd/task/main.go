package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Dev-Yatrik-Patel/Task-Management-System-MicroServices/pkg/config"
	"github.com/Dev-Yatrik-Patel/Task-Management-System-MicroServices/pkg/guard"
	"github.com/Dev-Yatrik-Patel/Task-Management-System-MicroServices/pkg/logger"
	"github.com/Dev-Yatrik-Patel/Task-Management-System-MicroServices/pkg/migrate"
	"github.com/Dev-Yatrik-Patel/Task-Management-System-MicroServices/pkg/server"
	"github.com/Dev-Yatrik-Patel/Task-Management-System-MicroServices/task/db"
	httpx "github.com/Dev-Yatrik-Patel/Task-Management-System-MicroServices/task/internal/http"
	"github.com/Dev-Yatrik-Patel/Task-Management-System-MicroServices/task/internal/repository/postgres"
	"github.com/Dev-Yatrik-Patel/Task-Management-System-MicroServices/task/internal/service/task"
)

func main() {
	cfg := config.LoadTaskConfig()
	log := logger.New("task", logger.ParseLevel(cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if cfg.AutoMigrate {
		runner, err := migrate.New(cfg.DatabaseURL, db.Migrations(), log)
		if err != nil {
			log.Error("failed to configure migrations", "error", err)
			os.Exit(1)
		}
		if err := runner.Ensure(ctx); err != nil {
			log.Error("migrations failed", "error", err)
			os.Exit(1)
		}
	}

	authGuard, cache, err := guard.FromConfig(cfg, log)
	if err != nil {
		log.Error("failed to configure authorization", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := cache.Close(); err != nil {
			log.Warn("token cache close failed", "error", err)
		}
	}()

	taskSvc := task.New(postgres.New(pool), log)
	router := httpx.NewRouter(log, cfg.AppName, taskSvc, authGuard.Middleware, pool.Ping)

	if err := server.Run(ctx, cfg.Addr, router, log); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
