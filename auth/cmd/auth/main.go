package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Dev-Yatrik-Patel/Task-Management-System-MicroServices/auth/db"
	httpx "github.com/Dev-Yatrik-Patel/Task-Management-System-MicroServices/auth/internal/http"
	"github.com/Dev-Yatrik-Patel/Task-Management-System-MicroServices/auth/internal/repository/postgres"
	"github.com/Dev-Yatrik-Patel/Task-Management-System-MicroServices/auth/internal/service/auth"
	"github.com/Dev-Yatrik-Patel/Task-Management-System-MicroServices/pkg/config"
	jwtpkg "github.com/Dev-Yatrik-Patel/Task-Management-System-MicroServices/pkg/jwt"
	"github.com/Dev-Yatrik-Patel/Task-Management-System-MicroServices/pkg/logger"
	"github.com/Dev-Yatrik-Patel/Task-Management-System-MicroServices/pkg/migrate"
	"github.com/Dev-Yatrik-Patel/Task-Management-System-MicroServices/pkg/server"
)

func main() {
	cfg, err := config.LoadAuthConfig()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New("auth", logger.ParseLevel(cfg.LogLevel))

	codec, err := jwtpkg.NewCodec(cfg.JWTSecret, jwtpkg.WithIssuer(cfg.JWTIssuer))
	if err != nil {
		log.Error("failed to configure token codec", "error", err)
		os.Exit(1)
	}

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

	authSvc := auth.New(postgres.New(pool), codec, log, cfg)
	router := httpx.NewRouter(log, cfg.AppName, authSvc, pool.Ping)

	if err := server.Run(ctx, cfg.Addr, router, log); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
