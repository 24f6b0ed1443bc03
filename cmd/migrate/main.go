package main

import (
	"context"
	"flag"
	"io/fs"
	"log/slog"
	"os"
	"time"

	authdb "github.com/Dev-Yatrik-Patel/Task-Management-System-MicroServices/auth/db"
	"github.com/Dev-Yatrik-Patel/Task-Management-System-MicroServices/pkg/config"
	"github.com/Dev-Yatrik-Patel/Task-Management-System-MicroServices/pkg/logger"
	"github.com/Dev-Yatrik-Patel/Task-Management-System-MicroServices/pkg/migrate"
	profiledb "github.com/Dev-Yatrik-Patel/Task-Management-System-MicroServices/profile/db"
	taskdb "github.com/Dev-Yatrik-Patel/Task-Management-System-MicroServices/task/db"
)

func main() {
	service := flag.String("service", "", "service schema to migrate (auth|task|profile)")
	command := flag.String("command", "up", "migrate command (up|status|down)")
	timeout := flag.Duration("timeout", time.Minute, "command timeout")
	target := flag.Int64("target", 0, "target version for down command (optional)")
	dsn := flag.String("dsn", "", "database url (defaults to the service's DATABASE_URL)")
	flag.Parse()

	log := logger.New("migrate", slog.LevelInfo)

	migrations, defaultDSN, ok := schema(*service)
	if !ok {
		log.Error("unknown service", "service", *service)
		os.Exit(2)
	}
	if *dsn == "" {
		*dsn = defaultDSN
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	runner, err := migrate.New(*dsn, migrations, log.With("schema", *service))
	if err != nil {
		log.Error("failed to configure migration runner", "error", err)
		os.Exit(1)
	}

	switch *command {
	case "up":
		if err := runner.Ensure(ctx); err != nil {
			log.Error("failed to apply migrations", "error", err)
			os.Exit(1)
		}
	case "status":
		if err := runner.Status(ctx); err != nil {
			log.Error("failed to fetch migration status", "error", err)
			os.Exit(1)
		}
	case "down":
		if err := runner.Down(ctx, *target); err != nil {
			log.Error("failed to roll back migrations", "error", err)
			os.Exit(1)
		}
	default:
		log.Error("unsupported command", "command", *command)
		os.Exit(2)
	}

	log.Info("migration command completed", "service", *service, "command", *command)
}

// schema returns the embedded migrations and configured database for a service.
func schema(service string) (fs.FS, string, bool) {
	switch service {
	case "auth":
		return authdb.Migrations(), config.GetString("DATABASE_URL", config.DefaultAuthDatabaseURL), true
	case "task":
		return taskdb.Migrations(), config.LoadTaskConfig().DatabaseURL, true
	case "profile", "user":
		return profiledb.Migrations(), config.LoadProfileConfig().DatabaseURL, true
	default:
		return nil, "", false
	}
}
