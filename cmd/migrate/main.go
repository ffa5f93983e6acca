package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/sidharth07/verbiforge-sub000/internal/config"
	"github.com/sidharth07/verbiforge-sub000/internal/database"
)

func main() {
	command := flag.String("command", "up", "migration command: up, status, version or down")
	target := flag.Int64("target", 0, "target version for down (0 rolls back one step)")
	createDB := flag.Bool("create-db", false, "create the database first if it does not exist")
	timeout := flag.Duration("timeout", 2*time.Minute, "overall timeout")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.LoadDatabase()
	if err != nil {
		log.Error("load database config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := run(ctx, log, cfg, *command, *target, *createDB); err != nil {
		log.Error("migration failed", "command", *command, "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, log *slog.Logger, cfg config.DatabaseConfig, command string, target int64, createDB bool) error {
	if createDB {
		if err := database.EnsureDatabaseExists(ctx, cfg, log); err != nil {
			return err
		}
	}

	migrator, err := database.NewMigrator(cfg.DSN(), log)
	if err != nil {
		return err
	}

	switch command {
	case "up":
		return migrator.Up(ctx)
	case "status":
		return migrator.Status(ctx)
	case "version":
		v, err := migrator.Version(ctx)
		if err != nil {
			return err
		}
		log.Info("schema version", "version", v, "database", cfg.Redacted())
		return nil
	case "down":
		return migrator.Down(ctx, target)
	default:
		return fmt.Errorf("unknown command %q (want up, status, version or down)", command)
	}
}
