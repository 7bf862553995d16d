package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/spec-kit/nikah-service/internal/config"
	"github.com/spec-kit/nikah-service/internal/observability"
	"github.com/spec-kit/nikah-service/internal/persistence"
)

// migrate applies or reverts schema migrations: `migrate up` applies every
// pending version, `migrate down` rolls back the most recent one.
func main() {
	if len(os.Args) != 2 || (os.Args[1] != "up" && os.Args[1] != "down") {
		fmt.Fprintln(os.Stderr, "usage: migrate up|down")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx := context.Background()
	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	switch os.Args[1] {
	case "up":
		err = persistence.RunMigrations(ctx, pg.PoolHandle(), logger)
	case "down":
		err = persistence.RollbackLastMigration(ctx, pg.PoolHandle(), logger)
	}
	if err != nil {
		logger.Fatal("migration failed", zap.Error(err))
	}
}
