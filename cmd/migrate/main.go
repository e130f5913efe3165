package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"hrms-lite/internal/bootstrap"
	"hrms-lite/internal/config"
	"hrms-lite/internal/migrations"
	"hrms-lite/internal/shared/connection"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const usage = "usage: migrate up|down|status"

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := bootstrap.NewLogger(cfg.App)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	gormDB, err := connection.ConnectGORMWithRetry(cfg.Database, logger)
	if err != nil {
		logger.Fatal("connect database", zap.Error(err))
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		logger.Fatal("unwrap database", zap.Error(err))
	}
	defer sqlDB.Close()

	ctx := context.Background()
	cmd := os.Args[1]

	switch cmd {
	case "up":
		err = migrations.Up(ctx, sqlDB)
	case "down":
		err = migrations.Down(ctx, sqlDB)
	case "status":
		err = migrations.Status(ctx, sqlDB)
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		logger.Fatal("migration failed", zap.String("command", cmd), zap.Error(err))
	}
	logger.Info("migration finished", zap.String("command", cmd))
}
