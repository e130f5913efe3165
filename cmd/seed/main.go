package main

import (
	"context"
	"log"

	"hrms-lite/internal/app"
	"hrms-lite/internal/bootstrap"
	"hrms-lite/internal/config"
	"hrms-lite/internal/seed"
	"hrms-lite/internal/shared/apperror"
	"hrms-lite/internal/shared/clock"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := bootstrap.NewLogger(cfg.App)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	apperror.Init()

	infra, err := app.Connect(cfg, logger)
	if err != nil {
		logger.Fatal("connect", zap.Error(err))
	}
	defer infra.Close()

	services := app.NewServices(cfg, infra.DB, infra.Redis, logger)
	seeder := seed.NewSeeder(services.Employee, services.Attendance, clock.New(cfg.App.Location), logger)

	if _, err := seeder.Run(context.Background(), seed.DefaultOptions()); err != nil {
		logger.Fatal("seed failed", zap.Error(err))
	}
}
