package main

import (
	"log"

	"hrms-lite/internal/app"
	"hrms-lite/internal/bootstrap"
	"hrms-lite/internal/config"

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

	r := app.NewRouter(cfg, logger)

	// build dependency + routes
	cleanup, err := app.BuildApp(r, cfg, logger)
	if err != nil {
		logger.Fatal("build app failed", zap.Error(err))
	}
	defer cleanup()

	if err := bootstrap.StartHTTPServer(r, bootstrap.ServerConfigFrom(cfg.HTTP), logger); err != nil {
		logger.Error("http server stopped", zap.Error(err))
	}
}
