package app

import (
	"context"
	"fmt"

	"hrms-lite/internal/config"
	"hrms-lite/internal/middleware"
	"hrms-lite/internal/migrations"
	"hrms-lite/internal/shared/apperror"
	"hrms-lite/internal/shared/connection"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

// NewRouter returns a gin engine with the middleware every request passes
// through.
func NewRouter(cfg *config.Config, logger *zap.Logger) *gin.Engine {
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	apperror.Init()

	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.ContextLogger(logger),
		middleware.CORS(cfg.App),
		middleware.RateLimitByIP(rate.Limit(cfg.HTTP.RateLimitRPS), cfg.HTTP.RateLimitBurst),
	)
	return r
}

// Infra holds the process wide connections. Close releases them in reverse
// order of acquisition.
type Infra struct {
	DB    *gorm.DB
	Redis *redis.Client
}

func (i *Infra) Close() {
	if i.Redis != nil {
		_ = i.Redis.Close()
	}
	if i.DB != nil {
		if sqlDB, err := i.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}

// Connect opens postgres and, when REDIS_ADDR is set, redis. Without redis
// the service runs uncached and without idempotency protection.
func Connect(cfg *config.Config, logger *zap.Logger) (*Infra, error) {
	gormDB, err := connection.ConnectGORMWithRetry(cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	infra := &Infra{DB: gormDB}

	if cfg.Redis.Addr == "" {
		logger.Warn("REDIS_ADDR not set, running without cache")
		return infra, nil
	}

	rdb, err := connection.ConnectRedisWithRetry(cfg.Redis, logger)
	if err != nil {
		infra.Close()
		return nil, err
	}
	infra.Redis = rdb
	return infra, nil
}

// BuildApp wires infrastructure, services and routes onto router. The
// returned cleanup closes every connection opened here.
func BuildApp(router *gin.Engine, cfg *config.Config, logger *zap.Logger) (func(), error) {
	infra, err := Connect(cfg, logger)
	if err != nil {
		return nil, err
	}

	if cfg.Database.AutoMigrate {
		sqlDB, err := infra.DB.DB()
		if err != nil {
			infra.Close()
			return nil, err
		}
		if err := migrations.Up(context.Background(), sqlDB); err != nil {
			infra.Close()
			return nil, fmt.Errorf("auto migrate: %w", err)
		}
		logger.Info("database migrations applied")
	}

	services := NewServices(cfg, infra.DB, infra.Redis, logger)
	registerModules(router, cfg, services, infra.DB, infra.Redis, logger)

	return infra.Close, nil
}
