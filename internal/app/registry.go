package app

import (
	"hrms-lite/internal/attendance"
	"hrms-lite/internal/config"
	"hrms-lite/internal/dashboard"
	"hrms-lite/internal/employee"
	"hrms-lite/internal/messaging/kafka"
	"hrms-lite/internal/middleware"
	"hrms-lite/internal/shared/clock"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Services is the domain layer shared by the API, the seeder and the
// consumer.
type Services struct {
	Employee   employee.Service
	Attendance attendance.Service
	Dashboard  dashboard.Service
}

func NewServices(cfg *config.Config, gormDB *gorm.DB, rdb *redis.Client, logger *zap.Logger) *Services {
	// --- Repositories ---
	employeeRepo := employee.NewRepository(gormDB)
	attendanceRepo := attendance.NewRepository(gormDB)
	dashboardRepo := dashboard.NewRepository(gormDB)

	var outboxRepo kafka.OutboxRepository
	if cfg.Kafka.OutboxEnabled {
		outboxRepo = kafka.NewOutboxRepository(gormDB)
	}

	clk := clock.New(cfg.App.Location)

	// --- Services ---
	return &Services{
		Employee:   employee.NewServiceWithOutbox(gormDB, employeeRepo, outboxRepo, rdb, logger),
		Attendance: attendance.NewServiceWithOutbox(gormDB, attendanceRepo, outboxRepo, clk, rdb, logger),
		Dashboard:  dashboard.NewService(gormDB, dashboardRepo, clk, rdb, cfg.Redis.StatsTTL, logger),
	}
}

func registerModules(
	router *gin.Engine,
	cfg *config.Config,
	services *Services,
	gormDB *gorm.DB,
	rdb *redis.Client,
	logger *zap.Logger,
) {
	// --- Handlers ---
	employeeHandler := employee.NewHandler(services.Employee, logger)
	attendanceHandler := attendance.NewHandler(services.Attendance, logger)
	dashboardHandler := dashboard.NewHandler(services.Dashboard, logger)

	writeGuards := []gin.HandlerFunc{
		middleware.Idempotency(rdb, cfg.HTTP.IdempotencyTTL, logger),
	}

	// --- Routes Registration ---
	RegisterHealthRoutes(router, cfg.App.Version, gormDB)

	api := router.Group(cfg.HTTP.APIPrefix)
	{
		employee.RegisterRoutes(api, employeeHandler, writeGuards...)
		attendance.RegisterRoutes(api, attendanceHandler, writeGuards...)
		dashboard.RegisterRoutes(api, dashboardHandler)
	}
}
