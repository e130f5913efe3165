package app

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const healthPingTimeout = 2 * time.Second

// RegisterHealthRoutes mounts GET /health outside the versioned prefix.
// A failing database ping turns the answer into 503.
func RegisterHealthRoutes(router gin.IRoutes, version string, gormDB *gorm.DB) {
	router.GET("/health", func(c *gin.Context) {
		status, code := "ok", http.StatusOK
		if err := pingDatabase(c.Request.Context(), gormDB); err != nil {
			status, code = "degraded", http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{"status": status, "version": version})
	})
}

func pingDatabase(ctx context.Context, gormDB *gorm.DB) error {
	if gormDB == nil {
		return nil
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, healthPingTimeout)
	defer cancel()
	return sqlDB.PingContext(ctx)
}
