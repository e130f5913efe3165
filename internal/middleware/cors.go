package middleware

import (
	"slices"
	"time"

	"hrms-lite/internal/config"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS allows the configured browser origins. "*" opens the API to any
// origin without credentials; an empty list rejects every cross origin call.
func CORS(cfg config.AppConfig) gin.HandlerFunc {
	c := cors.Config{
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", RequestIDHeader, IdempotencyHeader},
		ExposeHeaders:    []string{RequestIDHeader, ReplayedHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	switch {
	case slices.Contains(cfg.CORSOrigins, "*"):
		c.AllowAllOrigins = true
		c.AllowCredentials = false
	case len(cfg.CORSOrigins) == 0:
		c.AllowOriginFunc = func(string) bool { return false }
	default:
		c.AllowOrigins = cfg.CORSOrigins
	}

	return cors.New(c)
}
