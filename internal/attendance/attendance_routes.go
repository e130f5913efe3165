package attendance

import (
	"hrms-lite/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler, writeGuards ...gin.HandlerFunc) {
	ledger := r.Group("/attendance")
	{
		ledger.GET("", h.GetAll)
		ledger.POST("", middleware.Chain(writeGuards, h.Mark)...)
	}

	history := r.Group("/employees/:id/attendance")
	{
		history.GET("", h.GetForEmployee)
		history.GET("/summary", h.Summary)
	}
}
