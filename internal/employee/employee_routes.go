package employee

import (
	"hrms-lite/internal/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the directory endpoints. writeGuards run in front of
// the mutating endpoints only (idempotency, tighter rate limits).
func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	writeGuards ...gin.HandlerFunc,
) {
	employees := r.Group("/employees")
	{
		employees.GET("", handler.GetAll)
		employees.GET("/departments", handler.Departments)
		employees.GET("/:id", handler.GetById)

		employees.POST("", middleware.Chain(writeGuards, handler.Create)...)
		employees.DELETE("/:id", middleware.Chain(writeGuards, handler.Delete)...)
	}
}
