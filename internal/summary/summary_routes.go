package summary

import (
	"face-attendance/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler, jwtSecret string) {
	summaries := r.Group("/attendances/summaries")
	summaries.Use(middleware.AuthMiddleware(jwtSecret))
	{
		summaries.GET("", h.GetAll)
	}
}
