package attendance

import (
	"face-attendance/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

type RouteConfig struct {
	JWTSecret  string
	KioskRPS   float64
	KioskBurst int
}

// RegisterRoutes mounts the kiosk endpoint (rate limited, idempotent when
// redis is available) and the JWT-gated read endpoints.
func RegisterRoutes(r *gin.RouterGroup, h *Handler, cfg RouteConfig, rdb *redis.Client) {
	attendances := r.Group("/attendances")
	{
		attendances.POST("/record",
			middleware.RateLimitKiosk(middleware.NewKeyedLimiter(rate.Limit(cfg.KioskRPS), cfg.KioskBurst)),
			middleware.Idempotency(rdb),
			h.Record,
		)

		read := attendances.Group("")
		read.Use(middleware.AuthMiddleware(cfg.JWTSecret))
		{
			read.GET("", h.GetAll)
			read.GET("/history", h.GetHistory)
			read.GET("/export", h.Export)
		}
	}
}
