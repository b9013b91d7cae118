package health

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ahmedaminrashad/horizon-sub000/internal/tenant"
)

type Handler struct {
	central  *sqlx.DB
	registry *tenant.Registry
}

func NewHandler(central *sqlx.DB, registry *tenant.Registry) *Handler {
	return &Handler{central: central, registry: registry}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health/live", h.Liveness)
	r.GET("/health/ready", h.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

func (h *Handler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
		"time":   time.Now(),
	})
}

// Readiness pings the central database; tenant connections are dialed
// lazily and do not gate readiness.
func (h *Handler) Readiness(c *gin.Context) {
	if err := h.central.PingContext(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"error":  err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":             "ready",
		"tenant_connections": h.registry.Size(),
		"time":               time.Now(),
	})
}
