package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/vpms/internal/container"
	"github.com/oksasatya/vpms/internal/observability"
	handlers "github.com/oksasatya/vpms/internal/interface/http"
	"github.com/oksasatya/vpms/internal/interface/middleware"
)

// SystemModule serves /health and, when metrics are enabled, /metrics.
// Both are rate limited per IP; private addresses (probes, scrapers) bypass.
type SystemModule struct {
	Health  *handlers.HealthHandler
	Metrics *observability.Metrics
}

func NewSystemModule(h *handlers.HealthHandler, m *observability.Metrics) *SystemModule {
	return &SystemModule{Health: h, Metrics: m}
}

func (m *SystemModule) Register(rg *gin.RouterGroup) {
	rl := middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP())
	rg.GET("/health", rl, m.Health.Health)
	if m.Metrics != nil {
		rg.GET("/metrics", rl, gin.WrapH(m.Metrics.Handler()))
	}
}
