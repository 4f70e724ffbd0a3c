package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/vpms/internal/container"
	"github.com/oksasatya/vpms/internal/domain/entity"
	handlers "github.com/oksasatya/vpms/internal/interface/http"
	"github.com/oksasatya/vpms/internal/interface/middleware"
)

// VisitorModule serves /api/visitors. Per-record ownership is checked in the service.
type VisitorModule struct {
	Handler *handlers.VisitorHandler
	Auth    gin.HandlerFunc
}

func NewVisitorModule(h *handlers.VisitorHandler, auth gin.HandlerFunc) *VisitorModule {
	return &VisitorModule{Handler: h, Auth: auth}
}

func (m *VisitorModule) Register(rg *gin.RouterGroup) {
	staff := middleware.RequireRoles(entity.RoleGuard, entity.RoleAdmin)

	g := rg.Group("/visitors")
	g.Use(m.Auth, middleware.RateLimit(container.GetRedis(), 300, time.Minute, middleware.KeyByUserID(), nil))
	{
		g.POST("", staff, m.Handler.Create)
		g.GET("", staff, m.Handler.List)
		g.GET("/search", staff, m.Handler.Search)
		g.GET("/pending/:residentId", m.Handler.Pending)
		g.GET("/history/:residentId", m.Handler.History)
		g.GET("/pending-count/:residentId", m.Handler.PendingCount)
		g.GET("/:id", m.Handler.Get)
		g.PUT("/:id/status", m.Handler.UpdateStatus)
	}
}
