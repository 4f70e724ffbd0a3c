package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/vpms/internal/container"
	"github.com/oksasatya/vpms/internal/domain/entity"
	handlers "github.com/oksasatya/vpms/internal/interface/http"
	"github.com/oksasatya/vpms/internal/interface/middleware"
)

// ParcelModule serves /api/parcels.
type ParcelModule struct {
	Handler *handlers.ParcelHandler
	Auth    gin.HandlerFunc
}

func NewParcelModule(h *handlers.ParcelHandler, auth gin.HandlerFunc) *ParcelModule {
	return &ParcelModule{Handler: h, Auth: auth}
}

func (m *ParcelModule) Register(rg *gin.RouterGroup) {
	staff := middleware.RequireRoles(entity.RoleGuard, entity.RoleAdmin)
	resident := middleware.RequireRoles(entity.RoleResident)

	g := rg.Group("/parcels")
	g.Use(m.Auth, middleware.RateLimit(container.GetRedis(), 300, time.Minute, middleware.KeyByUserID(), nil))
	{
		g.POST("", staff, m.Handler.Create)
		g.GET("", staff, m.Handler.List)
		g.GET("/search", staff, m.Handler.Search)
		g.GET("/resident/:residentId", m.Handler.ByResident)
		g.GET("/history/resident/:residentId", m.Handler.History)
		g.GET("/pending-count/:residentId", m.Handler.PendingCount)
		g.GET("/:id", m.Handler.Get)
		g.POST("/:id/photo", staff, m.Handler.AttachPhoto)
		g.PUT("/:id/acknowledge", resident, m.Handler.Acknowledge)
		g.PUT("/:id/status", m.Handler.UpdateStatus)
	}
}
