package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/vpms/internal/container"
	"github.com/oksasatya/vpms/internal/domain/entity"
	handlers "github.com/oksasatya/vpms/internal/interface/http"
	"github.com/oksasatya/vpms/internal/interface/middleware"
)

// AdminModule serves /api/admin: user management and manual notifications.
type AdminModule struct {
	Users         *handlers.AdminHandler
	Notifications *handlers.NotificationHandler
	Auth          gin.HandlerFunc
}

func NewAdminModule(users *handlers.AdminHandler, notifications *handlers.NotificationHandler, auth gin.HandlerFunc) *AdminModule {
	return &AdminModule{Users: users, Notifications: notifications, Auth: auth}
}

func (m *AdminModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/admin")
	g.Use(m.Auth, middleware.RequireRoles(entity.RoleAdmin))
	{
		g.GET("/users", m.Users.ListUsers)
		g.POST("/users", m.Users.CreateUser)
		g.PUT("/users/:id/active", m.Users.SetActive)
		g.POST("/notifications",
			middleware.RateLimit(container.GetRedis(), 30, time.Minute, middleware.KeyByUserID(), nil),
			m.Notifications.Send)
	}
}
