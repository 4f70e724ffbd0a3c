package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/vpms/internal/container"
	"github.com/oksasatya/vpms/internal/domain/entity"
	handlers "github.com/oksasatya/vpms/internal/interface/http"
	"github.com/oksasatya/vpms/internal/interface/middleware"
)

// AuthModule serves /api/auth.
// Public: POST register, POST login. Protected: GET me, POST logout, GET residents.
type AuthModule struct {
	Handler *handlers.AuthHandler
	Auth    gin.HandlerFunc
}

func NewAuthModule(h *handlers.AuthHandler, auth gin.HandlerFunc) *AuthModule {
	return &AuthModule{Handler: h, Auth: auth}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()
	loginLimiter := middleware.RateLimit(rdb, 10, time.Minute, middleware.KeyByIP(), nil)
	registerLimiter := middleware.RateLimit(rdb, 5, time.Minute, middleware.KeyByIPAndPath(), nil)

	g := rg.Group("/auth")
	g.POST("/register", registerLimiter, m.Handler.Register)
	g.POST("/login", loginLimiter, m.Handler.Login)

	auth := g.Group("/")
	auth.Use(m.Auth, middleware.RateLimit(rdb, 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.GET("/me", m.Handler.Me)
		auth.POST("/logout", m.Handler.Logout)
		auth.GET("/residents", middleware.RequireRoles(entity.RoleGuard, entity.RoleAdmin), m.Handler.Residents)
	}
}
