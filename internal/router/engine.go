package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/vpms/internal/container"
	"github.com/oksasatya/vpms/internal/interface/middleware"
	"github.com/oksasatya/vpms/pkg/validation"
)

// NewEngine builds the Gin engine with global middleware and every module.
// The container must be populated first.
func NewEngine() *gin.Engine {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	validation.Init()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware(), middleware.RealIP())
	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderRequestID},
		ExposeHeaders: []string{"Content-Length", middleware.HeaderRequestID},
		MaxAge:        12 * time.Hour,
	}
	// Without an explicit list any origin may call; bearer tokens need no cookies.
	if origins := cfg.CORSOrigins(); len(origins) > 0 {
		corsCfg.AllowOrigins = origins
		corsCfg.AllowCredentials = true
	} else {
		corsCfg.AllowAllOrigins = true
	}
	r.Use(cors.New(corsCfg))
	if cfg.MetricsEnabled {
		r.Use(middleware.HTTPMetrics(container.GetMetrics()))
	}
	if cfg.HTTPLogEnabled {
		r.Use(middleware.RequestLogger(logger))
	}
	r.Use(middleware.ErrorHandler(logger, container.GetMetrics()))

	reg := NewRegistry(r)
	InitModules(reg, BuildDeps())
	reg.RegisterAll()
	return r
}
