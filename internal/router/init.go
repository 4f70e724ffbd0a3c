package router

import (
	"github.com/oksasatya/vpms/internal/application"
	"github.com/oksasatya/vpms/internal/container"
	"github.com/oksasatya/vpms/internal/infrastructure/cache"
	"github.com/oksasatya/vpms/internal/infrastructure/search"
	handlers "github.com/oksasatya/vpms/internal/interface/http"
	"github.com/oksasatya/vpms/internal/interface/middleware"
	"github.com/oksasatya/vpms/internal/router/modules"
)

// Deps are the services behind the HTTP modules.
type Deps struct {
	Auth      *application.AuthService
	Users     *application.UserService
	Visitors  *application.VisitorService
	Parcels   *application.ParcelService
	Publisher application.JobPublisher
}

// BuildDeps wires services from the container singletons. Optional
// infrastructure that is absent stays a nil interface, never a typed nil.
func BuildDeps() Deps {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	repos := container.GetRepositories()

	effects := &application.Effects{
		Metrics: container.GetMetrics(),
		Logger:  logger,
		AppName: cfg.AppName,
	}
	if pub := container.GetRabbitPub(); pub != nil && cfg.NotificationsEnabled() {
		effects.Publisher = pub
	}
	if es := container.GetES(); es != nil {
		effects.Indexer = search.NewRecordIndex(es, cfg.ESRecordsIndex)
	}
	if pc := cache.NewPendingCounts(container.GetRedis(), cfg.PendingCountCacheTTL); pc != nil {
		effects.Cache = pc
	}

	var photos application.PhotoStore
	if st := container.GetPhotoStorage(); st != nil {
		photos = st
	}

	return Deps{
		Auth:      application.NewAuthService(repos.Users, container.GetJWT(), logger),
		Users:     application.NewUserService(repos.Users, logger),
		Visitors:  application.NewVisitorService(repos.Visitors, repos.Users, effects, cfg.LifecycleStrict),
		Parcels:   application.NewParcelService(repos.Parcels, repos.Users, photos, effects, cfg.LifecycleStrict),
		Publisher: effects.Publisher,
	}
}

// InitModules initializes all application modules and registers them with the router registry.
// This function should be called once during application startup to wire up all modules.
func InitModules(r *Registry, d Deps) {
	cfg := container.GetConfig()
	auth := middleware.Auth(d.Auth)

	r.Add(modules.NewAuthModule(handlers.NewAuthHandler(d.Auth), auth))
	r.Add(modules.NewVisitorModule(handlers.NewVisitorHandler(d.Visitors), auth))
	r.Add(modules.NewParcelModule(handlers.NewParcelHandler(d.Parcels), auth))
	r.Add(modules.NewAdminModule(
		handlers.NewAdminHandler(d.Users),
		handlers.NewNotificationHandler(d.Publisher, container.GetLogger(), cfg.AppName),
		auth,
	))

	health := handlers.NewHealthHandler(container.GetRepositories().Pinger, container.GetRedis())
	metrics := container.GetMetrics()
	if !cfg.MetricsEnabled {
		metrics = nil
	}
	r.AddRoot(modules.NewSystemModule(health, metrics))
}
