package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/golang-migrate/migrate/v4"
	pgmigrate "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/oksasatya/vpms/config"
	"github.com/oksasatya/vpms/internal/container"
	"github.com/oksasatya/vpms/internal/infrastructure/memory"
	pginfra "github.com/oksasatya/vpms/internal/infrastructure/postgres"
	"github.com/oksasatya/vpms/internal/infrastructure/storage"
	"github.com/oksasatya/vpms/internal/observability"
	"github.com/oksasatya/vpms/internal/router"
	"github.com/oksasatya/vpms/pkg/helpers"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	gin.SetMode(cfg.GinMode)

	ctx := context.Background()

	if cfg.UseMemoryStore() {
		logger.Warn("STORE_DRIVER=memory; data is lost on restart")
		store := memory.NewStore()
		container.SetRepositories(container.Repositories{
			Users:    store.Users(),
			Visitors: store.Visitors(),
			Parcels:  store.Parcels(),
			Pinger:   store,
		})
	} else {
		pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), pginfra.PoolOptions{
			MaxConns:        cfg.DBMaxConns,
			MinConns:        cfg.DBMinConns,
			MaxConnLifetime: cfg.DBMaxConnLife,
		})
		if err != nil {
			log.Fatalf("failed to connect to postgres: %v", err)
		}
		defer pool.Close()

		if err := runMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
			log.Fatalf("migration failed: %v", err)
		}
		container.SetRepositories(container.Repositories{
			Users:    pginfra.NewUserRepository(pool),
			Visitors: pginfra.NewVisitorRepository(pool),
			Parcels:  pginfra.NewParcelRepository(pool),
			Pinger:   pool,
		})
	}

	if cfg.RedisAddr != "" {
		rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		defer func() { _ = rdb.Close() }()
		container.SetRedis(rdb)
	}

	if addrs := cfg.ESAddrs(); len(addrs) > 0 {
		es, err := helpers.NewESClient(addrs, cfg.ElasticsearchUser, cfg.ElasticsearchPass)
		if err == nil {
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err = helpers.PingES(pingCtx, es)
			cancel()
		}
		if err != nil {
			logger.WithError(err).Warn("elasticsearch disabled")
		} else {
			container.SetES(es)
		}
	}

	if st, closeFn, err := photoStorage(ctx, cfg); err != nil {
		log.Fatalf("photo storage: %v", err)
	} else if st != nil {
		defer closeFn()
		container.SetPhotoStorage(st)
	}

	if cfg.NotificationsEnabled() {
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQNotifyQueue)
		if err != nil {
			logger.WithError(err).Warn("rabbitmq unavailable; notifications disabled")
		} else {
			defer pub.Close()
			container.SetRabbitPub(pub)
		}
	}

	jwtManager := helpers.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)

	container.SetConfig(cfg)
	container.SetLogger(logger)
	container.SetJWT(jwtManager)
	if cfg.MetricsEnabled {
		container.SetMetrics(observability.NewMetrics())
	}

	r := router.NewEngine()

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logger.Infof("server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Fatalf("server forced to shutdown: %v", err)
	}
	logger.Info("server exited properly")
}

// photoStorage picks the parcel photo backend. An empty STORAGE_BACKEND
// disables photo uploads.
func photoStorage(ctx context.Context, cfg *config.Config) (*storage.Storage, func(), error) {
	var backend storage.ObjectStorage
	closeFn := func() {}
	switch cfg.StorageBackend {
	case "":
		return nil, closeFn, nil
	case "gcs":
		g, err := storage.NewGCSClient(ctx, storage.GCSConfig{
			Bucket:          cfg.GCSBucket,
			CredentialsFile: cfg.GCSCredentialsJSONPath,
			ProjectID:       cfg.GCSProjectID,
		})
		if err != nil {
			return nil, closeFn, err
		}
		backend = g
		closeFn = func() { _ = g.Close() }
	case "minio":
		m, err := storage.NewMinioClient(storage.MinioConfig{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
		})
		if err != nil {
			return nil, closeFn, err
		}
		backend = m
	default:
		return nil, closeFn, fmt.Errorf("unknown STORAGE_BACKEND %q", cfg.StorageBackend)
	}

	st := storage.NewStorage(backend)
	ensureCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := st.EnsureBucket(ensureCtx); err != nil {
		closeFn()
		return nil, func() {}, err
	}
	return st, closeFn, nil
}

func runMigrations(dsn string, migrationsDir string, logger *logrus.Logger) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	driver, err := pgmigrate.WithInstance(db, &pgmigrate.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithDatabaseInstance(fmt.Sprintf("file://%s", migrationsDir), "postgres", driver)
	if err != nil {
		return err
	}
	logger.Info("running migrations...")
	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("no migrations to run")
		return nil
	}
	return err
}
