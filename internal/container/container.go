package container

import (
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/vpms/config"
	repo "github.com/oksasatya/vpms/internal/domain/repository"
	"github.com/oksasatya/vpms/internal/infrastructure/storage"
	"github.com/oksasatya/vpms/internal/observability"
	"github.com/oksasatya/vpms/pkg/helpers"
)

// Repositories is the active store, Postgres or in-memory.
type Repositories struct {
	Users    repo.UserRepository
	Visitors repo.VisitorRepository
	Parcels  repo.ParcelRepository
	Pinger   repo.Pinger
}

// app-level container to share constructed components across packages.
// Router builds its modules from these singletons.

var (
	cfg         *config.Config
	logger      *logrus.Logger
	repos       Repositories
	redisClient *redis.Client
	jwtManager  *helpers.JWTManager
	rabbitPub   *helpers.RabbitPublisher
	esClient    *elasticsearch.Client
	photos      *storage.Storage
	metrics     *observability.Metrics
)

func SetConfig(c *config.Config)          { cfg = c }
func GetConfig() *config.Config           { return cfg }
func SetLogger(l *logrus.Logger)          { logger = l }
func GetLogger() *logrus.Logger           { return logger }
func SetRepositories(r Repositories)      { repos = r }
func GetRepositories() Repositories       { return repos }
func SetRedis(r *redis.Client)            { redisClient = r }
func GetRedis() *redis.Client             { return redisClient }
func SetPhotoStorage(s *storage.Storage)  { photos = s }
func GetPhotoStorage() *storage.Storage   { return photos }
func SetMetrics(m *observability.Metrics) { metrics = m }
func GetMetrics() *observability.Metrics  { return metrics }
func SetJWT(m *helpers.JWTManager) { jwtManager = m }
func GetJWT() *helpers.JWTManager {
	if jwtManager != nil {
		return jwtManager
	}
	return helpers.DefaultJWT()
}

func SetRabbitPub(p *helpers.RabbitPublisher) { rabbitPub = p }
func GetRabbitPub() *helpers.RabbitPublisher  { return rabbitPub }
func SetES(c *elasticsearch.Client)           { esClient = c }
func GetES() *elasticsearch.Client            { return esClient }

// Reset clears every singleton. Tests call it between engines.
func Reset() {
	cfg, logger, repos = nil, nil, Repositories{}
	redisClient, jwtManager, rabbitPub = nil, nil, nil
	esClient, photos, metrics = nil, nil, nil
}
