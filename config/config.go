package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration loaded from environment variables
// Provide sane defaults for local development.
type Config struct {
	AppName string
	Env     string // development, staging, production
	Port    string
	GinMode string

	// StoreDriver selects the repository backend: postgres or memory.
	StoreDriver string

	// Database
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBSSLMode     string
	DBMaxConns    int32
	DBMinConns    int32
	DBMaxConnLife time.Duration

	// Migrations
	MigrationsDir string

	// Redis
	RedisAddr            string
	RedisPassword        string
	RedisDB              int
	PendingCountCacheTTL time.Duration

	// JWT
	JWTSecret string
	JWTTTL    time.Duration

	// CORS
	CORSAllowedOrigins string // comma-separated

	// Lifecycle enforcement; when false undeclared transitions are logged and accepted.
	LifecycleStrict bool

	// RabbitMQ
	RabbitMQURL         string
	RabbitMQNotifyQueue string

	// Mailgun
	MailgunDomain   string
	MailgunAPIKey   string
	MailgunSender   string
	MailSendEnabled bool

	// Elasticsearch
	ElasticsearchAddrs string // comma-separated
	ElasticsearchUser  string
	ElasticsearchPass  string
	ESRecordsIndex     string

	// Object storage for parcel photos: "", "gcs" or "minio"
	StorageBackend         string
	GCSBucket              string
	GCSCredentialsJSONPath string // optional; if empty, Application Default Credentials are used
	GCSProjectID           string
	MinioEndpoint          string
	MinioAccessKey         string
	MinioSecretKey         string
	MinioBucket            string
	MinioUseSSL            bool

	MetricsEnabled bool

	// HTTP access log toggle (Gin logger)
	HTTPLogEnabled bool

	// Resident watcher
	APIBaseURL   string
	PollInterval time.Duration
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getbool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			log.Printf("invalid boolean for %s: %v, using default %v", key, err, def)
			return def
		}
		return b
	}
	return def
}

func getint(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			log.Printf("invalid int for %s: %v, using default %d", key, err, def)
			return def
		}
		return i
	}
	return def
}

func getdur(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			log.Printf("invalid duration for %s: %v, using default %v", key, err, def)
			return def
		}
		return d
	}
	return def
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		AppName: getenv("APP_NAME", "vpms"),
		Env:     getenv("APP_ENV", "development"),
		Port:    getenv("PORT", "8080"),
		GinMode: getenv("GIN_MODE", "release"),

		StoreDriver: strings.ToLower(getenv("STORE_DRIVER", "postgres")),

		DBHost:        getenv("DB_HOST", "localhost"),
		DBPort:        getenv("DB_PORT", "5432"),
		DBUser:        getenv("DB_USER", "postgres"),
		DBPassword:    getenv("DB_PASSWORD", "postgres"),
		DBName:        getenv("DB_NAME", "vpms"),
		DBSSLMode:     getenv("DB_SSLMODE", "disable"),
		DBMaxConns:    int32(getint("DB_MAX_CONNS", 10)),
		DBMinConns:    int32(getint("DB_MIN_CONNS", 2)),
		DBMaxConnLife: getdur("DB_MAX_CONN_LIFETIME", time.Hour),

		MigrationsDir: getenv("MIGRATIONS_DIR", "db/migrations"),

		RedisAddr:            getenv("REDIS_ADDR", ""),
		RedisPassword:        getenv("REDIS_PASSWORD", ""),
		RedisDB:              getint("REDIS_DB", 0),
		PendingCountCacheTTL: getdur("PENDING_COUNT_CACHE_TTL", 30*time.Second),

		JWTSecret: getenv("JWT_SECRET", "devjwtsecret"),
		JWTTTL:    getdur("JWT_TTL", 24*time.Hour),

		CORSAllowedOrigins: getenv("CORS_ALLOWED_ORIGINS", ""),

		LifecycleStrict: getbool("LIFECYCLE_STRICT", false),

		RabbitMQURL:         getenv("RABBITMQ_URL", ""),
		RabbitMQNotifyQueue: getenv("RABBITMQ_NOTIFY_QUEUE", "vpms.notifications"),

		MailgunDomain:   getenv("MAILGUN_DOMAIN", ""),
		MailgunAPIKey:   getenv("MAILGUN_API_KEY", ""),
		MailgunSender:   getenv("MAILGUN_SENDER", ""),
		MailSendEnabled: getbool("MAIL_SEND_ENABLED", true),

		ElasticsearchAddrs: getenv("ELASTICSEARCH_ADDRS", ""),
		ElasticsearchUser:  getenv("ELASTICSEARCH_USERNAME", ""),
		ElasticsearchPass:  getenv("ELASTICSEARCH_PASSWORD", ""),
		ESRecordsIndex:     getenv("ES_RECORDS_INDEX", "vpms-records"),

		StorageBackend:         strings.ToLower(getenv("STORAGE_BACKEND", "")),
		GCSBucket:              getenv("GCS_BUCKET", ""),
		GCSCredentialsJSONPath: getenv("GCS_CREDENTIALS_JSON", ""),
		GCSProjectID:           getenv("GCS_PROJECT_ID", ""),
		MinioEndpoint:          getenv("MINIO_ENDPOINT", ""),
		MinioAccessKey:         getenv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey:         getenv("MINIO_SECRET_KEY", ""),
		MinioBucket:            getenv("MINIO_BUCKET", "vpms-parcels"),
		MinioUseSSL:            getbool("MINIO_USE_SSL", false),

		MetricsEnabled: getbool("METRICS_ENABLED", true),

		HTTPLogEnabled: getbool("HTTP_LOG_ENABLED", false),

		APIBaseURL:   getenv("API_BASE_URL", "http://localhost:8080"),
		PollInterval: getdur("POLL_INTERVAL", 30*time.Second),
	}
}

// PostgresDSN returns a DSN compatible with pgx
func (c *Config) PostgresDSN() string {
	return "postgres://" + c.DBUser + ":" + c.DBPassword + "@" + c.DBHost + ":" + c.DBPort + "/" + c.DBName + "?sslmode=" + c.DBSSLMode
}

// UseMemoryStore reports whether repositories live in process memory.
func (c *Config) UseMemoryStore() bool { return c.StoreDriver == "memory" }

// NotificationsEnabled reports whether lifecycle events are published to RabbitMQ.
func (c *Config) NotificationsEnabled() bool {
	return c.MailSendEnabled && c.RabbitMQURL != "" && c.RabbitMQNotifyQueue != ""
}

// CORSOrigins returns the allowed origins as slice
func (c *Config) CORSOrigins() []string { return splitList(c.CORSAllowedOrigins) }

// ESAddrs returns Elasticsearch addresses as a slice
func (c *Config) ESAddrs() []string { return splitList(c.ElasticsearchAddrs) }

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	res := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			res = append(res, p)
		}
	}
	return res
}
