package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Mongo     MongoConfig
	JWT       JWTConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Metrics   MetricsConfig
	Jobs      JobsConfig
	Admin     AdminConfig
}

type AppConfig struct {
	Name      string
	StoreName string
	Env       string
	Port      string
	Debug     bool
	LogLevel  string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	Timezone string
}

type MongoConfig struct {
	URI            string
	Database       string
	CartCollection string
	ConnectTimeout time.Duration
}

type JWTConfig struct {
	Secret      string
	ExpiryHours time.Duration
}

type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	AllowCredentials bool
	MaxAge           time.Duration
}

type RateLimitConfig struct {
	Requests int
	Duration int
}

type MetricsConfig struct {
	Enabled bool
	Path    string
}

// JobsConfig controls the background maintenance scheduler
type JobsConfig struct {
	Enabled                 bool
	IdempotencyCleanupEvery time.Duration
	StaleCartSweepEvery     time.Duration
	CartTTL                 time.Duration
}

// AdminConfig seeds the first administrator account
type AdminConfig struct {
	Email    string
	Password string
	Name     string
}

func Load(logger *zap.Logger) *Config {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logger.Warn(".env file not found, using environment variables", zap.Error(err))
	}

	// Set defaults
	viper.SetDefault("APP_NAME", "retailpos-api")
	viper.SetDefault("APP_STORE_NAME", "RetailPOS Store")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("APP_DEBUG", true)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_NAME", "retailpos")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "postgres")
	viper.SetDefault("DB_SSL_MODE", "disable")
	viper.SetDefault("DB_TIMEZONE", "UTC")
	viper.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	viper.SetDefault("MONGO_DATABASE", "retailpos")
	viper.SetDefault("MONGO_CART_COLLECTION", "carts")
	viper.SetDefault("MONGO_CONNECT_TIMEOUT_SECONDS", 10)
	viper.SetDefault("JWT_SECRET", "change-this-secret-in-production")
	viper.SetDefault("JWT_EXPIRY_HOURS", 12)
	viper.SetDefault("CORS_ALLOWED_ORIGINS", []string{"*"})
	viper.SetDefault("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"})
	viper.SetDefault("CORS_ALLOWED_HEADERS", []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key", "X-Request-ID"})
	viper.SetDefault("CORS_ALLOW_CREDENTIALS", false)
	viper.SetDefault("CORS_MAX_AGE_HOURS", 12)
	viper.SetDefault("RATE_LIMIT_REQUESTS", 100)
	viper.SetDefault("RATE_LIMIT_DURATION", 60)
	viper.SetDefault("METRICS_ENABLED", true)
	viper.SetDefault("METRICS_PATH", "/metrics")
	viper.SetDefault("JOBS_ENABLED", true)
	viper.SetDefault("JOBS_IDEMPOTENCY_CLEANUP_MINUTES", 60)
	viper.SetDefault("JOBS_STALE_CART_SWEEP_MINUTES", 360)
	viper.SetDefault("CART_TTL_HOURS", 72)

	return &Config{
		App: AppConfig{
			Name:      viper.GetString("APP_NAME"),
			StoreName: viper.GetString("APP_STORE_NAME"),
			Env:       viper.GetString("APP_ENV"),
			Port:      viper.GetString("APP_PORT"),
			Debug:     viper.GetBool("APP_DEBUG"),
			LogLevel:  viper.GetString("LOG_LEVEL"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			SSLMode:  viper.GetString("DB_SSL_MODE"),
			Timezone: viper.GetString("DB_TIMEZONE"),
		},
		Mongo: MongoConfig{
			URI:            viper.GetString("MONGO_URI"),
			Database:       viper.GetString("MONGO_DATABASE"),
			CartCollection: viper.GetString("MONGO_CART_COLLECTION"),
			ConnectTimeout: time.Duration(viper.GetInt("MONGO_CONNECT_TIMEOUT_SECONDS")) * time.Second,
		},
		JWT: JWTConfig{
			Secret:      viper.GetString("JWT_SECRET"),
			ExpiryHours: time.Duration(viper.GetInt("JWT_EXPIRY_HOURS")) * time.Hour,
		},
		CORS: CORSConfig{
			AllowedOrigins:   stringList("CORS_ALLOWED_ORIGINS"),
			AllowedMethods:   stringList("CORS_ALLOWED_METHODS"),
			AllowedHeaders:   stringList("CORS_ALLOWED_HEADERS"),
			AllowCredentials: viper.GetBool("CORS_ALLOW_CREDENTIALS"),
			MaxAge:           time.Duration(viper.GetInt("CORS_MAX_AGE_HOURS")) * time.Hour,
		},
		RateLimit: RateLimitConfig{
			Requests: viper.GetInt("RATE_LIMIT_REQUESTS"),
			Duration: viper.GetInt("RATE_LIMIT_DURATION"),
		},
		Metrics: MetricsConfig{
			Enabled: viper.GetBool("METRICS_ENABLED"),
			Path:    viper.GetString("METRICS_PATH"),
		},
		Jobs: JobsConfig{
			Enabled:                 viper.GetBool("JOBS_ENABLED"),
			IdempotencyCleanupEvery: time.Duration(viper.GetInt("JOBS_IDEMPOTENCY_CLEANUP_MINUTES")) * time.Minute,
			StaleCartSweepEvery:     time.Duration(viper.GetInt("JOBS_STALE_CART_SWEEP_MINUTES")) * time.Minute,
			CartTTL:                 time.Duration(viper.GetInt("CART_TTL_HOURS")) * time.Hour,
		},
		Admin: AdminConfig{
			Email:    viper.GetString("ADMIN_EMAIL"),
			Password: viper.GetString("ADMIN_PASSWORD"),
			Name:     viper.GetString("ADMIN_NAME"),
		},
	}
}

// stringList reads a list setting given either as a list or as a
// comma-separated env value
func stringList(key string) []string {
	var out []string
	for _, v := range viper.GetStringSlice(key) {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func (c *DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.Timezone
}
