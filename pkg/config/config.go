package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// DBBackend selects the relational store implementation behind the Store component.
type DBBackend string

const (
	DBBackendSQLite   DBBackend = "sqlite"
	DBBackendPostgres DBBackend = "postgres"
	DBBackendMySQL    DBBackend = "mysql"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	UploadDir                string
	MaxUploadSizeMB          int
	AllowedOrigins           []string
	AccessTokenExpireMinutes int
	DefaultAdminUsername     string
	InitialAdminPasswordFile string
	AppDebug                 bool

	Database  DatabaseConfig
	Redis     RedisConfig
	Log       LogConfig
	Analytics AnalyticsConfig
	Exports   ExportsConfig
}

// DatabaseConfig configures the relational store. Backend selects the driver;
// Host/Port/User/Password/Name/SSLMode are consulted only for backends that
// use them (postgres today; mysql is accepted as a config value but has no
// wired driver in this build — see DESIGN.md).
type DatabaseConfig struct {
	Backend      DBBackend
	Path         string // sqlite file path, or ":memory:"
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type LogConfig struct {
	Level  string
	Format string
	Dir    string
}

// AnalyticsConfig governs Aggregator-side read caching.
type AnalyticsConfig struct {
	CacheEnabled bool
	CacheTTL     time.Duration
}

// ExportsConfig controls where CSV/PDF exports of already-computed results land.
type ExportsConfig struct {
	StorageDir string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.UploadDir = v.GetString("UPLOAD_DIR")
	cfg.MaxUploadSizeMB = v.GetInt("MAX_UPLOAD_SIZE_MB")
	cfg.AllowedOrigins = splitAndTrim(v.GetString("ALLOWED_ORIGINS"))
	cfg.AccessTokenExpireMinutes = v.GetInt("ACCESS_TOKEN_EXPIRE_MINUTES")
	cfg.DefaultAdminUsername = v.GetString("DEFAULT_ADMIN_USERNAME")
	cfg.InitialAdminPasswordFile = v.GetString("INITIAL_ADMIN_PASSWORD_FILE")
	cfg.AppDebug = v.GetBool("APP_DEBUG")

	cfg.Database = DatabaseConfig{
		Backend:      DBBackend(strings.ToLower(v.GetString("DB_BACKEND"))),
		Path:         v.GetString("DB_PATH"),
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
		Dir:    v.GetString("LOG_DIR"),
	}

	cfg.Analytics = AnalyticsConfig{
		CacheEnabled: v.GetBool("ANALYTICS_CACHE_ENABLED"),
		CacheTTL:     parseDuration(v.GetString("ANALYTICS_CACHE_TTL"), 10*time.Minute),
	}

	cfg.Exports = ExportsConfig{
		StorageDir: v.GetString("EXPORTS_STORAGE_DIR"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("UPLOAD_DIR", "./data/uploads")
	v.SetDefault("MAX_UPLOAD_SIZE_MB", 200)
	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("ACCESS_TOKEN_EXPIRE_MINUTES", 60)
	v.SetDefault("DEFAULT_ADMIN_USERNAME", "admin")
	v.SetDefault("INITIAL_ADMIN_PASSWORD_FILE", "")
	v.SetDefault("APP_DEBUG", false)

	v.SetDefault("DB_BACKEND", "sqlite")
	v.SetDefault("DB_PATH", "./data/analytics.db")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "travel_analytics")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("LOG_DIR", "./data/logs")

	v.SetDefault("ANALYTICS_CACHE_ENABLED", true)
	v.SetDefault("ANALYTICS_CACHE_TTL", "10m")

	v.SetDefault("EXPORTS_STORAGE_DIR", "./data/exports")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
