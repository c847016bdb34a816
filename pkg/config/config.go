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

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	CORS     CORSConfig
	Log      LogConfig
	Reports  ReportsConfig

	SiamLegacy PortalConfig
	Siam       PortalConfig
	Epeires    PortalConfig
}

type DatabaseConfig struct {
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

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// PortalConfig holds the connection settings of one upstream portal.
type PortalConfig struct {
	Enabled  bool
	BaseURL  string
	Username string
	Password string
	Timeout  time.Duration
}

// ReportsConfig configures asynchronous report generation.
type ReportsConfig struct {
	StorageDir      string
	SignedURLSecret string
	SignedURLTTL    time.Duration
	CacheTTL        time.Duration
	QueueSize       int
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

	cfg.Database = DatabaseConfig{
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

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Reports = ReportsConfig{
		StorageDir:      v.GetString("REPORTS_STORAGE_DIR"),
		SignedURLSecret: v.GetString("REPORTS_SIGNED_URL_SECRET"),
		SignedURLTTL:    parseDuration(v.GetString("REPORTS_SIGNED_URL_TTL"), 24*time.Hour),
		CacheTTL:        parseDuration(v.GetString("REPORTS_CACHE_TTL"), 10*time.Minute),
		QueueSize:       v.GetInt("REPORTS_QUEUE_SIZE"),
	}

	cfg.SiamLegacy = portalConfig(v, "SIAM_LEGACY")
	cfg.Siam = portalConfig(v, "SIAM")
	cfg.Epeires = portalConfig(v, "EPEIRES")

	return cfg, nil
}

func portalConfig(v *viper.Viper, prefix string) PortalConfig {
	return PortalConfig{
		Enabled:  v.GetBool(prefix + "_ENABLED"),
		BaseURL:  v.GetString(prefix + "_URL"),
		Username: v.GetString(prefix + "_USER"),
		Password: v.GetString(prefix + "_PASSWORD"),
		Timeout:  parseDuration(v.GetString(prefix+"_TIMEOUT"), 30*time.Second),
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "qstreport")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("REPORTS_STORAGE_DIR", "./exports")
	v.SetDefault("REPORTS_SIGNED_URL_SECRET", "dev_reports_secret")
	v.SetDefault("REPORTS_SIGNED_URL_TTL", "24h")
	v.SetDefault("REPORTS_CACHE_TTL", "10m")
	v.SetDefault("REPORTS_QUEUE_SIZE", 16)

	v.SetDefault("SIAM_LEGACY_ENABLED", false)
	v.SetDefault("SIAM_LEGACY_URL", "https://siam.tech.cana.ri")
	v.SetDefault("SIAM_LEGACY_USER", "")
	v.SetDefault("SIAM_LEGACY_PASSWORD", "")
	v.SetDefault("SIAM_LEGACY_TIMEOUT", "30s")

	v.SetDefault("SIAM_ENABLED", true)
	v.SetDefault("SIAM_URL", "https://siam5.tech.cana.ri")
	v.SetDefault("SIAM_USER", "")
	v.SetDefault("SIAM_PASSWORD", "")
	v.SetDefault("SIAM_TIMEOUT", "30s")

	v.SetDefault("EPEIRES_ENABLED", true)
	v.SetDefault("EPEIRES_URL", "http://epeires.cdg-lb.aviation")
	v.SetDefault("EPEIRES_USER", "")
	v.SetDefault("EPEIRES_PASSWORD", "")
	v.SetDefault("EPEIRES_TIMEOUT", "30s")
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
