package config

import (
	"errors"
	"io/fs"
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

	Database    DatabaseConfig
	Redis       RedisConfig
	JWT         JWTConfig
	CORS        CORSConfig
	Log         LogConfig
	Feasibility FeasibilityConfig
	Timing      TimingConfig
	Export      ExportConfig
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
	Secret string
	Issuer string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// FeasibilityConfig tunes the validation engine and its report cache.
type FeasibilityConfig struct {
	CacheEnabled bool
	CacheTTL     time.Duration
	// EdgeCapacityDefault is the weekly first/last period cap assumed for uncapped
	// teachers. Zero means one per active day.
	EdgeCapacityDefault int
	DensityThreshold    float64
	RevalidateWorkers   int
	RevalidateRetries   int
}

// ExportConfig controls archived report files and their download links.
type ExportConfig struct {
	Dir             string
	SigningSecret   string
	LinkTTL         time.Duration
	CleanupInterval time.Duration
}

// TimingConfig holds the school week used until an administrator saves one.
type TimingConfig struct {
	DefaultActiveDays    []string
	DefaultPeriodsPerDay int
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
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
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
		Secret: v.GetString("JWT_SECRET"),
		Issuer: v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	threshold := v.GetFloat64("FEASIBILITY_DENSITY_THRESHOLD")
	if threshold <= 0 || threshold > 1 {
		threshold = 0.4
	}
	workers := v.GetInt("FEASIBILITY_REVALIDATE_WORKERS")
	if workers <= 0 {
		workers = 1
	}
	cfg.Feasibility = FeasibilityConfig{
		CacheEnabled:        v.GetBool("ENABLE_FEASIBILITY_CACHE"),
		CacheTTL:            parseDuration(v.GetString("FEASIBILITY_CACHE_TTL"), 10*time.Minute),
		EdgeCapacityDefault: max(0, v.GetInt("FEASIBILITY_EDGE_CAPACITY_DEFAULT")),
		DensityThreshold:    threshold,
		RevalidateWorkers:   workers,
		RevalidateRetries:   max(0, v.GetInt("FEASIBILITY_REVALIDATE_RETRIES")),
	}

	periods := v.GetInt("DEFAULT_PERIODS_PER_DAY")
	if periods <= 0 {
		periods = 7
	}
	cfg.Timing = TimingConfig{
		DefaultActiveDays:    lowerAll(splitAndTrim(v.GetString("DEFAULT_ACTIVE_DAYS"))),
		DefaultPeriodsPerDay: periods,
	}

	cfg.Export = ExportConfig{
		Dir:             v.GetString("EXPORT_DIR"),
		SigningSecret:   v.GetString("EXPORT_SIGNING_SECRET"),
		LinkTTL:         parseDuration(v.GetString("EXPORT_LINK_TTL"), 24*time.Hour),
		CleanupInterval: parseDuration(v.GetString("EXPORT_CLEANUP_INTERVAL"), time.Hour),
	}
	if cfg.Export.SigningSecret == "" {
		cfg.Export.SigningSecret = cfg.JWT.Secret
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "sma_timetable")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_ISSUER", "")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENABLE_FEASIBILITY_CACHE", true)
	v.SetDefault("FEASIBILITY_CACHE_TTL", "10m")
	v.SetDefault("FEASIBILITY_EDGE_CAPACITY_DEFAULT", 0)
	v.SetDefault("FEASIBILITY_DENSITY_THRESHOLD", 0.4)
	v.SetDefault("FEASIBILITY_REVALIDATE_WORKERS", 1)
	v.SetDefault("FEASIBILITY_REVALIDATE_RETRIES", 2)

	v.SetDefault("DEFAULT_ACTIVE_DAYS", "sunday,monday,tuesday,wednesday,thursday")
	v.SetDefault("DEFAULT_PERIODS_PER_DAY", 7)

	v.SetDefault("EXPORT_DIR", "./exports")
	v.SetDefault("EXPORT_SIGNING_SECRET", "")
	v.SetDefault("EXPORT_LINK_TTL", "24h")
	v.SetDefault("EXPORT_CLEANUP_INTERVAL", "1h")
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

func lowerAll(values []string) []string {
	for i, value := range values {
		values[i] = strings.ToLower(value)
	}
	return values
}
