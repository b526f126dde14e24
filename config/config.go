// Package config reads service settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// DSN is the lib/pq connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Database, d.SSLMode)
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type KafkaConfig struct {
	Brokers     []string
	AlertsTopic string
}

type ForecastConfig struct {
	Workers  int
	Seed     int64
	Trees    int
	MaxDepth int
	CacheTTL time.Duration
}

type Config struct {
	HTTPAddr string
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Forecast ForecastConfig

	Log struct {
		Level  string
		Format string
	}
}

// Load builds a Config from environment variables, falling back to defaults
// for anything unset or unparsable.
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.HTTPAddr = getEnv("HTTP_ADDR", ":8080")

	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = getEnvInt("DB_PORT", 5432)
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "water_quality")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = getEnvInt("REDIS_DB", 0)

	cfg.Kafka.Brokers = splitList(getEnv("KAFKA_BROKERS", ""))
	cfg.Kafka.AlertsTopic = getEnv("ALERTS_TOPIC", "water-quality-alerts")

	cfg.Forecast.Workers = getEnvInt("FORECAST_WORKERS", 0)
	cfg.Forecast.Seed = int64(getEnvInt("FORECAST_SEED", 42))
	cfg.Forecast.Trees = getEnvInt("FORECAST_TREES", 100)
	cfg.Forecast.MaxDepth = getEnvInt("FORECAST_MAX_DEPTH", 10)
	cfg.Forecast.CacheTTL = getEnvDuration("FORECAST_CACHE_TTL", 10*time.Minute)

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	if cfg.Forecast.Trees < 1 {
		return nil, fmt.Errorf("FORECAST_TREES must be positive, got %d", cfg.Forecast.Trees)
	}
	if cfg.Forecast.MaxDepth < 1 {
		return nil, fmt.Errorf("FORECAST_MAX_DEPTH must be positive, got %d", cfg.Forecast.MaxDepth)
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return v
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if d, err := time.ParseDuration(getEnv(key, "")); err == nil && d > 0 {
		return d
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
