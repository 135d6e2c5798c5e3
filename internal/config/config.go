package config

import (
	"os"
	"strconv"
	"time"

	"content-api/internal/db"
)

// Config holds all configuration for the application
type Config struct {
	HTTPAddr        string
	ShutdownTimeout time.Duration

	JWTSecret string

	DB    db.Config
	Redis db.RedisConfig
}

func Load() *Config {
	return &Config{
		// Server
		HTTPAddr:        getEnvString("HTTP_ADDR", ":8080"),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),

		// JWT
		JWTSecret: getEnvString("JWT_SECRET", "insecure-default-secret-change-this"), // default value for dev

		// Database
		DB: db.Config{
			Host:     getEnvString("DB_HOST", "localhost"),
			Port:     getEnvString("DB_PORT", "5432"),
			User:     getEnvString("DB_USER", "postgres"),
			Password: getEnvString("DB_PASSWORD", "postgres"),
			DBName:   getEnvString("DB_NAME", "content"),

			MaxConns:        getEnvInt32("DB_MAX_CONNS", 10),
			MinConns:        getEnvInt32("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvDuration("DB_MAX_CONN_LIFETIME", time.Hour),
			MaxConnIdleTime: getEnvDuration("DB_MAX_CONN_IDLE_TIME", 30*time.Minute),
			ConnectTimeout:  getEnvDuration("DB_CONNECT_TIMEOUT", 5*time.Second),
		},

		// Redis
		Redis: db.RedisConfig{
			Addr:     getEnvString("REDIS_ADDR", "localhost:6379"),
			Password: getEnvString("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
	}
}

func getEnvString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvInt32(key string, fallback int32) int32 {
	return int32(getEnvInt(key, int(fallback)))
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
