// Package config loads application configuration from the environment, with
// an optional .env file for local development.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config carries every tunable the server needs.
type Config struct {
	Port string
	Env  string

	DBHost            string
	DBPort            string
	DBUser            string
	DBPassword        string
	DBName            string
	DBSSLMode         string
	DBMaxIdleConns    int
	DBMaxOpenConns    int
	DBConnMaxLifetime time.Duration

	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	JWTSecret     string
	RefreshSecret string
}

// Load reads the environment (and .env, when present) into a Config.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port: GetEnv("PORT", "3000"),
		Env:  GetEnv("ENV", "development"),

		DBHost:            GetEnv("DB_HOST", "localhost"),
		DBPort:            GetEnv("DB_PORT", "5432"),
		DBUser:            GetEnv("DB_USER", "postgres"),
		DBPassword:        GetEnv("DB_PASSWORD", "postgres"),
		DBName:            GetEnv("DB_NAME", "centavo"),
		DBSSLMode:         GetEnv("DB_SSLMODE", "disable"),
		DBMaxIdleConns:    GetIntEnv("DB_MAX_IDLE_CONNS", 10),
		DBMaxOpenConns:    GetIntEnv("DB_MAX_OPEN_CONNS", 100),
		DBConnMaxLifetime: GetDurationEnv("DB_CONN_MAX_LIFETIME", time.Hour),

		RedisHost:     GetEnv("REDIS_HOST", "localhost"),
		RedisPort:     GetEnv("REDIS_PORT", "6379"),
		RedisPassword: GetEnv("REDIS_PASSWORD", ""),
		RedisDB:       GetIntEnv("REDIS_DB", 0),

		JWTSecret:     GetEnv("JWT_SECRET", "centavo-dev-secret"),
		RefreshSecret: GetEnv("REFRESH_SECRET", "centavo-dev-refresh"),
	}
}

// IsProduction checks if the app runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// GetEnv returns an environment variable or a default value.
func GetEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return defaultVal
}

// GetIntEnv returns an int environment variable or a default value.
func GetIntEnv(key string, defaultVal int) int {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

// GetDurationEnv returns a duration environment variable or a default value.
func GetDurationEnv(key string, defaultVal time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
