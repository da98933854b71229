package cache

import (
	"fmt"

	"centavo/internal/config"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient builds a Redis client from application config.
func NewRedisClient(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
}
