package cache

import (
	"context"
	"time"

	"InvKeeper/internal/cache/local"
	cacheredis "InvKeeper/internal/cache/redis"
)

// Store — минимальное KV с TTL. Используется как список отозванных сессий.
type Store interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Exists(ctx context.Context, key string) (bool, error)
	Del(ctx context.Context, keys ...string) error
	Close() error
}

// Config — настройки Redis и локального кэша.
type Config struct {
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	LocalGCInterval time.Duration
}

// NewStore возвращает Redis-хранилище, если задан RedisAddr, иначе: in-process LocalCache.
// Redis нужен, когда серверов несколько: отзыв токена должен быть виден всем.
func NewStore(cfg Config) (Store, error) {
	if cfg.RedisAddr != "" {
		return cacheredis.NewCache(cacheredis.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
	}
	return local.NewCache(local.Config{GCInterval: cfg.LocalGCInterval})
}
