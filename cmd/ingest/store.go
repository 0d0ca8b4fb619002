package main

import (
	"digests-ingest/core/interfaces"
	"digests-ingest/infrastructure/cache/memory"
	"digests-ingest/infrastructure/cache/redis"
	"digests-ingest/infrastructure/cache/sqlite"
	"digests-ingest/pkg/config"
)

// newStore opens the TTL store named by cfg.Cache.Type.
// A Redis store that cannot be reached falls back to memory.
func newStore(cfg *config.Config, logger interfaces.Logger) (interfaces.Cache, func(), error) {
	switch cfg.Cache.Type {
	case config.StoreRedis:
		redisCache, err := redis.NewRedisCache(cfg.Cache.Redis)
		if err != nil {
			logger.Error("Failed to create Redis cache, falling back to memory", map[string]interface{}{
				"error": err.Error(),
			})
			return memory.NewMemoryCacheWithCleanup(cfg.Cache.Memory.CleanupInterval), func() {}, nil
		}
		logger.Info("Using Redis cache", map[string]interface{}{
			"address": cfg.Cache.Redis.Address,
		})
		return redisCache, func() { _ = redisCache.Close() }, nil

	case config.StoreSQLite:
		sqliteCache, err := sqlite.NewSQLiteCache(cfg.Cache.SQLite.Path)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Using SQLite cache", map[string]interface{}{
			"path": cfg.Cache.SQLite.Path,
		})
		return sqliteCache, func() { _ = sqliteCache.Close() }, nil

	default:
		logger.Info("Using memory cache", nil)
		return memory.NewMemoryCacheWithCleanup(cfg.Cache.Memory.CleanupInterval), func() {}, nil
	}
}
