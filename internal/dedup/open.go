package dedup

import (
	"context"
	"log"

	"onlinejobs-scout/internal/config"
	"onlinejobs-scout/internal/database"
)

// Open picks the backend from cfg: PostgreSQL when DatabaseURL is set,
// otherwise the JSON file store, fronted by the Redis seen-cache when
// RedisURL is set. An unreachable Redis is logged and skipped.
// The returned close function releases everything Open created.
func Open(ctx context.Context, cfg *config.Config) (Store, func(), error) {
	var (
		store Store
		err   error
	)
	if cfg.DatabaseURL != "" {
		store, err = database.ConnectDB(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		log.Println("🐘 Connected to PostgreSQL")
	} else {
		store, err = OpenFileStore(cfg.StorePath)
		if err != nil {
			return nil, nil, err
		}
		log.Printf("💾 Using file store %s", cfg.StorePath)
	}

	closers := []func() error{store.Close}
	if cfg.RedisURL != "" {
		rdb, err := NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Printf("⚠️ Redis seen-cache disabled: %v", err)
		} else {
			store = NewSeenCache(store, rdb, cfg.RedisKey)
			closers = append(closers, rdb.Close)
			log.Println("⚡ Redis seen-cache enabled")
		}
	}

	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				log.Printf("⚠️ Close store: %v", err)
			}
		}
	}
	return store, closeAll, nil
}
