package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/chevalvert/wipmap-generate/internal/config"
	"github.com/chevalvert/wipmap-generate/internal/storage"
)

// openStore layers redis over postgres over the data directory, skipping
// the layers that are not configured.
func openStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (storage.Store, func(), error) {
	var layers []storage.Layer
	closers := []func(){}
	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}

	if rc := storage.OpenRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB); rc != nil {
		if err := rc.Ping(ctx).Err(); err != nil {
			log.Warn("redis unavailable, layer disabled", "addr", cfg.RedisAddr, "error", err)
			rc.Close()
		} else {
			closers = append(closers, func() { rc.Close() })
			layers = append(layers, storage.Layer{Name: "redis", Store: storage.NewRedisStore(rc, "wipmap:", cfg.RedisTTL)})
		}
	}

	if cfg.PostgresDSN != "" {
		db, err := storage.OpenPostgres(cfg.PostgresDSN)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		gs := storage.NewGormStore(db)
		if err := gs.Migrate(ctx); err != nil {
			closeAll()
			return nil, nil, err
		}
		if sqlDB, err := db.DB(); err == nil {
			closers = append(closers, func() { sqlDB.Close() })
		}
		layers = append(layers, storage.Layer{Name: "postgres", Store: gs})
	}

	fs, err := storage.NewFileStore(cfg.DataDir, log)
	if err != nil {
		closeAll()
		return nil, nil, fmt.Errorf("file store: %w", err)
	}
	layers = append(layers, storage.Layer{Name: "file", Store: fs})

	chain := storage.NewChain(log, layers...)
	log.Info("tile store ready", "layers", chain.Len())
	return chain, closeAll, nil
}
