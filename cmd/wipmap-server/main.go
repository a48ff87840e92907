package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/chevalvert/wipmap-generate/internal/atlas"
	"github.com/chevalvert/wipmap-generate/internal/config"
	"github.com/chevalvert/wipmap-generate/internal/logger"
	"github.com/chevalvert/wipmap-generate/internal/server"
	"github.com/chevalvert/wipmap-generate/pkg/wipmap"
)

func main() {
	cfg := config.DefaultConfig()
	configPath := flag.String("config", "wipmap.json", "JSON config file")

	flag.StringVar(&cfg.Addr, "addr", cfg.Addr, "listen address")
	flag.StringVar(&cfg.DataDir, "data", cfg.DataDir, "data directory for tile files and downloaded options")
	flag.StringVar(&cfg.Options, "options", cfg.Options, "options document: path, URL or any go-getter source")
	flag.IntVar(&cfg.CacheSize, "cache-size", cfg.CacheSize, "tiles kept in memory")
	flag.IntVar(&cfg.Workers, "workers", cfg.Workers, "parallel generations when warming")
	flag.StringVar(&cfg.Warm, "warm", cfg.Warm, "region x0,y0,x1,y1 generated at startup")
	flag.StringVar(&cfg.RedisAddr, "redis", cfg.RedisAddr, "redis address (empty disables the redis layer)")
	flag.IntVar(&cfg.RedisDB, "redis-db", cfg.RedisDB, "redis database")
	flag.DurationVar(&cfg.RedisTTL, "redis-ttl", cfg.RedisTTL, "expiry of cached tiles in redis")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	flag.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "text or json")
	flag.Parse()

	explicit := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { explicit[f.Name] = true })

	fromFile := *cfg
	if err := config.LoadFile(*configPath, &fromFile); err != nil {
		logger.New(cfg.LogLevel, cfg.LogFormat, os.Stderr).Error("load config", "error", err)
		os.Exit(1)
	}
	config.Merge(cfg, &fromFile, explicit)

	config.LoadEnv()
	if err := config.FromEnv(cfg); err != nil {
		logger.New(cfg.LogLevel, cfg.LogFormat, os.Stderr).Error("read environment", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts, err := config.LoadOptions(ctx, cfg.Options, filepath.Join(cfg.DataDir, "options"))
	if err != nil {
		log.Error("load options", "error", err)
		os.Exit(1)
	}
	gen, err := wipmap.NewGenerator(opts, wipmap.WithLogger(log))
	if err != nil {
		log.Error("invalid options", "error", err)
		os.Exit(1)
	}

	store, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Error("open tile store", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	srv := server.New(cfg, atlas.New(gen, store, cfg.CacheSize, log), log)
	if err := srv.Start(ctx); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
