package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the tile server and CLI configuration.
type Config struct {
	Addr      string `json:"addr"`
	DataDir   string `json:"data_dir"`
	Options   string `json:"options"`    // go-getter source of an options document
	CacheSize int    `json:"cache_size"` // tiles kept in memory (0 = none)
	Workers   int    `json:"workers"`
	Warm      string `json:"warm"` // region generated at startup, "x0,y0,x1,y1"

	RedisAddr     string        `json:"redis_addr"`
	RedisPassword string        `json:"-"`
	RedisDB       int           `json:"redis_db"`
	RedisTTL      time.Duration `json:"redis_ttl"`
	PostgresDSN   string        `json:"-"`

	LogLevel  string `json:"log_level"`
	LogFormat string `json:"log_format"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Addr:      ":8080",
		DataDir:   "data",
		CacheSize: 1024,
		Workers:   4,
		RedisTTL:  24 * time.Hour,
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// LoadFile reads a JSON config file into cfg. A missing file leaves cfg
// unchanged.
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

// Merge applies file-loaded config values into cfg, but only for fields
// that were NOT explicitly set via CLI flags. explicitFlags contains the
// flag names that were explicitly provided on the command line.
func Merge(cfg *Config, fromFile *Config, explicitFlags map[string]bool) {
	if !explicitFlags["addr"] {
		cfg.Addr = fromFile.Addr
	}
	if !explicitFlags["data"] {
		cfg.DataDir = fromFile.DataDir
	}
	if !explicitFlags["options"] {
		cfg.Options = fromFile.Options
	}
	if !explicitFlags["cache-size"] {
		cfg.CacheSize = fromFile.CacheSize
	}
	if !explicitFlags["workers"] {
		cfg.Workers = fromFile.Workers
	}
	if !explicitFlags["warm"] {
		cfg.Warm = fromFile.Warm
	}
	if !explicitFlags["redis"] {
		cfg.RedisAddr = fromFile.RedisAddr
	}
	if !explicitFlags["redis-db"] {
		cfg.RedisDB = fromFile.RedisDB
	}
	if !explicitFlags["redis-ttl"] {
		cfg.RedisTTL = fromFile.RedisTTL
	}
	if !explicitFlags["log-level"] {
		cfg.LogLevel = fromFile.LogLevel
	}
	if !explicitFlags["log-format"] {
		cfg.LogFormat = fromFile.LogFormat
	}
}

// LoadEnv loads a .env file from the working directory if there is one.
func LoadEnv() {
	_ = godotenv.Load(".env")
}

// FromEnv overrides cfg with the environment. Secrets are only ever read
// from here. Malformed numbers are reported, not ignored.
func FromEnv(cfg *Config) error {
	str := func(name string, dst *string) {
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}
	str("WIPMAP_ADDR", &cfg.Addr)
	str("WIPMAP_DATA_DIR", &cfg.DataDir)
	str("WIPMAP_OPTIONS", &cfg.Options)
	str("WIPMAP_WARM", &cfg.Warm)
	str("REDIS_ADDR", &cfg.RedisAddr)
	str("REDIS_PASS", &cfg.RedisPassword)
	str("PG_DSN", &cfg.PostgresDSN)
	str("LOG_LEVEL", &cfg.LogLevel)
	str("LOG_FORMAT", &cfg.LogFormat)

	ints := []struct {
		name string
		dst  *int
	}{
		{"WIPMAP_CACHE_SIZE", &cfg.CacheSize},
		{"WIPMAP_WORKERS", &cfg.Workers},
		{"REDIS_DB", &cfg.RedisDB},
	}
	for _, e := range ints {
		v := os.Getenv(e.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse %s: %w", e.name, err)
		}
		*e.dst = n
	}

	if v := os.Getenv("REDIS_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse REDIS_TTL: %w", err)
		}
		cfg.RedisTTL = d
	}
	return nil
}
