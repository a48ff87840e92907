package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/chevalvert/wipmap-generate/internal/batch"
	"github.com/chevalvert/wipmap-generate/internal/config"
	"github.com/chevalvert/wipmap-generate/internal/logger"
	"github.com/chevalvert/wipmap-generate/internal/storage"
	"github.com/chevalvert/wipmap-generate/pkg/wipmap"
)

func main() {
	var (
		out      = flag.String("o", "", "output file (default stdout)")
		options  = flag.String("options", "", "options document: path, URL or any go-getter source")
		seed     = flag.Int64("seed", -1, "explicit seed (default derived from x and y)")
		pretty   = flag.Bool("pretty", false, "indent JSON output")
		region   = flag.String("region", "", "generate a region x0,y0,x1,y1 instead of one tile")
		outDir   = flag.String("out-dir", "tiles", "output directory for -region")
		workers  = flag.Int("workers", 4, "parallel generations for -region")
		cacheDir = flag.String("cache-dir", filepath.Join(os.TempDir(), "wipmap"), "download directory for -options")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: wipmap [flags] x y\n       wipmap [flags] -region x0,y0,x1,y1\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	config.LoadEnv()
	log := logger.New(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"), os.Stderr)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts, err := config.LoadOptions(ctx, *options, *cacheDir)
	if err != nil {
		log.Error("load options", "error", err)
		os.Exit(1)
	}
	if *seed >= 0 {
		opts.Seed = seed
	}

	gen, err := wipmap.NewGenerator(opts, wipmap.WithLogger(log))
	if err != nil {
		log.Error("invalid options", "error", err)
		os.Exit(2)
	}

	if *region != "" {
		if err := runRegion(ctx, gen, *region, *outDir, *workers, log); err != nil {
			log.Error("generate region", "error", err)
			os.Exit(1)
		}
		return
	}

	if flag.NArg() != 2 {
		flag.Usage()
		os.Exit(2)
	}
	x, errX := strconv.ParseFloat(flag.Arg(0), 64)
	y, errY := strconv.ParseFloat(flag.Arg(1), 64)
	if errX != nil || errY != nil {
		log.Error("tile coordinates must be numbers", "x", flag.Arg(0), "y", flag.Arg(1))
		os.Exit(2)
	}

	start := time.Now()
	tm, err := gen.Generate(x, y)
	if err != nil {
		log.Error("generate tile", "x", x, "y", y, "error", err)
		os.Exit(1)
	}
	doc, err := encode(tm, *pretty)
	if err != nil {
		log.Error("encode tile", "error", err)
		os.Exit(1)
	}

	if *out == "" {
		os.Stdout.Write(doc)
	} else if err := writeFile(*out, doc); err != nil {
		log.Error("write tile", "path", *out, "error", err)
		os.Exit(1)
	}
	log.Info("tile written",
		"x", x,
		"y", y,
		"seed", tm.Seed,
		"cells", len(tm.Biomes),
		"points", tm.Count(),
		"duration", time.Since(start),
	)
}

// runRegion writes every tile of the region into a file store under dir.
func runRegion(ctx context.Context, gen *wipmap.Generator, arg, dir string, workers int, log *slog.Logger) error {
	r, err := batch.ParseRegion(arg)
	if err != nil {
		return err
	}
	store, err := storage.NewFileStore(dir, log)
	if err != nil {
		return err
	}
	fingerprint := gen.Options().Fingerprint()

	start := time.Now()
	err = batch.Run(ctx, gen, r, workers, func(ctx context.Context, res batch.Result) error {
		doc, err := json.Marshal(res.Tile)
		if err != nil {
			return fmt.Errorf("encode tile (%d, %d): %w", res.X, res.Y, err)
		}
		key := storage.Key{X: float64(res.X), Y: float64(res.Y), Fingerprint: fingerprint}
		return store.Put(ctx, key, doc)
	})
	if err != nil {
		return err
	}
	log.Info("region written", "tiles", r.Len(), "dir", dir, "duration", time.Since(start))
	return nil
}

func encode(tm *wipmap.TileMap, pretty bool) ([]byte, error) {
	doc, err := json.Marshal(tm)
	if err != nil {
		return nil, err
	}
	if pretty {
		var buf bytes.Buffer
		if err := json.Indent(&buf, doc, "", "  "); err != nil {
			return nil, err
		}
		doc = buf.Bytes()
	}
	return append(doc, '\n'), nil
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return os.WriteFile(path, data, 0o644)
}
