// Package atlas serves encoded tiles. Concurrent requests for one tile share
// a single generation; finished tiles are kept in memory and persisted to an
// optional store.
package atlas

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/chevalvert/wipmap-generate/internal/batch"
	"github.com/chevalvert/wipmap-generate/internal/metrics"
	"github.com/chevalvert/wipmap-generate/internal/storage"
	"github.com/chevalvert/wipmap-generate/pkg/wipmap"
)

// Atlas is a read-through tile cache over a generator. The in-memory layer
// holds up to capacity documents and evicts the oldest first.
type Atlas struct {
	gen         *wipmap.Generator
	store       storage.Store
	log         *slog.Logger
	fingerprint uint64
	flight      singleflight.Group

	mu       sync.RWMutex
	tiles    map[storage.Key][]byte
	order    []storage.Key
	capacity int
}

// New creates an Atlas. store may be nil; capacity <= 0 disables the
// in-memory layer.
func New(gen *wipmap.Generator, store storage.Store, capacity int, log *slog.Logger) *Atlas {
	return &Atlas{
		gen:         gen,
		store:       store,
		log:         log,
		fingerprint: gen.Options().Fingerprint(),
		tiles:       make(map[storage.Key][]byte),
		capacity:    capacity,
	}
}

// Options returns the generation options tiles are built with.
func (a *Atlas) Options() wipmap.Options { return a.gen.Options() }

// Key returns the storage key of tile (x, y).
func (a *Atlas) Key(x, y float64) storage.Key {
	return storage.Key{X: x, Y: y, Fingerprint: a.fingerprint}
}

// Tile returns the encoded tile at (x, y), generating and storing it if no
// layer has it yet.
func (a *Atlas) Tile(ctx context.Context, x, y float64) ([]byte, error) {
	key := a.Key(x, y)

	if doc, ok := a.cached(key); ok {
		metrics.CacheHitsTotal.WithLabelValues("memory").Inc()
		return doc, nil
	}
	metrics.CacheMissesTotal.WithLabelValues("memory").Inc()

	v, err, _ := a.flight.Do(key.String(), func() (any, error) {
		// A flight for key may have finished since the check above.
		if doc, ok := a.cached(key); ok {
			return doc, nil
		}
		return a.load(ctx, key, x, y)
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

func (a *Atlas) cached(key storage.Key) ([]byte, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	doc, ok := a.tiles[key]
	return doc, ok
}

// load reads key from the store, generating and persisting the tile when
// the store lacks it.
func (a *Atlas) load(ctx context.Context, key storage.Key, x, y float64) ([]byte, error) {
	if a.store != nil {
		doc, ok, err := a.store.Get(ctx, key)
		if err != nil {
			a.log.Warn("tile store read failed", "key", key.String(), "error", err)
		} else if ok {
			return a.remember(key, doc), nil
		}
	}

	tm, err := a.generate(x, y)
	if err != nil {
		return nil, err
	}
	doc, err := json.Marshal(tm)
	if err != nil {
		return nil, fmt.Errorf("encode tile (%g, %g): %w", x, y, err)
	}
	a.persist(ctx, key, doc)
	return a.remember(key, doc), nil
}

// Warm generates every tile of region into the store and memory layers.
func (a *Atlas) Warm(ctx context.Context, region batch.Region, workers int) error {
	start := time.Now()
	err := batch.Run(ctx, a, region, workers, func(ctx context.Context, r batch.Result) error {
		doc, err := json.Marshal(r.Tile)
		if err != nil {
			return fmt.Errorf("encode tile (%d, %d): %w", r.X, r.Y, err)
		}
		key := a.Key(float64(r.X), float64(r.Y))
		a.persist(ctx, key, doc)
		a.remember(key, doc)
		return nil
	})
	if err != nil {
		return err
	}
	a.log.Info("atlas warmed", "tiles", region.Len(), "duration", time.Since(start))
	return nil
}

// Generate runs the generator and records its metrics. It lets an Atlas act
// as a batch.Generator.
func (a *Atlas) Generate(x, y float64) (*wipmap.TileMap, error) {
	return a.generate(x, y)
}

func (a *Atlas) generate(x, y float64) (*wipmap.TileMap, error) {
	start := time.Now()
	tm, err := a.gen.Generate(x, y)
	if err != nil {
		metrics.GenerateErrorsTotal.Inc()
		return nil, err
	}
	metrics.TilesGeneratedTotal.Inc()
	metrics.GenerateDurationMs.Observe(float64(time.Since(start).Milliseconds()))
	metrics.DroppedCellsTotal.Add(float64(tm.Stats.DroppedCells))
	metrics.DiscardedPointsTotal.Add(float64(tm.Stats.DiscardedPoints))
	metrics.DroppedLandmarksTotal.Add(float64(tm.Stats.DroppedLandmarks))
	return tm, nil
}

func (a *Atlas) persist(ctx context.Context, key storage.Key, doc []byte) {
	if a.store == nil {
		return
	}
	if err := a.store.Put(ctx, key, doc); err != nil {
		a.log.Warn("tile store write failed", "key", key.String(), "error", err)
	}
}

// remember caches doc and returns the cached copy, which is the first
// document stored for key if another goroutine got there first.
func (a *Atlas) remember(key storage.Key, doc []byte) []byte {
	if a.capacity <= 0 {
		return doc
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	// Double-check after acquiring write lock.
	if existing, ok := a.tiles[key]; ok {
		return existing
	}
	if len(a.order) >= a.capacity {
		delete(a.tiles, a.order[0])
		a.order = a.order[1:]
	}
	a.tiles[key] = doc
	a.order = append(a.order, key)
	return doc
}

// Len returns the number of tiles held in memory.
func (a *Atlas) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.tiles)
}
