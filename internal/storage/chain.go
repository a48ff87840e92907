package storage

import (
	"context"
	"errors"
	"log/slog"

	"github.com/chevalvert/wipmap-generate/internal/metrics"
)

// Layer is a named Store inside a Chain.
type Layer struct {
	Name  string
	Store Store
}

// Chain reads through its layers in order and backfills the faster layers
// on a hit. Writes go to every layer. A failing layer is logged and skipped
// on read; on write all errors are joined.
type Chain struct {
	layers []Layer
	log    *slog.Logger
}

// NewChain returns a Chain over layers, ignoring those with a nil Store.
func NewChain(log *slog.Logger, layers ...Layer) *Chain {
	c := &Chain{log: log}
	for _, l := range layers {
		if l.Store != nil {
			c.layers = append(c.layers, l)
		}
	}
	return c
}

// Len returns the number of active layers.
func (c *Chain) Len() int { return len(c.layers) }

func (c *Chain) Get(ctx context.Context, key Key) ([]byte, bool, error) {
	for i, l := range c.layers {
		doc, ok, err := l.Store.Get(ctx, key)
		if err != nil {
			metrics.StoreErrorsTotal.WithLabelValues(l.Name, "get").Inc()
			c.log.Warn("tile store read failed", "layer", l.Name, "key", key.String(), "error", err)
			continue
		}
		if !ok {
			metrics.CacheMissesTotal.WithLabelValues(l.Name).Inc()
			continue
		}
		metrics.CacheHitsTotal.WithLabelValues(l.Name).Inc()
		for _, up := range c.layers[:i] {
			if err := up.Store.Put(ctx, key, doc); err != nil {
				metrics.StoreErrorsTotal.WithLabelValues(up.Name, "put").Inc()
				c.log.Warn("tile store backfill failed", "layer", up.Name, "key", key.String(), "error", err)
			}
		}
		return doc, true, nil
	}
	return nil, false, nil
}

func (c *Chain) Put(ctx context.Context, key Key, doc []byte) error {
	var errs []error
	for _, l := range c.layers {
		if err := l.Store.Put(ctx, key, doc); err != nil {
			metrics.StoreErrorsTotal.WithLabelValues(l.Name, "put").Inc()
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
