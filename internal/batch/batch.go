// Package batch generates rectangular regions of tiles on a worker pool.
package batch

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/chevalvert/wipmap-generate/pkg/wipmap"
)

// Generator produces one tile. *wipmap.Generator satisfies it.
type Generator interface {
	Generate(x, y float64) (*wipmap.TileMap, error)
}

// Region is an inclusive rectangle of tile coordinates.
type Region struct {
	MinX, MinY, MaxX, MaxY int
}

// ParseRegion reads "x0,y0,x1,y1". Corners may be given in any order.
func ParseRegion(s string) (Region, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return Region{}, fmt.Errorf("region %q: want x0,y0,x1,y1", s)
	}
	var v [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return Region{}, fmt.Errorf("region %q: %w", s, err)
		}
		v[i] = n
	}
	return Region{
		MinX: min(v[0], v[2]),
		MinY: min(v[1], v[3]),
		MaxX: max(v[0], v[2]),
		MaxY: max(v[1], v[3]),
	}, nil
}

// Len returns the number of tiles in r.
func (r Region) Len() int {
	return (r.MaxX - r.MinX + 1) * (r.MaxY - r.MinY + 1)
}

// Result is one generated tile handed to the Run callback.
type Result struct {
	X, Y int
	Tile *wipmap.TileMap
}

// Run generates every tile of region with up to workers goroutines, row by
// row, and calls fn for each. fn may be called concurrently. The first error
// from generation or fn cancels the remaining work and is returned.
func Run(ctx context.Context, gen Generator, region Region, workers int, fn func(context.Context, Result) error) error {
	if workers <= 0 {
		workers = 1
	}

	g, ctx := errgroup.WithContext(ctx)
	jobs := make(chan [2]int, workers*4)

	g.Go(func() error {
		defer close(jobs)
		for y := region.MinY; y <= region.MaxY; y++ {
			for x := region.MinX; x <= region.MaxX; x++ {
				select {
				case jobs <- [2]int{x, y}:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		}
		return nil
	})

	for i := 0; i < workers; i++ {
		g.Go(func() error {
			for j := range jobs {
				if err := ctx.Err(); err != nil {
					return err
				}
				tm, err := gen.Generate(float64(j[0]), float64(j[1]))
				if err != nil {
					return fmt.Errorf("generate tile (%d, %d): %w", j[0], j[1], err)
				}
				if err := fn(ctx, Result{X: j[0], Y: j[1], Tile: tm}); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return g.Wait()
}
