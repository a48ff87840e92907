// Package wipmap generates deterministic biome maps for tiles of an
// unbounded plane.
//
// A tile is built in stages: the seed of the tile coordinate drives a set of
// noise climate fields; a jittered site lattice is partitioned into Voronoi
// cells that take their biome from the climate at their site; a blue-noise
// point cloud is classified against those cells with a gradient blend that
// softens borders; finally landmarks are dropped into cells of a required
// biome. Each call owns its random source, so tiles can be generated
// concurrently from one Generator.
package wipmap

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/chevalvert/wipmap-generate/pkg/geom"
	"github.com/chevalvert/wipmap-generate/pkg/poisson"
	"github.com/chevalvert/wipmap-generate/pkg/voronoi"
)

// sampleDomain is the side of the square the point sampler fills before its
// output is scaled onto the tile.
const sampleDomain = 100

// Partitioner computes the planar partition of an ordered site list.
type Partitioner func(sites []geom.Point) (*voronoi.Diagram, error)

// Sampler returns an evenly spaced point set over [0, width) x [0, height).
type Sampler func(width, height, minDistance, maxDistanceMultiplier float64, maxAttempts int, src poisson.Source) []geom.Point

// Generator produces tiles for a fixed, validated option set.
type Generator struct {
	opts      Options
	log       *slog.Logger
	partition Partitioner
	sample    Sampler
	newSource func(seed int64) Source
}

// Option customizes a Generator.
type Option func(*Generator)

// WithLogger makes the generator log each tile at debug level.
func WithLogger(log *slog.Logger) Option {
	return func(g *Generator) { g.log = log }
}

// WithPartitioner replaces the Voronoi partition.
func WithPartitioner(p Partitioner) Option {
	return func(g *Generator) { g.partition = p }
}

// WithSampler replaces the Poisson-disk sampler.
func WithSampler(s Sampler) Option {
	return func(g *Generator) { g.sample = s }
}

// WithSource replaces the per-call random source factory.
func WithSource(f func(seed int64) Source) Option {
	return func(g *Generator) { g.newSource = f }
}

// NewGenerator validates opts and returns a Generator for them.
func NewGenerator(opts Options, options ...Option) (*Generator, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	g := &Generator{
		opts:      opts.clone(),
		partition: voronoi.Compute,
		sample:    poisson.Sample,
		newSource: NewSource,
	}
	for _, o := range options {
		o(g)
	}
	return g, nil
}

// Generate is shorthand for NewGenerator(opts) followed by Generate(x, y).
func Generate(x, y float64, opts Options) (*TileMap, error) {
	g, err := NewGenerator(opts)
	if err != nil {
		return nil, err
	}
	return g.Generate(x, y)
}

// Options returns a copy of the generator's options.
func (g *Generator) Options() Options { return g.opts.clone() }

// Generate builds the tile at (x, y). Equal coordinates and options always
// produce identical tiles.
func (g *Generator) Generate(x, y float64) (*TileMap, error) {
	start := time.Now()
	opts := g.opts

	seed, explicit := Seed(x, y), false
	if opts.Seed != nil {
		seed, explicit = *opts.Seed, true
	}
	src := g.newSource(seed)
	var stats Stats

	climate := newClimate(src, opts, x, y)
	lattice := buildLattice(opts.Width, opts.Height, climate.JitterX, climate.JitterY)

	diagram, err := g.partition(lattice.Points())
	if err != nil {
		return nil, fmt.Errorf("partition tile (%g, %g): %w", x, y, err)
	}
	sites, err := zipPartition(lattice, diagram)
	if err != nil {
		return nil, fmt.Errorf("partition tile (%g, %g): %w", x, y, err)
	}
	cells := classifyCells(sites, diagram, lattice, climate, opts, src, &stats)

	samples := g.samplePoints(opts, src)
	stats.SampledPoints = len(samples)
	points := classifyPoints(samples, newCellIndex(cells), climate, opts, src, &stats)

	landmarks := placeLandmarks(cells, opts.Landmarks, opts.Decimals, src, &stats)

	tm := &TileMap{
		X:            x,
		Y:            y,
		Seed:         seed,
		ExplicitSeed: explicit,
		Width:        opts.Width,
		Height:       opts.Height,
		Decimals:     opts.Decimals,
		Biomes:       cells,
		Points:       points,
		Landmarks:    landmarks,
		Stats:        stats,
	}

	if g.log != nil {
		g.log.Debug("tile generated",
			"x", x,
			"y", y,
			"seed", seed,
			"cells", len(cells),
			"droppedCells", stats.DroppedCells,
			"points", stats.SampledPoints-stats.DiscardedPoints,
			"discardedPoints", stats.DiscardedPoints,
			"duration", time.Since(start),
		)
	}
	return tm, nil
}

// samplePoints fills a sampleDomain square at the configured density and
// scales the result onto the tile.
func (g *Generator) samplePoints(opts Options, src Source) []geom.Point {
	minDistance := 1 / math.Sqrt(opts.PoissonDensity)
	raw := g.sample(sampleDomain, sampleDomain, minDistance, 2, 10, src)

	sx := float64(opts.Width) / sampleDomain
	sy := float64(opts.Height) / sampleDomain
	out := make([]geom.Point, len(raw))
	for i, p := range raw {
		out[i] = geom.Point{X: p.X * sx, Y: p.Y * sy}
	}
	return out
}
