package wipmap

import (
	"math"
	"slices"

	"github.com/chevalvert/wipmap-generate/pkg/geom"
)

// cellIndex buckets cells on a unit grid by bounding box so a lookup only
// runs polygon tests against nearby cells. Buckets keep cell order, so a
// lookup returns the same cell a linear scan would.
type cellIndex struct {
	cells   []BiomeCell
	bounds  geom.Rect
	cols    int
	rows    int
	buckets [][]int
}

func newCellIndex(cells []BiomeCell) *cellIndex {
	idx := &cellIndex{cells: cells, bounds: geom.Bounds(nil)}
	for _, c := range cells {
		idx.bounds = idx.bounds.Union(c.bounds)
	}
	if idx.bounds.Empty() {
		return idx
	}
	idx.cols = int(math.Floor(idx.bounds.Max.X-idx.bounds.Min.X)) + 1
	idx.rows = int(math.Floor(idx.bounds.Max.Y-idx.bounds.Min.Y)) + 1
	idx.buckets = make([][]int, idx.cols*idx.rows)
	for i, c := range cells {
		c0, r0 := idx.bucket(c.bounds.Min)
		c1, r1 := idx.bucket(c.bounds.Max)
		for r := r0; r <= r1; r++ {
			for col := c0; col <= c1; col++ {
				idx.buckets[r*idx.cols+col] = append(idx.buckets[r*idx.cols+col], i)
			}
		}
	}
	return idx
}

func (idx *cellIndex) bucket(p geom.Point) (col, row int) {
	col = int(math.Floor(p.X - idx.bounds.Min.X))
	row = int(math.Floor(p.Y - idx.bounds.Min.Y))
	return min(max(col, 0), idx.cols-1), min(max(row, 0), idx.rows-1)
}

// find returns the first cell containing p.
func (idx *cellIndex) find(p geom.Point) (*BiomeCell, bool) {
	if idx.bounds.Empty() || !idx.bounds.Contains(p) {
		return nil, false
	}
	col, row := idx.bucket(p)
	for _, i := range idx.buckets[row*idx.cols+col] {
		if idx.cells[i].Contains(p) {
			return &idx.cells[i], true
		}
	}
	return nil, false
}

// CellAt returns the first cell in cells whose polygon contains p.
func CellAt(cells []BiomeCell, p geom.Point) (BiomeCell, bool) {
	for _, c := range cells {
		if c.Contains(p) {
			return c, true
		}
	}
	return BiomeCell{}, false
}

// dilute applies the water rules to a gradient-blended lookup. A gradient
// may not carry land into a lake nor water out of one; every other
// disagreement goes to the gradiented cell.
func dilute(parent, gradiented BiomeType) BiomeType {
	switch {
	case gradiented != Water && parent == Water:
		return Water
	case gradiented == Water && parent != Water:
		return parent
	}
	return gradiented
}

type classifiedPoint struct {
	p geom.Point
	t BiomeType
}

// classifyPoints resolves the biome of every sample. Each point is looked up
// twice: at its distorted position (parent) and at that position shifted by
// a small gradient (gradiented); dilute settles the result. Points with no
// enclosing cell for either lookup are discarded.
func classifyPoints(samples []geom.Point, idx *cellIndex, climate Climate, opts Options, src Source, stats *Stats) map[BiomeType][]geom.Point {
	classified := make([]classifiedPoint, 0, len(samples))
	for _, p := range samples {
		distortion := geom.Point{X: climate.DistortionX(p.X, p.Y), Y: climate.DistortionY(p.X, p.Y)}

		var gradient geom.Point
		if opts.GradientField {
			gradient = geom.Point{X: climate.GradientX(p.X, p.Y), Y: climate.GradientY(p.X, p.Y)}
		} else {
			gradient.X = randomFloat(src, -opts.Gradient, opts.Gradient)
			gradient.Y = randomFloat(src, -opts.Gradient, opts.Gradient)
		}

		at := p.Add(distortion)
		parent, ok := idx.find(at)
		if !ok {
			stats.DiscardedPoints++
			continue
		}
		gradiented, ok := idx.find(at.Add(gradient))
		if !ok {
			stats.DiscardedPoints++
			continue
		}

		classified = append(classified, classifiedPoint{
			p: geom.Point{X: round(p.X, opts.Decimals), Y: round(p.Y, opts.Decimals)},
			t: dilute(parent.Type, gradiented.Type),
		})
	}

	slices.SortStableFunc(classified, func(a, b classifiedPoint) int {
		switch {
		case a.p.Y < b.p.Y:
			return -1
		case a.p.Y > b.p.Y:
			return 1
		}
		return 0
	})

	buckets := emptyBuckets()
	for _, c := range classified {
		buckets[c.t] = append(buckets[c.t], c.p)
	}
	return buckets
}

func emptyBuckets() map[BiomeType][]geom.Point {
	buckets := make(map[BiomeType][]geom.Point, numBiomeTypes)
	for _, t := range BiomeTypes() {
		buckets[t] = []geom.Point{}
	}
	return buckets
}

func round(v float64, decimals int) float64 {
	p := math.Pow10(decimals)
	return math.Round(v*p) / p
}
