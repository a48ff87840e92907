// Package voronoi partitions the plane into one cell per input site.
//
// The diagram is built as the dual of a Bowyer-Watson Delaunay triangulation:
// every triangle contributes one vertex (its circumcenter) and every site's
// cell is the fan of triangles around it, ordered counter-clockwise. Sites on
// the convex hull own open cells; their vertex list ends with Unbounded.
package voronoi

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/chevalvert/wipmap-generate/pkg/geom"
)

// Unbounded marks a cell that extends to infinity.
const Unbounded = -1

// ErrTooFewSites is returned when fewer than three sites are supplied.
var ErrTooFewSites = errors.New("voronoi: at least 3 sites required")

// Diagram is the partition of a site list. Cells[i] belongs to the i-th
// input site and lists indices into Positions, possibly including Unbounded.
type Diagram struct {
	Cells     [][]int
	Positions []geom.Point

	defined []bool
}

// Position resolves a vertex index. It reports false for Unbounded, for
// out-of-range indices, for non-finite positions and for vertices of
// numerically degenerate triangles.
func (d *Diagram) Position(i int) (geom.Point, bool) {
	if i < 0 || i >= len(d.Positions) {
		return geom.Point{}, false
	}
	// Diagrams assembled outside Compute carry no mask.
	if i < len(d.defined) && !d.defined[i] {
		return geom.Point{}, false
	}
	p := d.Positions[i]
	if !finite(p.X) || !finite(p.Y) {
		return geom.Point{}, false
	}
	return p, true
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// Compute builds the diagram of sites. Sites must be finite and distinct.
func Compute(sites []geom.Point) (*Diagram, error) {
	tris, err := triangulate(sites)
	if err != nil {
		return nil, err
	}

	n := len(sites)
	d := &Diagram{
		Cells:     make([][]int, n),
		Positions: make([]geom.Point, len(tris)),
		defined:   make([]bool, len(tris)),
	}

	incident := make([][]int, n)
	edges := make(map[edge]struct{}, len(tris)*3)
	for ti, t := range tris {
		cc, ok := circumcenter(sites[t.a], sites[t.b], sites[t.c])
		d.Positions[ti] = cc
		d.defined[ti] = ok
		for _, v := range t.vertices() {
			incident[v] = append(incident[v], ti)
		}
		for _, e := range t.edges() {
			edges[e] = struct{}{}
		}
	}

	onHull := make([]bool, n)
	for e := range edges {
		if _, ok := edges[edge{e.v, e.u}]; !ok {
			onHull[e.u] = true
			onHull[e.v] = true
		}
	}

	for s := range sites {
		fan := incident[s]
		angle := make(map[int]float64, len(fan))
		for _, ti := range fan {
			c := tris[ti].centroid(sites).Sub(sites[s])
			angle[ti] = math.Atan2(c.Y, c.X)
		}
		slices.SortFunc(fan, func(a, b int) int {
			switch {
			case angle[a] < angle[b]:
				return -1
			case angle[a] > angle[b]:
				return 1
			}
			return a - b
		})

		cell := make([]int, 0, len(fan)+1)
		cell = append(cell, fan...)
		if onHull[s] || len(fan) == 0 {
			cell = append(cell, Unbounded)
		}
		d.Cells[s] = cell
	}
	return d, nil
}

// circumcenter returns the circumcenter of (a, b, c); ok is false when the
// triangle has (near) zero area.
func circumcenter(a, b, c geom.Point) (cc geom.Point, ok bool) {
	d := 2 * (a.X*(b.Y-c.Y) + b.X*(c.Y-a.Y) + c.X*(a.Y-b.Y))
	if math.Abs(d) < 1e-12 {
		return geom.Point{X: math.NaN(), Y: math.NaN()}, false
	}

	a2 := a.X*a.X + a.Y*a.Y
	b2 := b.X*b.X + b.Y*b.Y
	c2 := c.X*c.X + c.Y*c.Y

	cc = geom.Point{
		X: (a2*(b.Y-c.Y) + b2*(c.Y-a.Y) + c2*(a.Y-b.Y)) / d,
		Y: (a2*(c.X-b.X) + b2*(a.X-c.X) + c2*(b.X-a.X)) / d,
	}
	return cc, cc.Finite()
}

// validateSites rejects input the triangulation cannot handle.
func validateSites(sites []geom.Point) error {
	if len(sites) < 3 {
		return ErrTooFewSites
	}
	seen := make(map[geom.Point]int, len(sites))
	for i, p := range sites {
		if !p.Finite() {
			return fmt.Errorf("voronoi: site %d is not finite: %v", i, p)
		}
		if j, dup := seen[p]; dup {
			return fmt.Errorf("voronoi: sites %d and %d coincide at %v", j, i, p)
		}
		seen[p] = i
	}
	return nil
}
