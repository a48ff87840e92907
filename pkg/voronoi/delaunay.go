package voronoi

import (
	"fmt"
	"math"
	"slices"

	"github.com/chevalvert/wipmap-generate/pkg/geom"
)

// triangle references three site indices in counter-clockwise order.
type triangle struct {
	a, b, c int
	alive   bool
}

// edge is a directed edge u->v. The triangle on the other side of u->v owns v->u.
type edge struct{ u, v int }

func (t triangle) vertices() [3]int { return [3]int{t.a, t.b, t.c} }

func (t triangle) edges() [3]edge {
	return [3]edge{{t.a, t.b}, {t.b, t.c}, {t.c, t.a}}
}

func (t triangle) centroid(pts []geom.Point) geom.Point {
	return geom.Point{
		X: (pts[t.a].X + pts[t.b].X + pts[t.c].X) / 3,
		Y: (pts[t.a].Y + pts[t.b].Y + pts[t.c].Y) / 3,
	}
}

// orient is positive when p is left of a->b, negative when right, zero when collinear.
func orient(a, b, p geom.Point) float64 {
	return (b.X-a.X)*(p.Y-a.Y) - (b.Y-a.Y)*(p.X-a.X)
}

// inCircle reports whether p lies strictly inside the circumcircle of the
// counter-clockwise triangle (a, b, c).
func inCircle(a, b, c, p geom.Point) bool {
	ax, ay := a.X-p.X, a.Y-p.Y
	bx, by := b.X-p.X, b.Y-p.Y
	cx, cy := c.X-p.X, c.Y-p.Y

	det := (ax*ax+ay*ay)*(bx*cy-cx*by) -
		(bx*bx+by*by)*(ax*cy-cx*ay) +
		(cx*cx+cy*cy)*(ax*by-bx*ay)
	return det > 0
}

// mesh is the incremental Bowyer-Watson state. Dead triangles stay in tris;
// owner maps every live directed edge to the triangle holding it.
type mesh struct {
	pts   []geom.Point
	tris  []triangle
	owner map[edge]int
	last  int
}

func (m *mesh) add(a, b, c int) int {
	ti := len(m.tris)
	t := triangle{a: a, b: b, c: c, alive: true}
	m.tris = append(m.tris, t)
	for _, e := range t.edges() {
		m.owner[e] = ti
	}
	return ti
}

func (m *mesh) kill(ti int) {
	m.tris[ti].alive = false
	for _, e := range m.tris[ti].edges() {
		if m.owner[e] == ti {
			delete(m.owner, e)
		}
	}
}

func (m *mesh) contains(ti int, p geom.Point) bool {
	t := m.tris[ti]
	return orient(m.pts[t.a], m.pts[t.b], p) >= 0 &&
		orient(m.pts[t.b], m.pts[t.c], p) >= 0 &&
		orient(m.pts[t.c], m.pts[t.a], p) >= 0
}

// locate walks from the most recently created triangle towards p, falling
// back to a linear scan if the walk stalls.
func (m *mesh) locate(p geom.Point) int {
	cur := m.last
	for step := 0; step < len(m.tris)+16; step++ {
		if !m.tris[cur].alive {
			break
		}
		if m.contains(cur, p) {
			return cur
		}
		moved := false
		for _, e := range m.tris[cur].edges() {
			if orient(m.pts[e.u], m.pts[e.v], p) >= 0 {
				continue
			}
			if nb, ok := m.owner[edge{e.v, e.u}]; ok {
				cur = nb
				moved = true
				break
			}
		}
		if !moved {
			break
		}
	}
	for ti, t := range m.tris {
		if t.alive && m.contains(ti, p) {
			return ti
		}
	}
	return -1
}

func (m *mesh) insert(i int) error {
	p := m.pts[i]
	start := m.locate(p)
	if start < 0 {
		return fmt.Errorf("voronoi: site %d (%v) is outside the triangulation", i, p)
	}

	// The cavity is the connected set of triangles whose circumcircle holds p.
	bad := map[int]bool{start: true}
	stack := []int{start}
	for len(stack) > 0 {
		ti := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, e := range m.tris[ti].edges() {
			nb, ok := m.owner[edge{e.v, e.u}]
			if !ok || bad[nb] {
				continue
			}
			t := m.tris[nb]
			if inCircle(m.pts[t.a], m.pts[t.b], m.pts[t.c], p) {
				bad[nb] = true
				stack = append(stack, nb)
			}
		}
	}

	var boundary []edge
	for ti := range bad {
		for _, e := range m.tris[ti].edges() {
			if nb, ok := m.owner[edge{e.v, e.u}]; ok && bad[nb] {
				continue
			}
			boundary = append(boundary, e)
		}
	}
	// Map iteration order is random; sort to keep triangle numbering stable.
	slices.SortFunc(boundary, func(x, y edge) int {
		if x.u != y.u {
			return x.u - y.u
		}
		return x.v - y.v
	})

	dead := make([]int, 0, len(bad))
	for ti := range bad {
		dead = append(dead, ti)
	}
	slices.Sort(dead)
	for _, ti := range dead {
		m.kill(ti)
	}
	for _, e := range boundary {
		m.last = m.add(e.u, e.v, i)
	}
	return nil
}

// triangulate returns the live Delaunay triangles over sites, each in
// counter-clockwise order, with the enclosing super triangle removed.
func triangulate(sites []geom.Point) ([]triangle, error) {
	if err := validateSites(sites); err != nil {
		return nil, err
	}
	n := len(sites)

	b := geom.Bounds(sites)
	span := math.Max(b.Max.X-b.Min.X, b.Max.Y-b.Min.Y)
	if span == 0 {
		span = 1
	}
	midX := (b.Min.X + b.Max.X) / 2
	midY := (b.Min.Y + b.Max.Y) / 2

	pts := make([]geom.Point, n, n+3)
	copy(pts, sites)
	pts = append(pts,
		geom.Point{X: midX - 50*span, Y: midY - 10*span},
		geom.Point{X: midX + 50*span, Y: midY - 10*span},
		geom.Point{X: midX, Y: midY + 50*span},
	)

	m := &mesh{
		pts:   pts,
		tris:  make([]triangle, 0, 6*n),
		owner: make(map[edge]int, 6*n),
	}
	m.last = m.add(n, n+1, n+2)

	for i := 0; i < n; i++ {
		if err := m.insert(i); err != nil {
			return nil, err
		}
	}

	out := make([]triangle, 0, 2*n)
	for _, t := range m.tris {
		if !t.alive || t.a >= n || t.b >= n || t.c >= n {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}
