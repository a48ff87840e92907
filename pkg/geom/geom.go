// Package geom holds the small amount of planar geometry the tile generator
// needs: points, axis-aligned bounds and polygon containment.
package geom

import "math"

// Point is a position in tile space.
type Point struct{ X, Y float64 }

func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }
func (p Point) Len2() float64     { return p.X*p.X + p.Y*p.Y }

// Finite reports whether both coordinates are neither NaN nor infinite.
func (p Point) Finite() bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}

// Rect is an axis-aligned bounding box. Min and Max are inclusive.
type Rect struct {
	Min, Max Point
}

// Bounds returns the bounding box of a polygon. An empty polygon yields an
// inverted (empty) rectangle.
func Bounds(poly []Point) Rect {
	r := Rect{
		Min: Point{math.Inf(1), math.Inf(1)},
		Max: Point{math.Inf(-1), math.Inf(-1)},
	}
	for _, p := range poly {
		r.Min.X = math.Min(r.Min.X, p.X)
		r.Min.Y = math.Min(r.Min.Y, p.Y)
		r.Max.X = math.Max(r.Max.X, p.X)
		r.Max.Y = math.Max(r.Max.Y, p.Y)
	}
	return r
}

// Contains reports whether p lies inside r, borders included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

// Empty reports whether r encloses no point.
func (r Rect) Empty() bool {
	return r.Min.X > r.Max.X || r.Min.Y > r.Max.Y
}

// Union returns the smallest rectangle enclosing both r and o.
func (r Rect) Union(o Rect) Rect {
	if r.Empty() {
		return o
	}
	if o.Empty() {
		return r
	}
	return Rect{
		Min: Point{math.Min(r.Min.X, o.Min.X), math.Min(r.Min.Y, o.Min.Y)},
		Max: Point{math.Max(r.Max.X, o.Max.X), math.Max(r.Max.Y, o.Max.Y)},
	}
}

// Inside reports whether p lies inside the closed polygon poly using the
// even-odd ray casting rule. The polygon is implicitly closed; polygons with
// fewer than three vertices contain nothing.
func Inside(p Point, poly []Point) bool {
	n := len(poly)
	if n < 3 {
		return false
	}
	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := poly[i].X, poly[i].Y
		xj, yj := poly[j].X, poly[j].Y
		if (yi > p.Y) != (yj > p.Y) && p.X < (xj-xi)*(p.Y-yi)/(yj-yi)+xi {
			inside = !inside
		}
	}
	return inside
}

// RandomPointsInPolygon draws up to n uniformly distributed points inside
// poly by rejection sampling against its bounding box. Every rejected
// candidate consumes one of maxAttempts; once they are spent the points found
// so far are returned.
func RandomPointsInPolygon(n int, poly []Point, random func() float64, maxAttempts int) []Point {
	if n <= 0 || len(poly) < 3 {
		return nil
	}
	b := Bounds(poly)
	points := make([]Point, 0, n)
	attempts := 0
	for len(points) < n && attempts < maxAttempts {
		p := Point{
			X: random()*(b.Max.X-b.Min.X) + b.Min.X,
			Y: random()*(b.Max.Y-b.Min.Y) + b.Min.Y,
		}
		if Inside(p, poly) {
			points = append(points, p)
			continue
		}
		attempts++
	}
	return points
}
