// Package poisson generates blue-noise point sets with Bridson's
// Poisson-disk algorithm.
package poisson

import (
	"math"

	"github.com/chevalvert/wipmap-generate/pkg/geom"
)

// Source is the randomness consumed by Sample. *rand.Rand from math/rand/v2
// satisfies it.
type Source interface {
	Float64() float64
	IntN(n int) int
}

// Sample fills [0, width) x [0, height) with points no closer than
// minDistance to each other. New candidates are drawn in the annulus
// [minDistance, minDistance*maxDistanceMultiplier] around an active point;
// an active point retires after maxAttempts failed candidates.
//
// The result depends only on the arguments and the sequence produced by src.
func Sample(width, height, minDistance, maxDistanceMultiplier float64, maxAttempts int, src Source) []geom.Point {
	if minDistance <= 0 || width <= 0 || height <= 0 {
		return nil
	}
	if maxAttempts <= 0 {
		maxAttempts = 30
	}
	if maxDistanceMultiplier < 1 {
		maxDistanceMultiplier = 2
	}

	// r/sqrt(2) guarantees at most one point per background cell.
	cellSize := minDistance / math.Sqrt2
	gridW := int(math.Ceil(width / cellSize))
	gridH := int(math.Ceil(height / cellSize))

	grid := make([]int, gridW*gridH)
	for i := range grid {
		grid[i] = -1
	}

	points := make([]geom.Point, 0, gridW*gridH/4+1)
	active := make([]int, 0, 128)

	toGrid := func(p geom.Point) (int, int) {
		gx := min(max(int(p.X/cellSize), 0), gridW-1)
		gy := min(max(int(p.Y/cellSize), 0), gridH-1)
		return gx, gy
	}

	r2 := minDistance * minDistance
	valid := func(p geom.Point) bool {
		if p.X < 0 || p.X >= width || p.Y < 0 || p.Y >= height {
			return false
		}
		gx, gy := toGrid(p)
		for dy := -2; dy <= 2; dy++ {
			for dx := -2; dx <= 2; dx++ {
				nx, ny := gx+dx, gy+dy
				if nx < 0 || nx >= gridW || ny < 0 || ny >= gridH {
					continue
				}
				if idx := grid[ny*gridW+nx]; idx != -1 && points[idx].Sub(p).Len2() < r2 {
					return false
				}
			}
		}
		return true
	}

	insert := func(p geom.Point) {
		idx := len(points)
		points = append(points, p)
		active = append(active, idx)
		gx, gy := toGrid(p)
		grid[gy*gridW+gx] = idx
	}

	insert(geom.Point{X: src.Float64() * width, Y: src.Float64() * height})

	spread := minDistance * (maxDistanceMultiplier - 1)
	for len(active) > 0 {
		ai := src.IntN(len(active))
		p := points[active[ai]]

		found := false
		for k := 0; k < maxAttempts; k++ {
			angle := src.Float64() * 2 * math.Pi
			dist := minDistance + src.Float64()*spread
			c := geom.Point{
				X: p.X + dist*math.Cos(angle),
				Y: p.Y + dist*math.Sin(angle),
			}
			if valid(c) {
				insert(c)
				found = true
				break
			}
		}

		if !found {
			active[ai] = active[len(active)-1]
			active = active[:len(active)-1]
		}
	}

	return points
}
