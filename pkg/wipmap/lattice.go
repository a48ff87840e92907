package wipmap

import "github.com/chevalvert/wipmap-generate/pkg/geom"

// Site is one interior lattice site: cell center (Col+0.5, Row+0.5), jittered
// unless it sits on the lattice edge.
type Site struct {
	Position geom.Point
	Col, Row int
}

// Lattice is the site set handed to the partition. Ring sites sit one unit
// outside every edge and only exist to close the edge cells.
type Lattice struct {
	Width, Height int
	Sites         []Site
	Ring          []geom.Point
}

func buildLattice(width, height int, jitterX, jitterY Field) Lattice {
	l := Lattice{
		Width:  width,
		Height: height,
		Sites:  make([]Site, 0, width*height),
		Ring:   make([]geom.Point, 0, 2*(width+2)+2*height),
	}

	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			p := geom.Point{X: float64(col) + 0.5, Y: float64(row) + 0.5}
			if !l.OnEdge(col, row) {
				p.X += jitterX(float64(col), float64(row))
				p.Y += jitterY(float64(col), float64(row))
			}
			l.Sites = append(l.Sites, Site{Position: p, Col: col, Row: row})
		}
	}

	for col := -1; col <= width; col++ {
		l.Ring = append(l.Ring,
			geom.Point{X: float64(col) + 0.5, Y: -0.5},
			geom.Point{X: float64(col) + 0.5, Y: float64(height) + 0.5},
		)
	}
	for row := 0; row < height; row++ {
		l.Ring = append(l.Ring,
			geom.Point{X: -0.5, Y: float64(row) + 0.5},
			geom.Point{X: float64(width) + 0.5, Y: float64(row) + 0.5},
		)
	}
	return l
}

// OnEdge reports whether the lattice position lies on the outermost row or column.
func (l Lattice) OnEdge(col, row int) bool {
	return col == 0 || col == l.Width-1 || row == 0 || row == l.Height-1
}

// Points returns interior sites followed by ring sites, the order the
// partition receives them in.
func (l Lattice) Points() []geom.Point {
	pts := make([]geom.Point, 0, len(l.Sites)+len(l.Ring))
	for _, s := range l.Sites {
		pts = append(pts, s.Position)
	}
	return append(pts, l.Ring...)
}
