package wipmap

import (
	"fmt"

	"github.com/chevalvert/wipmap-generate/pkg/geom"
	"github.com/chevalvert/wipmap-generate/pkg/voronoi"
)

// BiomeCell is one retained partition cell. Polygon is closed implicitly,
// has at least three distinct vertices and no undefined coordinates.
type BiomeCell struct {
	Site       geom.Point
	Polygon    []geom.Point
	Type       BiomeType
	IsBoundary bool

	bounds geom.Rect
}

// Bounds returns the bounding box of the cell polygon.
func (c BiomeCell) Bounds() geom.Rect { return c.bounds }

// Contains reports whether p lies inside the cell polygon.
func (c BiomeCell) Contains(p geom.Point) bool {
	return c.bounds.Contains(p) && geom.Inside(p, c.Polygon)
}

// partitionedSite carries a lattice site together with the partition cell
// computed for it.
type partitionedSite struct {
	site     Site
	vertices []int
}

// zipPartition pairs each interior site with its cell. Ring cells, which
// follow the interior sites in the diagram, are left out.
func zipPartition(l Lattice, d *voronoi.Diagram) ([]partitionedSite, error) {
	if want := len(l.Sites) + len(l.Ring); len(d.Cells) != want {
		return nil, fmt.Errorf("partition returned %d cells for %d sites", len(d.Cells), want)
	}
	out := make([]partitionedSite, len(l.Sites))
	for i, s := range l.Sites {
		out[i] = partitionedSite{site: s, vertices: d.Cells[i]}
	}
	return out, nil
}

// resolvePolygon turns vertex indices into a polygon. It fails on the
// Unbounded sentinel, on undefined vertices, and on cells that collapse to
// fewer than three distinct vertices.
func resolvePolygon(d *voronoi.Diagram, vertices []int) ([]geom.Point, bool) {
	poly := make([]geom.Point, 0, len(vertices))
	for _, vi := range vertices {
		if vi == voronoi.Unbounded {
			return nil, false
		}
		p, ok := d.Position(vi)
		if !ok {
			return nil, false
		}
		// Cocircular sites yield repeated circumcenters.
		if n := len(poly); n > 0 && nearlyEqual(poly[n-1], p) {
			continue
		}
		poly = append(poly, p)
	}
	for len(poly) > 1 && nearlyEqual(poly[0], poly[len(poly)-1]) {
		poly = poly[:len(poly)-1]
	}
	if len(poly) < 3 {
		return nil, false
	}
	return poly, true
}

func nearlyEqual(a, b geom.Point) bool {
	const eps = 1e-9
	return a.Sub(b).Len2() < eps*eps
}

// classifyCells keeps every well-formed interior cell and assigns its biome
// from the climate at its site. Dropped cells are counted, never retried.
func classifyCells(sites []partitionedSite, d *voronoi.Diagram, l Lattice, climate Climate, opts Options, src Source, stats *Stats) []BiomeCell {
	cells := make([]BiomeCell, 0, len(sites))
	for _, ps := range sites {
		poly, ok := resolvePolygon(d, ps.vertices)
		if !ok {
			stats.DroppedCells++
			continue
		}

		p := ps.site.Position
		temperature := climate.Temperature(p.X, p.Y)
		humidity := climate.Humidity(p.X, p.Y)

		cells = append(cells, BiomeCell{
			Site:       p,
			Polygon:    poly,
			Type:       biomeFor(temperature, humidity, opts, src),
			IsBoundary: l.OnEdge(ps.site.Col, ps.site.Row),
			bounds:     geom.Bounds(poly),
		})
	}
	return cells
}

// biomeFor resolves a site's biome. WATER is a probabilistic gate: a humid
// enough site never floods, a dry one floods when a fresh draw beats its
// temperature. The draw only happens once the humidity test passes.
func biomeFor(temperature, humidity float64, opts Options, src Source) BiomeType {
	if humidity < opts.Probabilities.Water && temperature < src.Float64() {
		return Water
	}
	t := opts.BiomesMap.Lookup(temperature, humidity)
	if t == Plains && opts.Probabilities.Forest > 0 && src.Float64() < opts.Probabilities.Forest {
		return Forest
	}
	return t
}
