package wipmap

import (
	"maps"
	"slices"

	"github.com/chevalvert/wipmap-generate/pkg/geom"
)

// landmarkAttempts bounds rejection sampling inside a cell's bounding box.
const landmarkAttempts = 30

// Landmark is a special point placed inside a cell of a required biome.
type Landmark struct {
	Position geom.Point
	Type     BiomeType
}

// placeLandmarks fills every configured category, in name order. Slots whose
// biome has no cell, or whose cell rejects every sampled candidate, are
// dropped. Each category's landmarks are sorted by biome type.
func placeLandmarks(cells []BiomeCell, specs map[string]LandmarkSpec, decimals int, src Source, stats *Stats) map[string][]Landmark {
	out := make(map[string][]Landmark, len(specs))
	for _, name := range slices.Sorted(maps.Keys(specs)) {
		spec := specs[name]
		placed := make([]Landmark, 0, spec.Count)
		for k := 0; k < spec.Count; k++ {
			want := spec.Biomes[k%len(spec.Biomes)]

			var candidates []int
			for i, c := range cells {
				if c.Type == want {
					candidates = append(candidates, i)
				}
			}
			if len(candidates) == 0 {
				stats.DroppedLandmarks++
				continue
			}

			cell := cells[candidates[src.IntN(len(candidates))]]
			pts := geom.RandomPointsInPolygon(1, cell.Polygon, src.Float64, landmarkAttempts)
			if len(pts) == 0 {
				stats.DroppedLandmarks++
				continue
			}
			placed = append(placed, Landmark{
				Position: geom.Point{X: round(pts[0].X, decimals), Y: round(pts[0].Y, decimals)},
				Type:     want,
			})
		}
		slices.SortStableFunc(placed, func(a, b Landmark) int { return int(a.Type) - int(b.Type) })
		out[name] = placed
	}
	return out
}
