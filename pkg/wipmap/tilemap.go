package wipmap

import (
	"encoding/json"
	"maps"
	"slices"
	"strconv"

	"github.com/chevalvert/wipmap-generate/pkg/geom"
)

// Stats counts the work a generation discarded along the way.
type Stats struct {
	SampledPoints    int `json:"sampledPoints"`
	DiscardedPoints  int `json:"discardedPoints"`
	DroppedCells     int `json:"droppedCells"`
	DroppedLandmarks int `json:"droppedLandmarks"`
}

// TileMap is the result of one generation.
type TileMap struct {
	X, Y float64
	// Seed is the seed the tile was generated from; ExplicitSeed reports
	// whether it came from Options.Seed rather than the coordinate.
	Seed         int64
	ExplicitSeed bool

	Width, Height int
	Decimals      int

	Biomes    []BiomeCell
	Points    map[BiomeType][]geom.Point
	Landmarks map[string][]Landmark
	Stats     Stats
}

// CellAt returns the retained cell whose polygon contains p.
func (m *TileMap) CellAt(p geom.Point) (BiomeCell, bool) {
	return CellAt(m.Biomes, p)
}

// Count returns the total number of classified points.
func (m *TileMap) Count() int {
	n := 0
	for _, pts := range m.Points {
		n += len(pts)
	}
	return n
}

type cellJSON struct {
	Site       [2]json.Number   `json:"site"`
	Cell       [][2]json.Number `json:"cell"`
	Type       BiomeType        `json:"type"`
	IsBoundary bool             `json:"isBoundary"`
}

type tileJSON struct {
	X         float64                         `json:"x"`
	Y         float64                         `json:"y"`
	Seed      int64                           `json:"seed"`
	Width     int                             `json:"width"`
	Height    int                             `json:"height"`
	Biomes    []cellJSON                      `json:"biomes"`
	Points    map[string][][2]json.Number     `json:"points"`
	Landmarks map[string][][3]json.RawMessage `json:"landmarks"`
}

// MarshalJSON encodes the tile as the document consumed by map renderers.
// Coordinates are written with exactly Decimals fractional digits for points
// and landmarks; cell geometry keeps full precision.
func (m *TileMap) MarshalJSON() ([]byte, error) {
	doc := tileJSON{
		X:         m.X,
		Y:         m.Y,
		Seed:      m.Seed,
		Width:     m.Width,
		Height:    m.Height,
		Biomes:    make([]cellJSON, len(m.Biomes)),
		Points:    make(map[string][][2]json.Number, len(m.Points)),
		Landmarks: make(map[string][][3]json.RawMessage, len(m.Landmarks)),
	}

	for i, c := range m.Biomes {
		cj := cellJSON{
			Site:       pair(c.Site, -1),
			Cell:       make([][2]json.Number, len(c.Polygon)),
			Type:       c.Type,
			IsBoundary: c.IsBoundary,
		}
		for j, v := range c.Polygon {
			cj.Cell[j] = pair(v, -1)
		}
		doc.Biomes[i] = cj
	}

	for _, t := range slices.Sorted(maps.Keys(m.Points)) {
		pts := m.Points[t]
		out := make([][2]json.Number, len(pts))
		for i, p := range pts {
			out[i] = pair(p, m.Decimals)
		}
		doc.Points[t.String()] = out
	}

	for name, lms := range m.Landmarks {
		out := make([][3]json.RawMessage, len(lms))
		for i, l := range lms {
			typ, err := json.Marshal(l.Type)
			if err != nil {
				return nil, err
			}
			out[i] = [3]json.RawMessage{
				json.RawMessage(number(l.Position.X, m.Decimals)),
				json.RawMessage(number(l.Position.Y, m.Decimals)),
				typ,
			}
		}
		doc.Landmarks[name] = out
	}
	return json.Marshal(doc)
}

func pair(p geom.Point, decimals int) [2]json.Number {
	return [2]json.Number{number(p.X, decimals), number(p.Y, decimals)}
}

// number formats v with a fixed number of fractional digits, or the shortest
// exact form when decimals is negative.
func number(v float64, decimals int) json.Number {
	return json.Number(strconv.FormatFloat(v, 'f', decimals, 64))
}
