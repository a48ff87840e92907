package wipmap

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/chevalvert/wipmap-generate/pkg/geom"
	"github.com/chevalvert/wipmap-generate/pkg/poisson"
	"github.com/chevalvert/wipmap-generate/pkg/voronoi"
)

func plainsOnly() BiomeTable { return BiomeTable{{Plains}} }

// highSource always draws just under 1.
type highSource struct{}

func (highSource) Float64() float64 { return 0.999999 }
func (highSource) IntN(int) int     { return 0 }

// gridSampler ignores its arguments and returns cell centers of a 10x10
// grid over the sample domain.
func gridSampler(width, height, _, _ float64, _ int, _ poisson.Source) []geom.Point {
	var pts []geom.Point
	for i := 0; i < 10; i++ {
		for j := 0; j < 10; j++ {
			pts = append(pts, geom.Point{X: (float64(i) + 0.5) * width / 10, Y: (float64(j) + 0.5) * height / 10})
		}
	}
	return pts
}

func TestGenerateDeterministic(t *testing.T) {
	opts := DefaultOptions()
	opts.Probabilities.Forest = 0.3
	opts.Landmarks = map[string]LandmarkSpec{
		"villages": {Count: 3, Biomes: []BiomeType{Plains, Forest}},
	}

	g, err := NewGenerator(opts)
	if err != nil {
		t.Fatal(err)
	}
	a, err := g.Generate(12, -7)
	if err != nil {
		t.Fatal(err)
	}
	b, err := g.Generate(12, -7)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(a, b, cmp.AllowUnexported(BiomeCell{})); diff != "" {
		t.Fatalf("tiles differ (-first +second):\n%s", diff)
	}

	ja, _ := json.Marshal(a)
	jb, _ := json.Marshal(b)
	if !bytes.Equal(ja, jb) {
		t.Fatal("encoded tiles differ")
	}
}

func TestGenerateDifferentTiles(t *testing.T) {
	opts := DefaultOptions()
	a, err := Generate(1, 2, opts)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Generate(2, 1, opts)
	if err != nil {
		t.Fatal(err)
	}
	if a.Seed == b.Seed {
		t.Fatalf("tiles (1,2) and (2,1) share seed %d", a.Seed)
	}
	ja, _ := json.Marshal(a)
	jb, _ := json.Marshal(b)
	if bytes.Equal(ja, jb) {
		t.Fatal("different tiles encoded identically")
	}
}

func TestGenerateExplicitSeed(t *testing.T) {
	opts := DefaultOptions()
	seed := int64(42)
	opts.Seed = &seed

	a, err := Generate(0, 0, opts)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Generate(5, 5, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !a.ExplicitSeed || a.Seed != 42 {
		t.Fatalf("seed = %d explicit=%v, want 42 explicit", a.Seed, a.ExplicitSeed)
	}
	// Without stitching the coordinate only labels the tile.
	if diff := cmp.Diff(a.Biomes, b.Biomes, cmp.AllowUnexported(BiomeCell{})); diff != "" {
		t.Fatalf("same explicit seed gave different cells:\n%s", diff)
	}
}

func TestGenerateCellsClosed(t *testing.T) {
	tm, err := Generate(3, 9, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if len(tm.Biomes) == 0 {
		t.Fatal("no cells")
	}
	for i, c := range tm.Biomes {
		if len(c.Polygon) < 3 {
			t.Errorf("cell %d has %d vertices", i, len(c.Polygon))
		}
		for _, v := range c.Polygon {
			if !v.Finite() {
				t.Errorf("cell %d has vertex %v", i, v)
			}
		}
		if !c.Type.Valid() {
			t.Errorf("cell %d has type %d", i, c.Type)
		}
	}
	if got := len(tm.Biomes) + tm.Stats.DroppedCells; got != tm.Width*tm.Height {
		t.Errorf("cells + dropped = %d, want %d", got, tm.Width*tm.Height)
	}
}

func TestGeneratePointsInsideTheirCell(t *testing.T) {
	opts := DefaultOptions()
	opts.Distortion = 0
	opts.Gradient = 0
	opts.Decimals = 15

	tm, err := Generate(4, 4, opts)
	if err != nil {
		t.Fatal(err)
	}
	if tm.Count() == 0 {
		t.Fatal("no points")
	}
	for typ, pts := range tm.Points {
		for _, p := range pts {
			c, ok := tm.CellAt(p)
			if !ok {
				t.Fatalf("%s point %v is in no cell", typ, p)
			}
			if c.Type != typ {
				t.Fatalf("%s point %v is in a %s cell", typ, p, c.Type)
			}
		}
	}
}

func TestGenerateMinimalTile(t *testing.T) {
	opts := DefaultOptions()
	opts.Width, opts.Height = 3, 3
	opts.Probabilities.Water = 0
	opts.BiomesMap = plainsOnly()

	tm, err := Generate(0, 0, opts)
	if err != nil {
		t.Fatal(err)
	}
	if len(tm.Biomes) != 9 {
		t.Fatalf("got %d cells, want 9", len(tm.Biomes))
	}
	boundary := 0
	for _, c := range tm.Biomes {
		if c.Type != Plains {
			t.Errorf("cell at %v is %s", c.Site, c.Type)
		}
		if c.IsBoundary {
			boundary++
		}
	}
	if boundary != 8 {
		t.Errorf("boundary cells = %d, want 8", boundary)
	}
	if n := len(tm.Points[Water]); n != 0 {
		t.Errorf("got %d WATER points", n)
	}
	if len(tm.Points[Plains]) == 0 {
		t.Error("no PLAINS points")
	}
	if len(tm.Landmarks) != 0 {
		t.Errorf("landmarks = %v, want none", tm.Landmarks)
	}
}

func TestGenerateFullWaterTile(t *testing.T) {
	opts := DefaultOptions()
	opts.Width, opts.Height = 3, 3
	opts.Probabilities.Water = 1
	opts.BiomesMap = plainsOnly()
	opts.Distortion = 0
	opts.Gradient = 0

	g, err := NewGenerator(opts,
		WithSource(func(int64) Source { return highSource{} }),
		WithSampler(gridSampler),
	)
	if err != nil {
		t.Fatal(err)
	}
	tm, err := g.Generate(0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(tm.Biomes) == 0 {
		t.Fatal("no cells")
	}
	for _, c := range tm.Biomes {
		if c.Type != Water {
			t.Errorf("cell at %v is %s", c.Site, c.Type)
		}
	}
	if n := len(tm.Points[Water]); n != 100 {
		t.Errorf("got %d WATER points, want 100", n)
	}
	if n := tm.Count(); n != len(tm.Points[Water]) {
		t.Errorf("got %d non-WATER points", n-len(tm.Points[Water]))
	}
}

func TestGeneratePointsSortedByY(t *testing.T) {
	tm, err := Generate(8, 1, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	for typ, pts := range tm.Points {
		for i := 1; i < len(pts); i++ {
			if pts[i].Y < pts[i-1].Y {
				t.Fatalf("%s points not sorted at %d: %v after %v", typ, i, pts[i], pts[i-1])
			}
		}
	}
}

func TestGenerateEveryBucketPresent(t *testing.T) {
	opts := DefaultOptions()
	opts.Width, opts.Height = 3, 3
	tm, err := Generate(0, 0, opts)
	if err != nil {
		t.Fatal(err)
	}
	for _, typ := range BiomeTypes() {
		if _, ok := tm.Points[typ]; !ok {
			t.Errorf("missing %s bucket", typ)
		}
	}
}

func TestGenerateStitchSharesClimate(t *testing.T) {
	opts := DefaultOptions()
	seed := int64(7)
	opts.Seed = &seed
	opts.Stitch = true

	src := func() Source { return NewSource(seed) }
	left := newClimate(src(), opts, 0, 0)
	right := newClimate(src(), opts, 1, 0)

	// x = width in the left tile is x = 0 in the right one.
	w := float64(opts.Width)
	for _, y := range []float64{0, 2.5, 7} {
		if a, b := left.Temperature(w, y), right.Temperature(0, y); a != b {
			t.Errorf("temperature at seam y=%g: %g vs %g", y, a, b)
		}
	}
}

func TestGenerateInvalidOptions(t *testing.T) {
	opts := DefaultOptions()
	opts.Width = 0
	if _, err := Generate(0, 0, opts); !errors.Is(err, ErrInvalidOptions) {
		t.Fatalf("err = %v, want ErrInvalidOptions", err)
	}
}

func TestGeneratePartitionError(t *testing.T) {
	boom := errors.New("boom")
	g, err := NewGenerator(DefaultOptions(), WithPartitioner(func([]geom.Point) (*voronoi.Diagram, error) {
		return nil, boom
	}))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := g.Generate(0, 0); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped boom", err)
	}
}

func TestGeneratePartitionCellCountMismatch(t *testing.T) {
	g, err := NewGenerator(DefaultOptions(), WithPartitioner(func([]geom.Point) (*voronoi.Diagram, error) {
		return &voronoi.Diagram{}, nil
	}))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := g.Generate(0, 0); err == nil {
		t.Fatal("expected error for empty partition")
	}
}

func TestGeneratorOptionsIsolated(t *testing.T) {
	opts := DefaultOptions()
	g, err := NewGenerator(opts)
	if err != nil {
		t.Fatal(err)
	}
	opts.BiomesMap[0][0] = Desert
	if got := g.Options().BiomesMap[0][0]; got != Taiga {
		t.Fatalf("generator table mutated through caller: %s", got)
	}
}
