package voronoi

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/chevalvert/wipmap-generate/pkg/geom"
)

func polygon(t *testing.T, d *Diagram, cell []int) ([]geom.Point, bool) {
	t.Helper()
	poly := make([]geom.Point, 0, len(cell))
	for _, vi := range cell {
		p, ok := d.Position(vi)
		if !ok {
			return nil, false
		}
		poly = append(poly, p)
	}
	return poly, true
}

func TestComputeGrid(t *testing.T) {
	var sites []geom.Point
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			sites = append(sites, geom.Point{X: float64(x), Y: float64(y)})
		}
	}

	d, err := Compute(sites)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if len(d.Cells) != len(sites) {
		t.Fatalf("got %d cells, want %d", len(d.Cells), len(sites))
	}

	for i, cell := range d.Cells {
		unbounded := false
		for _, vi := range cell {
			if vi == Unbounded {
				unbounded = true
			}
		}
		if center := i == 4; center == unbounded {
			t.Errorf("cell %d unbounded = %v", i, unbounded)
		}
	}

	poly, ok := polygon(t, d, d.Cells[4])
	if !ok {
		t.Fatal("center cell has undefined vertices")
	}
	want := map[geom.Point]bool{
		{X: 0.5, Y: 0.5}: true, {X: 1.5, Y: 0.5}: true,
		{X: 1.5, Y: 1.5}: true, {X: 0.5, Y: 1.5}: true,
	}
	for _, p := range poly {
		r := geom.Point{X: math.Round(p.X*1e9) / 1e9, Y: math.Round(p.Y*1e9) / 1e9}
		if !want[r] {
			t.Errorf("unexpected center cell vertex %v", p)
		}
	}
	if !geom.Inside(sites[4], poly) {
		t.Error("center cell does not contain its site")
	}
}

func TestComputeNearestSite(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))
	sites := make([]geom.Point, 200)
	for i := range sites {
		sites[i] = geom.Point{X: r.Float64() * 10, Y: r.Float64() * 10}
	}

	d, err := Compute(sites)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	polys := make([][]geom.Point, len(sites))
	for i, cell := range d.Cells {
		if poly, ok := polygon(t, d, cell); ok {
			polys[i] = poly
			if !geom.Inside(sites[i], poly) {
				t.Errorf("cell %d does not contain its site", i)
			}
		}
	}

	for k := 0; k < 500; k++ {
		p := geom.Point{X: 2 + r.Float64()*6, Y: 2 + r.Float64()*6}
		nearest, best := -1, math.Inf(1)
		for i, s := range sites {
			if d2 := p.Sub(s).Len2(); d2 < best {
				nearest, best = i, d2
			}
		}
		if polys[nearest] == nil {
			continue
		}
		if !geom.Inside(p, polys[nearest]) {
			t.Errorf("probe %v not inside cell of nearest site %d", p, nearest)
		}
	}
}

func TestComputeDeterministic(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 5))
	sites := make([]geom.Point, 64)
	for i := range sites {
		sites[i] = geom.Point{X: r.Float64() * 8, Y: r.Float64() * 8}
	}

	d1, err := Compute(sites)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	d2, err := Compute(sites)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if len(d1.Positions) != len(d2.Positions) {
		t.Fatalf("position count differs: %d vs %d", len(d1.Positions), len(d2.Positions))
	}
	for i := range d1.Cells {
		if len(d1.Cells[i]) != len(d2.Cells[i]) {
			t.Fatalf("cell %d differs", i)
		}
		for j := range d1.Cells[i] {
			p1, ok1 := d1.Position(d1.Cells[i][j])
			p2, ok2 := d2.Position(d2.Cells[i][j])
			if ok1 != ok2 || p1 != p2 {
				t.Fatalf("cell %d vertex %d differs", i, j)
			}
		}
	}
}

func TestComputeRejectsBadInput(t *testing.T) {
	if _, err := Compute([]geom.Point{{X: 0, Y: 0}, {X: 1, Y: 1}}); !errors.Is(err, ErrTooFewSites) {
		t.Errorf("two sites: err = %v, want ErrTooFewSites", err)
	}
	if _, err := Compute([]geom.Point{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 0}}); err == nil {
		t.Error("duplicate sites should fail")
	}
	if _, err := Compute([]geom.Point{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: math.NaN(), Y: 0}}); err == nil {
		t.Error("NaN site should fail")
	}
}

func TestPositionOutOfRange(t *testing.T) {
	d, err := Compute([]geom.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if _, ok := d.Position(Unbounded); ok {
		t.Error("Unbounded should not resolve")
	}
	if _, ok := d.Position(len(d.Positions)); ok {
		t.Error("out-of-range index should not resolve")
	}
	for i, cell := range d.Cells {
		if cell[len(cell)-1] != Unbounded {
			t.Errorf("hull cell %d should be unbounded", i)
		}
	}
}

func TestPositionHandBuiltDiagram(t *testing.T) {
	d := &Diagram{
		Cells: [][]int{{0, 1, 2}},
		Positions: []geom.Point{
			{X: 0, Y: 0},
			{X: math.NaN(), Y: 1},
			{X: 1, Y: math.Inf(1)},
		},
	}
	if p, ok := d.Position(0); !ok || p != (geom.Point{X: 0, Y: 0}) {
		t.Errorf("Position(0) = %v, %v", p, ok)
	}
	for _, i := range []int{1, 2} {
		if _, ok := d.Position(i); ok {
			t.Errorf("non-finite vertex %d should not resolve", i)
		}
	}
}
