package batch

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/chevalvert/wipmap-generate/pkg/wipmap"
)

func smallGenerator(t *testing.T) *wipmap.Generator {
	t.Helper()
	opts := wipmap.DefaultOptions()
	opts.Width, opts.Height = 3, 3
	g, err := wipmap.NewGenerator(opts)
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestParseRegion(t *testing.T) {
	r, err := ParseRegion("2, -1,0,1")
	if err != nil {
		t.Fatal(err)
	}
	if want := (Region{MinX: 0, MinY: -1, MaxX: 2, MaxY: 1}); r != want {
		t.Fatalf("got %+v, want %+v", r, want)
	}
	if r.Len() != 9 {
		t.Fatalf("Len() = %d, want 9", r.Len())
	}
	for _, bad := range []string{"", "1,2,3", "a,b,c,d"} {
		if _, err := ParseRegion(bad); err == nil {
			t.Errorf("ParseRegion(%q): expected error", bad)
		}
	}
}

func TestRunVisitsEveryTile(t *testing.T) {
	region := Region{MinX: -1, MinY: 0, MaxX: 1, MaxY: 2}
	var mu sync.Mutex
	seen := make(map[[2]int]int64)

	err := Run(context.Background(), smallGenerator(t), region, 3, func(_ context.Context, r Result) error {
		mu.Lock()
		defer mu.Unlock()
		seen[[2]int{r.X, r.Y}] = r.Tile.Seed
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(seen) != region.Len() {
		t.Fatalf("visited %d tiles, want %d", len(seen), region.Len())
	}
	for xy, seed := range seen {
		if want := wipmap.Seed(float64(xy[0]), float64(xy[1])); seed != want {
			t.Errorf("tile %v seed = %d, want %d", xy, seed, want)
		}
	}
}

func TestRunStopsOnError(t *testing.T) {
	boom := errors.New("boom")
	region := Region{MaxX: 9, MaxY: 9}
	var mu sync.Mutex
	calls := 0

	err := Run(context.Background(), smallGenerator(t), region, 2, func(context.Context, Result) error {
		mu.Lock()
		defer mu.Unlock()
		calls++
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if calls >= region.Len() {
		t.Fatalf("all %d tiles were processed after an error", calls)
	}
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Run(ctx, smallGenerator(t), Region{MaxX: 50, MaxY: 50}, 2, func(context.Context, Result) error { return nil })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
