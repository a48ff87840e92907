package wipmap

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestDefaultOptionsValid(t *testing.T) {
	if err := DefaultOptions().Validate(); err != nil {
		t.Fatal(err)
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		field string
		edit  func(*Options)
	}{
		{"width", func(o *Options) { o.Width = 0 }},
		{"height", func(o *Options) { o.Height = -2 }},
		{"seed", func(o *Options) { s := int64(-1); o.Seed = &s }},
		{"distortion", func(o *Options) { o.Distortion = math.NaN() }},
		{"gradient", func(o *Options) { o.Gradient = -0.1 }},
		{"jitter", func(o *Options) { o.Jitter = 0.5 }},
		{"poissonDensity", func(o *Options) { o.PoissonDensity = 0 }},
		{"poissonDensity", func(o *Options) { o.PoissonDensity = 1000 }},
		{"decimals", func(o *Options) { o.Decimals = 16 }},
		{"probabilities.water", func(o *Options) { o.Probabilities.Water = 1.5 }},
		{"probabilities.forest", func(o *Options) { o.Probabilities.Forest = -1 }},
		{"biomesMap", func(o *Options) { o.BiomesMap = nil }},
		{"landmarks.towers", func(o *Options) {
			o.Landmarks = map[string]LandmarkSpec{"towers": {Count: 2}}
		}},
		{"landmarks.towers", func(o *Options) {
			o.Landmarks = map[string]LandmarkSpec{"towers": {Count: -1, Biomes: []BiomeType{Plains}}}
		}},
	}
	for _, tt := range tests {
		opts := DefaultOptions()
		tt.edit(&opts)
		err := opts.Validate()
		if !errors.Is(err, ErrInvalidOptions) {
			t.Errorf("%s: err = %v, want ErrInvalidOptions", tt.field, err)
			continue
		}
		var oe *OptionError
		if !errors.As(err, &oe) || oe.Field != tt.field {
			t.Errorf("err = %v, want field %s", err, tt.field)
		}
	}
}

func TestOptionsValidateMessage(t *testing.T) {
	opts := DefaultOptions()
	opts.PoissonDensity = 1000
	err := opts.Validate()
	const want = "invalid option poissonDensity: must be in (0, 100]"
	if err == nil || err.Error() != want {
		t.Fatalf("err = %v, want %q", err, want)
	}
}

func TestLoadOptions(t *testing.T) {
	opts, err := LoadOptions(strings.NewReader(`{
		"width": 4,
		"probabilities": {"water": 0.5},
		"biomesMap": [["PLAINS"]],
		"landmarks": {"cities": {"count": 2, "biomes": ["PLAINS"]}}
	}`))
	if err != nil {
		t.Fatal(err)
	}
	if opts.Width != 4 || opts.Height != 10 {
		t.Errorf("size = %dx%d, want 4x10", opts.Width, opts.Height)
	}
	if opts.Probabilities.Water != 0.5 {
		t.Errorf("water = %g", opts.Probabilities.Water)
	}
	if opts.Decimals != 3 {
		t.Errorf("decimals = %d, default lost", opts.Decimals)
	}
	if got := opts.Landmarks["cities"]; got.Count != 2 || got.Biomes[0] != Plains {
		t.Errorf("landmarks = %+v", opts.Landmarks)
	}
}

func TestLoadOptionsRejects(t *testing.T) {
	for _, doc := range []string{
		`{"widht": 4}`,
		`{"biomesMap": [["LAVA"]]}`,
		`{"jitter": 2}`,
		`not json`,
	} {
		if _, err := LoadOptions(strings.NewReader(doc)); err == nil {
			t.Errorf("LoadOptions(%s): expected error", doc)
		}
	}
}

func TestOptionsFingerprint(t *testing.T) {
	a, b := DefaultOptions(), DefaultOptions()
	if a.Fingerprint() != b.Fingerprint() {
		t.Fatal("equal options have different fingerprints")
	}
	b.Gradient = 0.2
	if a.Fingerprint() == b.Fingerprint() {
		t.Fatal("different options share a fingerprint")
	}
}
