package wipmap

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"math"
	"slices"

	"github.com/cespare/xxhash/v2"
)

// ErrInvalidOptions is matched by every OptionError.
var ErrInvalidOptions = errors.New("invalid options")

// OptionError reports an option that fails validation. Generation never
// starts when one is returned.
type OptionError struct {
	Field  string
	Reason string
}

func (e *OptionError) Error() string {
	return fmt.Sprintf("invalid option %s: %s", e.Field, e.Reason)
}

func (e *OptionError) Is(target error) bool { return target == ErrInvalidOptions }

// Probabilities tunes the random biome gates.
type Probabilities struct {
	// Water is the humidity threshold below which a cell may turn into WATER.
	Water float64 `json:"water"`
	// Forest is the chance a PLAINS cell is split off as FOREST. 0 disables it.
	Forest float64 `json:"forest"`
}

// LandmarkSpec asks for Count landmarks, the k-th of which must sit in a
// cell of type Biomes[k % len(Biomes)].
type LandmarkSpec struct {
	Count  int         `json:"count"`
	Biomes []BiomeType `json:"biomes"`
}

// Options configures one tile generation. Use DefaultOptions as the base.
type Options struct {
	Width  int `json:"width"`
	Height int `json:"height"`

	// Seed overrides the coordinate-derived seed when set.
	Seed *int64 `json:"seed,omitempty"`
	// Stitch evaluates climate in world space so neighbouring tiles generated
	// with the same explicit seed share continuous fields.
	Stitch bool `json:"stitch"`

	Distortion float64 `json:"distortion"`
	Jitter     float64 `json:"jitter"`
	Gradient   float64 `json:"gradient"`
	// GradientField reads the per-point gradient offset from two climate
	// fields instead of fresh random draws.
	GradientField bool `json:"gradientField"`

	PoissonDensity float64 `json:"poissonDensity"`
	Decimals       int     `json:"decimals"`

	Probabilities Probabilities           `json:"probabilities"`
	BiomesMap     BiomeTable              `json:"biomesMap"`
	Landmarks     map[string]LandmarkSpec `json:"landmarks"`
}

// DefaultOptions returns the full default option set.
func DefaultOptions() Options {
	return Options{
		Width:          10,
		Height:         10,
		Distortion:     0.2,
		Jitter:         0.3,
		Gradient:       0.1,
		PoissonDensity: 1,
		Decimals:       3,
		Probabilities: Probabilities{
			Water: 0.2,
		},
		BiomesMap: DefaultBiomeTable(),
		Landmarks: map[string]LandmarkSpec{},
	}
}

// LoadOptions decodes a JSON options document on top of DefaultOptions and
// validates the result. Unknown fields are rejected.
func LoadOptions(r io.Reader) (Options, error) {
	opts := DefaultOptions()
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&opts); err != nil {
		return Options{}, fmt.Errorf("decode options: %w", err)
	}
	if err := opts.Validate(); err != nil {
		return Options{}, err
	}
	return opts, nil
}

// Validate checks every field once, before any generation work.
func (o Options) Validate() error {
	switch {
	case o.Width <= 0:
		return &OptionError{Field: "width", Reason: "must be positive"}
	case o.Height <= 0:
		return &OptionError{Field: "height", Reason: "must be positive"}
	case o.Seed != nil && *o.Seed < 0:
		return &OptionError{Field: "seed", Reason: "must not be negative"}
	case !nonNegative(o.Distortion):
		return &OptionError{Field: "distortion", Reason: "must be a non-negative number"}
	case !nonNegative(o.Gradient):
		return &OptionError{Field: "gradient", Reason: "must be a non-negative number"}
	case !nonNegative(o.Jitter) || o.Jitter >= 0.5:
		// Jitter below half a cell keeps lattice sites distinct and ordered.
		return &OptionError{Field: "jitter", Reason: "must be in [0, 0.5)"}
	case !(o.PoissonDensity > 0) || o.PoissonDensity > maxPoissonDensity:
		return &OptionError{Field: "poissonDensity", Reason: fmt.Sprintf("must be in (0, %g]", maxPoissonDensity)}
	case o.Decimals < 0 || o.Decimals > 15:
		return &OptionError{Field: "decimals", Reason: "must be in [0, 15]"}
	case !unit(o.Probabilities.Water):
		return &OptionError{Field: "probabilities.water", Reason: "must be in [0, 1]"}
	case !unit(o.Probabilities.Forest):
		return &OptionError{Field: "probabilities.forest", Reason: "must be in [0, 1]"}
	}
	if err := o.BiomesMap.validate(); err != nil {
		return err
	}
	for _, name := range slices.Sorted(maps.Keys(o.Landmarks)) {
		spec := o.Landmarks[name]
		field := "landmarks." + name
		if spec.Count < 0 {
			return &OptionError{Field: field, Reason: "count must not be negative"}
		}
		if spec.Count > 0 && len(spec.Biomes) == 0 {
			return &OptionError{Field: field, Reason: "at least one biome type is required"}
		}
		for _, b := range spec.Biomes {
			if !b.Valid() {
				return &OptionError{Field: field, Reason: fmt.Sprintf("biome %d is not a biome type", uint8(b))}
			}
		}
	}
	return nil
}

// Fingerprint hashes the options that influence generation output. Two
// option sets with the same fingerprint produce identical tiles.
func (o Options) Fingerprint() uint64 {
	// Map keys are sorted by encoding/json, so the encoding is canonical.
	b, err := json.Marshal(o)
	if err != nil {
		return 0
	}
	return xxhash.Sum64(b)
}

func (o Options) clone() Options {
	c := o
	if o.Seed != nil {
		s := *o.Seed
		c.Seed = &s
	}
	c.BiomesMap = o.BiomesMap.clone()
	c.Landmarks = make(map[string]LandmarkSpec, len(o.Landmarks))
	for k, v := range o.Landmarks {
		v.Biomes = append([]BiomeType(nil), v.Biomes...)
		c.Landmarks[k] = v
	}
	return c
}

const maxPoissonDensity = 100.0

func nonNegative(v float64) bool { return v >= 0 && !math.IsInf(v, 0) }
func unit(v float64) bool        { return v >= 0 && v <= 1 }
