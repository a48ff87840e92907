package wipmap

import (
	"math"
	"math/rand/v2"
	"strconv"
	"strings"
)

// Source is the seeded randomness threaded through one generation. Every
// stage draws from the same Source in a fixed order, which is what makes a
// tile reproducible from its seed.
type Source interface {
	Float64() float64
	IntN(n int) int
}

// NewSource returns the default Source for seed: a PCG generator owned by a
// single generation call.
func NewSource(seed int64) Source {
	return rand.New(rand.NewPCG(uint64(seed), 0x9e3779b97f4a7c15))
}

// HashCoordinate mixes a tile coordinate into a value in [0, 1) with the
// classic fract(sin(dot(p, k)) * m) hash.
func HashCoordinate(x, y float64) float64 {
	v := math.Sin(x*12.9898+y*78.233) * 43758.5453
	return v - math.Floor(v)
}

// Seed derives the seed of tile (x, y): the fractional digits of
// HashCoordinate read back as an integer.
func Seed(x, y float64) int64 {
	h := HashCoordinate(x, y)
	digits := strings.TrimPrefix(strconv.FormatFloat(h, 'f', -1, 64), "0.")
	if len(digits) > 18 {
		digits = digits[:18]
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func randomFloat(src Source, lo, hi float64) float64 {
	return src.Float64()*(hi-lo) + lo
}
