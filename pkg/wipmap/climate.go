package wipmap

import (
	"github.com/chevalvert/wipmap-generate/pkg/geom"
	"github.com/chevalvert/wipmap-generate/pkg/noise"
)

// Field is a continuous climate value over tile space.
type Field func(x, y float64) float64

// Range is the closed interval a Field is rescaled into.
type Range struct{ Min, Max float64 }

// NewField builds a Field over a freshly seeded noise instance. Noise is
// sampled at ((offset.X + x) / resolution, (offset.Y + y) / resolution) and its
// [-1, 1] output is mapped linearly onto r. The seed is the next draw of src,
// so fields created in the same order from equal sources are identical.
func NewField(src Source, resolution float64, r Range, offset geom.Point) Field {
	n := noise.New(int64(src.Float64() * (1 << 53)))
	return func(x, y float64) float64 {
		v := n.Eval((offset.X+x)/resolution, (offset.Y+y)/resolution)
		return r.Min + (v+1)/2*(r.Max-r.Min)
	}
}

// Climate holds the named fields of one tile. Each field owns its own noise
// instance.
type Climate struct {
	Temperature Field
	Humidity    Field
	DistortionX Field
	DistortionY Field
	JitterX     Field
	JitterY     Field
	GradientX   Field
	GradientY   Field
}

// newClimate seeds every field from src in a fixed order. Without stitching
// fields are sampled from local coordinates; with it the tile's origin in
// world space is added so adjacent tiles line up.
func newClimate(src Source, opts Options, tileX, tileY float64) Climate {
	offset := geom.Point{X: 1, Y: 1}
	if opts.Stitch {
		offset.X += tileX * float64(opts.Width)
		offset.Y += tileY * float64(opts.Height)
	}
	unit := Range{0, 1}
	distortion := Range{-opts.Distortion, opts.Distortion}
	jitter := Range{-opts.Jitter, opts.Jitter}
	gradient := Range{-opts.Gradient, opts.Gradient}

	return Climate{
		Temperature: NewField(src, float64(opts.Width), unit, offset),
		Humidity:    NewField(src, float64(opts.Height), unit, offset),
		DistortionX: NewField(src, 1, distortion, offset),
		DistortionY: NewField(src, 1, distortion, offset),
		JitterX:     NewField(src, 2, jitter, offset),
		JitterY:     NewField(src, 2, jitter, offset),
		GradientX:   NewField(src, 1, gradient, offset),
		GradientY:   NewField(src, 1, gradient, offset),
	}
}
