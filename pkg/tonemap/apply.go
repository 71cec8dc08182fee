package tonemap

import (
	"math"

	"github.com/abworrall/align2d/pkg/emath"
)

// window maps x into [0,1] against the [Min,Max] window.
func (p Params) window(x float64) float64 {
	if x < p.Min {
		return 0
	} else if x > p.Max {
		return 1
	}
	return (x - p.Min) / (p.Max - p.Min)
}

// Map tone maps a single sample. The result is always in [0,1].
func Map(p Params, x float64) float64 {
	u := p.window(x)
	y := p.Contrast*(math.Pow(u, p.Gamma)-0.5) + p.Brightness + 0.5
	return emath.Clip01(y)
}

// Apply tone maps a whole channel, into a new grid.
func Apply(p Params, in emath.FloatGrid) (emath.FloatGrid, error) {
	if err := p.Validate(); err != nil {
		return emath.FloatGrid{}, err
	}
	return in.Map(func(x float64) float64 { return Map(p, x) }), nil
}

// A Curve is the tone response, sampled at n evenly spaced inputs
// starting at 0 (and stopping short of 1).
type Curve struct {
	p Params
	n int
}

func SampleCurve(p Params, n int) Curve {
	if n < 0 {
		n = 0
	}
	return Curve{p: p, n: n}
}

func (c Curve) Len() int { return c.n }

func (c Curve) At(i int) (float64, float64) {
	x := float64(i) / float64(c.n)
	return x, Map(c.p, x)
}

func (c Curve) Points() []emath.Point {
	pts := make([]emath.Point, c.n)
	for i := range pts {
		x, y := c.At(i)
		pts[i] = emath.Pt(x, y)
	}
	return pts
}
