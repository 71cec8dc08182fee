package emath

import "math"

// Some functions that only operate on basic types, that are useful

func Clip(f, min, max float64) float64 {
	if f < min {
		return min
	} else if f > max {
		return max
	}
	return f
}

// Clip01 clips f into [0,1]; NaN goes to 0.
func Clip01(f float64) float64 {
	if math.IsNaN(f) {
		return 0
	}
	return Clip(f, 0, 1)
}

// https://www.sjbrown.co.uk/posts/gamma-correct-rendering/ - "linear RGB to sRGB"
// `f` is assumed to be in the range [0,1]
func GammaExpand_F64(f float64) float64 {
	if f <= 0.0031308 {
		return 12.92 * f
	}
	return 1.055*math.Pow(f, 1.0/2.4) - 0.055
}
