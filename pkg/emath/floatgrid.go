package emath

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/codahale/hdrhistogram"
	"github.com/fogleman/gg" // Move to https://pkg.go.dev/golang.org/x/image/font#Drawer sometime
)

// A FloatGrid is a grid of floats, with some operations. It is the
// storage for a single channel of an image; (x,y) is (column,row).
type FloatGrid struct {
	stride int
	values []float64
}

func NewFloatGrid(w, h int) FloatGrid {
	return FloatGrid{
		stride: w,
		values: make([]float64, w*h),
	}
}

// NewFloatGridFromValues wraps a row-major slice; it does not copy it.
func NewFloatGridFromValues(w, h int, vals []float64) (FloatGrid, error) {
	if w <= 0 || h <= 0 || len(vals) != w*h {
		return FloatGrid{}, fmt.Errorf("grid %dx%d cannot hold %d values", w, h, len(vals))
	}
	return FloatGrid{stride: w, values: vals}, nil
}

func (g1 *FloatGrid) NewFromThis() FloatGrid { return NewFloatGrid(g1.Dx(), g1.Dy()) }
func (fg *FloatGrid) Set(x, y int, v float64) { fg.values[fg.stride*y+x] = v }
func (fg *FloatGrid) Get(x, y int) float64    { return fg.values[fg.stride*y+x] }
func (fg *FloatGrid) Dx() int                 { return fg.stride }
func (fg *FloatGrid) Len() int                { return len(fg.values) }

// Values exposes the row-major backing slice; callers must not resize it.
func (fg *FloatGrid) Values() []float64 { return fg.values }

func (fg *FloatGrid) Dy() int {
	if fg.stride == 0 {
		return 0
	}
	return len(fg.values) / fg.stride
}

func (g1 *FloatGrid) SameSize(g2 *FloatGrid) bool {
	return g1.Dx() == g2.Dx() && g1.Dy() == g2.Dy()
}

func (g1 *FloatGrid) Copy() *FloatGrid {
	g2 := FloatGrid{stride: g1.stride, values: make([]float64, len(g1.values))}
	copy(g2.values, g1.values)
	return &g2
}

// Map returns a new grid with f applied to every value.
func (g1 *FloatGrid) Map(f func(float64) float64) FloatGrid {
	g2 := g1.NewFromThis()
	for i, v := range g1.values {
		g2.values[i] = f(v)
	}
	return g2
}

// Bilinear samples the grid at a fractional position, with integer
// coords landing exactly on a sample. Positions outside the grid report
// false.
func (fg *FloatGrid) Bilinear(x, y float64) (float64, bool) {
	w, h := fg.Dx(), fg.Dy()
	if w == 0 || h == 0 || math.IsNaN(x) || math.IsNaN(y) {
		return 0, false
	} else if x < 0 || y < 0 || x > float64(w-1) || y > float64(h-1) {
		return 0, false
	}

	x0, y0 := int(math.Floor(x)), int(math.Floor(y))
	fx, fy := x-float64(x0), y-float64(y0)
	x1, y1 := x0+1, y0+1
	if x1 >= w {
		x1 = x0
	}
	if y1 >= h {
		y1 = y0
	}

	top := fg.Get(x0, y0)*(1-fx) + fg.Get(x1, y0)*fx
	bot := fg.Get(x0, y1)*(1-fx) + fg.Get(x1, y1)*fx
	return top*(1-fy) + bot*fy, true
}

func (fg *FloatGrid) MinMax() (float64, float64) {
	min := math.MaxFloat64
	max := -1.0 * min

	for i := 0; i < len(fg.values); i++ {
		if fg.values[i] > max {
			max = fg.values[i]
		}
		if fg.values[i] < min {
			min = fg.values[i]
		}
	}
	return min, max
}

func (fg *FloatGrid) Stats() string {
	min, max := fg.MinMax()
	return fmt.Sprintf("fg[%dx%d, vals{%f,%f}]", fg.Dx(), fg.Dy(), min, max)
}

// Percentile resolution; values are recorded as integer multiples of 1/percentileScale.
const percentileScale = 100000

// Percentiles finds the values at each of the percentiles (0-100),
// across all the values in all the grids. Values are assumed to lie in
// [0,1], and anything outside is clipped before being counted. The
// answers are approximate, good to about three significant figures.
func Percentiles(pcts []float64, grids ...FloatGrid) []float64 {
	h := hdrhistogram.New(1, percentileScale, 3)
	for _, g := range grids {
		for _, v := range g.values {
			if math.IsNaN(v) {
				continue
			}
			h.RecordValue(int64(math.Round(Clip01(v) * percentileScale)))
		}
	}

	ret := make([]float64, len(pcts))
	for i, p := range pcts {
		ret[i] = float64(h.ValueAtQuantile(p)) / percentileScale
	}
	return ret
}

// ToImg saves a simple grayscale, based on the range of values in the grid, and gamma scaling the
// gray to look normal for human vision
func (fg *FloatGrid) ToImg(title, filename string) error {
	min, max := fg.MinMax()
	if max <= min {
		max = min + 1
	}

	img := image.NewRGBA64(image.Rectangle{Max: image.Point{fg.Dx(), fg.Dy()}})
	for x := 0; x < fg.Dx(); x++ {
		for y := 0; y < fg.Dy(); y++ {
			lum := fg.Get(x, y)
			gray := GammaExpand_F64((lum - min) / (max - min))
			col := color.RGBA64{uint16(gray * 65535.0), uint16(gray * 65535.0), uint16(gray * 65535.0), 0xFFFF}
			img.Set(x, y, col)
		}
	}

	dc := gg.NewContextForImage(img)
	dc.SetRGB(1, 1, 0)
	dc.DrawString(title, 10, 20)
	return dc.SavePNG(filename)
}
