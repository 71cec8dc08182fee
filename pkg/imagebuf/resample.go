package imagebuf

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"

	"github.com/abworrall/align2d/pkg/emath"
)

// Resample crops the window out of the buffer (in image coords) and
// scales it to w×h, one channel at a time. Samples go through 16 bits
// on the way, so this is for display, not for analysis.
func Resample(b *Buffer, window emath.Rect, w, h int) (*Buffer, error) {
	sr := image.Rect(
		int(math.Floor(window.X)), int(math.Floor(window.Y)),
		int(math.Ceil(window.X+window.Width)), int(math.Ceil(window.Y+window.Height)),
	).Intersect(b.Bounds())
	if sr.Empty() {
		return nil, fmt.Errorf("resample window %v outside %s: %w", window, b.Bounds(), ErrInvalidImageShape)
	}

	out, err := New(h, w, len(b.planes))
	if err != nil {
		return nil, err
	}

	dr := image.Rect(0, 0, w, h)
	for i := range b.planes {
		src := grayImage(&b.planes[i])
		dst := image.NewGray16(dr)
		draw.BiLinear.Scale(dst, dr, src, sr, draw.Src, nil)

		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				out.planes[i].Set(x, y, float64(dst.Gray16At(x, y).Y)/65535.0)
			}
		}
	}

	return out, nil
}

func grayImage(g *emath.FloatGrid) *image.Gray16 {
	img := image.NewGray16(image.Rect(0, 0, g.Dx(), g.Dy()))
	for y := 0; y < g.Dy(); y++ {
		for x := 0; x < g.Dx(); x++ {
			img.SetGray16(x, y, color.Gray16{Y: to16(g.Get(x, y))})
		}
	}
	return img
}
