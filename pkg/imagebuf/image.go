package imagebuf

// Conversions to and from golang's image libraries.

import (
	"image"
	"image/color"

	"github.com/mdouchement/hdr/hdrcolor"

	"github.com/abworrall/align2d/pkg/emath"
)

// Implement image.Image, so a buffer can be handed to encoders as-is.
// Samples are not clipped here; HDR encoders want them unbounded.
func (b *Buffer) ColorModel() color.Model { return hdrcolor.RGBModel }
func (b *Buffer) Bounds() image.Rectangle { return image.Rect(0, 0, b.w, b.h) }
func (b *Buffer) At(x, y int) color.Color { return b.HDRAt(x, y) }

// Implement hdr.Image
func (b *Buffer) Size() int { return b.w * b.h }

// HDRAt maps channels 0,1,2 onto R,G,B. A single channel is replicated
// across all three; a missing third channel reads as zero.
func (b *Buffer) HDRAt(x, y int) hdrcolor.Color {
	switch len(b.planes) {
	case 1:
		v := b.planes[0].Get(x, y)
		return hdrcolor.RGB{R: v, G: v, B: v}
	case 2:
		return hdrcolor.RGB{R: b.planes[0].Get(x, y), G: b.planes[1].Get(x, y)}
	default:
		return hdrcolor.RGB{R: b.planes[0].Get(x, y), G: b.planes[1].Get(x, y), B: b.planes[2].Get(x, y)}
	}
}

func to16(f float64) uint16 { return uint16(emath.Clip01(f)*65535.0 + 0.5) }

// ToImage renders the buffer as a 16-bit image for display or PNG
// output, clipping samples to [0,1]. One channel gives a Gray16.
func (b *Buffer) ToImage() image.Image {
	r := b.Bounds()
	if len(b.planes) == 1 {
		img := image.NewGray16(r)
		for y := 0; y < b.h; y++ {
			for x := 0; x < b.w; x++ {
				img.SetGray16(x, y, color.Gray16{Y: to16(b.planes[0].Get(x, y))})
			}
		}
		return img
	}

	img := image.NewRGBA64(r)
	for y := 0; y < b.h; y++ {
		for x := 0; x < b.w; x++ {
			c := b.HDRAt(x, y).(hdrcolor.RGB)
			img.SetRGBA64(x, y, color.RGBA64{R: to16(c.R), G: to16(c.G), B: to16(c.B), A: 0xFFFF})
		}
	}
	return img
}

// FromImage converts a decoded image into a buffer, with samples scaled
// into [0,1]. Grayscale images become a single channel, everything else
// three (alpha is dropped).
func FromImage(img image.Image) *Buffer {
	r := img.Bounds()
	gray := false
	switch img.ColorModel() {
	case color.GrayModel, color.Gray16Model:
		gray = true
	}

	c := 3
	if gray {
		c = 1
	}
	b, err := New(r.Dy(), r.Dx(), c)
	if err != nil {
		return nil
	}

	for y := 0; y < b.h; y++ {
		for x := 0; x < b.w; x++ {
			cr, cg, cb, _ := img.At(r.Min.X+x, r.Min.Y+y).RGBA()
			if gray {
				b.planes[0].Set(x, y, float64(cr)/65535.0)
				continue
			}
			b.planes[0].Set(x, y, float64(cr)/65535.0)
			b.planes[1].Set(x, y, float64(cg)/65535.0)
			b.planes[2].Set(x, y, float64(cb)/65535.0)
		}
	}
	return b
}
