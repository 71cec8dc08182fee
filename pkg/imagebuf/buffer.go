package imagebuf

import (
	"errors"
	"fmt"

	"github.com/abworrall/align2d/pkg/emath"
)

var (
	ErrInvalidImageShape = errors.New("invalid image shape")
	ErrNoSuchChannel     = errors.New("no such channel")
	ErrExtentMismatch    = errors.New("image extents differ")
)

// MaxChannels is the most channels a buffer can hold (RGB).
const MaxChannels = 3

// A Buffer is a stack of channels, each a grid of float samples laid
// out row-major. All channels share the same height and width. A 2D
// input is held as a single channel.
type Buffer struct {
	planes []emath.FloatGrid
	h, w   int
}

// New allocates a zero-filled buffer.
func New(h, w, c int) (*Buffer, error) {
	if h <= 0 || w <= 0 || c <= 0 || c > MaxChannels {
		return nil, fmt.Errorf("new %dx%dx%d: %w", h, w, c, ErrInvalidImageShape)
	}
	b := Buffer{h: h, w: w, planes: make([]emath.FloatGrid, c)}
	for i := range b.planes {
		b.planes[i] = emath.NewFloatGrid(w, h)
	}
	return &b, nil
}

// FromSamples builds a buffer from an H×W or H×W×C sample array,
// row-major with the channel index varying fastest (the numpy layout).
func FromSamples(shape []int, data []float64) (*Buffer, error) {
	var h, w, c int
	switch len(shape) {
	case 2:
		h, w, c = shape[0], shape[1], 1
	case 3:
		h, w, c = shape[0], shape[1], shape[2]
	default:
		return nil, fmt.Errorf("shape %v has %d dims: %w", shape, len(shape), ErrInvalidImageShape)
	}

	b, err := New(h, w, c)
	if err != nil {
		return nil, fmt.Errorf("shape %v: %w", shape, ErrInvalidImageShape)
	} else if len(data) != h*w*c {
		return nil, fmt.Errorf("shape %v wants %d samples, got %d: %w", shape, h*w*c, len(data), ErrInvalidImageShape)
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			for ch := 0; ch < c; ch++ {
				b.planes[ch].Set(x, y, data[(y*w+x)*c+ch])
			}
		}
	}
	return b, nil
}

// FromGrids stacks existing channels; they are copied.
func FromGrids(grids ...emath.FloatGrid) (*Buffer, error) {
	if len(grids) == 0 {
		return nil, fmt.Errorf("no channels: %w", ErrInvalidImageShape)
	}
	b, err := New(grids[0].Dy(), grids[0].Dx(), len(grids))
	if err != nil {
		return nil, err
	}
	for i := range grids {
		if !grids[i].SameSize(&grids[0]) {
			return nil, fmt.Errorf("channel %d is %dx%d, not %dx%d: %w", i, grids[i].Dx(), grids[i].Dy(),
				b.w, b.h, ErrExtentMismatch)
		}
		b.planes[i] = *grids[i].Copy()
	}
	return b, nil
}

func (b *Buffer) Height() int       { return b.h }
func (b *Buffer) Width() int        { return b.w }
func (b *Buffer) ChannelCount() int { return len(b.planes) }

func (b *Buffer) String() string {
	return fmt.Sprintf("Buffer[%dx%dx%d]", b.h, b.w, len(b.planes))
}

func (b *Buffer) SameExtent(b2 *Buffer) bool { return b.h == b2.h && b.w == b2.w }

// Channel returns a copy of the samples of one channel.
func (b *Buffer) Channel(i int) (emath.FloatGrid, error) {
	if i < 0 || i >= len(b.planes) {
		return emath.FloatGrid{}, fmt.Errorf("channel %d of %d: %w", i, len(b.planes), ErrNoSuchChannel)
	}
	return *b.planes[i].Copy(), nil
}

// SetChannel replaces one channel with a copy of g, which must match the extent.
func (b *Buffer) SetChannel(i int, g emath.FloatGrid) error {
	if i < 0 || i >= len(b.planes) {
		return fmt.Errorf("channel %d of %d: %w", i, len(b.planes), ErrNoSuchChannel)
	} else if g.Dx() != b.w || g.Dy() != b.h {
		return fmt.Errorf("channel %d is %dx%d, want %dx%d: %w", i, g.Dx(), g.Dy(), b.w, b.h, ErrExtentMismatch)
	}
	b.planes[i] = *g.Copy()
	return nil
}

// At3 reads a single sample; no bounds checking beyond the slice's.
func (b *Buffer) At3(x, y, ch int) float64 { return b.planes[ch].Get(x, y) }

func (b *Buffer) Copy() *Buffer {
	b2 := Buffer{h: b.h, w: b.w, planes: make([]emath.FloatGrid, len(b.planes))}
	for i := range b.planes {
		b2.planes[i] = *b.planes[i].Copy()
	}
	return &b2
}

// Samples flattens the buffer back out into the layout FromSamples reads.
func (b *Buffer) Samples() ([]int, []float64) {
	c := len(b.planes)
	data := make([]float64, b.h*b.w*c)
	for y := 0; y < b.h; y++ {
		for x := 0; x < b.w; x++ {
			for ch := 0; ch < c; ch++ {
				data[(y*b.w+x)*c+ch] = b.planes[ch].Get(x, y)
			}
		}
	}
	if c == 1 {
		return []int{b.h, b.w}, data
	}
	return []int{b.h, b.w, c}, data
}
