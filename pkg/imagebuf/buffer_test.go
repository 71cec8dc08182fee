package imagebuf

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/mdouchement/hdr"
	"github.com/mdouchement/hdr/hdrcolor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abworrall/align2d/pkg/emath"
)

// Check we really do satisfy the HDR encoders.
var _ hdr.Image = &Buffer{}

func TestFromSamplesShapes(t *testing.T) {
	tests := []struct {
		name   string
		shape  []int
		n      int
		wantC  int
		errors bool
	}{
		{"2d promoted", []int{2, 3}, 6, 1, false},
		{"3d", []int{2, 3, 3}, 18, 3, false},
		{"too short", []int{2, 3}, 5, 0, true},
		{"1d", []int{6}, 6, 0, true},
		{"4d", []int{1, 2, 3, 1}, 6, 0, true},
		{"zero height", []int{0, 3}, 0, 0, true},
		{"4 channels", []int{2, 3, 4}, 24, 0, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b, err := FromSamples(tc.shape, make([]float64, tc.n))
			if tc.errors {
				assert.ErrorIs(t, err, ErrInvalidImageShape)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.shape[0], b.Height())
			assert.Equal(t, tc.shape[1], b.Width())
			assert.Equal(t, tc.wantC, b.ChannelCount())
		})
	}
}

func TestTooManyChannels(t *testing.T) {
	_, err := New(2, 2, 5)
	assert.ErrorIs(t, err, ErrInvalidImageShape)

	g := emath.NewFloatGrid(1, 1)
	b, err := FromGrids(g, g, g)
	require.NoError(t, err)
	assert.Equal(t, 3, b.ChannelCount())

	_, err = FromGrids(g, g, g, g)
	assert.ErrorIs(t, err, ErrInvalidImageShape)
}

func TestSampleLayout(t *testing.T) {
	// 1 row, 2 columns, 2 channels: (x0:c0,c1) (x1:c0,c1)
	b, err := FromSamples([]int{1, 2, 2}, []float64{0.1, 0.2, 0.3, 0.4})
	require.NoError(t, err)

	assert.Equal(t, 0.1, b.At3(0, 0, 0))
	assert.Equal(t, 0.2, b.At3(0, 0, 1))
	assert.Equal(t, 0.3, b.At3(1, 0, 0))
	assert.Equal(t, 0.4, b.At3(1, 0, 1))

	shape, data := b.Samples()
	assert.Equal(t, []int{1, 2, 2}, shape)
	assert.Equal(t, []float64{0.1, 0.2, 0.3, 0.4}, data)
}

func TestChannelIsACopy(t *testing.T) {
	b, _ := FromSamples([]int{1, 2}, []float64{1, 2})
	g, err := b.Channel(0)
	require.NoError(t, err)
	g.Set(0, 0, 99)
	assert.Equal(t, 1.0, b.At3(0, 0, 0))

	_, err = b.Channel(1)
	assert.ErrorIs(t, err, ErrNoSuchChannel)
}

func TestSetChannel(t *testing.T) {
	b, _ := New(2, 2, 2)
	g, _ := emath.NewFloatGridFromValues(2, 2, []float64{1, 2, 3, 4})
	require.NoError(t, b.SetChannel(1, g))
	assert.Equal(t, 4.0, b.At3(1, 1, 1))
	assert.Equal(t, 0.0, b.At3(1, 1, 0))

	wrong := emath.NewFloatGrid(3, 2)
	assert.ErrorIs(t, b.SetChannel(0, wrong), ErrExtentMismatch)
	assert.ErrorIs(t, b.SetChannel(2, g), ErrNoSuchChannel)
}

func TestOverlay(t *testing.T) {
	f, _ := FromSamples([]int{1, 2}, []float64{0.1, 0.2})
	m, _ := FromSamples([]int{1, 2}, []float64{0.7, 0.8})

	o, err := Overlay(f, m)
	require.NoError(t, err)
	assert.Equal(t, 3, o.ChannelCount())
	assert.Equal(t, 0.2, o.At3(1, 0, 0))
	assert.Equal(t, 0.8, o.At3(1, 0, 1))
	assert.Equal(t, 0.0, o.At3(1, 0, 2))

	bigger, _ := New(2, 2, 1)
	_, err = Overlay(f, bigger)
	assert.ErrorIs(t, err, ErrExtentMismatch)
}

func TestHDRAt(t *testing.T) {
	b, _ := FromSamples([]int{1, 1}, []float64{2.5})
	assert.Equal(t, hdrcolor.RGB{R: 2.5, G: 2.5, B: 2.5}, b.HDRAt(0, 0))
	assert.Equal(t, 1, b.Size())
}

func TestImageRoundTrip(t *testing.T) {
	b, _ := FromSamples([]int{2, 2}, []float64{0, 0.25, 0.5, 1.5})
	img := b.ToImage()
	assert.Equal(t, color.Gray16Model, img.ColorModel())

	b2 := FromImage(img)
	require.NotNil(t, b2)
	assert.Equal(t, 1, b2.ChannelCount())
	assert.InDelta(t, 0.25, b2.At3(1, 0, 0), 1e-4)
	assert.InDelta(t, 1.0, b2.At3(1, 1, 0), 1e-4) // clipped

	rgb := image.NewRGBA(image.Rect(0, 0, 1, 1))
	rgb.Set(0, 0, color.RGBA{R: 255, A: 255})
	b3 := FromImage(rgb)
	assert.Equal(t, 3, b3.ChannelCount())
	assert.InDelta(t, 1.0, b3.At3(0, 0, 0), 1e-6)
}

func TestResample(t *testing.T) {
	b, _ := New(4, 4, 2)
	g, _ := b.Channel(0)
	for i := range g.Values() {
		g.Values()[i] = 0.5
	}
	require.NoError(t, b.SetChannel(0, g))

	out, err := Resample(b, emath.Rect{X: 1, Y: 1, Width: 2, Height: 2}, 4, 4)
	require.NoError(t, err)
	assert.Equal(t, 2, out.ChannelCount())
	assert.Equal(t, 4, out.Width())
	assert.InDelta(t, 0.5, out.At3(2, 2, 0), 1e-3)
	assert.InDelta(t, 0.0, out.At3(2, 2, 1), 1e-3)

	_, err = Resample(b, emath.Rect{X: 10, Y: 10, Width: 2, Height: 2}, 4, 4)
	assert.Error(t, err)
}

func TestWriteAndLoadPNG(t *testing.T) {
	b, _ := FromSamples([]int{2, 3}, []float64{0, 0.2, 0.4, 0.6, 0.8, 1})
	filename := filepath.Join(t.TempDir(), "gray.png")
	require.NoError(t, WritePNG(b.ToImage(), filename))

	b2, md, err := Load(filename)
	require.NoError(t, err)
	assert.Equal(t, "png", md.Format)
	assert.False(t, md.HasExif)
	assert.Equal(t, 2, b2.Height())
	assert.Equal(t, 3, b2.Width())
	assert.InDelta(t, 0.6, b2.At3(0, 1, 0), 1e-4)
}

func TestWriteHDR(t *testing.T) {
	b, _ := FromSamples([]int{2, 2, 3}, make([]float64, 12))
	require.NoError(t, WriteHDR(b, filepath.Join(t.TempDir(), "out.hdr")))
}
