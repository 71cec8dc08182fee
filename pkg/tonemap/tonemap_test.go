package tonemap

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fastrand"

	"github.com/abworrall/align2d/pkg/emath"
	"github.com/abworrall/align2d/pkg/imagebuf"
)

func randUnit() float64 { return float64(fastrand.Uint32n(1000001)) / 1000000.0 }

func TestMapIdentity(t *testing.T) {
	p := DefaultParams()
	for i := 0; i < 1000; i++ {
		x := randUnit()
		assert.InDelta(t, x, Map(p, x), 1e-12)
	}
}

func TestMapAlwaysInUnitRange(t *testing.T) {
	for i := 0; i < 1000; i++ {
		p := Params{
			Contrast:   randUnit() * ContrastMax,
			Brightness: randUnit()*2 - 1,
			Gamma:      randUnit() * GammaMax,
			Min:        randUnit() * 0.5,
			Max:        0.5 + randUnit()*0.5 + 1e-6,
		}
		x := randUnit()*4 - 2
		y := Map(p, x)
		assert.True(t, y >= 0 && y <= 1, "Map(%v, %f) = %f", p, x, y)
	}
}

func TestMapWindow(t *testing.T) {
	p := Params{Contrast: 1, Gamma: 1, Min: 0.2, Max: 0.6}
	assert.Equal(t, 0.0, Map(p, 0.1))
	assert.Equal(t, 1.0, Map(p, 0.7))
	assert.InDelta(t, 0.5, Map(p, 0.4), 1e-12)

	bright := Params{Contrast: 1, Brightness: 0.25, Gamma: 1, Min: 0, Max: 1}
	assert.InDelta(t, 0.75, Map(bright, 0.5), 1e-12)

	flat := Params{Contrast: 0, Gamma: 1, Min: 0, Max: 1}
	assert.InDelta(t, 0.5, Map(flat, 0.9), 1e-12)
}

func TestMinMaxGuard(t *testing.T) {
	s := NewState(2)
	require.NoError(t, s.SetMin(0, 0.3))
	require.NoError(t, s.SetMax(0, 0.4))

	assert.ErrorIs(t, s.SetMin(0, 0.4), ErrInvalidToneRange)
	assert.ErrorIs(t, s.SetMax(0, 0.1), ErrInvalidToneRange)

	p, _ := s.Channel(0)
	assert.Equal(t, 0.3, p.Min)
	assert.Equal(t, 0.4, p.Max)

	assert.ErrorIs(t, s.SetGamma(2, 1), ErrNoSuchChannel)
}

func TestSetClamps(t *testing.T) {
	s := NewState(1)
	require.NoError(t, s.SetContrast(0, 50))
	require.NoError(t, s.SetBrightness(0, -3))
	p, _ := s.Channel(0)
	assert.Equal(t, ContrastMax, p.Contrast)
	assert.Equal(t, BrightnessMin, p.Brightness)
}

func TestRejectsNonFinite(t *testing.T) {
	s := NewState(1)
	assert.ErrorIs(t, s.SetContrast(0, math.NaN()), ErrNonFiniteParam)
	assert.ErrorIs(t, s.SetGamma(0, math.NaN()), ErrNonFiniteParam)
	assert.ErrorIs(t, s.SetParams(0, Params{Contrast: 1, Gamma: 1, Min: math.NaN(), Max: 1}), ErrNonFiniteParam)

	p, _ := s.Channel(0)
	assert.Equal(t, DefaultParams(), p)
	assert.InDelta(t, 0.5, Map(p, 0.5), 1e-12)

	_, err := Apply(Params{Contrast: math.Inf(1), Gamma: 1, Max: 1}, emath.NewFloatGrid(2, 2))
	assert.ErrorIs(t, err, ErrNonFiniteParam)
}

func TestMapNaNSample(t *testing.T) {
	assert.Equal(t, 0.0, Map(DefaultParams(), math.NaN()))
}

func TestCurve(t *testing.T) {
	c := SampleCurve(DefaultParams(), 50)
	assert.Equal(t, 50, c.Len())

	x, y := c.At(49)
	assert.InDelta(t, 0.98, x, 1e-12)
	assert.InDelta(t, 0.98, y, 1e-12)

	pts := c.Points()
	assert.Equal(t, emath.Pt(0, 0), pts[0])
}

func TestUniformEdges(t *testing.T) {
	edges := UniformEdges(DefaultHistogramStep)
	assert.Len(t, edges, 50)
	assert.Equal(t, 0.0, edges[0])
	assert.InDelta(t, 0.98, edges[49], 1e-12)
}

func TestCompute(t *testing.T) {
	g, _ := emath.NewFloatGridFromValues(7, 1, []float64{-0.5, 0, 0.1, 0.5, 0.6, 1.0, 1.5})

	counts, err := Compute(g, []float64{0, 0.5, 1.0})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, counts) // 1.0 lands in the last bin; -0.5 and 1.5 are dropped

	total := 0
	for _, c := range counts {
		total += c
	}
	assert.Equal(t, 5, total)

	_, err = Compute(g, []float64{0})
	assert.ErrorIs(t, err, ErrBadEdges)
	_, err = Compute(g, []float64{0, 0.5, 0.5})
	assert.ErrorIs(t, err, ErrBadEdges)
}

func TestComputeNothingInRange(t *testing.T) {
	g, _ := emath.NewFloatGridFromValues(2, 1, []float64{5, 6})
	counts, err := Compute(g, []float64{0, 0.5, 1.0})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0}, counts)
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	b, err := imagebuf.FromSamples([]int{1, 4, 2}, []float64{
		0.0, 0.8,
		0.2, 0.6,
		0.4, 0.4,
		0.6, 0.2,
	})
	require.NoError(t, err)
	return NewEngine(b)
}

func TestUpdateChannelIsolation(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.SetContrast(0, 0))

	assert.Equal(t, 0.5, e.Transformed().At3(0, 0, 0))
	assert.Equal(t, 0.5, e.Transformed().At3(3, 0, 0))
	assert.Equal(t, 0.8, e.Transformed().At3(0, 0, 1), "channel 1 should be untouched")
	assert.Equal(t, 0.0, e.Source().At3(0, 0, 0), "source must not change")
}

func TestRejectedEditLeavesImage(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.SetMax(1, 0.5))
	before := e.Transformed().Copy()

	assert.ErrorIs(t, e.SetMin(1, 0.9), ErrInvalidToneRange)
	assert.Equal(t, before, e.Transformed())
}

func TestResetRestoresSource(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.SetGamma(0, 3))
	require.NoError(t, e.SetBrightness(1, 0.3))
	e.Reset()

	for x := 0; x < 4; x++ {
		for ch := 0; ch < 2; ch++ {
			assert.InDelta(t, e.Source().At3(x, 0, ch), e.Transformed().At3(x, 0, ch), 1e-12)
		}
	}
}

func TestAutoScale(t *testing.T) {
	g := emath.NewFloatGrid(100, 10)
	for i := range g.Values() {
		g.Values()[i] = float64(i) / float64(g.Len()-1)
	}
	b, _ := imagebuf.FromGrids(g)
	e := NewEngine(b)

	require.NoError(t, e.AutoScale(0))
	p, _ := e.State().Channel(0)
	assert.InDelta(t, 0.05, p.Min, 0.005)
	assert.InDelta(t, 0.99, p.Max, 0.005)

	flat, _ := imagebuf.New(4, 4, 1)
	e2 := NewEngine(flat)
	assert.ErrorIs(t, e2.AutoScale(0), ErrInvalidToneRange)
	assert.ErrorIs(t, e2.AutoScaleAll(), ErrInvalidToneRange)
	p, _ = e2.State().Channel(0)
	assert.Equal(t, DefaultParams(), p)
}

func TestAutoScaleOnlyTouchesOneChannel(t *testing.T) {
	g := emath.NewFloatGrid(100, 10)
	for i := range g.Values() {
		g.Values()[i] = float64(i) / float64(g.Len()-1)
	}
	b, _ := imagebuf.FromGrids(g, g)
	e := NewEngine(b)

	require.NoError(t, e.AutoScale(1))
	p0, _ := e.State().Channel(0)
	p1, _ := e.State().Channel(1)
	assert.Equal(t, DefaultParams(), p0)
	assert.InDelta(t, 0.05, p1.Min, 0.005)

	before, _ := e.Transformed().Channel(0)
	src, _ := e.Source().Channel(0)
	assert.Equal(t, src.Values(), before.Values())

	assert.ErrorIs(t, e.AutoScale(2), ErrNoSuchChannel)

	require.NoError(t, e.AutoScaleAll())
	p0, _ = e.State().Channel(0)
	assert.InDelta(t, 0.99, p0.Max, 0.005)
}

func TestEngineHistogram(t *testing.T) {
	e := newTestEngine(t)
	counts, err := e.Histogram(0, []float64{0, 0.5, 1})
	require.NoError(t, err)
	assert.Equal(t, []int{3, 1}, counts)

	_, err = e.Histogram(5, UniformEdges(0.1))
	assert.ErrorIs(t, err, ErrNoSuchChannel)
}
