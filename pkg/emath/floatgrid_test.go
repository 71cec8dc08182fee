package emath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBilinear(t *testing.T) {
	g, err := NewFloatGridFromValues(2, 2, []float64{0, 1, 2, 3})
	require.NoError(t, err)

	v, ok := g.Bilinear(0, 0)
	assert.True(t, ok)
	assert.Equal(t, 0.0, v)

	v, ok = g.Bilinear(1, 1)
	assert.True(t, ok)
	assert.Equal(t, 3.0, v)

	v, ok = g.Bilinear(0.5, 0.5)
	assert.True(t, ok)
	assert.InDelta(t, 1.5, v, 1e-12)

	v, ok = g.Bilinear(0.5, 0)
	assert.True(t, ok)
	assert.InDelta(t, 0.5, v, 1e-12)

	_, ok = g.Bilinear(-0.1, 0)
	assert.False(t, ok)
	_, ok = g.Bilinear(0, 1.01)
	assert.False(t, ok)
}

func TestNewFloatGridFromValuesRejectsBadShape(t *testing.T) {
	_, err := NewFloatGridFromValues(3, 2, []float64{1, 2, 3})
	assert.Error(t, err)
	_, err = NewFloatGridFromValues(0, 2, nil)
	assert.Error(t, err)
}

func TestPercentiles(t *testing.T) {
	g := NewFloatGrid(100, 10)
	for i := range g.Values() {
		g.Values()[i] = float64(i) / float64(g.Len()-1)
	}

	p := Percentiles([]float64{5, 99}, g)
	assert.InDelta(t, 0.05, p[0], 0.005)
	assert.InDelta(t, 0.99, p[1], 0.005)
}

func TestMapLeavesSourceAlone(t *testing.T) {
	g, _ := NewFloatGridFromValues(2, 1, []float64{1, 2})
	g2 := g.Map(func(v float64) float64 { return v * 10 })
	assert.Equal(t, []float64{1, 2}, g.Values())
	assert.Equal(t, []float64{10, 20}, g2.Values())
}
