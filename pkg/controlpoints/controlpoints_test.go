package controlpoints

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abworrall/align2d/pkg/emath"
)

func TestAddAssignsIDs(t *testing.T) {
	s := NewStore()
	assert.Equal(t, 0, s.Add(emath.Pt(1, 1)).ID)
	assert.Equal(t, 1, s.Add(emath.Pt(2, 2)).ID)
	assert.Equal(t, 2, s.Add(emath.Pt(3, 3)).ID)

	// Removing a middle marker doesn't free up its id
	_, ok := s.RemoveNearest(emath.Pt(2, 2), Euclidean)
	require.True(t, ok)
	assert.Equal(t, 3, s.Add(emath.Pt(4, 4)).ID)

	// Removing the top one does
	_, ok = s.RemoveNearest(emath.Pt(4, 4), Euclidean)
	require.True(t, ok)
	assert.Equal(t, 3, s.Add(emath.Pt(5, 5)).ID)

	seen := map[int]bool{}
	for _, p := range s.All() {
		assert.False(t, seen[p.ID], "id %d repeated", p.ID)
		seen[p.ID] = true
	}
}

func TestRemoveNearest(t *testing.T) {
	s := NewStore()
	s.Add(emath.Pt(0, 0))
	s.Add(emath.Pt(10, 0))
	s.Add(emath.Pt(0, 10))

	p, ok := s.RemoveNearest(emath.Pt(9, 1), Euclidean)
	require.True(t, ok)
	assert.Equal(t, 1, p.ID)
	assert.Equal(t, []emath.Point{{X: 0, Y: 0}, {X: 0, Y: 10}}, s.Positions())
}

func TestRemoveNearestTieTakesFirst(t *testing.T) {
	s := NewStore()
	s.Add(emath.Pt(0, 0))
	s.Add(emath.Pt(2, 0))

	p, ok := s.RemoveNearest(emath.Pt(1, 0), Euclidean)
	require.True(t, ok)
	assert.Equal(t, 0, p.ID)
}

func TestMetricsDisagree(t *testing.T) {
	// (3,3) is 4.24 away by euclid and 6 by manhattan; (5,0) is 5 by both
	s := NewStore()
	s.Add(emath.Pt(3, 3))
	s.Add(emath.Pt(5, 0))

	p, _ := s.RemoveNearest(emath.Pt(0, 0), Euclidean)
	assert.Equal(t, 0, p.ID)

	s.Clear()
	s.Add(emath.Pt(3, 3))
	s.Add(emath.Pt(5, 0))
	p, _ = s.RemoveNearest(emath.Pt(0, 0), Manhattan)
	assert.Equal(t, 1, p.ID)
}

func TestRemoveFromEmpty(t *testing.T) {
	s := NewStore()
	_, ok := s.RemoveNearest(emath.Pt(1, 1), Manhattan)
	assert.False(t, ok)
	assert.Equal(t, 0, s.Len())
}

func TestMetricByName(t *testing.T) {
	m, err := MetricByName("Manhattan")
	require.NoError(t, err)
	assert.Equal(t, 7.0, m(emath.Pt(0, 0), emath.Pt(3, 4)))

	_, err = MetricByName("chebyshev")
	assert.Error(t, err)
}

func TestPair(t *testing.T) {
	f, m := NewStore(), NewStore()
	f.Add(emath.Pt(1, 1))
	f.Add(emath.Pt(2, 2))
	m.Add(emath.Pt(5, 5))

	_, _, err := Pair(f, m)
	assert.ErrorIs(t, err, ErrMismatchedCorrespondenceCount)

	m.Add(emath.Pt(6, 6))
	src, dst, err := Pair(f, m)
	require.NoError(t, err)
	assert.Equal(t, emath.Pt(2, 2), src[1])
	assert.Equal(t, emath.Pt(6, 6), dst[1])
}
