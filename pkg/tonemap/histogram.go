package tonemap

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/abworrall/align2d/pkg/emath"
)

var ErrBadEdges = errors.New("histogram edges must be at least two, strictly increasing")

// DefaultHistogramStep gives the 0, 0.02, ..., 0.98 edge set.
const DefaultHistogramStep = 0.02

// UniformEdges returns 0, step, 2*step, ... up to but not including 1.
func UniformEdges(step float64) []float64 {
	if step <= 0 || step >= 1 {
		return []float64{0, 1}
	}
	n := int(math.Ceil(1/step - 1e-9))
	edges := make([]float64, n)
	for i := range edges {
		edges[i] = float64(i) * step
	}
	return edges
}

// Compute counts samples into the bins between adjacent edges. Each bin
// is closed on the left and open on the right, except the last which is
// closed at both ends. Samples outside [first edge, last edge] are not
// counted.
func Compute(samples emath.FloatGrid, edges []float64) ([]int, error) {
	if len(edges) < 2 {
		return nil, fmt.Errorf("%d edges: %w", len(edges), ErrBadEdges)
	}
	for i := 1; i < len(edges); i++ {
		if !(edges[i] > edges[i-1]) {
			return nil, fmt.Errorf("edge %d (%g) <= edge %d (%g): %w", i, edges[i], i-1, edges[i-1], ErrBadEdges)
		}
	}

	lo, hi := edges[0], edges[len(edges)-1]
	onTop := 0
	xs := []float64{}
	for _, v := range samples.Values() {
		switch {
		case v == hi:
			onTop++
		case v >= lo && v < hi:
			xs = append(xs, v)
		}
	}

	counts := make([]int, len(edges)-1)
	if len(xs) > 0 {
		sort.Float64s(xs)
		for i, c := range stat.Histogram(nil, edges, xs, nil) {
			counts[i] = int(c)
		}
	}
	counts[len(counts)-1] += onTop

	return counts, nil
}
