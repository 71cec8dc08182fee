package controlpoints

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/abworrall/align2d/pkg/emath"
)

// A Point is a user-placed marker, in image coords.
type Point struct {
	Pos emath.Point `json:"pos" yaml:"pos"`
	ID  int         `json:"id" yaml:"id"`
}

func (p Point) String() string { return fmt.Sprintf("#%d(%.1f,%.1f)", p.ID, p.Pos.X, p.Pos.Y) }

// A Metric measures how far a click is from a marker.
type Metric func(a, b emath.Point) float64

func Euclidean(a, b emath.Point) float64 { return a.Distance(b) }
func Manhattan(a, b emath.Point) float64 { return a.Manhattan(b) }

var metrics = map[string]Metric{
	"euclidean": Euclidean,
	"manhattan": Manhattan,
}

func MetricNames() []string {
	names := []string{}
	for k := range metrics {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func MetricByName(name string) (Metric, error) {
	if m, exists := metrics[strings.ToLower(name)]; exists {
		return m, nil
	}
	return nil, fmt.Errorf("no metric named '%s', try one of %v", name, MetricNames())
}

// A Store keeps the markers for one image, in insertion order. Order
// matters: the i'th marker on one image pairs with the i'th on the other.
type Store struct {
	points []Point
}

func NewStore() *Store { return &Store{} }

// Add appends a marker, with an id one more than the largest in use.
func (s *Store) Add(pos emath.Point) Point {
	id := 0
	for _, p := range s.points {
		if p.ID+1 > id {
			id = p.ID + 1
		}
	}
	pt := Point{Pos: pos, ID: id}
	s.points = append(s.points, pt)
	return pt
}

// RemoveNearest deletes the marker closest to q, and returns it. On a
// tie the earliest marker goes. An empty store reports false.
func (s *Store) RemoveNearest(q emath.Point, m Metric) (Point, bool) {
	if len(s.points) == 0 {
		return Point{}, false
	}

	best := 0
	bestDist := m(q, s.points[0].Pos)
	for i := 1; i < len(s.points); i++ {
		if d := m(q, s.points[i].Pos); d < bestDist {
			best, bestDist = i, d
		}
	}

	pt := s.points[best]
	s.points = append(s.points[:best], s.points[best+1:]...)
	return pt, true
}

func (s *Store) Len() int { return len(s.points) }

func (s *Store) All() []Point { return append([]Point{}, s.points...) }

// Positions lists the marker locations, in insertion order.
func (s *Store) Positions() []emath.Point {
	ret := make([]emath.Point, len(s.points))
	for i, p := range s.points {
		ret[i] = p.Pos
	}
	return ret
}

func (s *Store) Clear() { s.points = nil }

var ErrMismatchedCorrespondenceCount = errors.New("fixed and moving point counts differ")

// Pair lines up the markers on two images by position: the i'th fixed
// marker goes with the i'th moving marker, whatever their ids.
func Pair(fixed, moving *Store) ([]emath.Point, []emath.Point, error) {
	if fixed.Len() != moving.Len() {
		return nil, nil, fmt.Errorf("pair %d fixed with %d moving: %w", fixed.Len(), moving.Len(), ErrMismatchedCorrespondenceCount)
	}
	return fixed.Positions(), moving.Positions(), nil
}
