package session

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/abworrall/align2d/pkg/align"
	"github.com/abworrall/align2d/pkg/controlpoints"
	"github.com/abworrall/align2d/pkg/emath"
	"github.com/abworrall/align2d/pkg/imagebuf"
	"github.com/abworrall/align2d/pkg/tonemap"
	"github.com/abworrall/align2d/pkg/viewport"
)

var (
	ErrNoSuchSide = errors.New("no such side")
	ErrNoPoints   = errors.New("the overlay has no control points")
)

// Side picks one of the three images in a session.
type Side int

const (
	Fixed Side = iota
	Moving
	Overlay
)

var sideNames = []string{"fixed", "moving", "overlay"}

func (s Side) String() string {
	if s < Fixed || s > Overlay {
		return fmt.Sprintf("Side(%d)", int(s))
	}
	return sideNames[s]
}

func ParseSide(str string) (Side, error) {
	for i, name := range sideNames {
		if strings.EqualFold(str, name) {
			return Side(i), nil
		}
	}
	return 0, fmt.Errorf("side '%s': %w", str, ErrNoSuchSide)
}

// A Session is one alignment of a moving image onto a fixed image. It
// owns a tone engine and a viewport for each of the fixed, moving and
// overlay images, and a control point store for each of fixed and
// moving. The current transform maps moving image coords onto fixed
// image coords.
//
// Sessions are not safe for concurrent use.
type Session struct {
	Config

	// Aligner is consulted by AlignAutomatically.
	Aligner align.AutoAligner

	fixed, moving *imagebuf.Buffer
	engines       [3]*tonemap.Engine
	viewports     [3]*viewport.Viewport
	points        [2]*controlpoints.Store
	metric        controlpoints.Metric
	estimator     align.Estimator

	params     align.Params
	fromParams bool // whether transform was built from params
	transform  emath.Affine
	warped     *imagebuf.Buffer
}

func New(fixed, moving *imagebuf.Buffer, cfg Config) (*Session, error) {
	if fixed == nil || moving == nil {
		return nil, fmt.Errorf("session needs two images: %w", imagebuf.ErrInvalidImageShape)
	}
	if err := cfg.FinalizeConfig(); err != nil {
		return nil, err
	}
	metric, err := controlpoints.MetricByName(cfg.RemovalMetric)
	if err != nil {
		return nil, err
	}

	s := Session{
		Config:    cfg,
		Aligner:   align.NotImplementedAligner{},
		fixed:     fixed,
		moving:    moving,
		metric:    metric,
		estimator: align.Estimator{MaxCondition: cfg.MaxCondition},
		points:    [2]*controlpoints.Store{controlpoints.NewStore(), controlpoints.NewStore()},
	}

	for side, img := range map[Side]*imagebuf.Buffer{Fixed: fixed, Moving: moving} {
		s.engines[side] = tonemap.NewEngine(img)
		if err := s.applyPresets(side); err != nil {
			return nil, err
		}
	}

	// The overlay is always shown on the fixed image's grid
	s.viewports[Fixed] = s.newViewport(fixed)
	s.viewports[Moving] = s.newViewport(moving)
	s.viewports[Overlay] = s.newViewport(fixed)

	for _, p := range cfg.FixedPoints {
		s.points[Fixed].Add(p)
	}
	for _, p := range cfg.MovingPoints {
		s.points[Moving].Add(p)
	}

	if err := s.setTransform(align.Compose(cfg.Transform)); err != nil {
		return nil, fmt.Errorf("initial transform %s: %w", cfg.Transform, err)
	}
	s.params, s.fromParams = cfg.Transform, true

	if s.Verbosity > 0 {
		log.Printf("session: fixed %s, moving %s, %d+%d control points", fixed, moving,
			s.points[Fixed].Len(), s.points[Moving].Len())
	}

	return &s, nil
}

func (s *Session) newViewport(img *imagebuf.Buffer) *viewport.Viewport {
	vp := viewport.New(img.Height(), img.Width())
	vp.ZoomStep = s.ZoomStep
	vp.PanStep = s.PanStep
	return vp
}

func (s *Session) presets(side Side) []tonemap.Params {
	switch side {
	case Fixed:
		return s.Tone.Fixed
	case Moving:
		return s.Tone.Moving
	default:
		return s.Tone.Overlay
	}
}

func (s *Session) applyPresets(side Side) error {
	e := s.engines[side]
	e.Verbosity = s.Verbosity
	for ch, p := range s.presets(side) {
		if ch >= e.ChannelCount() {
			break
		}
		if err := e.SetParams(ch, p); err != nil {
			return fmt.Errorf("%s tone preset: %w", side, err)
		}
	}
	return nil
}

func (s *Session) check(side Side) error {
	if side < Fixed || side > Overlay {
		return fmt.Errorf("%s: %w", side, ErrNoSuchSide)
	}
	return nil
}

func (s *Session) Fixed() *imagebuf.Buffer  { return s.fixed }
func (s *Session) Moving() *imagebuf.Buffer { return s.moving }
func (s *Session) Warped() *imagebuf.Buffer { return s.warped }

// Overlay is the latest composite: fixed in channel 0, warped moving in channel 1.
func (s *Session) Overlay() *imagebuf.Buffer { return s.engines[Overlay].Source() }

func (s *Session) Engine(side Side) (*tonemap.Engine, error) {
	if err := s.check(side); err != nil {
		return nil, err
	}
	return s.engines[side], nil
}

func (s *Session) Viewport(side Side) (*viewport.Viewport, error) {
	if err := s.check(side); err != nil {
		return nil, err
	}
	return s.viewports[side], nil
}

func (s *Session) Points(side Side) (*controlpoints.Store, error) {
	if err := s.check(side); err != nil {
		return nil, err
	} else if side == Overlay {
		return nil, ErrNoPoints
	}
	return s.points[side], nil
}

// AddPoint places a marker at a display position, which is converted
// through that side's viewport into image coords.
func (s *Session) AddPoint(side Side, display emath.Point) (controlpoints.Point, error) {
	store, err := s.Points(side)
	if err != nil {
		return controlpoints.Point{}, err
	}
	pt := store.Add(s.viewports[side].ToImageSpace(display))
	if s.Verbosity > 0 {
		log.Printf("%s: added %s", side, pt)
	}
	return pt, nil
}

// RemoveNearestPoint deletes the marker nearest a display position,
// measured in image coords with the configured metric.
func (s *Session) RemoveNearestPoint(side Side, display emath.Point) (controlpoints.Point, bool, error) {
	store, err := s.Points(side)
	if err != nil {
		return controlpoints.Point{}, false, err
	}
	pt, ok := store.RemoveNearest(s.viewports[side].ToImageSpace(display), s.metric)
	if ok && s.Verbosity > 0 {
		log.Printf("%s: removed %s", side, pt)
	}
	return pt, ok, nil
}

func (s *Session) ClearPoints(side Side) error {
	store, err := s.Points(side)
	if err != nil {
		return err
	}
	store.Clear()
	return nil
}

func (s *Session) Transform() emath.Affine { return s.transform }

// Params are the last params set; the bool is false if the current
// transform came from somewhere else (an estimate, or a matrix).
func (s *Session) Params() (align.Params, bool) { return s.params, s.fromParams }

// SetParams composes a new transform and rebuilds the overlay.
func (s *Session) SetParams(p align.Params) error {
	if err := s.setTransform(align.Compose(p)); err != nil {
		return fmt.Errorf("params %s: %w", p, err)
	}
	s.params, s.fromParams = p, true
	return nil
}

// SetMatrix takes a transform as-is, e.g. one typed in by hand.
func (s *Session) SetMatrix(t emath.Affine) error {
	if err := s.setTransform(t); err != nil {
		return err
	}
	s.fromParams = false
	return nil
}

// AlignControlPoints fits a transform to the control points, pairing
// them up by insertion order, and returns the RMS error of the fit in
// fixed image pixels. If the fit fails, nothing changes.
func (s *Session) AlignControlPoints() (float64, error) {
	fixedPts, movingPts, err := controlpoints.Pair(s.points[Fixed], s.points[Moving])
	if err != nil {
		return 0, err
	}

	t, err := s.estimator.Estimate(movingPts, fixedPts)
	if err != nil {
		return 0, err
	}
	if err := s.SetMatrix(t); err != nil {
		return 0, err
	}

	residual := align.Residual(t, movingPts, fixedPts)
	if s.Verbosity > 0 {
		log.Printf("aligned %d control point pairs, rms error %.3fpx\n%s", len(fixedPts), residual, t)
	}
	return residual, nil
}

func (s *Session) AlignAutomatically() error {
	if s.Aligner == nil {
		return align.ErrNotImplemented
	}
	t, err := s.Aligner.Align(s.fixed, s.moving)
	if err != nil {
		return err
	}
	return s.SetMatrix(t)
}

// setTransform warps the moving image and rebuilds the overlay, with a
// fresh tone engine. Nothing is committed unless it all works.
func (s *Session) setTransform(t emath.Affine) error {
	warped, err := align.Warp(s.moving, t, s.fixed.Height(), s.fixed.Width())
	if err != nil {
		return err
	}
	overlay, err := imagebuf.Overlay(s.fixed, warped)
	if err != nil {
		return err
	}

	old := s.engines[Overlay]
	s.engines[Overlay] = tonemap.NewEngine(overlay)
	if err := s.applyPresets(Overlay); err != nil {
		s.engines[Overlay] = old
		return err
	}

	s.transform = t
	s.warped = warped
	return nil
}

// Histogram bins one channel of what that side's display shows (see
// Render), with the configured bin width. It returns the counts and the
// bin edges.
func (s *Session) Histogram(side Side, ch int) ([]int, []float64, error) {
	frame, err := s.Render(side)
	if err != nil {
		return nil, nil, err
	}
	g, err := frame.Channel(ch)
	if err != nil {
		return nil, nil, fmt.Errorf("histogram %s channel %d: %w", side, ch, tonemap.ErrNoSuchChannel)
	}
	edges := tonemap.UniformEdges(s.HistogramStep)
	counts, err := tonemap.Compute(g, edges)
	return counts, edges, err
}

func (s *Session) Curve(side Side, ch int) (tonemap.Curve, error) {
	e, err := s.Engine(side)
	if err != nil {
		return tonemap.Curve{}, err
	}
	return e.Curve(ch, s.CurvePoints)
}

// Render produces what a display of one side should show: the viewport
// window, scaled up to the display extent, then tone mapped.
func (s *Session) Render(side Side) (*imagebuf.Buffer, error) {
	e, err := s.Engine(side)
	if err != nil {
		return nil, err
	}
	vp := s.viewports[side]
	h, w := vp.Extent()

	frame, err := imagebuf.Resample(e.Source(), vp.Window(), w, h)
	if err != nil {
		return nil, err
	}

	for ch := 0; ch < frame.ChannelCount(); ch++ {
		p, _ := e.State().Channel(ch)
		in, _ := frame.Channel(ch)
		out, err := tonemap.Apply(p, in)
		if err != nil {
			return nil, err
		}
		if err := frame.SetChannel(ch, out); err != nil {
			return nil, err
		}
	}
	return frame, nil
}
