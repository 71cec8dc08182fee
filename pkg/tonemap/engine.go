package tonemap

import (
	"fmt"
	"log"

	"github.com/abworrall/align2d/pkg/emath"
	"github.com/abworrall/align2d/pkg/imagebuf"
)

// AutoScale percentiles
const (
	AutoScaleLowPct  = 5.0
	AutoScaleHighPct = 99.0
)

// An Engine owns a source image, the tone state for each of its
// channels, and the transformed image derived from the two. The
// transformed image is only ever rebuilt a channel at a time, from the
// source, so the source is never altered.
type Engine struct {
	Verbosity int

	source      *imagebuf.Buffer
	transformed *imagebuf.Buffer
	state       *State
}

func NewEngine(source *imagebuf.Buffer) *Engine {
	e := Engine{
		source:      source,
		transformed: source.Copy(),
		state:       NewState(source.ChannelCount()),
	}
	return &e
}

func (e *Engine) String() string {
	return fmt.Sprintf("Engine[%s, %v]", e.source, e.state.All())
}

func (e *Engine) Source() *imagebuf.Buffer      { return e.source }
func (e *Engine) Transformed() *imagebuf.Buffer { return e.transformed }
func (e *Engine) State() *State                 { return e.state }
func (e *Engine) ChannelCount() int             { return e.source.ChannelCount() }

// UpdateChannel recomputes one channel of the transformed image. Other
// channels are not touched.
func (e *Engine) UpdateChannel(ch int) error {
	p, err := e.state.Channel(ch)
	if err != nil {
		return err
	}
	in, err := e.source.Channel(ch)
	if err != nil {
		return err
	}
	out, err := Apply(p, in)
	if err != nil {
		return fmt.Errorf("channel %d: %w", ch, err)
	}
	return e.transformed.SetChannel(ch, out)
}

func (e *Engine) UpdateAll() error {
	for ch := 0; ch < e.ChannelCount(); ch++ {
		if err := e.UpdateChannel(ch); err != nil {
			return err
		}
	}
	return nil
}

// The setters change one control, then refresh just that channel. A
// rejected value leaves both the state and the image unchanged.

func (e *Engine) SetContrast(ch int, v float64) error   { return e.set(ch, v, e.state.SetContrast) }
func (e *Engine) SetBrightness(ch int, v float64) error { return e.set(ch, v, e.state.SetBrightness) }
func (e *Engine) SetGamma(ch int, v float64) error      { return e.set(ch, v, e.state.SetGamma) }
func (e *Engine) SetMin(ch int, v float64) error        { return e.set(ch, v, e.state.SetMin) }
func (e *Engine) SetMax(ch int, v float64) error        { return e.set(ch, v, e.state.SetMax) }

func (e *Engine) SetParams(ch int, p Params) error {
	if err := e.state.SetParams(ch, p); err != nil {
		return err
	}
	return e.UpdateChannel(ch)
}

func (e *Engine) set(ch int, v float64, setter func(int, float64) error) error {
	if err := setter(ch, v); err != nil {
		if e.Verbosity > 0 {
			log.Printf("tone edit rejected: %v", err)
		}
		return err
	}
	return e.UpdateChannel(ch)
}

// Reset puts every channel back to the defaults, and the transformed
// image back to a copy of the source.
func (e *Engine) Reset() {
	e.state.Reset()
	e.transformed = e.source.Copy()
}

// autoWindow is the 5th and 99th percentiles of the whole source
// image, across all channels.
func (e *Engine) autoWindow() (float64, float64, error) {
	grids := make([]emath.FloatGrid, e.ChannelCount())
	for ch := range grids {
		g, err := e.source.Channel(ch)
		if err != nil {
			return 0, 0, err
		}
		grids[ch] = g
	}

	pcts := emath.Percentiles([]float64{AutoScaleLowPct, AutoScaleHighPct}, grids...)
	lo, hi := pcts[0], pcts[1]
	if !(lo < hi) {
		return 0, 0, fmt.Errorf("autoscale, p%.0f=%g p%.0f=%g: %w", AutoScaleLowPct, lo, AutoScaleHighPct, hi, ErrInvalidToneRange)
	}
	return lo, hi, nil
}

// AutoScale sets one channel's window to the 5th and 99th percentiles
// of the whole source image. The other channels keep their params. If
// the percentiles are equal (a flat image) the state is left alone.
func (e *Engine) AutoScale(ch int) error {
	p, err := e.state.Channel(ch)
	if err != nil {
		return err
	}
	lo, hi, err := e.autoWindow()
	if err != nil {
		return err
	}

	p.Min, p.Max = lo, hi
	if err := e.state.SetParams(ch, p); err != nil {
		return err
	}
	if e.Verbosity > 0 {
		log.Printf("autoscale: window [%.4f, %.4f] on channel %d", lo, hi, ch)
	}
	return e.UpdateChannel(ch)
}

// AutoScaleAll is AutoScale on every channel.
func (e *Engine) AutoScaleAll() error {
	lo, hi, err := e.autoWindow()
	if err != nil {
		return err
	}
	for ch := 0; ch < e.ChannelCount(); ch++ {
		p, _ := e.state.Channel(ch)
		p.Min, p.Max = lo, hi
		if err := e.state.SetParams(ch, p); err != nil {
			return err
		}
	}
	if e.Verbosity > 0 {
		log.Printf("autoscale: window [%.4f, %.4f] on %d channels", lo, hi, e.ChannelCount())
	}
	return e.UpdateAll()
}

// Histogram counts the transformed samples of a channel into bins.
func (e *Engine) Histogram(ch int, edges []float64) ([]int, error) {
	g, err := e.transformed.Channel(ch)
	if err != nil {
		return nil, fmt.Errorf("histogram: %w", ErrNoSuchChannel)
	}
	return Compute(g, edges)
}

func (e *Engine) Curve(ch int, n int) (Curve, error) {
	p, err := e.state.Channel(ch)
	if err != nil {
		return Curve{}, err
	}
	return SampleCurve(p, n), nil
}
