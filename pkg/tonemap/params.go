package tonemap

import (
	"errors"
	"fmt"
	"math"

	"github.com/abworrall/align2d/pkg/emath"
)

var (
	ErrInvalidToneRange = errors.New("tone range min must be below max")
	ErrNoSuchChannel    = errors.New("no such channel")
	ErrNonFiniteParam   = errors.New("tone params must be finite numbers")
)

// Params are the tone controls for one channel. Min and Max define the
// input window; Contrast, Brightness and Gamma shape the curve applied
// to the windowed value.
type Params struct {
	Contrast   float64 `yaml:"contrast" json:"contrast"`
	Brightness float64 `yaml:"brightness" json:"brightness"`
	Gamma      float64 `yaml:"gamma" json:"gamma"`
	Min        float64 `yaml:"min" json:"min"`
	Max        float64 `yaml:"max" json:"max"`
}

// Ranges of the controls
const (
	ContrastMin, ContrastMax     = 0.0, 10.0
	BrightnessMin, BrightnessMax = -1.0, 1.0
	GammaMin, GammaMax           = 0.0, 10.0
)

func DefaultParams() Params {
	return Params{Contrast: 1, Brightness: 0, Gamma: 1, Min: 0, Max: 1}
}

func (p Params) String() string {
	return fmt.Sprintf("tone{c=%.2f, b=%.2f, g=%.2f, [%.3f,%.3f]}", p.Contrast, p.Brightness, p.Gamma, p.Min, p.Max)
}

func (p Params) Validate() error {
	for _, v := range []float64{p.Contrast, p.Brightness, p.Gamma, p.Min, p.Max} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s: %w", p, ErrNonFiniteParam)
		}
	}
	if !(p.Min < p.Max) {
		return fmt.Errorf("[%g,%g]: %w", p.Min, p.Max, ErrInvalidToneRange)
	}
	return nil
}

// clamped pulls each control into its allowed range.
func (p Params) clamped() Params {
	return Params{
		Contrast:   emath.Clip(p.Contrast, ContrastMin, ContrastMax),
		Brightness: emath.Clip(p.Brightness, BrightnessMin, BrightnessMax),
		Gamma:      emath.Clip(p.Gamma, GammaMin, GammaMax),
		Min:        emath.Clip01(p.Min),
		Max:        emath.Clip01(p.Max),
	}
}

// State holds the tone params for every channel of an image.
type State struct {
	channels []Params
}

func NewState(nChannels int) *State {
	s := State{channels: make([]Params, nChannels)}
	s.Reset()
	return &s
}

func (s *State) Len() int { return len(s.channels) }

func (s *State) Reset() {
	for i := range s.channels {
		s.channels[i] = DefaultParams()
	}
}

func (s *State) check(ch int) error {
	if ch < 0 || ch >= len(s.channels) {
		return fmt.Errorf("channel %d of %d: %w", ch, len(s.channels), ErrNoSuchChannel)
	}
	return nil
}

func (s *State) Channel(ch int) (Params, error) {
	if err := s.check(ch); err != nil {
		return Params{}, err
	}
	return s.channels[ch], nil
}

// All returns a copy of every channel's params.
func (s *State) All() []Params {
	return append([]Params{}, s.channels...)
}

// SetParams replaces all the params for a channel. Values are clamped
// into range first; if that leaves min >= max, or any value is NaN or
// infinite, nothing changes.
func (s *State) SetParams(ch int, p Params) error {
	if err := s.check(ch); err != nil {
		return err
	}
	p = p.clamped()
	if err := p.Validate(); err != nil {
		return fmt.Errorf("channel %d: %w", ch, err)
	}
	s.channels[ch] = p
	return nil
}

func (s *State) update(ch int, f func(*Params)) error {
	if err := s.check(ch); err != nil {
		return err
	}
	p := s.channels[ch]
	f(&p)
	return s.SetParams(ch, p)
}

func (s *State) SetContrast(ch int, v float64) error {
	return s.update(ch, func(p *Params) { p.Contrast = v })
}

func (s *State) SetBrightness(ch int, v float64) error {
	return s.update(ch, func(p *Params) { p.Brightness = v })
}

func (s *State) SetGamma(ch int, v float64) error {
	return s.update(ch, func(p *Params) { p.Gamma = v })
}

func (s *State) SetMin(ch int, v float64) error {
	return s.update(ch, func(p *Params) { p.Min = v })
}

func (s *State) SetMax(ch int, v float64) error {
	return s.update(ch, func(p *Params) { p.Max = v })
}
