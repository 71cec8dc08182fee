package session

import (
	"fmt"
	"io/ioutil"
	"log"

	"gopkg.in/yaml.v2"

	"github.com/abworrall/align2d/pkg/align"
	"github.com/abworrall/align2d/pkg/controlpoints"
	"github.com/abworrall/align2d/pkg/emath"
	"github.com/abworrall/align2d/pkg/tonemap"
	"github.com/abworrall/align2d/pkg/viewport"
)

// Tone presets, per side, then per channel. Missing channels keep the
// defaults.
type ToneConfig struct {
	Fixed   []tonemap.Params
	Moving  []tonemap.Params
	Overlay []tonemap.Params
}

type Config struct {
	Verbosity int

	ZoomStep      float64 // zoom change per wheel step
	PanStep       float64 // edge pan, in zoomed pixels
	HistogramStep float64 // bin width for histograms
	CurvePoints   int     // samples in a tone curve
	RemovalMetric string  // "euclidean" or "manhattan"
	MaxCondition  float64 // above this, point pairs are degenerate

	Transform    align.Params  // starting transform
	FixedPoints  []emath.Point // control points, in image coords
	MovingPoints []emath.Point

	Tone ToneConfig
}

func NewConfig() Config {
	return Config{
		ZoomStep:      viewport.DefaultZoomStep,
		PanStep:       viewport.DefaultPanStep,
		HistogramStep: tonemap.DefaultHistogramStep,
		CurvePoints:   50,
		RemovalMetric: "euclidean",
		MaxCondition:  align.DefaultMaxCondition,
		Transform:     align.DefaultParams(),
	}
}

func newConfigFromYaml(b []byte) (Config, error) {
	c := NewConfig()
	err := yaml.Unmarshal(b, &c)
	return c, err
}

func LoadConfig(filename string) (Config, error) {
	contents, err := ioutil.ReadFile(filename)
	if err != nil {
		return Config{}, fmt.Errorf("config read %s: %v", filename, err)
	}

	c, err := newConfigFromYaml(contents)
	if err != nil {
		return Config{}, fmt.Errorf("config parse %s: %v", filename, err)
	}
	return c, nil
}

func (c Config) AsYaml() string {
	b, err := yaml.Marshal(c)
	if err != nil {
		log.Fatalf("Can't marshal config yaml: %v\n", err)
	}
	return string(b)
}

// FinalizeConfig fills in anything left zero, and checks the rest.
func (c *Config) FinalizeConfig() error {
	def := NewConfig()
	if c.ZoomStep == 0 {
		c.ZoomStep = def.ZoomStep
	}
	if c.PanStep == 0 {
		c.PanStep = def.PanStep
	}
	if c.HistogramStep == 0 {
		c.HistogramStep = def.HistogramStep
	}
	if c.CurvePoints == 0 {
		c.CurvePoints = def.CurvePoints
	}
	if c.RemovalMetric == "" {
		c.RemovalMetric = def.RemovalMetric
	}
	if c.MaxCondition == 0 {
		c.MaxCondition = def.MaxCondition
	}
	if c.Transform == (align.Params{}) {
		c.Transform = def.Transform
	}

	if c.ZoomStep < 0 || c.PanStep < 0 {
		return fmt.Errorf("config: zoomstep %g and panstep %g must be positive", c.ZoomStep, c.PanStep)
	} else if c.HistogramStep < 0 || c.HistogramStep >= 1 {
		return fmt.Errorf("config: histogramstep %g not in (0,1)", c.HistogramStep)
	} else if c.CurvePoints < 0 {
		return fmt.Errorf("config: curvepoints %d is negative", c.CurvePoints)
	} else if c.MaxCondition < 1 {
		return fmt.Errorf("config: maxcondition %g is below 1", c.MaxCondition)
	} else if _, err := controlpoints.MetricByName(c.RemovalMetric); err != nil {
		return fmt.Errorf("config: %v", err)
	}

	return nil
}
