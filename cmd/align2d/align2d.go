package main

import (
	"flag"
	"fmt"
	"log"
	"path/filepath"

	"github.com/pbnjay/memory"

	"github.com/abworrall/align2d/pkg/align"
	"github.com/abworrall/align2d/pkg/controlpoints"
	"github.com/abworrall/align2d/pkg/imagebuf"
	"github.com/abworrall/align2d/pkg/plot"
	"github.com/abworrall/align2d/pkg/session"
	"github.com/abworrall/align2d/pkg/tonemap"
)

var (
	fVerbosity  int
	fOutputDir  string
	fMetric     string
	fTonemapper string
	fPlots      bool
	fAutoScale  bool
	fEstimate   bool

	fParams = align.DefaultParams()
)

func init() {
	flag.IntVar(&fVerbosity, "v", 0, "how verbose to get")
	flag.StringVar(&fOutputDir, "o", ".", "directory to write output images into")
	flag.StringVar(&fMetric, "metric", "", "how to find the nearest control point: "+fmt.Sprintf("%v", controlpoints.MetricNames()))
	flag.StringVar(&fTonemapper, "tonemapper", "", "also write the overlay tonemapped by one of "+imagebuf.ListTonemappers())
	flag.BoolVar(&fPlots, "plots", false, "write tone curve, histogram and control point images")
	flag.BoolVar(&fAutoScale, "auto", false, "set each image's tone window to its 5th-99th percentiles")
	flag.BoolVar(&fEstimate, "estimate", false, "fit the transform to the control points in the config")

	flag.Float64Var(&fParams.ScaleX, "sx", 1, "scale x")
	flag.Float64Var(&fParams.ScaleY, "sy", 1, "scale y")
	flag.Float64Var(&fParams.ShearX, "shx", 0, "shear x")
	flag.Float64Var(&fParams.ShearY, "shy", 0, "shear y")
	flag.Float64Var(&fParams.RotationDeg, "rot", 0, "rotation, in degrees")
	flag.Float64Var(&fParams.TranslateX, "tx", 0, "translate x, in pixels")
	flag.Float64Var(&fParams.TranslateY, "ty", 0, "translate y, in pixels")
	flag.Parse()

	log.Printf("align2d starting\n")
}

func main() {
	in, err := session.LoadFilesAndDirs(flag.Args()...)
	if err != nil {
		log.Fatal(err)
	}
	checkMemory(in.Fixed, in.Moving)

	// Override the config file with command line args, if relevant
	cfg := in.Config
	if fVerbosity > 0 {
		cfg.Verbosity = fVerbosity
	}
	if fMetric != "" {
		cfg.RemovalMetric = fMetric
	}
	paramFlagSet := false
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "sx", "sy", "shx", "shy", "rot", "tx", "ty":
			paramFlagSet = true
		}
	})
	if paramFlagSet {
		cfg.Transform = fParams
	}

	s, err := session.New(in.Fixed, in.Moving, cfg)
	if err != nil {
		log.Fatal(err)
	}
	if s.Verbosity > 0 {
		log.Printf("Final configuration:-\n\n%s\n", s.Config.AsYaml())
	}

	if fEstimate {
		residual, err := s.AlignControlPoints()
		if err != nil {
			log.Fatalf("estimate: %v", err)
		}
		log.Printf("estimated transform from control points, rms error %.3fpx\n", residual)
	}

	if fAutoScale {
		for _, side := range []session.Side{session.Fixed, session.Moving, session.Overlay} {
			e, _ := s.Engine(side)
			if err := e.AutoScaleAll(); err != nil {
				log.Printf("%s: %v\n", side, err)
			}
		}
	}

	fmt.Printf("%s", s.Transform())

	if err := writeOutputs(s); err != nil {
		log.Fatal(err)
	}
	if fPlots {
		if err := writePlots(s); err != nil {
			log.Fatal(err)
		}
	}
}

// Warn if the buffers we're about to build won't comfortably fit.
func checkMemory(fixed, moving *imagebuf.Buffer) {
	// source + transformed for fixed, moving and the 3 channel overlay, plus the warped copy
	samples := uint64(fixed.Size())*(2*uint64(fixed.ChannelCount())+2*3) +
		uint64(moving.Size())*uint64(2*moving.ChannelCount()) +
		uint64(fixed.Size())*uint64(moving.ChannelCount())
	need := samples * 8
	total := memory.TotalMemory()
	if total > 0 && need > total/2 {
		log.Printf("warning: need about %d MiB of %d MiB physical memory\n", need>>20, total>>20)
	}
}

func writeOutputs(s *session.Session) error {
	overlay, _ := s.Engine(session.Overlay)

	if err := imagebuf.WritePNG(overlay.Transformed().ToImage(), filepath.Join(fOutputDir, "overlay.png")); err != nil {
		return err
	}
	if err := imagebuf.WriteHDR(s.Overlay(), filepath.Join(fOutputDir, "overlay.hdr")); err != nil {
		return err
	}
	if err := imagebuf.WritePNG(s.Warped().ToImage(), filepath.Join(fOutputDir, "warped.png")); err != nil {
		return err
	}

	if fTonemapper != "" {
		img, err := imagebuf.Tonemap(fTonemapper, s.Overlay())
		if err != nil {
			return err
		}
		if err := imagebuf.WritePNG(img, filepath.Join(fOutputDir, "overlay-"+fTonemapper+".png")); err != nil {
			return err
		}
	}

	log.Printf("wrote overlay and warped images into %s\n", fOutputDir)
	return nil
}

func writePlots(s *session.Session) error {
	for _, side := range []session.Side{session.Fixed, session.Moving, session.Overlay} {
		e, _ := s.Engine(side)

		curves := []tonemap.Curve{}
		counts := [][]int{}
		var edges []float64
		for ch := 0; ch < e.ChannelCount(); ch++ {
			c, err := s.Curve(side, ch)
			if err != nil {
				return err
			}
			curves = append(curves, c)

			n, ed, err := s.Histogram(side, ch)
			if err != nil {
				return err
			}
			counts, edges = append(counts, n), ed
		}

		if err := imagebuf.WritePNG(plot.Curves(curves, 400, 300), filepath.Join(fOutputDir, fmt.Sprintf("curve-%s.png", side))); err != nil {
			return err
		}
		img, err := plot.Histograms(counts, edges, 400, 300)
		if err != nil {
			return err
		}
		if err := imagebuf.WritePNG(img, filepath.Join(fOutputDir, fmt.Sprintf("histogram-%s.png", side))); err != nil {
			return err
		}

		if side == session.Overlay {
			continue
		}
		frame, err := s.Render(side)
		if err != nil {
			return err
		}
		store, _ := s.Points(side)
		vp, _ := s.Viewport(side)
		marked := plot.MarkPoints(frame.ToImage(), store.All(), vp)
		if err := imagebuf.WritePNG(marked, filepath.Join(fOutputDir, fmt.Sprintf("points-%s.png", side))); err != nil {
			return err
		}
	}

	return nil
}
