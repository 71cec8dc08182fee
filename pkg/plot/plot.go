package plot

// Renders the tone curves, histograms and control point markers as
// images, for the tools to write out.

import (
	"fmt"
	"image"
	"image/color"

	"github.com/fogleman/gg"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/abworrall/align2d/pkg/controlpoints"
	"github.com/abworrall/align2d/pkg/emath"
	"github.com/abworrall/align2d/pkg/tonemap"
)

const margin = 20.0

// ChannelColor spaces the channel pens out around the hue wheel, so
// channel 0 is red, 1 is green and 2 is blue.
func ChannelColor(ch int) color.Color {
	return colorful.Hsv(120*float64(ch%3), 1, 1)
}

// A Mapper takes image coords to display coords, e.g. a viewport.
type Mapper interface {
	ToDisplaySpace(emath.Point) emath.Point
}

func newPlot(w, h int, title string) *gg.Context {
	dc := gg.NewContext(w, h)
	dc.SetRGB(0, 0, 0)
	dc.Clear()

	dc.SetRGB(0.5, 0.5, 0.5)
	dc.SetLineWidth(1)
	dc.DrawRectangle(margin, margin, float64(w)-2*margin, float64(h)-2*margin)
	dc.Stroke()

	dc.SetRGB(1, 1, 1)
	dc.DrawString(title, margin, margin-5)
	return dc
}

// toPlot maps a unit square onto the inside of the frame, y up.
func toPlot(dc *gg.Context, x, y float64) (float64, float64) {
	w := float64(dc.Width()) - 2*margin
	h := float64(dc.Height()) - 2*margin
	return margin + x*w, margin + (1-y)*h
}

// Curves draws one tone curve per channel.
func Curves(curves []tonemap.Curve, w, h int) image.Image {
	dc := newPlot(w, h, "tone curve")
	dc.SetLineWidth(2)

	for ch, c := range curves {
		if c.Len() == 0 {
			continue
		}
		dc.SetColor(ChannelColor(ch))
		for i := 0; i < c.Len(); i++ {
			x, y := c.At(i)
			px, py := toPlot(dc, x, y)
			if i == 0 {
				dc.MoveTo(px, py)
			} else {
				dc.LineTo(px, py)
			}
		}
		dc.Stroke()
	}

	return dc.Image()
}

// Histograms draws one step outline per channel; counts[ch] has a
// count for each bin between adjacent edges. Each channel is scaled to
// its own peak.
func Histograms(counts [][]int, edges []float64, w, h int) (image.Image, error) {
	dc := newPlot(w, h, "histogram")
	dc.SetLineWidth(1.5)
	if len(edges) < 2 {
		return nil, fmt.Errorf("plot histogram: %w", tonemap.ErrBadEdges)
	}

	lo, hi := edges[0], edges[len(edges)-1]
	span := hi - lo
	for ch, bins := range counts {
		if len(bins) != len(edges)-1 {
			return nil, fmt.Errorf("plot histogram, channel %d has %d bins for %d edges", ch, len(bins), len(edges))
		}
		peak := 0
		for _, n := range bins {
			if n > peak {
				peak = n
			}
		}
		if peak == 0 {
			continue
		}

		dc.SetColor(ChannelColor(ch))
		px, py := toPlot(dc, 0, 0)
		dc.MoveTo(px, py)
		for i, n := range bins {
			y := float64(n) / float64(peak)
			x0, x1 := (edges[i]-lo)/span, (edges[i+1]-lo)/span
			px, py = toPlot(dc, x0, y)
			dc.LineTo(px, py)
			px, py = toPlot(dc, x1, y)
			dc.LineTo(px, py)
		}
		dc.Stroke()
	}

	return dc.Image(), nil
}

// MarkPoints draws each control point as a red dot with its id beside
// it, over a copy of img. Points are mapped through m first, so img
// should be the matching display frame.
func MarkPoints(img image.Image, pts []controlpoints.Point, m Mapper) image.Image {
	dc := gg.NewContextForImage(img)
	b := img.Bounds()

	for _, pt := range pts {
		d := m.ToDisplaySpace(pt.Pos)
		if d.X < float64(b.Min.X) || d.Y < float64(b.Min.Y) || d.X >= float64(b.Max.X) || d.Y >= float64(b.Max.Y) {
			continue
		}
		dc.SetRGB(1, 0, 0)
		dc.DrawCircle(d.X, d.Y, 3)
		dc.Fill()
		dc.DrawString(fmt.Sprintf("%d", pt.ID), d.X+5, d.Y-5)
	}

	return dc.Image()
}
