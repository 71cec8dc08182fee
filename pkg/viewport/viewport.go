package viewport

import (
	"fmt"
	"math"

	"github.com/abworrall/align2d/pkg/emath"
)

const (
	DefaultZoomStep = 0.10
	DefaultPanStep  = 10.0

	// Edge pan kicks in when the cursor is this close to an edge, as a
	// fraction of the display extent.
	EdgeLow  = 0.05
	EdgeHigh = 0.90
)

// A Viewport maps between display coords and image coords for a zoomed
// and panned view of an image. The display always has the same extent
// as the image; zooming in shows a smaller window of the image,
// stretched to fill it.
type Viewport struct {
	ZoomStep float64
	PanStep  float64

	height, width float64
	zoom          float64
	origin        emath.Point // top-left of the window, image coords
	center        emath.Point // middle of the window, image coords
}

func New(height, width int) *Viewport {
	vp := Viewport{
		ZoomStep: DefaultZoomStep,
		PanStep:  DefaultPanStep,
		height:   float64(height),
		width:    float64(width),
	}
	vp.Reset()
	return &vp
}

func (vp *Viewport) String() string {
	return fmt.Sprintf("Viewport[%.0fx%.0f, zoom=%.2f, window=%v]", vp.height, vp.width, vp.zoom, vp.Window())
}

func (vp *Viewport) Reset() {
	vp.zoom = 1
	vp.origin = emath.Point{}
	vp.center = emath.Pt(vp.width/2, vp.height/2)
}

func (vp *Viewport) Zoom() float64        { return vp.zoom }
func (vp *Viewport) Center() emath.Point  { return vp.center }
func (vp *Viewport) Origin() emath.Point  { return vp.origin }
func (vp *Viewport) Extent() (int, int)   { return int(vp.height), int(vp.width) }

// Window is the part of the image currently on display.
func (vp *Viewport) Window() emath.Rect {
	return emath.Rect{X: vp.origin.X, Y: vp.origin.Y, Width: vp.width / vp.zoom, Height: vp.height / vp.zoom}
}

func (vp *Viewport) Contains(imagePt emath.Point) bool { return vp.Window().Contains(imagePt) }

func sign(f float64) float64 {
	switch {
	case f > 0:
		return 1
	case f < 0:
		return -1
	}
	return 0
}

// ZoomBy steps the zoom up or down by one ZoomStep, depending on the
// sign of steps, never going below 1. The window stays centred on the
// same image point where the bounds allow. The focus point is accepted
// for callers that track the cursor, but the zoom is always about the
// window centre.
func (vp *Viewport) ZoomBy(steps float64, focus emath.Point) {
	vp.zoom = math.Max(vp.zoom+vp.ZoomStep*sign(steps), 1)
	left := vp.center.X*vp.zoom - vp.width/2
	top := vp.center.Y*vp.zoom - vp.height/2
	vp.placeZoomed(left, top)
}

// PanBy shifts the window by (dx,dy) zoomed pixels, clamped so it stays
// inside the image. At zoom 1 there is nowhere to go.
func (vp *Viewport) PanBy(dx, dy float64) {
	left := vp.origin.X*vp.zoom + dx
	top := vp.origin.Y*vp.zoom + dy
	vp.placeZoomed(left, top)
}

// placeZoomed sets the window from its top-left corner in zoomed
// pixels, after clamping it inside the zoomed image.
func (vp *Viewport) placeZoomed(left, top float64) {
	left = emath.Clip(left, 0, vp.width*vp.zoom-vp.width)
	top = emath.Clip(top, 0, vp.height*vp.zoom-vp.height)

	vp.origin = emath.Pt(left/vp.zoom, top/vp.zoom)
	vp.center = emath.Pt((left+vp.width/2)/vp.zoom, (top+vp.height/2)/vp.zoom)
}

// EdgePan nudges the window by PanStep when the display point is near
// an edge, and reports whether it did.
func (vp *Viewport) EdgePan(display emath.Point) bool {
	dx, dy := 0.0, 0.0
	if display.X < EdgeLow*vp.width {
		dx = -vp.PanStep
	} else if display.X > EdgeHigh*vp.width {
		dx = vp.PanStep
	}
	if display.Y < EdgeLow*vp.height {
		dy = -vp.PanStep
	} else if display.Y > EdgeHigh*vp.height {
		dy = vp.PanStep
	}

	if dx == 0 && dy == 0 {
		return false
	}
	vp.PanBy(dx, dy)
	return true
}

func (vp *Viewport) ToImageSpace(display emath.Point) emath.Point {
	return display.Div(vp.zoom).Add(vp.origin)
}

func (vp *Viewport) ToDisplaySpace(image emath.Point) emath.Point {
	return image.Sub(vp.origin).Mul(vp.zoom)
}
