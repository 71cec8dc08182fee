package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abworrall/align2d/pkg/emath"
)

func (srv *Server) getPoints(c *gin.Context) {
	side, ok := sideParam(c)
	if !ok {
		return
	}
	store, err := srv.sess.Points(side)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"points": store.All()})
}

// Points arrive in display coords; the session maps them into the image.
func (srv *Server) postPoint(c *gin.Context) {
	side, ok := sideParam(c)
	if !ok {
		return
	}
	var display emath.Point
	if err := c.ShouldBindJSON(&display); err != nil {
		fail(c, err)
		return
	}
	pt, err := srv.sess.AddPoint(side, display)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, pt)
}

func (srv *Server) deletePoint(c *gin.Context) {
	side, ok := sideParam(c)
	if !ok {
		return
	}
	var display emath.Point
	if err := c.ShouldBindJSON(&display); err != nil {
		fail(c, err)
		return
	}
	pt, found, err := srv.sess.RemoveNearestPoint(side, display)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"found": found, "removed": pt})
}

// toneArgs only changes the controls that were sent.
type toneArgs struct {
	Contrast   *float64 `json:"contrast"`
	Brightness *float64 `json:"brightness"`
	Gamma      *float64 `json:"gamma"`
	Min        *float64 `json:"min"`
	Max        *float64 `json:"max"`
}

func (srv *Server) postTone(c *gin.Context) {
	side, ok := sideParam(c)
	if !ok {
		return
	}
	ch, ok := channelParam(c)
	if !ok {
		return
	}
	var args toneArgs
	if err := c.ShouldBindJSON(&args); err != nil {
		fail(c, err)
		return
	}

	e, err := srv.sess.Engine(side)
	if err != nil {
		fail(c, err)
		return
	}
	p, err := e.State().Channel(ch)
	if err != nil {
		fail(c, err)
		return
	}
	if args.Contrast != nil {
		p.Contrast = *args.Contrast
	}
	if args.Brightness != nil {
		p.Brightness = *args.Brightness
	}
	if args.Gamma != nil {
		p.Gamma = *args.Gamma
	}
	if args.Min != nil {
		p.Min = *args.Min
	}
	if args.Max != nil {
		p.Max = *args.Max
	}

	if err := e.SetParams(ch, p); err != nil {
		fail(c, err)
		return
	}
	p, _ = e.State().Channel(ch)
	c.JSON(http.StatusOK, p)
}

func (srv *Server) postToneReset(c *gin.Context) {
	side, ok := sideParam(c)
	if !ok {
		return
	}
	e, err := srv.sess.Engine(side)
	if err != nil {
		fail(c, err)
		return
	}
	e.Reset()
	c.JSON(http.StatusOK, gin.H{"channels": e.State().All()})
}

func (srv *Server) postToneAuto(c *gin.Context) {
	side, ok := sideParam(c)
	if !ok {
		return
	}
	e, err := srv.sess.Engine(side)
	if err != nil {
		fail(c, err)
		return
	}
	if err := e.AutoScaleAll(); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"channels": e.State().All()})
}

func (srv *Server) postToneChannelAuto(c *gin.Context) {
	side, ok := sideParam(c)
	if !ok {
		return
	}
	ch, ok := channelParam(c)
	if !ok {
		return
	}
	e, err := srv.sess.Engine(side)
	if err != nil {
		fail(c, err)
		return
	}
	if err := e.AutoScale(ch); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"channels": e.State().All()})
}

func (srv *Server) getHistogram(c *gin.Context) {
	side, ok := sideParam(c)
	if !ok {
		return
	}
	ch, ok := channelParam(c)
	if !ok {
		return
	}
	counts, edges, err := srv.sess.Histogram(side, ch)
	if err != nil {
		fail(c, err)
		return
	}
	curve, _ := srv.sess.Curve(side, ch)
	c.JSON(http.StatusOK, gin.H{"counts": counts, "edges": edges, "curve": curve.Points()})
}

func (srv *Server) viewportReply(c *gin.Context) {
	side, ok := sideParam(c)
	if !ok {
		return
	}
	vp, err := srv.sess.Viewport(side)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"zoom": vp.Zoom(), "center": vp.Center(), "window": vp.Window()})
}

func (srv *Server) getViewport(c *gin.Context) { srv.viewportReply(c) }

type zoomArgs struct {
	Steps float64     `json:"steps"`
	Focus emath.Point `json:"focus"`
}

func (srv *Server) postZoom(c *gin.Context) {
	side, ok := sideParam(c)
	if !ok {
		return
	}
	var args zoomArgs
	if err := c.ShouldBindJSON(&args); err != nil {
		fail(c, err)
		return
	}
	vp, err := srv.sess.Viewport(side)
	if err != nil {
		fail(c, err)
		return
	}
	vp.ZoomBy(args.Steps, args.Focus)
	srv.viewportReply(c)
}

type panArgs struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

func (srv *Server) postPan(c *gin.Context) {
	side, ok := sideParam(c)
	if !ok {
		return
	}
	var args panArgs
	if err := c.ShouldBindJSON(&args); err != nil {
		fail(c, err)
		return
	}
	vp, err := srv.sess.Viewport(side)
	if err != nil {
		fail(c, err)
		return
	}
	vp.PanBy(args.DX, args.DY)
	srv.viewportReply(c)
}
