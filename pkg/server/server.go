package server

// A REST API over a single alignment session, so a UI in some other
// process can drive it.

import (
	"errors"
	"net/http"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/abworrall/align2d/pkg/align"
	"github.com/abworrall/align2d/pkg/emath"
	"github.com/abworrall/align2d/pkg/session"
	"github.com/abworrall/align2d/pkg/tonemap"
)

// Server owns the session; every handler holds the lock while it uses it.
type Server struct {
	mu     sync.Mutex
	sess   *session.Session
	router *gin.Engine
}

func New(s *session.Session) *Server {
	srv := Server{sess: s, router: gin.Default()}

	api := srv.router.Group("/api")
	{
		v1 := api.Group("/v1")
		{
			v1.GET("/ping", getPing)

			v1.GET("/transform", srv.locked(srv.getTransform))
			v1.PUT("/transform/params", srv.locked(srv.putParams))
			v1.PUT("/transform/matrix", srv.locked(srv.putMatrix))
			v1.POST("/transform/estimate", srv.locked(srv.postEstimate))
			v1.POST("/transform/auto", srv.locked(srv.postAuto))

			v1.GET("/points/:side", srv.locked(srv.getPoints))
			v1.POST("/points/:side", srv.locked(srv.postPoint))
			v1.DELETE("/points/:side", srv.locked(srv.deletePoint))

			v1.POST("/tone/:side/channel/:channel", srv.locked(srv.postTone))
			v1.POST("/tone/:side/channel/:channel/auto", srv.locked(srv.postToneChannelAuto))
			v1.POST("/tone/:side/reset", srv.locked(srv.postToneReset))
			v1.POST("/tone/:side/auto", srv.locked(srv.postToneAuto))
			v1.GET("/histogram/:side/:channel", srv.locked(srv.getHistogram))

			v1.GET("/viewport/:side", srv.locked(srv.getViewport))
			v1.POST("/viewport/:side/zoom", srv.locked(srv.postZoom))
			v1.POST("/viewport/:side/pan", srv.locked(srv.postPan))
		}
	}

	return &srv
}

func (srv *Server) Handler() http.Handler { return srv.router }

// Run listens and serves on addr, e.g. ":8080".
func (srv *Server) Run(addr string) error { return srv.router.Run(addr) }

func (srv *Server) locked(h gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		srv.mu.Lock()
		defer srv.mu.Unlock()
		h(c)
	}
}

func getPing(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "pong",
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, tonemap.ErrInvalidToneRange):
		return http.StatusConflict
	case errors.Is(err, align.ErrInsufficientCorrespondences),
		errors.Is(err, align.ErrDegenerateCorrespondences),
		errors.Is(err, align.ErrMismatchedCorrespondenceCount):
		return http.StatusUnprocessableEntity
	case errors.Is(err, align.ErrNotImplemented):
		return http.StatusNotImplemented
	default:
		return http.StatusBadRequest
	}
}

func fail(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}

func sideParam(c *gin.Context) (session.Side, bool) {
	side, err := session.ParseSide(c.Param("side"))
	if err != nil {
		fail(c, err)
		return 0, false
	}
	return side, true
}

func channelParam(c *gin.Context) (int, bool) {
	ch, err := strconv.Atoi(c.Param("channel"))
	if err != nil {
		fail(c, err)
		return 0, false
	}
	return ch, true
}

// transformReply is what all the transform endpoints send back.
type transformReply struct {
	Matrix     [3][3]float64 `json:"matrix"`
	Params     align.Params  `json:"params"`
	FromParams bool          `json:"fromParams"`
	Residual   *float64      `json:"residual,omitempty"`
}

func (srv *Server) transformReply() transformReply {
	p, fromParams := srv.sess.Params()
	return transformReply{Matrix: srv.sess.Transform().Rows(), Params: p, FromParams: fromParams}
}

func (srv *Server) getTransform(c *gin.Context) {
	c.JSON(http.StatusOK, srv.transformReply())
}

func (srv *Server) putParams(c *gin.Context) {
	p := align.DefaultParams()
	if err := c.ShouldBindJSON(&p); err != nil {
		fail(c, err)
		return
	}
	if err := srv.sess.SetParams(p); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, srv.transformReply())
}

type putMatrixArgs struct {
	Matrix [3][3]float64 `json:"matrix"`
}

func (srv *Server) putMatrix(c *gin.Context) {
	var args putMatrixArgs
	if err := c.ShouldBindJSON(&args); err != nil {
		fail(c, err)
		return
	}
	var t emath.Affine
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			t[3*i+j] = args.Matrix[i][j]
		}
	}
	if err := srv.sess.SetMatrix(t); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, srv.transformReply())
}

func (srv *Server) postEstimate(c *gin.Context) {
	residual, err := srv.sess.AlignControlPoints()
	if err != nil {
		fail(c, err)
		return
	}
	reply := srv.transformReply()
	reply.Residual = &residual
	c.JSON(http.StatusOK, reply)
}

func (srv *Server) postAuto(c *gin.Context) {
	if err := srv.sess.AlignAutomatically(); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, srv.transformReply())
}
