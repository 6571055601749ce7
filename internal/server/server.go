// Package server exposes the engine over HTTP with gin:
//
//	POST /v1/tm        melting temperature of each primer
//	POST /v1/score     quality metrics of primers as given
//	POST /v1/tune      tuned primers on a template
//	POST /v1/repeats   repeat scan of each primer
//	POST /v1/clone     overlap-cloning primer set
//	GET  /metrics      Prometheus
//	GET  /healthz      liveness
//
// Malformed JSON is a 400; requests that decode but fail validation
// (including core validation errors) are a 422 carrying the error kind.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"primerqc/core/qcerr"
	"primerqc/internal/config"
	"primerqc/internal/metrics"
	"primerqc/pkg/api"
)

const requestIDHeader = "X-Request-ID"

// Server holds the configured router.
type Server struct {
	cfg      config.Config
	log      *slog.Logger
	metrics  *metrics.Metrics
	validate *validator.Validate
	engine   *gin.Engine
}

// New wires routes and middleware. cfg supplies the default solution and
// scoring used when a request does not override them.
func New(cfg config.Config, log *slog.Logger, m *metrics.Metrics) *Server {
	s := &Server{
		cfg:      cfg,
		log:      log,
		metrics:  m,
		validate: validator.New(),
		engine:   gin.New(),
	}
	s.engine.Use(gin.Recovery(), s.requestID(), s.observe())

	s.engine.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	s.engine.GET("/metrics", gin.WrapH(m.Handler()))

	v1 := s.engine.Group("/v1")
	v1.POST("/tm", s.handleTm)
	v1.POST("/score", s.handleScore)
	v1.POST("/tune", s.handleTune)
	v1.POST("/repeats", s.handleRepeats)
	v1.POST("/clone", s.handleClone)
	return s
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves on cfg.Server.Addr until ctx is done, then shuts down within
// the configured timeout.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	sctx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()
	s.log.Info("shutting down")
	if err := srv.Shutdown(sctx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDHeader, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func (s *Server) observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		s.metrics.ObserveHTTP(route, c.Writer.Status())
		s.log.Debug("request",
			"route", route,
			"status", c.Writer.Status(),
			"elapsed", time.Since(start),
			"request_id", c.GetString(requestIDHeader),
		)
	}
}

// bind decodes and validates the body into req, writing the error response
// itself on failure.
func (s *Server) bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return false
	}
	if err := s.validate.Struct(req); err != nil {
		s.fail(c, http.StatusUnprocessableEntity, err)
		return false
	}
	return true
}

// failErr maps core validation errors to 422 and everything else to 500.
func (s *Server) failErr(c *gin.Context, err error) {
	if qcerr.KindOf(err) != 0 {
		s.fail(c, http.StatusUnprocessableEntity, err)
		return
	}
	s.log.Error("request failed", "error", err, "request_id", c.GetString(requestIDHeader))
	s.fail(c, http.StatusInternalServerError, err)
}

func (s *Server) fail(c *gin.Context, code int, err error) {
	body := api.ErrorV1{Error: err.Error(), RequestID: c.GetString(requestIDHeader)}
	if k := qcerr.KindOf(err); k != 0 {
		body.Kind = k.String()
	}
	c.AbortWithStatusJSON(code, body)
}
