// Package server exposes the HTTP surface: onboarding and device
// authorization pages, the manual sync trigger, and the webhook receiver.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/plexutil/watchsweep/internal/events"
	"github.com/plexutil/watchsweep/internal/services/auth"
	"github.com/plexutil/watchsweep/internal/services/sync"
)

// Server hosts the gin engine and its lifecycle.
type Server struct {
	auth    *auth.Service
	sync    *sync.Service
	logger  *events.Logger
	engine  *gin.Engine
	httpSrv *http.Server
}

// New creates the HTTP server.
func New(addr string, authSvc *auth.Service, syncSvc *sync.Service, logger *events.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		auth:   authSvc,
		sync:   syncSvc,
		logger: logger.WithField("component", "server"),
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(s.requestLogger())

	engine.GET("/", s.handleIndex)
	engine.GET("/login", s.handleLogin)
	engine.GET("/callback", s.handleCallback)
	engine.POST("/run_sync", s.handleRunSync)
	engine.POST("/webhook", s.handleWebhook)
	engine.GET("/healthz", s.handleHealthz)

	s.engine = engine
	s.httpSrv = &http.Server{
		Addr:              addr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Engine exposes the router for tests.
func (s *Server) Engine() *gin.Engine { return s.engine }

// Run serves until ctx is canceled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", s.httpSrv.Addr).Info("HTTP server listening")
		errCh <- s.httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		s.logger.Info("HTTP server shutting down")
		return s.httpSrv.Shutdown(shutdownCtx)
	}
}

// requestLogger logs method, path, status and latency for every request.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		s.logger.WithFields(map[string]interface{}{
			"method":  c.Request.Method,
			"path":    path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
		}).Info("Request handled")
	}
}
