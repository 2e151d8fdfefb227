// Package statushttp serves the minimal operator surface: a health probe
// and the last enforcement pass summary.
package statushttp

import (
	"context"
	"errors"
	"net/http"
	"time"

	"hllrotate/internal/enforcer"
	"hllrotate/internal/logger"

	"github.com/gin-gonic/gin"
)

// StatusSource supplies the latest pass summary; *enforcer.Enforcer
// satisfies it.
type StatusSource interface {
	Status() enforcer.Status
}

// Server is the status HTTP server.
type Server struct {
	addr   string
	router *gin.Engine
}

// NewServer builds the status server.
func NewServer(addr string, source StatusSource) (*Server, error) {
	if source == nil {
		return nil, errors.New("status server requires a status source")
	}
	if addr == "" {
		addr = ":8787"
	}
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/api/rotation/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, source.Status())
	})

	return &Server{addr: addr, router: router}, nil
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	if s == nil {
		return ""
	}
	return s.addr
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	srv := &http.Server{Addr: s.addr, Handler: s.router}
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shCtx)
		return nil
	case err := <-errCh:
		return err
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method
		path := c.Request.URL.Path
		client := c.ClientIP()
		c.Next()
		logger.Debugf("HTTP %s %s status=%d ip=%s dur=%s", method, path, c.Writer.Status(), client, time.Since(start))
	}
}
