// Package server exposes the cleaning pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ukaji3/sheetinfer-go/internal/logging"
	"github.com/ukaji3/sheetinfer-go/pkg/sheetinfer"
	"github.com/ukaji3/sheetinfer-go/pkg/sheetinfer/completion"
)

const defaultMaxUpload = 32 << 20

// Config configures a Server.
type Config struct {
	// Options are the defaults of every run; requests may override
	// Background, Consolidate and PrintAreas.
	Options sheetinfer.Options
	// MaxUploadBytes bounds request bodies.
	MaxUploadBytes int64
	Logger         *slog.Logger
}

// Server serves the /api/v1 routes.
type Server struct {
	router    *gin.Engine
	client    completion.Client
	opts      sheetinfer.Options
	maxUpload int64
	logger    *slog.Logger
}

// New builds a Server whose pipelines send completions to client.
func New(client completion.Client, cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = defaultMaxUpload
	}
	if cfg.Options.Logger == nil {
		cfg.Options.Logger = logger
	}

	s := &Server{
		router:    gin.New(),
		client:    client,
		opts:      cfg.Options,
		maxUpload: cfg.MaxUploadBytes,
		logger:    logger,
	}
	s.setupRoutes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	s.router.Use(gin.Recovery(), s.requestLogger())

	s.router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := s.router.Group("/api/v1")
	api.Use(s.limitBody())
	{
		api.POST("/sheets", s.ListSheets)
		api.POST("/schema", s.ProposeSchema)
		api.POST("/clean", s.Clean)
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

func (s *Server) limitBody() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUpload)
		c.Next()
	}
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
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
		return srv.Shutdown(shutdownCtx)
	}
}
