// Package server exposes the recommendation endpoint and, when a radio is
// attached, remote control of the running station over HTTP and websocket.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/timmfy/ai-radio/internal/core"
	"github.com/timmfy/ai-radio/internal/radio"
)

const shutdownTimeout = 5 * time.Second

// Config holds server settings.
type Config struct {
	Addr           string
	AllowedOrigins []string
	// Debug enables gin's debug mode.
	Debug bool
}

// Server serves the HTTP API.
type Server struct {
	cfg         Config
	engine      *gin.Engine
	recommender core.Recommender
	radio       *radio.Radio
	upgrader    websocket.Upgrader
	pingPeriod  time.Duration
	log         zerolog.Logger
}

// New creates a server. recommender backs /api/generate-tracks; r may be
// nil, in which case the radio routes are not registered.
func New(cfg Config, recommender core.Recommender, r *radio.Radio, log zerolog.Logger) *Server {
	if cfg.Addr == "" {
		cfg.Addr = ":8888"
	}
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		cfg:         cfg,
		recommender: recommender,
		radio:       r,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		pingPeriod: 10 * time.Second,
		log:        log.With().Str("component", "server").Logger(),
	}

	engine := gin.New()
	engine.Use(s.recovery(), s.requestLogging(), cors.New(corsConfig(cfg.AllowedOrigins)))
	s.engine = engine
	s.routes()
	return s
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.cfg.Addr).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowHeaders = append(cfg.AllowHeaders, "Authorization", "X-Request-ID")
	cfg.ExposeHeaders = []string{"X-Request-ID"}

	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	cfg.AllowOrigins = origins
	return cfg
}
