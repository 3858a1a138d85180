// Package server provides the HTTP API of tablesync.
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/tablesync/internal/server/cache"
	"github.com/agentstation/tablesync/internal/server/handlers"
	"github.com/agentstation/tablesync/pkg/constants"
	"github.com/agentstation/tablesync/pkg/errors"
	"github.com/agentstation/tablesync/pkg/ingest"
)

// Server holds the HTTP server state and dependencies.
type Server struct {
	ingester  handlers.Ingester
	store     ingest.Store
	cache     *cache.Cache
	logger    *zerolog.Logger
	config    Config
	startTime time.Time
}

// New creates a server. ingester may be nil for a read-only API.
func New(ingester handlers.Ingester, store ingest.Store, cfg Config, logger *zerolog.Logger) (*Server, error) {
	if store == nil {
		return nil, errors.NewConfigError("server", "a record store is required", nil)
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	defaults := DefaultConfig()
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = defaults.CacheTTL
	}
	if cfg.MaxUploadSize == 0 {
		cfg.MaxUploadSize = defaults.MaxUploadSize
	}
	if cfg.PathPrefix == "" {
		cfg.PathPrefix = defaults.PathPrefix
	}

	logger.Debug().
		Dur("cache_ttl", cfg.CacheTTL).
		Str("prefix", cfg.PathPrefix).
		Msg("Creating server instance")

	return &Server{
		ingester:  ingester,
		store:     store,
		cache:     cache.New(cfg.CacheTTL, cfg.CacheTTL*2),
		logger:    logger,
		config:    cfg,
		startTime: time.Now(),
	}, nil
}

// Handler returns the routes wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	return s.setupRouter()
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.Addr(),
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", srv.Addr).Msg("Server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info().Msg("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

// Cache returns the response cache.
func (s *Server) Cache() *cache.Cache {
	return s.cache
}

// StartTime returns when the server was created.
func (s *Server) StartTime() time.Time {
	return s.startTime
}
