package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/downbeats/internal/repositories"
	"github.com/desertthunder/downbeats/internal/shared"
)

const shutdownTimeout = 10 * time.Second

// Server is the reference Downbeats API backed by SQLite.
type Server struct {
	addr    string
	handler http.Handler
	logger  *log.Logger
}

// New wires repositories, thumbnail storage and routes for cfg.
func New(cfg *shared.Config, db *sql.DB, logger *log.Logger) *Server {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	h := &Handlers{
		categories:    repositories.NewCategoryRepository(db),
		subcategories: repositories.NewSubcategoryRepository(db),
		soundtracks:   repositories.NewSoundtrackRepository(db),
		thumbnails:    NewThumbnailStore(cfg.Server.MediaDir),
		logger:        logger,
	}

	return &Server{
		addr:    cfg.Server.Addr(),
		handler: NewRouter(h, ResourcePrefix(cfg.APIPrefix()), cfg.Server.MediaDir, logger),
		logger:  logger,
	}
}

// ResourcePrefix returns the mount point of the API routes under apiPrefix.
func ResourcePrefix(apiPrefix string) string {
	return strings.TrimRight(apiPrefix, "/") + "/downbeats"
}

// Handler returns the root [http.Handler].
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.addr
}

// ListenAndServe serves until ctx is canceled, then drains in-flight requests.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.addr,
		Handler:      s.handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", s.addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	s.logger.Info("server stopped")
	return nil
}
