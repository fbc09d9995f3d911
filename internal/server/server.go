package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/mertcakir/coursereg/internal/bootstrap"
	"github.com/mertcakir/coursereg/internal/config"
)

// How often expired refresh and password reset tokens are purged.
const maintenanceInterval = 12 * time.Hour

// Server holds the state for the HTTP server.
type Server struct {
	config          *config.Config
	router          *gin.Engine
	dbPool          *pgxpool.Pool
	deps            *bootstrap.Dependencies
	logger          zerolog.Logger
	http            *http.Server
	maintenanceStop chan struct{}
}

// NewServer creates and initializes a new server instance by calling the
// bootstrap functions in order.
func NewServer() (*Server, error) {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger()
	if err != nil {
		return nil, fmt.Errorf("failed to load config or setup logger: %w", err)
	}

	dbPool, err := bootstrap.SetupDatabase(cfg, lgr)
	if err != nil {
		return nil, fmt.Errorf("failed to setup database: %w", err)
	}

	deps, err := bootstrap.BuildDependencies(cfg, dbPool, lgr)
	if err != nil {
		dbPool.Close()
		return nil, fmt.Errorf("failed to setup dependencies: %w", err)
	}

	router := bootstrap.SetupRouter(cfg, deps, dbPool, lgr)
	setupStaticFileServing(router, cfg, lgr)

	return &Server{
		config:          cfg,
		router:          router,
		dbPool:          dbPool,
		deps:            deps,
		logger:          lgr,
		maintenanceStop: make(chan struct{}),
	}, nil
}

// setupStaticFileServing serves the uploads directory with stored profile pictures
func setupStaticFileServing(router *gin.Engine, cfg *config.Config, lgr zerolog.Logger) {
	uploadPath := cfg.Server.StoragePath

	if _, err := os.Stat(uploadPath); os.IsNotExist(err) {
		if err := os.MkdirAll(uploadPath, os.ModePerm); err != nil {
			lgr.Error().Err(err).Str("path", uploadPath).Msg("Failed to create uploads directory")
			return
		}
	}

	router.Static("/uploads", uploadPath)
	lgr.Info().Str("path", uploadPath).Msg("Static file serving configured for uploads directory")
}

// Run starts the HTTP server and handles graceful shutdown.
func (s *Server) Run() error {
	s.logger.Info().Str("port", s.config.Server.Port).Msg("Starting server...")

	s.http = &http.Server{
		Addr:         ":" + s.config.Server.Port,
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go s.runMaintenance()

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info().Str("addr", s.http.Addr).Msg("HTTP server listening")
		serverErrors <- s.http.ListenAndServe()
	}()

	osSignals := make(chan os.Signal, 1)
	signal.Notify(osSignals, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("error starting server: %w", err)
		}
	case sig := <-osSignals:
		s.logger.Info().Str("signal", sig.String()).Msg("Received OS signal, initiating shutdown...")
	}

	return s.Shutdown(context.Background())
}

// runMaintenance periodically purges expired refresh and password reset
// tokens. It runs once at startup and then on a fixed interval until the
// server shuts down.
func (s *Server) runMaintenance() {
	ticker := time.NewTicker(maintenanceInterval)
	defer ticker.Stop()

	s.cleanupTokens()
	for {
		select {
		case <-s.maintenanceStop:
			return
		case <-ticker.C:
			s.cleanupTokens()
		}
	}
}

func (s *Server) cleanupTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := s.deps.Repos.TokenRepository.CleanupExpiredTokens(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("Refresh token cleanup failed")
	}
	if n, err := s.deps.Repos.PasswordResetRepository.CleanupExpiredTokens(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("Password reset token cleanup failed")
	} else if n > 0 {
		s.logger.Info().Int64("deletedCount", n).Msg("Cleaned up password reset tokens")
	}
}

// Shutdown gracefully stops the server and closes resources.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	close(s.maintenanceStop)

	shutdownError := false

	if s.http != nil {
		s.logger.Info().Msg("Shutting down HTTP server...")
		if err := s.http.Shutdown(ctx); err != nil {
			s.logger.Error().Err(err).Msg("HTTP server shutdown error")
			shutdownError = true
		} else {
			s.logger.Info().Msg("HTTP server gracefully stopped")
		}
	}

	if s.dbPool != nil {
		s.logger.Info().Msg("Closing database connection pool...")
		s.dbPool.Close()
	}

	s.logger.Info().Msg("Server shutdown complete")
	if shutdownError {
		return errors.New("server shutdown completed with errors")
	}
	return nil
}
