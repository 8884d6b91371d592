// Package ui serves the income prediction web form.
package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/incomecast/internal/artifact"
	"github.com/leapstack-labs/incomecast/internal/predict"
	"github.com/leapstack-labs/incomecast/internal/ui/notifier"
	"github.com/leapstack-labs/incomecast/internal/ui/resources"
	"github.com/leapstack-labs/incomecast/internal/ui/router"
	"github.com/leapstack-labs/incomecast/pkg/core"
)

// DefaultPort is used when no port is configured.
const DefaultPort = 8501

// Server is the web form server.
type Server struct {
	service        *predict.Service
	provider       *artifact.Provider
	store          core.Store
	sessionStore   *sessions.CookieStore
	host           string
	port           int
	watch          bool
	thresholdLabel string
	logger         *slog.Logger
	notifier       *notifier.Notifier
}

// Config holds configuration for the UI server.
type Config struct {
	Service *predict.Service
	// Provider is watched for artifact changes when Watch is set.
	Provider *artifact.Provider
	Store    core.Store
	// Notifier is shared with whoever announces new predictions; nil
	// creates one.
	Notifier       *notifier.Notifier
	Host           string
	Port           int
	Watch          bool
	SessionSecret  string
	ThresholdLabel string
	Logger         *slog.Logger
}

// NewServer creates a new UI server instance.
func NewServer(cfg Config) *Server {
	sessionStore := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	sessionStore.MaxAge(86400 * 30) // 30 days
	sessionStore.Options.Path = "/"
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.SameSite = http.SameSiteLaxMode

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	notify := cfg.Notifier
	if notify == nil {
		notify = notifier.New()
	}
	port := cfg.Port
	if port == 0 {
		port = DefaultPort
	}

	return &Server{
		service:        cfg.Service,
		provider:       cfg.Provider,
		store:          cfg.Store,
		sessionStore:   sessionStore,
		host:           cfg.Host,
		port:           port,
		watch:          cfg.Watch,
		thresholdLabel: cfg.ThresholdLabel,
		logger:         logger,
		notifier:       notify,
	}
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return net.JoinHostPort(s.host, fmt.Sprint(s.port))
}

// URL returns the address to open in a browser.
func (s *Server) URL() string {
	host := s.host
	if host == "" || host == "0.0.0.0" {
		host = "localhost"
	}
	return fmt.Sprintf("http://%s", net.JoinHostPort(host, fmt.Sprint(s.port)))
}

// Handler builds the HTTP handler with middleware and all routes.
func (s *Server) Handler() (http.Handler, error) {
	if s.service == nil {
		return nil, fmt.Errorf("ui: no prediction service configured")
	}

	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.Compress(5),
	)

	if err := router.SetupRoutes(r, router.Deps{
		Service:        s.service,
		Store:          s.store,
		SessionStore:   s.sessionStore,
		Notifier:       s.notifier,
		ThresholdLabel: s.thresholdLabel,
		Logger:         s.logger,
		IsDev:          s.IsDev(),
	}); err != nil {
		return nil, fmt.Errorf("failed to setup routes: %w", err)
	}
	return r, nil
}

// Serve starts the UI server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.Addr())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.Addr(), err)
	}
	return s.ServeListener(ctx, lis)
}

// ServeListener serves on an existing listener until ctx is cancelled.
func (s *Server) ServeListener(ctx context.Context, lis net.Listener) error {
	handler, err := s.Handler()
	if err != nil {
		_ = lis.Close()
		return err
	}

	s.logger.Info("starting UI server", "addr", s.URL())

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Handler: handler,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.watch && s.provider != nil {
		eg.Go(func() error {
			return s.watchArtifact(egctx)
		})
	}

	eg.Go(func() error {
		if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		// end SSE streams so Shutdown does not wait on them
		s.notifier.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down UI server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// IsDev reports whether the binary was built with the dev tag.
func (s *Server) IsDev() bool {
	return resources.IsDev
}

// Notifier returns the server's notifier for SSE updates.
func (s *Server) Notifier() *notifier.Notifier {
	return s.notifier
}

// watchArtifact reloads the model when its files change and refreshes
// connected pages. A watch that cannot start is logged, not fatal.
func (s *Server) watchArtifact(ctx context.Context) error {
	err := s.provider.Watch(ctx, func(b *artifact.Bundle, err error) {
		if err != nil {
			s.logger.Error("artifact reload failed", "error", err)
		} else if b != nil {
			s.logger.Info("artifact reloaded", "name", b.Meta.Name, "version", b.Meta.Version)
		}
		s.notifier.Broadcast()
	})
	if err != nil {
		s.logger.Error("failed to watch artifact", "error", err)
	}
	return nil
}
