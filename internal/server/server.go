package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/jackzampolin/easel/internal/api"
	"github.com/jackzampolin/easel/internal/batch"
	"github.com/jackzampolin/easel/internal/config"
	"github.com/jackzampolin/easel/internal/home"
	"github.com/jackzampolin/easel/internal/imagefile"
	"github.com/jackzampolin/easel/internal/provider"
	"github.com/jackzampolin/easel/internal/server/endpoints"
	"github.com/jackzampolin/easel/internal/store"
	"github.com/jackzampolin/easel/internal/svcctx"
)

// Server is the easel HTTP server. It owns the prompt store lifecycle,
// opening the database on start and closing it on shutdown.
type Server struct {
	httpServer *http.Server
	home       *home.Dir
	configMgr  *config.Manager
	logger     *slog.Logger

	// endpoints registry for HTTP routes
	endpointRegistry *api.Registry

	// mu guards the fields below; the provider and runner can be swapped
	// by a config reload while requests are in flight.
	mu       sync.RWMutex
	running  bool
	store    *store.Store
	provider provider.ImageProvider
	files    *imagefile.Files
	runner   *batch.Runner
	services *svcctx.Services
}

// Config holds server configuration.
type Config struct {
	// Host is the address to bind to (default: 127.0.0.1)
	Host string
	// Port is the port to listen on (default: 8750)
	Port string
	// Home is the easel home directory holding the database and images
	Home *home.Dir
	// ConfigManager provides configuration with hot-reload support
	ConfigManager *config.Manager
	// Logger is the structured logger to use
	Logger *slog.Logger
}

// New creates a new Server with the given configuration.
func New(cfg Config) (*Server, error) {
	if cfg.Home == nil {
		return nil, errors.New("home directory is required")
	}
	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}
	if cfg.Port == "" {
		cfg.Port = "8750"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	s := &Server{
		home:      cfg.Home,
		configMgr: cfg.ConfigManager,
		logger:    cfg.Logger,
	}

	s.endpointRegistry = api.NewRegistry()
	s.endpointRegistry.Register(endpoints.All()...)

	mux := http.NewServeMux()
	s.endpointRegistry.RegisterRoutes(mux, s.requireInit)

	s.httpServer = &http.Server{
		Addr:        net.JoinHostPort(cfg.Host, cfg.Port),
		Handler:     s.withServices(mux),
		ReadTimeout: 30 * time.Second,
		// Batch generation holds the response open for the whole run.
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	// Swap the provider when the config file changes
	if cfg.ConfigManager != nil {
		cfg.ConfigManager.OnChange(func(c *config.Config) {
			s.reloadProvider(c)
		})
	}

	return s, nil
}

// Start opens the store, builds the provider stack, and serves HTTP.
// It blocks until the context is cancelled or an error occurs.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("server already running")
	}
	s.running = true
	s.mu.Unlock()

	storePath := s.home.DBPath()
	imagesDir := s.home.ImagesPath()
	var conf *config.Config
	if s.configMgr != nil {
		conf = s.configMgr.Get()
		if conf.Store.Path != "" {
			storePath = conf.Store.Path
		}
		if conf.Images.Dir != "" {
			imagesDir = conf.Images.Dir
		}
	}

	st, err := store.Open(storePath, store.Options{Logger: s.logger})
	if err != nil {
		s.setNotRunning()
		return fmt.Errorf("failed to open store: %w", err)
	}

	prov := buildProvider(conf, s.logger)
	files := imagefile.New(imagesDir, s.logger)

	runner, err := batch.NewRunner(batch.Config{
		Store:    st,
		Provider: prov,
		Files:    files,
		Logger:   s.logger,
	})
	if err != nil {
		_ = st.Close()
		s.setNotRunning()
		return fmt.Errorf("failed to create batch runner: %w", err)
	}

	s.mu.Lock()
	s.store = st
	s.provider = prov
	s.files = files
	s.runner = runner
	s.services = &svcctx.Services{
		Store:    st,
		Provider: prov,
		Runner:   runner,
	}
	s.mu.Unlock()
	s.logger.Info("services ready", "provider", prov.Name(), "store", storePath, "images", imagesDir)

	// Start HTTP server in goroutine
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for context cancellation or error
	select {
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			_ = s.shutdown()
			return fmt.Errorf("HTTP server error: %w", err)
		}
	}

	return s.shutdown()
}

// shutdown performs graceful shutdown of the HTTP server and the store.
func (s *Server) shutdown() error {
	s.logger.Info("shutting down server")

	timeout := 30 * time.Second
	if s.configMgr != nil {
		timeout = s.configMgr.Get().ShutdownTimeout()
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
	}

	s.mu.Lock()
	st := s.store
	s.store = nil
	s.provider = nil
	s.files = nil
	s.runner = nil
	s.services = nil
	s.mu.Unlock()

	if st != nil {
		if err := st.Close(); err != nil {
			s.logger.Error("store close error", "error", err)
		}
	}

	s.setNotRunning()
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) setNotRunning() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

// IsRunning returns whether the server is currently running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Addr returns the server's listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Store returns the prompt store.
// Returns nil if the server hasn't started yet.
func (s *Server) Store() *store.Store {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store
}

// Provider returns the active image provider.
// Returns nil if the server hasn't started yet.
func (s *Server) Provider() provider.ImageProvider {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.provider
}

// Runner returns the batch runner.
// Returns nil if the server hasn't started yet.
func (s *Server) Runner() *batch.Runner {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.runner
}

// reloadProvider rebuilds the provider and runner from a changed config.
// Store and image paths are read once at start; changing them needs a
// restart.
func (s *Server) reloadProvider(c *config.Config) {
	s.mu.RLock()
	st, files := s.store, s.files
	s.mu.RUnlock()
	if st == nil {
		return
	}

	prov := buildProvider(c, s.logger)
	runner, err := batch.NewRunner(batch.Config{
		Store:    st,
		Provider: prov,
		Files:    files,
		Logger:   s.logger,
	})
	if err != nil {
		s.logger.Error("provider reload failed", "error", err)
		return
	}

	s.mu.Lock()
	s.provider = prov
	s.runner = runner
	s.services = &svcctx.Services{
		Store:    st,
		Provider: prov,
		Runner:   runner,
	}
	s.mu.Unlock()
	s.logger.Info("provider reloaded from config", "provider", prov.Name())
}

// withServices wraps a handler to enrich the request context with services.
func (s *Server) withServices(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.RLock()
		services := s.services
		s.mu.RUnlock()

		ctx := r.Context()
		if services != nil {
			ctx = svcctx.WithServices(ctx, services)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireInit is middleware that ensures the server is fully initialized.
// Returns 503 Service Unavailable until the store and runner are ready.
func (s *Server) requireInit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.RLock()
		ready := s.store != nil && s.runner != nil
		s.mu.RUnlock()
		if !ready {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"error":"server not fully initialized"}`))
			return
		}
		next(w, r)
	}
}

// buildProvider selects the image provider from config. A nil config or a
// missing API key yields the mock provider so the server works offline.
func buildProvider(c *config.Config, logger *slog.Logger) provider.ImageProvider {
	if c == nil {
		return provider.NewMockImageClient()
	}
	return provider.New(c.EffectiveProvider(), c.ToImageClientConfig(), logger)
}
