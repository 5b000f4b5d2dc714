package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/go-hclog"
	"gorm.io/gorm"

	"github.com/mantonx/moviecat/internal/api"
	"github.com/mantonx/moviecat/internal/config"
	"github.com/mantonx/moviecat/internal/middleware"
	"github.com/mantonx/moviecat/internal/modules/modulemanager"
)

// Deps are the collaborators the router needs. Registry must already be
// loaded.
type Deps struct {
	Config   *config.Config
	DB       *gorm.DB
	Registry *modulemanager.ModuleRegistry
	Log      hclog.Logger
}

// SetupRouter configures and returns the main router
func SetupRouter(deps Deps) *gin.Engine {
	cfg := deps.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.CORS(cfg.Server.CORSOrigins),
		middleware.Metrics(),
		middleware.RequestLogger(),
		middleware.ErrorLogger(),
		api.ErrorMiddleware(),
	)

	setupRoutes(r, deps)
	return r
}

// Server wraps the HTTP server with graceful shutdown
type Server struct {
	http   *http.Server
	cfg    config.ServerConfig
	log    hclog.Logger
	listen func(network, address string) (net.Listener, error)
}

// New creates a server for the given router
func New(cfg config.ServerConfig, handler http.Handler, log hclog.Logger) *Server {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Server{
		http: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		cfg:    cfg,
		log:    log.Named("server"),
		listen: net.Listen,
	}
}

// Addr returns the configured listen address
func (s *Server) Addr() string {
	return s.http.Addr
}

// Run serves until ctx is cancelled or SIGINT/SIGTERM arrives, then drains
// in-flight requests for up to the configured shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ln, err := s.listen("tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.http.Addr, err)
	}
	return s.serve(ctx, ln)
}

func (s *Server) serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("starting HTTP server", "addr", ln.Addr().String())
		errCh <- s.http.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down gracefully", "timeout", s.cfg.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP server shutdown error: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.log.Info("server shutdown complete")
	return nil
}
