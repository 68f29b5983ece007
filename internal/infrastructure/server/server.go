package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	api "github.com/GriffinCanCode/fsgate/internal/api/http"
	"github.com/GriffinCanCode/fsgate/internal/api/middleware"
	"github.com/GriffinCanCode/fsgate/internal/infrastructure/config"
	"github.com/GriffinCanCode/fsgate/internal/infrastructure/logging"
	"github.com/GriffinCanCode/fsgate/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/fsgate/internal/providers/auth"
	"github.com/GriffinCanCode/fsgate/internal/providers/filesystem"
)

const (
	// multipartOverhead covers boundaries and part headers around an upload
	multipartOverhead = 1 << 20
	shutdownTimeout   = 10 * time.Second
	readHeaderTimeout = 10 * time.Second
)

// Server wraps the HTTP server and dependencies
type Server struct {
	router  *gin.Engine
	http    *http.Server
	store   *filesystem.Store
	tokens  *auth.TokenStore
	logger  *logging.Logger
	config  *config.Config
	metrics *monitoring.Metrics
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := logging.NewFromSettings(cfg.Logging.Level, cfg.Logging.Development)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	logger.Info("Initializing fsgate",
		zap.String("addr", cfg.Addr()),
		zap.String("data_dir", cfg.Storage.DataDir),
		zap.String("traversal_policy", string(cfg.Policy())),
	)

	// Metrics are always collected; only the endpoint is optional
	metrics := monitoring.NewMetrics()

	store, err := filesystem.NewStore(filesystem.Config{
		Root:            cfg.Storage.DataDir,
		MaxUploadBytes:  cfg.Storage.MaxUploadBytes,
		Policy:          cfg.Policy(),
		ListConcurrency: cfg.Storage.ListConcurrency,
		Logger:          logger.Named("filesystem").Logger,
		Recorder:        metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open data directory: %w", err)
	}
	logger.Info("Serving data directory", zap.String("root", store.Root()))

	tokens := auth.NewTokenStore()
	if cfg.Auth.Token != "" {
		if err := tokens.Set(cfg.Auth.Token); err != nil {
			return nil, fmt.Errorf("invalid AUTH_TOKEN: %w", err)
		}
		logger.Info("Bearer token preconfigured from environment")
	}

	// Create router
	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	if err := router.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid TRUSTED_PROXIES: %w", err)
	}

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.AccessLog(logger.Named("http").Logger))
	router.Use(middleware.SecurityHeaders())
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		rl := middleware.DefaultRateLimitConfig()
		rl.RequestsPerSecond = cfg.RateLimit.RequestsPerSecond
		rl.Burst = cfg.RateLimit.Burst
		router.Use(middleware.RateLimit(rl))
	}
	router.Use(middleware.BodyLimit(bodyLimit(cfg.Storage.MaxUploadBytes)))

	handlers := api.NewHandlers(store, tokens, metrics, logger.Named("api").Logger)
	handlers.SetLevelControl(logger)

	router.GET("/", handlers.Root)
	handlers.Register(router, middleware.BearerAuth(tokens, metrics))

	if cfg.Metrics.Enabled {
		router.GET("/metrics", gin.WrapH(metrics.Handler()))
	}
	if cfg.Server.StaticDir != "" {
		router.Static("/ui", cfg.Server.StaticDir)
		logger.Info("Serving static UI", zap.String("dir", cfg.Server.StaticDir))
	}

	logger.Info("Server initialized successfully")

	return &Server{
		router: router,
		http: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           router,
			ReadHeaderTimeout: readHeaderTimeout,
		},
		store:   store,
		tokens:  tokens,
		logger:  logger,
		config:  cfg,
		metrics: metrics,
	}, nil
}

// bodyLimit sizes the request cap so a maximal upload still fits after
// base64 inflation and multipart framing. The store enforces the exact
// decoded bound.
func bodyLimit(maxUpload int64) int64 {
	return maxUpload + maxUpload/3 + multipartOverhead
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Store returns the sandboxed filesystem
func (s *Server) Store() *filesystem.Store {
	return s.store
}

// Logger returns the server logger
func (s *Server) Logger() *logging.Logger {
	return s.logger
}

// Run serves HTTP until ctx is cancelled, then drains in-flight requests
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.http.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.logger.Info("Starting HTTP server", zap.String("addr", ln.Addr().String()))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.http.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown: %w", err)
		}
		return nil
	})

	err := g.Wait()
	if err == nil {
		s.logger.Info("Server stopped")
	}
	return err
}

// Close flushes the logger
func (s *Server) Close() error {
	_ = s.logger.Sync()
	return nil
}
