package server

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/reportdeck/backend/internal/api/http"
	"github.com/reportdeck/backend/internal/api/middleware"
	"github.com/reportdeck/backend/internal/api/ws"
	"github.com/reportdeck/backend/internal/domain/container"
	"github.com/reportdeck/backend/internal/domain/defaults"
	"github.com/reportdeck/backend/internal/domain/schema"
	"github.com/reportdeck/backend/internal/domain/widget"
	"github.com/reportdeck/backend/internal/i18n"
	"github.com/reportdeck/backend/internal/infrastructure/config"
	"github.com/reportdeck/backend/internal/infrastructure/logging"
	"github.com/reportdeck/backend/internal/infrastructure/monitoring"
	"github.com/reportdeck/backend/internal/prefs"
	"github.com/reportdeck/backend/internal/shared/types"
	"github.com/reportdeck/backend/internal/widgets"
)

// Server wraps the HTTP server and dependencies
type Server struct {
	router  *gin.Engine
	store   prefs.Store
	hub     *ws.Hub
	logger  *logging.Logger
	config  *config.Config
	metrics *monitoring.Metrics
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config) (*Server, error) {
	// Initialize logger
	logger, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
		OutputPaths: []string{"stdout"},
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	logger.Info("Initializing ReportDeck Server",
		zap.String("port", cfg.Server.Port),
		zap.String("namespace", cfg.Server.Namespace),
		zap.String("prefs_driver", cfg.Prefs.Driver),
	)

	// Initialize metrics first (needed by other components)
	metrics := monitoring.NewMetrics()
	logger.Info("Performance monitoring initialized")

	// Open the preference store
	prefStore, err := prefs.Open(cfg.Prefs, logger)
	if err != nil {
		return nil, fmt.Errorf("open preference store: %w", err)
	}
	prefStore = prefs.WithMetrics(prefStore, cfg.Prefs.Driver, metrics)
	logger.Info("Preference store ready", zap.String("driver", cfg.Prefs.Driver))

	// Initialize translations
	translator := i18n.Open(cfg.I18n, logger)

	// Register widget providers
	registry := widget.NewRegistry()
	fetcher := widgets.NewHTTPFetcher(cfg.Feed)
	if err := widgets.RegisterAll(registry, widgets.Deps{Fetcher: fetcher, Logger: logger}); err != nil {
		prefStore.Close()
		return nil, fmt.Errorf("register widgets: %w", err)
	}
	metrics.SetRegistryWidgets(registry.Len())
	logger.Info("Widget registry ready", zap.Int("types", registry.Len()))

	factory := widget.NewFactory(registry)

	// Load default containers. A missing directory means a fresh install;
	// a directory that exists but fails to parse is an operator error.
	loader := defaults.NewLoader(registry, logger)
	sets, err := loader.Load(cfg.Defaults.Dir)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			prefStore.Close()
			return nil, fmt.Errorf("load default containers: %w", err)
		}
		logger.Warn("Defaults directory missing, starting without default containers",
			zap.String("dir", cfg.Defaults.Dir))
		sets = map[string]*types.RecordSet{}
	} else {
		logger.Info("Default containers loaded",
			zap.Int("contexts", len(sets)),
			zap.String("dir", cfg.Defaults.Dir),
		)
	}

	// Wire the container domain
	hub := ws.NewHub(logger, metrics)
	contStore := container.NewStore(prefStore, cfg.Server.Namespace, sets, logger)
	manager := container.NewManager(contStore, factory, logger, metrics, hub)
	codec := schema.NewCodec(translator)

	// Create router
	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(logger))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig().WithOrigins(cfg.CORS.Origins)))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	// Create handlers
	handlers := http.NewHandlers(manager, codec, registry, factory, translator, logger)
	wsHandler := ws.NewHandler(hub, logger, metrics)
	stats := http.NewStatsHandler(metrics, registry)

	// Register routes
	router.GET("/", handlers.Root)
	router.GET("/health", handlers.Health)
	handlers.Register(router)

	// WebSocket
	router.GET("/api/v1/stream", wsHandler.HandleConnection)

	// Metrics endpoints
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/metrics/json", stats.GetStats)

	logger.Info("Server initialized successfully")

	return &Server{
		router:  router,
		store:   prefStore,
		hub:     hub,
		logger:  logger,
		config:  cfg,
		metrics: metrics,
	}, nil
}

// Run starts the HTTP server
func (s *Server) Run() error {
	addr := s.config.Server.Host + ":" + s.config.Server.Port
	s.logger.Info("Starting HTTP server", zap.String("addr", addr))
	return s.router.Run(addr)
}

// Close gracefully shuts down the server
func (s *Server) Close() error {
	s.logger.Info("Shutting down server...")

	if err := s.store.Close(); err != nil {
		s.logger.Error("Failed to close preference store", zap.Error(err))
		return fmt.Errorf("close preference store: %w", err)
	}
	s.logger.Info("Closed preference store")

	// Sync logger before exit
	s.logger.Sync()

	return nil
}
