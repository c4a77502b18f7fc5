// Package server provides the HTTP server setup and routing configuration.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dapp-craft/daohq-admin-panel/internal/api"
	"github.com/dapp-craft/daohq-admin-panel/internal/booking"
	"github.com/dapp-craft/daohq-admin-panel/internal/config"
	"github.com/dapp-craft/daohq-admin-panel/internal/content"
	"github.com/dapp-craft/daohq-admin-panel/internal/db"
	"github.com/dapp-craft/daohq-admin-panel/internal/livesync"
	"github.com/dapp-craft/daohq-admin-panel/internal/logger"
	"github.com/dapp-craft/daohq-admin-panel/internal/middleware"
	"github.com/dapp-craft/daohq-admin-panel/internal/music"
	"github.com/dapp-craft/daohq-admin-panel/internal/realtime"
	"github.com/dapp-craft/daohq-admin-panel/internal/schema"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Server represents the HTTP server
type Server struct {
	config         *config.Config
	db             *db.DB
	repos          *db.Repositories
	bookingService *booking.Service
	contentService *content.Service
	musicService   *music.Service
	schemaService  *schema.Service
	tokenIssuer    *realtime.TokenIssuer
	hub            *realtime.Hub
	store          *livesync.Store
	dispatcher     *livesync.Dispatcher
	supervisor     *livesync.Supervisor
	router         *gin.Engine
	server         *http.Server
}

// New creates a new server instance
func New(cfg *config.Config, database *db.DB) *Server {
	repos := db.NewRepositories(database)
	bookingService := booking.NewService(repos, cfg.Limits)
	contentService := content.NewService(repos, cfg.Limits)
	musicService := music.NewService(repos, cfg.Limits)
	schemaService := schema.NewService(repos.Locations)
	tokenIssuer := realtime.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.WSTokenTTL)
	hub := realtime.NewHub(repos)

	channelCfg := livesync.ChannelConfig{
		ReconnectFloor:   cfg.Realtime.ReconnectFloor,
		ReconnectStep:    cfg.Realtime.ReconnectStep,
		ReconnectCeiling: cfg.Realtime.ReconnectCeiling,
	}
	store := livesync.NewStore(cfg.Realtime.BaseURL, cfg.Realtime.Token, channelCfg, schemaService)
	dispatcher := livesync.NewDispatcher(store, contentService)
	supervisor := livesync.NewSupervisor(store, bookingService, cfg.Realtime.ReconcileInterval)

	return &Server{
		config:         cfg,
		db:             database,
		repos:          repos,
		bookingService: bookingService,
		contentService: contentService,
		musicService:   musicService,
		schemaService:  schemaService,
		tokenIssuer:    tokenIssuer,
		hub:            hub,
		store:          store,
		dispatcher:     dispatcher,
		supervisor:     supervisor,
	}
}

// setupRouter initializes the Gin router with middleware and routes
func (s *Server) setupRouter() {
	// Set Gin mode based on log level
	if s.config.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	s.router = gin.New()

	// Add middleware stack
	s.router.Use(middleware.RequestLogger())
	s.router.Use(gin.Recovery())
	s.router.Use(cors.Default())

	apiGroup := s.router.Group("/api")

	api.SetupHealthRoutes(apiGroup, s.db, s.store)
	api.SetupBookingRoutes(apiGroup, s.bookingService)
	api.SetupContentRoutes(apiGroup, s.contentService)
	api.SetupMusicRoutes(apiGroup, s.musicService)
	api.SetupLocationRoutes(apiGroup, s.schemaService, s.config.Auth.SystemToken)
	api.SetupLiveRoutes(apiGroup, s.store, s.dispatcher)
	api.SetupWSRoutes(apiGroup, s.tokenIssuer, s.hub, s.config.Auth.SystemToken)
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.setupRouter()

	if err := s.supervisor.Start(); err != nil {
		return fmt.Errorf("failed to start live-sync supervisor: %w", err)
	}

	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)

	s.server = &http.Server{
		Addr:           addr,
		Handler:        s.router,
		ReadTimeout:    s.config.Server.ReadTimeout,
		WriteTimeout:   s.config.Server.WriteTimeout,
		MaxHeaderBytes: 1 << 20, // 1 MB
	}

	logger.Log.Info().
		Str("host", s.config.Server.Host).
		Int("port", s.config.Server.Port).
		Msg("Starting HTTP server")

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logger.Log.Info().Msg("Shutting down server gracefully")

	// Stop opening new live connections, then drop the ones we hold
	if s.supervisor != nil {
		s.supervisor.Stop()
	}
	if s.store != nil {
		s.store.Shutdown()
	}

	// Disconnect websocket subscribers
	if s.hub != nil {
		s.hub.Shutdown()
	}

	// Check if server was started before attempting shutdown
	if s.server != nil {
		if err := s.server.Shutdown(ctx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
	}

	logger.Log.Info().Msg("Server stopped")
	return nil
}
