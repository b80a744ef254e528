package api

import (
	"context"
	"net/http"
	"time"

	"example.com/backstage/services/picking/config"
	"example.com/backstage/services/picking/internal/api/handlers"
	"example.com/backstage/services/picking/internal/metrics"
	"example.com/backstage/services/picking/internal/services"
	"example.com/backstage/services/picking/internal/tracing"

	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Services groups the application services exposed over HTTP
type Services struct {
	Lots         *services.LotService
	SingleOrders *services.SingleOrderService
	Users        *services.UserService
	Rules        *services.RulesService
	Tasks        *services.TaskService
	Projections  *services.ProjectionService
	Seals        *services.SealRegistry
	Activity     handlers.ActivitySearcher
}

// Server represents the HTTP server
type Server struct {
	config     config.Config
	router     *gin.Engine
	httpServer *http.Server
	services   Services
	metrics    *metrics.Metrics
	tracer     tracing.Tracer
}

// NewServer creates a new HTTP server
func NewServer(cfg config.Config, svc Services, m *metrics.Metrics, tracer tracing.Tracer) *Server {
	server := &Server{
		config:   cfg,
		services: svc,
		metrics:  m,
		tracer:   tracer,
	}

	server.router = server.setupRouter()
	server.httpServer = &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      server.router,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	return server
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRouter configures the HTTP router
func (s *Server) setupRouter() *gin.Engine {
	if s.config.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestID())
	router.Use(Logger())
	if app := s.tracer.Application(); app != nil {
		router.Use(nrgin.Middleware(app))
	}
	if s.config.MetricsEnabled {
		router.Use(Metrics(s.metrics))
	}
	if s.config.Server.CorsEnabled {
		router.Use(CORS(s.config.Server.CorsOrigins))
	}

	handlers.NewMetricsHandler(s.metrics, s.services.Projections, s.tracer).RegisterRoutes(router)

	v1 := router.Group("/api/v1")
	v1.Use(RequireIdentity(s.services.Users))
	admin := RequireAdmin()

	handlers.NewLotHandler(s.services.Lots).RegisterRoutes(v1, admin)
	handlers.NewSingleOrderHandler(s.services.SingleOrders).RegisterRoutes(v1)
	handlers.NewUserHandler(s.services.Users, s.services.Rules).RegisterRoutes(v1, admin)
	handlers.NewTaskHandler(s.services.Tasks).RegisterRoutes(v1, admin)
	handlers.NewActivityHandler(s.services.Seals, s.services.Activity).RegisterRoutes(v1, admin)

	return router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	log.Info().Str("address", s.config.Server.Address).Msg("Starting HTTP server")

	if err := s.httpServer.ListenAndServe(); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "HTTP server error")
	}

	return nil
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	log.Info().Msg("Shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "HTTP server shutdown error")
	}

	log.Info().Msg("HTTP server shut down successfully")
	return nil
}
