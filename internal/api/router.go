package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/leozw/domain-inspector/internal/api/handlers"
	"github.com/leozw/domain-inspector/internal/api/middleware"
)

type Server struct {
	Router *gin.Engine
}

// NewServer wires the HTTP routes. gatherer backs /metrics; nil exposes the
// default registry.
func NewServer(inspector handlers.Inspector, gatherer prometheus.Gatherer, mode string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	gin.SetMode(mode)
	router := gin.New()

	// Middleware
	router.Use(middleware.Logger(logger))
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())

	server := &Server{Router: router}
	server.setupRoutes(handlers.NewHandler(inspector, logger), gatherer)
	return server
}

func (s *Server) setupRoutes(h *handlers.Handler, gatherer prometheus.Gatherer) {
	s.Router.GET("/health", h.Health)
	s.Router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	api := s.Router.Group("/api/v1")
	{
		api.GET("/lookup", h.Lookup)
		api.GET("/reports/:domain/history", h.History)
	}
}
