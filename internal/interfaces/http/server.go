// internal/interfaces/http/server.go
package http

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/your-org/ecommerce-storefront/internal/config"
	"github.com/your-org/ecommerce-storefront/internal/interfaces/http/middleware"
	"github.com/your-org/ecommerce-storefront/internal/interfaces/http/routes"
	"github.com/your-org/ecommerce-storefront/internal/interfaces/http/views"
)

const maxRequestBody = 1 << 20

// HealthChecker is a dependency the health endpoint pings
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Server represents the HTTP server
type Server struct {
	config      *config.Config
	logger      *logrus.Logger
	deps        routes.Dependencies
	redisClient *redis.Client
	checks      map[string]HealthChecker
	started     time.Time

	gin        *gin.Engine
	httpServer *http.Server
}

// NewServer creates a new HTTP server instance. redisClient may be nil,
// which disables rate limiting.
func NewServer(cfg *config.Config, logger *logrus.Logger, deps routes.Dependencies, redisClient *redis.Client, checks map[string]HealthChecker) *Server {
	return &Server{
		config:      cfg,
		logger:      logger,
		deps:        deps,
		redisClient: redisClient,
		checks:      checks,
		started:     time.Now(),
	}
}

// Handler builds the gin engine on first use
func (s *Server) Handler() http.Handler {
	if s.gin != nil {
		return s.gin
	}

	if s.config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	s.gin = gin.New()
	s.gin.HTMLRender = views.MustNew()
	if err := s.gin.SetTrustedProxies(s.config.Security.TrustedProxies); err != nil {
		s.logger.WithError(err).Warn("Ignoring invalid trusted proxies")
	}

	s.setupMiddleware()
	s.setupRoutes()
	return s.gin
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         ":" + s.config.Server.Port,
		Handler:      s.Handler(),
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
		IdleTimeout:  s.config.Server.IdleTimeout,
	}

	s.logger.WithFields(logrus.Fields{
		"port":       s.config.Server.Port,
		"public_url": s.config.App.PublicURL,
		"backend":    s.config.Backend.BaseURL,
	}).Info("🚀 HTTP server starting")

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("🛑 Shutting down HTTP server...")

	if s.httpServer == nil {
		return nil
	}
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}

	s.logger.Info("✅ HTTP server stopped gracefully")
	return nil
}

// setupMiddleware configures all middleware for the server
func (s *Server) setupMiddleware() {
	s.gin.Use(gin.Recovery())

	// Request ID and visitor come first so every log line carries them
	s.gin.Use(middleware.RequestID())
	s.gin.Use(middleware.Visitor(s.config))
	s.gin.Use(middleware.Logger(s.logger, "/health", "/ready"))

	s.gin.Use(middleware.CORS(s.config))
	s.gin.Use(middleware.SecurityHeaders(s.config.App.Name))
	s.gin.Use(middleware.RateLimit(s.config, s.redisClient, s.logger))
	s.gin.Use(middleware.RequestSizeLimit(maxRequestBody))

	// The event stream stays open for as long as the page does
	s.gin.Use(middleware.Timeout(s.config.Server.RequestTimeout, "/events"))
}

func (s *Server) setupRoutes() {
	s.gin.GET("/health", s.healthCheck)
	s.gin.GET("/ready", s.readinessCheck)

	routes.SetupRoutes(s.gin, s.deps)
}

// healthCheck pings every configured dependency
func (s *Server) healthCheck(c *gin.Context) {
	names := make([]string, 0, len(s.checks))
	for name := range s.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := s.checks[name].Health(c.Request.Context()); err != nil {
			s.logger.WithError(err).WithField("dependency", name).Warn("Health check failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  name + " ping failed",
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":      "healthy",
		"timestamp":   time.Now().UTC(),
		"version":     s.config.App.Version,
		"environment": s.config.App.Environment,
		"storage":     s.config.Storage.Driver,
	})
}

// readinessCheck handles readiness check requests
func (s *Server) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ready",
		"timestamp": time.Now().UTC(),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	})
}
