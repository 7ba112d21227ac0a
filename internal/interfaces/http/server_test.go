package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/your-org/ecommerce-storefront/internal/config"
	"github.com/your-org/ecommerce-storefront/internal/domain/analytics"
	"github.com/your-org/ecommerce-storefront/internal/domain/cart"
	"github.com/your-org/ecommerce-storefront/internal/domain/checkout"
	"github.com/your-org/ecommerce-storefront/internal/domain/events"
	"github.com/your-org/ecommerce-storefront/internal/domain/session"
	"github.com/your-org/ecommerce-storefront/internal/domain/theme"
	"github.com/your-org/ecommerce-storefront/internal/infrastructure/backend/backendtest"
	"github.com/your-org/ecommerce-storefront/internal/infrastructure/storage"
	"github.com/your-org/ecommerce-storefront/internal/interfaces/http/handlers"
	"github.com/your-org/ecommerce-storefront/internal/interfaces/http/middleware"
	"github.com/your-org/ecommerce-storefront/internal/interfaces/http/routes"
	"github.com/your-org/ecommerce-storefront/internal/pkg/logger"
	"github.com/your-org/ecommerce-storefront/internal/pkg/pdf"
)

type checker struct{ err error }

func (c checker) Health(context.Context) error { return c.err }

func newTestServer(t *testing.T, checks map[string]HealthChecker) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logger.Discard()
	api := backendtest.New()
	t.Cleanup(api.Close)

	cfg := &config.Config{
		App:     config.AppConfig{Name: "Gadgets Mela", Version: "test", Environment: "test"},
		Server:  config.ServerConfig{RequestTimeout: 5 * time.Second},
		Storage: config.StorageConfig{Driver: config.StorageDriverMemory},
		Security: config.SecurityConfig{
			CORSAllowedOrigins: []string{"http://localhost:3000"},
			VisitorCookieTTL:   time.Hour,
		},
	}

	st := storage.NewMemory()
	bus := events.NewBus()
	client := api.BackendClient(log)
	carts := cart.NewStore(st, bus, log)

	return NewServer(cfg, log, routes.Dependencies{
		Config:    cfg,
		Backend:   client,
		Sessions:  session.NewStore(st, bus, log),
		Themes:    theme.NewStore(st, bus, log),
		Carts:     carts,
		Flashes:   handlers.NewFlashStore(st, log),
		Checkout:  checkout.NewService(carts, st, client, log),
		Analytics: analytics.NewService(client, log),
		Invoices:  pdf.NewService(cfg.App),
		Bus:       bus,
		Logger:    log,
	}, nil, checks)
}

func serve(s *Server, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthReportsFailingDependency(t *testing.T) {
	s := newTestServer(t, map[string]HealthChecker{
		"database": checker{},
		"redis":    checker{err: errors.New("connection refused")},
	})

	rec := serve(s, "/health")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "redis ping failed")
}

func TestHealthAndReady(t *testing.T) {
	s := newTestServer(t, map[string]HealthChecker{"redis": checker{}})

	rec := serve(s, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"storage":"memory"`)

	rec = serve(s, "/ready")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPagesCarryVisitorAndHints(t *testing.T) {
	s := newTestServer(t, nil)

	rec := serve(s, "/login")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))
	assert.Contains(t, rec.Header().Get("Accept-CH"), theme.ClientHintHeader)
	assert.Contains(t, rec.Header().Get("Set-Cookie"), middleware.VisitorCookie+"=")

	rec = serve(s, "/static/app.js")
	assert.Equal(t, http.StatusOK, rec.Code)
}
