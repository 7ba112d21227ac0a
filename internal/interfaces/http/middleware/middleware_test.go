package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/ecommerce-storefront/internal/config"
	"github.com/your-org/ecommerce-storefront/internal/pkg/logger"
)

func testConfig() *config.Config {
	return &config.Config{
		Storage: config.StorageConfig{KeyPrefix: "test"},
		Security: config.SecurityConfig{
			RateLimitPerMinute: 10,
			CORSAllowedOrigins: []string{"https://shop.example.com", "*.example.org"},
			CORSAllowedMethods: []string{"GET", "POST"},
			CORSAllowedHeaders: []string{"Content-Type"},
			VisitorCookieTTL:   time.Hour,
		},
	}
}

func serve(engine *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestVisitorIssuesAndReusesCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(Visitor(testConfig()))
	engine.GET("/", func(c *gin.Context) { c.String(http.StatusOK, VisitorID(c)) })

	rec := serve(engine, httptest.NewRequest(http.MethodGet, "/", nil))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, VisitorCookie, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)
	assert.Equal(t, cookies[0].Value, rec.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	rec = serve(engine, req)
	assert.Equal(t, cookies[0].Value, rec.Body.String())
	assert.Empty(t, rec.Result().Cookies(), "a valid cookie is not reissued")

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: VisitorCookie, Value: "../../etc"})
	rec = serve(engine, req)
	assert.NotEqual(t, "../../etc", rec.Body.String())
	assert.Len(t, rec.Result().Cookies(), 1)
}

func TestRequestIDPropagates(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(RequestID())
	engine.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(ContextRequestID)) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := serve(engine, req)
	assert.Equal(t, "abc-123", rec.Body.String())
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))

	rec = serve(engine, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, rec.Body.String(), 36)
}

func TestCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(CORS(testConfig()))
	engine.GET("/api/cart", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/api/cart", nil)
	req.Header.Set("Origin", "https://shop.example.com")
	rec := serve(engine, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://shop.example.com", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	req.Header.Set("Origin", "https://evil.com")
	rec = serve(engine, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	assert.True(t, isOriginAllowed("https://a.example.org", []string{"*.example.org"}))
	assert.False(t, isOriginAllowed("https://evilexample.org", []string{"*.example.org"}))
}

func TestSecurityHeadersAskForColorScheme(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(SecurityHeaders("Gadgets Mela"))
	engine.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := serve(engine, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "Sec-CH-Prefers-Color-Scheme", rec.Header().Get("Accept-CH"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "script-src 'self'")
}

func TestRateLimitWithoutRedisIsDisabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(RateLimit(testConfig(), nil, logger.Discard()))
	engine.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 20; i++ {
		rec := serve(engine, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestTimeoutSetsDeadlineExceptForStreams(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(Timeout(time.Second, "/events"))

	var hasDeadline = map[string]bool{}
	handler := func(c *gin.Context) {
		_, ok := c.Request.Context().Deadline()
		hasDeadline[c.Request.URL.Path] = ok
		c.Status(http.StatusOK)
	}
	engine.GET("/cart", handler)
	engine.GET("/events", handler)

	serve(engine, httptest.NewRequest(http.MethodGet, "/cart", nil))
	serve(engine, httptest.NewRequest(http.MethodGet, "/events", nil))

	assert.True(t, hasDeadline["/cart"])
	assert.False(t, hasDeadline["/events"])
}

func TestTimeoutAnswersWhenHandlerGaveUp(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(Timeout(10 * time.Millisecond))
	engine.GET("/slow", func(c *gin.Context) {
		<-c.Request.Context().Done()
	})

	rec := serve(engine, httptest.NewRequest(http.MethodGet, "/slow", nil).WithContext(context.Background()))
	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
}

func TestLoggerWritesOnlyThroughLogrus(t *testing.T) {
	log, hook := logtest.NewNullLogger()
	engine := gin.New()
	engine.Use(RequestID(), Logger(log, "/health"))
	engine.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	engine.GET("/boom", func(c *gin.Context) { c.Status(http.StatusBadGateway) })
	engine.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	serve(engine, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Empty(t, hook.AllEntries())

	serve(engine, httptest.NewRequest(http.MethodGet, "/missing", nil))
	serve(engine, httptest.NewRequest(http.MethodGet, "/boom", nil))

	entries := hook.AllEntries()
	require.Len(t, entries, 2)
	assert.Equal(t, logrus.WarnLevel, entries[0].Level)
	assert.Equal(t, "/missing", entries[0].Data["path"])
	assert.Equal(t, logrus.ErrorLevel, entries[1].Level)
	assert.Equal(t, http.StatusBadGateway, entries[1].Data["status_code"])
	assert.NotEmpty(t, entries[1].Data["request_id"])
}
