package routes

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/ecommerce-storefront/internal/config"
	"github.com/your-org/ecommerce-storefront/internal/domain/analytics"
	"github.com/your-org/ecommerce-storefront/internal/domain/cart"
	"github.com/your-org/ecommerce-storefront/internal/domain/checkout"
	"github.com/your-org/ecommerce-storefront/internal/domain/events"
	"github.com/your-org/ecommerce-storefront/internal/domain/session"
	"github.com/your-org/ecommerce-storefront/internal/domain/theme"
	"github.com/your-org/ecommerce-storefront/internal/infrastructure/backend"
	"github.com/your-org/ecommerce-storefront/internal/infrastructure/backend/backendtest"
	"github.com/your-org/ecommerce-storefront/internal/infrastructure/storage"
	"github.com/your-org/ecommerce-storefront/internal/interfaces/http/handlers"
	"github.com/your-org/ecommerce-storefront/internal/interfaces/http/middleware"
	"github.com/your-org/ecommerce-storefront/internal/interfaces/http/views"
	"github.com/your-org/ecommerce-storefront/internal/pkg/logger"
)

const testVisitor = "5f1d7c2e-8b3a-4c6d-9e0f-a1b2c3d4e5f6"

var (
	alice = backend.User{ID: "u1", Name: "Alice", Email: "alice@example.com", Role: "user"}
	admin = backend.User{ID: "u2", Name: "Root", Email: "root@example.com", Role: "admin"}
)

type fakeInvoices struct{}

func (fakeInvoices) GenerateInvoice(order *backend.Order) (*bytes.Buffer, error) {
	return bytes.NewBufferString("%PDF-1.4 " + order.ID), nil
}

type app struct {
	t        *testing.T
	api      *backendtest.Server
	engine   *gin.Engine
	carts    *cart.Store
	sessions *session.Store
	bus      *events.Bus
}

func newApp(t *testing.T) *app {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logger.Discard()
	api := backendtest.New()
	t.Cleanup(api.Close)

	stock := 3
	api.Products = []backend.Product{
		{ID: "p1", Name: "Phone X", Category: backend.Ref{Name: "Mobile Phone"}, Price: decimal.NewFromInt(100), Discount: decimal.NewFromInt(10), Stock: &stock},
		{ID: "p2", Name: "Cable", Category: backend.Ref{Name: "Cables"}, Price: decimal.NewFromInt(5)},
	}
	api.AddUser("tok-alice", "secret", alice)
	api.AddUser("tok-root", "secret", admin)

	cfg := &config.Config{
		App:      config.AppConfig{Name: "Gadgets Mela", PublicURL: "http://shop.test"},
		Security: config.SecurityConfig{VisitorCookieTTL: time.Hour},
	}

	st := storage.NewMemory()
	bus := events.NewBus()
	client := api.BackendClient(log)
	carts := cart.NewStore(st, bus, log)
	sessions := session.NewStore(st, bus, log)

	engine := gin.New()
	engine.HTMLRender = views.MustNew()
	engine.Use(middleware.RequestID(), middleware.Visitor(cfg))
	SetupRoutes(engine, Dependencies{
		Config:    cfg,
		Backend:   client,
		Sessions:  sessions,
		Themes:    theme.NewStore(st, bus, log),
		Carts:     carts,
		Flashes:   handlers.NewFlashStore(st, log),
		Checkout:  checkout.NewService(carts, st, client, log),
		Analytics: analytics.NewService(client, log),
		Invoices:  fakeInvoices{},
		Bus:       bus,
		Logger:    log,
	})

	return &app{t: t, api: api, engine: engine, carts: carts, sessions: sessions, bus: bus}
}

func (a *app) request(method, path string, body *strings.Reader, contentType string, headers ...string) *httptest.ResponseRecorder {
	a.t.Helper()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, body)
		req.Header.Set("Content-Type", contentType)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	req.AddCookie(&http.Cookie{Name: middleware.VisitorCookie, Value: testVisitor})

	rec := httptest.NewRecorder()
	a.engine.ServeHTTP(rec, req)
	return rec
}

func (a *app) get(path string, headers ...string) *httptest.ResponseRecorder {
	return a.request(http.MethodGet, path, nil, "", headers...)
}

func (a *app) post(path string, form url.Values) *httptest.ResponseRecorder {
	return a.request(http.MethodPost, path, strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
}

func (a *app) postJSON(method, path, body string) *httptest.ResponseRecorder {
	return a.request(method, path, strings.NewReader(body), "application/json")
}

func (a *app) login(token string, user backend.User) {
	a.sessions.SetSession(context.Background(), testVisitor, token, session.UserSnapshot{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Role:  session.ParseRole(user.Role),
	})
}

func (a *app) cart() cart.Cart {
	return a.carts.Load(context.Background(), testVisitor)
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestCatalogPages(t *testing.T) {
	a := newApp(t)

	rec := a.get("/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Phone X")

	rec = a.get("/products/p1")
	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "/products/p1/phone-x", rec.Header().Get("Location"))

	rec = a.get("/products/p1/phone-x")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Phone X")

	rec = a.get("/products/missing/thing")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = a.get("/products?q=cable")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Cable")
	assert.NotContains(t, rec.Body.String(), "Phone X")
}

func TestAddToCartShowsFlashOnce(t *testing.T) {
	a := newApp(t)

	rec := a.post("/cart/items", url.Values{"productId": {"p1"}, "quantity": {"2"}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/cart", rec.Header().Get("Location"))
	assert.Equal(t, 2, a.cart().Count())

	rec = a.get("/cart")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), handlers.MessageAddedToCart)

	rec = a.get("/cart")
	assert.NotContains(t, rec.Body.String(), handlers.MessageAddedToCart)
}

func TestAddToCartIsNotCappedByStock(t *testing.T) {
	a := newApp(t)

	rec := a.post("/cart/items", url.Values{"productId": {"p1"}, "quantity": {"5"}, "next": {"/products/p1/phone-x"}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/products/p1/phone-x", rec.Header().Get("Location"))
	assert.Equal(t, 5, a.cart().Count())

	rec = a.get("/products/p1/phone-x")
	assert.Contains(t, rec.Body.String(), handlers.MessageAddedToCart)
}

func TestRepeatedAddsGoPastStock(t *testing.T) {
	a := newApp(t)

	for i := 0; i < 4; i++ {
		a.post("/cart/items", url.Values{"productId": {"p1"}})
	}
	assert.Equal(t, 4, a.cart().Count())

	rec := a.postJSON(http.MethodPost, "/api/cart/items", `{"productId":"p1","quantity":1}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, a.cart().Count())

	line, ok := a.cart().Find("p1")
	require.True(t, ok)
	assert.Equal(t, 5, line.Quantity)

	rec = a.postJSON(http.MethodPut, "/api/cart/items/p1", `{"quantity":6}`)
	assert.Equal(t, http.StatusConflict, rec.Code, "raising a quantity still checks stock")
}

func TestAddToCartRefusesSoldOutProduct(t *testing.T) {
	a := newApp(t)
	none := 0
	a.api.Products = append(a.api.Products, backend.Product{ID: "p3", Name: "Old Tablet", Price: decimal.NewFromInt(50), Stock: &none})

	rec := a.post("/cart/items", url.Values{"productId": {"p3"}, "next": {"/products"}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.True(t, a.cart().IsEmpty())

	rec = a.postJSON(http.MethodPost, "/api/cart/items", `{"productId":"p3"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Old Tablet is out of stock", decode(t, rec)["error"])
	assert.True(t, a.cart().IsEmpty())
}

func TestAddToCartRejectsOffsiteNext(t *testing.T) {
	a := newApp(t)

	rec := a.post("/cart/items", url.Values{"productId": {"p2"}, "next": {"//evil.example.com"}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/cart", rec.Header().Get("Location"))
}

func TestCartQuantityForm(t *testing.T) {
	a := newApp(t)
	a.post("/cart/items", url.Values{"productId": {"p1"}})

	a.post("/cart/items/p1/quantity", url.Values{"delta": {"1"}})
	assert.Equal(t, 2, a.cart().Count())

	rec := a.post("/cart/items/p1/quantity", url.Values{"quantity": {"9"}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, 2, a.cart().Count())

	a.post("/cart/items/p1/quantity", url.Values{"delta": {"-2"}})
	assert.True(t, a.cart().IsEmpty())
}

func TestCartAPI(t *testing.T) {
	a := newApp(t)

	rec := a.postJSON(http.MethodPost, "/api/cart/items", `{"productId":"p1","quantity":2}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = a.get("/api/cart/count")
	assert.Equal(t, float64(2), decode(t, rec)["count"])

	rec = a.postJSON(http.MethodPut, "/api/cart/items/p1", `{"quantity":10}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = a.postJSON(http.MethodPost, "/api/cart/items", `{"productId":"nope"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = a.postJSON(http.MethodPost, "/api/cart/items", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.request(http.MethodDelete, "/api/cart", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, a.cart().IsEmpty())
}

func TestLoginAndLogout(t *testing.T) {
	a := newApp(t)

	rec := a.post("/login", url.Values{"email": {"alice@example.com"}, "password": {"wrong"}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid email or password")

	rec = a.post("/login", url.Values{"email": {"alice@example.com"}, "password": {"secret"}, "next": {"/checkout"}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/checkout", rec.Header().Get("Location"))

	token, ok := a.sessions.GetToken(context.Background(), testVisitor)
	require.True(t, ok)
	assert.Equal(t, "tok-alice", token)

	body := decode(t, a.get("/api/session"))
	user, ok := body["user"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Alice", user["name"])

	rec = a.post("/logout", nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	_, ok = a.sessions.GetToken(context.Background(), testVisitor)
	assert.False(t, ok)

	body = decode(t, a.get("/api/session"))
	assert.Nil(t, body["user"])
}

func TestRegisterSendsToLogin(t *testing.T) {
	a := newApp(t)

	rec := a.post("/register", url.Values{"name": {"Bob"}, "email": {"bob@example.com"}, "password": {"pw"}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	rec = a.post("/register", url.Values{"name": {"Bob"}, "email": {"bob@example.com"}, "password": {"pw"}})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "User already exists")
}

func TestCheckoutRequiresSession(t *testing.T) {
	a := newApp(t)

	rec := a.get("/checkout")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login?next=%2Fcheckout", rec.Header().Get("Location"))

	rec = a.get("/api/admin/stats")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func checkoutForm(payment string) url.Values {
	return url.Values{
		"name":       {"Alice"},
		"phone":      {"555-0100"},
		"address":    {"1 Main St"},
		"city":       {"Springfield"},
		"postalCode": {"12345"},
		"country":    {"US"},
		"payment":    {payment},
	}
}

func TestCheckoutCashOnDelivery(t *testing.T) {
	a := newApp(t)
	a.login("tok-alice", alice)
	a.post("/cart/items", url.Values{"productId": {"p1"}, "quantity": {"2"}})

	rec := a.get("/checkout")
	assert.Equal(t, http.StatusOK, rec.Code)

	form := checkoutForm("COD")
	form.Del("phone")
	rec = a.post("/checkout", form)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "Phone number is required")
	assert.Empty(t, a.api.PlacedOrders())

	rec = a.post("/checkout", checkoutForm("COD"))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/user/orders/order000001", rec.Header().Get("Location"))

	placed := a.api.PlacedOrders()
	require.Len(t, placed, 1)
	assert.Equal(t, "COD", placed[0].PaymentID)
	assert.True(t, decimal.NewFromInt(180).Equal(placed[0].Total))
	assert.True(t, a.cart().IsEmpty())

	rec = a.get("/user/orders/order000001")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Order placed successfully!")

	rec = a.get("/user/orders/order000001/invoice")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "invoice-000001.pdf")

	rec = a.get("/user/orders/unknown")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCheckoutEmptyCartGoesBack(t *testing.T) {
	a := newApp(t)
	a.login("tok-alice", alice)

	rec := a.get("/checkout")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/cart", rec.Header().Get("Location"))
}

func TestCheckoutStripeRoundTrip(t *testing.T) {
	a := newApp(t)
	a.login("tok-alice", alice)
	a.post("/cart/items", url.Values{"productId": {"p2"}, "quantity": {"3"}})

	rec := a.post("/checkout", checkoutForm("STRIPE"))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "https://pay.example.com/cs_test_1", rec.Header().Get("Location"))

	sessions := a.api.CheckoutSessions()
	require.Len(t, sessions, 1)
	assert.Equal(t, "http://shop.test/checkout/success?session_id={CHECKOUT_SESSION_ID}", sessions[0].SuccessURL)
	assert.Equal(t, "http://shop.test/checkout/cancel", sessions[0].CancelURL)
	assert.Empty(t, a.api.PlacedOrders())
	assert.Equal(t, 3, a.cart().Count())

	rec = a.get("/checkout/success?session_id=cs_test_1")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), checkout.MessageOrderPlaced)

	placed := a.api.PlacedOrders()
	require.Len(t, placed, 1)
	assert.Equal(t, "cs_test_1", placed[0].PaymentID)
	assert.Equal(t, "Springfield", placed[0].ShippingAddress.City)
	assert.True(t, a.cart().IsEmpty())

	rec = a.get("/checkout/success?session_id=cs_test_1")
	assert.Contains(t, rec.Body.String(), checkout.MessageNoItems)
	assert.Len(t, a.api.PlacedOrders(), 1)
}

func TestCheckoutRejectedTokenClearsSession(t *testing.T) {
	a := newApp(t)
	a.login("tok-stale", alice)

	rec := a.get("/user/dashboard")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login?next=%2Fuser%2Fdashboard", rec.Header().Get("Location"))

	_, ok := a.sessions.GetToken(context.Background(), testVisitor)
	assert.False(t, ok)
}

func TestThemeToggle(t *testing.T) {
	a := newApp(t)

	rec := a.request(http.MethodPost, "/api/theme/toggle", nil, "", theme.ClientHintHeader, "dark")
	assert.Equal(t, "light", decode(t, rec)["theme"])

	rec = a.request(http.MethodPost, "/api/theme/toggle", nil, "", theme.ClientHintHeader, "dark")
	assert.Equal(t, "dark", decode(t, rec)["theme"])

	rec = a.post("/theme/toggle", url.Values{"next": {"/cart"}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/cart", rec.Header().Get("Location"))
	assert.Equal(t, "light", decode(t, a.get("/api/session"))["theme"])
}

func TestAdminConsole(t *testing.T) {
	a := newApp(t)

	a.login("tok-alice", alice)
	rec := a.get("/admin/dashboard")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	rec = a.get("/api/admin/stats")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	a.login("tok-root", admin)
	rec = a.get("/admin/dashboard")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Admin Dashboard")

	rec = a.get("/api/admin/stats")
	require.Equal(t, http.StatusOK, rec.Code)
	data, ok := decode(t, rec)["data"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(2), data["total_products"])

	for _, path := range []string{"/admin/products", "/admin/products?edit=p1", "/admin/orders", "/admin/users", "/admin/categories"} {
		assert.Equal(t, http.StatusOK, a.get(path).Code, path)
	}
}

func TestAdminOrderStatus(t *testing.T) {
	a := newApp(t)
	a.login("tok-root", admin)

	rec := a.post("/admin/orders/o1/status", url.Values{"status": {"teleported"}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Empty(t, a.api.StatusUpdate("o1"))

	rec = a.post("/admin/orders/o1/status", url.Values{"status": {"shipped"}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/orders", rec.Header().Get("Location"))
	assert.Equal(t, "shipped", a.api.StatusUpdate("o1"))
}

func TestAdminProductForm(t *testing.T) {
	a := newApp(t)
	a.login("tok-root", admin)

	rec := a.post("/admin/products", url.Values{"name": {"Tablet"}, "category": {"Tablet"}, "price": {"abc"}})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "Price must be a non-negative number")

	rec = a.post("/admin/products", url.Values{"name": {"Tablet"}, "category": {"Tablet"}, "price": {"250.00"}, "discount": {"5"}, "stock": {"4"}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/products", rec.Header().Get("Location"))

	rec = a.get("/products?q=tablet")
	assert.Contains(t, rec.Body.String(), "Tablet")
}

func TestNotFound(t *testing.T) {
	a := newApp(t)

	rec := a.get("/nowhere")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = a.get("/api/nowhere")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Not found", decode(t, rec)["error"])
}

func TestEventStreamDeliversCartUpdates(t *testing.T) {
	a := newApp(t)
	srv := httptest.NewServer(a.engine)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/events", nil)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: middleware.VisitorCookie, Value: testVisitor})

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	lines := bufio.NewScanner(resp.Body)
	waitFor := func(event string) {
		t.Helper()
		for lines.Scan() {
			if lines.Text() == "event:"+event {
				return
			}
		}
		t.Fatalf("stream ended before %s", event)
	}

	waitFor("ready")
	a.carts.Add(context.Background(), testVisitor, cart.ProductSnapshot{ProductID: "p2", Name: "Cable", Price: decimal.NewFromInt(5)}, 1)
	waitFor(string(events.TopicCartUpdated))

	cancel()
	assert.Eventually(t, func() bool {
		return a.bus.Subscribers(testVisitor) == 0
	}, 2*time.Second, 10*time.Millisecond)
}
