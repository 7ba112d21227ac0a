// Package backendtest runs an in-process stand-in for the REST API so
// storefront code can be tested against real HTTP round trips.
package backendtest

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/your-org/ecommerce-storefront/internal/config"
	"github.com/your-org/ecommerce-storefront/internal/infrastructure/backend"
)

const userKey = "backendtest_user"

// Server is a fake backend. Tokens map to users; every other collection is
// a plain slice the test can seed before making calls.
type Server struct {
	*httptest.Server

	mu            sync.Mutex
	Products      []backend.Product
	Categories    []backend.Category
	SubCategories []backend.SubCategory
	Users         map[string]backend.User
	Passwords     map[string]string
	Orders        []backend.Order
	Reviews       map[string][]backend.Review
	Placed        []backend.OrderRequest
	Sessions      []backend.CheckoutSessionRequest
	StatusUpdates map[string]string
	Promoted      []string

	// Fail forces "METHOD /path" to answer with the given status
	Fail map[string]int
	// Down makes every request fail at the transport level
	Down bool
}

// New starts a fake backend; call Close when done
func New() *Server {
	s := &Server{
		Users:         make(map[string]backend.User),
		Passwords:     make(map[string]string),
		Reviews:       make(map[string][]backend.Review),
		StatusUpdates: make(map[string]string),
		Fail:          make(map[string]int),
	}
	s.Server = httptest.NewServer(s.router())
	return s
}

func (s *Server) router() *gin.Engine {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(s.lock(), s.down(), s.forced())
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Not found"})
	})

	r.GET("/products", s.listProducts)
	r.GET("/products/:id", s.getProduct)
	r.POST("/products", s.requireAdmin(), s.createProduct)
	r.PUT("/products/:id", s.requireAdmin(), s.updateProduct)
	r.DELETE("/products/:id", s.requireAdmin(), s.deleteProduct)

	r.GET("/categories", func(c *gin.Context) { c.JSON(http.StatusOK, s.Categories) })
	r.POST("/categories", s.requireAdmin(), s.createCategory)
	r.DELETE("/categories/:id", s.requireAdmin(), noContent)
	r.GET("/subcategories", func(c *gin.Context) { c.JSON(http.StatusOK, s.SubCategories) })
	r.POST("/subcategories", s.requireAdmin(), s.createSubCategory)
	r.DELETE("/subcategories/:id", s.requireAdmin(), noContent)

	users := r.Group("/users")
	{
		users.POST("/login", s.login)
		users.POST("/register", s.register)
		users.GET("/me", s.requireUser(), func(c *gin.Context) { c.JSON(http.StatusOK, currentUser(c)) })
		users.GET("", s.requireAdmin(), s.listUsers)
		users.POST("/promote", s.requireAdmin(), s.promote)
	}

	orders := r.Group("/orders")
	orders.Use(s.requireUser())
	{
		orders.POST("", s.placeOrder)
		orders.GET("", adminOnly, func(c *gin.Context) { c.JSON(http.StatusOK, s.Orders) })
		orders.GET("/mine", s.myOrders)
		orders.GET("/can-review/:id", s.canReview)
		orders.GET("/:id", s.getOrder)
		orders.PUT("/:id/status", adminOnly, s.updateStatus)
	}

	r.GET("/reviews/product/:id", func(c *gin.Context) { c.JSON(http.StatusOK, s.Reviews[c.Param("id")]) })
	r.POST("/reviews", s.requireUser(), created)
	r.POST("/reviews/:id/reply", s.requireAdmin(), created)

	r.POST("/payments/checkout-session", s.checkoutSession)
	return r
}

// BackendClient returns a backend client pointed at this server
func (s *Server) BackendClient(logger *logrus.Logger) *backend.Client {
	return backend.NewClient(config.BackendConfig{
		BaseURL: s.URL,
		Timeout: 5 * time.Second,
	}, logger)
}

// AddUser registers a user reachable with token and, for login, password
func (s *Server) AddUser(token, password string, user backend.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Users[token] = user
	s.Passwords[user.Email] = password
}

// PlacedOrders returns a copy of every POST /orders body received
func (s *Server) PlacedOrders() []backend.OrderRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]backend.OrderRequest, len(s.Placed))
	copy(out, s.Placed)
	return out
}

// CheckoutSessions returns a copy of every payment session request received
func (s *Server) CheckoutSessions() []backend.CheckoutSessionRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]backend.CheckoutSessionRequest, len(s.Sessions))
	copy(out, s.Sessions)
	return out
}

// StatusUpdate returns the last status PUT for an order id
func (s *Server) StatusUpdate(orderID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.StatusUpdates[orderID]
}

// SetFail forces route ("METHOD /path") to answer with status; 0 clears it
func (s *Server) SetFail(route string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status == 0 {
		delete(s.Fail, route)
		return
	}
	s.Fail[route] = status
}

// SetDown toggles transport-level failure
func (s *Server) SetDown(down bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Down = down
}

// lock serializes requests so handlers can touch the seeded slices freely
func (s *Server) lock() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.mu.Lock()
		defer s.mu.Unlock()
		c.Next()
	}
}

func (s *Server) down() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.Down {
			c.Next()
			return
		}
		if conn, _, err := c.Writer.Hijack(); err == nil {
			conn.Close()
			c.Abort()
			return
		}
		c.AbortWithStatus(http.StatusBadGateway)
	}
}

func (s *Server) forced() gin.HandlerFunc {
	return func(c *gin.Context) {
		if status, ok := s.Fail[c.Request.Method+" "+c.Request.URL.Path]; ok {
			c.AbortWithStatusJSON(status, gin.H{"message": fmt.Sprintf("forced %d", status)})
			return
		}
		c.Next()
	}
}

func (s *Server) requireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.authenticate(c) {
			c.Next()
		}
	}
}

func (s *Server) requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.authenticate(c) {
			adminOnly(c)
		}
	}
}

// authenticate resolves the bearer token or aborts with 401
func (s *Server) authenticate(c *gin.Context) bool {
	token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	user, ok := s.Users[token]
	if token == "" || !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Not authorized"})
		return false
	}
	c.Set(userKey, user)
	return true
}

func adminOnly(c *gin.Context) {
	if currentUser(c).Role != "admin" {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Admin only"})
	}
}

func currentUser(c *gin.Context) backend.User {
	user, _ := c.MustGet(userKey).(backend.User)
	return user
}

func noContent(c *gin.Context) { c.Status(http.StatusNoContent) }

func created(c *gin.Context) { c.JSON(http.StatusCreated, gin.H{"message": "ok"}) }

func (s *Server) listProducts(c *gin.Context) {
	category := c.Query("category")
	sub := c.Query("sub")
	q := strings.ToLower(c.Query("q"))

	out := make([]backend.Product, 0, len(s.Products))
	for _, p := range s.Products {
		if category != "" && p.Category.Label() != category {
			continue
		}
		if sub != "" && p.SubCategory.Label() != sub {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(p.Name), q) {
			continue
		}
		out = append(out, p)
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) getProduct(c *gin.Context) {
	for _, p := range s.Products {
		if p.ID == c.Param("id") {
			c.JSON(http.StatusOK, p)
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"message": "Product not found"})
}

func bindProduct(c *gin.Context) (backend.Product, bool) {
	var in backend.ProductInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "bad product"})
		return backend.Product{}, false
	}
	stock := in.Stock
	return backend.Product{
		Name:        in.Name,
		Description: in.Description,
		Category:    backend.Ref{Name: in.Category},
		SubCategory: backend.Ref{Name: in.SubCategory},
		Price:       in.Price,
		Discount:    in.Discount,
		ImageURL:    in.ImageURL,
		Stock:       &stock,
	}, true
}

func (s *Server) createProduct(c *gin.Context) {
	product, ok := bindProduct(c)
	if !ok {
		return
	}
	product.ID = fmt.Sprintf("p%d", len(s.Products)+1)
	s.Products = append(s.Products, product)
	c.JSON(http.StatusCreated, product)
}

func (s *Server) updateProduct(c *gin.Context) {
	product, ok := bindProduct(c)
	if !ok {
		return
	}
	for i := range s.Products {
		if s.Products[i].ID == c.Param("id") {
			product.ID = c.Param("id")
			s.Products[i] = product
			c.JSON(http.StatusOK, product)
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"message": "Product not found"})
}

func (s *Server) deleteProduct(c *gin.Context) {
	for i, p := range s.Products {
		if p.ID == c.Param("id") {
			s.Products = append(s.Products[:i], s.Products[i+1:]...)
			break
		}
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

func (s *Server) nextCategoryID() string {
	return fmt.Sprintf("c%d", len(s.Categories)+len(s.SubCategories)+1)
}

func (s *Server) createCategory(c *gin.Context) {
	var in backend.CategoryInput
	_ = c.ShouldBindJSON(&in)
	id := s.nextCategoryID()
	s.Categories = append(s.Categories, backend.Category{ID: id, Name: in.Name, Description: in.Description})
	c.JSON(http.StatusCreated, gin.H{"_id": id})
}

func (s *Server) createSubCategory(c *gin.Context) {
	var in backend.CategoryInput
	_ = c.ShouldBindJSON(&in)
	id := s.nextCategoryID()
	s.SubCategories = append(s.SubCategories, backend.SubCategory{ID: id, Name: in.Name, Category: backend.Ref{ID: in.CategoryID}})
	c.JSON(http.StatusCreated, gin.H{"_id": id})
}

func (s *Server) login(c *gin.Context) {
	var creds backend.Credentials
	_ = c.ShouldBindJSON(&creds)
	for token, u := range s.Users {
		if u.Email == creds.Email && s.Passwords[u.Email] == creds.Password {
			c.JSON(http.StatusOK, backend.AuthResult{Token: token, User: u})
			return
		}
	}
	c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid email or password"})
}

func (s *Server) register(c *gin.Context) {
	var reg backend.Registration
	_ = c.ShouldBindJSON(&reg)
	for _, u := range s.Users {
		if u.Email == reg.Email {
			c.JSON(http.StatusBadRequest, gin.H{"message": "User already exists"})
			return
		}
	}
	user := backend.User{ID: fmt.Sprintf("u%d", len(s.Users)+1), Name: reg.Name, Email: reg.Email, Role: "user"}
	token := uuid.NewString()
	s.Users[token] = user
	s.Passwords[user.Email] = reg.Password
	c.JSON(http.StatusCreated, backend.AuthResult{Token: token, User: user})
}

func (s *Server) listUsers(c *gin.Context) {
	users := make([]backend.User, 0, len(s.Users))
	for _, u := range s.Users {
		users = append(users, u)
	}
	c.JSON(http.StatusOK, users)
}

func (s *Server) promote(c *gin.Context) {
	var body struct {
		UserID string `json:"userId"`
	}
	_ = c.ShouldBindJSON(&body)
	s.Promoted = append(s.Promoted, body.UserID)
	c.JSON(http.StatusOK, gin.H{"message": "promoted"})
}

func (s *Server) placeOrder(c *gin.Context) {
	user := currentUser(c)

	var req backend.OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "bad order"})
		return
	}
	s.Placed = append(s.Placed, req)

	order := backend.Order{
		ID:              fmt.Sprintf("order%06d", len(s.Orders)+1),
		User:            backend.Ref{ID: user.ID, Name: user.Name, Email: user.Email},
		Total:           req.Total,
		PaymentID:       req.PaymentID,
		Status:          backend.OrderStatusPending,
		ShippingAddress: req.ShippingAddress,
		CreatedAt:       time.Now().UTC(),
	}
	for _, item := range req.Products {
		order.Products = append(order.Products, backend.OrderLine{Product: backend.Ref{ID: item.Product}, Quantity: item.Quantity})
	}
	s.Orders = append(s.Orders, order)
	c.JSON(http.StatusCreated, order)
}

func (s *Server) myOrders(c *gin.Context) {
	user := currentUser(c)
	mine := []backend.Order{}
	for _, o := range s.Orders {
		if o.User.ID == user.ID {
			mine = append(mine, o)
		}
	}
	c.JSON(http.StatusOK, mine)
}

func (s *Server) canReview(c *gin.Context) {
	user := currentUser(c)
	for _, o := range s.Orders {
		if o.User.ID != user.ID || o.Status != backend.OrderStatusDelivered {
			continue
		}
		for _, l := range o.Products {
			if l.Product.ID == c.Param("id") {
				c.JSON(http.StatusOK, backend.ReviewEligibility{CanReview: true, OrderID: o.ID})
				return
			}
		}
	}
	c.JSON(http.StatusOK, backend.ReviewEligibility{})
}

func (s *Server) getOrder(c *gin.Context) {
	user := currentUser(c)
	for _, o := range s.Orders {
		if o.ID == c.Param("id") && (o.User.ID == user.ID || user.Role == "admin") {
			c.JSON(http.StatusOK, o)
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"message": "Order not found"})
}

func (s *Server) updateStatus(c *gin.Context) {
	var body struct {
		Status string `json:"status"`
	}
	_ = c.ShouldBindJSON(&body)

	id := c.Param("id")
	s.StatusUpdates[id] = body.Status
	for i := range s.Orders {
		if s.Orders[i].ID == id {
			s.Orders[i].Status = body.Status
		}
	}
	c.JSON(http.StatusOK, gin.H{"message": "updated"})
}

func (s *Server) checkoutSession(c *gin.Context) {
	var req backend.CheckoutSessionRequest
	_ = c.ShouldBindJSON(&req)
	s.Sessions = append(s.Sessions, req)
	c.JSON(http.StatusOK, backend.CheckoutSession{ID: "cs_test_1", URL: "https://pay.example.com/cs_test_1"})
}
