// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/ecommerce-storefront/internal/config"
	"github.com/your-org/ecommerce-storefront/internal/domain/analytics"
	"github.com/your-org/ecommerce-storefront/internal/domain/cart"
	"github.com/your-org/ecommerce-storefront/internal/domain/checkout"
	"github.com/your-org/ecommerce-storefront/internal/domain/events"
	"github.com/your-org/ecommerce-storefront/internal/domain/session"
	"github.com/your-org/ecommerce-storefront/internal/domain/theme"
	"github.com/your-org/ecommerce-storefront/internal/infrastructure/backend"
	"github.com/your-org/ecommerce-storefront/internal/interfaces/http/handlers"
	"github.com/your-org/ecommerce-storefront/internal/interfaces/http/middleware"
	"github.com/your-org/ecommerce-storefront/internal/interfaces/http/views"
)

// Dependencies is everything the route table needs to build its handlers
type Dependencies struct {
	Config    *config.Config
	Backend   *backend.Client
	Sessions  *session.Store
	Themes    *theme.Store
	Carts     *cart.Store
	Flashes   *handlers.FlashStore
	Checkout  *checkout.Service
	Analytics *analytics.Service
	Invoices  handlers.InvoiceGenerator
	Bus       *events.Bus
	Logger    *logrus.Logger
}

// SetupRoutes registers every page, form action and API endpoint
func SetupRoutes(r *gin.Engine, deps Dependencies) {
	base := handlers.NewBase(deps.Config, deps.Sessions, deps.Themes, deps.Carts, deps.Flashes, deps.Logger)
	guard := middleware.NewGuard(deps.Sessions, deps.Backend, base.Fail, deps.Logger)

	r.StaticFS("/static", views.Static())
	r.NoRoute(base.NotFound)

	SetupStorefrontRoutes(r, base, guard, deps)
	SetupAuthRoutes(r, base, deps)
	SetupCheckoutRoutes(r, base, guard, deps)
	SetupUserRoutes(r, base, guard, deps)
	SetupAdminRoutes(r, base, guard, deps)
	SetupAPIRoutes(r, base, guard, deps)

	r.GET("/events", handlers.NewEventsHandler(deps.Bus, deps.Logger).Stream)
}

// SetupStorefrontRoutes sets up the public catalog, cart and theme routes
func SetupStorefrontRoutes(r *gin.Engine, base *handlers.Base, guard *middleware.Guard, deps Dependencies) {
	productHandler := handlers.NewProductHandler(base, deps.Backend)
	reviewHandler := handlers.NewReviewHandler(base, deps.Backend)
	cartHandler := handlers.NewCartHandler(base, deps.Backend)
	themeHandler := handlers.NewThemeHandler(base)

	r.GET("/", productHandler.Home)

	products := r.Group("/products")
	{
		products.GET("", productHandler.List)
		products.GET("/:id", productHandler.Detail)
		products.GET("/:id/:slug", productHandler.Detail)

		products.POST("/:id/reviews", guard.RequireSession(), reviewHandler.Create)
		products.POST("/:id/reviews/:reviewId/reply", guard.RequireAdmin(), reviewHandler.Reply)
	}

	cartRoutes := r.Group("/cart")
	{
		cartRoutes.GET("", cartHandler.Page)
		cartRoutes.POST("/items", cartHandler.AddForm)
		cartRoutes.POST("/items/:id/quantity", cartHandler.UpdateForm)
		cartRoutes.POST("/items/:id/remove", cartHandler.RemoveForm)
		cartRoutes.POST("/clear", cartHandler.ClearForm)
	}

	r.POST("/theme/toggle", themeHandler.ToggleForm)
}

// SetupAuthRoutes sets up login, registration and logout
func SetupAuthRoutes(r *gin.Engine, base *handlers.Base, deps Dependencies) {
	authHandler := handlers.NewAuthHandler(base, deps.Backend)

	r.GET("/login", authHandler.LoginPage)
	r.POST("/login", authHandler.Login)
	r.GET("/register", authHandler.RegisterPage)
	r.POST("/register", authHandler.Register)
	r.POST("/logout", authHandler.Logout)
}

// SetupCheckoutRoutes sets up checkout and the payment provider's return pages.
// The return pages are not guarded: completion decides what to do without a
// session.
func SetupCheckoutRoutes(r *gin.Engine, base *handlers.Base, guard *middleware.Guard, deps Dependencies) {
	checkoutHandler := handlers.NewCheckoutHandler(base, deps.Checkout)
	paymentHandler := handlers.NewPaymentHandler(base, deps.Checkout)

	checkoutRoutes := r.Group("/checkout")
	{
		checkoutRoutes.GET("/success", paymentHandler.Success)
		checkoutRoutes.GET("/cancel", paymentHandler.Cancel)

		protected := checkoutRoutes.Group("")
		protected.Use(guard.RequireSession())
		{
			protected.GET("", checkoutHandler.Page)
			protected.POST("", checkoutHandler.Submit)
		}
	}
}

// SetupUserRoutes sets up the signed-in user's pages
func SetupUserRoutes(r *gin.Engine, base *handlers.Base, guard *middleware.Guard, deps Dependencies) {
	profileHandler := handlers.NewUserProfileHandler(base, deps.Backend)
	orderHandler := handlers.NewOrderHandler(base, deps.Backend)
	invoiceHandler := handlers.NewInvoiceHandler(orderHandler, deps.Invoices)

	users := r.Group("/user")
	users.Use(guard.RequireSession())
	{
		users.GET("/dashboard", profileHandler.Dashboard)
		users.GET("/orders/:id", orderHandler.Detail)
		users.GET("/orders/:id/invoice", invoiceHandler.Download)
	}
}

// SetupAdminRoutes sets up the admin console
func SetupAdminRoutes(r *gin.Engine, base *handlers.Base, guard *middleware.Guard, deps Dependencies) {
	analyticsHandler := handlers.NewAnalyticsHandler(base, deps.Analytics)
	productHandler := handlers.NewAdminProductHandler(base, deps.Backend)
	categoryHandler := handlers.NewCategoryHandler(base, deps.Backend)
	orderHandler := handlers.NewOrderHandler(base, deps.Backend)
	userHandler := handlers.NewUserAdminHandler(base, deps.Backend)

	admin := r.Group("/admin")
	admin.Use(guard.RequireAdmin())
	{
		admin.GET("/dashboard", analyticsHandler.Dashboard)

		admin.GET("/products", productHandler.List)
		admin.POST("/products", productHandler.Create)
		admin.POST("/products/:id", productHandler.Update)
		admin.POST("/products/:id/delete", productHandler.Delete)

		admin.GET("/categories", categoryHandler.List)
		admin.POST("/categories", categoryHandler.CreateCategory)
		admin.POST("/categories/:id/delete", categoryHandler.DeleteCategory)
		admin.POST("/subcategories", categoryHandler.CreateSubCategory)
		admin.POST("/subcategories/:id/delete", categoryHandler.DeleteSubCategory)

		admin.GET("/orders", orderHandler.AdminList)
		admin.POST("/orders/:id/status", orderHandler.UpdateStatus)

		admin.GET("/users", userHandler.List)
		admin.POST("/users/:id/promote", userHandler.Promote)
	}
}

// SetupAPIRoutes sets up the JSON endpoints the browser script polls after
// a change event
func SetupAPIRoutes(r *gin.Engine, base *handlers.Base, guard *middleware.Guard, deps Dependencies) {
	cartHandler := handlers.NewCartHandler(base, deps.Backend)
	themeHandler := handlers.NewThemeHandler(base)
	authHandler := handlers.NewAuthHandler(base, deps.Backend)
	analyticsHandler := handlers.NewAnalyticsHandler(base, deps.Analytics)

	api := r.Group("/api")
	{
		api.GET("/session", authHandler.Session)
		api.POST("/theme/toggle", themeHandler.Toggle)

		cartAPI := api.Group("/cart")
		{
			cartAPI.GET("", cartHandler.Get)
			cartAPI.GET("/count", cartHandler.Count)
			cartAPI.POST("/items", cartHandler.Add)
			cartAPI.PUT("/items/:id", cartHandler.Update)
			cartAPI.DELETE("/items/:id", cartHandler.Remove)
			cartAPI.DELETE("", cartHandler.Clear)
		}

		admin := api.Group("/admin")
		admin.Use(guard.RequireAdmin())
		{
			admin.GET("/stats", analyticsHandler.GetDashboard)
		}
	}
}
