// internal/interfaces/http/handlers/user_profile.go
package handlers

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"
	"github.com/your-org/ecommerce-storefront/internal/infrastructure/backend"
	"github.com/your-org/ecommerce-storefront/internal/interfaces/http/middleware"
)

// DashboardData is rendered by the user dashboard
type DashboardData struct {
	User   *backend.User
	Orders []backend.Order
}

// UserProfileHandler handles the signed-in user's dashboard
type UserProfileHandler struct {
	*Base
	api *backend.Client
}

// NewUserProfileHandler creates a new user profile handler
func NewUserProfileHandler(base *Base, api *backend.Client) *UserProfileHandler {
	return &UserProfileHandler{Base: base, api: api}
}

// Dashboard handles GET /user/dashboard
func (h *UserProfileHandler) Dashboard(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	data := DashboardData{User: user}

	orders, err := h.api.MyOrders(c.Request.Context(), middleware.SessionToken(c))
	if err != nil {
		h.log(c, "user").WithError(err).Warn("Failed to load orders")
		h.renderWithError(c, http.StatusOK, "user_dashboard", "My Dashboard", "Failed to load your orders", data)
		return
	}

	sortOrdersNewestFirst(orders)
	data.Orders = orders

	h.render(c, http.StatusOK, "user_dashboard", "My Dashboard", data)
}

func sortOrdersNewestFirst(orders []backend.Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
}
