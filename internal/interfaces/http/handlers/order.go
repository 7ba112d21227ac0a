// internal/interfaces/http/handlers/order.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/ecommerce-storefront/internal/infrastructure/backend"
	"github.com/your-org/ecommerce-storefront/internal/interfaces/http/middleware"
	"github.com/your-org/ecommerce-storefront/internal/interfaces/http/views"
)

// OrderData is rendered by the order detail page
type OrderData struct {
	Order *backend.Order
}

// AdminOrdersData is rendered by the admin order list
type AdminOrdersData struct {
	Orders   []backend.Order
	Statuses []string
}

// OrderHandler handles order pages for customers and admins
type OrderHandler struct {
	*Base
	api *backend.Client
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(base *Base, api *backend.Client) *OrderHandler {
	return &OrderHandler{Base: base, api: api}
}

// Detail handles GET /user/orders/:id
func (h *OrderHandler) Detail(c *gin.Context) {
	order, ok := h.load(c)
	if !ok {
		return
	}
	h.render(c, http.StatusOK, "user_order", "Order #"+order.ShortID(), OrderData{Order: order})
}

// AdminList handles GET /admin/orders
func (h *OrderHandler) AdminList(c *gin.Context) {
	data := AdminOrdersData{Statuses: backend.OrderStatuses}

	orders, err := h.api.ListOrders(c.Request.Context(), middleware.SessionToken(c))
	if err != nil {
		h.log(c, "admin").WithError(err).Warn("Failed to load orders")
		h.renderWithError(c, http.StatusOK, "admin_orders", "Orders", "Failed to load orders", data)
		return
	}

	sortOrdersNewestFirst(orders)
	data.Orders = orders
	h.render(c, http.StatusOK, "admin_orders", "Orders", data)
}

// UpdateStatus handles POST /admin/orders/:id/status
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	status := c.PostForm("status")
	if !validStatus(status) {
		h.redirect(c, "/admin/orders", views.FlashError, "Invalid order status")
		return
	}

	id := c.Param("id")
	if err := h.api.UpdateOrderStatus(c.Request.Context(), middleware.SessionToken(c), id, status); err != nil {
		h.log(c, "admin").WithError(err).WithField("order_id", id).Warn("Failed to update order status")
		h.redirect(c, "/admin/orders", views.FlashError, backend.Message(err, "Failed to update order status"))
		return
	}

	h.redirect(c, "/admin/orders", views.FlashSuccess, "Order status updated")
}

// load fetches the order named by :id, rendering the not-found or error
// page itself when it cannot
func (h *OrderHandler) load(c *gin.Context) (*backend.Order, bool) {
	order, err := h.api.GetOrder(c.Request.Context(), middleware.SessionToken(c), c.Param("id"))
	if err != nil {
		if backend.IsNotFound(err) {
			h.NotFound(c)
			return nil, false
		}
		h.log(c, "order").WithError(err).Warn("Failed to load order")
		h.Fail(c, http.StatusBadGateway, "Failed to load order")
		return nil, false
	}
	return order, true
}

func validStatus(status string) bool {
	for _, s := range backend.OrderStatuses {
		if s == status {
			return true
		}
	}
	return false
}
