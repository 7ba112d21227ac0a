// internal/interfaces/http/handlers/checkout.go
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/your-org/ecommerce-storefront/internal/domain/checkout"
	"github.com/your-org/ecommerce-storefront/internal/infrastructure/backend"
	"github.com/your-org/ecommerce-storefront/internal/interfaces/http/middleware"
	"github.com/your-org/ecommerce-storefront/internal/interfaces/http/views"
)

// CheckoutData is rendered by the checkout page
type CheckoutData struct {
	Summary        checkout.Summary
	Address        backend.ShippingAddress
	PaymentMethods []checkout.PaymentMethod
	Selected       string
	Errors         []string
}

// CheckoutHandler handles the guarded checkout form
type CheckoutHandler struct {
	*Base
	checkout *checkout.Service
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(base *Base, service *checkout.Service) *CheckoutHandler {
	return &CheckoutHandler{Base: base, checkout: service}
}

// Page handles GET /checkout. The address form starts with the validated
// user's name.
func (h *CheckoutHandler) Page(c *gin.Context) {
	summary := h.checkout.GetSummary(c.Request.Context(), middleware.VisitorID(c))
	if summary.Items.IsEmpty() {
		h.redirect(c, "/cart", views.FlashInfo, "Your cart is empty")
		return
	}

	data := CheckoutData{
		Summary:        summary,
		PaymentMethods: checkout.PaymentMethods(),
		Selected:       checkout.PaymentCOD,
	}
	if user, ok := middleware.CurrentUser(c); ok {
		data.Address.Name = user.Name
	}

	h.render(c, http.StatusOK, "checkout", "Checkout", data)
}

// Submit handles POST /checkout: cash on delivery places the order now,
// Stripe redirects to the hosted payment page
func (h *CheckoutHandler) Submit(c *gin.Context) {
	ctx := c.Request.Context()
	visitor := middleware.VisitorID(c)

	data := CheckoutData{
		Summary:        h.checkout.GetSummary(ctx, visitor),
		Address:        addressFromForm(c),
		PaymentMethods: checkout.PaymentMethods(),
		Selected:       checkout.ParsePaymentMethod(c.PostForm("payment")),
	}
	if data.Summary.Items.IsEmpty() {
		h.redirect(c, "/cart", views.FlashInfo, "Your cart is empty")
		return
	}

	if data.Errors = checkout.ValidateAddress(data.Address); len(data.Errors) > 0 {
		h.render(c, http.StatusUnprocessableEntity, "checkout", "Checkout", data)
		return
	}

	if data.Selected == checkout.PaymentStripe {
		base := strings.TrimRight(h.config.App.PublicURL, "/")
		url, err := h.checkout.StartStripe(ctx, visitor, data.Address,
			base+"/checkout/success?session_id={CHECKOUT_SESSION_ID}",
			base+"/checkout/cancel")
		if err != nil {
			h.fail(c, data, err, "Failed to start payment")
			return
		}
		c.Redirect(http.StatusSeeOther, url)
		return
	}

	order, err := h.checkout.PlaceOrder(ctx, visitor, middleware.SessionToken(c), data.Address, checkout.PaymentCOD)
	if err != nil {
		h.fail(c, data, err, "Failed to place order")
		return
	}

	h.redirect(c, "/user/orders/"+order.ID, views.FlashSuccess, "Order placed successfully!")
}

func (h *CheckoutHandler) fail(c *gin.Context, data CheckoutData, err error, fallback string) {
	if errors.Is(err, checkout.ErrEmptyCart) {
		h.redirect(c, "/cart", views.FlashInfo, "Your cart is empty")
		return
	}
	if backend.IsUnauthorized(err) {
		h.sessions.ClearSession(c.Request.Context(), middleware.VisitorID(c))
		c.Redirect(http.StatusSeeOther, middleware.LoginURL("/checkout"))
		return
	}

	h.log(c, "checkout").WithError(err).Warn(fallback)
	data.Errors = []string{backend.Message(err, fallback)}
	h.render(c, http.StatusBadGateway, "checkout", "Checkout", data)
}

func addressFromForm(c *gin.Context) backend.ShippingAddress {
	field := func(name string) string {
		return strings.TrimSpace(c.PostForm(name))
	}
	return backend.ShippingAddress{
		Name:       field("name"),
		Phone:      field("phone"),
		Address:    field("address"),
		City:       field("city"),
		State:      field("state"),
		PostalCode: field("postalCode"),
		Country:    field("country"),
	}
}
