// internal/interfaces/http/handlers/payment.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/ecommerce-storefront/internal/domain/checkout"
	"github.com/your-org/ecommerce-storefront/internal/infrastructure/backend"
	"github.com/your-org/ecommerce-storefront/internal/interfaces/http/middleware"
)

// PaymentResultData is rendered by the payment success page
type PaymentResultData struct {
	Message string
	Order   *backend.Order
}

// PaymentHandler handles the return trip from the hosted payment page
type PaymentHandler struct {
	*Base
	checkout *checkout.Service
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(base *Base, service *checkout.Service) *PaymentHandler {
	return &PaymentHandler{Base: base, checkout: service}
}

// Success handles GET /checkout/success?session_id=. It is not guarded: a
// visitor whose session lapsed during payment is asked to log in instead.
func (h *PaymentHandler) Success(c *gin.Context) {
	ctx := c.Request.Context()
	visitor := middleware.VisitorID(c)

	token, _ := h.sessions.GetToken(ctx, visitor)
	completion, err := h.checkout.CompleteStripe(ctx, visitor, token, c.Query("session_id"))
	if err != nil {
		h.log(c, "payment").WithError(err).Error("Failed to complete paid order")
	}

	h.render(c, http.StatusOK, "checkout_success", "Payment Successful", PaymentResultData{
		Message: completion.Message,
		Order:   completion.Order,
	})
}

// Cancel handles GET /checkout/cancel
func (h *PaymentHandler) Cancel(c *gin.Context) {
	h.render(c, http.StatusOK, "checkout_cancel", "Payment Cancelled", nil)
}
