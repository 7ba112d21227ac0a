// internal/interfaces/http/handlers/invoice.go
package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/ecommerce-storefront/internal/infrastructure/backend"
	"github.com/your-org/ecommerce-storefront/internal/interfaces/http/views"
)

// InvoiceGenerator renders an order as a PDF
type InvoiceGenerator interface {
	GenerateInvoice(order *backend.Order) (*bytes.Buffer, error)
}

// InvoiceHandler handles invoice downloads
type InvoiceHandler struct {
	*OrderHandler
	pdf InvoiceGenerator
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(orders *OrderHandler, pdf InvoiceGenerator) *InvoiceHandler {
	return &InvoiceHandler{OrderHandler: orders, pdf: pdf}
}

// Download handles GET /user/orders/:id/invoice. The backend only returns
// orders the token may see.
func (h *InvoiceHandler) Download(c *gin.Context) {
	order, ok := h.load(c)
	if !ok {
		return
	}

	pdfBuffer, err := h.pdf.GenerateInvoice(order)
	if err != nil {
		h.log(c, "invoice").WithError(err).WithField("order_id", order.ID).Error("Failed to generate invoice")
		h.redirect(c, "/user/orders/"+order.ID, views.FlashError, "Failed to generate invoice")
		return
	}

	filename := fmt.Sprintf("invoice-%s.pdf", order.ShortID())
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Header("Cache-Control", "private, no-store")
	c.Data(http.StatusOK, "application/pdf", pdfBuffer.Bytes())
}
