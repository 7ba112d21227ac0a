// internal/interfaces/http/handlers/review.go
package handlers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/your-org/ecommerce-storefront/internal/infrastructure/backend"
	"github.com/your-org/ecommerce-storefront/internal/interfaces/http/middleware"
	"github.com/your-org/ecommerce-storefront/internal/interfaces/http/views"
)

// ReviewHandler handles review submission from the product page
type ReviewHandler struct {
	*Base
	api *backend.Client
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(base *Base, api *backend.Client) *ReviewHandler {
	return &ReviewHandler{Base: base, api: api}
}

// Create handles POST /products/:id/reviews
func (h *ReviewHandler) Create(c *gin.Context) {
	productID := c.Param("id")
	back := "/products/" + productID

	rating, err := strconv.Atoi(c.PostForm("rating"))
	if err != nil || rating < 1 || rating > 5 {
		h.redirect(c, back, views.FlashError, "Please choose a rating between 1 and 5")
		return
	}
	comment := strings.TrimSpace(c.PostForm("comment"))
	if comment == "" {
		h.redirect(c, back, views.FlashError, "Please write a comment")
		return
	}

	err = h.api.CreateReview(c.Request.Context(), middleware.SessionToken(c), backend.ReviewInput{
		ProductID: productID,
		OrderID:   c.PostForm("orderId"),
		Rating:    rating,
		Comment:   comment,
	})
	if err != nil {
		h.log(c, "review").WithError(err).WithField("product_id", productID).Warn("Failed to submit review")
		h.redirect(c, back, views.FlashError, backend.Message(err, "Failed to submit review"))
		return
	}

	h.redirect(c, back, views.FlashSuccess, "Thank you for your review!")
}

// Reply handles POST /products/:id/reviews/:reviewId/reply. The backend
// decides who may reply.
func (h *ReviewHandler) Reply(c *gin.Context) {
	back := "/products/" + c.Param("id")

	comment := strings.TrimSpace(c.PostForm("comment"))
	if comment == "" {
		h.redirect(c, back, views.FlashError, "Reply cannot be empty")
		return
	}

	if err := h.api.ReplyToReview(c.Request.Context(), middleware.SessionToken(c), c.Param("reviewId"), comment); err != nil {
		h.log(c, "review").WithError(err).Warn("Failed to reply to review")
		h.redirect(c, back, views.FlashError, backend.Message(err, "Failed to post reply"))
		return
	}

	h.redirect(c, back, views.FlashSuccess, "Reply posted")
}
