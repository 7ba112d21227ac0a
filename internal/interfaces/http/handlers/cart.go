// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/your-org/ecommerce-storefront/internal/domain/cart"
	"github.com/your-org/ecommerce-storefront/internal/domain/catalog"
	"github.com/your-org/ecommerce-storefront/internal/domain/checkout"
	"github.com/your-org/ecommerce-storefront/internal/infrastructure/backend"
	"github.com/your-org/ecommerce-storefront/internal/interfaces/http/middleware"
	"github.com/your-org/ecommerce-storefront/internal/interfaces/http/views"
)

// Messages shown by the cart views
const (
	MessageAddedToCart     = "Added to cart"
	MessageCartCleared     = "Cart cleared"
	MessageUpdateFailed    = "Failed to update quantity"
	MessageProductNotFound = "Product not found"
	MessageAddToCartFailed = "Failed to add to cart"
	MessageItemRemoved     = "Item removed from cart"
)

// CartData is rendered by the cart page
type CartData struct {
	Items   cart.Cart
	Summary checkout.Summary
}

// AddToCartRequest is the body of POST /api/cart/items
type AddToCartRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity"`
}

// UpdateQuantityRequest is the body of PUT /api/cart/items/:id
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// CartHandler handles the cart page, its form actions and the JSON surface
type CartHandler struct {
	*Base
	api *backend.Client
}

// NewCartHandler creates a new cart handler
func NewCartHandler(base *Base, api *backend.Client) *CartHandler {
	return &CartHandler{Base: base, api: api}
}

// Page handles GET /cart. Prices and stock are refreshed from the catalog
// for display; the stored snapshots are left as they are.
func (h *CartHandler) Page(c *gin.Context) {
	ctx := c.Request.Context()
	items := cart.RefreshSnapshots(ctx, h.carts.Load(ctx, middleware.VisitorID(c)), catalog.SnapshotLookup(h.api))

	h.render(c, http.StatusOK, "cart", "Shopping Cart", CartData{
		Items:   items,
		Summary: checkout.Summarize(items),
	})
}

// AddForm handles POST /cart/items
func (h *CartHandler) AddForm(c *gin.Context) {
	next := middleware.SafeNext(c.PostForm("next"), "/cart")
	quantity, _ := strconv.Atoi(c.DefaultPostForm("quantity", "1"))

	if _, err := h.add(c.Request.Context(), middleware.VisitorID(c), c.PostForm("productId"), quantity); err != nil {
		h.redirect(c, next, views.FlashError, h.errorMessage(c, err, MessageAddToCartFailed))
		return
	}
	h.redirect(c, next, views.FlashSuccess, MessageAddedToCart)
}

// UpdateForm handles POST /cart/items/:id/quantity with either a delta
// (+1/-1 buttons) or an absolute quantity
func (h *CartHandler) UpdateForm(c *gin.Context) {
	ctx := c.Request.Context()
	visitor := middleware.VisitorID(c)
	productID := c.Param("id")

	line, ok := h.carts.Load(ctx, visitor).Find(productID)
	if !ok {
		c.Redirect(http.StatusSeeOther, "/cart")
		return
	}

	target := line.Quantity
	if delta, err := strconv.Atoi(c.PostForm("delta")); err == nil {
		target += delta
	} else if quantity, err := strconv.Atoi(c.PostForm("quantity")); err == nil {
		target = quantity
	}

	if _, err := h.update(ctx, visitor, productID, target); err != nil {
		h.redirect(c, "/cart", views.FlashError, h.errorMessage(c, err, MessageUpdateFailed))
		return
	}
	c.Redirect(http.StatusSeeOther, "/cart")
}

// RemoveForm handles POST /cart/items/:id/remove
func (h *CartHandler) RemoveForm(c *gin.Context) {
	h.carts.Remove(c.Request.Context(), middleware.VisitorID(c), c.Param("id"))
	h.redirect(c, "/cart", views.FlashInfo, MessageItemRemoved)
}

// ClearForm handles POST /cart/clear
func (h *CartHandler) ClearForm(c *gin.Context) {
	h.carts.Clear(c.Request.Context(), middleware.VisitorID(c))
	h.redirect(c, "/cart", views.FlashInfo, MessageCartCleared)
}

// Get handles GET /api/cart
func (h *CartHandler) Get(c *gin.Context) {
	items := h.carts.Load(c.Request.Context(), middleware.VisitorID(c))
	c.JSON(http.StatusOK, gin.H{"data": checkout.Summarize(items)})
}

// Count handles GET /api/cart/count
func (h *CartHandler) Count(c *gin.Context) {
	items := h.carts.Load(c.Request.Context(), middleware.VisitorID(c))
	c.JSON(http.StatusOK, gin.H{"count": items.Count()})
}

// Add handles POST /api/cart/items
func (h *CartHandler) Add(c *gin.Context) {
	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	items, err := h.add(c.Request.Context(), middleware.VisitorID(c), req.ProductID, req.Quantity)
	if err != nil {
		h.jsonError(c, err, MessageAddToCartFailed)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": MessageAddedToCart,
		"data":    checkout.Summarize(items),
	})
}

// Update handles PUT /api/cart/items/:id
func (h *CartHandler) Update(c *gin.Context) {
	var req UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	items, err := h.update(c.Request.Context(), middleware.VisitorID(c), c.Param("id"), req.Quantity)
	if err != nil {
		h.jsonError(c, err, MessageUpdateFailed)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": checkout.Summarize(items)})
}

// Remove handles DELETE /api/cart/items/:id
func (h *CartHandler) Remove(c *gin.Context) {
	items := h.carts.Remove(c.Request.Context(), middleware.VisitorID(c), c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"data": checkout.Summarize(items)})
}

// Clear handles DELETE /api/cart
func (h *CartHandler) Clear(c *gin.Context) {
	items := h.carts.Clear(c.Request.Context(), middleware.VisitorID(c))
	c.JSON(http.StatusOK, gin.H{"data": checkout.Summarize(items)})
}

// add fetches the product so the cart gets a fresh snapshot. Only products
// with no stock left are refused; the quantity itself is not capped.
func (h *CartHandler) add(ctx context.Context, visitor, productID string, quantity int) (cart.Cart, error) {
	if quantity < 1 {
		quantity = 1
	}

	product, err := h.api.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if err := cart.CheckAvailable(product.Name, product.Stock); err != nil {
		return nil, err
	}

	return h.carts.Add(ctx, visitor, catalog.Snapshot(*product), quantity), nil
}

// update raises a quantity only within freshly fetched stock; lowering and
// removing never consult the catalog. Unknown lines are left alone.
func (h *CartHandler) update(ctx context.Context, visitor, productID string, quantity int) (cart.Cart, error) {
	items := h.carts.Load(ctx, visitor)
	line, ok := items.Find(productID)
	if !ok {
		return items, nil
	}

	if quantity > line.Quantity {
		product, err := h.api.GetProduct(ctx, productID)
		if err != nil {
			return nil, err
		}
		if err := cart.CheckStock(line, quantity, product.Stock); err != nil {
			return nil, err
		}
	}

	return h.carts.UpdateQuantity(ctx, visitor, productID, quantity), nil
}

func (h *CartHandler) errorMessage(c *gin.Context, err error, fallback string) string {
	var stockErr *cart.StockError
	switch {
	case errors.As(err, &stockErr):
		return stockErr.Error()
	case backend.IsNotFound(err):
		return MessageProductNotFound
	default:
		h.log(c, "cart").WithError(err).Warn(fallback)
		return fallback
	}
}

func (h *CartHandler) jsonError(c *gin.Context, err error, fallback string) {
	status := http.StatusBadGateway
	switch {
	case errors.Is(err, cart.ErrInsufficientStock):
		status = http.StatusConflict
	case backend.IsNotFound(err):
		status = http.StatusNotFound
	}
	c.JSON(status, gin.H{"error": h.errorMessage(c, err, fallback)})
}
