// internal/infrastructure/backend/orders.go
package backend

import (
	"context"
	"net/http"
	"net/url"
)

// PlaceOrder calls POST /orders
func (c *Client) PlaceOrder(ctx context.Context, token string, req OrderRequest) (*Order, error) {
	var order Order
	if err := c.call(ctx, http.MethodPost, "/orders", nil, token, req, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// ListOrders calls GET /orders (admin)
func (c *Client) ListOrders(ctx context.Context, token string) ([]Order, error) {
	var orders []Order
	if err := c.call(ctx, http.MethodGet, "/orders", nil, token, nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// MyOrders calls GET /orders/mine
func (c *Client) MyOrders(ctx context.Context, token string) ([]Order, error) {
	var orders []Order
	if err := c.call(ctx, http.MethodGet, "/orders/mine", nil, token, nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// GetOrder calls GET /orders/:id
func (c *Client) GetOrder(ctx context.Context, token, id string) (*Order, error) {
	var order Order
	if err := c.call(ctx, http.MethodGet, "/orders/"+url.PathEscape(id), nil, token, nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateOrderStatus calls PUT /orders/:id/status (admin)
func (c *Client) UpdateOrderStatus(ctx context.Context, token, id, status string) error {
	body := map[string]string{"status": status}
	return c.call(ctx, http.MethodPut, "/orders/"+url.PathEscape(id)+"/status", nil, token, body, nil)
}

// CanReview calls GET /orders/can-review/:productId
func (c *Client) CanReview(ctx context.Context, token, productID string) (*ReviewEligibility, error) {
	var eligibility ReviewEligibility
	path := "/orders/can-review/" + url.PathEscape(productID)
	if err := c.call(ctx, http.MethodGet, path, nil, token, nil, &eligibility); err != nil {
		return nil, err
	}
	return &eligibility, nil
}

// ProductReviews calls GET /reviews/product/:id
func (c *Client) ProductReviews(ctx context.Context, productID string) ([]Review, error) {
	var reviews []Review
	path := "/reviews/product/" + url.PathEscape(productID)
	if err := c.call(ctx, http.MethodGet, path, nil, "", nil, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

// CreateReview calls POST /reviews
func (c *Client) CreateReview(ctx context.Context, token string, input ReviewInput) error {
	return c.call(ctx, http.MethodPost, "/reviews", nil, token, input, nil)
}

// ReplyToReview calls POST /reviews/:id/reply
func (c *Client) ReplyToReview(ctx context.Context, token, reviewID, comment string) error {
	body := map[string]string{"comment": comment}
	return c.call(ctx, http.MethodPost, "/reviews/"+url.PathEscape(reviewID)+"/reply", nil, token, body, nil)
}

// CreateCheckoutSession calls POST /payments/checkout-session
func (c *Client) CreateCheckoutSession(ctx context.Context, req CheckoutSessionRequest) (*CheckoutSession, error) {
	var session CheckoutSession
	if err := c.call(ctx, http.MethodPost, "/payments/checkout-session", nil, "", req, &session); err != nil {
		return nil, err
	}
	if session.URL == "" {
		return nil, &APIError{Status: http.StatusBadGateway, Message: "Failed to start payment"}
	}
	return &session, nil
}
