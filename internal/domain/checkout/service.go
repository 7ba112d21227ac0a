// internal/domain/checkout/service.go
package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/ecommerce-storefront/internal/domain/cart"
	"github.com/your-org/ecommerce-storefront/internal/infrastructure/backend"
	"github.com/your-org/ecommerce-storefront/internal/infrastructure/storage"
)

// ErrEmptyCart is returned when there is nothing to order
var ErrEmptyCart = errors.New("your cart is empty")

// Payment identifiers sent as paymentId
const (
	PaymentCOD    = "COD"
	PaymentStripe = "STRIPE"
)

// Orders is the slice of the backend API checkout needs
type Orders interface {
	PlaceOrder(ctx context.Context, token string, req backend.OrderRequest) (*backend.Order, error)
	CreateCheckoutSession(ctx context.Context, req backend.CheckoutSessionRequest) (*backend.CheckoutSession, error)
}

// PaymentMethod represents an option on the checkout form
type PaymentMethod struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// PaymentMethods lists the supported payment options
func PaymentMethods() []PaymentMethod {
	return []PaymentMethod{
		{ID: PaymentCOD, Name: "Cash on Delivery", Description: "Pay when your order arrives"},
		{ID: PaymentStripe, Name: "Stripe", Description: "Pay now by card"},
	}
}

// ParsePaymentMethod returns PaymentCOD unless s names Stripe
func ParsePaymentMethod(s string) string {
	if strings.EqualFold(strings.TrimSpace(s), PaymentStripe) {
		return PaymentStripe
	}
	return PaymentCOD
}

// Summary represents the pricing shown next to the checkout form
type Summary struct {
	Items     cart.Cart       `json:"items"`
	ItemCount int             `json:"item_count"`
	Gross     decimal.Decimal `json:"gross"`
	Discount  decimal.Decimal `json:"discount"`
	Total     decimal.Decimal `json:"total"`
}

// Completion is the outcome of returning from the hosted payment page
type Completion struct {
	Message string
	Order   *backend.Order
}

// Completion messages shown on the success page
const (
	MessageNoItems      = "Payment successful. No items in cart."
	MessageLoginToOrder = "Payment successful. Please login to complete your order."
	MessageOrderPlaced  = "Order placed successfully. Redirecting to your orders..."
	MessageOrderFailed  = "Order completion failed. Please contact support."
)

// Service turns a visitor's cart into a backend order
type Service struct {
	carts   *cart.Store
	storage storage.Storage
	orders  Orders
	logger  *logrus.Logger
}

// NewService creates a checkout service
func NewService(carts *cart.Store, st storage.Storage, orders Orders, logger *logrus.Logger) *Service {
	return &Service{
		carts:   carts,
		storage: st,
		orders:  orders,
		logger:  logger,
	}
}

// GetSummary prices the visitor's current cart
func (s *Service) GetSummary(ctx context.Context, visitor string) Summary {
	items := s.carts.Load(ctx, visitor)
	return Summarize(items)
}

// Summarize prices a cart from its snapshots. Total always carries the
// discount, matching what the order is charged.
func Summarize(items cart.Cart) Summary {
	gross := items.Subtotal(func(item cart.LineItem) (decimal.Decimal, decimal.Decimal) {
		return item.Price, decimal.Zero
	})
	total := items.Subtotal(nil)

	return Summary{
		Items:     items,
		ItemCount: items.Count(),
		Gross:     gross,
		Discount:  gross.Sub(total),
		Total:     total,
	}
}

// ValidateAddress returns one message per missing required field. State is optional.
func ValidateAddress(a backend.ShippingAddress) []string {
	var problems []string
	required := []struct {
		value string
		label string
	}{
		{a.Name, "Full name"},
		{a.Phone, "Phone number"},
		{a.Address, "Address line"},
		{a.City, "City"},
		{a.PostalCode, "Postal code"},
		{a.Country, "Country"},
	}
	for _, field := range required {
		if strings.TrimSpace(field.value) == "" {
			problems = append(problems, field.label+" is required")
		}
	}
	return problems
}

// PlaceOrder submits the cart as an order. Only after the backend accepted
// it are the ordered quantities taken out of the cart; anything added while
// the request was in flight stays.
func (s *Service) PlaceOrder(ctx context.Context, visitor, token string, address backend.ShippingAddress, paymentID string) (*backend.Order, error) {
	items := s.carts.Load(ctx, visitor)
	if items.IsEmpty() {
		return nil, ErrEmptyCart
	}

	req := backend.OrderRequest{
		Products:        make([]backend.OrderItemRequest, 0, len(items)),
		Total:           items.Subtotal(nil),
		PaymentID:       paymentID,
		ShippingAddress: address,
	}
	for _, item := range items {
		req.Products = append(req.Products, backend.OrderItemRequest{
			Product:  item.ProductID,
			Quantity: item.Quantity,
		})
	}

	order, err := s.orders.PlaceOrder(ctx, token, req)
	if err != nil {
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	s.carts.RemoveOrdered(ctx, visitor, items)

	s.log(visitor).WithFields(logrus.Fields{
		"order_id":   order.ID,
		"payment_id": paymentID,
		"total":      req.Total.StringFixed(2),
	}).Info("Order placed")
	return order, nil
}

// StartStripe remembers the shipping address and opens a hosted payment
// session. The returned URL is where the visitor must be redirected.
func (s *Service) StartStripe(ctx context.Context, visitor string, address backend.ShippingAddress, successURL, cancelURL string) (string, error) {
	items := s.carts.Load(ctx, visitor)
	if items.IsEmpty() {
		return "", ErrEmptyCart
	}

	payload, err := json.Marshal(address)
	if err != nil {
		return "", fmt.Errorf("failed to encode address: %w", err)
	}
	if err := s.storage.Set(ctx, visitor, storage.KeyCheckoutAddress, string(payload)); err != nil {
		s.log(visitor).WithError(err).Warn("Failed to remember checkout address")
	}

	req := backend.CheckoutSessionRequest{
		Items:      make([]backend.CheckoutItem, 0, len(items)),
		SuccessURL: successURL,
		CancelURL:  cancelURL,
	}
	for _, item := range items {
		req.Items = append(req.Items, backend.CheckoutItem{
			Name:     item.Name,
			Price:    item.UnitPrice().Round(2),
			Quantity: item.Quantity,
		})
	}

	session, err := s.orders.CreateCheckoutSession(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to start payment: %w", err)
	}
	return session.URL, nil
}

// CompleteStripe places the order after the payment provider redirected
// back. An empty token leaves the cart untouched so the visitor can log in
// and retry.
func (s *Service) CompleteStripe(ctx context.Context, visitor, token, stripeSessionID string) (Completion, error) {
	if s.carts.Load(ctx, visitor).IsEmpty() {
		return Completion{Message: MessageNoItems}, nil
	}
	if token == "" {
		return Completion{Message: MessageLoginToOrder}, nil
	}

	paymentID := stripeSessionID
	if paymentID == "" {
		paymentID = PaymentStripe
	}

	order, err := s.PlaceOrder(ctx, visitor, token, s.savedAddress(ctx, visitor), paymentID)
	if err != nil {
		return Completion{Message: MessageOrderFailed}, err
	}

	if err := s.storage.Delete(ctx, visitor, storage.KeyCheckoutAddress); err != nil {
		s.log(visitor).WithError(err).Warn("Failed to forget checkout address")
	}
	return Completion{Message: MessageOrderPlaced, Order: order}, nil
}

func (s *Service) savedAddress(ctx context.Context, visitor string) backend.ShippingAddress {
	var address backend.ShippingAddress

	raw, err := s.storage.Get(ctx, visitor, storage.KeyCheckoutAddress)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.log(visitor).WithError(err).Warn("Failed to read checkout address")
		}
		return address
	}
	if err := json.Unmarshal([]byte(raw), &address); err != nil {
		s.log(visitor).WithError(err).Warn("Discarding unreadable checkout address")
		return backend.ShippingAddress{}
	}
	return address
}

func (s *Service) log(visitor string) *logrus.Entry {
	return s.logger.WithFields(logrus.Fields{
		"component": "checkout",
		"visitor":   visitor,
	})
}
