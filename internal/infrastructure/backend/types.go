// internal/infrastructure/backend/types.go
package backend

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Ref is a reference the backend sends either as a bare id or as a
// populated object
type Ref struct {
	ID       string `json:"_id,omitempty"`
	Name     string `json:"name,omitempty"`
	Slug     string `json:"slug,omitempty"`
	Email    string `json:"email,omitempty"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// UnmarshalJSON accepts "id" or {"_id": ...}
func (r *Ref) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*r = Ref{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*r = Ref{ID: id}
		return nil
	}

	type plain Ref
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = Ref(p)
	return nil
}

// Label is the best human-readable name for the reference
func (r Ref) Label() string {
	if r.Name != "" {
		return r.Name
	}
	return r.ID
}

// Product as served by GET /products. Discount, stock and subCategory are
// optional and default to absent.
type Product struct {
	ID          string          `json:"_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Category    Ref             `json:"category"`
	SubCategory Ref             `json:"subCategory"`
	Price       decimal.Decimal `json:"price"`
	Discount    decimal.Decimal `json:"discount"`
	ImageURL    string          `json:"imageUrl"`
	Stock       *int            `json:"stock,omitempty"`
}

// ProductInput is the body of POST/PUT /products
type ProductInput struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	SubCategory string          `json:"subCategory,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Discount    decimal.Decimal `json:"discount"`
	ImageURL    string          `json:"imageUrl"`
	Stock       int             `json:"stock"`
}

// ProductFilter narrows GET /products
type ProductFilter struct {
	Category    string
	SubCategory string
	Query       string
}

// Category is a top-level product category
type Category struct {
	ID          string `json:"_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Slug        string `json:"slug"`
}

// SubCategory belongs to a Category
type SubCategory struct {
	ID          string `json:"_id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
	Category    Ref    `json:"category"`
}

// CategoryInput is the body of POST /categories and POST /subcategories
type CategoryInput struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	CategoryID  string `json:"categoryId,omitempty"`
}

// User is the backend's view of an account
type User struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// UnmarshalJSON accepts both "_id" and "id"
func (u *User) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID      string `json:"id"`
		MongoID string `json:"_id"`
		Name    string `json:"name"`
		Email   string `json:"email"`
		Role    string `json:"role"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	u.ID = raw.MongoID
	if u.ID == "" {
		u.ID = raw.ID
	}
	u.Name = raw.Name
	u.Email = raw.Email
	u.Role = raw.Role
	return nil
}

// Credentials is the body of POST /users/login
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is the body of POST /users/register
type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResult is returned by login and register
type AuthResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Order statuses used by the backend
const (
	OrderStatusPending   = "pending"
	OrderStatusPaid      = "paid"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

// OrderStatuses lists every status in lifecycle order
var OrderStatuses = []string{
	OrderStatusPending,
	OrderStatusPaid,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// ShippingAddress is stored on the order
type ShippingAddress struct {
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// IsZero reports whether no field was filled in
func (a ShippingAddress) IsZero() bool {
	return a == ShippingAddress{}
}

// OrderLine is one product of a placed order
type OrderLine struct {
	Product  Ref    `json:"product"`
	Quantity int    `json:"quantity"`
	Name     string `json:"name,omitempty"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// DisplayName prefers the populated product name
func (l OrderLine) DisplayName() string {
	if l.Product.Name != "" {
		return l.Product.Name
	}
	if l.Name != "" {
		return l.Name
	}
	return "Item"
}

// DisplayImage prefers the populated product image
func (l OrderLine) DisplayImage() string {
	if l.Product.ImageURL != "" {
		return l.Product.ImageURL
	}
	return l.ImageURL
}

// Order as served by the /orders endpoints
type Order struct {
	ID              string          `json:"_id"`
	User            Ref             `json:"user"`
	Products        []OrderLine     `json:"products"`
	Total           decimal.Decimal `json:"total"`
	PaymentID       string          `json:"paymentId"`
	Status          string          `json:"status"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// ShortID is the last six characters of the id, as shown to customers
func (o Order) ShortID() string {
	if len(o.ID) <= 6 {
		return o.ID
	}
	return o.ID[len(o.ID)-6:]
}

// IsCOD reports whether the order is cash on delivery
func (o Order) IsCOD() bool {
	return o.PaymentID == "" || o.PaymentID == "COD"
}

// ItemCount sums line quantities
func (o Order) ItemCount() int {
	n := 0
	for _, l := range o.Products {
		n += l.Quantity
	}
	return n
}

// OrderItemRequest is one line of POST /orders
type OrderItemRequest struct {
	Product  string `json:"product"`
	Quantity int    `json:"quantity"`
}

// OrderRequest is the body of POST /orders
type OrderRequest struct {
	Products        []OrderItemRequest `json:"products"`
	Total           decimal.Decimal    `json:"total"`
	PaymentID       string             `json:"paymentId"`
	ShippingAddress ShippingAddress    `json:"shippingAddress"`
}

// ReviewEligibility is the answer of GET /orders/can-review/:id
type ReviewEligibility struct {
	CanReview bool   `json:"canReview"`
	OrderID   string `json:"orderId,omitempty"`
}

// Reply is an answer posted under a review
type Reply struct {
	ID        string    `json:"_id"`
	User      Ref       `json:"user"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}

// Review is a customer's rating of a product
type Review struct {
	ID        string    `json:"_id"`
	User      Ref       `json:"user"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
	Replies   []Reply   `json:"replies,omitempty"`
}

// ReviewInput is the body of POST /reviews
type ReviewInput struct {
	ProductID string `json:"productId"`
	OrderID   string `json:"orderId"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
}

// CheckoutItem is one line sent to the payment provider
type CheckoutItem struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

// CheckoutSessionRequest is the body of POST /payments/checkout-session
type CheckoutSessionRequest struct {
	Items      []CheckoutItem `json:"items"`
	SuccessURL string         `json:"successUrl"`
	CancelURL  string         `json:"cancelUrl"`
}

// CheckoutSession carries the hosted payment page URL
type CheckoutSession struct {
	ID  string `json:"id,omitempty"`
	URL string `json:"url"`
}
