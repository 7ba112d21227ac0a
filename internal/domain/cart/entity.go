// internal/domain/cart/entity.go
package cart

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)
	one     = decimal.NewFromInt(1)
)

// ErrInsufficientStock is matched by every *StockError
var ErrInsufficientStock = errors.New("insufficient stock")

// ProductSnapshot holds the product fields copied into the cart when it is added
type ProductSnapshot struct {
	ProductID string
	Name      string
	Price     decimal.Decimal
	Discount  decimal.Decimal // percent, 0-100
	ImageURL  string
	Stock     *int
}

// LineItem is one product in the cart. Name, Price, Discount, ImageURL and
// Stock are copies taken at add-time and may be stale.
type LineItem struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Discount  decimal.Decimal `json:"discount"`
	ImageURL  string          `json:"imageUrl"`
	Stock     *int            `json:"stock,omitempty"`
	Quantity  int             `json:"quantity"`
}

// UnitPrice is the snapshot price after discount
func (i LineItem) UnitPrice() decimal.Decimal {
	return discounted(i.Price, i.Discount)
}

// Total is UnitPrice times quantity
func (i LineItem) Total() decimal.Decimal {
	return i.UnitPrice().Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// HasDiscount reports whether a positive discount applies
func (i LineItem) HasDiscount() bool {
	return i.Discount.IsPositive()
}

// OutOfStock reports a known stock of zero or less
func (i LineItem) OutOfStock() bool {
	return i.Stock != nil && *i.Stock <= 0
}

// AtMaxQuantity reports whether the quantity already reaches the known stock
func (i LineItem) AtMaxQuantity() bool {
	return i.Stock != nil && i.Quantity >= *i.Stock
}

// LowStock reports a known stock below ten units
func (i LineItem) LowStock() bool {
	return i.Stock != nil && *i.Stock > 0 && *i.Stock < 10
}

// Cart is the ordered list of line items, at most one per product
type Cart []LineItem

// Find returns the line for productID
func (c Cart) Find(productID string) (LineItem, bool) {
	for _, item := range c {
		if item.ProductID == productID {
			return item, true
		}
	}
	return LineItem{}, false
}

// Count is the sum of all quantities, as shown on the navbar badge
func (c Cart) Count() int {
	total := 0
	for _, item := range c {
		total += item.Quantity
	}
	return total
}

// IsEmpty reports whether the cart has no lines
func (c Cart) IsEmpty() bool {
	return len(c) == 0
}

// PriceResolver supplies the price and discount to use for a line. It lets
// callers price a cart against fresh catalog data instead of the snapshot.
type PriceResolver func(item LineItem) (price, discount decimal.Decimal)

// SnapshotPrices resolves prices from the line item itself
func SnapshotPrices(item LineItem) (decimal.Decimal, decimal.Decimal) {
	return item.Price, item.Discount
}

// Subtotal sums price*(1-discount/100)*quantity over every line, rounded to cents
func (c Cart) Subtotal(resolve PriceResolver) decimal.Decimal {
	if resolve == nil {
		resolve = SnapshotPrices
	}

	total := decimal.Zero
	for _, item := range c {
		price, discount := resolve(item)
		total = total.Add(discounted(price, discount).Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total.Round(2)
}

func (c Cart) clone() Cart {
	out := make(Cart, len(c))
	copy(out, c)
	return out
}

func discounted(price, discount decimal.Decimal) decimal.Decimal {
	return price.Mul(one.Sub(discount.Div(hundred)))
}

// StockError explains why a requested quantity was refused
type StockError struct {
	Name      string
	Available int
}

func (e *StockError) Error() string {
	if e.Available <= 0 {
		return fmt.Sprintf("%s is out of stock", e.Name)
	}
	return fmt.Sprintf("Only %d items available in stock for %s", e.Available, e.Name)
}

// Is makes errors.Is(err, ErrInsufficientStock) hold
func (e *StockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// CheckStock is the view-side ceiling check run before UpdateQuantity.
// Lowering a quantity is always allowed; raising it must stay within a
// known, freshly fetched stock. Unknown stock is not limited.
func CheckStock(item LineItem, quantity int, stock *int) error {
	if quantity <= item.Quantity || stock == nil {
		return nil
	}
	if quantity > *stock {
		return &StockError{Name: item.Name, Available: *stock}
	}
	return nil
}

// CheckAvailable refuses products whose known stock is exhausted. Adding has
// no other ceiling; CheckStock is for quantity changes on an existing line.
func CheckAvailable(name string, stock *int) error {
	if stock != nil && *stock <= 0 {
		return &StockError{Name: name}
	}
	return nil
}
