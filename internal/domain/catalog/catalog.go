// internal/domain/catalog/catalog.go
package catalog

import (
	"context"
	"fmt"
	"net/url"
	"sort"

	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"github.com/your-org/ecommerce-storefront/internal/domain/cart"
	"github.com/your-org/ecommerce-storefront/internal/infrastructure/backend"
)

const (
	// ItemsPerPage is the product grid page size
	ItemsPerPage = 12
	// BestDealsLimit caps the home page deal strip
	BestDealsLimit = 7
	// LowStockThreshold marks products that are nearly sold out
	LowStockThreshold = 10
)

var hundred = decimal.NewFromInt(100)

// FeaturedCategories are the category shortcuts on the home page
var FeaturedCategories = []string{
	"Mobile Phone",
	"Tablet",
	"Laptop",
	"Airpods",
	"Wireless Headphone",
	"Wired Headphone",
	"Headphone",
	"Speakers",
	"Starlink",
	"Smart Watch",
	"Smart Pen",
	"Power Adapter",
	"Cables",
	"Power Bank",
	"Hubs & Docks",
	"Wireless Charger",
}

// ProductView is a product plus everything a template needs to render it
type ProductView struct {
	backend.Product
	Slug       string
	URL        string
	FinalPrice decimal.Decimal
}

// HasDiscount reports a positive discount
func (v ProductView) HasDiscount() bool {
	return v.Discount.IsPositive()
}

// OutOfStock reports a known stock of zero
func (v ProductView) OutOfStock() bool {
	return v.Stock != nil && *v.Stock <= 0
}

// LowStock reports a known stock below LowStockThreshold
func (v ProductView) LowStock() bool {
	return v.Stock != nil && *v.Stock > 0 && *v.Stock < LowStockThreshold
}

// NewProductView decorates p
func NewProductView(p backend.Product) ProductView {
	s := slug.Make(p.Name)
	if s == "" {
		s = "product"
	}
	return ProductView{
		Product:    p,
		Slug:       s,
		URL:        fmt.Sprintf("/products/%s/%s", url.PathEscape(p.ID), s),
		FinalPrice: FinalPrice(p.Price, p.Discount),
	}
}

// NewProductViews decorates every product
func NewProductViews(products []backend.Product) []ProductView {
	views := make([]ProductView, 0, len(products))
	for _, p := range products {
		views = append(views, NewProductView(p))
	}
	return views
}

// FinalPrice applies a percentage discount, rounded to cents
func FinalPrice(price, discount decimal.Decimal) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(1).Sub(discount.Div(hundred))).Round(2)
}

// BestDeals returns discounted products, largest discount first, at most limit
func BestDeals(products []backend.Product, limit int) []backend.Product {
	deals := make([]backend.Product, 0, len(products))
	for _, p := range products {
		if p.Discount.IsPositive() {
			deals = append(deals, p)
		}
	}
	sort.SliceStable(deals, func(i, j int) bool {
		return deals[i].Discount.GreaterThan(deals[j].Discount)
	})
	if limit > 0 && len(deals) > limit {
		deals = deals[:limit]
	}
	return deals
}

// Heading titles the product grid for the active filter
func Heading(category, sub, query string) string {
	switch {
	case category != "" && sub != "":
		return category + " / " + sub
	case category != "":
		return category
	case query != "":
		return "Search: " + query
	default:
		return "Our Products"
	}
}

// Snapshot copies the fields the cart keeps for a product
func Snapshot(p backend.Product) cart.ProductSnapshot {
	return cart.ProductSnapshot{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Discount:  p.Discount,
		ImageURL:  p.ImageURL,
		Stock:     p.Stock,
	}
}

// ProductGetter fetches one product by id
type ProductGetter interface {
	GetProduct(ctx context.Context, id string) (*backend.Product, error)
}

// SnapshotLookup adapts a ProductGetter for cart.RefreshSnapshots
func SnapshotLookup(products ProductGetter) cart.Lookup {
	return func(ctx context.Context, productID string) (cart.ProductSnapshot, error) {
		p, err := products.GetProduct(ctx, productID)
		if err != nil {
			return cart.ProductSnapshot{}, err
		}
		return Snapshot(*p), nil
	}
}
