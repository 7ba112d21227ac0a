package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/ecommerce-storefront/internal/domain/cart"
	"github.com/your-org/ecommerce-storefront/internal/infrastructure/backend"
)

func product(id string, discount int64) backend.Product {
	return backend.Product{
		ID:       id,
		Name:     "Product " + id,
		Price:    decimal.NewFromInt(100),
		Discount: decimal.NewFromInt(discount),
	}
}

func TestBestDeals(t *testing.T) {
	products := []backend.Product{
		product("a", 0), product("b", 10), product("c", 40), product("d", 10),
		product("e", 5), product("f", 25), product("g", 15), product("h", 30),
		product("i", 20), product("j", 35),
	}

	deals := BestDeals(products, BestDealsLimit)
	require.Len(t, deals, 7)

	ids := make([]string, 0, len(deals))
	for _, d := range deals {
		ids = append(ids, d.ID)
	}
	assert.Equal(t, []string{"c", "j", "h", "f", "i", "g", "b"}, ids)

	assert.Empty(t, BestDeals([]backend.Product{product("x", 0)}, BestDealsLimit))
}

func TestHeading(t *testing.T) {
	assert.Equal(t, "Phones / Cases", Heading("Phones", "Cases", "ignored"))
	assert.Equal(t, "Phones", Heading("Phones", "", "q"))
	assert.Equal(t, "Search: pixel", Heading("", "", "pixel"))
	assert.Equal(t, "Our Products", Heading("", "", ""))
}

func TestPaginate(t *testing.T) {
	items := make([]int, 30)
	for i := range items {
		items[i] = i
	}

	first := Paginate(items, 1, ItemsPerPage)
	assert.Equal(t, 3, first.TotalPages)
	assert.Len(t, first.Items, 12)
	assert.False(t, first.HasPrev())
	assert.True(t, first.HasNext())

	last := Paginate(items, 99, ItemsPerPage)
	assert.Equal(t, 3, last.Number)
	assert.Equal(t, []int{24, 25, 26, 27, 28, 29}, last.Items)
	assert.False(t, last.HasNext())
	assert.Equal(t, 2, last.Prev())

	assert.Equal(t, 1, Paginate(items, -4, ItemsPerPage).Number)

	empty := Paginate([]int{}, 3, ItemsPerPage)
	assert.Equal(t, 1, empty.Number)
	assert.Equal(t, 0, empty.TotalPages)
	assert.Empty(t, empty.Items)
}

func TestProductView(t *testing.T) {
	stock := 3
	p := backend.Product{
		ID:       "65f0",
		Name:     "Nothing Phone (3) 5G",
		Price:    decimal.NewFromInt(90000),
		Discount: decimal.NewFromInt(20),
		Stock:    &stock,
	}

	v := NewProductView(p)
	assert.Equal(t, "nothing-phone-3-5g", v.Slug)
	assert.Equal(t, "/products/65f0/nothing-phone-3-5g", v.URL)
	assert.Equal(t, "72000.00", v.FinalPrice.StringFixed(2))
	assert.True(t, v.HasDiscount())
	assert.True(t, v.LowStock())
	assert.False(t, v.OutOfStock())

	assert.Equal(t, "product", NewProductView(backend.Product{ID: "x"}).Slug)
}

type getter map[string]backend.Product

func (g getter) GetProduct(_ context.Context, id string) (*backend.Product, error) {
	p, ok := g[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return &p, nil
}

func TestSnapshotLookupRefreshesCart(t *testing.T) {
	stock := 1
	fresh := product("p1", 50)
	fresh.Stock = &stock

	c := cart.Cart{
		{ProductID: "p1", Name: "old", Price: decimal.NewFromInt(100), Quantity: 2},
		{ProductID: "gone", Name: "stale", Price: decimal.NewFromInt(7), Quantity: 1},
	}

	refreshed := cart.RefreshSnapshots(context.Background(), c, SnapshotLookup(getter{"p1": fresh}))
	require.Len(t, refreshed, 2)
	assert.Equal(t, "old", refreshed[0].Name, "names are not refreshed")
	assert.True(t, refreshed[0].Discount.Equal(decimal.NewFromInt(50)))
	assert.True(t, refreshed[0].AtMaxQuantity())
	assert.Equal(t, "stale", refreshed[1].Name)
}
