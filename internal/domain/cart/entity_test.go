package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestSubtotalAppliesDiscountBeforeQuantity(t *testing.T) {
	c := Cart{{
		ProductID: "p1",
		Price:     decimal.NewFromInt(100),
		Discount:  decimal.NewFromInt(20),
		Quantity:  2,
	}}

	assert.Equal(t, "160.00", c.Subtotal(nil).StringFixed(2))
}

func TestSubtotalMixedLinesAndRounding(t *testing.T) {
	c := Cart{
		{ProductID: "a", Price: decimal.RequireFromString("19.99"), Discount: decimal.NewFromInt(15), Quantity: 3},
		{ProductID: "b", Price: decimal.RequireFromString("5.00"), Quantity: 1},
	}

	// 19.99*0.85*3 = 50.9745, plus 5.00
	assert.Equal(t, "55.97", c.Subtotal(nil).StringFixed(2))
	assert.Equal(t, "0.00", Cart{}.Subtotal(nil).StringFixed(2))
}

func TestSubtotalUsesResolver(t *testing.T) {
	c := Cart{{ProductID: "p1", Price: decimal.NewFromInt(100), Quantity: 2}}

	fresh := func(LineItem) (decimal.Decimal, decimal.Decimal) {
		return decimal.NewFromInt(80), decimal.NewFromInt(50)
	}

	assert.Equal(t, "80.00", c.Subtotal(fresh).StringFixed(2))
}

func TestLineItemHelpers(t *testing.T) {
	item := LineItem{Price: decimal.NewFromInt(200), Discount: decimal.NewFromInt(10), Quantity: 3, Stock: intPtr(3)}

	assert.Equal(t, "180.00", item.UnitPrice().StringFixed(2))
	assert.Equal(t, "540.00", item.Total().StringFixed(2))
	assert.True(t, item.HasDiscount())
	assert.True(t, item.AtMaxQuantity())
	assert.True(t, item.LowStock())
	assert.False(t, item.OutOfStock())

	item.Stock = nil
	assert.False(t, item.AtMaxQuantity(), "unknown stock never caps")

	item.Stock = intPtr(0)
	assert.True(t, item.OutOfStock())
}

func TestCartCountAndFind(t *testing.T) {
	c := Cart{{ProductID: "a", Quantity: 2}, {ProductID: "b", Quantity: 5}}

	assert.Equal(t, 7, c.Count())
	item, ok := c.Find("b")
	require.True(t, ok)
	assert.Equal(t, 5, item.Quantity)
	_, ok = c.Find("zzz")
	assert.False(t, ok)
}

func TestCheckStock(t *testing.T) {
	item := LineItem{Name: "Phone", Quantity: 2}

	assert.NoError(t, CheckStock(item, 3, nil))
	assert.NoError(t, CheckStock(item, 3, intPtr(3)))
	assert.NoError(t, CheckStock(item, 1, intPtr(0)), "lowering is always allowed")

	err := CheckStock(item, 4, intPtr(3))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInsufficientStock))
	assert.Equal(t, "Only 3 items available in stock for Phone", err.Error())

	err = CheckStock(item, 3, intPtr(0))
	assert.EqualError(t, err, "Phone is out of stock")
}

func TestCheckAvailable(t *testing.T) {
	assert.NoError(t, CheckAvailable("Phone", nil))
	assert.NoError(t, CheckAvailable("Phone", intPtr(1)))

	err := CheckAvailable("Phone", intPtr(0))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInsufficientStock))
	assert.EqualError(t, err, "Phone is out of stock")
	assert.Error(t, CheckAvailable("Phone", intPtr(-2)))
}

func TestRefreshSnapshots(t *testing.T) {
	c := Cart{
		{ProductID: "fresh", Price: decimal.NewFromInt(10), Quantity: 1},
		{ProductID: "gone", Price: decimal.NewFromInt(20), Quantity: 1},
	}

	lookup := func(_ context.Context, id string) (ProductSnapshot, error) {
		if id == "gone" {
			return ProductSnapshot{}, errors.New("404")
		}
		return ProductSnapshot{ProductID: id, Price: decimal.NewFromInt(12), Discount: decimal.NewFromInt(50), Stock: intPtr(4)}, nil
	}

	out := RefreshSnapshots(context.Background(), c, lookup)

	assert.Equal(t, "12", out[0].Price.String())
	assert.Equal(t, 4, *out[0].Stock)
	assert.Equal(t, "20", out[1].Price.String(), "failed lookups keep the stale snapshot")
	assert.Equal(t, "10", c[0].Price.String(), "the input cart is not modified")
}
