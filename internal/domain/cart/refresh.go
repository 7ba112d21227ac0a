// internal/domain/cart/refresh.go
package cart

import (
	"context"

	"golang.org/x/sync/errgroup"
)

const refreshConcurrency = 8

// Lookup fetches the current catalog data for a product
type Lookup func(ctx context.Context, productID string) (ProductSnapshot, error)

// RefreshSnapshots returns a copy of c with price, discount and stock taken
// from lookup. Lines whose lookup fails keep their stale snapshot. The
// result is for display only and is not persisted.
func RefreshSnapshots(ctx context.Context, c Cart, lookup Lookup) Cart {
	out := c.clone()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(refreshConcurrency)

	for i := range out {
		i := i
		g.Go(func() error {
			fresh, err := lookup(gctx, out[i].ProductID)
			if err != nil {
				return nil
			}
			out[i].Price = fresh.Price
			out[i].Discount = fresh.Discount
			out[i].Stock = fresh.Stock
			return nil
		})
	}

	_ = g.Wait()
	return out
}
