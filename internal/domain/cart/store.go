// internal/domain/cart/store.go
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"hash/fnv"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/your-org/ecommerce-storefront/internal/domain/events"
	"github.com/your-org/ecommerce-storefront/internal/infrastructure/storage"
)

const lockStripes = 64

// Store is the single source of truth for a visitor's cart. Every mutation
// writes the whole cart under storage.KeyCart and then publishes
// events.TopicCartUpdated so that mounted views reload.
type Store struct {
	storage   storage.Storage
	publisher events.Publisher
	logger    *logrus.Logger

	locks [lockStripes]sync.Mutex
}

// NewStore creates a cart store
func NewStore(st storage.Storage, publisher events.Publisher, logger *logrus.Logger) *Store {
	return &Store{
		storage:   st,
		publisher: publisher,
		logger:    logger,
	}
}

// Load returns the persisted cart. A missing or unreadable blob yields an
// empty cart; Load never fails.
func (s *Store) Load(ctx context.Context, visitor string) Cart {
	raw, err := s.storage.Get(ctx, visitor, storage.KeyCart)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.log(visitor).WithError(err).Warn("Failed to read cart, using empty cart")
		}
		return Cart{}
	}

	var items []LineItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		s.log(visitor).WithError(err).Warn("Discarding unreadable cart")
		return Cart{}
	}

	return normalize(items)
}

// Add puts quantity units of the product in the cart. An existing line has
// its quantity increased; otherwise a new line is appended. Quantities
// below one are treated as one.
func (s *Store) Add(ctx context.Context, visitor string, product ProductSnapshot, quantity int) Cart {
	if quantity < 1 {
		quantity = 1
	}

	return s.mutate(ctx, visitor, func(c Cart) (Cart, bool) {
		for i := range c {
			if c[i].ProductID == product.ProductID {
				c[i].Quantity += quantity
				if product.Stock != nil {
					c[i].Stock = product.Stock
				}
				return c, true
			}
		}

		return append(c, LineItem{
			ProductID: product.ProductID,
			Name:      product.Name,
			Price:     product.Price,
			Discount:  product.Discount,
			ImageURL:  product.ImageURL,
			Stock:     product.Stock,
			Quantity:  quantity,
		}), true
	})
}

// UpdateQuantity sets a line's quantity; below one removes the line.
// An unknown product is a no-op: nothing is written and nobody is notified.
// Stock limits are the caller's concern (see CheckStock).
func (s *Store) UpdateQuantity(ctx context.Context, visitor, productID string, quantity int) Cart {
	if quantity < 1 {
		return s.Remove(ctx, visitor, productID)
	}

	return s.mutate(ctx, visitor, func(c Cart) (Cart, bool) {
		for i := range c {
			if c[i].ProductID == productID {
				c[i].Quantity = quantity
				return c, true
			}
		}
		return c, false
	})
}

// Remove drops the line for productID
func (s *Store) Remove(ctx context.Context, visitor, productID string) Cart {
	return s.mutate(ctx, visitor, func(c Cart) (Cart, bool) {
		out := c[:0]
		for _, item := range c {
			if item.ProductID != productID {
				out = append(out, item)
			}
		}
		return out, true
	})
}

// Clear empties the cart
func (s *Store) Clear(ctx context.Context, visitor string) Cart {
	return s.mutate(ctx, visitor, func(Cart) (Cart, bool) {
		return Cart{}, true
	})
}

// RemoveOrdered takes the quantities in ordered out of the current cart.
// Lines added, or units added to a line, after ordered was read stay in
// the cart.
func (s *Store) RemoveOrdered(ctx context.Context, visitor string, ordered Cart) Cart {
	taken := make(map[string]int, len(ordered))
	for _, item := range ordered {
		taken[item.ProductID] += item.Quantity
	}

	return s.mutate(ctx, visitor, func(c Cart) (Cart, bool) {
		out := c[:0]
		for _, item := range c {
			item.Quantity -= taken[item.ProductID]
			if item.Quantity > 0 {
				out = append(out, item)
			}
		}
		return out, true
	})
}

// mutate serializes read-modify-write per visitor, persists the result and
// only then notifies subscribers. A failed write is logged and swallowed:
// the caller still gets the computed cart. When fn reports no change the
// cart is returned untouched.
func (s *Store) mutate(ctx context.Context, visitor string, fn func(Cart) (Cart, bool)) Cart {
	mu := &s.locks[stripe(visitor)]
	mu.Lock()
	next, changed := fn(s.Load(ctx, visitor).clone())
	if next == nil {
		next = Cart{}
	}
	if !changed {
		mu.Unlock()
		return next
	}
	s.persist(ctx, visitor, next)
	mu.Unlock()

	s.publisher.Publish(ctx, events.Event{
		Visitor: visitor,
		Topic:   events.TopicCartUpdated,
	})

	return next
}

func (s *Store) persist(ctx context.Context, visitor string, c Cart) {
	payload, err := json.Marshal(c)
	if err != nil {
		s.log(visitor).WithError(err).Warn("Failed to encode cart")
		return
	}

	if err := s.storage.Set(ctx, visitor, storage.KeyCart, string(payload)); err != nil {
		s.log(visitor).WithError(err).Warn("Failed to persist cart")
	}
}

func (s *Store) log(visitor string) *logrus.Entry {
	return s.logger.WithFields(logrus.Fields{
		"component": "cart",
		"visitor":   visitor,
	})
}

// normalize drops invalid lines and folds duplicate products so that a
// hand-edited or partially corrupted blob still honours one line per product
func normalize(items []LineItem) Cart {
	out := make(Cart, 0, len(items))
	index := make(map[string]int, len(items))

	for _, item := range items {
		if item.ProductID == "" || item.Quantity < 1 {
			continue
		}
		if i, ok := index[item.ProductID]; ok {
			out[i].Quantity += item.Quantity
			continue
		}
		index[item.ProductID] = len(out)
		out = append(out, item)
	}

	return out
}

func stripe(visitor string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(visitor))
	return h.Sum32() % lockStripes
}
