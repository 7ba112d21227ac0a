package handlers

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/sirupsen/logrus"
	"github.com/your-org/ecommerce-storefront/internal/infrastructure/storage"
	"github.com/your-org/ecommerce-storefront/internal/interfaces/http/views"
)

// FlashStore keeps one pending message per visitor until the next page
// shows it
type FlashStore struct {
	storage storage.Storage
	logger  *logrus.Logger
}

// NewFlashStore creates a flash store
func NewFlashStore(st storage.Storage, logger *logrus.Logger) *FlashStore {
	return &FlashStore{storage: st, logger: logger}
}

// Push replaces the pending message
func (f *FlashStore) Push(ctx context.Context, visitor string, flash views.Flash) {
	payload, err := json.Marshal(flash)
	if err != nil {
		return
	}
	if err := f.storage.Set(ctx, visitor, storage.KeyFlash, string(payload)); err != nil {
		f.logger.WithError(err).WithField("visitor", visitor).Warn("Failed to store flash message")
	}
}

// Pop returns the pending message and forgets it
func (f *FlashStore) Pop(ctx context.Context, visitor string) *views.Flash {
	raw, err := f.storage.Get(ctx, visitor, storage.KeyFlash)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			f.logger.WithError(err).WithField("visitor", visitor).Warn("Failed to read flash message")
		}
		return nil
	}

	if err := f.storage.Delete(ctx, visitor, storage.KeyFlash); err != nil {
		f.logger.WithError(err).WithField("visitor", visitor).Warn("Failed to clear flash message")
	}

	var flash views.Flash
	if err := json.Unmarshal([]byte(raw), &flash); err != nil || flash.Message == "" {
		return nil
	}
	return &flash
}
