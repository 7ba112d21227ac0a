// internal/domain/session/store.go
package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/ecommerce-storefront/internal/domain/events"
	"github.com/your-org/ecommerce-storefront/internal/infrastructure/storage"
	"github.com/your-org/ecommerce-storefront/internal/pkg/auth"
)

// Store keeps a visitor's bearer token and cached user under two keys
type Store struct {
	storage   storage.Storage
	publisher events.Publisher
	logger    *logrus.Logger
	now       func() time.Time
}

// NewStore creates a session store
func NewStore(st storage.Storage, publisher events.Publisher, logger *logrus.Logger) *Store {
	return &Store{
		storage:   st,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// SetSession persists the token and user snapshot after a successful login
func (s *Store) SetSession(ctx context.Context, visitor, token string, user UserSnapshot) {
	if err := s.storage.Set(ctx, visitor, storage.KeyToken, token); err != nil {
		s.log(visitor).WithError(err).Warn("Failed to persist token")
	}
	s.writeUser(ctx, visitor, user)
	s.notify(ctx, visitor)
}

// UpdateCachedUser refreshes the cached snapshot, e.g. after /users/me
func (s *Store) UpdateCachedUser(ctx context.Context, visitor string, user UserSnapshot) {
	if cached, ok := s.GetCachedUser(ctx, visitor); ok && *cached == user {
		return
	}
	s.writeUser(ctx, visitor, user)
	s.notify(ctx, visitor)
}

// GetToken returns the stored token. A JWT whose expiry has passed is
// treated as absent and the session is cleared.
func (s *Store) GetToken(ctx context.Context, visitor string) (string, bool) {
	token, err := s.storage.Get(ctx, visitor, storage.KeyToken)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.log(visitor).WithError(err).Warn("Failed to read token")
		}
		return "", false
	}
	if token == "" {
		return "", false
	}

	if auth.InspectToken(token).Expired(s.now()) {
		s.log(visitor).Info("Dropping expired session")
		s.ClearSession(ctx, visitor)
		return "", false
	}

	return token, true
}

// GetCachedUser returns the cached user snapshot, if any
func (s *Store) GetCachedUser(ctx context.Context, visitor string) (*UserSnapshot, bool) {
	raw, err := s.storage.Get(ctx, visitor, storage.KeyUser)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.log(visitor).WithError(err).Warn("Failed to read cached user")
		}
		return nil, false
	}

	var user UserSnapshot
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		s.log(visitor).WithError(err).Warn("Discarding unreadable cached user")
		return nil, false
	}
	if user.ID == "" && user.Email == "" {
		return nil, false
	}
	return &user, true
}

// ClearSession removes the token and cached user
func (s *Store) ClearSession(ctx context.Context, visitor string) {
	if err := s.storage.Delete(ctx, visitor, storage.KeyToken, storage.KeyUser); err != nil {
		s.log(visitor).WithError(err).Warn("Failed to clear session")
	}
	s.notify(ctx, visitor)
}

func (s *Store) writeUser(ctx context.Context, visitor string, user UserSnapshot) {
	payload, err := json.Marshal(user)
	if err != nil {
		s.log(visitor).WithError(err).Warn("Failed to encode user")
		return
	}
	if err := s.storage.Set(ctx, visitor, storage.KeyUser, string(payload)); err != nil {
		s.log(visitor).WithError(err).Warn("Failed to persist user")
	}
}

func (s *Store) notify(ctx context.Context, visitor string) {
	s.publisher.Publish(ctx, events.Event{
		Visitor: visitor,
		Topic:   events.TopicSessionUpdated,
	})
}

func (s *Store) log(visitor string) *logrus.Entry {
	return s.logger.WithFields(logrus.Fields{
		"component": "session",
		"visitor":   visitor,
	})
}
