// internal/domain/theme/store.go
package theme

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/your-org/ecommerce-storefront/internal/domain/events"
	"github.com/your-org/ecommerce-storefront/internal/infrastructure/storage"
)

// Theme is the visitor's display preference
type Theme string

const (
	Light Theme = "light"
	Dark  Theme = "dark"
)

// ClientHintHeader carries the operating system colour scheme when the
// browser has been asked for it via Accept-CH
const ClientHintHeader = "Sec-CH-Prefers-Color-Scheme"

// Parse returns the theme named by s, or "" when s is neither light nor dark
func Parse(s string) Theme {
	switch Theme(strings.ToLower(strings.Trim(strings.TrimSpace(s), `"`))) {
	case Light:
		return Light
	case Dark:
		return Dark
	}
	return ""
}

// Opposite returns the other theme
func (t Theme) Opposite() Theme {
	if t == Dark {
		return Light
	}
	return Dark
}

// Store persists the theme under storage.KeyTheme
type Store struct {
	storage   storage.Storage
	publisher events.Publisher
	logger    *logrus.Logger
}

// NewStore creates a theme store
func NewStore(st storage.Storage, publisher events.Publisher, logger *logrus.Logger) *Store {
	return &Store{
		storage:   st,
		publisher: publisher,
		logger:    logger,
	}
}

// Read resolves the theme to paint: the persisted value, then the OS
// preference, then Light
func (s *Store) Read(ctx context.Context, visitor string, osPreference Theme) Theme {
	raw, err := s.storage.Get(ctx, visitor, storage.KeyTheme)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		s.logger.WithFields(logrus.Fields{
			"component": "theme",
			"visitor":   visitor,
		}).WithError(err).Warn("Failed to read theme")
	}
	if t := Parse(raw); t != "" {
		return t
	}
	if t := Parse(string(osPreference)); t != "" {
		return t
	}
	return Light
}

// Toggle flips the current theme, persists it and notifies mounted views
func (s *Store) Toggle(ctx context.Context, visitor string, osPreference Theme) Theme {
	next := s.Read(ctx, visitor, osPreference).Opposite()

	if err := s.storage.Set(ctx, visitor, storage.KeyTheme, string(next)); err != nil {
		s.logger.WithFields(logrus.Fields{
			"component": "theme",
			"visitor":   visitor,
		}).WithError(err).Warn("Failed to persist theme")
	}

	s.publisher.Publish(ctx, events.Event{
		Visitor: visitor,
		Topic:   events.TopicThemeUpdated,
	})
	return next
}
