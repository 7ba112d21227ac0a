package theme

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/ecommerce-storefront/internal/domain/events"
	"github.com/your-org/ecommerce-storefront/internal/infrastructure/storage"
	"github.com/your-org/ecommerce-storefront/internal/pkg/logger"
)

type brokenStorage struct{ storage.Storage }

func (brokenStorage) Get(context.Context, string, string) (string, error) {
	return "", errors.New("connection refused")
}

func (brokenStorage) Set(context.Context, string, string, string) error {
	return errors.New("connection refused")
}

func TestParse(t *testing.T) {
	assert.Equal(t, Dark, Parse("dark"))
	assert.Equal(t, Dark, Parse(` "Dark" `))
	assert.Equal(t, Light, Parse("light"))
	assert.Equal(t, Theme(""), Parse("no-preference"))
	assert.Equal(t, Theme(""), Parse(""))
}

func TestReadFallbacks(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	s := NewStore(mem, events.NewBus(), logger.Discard())

	assert.Equal(t, Light, s.Read(ctx, "v", ""))
	assert.Equal(t, Dark, s.Read(ctx, "v", Dark), "OS preference applies when unset")

	require.NoError(t, mem.Set(ctx, "v", storage.KeyTheme, "light"))
	assert.Equal(t, Light, s.Read(ctx, "v", Dark), "persisted value wins")

	require.NoError(t, mem.Set(ctx, "v", storage.KeyTheme, "purple"))
	assert.Equal(t, Dark, s.Read(ctx, "v", Dark), "invalid persisted value is ignored")
}

func TestTogglePersistsAndNotifies(t *testing.T) {
	ctx := context.Background()
	bus := events.NewBus()
	sub := bus.Subscribe("v")
	defer sub.Close()
	s := NewStore(storage.NewMemory(), bus, logger.Discard())

	assert.Equal(t, Dark, s.Toggle(ctx, "v", ""))
	evt := <-sub.C
	assert.Equal(t, events.TopicThemeUpdated, evt.Topic)
	assert.Equal(t, Dark, s.Read(ctx, "v", Light))

	assert.Equal(t, Light, s.Toggle(ctx, "v", ""))
	assert.Equal(t, Light, s.Read(ctx, "v", Dark))
}

func TestToggleSwallowsStorageFailure(t *testing.T) {
	s := NewStore(brokenStorage{}, events.NewBus(), logger.Discard())

	assert.Equal(t, Light, s.Read(context.Background(), "v", ""))
	assert.Equal(t, Dark, s.Toggle(context.Background(), "v", ""))
}
