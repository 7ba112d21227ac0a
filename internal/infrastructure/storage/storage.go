// internal/infrastructure/storage/storage.go
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key has never been written or was deleted
var ErrNotFound = errors.New("storage: key not found")

// Well-known keys inside a visitor namespace
const (
	KeyCart            = "cart"
	KeyToken           = "token"
	KeyUser            = "user"
	KeyTheme           = "theme"
	KeyFlash           = "flash"
	KeyCheckoutAddress = "checkout_address"
)

// Storage persists small string blobs per visitor namespace.
//
// A namespace is one visitor's private key space: the server-side stand-in
// for a browser's local storage. Implementations must be safe for
// concurrent use.
type Storage interface {
	Get(ctx context.Context, namespace, key string) (string, error)
	Set(ctx context.Context, namespace, key, value string) error
	Delete(ctx context.Context, namespace string, keys ...string) error
}
