package storage

import "context"

// Provider is a persistent string-keyed store of JSON documents. It is the
// only shared mutable resource in the program: every repository owns one
// key and never touches another repository's key.
//
// Values are opaque bytes at this level; the typed helpers in this package
// take care of JSON encoding, corruption handling and quota checks.
type Provider interface {
	// Lifecycle
	Init(ctx context.Context) error
	Load(ctx context.Context) error
	Close() error

	// GetRaw returns the stored bytes for key. ok is false when the key is absent.
	GetRaw(ctx context.Context, key string) (value []byte, ok bool, err error)
	// SetRaw replaces the whole value stored under key.
	SetRaw(ctx context.Context, key string, value []byte) error
	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
	// Keys lists every stored key in lexical order.
	Keys(ctx context.Context) ([]string, error)

	// Utils
	Path() string
}
