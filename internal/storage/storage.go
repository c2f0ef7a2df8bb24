package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/julianstephens/tarot/internal/constants"
	"github.com/julianstephens/tarot/internal/logger"
)

// MaxValueBytes is the largest encoded value Put accepts for a single key.
var MaxValueBytes = constants.MaxValueBytes

// GetList decodes the list stored under key. A missing key or a value that
// is not valid JSON yields an empty list: corruption is treated as "no
// data" and only logged. Read failures of the store itself are returned.
func GetList[T any](ctx context.Context, p Provider, key string) ([]T, error) {
	raw, ok, err := p.GetRaw(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if !ok || len(raw) == 0 {
		return []T{}, nil
	}

	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		logger.Warn("Ignoring corrupt stored value", "key", key, "error", err)
		return []T{}, nil
	}
	if items == nil {
		// "null" decodes to a nil slice
		items = []T{}
	}
	return items, nil
}

// GetValue decodes the single object stored under key. It returns nil when
// the key is absent or the value is corrupt.
func GetValue[T any](ctx context.Context, p Provider, key string) (*T, error) {
	raw, ok, err := p.GetRaw(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if !ok || len(raw) == 0 {
		return nil, nil
	}

	var v *T
	if err := json.Unmarshal(raw, &v); err != nil {
		logger.Warn("Ignoring corrupt stored value", "key", key, "error", err)
		return nil, nil
	}
	return v, nil
}

// Put encodes v and stores it under key, replacing the previous value.
// Encoding failures, quota violations and write failures are returned as
// *PersistenceError. ErrOffline is passed through unwrapped.
func Put(ctx context.Context, p Provider, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return &PersistenceError{Key: key, Err: fmt.Errorf("failed to serialize value: %w", err)}
	}
	if err := CheckQuota(key, data); err != nil {
		return err
	}

	if err := p.SetRaw(ctx, key, data); err != nil {
		if errors.Is(err, ErrOffline) || IsPersistence(err) {
			return err
		}
		return &PersistenceError{Key: key, Err: err}
	}
	return nil
}

// CheckQuota returns a *PersistenceError wrapping ErrQuotaExceeded when
// data is larger than MaxValueBytes.
func CheckQuota(key string, data []byte) error {
	if len(data) > MaxValueBytes {
		return &PersistenceError{Key: key, Err: fmt.Errorf("%w: %d bytes > %d", ErrQuotaExceeded, len(data), MaxValueBytes)}
	}
	return nil
}

// Delete removes key. Failures are reported like Put failures.
func Delete(ctx context.Context, p Provider, key string) error {
	if err := p.Remove(ctx, key); err != nil {
		if errors.Is(err, ErrOffline) || IsPersistence(err) {
			return err
		}
		return &PersistenceError{Key: key, Err: err}
	}
	return nil
}
