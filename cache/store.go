package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// DocumentStore is the key/value + path-query store backing every cached
// document. Implementations must be safe for concurrent use.
type DocumentStore interface {
	// Get returns the whole document stored under key. The boolean is false
	// when the key is absent or expired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// GetPath returns a JSON array holding every match of path inside the
	// document. The boolean is false only when the key itself is absent.
	GetPath(ctx context.Context, key string, path Path) ([]byte, bool, error)

	// Set replaces the whole document under key and clears its expiry.
	Set(ctx context.Context, key string, doc []byte) error

	// SetPath writes doc at path. Only root and literal-key paths are writable.
	SetPath(ctx context.Context, key string, path Path, doc []byte) error

	// Expire arms the key's expiry. Expiring an absent key is a no-op.
	Expire(ctx context.Context, key string, ttl time.Duration) error

	Delete(ctx context.Context, key string) error
}

// ExpiringWriter is implemented by stores that can write a document and arm
// its expiry in one atomic step.
type ExpiringWriter interface {
	SetWithExpiry(ctx context.Context, key string, doc []byte, ttl time.Duration) error
}

// Populate writes doc wholesale under key and arms its expiry. A document is
// never left behind without its TTL: stores implementing ExpiringWriter do
// both in one step, and otherwise a failed Expire deletes the key again.
func Populate(ctx context.Context, store DocumentStore, key string, ttl time.Duration, doc []byte) error {
	if w, ok := store.(ExpiringWriter); ok {
		if err := w.SetWithExpiry(ctx, key, doc, ttl); err != nil {
			return NewError(KindCacheWrite, "set with expiry", key, err)
		}
		return nil
	}

	if err := store.Set(ctx, key, doc); err != nil {
		return NewError(KindCacheWrite, "set", key, err)
	}
	if err := store.Expire(ctx, key, ttl); err != nil {
		if delErr := store.Delete(context.WithoutCancel(ctx), key); delErr != nil {
			err = errors.Join(err, delErr)
		}
		return NewError(KindCacheWrite, "expire", key, err)
	}
	return nil
}

// FirstMatch returns the first element of a GetPath reply.
// An empty reply reports false with no error.
func FirstMatch(raw []byte) (json.RawMessage, bool, error) {
	var matches []json.RawMessage
	if err := json.Unmarshal(raw, &matches); err != nil {
		return nil, false, err
	}
	if len(matches) == 0 {
		return nil, false, nil
	}
	return matches[0], true, nil
}
