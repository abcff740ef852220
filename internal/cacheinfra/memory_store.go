package cacheinfra

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/goliatone/go-market-cache/cache"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"github.com/viccon/sturdyc"
)

// envelope is the immutable unit stored in sturdyc. Writers always store a
// fresh envelope so readers never observe a partially written document.
type envelope struct {
	doc       []byte
	expiresAt time.Time // zero means no expiry
}

func (e envelope) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// MemoryStore is an in-process cache.DocumentStore built on sturdyc for
// storage and gjson/sjson for path queries.
type MemoryStore struct {
	client *sturdyc.Client[envelope]
	now    func() time.Time

	// serializes read-modify-write operations on a key
	mu sync.Mutex
}

var (
	_ cache.DocumentStore  = (*MemoryStore)(nil)
	_ cache.ExpiringWriter = (*MemoryStore)(nil)
)

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithClock overrides the clock used to evaluate per-key expiry.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) {
		s.now = now
	}
}

// NewMemoryStore validates cfg and creates the sturdyc client.
//
// sturdyc applies one TTL to every record, so cfg.TTL only acts as a backstop;
// the per-key expiry armed through Expire is evaluated on every read.
func NewMemoryStore(cfg cache.MemoryConfig, opts ...MemoryOption) (*MemoryStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("memory store config: %w", err)
	}

	var options []sturdyc.Option
	if cfg.EvictionInterval > 0 {
		options = append(options, sturdyc.WithEvictionInterval(cfg.EvictionInterval))
	}

	s := &MemoryStore{
		client: sturdyc.New[envelope](
			cfg.Capacity,
			cfg.NumShards,
			cfg.TTL,
			cfg.EvictionPercentage,
			options...,
		),
		now: time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

func (s *MemoryStore) load(key string) (envelope, bool) {
	env, ok := s.client.Get(key)
	if !ok || env.expired(s.now()) {
		return envelope{}, false
	}
	return env, true
}

// Get implements cache.DocumentStore.
func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	env, ok := s.load(key)
	if !ok {
		return nil, false, nil
	}
	return env.doc, true, nil
}

// GetPath implements cache.DocumentStore. The reply is always a JSON array.
func (s *MemoryStore) GetPath(ctx context.Context, key string, path cache.Path) ([]byte, bool, error) {
	env, ok := s.load(key)
	if !ok {
		return nil, false, nil
	}
	return query(env.doc, path), true, nil
}

// Set implements cache.DocumentStore.
func (s *MemoryStore) Set(ctx context.Context, key string, doc []byte) error {
	if !gjson.ValidBytes(doc) {
		return fmt.Errorf("set %s: invalid json document", key)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.client.Set(key, envelope{doc: bytes.Clone(doc)})
	return nil
}

// SetWithExpiry implements cache.ExpiringWriter. A non-positive ttl stores the
// document without expiry.
func (s *MemoryStore) SetWithExpiry(ctx context.Context, key string, doc []byte, ttl time.Duration) error {
	if !gjson.ValidBytes(doc) {
		return fmt.Errorf("set %s: invalid json document", key)
	}

	env := envelope{doc: bytes.Clone(doc)}
	if ttl > 0 {
		env.expiresAt = s.now().Add(ttl)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.client.Set(key, env)
	return nil
}

// SetPath implements cache.DocumentStore. Literal-key writes require the
// document to exist, as RedisJSON does for non-root paths.
func (s *MemoryStore) SetPath(ctx context.Context, key string, path cache.Path, doc []byte) error {
	if path.IsRoot() {
		return s.Set(ctx, key, doc)
	}

	name, ok := path.Literal()
	if !ok {
		return fmt.Errorf("set %s at %s: %w", key, path, cache.ErrUnsupportedPath)
	}
	if !gjson.ValidBytes(doc) {
		return fmt.Errorf("set %s at %s: invalid json value", key, path)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	env, ok := s.load(key)
	if !ok {
		return fmt.Errorf("set %s at %s: new documents must be created at the root", key, path)
	}

	updated, err := sjson.SetRawBytes(bytes.Clone(env.doc), gjson.Escape(name), doc)
	if err != nil {
		return fmt.Errorf("set %s at %s: %w", key, path, err)
	}

	s.client.Set(key, envelope{doc: updated, expiresAt: env.expiresAt})
	return nil
}

// Expire implements cache.DocumentStore. A non-positive ttl deletes the key.
func (s *MemoryStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	env, ok := s.load(key)
	if !ok {
		return nil
	}
	if ttl <= 0 {
		s.client.Delete(key)
		return nil
	}

	s.client.Set(key, envelope{doc: env.doc, expiresAt: s.now().Add(ttl)})
	return nil
}

// Delete implements cache.DocumentStore.
func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.client.Delete(key)
	return nil
}

// query evaluates path against doc and returns the matches as a JSON array.
func query(doc []byte, path cache.Path) []byte {
	if path.IsRoot() {
		return wrapArray([][]byte{doc})
	}

	if name, ok := path.Literal(); ok {
		res := gjson.GetBytes(doc, gjson.Escape(name))
		if !res.Exists() {
			return []byte("[]")
		}
		return wrapArray([][]byte{[]byte(res.Raw)})
	}

	field, value, _ := path.Filter()
	fieldPath := gjson.Escape(field)

	var matches [][]byte
	gjson.ParseBytes(doc).ForEach(func(_, elem gjson.Result) bool {
		got := elem.Get(fieldPath)
		if got.Type == gjson.String && got.Str == value {
			matches = append(matches, []byte(elem.Raw))
		}
		return true
	})
	return wrapArray(matches)
}

func wrapArray(items [][]byte) []byte {
	var b bytes.Buffer
	b.WriteByte('[')
	for i, item := range items {
		if i > 0 {
			b.WriteByte(',')
		}
		b.Write(item)
	}
	b.WriteByte(']')
	return b.Bytes()
}
