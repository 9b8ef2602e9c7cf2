package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/rs/xid"
)

// Store wraps a Storage with JSON encoding, id generation and a single lock
// that serialises every read-modify-write.
type Store struct {
	kv     Storage
	logger *slog.Logger
	mu     sync.Mutex
}

// NewStore creates a Store over kv.
func NewStore(kv Storage, logger *slog.Logger) *Store {
	return &Store{kv: kv, logger: logger}
}

// NewID returns a fresh record id.
//
// ID GENERATION WITH xid:
// xid ids are 20 chars, URL-safe and sortable by creation time, and unlike a
// raw millisecond timestamp two records created in the same tick still get
// different ids (xid appends a per-process counter).
func (s *Store) NewID() string {
	return xid.New().String()
}

// GetString returns the raw value stored under key, or "" if unset.
func (s *Store) GetString(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, _, err := s.kv.Get(ctx, key)
	if err != nil {
		return "", fmt.Errorf("store: reading %s: %w", key, err)
	}
	return v, nil
}

// SetString stores a raw string value under key.
func (s *Store) SetString(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Set(ctx, key, value); err != nil {
		return fmt.Errorf("store: writing %s: %w", key, err)
	}
	return nil
}

// Remove deletes every given key. Missing keys are not an error.
func (s *Store) Remove(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Remove(ctx, keys...); err != nil {
		return fmt.Errorf("store: removing %v: %w", keys, err)
	}
	return nil
}

// decode unmarshals the value under key into dst.
// It returns false when the key is unset or holds something that doesn't
// decode as the expected shape; the caller then behaves as if nothing was
// stored. Only Storage failures are returned as errors.
func (s *Store) decode(ctx context.Context, key string, dst any) (bool, error) {
	raw, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("store: reading %s: %w", key, err)
	}
	if !ok || raw == "" {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		s.logger.Warn("discarding unreadable stored value",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return false, nil
	}
	return true, nil
}

func (s *Store) encode(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("store: encoding %s: %w", key, err)
	}
	if err := s.kv.Set(ctx, key, string(b)); err != nil {
		return fmt.Errorf("store: writing %s: %w", key, err)
	}
	return nil
}

// Collection is a named, persisted sequence of records of one kind.
//
// WHY GENERICS?
// Todos, events, notes and accounts are all stored the same way. A type
// parameter lets one implementation load and save each of them while the
// services still work with concrete []model.Todo, []model.Note, etc.
type Collection[T any] struct {
	store *Store
	key   string
}

// NewCollection binds a collection of T to key.
func NewCollection[T any](store *Store, key string) *Collection[T] {
	return &Collection[T]{store: store, key: key}
}

// NewID returns a fresh id for a record about to be inserted.
func (c *Collection[T]) NewID() string { return c.store.NewID() }

// Load returns the stored records in store order. A missing or unreadable
// collection loads as an empty, non-nil slice.
func (c *Collection[T]) Load(ctx context.Context) ([]T, error) {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	return c.load(ctx)
}

func (c *Collection[T]) load(ctx context.Context) ([]T, error) {
	var records []T
	ok, err := c.store.decode(ctx, c.key, &records)
	if err != nil {
		return nil, err
	}
	if !ok || records == nil {
		return []T{}, nil
	}
	return records, nil
}

// Save overwrites the stored collection with records.
func (c *Collection[T]) Save(ctx context.Context, records []T) error {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	return c.save(ctx, records)
}

func (c *Collection[T]) save(ctx context.Context, records []T) error {
	if records == nil {
		records = []T{}
	}
	return c.store.encode(ctx, c.key, records)
}

// Update loads the collection, hands it to fn and saves whatever fn returns.
// If fn returns an error nothing is written.
func (c *Collection[T]) Update(ctx context.Context, fn func([]T) ([]T, error)) error {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	records, err := c.load(ctx)
	if err != nil {
		return err
	}
	updated, err := fn(records)
	if err != nil {
		return err
	}
	return c.save(ctx, updated)
}

// Clear removes the whole collection.
func (c *Collection[T]) Clear(ctx context.Context) error {
	return c.store.Remove(ctx, c.key)
}

// Document is a persisted singleton record, e.g. the active session.
type Document[T any] struct {
	store *Store
	key   string
}

// NewDocument binds a singleton of T to key.
func NewDocument[T any](store *Store, key string) *Document[T] {
	return &Document[T]{store: store, key: key}
}

// Get returns the stored record, or nil if none is stored (or it can't be
// decoded).
func (d *Document[T]) Get(ctx context.Context) (*T, error) {
	d.store.mu.Lock()
	defer d.store.mu.Unlock()

	var v T
	ok, err := d.store.decode(ctx, d.key, &v)
	if err != nil || !ok {
		return nil, err
	}
	return &v, nil
}

// Put overwrites the stored record.
func (d *Document[T]) Put(ctx context.Context, v T) error {
	d.store.mu.Lock()
	defer d.store.mu.Unlock()
	return d.store.encode(ctx, d.key, v)
}

// Clear removes the stored record.
func (d *Document[T]) Clear(ctx context.Context) error {
	return d.store.Remove(ctx, d.key)
}
