// Package repository is the record store: it persists named collections of
// records as JSON documents in a key-value Storage.
//
// Every mutation in the system follows the same shape:
//
//	read the full collection → change it in memory → write the full collection
//
// There are no partial updates. Collection.Update runs that cycle under the
// store's lock so two HTTP requests can't interleave their read and write.
package repository

import (
	"context"
)

// Keys of every value the dashboard persists.
const (
	KeyUser     = "focusboard_user"
	KeyUsers    = "focusboard_users"
	KeyTodos    = "focusboard_todos"
	KeyEvents   = "focusboard_events"
	KeyNotes    = "focusboard_notes"
	KeyTheme    = "focusboard_theme"
	KeyRemember = "focusboard_remember"
)

// Storage is a flat string-to-string key-value store.
//
// Get reports ok=false when the key has never been written (or was removed),
// which the store treats the same as an empty collection.
type Storage interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, keys ...string) error
}
