// Package kv provides the key-value storage layer behind the session archive.
// Keys are hierarchical string paths (e.g. ["session", "u1", "id"]) encoded
// with a '/' separator. A BadgerDB implementation backs the archive server;
// an in-memory implementation backs tests.
package kv

import (
	"context"
	"errors"
	"iter"
	"strings"
)

// ErrNotFound is returned when a key does not exist in the store.
var ErrNotFound = errors.New("kv: not found")

// separator joins key segments in the encoded representation. Segments must
// not contain it.
const separator = '/'

// Key is a hierarchical path represented as a slice of string segments.
type Key []string

// String returns the encoded key, for display and storage alike.
func (k Key) String() string {
	return strings.Join(k, string(separator))
}

func encodeKey(k Key) []byte {
	return []byte(k.String())
}

func decodeKey(b []byte) Key {
	return Key(strings.Split(string(b), string(separator)))
}

// Entry is a key-value pair yielded by List.
type Entry struct {
	Key   Key
	Value []byte
}

// Store is a key-value store with prefix iteration. List yields entries in
// lexicographic order of the encoded key, which the archive relies on for
// message ordering.
type Store interface {
	// Get retrieves the value for a key. Returns ErrNotFound if not present.
	Get(ctx context.Context, key Key) ([]byte, error)

	// Set stores a key-value pair, overwriting any existing value.
	Set(ctx context.Context, key Key, value []byte) error

	// Delete removes a key. No error if the key does not exist.
	Delete(ctx context.Context, key Key) error

	// List iterates over all entries whose key starts with the given prefix
	// segments, in lexicographic order of the encoded key.
	List(ctx context.Context, prefix Key) iter.Seq2[Entry, error]

	// Close releases any resources held by the store.
	Close() error
}
