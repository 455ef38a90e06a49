package kv_test

import (
	"context"
	"errors"
	"testing"

	"github.com/livemind/livemind/pkg/kv"
)

// newTestStore returns a Store for testing. The memory implementation is
// used here; the badger test reuses the same assertions against the real
// engine in in-memory mode.
func newTestStore(t *testing.T) kv.Store {
	t.Helper()
	s := kv.NewMemory()
	t.Cleanup(func() { s.Close() })
	return s
}

func TestGetSetDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	key := kv.Key{"session", "u1", "abc"}
	val := []byte("hello")

	_, err := s.Get(ctx, key)
	if !errors.Is(err, kv.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := s.Set(ctx, key, val); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := s.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != string(val) {
		t.Fatalf("Get = %q, want %q", got, val)
	}

	if err := s.Set(ctx, key, []byte("world")); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	got, err = s.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get after overwrite: %v", err)
	}
	if string(got) != "world" {
		t.Fatalf("Get = %q, want %q", got, "world")
	}

	if err := s.Delete(ctx, key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	_, err = s.Get(ctx, key)
	if !errors.Is(err, kv.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}

	if err := s.Delete(ctx, kv.Key{"no", "such", "key"}); err != nil {
		t.Fatalf("Delete non-existent: %v", err)
	}
}

func TestListPrefix(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	entries := map[string]kv.Key{
		"a": {"message", "s1", "0001"},
		"b": {"message", "s1", "0002"},
		"c": {"message", "s2", "0001"},
		"d": {"session", "s1"},
	}
	for v, k := range entries {
		if err := s.Set(ctx, k, []byte(v)); err != nil {
			t.Fatalf("Set %v: %v", k, err)
		}
	}

	var got []string
	for e, err := range s.List(ctx, kv.Key{"message", "s1"}) {
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		got = append(got, string(e.Value))
	}
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("List(message/s1) = %v, want [a b]", got)
	}

	// Prefix must match whole segments: "message/s1" must not match "message/s10".
	if err := s.Set(ctx, kv.Key{"message", "s10", "0001"}, []byte("x")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	var count int
	for _, err := range s.List(ctx, kv.Key{"message", "s1"}) {
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		count++
	}
	if count != 2 {
		t.Fatalf("List after s10 insert = %d entries, want 2", count)
	}
}

func TestListOrder(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	// Insert out of order; List must return encoded-key order.
	for _, seq := range []string{"0003", "0001", "0002"} {
		if err := s.Set(ctx, kv.Key{"message", "s1", seq}, []byte(seq)); err != nil {
			t.Fatalf("Set: %v", err)
		}
	}
	var got []string
	for e, err := range s.List(ctx, kv.Key{"message", "s1"}) {
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		got = append(got, string(e.Value))
	}
	want := []string{"0001", "0002", "0003"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("List order = %v, want %v", got, want)
		}
	}
}
