package kv_test

import (
	"context"
	"errors"
	"testing"

	"github.com/livemind/livemind/pkg/kv"
)

func newBadgerStore(t *testing.T) kv.Store {
	t.Helper()
	s, err := kv.NewBadger(kv.BadgerOptions{InMemory: true})
	if err != nil {
		t.Fatalf("NewBadger: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestBadgerGetSet(t *testing.T) {
	ctx := context.Background()
	s := newBadgerStore(t)

	key := kv.Key{"session", "u1", "abc"}
	if _, err := s.Get(ctx, key); !errors.Is(err, kv.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.Set(ctx, key, []byte("v")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := s.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "v" {
		t.Fatalf("Get = %q, want %q", got, "v")
	}
}

func TestBadgerListOrder(t *testing.T) {
	ctx := context.Background()
	s := newBadgerStore(t)

	for _, seq := range []string{"0002", "0001", "0003"} {
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
	if len(got) != len(want) {
		t.Fatalf("List = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("List order = %v, want %v", got, want)
		}
	}
}

func TestBadgerRequiresDir(t *testing.T) {
	if _, err := kv.NewBadger(kv.BadgerOptions{}); err == nil {
		t.Fatal("expected error for missing Dir")
	}
}
