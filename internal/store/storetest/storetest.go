// Package storetest holds the behavior every storage backend must share.
package storetest

import (
	"context"
	"testing"
)

// Backend mirrors store.Backend. It is redeclared here so backend packages
// can use this helper from their own tests without an import cycle.
type Backend interface {
	GetItem(ctx context.Context, key string) (string, bool, error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
}

// Run checks absent keys, overwrite and removal. key should be unique to
// the test so shared servers are left as they were found.
func Run(t *testing.T, b Backend, key string) {
	t.Helper()
	ctx := context.Background()
	t.Cleanup(func() { b.RemoveItem(context.Background(), key) })

	if _, ok, err := b.GetItem(ctx, key); err != nil || ok {
		t.Fatalf("absent key: ok=%v err=%v", ok, err)
	}

	if err := b.SetItem(ctx, key, `[{"id":"a"}]`); err != nil {
		t.Fatalf("SetItem: %v", err)
	}
	if err := b.SetItem(ctx, key, "[]"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	v, ok, err := b.GetItem(ctx, key)
	if err != nil || !ok || v != "[]" {
		t.Fatalf("after overwrite: %q ok=%v err=%v", v, ok, err)
	}

	if err := b.RemoveItem(ctx, key); err != nil {
		t.Fatalf("RemoveItem: %v", err)
	}
	if _, ok, _ := b.GetItem(ctx, key); ok {
		t.Error("key still present after remove")
	}
	if err := b.RemoveItem(ctx, key); err != nil {
		t.Errorf("removing an absent key: %v", err)
	}
}
