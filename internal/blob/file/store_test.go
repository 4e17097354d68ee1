package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := NewStore(filepath.Join(dir, "data"))
	if err != nil {
		t.Fatalf("NewStore err = %v", err)
	}

	if _, ok, err := s.Get(ctx, "parameters"); err != nil || ok {
		t.Fatalf("Get(absent) = ok=%v err=%v, want absent", ok, err)
	}

	doc := `{"maxDistance":150}`
	if err := s.Set(ctx, "parameters", doc); err != nil {
		t.Fatalf("Set err = %v", err)
	}
	got, ok, err := s.Get(ctx, "parameters")
	if err != nil || !ok || got != doc {
		t.Fatalf("Get = %q ok=%v err=%v", got, ok, err)
	}

	// No temp file may survive a completed write.
	if _, err := os.Stat(filepath.Join(dir, "data", "parameters.json.tmp")); !os.IsNotExist(err) {
		t.Errorf("temp file left behind: %v", err)
	}

	if err := s.Remove(ctx, "parameters"); err != nil {
		t.Fatalf("Remove err = %v", err)
	}
	if _, ok, _ := s.Get(ctx, "parameters"); ok {
		t.Fatal("key still present after Remove")
	}
	if err := s.Remove(ctx, "parameters"); err != nil {
		t.Fatalf("Remove(absent) err = %v", err)
	}
}

func TestStoreRejectsPathKeys(t *testing.T) {
	ctx := context.Background()
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore err = %v", err)
	}
	for _, key := range []string{"", "../escape", `a\b`} {
		if err := s.Set(ctx, key, "x"); err == nil {
			t.Errorf("Set(%q) accepted an invalid key", key)
		}
	}
}
