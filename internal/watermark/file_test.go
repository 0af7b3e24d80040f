package watermark

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lastrun")
	store := NewFileStore(path)
	ctx := context.Background()

	if err := store.Save(ctx, "2023-01-01T00:00:00"); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got != "2023-01-01T00:00:00" {
		t.Errorf("Load() = %q, want %q", got, "2023-01-01T00:00:00")
	}
}

func TestFileStoreMissingFileIsAbsent(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "does-not-exist"))

	got, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() on missing file error = %v, want nil", err)
	}
	if got != "" {
		t.Errorf("Load() = %q, want empty", got)
	}
}

func TestFileStoreEmptyFileIsAbsent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lastrun")
	if err := os.WriteFile(path, []byte("\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := NewFileStore(path).Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got != "" {
		t.Errorf("Load() = %q, want empty", got)
	}
}

func TestFileStoreSaveOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lastrun")
	store := NewFileStore(path)
	ctx := context.Background()

	if err := store.Save(ctx, "2023-01-01T00:00:00"); err != nil {
		t.Fatal(err)
	}
	if err := store.Save(ctx, "2024-06-15T12:30:00"); err != nil {
		t.Fatal(err)
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got != "2024-06-15T12:30:00" {
		t.Errorf("Load() = %q, want the newer value", got)
	}
}

func TestFileStoreClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lastrun")
	store := NewFileStore(path)
	ctx := context.Background()

	if err := store.Save(ctx, "2023-01-01T00:00:00"); err != nil {
		t.Fatal(err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got != "" {
		t.Errorf("Load() after Clear() = %q, want empty", got)
	}

	// Clearing an already-absent watermark is not an error.
	if err := store.Clear(ctx); err != nil {
		t.Errorf("Clear() on missing file error = %v, want nil", err)
	}
}
