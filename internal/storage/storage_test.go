package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func stores(t *testing.T) map[string]Blobs {
	t.Helper()

	file, err := NewFile(filepath.Join(t.TempDir(), "data"))
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "flashbeta.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}

	out := map[string]Blobs{
		"memory": NewMemory(),
		"file":   file,
		"sqlite": db,
	}
	t.Cleanup(func() {
		for _, s := range out {
			s.Close()
		}
	})
	return out
}

func TestGetMissingKey(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			got, err := s.Get(ctx, "cards")
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if got != nil {
				t.Errorf("Expected nil for a missing key, but got %q", got)
			}
		})
	}
}

func TestPutOverwrites(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			if err := s.Put(ctx, "cards", []byte("[1]")); err != nil {
				t.Fatalf("Put: %v", err)
			}
			if err := s.Put(ctx, "cards", []byte("[2]")); err != nil {
				t.Fatalf("Put: %v", err)
			}
			got, err := s.Get(ctx, "cards")
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if string(got) != "[2]" {
				t.Errorf("content = %q, want %q", got, "[2]")
			}
		})
	}
}

func TestKeysAreIndependent(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_ = s.Put(ctx, "cards", []byte("a"))
			_ = s.Put(ctx, "cards.corrupt.1", []byte("b"))

			a, _ := s.Get(ctx, "cards")
			b, _ := s.Get(ctx, "cards.corrupt.1")
			if string(a) != "a" || string(b) != "b" {
				t.Errorf("got %q and %q, want \"a\" and \"b\"", a, b)
			}
		})
	}
}

func TestFileRejectsTraversal(t *testing.T) {
	s, err := NewFile(t.TempDir())
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}
	defer s.Close()

	for _, key := range []string{"", "..", "../cards", "a/b", `a\b`} {
		if err := s.Put(context.Background(), key, []byte("x")); err == nil {
			t.Errorf("expected error for key %q", key)
		}
	}
}

func TestFileLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFile(dir)
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}
	defer s.Close()

	if err := s.Put(context.Background(), "cards", []byte("[]")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	for _, e := range entries {
		if e.Name() != "cards.json" && e.Name() != lockName {
			t.Errorf("unexpected file left behind: %s", e.Name())
		}
	}
}

func TestMemoryClosed(t *testing.T) {
	m := NewMemory()
	m.Close()
	if _, err := m.Get(context.Background(), "cards"); err != ErrClosed {
		t.Errorf("Expected ErrClosed, but got %v", err)
	}
}
