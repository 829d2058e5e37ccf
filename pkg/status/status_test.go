package status

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/herobook/pkg/errors"
)

func stores(t *testing.T) map[string]Store {
	t.Helper()
	fs, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	return map[string]Store{
		"memory": NewMemoryStore(),
		"file":   fs,
	}
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := store.Get(ctx, "ORDER-1"); !stderrors.Is(err, ErrNotFound) {
				t.Fatalf("Get() missing error = %v, want ErrNotFound", err)
			}

			rec := Processing("ORDER-1")
			if err := store.Set(ctx, rec); err != nil {
				t.Fatalf("Set() error = %v", err)
			}
			got, err := store.Get(ctx, "ORDER-1")
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if got.State != StateProcessing || got.RenderID != rec.RenderID {
				t.Errorf("Get() = %+v, want processing with render id %s", got, rec.RenderID)
			}

			rec.Complete(16, URLs{Book: "https://x/ORDER-1/book.pdf"})
			if err := store.Set(ctx, rec); err != nil {
				t.Fatal(err)
			}
			got, _ = store.Get(ctx, "ORDER-1")
			if got.State != StateCompleted || got.PagesRendered != 16 || got.CompletedAt == nil {
				t.Errorf("Get() after Complete = %+v", got)
			}
			if got.URLs.Book != "https://x/ORDER-1/book.pdf" {
				t.Errorf("URLs.Book = %q", got.URLs.Book)
			}
		})
	}
}

func TestStoreList(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			for i, id := range []string{"A", "B", "C"} {
				rec := Processing(id)
				rec.StartedAt = base.Add(time.Duration(i) * time.Minute)
				if err := store.Set(ctx, rec); err != nil {
					t.Fatal(err)
				}
			}

			all, err := store.List(ctx, 0)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			var ids []string
			for _, r := range all {
				ids = append(ids, r.OrderID)
			}
			if len(ids) != 3 || ids[0] != "C" || ids[2] != "A" {
				t.Errorf("List() order = %v, want [C B A]", ids)
			}

			two, _ := store.List(ctx, 2)
			if len(two) != 2 {
				t.Errorf("List(2) returned %d records", len(two))
			}
		})
	}
}

func TestRecordTransitions(t *testing.T) {
	a, b := Processing("X"), Processing("X")
	if a.RenderID == b.RenderID {
		t.Error("render ids should differ between attempts")
	}
	if a.Done() {
		t.Error("processing record reported done")
	}

	a.Fail(errors.New(errors.ErrCodeDocumentBuild, "finalize failed"))
	if a.State != StateFailed || a.FailedAt == nil || !a.Done() {
		t.Errorf("after Fail: %+v", a)
	}
	if a.Error != "finalize failed" {
		t.Errorf("Error = %q, want user message", a.Error)
	}
}

func TestFileStoreRejectsTraversal(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(filepath.Join(dir, "status"))
	if err != nil {
		t.Fatal(err)
	}
	rec := Processing("../escape")
	if err := store.Set(context.Background(), rec); err == nil {
		t.Fatal("Set() accepted a path-like order id")
	}
	if _, err := os.Stat(filepath.Join(dir, "escape.json")); !os.IsNotExist(err) {
		t.Error("record escaped the store directory")
	}
}

func TestNew(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		backend string
		wantErr bool
	}{
		{"", false},
		{BackendMemory, false},
		{BackendFile, false},
		{BackendRedis, false},
		{BackendMongo, true}, // no uri
		{"sqlite", true},
	}
	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			s, err := New(ctx, Options{Backend: tt.backend, Dir: t.TempDir()})
			if (err != nil) != tt.wantErr {
				t.Fatalf("New(%q) error = %v, wantErr %v", tt.backend, err, tt.wantErr)
			}
			if s != nil {
				s.Close()
			}
		})
	}
}
