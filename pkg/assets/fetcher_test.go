package assets

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/herobook/pkg/cache"
	"github.com/matzehuels/herobook/pkg/errors"
)

func TestFetcherHTTP(t *testing.T) {
	var flaky atomic.Int32
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		switch r.URL.Path {
		case "/ok.png":
			w.Write([]byte("png-bytes"))
		case "/flaky.png":
			if flaky.Add(1) == 1 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.Write([]byte("eventually"))
		case "/forbidden.png":
			w.WriteHeader(http.StatusForbidden)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := NewFetcher(WithRetry(3, time.Millisecond))
	ctx := context.Background()

	t.Run("ok", func(t *testing.T) {
		data, err := f.Load(ctx, srv.URL+"/ok.png")
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if string(data) != "png-bytes" {
			t.Errorf("Load() = %q, want png-bytes", data)
		}
	})

	t.Run("not found is not retried", func(t *testing.T) {
		before := hits.Load()
		_, err := f.Load(ctx, srv.URL+"/missing.jpg")
		if !stderrors.Is(err, ErrNotFound) {
			t.Errorf("Load() error = %v, want ErrNotFound", err)
		}
		if !errors.Is(err, errors.ErrCodeAssetResolution) {
			t.Errorf("code = %v, want ASSET_RESOLUTION", errors.GetCode(err))
		}
		if n := hits.Load() - before; n != 1 {
			t.Errorf("requests = %d, want 1", n)
		}
	})

	t.Run("transient failure retried", func(t *testing.T) {
		data, err := f.Load(ctx, srv.URL+"/flaky.png")
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if string(data) != "eventually" {
			t.Errorf("Load() = %q", data)
		}
	})

	t.Run("permanent failure", func(t *testing.T) {
		before := hits.Load()
		if _, err := f.Load(ctx, srv.URL+"/forbidden.png"); err == nil {
			t.Error("Load() error = nil, want error")
		}
		if n := hits.Load() - before; n != 1 {
			t.Errorf("requests = %d, want 1", n)
		}
	})
}

func TestFetcherCache(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte("cached"))
	}))
	defer srv.Close()

	f := NewFetcher(WithCache(cache.NewMemoryCache(time.Hour), time.Hour))
	for range 3 {
		if _, err := f.Load(context.Background(), srv.URL+"/bg.jpg"); err != nil {
			t.Fatal(err)
		}
	}
	if n := hits.Load(); n != 1 {
		t.Errorf("requests = %d, want 1 with cache", n)
	}
}

func TestFetcherTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	f := NewFetcher(WithTimeout(50 * time.Millisecond))
	start := time.Now()
	_, err := f.Load(context.Background(), srv.URL+"/slow.png")
	if err == nil {
		t.Fatal("Load() error = nil, want timeout")
	}
	if !errors.Is(err, errors.ErrCodeTimeout) {
		t.Errorf("code = %v, want TIMEOUT", errors.GetCode(err))
	}
	if time.Since(start) > time.Second {
		t.Errorf("Load() took %v, want prompt timeout", time.Since(start))
	}
}

func TestFetcherLocal(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "backgrounds"), 0o755); err != nil {
		t.Fatal(err)
	}
	file := filepath.Join(root, "backgrounds", "magical-sea.jpg")
	if err := os.WriteFile(file, []byte("sea"), 0o644); err != nil {
		t.Fatal(err)
	}

	f := NewFetcher(WithRoot(root))
	ctx := context.Background()

	tests := []struct {
		name    string
		ref     string
		want    string
		wantErr bool
	}{
		{"relative to root", "backgrounds/magical-sea.jpg", "sea", false},
		{"absolute path", file, "sea", false},
		{"file url", "file://" + filepath.ToSlash(file), "sea", false},
		{"assets url served locally", "http://localhost:8787/assets/backgrounds/magical-sea.jpg", "sea", false},
		{"missing", "backgrounds/nope.jpg", "", true},
		{"escape attempt", "../secret.png", "", true},
		{"empty", "  ", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := f.Load(ctx, tt.ref)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Load(%q) error = %v, wantErr %v", tt.ref, err, tt.wantErr)
			}
			if !tt.wantErr && string(data) != tt.want {
				t.Errorf("Load(%q) = %q, want %q", tt.ref, data, tt.want)
			}
		})
	}

	if _, err := f.Load(ctx, "backgrounds/nope.jpg"); !stderrors.Is(err, ErrNotFound) {
		t.Errorf("missing local error = %v, want ErrNotFound", err)
	}
}

func TestFetcherBaseURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/library/overlays/dog-companion.png" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("dog"))
	}))
	defer srv.Close()

	f := NewFetcher(WithBaseURL(srv.URL + "/library/"))
	data, err := f.Load(context.Background(), "overlays/dog-companion.png")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if string(data) != "dog" {
		t.Errorf("Load() = %q, want dog", data)
	}
}

func TestFetcherRateLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("x"))
	}))
	defer srv.Close()

	f := NewFetcher(WithRateLimit(20, 1))
	start := time.Now()
	for range 3 {
		if _, err := f.Load(context.Background(), srv.URL+"/a.png"); err != nil {
			t.Fatal(err)
		}
	}
	// burst of 1 at 20/s: the third request waits ~100ms
	if elapsed := time.Since(start); elapsed < 80*time.Millisecond {
		t.Errorf("3 requests took %v, want rate limited", elapsed)
	}
}
