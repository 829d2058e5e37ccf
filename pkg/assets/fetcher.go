package assets

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/matzehuels/herobook/pkg/cache"
	"github.com/matzehuels/herobook/pkg/errors"
	"github.com/matzehuels/herobook/pkg/httputil"
	"github.com/matzehuels/herobook/pkg/observability"
)

const (
	// DefaultFetchTimeout bounds one asset load, retries included.
	DefaultFetchTimeout = 15 * time.Second

	defaultAttempts = 3
	defaultDelay    = 250 * time.Millisecond

	// maxAssetBytes caps a single download.
	maxAssetBytes = 64 << 20

	// assetsPathPrefix marks URLs served from the local asset root.
	assetsPathPrefix = "/assets/"
)

// Fetcher loads asset bytes from local paths, file:// URLs and http(s) URLs.
type Fetcher struct {
	root     string
	baseURL  string
	client   *http.Client
	timeout  time.Duration
	attempts int
	delay    time.Duration
	limiter  *rate.Limiter
	cache    cache.Cache
	ttl      time.Duration
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithRoot sets the local asset directory. Relative references are read
// from it, and http(s) URLs whose path starts with /assets/ are served from
// it without a network round trip.
func WithRoot(dir string) FetcherOption {
	return func(f *Fetcher) { f.root = dir }
}

// WithBaseURL sets the remote prefix for relative references when no local
// root is configured.
func WithBaseURL(u string) FetcherOption {
	return func(f *Fetcher) { f.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) FetcherOption {
	return func(f *Fetcher) { f.client = c }
}

// WithTimeout bounds each Load call. Non-positive values keep the default.
func WithTimeout(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// WithRetry sets the attempt count and initial backoff for remote fetches.
func WithRetry(attempts int, delay time.Duration) FetcherOption {
	return func(f *Fetcher) { f.attempts, f.delay = attempts, delay }
}

// WithRateLimit limits remote fetches to rps requests per second. A
// non-positive rps disables limiting.
func WithRateLimit(rps float64, burst int) FetcherOption {
	return func(f *Fetcher) {
		if rps <= 0 {
			f.limiter = nil
			return
		}
		f.limiter = rate.NewLimiter(rate.Limit(rps), max(burst, 1))
	}
}

// WithCache stores remote downloads in c for ttl.
func WithCache(c cache.Cache, ttl time.Duration) FetcherOption {
	return func(f *Fetcher) { f.cache, f.ttl = c, ttl }
}

// NewFetcher creates a Fetcher. Without options it reads local paths
// relative to the working directory and fetches URLs with the default
// timeout and retry policy, uncached.
func NewFetcher(opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		timeout:  DefaultFetchTimeout,
		attempts: defaultAttempts,
		delay:    defaultDelay,
		cache:    cache.NewNullCache(),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.client == nil {
		f.client = httputil.NewClient(f.timeout)
	}
	return f
}

// Load returns the bytes behind ref. Failures carry ASSET_RESOLUTION, or
// TIMEOUT when the deadline passed; a missing asset also matches
// ErrNotFound under errors.Is.
func (f *Fetcher) Load(ctx context.Context, ref string) ([]byte, error) {
	if strings.TrimSpace(ref) == "" {
		return nil, errors.New(errors.ErrCodeAssetResolution, "empty asset reference")
	}
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	data, err := f.load(ctx, ref)
	if err == nil {
		return data, nil
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return nil, errors.Wrap(errors.ErrCodeTimeout, err, "load %s", ref)
	}
	return nil, errors.Wrap(errors.ErrCodeAssetResolution, err, "load %s", ref)
}

func (f *Fetcher) load(ctx context.Context, ref string) ([]byte, error) {
	u, err := url.Parse(ref)
	if err == nil {
		switch u.Scheme {
		case "file":
			return readLocal(u.Path)
		case "http", "https":
			if f.root != "" && strings.HasPrefix(u.Path, assetsPathPrefix) {
				return f.readRooted(strings.TrimPrefix(u.Path, assetsPathPrefix))
			}
			return f.fetchCached(ctx, ref)
		}
	}

	if filepath.IsAbs(ref) {
		return readLocal(ref)
	}
	switch {
	case f.root != "":
		return f.readRooted(ref)
	case f.baseURL != "":
		return f.fetchCached(ctx, f.baseURL+"/"+ref)
	default:
		return readLocal(ref)
	}
}

// readRooted reads a relative path below the asset root, refusing paths
// that would escape it.
func (f *Fetcher) readRooted(rel string) ([]byte, error) {
	if err := errors.ValidatePath(rel); err != nil {
		return nil, err
	}
	return readLocal(filepath.Join(f.root, filepath.FromSlash(rel)))
}

func readLocal(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if stderrors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return data, err
}

func (f *Fetcher) fetchCached(ctx context.Context, rawURL string) ([]byte, error) {
	key := cache.AssetKey(rawURL)
	if data, ok, err := f.cache.Get(ctx, key); err == nil && ok {
		return data, nil
	}

	var data []byte
	err := httputil.Retry(ctx, f.attempts, f.delay, func() error {
		var err error
		data, err = f.fetch(ctx, rawURL)
		return err
	})
	if err != nil {
		return nil, err
	}
	_ = f.cache.Set(ctx, key, data, f.ttl)
	return data, nil
}

func (f *Fetcher) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	host, path := req.URL.Host, req.URL.Path
	observability.HTTP().OnRequest(ctx, http.MethodGet, host, path)

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		observability.HTTP().OnError(ctx, http.MethodGet, host, path, err)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &httputil.RetryableError{Err: fmt.Errorf("%w: %v", httputil.ErrNetwork, err)}
	}
	defer resp.Body.Close()
	observability.HTTP().OnResponse(ctx, http.MethodGet, host, path, resp.StatusCode, time.Since(start))

	if err := httputil.CheckStatus(resp.StatusCode); err != nil {
		if stderrors.Is(err, httputil.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, rawURL)
		}
		return nil, err
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAssetBytes+1))
	if err != nil {
		return nil, &httputil.RetryableError{Err: fmt.Errorf("%w: %v", httputil.ErrNetwork, err)}
	}
	if len(data) > maxAssetBytes {
		return nil, fmt.Errorf("asset larger than %d bytes: %s", maxAssetBytes, rawURL)
	}
	return data, nil
}
