package storage

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/herobook/pkg/errors"
)

// Local stores files on the local filesystem.
type Local struct {
	dir      string
	provider string
	bucket   string
	endpoint string
	region   string
}

// LocalOption configures a Local store.
type LocalOption func(*Local)

// WithPublicBaseURL makes URLs {base}/{orderId}/{file}.
func WithPublicBaseURL(base string) LocalOption {
	return func(l *Local) {
		l.provider = ProviderLocal
		l.endpoint = base
	}
}

// WithBucket makes URLs follow a bucket provider's convention.
func WithBucket(provider, bucket, endpoint, region string) LocalOption {
	return func(l *Local) {
		l.provider, l.bucket, l.endpoint, l.region = provider, bucket, endpoint, region
	}
}

// NewLocal creates the directory if needed. Without a URL option, URLs are
// file:// URLs of the written files.
func NewLocal(dir string, opts ...LocalOption) (*Local, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "resolve output dir %s", dir)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "create output dir %s", abs)
	}
	l := &Local{dir: abs}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Dir returns the root directory.
func (l *Local) Dir() string { return l.dir }

// Path returns the local path of an order's file. It validates orderID
// and name so the path cannot leave the root.
func (l *Local) Path(orderID, name string) (string, error) {
	if err := errors.ValidateOrderID(orderID); err != nil {
		return "", err
	}
	switch name {
	case BookFile, CoverFile, ThumbFile:
	default:
		return "", errors.New(errors.ErrCodeNotFound, "unknown file %q", name)
	}
	return filepath.Join(l.dir, orderID, name), nil
}

// Paths lists the local paths of the artifacts present in a.
func (l *Local) Paths(orderID string, a Artifacts) []string {
	var out []string
	for _, f := range files(a) {
		if p, err := l.Path(orderID, f.name); err == nil {
			out = append(out, p)
		}
	}
	return out
}

// Upload writes every artifact concurrently into a staging directory, then
// swaps that directory in as {dir}/{orderId}. Readers see either the previous
// set of files or the new one, never a mix; files of an earlier render that
// this one did not produce (a stale thumb.jpg) go away with the swap.
func (l *Local) Upload(ctx context.Context, orderID string, a Artifacts) (URLs, error) {
	if err := errors.ValidateOrderID(orderID); err != nil {
		return URLs{}, err
	}
	if len(a.Book) == 0 || len(a.Cover) == 0 {
		return URLs{}, errors.New(errors.ErrCodeStorage, "refusing to store %s without both PDFs", orderID)
	}
	stage, err := os.MkdirTemp(l.dir, "."+orderID+".stage-*")
	if err != nil {
		return URLs{}, errors.Wrap(errors.ErrCodeStorage, err, "create staging dir for %s", orderID)
	}
	defer os.RemoveAll(stage)
	if err := os.Chmod(stage, 0o755); err != nil {
		return URLs{}, errors.Wrap(errors.ErrCodeStorage, err, "chmod %s", stage)
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, f := range files(a) {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return writeFile(filepath.Join(stage, f.name), f.data)
		})
	}
	if err := g.Wait(); err != nil {
		return URLs{}, errors.Wrap(errors.ErrCodeStorage, err, "store files for %s", orderID)
	}
	if err := ctx.Err(); err != nil {
		return URLs{}, errors.Wrap(errors.ErrCodeStorage, err, "store files for %s", orderID)
	}
	if err := l.swap(orderID, stage); err != nil {
		return URLs{}, errors.Wrap(errors.ErrCodeStorage, err, "publish files for %s", orderID)
	}

	var urls URLs
	if urls.Book, err = l.url(orderID, BookFile); err != nil {
		return URLs{}, err
	}
	if urls.Cover, err = l.url(orderID, CoverFile); err != nil {
		return URLs{}, err
	}
	if a.Thumb != nil {
		if urls.Thumb, err = l.url(orderID, ThumbFile); err != nil {
			return URLs{}, err
		}
	}
	return urls, nil
}

// swap replaces the order directory with stage. A directory cannot be
// renamed over a non-empty one, so the old set is moved aside first and
// restored if the second rename fails.
func (l *Local) swap(orderID, stage string) error {
	orderDir := filepath.Join(l.dir, orderID)
	old := ""
	if _, err := os.Stat(orderDir); err == nil {
		old = filepath.Join(l.dir, "."+orderID+".old-"+filepath.Base(stage))
		if err := os.Rename(orderDir, old); err != nil {
			return err
		}
	}
	if err := os.Rename(stage, orderDir); err != nil {
		if old != "" {
			_ = os.Rename(old, orderDir)
		}
		return err
	}
	if old != "" {
		_ = os.RemoveAll(old)
	}
	return nil
}

func (l *Local) url(orderID, name string) (string, error) {
	if l.provider == "" {
		u := url.URL{Scheme: "file", Path: filepath.ToSlash(filepath.Join(l.dir, orderID, name))}
		return u.String(), nil
	}
	return URLFor(l.provider, l.bucket, l.endpoint, l.region, Key(url.PathEscape(orderID), name))
}

type file struct {
	name string
	data []byte
}

func files(a Artifacts) []file {
	out := []file{{BookFile, a.Book}, {CoverFile, a.Cover}}
	if a.Thumb != nil {
		out = append(out, file{ThumbFile, a.Thumb})
	}
	return out
}

// writeFile writes and syncs one staged file.
func writeFile(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("sync %s: %w", path, err)
	}
	return f.Close()
}

var _ Uploader = (*Local)(nil)
