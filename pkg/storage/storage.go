// Package storage persists rendered files and reports where they live.
//
// [Local] stages each order's files in a hidden directory and then swaps it
// in as {dir}/{orderId}/, so a reader never sees a partial PDF or a book
// from one render next to a cover from another. Public
// URLs are derived from a base URL, or from a bucket naming convention via
// [URLFor] when files are synced to R2 or S3 out of band.
package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/matzehuels/herobook/pkg/errors"
)

// File names within an order's directory.
const (
	BookFile  = "book.pdf"
	CoverFile = "cover.pdf"
	ThumbFile = "thumb.jpg"
)

// Providers understood by URLFor.
const (
	ProviderLocal = "local"
	ProviderR2    = "r2"
	ProviderS3    = "s3"
)

// Artifacts are the files produced by one render. A nil Thumb is skipped.
type Artifacts struct {
	Book  []byte
	Cover []byte
	Thumb []byte
}

// URLs are the public locations of uploaded artifacts.
type URLs struct {
	Book  string `json:"bookPdfUrl"`
	Cover string `json:"coverPdfUrl"`
	Thumb string `json:"thumbUrl,omitempty"`
}

// Uploader persists artifacts for an order.
type Uploader interface {
	Upload(ctx context.Context, orderID string, a Artifacts) (URLs, error)
}

// Key returns the object key for an order's file.
func Key(orderID, name string) string {
	return orderID + "/" + name
}

// URLFor returns the public URL of key for a bucket provider.
//
//	r2:    https://{bucket}.{endpoint}/{key}
//	s3:    https://{bucket}.s3.{region}.amazonaws.com/{key}
//	local: {endpoint}/{key}
func URLFor(provider, bucket, endpoint, region, key string) (string, error) {
	switch provider {
	case ProviderR2:
		if bucket == "" || endpoint == "" {
			return "", errors.New(errors.ErrCodeInvalidInput, "r2 urls need bucket and endpoint")
		}
		host := strings.TrimPrefix(strings.TrimPrefix(endpoint, "https://"), "http://")
		return fmt.Sprintf("https://%s.%s/%s", bucket, strings.TrimSuffix(host, "/"), key), nil
	case ProviderS3:
		if bucket == "" || region == "" {
			return "", errors.New(errors.ErrCodeInvalidInput, "s3 urls need bucket and region")
		}
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", bucket, region, key), nil
	case "", ProviderLocal:
		return strings.TrimSuffix(endpoint, "/") + "/" + key, nil
	default:
		return "", errors.New(errors.ErrCodeInvalidInput, "unknown storage provider %q", provider)
	}
}

// FallbackError is returned when the primary upload failed after a
// successful render. Paths lists where the files were saved locally.
type FallbackError struct {
	OrderID string
	Paths   []string
	Err     error
}

func (e *FallbackError) Error() string {
	if len(e.Paths) == 0 {
		return fmt.Sprintf("upload %s: %v", e.OrderID, e.Err)
	}
	return fmt.Sprintf("upload %s: %v (saved locally: %s)", e.OrderID, e.Err, strings.Join(e.Paths, ", "))
}

func (e *FallbackError) Unwrap() error { return e.Err }

// UploadWithFallback uploads through primary. If that fails, the artifacts
// are written to fallback instead and a STORAGE_FAILED error naming the
// local copies is returned.
func UploadWithFallback(ctx context.Context, primary Uploader, fallback *Local, orderID string, a Artifacts) (URLs, error) {
	urls, err := primary.Upload(ctx, orderID, a)
	if err == nil {
		return urls, nil
	}
	fe := &FallbackError{OrderID: orderID, Err: err}
	if fallback != nil {
		if _, ferr := fallback.Upload(ctx, orderID, a); ferr == nil {
			fe.Paths = fallback.Paths(orderID, a)
		}
	}
	return URLs{}, errors.Wrap(errors.ErrCodeStorage, fe, "store rendered files")
}
