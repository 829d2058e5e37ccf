// Package status records the progress of each order's render.
//
// A [Record] is written when a render starts and overwritten when it
// completes or fails. The [Store] is injected into the HTTP service rather
// than held in a package-level map, with implementations for different
// backends:
//   - memory: in-process storage for tests and single-instance use
//   - file: one JSON file per order, for the CLI
//   - redis: shared storage for multi-instance deployments
//   - mongo: durable storage with queryable history
//
// # Usage
//
//	store, err := status.New(ctx, status.Options{Backend: status.BackendMemory})
//	if err != nil {
//	    return err
//	}
//	rec := status.Processing(orderID)
//	store.Set(ctx, rec)
//	// ... render ...
//	rec.Complete(16, urls)
//	store.Set(ctx, rec)
package status

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/herobook/pkg/errors"
)

// ErrNotFound is returned when no record exists for an order.
var ErrNotFound = stderrors.New("status not found")

// State is the lifecycle state of a render.
type State string

const (
	StateProcessing State = "processing"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
)

// Record is the latest known state of one order's render.
type Record struct {
	OrderID       string     `json:"orderId" bson:"_id"`
	RenderID      string     `json:"renderId" bson:"renderId"`
	State         State      `json:"status" bson:"status"`
	StartedAt     time.Time  `json:"startedAt" bson:"startedAt"`
	CompletedAt   *time.Time `json:"completedAt,omitempty" bson:"completedAt,omitempty"`
	FailedAt      *time.Time `json:"failedAt,omitempty" bson:"failedAt,omitempty"`
	Error         string     `json:"error,omitempty" bson:"error,omitempty"`
	PagesRendered int        `json:"pagesRendered,omitempty" bson:"pagesRendered,omitempty"`
	URLs          URLs       `json:"urls,omitzero" bson:"urls,omitempty"`
}

// URLs are the public locations of a completed render's files.
type URLs struct {
	Book  string `json:"bookPdfUrl,omitempty" bson:"bookPdfUrl,omitempty"`
	Cover string `json:"coverPdfUrl,omitempty" bson:"coverPdfUrl,omitempty"`
	Thumb string `json:"thumbUrl,omitempty" bson:"thumbUrl,omitempty"`
}

// Processing returns a new record for a render starting now. Each attempt
// gets a fresh render id.
func Processing(orderID string) *Record {
	return &Record{
		OrderID:   orderID,
		RenderID:  uuid.NewString(),
		State:     StateProcessing,
		StartedAt: time.Now().UTC(),
	}
}

// Complete marks the record completed.
func (r *Record) Complete(pages int, urls URLs) {
	now := time.Now().UTC()
	r.State = StateCompleted
	r.CompletedAt = &now
	r.PagesRendered = pages
	r.URLs = urls
}

// Fail marks the record failed with err's user-facing message.
func (r *Record) Fail(err error) {
	now := time.Now().UTC()
	r.State = StateFailed
	r.FailedAt = &now
	if err != nil {
		r.Error = errors.UserMessage(err)
	}
}

// Done reports whether the render has finished, successfully or not.
func (r *Record) Done() bool {
	return r.State == StateCompleted || r.State == StateFailed
}

// Store is the interface for status backends. Implementations are safe for
// concurrent use.
type Store interface {
	// Get returns the record for orderID, or ErrNotFound.
	Get(ctx context.Context, orderID string) (*Record, error)

	// Set creates or replaces the record for rec.OrderID.
	Set(ctx context.Context, rec *Record) error

	// List returns up to limit records, most recently started first.
	// A limit of zero or less returns every record.
	List(ctx context.Context, limit int) ([]*Record, error)

	// Close releases backend resources.
	Close() error
}
