// Package pipeline renders one order into its print files.
//
// This package is the single entry point used by the CLI and the HTTP
// service. A [Runner] takes a validated request through every stage and
// returns the finished interior (book.pdf), cover (cover.pdf) and an
// optional thumbnail, all in memory. Nothing is written to disk here;
// persisting the result is the storage package's job.
//
// # Stages
//
//  1. Validating: the request is checked wholesale and defaults applied
//  2. Composing: the 14 story pages are composed on a bounded worker pool
//  3. ComposingDedication and ComposingKeepsake: the two closing pages
//  4. BuildingCover: the single-page cover and the thumbnail
//  5. Finalized: both PDFs are encoded
//
// A failure at any stage moves the run to Failed and discards all partial
// work. Asset problems are not failures; they are absorbed by the
// compositor's skip policy and counted in [Stats].
//
// # Usage
//
//	runner, err := pipeline.NewRunner(fetcher, logger)
//	if err != nil {
//	    return err
//	}
//	result, err := runner.Execute(ctx, pipeline.Options{Request: req})
//	if err != nil {
//	    return err
//	}
//	os.WriteFile("book.pdf", result.Book, 0o644)
package pipeline

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/herobook/pkg/book"
	"github.com/matzehuels/herobook/pkg/compose"
	"github.com/matzehuels/herobook/pkg/errors"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultWorkers bounds concurrent page composition.
	DefaultWorkers = 4

	// DefaultTextSize is the story text size in layout units.
	DefaultTextSize = compose.DefaultTextSize

	// DefaultCoverTitleSize is the cover title size in layout units.
	DefaultCoverTitleSize = 24.0

	// ThumbnailWidth is the pixel width of thumb.jpg.
	ThumbnailWidth = 400

	// MaxWorkers caps Options.Workers.
	MaxWorkers = 32
)

// Stage names a step of a render, reported to hooks and logs.
type Stage string

const (
	StageValidating          Stage = "validating"
	StageComposing           Stage = "composing"
	StageComposingDedication Stage = "composing_dedication"
	StageComposingKeepsake   Stage = "composing_keepsake"
	StageBuildingCover       Stage = "building_cover"
	StageFinalized           Stage = "finalized"
	StageFailed              Stage = "failed"
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one render.
type Options struct {
	Request *book.Request `json:"request"`

	Workers        int     `json:"workers,omitempty"`
	TrimGuides     bool    `json:"trim_guides,omitempty"`
	TextSize       float64 `json:"text_size,omitempty"`
	CoverTitleSize float64 `json:"cover_title_size,omitempty"`
	NoThumbnail    bool    `json:"no_thumbnail,omitempty"`

	// GeneratedAt stamps the metadata and the PDF creation dates. Fixing it
	// makes repeated renders of the same request byte-identical.
	GeneratedAt time.Time `json:"generated_at,omitzero"`

	// Runtime options (not serialized)

	// Logger overrides the runner's logger for this render when set.
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// ValidateAndSetDefaults validates the request and fills unset options.
// It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if _, err := book.Validate(o.Request); err != nil {
		return err
	}
	if o.Workers < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "workers must not be negative (got %d)", o.Workers)
	}
	o.SetDefaults()
	o.validated = true
	return nil
}

// SetDefaults fills unset options.
func (o *Options) SetDefaults() {
	if o.Workers == 0 {
		o.Workers = DefaultWorkers
	}
	o.Workers = min(o.Workers, MaxWorkers)
	if o.TextSize <= 0 {
		o.TextSize = DefaultTextSize
	}
	if o.CoverTitleSize <= 0 {
		o.CoverTitleSize = DefaultCoverTitleSize
	}
	if o.GeneratedAt.IsZero() {
		o.GeneratedAt = time.Now().UTC()
	}
}

// =============================================================================
// Result
// =============================================================================

// Result contains the outputs of a render.
type Result struct {
	OrderID string

	// Book is the interior PDF (book.pdf).
	Book []byte

	// Cover is the cover PDF (cover.pdf).
	Cover []byte

	// Thumbnail is a JPEG of the cover art (thumb.jpg); nil when the cover
	// has no usable raster background.
	Thumbnail []byte

	// Plans holds the interior draw plans in page order, then the cover.
	Plans []*compose.Plan

	Metadata Metadata
	Stats    Stats
}

// Metadata describes the finished book.
type Metadata struct {
	Title           string    `json:"title"`
	ChildName       string    `json:"childName"`
	TotalPages      int       `json:"totalPages"`
	GeneratedAt     time.Time `json:"generatedAt"`
	TemplateVersion string    `json:"templateVersion"`
	ColorSpace      string    `json:"colorSpace"`
	Binding         string    `json:"binding"`
}

// Stats contains render statistics.
type Stats struct {
	Pages        int
	Ops          int
	Skipped      int
	ComposeTime  time.Duration
	CoverTime    time.Duration
	FinalizeTime time.Duration
}

// Skips returns every asset skipped across all plans.
func (r *Result) Skips() []compose.Skip {
	var out []compose.Skip
	for _, p := range r.Plans {
		out = append(out, p.Skipped...)
	}
	return out
}
