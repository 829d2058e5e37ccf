// Package assets resolves and loads the artwork for each page.
//
// Resolution is pure: a [Resolver] maps a page id and the personalization
// fields to a [PageAssets] value naming a background and overlay files. The
// default [TemplateResolver] holds the built-in catalog for the Adventure
// Compass story; [WithOverrides] lets a request swap individual backgrounds
// for pre-generated art.
//
// Loading is separate: a [Fetcher] turns a reference (relative catalog path,
// local path, file:// or http(s) URL) into bytes, with a timeout, retries
// for transient failures, optional rate limiting and an optional cache.
package assets

import (
	stderrors "errors"

	"github.com/matzehuels/herobook/pkg/template"
)

// ErrNotFound is returned when an asset does not exist at its reference.
var ErrNotFound = stderrors.New("asset not found")

// Page ids outside the story pages.
const (
	PageCover      = "cover"
	PageDedication = "dedication"
	PageKeepsake   = "keepsake"

	// TextBoxID is the override id for the text box art.
	TextBoxID = "text-box"
)

// DefaultTextBox is the catalog path of the standard text box art.
const DefaultTextBox = "overlays/text-boxes/standard-box.png"

// Overlay kinds.
const (
	KindCharacter = "character"
	KindCompanion = "companion"
	KindMagical   = "magical"
	KindScene     = "scene"
)

// Overlay is one image layered over the background. Positions and sizes are
// layout units from the bottom-left of the bleed page. A zero Width or
// Height is derived from the image's aspect ratio; both zero means the
// default overlay size.
type Overlay struct {
	Kind   string  `json:"type"`
	File   string  `json:"file"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
	Z      int     `json:"z"`
}

// PageAssets is the resolved artwork for one page.
type PageAssets struct {
	PageID     string    `json:"pageId"`
	Background string    `json:"background,omitempty"`
	Overlays   []Overlay `json:"overlays,omitempty"`
	TextBox    string    `json:"textBox,omitempty"`
}

// Resolver maps a page to its artwork. Implementations must be pure:
// the same inputs always give the same assets.
type Resolver interface {
	ResolvePageAssets(pageID string, fields template.Fields) (PageAssets, error)
}

// overrideResolver replaces catalog backgrounds with request-supplied URLs.
type overrideResolver struct {
	inner  Resolver
	images map[string]string
}

// WithOverrides wraps r so that a page whose id appears in images uses that
// URL as its background. The id TextBoxID replaces the text box art on
// every page. A nil or empty map returns r unchanged.
func WithOverrides(r Resolver, images map[string]string) Resolver {
	if len(images) == 0 {
		return r
	}
	return &overrideResolver{inner: r, images: images}
}

func (o *overrideResolver) ResolvePageAssets(pageID string, fields template.Fields) (PageAssets, error) {
	pa, err := o.inner.ResolvePageAssets(pageID, fields)
	if err != nil {
		return PageAssets{}, err
	}
	if url, ok := o.images[pageID]; ok {
		pa.Background = url
	}
	if url, ok := o.images[TextBoxID]; ok {
		pa.TextBox = url
	}
	return pa, nil
}
