// Package compose turns one page's resolved assets and text into an ordered
// draw [Plan].
//
// The plan is fully positioned: every image, rectangle and line of text
// carries its final geometry in layout units, so the PDF builder only has to
// emit it. Draw order is fixed:
//
//  1. backdrop colour (cover only) and background, stretched to the bleed page
//  2. overlays, ascending z, stable for equal z
//  3. shapes (drawing frames)
//  4. text box art, then text lines, per text box
//  5. free-standing labels
//  6. trim guides, when enabled
//
// # Skip policy
//
// Asset failures never fail a page. An asset that cannot be loaded is left
// off and recorded in [Plan.Skipped] with a warning log. An asset that loads
// but is not a supported JPEG or PNG, or does not decode, is drawn as a
// solid placeholder rectangle in its place. Text box art that cannot be
// used falls back to a flat rounded rectangle.
package compose

import (
	"github.com/matzehuels/herobook/pkg/assets"
	"github.com/matzehuels/herobook/pkg/fonts"
	"github.com/matzehuels/herobook/pkg/layout"
	"github.com/matzehuels/herobook/pkg/text"
)

// Text box defaults, in layout units.
const (
	DefaultTextSize        = 24.0
	DefaultLineHeight      = 1.2
	DefaultOffsetAboveTrim = 75.0
	DefaultPadding         = 40.0
	DefaultCornerRadius    = 125.0
	DefaultTextColor       = "#333333"

	// DefaultOverlaySize is used when an overlay gives neither dimension.
	DefaultOverlaySize = 200.0

	// BoxFallbackOpacity is the opacity of the flat text box.
	BoxFallbackOpacity = 0.5

	guideLineWidth = 0.5
	guideOpacity   = 0.3
)

// TextBox describes one block of wrapped text and its backing box. Zero
// numeric fields take the package defaults. Wrapping and the backing box are
// on unless disabled.
type TextBox struct {
	Content         string
	Size            float64
	Align           text.Align
	MaxWidth        float64
	LineHeight      float64 // multiple of Size
	NoWrap          bool
	NoBackground    bool
	X               float64
	OffsetAboveTrim float64
	Padding         float64
	CornerRadius    float64
	Color           string // #rrggbb
	Font            fonts.Weight
}

func (tb TextBox) withDefaults() TextBox {
	if tb.Size <= 0 {
		tb.Size = DefaultTextSize
	}
	if tb.LineHeight <= 0 {
		tb.LineHeight = DefaultLineHeight
	}
	if tb.OffsetAboveTrim == 0 {
		tb.OffsetAboveTrim = DefaultOffsetAboveTrim
	}
	if tb.Padding == 0 {
		tb.Padding = DefaultPadding
	}
	if tb.CornerRadius == 0 {
		tb.CornerRadius = DefaultCornerRadius
	}
	if tb.Color == "" {
		tb.Color = DefaultTextColor
	}
	if tb.Align == "" {
		tb.Align = text.AlignLeft
	}
	if tb.Font == "" {
		tb.Font = fonts.Normal
	}
	return tb
}

// Label is a free-standing run of text at a fixed baseline.
type Label struct {
	Content  string
	X        float64
	Baseline float64
	Size     float64
	Font     fonts.Weight
	Color    Color
}

// Shape is a stroked and/or filled rectangle drawn above the overlays.
type Shape struct {
	Rect      layout.Rect
	Fill      *Color
	Stroke    *Color
	LineWidth float64
	Radius    float64
}

// Page is the input for composing one page.
type Page struct {
	Assets    assets.PageAssets
	Backdrop  *Color
	TextBoxes []TextBox
	Shapes    []Shape
	Labels    []Label
}
