package compose

import (
	"github.com/matzehuels/herobook/pkg/fonts"
	"github.com/matzehuels/herobook/pkg/layout"
)

// OpKind identifies a draw operation.
type OpKind string

const (
	OpImage OpKind = "image"
	OpRect  OpKind = "rect"
	OpText  OpKind = "text"
)

// Layer records which part of the page an op belongs to. Ops in a Plan are
// ordered by layer, and within the overlay layer by ascending z.
type Layer string

const (
	LayerBackdrop   Layer = "backdrop"
	LayerBackground Layer = "background"
	LayerOverlay    Layer = "overlay"
	LayerShape      Layer = "shape"
	LayerTextBox    Layer = "textbox"
	LayerText       Layer = "text"
	LayerGuide      Layer = "guide"
)

// ImageFormat is the embedding format of an image op.
type ImageFormat string

const (
	FormatJPEG ImageFormat = "JPG"
	FormatPNG  ImageFormat = "PNG"
)

// Image is a decoded-enough image ready for embedding.
type Image struct {
	Ref    string      `json:"ref"`
	Format ImageFormat `json:"format"`
	Width  int         `json:"width"`  // native pixels
	Height int         `json:"height"` // native pixels
	Data   []byte      `json:"-"`
}

// Text is a single positioned run of text.
type Text struct {
	Content  string       `json:"content"`
	X        float64      `json:"x"`
	Baseline float64      `json:"baseline"`
	Size     float64      `json:"size"`
	Weight   fonts.Weight `json:"weight"`
	Color    Color        `json:"color"`
}

// Op is one draw operation. Rect is in layout units with a bottom-left
// origin. Image ops carry Image; rect ops carry Fill and/or Stroke; text ops
// carry Text.
type Op struct {
	Kind      OpKind      `json:"kind"`
	Layer     Layer       `json:"layer"`
	Rect      layout.Rect `json:"rect"`
	Image     *Image      `json:"image,omitempty"`
	Fill      *Color      `json:"fill,omitempty"`
	Stroke    *Color      `json:"stroke,omitempty"`
	LineWidth float64     `json:"lineWidth,omitempty"`
	Radius    float64     `json:"radius,omitempty"`
	Opacity   float64     `json:"opacity,omitempty"` // 0 means opaque
	Text      *Text       `json:"text,omitempty"`
}

// Skip records an asset left off the page under the skip policy.
type Skip struct {
	Layer  Layer  `json:"layer"`
	Asset  string `json:"asset"`
	Reason string `json:"reason"`
}

// Plan is the complete, ordered drawing of one page.
type Plan struct {
	PageID  string  `json:"pageId"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Ops     []Op    `json:"ops"`
	Skipped []Skip  `json:"skipped,omitempty"`
}

// Count returns the number of ops of the given kind.
func (p *Plan) Count(kind OpKind) int {
	n := 0
	for _, op := range p.Ops {
		if op.Kind == kind {
			n++
		}
	}
	return n
}

// Lines returns the text content of every text op, in draw order.
func (p *Plan) Lines() []string {
	var out []string
	for _, op := range p.Ops {
		if op.Kind == OpText {
			out = append(out, op.Text.Content)
		}
	}
	return out
}
