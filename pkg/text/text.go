// Package text wraps, measures and places the lines of a page's text box.
//
// Wrapping is greedy over whitespace-separated words: a word joins the
// current line when the widened line still fits, otherwise it starts a new
// line. A single word wider than the limit sits alone on its line and is
// never split. Newlines in the input are ordinary whitespace.
//
// Layout then turns the wrapped lines into a [Block]: the text box rectangle
// (bottom-left origin, layout units) and one baseline position per line.
//
//	m, _ := text.NewFontMetrics()
//	blk := text.Layout(m, text.Params{Content: page.Text, Size: 24, MaxWidth: 1200, Wrap: true})
package text

import (
	"strings"

	"github.com/matzehuels/herobook/pkg/fonts"
	"github.com/matzehuels/herobook/pkg/layout"
)

// Align is the horizontal alignment of lines within the text box.
type Align string

// Alignments.
const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

// ParseAlign maps a name to an Align; unknown names are left aligned.
func ParseAlign(s string) Align {
	switch Align(strings.ToLower(s)) {
	case AlignCenter:
		return AlignCenter
	case AlignRight:
		return AlignRight
	}
	return AlignLeft
}

// Wrap splits s into lines no wider than maxWidth. With maxWidth <= 0 the
// text is returned as one line with line breaks and tabs turned into spaces.
// Empty or all-whitespace text yields a single empty line.
func Wrap(m Measurer, s string, w fonts.Weight, size, maxWidth float64) []string {
	if maxWidth <= 0 {
		return []string{flatten.Replace(s)}
	}
	words := strings.Fields(s)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	current := ""
	for _, word := range words {
		trial := word
		if current != "" {
			trial = current + " " + word
		}
		if current == "" || m.Width(trial, w, size) <= maxWidth {
			current = trial
			continue
		}
		lines = append(lines, current)
		current = word
	}
	return append(lines, current)
}

var flatten = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", "\t", " ")

// Params describes one text box.
type Params struct {
	Content    string
	Weight     fonts.Weight
	Size       float64
	LineHeight float64 // multiple of Size
	Align      Align
	Wrap       bool
	MaxWidth   float64 // 0 sizes the box to the widest line

	// X is the left edge of the text area; the box extends Padding beyond it.
	X       float64
	Bottom  float64 // box bottom edge
	Padding float64
}

// Line is one placed line of text.
type Line struct {
	Text     string  `json:"text"`
	X        float64 `json:"x"`
	Baseline float64 `json:"baseline"`
	Width    float64 `json:"width"`
}

// Block is a laid-out text box.
type Block struct {
	Box   layout.Rect `json:"box"`
	Lines []Line      `json:"lines"`
}

// Layout wraps p.Content and positions every line inside the box.
func Layout(m Measurer, p Params) Block {
	maxWidth := p.MaxWidth
	if !p.Wrap {
		maxWidth = 0
	}
	raw := Wrap(m, p.Content, p.Weight, p.Size, maxWidth)

	widths := make([]float64, len(raw))
	widest := 0.0
	for i, l := range raw {
		widths[i] = m.Width(l, p.Weight, p.Size)
		widest = max(widest, widths[i])
	}

	inner := widest
	if p.MaxWidth > 0 {
		inner = p.MaxWidth
	}
	lh := p.Size * p.LineHeight
	box := layout.XYWH(
		p.X-p.Padding,
		p.Bottom,
		inner+2*p.Padding,
		float64(len(raw))*lh+2*p.Padding,
	)

	lines := make([]Line, len(raw))
	baseline := box.Top - p.Padding - p.Size
	for i, l := range raw {
		lines[i] = Line{
			Text:     l,
			X:        alignX(p.Align, p.X, inner, widths[i], p.MaxWidth > 0),
			Baseline: baseline,
			Width:    widths[i],
		}
		baseline -= lh
	}
	return Block{Box: box, Lines: lines}
}

// alignX returns the left edge of a line of width lw. In a constrained box
// lines align within the inner width; otherwise they align around x.
func alignX(a Align, x, inner, lw float64, constrained bool) float64 {
	switch a {
	case AlignCenter:
		if constrained {
			return x + (inner-lw)/2
		}
		return x - lw/2
	case AlignRight:
		if constrained {
			return x + inner - lw
		}
		return x - lw
	}
	return x
}
