// Package fonts provides the typefaces used for page text.
//
// The Go font family ships inside golang.org/x/image, so the binary needs no
// font files on disk. The same TTF bytes are used to measure text during
// layout and to embed the font in the PDF, which keeps measured and printed
// widths identical.
package fonts

import (
	"strings"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// Weight selects a face within the family.
type Weight string

// Supported weights.
const (
	Normal Weight = "normal"
	Bold   Weight = "bold"
)

// Family is the PDF font family name the faces are registered under.
const Family = "GoText"

// ParseWeight maps a loose weight name ("bold", "Bold", "semi-bold") to a
// Weight. Anything that mentions "bold" is bold; everything else is normal.
func ParseWeight(s string) Weight {
	if strings.Contains(strings.ToLower(s), "bold") {
		return Bold
	}
	return Normal
}

// TTF returns the TrueType bytes for the given weight.
func TTF(w Weight) []byte {
	if w == Bold {
		return gobold.TTF
	}
	return goregular.TTF
}

// Replacement stands in for runes the PDF font encoding cannot carry.
const Replacement = '\uFFFD'

// Printable returns s with every rune outside the Basic Multilingual Plane
// (emoji and other astral symbols) replaced by [Replacement]. The embedded
// TrueType fonts are written with a 16-bit glyph map, so those runes can be
// neither measured nor drawn.
func Printable(s string) string {
	clean := true
	for _, r := range s {
		if r > 0xFFFF {
			clean = false
			break
		}
	}
	if clean {
		return s
	}
	return strings.Map(func(r rune) rune {
		if r > 0xFFFF {
			return Replacement
		}
		return r
	}, s)
}

// Style returns the fpdf style string for the weight ("" or "B").
func Style(w Weight) string {
	if w == Bold {
		return "B"
	}
	return ""
}
