package book

import (
	"strconv"
	"strings"

	"github.com/matzehuels/herobook/pkg/errors"
)

// UnitsPerInch is the layout resolution. One inch of paper is 300 layout
// units, and one layout unit is one PDF point, so page geometry carries
// print precision without a separate DPI transform.
const UnitsPerInch = 300.0

const mmPerInch = 25.4

// Geometry is the resolved page geometry for a RenderSpec, in layout units.
type Geometry struct {
	TrimWidth  float64
	TrimHeight float64
	Bleed      float64
}

// PageWidth returns the full bleed page width.
func (g Geometry) PageWidth() float64 { return g.TrimWidth + 2*g.Bleed }

// PageHeight returns the full bleed page height.
func (g Geometry) PageHeight() float64 { return g.TrimHeight + 2*g.Bleed }

// TrimBottom returns the distance from the bleed edge to the bottom trim line.
func (g Geometry) TrimBottom() float64 { return g.Bleed }

// TrimLeft returns the distance from the bleed edge to the left trim line.
func (g Geometry) TrimLeft() float64 { return g.Bleed }

// Inches converts inches to layout units.
func Inches(in float64) float64 { return in * UnitsPerInch }

// Geometry parses Trim ("8x10", "8.5 x 11") and Bleed ("0.125in", "3mm",
// "0.125") into layout units. Unset fields use the defaults.
func (s RenderSpec) Geometry() (Geometry, error) {
	trim := s.Trim
	if trim == "" {
		trim = DefaultTrim
	}
	bleed := s.Bleed
	if bleed == "" {
		bleed = DefaultBleed
	}

	w, h, err := parseTrim(trim)
	if err != nil {
		return Geometry{}, err
	}
	b, err := parseLength(bleed)
	if err != nil {
		return Geometry{}, errors.New(errors.ErrCodeInvalidInput, "spec.bleed: invalid length %q", bleed)
	}
	if b < 0 || b > 1 {
		return Geometry{}, errors.New(errors.ErrCodeInvalidInput, "spec.bleed must be between 0 and 1 inch (got %q)", bleed)
	}
	return Geometry{
		TrimWidth:  Inches(w),
		TrimHeight: Inches(h),
		Bleed:      Inches(b),
	}, nil
}

// parseTrim parses "WxH" in inches.
func parseTrim(s string) (w, h float64, err error) {
	parts := strings.Split(strings.ToLower(s), "x")
	if len(parts) != 2 {
		return 0, 0, errors.New(errors.ErrCodeInvalidInput, "spec.trim must look like WIDTHxHEIGHT (got %q)", s)
	}
	w, errW := parseLength(parts[0])
	h, errH := parseLength(parts[1])
	if errW != nil || errH != nil || w <= 0 || h <= 0 {
		return 0, 0, errors.New(errors.ErrCodeInvalidInput, "spec.trim must look like WIDTHxHEIGHT (got %q)", s)
	}
	if w > 24 || h > 24 {
		return 0, 0, errors.New(errors.ErrCodeInvalidInput, "spec.trim exceeds 24 inches (got %q)", s)
	}
	return w, h, nil
}

// parseLength parses a length in inches. A "mm" suffix converts from
// millimetres; "in" or no suffix means inches.
func parseLength(s string) (float64, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	scale := 1.0
	switch {
	case strings.HasSuffix(s, "in"):
		s = strings.TrimSuffix(s, "in")
	case strings.HasSuffix(s, "mm"):
		s = strings.TrimSuffix(s, "mm")
		scale = 1 / mmPerInch
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	return v * scale, nil
}
