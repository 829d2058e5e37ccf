// Package layout holds the geometry primitives shared by the text engine,
// the page compositor and the PDF builder.
//
// Coordinates are layout units (see book.UnitsPerInch) with the origin at the
// bottom-left corner of the bleed page and y growing upwards, the PDF
// convention.
package layout

// Rect is an axis-aligned rectangle in layout units.
type Rect struct {
	Left   float64 `json:"left"`
	Bottom float64 `json:"bottom"`
	Right  float64 `json:"right"`
	Top    float64 `json:"top"`
}

// XYWH builds a Rect from its bottom-left corner and size.
func XYWH(x, y, w, h float64) Rect {
	return Rect{Left: x, Bottom: y, Right: x + w, Top: y + h}
}

// Width returns the horizontal span of the rectangle.
func (r Rect) Width() float64 { return r.Right - r.Left }

// Height returns the vertical span of the rectangle.
func (r Rect) Height() float64 { return r.Top - r.Bottom }

// CenterX returns the horizontal center point of the rectangle.
func (r Rect) CenterX() float64 { return (r.Left + r.Right) / 2 }

// CenterY returns the vertical center point of the rectangle.
func (r Rect) CenterY() float64 { return (r.Bottom + r.Top) / 2 }

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool { return r.Width() <= 0 || r.Height() <= 0 }

// FitCentered scales a w×h item uniformly by min(scaleX, scaleY) so it fits
// inside r, and centers it. The item's aspect ratio is preserved.
func (r Rect) FitCentered(w, h float64) Rect {
	if w <= 0 || h <= 0 {
		return Rect{Left: r.CenterX(), Bottom: r.CenterY(), Right: r.CenterX(), Top: r.CenterY()}
	}
	scale := min(r.Width()/w, r.Height()/h)
	sw, sh := w*scale, h*scale
	return XYWH(r.Left+(r.Width()-sw)/2, r.Bottom+(r.Height()-sh)/2, sw, sh)
}
