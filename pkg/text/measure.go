package text

import (
	"math"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"github.com/matzehuels/herobook/pkg/fonts"
)

// Measurer reports the advance width of a string, in layout units, when set
// in the given weight and size.
type Measurer interface {
	Width(s string, w fonts.Weight, size float64) float64
}

// FontMetrics measures text with the glyph advances of the embedded fonts.
//
// Widths are computed the way the PDF writer computes them: per-glyph
// advances rounded to thousandths of an em, summed without kerning. Measured
// and printed line widths therefore agree.
type FontMetrics struct {
	mu    sync.Mutex
	faces map[fonts.Weight]*faceMetrics
}

type faceMetrics struct {
	font   *sfnt.Font
	upem   fixed.Int26_6
	buf    sfnt.Buffer
	widths map[rune]int // thousandths of an em
}

// NewFontMetrics parses the embedded faces.
func NewFontMetrics() (*FontMetrics, error) {
	m := &FontMetrics{faces: make(map[fonts.Weight]*faceMetrics, 2)}
	for _, w := range []fonts.Weight{fonts.Normal, fonts.Bold} {
		f, err := opentype.Parse(fonts.TTF(w))
		if err != nil {
			return nil, err
		}
		m.faces[w] = &faceMetrics{
			font:   f,
			upem:   fixed.Int26_6(f.UnitsPerEm()),
			widths: make(map[rune]int),
		}
	}
	return m, nil
}

// Width implements Measurer.
func (m *FontMetrics) Width(s string, w fonts.Weight, size float64) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	fm, ok := m.faces[w]
	if !ok {
		fm = m.faces[fonts.Normal]
	}
	total := 0
	for _, r := range s {
		total += fm.advance(r)
	}
	return float64(total) * size / 1000
}

// advance returns the rune's advance in thousandths of an em. Runes the font
// cannot map use the advance of glyph 0.
func (fm *faceMetrics) advance(r rune) int {
	if v, ok := fm.widths[r]; ok {
		return v
	}
	idx, err := fm.font.GlyphIndex(&fm.buf, r)
	if err != nil {
		idx = 0
	}
	// ppem == unitsPerEm yields the advance in font design units.
	adv, err := fm.font.GlyphAdvance(&fm.buf, idx, fm.upem, font.HintingNone)
	v := 0
	if err == nil {
		v = int(math.Round(float64(adv) * 1000 / float64(fm.upem)))
	}
	fm.widths[r] = v
	return v
}
