package compose

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/herobook/pkg/errors"
)

// Color is an RGB colour with components in [0,1].
type Color struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
}

// RGB255 returns the colour as 0-255 integer components.
func (c Color) RGB255() (r, g, b int) {
	return to255(c.R), to255(c.G), to255(c.B)
}

// Hex formats the colour as "#rrggbb".
func (c Color) Hex() string {
	r, g, b := c.RGB255()
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

func to255(v float64) int {
	return int(min(max(v, 0), 1)*255 + 0.5)
}

// Named colours used by page composition.
var (
	White            = Color{1, 1, 1}
	TextColor        = Color{0.2, 0.2, 0.2}
	TitleColor       = Color{0.15, 0.13, 0.12}
	BoxFallbackColor = Color{0.93, 0.91, 0.76}
	PlaceholderColor = Color{0.5, 0.7, 0.9}
	GuideColor       = Color{1, 0, 0}
	FrameColor       = Color{0.55, 0.5, 0.45}
)

// ParseHex parses "#rrggbb" (the leading # is optional).
func ParseHex(s string) (Color, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) != 6 {
		return Color{}, errors.New(errors.ErrCodeInvalidInput, "invalid colour %q: want #rrggbb", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return Color{}, errors.New(errors.ErrCodeInvalidInput, "invalid colour %q: want #rrggbb", s)
	}
	return Color{
		R: float64(v>>16&0xff) / 255,
		G: float64(v>>8&0xff) / 255,
		B: float64(v&0xff) / 255,
	}, nil
}
