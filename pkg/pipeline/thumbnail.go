package pipeline

import (
	"bytes"
	"image"
	"image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"

	"github.com/matzehuels/herobook/pkg/compose"
)

const thumbnailQuality = 85

// Thumbnail scales the cover background to width pixels and encodes it as
// JPEG. It returns nil when the plan has no decodable background image.
func Thumbnail(cover *compose.Plan, width int) []byte {
	var src image.Image
	for _, op := range cover.Ops {
		if op.Kind != compose.OpImage || op.Layer != compose.LayerBackground {
			continue
		}
		img, _, err := image.Decode(bytes.NewReader(op.Image.Data))
		if err != nil {
			return nil
		}
		src = img
		break
	}
	if src == nil || width <= 0 {
		return nil
	}

	b := src.Bounds()
	height := max(1, b.Dy()*width/b.Dx())
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: thumbnailQuality}); err != nil {
		return nil
	}
	return buf.Bytes()
}
