package pdf

import (
	"bytes"

	"codeberg.org/go-pdf/fpdf"

	"github.com/matzehuels/herobook/pkg/cache"
	"github.com/matzehuels/herobook/pkg/compose"
	"github.com/matzehuels/herobook/pkg/fonts"
	"github.com/matzehuels/herobook/pkg/layout"
)

const blendNormal = "Normal"

// topLeft converts a bottom-left rect to fpdf's top-left x, y.
func topLeft(pageH float64, r layout.Rect) (x, y float64) {
	return r.Left, pageH - r.Top
}

func (d *Document) drawImage(plan *compose.Plan, op compose.Op) {
	img := op.Image
	name, err := d.register(img)
	if err != nil {
		d.logger.Warn("drawing placeholder", "page", plan.PageID, "asset", img.Ref, "reason", err)
		fill := compose.PlaceholderColor
		d.drawRect(plan.Height, compose.Op{Kind: compose.OpRect, Layer: op.Layer, Rect: op.Rect, Fill: &fill})
		return
	}
	x, y := topLeft(plan.Height, op.Rect)
	d.withOpacity(op.Opacity, func() {
		d.pdf.ImageOptions(name, x, y, op.Rect.Width(), op.Rect.Height(), false,
			fpdf.ImageOptions{ImageType: string(img.Format), AllowNegativePosition: true}, 0, "")
	})
}

// register embeds image data once per distinct content. A failure clears
// the fpdf error state so the page can continue.
func (d *Document) register(img *compose.Image) (string, error) {
	name := cache.Hash(img.Data)
	if d.images[name] {
		return name, nil
	}
	d.pdf.RegisterImageOptionsReader(name, fpdf.ImageOptions{ImageType: string(img.Format)}, bytes.NewReader(img.Data))
	if d.pdf.Err() {
		err := d.pdf.Error()
		d.pdf.ClearError()
		return "", err
	}
	d.images[name] = true
	return name, nil
}

func (d *Document) drawRect(pageH float64, op compose.Op) {
	style := ""
	if op.Fill != nil {
		r, g, b := op.Fill.RGB255()
		d.pdf.SetFillColor(r, g, b)
		style += "F"
	}
	if op.Stroke != nil {
		r, g, b := op.Stroke.RGB255()
		d.pdf.SetDrawColor(r, g, b)
		d.pdf.SetLineWidth(op.LineWidth)
		style += "D"
	}
	if style == "" {
		return
	}

	x, y := topLeft(pageH, op.Rect)
	w, h := op.Rect.Width(), op.Rect.Height()
	d.withOpacity(op.Opacity, func() {
		if op.Radius > 0 {
			d.pdf.RoundedRect(x, y, w, h, op.Radius, "1234", style)
			return
		}
		d.pdf.Rect(x, y, w, h, style)
	})
}

func (d *Document) drawText(pageH float64, op compose.Op) {
	t := op.Text
	if t == nil || t.Content == "" {
		return
	}
	weight := t.Weight
	if weight == "" {
		weight = fonts.Normal
	}
	r, g, b := t.Color.RGB255()
	d.pdf.SetFont(fonts.Family, fonts.Style(weight), t.Size)
	d.pdf.SetTextColor(r, g, b)
	d.pdf.Text(t.X, pageH-t.Baseline, fonts.Printable(t.Content))
}

// withOpacity runs draw at the given opacity; zero or one is opaque.
func (d *Document) withOpacity(opacity float64, draw func()) {
	if opacity <= 0 || opacity >= 1 {
		draw()
		return
	}
	d.pdf.SetAlpha(opacity, blendNormal)
	draw()
	d.pdf.SetAlpha(1, blendNormal)
}
