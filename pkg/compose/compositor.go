package compose

import (
	"bytes"
	"context"
	stderrors "errors"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"math"
	"net/url"
	"path"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/herobook/pkg/assets"
	"github.com/matzehuels/herobook/pkg/book"
	"github.com/matzehuels/herobook/pkg/errors"
	"github.com/matzehuels/herobook/pkg/fonts"
	"github.com/matzehuels/herobook/pkg/layout"
	"github.com/matzehuels/herobook/pkg/observability"
	"github.com/matzehuels/herobook/pkg/text"
)

// Loader fetches asset bytes by reference.
type Loader interface {
	Load(ctx context.Context, ref string) ([]byte, error)
}

// Compositor builds draw plans for pages of one book. It holds no
// per-page state and is safe for concurrent use.
type Compositor struct {
	geom       book.Geometry
	loader     Loader
	measurer   text.Measurer
	logger     *log.Logger
	trimGuides bool
}

// Option configures a Compositor.
type Option func(*Compositor)

// WithLogger sets the logger used for skipped assets.
func WithLogger(l *log.Logger) Option {
	return func(c *Compositor) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithTrimGuides draws a faint red rectangle on the trim line.
func WithTrimGuides(on bool) Option {
	return func(c *Compositor) { c.trimGuides = on }
}

// New creates a Compositor for pages of the given geometry.
func New(geom book.Geometry, loader Loader, measurer text.Measurer, opts ...Option) *Compositor {
	c := &Compositor{
		geom:     geom,
		loader:   loader,
		measurer: measurer,
		logger:   log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Geometry returns the page geometry plans are built for.
func (c *Compositor) Geometry() book.Geometry { return c.geom }

// Compose builds the draw plan for one page. Asset failures are absorbed by
// the skip policy; the only error is context cancellation.
func (c *Compositor) Compose(ctx context.Context, p Page) (*Plan, error) {
	w, h := c.geom.PageWidth(), c.geom.PageHeight()
	plan := &Plan{PageID: p.Assets.PageID, Width: w, Height: h}
	full := layout.XYWH(0, 0, w, h)

	if p.Backdrop != nil {
		fill := *p.Backdrop
		plan.Ops = append(plan.Ops, Op{Kind: OpRect, Layer: LayerBackdrop, Rect: full, Fill: &fill})
	}

	if ref := p.Assets.Background; ref != "" {
		if img, ok := c.image(ctx, plan, LayerBackground, ref); ok {
			plan.Ops = append(plan.Ops, imageOrPlaceholder(LayerBackground, full, img))
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	overlays := append([]assets.Overlay(nil), p.Assets.Overlays...)
	sort.SliceStable(overlays, func(i, j int) bool { return overlays[i].Z < overlays[j].Z })
	for _, o := range overlays {
		img, ok := c.image(ctx, plan, LayerOverlay, o.File)
		if !ok {
			continue
		}
		plan.Ops = append(plan.Ops, imageOrPlaceholder(LayerOverlay, overlayRect(o, img), img))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, s := range p.Shapes {
		plan.Ops = append(plan.Ops, Op{
			Kind:      OpRect,
			Layer:     LayerShape,
			Rect:      s.Rect,
			Fill:      s.Fill,
			Stroke:    s.Stroke,
			LineWidth: s.LineWidth,
			Radius:    s.Radius,
		})
	}

	for _, tb := range p.TextBoxes {
		c.textBox(ctx, plan, p.Assets.TextBox, tb)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, l := range p.Labels {
		size, weight := l.Size, l.Font
		if size <= 0 {
			size = DefaultTextSize
		}
		if weight == "" {
			weight = fonts.Normal
		}
		content := fonts.Printable(l.Content)
		plan.Ops = append(plan.Ops, Op{
			Kind:  OpText,
			Layer: LayerText,
			Rect:  layout.XYWH(l.X, l.Baseline, c.measurer.Width(content, weight, size), size),
			Text: &Text{
				Content:  content,
				X:        l.X,
				Baseline: l.Baseline,
				Size:     size,
				Weight:   weight,
				Color:    l.Color,
			},
		})
	}

	if c.trimGuides {
		stroke := GuideColor
		plan.Ops = append(plan.Ops, Op{
			Kind:      OpRect,
			Layer:     LayerGuide,
			Rect:      layout.XYWH(c.geom.TrimLeft(), c.geom.TrimBottom(), c.geom.TrimWidth, c.geom.TrimHeight),
			Stroke:    &stroke,
			LineWidth: guideLineWidth,
			Opacity:   guideOpacity,
		})
	}
	return plan, nil
}

// image loads and inspects an asset. It returns false when the asset could
// not be loaded, after recording the skip. A loaded asset that is not a
// usable JPEG or PNG comes back with an empty Format.
func (c *Compositor) image(ctx context.Context, plan *Plan, layer Layer, ref string) (*Image, bool) {
	data, err := c.loader.Load(ctx, ref)
	if err != nil {
		if ctx.Err() != nil {
			return nil, false
		}
		reason := errors.UserMessage(err)
		if cause := stderrors.Unwrap(err); cause != nil {
			reason = cause.Error()
		}
		c.logger.Warn("skipping asset", "page", plan.PageID, "layer", layer, "asset", ref, "reason", reason)
		observability.Render().OnAssetSkipped(ctx, plan.PageID, ref, reason)
		plan.Skipped = append(plan.Skipped, Skip{Layer: layer, Asset: ref, Reason: reason})
		return nil, false
	}

	img, err := Inspect(ref, data)
	if err != nil {
		c.logger.Warn("drawing placeholder", "page", plan.PageID, "layer", layer, "asset", ref, "reason", err)
	}
	return img, true
}

// Inspect identifies an asset's format and native size. References with an
// extension other than .jpg, .jpeg or .png are unsupported; references
// without an extension are sniffed. On error the returned Image has an
// empty Format and marks a placeholder.
func Inspect(ref string, data []byte) (*Image, error) {
	img := &Image{Ref: ref}
	switch ext := refExt(ref); ext {
	case ".jpg", ".jpeg", ".png", "":
	default:
		return img, errors.New(errors.ErrCodeEmbed, "unsupported image format %q", ext)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return img, errors.Wrap(errors.ErrCodeEmbed, err, "decode %s", ref)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return img, errors.New(errors.ErrCodeEmbed, "image %s has no pixels", ref)
	}
	switch format {
	case "jpeg":
		img.Format = FormatJPEG
	case "png":
		img.Format = FormatPNG
	default:
		return img, errors.New(errors.ErrCodeEmbed, "unsupported image format %q", format)
	}
	img.Width, img.Height, img.Data = cfg.Width, cfg.Height, data
	return img, nil
}

// refExt returns the lower-cased extension of a path or URL path.
func refExt(ref string) string {
	p := ref
	if u, err := url.Parse(ref); err == nil && u.Scheme != "" {
		p = u.Path
	}
	return strings.ToLower(path.Ext(p))
}

func imageOrPlaceholder(layer Layer, r layout.Rect, img *Image) Op {
	if img.Format == "" {
		fill := PlaceholderColor
		return Op{Kind: OpRect, Layer: layer, Rect: r, Fill: &fill}
	}
	return Op{Kind: OpImage, Layer: layer, Rect: r, Image: img}
}

// overlayRect places an overlay. A single given dimension derives the other
// from the native aspect ratio; with neither, the default size is used.
// Sizes are rounded to whole units.
func overlayRect(o assets.Overlay, img *Image) layout.Rect {
	w, h := o.Width, o.Height
	nw, nh := float64(img.Width), float64(img.Height)
	if nw == 0 || nh == 0 {
		nw, nh = 1, 1
	}
	switch {
	case w > 0 && h <= 0:
		h = w * nh / nw
	case h > 0 && w <= 0:
		w = h * nw / nh
	case w <= 0 && h <= 0:
		w, h = DefaultOverlaySize, DefaultOverlaySize
	}
	return layout.XYWH(o.X, o.Y, math.Round(w), math.Round(h))
}

// textBox lays out one text box and appends its box and lines.
func (c *Compositor) textBox(ctx context.Context, plan *Plan, artRef string, tb TextBox) {
	tb = tb.withDefaults()
	color, err := ParseHex(tb.Color)
	if err != nil {
		c.logger.Debug("using default text colour", "page", plan.PageID, "err", err)
		color = TextColor
	}

	blk := text.Layout(c.measurer, text.Params{
		Content:    fonts.Printable(tb.Content),
		Weight:     tb.Font,
		Size:       tb.Size,
		LineHeight: tb.LineHeight,
		Align:      tb.Align,
		Wrap:       !tb.NoWrap,
		MaxWidth:   tb.MaxWidth,
		X:          tb.X,
		Bottom:     c.geom.TrimBottom() + tb.OffsetAboveTrim,
		Padding:    tb.Padding,
	})

	if !tb.NoBackground {
		plan.Ops = append(plan.Ops, c.boxOp(ctx, plan, artRef, blk.Box, tb.CornerRadius))
	}
	for _, l := range blk.Lines {
		plan.Ops = append(plan.Ops, Op{
			Kind:  OpText,
			Layer: LayerText,
			Rect:  layout.XYWH(l.X, l.Baseline, l.Width, tb.Size),
			Text: &Text{
				Content:  l.Text,
				X:        l.X,
				Baseline: l.Baseline,
				Size:     tb.Size,
				Weight:   tb.Font,
				Color:    color,
			},
		})
	}
}

// boxOp draws the text box art scaled uniformly and centered in box, or a
// flat rounded rectangle when the art is unavailable.
func (c *Compositor) boxOp(ctx context.Context, plan *Plan, artRef string, box layout.Rect, radius float64) Op {
	if artRef != "" {
		data, err := c.loader.Load(ctx, artRef)
		if err == nil {
			img, ierr := Inspect(artRef, data)
			if ierr == nil {
				return Op{Kind: OpImage, Layer: LayerTextBox, Rect: box.FitCentered(float64(img.Width), float64(img.Height)), Image: img}
			}
			err = ierr
		}
		c.logger.Debug("text box art unavailable, using flat box", "page", plan.PageID, "asset", artRef, "err", err)
	}
	fill := BoxFallbackColor
	return Op{
		Kind:    OpRect,
		Layer:   LayerTextBox,
		Rect:    box,
		Fill:    &fill,
		Radius:  min(radius, box.Width()/2, box.Height()/2),
		Opacity: BoxFallbackOpacity,
	}
}
