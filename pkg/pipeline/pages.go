package pipeline

import (
	"fmt"
	"strings"

	"github.com/matzehuels/herobook/pkg/assets"
	"github.com/matzehuels/herobook/pkg/book"
	"github.com/matzehuels/herobook/pkg/compose"
	"github.com/matzehuels/herobook/pkg/fonts"
	"github.com/matzehuels/herobook/pkg/layout"
	"github.com/matzehuels/herobook/pkg/text"
)

// Fixed page copy.
const (
	DedicationHeading = "To Our Little Hero"
	KeepsakePrompt    = "Draw a picture of your favorite part of the story!"
	KeepsakeDateLine  = "Date: _______________"
)

// Page layout constants, in inches.
const (
	storyMarginIn      = 0.75
	headingFromTopIn   = 2.0
	dedicationBodyIn   = 3.5
	keepsakeFrameTopIn = 2.75
	keepsakeFrameBotIn = 2.0
	keepsakeDateIn     = 1.0
	frameInsetIn       = 1.0
	coverTitleXIn      = 0.5
	coverTitleDropIn   = 1.25

	headingScale   = 2.0
	frameLineWidth = 4.0
	frameRadius    = 30.0
)

// DedicationText returns the dedication body: the customer's text or the
// default message naming the child.
func DedicationText(req *book.Request) string {
	if d := strings.TrimSpace(req.Personalization().Dedication); d != "" {
		return d
	}
	return fmt.Sprintf("Dear %s, You are the hero of this story and every story to come. "+
		"May your adventures always be magical. With love, Your family", req.Child.Name)
}

// KeepsakeHeading returns the keepsake page heading.
func KeepsakeHeading(req *book.Request) string {
	return fmt.Sprintf("This is me at age %d!", req.Child.Age)
}

// pageBuilder turns resolved assets into compositor input for each kind of
// page. It holds only request-scoped values.
type pageBuilder struct {
	req      *book.Request
	geom     book.Geometry
	measurer text.Measurer
	textSize float64
	title    float64
}

// storyTextBox is the text box shared by story and dedication pages: full
// trim width less margins, centered lines.
func (b *pageBuilder) storyTextBox(content string) compose.TextBox {
	margin := book.Inches(storyMarginIn)
	return compose.TextBox{
		Content:  content,
		Size:     b.textSize,
		Align:    text.AlignCenter,
		X:        b.geom.TrimLeft() + margin + compose.DefaultPadding,
		MaxWidth: b.geom.TrimWidth - 2*margin - 2*compose.DefaultPadding,
	}
}

func (b *pageBuilder) story(pa assets.PageAssets, i int) compose.Page {
	return compose.Page{
		Assets:    pa,
		TextBoxes: []compose.TextBox{b.storyTextBox(b.req.Manuscript.Pages[i].Text)},
	}
}

func (b *pageBuilder) dedication(pa assets.PageAssets) compose.Page {
	body := b.storyTextBox(DedicationText(b.req))
	body.OffsetAboveTrim = book.Inches(dedicationBodyIn)
	return compose.Page{
		Assets:    pa,
		TextBoxes: []compose.TextBox{body},
		Labels:    []compose.Label{b.centered(DedicationHeading, fonts.Bold, book.Inches(headingFromTopIn), b.textSize*headingScale)},
	}
}

func (b *pageBuilder) keepsake(pa assets.PageAssets) compose.Page {
	inset := book.Inches(frameInsetIn)
	frame := layout.Rect{
		Left:   b.geom.TrimLeft() + inset,
		Right:  b.geom.TrimLeft() + b.geom.TrimWidth - inset,
		Bottom: b.geom.TrimBottom() + book.Inches(keepsakeFrameBotIn),
		Top:    b.geom.PageHeight() - b.geom.TrimBottom() - book.Inches(keepsakeFrameTopIn),
	}
	stroke := compose.FrameColor

	prompt := b.centered(KeepsakePrompt, fonts.Normal, 0, b.textSize)
	prompt.Baseline = frame.Top - compose.DefaultPadding - b.textSize

	date := b.centered(KeepsakeDateLine, fonts.Normal, 0, b.textSize)
	date.Baseline = b.geom.TrimBottom() + book.Inches(keepsakeDateIn)

	return compose.Page{
		Assets: pa,
		Shapes: []compose.Shape{{Rect: frame, Stroke: &stroke, LineWidth: frameLineWidth, Radius: frameRadius}},
		Labels: []compose.Label{
			b.centered(KeepsakeHeading(b.req), fonts.Bold, book.Inches(headingFromTopIn), b.textSize*headingScale),
			prompt,
			date,
		},
	}
}

// cover has a white backdrop under the optional background art and the
// title near the top-left corner.
func (b *pageBuilder) cover(pa assets.PageAssets) compose.Page {
	white := compose.White
	pa.TextBox = ""
	p := compose.Page{Assets: pa, Backdrop: &white}
	if title := strings.TrimSpace(b.req.Manuscript.Title); title != "" {
		p.Labels = []compose.Label{{
			Content:  title,
			X:        book.Inches(coverTitleXIn),
			Baseline: b.geom.PageHeight() - book.Inches(coverTitleDropIn),
			Size:     b.title,
			Font:     fonts.Bold,
			Color:    compose.TitleColor,
		}}
	}
	return p
}

// centered returns a label centered on the page, its baseline drop units
// below the top trim line.
func (b *pageBuilder) centered(s string, weight fonts.Weight, drop, size float64) compose.Label {
	w := b.measurer.Width(s, weight, size)
	return compose.Label{
		Content:  s,
		X:        (b.geom.PageWidth() - w) / 2,
		Baseline: b.geom.PageHeight() - b.geom.TrimBottom() - drop,
		Size:     size,
		Font:     weight,
		Color:    compose.TitleColor,
	}
}
