package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"reflect"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/herobook/pkg/assets"
	"github.com/matzehuels/herobook/pkg/book"
	"github.com/matzehuels/herobook/pkg/compose"
	"github.com/matzehuels/herobook/pkg/errors"
	"github.com/matzehuels/herobook/pkg/fonts"
)

type memLoader map[string][]byte

func (m memLoader) Load(_ context.Context, ref string) ([]byte, error) {
	if data, ok := m[ref]; ok {
		return data, nil
	}
	return nil, fmt.Errorf("%w: %s", assets.ErrNotFound, ref)
}

type fixedMeasurer struct{}

func (fixedMeasurer) Width(s string, _ fonts.Weight, _ float64) float64 {
	return float64(utf8.RuneCountInString(s)) * 10
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func testRunner(loader memLoader) *Runner {
	return &Runner{
		Resolver: assets.NewTemplateResolver(),
		Loader:   loader,
		Measurer: fixedMeasurer{},
	}
}

var fixedTime = time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)

func TestExecuteEmma(t *testing.T) {
	loader := memLoader{
		"backgrounds/compass-discovery.jpg": pngBytes(t, 10, 10),
		assets.DefaultTextBox:               pngBytes(t, 1969, 375),
	}
	res, err := testRunner(loader).Execute(context.Background(), Options{
		Request:     book.Example("ORDER-A", "Emma"),
		GeneratedAt: fixedTime,
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if res.Stats.Pages != 16 {
		t.Errorf("Stats.Pages = %d, want 16", res.Stats.Pages)
	}
	want := Metadata{
		Title:           "Emma and the Adventure Compass",
		ChildName:       "Emma",
		TotalPages:      16,
		GeneratedAt:     fixedTime,
		TemplateVersion: book.TemplateVersion,
		ColorSpace:      book.ColorCMYK,
		Binding:         book.BindingSoftcover,
	}
	if res.Metadata != want {
		t.Errorf("Metadata = %+v, want %+v", res.Metadata, want)
	}
	for name, data := range map[string][]byte{"book": res.Book, "cover": res.Cover} {
		if !bytes.HasPrefix(data, []byte("%PDF-")) {
			t.Errorf("%s is not a PDF", name)
		}
	}
	if res.Stats.Skipped == 0 || res.Stats.Skipped != len(res.Skips()) {
		t.Errorf("Stats.Skipped = %d, Skips() = %d; want equal and non-zero", res.Stats.Skipped, len(res.Skips()))
	}

	var ids []string
	for _, p := range res.Plans {
		ids = append(ids, p.PageID)
	}
	if want := assets.PageIDs()[:14]; !reflect.DeepEqual(ids[:14], want) {
		t.Errorf("story page order = %v, want %v", ids[:14], want)
	}
	if tail := ids[14:]; !reflect.DeepEqual(tail, []string{"dedication", "keepsake", "cover"}) {
		t.Errorf("closing pages = %v, want dedication, keepsake, cover", tail)
	}
}

func TestExecuteStoryText(t *testing.T) {
	req := book.Example("ORDER-T", "Emma")
	plans, err := testRunner(memLoader{}).Plan(context.Background(), Options{Request: req})
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	for i := range book.StoryPageCount {
		got := strings.Join(plans[i].Lines(), " ")
		if got != req.Manuscript.Pages[i].Text {
			t.Errorf("page %d text = %q, want %q", i+1, got, req.Manuscript.Pages[i].Text)
		}
	}
}

func TestExecuteValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *book.Request)
	}{
		{"thirteen pages", func(r *book.Request) { r.Manuscript.Pages = r.Manuscript.Pages[:13] }},
		{"25 character name", func(r *book.Request) { r.Child.Name = strings.Repeat("a", 25) }},
		{"age 11", func(r *book.Request) { r.Child.Age = 11 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := book.Example("ORDER-B", "Emma")
			tt.mutate(req)
			res, err := testRunner(memLoader{}).Execute(context.Background(), Options{Request: req})
			if !errors.IsValidation(err) {
				t.Fatalf("Execute() error = %v, want validation error", err)
			}
			if res != nil {
				t.Error("Execute() returned a result for an invalid request")
			}
		})
	}

	if _, err := testRunner(memLoader{}).Execute(context.Background(), Options{}); !errors.IsValidation(err) {
		t.Errorf("Execute() without request error = %v, want validation error", err)
	}
}

func TestExecuteMissingBackground(t *testing.T) {
	req := book.Example("ORDER-E", "Emma")
	req.Assets = &book.Assets{Images: []book.Image{{ID: "p3", URL: "https://cdn.example.com/missing.png"}}}
	var logs bytes.Buffer
	runner := testRunner(memLoader{})
	runner.Logger = log.New(&logs)
	res, err := runner.Execute(context.Background(), Options{Request: req})
	if err != nil {
		t.Fatalf("Execute() error = %v, want success with skipped background", err)
	}
	if out := logs.String(); !strings.Contains(out, "skipping asset") || !strings.Contains(out, "missing.png") {
		t.Errorf("runner log = %q, want a skipping asset warning for missing.png", out)
	}
	var found bool
	for _, s := range res.Plans[2].Skipped {
		if s.Asset == "https://cdn.example.com/missing.png" && s.Layer == compose.LayerBackground {
			found = true
		}
	}
	if !found {
		t.Errorf("p3 Skipped = %+v, want missing background recorded", res.Plans[2].Skipped)
	}
	if got := res.Plans[2].Lines(); len(got) == 0 {
		t.Error("p3 lost its text")
	}
}

func TestExecuteAstralText(t *testing.T) {
	req := book.Example("ORDER-EMOJI", "Emma")
	req.Manuscript.Pages[4].Text = "A gust of wind 🌬 lifted Emma into the sky 𝄞"
	req.Options = &book.Personalization{Dedication: "Happy birthday Emma 🎂 love, Grandma"}

	res, err := testRunner(memLoader{}).Execute(context.Background(), Options{Request: req})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !bytes.HasPrefix(res.Book, []byte("%PDF-")) {
		t.Fatal("book is not a PDF")
	}
	if got := strings.Join(res.Plans[4].Lines(), " "); got != "A gust of wind \uFFFD lifted Emma into the sky \uFFFD" {
		t.Errorf("p5 text = %q, want astral runes replaced", got)
	}
	dedication := strings.Join(res.Plans[book.StoryPageCount].Lines(), " ")
	if !strings.Contains(dedication, "Happy birthday Emma \uFFFD love, Grandma") {
		t.Errorf("dedication text = %q, want emoji replaced", dedication)
	}
}

func TestExecuteRejectsBlankField(t *testing.T) {
	req := book.Example("ORDER-F", "Emma")
	if err := req.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	req.Options.Hometown = ""
	_, err := testRunner(memLoader{}).Execute(context.Background(), Options{Request: req})
	if !errors.Is(err, errors.ErrCodeUnresolvedPlaceholder) {
		t.Errorf("Execute() error = %v, want UNRESOLVED_PLACEHOLDER", err)
	}
}

func TestClosingPages(t *testing.T) {
	req := book.Example("ORDER-C", "Leo")
	req.Child.Age = 4
	plans, err := testRunner(memLoader{}).Plan(context.Background(), Options{Request: req})
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	dedication, keepsake, cover := plans[14], plans[15], plans[16]

	// labels are drawn after text boxes
	lines := dedication.Lines()
	if heading := lines[len(lines)-1]; heading != DedicationHeading {
		t.Errorf("dedication heading = %q, want %q", heading, DedicationHeading)
	}
	if body := strings.Join(lines[:len(lines)-1], " "); !strings.HasPrefix(body, "Dear Leo, You are the hero") {
		t.Errorf("dedication body = %q, want fallback naming Leo", body)
	}

	lines = keepsake.Lines()
	want := []string{"This is me at age 4!", KeepsakePrompt, KeepsakeDateLine}
	if !reflect.DeepEqual(lines, want) {
		t.Errorf("keepsake lines = %q, want %q", lines, want)
	}
	if keepsake.Count(compose.OpRect) != 1 {
		t.Errorf("keepsake rects = %d, want the drawing frame", keepsake.Count(compose.OpRect))
	}

	if cover.Ops[0].Layer != compose.LayerBackdrop {
		t.Errorf("cover Ops[0] layer = %v, want backdrop", cover.Ops[0].Layer)
	}
	title := cover.Ops[len(cover.Ops)-1].Text
	if title == nil || title.Content != "Leo and the Adventure Compass" {
		t.Fatalf("cover title = %+v", title)
	}
	if title.X != 150 || title.Baseline != 3075-375 || title.Weight != fonts.Bold {
		t.Errorf("cover title at (%v, %v) weight %v, want (150, 2700) bold", title.X, title.Baseline, title.Weight)
	}
}

func TestDedicationText(t *testing.T) {
	req := book.Example("ORDER-D", "Maya")
	req.Options = &book.Personalization{Dedication: "  For Maya, with love from Grandma.  "}
	if got := DedicationText(req); got != "For Maya, with love from Grandma." {
		t.Errorf("DedicationText() = %q", got)
	}
}

func TestPlanOrderIndependentOfWorkers(t *testing.T) {
	runner := testRunner(memLoader{"backgrounds/compass-discovery.jpg": pngBytes(t, 4, 4)})
	one, err := runner.Plan(context.Background(), Options{Request: book.Example("ORDER-W", "Emma"), Workers: 1})
	if err != nil {
		t.Fatal(err)
	}
	many, err := runner.Plan(context.Background(), Options{Request: book.Example("ORDER-W", "Emma"), Workers: 8})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(one, many) {
		t.Error("plans differ between 1 and 8 workers")
	}
}

func TestThumbnail(t *testing.T) {
	req := book.Example("ORDER-TH", "Emma")
	req.Assets = &book.Assets{Images: []book.Image{{ID: "cover", URL: "https://cdn.example.com/cover.png"}}}
	loader := memLoader{"https://cdn.example.com/cover.png": pngBytes(t, 800, 600)}

	res, err := testRunner(loader).Execute(context.Background(), Options{Request: req})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	img, err := jpeg.Decode(bytes.NewReader(res.Thumbnail))
	if err != nil {
		t.Fatalf("thumbnail is not a JPEG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 400 || b.Dy() != 300 {
		t.Errorf("thumbnail size = %dx%d, want 400x300", b.Dx(), b.Dy())
	}

	res, err = testRunner(memLoader{}).Execute(context.Background(), Options{Request: book.Example("ORDER-TH2", "Emma")})
	if err != nil {
		t.Fatal(err)
	}
	if res.Thumbnail != nil {
		t.Error("Thumbnail without cover art should be nil")
	}
}

func TestExecuteCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := testRunner(memLoader{}).Execute(ctx, Options{Request: book.Example("ORDER-X", "Emma")}); err == nil {
		t.Error("Execute() with cancelled context = nil error")
	}
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{Request: book.Example("ORDER-O", "Emma"), Workers: 100}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if opts.Workers != MaxWorkers {
		t.Errorf("Workers = %d, want capped at %d", opts.Workers, MaxWorkers)
	}
	if opts.TextSize != DefaultTextSize || opts.CoverTitleSize != DefaultCoverTitleSize {
		t.Errorf("sizes = %v/%v, want defaults", opts.TextSize, opts.CoverTitleSize)
	}
	if opts.GeneratedAt.IsZero() {
		t.Error("GeneratedAt should be set")
	}
	if opts.Logger != nil {
		t.Error("Logger should stay nil so the runner's logger is used")
	}

	bad := Options{Request: book.Example("ORDER-O", "Emma"), Workers: -1}
	if err := bad.ValidateAndSetDefaults(); err == nil {
		t.Error("negative workers accepted")
	}
}
