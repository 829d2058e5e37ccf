package book

import (
	"strings"
	"testing"

	"github.com/matzehuels/herobook/pkg/errors"
)

func TestValidateAndSetDefaults(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *Request)
		wantErr string // substring of the message; empty means valid
	}{
		{
			name:   "valid example",
			mutate: func(r *Request) {},
		},
		{
			name:    "thirteen pages",
			mutate:  func(r *Request) { r.Manuscript.Pages = r.Manuscript.Pages[:13] },
			wantErr: "manuscript.pages must have exactly 14 entries (got 13)",
		},
		{
			name: "fifteen pages",
			mutate: func(r *Request) {
				r.Manuscript.Pages = append(r.Manuscript.Pages, Page{ID: "p15"})
			},
			wantErr: "manuscript.pages must have exactly 14 entries",
		},
		{
			name:    "no pages",
			mutate:  func(r *Request) { r.Manuscript.Pages = nil },
			wantErr: "manuscript.pages",
		},
		{
			name:    "name of 25 characters",
			mutate:  func(r *Request) { r.Child.Name = strings.Repeat("a", 25) },
			wantErr: "child.name must be at most 20 characters",
		},
		{
			name:    "empty name",
			mutate:  func(r *Request) { r.Child.Name = "" },
			wantErr: "child.name is required",
		},
		{
			name:    "blank name",
			mutate:  func(r *Request) { r.Child.Name = "   " },
			wantErr: "child.name must not be blank",
		},
		{
			name:   "name of 20 multibyte characters",
			mutate: func(r *Request) { r.Child.Name = strings.Repeat("é", 20) },
		},
		{
			name:    "age above range",
			mutate:  func(r *Request) { r.Child.Age = 11 },
			wantErr: "child.age must be at most 10",
		},
		{
			name:    "negative age",
			mutate:  func(r *Request) { r.Child.Age = -1 },
			wantErr: "child.age must be at least 0",
		},
		{
			name:   "age zero",
			mutate: func(r *Request) { r.Child.Age = 0 },
		},
		{
			name:    "unknown hair",
			mutate:  func(r *Request) { r.Child.Hair = "green" },
			wantErr: "child.hair must be one of: black, brown, blonde, red, other",
		},
		{
			name:    "unknown skin",
			mutate:  func(r *Request) { r.Child.Skin = "blue" },
			wantErr: "child.skin must be one of",
		},
		{
			name:    "page text too long",
			mutate:  func(r *Request) { r.Manuscript.Pages[3].Text = strings.Repeat("x", 451) },
			wantErr: "manuscript.pages[3].text must be at most 450 characters",
		},
		{
			name:   "page text at limit",
			mutate: func(r *Request) { r.Manuscript.Pages[3].Text = strings.Repeat("x", 450) },
		},
		{
			name:    "prompt too long",
			mutate:  func(r *Request) { r.Manuscript.Pages[0].IllustrationPrompt = strings.Repeat("x", 281) },
			wantErr: "manuscript.pages[0].illustration_prompt must be at most 280 characters",
		},
		{
			name:    "title too long",
			mutate:  func(r *Request) { r.Manuscript.Title = strings.Repeat("x", 61) },
			wantErr: "manuscript.title must be at most 60 characters",
		},
		{
			name:    "dedication too long",
			mutate:  func(r *Request) { r.Options = &Personalization{Dedication: strings.Repeat("x", 501)} },
			wantErr: "options.dedication must be at most 500 characters",
		},
		{
			name:    "unknown occasion",
			mutate:  func(r *Request) { r.Options = &Personalization{Occasion: "graduation"} },
			wantErr: "options.occasion must be one of",
		},
		{
			name:    "bad color space",
			mutate:  func(r *Request) { r.Spec.ColorSpace = "LAB" },
			wantErr: "spec.colorSpace must be one of: CMYK, RGB",
		},
		{
			name:    "bad page count",
			mutate:  func(r *Request) { r.Spec.PageCount = 24 },
			wantErr: "spec.pageCount must equal 16",
		},
		{
			name:    "bad trim",
			mutate:  func(r *Request) { r.Spec.Trim = "letter" },
			wantErr: "spec.trim",
		},
		{
			name:    "bad asset url",
			mutate:  func(r *Request) { r.Assets = &Assets{Images: []Image{{ID: "p1", URL: "not a url"}}} },
			wantErr: "assets.images[0].url must be an http or https URL",
		},
		{
			name:    "file url asset",
			mutate:  func(r *Request) { r.Assets = &Assets{Images: []Image{{ID: "p1", URL: "file:///etc/hostname"}}} },
			wantErr: "assets.images[0].url must be an http or https URL",
		},
		{
			name:    "absolute path asset",
			mutate:  func(r *Request) { r.Assets = &Assets{Images: []Image{{ID: "cover", URL: "/etc/passwd"}}} },
			wantErr: "assets.images[0].url must be an http or https URL",
		},
		{
			name:   "https asset",
			mutate: func(r *Request) { r.Assets = &Assets{Images: []Image{{ID: "p1", URL: "https://cdn.example.com/p1.png"}}} },
		},
		{
			name: "bad shipping email",
			mutate: func(r *Request) {
				r.Shipping = &Shipping{Name: "A", Address1: "1 Main", City: "C", State: "S", Zip: "1", Email: "nope"}
			},
			wantErr: "shipping.email must be a valid email address",
		},
		{
			name:    "missing order id",
			mutate:  func(r *Request) { r.OrderID = "" },
			wantErr: "orderId cannot be empty",
		},
		{
			name:    "order id with slash",
			mutate:  func(r *Request) { r.OrderID = "a/b" },
			wantErr: "invalid orderId",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := Example("ORDER-1", "Emma")
			tt.mutate(req)
			err := req.ValidateAndSetDefaults()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("ValidateAndSetDefaults() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("ValidateAndSetDefaults() = nil, want error containing %q", tt.wantErr)
			}
			if !errors.IsValidation(err) {
				t.Errorf("code = %v, want a validation code", errors.GetCode(err))
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want substring %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestSetDefaults(t *testing.T) {
	req := Example("ORDER-1", "Emma")
	if err := req.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() error = %v", err)
	}

	checks := []struct {
		name string
		got  any
		want any
	}{
		{"trim", req.Spec.Trim, DefaultTrim},
		{"bleed", req.Spec.Bleed, DefaultBleed},
		{"pageCount", req.Spec.PageCount, 16},
		{"colorSpace", req.Spec.ColorSpace, ColorCMYK},
		{"binding", req.Spec.Binding, BindingSoftcover},
		{"pronouns", req.Child.Pronouns, "they/them"},
		{"animal", req.Options.FavoriteAnimal, "dog"},
		{"food", req.Options.FavoriteFood, "pizza"},
		{"color", req.Options.FavoriteColor, "blue"},
		{"hometown", req.Options.Hometown, "Adventure City"},
		{"occasion", req.Options.Occasion, OccasionGeneral},
		{"dedication", req.Options.Dedication, ""},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
}

func TestSetDefaultsKeepsChoices(t *testing.T) {
	req := Example("ORDER-1", "Emma")
	req.Child.Pronouns = "she/her"
	req.Options = &Personalization{FavoriteAnimal: "unicorn", FavoriteColor: "purple"}
	if err := req.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() error = %v", err)
	}
	if req.Child.Pronouns != "she/her" {
		t.Errorf("Pronouns = %q, want she/her", req.Child.Pronouns)
	}
	if req.Options.FavoriteAnimal != "unicorn" || req.Options.FavoriteColor != "purple" {
		t.Errorf("Options = %+v, want unicorn/purple kept", req.Options)
	}
	if req.Options.FavoriteFood != "pizza" {
		t.Errorf("FavoriteFood = %q, want pizza", req.Options.FavoriteFood)
	}
}

func TestDecode(t *testing.T) {
	_, err := Decode(strings.NewReader(`{"orderId": `))
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Decode(malformed) code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidInput)
	}

	req, err := Decode(strings.NewReader(`{"orderId":"X1","child":{"name":"Leo","age":4,"hair":"red","skin":"tan"},
		"assets":{"images":[{"id":"cover","url":"https://cdn.example.com/cover.png"}]}}`))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if req.Child.Name != "Leo" || req.Child.Age != 4 {
		t.Errorf("Child = %+v, want Leo/4", req.Child)
	}
	if url, ok := req.ImageURL("cover"); !ok || url != "https://cdn.example.com/cover.png" {
		t.Errorf("ImageURL(cover) = %q, %v", url, ok)
	}
	if _, ok := req.ImageURL("p1"); ok {
		t.Error("ImageURL(p1) should be absent")
	}
}

func TestStoryPageID(t *testing.T) {
	tests := []struct {
		i    int
		want string
	}{
		{0, "p1"},
		{2, "p3"},
		{13, "p14"},
	}
	for _, tt := range tests {
		if got := StoryPageID(tt.i); got != tt.want {
			t.Errorf("StoryPageID(%d) = %q, want %q", tt.i, got, tt.want)
		}
	}
}

func TestGeometry(t *testing.T) {
	tests := []struct {
		name         string
		spec         RenderSpec
		wantW, wantH float64
		wantBleed    float64
		wantErr      bool
	}{
		{"defaults", RenderSpec{}, 2475, 3075, 37.5, false},
		{"explicit 8x10", RenderSpec{Trim: "8x10", Bleed: "0.125in"}, 2475, 3075, 37.5, false},
		{"fractional trim with spaces", RenderSpec{Trim: "8.5 x 11", Bleed: "0"}, 2550, 3300, 0, false},
		{"bare inches bleed", RenderSpec{Trim: "8x8", Bleed: "0.25"}, 2550, 2550, 75, false},
		{"millimetre bleed", RenderSpec{Trim: "8x8", Bleed: "25.4mm"}, 3000, 3000, 300, false},
		{"garbage trim", RenderSpec{Trim: "big"}, 0, 0, 0, true},
		{"negative trim", RenderSpec{Trim: "-8x10"}, 0, 0, 0, true},
		{"huge trim", RenderSpec{Trim: "30x30"}, 0, 0, 0, true},
		{"garbage bleed", RenderSpec{Bleed: "wide"}, 0, 0, 0, true},
		{"bleed too large", RenderSpec{Bleed: "2in"}, 0, 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := tt.spec.Geometry()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Geometry() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if g.PageWidth() != tt.wantW {
				t.Errorf("PageWidth() = %v, want %v", g.PageWidth(), tt.wantW)
			}
			if g.PageHeight() != tt.wantH {
				t.Errorf("PageHeight() = %v, want %v", g.PageHeight(), tt.wantH)
			}
			if g.TrimBottom() != tt.wantBleed {
				t.Errorf("TrimBottom() = %v, want %v", g.TrimBottom(), tt.wantBleed)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	if _, err := Validate(nil); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Validate(nil) code = %v, want INVALID_INPUT", errors.GetCode(err))
	}
	req, err := Validate(Example("ORDER-7", "Emma"))
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if req.Spec.PageCount != InteriorPageCount {
		t.Errorf("PageCount = %d, want %d", req.Spec.PageCount, InteriorPageCount)
	}
}
