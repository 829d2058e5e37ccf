package assets

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/matzehuels/herobook/pkg/errors"
	"github.com/matzehuels/herobook/pkg/template"
)

func testFields() template.Fields {
	return template.Fields{
		template.ChildName:      "Emma",
		template.ChildAge:       "5",
		template.HairColor:      "blonde",
		template.SkinTone:       "light",
		template.Pronouns:       "she/her",
		template.FavoriteAnimal: "dog",
		template.FavoriteFood:   "pizza",
		template.FavoriteColor:  "blue",
		template.Hometown:       "Adventure City",
		template.Occasion:       "general",
	}
}

func TestTemplateResolverCatalog(t *testing.T) {
	r := NewTemplateResolver()
	for _, id := range PageIDs() {
		t.Run(id, func(t *testing.T) {
			pa, err := r.ResolvePageAssets(id, testFields())
			if err != nil {
				t.Fatalf("ResolvePageAssets(%q) error = %v", id, err)
			}
			if pa.PageID != id {
				t.Errorf("PageID = %q, want %q", pa.PageID, id)
			}
			if !strings.HasPrefix(pa.Background, "backgrounds/") || !strings.HasSuffix(pa.Background, ".jpg") {
				t.Errorf("Background = %q, want backgrounds/*.jpg", pa.Background)
			}
			if pa.TextBox != DefaultTextBox {
				t.Errorf("TextBox = %q, want %q", pa.TextBox, DefaultTextBox)
			}
			if len(pa.Overlays) == 0 {
				t.Error("Overlays is empty")
			}
			for _, o := range pa.Overlays {
				if strings.Contains(o.File, "{{") {
					t.Errorf("overlay %q has an unresolved placeholder", o.File)
				}
			}
		})
	}
	if got := len(PageIDs()); got != 17 {
		t.Errorf("len(PageIDs()) = %d, want 17", got)
	}
}

func TestTemplateResolverPersonalizes(t *testing.T) {
	r := NewTemplateResolver()
	pa, err := r.ResolvePageAssets("p4", testFields())
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		"overlays/pizza-shaped-clouds.png",
		"overlays/child-character-blonde-light.png",
		"overlays/dog-companion.png",
		"overlays/compass-blue-glow.png",
	}
	if len(pa.Overlays) != len(want) {
		t.Fatalf("len(Overlays) = %d, want %d", len(pa.Overlays), len(want))
	}
	for i, o := range pa.Overlays {
		if o.File != want[i] {
			t.Errorf("Overlays[%d].File = %q, want %q", i, o.File, want[i])
		}
	}
	if pa.Background != "backgrounds/tall-mountain.jpg" {
		t.Errorf("Background = %q", pa.Background)
	}

	// rainbow garden is shared by three pages
	for _, id := range []string{"p8", "p9", "p10"} {
		pa, _ := r.ResolvePageAssets(id, testFields())
		if pa.Background != "backgrounds/rainbow-garden.jpg" {
			t.Errorf("%s Background = %q, want rainbow-garden", id, pa.Background)
		}
	}
}

func TestTemplateResolverErrors(t *testing.T) {
	r := NewTemplateResolver()

	_, err := r.ResolvePageAssets("p15", testFields())
	if !errors.Is(err, errors.ErrCodeAssetResolution) {
		t.Errorf("unknown page error = %v, want ASSET_RESOLUTION", err)
	}

	fields := testFields()
	delete(fields, template.FavoriteColor)
	_, err = r.ResolvePageAssets("p1", fields)
	if !errors.Is(err, errors.ErrCodeUnresolvedPlaceholder) {
		t.Errorf("missing field error = %v, want UNRESOLVED_PLACEHOLDER", err)
	}
}

func TestResolverIsPure(t *testing.T) {
	r := NewTemplateResolver()
	a, _ := r.ResolvePageAssets("p6", testFields())
	b, _ := r.ResolvePageAssets("p6", testFields())
	if len(a.Overlays) != len(b.Overlays) || a.Background != b.Background {
		t.Fatal("ResolvePageAssets() differs between identical calls")
	}
	for i := range a.Overlays {
		if a.Overlays[i] != b.Overlays[i] {
			t.Errorf("Overlays[%d] differs: %+v vs %+v", i, a.Overlays[i], b.Overlays[i])
		}
	}
}

func TestWithOverrides(t *testing.T) {
	base := NewTemplateResolver()
	if WithOverrides(base, nil) != Resolver(base) {
		t.Error("WithOverrides(nil) should return the inner resolver")
	}

	r := WithOverrides(base, map[string]string{
		"p3":      "https://cdn.example.com/orders/1/p3.png",
		TextBoxID: "https://cdn.example.com/box.png",
	})
	pa, err := r.ResolvePageAssets("p3", testFields())
	if err != nil {
		t.Fatal(err)
	}
	if pa.Background != "https://cdn.example.com/orders/1/p3.png" {
		t.Errorf("Background = %q, want override", pa.Background)
	}
	if pa.TextBox != "https://cdn.example.com/box.png" {
		t.Errorf("TextBox = %q, want override", pa.TextBox)
	}
	if len(pa.Overlays) == 0 {
		t.Error("overrides should keep catalog overlays")
	}

	pa, _ = r.ResolvePageAssets("p4", testFields())
	if pa.Background != "backgrounds/tall-mountain.jpg" {
		t.Errorf("p4 Background = %q, want catalog background", pa.Background)
	}

	_, err = r.ResolvePageAssets("nope", testFields())
	if err == nil || stderrors.Is(err, ErrNotFound) {
		t.Errorf("unknown page through overrides error = %v", err)
	}
}
