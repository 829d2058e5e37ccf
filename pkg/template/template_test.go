package template

import (
	"strings"
	"testing"

	"github.com/matzehuels/herobook/pkg/book"
	"github.com/matzehuels/herobook/pkg/errors"
)

func testFields() Fields {
	return Fields{
		ChildName:      "Emma",
		ChildAge:       "5",
		HairColor:      "blonde",
		SkinTone:       "light",
		Pronouns:       "she/her",
		FavoriteAnimal: "dog",
		FavoriteFood:   "pizza",
		FavoriteColor:  "blue",
		Hometown:       "Adventure City",
		Occasion:       "general",
	}
}

func TestSubstitute(t *testing.T) {
	tests := []struct {
		name    string
		tpl     string
		want    string
		wantErr string
	}{
		{"no placeholders", "compass-discovery.jpg", "compass-discovery.jpg", ""},
		{"single", "{{FAVORITE_ANIMAL}}-companion.png", "dog-companion.png", ""},
		{"multiple", "child-character-{{HAIR_COLOR}}-{{SKIN_TONE}}.png", "child-character-blonde-light.png", ""},
		{"repeated", "{{CHILD_NAME}} and {{CHILD_NAME}}", "Emma and Emma", ""},
		{"inner spaces", "Hello {{ CHILD_NAME }}!", "Hello Emma!", ""},
		{"unknown key", "{{SHOE_SIZE}}.png", "", "{{SHOE_SIZE}}"},
		{"lowercase key is unknown", "{{child_name}}", "", "{{child_name}}"},
		{"mixed known and unknown", "{{CHILD_NAME}} {{NOPE}} {{ALSO_NOPE}}", "", "{{ALSO_NOPE}}, {{NOPE}}"},
		{"single braces untouched", "{CHILD_NAME}", "{CHILD_NAME}", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Substitute(tt.tpl, testFields())
			if tt.wantErr != "" {
				if !errors.Is(err, errors.ErrCodeUnresolvedPlaceholder) {
					t.Fatalf("Substitute() error = %v, want UNRESOLVED_PLACEHOLDER", err)
				}
				if !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("error = %q, want substring %q", err.Error(), tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Substitute() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Substitute() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSubstituteMissingValue(t *testing.T) {
	fields := testFields()
	delete(fields, FavoriteFood)
	if _, err := Substitute("{{FAVORITE_FOOD}}-shaped-clouds.png", fields); err == nil {
		t.Fatal("Substitute() with missing field = nil error, want error")
	}

	fields = testFields()
	fields[Hometown] = ""
	if _, err := Substitute("{{HOMETOWN}}", fields); err == nil {
		t.Fatal("Substitute() with empty field = nil error, want error")
	}
}

func TestSubstituteDoesNotRescanValues(t *testing.T) {
	fields := testFields()
	fields[ChildName] = "{{HOMETOWN}}"
	got, err := Substitute("{{CHILD_NAME}}", fields)
	if err != nil {
		t.Fatalf("Substitute() error = %v", err)
	}
	if got != "{{HOMETOWN}}" {
		t.Errorf("Substitute() = %q, want value inserted verbatim", got)
	}
}

func TestFieldsValidate(t *testing.T) {
	if err := testFields().Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}

	f := testFields()
	f[Key("EXTRA")] = "x"
	if err := f.Validate(); err == nil {
		t.Error("Validate() with unknown key = nil, want error")
	}

	f = testFields()
	f[Pronouns] = ""
	if err := f.Validate(); err == nil {
		t.Error("Validate() with empty value = nil, want error")
	}
}

func TestFieldsFor(t *testing.T) {
	req := book.Example("ORDER-1", "Emma")
	if err := req.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() error = %v", err)
	}
	f := FieldsFor(req)
	if err := f.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	want := map[Key]string{
		ChildName:      "Emma",
		ChildAge:       "5",
		HairColor:      "blonde",
		SkinTone:       "light",
		Pronouns:       "they/them",
		FavoriteAnimal: "dog",
		FavoriteFood:   "pizza",
		FavoriteColor:  "blue",
		Hometown:       "Adventure City",
		Occasion:       "general",
	}
	for k, v := range want {
		if f[k] != v {
			t.Errorf("FieldsFor()[%s] = %q, want %q", k, f[k], v)
		}
	}
	if len(f) != len(Keys) {
		t.Errorf("len(FieldsFor()) = %d, want %d", len(f), len(Keys))
	}
}
