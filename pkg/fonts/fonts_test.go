package fonts

import "testing"

func TestParseWeight(t *testing.T) {
	tests := []struct {
		in   string
		want Weight
	}{
		{"", Normal},
		{"normal", Normal},
		{"bold", Bold},
		{"Bold", Bold},
		{"semi-BOLD", Bold},
		{"italic", Normal},
	}
	for _, tt := range tests {
		if got := ParseWeight(tt.in); got != tt.want {
			t.Errorf("ParseWeight(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestTTF(t *testing.T) {
	regular, bold := TTF(Normal), TTF(Bold)
	if len(regular) == 0 || len(bold) == 0 {
		t.Fatal("TTF() returned empty font data")
	}
	if &regular[0] == &bold[0] {
		t.Error("TTF(Bold) should differ from TTF(Normal)")
	}
	if Style(Bold) != "B" || Style(Normal) != "" {
		t.Errorf("Style() = %q/%q, want B/empty", Style(Bold), Style(Normal))
	}
}

func TestPrintable(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"Happy birthday", "Happy birthday"},
		{"Zoë & José", "Zoë & José"},
		{"Happy birthday 🎂", "Happy birthday \uFFFD"},
		{"🦊🦊 fox", "\uFFFD\uFFFD fox"},
		{"𝒜 is astral", "\uFFFD is astral"},
	}
	for _, tt := range tests {
		if got := Printable(tt.in); got != tt.want {
			t.Errorf("Printable(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
