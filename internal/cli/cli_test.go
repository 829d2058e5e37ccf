package cli

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/herobook/pkg/book"
	"github.com/matzehuels/herobook/pkg/compose"
	"github.com/matzehuels/herobook/pkg/fonts"
	"github.com/matzehuels/herobook/pkg/layout"
	"github.com/matzehuels/herobook/pkg/pipeline"
)

func TestRootCommand(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()
	want := []string{"render", "plan", "validate", "example", "serve", "status", "cache", "completion"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("Find(%q) = %v, %v", name, cmd, err)
		}
	}
	if root.PersistentFlags().Lookup("config") == nil {
		t.Error("--config flag missing")
	}
}

func TestReadRequest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "emma.json")
	data, err := json.Marshal(book.Example("ORDER-1", "Emma"))
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	req, err := readRequest(path)
	if err != nil {
		t.Fatalf("readRequest() error = %v", err)
	}
	if req.OrderID != "ORDER-1" || len(req.Manuscript.Pages) != book.StoryPageCount {
		t.Errorf("readRequest() = %s with %d pages", req.OrderID, len(req.Manuscript.Pages))
	}
	if _, err := readRequest(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("readRequest(missing) = nil error")
	}
}

func TestFormatStats(t *testing.T) {
	got := formatStats(pipeline.Stats{Pages: 16, Ops: 120, Skipped: 2})
	for _, want := range []string{"16 pages", "120 ops", "2 skipped"} {
		if !strings.Contains(got, want) {
			t.Errorf("formatStats() = %q, want %q", got, want)
		}
	}
	if got := formatStats(pipeline.Stats{Pages: 16}); !strings.Contains(got, "nothing skipped") {
		t.Errorf("formatStats() = %q, want nothing skipped", got)
	}
}

func TestDescribeOp(t *testing.T) {
	fill := compose.White
	tests := []struct {
		name string
		op   compose.Op
		want string
	}{
		{
			name: "image",
			op:   compose.Op{Kind: compose.OpImage, Image: &compose.Image{Ref: "backgrounds/magical-sea.jpg", Width: 800, Height: 600}},
			want: "backgrounds/magical-sea.jpg 800x600",
		},
		{
			name: "text",
			op:   compose.Op{Kind: compose.OpText, Text: &compose.Text{Content: "Emma", Size: 28, Weight: fonts.Bold}},
			want: `"Emma" 28pt bold`,
		},
		{
			name: "rounded rect",
			op:   compose.Op{Kind: compose.OpRect, Fill: &fill, Radius: 30},
			want: "fill #ffffff r=30",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := describeOp(tt.op); got != tt.want {
				t.Errorf("describeOp() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPlanBrowser(t *testing.T) {
	plans := []*compose.Plan{
		{PageID: "p1", Width: 2475, Height: 3075, Ops: make([]compose.Op, 30)},
		{PageID: "p2", Width: 2475, Height: 3075, Skipped: []compose.Skip{{Layer: compose.LayerBackground, Asset: "x.jpg", Reason: "not found"}}},
	}
	for i := range plans[0].Ops {
		plans[0].Ops[i] = compose.Op{Kind: compose.OpRect, Layer: compose.LayerShape, Rect: layout.XYWH(0, 0, 10, 10)}
	}

	var m tea.Model = newPlanBrowser("ORDER-1", plans)
	key := func(s string) tea.Msg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

	m, _ = m.Update(key(" "))
	if got := m.(PlanBrowser).Offset; got != 15 {
		t.Errorf("Offset after scroll = %d, want 15", got)
	}
	m, _ = m.Update(key("j"))
	b := m.(PlanBrowser)
	if b.Cursor != 1 || b.Offset != 0 {
		t.Errorf("after j: Cursor = %d, Offset = %d, want 1, 0", b.Cursor, b.Offset)
	}
	if view := b.View(); !strings.Contains(view, "skipped x.jpg") {
		t.Errorf("View() missing skip line:\n%s", view)
	}
	m, _ = m.Update(key("j"))
	if got := m.(PlanBrowser).Cursor; got != 1 {
		t.Errorf("Cursor past end = %d, want 1", got)
	}
	if _, cmd := m.Update(key("q")); cmd == nil {
		t.Error("q did not quit")
	}
}
