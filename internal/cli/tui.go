package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/herobook/pkg/compose"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// PlanBrowser - Interactive page plan viewer
// =============================================================================

// PlanBrowser is the bubbletea model behind "plan -i". The left column
// lists pages; the right column shows the selected page's draw ops.
type PlanBrowser struct {
	OrderID string
	Plans   []*compose.Plan
	Cursor  int // selected page
	Offset  int // first visible op
	Height  int // visible op rows
}

func newPlanBrowser(orderID string, plans []*compose.Plan) PlanBrowser {
	return PlanBrowser{OrderID: orderID, Plans: plans, Height: 15}
}

func (m PlanBrowser) Init() tea.Cmd {
	return nil
}

func (m PlanBrowser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				m.Offset = 0
			}
		case "down", "j":
			if m.Cursor < len(m.Plans)-1 {
				m.Cursor++
				m.Offset = 0
			}
		case "pgdown", "f", " ":
			if n := m.opCount(); m.Offset+m.Height < n {
				m.Offset = min(m.Offset+m.Height, n-1)
			}
		case "pgup", "b":
			m.Offset = max(m.Offset-m.Height, 0)
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-8, 5)
	}
	return m, nil
}

func (m PlanBrowser) opCount() int {
	if len(m.Plans) == 0 {
		return 0
	}
	return len(m.Plans[m.Cursor].Ops)
}

func (m PlanBrowser) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Draw plans · " + m.OrderID))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ page  space/b scroll ops  q quit"))
	b.WriteString("\n\n")

	if len(m.Plans) == 0 {
		b.WriteString(listDimStyle.Render("no pages"))
		return b.String()
	}

	var pages strings.Builder
	for i, p := range m.Plans {
		cursor := "  "
		style := listNormalStyle
		if i == m.Cursor {
			cursor = "▸ "
			style = listSelectedStyle
		}
		line := fmt.Sprintf("%s%-11s", cursor, p.PageID)
		if len(p.Skipped) > 0 {
			line += StyleWarning.Render(fmt.Sprintf(" %d!", len(p.Skipped)))
		}
		pages.WriteString(style.Render(line))
		pages.WriteString("\n")
	}

	left := lipgloss.NewStyle().Width(20).Render(pages.String())
	right := m.opsView(m.Plans[m.Cursor])
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, right))
	return b.String()
}

func (m PlanBrowser) opsView(p *compose.Plan) string {
	end := min(m.Offset+m.Height, len(p.Ops))
	rows := make([][]string, 0, end-m.Offset)
	for i := m.Offset; i < end; i++ {
		op := p.Ops[i]
		rows = append(rows, []string{
			fmt.Sprint(i + 1),
			string(op.Layer),
			string(op.Kind),
			fmt.Sprintf("%.0f,%.0f %.0f×%.0f", op.Rect.Left, op.Rect.Bottom, op.Rect.Width(), op.Rect.Height()),
			describeOp(op),
		})
	}

	var b strings.Builder
	b.WriteString(newTable("#", "Layer", "Kind", "Rect", "Detail").Rows(rows...).Render())
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  %s %.0f×%.0f · ops %d-%d of %d", p.PageID, p.Width, p.Height, min(m.Offset+1, end), end, len(p.Ops))))
	for _, s := range p.Skipped {
		b.WriteString("\n")
		b.WriteString(StyleWarning.Render(fmt.Sprintf("  skipped %s (%s): %s", s.Asset, s.Layer, s.Reason)))
	}
	return b.String()
}

// describeOp summarizes the payload of an op in a few words.
func describeOp(op compose.Op) string {
	switch op.Kind {
	case compose.OpImage:
		if op.Image == nil {
			return ""
		}
		return fmt.Sprintf("%s %dx%d", op.Image.Ref, op.Image.Width, op.Image.Height)
	case compose.OpText:
		if op.Text == nil {
			return ""
		}
		s := op.Text.Content
		if r := []rune(s); len(r) > 32 {
			s = string(r[:31]) + "…"
		}
		return fmt.Sprintf("%q %.0fpt %s", s, op.Text.Size, op.Text.Weight)
	case compose.OpRect:
		var parts []string
		if op.Fill != nil {
			parts = append(parts, "fill "+op.Fill.Hex())
		}
		if op.Stroke != nil {
			parts = append(parts, "stroke "+op.Stroke.Hex())
		}
		if op.Radius > 0 {
			parts = append(parts, fmt.Sprintf("r=%.0f", op.Radius))
		}
		return strings.Join(parts, " ")
	}
	return ""
}
