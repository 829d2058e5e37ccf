package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/herobook/pkg/book"
	"github.com/matzehuels/herobook/pkg/compose"
	"github.com/matzehuels/herobook/pkg/pipeline"
	"github.com/matzehuels/herobook/pkg/status"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - links
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Styles
// =============================================================================

var (
	StyleTitle     = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)
	StyleLink      = lipgloss.NewStyle().Foreground(colorBlue).Underline(true)
	StyleDim       = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue     = lipgloss.NewStyle().Foreground(colorWhite)
	StyleNumber    = lipgloss.NewStyle().Foreground(colorCyan)
	StyleSuccess   = lipgloss.NewStyle().Foreground(colorGreen)
	StyleWarning   = lipgloss.NewStyle().Foreground(colorYellow)
)

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)
	styleHeader      = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	styleCommand     = lipgloss.NewStyle().Foreground(colorBlue)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
)

// =============================================================================
// Status Output
// =============================================================================

func printSuccess(format string, args ...any) {
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	fmt.Println(styleIconError.Render(iconError) + " " + fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + fmt.Sprintf(format, args...))
}

func printDetail(format string, args ...any) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints an output location.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(12)
	fmt.Println(keyStyle.Render(key) + " " + StyleValue.Render(value))
}

func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

// =============================================================================
// Render Summaries
// =============================================================================

// formatStats renders a one-line summary: "16 pages · 212 ops · 2 skipped".
func formatStats(s pipeline.Stats) string {
	parts := []string{
		fmt.Sprintf("%d pages", s.Pages),
		fmt.Sprintf("%d ops", s.Ops),
	}
	if s.Skipped > 0 {
		parts = append(parts, StyleWarning.Render(fmt.Sprintf("%d skipped", s.Skipped)))
	} else {
		parts = append(parts, "nothing skipped")
	}
	return strings.Join(parts, StyleDim.Render(" · "))
}

// skipTable lists every skipped asset by page.
func skipTable(plans []*compose.Plan) string {
	var rows [][]string
	for _, p := range plans {
		for _, s := range p.Skipped {
			rows = append(rows, []string{p.PageID, string(s.Layer), s.Asset, s.Reason})
		}
	}
	if len(rows) == 0 {
		return ""
	}
	return newTable("Page", "Layer", "Asset", "Reason").Rows(rows...).Render()
}

// statusTable lists order status records.
func statusTable(recs []*status.Record) string {
	rows := make([][]string, 0, len(recs))
	for _, r := range recs {
		finished := "—"
		switch {
		case r.CompletedAt != nil:
			finished = r.CompletedAt.Local().Format("Jan 2 15:04:05")
		case r.FailedAt != nil:
			finished = r.FailedAt.Local().Format("Jan 2 15:04:05")
		}
		detail := r.URLs.Book
		if r.State == status.StateFailed {
			detail = r.Error
		}
		rows = append(rows, []string{r.OrderID, string(r.State), r.StartedAt.Local().Format("Jan 2 15:04:05"), finished, detail})
	}
	return newTable("Order", "Status", "Started", "Finished", "Book / Error").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader
			}
			if col != 1 || row >= len(recs) {
				return lipgloss.NewStyle()
			}
			switch recs[row].State {
			case status.StateCompleted:
				return StyleSuccess
			case status.StateFailed:
				return lipgloss.NewStyle().Foreground(colorRed)
			}
			return StyleWarning
		}).
		Render()
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader
			}
			return lipgloss.NewStyle()
		})
}

// formatPoints prints a page size in layout units and inches.
func formatPoints(w, h float64) string {
	return fmt.Sprintf("%.0f×%.0f (%.3g×%.3g in)", w, h, w/book.UnitsPerInch, h/book.UnitsPerInch)
}
