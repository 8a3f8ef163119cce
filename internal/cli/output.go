package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/guptarohit/asciigraph"
)

var (
	colorHeader = lipgloss.Color("#fe8019")
	colorDim    = lipgloss.Color("#928374")
	colorGreen  = lipgloss.Color("#8ec07c")

	styleHeader  = lipgloss.NewStyle().Foreground(colorHeader).Bold(true)
	styleDim     = lipgloss.NewStyle().Foreground(colorDim)
	styleRunning = lipgloss.NewStyle().Foreground(colorGreen)
	styleBold    = lipgloss.NewStyle().Bold(true)
)

// runningLabel marks intervals without an end.
const runningLabel = "running"

// maxNoteWidth bounds the note column of interval listings.
const maxNoteWidth = 40

// truncateCell shortens a cell to width visible columns, ending in an ellipsis.
func truncateCell(s string, width int) string {
	if ansi.StringWidth(s) <= width {
		return s
	}
	return ansi.Truncate(s, width, "…")
}

// renderTitle renders a section title with an underline.
func renderTitle(text string) string {
	line := strings.Repeat("─", lipgloss.Width(text))
	return fmt.Sprintf("%s\n%s", styleHeader.Render(text), styleDim.Render(line))
}

// renderTable renders an aligned table with a header separator line. Columns
// are padded to the widest visible cell.
func renderTable(headers []string, rows [][]string) string {
	if len(headers) == 0 {
		return ""
	}
	cols := len(headers)

	widths := make([]int, cols)
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i := 0; i < cols && i < len(row); i++ {
			if w := lipgloss.Width(row[i]); w > widths[i] {
				widths[i] = w
			}
		}
	}

	const colGap = 2
	var b strings.Builder

	writeRow := func(cells []string, style *lipgloss.Style) {
		for i := 0; i < cols; i++ {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			pad := widths[i] - lipgloss.Width(cell)
			if style != nil {
				cell = style.Render(cell)
			}
			b.WriteString(cell)
			if i < cols-1 {
				b.WriteString(strings.Repeat(" ", pad+colGap))
			}
		}
		b.WriteString("\n")
	}

	writeRow(headers, &styleHeader)
	for i, w := range widths {
		b.WriteString(styleDim.Render(strings.Repeat("─", w)))
		if i < cols-1 {
			b.WriteString(strings.Repeat(" ", colGap))
		}
	}
	b.WriteString("\n")
	for _, row := range rows {
		writeRow(row, nil)
	}
	return b.String()
}

// renderHoursChart plots hours per period. It needs at least two points.
func renderHoursChart(hours []float64, caption string) string {
	if len(hours) < 2 {
		return styleDim.Render("Not enough periods to chart")
	}
	width := len(hours) * 4
	if width < 20 {
		width = 20
	}
	if width > 72 {
		width = 72
	}
	return asciigraph.Plot(hours,
		asciigraph.Height(8),
		asciigraph.Width(width),
		asciigraph.Precision(1),
		asciigraph.Caption(caption),
	)
}

// formatRate renders an hourly rate in cents as currency units.
func formatRate(cents int64) string {
	return fmt.Sprintf("%d.%02d/h", cents/100, cents%100)
}

// formatCents renders an amount in cents as currency units.
func formatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
