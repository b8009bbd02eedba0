package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/a3tai/notice-postmoa/internal/records"
)

const (
	minColumnWidth = 6
	maxColumnWidth = 32

	// lines around the grid: title, blank, header, blank, input, status, hint
	chromeLines = 7
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	headerStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	cellStyle   = lipgloss.NewStyle().PaddingRight(1)
	emptyStyle  = lipgloss.NewStyle().Background(lipgloss.Color("#AA0000"))
	cursorStyle = lipgloss.NewStyle().Reverse(true)
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	hintStyle   = lipgloss.NewStyle().Faint(true)
)

func (m Model) View() string {
	var b strings.Builder

	title := "Notice review"
	if m.dirty {
		title += " *"
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")

	columns := records.Columns()
	rows := m.table.Rows()
	widths := columnWidths(columns, rows)

	header := make([]string, len(columns)+1)
	header[0] = cellStyle.Width(4).Render("#")
	for i, c := range columns {
		header[i+1] = cellStyle.Render(headerStyle.Width(widths[i]).MaxWidth(widths[i]).Render(c))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, header...))
	b.WriteString("\n")

	if len(rows) == 0 {
		b.WriteString(hintStyle.Render("No records. Press o to open a notice PDF."))
		b.WriteString("\n")
	}

	start, end := m.visibleRows(len(rows))
	for r := start; r < end; r++ {
		rec := rows[r]
		cells := make([]string, len(columns)+1)
		cells[0] = cellStyle.Width(4).Render(fmt.Sprint(r + 1))
		for c, v := range rec.Values() {
			style := lipgloss.NewStyle().Width(widths[c]).MaxWidth(widths[c])
			if v == "" {
				style = style.Inherit(emptyStyle)
			}
			if r == m.row && c == m.col {
				style = style.Inherit(cursorStyle)
			}
			cells[c+1] = cellStyle.Render(style.Render(v))
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cells...))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.mode == modeEdit || m.mode == modeOpen {
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}
	status := m.status
	if start > 0 || end < len(rows) {
		status = fmt.Sprintf("[rows %d-%d of %d] %s", start+1, end, len(rows), status)
	}
	b.WriteString(statusStyle.Render(status))
	b.WriteString("\n")
	b.WriteString(hintStyle.Render("↑↓←→/hjkl move • enter edit • o open • d delete • ctrl+s save • ctrl+p export • q quit"))

	return b.String()
}

// visibleRows returns the window of rows that fits the terminal and keeps
// the cursor row on screen. Before the first WindowSizeMsg every row is shown.
func (m Model) visibleRows(total int) (start, end int) {
	if m.height <= 0 {
		return 0, total
	}
	page := max(1, m.height-chromeLines)
	if total <= page {
		return 0, total
	}
	if m.row >= page {
		start = m.row - page + 1
	}
	return start, min(total, start+page)
}

// columnWidths sizes each column to its widest value within the limits.
func columnWidths(columns []string, rows []records.Record) []int {
	widths := make([]int, len(columns))
	for i, c := range columns {
		widths[i] = max(minColumnWidth, lipgloss.Width(c))
	}
	for _, r := range rows {
		for i, v := range r.Values() {
			widths[i] = max(widths[i], lipgloss.Width(v))
		}
	}
	for i := range widths {
		widths[i] = min(widths[i], maxColumnWidth)
	}
	return widths
}
