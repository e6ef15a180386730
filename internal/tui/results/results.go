package results

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/joacominatel/featherdb/internal/app"
	"github.com/joacominatel/featherdb/internal/database"
	"github.com/joacominatel/featherdb/internal/tui/theme"
)

const maxColWidth = 40

// Model is the results pane.
type Model struct {
	result    *app.Result
	err       error
	width     int
	height    int
	focused   bool
	loading   bool
	colWidths []int

	cursorY   int // selected row
	cursorX   int // selected column
	offsetY   int // first visible row
	offsetX   int // first visible column
	lastQuery string
}

// New creates a new results model.
func New() Model {
	return Model{}
}

// SetSize updates the pane dimensions.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.clampOffsets()
}

// SetFocused sets the focus state.
func (m *Model) SetFocused(f bool) {
	m.focused = f
}

// SetLoading marks a statement as running.
func (m *Model) SetLoading(query string) {
	m.loading = true
	m.lastQuery = query
}

// SetResult shows a finished result.
func (m *Model) SetResult(r *app.Result) {
	m.result = r
	m.err = nil
	m.loading = false
	m.cursorY, m.cursorX, m.offsetY, m.offsetX = 0, 0, 0, 0
	m.colWidths = columnWidths(r)
}

// SetError shows a failed statement.
func (m *Model) SetError(err error) {
	m.err = err
	m.result = nil
	m.loading = false
	m.colWidths = nil
}

// Result returns the displayed result, if any.
func (m Model) Result() *app.Result {
	return m.result
}

func columnWidths(r *app.Result) []int {
	if r == nil || len(r.Columns) == 0 {
		return nil
	}
	widths := make([]int, len(r.Columns))
	for i, col := range r.Columns {
		widths[i] = lipgloss.Width(col)
	}
	for _, row := range r.Rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], lipgloss.Width(cell))
			}
		}
	}
	for i := range widths {
		widths[i] = min(max(widths[i], 1), maxColWidth)
	}
	return widths
}

// Update handles navigation and actions.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.focused || m.result == nil {
		return m, nil
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	rows := len(m.result.Rows)
	switch key.String() {
	case "up", "k":
		m.cursorY--
	case "down", "j":
		m.cursorY++
	case "left", "h":
		m.cursorX--
	case "right", "l":
		m.cursorX++
	case "pgup":
		m.cursorY -= m.visibleRows()
	case "pgdown":
		m.cursorY += m.visibleRows()
	case "home", "g":
		m.cursorY = 0
	case "end", "G":
		m.cursorY = rows - 1
	case "c":
		return m, m.copyCellCmd()
	case "y":
		return m, m.copyRowCmd()
	case "e":
		return m, m.exportCSVCmd()
	}

	m.cursorY = min(max(m.cursorY, 0), max(rows-1, 0))
	m.cursorX = min(max(m.cursorX, 0), max(len(m.result.Columns)-1, 0))
	m.clampOffsets()
	return m, nil
}

func (m Model) visibleRows() int {
	// title, header, separator, footer
	return max(m.height-4, 1)
}

func (m *Model) clampOffsets() {
	vis := m.visibleRows()
	if m.cursorY < m.offsetY {
		m.offsetY = m.cursorY
	}
	if m.cursorY >= m.offsetY+vis {
		m.offsetY = m.cursorY - vis + 1
	}
	if m.cursorX < m.offsetX {
		m.offsetX = m.cursorX
	}
	for m.offsetX < m.cursorX && !m.columnVisible(m.cursorX) {
		m.offsetX++
	}
}

// columnVisible reports whether column col fits in the pane when rendering
// starts at offsetX.
func (m Model) columnVisible(col int) bool {
	used := 2
	for i := m.offsetX; i <= col && i < len(m.colWidths); i++ {
		used += m.colWidths[i] + 3
	}
	return used <= m.width
}

// View renders the pane.
func (m Model) View() string {
	title := theme.StyleTitle.Render("Results")

	switch {
	case m.loading:
		return title + "\n" + theme.StyleMuted.Render("  Running...")
	case m.err != nil:
		return title + "\n" + renderError(m.err)
	case m.result == nil:
		return title + "\n" + theme.StyleMuted.Render("  Ctrl+E runs the query")
	}

	r := m.result
	stats := fmt.Sprintf("%d row(s) in %s", r.RowCount, r.Duration.Round(time.Microsecond))
	if r.Truncated {
		stats += fmt.Sprintf(", showing first %d", len(r.Rows))
	}
	header := title + " " + theme.StyleMuted.Render(stats)

	if len(r.Columns) == 0 {
		return header + "\n" + theme.StyleSuccess.Render("  OK")
	}

	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n")
	b.WriteString(m.renderRow(r.Columns, -1))
	b.WriteString("\n")
	b.WriteString(m.renderSeparator())

	end := min(m.offsetY+m.visibleRows(), len(r.Rows))
	for i := m.offsetY; i < end; i++ {
		b.WriteString("\n")
		b.WriteString(m.renderRow(r.Rows[i], i))
	}
	return b.String()
}

// renderRow draws the visible columns of one row; rowIdx -1 is the header.
func (m Model) renderRow(cells []string, rowIdx int) string {
	var parts []string
	used := 2
	for i := m.offsetX; i < len(cells) && i < len(m.colWidths); i++ {
		w := m.colWidths[i]
		if used+w > m.width && len(parts) > 0 {
			break
		}
		used += w + 3

		text := fit(cells[i], w)
		var style lipgloss.Style
		switch {
		case rowIdx < 0:
			style = theme.StyleHeader
		case m.focused && rowIdx == m.cursorY && i == m.cursorX:
			style = theme.StyleSelected.Reverse(true)
		case m.focused && rowIdx == m.cursorY:
			style = theme.StyleSelected
		case cells[i] == "NULL":
			style = theme.StyleNull
		default:
			style = lipgloss.NewStyle()
		}
		parts = append(parts, style.Render(text))
	}
	return "  " + strings.Join(parts, " │ ")
}

func (m Model) renderSeparator() string {
	var parts []string
	used := 2
	for i := m.offsetX; i < len(m.colWidths); i++ {
		w := m.colWidths[i]
		if used+w > m.width && len(parts) > 0 {
			break
		}
		used += w + 3
		parts = append(parts, strings.Repeat("─", w))
	}
	return "  " + lipgloss.NewStyle().Foreground(theme.ColorBorder).Render(strings.Join(parts, "─┼─"))
}

// fit pads or truncates s to exactly w display cells.
func fit(s string, w int) string {
	s = strings.ReplaceAll(s, "\n", "⏎")
	if lipgloss.Width(s) > w {
		runes := []rune(s)
		for len(runes) > 0 && lipgloss.Width(string(runes))+1 > w {
			runes = runes[:len(runes)-1]
		}
		s = string(runes) + "…"
	}
	if pad := w - lipgloss.Width(s); pad > 0 {
		s += strings.Repeat(" ", pad)
	}
	return s
}

func renderError(err error) string {
	var (
		tmplErr *database.TemplateError
		txErr   *database.TransactionError
		connErr *database.ConnectionError
		qErr    *database.QueryError
	)

	heading := "Error"
	switch {
	case errors.As(err, &tmplErr):
		heading = "Template error"
	case errors.As(err, &txErr):
		heading = "Transaction failed"
	case errors.As(err, &connErr):
		heading = "Connection error"
	case errors.As(err, &qErr):
		heading = "Query failed"
	}

	lines := []string{theme.StyleError.Bold(true).Render("  " + heading)}
	if txErr != nil {
		for _, phase := range []struct {
			name string
			err  error
		}{
			{"begin", txErr.Begin},
			{"statement", txErr.Closure},
			{"rollback", txErr.Rollback},
			{"commit", txErr.Commit},
		} {
			if phase.err != nil {
				lines = append(lines, theme.StyleError.Render("    "+phase.name+": "+phase.err.Error()))
			}
		}
	} else {
		lines = append(lines, theme.StyleError.Render("  "+err.Error()))
	}
	return strings.Join(lines, "\n")
}
