package results

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/joacominatel/featherdb/internal/app"
)

// StatusMsg asks the app to show a message in the status bar.
type StatusMsg struct {
	Message string
}

func status(format string, args ...any) tea.Cmd {
	msg := StatusMsg{Message: fmt.Sprintf(format, args...)}
	return func() tea.Msg { return msg }
}

func (m Model) selectedRow() ([]string, bool) {
	if m.result == nil || m.cursorY < 0 || m.cursorY >= len(m.result.Rows) {
		return nil, false
	}
	return m.result.Rows[m.cursorY], true
}

// SelectedCell returns the value under the cursor.
func (m Model) SelectedCell() (string, bool) {
	row, ok := m.selectedRow()
	if !ok || m.cursorX < 0 || m.cursorX >= len(row) {
		return "", false
	}
	return row[m.cursorX], true
}

func (m Model) copyCellCmd() tea.Cmd {
	val, ok := m.SelectedCell()
	if !ok {
		return status("Nothing to copy")
	}
	return func() tea.Msg {
		if err := clipboard.WriteAll(val); err != nil {
			return StatusMsg{Message: "Copy failed: " + err.Error()}
		}
		return StatusMsg{Message: "Copied " + truncate(val, 40)}
	}
}

func (m Model) copyRowCmd() tea.Cmd {
	row, ok := m.selectedRow()
	if !ok {
		return status("No row to copy")
	}
	columns := m.result.Columns
	return func() tea.Msg {
		var b strings.Builder
		if err := writeCSV(&b, columns, [][]string{row}); err != nil {
			return StatusMsg{Message: "Copy failed: " + err.Error()}
		}
		if err := clipboard.WriteAll(b.String()); err != nil {
			return StatusMsg{Message: "Copy failed: " + err.Error()}
		}
		return StatusMsg{Message: "Copied row as CSV"}
	}
}

func (m Model) exportCSVCmd() tea.Cmd {
	result := m.result
	return func() tea.Msg {
		name := fmt.Sprintf("featherdb_export_%s.csv", time.Now().Format("20060102_150405"))
		if err := ExportCSV(name, result); err != nil {
			return StatusMsg{Message: "Export failed: " + err.Error()}
		}
		return StatusMsg{Message: fmt.Sprintf("Exported %d rows to %s", len(result.Rows), name)}
	}
}

// ExportCSV writes result to path with a header line.
func ExportCSV(path string, result *app.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := writeCSV(f, result.Columns, result.Rows); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func writeCSV(w io.Writer, columns []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return err
	}
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
