package editor

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/joacominatel/featherdb/internal/tui/theme"
)

const maxHistory = 100

// ExecuteMsg is sent when the user runs the editor content.
type ExecuteMsg struct {
	SQL  string
	InTx bool
}

// Model is the SQL editor pane.
type Model struct {
	textarea textarea.Model
	width    int
	height   int
	focused  bool
	inTx     bool

	// history holds executed statements, oldest first. histPos == len(history)
	// means the draft is shown.
	history []string
	histPos int
	draft   string
}

// New creates a new editor model.
func New() Model {
	ta := textarea.New()
	ta.Placeholder = "SELECT ..."
	ta.ShowLineNumbers = true
	ta.CharLimit = 0
	ta.Prompt = ""
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle()
	ta.BlurredStyle.Base = lipgloss.NewStyle()
	ta.FocusedStyle.Placeholder = theme.StyleMuted
	ta.BlurredStyle.Placeholder = theme.StyleMuted
	ta.FocusedStyle.LineNumber = theme.StyleMuted
	ta.BlurredStyle.LineNumber = lipgloss.NewStyle().Foreground(theme.ColorBorder)

	return Model{textarea: ta}
}

// SetSize updates the pane dimensions.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.textarea.SetWidth(max(w-2, 1))
	m.textarea.SetHeight(max(h-2, 1))
}

// SetFocused sets the focus state.
func (m *Model) SetFocused(f bool) {
	m.focused = f
	if f {
		m.textarea.Focus()
	} else {
		m.textarea.Blur()
	}
}

// Value returns the editor content.
func (m Model) Value() string {
	return m.textarea.Value()
}

// SetValue replaces the editor content.
func (m *Model) SetValue(sql string) {
	m.textarea.SetValue(sql)
}

// InTx reports whether statements run inside a transaction.
func (m Model) InTx() bool {
	return m.inTx
}

// ToggleTx flips transaction mode and returns the new state.
func (m *Model) ToggleTx() bool {
	m.inTx = !m.inTx
	return m.inTx
}

// History returns the executed statements, oldest first.
func (m Model) History() []string {
	return append([]string(nil), m.history...)
}

// Update handles messages for the editor.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.focused {
		return m, nil
	}

	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+e", "f5":
			sql := strings.TrimSpace(m.textarea.Value())
			if sql == "" {
				return m, nil
			}
			m.remember(sql)
			inTx := m.inTx
			return m, func() tea.Msg {
				return ExecuteMsg{SQL: sql, InTx: inTx}
			}
		case "ctrl+k":
			m.textarea.Reset()
			m.histPos = len(m.history)
			return m, nil
		case "alt+up", "ctrl+p":
			m.recall(-1)
			return m, nil
		case "alt+down", "ctrl+n":
			m.recall(1)
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	return m, cmd
}

func (m *Model) remember(sql string) {
	if n := len(m.history); n == 0 || m.history[n-1] != sql {
		m.history = append(m.history, sql)
		if len(m.history) > maxHistory {
			m.history = m.history[len(m.history)-maxHistory:]
		}
	}
	m.histPos = len(m.history)
	m.draft = ""
}

// recall moves through history by delta, keeping the unsaved draft at the
// end of the list.
func (m *Model) recall(delta int) {
	if len(m.history) == 0 {
		return
	}
	if m.histPos == len(m.history) {
		m.draft = m.textarea.Value()
	}

	pos := min(max(m.histPos+delta, 0), len(m.history))
	if pos == m.histPos {
		return
	}
	m.histPos = pos

	if pos == len(m.history) {
		m.textarea.SetValue(m.draft)
	} else {
		m.textarea.SetValue(m.history[pos])
	}
}

// View renders the editor.
func (m Model) View() string {
	title := theme.StyleTitle.Render("Query")
	if m.inTx {
		title += " " + theme.StyleTxBadge.Render("TX")
	}
	if n := len(m.history); n > 0 && m.histPos < n {
		title += theme.StyleMuted.Render(" history " + strconv.Itoa(m.histPos+1) + "/" + strconv.Itoa(n))
	}
	return title + "\n" + m.textarea.View()
}
