package statusbar

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/joacominatel/featherdb/internal/tui/theme"
)

const hints = "Ctrl+E run │ Ctrl+T tx │ Tab pane │ ? help"

// Model is the status bar.
type Model struct {
	width   int
	profile string
	version string
	inTx    bool
	message string
}

// New creates a status bar with no connection.
func New() Model {
	return Model{}
}

// SetWidth updates the bar width.
func (m *Model) SetWidth(w int) {
	m.width = w
}

// SetConnection shows the connected profile; an empty profile means
// disconnected.
func (m *Model) SetConnection(profile, version string) {
	m.profile = profile
	m.version = version
}

// SetTx shows whether statements run in a transaction.
func (m *Model) SetTx(inTx bool) {
	m.inTx = inTx
}

// SetMessage replaces the hints until cleared with "".
func (m *Model) SetMessage(msg string) {
	m.message = msg
}

// View renders the status bar.
func (m Model) View() string {
	var left string
	if m.profile != "" {
		left = theme.StyleSuccess.Render("●") + " " + m.profile
		if m.version != "" {
			left += theme.StyleMuted.Render(" " + m.version)
		}
	} else {
		left = theme.StyleError.Render("●") + " disconnected"
	}
	if m.inTx {
		left += " " + theme.StyleTxBadge.Render("TX")
	}

	right := hints
	if m.message != "" {
		right = m.message
	}

	pad := max(m.width-lipgloss.Width(left)-lipgloss.Width(right)-2, 1)
	return theme.StyleStatusBar.Width(m.width).Render(left + strings.Repeat(" ", pad) + right)
}
