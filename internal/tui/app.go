package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/joacominatel/featherdb/internal/app"
	"github.com/joacominatel/featherdb/internal/config"
	"github.com/joacominatel/featherdb/internal/tui/editor"
	"github.com/joacominatel/featherdb/internal/tui/results"
	"github.com/joacominatel/featherdb/internal/tui/statusbar"
	"github.com/joacominatel/featherdb/internal/tui/theme"
)

const (
	connectTimeout = 10 * time.Second
	executeTimeout = 60 * time.Second
)

// Pane identifies a focusable area.
type Pane int

const (
	PaneEditor Pane = iota
	PaneResults
)

// Mode tracks the current screen.
type Mode int

const (
	ModeSelectProfile Mode = iota // saved profiles list
	ModeConnect                   // manual DSN input
	ModeMain                      // editor and results
)

type (
	connectedMsg struct {
		profile config.Connection
		fresh   bool // typed by the user rather than picked from the list
		err     error
	}
	executedMsg struct {
		result *app.Result
		err    error
	}
	savedMsg struct {
		err error
	}
)

// Model is the top-level bubbletea model.
type Model struct {
	service   *app.Service
	cfg       *config.Config
	save      func(*config.Config) error
	editor    editor.Model
	results   results.Model
	statusbar statusbar.Model
	dsnInput  textinput.Model

	mode     Mode
	pane     Pane
	width    int
	height   int
	err      error
	showHelp bool
	cursor   int
	initial  *config.Connection
	running  bool
}

// NewModel creates the console. When initial is set the console connects to
// it on start; otherwise it offers the saved profiles.
func NewModel(service *app.Service, cfg *config.Config, initial *config.Connection) Model {
	ti := textinput.New()
	ti.Placeholder = "postgresql://user@localhost:5432/db  or  sqlite:/path/to/file.db"
	ti.Focus()
	ti.CharLimit = 500
	ti.Width = 70

	mode := ModeConnect
	if initial == nil && len(cfg.Connections) > 0 {
		mode = ModeSelectProfile
	}

	m := Model{
		service:   service,
		cfg:       cfg,
		save:      config.Save,
		editor:    editor.New(),
		results:   results.New(),
		statusbar: statusbar.New(),
		dsnInput:  ti,
		mode:      mode,
		initial:   initial,
	}
	m.setFocus(PaneEditor)
	return m
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink}
	if m.initial != nil {
		cmds = append(cmds, m.connectCmd(*m.initial, false))
	}
	return tea.Batch(cmds...)
}

// Update handles all messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.showHelp {
			m.showHelp = false
			return m, nil
		}
		switch m.mode {
		case ModeSelectProfile:
			return m.updateSelectProfile(msg)
		case ModeConnect:
			return m.updateConnect(msg)
		default:
			return m.updateMain(msg)
		}

	case connectedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.statusbar.SetMessage("")
			return m, nil
		}
		m.err = nil
		m.mode = ModeMain
		m.statusbar.SetConnection(msg.profile.Name, m.service.ServerVersion())
		m.statusbar.SetMessage("")
		m.setFocus(PaneEditor)
		m.layout()
		if msg.fresh && !m.cfg.HasConnection(msg.profile.Name) {
			m.cfg.AddConnection(msg.profile)
			return m, m.saveCmd()
		}
		return m, nil

	case savedMsg:
		if msg.err != nil {
			m.statusbar.SetMessage("Could not save profile: " + msg.err.Error())
		}
		return m, nil

	case editor.ExecuteMsg:
		if m.running {
			return m, nil
		}
		m.running = true
		m.results.SetLoading(msg.SQL)
		m.statusbar.SetMessage("Running...")
		return m, m.executeCmd(msg.SQL, msg.InTx)

	case executedMsg:
		m.running = false
		m.statusbar.SetMessage("")
		if msg.err != nil {
			m.results.SetError(msg.err)
			return m, nil
		}
		m.results.SetResult(msg.result)
		return m, nil

	case results.StatusMsg:
		m.statusbar.SetMessage(msg.Message)
		return m, nil
	}

	if m.mode == ModeMain {
		return m.updatePane(msg)
	}
	var cmd tea.Cmd
	m.dsnInput, cmd = m.dsnInput.Update(msg)
	return m, cmd
}

func (m Model) updateSelectProfile(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	n := len(m.cfg.Connections)

	switch msg.String() {
	case "up", "k":
		m.cursor = max(m.cursor-1, 0)
	case "down", "j":
		// n is the "new connection" entry.
		m.cursor = min(m.cursor+1, n)
	case "enter":
		if m.cursor < n {
			profile := m.cfg.Connections[m.cursor]
			m.statusbar.SetMessage("Connecting to " + profile.Name + "...")
			return m, m.connectCmd(profile, false)
		}
		m.mode = ModeConnect
	case "n":
		m.mode = ModeConnect
	case "q":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) updateConnect(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		dsn := strings.TrimSpace(m.dsnInput.Value())
		if dsn == "" {
			return m, nil
		}
		profile, err := config.ParseDSN(dsn)
		if err != nil {
			m.err = err
			return m, nil
		}
		m.statusbar.SetMessage("Connecting...")
		return m, m.connectCmd(profile, true)
	case "esc":
		if len(m.cfg.Connections) > 0 {
			m.mode = ModeSelectProfile
			m.err = nil
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.dsnInput, cmd = m.dsnInput.Update(msg)
	return m, cmd
}

func (m Model) updateMain(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+t":
		inTx := m.editor.ToggleTx()
		m.statusbar.SetTx(inTx)
		return m, nil
	case "tab", "shift+tab":
		if m.pane == PaneEditor {
			m.setFocus(PaneResults)
		} else {
			m.setFocus(PaneEditor)
		}
		return m, nil
	case "?":
		if m.pane != PaneEditor {
			m.showHelp = true
			return m, nil
		}
	case "q":
		if m.pane != PaneEditor {
			return m, tea.Quit
		}
	}
	return m.updatePane(msg)
}

func (m Model) updatePane(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.pane == PaneEditor {
		m.editor, cmd = m.editor.Update(msg)
	} else {
		m.results, cmd = m.results.Update(msg)
	}
	return m, cmd
}

func (m *Model) setFocus(p Pane) {
	m.pane = p
	m.editor.SetFocused(p == PaneEditor)
	m.results.SetFocused(p == PaneResults)
}

// paneHeights splits the space above the status bar between the editor and
// the results, borders excluded.
func (m Model) paneHeights() (int, int) {
	avail := m.height - 1 - 4
	editorHeight := max(avail*35/100, 4)
	return editorHeight, max(avail-editorHeight, 3)
}

func (m *Model) layout() {
	if m.width == 0 || m.height == 0 {
		return
	}
	editorHeight, resultsHeight := m.paneHeights()
	m.editor.SetSize(m.width-2, editorHeight)
	m.results.SetSize(m.width-2, resultsHeight)
	m.statusbar.SetWidth(m.width)
}

func (m Model) connectCmd(profile config.Connection, fresh bool) tea.Cmd {
	service := m.service
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()
		err := service.Connect(ctx, profile)
		return connectedMsg{profile: profile, fresh: fresh, err: err}
	}
}

func (m Model) executeCmd(sql string, inTx bool) tea.Cmd {
	service := m.service
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), executeTimeout)
		defer cancel()
		result, err := service.Execute(ctx, sql, inTx)
		return executedMsg{result: result, err: err}
	}
}

func (m Model) saveCmd() tea.Cmd {
	cfg, save := m.cfg, m.save
	return func() tea.Msg {
		return savedMsg{err: save(cfg)}
	}
}

// View renders the current screen.
func (m Model) View() string {
	if m.showHelp {
		return m.viewHelp()
	}
	switch m.mode {
	case ModeSelectProfile:
		return m.viewSelectProfile()
	case ModeConnect:
		return m.viewConnect()
	default:
		return m.viewMain()
	}
}

func (m Model) banner() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		theme.StyleTitle.Padding(1, 0, 0, 0).Render("featherdb"),
		theme.StyleMuted.Render("typed SQL console for PostgreSQL and SQLite"),
		"",
	)
}

func (m Model) errorLine() string {
	if m.err == nil {
		return ""
	}
	return theme.StyleError.Render("Error: " + m.err.Error())
}

func (m Model) viewSelectProfile() string {
	lines := []string{m.banner(), theme.StyleHeader.Render("Profiles")}
	for i, c := range m.cfg.Connections {
		label := fmt.Sprintf("%s  %s", c.Name, theme.StyleMuted.Render(c.DisplayString()))
		if i == m.cursor {
			lines = append(lines, theme.StyleSelected.Render("> ")+label)
		} else {
			lines = append(lines, "  "+label)
		}
	}
	newEntry := "[new connection]"
	if m.cursor == len(m.cfg.Connections) {
		lines = append(lines, "", theme.StyleSelected.Render("> "+newEntry))
	} else {
		lines = append(lines, "", "  "+newEntry)
	}
	if e := m.errorLine(); e != "" {
		lines = append(lines, "", e)
	}
	lines = append(lines, "", theme.StyleMuted.Render("↑/↓ select · enter connect · n new · q quit"))

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m Model) viewConnect() string {
	hint := "enter connect · ctrl+c quit"
	if len(m.cfg.Connections) > 0 {
		hint = "esc back · " + hint
	}
	lines := []string{
		m.banner(),
		theme.StyleHeader.Render("Connection string"),
		m.dsnInput.View(),
	}
	if e := m.errorLine(); e != "" {
		lines = append(lines, "", e)
	}
	lines = append(lines, "", theme.StyleMuted.Render(hint))

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m Model) viewMain() string {
	editorHeight, resultsHeight := m.paneHeights()

	border := func(p Pane) lipgloss.Style {
		if m.pane == p {
			return theme.StyleActiveBorder
		}
		return theme.StyleBorder
	}

	editorView := border(PaneEditor).Width(m.width - 2).Height(editorHeight).Render(m.editor.View())
	resultsView := border(PaneResults).Width(m.width - 2).Height(resultsHeight).Render(m.results.View())

	return lipgloss.JoinVertical(lipgloss.Left, editorView, resultsView, m.statusbar.View())
}

func (m Model) viewHelp() string {
	key := lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Width(16)
	row := func(k, desc string) string {
		return key.Render("  "+k) + theme.StyleMuted.Render(desc)
	}

	help := lipgloss.JoinVertical(lipgloss.Left,
		theme.StyleTitle.Render("Keys"),
		"",
		theme.StyleHeader.Render("Global"),
		row("Ctrl+C", "quit"),
		row("Tab", "switch pane"),
		row("Ctrl+T", "toggle transaction mode"),
		"",
		theme.StyleHeader.Render("Editor"),
		row("Ctrl+E / F5", "run"),
		row("Ctrl+K", "clear"),
		row("Ctrl+P / N", "previous / next statement"),
		"",
		theme.StyleHeader.Render("Results"),
		row("↑↓←→ hjkl", "move"),
		row("PgUp / PgDn", "page"),
		row("g / G", "first / last row"),
		row("c", "copy cell"),
		row("y", "copy row as CSV"),
		row("e", "export CSV"),
		row("q", "quit"),
		"",
		theme.StyleMuted.Render("any key closes"),
	)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, help)
}
