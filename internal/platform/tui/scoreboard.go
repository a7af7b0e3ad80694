package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-blocks/internal/config"
	"github.com/vovakirdan/tui-blocks/internal/storage"
)

const maxScores = 100 // Max scores to load per preset

// ScoreboardKeyMap defines the key bindings for the scoreboard.
type ScoreboardKeyMap struct {
	Up         key.Binding
	Down       key.Binding
	NextPreset key.Binding
	PrevPreset key.Binding
	Back       key.Binding
	Quit       key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k ScoreboardKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.NextPreset, k.PrevPreset, k.Back}
}

// FullHelp returns key bindings for the full help view.
func (k ScoreboardKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.NextPreset, k.PrevPreset},
		{k.Back, k.Quit},
	}
}

// DefaultScoreboardKeyMap returns default key bindings.
func DefaultScoreboardKeyMap() ScoreboardKeyMap {
	return ScoreboardKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "scroll down"),
		),
		NextPreset: key.NewBinding(
			key.WithKeys("tab", "right", "l"),
			key.WithHelp("tab", "next preset"),
		),
		PrevPreset: key.NewBinding(
			key.WithKeys("shift+tab", "left", "h"),
			key.WithHelp("S-tab", "prev preset"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "b"),
			key.WithHelp("esc/b", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ScoreboardModel is the Bubble Tea model for the high score screen.
type ScoreboardModel struct {
	presets      []string
	presetCursor int
	store        *storage.Store
	table        table.Model
	help         help.Model
	keys         ScoreboardKeyMap
	quitting     bool
	goingBack    bool
}

// NewScoreboardModel creates a scoreboard over the builtin presets.
func NewScoreboardModel(store *storage.Store) ScoreboardModel {
	h := help.New()
	h.ShowAll = false

	m := ScoreboardModel{
		presets: config.PresetNames(),
		store:   store,
		keys:    DefaultScoreboardKeyMap(),
		help:    h,
	}
	m.table = m.createTable()
	if len(m.presets) > 0 {
		m.loadScores(m.presets[0])
	}
	return m
}

func (m ScoreboardModel) createTable() table.Model {
	columns := []table.Column{
		{Title: "#", Width: 4},
		{Title: "Score", Width: 10},
		{Title: "Lines", Width: 7},
		{Title: "Level", Width: 7},
		{Title: "Date", Width: 18},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(styles)
	return t
}

func (m *ScoreboardModel) loadScores(preset string) {
	rows := []table.Row{}
	if m.store != nil {
		entries, err := m.store.TopScores(preset, maxScores)
		if err == nil {
			for i, e := range entries {
				rows = append(rows, table.Row{
					fmt.Sprintf("%d", i+1),
					fmt.Sprintf("%d", e.Score),
					fmt.Sprintf("%d", e.Lines),
					fmt.Sprintf("%d", e.Level),
					e.CreatedAt.Format("2006-01-02 15:04"),
				})
			}
		}
	}
	m.table.SetRows(rows)
	m.table.SetCursor(0)
}

// Init is a no-op; the scoreboard is purely reactive.
func (m ScoreboardModel) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (m ScoreboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(keyMsg, m.keys.Back):
			m.goingBack = true
			return m, nil
		case key.Matches(keyMsg, m.keys.NextPreset):
			m.cyclePreset(1)
			return m, nil
		case key.Matches(keyMsg, m.keys.PrevPreset):
			m.cyclePreset(-1)
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *ScoreboardModel) cyclePreset(delta int) {
	if len(m.presets) == 0 {
		return
	}
	m.presetCursor = (m.presetCursor + delta + len(m.presets)) % len(m.presets)
	m.loadScores(m.presets[m.presetCursor])
}

// View renders the scoreboard.
func (m ScoreboardModel) View() string {
	if m.quitting {
		return ""
	}

	title := valueStyle.Render("HIGH SCORES")
	preset := "none"
	if len(m.presets) > 0 {
		preset = m.presets[m.presetCursor]
	}
	header := lipgloss.JoinHorizontal(lipgloss.Center, title, "  ",
		labelStyle.Render("preset: "), valueStyle.Render(preset))

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		borderStyle.Render(m.table.View()),
		m.help.View(m.keys),
	)
}

// IsQuitting reports whether the user asked to quit entirely.
func (m ScoreboardModel) IsQuitting() bool {
	return m.quitting
}

// GoingBack reports whether the user asked to return to the menu.
func (m ScoreboardModel) GoingBack() bool {
	return m.goingBack
}
