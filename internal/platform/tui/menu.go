package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-blocks/internal/config"
	"github.com/vovakirdan/tui-blocks/internal/core"
)

// MenuChoice identifies what the player picked from the main menu.
type MenuChoice int

const (
	MenuChoiceNone MenuChoice = iota
	MenuChoicePlay
	MenuChoiceVersus
	MenuChoiceScores
)

// MenuModel is the main menu shown at session start.
type MenuModel struct {
	config   core.RuntimeConfig
	mapper   *KeyMapper
	presets  []string
	presetIx int
	cursor   int
	choice   MenuChoice
	quitting bool
}

var menuItems = []struct {
	label  string
	choice MenuChoice
}{
	{"Play", MenuChoicePlay},
	{"Online versus", MenuChoiceVersus},
	{"High scores", MenuChoiceScores},
}

// NewMenuModel creates the main menu.
func NewMenuModel(cfg core.RuntimeConfig) MenuModel {
	presets := config.PresetNames()
	presetIx := 0
	for i, name := range presets {
		if name == cfg.Preset {
			presetIx = i
		}
	}
	return MenuModel{
		config:   cfg,
		mapper:   NewKeyMapper(),
		presets:  presets,
		presetIx: presetIx,
	}
}

// Init is a no-op.
func (m MenuModel) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (m MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if keyMsg.String() == "tab" {
		m.presetIx = (m.presetIx + 1) % len(m.presets)
		m.config.Preset = m.presets[m.presetIx]
		return m, nil
	}

	switch m.mapper.MapKeyToMenuAction(keyMsg) {
	case MenuActionQuit:
		m.quitting = true
		return m, tea.Quit
	case MenuActionUp:
		m.cursor = (m.cursor - 1 + len(menuItems)) % len(menuItems)
	case MenuActionDown:
		m.cursor = (m.cursor + 1) % len(menuItems)
	case MenuActionSelect:
		m.choice = menuItems[m.cursor].choice
	}
	return m, nil
}

// View renders the menu.
func (m MenuModel) View() string {
	if m.quitting {
		return ""
	}

	lines := []string{valueStyle.Render("TUI BLOCKS"), ""}
	for i, item := range menuItems {
		cursor := "  "
		if i == m.cursor {
			cursor = valueStyle.Render("> ")
		}
		lines = append(lines, cursor+item.label)
	}
	lines = append(lines, "",
		labelStyle.Render("preset: ")+valueStyle.Render(m.config.Preset)+labelStyle.Render("  (tab to change)"),
		"",
		labelStyle.Render("enter select / q quit"),
	)
	return strings.Join(lines, "\n")
}

// Choice returns the selected menu entry, or MenuChoiceNone.
func (m MenuModel) Choice() MenuChoice {
	return m.choice
}

// Config returns the runtime config with the chosen preset.
func (m MenuModel) Config() core.RuntimeConfig {
	return m.config
}

// IsQuitting reports whether the user asked to quit.
func (m MenuModel) IsQuitting() bool {
	return m.quitting
}
