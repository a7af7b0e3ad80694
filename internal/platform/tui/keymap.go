package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-blocks/internal/core"
)

// KeyMapper translates Bubble Tea key messages into frame inputs.
// This centralizes key bindings and makes them testable.
type KeyMapper struct{}

// NewKeyMapper creates a key mapper with default bindings.
func NewKeyMapper() *KeyMapper {
	return &KeyMapper{}
}

// Apply folds a key press into the pending frame input.
// Returns true if the key was a quit request.
//
// Terminals have no key-release events, so held movement relies on the
// terminal's autorepeat; the model clears the input after every tick.
func (km *KeyMapper) Apply(msg tea.KeyMsg, in *core.Input) bool {
	switch msg.String() {
	case "ctrl+c", "q":
		return true
	case "left", "a", "h":
		in.Left = true
	case "right", "d", "l":
		in.Right = true
	case "down", "s", "j":
		in.SoftDrop = true
	case " ":
		in.HardDrop = true
	case "up", "x", "w", "k":
		in.Rotate = true
	case "c", "shift+down":
		in.Hold = true
	}
	return false
}

// MenuAction represents a menu-specific action derived from input.
type MenuAction int

const (
	MenuActionNone MenuAction = iota
	MenuActionUp
	MenuActionDown
	MenuActionSelect
	MenuActionBack
	MenuActionQuit
	MenuActionRestart
)

// MapKeyToMenuAction translates a key to a menu action.
func (km *KeyMapper) MapKeyToMenuAction(msg tea.KeyMsg) MenuAction {
	switch msg.String() {
	case "ctrl+c", "q":
		return MenuActionQuit
	case "w", "up", "k": // vim-style k for up
		return MenuActionUp
	case "s", "down", "j": // vim-style j for down
		return MenuActionDown
	case "enter", " ":
		return MenuActionSelect
	case "b", "esc":
		return MenuActionBack
	case "r":
		return MenuActionRestart
	}
	return MenuActionNone
}
