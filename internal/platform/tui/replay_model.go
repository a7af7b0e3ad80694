package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-blocks/internal/replay"
)

// ReplayModel plays back a stored recording at game speed.
type ReplayModel struct {
	player   *replay.Player
	tickRate int
	mapper   *KeyMapper
	paused   bool
	quitting bool
}

// NewReplayModel creates a playback model for the recording.
func NewReplayModel(r replay.Replay, tickRate int) ReplayModel {
	if tickRate <= 0 {
		tickRate = 60
	}
	return ReplayModel{
		player:   replay.NewPlayer(r),
		tickRate: tickRate,
		mapper:   NewKeyMapper(),
	}
}

// Init starts the playback loop.
func (m ReplayModel) Init() tea.Cmd {
	return tickCmd(m.tickRate)
}

// Update handles messages.
func (m ReplayModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch m.mapper.MapKeyToMenuAction(msg) {
		case MenuActionQuit, MenuActionBack:
			m.quitting = true
			return m, tea.Quit
		case MenuActionSelect:
			m.paused = !m.paused
		}
		return m, nil

	case TickMsg:
		if !m.paused && !m.player.Done() {
			m.player.Step()
		}
		return m, tickCmd(m.tickRate)
	}
	return m, nil
}

// View renders the playback state.
func (m ReplayModel) View() string {
	if m.quitting {
		return ""
	}
	view := RenderGame(m.player.Engine())
	switch {
	case m.player.Done():
		return view + "\n" + labelStyle.Render("replay finished, q to exit")
	case m.paused:
		return view + "\n" + labelStyle.Render("paused, enter to resume")
	}
	return view
}

// RunReplay starts a standalone Bubble Tea program for playback.
func RunReplay(r replay.Replay, tickRate int) error {
	p := tea.NewProgram(
		NewReplayModel(r, tickRate),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
