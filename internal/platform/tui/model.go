package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-blocks/internal/blocks"
	"github.com/vovakirdan/tui-blocks/internal/core"
	"github.com/vovakirdan/tui-blocks/internal/replay"
	"github.com/vovakirdan/tui-blocks/internal/storage"
)

// PlayModel is the Bubble Tea model for a solo game.
type PlayModel struct {
	engine   *blocks.Engine
	recorder *replay.Recorder
	store    *storage.Store
	config   core.RuntimeConfig
	mapper   *KeyMapper

	input      core.Input
	quitting   bool
	backToMenu bool
	saved      bool // Results saved for the current game over
}

// NewPlayModel creates a model for the given preset and seed.
// A zero seed is replaced with a clock-derived one.
func NewPlayModel(store *storage.Store, cfg core.RuntimeConfig) PlayModel {
	if cfg.Seed == 0 {
		cfg.Seed = uint32(time.Now().UnixNano())
	}
	if cfg.TickRate <= 0 {
		cfg.TickRate = 60
	}
	return PlayModel{
		engine:   blocks.New(cfg.Preset, cfg.Seed),
		recorder: replay.NewRecorder(cfg.Preset, cfg.Seed),
		store:    store,
		config:   cfg,
		mapper:   NewKeyMapper(),
	}
}

// Init starts the tick loop.
func (m PlayModel) Init() tea.Cmd {
	return tickCmd(m.config.TickRate)
}

// Update handles messages and updates the model state.
func (m PlayModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case TickMsg:
		return m.handleTick()
	}
	return m, nil
}

func (m PlayModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.engine.GameOver() {
		switch m.mapper.MapKeyToMenuAction(msg) {
		case MenuActionQuit:
			m.quitting = true
			return m, tea.Quit
		case MenuActionBack:
			m.backToMenu = true
			return m, nil
		case MenuActionRestart:
			m.config.Seed = uint32(time.Now().UnixNano())
			m.engine = blocks.New(m.config.Preset, m.config.Seed)
			m.recorder = replay.NewRecorder(m.config.Preset, m.config.Seed)
			m.saved = false
			m.input = core.NeutralInput()
			return m, nil
		}
		return m, nil
	}

	if m.mapper.Apply(msg, &m.input) {
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m PlayModel) handleTick() (tea.Model, tea.Cmd) {
	if !m.engine.GameOver() {
		m.recorder.Record(m.input)
		m.engine.Update(core.FrameMs, m.input)
		m.input = core.NeutralInput()
	}

	if m.engine.GameOver() && !m.saved {
		m.saveResults()
		m.saved = true
	}
	return m, tickCmd(m.config.TickRate)
}

// saveResults persists the score and replay, best effort.
func (m *PlayModel) saveResults() {
	if m.store == nil || m.engine.Score() == 0 {
		return
	}
	//nolint:errcheck // Best-effort save, the session continues regardless
	m.store.SaveScore(m.config.Preset, m.engine.Score(), m.engine.Lines(), m.engine.Level())

	rec := m.recorder.Finish(m.engine)
	if data, err := rec.Marshal(); err == nil {
		//nolint:errcheck // Best-effort save
		m.store.SaveReplay(rec.Preset, rec.Seed, rec.FinalScore, rec.FinalLines, data)
	}
}

// View renders the current game.
func (m PlayModel) View() string {
	if m.quitting {
		return ""
	}
	return RenderGame(m.engine)
}

// IsQuitting reports whether the user asked to quit entirely.
func (m PlayModel) IsQuitting() bool {
	return m.quitting
}

// BackToMenu reports whether the user asked to return to the menu.
func (m PlayModel) BackToMenu() bool {
	return m.backToMenu
}

// Run starts a standalone Bubble Tea program for solo play.
func Run(store *storage.Store, cfg core.RuntimeConfig) error {
	p := tea.NewProgram(
		NewPlayModel(store, cfg),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
