package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-blocks/internal/blocks"
	"github.com/vovakirdan/tui-blocks/internal/core"
	"github.com/vovakirdan/tui-blocks/internal/multiplayer"
	"github.com/vovakirdan/tui-blocks/internal/netcode"
)

// versusState tracks which screen of the online flow is active.
type versusState int

const (
	versusMenu versusState = iota
	versusEnterCode
	versusWaiting
	versusPlaying
	versusEnded
)

// sessionEventMsg wraps a multiplayer event for Bubble Tea.
type sessionEventMsg struct {
	evt multiplayer.SessionEvent
}

// VersusModel drives an online match. The server runs the authoritative
// boards; this model keeps a local rollback coordinator fed with the
// player's own inputs and the relayed opponent inputs, so the rendered
// state stays responsive between server broadcasts.
type VersusModel struct {
	hub     *multiplayer.Coordinator
	session *multiplayer.ChannelSession
	logger  *log.Logger
	config  core.RuntimeConfig
	mapper  *KeyMapper

	state     versusState
	menuIdx   int
	codeInput textinput.Model
	lobbyCode string
	errorMsg  string

	matchID   multiplayer.MatchID
	side      core.PlayerID
	predictor *netcode.Coordinator
	frame     int64
	input     core.Input

	result   *multiplayer.MatchEndedEvent
	quitting bool
	leaving  bool
}

// NewVersusModel creates the online flow for a registered session.
func NewVersusModel(hub *multiplayer.Coordinator, session *multiplayer.ChannelSession, cfg core.RuntimeConfig, logger *log.Logger) VersusModel {
	if logger == nil {
		logger = log.Default()
	}
	if cfg.TickRate <= 0 {
		cfg.TickRate = 60
	}

	ti := textinput.New()
	ti.Placeholder = "ABC123"
	ti.CharLimit = 6
	ti.Width = 10

	return VersusModel{
		hub:       hub,
		session:   session,
		logger:    logger,
		config:    cfg,
		mapper:    NewKeyMapper(),
		codeInput: ti,
	}
}

// Init starts listening for coordinator events.
func (m VersusModel) Init() tea.Cmd {
	return m.waitForEvent()
}

// waitForEvent blocks on the session's event channel as a command.
func (m VersusModel) waitForEvent() tea.Cmd {
	session := m.session
	return func() tea.Msg {
		select {
		case evt := <-session.Events():
			return sessionEventMsg{evt: evt}
		case <-session.Done():
			return nil
		}
	}
}

// Update handles messages.
func (m VersusModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case TickMsg:
		return m.handleTick()
	case sessionEventMsg:
		return m.handleSessionEvent(msg.evt)
	}
	return m, nil
}

func (m VersusModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.state {
	case versusMenu:
		switch m.mapper.MapKeyToMenuAction(msg) {
		case MenuActionQuit:
			return m.quit()
		case MenuActionBack:
			m.leaving = true
			return m, nil
		case MenuActionUp:
			m.menuIdx = (m.menuIdx + 1) % 2
		case MenuActionDown:
			m.menuIdx = (m.menuIdx + 1) % 2
		case MenuActionSelect:
			if m.menuIdx == 0 {
				m.hub.Send(multiplayer.CreateLobbyMsg{SessionID: m.session.ID(), Preset: m.config.Preset})
				m.state = versusWaiting
			} else {
				m.state = versusEnterCode
				m.codeInput.Reset()
				return m, m.codeInput.Focus()
			}
		}
		return m, nil

	case versusEnterCode:
		switch msg.String() {
		case "ctrl+c":
			return m.quit()
		case "esc":
			m.state = versusMenu
			return m, nil
		case "enter":
			code := strings.ToUpper(strings.TrimSpace(m.codeInput.Value()))
			if code != "" {
				m.hub.Send(multiplayer.JoinLobbyMsg{SessionID: m.session.ID(), Code: code})
				m.state = versusWaiting
			}
			return m, nil
		}
		var cmd tea.Cmd
		m.codeInput, cmd = m.codeInput.Update(msg)
		return m, cmd

	case versusWaiting:
		switch m.mapper.MapKeyToMenuAction(msg) {
		case MenuActionQuit:
			return m.quit()
		case MenuActionBack:
			if m.lobbyCode != "" {
				m.hub.Send(multiplayer.CancelLobbyMsg{SessionID: m.session.ID(), Code: m.lobbyCode})
			}
			m.state = versusMenu
			m.lobbyCode = ""
		}
		return m, nil

	case versusPlaying:
		if m.mapper.Apply(msg, &m.input) {
			m.hub.Send(multiplayer.LeaveMatchMsg{SessionID: m.session.ID(), MatchID: m.matchID})
			return m.quit()
		}
		return m, nil

	case versusEnded:
		switch m.mapper.MapKeyToMenuAction(msg) {
		case MenuActionQuit:
			return m.quit()
		case MenuActionBack, MenuActionSelect:
			m.leaving = true
		}
		return m, nil
	}
	return m, nil
}

func (m VersusModel) handleTick() (tea.Model, tea.Cmd) {
	if m.state != versusPlaying || m.predictor == nil {
		return m, nil
	}

	m.hub.Send(multiplayer.PlayerInputMsg{
		MatchID: m.matchID,
		Side:    m.side,
		Frame:   m.frame,
		Inputs:  m.input,
	})
	m.predictor.Update(core.FrameMs, m.input)
	m.frame++
	m.input = core.NeutralInput()

	return m, tickCmd(m.config.TickRate)
}

func (m VersusModel) handleSessionEvent(evt multiplayer.SessionEvent) (tea.Model, tea.Cmd) {
	switch e := evt.(type) {
	case multiplayer.LobbyCreatedEvent:
		m.lobbyCode = e.Code
		m.state = versusWaiting

	case multiplayer.LobbyErrorEvent:
		m.errorMsg = e.Message
		m.state = versusMenu
		m.lobbyCode = ""

	case multiplayer.LobbyPlayerLeftEvent:
		m.errorMsg = "opponent left the lobby"

	case multiplayer.MatchStartedEvent:
		m.matchID = e.MatchID
		m.side = e.Side
		m.errorMsg = ""
		m.frame = 0
		m.input = core.NeutralInput()

		// Both boards start from the shared seed; the predictor owns
		// clones and applies rollback as relayed inputs arrive.
		m.predictor = netcode.NewCoordinator(e.Side, m.logger)
		m.predictor.AddPlayer(multiplayer.Player1, blocks.New(e.Preset, e.Seed))
		m.predictor.AddPlayer(multiplayer.Player2, blocks.New(e.Preset, e.Seed))
		m.state = versusPlaying
		return m, tea.Batch(tickCmd(m.config.TickRate), m.waitForEvent())

	case multiplayer.InputRelayEvent:
		if m.predictor != nil && e.Side != m.side {
			m.predictor.OnRemoteInput(e.Side, e.Frame, e.Inputs)
		}

	case multiplayer.StateEvent:
		if m.predictor != nil {
			m.predictor.Resync(e.Frame, e.Boards)
			m.frame = m.predictor.CurrentFrame()
		}

	case multiplayer.MatchEndedEvent:
		result := e
		m.result = &result
		m.state = versusEnded
	}

	return m, m.waitForEvent()
}

func (m VersusModel) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	return m, tea.Quit
}

// View renders the current screen of the online flow.
func (m VersusModel) View() string {
	if m.quitting {
		return ""
	}

	switch m.state {
	case versusMenu:
		lines := []string{valueStyle.Render("ONLINE VERSUS"), ""}
		options := []string{"Host a match", "Join with code"}
		for i, opt := range options {
			cursor := "  "
			if i == m.menuIdx {
				cursor = valueStyle.Render("> ")
			}
			lines = append(lines, cursor+opt)
		}
		if m.errorMsg != "" {
			lines = append(lines, "", alertStyle.Render(m.errorMsg))
		}
		lines = append(lines, "", labelStyle.Render("enter select / b back / q quit"))
		return strings.Join(lines, "\n")

	case versusEnterCode:
		return lipgloss.JoinVertical(lipgloss.Left,
			valueStyle.Render("JOIN MATCH"),
			"",
			labelStyle.Render("lobby code:"),
			m.codeInput.View(),
			"",
			labelStyle.Render("enter join / esc back"),
		)

	case versusWaiting:
		code := m.lobbyCode
		if code == "" {
			code = "..."
		}
		return lipgloss.JoinVertical(lipgloss.Left,
			valueStyle.Render("WAITING FOR OPPONENT"),
			"",
			labelStyle.Render("share this code: ")+valueStyle.Render(code),
			"",
			labelStyle.Render("b cancel / q quit"),
		)

	case versusPlaying:
		if m.predictor == nil {
			return ""
		}
		you := m.predictor.PlayerEngine(m.side)
		them := m.predictor.PlayerEngine(multiplayer.Opponent(m.side))
		return RenderVersus(you, them, "YOU", "OPPONENT")

	case versusEnded:
		if m.result == nil {
			return ""
		}
		verdict := "DRAW"
		switch m.result.Winner {
		case m.side:
			verdict = "YOU WIN"
		case multiplayer.Opponent(m.side):
			verdict = "YOU LOSE"
		}
		return lipgloss.JoinVertical(lipgloss.Left,
			alertStyle.Render(verdict),
			labelStyle.Render("reason: ")+m.result.Reason.String(),
			labelStyle.Render("score: ")+valueStyle.Render(
				fmt.Sprintf("%d : %d", m.result.Score1, m.result.Score2)),
			"",
			labelStyle.Render("enter back to menu / q quit"),
		)
	}
	return ""
}

// IsQuitting reports whether the user asked to quit entirely.
func (m VersusModel) IsQuitting() bool {
	return m.quitting
}

// Leaving reports whether the user asked to return to the menu.
func (m VersusModel) Leaving() bool {
	return m.leaving
}
