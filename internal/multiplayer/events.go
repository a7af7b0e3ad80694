package multiplayer

import (
	"github.com/vovakirdan/tui-blocks/internal/blocks"
	"github.com/vovakirdan/tui-blocks/internal/core"
)

// SessionEvent represents an event sent from the coordinator to a session.
type SessionEvent interface {
	sessionEvent()
}

// LobbyCreatedEvent is sent when a lobby is successfully created.
type LobbyCreatedEvent struct {
	Code   string
	Preset string
}

func (LobbyCreatedEvent) sessionEvent() {}

// LobbyErrorEvent is sent when a lobby operation fails.
type LobbyErrorEvent struct {
	Message string
}

func (LobbyErrorEvent) sessionEvent() {}

// LobbyJoinedEvent is sent to both host and joiner when someone joins.
type LobbyJoinedEvent struct {
	Code       string
	Side       core.PlayerID
	OpponentID SessionID
}

func (LobbyJoinedEvent) sessionEvent() {}

// LobbyPlayerLeftEvent is sent when a player leaves the lobby before the
// match starts.
type LobbyPlayerLeftEvent struct {
	Code string
}

func (LobbyPlayerLeftEvent) sessionEvent() {}

// MatchStartedEvent is sent when the match begins. Both clients seed
// their local engines from Seed so simulations agree bit for bit.
type MatchStartedEvent struct {
	MatchID MatchID
	Side    core.PlayerID
	Preset  string
	Seed    uint32
}

func (MatchStartedEvent) sessionEvent() {}

// InputRelayEvent forwards an opponent's input so the receiving client's
// rollback predictor can confirm or correct its guess for that frame.
type InputRelayEvent struct {
	MatchID MatchID
	Side    core.PlayerID
	Frame   int64
	Inputs  core.Input
}

func (InputRelayEvent) sessionEvent() {}

// StateEvent carries the authoritative board snapshots. Broadcast
// periodically so clients can detect and repair divergence.
type StateEvent struct {
	MatchID MatchID
	Frame   int64
	Boards  map[core.PlayerID]blocks.Snapshot
}

func (StateEvent) sessionEvent() {}

// MatchEndedEvent is sent when the match ends.
type MatchEndedEvent struct {
	MatchID MatchID
	Reason  MatchEndReason
	Winner  core.PlayerID // Empty if no winner
	Score1  int
	Score2  int
	Lines1  int
	Lines2  int
}

func (MatchEndedEvent) sessionEvent() {}

// MatchEndReason describes why a match ended.
type MatchEndReason int

const (
	MatchEndReasonCompleted    MatchEndReason = iota // One board topped out
	MatchEndReasonDisconnect                         // Opponent disconnected
	MatchEndReasonCancelled                          // Match was cancelled
	MatchEndReasonHostLeft                           // Host left the lobby
	MatchEndReasonDisqualified                       // Input stream failed validation
)

func (r MatchEndReason) String() string {
	switch r {
	case MatchEndReasonCompleted:
		return "completed"
	case MatchEndReasonDisconnect:
		return "disconnect"
	case MatchEndReasonCancelled:
		return "cancelled"
	case MatchEndReasonHostLeft:
		return "host left"
	case MatchEndReasonDisqualified:
		return "disqualified"
	default:
		return "unknown"
	}
}

// CoordinatorMessage represents a message from a session to the coordinator.
type CoordinatorMessage interface {
	coordinatorMessage()
}

// CreateLobbyMsg requests creation of a new lobby.
type CreateLobbyMsg struct {
	SessionID SessionID
	Preset    string
}

func (CreateLobbyMsg) coordinatorMessage() {}

// JoinLobbyMsg requests joining an existing lobby.
type JoinLobbyMsg struct {
	SessionID SessionID
	Code      string
}

func (JoinLobbyMsg) coordinatorMessage() {}

// CancelLobbyMsg requests cancellation of a hosted lobby.
type CancelLobbyMsg struct {
	SessionID SessionID
	Code      string
}

func (CancelLobbyMsg) coordinatorMessage() {}

// LeaveLobbyMsg requests leaving a joined lobby.
type LeaveLobbyMsg struct {
	SessionID SessionID
	Code      string
}

func (LeaveLobbyMsg) coordinatorMessage() {}

// LeaveMatchMsg requests leaving an active match.
type LeaveMatchMsg struct {
	SessionID SessionID
	MatchID   MatchID
}

func (LeaveMatchMsg) coordinatorMessage() {}

// PlayerInputMsg delivers a player's input for a specific frame.
type PlayerInputMsg struct {
	MatchID MatchID
	Side    core.PlayerID
	Frame   int64
	Inputs  core.Input
}

func (PlayerInputMsg) coordinatorMessage() {}

// SessionDisconnectedMsg is sent when a session disconnects.
type SessionDisconnectedMsg struct {
	SessionID SessionID
}

func (SessionDisconnectedMsg) coordinatorMessage() {}
