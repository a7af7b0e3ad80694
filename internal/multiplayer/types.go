// Package multiplayer provides lobbies and authoritative versus matches
// over transport-neutral session handles. The server simulates both boards
// itself and relays inputs between peers so their local rollback
// predictors can stay in sync.
package multiplayer

import "github.com/vovakirdan/tui-blocks/internal/core"

// Sides of a versus match. The host always plays Player1.
const (
	Player1 = core.PlayerID("p1")
	Player2 = core.PlayerID("p2")
)

// SessionID uniquely identifies a player's connection (e.g. an SSH session).
type SessionID string

// MatchID uniquely identifies a versus match.
type MatchID string

// Opponent returns the other side of a two-player match.
func Opponent(side core.PlayerID) core.PlayerID {
	if side == Player1 {
		return Player2
	}
	return Player1
}
