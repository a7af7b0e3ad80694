package multiplayer

import (
	"crypto/rand"
	"encoding/base32"
	"encoding/binary"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Lobby represents a waiting room for a match.
type Lobby struct {
	Code      string
	Preset    string
	Host      SessionHandle
	Joiner    SessionHandle
	CreatedAt time.Time
}

// CoordinatorConfig holds configuration for the coordinator.
type CoordinatorConfig struct {
	LobbyTimeout  time.Duration // How long before an empty lobby expires
	TickRate      int           // Match tick rate (Hz)
	CleanupPeriod time.Duration // How often to clean up expired lobbies
}

// DefaultCoordinatorConfig returns sensible defaults.
func DefaultCoordinatorConfig() CoordinatorConfig {
	return CoordinatorConfig{
		LobbyTimeout:  2 * time.Minute,
		TickRate:      60,
		CleanupPeriod: 30 * time.Second,
	}
}

// ResultSink receives finished match results, typically to persist them.
type ResultSink func(MatchResult, *VersusMatch)

// Coordinator manages lobbies and active matches.
type Coordinator struct {
	config   CoordinatorConfig
	sessions *SessionRegistry
	logger   *log.Logger
	onResult ResultSink // Optional, can be nil

	mu      sync.RWMutex
	lobbies map[string]*Lobby        // code -> lobby
	matches map[MatchID]*VersusMatch // matchID -> match

	// Track which session is in which lobby/match
	sessionLobby map[SessionID]string
	sessionMatch map[SessionID]MatchID

	msgChan chan CoordinatorMessage
	done    chan struct{}
}

// NewCoordinator creates a new coordinator.
func NewCoordinator(cfg CoordinatorConfig, sessions *SessionRegistry, logger *log.Logger) *Coordinator {
	if logger == nil {
		logger = log.Default()
	}
	return &Coordinator{
		config:       cfg,
		sessions:     sessions,
		logger:       logger,
		lobbies:      make(map[string]*Lobby),
		matches:      make(map[MatchID]*VersusMatch),
		sessionLobby: make(map[SessionID]string),
		sessionMatch: make(map[SessionID]MatchID),
		msgChan:      make(chan CoordinatorMessage, 256),
		done:         make(chan struct{}),
	}
}

// SetResultSink sets the optional callback for finished matches.
func (c *Coordinator) SetResultSink(sink ResultSink) {
	c.onResult = sink
}

// Start begins the coordinator's background processing.
func (c *Coordinator) Start() {
	go c.processMessages()
	go c.cleanupLoop()
}

// Stop shuts down the coordinator.
func (c *Coordinator) Stop() {
	close(c.done)
}

// Send sends a message to the coordinator for async processing.
func (c *Coordinator) Send(msg CoordinatorMessage) {
	select {
	case c.msgChan <- msg:
	case <-c.done:
	}
}

func (c *Coordinator) processMessages() {
	for {
		select {
		case msg := <-c.msgChan:
			c.handleMessage(msg)
		case <-c.done:
			return
		}
	}
}

func (c *Coordinator) handleMessage(msg CoordinatorMessage) {
	switch m := msg.(type) {
	case CreateLobbyMsg:
		c.handleCreateLobby(m)
	case JoinLobbyMsg:
		c.handleJoinLobby(m)
	case CancelLobbyMsg:
		c.handleCancelLobby(m)
	case LeaveLobbyMsg:
		c.handleLeaveLobby(m)
	case LeaveMatchMsg:
		c.handleLeaveMatch(m)
	case PlayerInputMsg:
		c.handlePlayerInput(m)
	case SessionDisconnectedMsg:
		c.handleSessionDisconnected(m)
	}
}

func (c *Coordinator) handleCreateLobby(msg CreateLobbyMsg) {
	session, ok := c.sessions.Get(msg.SessionID)
	if !ok {
		return
	}

	c.mu.Lock()
	if _, inLobby := c.sessionLobby[msg.SessionID]; inLobby {
		c.mu.Unlock()
		session.Send(LobbyErrorEvent{Message: "Already in a lobby"})
		return
	}

	code := c.generateUniqueCode()
	lobby := &Lobby{
		Code:      code,
		Preset:    msg.Preset,
		Host:      session,
		CreatedAt: time.Now(),
	}
	c.lobbies[code] = lobby
	c.sessionLobby[msg.SessionID] = code
	c.mu.Unlock()

	session.Send(LobbyCreatedEvent{Code: code, Preset: msg.Preset})
}

func (c *Coordinator) handleJoinLobby(msg JoinLobbyMsg) {
	session, ok := c.sessions.Get(msg.SessionID)
	if !ok {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, inLobby := c.sessionLobby[msg.SessionID]; inLobby {
		session.Send(LobbyErrorEvent{Message: "Already in a lobby"})
		return
	}

	code := strings.ToUpper(msg.Code)
	lobby, exists := c.lobbies[code]
	if !exists {
		session.Send(LobbyErrorEvent{Message: "Lobby not found"})
		return
	}
	if lobby.Joiner != nil {
		session.Send(LobbyErrorEvent{Message: "Lobby is full"})
		return
	}
	if lobby.Host.ID() == msg.SessionID {
		session.Send(LobbyErrorEvent{Message: "Cannot join your own lobby"})
		return
	}

	lobby.Joiner = session
	c.sessionLobby[msg.SessionID] = code

	lobby.Host.Send(LobbyJoinedEvent{Code: code, Side: Player1, OpponentID: msg.SessionID})
	session.Send(LobbyJoinedEvent{Code: code, Side: Player2, OpponentID: lobby.Host.ID()})

	c.startMatch(lobby)
}

// startMatch launches the match loop. Must be called with the lock held.
func (c *Coordinator) startMatch(lobby *Lobby) {
	matchID := MatchID(fmt.Sprintf("match-%s-%d", lobby.Code, time.Now().UnixNano()))
	seed := randomSeed()

	match := NewVersusMatch(matchID, lobby.Preset, seed, lobby.Host, lobby.Joiner, c.config.TickRate, c.logger)

	c.matches[matchID] = match
	hostID := lobby.Host.ID()
	joinerID := lobby.Joiner.ID()

	delete(c.sessionLobby, hostID)
	delete(c.sessionLobby, joinerID)
	c.sessionMatch[hostID] = matchID
	c.sessionMatch[joinerID] = matchID
	delete(c.lobbies, lobby.Code)

	lobby.Host.Send(MatchStartedEvent{MatchID: matchID, Side: Player1, Preset: lobby.Preset, Seed: seed})
	lobby.Joiner.Send(MatchStartedEvent{MatchID: matchID, Side: Player2, Preset: lobby.Preset, Seed: seed})

	c.logger.Info("match started", "match", matchID, "preset", lobby.Preset, "seed", seed)

	go match.Run(func(result MatchResult) {
		c.handleMatchEnded(matchID, result)
	})
}

func (c *Coordinator) handleMatchEnded(matchID MatchID, result MatchResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	match, exists := c.matches[matchID]
	if !exists {
		return
	}

	c.logger.Info("match ended",
		"match", matchID, "reason", result.Reason, "winner", result.Winner,
		"score1", result.Score1, "score2", result.Score2)

	if c.onResult != nil {
		// Best effort, off the coordinator goroutine.
		sink := c.onResult
		go sink(result, match)
	}

	for _, sessionID := range []SessionID{match.p1.ID(), match.p2.ID()} {
		delete(c.sessionMatch, sessionID)
	}
	delete(c.matches, matchID)

	endEvent := MatchEndedEvent{
		MatchID: matchID,
		Reason:  result.Reason,
		Winner:  result.Winner,
		Score1:  result.Score1,
		Score2:  result.Score2,
		Lines1:  result.Lines1,
		Lines2:  result.Lines2,
	}
	match.p1.Send(endEvent)
	match.p2.Send(endEvent)
}

func (c *Coordinator) handleCancelLobby(msg CancelLobbyMsg) {
	c.mu.Lock()
	defer c.mu.Unlock()

	lobby, exists := c.lobbies[msg.Code]
	if !exists {
		return
	}
	if lobby.Host.ID() != msg.SessionID {
		return
	}

	if lobby.Joiner != nil {
		lobby.Joiner.Send(MatchEndedEvent{Reason: MatchEndReasonHostLeft})
		delete(c.sessionLobby, lobby.Joiner.ID())
	}
	delete(c.lobbies, msg.Code)
	delete(c.sessionLobby, msg.SessionID)
}

func (c *Coordinator) handleLeaveLobby(msg LeaveLobbyMsg) {
	c.mu.Lock()
	defer c.mu.Unlock()

	lobby, exists := c.lobbies[msg.Code]
	if !exists {
		return
	}

	if lobby.Joiner != nil && lobby.Joiner.ID() == msg.SessionID {
		lobby.Joiner = nil
		delete(c.sessionLobby, msg.SessionID)
		lobby.Host.Send(LobbyPlayerLeftEvent{Code: msg.Code})
		return
	}

	if lobby.Host.ID() == msg.SessionID {
		if lobby.Joiner != nil {
			lobby.Joiner.Send(MatchEndedEvent{Reason: MatchEndReasonHostLeft})
			delete(c.sessionLobby, lobby.Joiner.ID())
		}
		delete(c.lobbies, msg.Code)
		delete(c.sessionLobby, msg.SessionID)
	}
}

func (c *Coordinator) handleLeaveMatch(msg LeaveMatchMsg) {
	c.mu.RLock()
	match, exists := c.matches[msg.MatchID]
	c.mu.RUnlock()

	if !exists {
		return
	}
	match.PlayerDisconnected(msg.SessionID)
}

func (c *Coordinator) handlePlayerInput(msg PlayerInputMsg) {
	c.mu.RLock()
	match, exists := c.matches[msg.MatchID]
	c.mu.RUnlock()

	if !exists {
		return
	}
	match.SendInput(msg)
}

func (c *Coordinator) handleSessionDisconnected(msg SessionDisconnectedMsg) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if code, inLobby := c.sessionLobby[msg.SessionID]; inLobby {
		if lobby, exists := c.lobbies[code]; exists {
			if lobby.Host.ID() == msg.SessionID {
				if lobby.Joiner != nil {
					lobby.Joiner.Send(MatchEndedEvent{Reason: MatchEndReasonHostLeft})
					delete(c.sessionLobby, lobby.Joiner.ID())
				}
				delete(c.lobbies, code)
			} else if lobby.Joiner != nil && lobby.Joiner.ID() == msg.SessionID {
				lobby.Joiner = nil
				lobby.Host.Send(LobbyPlayerLeftEvent{Code: code})
			}
		}
		delete(c.sessionLobby, msg.SessionID)
	}

	if matchID, inMatch := c.sessionMatch[msg.SessionID]; inMatch {
		if match, exists := c.matches[matchID]; exists {
			match.PlayerDisconnected(msg.SessionID)
		}
	}
}

func (c *Coordinator) cleanupLoop() {
	ticker := time.NewTicker(c.config.CleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanupExpiredLobbies()
		case <-c.done:
			return
		}
	}
}

func (c *Coordinator) cleanupExpiredLobbies() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for code, lobby := range c.lobbies {
		// Only expire lobbies without joiners.
		if lobby.Joiner == nil && now.Sub(lobby.CreatedAt) > c.config.LobbyTimeout {
			lobby.Host.Send(LobbyErrorEvent{Message: "Lobby expired"})
			delete(c.sessionLobby, lobby.Host.ID())
			delete(c.lobbies, code)
		}
	}
}

func (c *Coordinator) generateUniqueCode() string {
	for {
		code := generateJoinCode()
		if _, exists := c.lobbies[code]; !exists {
			return code
		}
	}
}

// generateJoinCode creates a 6-character uppercase alphanumeric code.
func generateJoinCode() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		// Fallback to timestamp-based
		return fmt.Sprintf("%06X", time.Now().UnixNano()&0xFFFFFF)
	}
	// base32 (A-Z, 2-7), take the first 6 chars
	return strings.ToUpper(base32.StdEncoding.EncodeToString(b)[:6])
}

// randomSeed draws a match seed, falling back to the clock if the
// system source fails.
func randomSeed() uint32 {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return uint32(time.Now().UnixNano())
	}
	return binary.LittleEndian.Uint32(b[:])
}

// GetLobby returns a lobby by code (for testing/debug).
func (c *Coordinator) GetLobby(code string) (*Lobby, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	l, ok := c.lobbies[strings.ToUpper(code)]
	return l, ok
}

// GetMatch returns a match by ID (for testing/debug).
func (c *Coordinator) GetMatch(id MatchID) (*VersusMatch, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.matches[id]
	return m, ok
}

// LobbyCount returns the number of active lobbies.
func (c *Coordinator) LobbyCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.lobbies)
}

// MatchCount returns the number of active matches.
func (c *Coordinator) MatchCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.matches)
}
