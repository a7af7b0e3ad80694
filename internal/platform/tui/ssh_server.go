package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"

	"github.com/vovakirdan/tui-blocks/internal/config"
	"github.com/vovakirdan/tui-blocks/internal/core"
	"github.com/vovakirdan/tui-blocks/internal/multiplayer"
	"github.com/vovakirdan/tui-blocks/internal/storage"
)

// SSHServerConfig holds configuration for the SSH server.
type SSHServerConfig struct {
	// Address is the host:port to listen on (e.g., ":23234").
	Address string

	// HostKeyPath is the path to the host key file.
	// If empty, a key will be auto-generated at ~/.blocks/host_key.
	HostKeyPath string

	// DBPath is the path to the scores database.
	DBPath string

	// Preset is the default gameplay preset for new sessions.
	Preset string

	// IdleTimeout is how long to wait before closing idle connections.
	IdleTimeout time.Duration
}

// DefaultSSHServerConfig returns a config with sensible defaults.
func DefaultSSHServerConfig() SSHServerConfig {
	return SSHServerConfig{
		Address:     ":23234",
		DBPath:      "~/.blocks/scores.db",
		Preset:      config.DefaultPresetName,
		IdleTimeout: 30 * time.Minute,
	}
}

// SSHServer wraps a Wish SSH server hosting games and versus matches.
type SSHServer struct {
	config   SSHServerConfig
	server   *ssh.Server
	store    *storage.Store
	registry *multiplayer.SessionRegistry
	hub      *multiplayer.Coordinator
	logger   *log.Logger
}

// NewSSHServer creates a new SSH server with the given configuration.
func NewSSHServer(cfg SSHServerConfig) (*SSHServer, error) {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "blocks-ssh",
	})

	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		logger.Warn("could not open scores database", "error", err)
		// Continue without storage
	}

	registry := multiplayer.NewSessionRegistry()
	hub := multiplayer.NewCoordinator(multiplayer.DefaultCoordinatorConfig(), registry, logger)
	if store != nil {
		hub.SetResultSink(matchResultSink(store, logger))
	}

	srv := &SSHServer{
		config:   cfg,
		store:    store,
		registry: registry,
		hub:      hub,
		logger:   logger,
	}

	hostKeyPath := cfg.HostKeyPath
	if hostKeyPath == "" {
		home, homeErr := os.UserHomeDir()
		if homeErr != nil {
			return nil, fmt.Errorf("cannot get home directory: %w", homeErr)
		}
		hostKeyPath = filepath.Join(home, ".blocks", "host_key")
	}
	if mkdirErr := os.MkdirAll(filepath.Dir(hostKeyPath), 0o700); mkdirErr != nil {
		return nil, fmt.Errorf("cannot create host key directory: %w", mkdirErr)
	}

	opts := []ssh.Option{
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.Middleware(srv.teaHandler),
			srv.loggingMiddleware,
		),
	}

	server, err := wish.NewServer(opts...)
	if err != nil {
		if store != nil {
			store.Close()
		}
		return nil, fmt.Errorf("cannot create SSH server: %w", err)
	}

	srv.server = server
	return srv, nil
}

// matchResultSink persists finished matches, best effort.
func matchResultSink(store *storage.Store, logger *log.Logger) multiplayer.ResultSink {
	return func(result multiplayer.MatchResult, match *multiplayer.VersusMatch) {
		p1, p2 := match.Sessions()
		winner := ""
		switch result.Winner {
		case multiplayer.Player1:
			winner = string(p1)
		case multiplayer.Player2:
			winner = string(p2)
		}
		_, err := store.SaveMatch(storage.MatchResult{
			MatchID:        string(result.MatchID),
			Preset:         match.Preset(),
			Player1Session: string(p1),
			Player2Session: string(p2),
			Score1:         result.Score1,
			Score2:         result.Score2,
			Lines1:         result.Lines1,
			Lines2:         result.Lines2,
			WinnerSession:  winner,
			EndReason:      result.Reason.String(),
			Duration:       int(result.Ticks / 60),
		})
		if err != nil {
			logger.Warn("could not save match result", "match", result.MatchID, "error", err)
		}
	}
}

// teaHandler creates a Bubble Tea program for each SSH session.
func (s *SSHServer) teaHandler(sshSession ssh.Session) (tea.Model, []tea.ProgramOption) {
	_, _, ok := sshSession.Pty()
	if !ok {
		s.logger.Warn("no PTY requested", "user", sshSession.User())
		return nil, nil
	}

	cfg := core.DefaultConfig()
	cfg.Preset = s.config.Preset
	cfg.Seed = uint32(time.Now().UnixNano())
	model := NewSessionModel(s.store, s.hub, s.registry, cfg, sshSession.User())

	return model, []tea.ProgramOption{
		tea.WithAltScreen(),
	}
}

// loggingMiddleware logs SSH session events.
func (s *SSHServer) loggingMiddleware(next ssh.Handler) ssh.Handler {
	return func(sshSession ssh.Session) {
		s.logger.Info("session started",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
		next(sshSession)
		s.logger.Info("session ended",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
	}
}

// ListenAndServe starts the SSH server and blocks until shutdown.
func (s *SSHServer) ListenAndServe() error {
	s.logger.Info("starting SSH server", "address", s.config.Address)
	s.hub.Start()

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			s.logger.Error("server error", "error", err)
		}
	}()

	<-done
	s.logger.Info("shutting down...")
	return s.Shutdown()
}

// Shutdown gracefully stops the server.
func (s *SSHServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s.hub.Stop()
	if s.store != nil {
		s.store.Close()
	}
	return s.server.Shutdown(ctx)
}

// Addr returns the server's listen address string.
func (s *SSHServer) Addr() string {
	return s.config.Address
}

// SessionModel manages the full session flow: menu -> game -> menu.
// This is the top-level model used for SSH sessions.
type SessionModel struct {
	store    *storage.Store
	hub      *multiplayer.Coordinator
	registry *multiplayer.SessionRegistry
	config   core.RuntimeConfig
	username string

	menu   MenuModel
	play   *PlayModel
	versus *VersusModel
	scores *ScoreboardModel

	handle   *multiplayer.ChannelSession
	quitting bool
}

// NewSessionModel creates a new session model.
func NewSessionModel(store *storage.Store, hub *multiplayer.Coordinator, registry *multiplayer.SessionRegistry, cfg core.RuntimeConfig, username string) SessionModel {
	return SessionModel{
		store:    store,
		hub:      hub,
		registry: registry,
		config:   cfg,
		username: username,
		menu:     NewMenuModel(cfg),
	}
}

// Init initializes the session.
func (m SessionModel) Init() tea.Cmd {
	return m.menu.Init()
}

// Update handles messages for the session.
func (m SessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch {
	case m.play != nil:
		return m.updatePlay(msg)
	case m.versus != nil:
		return m.updateVersus(msg)
	case m.scores != nil:
		return m.updateScores(msg)
	}
	return m.updateMenu(msg)
}

func (m SessionModel) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	newMenu, cmd := m.menu.Update(msg)
	if menuModel, ok := newMenu.(MenuModel); ok {
		m.menu = menuModel
	}

	if m.menu.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}

	switch m.menu.Choice() {
	case MenuChoicePlay:
		m.config = m.menu.Config()
		m.config.Seed = 0 // Fresh seed per game
		play := NewPlayModel(m.store, m.config)
		m.play = &play
		m.menu = NewMenuModel(m.config)
		return m, m.play.Init()

	case MenuChoiceVersus:
		m.config = m.menu.Config()
		handle := multiplayer.NewChannelSession(
			multiplayer.SessionID(fmt.Sprintf("%s-%d", m.username, time.Now().UnixNano())), 64)
		m.registry.Register(handle)
		m.handle = handle
		versus := NewVersusModel(m.hub, handle, m.config, log.Default())
		m.versus = &versus
		m.menu = NewMenuModel(m.config)
		return m, m.versus.Init()

	case MenuChoiceScores:
		scores := NewScoreboardModel(m.store)
		m.scores = &scores
		m.menu = NewMenuModel(m.menu.Config())
		return m, m.scores.Init()
	}

	return m, cmd
}

func (m SessionModel) updatePlay(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel, cmd := m.play.Update(msg)
	if playModel, ok := newModel.(PlayModel); ok {
		m.play = &playModel
	}

	if m.play.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}
	if m.play.BackToMenu() {
		m.play = nil
		return m, m.menu.Init()
	}
	return m, cmd
}

func (m SessionModel) updateVersus(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel, cmd := m.versus.Update(msg)
	if versusModel, ok := newModel.(VersusModel); ok {
		m.versus = &versusModel
	}

	if m.versus.IsQuitting() {
		m.closeHandle()
		m.quitting = true
		return m, tea.Quit
	}
	if m.versus.Leaving() {
		m.closeHandle()
		m.versus = nil
		return m, m.menu.Init()
	}
	return m, cmd
}

func (m *SessionModel) closeHandle() {
	if m.handle == nil {
		return
	}
	m.hub.Send(multiplayer.SessionDisconnectedMsg{SessionID: m.handle.ID()})
	m.registry.Unregister(m.handle.ID())
	m.handle.Close()
	m.handle = nil
}

func (m SessionModel) updateScores(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel, cmd := m.scores.Update(msg)
	if scoresModel, ok := newModel.(ScoreboardModel); ok {
		m.scores = &scoresModel
	}

	if m.scores.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}
	if m.scores.GoingBack() {
		m.scores = nil
		return m, m.menu.Init()
	}
	return m, cmd
}

// View renders the current view.
func (m SessionModel) View() string {
	if m.quitting {
		return ""
	}
	switch {
	case m.play != nil:
		return m.play.View()
	case m.versus != nil:
		return m.versus.View()
	case m.scores != nil:
		return m.scores.View()
	}
	return m.menu.View()
}
