package multiplayer

import "sync"

// SessionHandle is the transport-neutral interface for communicating with
// a session. It lets the coordinator and matches push events without
// depending on Wish/Bubble Tea.
type SessionHandle interface {
	// ID returns the unique session identifier.
	ID() SessionID

	// Send sends an event to the session asynchronously.
	// Must be non-blocking; implementations should use buffered channels.
	Send(evt SessionEvent)

	// Done returns a channel that closes when the session ends.
	Done() <-chan struct{}
}

// ChannelSession is a SessionHandle backed by Go channels. The TUI layer
// uses it to bridge Bubble Tea sessions with the coordinator.
type ChannelSession struct {
	id       SessionID
	events   chan SessionEvent
	done     chan struct{}
	doneOnce sync.Once
}

// NewChannelSession creates a channel-based session handle.
// eventBufferSize controls how many events can queue before the overflow
// policy kicks in; the default holds about a second of versus traffic
// (one input relay per tick plus the periodic snapshot).
func NewChannelSession(id SessionID, eventBufferSize int) *ChannelSession {
	if eventBufferSize < 1 {
		eventBufferSize = 64
	}
	return &ChannelSession{
		id:     id,
		events: make(chan SessionEvent, eventBufferSize),
		done:   make(chan struct{}),
	}
}

// ID returns the session identifier.
func (s *ChannelSession) ID() SessionID {
	return s.id
}

// Send queues an event without ever blocking the caller; the match loop
// runs at tick rate and must not stall on a slow terminal. On overflow
// the oldest queued event is dropped to make room, except that lobby and
// match lifecycle events are put back instead of discarded: per-tick
// relay and snapshot traffic is superseded by the next tick, lifecycle
// events are not.
func (s *ChannelSession) Send(evt SessionEvent) {
	select {
	case <-s.done:
		return
	default:
	}

	for tries := 0; tries < 2; tries++ {
		select {
		case s.events <- evt:
			return
		default:
		}
		select {
		case old := <-s.events:
			if !perTick(old) {
				// Requeue the lifecycle event; best effort under
				// concurrent sends.
				select {
				case s.events <- old:
				default:
				}
			}
		default:
		}
	}
}

// perTick reports whether an event is superseded by the next tick's
// traffic. Only these may be dropped on overflow.
func perTick(evt SessionEvent) bool {
	switch evt.(type) {
	case InputRelayEvent, StateEvent:
		return true
	}
	return false
}

// Events returns the channel the TUI layer reads events from.
func (s *ChannelSession) Events() <-chan SessionEvent {
	return s.events
}

// Done returns the done channel.
func (s *ChannelSession) Done() <-chan struct{} {
	return s.done
}

// Close marks the session as done. Safe to call multiple times.
func (s *ChannelSession) Close() {
	s.doneOnce.Do(func() {
		close(s.done)
	})
}

// SessionRegistry tracks active sessions. Safe for concurrent access.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[SessionID]SessionHandle
}

// NewSessionRegistry creates an empty session registry.
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[SessionID]SessionHandle),
	}
}

// Register adds a session to the registry.
func (r *SessionRegistry) Register(session SessionHandle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.ID()] = session
}

// Unregister removes a session from the registry.
func (r *SessionRegistry) Unregister(id SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// Get retrieves a session by ID.
func (r *SessionRegistry) Get(id SessionID) (SessionHandle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Count returns the number of registered sessions.
func (r *SessionRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
