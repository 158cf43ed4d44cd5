// Package stream owns the playback session lifecycle: one session at a time,
// a small state machine, and a supervisor that drives resolve, download,
// voice join and the transcode pipeline.
package stream

import (
	"context"
	"errors"
	"sync"
)

type State string

const (
	StateIdle     State = "Idle"
	StateJoining  State = "Joining"
	StatePlaying  State = "Playing"
	StateStopping State = "Stopping"
)

var (
	ErrBusy      = errors.New("a stream is already active")
	ErrNotActive = errors.New("no stream is active")
)

// Session is one playback attempt from acquire to teardown.
type Session struct {
	GuildID   string
	ChannelID string
	Title     string

	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.Mutex
	userStopped bool
	cleanup     func() error
	torn        bool
}

// Context is cancelled when the session is stopped or torn down.
func (s *Session) Context() context.Context { return s.ctx }

// Done reports session cancellation.
func (s *Session) Done() <-chan struct{} { return s.ctx.Done() }

// Cancel aborts the session. userStopped marks an operator-requested stop so
// the final notification reads "stopped" rather than "finished".
func (s *Session) Cancel(userStopped bool) {
	s.mu.Lock()
	if userStopped {
		s.userStopped = true
	}
	s.mu.Unlock()
	s.cancel()
}

func (s *Session) UserStopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userStopped
}

// RegisterCleanup attaches the input cleanup handle. Returns false when
// teardown has already run, in which case the caller must invoke the handle
// itself.
func (s *Session) RegisterCleanup(fn func() error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.torn {
		return false
	}
	s.cleanup = fn
	return true
}

// takeCleanup hands the cleanup handle to teardown, at most once.
func (s *Session) takeCleanup() func() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.torn = true
	fn := s.cleanup
	s.cleanup = nil
	return fn
}

// Manager tracks the single process-wide session slot.
type Manager struct {
	mu      sync.Mutex
	state   State
	current *Session
}

func NewManager() *Manager {
	return &Manager{state: StateIdle}
}

// TryAcquire claims the slot for a new session. Fails with ErrBusy when any
// session is still live; requests are never queued.
func (m *Manager) TryAcquire(guildID, channelID, title string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateIdle {
		return nil, ErrBusy
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		GuildID:   guildID,
		ChannelID: channelID,
		Title:     title,
		ctx:       ctx,
		cancel:    cancel,
	}
	m.state = StateJoining
	m.current = s
	return s, nil
}

// SetPlaying transitions Joining -> Playing.
func (m *Manager) SetPlaying() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == StateJoining {
		m.state = StatePlaying
	}
}

// SetStopping marks teardown in progress.
func (m *Manager) SetStopping() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateIdle {
		m.state = StateStopping
	}
}

// Release returns the slot to Idle.
func (m *Manager) Release() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = StateIdle
	m.current = nil
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Current returns the live session, if any.
func (m *Manager) Current() (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current, m.current != nil
}
