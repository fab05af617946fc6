package speech

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

const (
	defaultRestartDelay      = 100 * time.Millisecond
	defaultErrorRestartDelay = 500 * time.Millisecond
	defaultMaxRestarts       = 5
)

// Config tunes the session's restart policy. Zero values pick the
// defaults.
type Config struct {
	// RestartDelay is waited before restarting after a premature end.
	RestartDelay time.Duration
	// ErrorRestartDelay is waited before the single restart attempted
	// after a transient error.
	ErrorRestartDelay time.Duration
	// MaxConsecutiveRestarts bounds restarts between transcripts; a
	// final transcript resets the counter. Exhaustion surfaces as
	// ErrorUnavailable.
	MaxConsecutiveRestarts int
}

func (c Config) withDefaults() Config {
	if c.RestartDelay <= 0 {
		c.RestartDelay = defaultRestartDelay
	}
	if c.ErrorRestartDelay <= 0 {
		c.ErrorRestartDelay = defaultErrorRestartDelay
	}
	if c.MaxConsecutiveRestarts <= 0 {
		c.MaxConsecutiveRestarts = defaultMaxRestarts
	}
	return c
}

// Session adapts one Capability into a continuous dictation stream.
// While the caller's keepListening predicate holds and Stop has not been
// called, a capability that ends on its own is restarted after a short
// delay. Stop and Abort are idempotent and never panic, even when the
// capability already ended.
type Session struct {
	mu            sync.Mutex
	factory       Factory
	cfg           Config
	capability    Capability
	events        Events
	keepListening func() bool
	stopped       bool
	restarts      int
	restartTimer  *time.Timer
}

// NewSession creates a session around a capability factory. The
// capability itself is opened on the first Start call.
func NewSession(factory Factory, cfg Config) *Session {
	return &Session{factory: factory, cfg: cfg.withDefaults()}
}

// Attach sets the upstream event sinks and the restart predicate.
// keepListening may be nil for single-utterance use, which disables
// end-of-session restarts entirely. Attach must be called before Start.
func (s *Session) Attach(events Events, keepListening func() bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = events
	s.keepListening = keepListening
}

// Start opens the capability if needed and begins listening. An
// unavailable capability is fatal: the error is returned and the session
// cannot proceed.
func (s *Session) Start() error {
	s.mu.Lock()
	s.stopped = false
	s.restarts = 0
	if s.capability == nil {
		capability, err := s.factory(Events{
			OnStart:           s.handleStart,
			OnFinalTranscript: s.handleTranscript,
			OnError:           s.handleError,
			OnEnd:             s.handleEnd,
		})
		if err != nil {
			s.mu.Unlock()
			return fmt.Errorf("speech recognition unavailable: %w", err)
		}
		s.capability = capability
	}
	capability := s.capability
	s.mu.Unlock()

	if err := capability.Start(); err != nil {
		return fmt.Errorf("failed to start recognition: %w", err)
	}
	return nil
}

// Stop gracefully ends the session and suppresses further restarts.
func (s *Session) Stop() {
	capability := s.shutdown()
	if capability != nil {
		capability.Stop()
	}
}

// Abort immediately ends the session, discarding any pending utterance.
func (s *Session) Abort() {
	capability := s.shutdown()
	if capability != nil {
		capability.Abort()
	}
}

func (s *Session) shutdown() Capability {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	if s.restartTimer != nil {
		s.restartTimer.Stop()
		s.restartTimer = nil
	}
	return s.capability
}

func (s *Session) handleStart() {
	s.mu.Lock()
	onStart := s.events.OnStart
	s.mu.Unlock()
	if onStart != nil {
		onStart()
	}
}

func (s *Session) handleTranscript(text string) {
	// Empty transcripts are treated as if no result arrived.
	if strings.TrimSpace(text) == "" {
		return
	}

	s.mu.Lock()
	s.restarts = 0
	onFinal := s.events.OnFinalTranscript
	s.mu.Unlock()
	if onFinal != nil {
		onFinal(text)
	}
}

func (s *Session) handleError(kind ErrorKind) {
	s.mu.Lock()
	onError := s.events.OnError
	restart := !s.stopped && kind.Restartable()
	s.mu.Unlock()

	if onError != nil {
		onError(kind)
	}
	if restart {
		s.scheduleRestart(s.cfg.ErrorRestartDelay)
	}
}

func (s *Session) handleEnd() {
	s.mu.Lock()
	onEnd := s.events.OnEnd
	restart := !s.stopped && s.keepListening != nil && s.keepListening()
	s.mu.Unlock()

	if onEnd != nil {
		onEnd()
	}
	if restart {
		s.scheduleRestart(s.cfg.RestartDelay)
	}
}

func (s *Session) scheduleRestart(delay time.Duration) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	if s.restarts >= s.cfg.MaxConsecutiveRestarts {
		onError := s.events.OnError
		s.mu.Unlock()
		if onError != nil {
			onError(ErrorUnavailable)
		}
		return
	}
	s.restarts++
	s.restartTimer = time.AfterFunc(delay, s.restart)
	s.mu.Unlock()
}

func (s *Session) restart() {
	s.mu.Lock()
	if s.stopped || s.capability == nil {
		s.mu.Unlock()
		return
	}
	capability := s.capability
	onError := s.events.OnError
	s.mu.Unlock()

	if err := capability.Start(); err != nil && onError != nil {
		onError(ErrorUnavailable)
	}
}
