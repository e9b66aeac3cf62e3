// Package registration tracks one in-flight user registration: the REST
// call that starts the backend capture and the asynchronous status and
// feedback messages the backend pushes while it runs.
package registration

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/saturnino-fabrica-de-software/vigia/internal/domain"
)

// Phase is the lifecycle position of the current registration attempt.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSubmitting
	PhaseAwaitingBackend
	PhaseSucceeded
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSubmitting:
		return "submitting"
	case PhaseAwaitingBackend:
		return "awaiting_backend"
	case PhaseSucceeded:
		return "succeeded"
	case PhaseFailed:
		return "failed"
	}
	return "unknown"
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Registrar starts an asynchronous capture on the backend, either
// enrolling a new name or re-capturing an existing one. The returned
// error covers only the initiating call; the outcome arrives on the push
// channel.
type Registrar interface {
	Register(ctx context.Context, name string) error
	UpdateUser(ctx context.Context, name string) error
}

// StatusMessage is the push channel's registration_status payload.
type StatusMessage struct {
	Status string `json:"status"`
	Name   string `json:"name,omitempty"`
	Error  string `json:"error,omitempty"`
}

// FeedbackMessage is the push channel's registration_feedback payload:
// human-readable progress text with no phase meaning.
type FeedbackMessage struct {
	Message string `json:"message"`
}

// Snapshot is a read-only copy of the session state for display.
type Snapshot struct {
	Phase         Phase  `json:"phase"`
	PendingName   string `json:"pending_name,omitempty"`
	StatusMessage string `json:"status_message,omitempty"`
	RequiresAck   bool   `json:"requires_ack"`
}

const (
	defaultSuccessDwell = 3 * time.Second
	defaultFailureDwell = 5 * time.Second
)

// Session is the registration state machine. A second Start while an
// attempt is in flight is rejected, not queued: the backend owns a single
// camera and a single capture loop.
type Session struct {
	registrar Registrar
	logger    *slog.Logger

	successDwell time.Duration
	failureDwell time.Duration

	mu            sync.Mutex
	phase         Phase
	pendingName   string
	statusMessage string
	requiresAck   bool
	clearTimer    *time.Timer
	generation    uint64
}

// NewSession creates an idle session.
func NewSession(registrar Registrar, logger *slog.Logger) *Session {
	return &Session{
		registrar:    registrar,
		logger:       logger,
		successDwell: defaultSuccessDwell,
		failureDwell: defaultFailureDwell,
	}
}

// WithDwellTimes overrides how long a terminal status stays on screen
// before auto-clearing.
func (s *Session) WithDwellTimes(success, failure time.Duration) *Session {
	s.successDwell = success
	s.failureDwell = failure
	return s
}

// Start begins a registration for name. An empty name leaves the session
// idle. A start while another attempt is in flight is rejected.
func (s *Session) Start(ctx context.Context, name string) error {
	return s.begin(ctx, name, s.registrar.Register)
}

// StartRecapture begins a fresh face capture for a name the backend
// already knows, replacing the stored face on success. It shares the
// session with Start, so only one capture runs at a time.
func (s *Session) StartRecapture(ctx context.Context, name string) error {
	return s.begin(ctx, name, s.registrar.UpdateUser)
}

func (s *Session) begin(ctx context.Context, name string, call func(context.Context, string) error) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.ErrNameRequired
	}

	s.mu.Lock()
	if s.phase != PhaseIdle {
		s.mu.Unlock()
		return domain.ErrRegistrationBusy
	}
	s.cancelClearLocked()
	s.phase = PhaseSubmitting
	s.pendingName = name
	s.statusMessage = "Starting registration..."
	s.requiresAck = false
	s.mu.Unlock()

	// The REST call runs outside the lock; a push message may land first.
	err := call(ctx, name)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		// A push result that raced the acknowledgment wins.
		if s.phase == PhaseSubmitting {
			s.statusMessage = "Error starting registration"
			s.phase = PhaseFailed
			s.scheduleClearLocked(s.failureDwell)
		}
		s.logger.Warn("registration start failed",
			slog.String("name", name),
			slog.Any("error", err),
		)
		return domain.ErrBackendUnavailable.WithError(err)
	}

	if s.phase == PhaseSubmitting {
		s.phase = PhaseAwaitingBackend
		s.statusMessage = "Initializing..."
	}
	return nil
}

// HandleStatus applies a registration_status push message. Transitions are
// idempotent with respect to ordering: a result arriving before the REST
// acknowledgment still lands in the right terminal phase. Messages
// arriving with no attempt in flight are stale and ignored.
func (s *Session) HandleStatus(msg StatusMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseSubmitting && s.phase != PhaseAwaitingBackend {
		return
	}

	if msg.Status == "success" {
		name := msg.Name
		if name == "" {
			name = s.pendingName
		}
		s.phase = PhaseSucceeded
		s.statusMessage = fmt.Sprintf("Success! Registered %s", name)
		s.pendingName = ""
		s.requiresAck = false
		s.scheduleClearLocked(s.successDwell)
		return
	}

	s.phase = PhaseFailed
	s.statusMessage = fmt.Sprintf("Failed: %s", msg.Error)
	// Duplicate enrollment needs the operator's attention before a retry,
	// not just a status line that fades out.
	s.requiresAck = strings.Contains(msg.Error, "Already registered")
	s.scheduleClearLocked(s.failureDwell)
}

// HandleFeedback applies a registration_feedback push message: it updates
// the status text of an in-flight attempt without changing phase.
func (s *Session) HandleFeedback(msg FeedbackMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase == PhaseSubmitting || s.phase == PhaseAwaitingBackend {
		s.statusMessage = msg.Message
	}
}

// Acknowledge dismisses a failure that was waiting on the operator. If the
// session was parked in the failed phase it returns to idle.
func (s *Session) Acknowledge() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.requiresAck {
		return
	}
	s.requiresAck = false
	if s.phase == PhaseFailed {
		s.resetLocked()
	}
}

// State returns a copy of the current session state.
func (s *Session) State() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Snapshot{
		Phase:         s.phase,
		PendingName:   s.pendingName,
		StatusMessage: s.statusMessage,
		RequiresAck:   s.requiresAck,
	}
}

// Close cancels any pending auto-clear so a torn-down session cannot
// mutate state later.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelClearLocked()
}

// scheduleClearLocked arms the auto-clear for a terminal status. Arming
// bumps the generation so a timer from an earlier attempt that already
// fired cannot clear a newer message.
func (s *Session) scheduleClearLocked(d time.Duration) {
	s.cancelClearLocked()
	gen := s.generation

	s.clearTimer = time.AfterFunc(d, func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		if s.generation != gen {
			return
		}
		// A conflict waiting on the operator does not fade out.
		if s.requiresAck {
			return
		}
		s.resetLocked()
	})
}

func (s *Session) cancelClearLocked() {
	s.generation++
	if s.clearTimer != nil {
		s.clearTimer.Stop()
		s.clearTimer = nil
	}
}

func (s *Session) resetLocked() {
	if s.clearTimer != nil {
		s.clearTimer.Stop()
		s.clearTimer = nil
	}
	s.phase = PhaseIdle
	s.pendingName = ""
	s.statusMessage = ""
	s.requiresAck = false
}
