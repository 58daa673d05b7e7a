// Package chat drives multi-turn conversations with the FitGenie assistant
// service. The Session owns the turn history and an Idle/Pending state
// machine; the Manager runs the send protocol against a Transport and keeps
// history consistent under both success and failure.
package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"fitgenie/internal/logger"
	"fitgenie/internal/metrics"
	"fitgenie/internal/profile"
)

// Turn roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// PlanType selects which plan is attached to outgoing turns.
type PlanType string

// Conversation contexts.
const (
	PlanTypeMeal    PlanType = "meal"
	PlanTypeWorkout PlanType = "workout"
)

// Greetings seeding a new session's history.
const (
	DefaultGreeting = "Hello! I'm FitGenie AI, your personal fitness and nutrition assistant. How can I help you today?"
	MealGreeting    = "Hello! I'm your FitGenie meal assistant. How can I help you with your meal plan today?"
	WorkoutGreeting = "Hello! I'm your FitGenie workout assistant. How can I help you with your training today?"
)

// Turn is one message in a session's history.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// State is the session's protocol state.
type State int

const (
	// StateIdle means no request is outstanding.
	StateIdle State = iota
	// StatePending means a turn is in flight.
	StatePending
)

// ErrEmptyMessage rejects a turn whose message is empty after trimming.
var ErrEmptyMessage = errors.New("chat: message is empty")

// ProtocolStateError reports a SendTurn on a session that is already
// Pending. This is a caller bug; the transport is never touched.
type ProtocolStateError struct {
	SessionID string
}

func (e *ProtocolStateError) Error() string {
	return "chat: session " + e.SessionID + " already has a turn in flight"
}

// Session is one logical conversation. History is append-only from the
// caller's viewpoint except when a successful turn replaces it with the
// transport's authoritative copy. All methods are safe for concurrent use.
type Session struct {
	mu       sync.Mutex
	id       string
	planType PlanType
	history  []Turn
	state    State
	defunct  bool
}

// NewSession creates a session whose history starts with the assistant
// greeting. An empty greeting falls back to DefaultGreeting.
func NewSession(id string, planType PlanType, greeting string) *Session {
	if greeting == "" {
		greeting = DefaultGreeting
	}
	return &Session{
		id:       id,
		planType: planType,
		history:  []Turn{{Role: RoleAssistant, Content: greeting}},
	}
}

// ID returns the opaque session identifier.
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// Context returns the active plan context.
func (s *Session) Context() PlanType {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.planType
}

// SetContext switches the plan context for subsequent turns. It is pure
// metadata: history is neither cleared nor altered.
func (s *Session) SetContext(planType PlanType) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.planType = planType
}

// State returns the protocol state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// History returns a copy of the current history. While a turn is Pending
// the copy includes the optimistic user turn.
func (s *Session) History() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	history := make([]Turn, len(s.history))
	copy(history, s.history)
	return history
}

// Abandon marks the session defunct, e.g. when its UI surface is torn
// down. A result arriving for an abandoned session is discarded.
func (s *Session) Abandon() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.defunct = true
}

// Manager runs the send protocol. It holds no session state itself; the
// session value is threaded through every call.
type Manager struct {
	transport Transport
	store     *metrics.Store
	log       *logger.Logger
}

// NewManager creates a Manager. A nil store disables turn metrics; a nil
// log disables diagnostics.
func NewManager(transport Transport, store *metrics.Store, log *logger.Logger) *Manager {
	if log == nil {
		log = logger.New(logger.LevelOff, nil)
	}
	return &Manager{transport: transport, store: store, log: log}
}

// SendTurn drives one conversation turn.
//
// Phase 1 appends the user turn to the session speculatively, so it is
// visible while the request is in flight; the request itself carries only
// the prior history, since the service echoes history back. Phase 2
// replaces the history with the transport's authoritative copy, or, on
// failure, keeps the optimistic turn and appends one synthesized fallback
// reply. Either way the session ends Idle and a retry is possible.
//
// Transport failures are absorbed into the fallback turn and logged; an
// error return means the turn was rejected outright (empty message, or a
// *ProtocolStateError when a turn is already Pending) and the session was
// not touched.
func (m *Manager) SendTurn(ctx context.Context, s *Session, message string, user profile.UserProfile, plan any) error {
	message = strings.TrimSpace(message)
	if message == "" {
		return ErrEmptyMessage
	}

	s.mu.Lock()
	if s.defunct {
		s.mu.Unlock()
		m.log.Debug("chat: ignoring send on abandoned session %s", s.id)
		return nil
	}
	if s.state == StatePending {
		id := s.id
		s.mu.Unlock()
		return &ProtocolStateError{SessionID: id}
	}
	s.state = StatePending
	prior := make([]Turn, len(s.history))
	copy(prior, s.history)
	s.history = append(s.history, Turn{Role: RoleUser, Content: message})
	id, planType := s.id, s.planType
	s.mu.Unlock()

	start := time.Now()
	resp, err := m.transport.Send(ctx, Request{
		SessionID: id,
		User:      user,
		Plan:      plan,
		Message:   message,
		PlanType:  planType,
		History:   prior,
	})
	m.recordTurn(planType, start, err)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateIdle
	if s.defunct {
		m.log.Debug("chat: dropping result for abandoned session %s", id)
		return nil
	}
	if err != nil {
		m.log.Warn("chat: transport failure on session %s: %v", id, err)
		s.history = append(s.history, Turn{Role: RoleAssistant, Content: fallbackMessage(err)})
		return nil
	}

	history := make([]Turn, len(resp.History))
	copy(history, resp.History)
	s.history = history
	return nil
}

func (m *Manager) recordTurn(planType PlanType, start time.Time, err error) {
	if m.store == nil {
		return
	}
	outcome := metrics.OutcomeOK
	if err != nil {
		outcome = metrics.OutcomeFallback
	}
	m.store.Record(metrics.TurnMetric{
		PlanType:  string(planType),
		Outcome:   outcome,
		Latency:   time.Since(start),
		Timestamp: start.UTC(),
	})
}

// fallbackMessage picks the user-facing text for a failed turn. Status
// codes and response bodies stay in the log; the user only learns whether
// the service was unreachable or misbehaving.
func fallbackMessage(err error) string {
	var terr *TransportError
	if errors.As(err, &terr) && terr.Reason == ReasonUnreachable {
		return "Sorry, I couldn't reach the assistant service. Please check your connection and try again."
	}
	return "Sorry, the assistant service ran into a problem with your request. Please try again later."
}
