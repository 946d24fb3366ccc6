package game

import "sync"

// Status is the lifecycle phase of an adventure session.
type Status string

const (
	StatusStarting      Status = "starting"
	StatusAwaitingInput Status = "awaiting_input"
	StatusGenerating    Status = "generating"
	StatusStopping      Status = "stopping"
	StatusEnded         Status = "ended"
)

// Outcome records why a session reached its terminal state.
type Outcome string

const (
	OutcomeNone           Outcome = ""
	OutcomeTimeout        Outcome = "timeout"
	OutcomeStopped        Outcome = "stopped"
	OutcomeForceStopped   Outcome = "force_stopped"
	OutcomeGeneratorError Outcome = "generator_error"
	OutcomeShutdown       Outcome = "shutdown"
)

// Session is one player's single active adventure and its state machine data.
// The transcript and turn progression belong to the owning engine goroutine;
// status and turn counter are guarded so the status endpoint can read them
// from other goroutines. The turn deadline lives on the registry handle.
type Session struct {
	ID     string // correlation id passed to the generator
	UserID string
	Theme  string // immutable after creation

	Transcript *Transcript

	mu      sync.Mutex
	status  Status
	turns   int
	outcome Outcome
}

// NewSession builds a session in the Starting state with a seeded transcript.
func NewSession(id, userID, theme, systemPrompt string) *Session {
	return &Session{
		ID:         id,
		UserID:     userID,
		Theme:      theme,
		Transcript: NewTranscript(systemPrompt),
		status:     StatusStarting,
	}
}

// SetStatus transitions the session's visible phase.
func (s *Session) SetStatus(status Status) {
	s.mu.Lock()
	s.status = status
	s.mu.Unlock()
}

// Status returns the current lifecycle phase.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// AddTurn bumps the completed-turn counter.
func (s *Session) AddTurn() {
	s.mu.Lock()
	s.turns++
	s.mu.Unlock()
}

// Turns reports how many generator turns completed.
func (s *Session) Turns() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.turns
}

// End marks the terminal transition exactly once and records its outcome.
// Later calls keep the first outcome.
func (s *Session) End(outcome Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == StatusEnded {
		return
	}
	s.status = StatusEnded
	s.outcome = outcome
}

// Outcome returns the terminal outcome, or OutcomeNone while live.
func (s *Session) Outcome() Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outcome
}
