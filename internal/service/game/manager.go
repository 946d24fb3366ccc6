package game

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	gamemodel "github.com/oyxning/textventure/backend/internal/model/game"
)

var (
	ErrSessionExists = errors.New("adventure already in progress")
	ErrNoSession     = errors.New("no active adventure")
	ErrBusy          = errors.New("adventure is busy, action dropped")
	ErrNoGenerator   = errors.New("llm generator unavailable")
)

// PromptBuilder renders the game-master system prompt for a theme.
type PromptBuilder func(theme string) string

// Options carries the tunables the session core consumes.
type Options struct {
	DefaultTheme string
	TurnTimeout  time.Duration
}

// Manager translates commands into registry and engine operations and routes
// inbound player text to the owning engine. The registry stays the sole
// authority on session presence; the running map only carries the inbox
// plumbing the registry contract does not cover.
type Manager struct {
	registry *Registry
	engine   *Engine
	out      Messenger
	prompt   PromptBuilder
	themes   gamemodel.ThemeStore
	opts     Options

	baseCtx context.Context
	cancel  context.CancelFunc

	mu      sync.Mutex
	running map[string]*runningSession
	wg      sync.WaitGroup
}

type runningSession struct {
	sess  *gamemodel.Session
	inbox chan string
}

// NewManager wires the session core. gen may be nil when no LLM is
// configured; starts are then refused with ErrNoGenerator.
func NewManager(registry *Registry, gen Generator, out Messenger, prompt PromptBuilder, themes gamemodel.ThemeStore, opts Options) *Manager {
	baseCtx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		baseCtx:  baseCtx,
		cancel:   cancel,
		registry: registry,
		out:      out,
		prompt:   prompt,
		themes:   themes,
		opts:     opts,
		running:  make(map[string]*runningSession),
	}
	if gen != nil {
		m.engine = NewEngine(registry, gen, out, opts.TurnTimeout)
	}
	return m
}

// Start begins a new adventure for userID, refusing when one already exists.
// theme may be empty (default theme), a preset theme id, or free-form text.
// The disclaimer is delivered synchronously; the opening scene arrives from
// the spawned engine.
func (m *Manager) Start(ctx context.Context, userID, theme string) (*gamemodel.Session, error) {
	if m.engine == nil {
		return nil, ErrNoGenerator
	}

	resolved := m.resolveTheme(theme)

	sess := gamemodel.NewSession(uuid.NewString(), userID, resolved, m.prompt(resolved))
	sess.Transcript.Append(gamemodel.RoleUser, openingAction)

	if !m.registry.TryRegisterPending(userID, sess.ID) {
		return nil, fmt.Errorf("%w: user %s", ErrSessionExists, userID)
	}

	inbox := make(chan string, 8)
	m.mu.Lock()
	m.running[userID] = &runningSession{sess: sess, inbox: inbox}
	m.mu.Unlock()

	timeoutSeconds := int(m.opts.TurnTimeout / time.Second)
	if err := m.out.Deliver(ctx, userID, Payload{Kind: PayloadNotice, Text: msgDisclaimer(timeoutSeconds)}); err != nil {
		log.Printf("[game] disclaimer delivery failed user=%s: %v", userID, err)
	}

	log.Printf("[game] starting adventure user=%s session=%s theme=%q", userID, sess.ID, resolved)

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer m.dropRunning(userID, sess.ID)
		m.engine.Run(m.baseCtx, sess, inbox)
	}()

	return sess, nil
}

// Submit routes one inbound player message to the user's engine.
func (m *Manager) Submit(userID, text string) error {
	m.mu.Lock()
	r, ok := m.running[userID]
	m.mu.Unlock()
	if !ok {
		return ErrNoSession
	}

	select {
	case r.inbox <- text:
		return nil
	default:
		// Inbox full means the engine is mid-generation and the player is
		// flooding; drop rather than block the transport.
		return ErrBusy
	}
}

// Stop requests a graceful stop: the current turn finishes and its result is
// still delivered. Reports whether a session existed.
func (m *Manager) Stop(userID string) bool {
	return m.registry.RequestStop(userID)
}

// ForceStop revokes the session immediately; any in-flight generator result
// is discarded. Reports whether a session existed.
func (m *Manager) ForceStop(userID string) bool {
	return m.registry.ForceStop(userID)
}

// StopAll force-stops every live adventure and returns the count.
func (m *Manager) StopAll() int {
	return m.registry.StopAll()
}

// Session returns the live session for userID, when one exists.
func (m *Manager) Session(userID string) (*gamemodel.Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.running[userID]
	if !ok {
		return nil, false
	}
	return r.sess, true
}

// TurnDeadline reads the current input deadline off the live control handle.
// Zero until the engine arms its first wait; ok is false when the user has
// no registered session.
func (m *Manager) TurnDeadline(userID string) (time.Time, bool) {
	h, ok := m.registry.Lookup(userID)
	if !ok || h == nil {
		return time.Time{}, ok
	}
	return h.Deadline(), true
}

// Shutdown stops every session, cancels engines still waiting for their
// first action, and waits for all of them to unwind.
func (m *Manager) Shutdown() int {
	n := m.StopAll()
	m.cancel()
	m.wg.Wait()
	return n
}

// dropRunning is owner-scoped: a finished engine must not unplumb a
// successor session registered for the same user after a force stop.
func (m *Manager) dropRunning(userID, sessionID string) {
	m.mu.Lock()
	if r, ok := m.running[userID]; ok && r.sess.ID == sessionID {
		delete(m.running, userID)
	}
	m.mu.Unlock()
}

func (m *Manager) resolveTheme(theme string) string {
	if theme == "" {
		return m.opts.DefaultTheme
	}
	if m.themes != nil {
		if preset, ok := m.themes.FindByID(theme); ok {
			return preset.Name
		}
	}
	return theme
}
