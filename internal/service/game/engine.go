package game

import (
	"context"
	"log"
	"strings"
	"time"

	gamemodel "github.com/oyxning/textventure/backend/internal/model/game"
)

// commandPrefix marks inbound text that must never enter the transcript.
// Without this a player could smuggle control commands into story content.
const commandPrefix = "/"

// Engine drives one session through the turn state machine:
// Starting -> AwaitingInput -> Generating -> AwaitingInput -> ... -> Ended.
// It is the transcript's single writer and performs exactly one registry
// Remove on any terminal exit.
type Engine struct {
	registry *Registry
	gen      Generator
	out      Messenger
	timeout  time.Duration
}

// NewEngine wires a turn loop driver over the shared registry.
func NewEngine(registry *Registry, gen Generator, out Messenger, timeout time.Duration) *Engine {
	return &Engine{registry: registry, gen: gen, out: out, timeout: timeout}
}

// Run owns sess until a terminal condition and returns the outcome. The
// caller must already hold a pending registry entry for sess.UserID owned
// by sess.ID; Run cleans it up on every path.
//
// An explicit loop, not recursion: stack depth stays bounded across
// arbitrarily many turns.
func (e *Engine) Run(ctx context.Context, sess *gamemodel.Session, inbox <-chan string) gamemodel.Outcome {
	userID := sess.UserID
	outcome := gamemodel.OutcomeNone

	defer func() {
		e.registry.Remove(userID, sess.ID)
		sess.End(outcome)
		log.Printf("[game] session ended user=%s session=%s outcome=%s turns=%d",
			userID, sess.ID, outcome, sess.Turns())
	}()

	// Starting: one generator call for the opening scene. Failure here is
	// terminal.
	e.send(ctx, userID, Payload{Kind: PayloadNotice, Text: msgBuildingWorld})
	opening, err := e.gen.Generate(ctx, sess.ID, sess.Transcript.Snapshot())
	if err != nil {
		log.Printf("[game] opening generation failed user=%s: %v", userID, err)
		e.send(ctx, userID, Payload{Kind: PayloadError, Text: msgStartFailed})
		outcome = gamemodel.OutcomeGeneratorError
		return outcome
	}
	sess.Transcript.Append(gamemodel.RoleAssistant, opening)

	// Install the live control handle before anything is delivered, so a
	// stop issued from here on always reaches the loop below. A failed
	// attach means the entry vanished under a force stop while the opening
	// was generating; the scene is discarded undelivered.
	handle := NewHandle()
	if !e.registry.Attach(userID, sess.ID, handle) {
		outcome = gamemodel.OutcomeForceStopped
		return outcome
	}

	e.send(ctx, userID, Payload{Kind: PayloadScene, Text: opening + actionHint})
	sess.AddTurn()

	timer := time.NewTimer(e.timeout)
	defer timer.Stop()

	rearm := func() {
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(e.timeout)
		handle.Extend(time.Now().Add(e.timeout))
	}

	sess.SetStatus(gamemodel.StatusAwaitingInput)
	handle.Extend(time.Now().Add(e.timeout))

	for {
		select {
		case <-ctx.Done():
			outcome = gamemodel.OutcomeShutdown
			return outcome

		case <-handle.Stopped():
			// A graceful stop leaves the entry in place for this engine to
			// remove; a force stop has already deleted it.
			sess.SetStatus(gamemodel.StatusStopping)
			if e.registry.Owns(userID, sess.ID) {
				outcome = gamemodel.OutcomeStopped
			} else {
				outcome = gamemodel.OutcomeForceStopped
			}
			return outcome

		case <-timer.C:
			// The timer can fire in a race with a force stop; a session no
			// longer in the registry gets no timeout notice.
			if !e.registry.Owns(userID, sess.ID) {
				outcome = gamemodel.OutcomeForceStopped
				return outcome
			}
			e.send(ctx, userID, Payload{Kind: PayloadNotice, Text: msgTimeout + "\n(玩家ID: " + userID + ")"})
			outcome = gamemodel.OutcomeTimeout
			return outcome

		case raw := <-inbox:
			action := strings.TrimSpace(raw)

			if strings.HasPrefix(action, commandPrefix) {
				log.Printf("[game] intercepted command-like input user=%s", userID)
				e.send(ctx, userID, Payload{Kind: PayloadNotice, Text: msgCommandBlocked})
				rearm()
				continue
			}
			if action == "" {
				e.send(ctx, userID, Payload{Kind: PayloadNotice, Text: msgIdle(userID)})
				rearm()
				continue
			}

			e.send(ctx, userID, Payload{Kind: PayloadNotice, Text: msgThinking})
			sess.Transcript.Append(gamemodel.RoleUser, action)
			sess.SetStatus(gamemodel.StatusGenerating)

			// First membership check: skip the call entirely when this
			// session was force-stopped before the generator started.
			if !e.registry.Owns(userID, sess.ID) {
				outcome = gamemodel.OutcomeForceStopped
				return outcome
			}

			// No registry lock is held across the call; the membership
			// re-checks on both sides substitute for one.
			text, err := e.gen.Generate(ctx, sess.ID, sess.Transcript.Snapshot())
			if err != nil {
				log.Printf("[game] turn generation failed user=%s: %v", userID, err)
				e.send(ctx, userID, Payload{Kind: PayloadError, Text: msgTurnFailed + "\n(玩家ID: " + userID + ")"})
				outcome = gamemodel.OutcomeGeneratorError
				return outcome
			}
			sess.Transcript.Append(gamemodel.RoleAssistant, text)

			// Second membership check: the force-stop race window spans the
			// whole call. Ownership, not mere presence, is what is checked:
			// the user may already have started a fresh session, and its
			// entry must be neither read as ours nor disturbed.
			if !e.registry.Owns(userID, sess.ID) {
				outcome = gamemodel.OutcomeForceStopped
				return outcome
			}

			e.send(ctx, userID, Payload{Kind: PayloadScene, Text: text + actionHint})
			sess.AddTurn()

			// A graceful stop issued during the call still delivers the
			// result above, then ends the game here.
			select {
			case <-handle.Stopped():
				sess.SetStatus(gamemodel.StatusStopping)
				outcome = gamemodel.OutcomeStopped
				return outcome
			default:
			}

			sess.SetStatus(gamemodel.StatusAwaitingInput)
			rearm()
		}
	}
}

// send delivers one payload, logging instead of failing the turn: delivery
// problems are a transport concern, not a session-terminal condition.
func (e *Engine) send(ctx context.Context, userID string, p Payload) {
	if err := e.out.Deliver(ctx, userID, p); err != nil {
		log.Printf("[game] deliver failed user=%s kind=%s: %v", userID, p.Kind, err)
	}
}
