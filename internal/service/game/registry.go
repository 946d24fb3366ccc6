package game

import (
	"sync"
	"time"
)

// Handle is the live cancellation control for one running adventure.
// RequestStop is idempotent; the engine observes it through Stopped.
type Handle struct {
	stop chan struct{}
	once sync.Once

	mu       sync.Mutex
	deadline time.Time
}

// NewHandle returns an unsignalled control handle.
func NewHandle() *Handle {
	return &Handle{stop: make(chan struct{})}
}

// RequestStop signals the owning engine to end the session. Safe to call
// any number of times from any goroutine.
func (h *Handle) RequestStop() {
	h.once.Do(func() { close(h.stop) })
}

// Stopped is closed once a stop has been requested.
func (h *Handle) Stopped() <-chan struct{} {
	return h.stop
}

// Extend records the deadline of the current input wait. The engine owns
// the actual timer; observers read the deadline back through Deadline.
func (h *Handle) Extend(deadline time.Time) {
	h.mu.Lock()
	h.deadline = deadline
	h.mu.Unlock()
}

// Deadline returns the last recorded input deadline.
func (h *Handle) Deadline() time.Time {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.deadline
}

// entry is the tagged control slot for one user: pending until the engine
// attaches a live handle, so callers can never mistake a placeholder for a
// usable control. sessionID identifies the owning session, so a stale
// engine that outlived a force stop cannot act on a successor's entry.
type entry struct {
	sessionID string
	live      bool
	handle    *Handle
}

// Registry is the process-wide map from user id to active session control.
// Presence of an entry is the authoritative "this user has a live game"
// signal; every operation is a single critical section.
type Registry struct {
	mu      sync.Mutex
	entries map[string]entry
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]entry)}
}

// TryRegisterPending atomically inserts a placeholder for userID owned by
// sessionID. It returns false when an entry already exists, in which case
// the caller must refuse to start a new game. This is the sole
// duplicate-session guard.
func (r *Registry) TryRegisterPending(userID, sessionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[userID]; ok {
		return false
	}
	r.entries[userID] = entry{sessionID: sessionID}
	return true
}

// Attach replaces the placeholder (or a prior handle) with the live control
// handle. When the entry is gone, or already belongs to a successor session
// — the user was force-stopped and possibly restarted in the interim —
// Attach is a no-op and returns false; the caller must treat its own
// session as cancelled.
func (r *Registry) Attach(userID, sessionID string, h *Handle) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[userID]
	if !ok || e.sessionID != sessionID {
		return false
	}
	r.entries[userID] = entry{sessionID: sessionID, live: true, handle: h}
	return true
}

// Lookup reports whether userID has a live game. The returned handle is nil
// while the entry is still pending.
func (r *Registry) Lookup(userID string) (*Handle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[userID]
	if !ok {
		return nil, false
	}
	return e.handle, true
}

// Owns reports whether userID's entry still belongs to sessionID. This is
// the engine's membership checkpoint: a plain presence check would be
// fooled by a successor session registered after a force stop.
func (r *Registry) Owns(userID, sessionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[userID]
	return ok && e.sessionID == sessionID
}

// Remove deletes the entry if it still belongs to sessionID. Idempotent;
// called by the owning engine on every terminal exit. Owner-scoped so a
// stale engine cannot delete a successor session's entry.
func (r *Registry) Remove(userID, sessionID string) {
	r.mu.Lock()
	if e, ok := r.entries[userID]; ok && e.sessionID == sessionID {
		delete(r.entries, userID)
	}
	r.mu.Unlock()
}

// RequestStop signals the user's session to stop gracefully, leaving removal
// to the engine's own cleanup. A still-pending entry has no handle to signal
// and is removed directly. Returns whether a session existed.
func (r *Registry) RequestStop(userID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[userID]
	if !ok {
		return false
	}
	if !e.live {
		delete(r.entries, userID)
		return true
	}
	e.handle.RequestStop()
	return true
}

// ForceStop signals the session and removes the entry immediately, so an
// in-flight generator call finds the user absent and discards its result.
// Returns whether a session existed.
func (r *Registry) ForceStop(userID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[userID]
	if !ok {
		return false
	}
	delete(r.entries, userID)
	if e.live {
		e.handle.RequestStop()
	}
	return true
}

// StopAll force-stops every live session and returns the count. It iterates
// a snapshot because each signalled engine's cleanup also mutates the map.
func (r *Registry) StopAll() int {
	r.mu.Lock()
	snapshot := make(map[string]entry, len(r.entries))
	for id, e := range r.entries {
		snapshot[id] = e
	}
	for id := range snapshot {
		delete(r.entries, id)
	}
	r.mu.Unlock()

	for _, e := range snapshot {
		if e.live {
			e.handle.RequestStop()
		}
	}
	return len(snapshot)
}

// Len reports the number of registered sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
