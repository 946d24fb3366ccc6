// Package push fans outbound game payloads out to whatever transports a
// player has connected (WebSocket, SSE), buffering a short backlog so
// messages sent between "start" and the first transport connect are not lost.
package push

import (
	"context"
	"log"
	"sync"

	game "github.com/oyxning/textventure/backend/internal/service/game"
)

const (
	subscriberBuffer = 16
	backlogLimit     = 32
)

// Renderer produces an image variant of outbound text. Failures are
// tolerated: the payload falls back to text-only.
type Renderer interface {
	Render(ctx context.Context, text string) ([]byte, error)
}

// Hub implements game.Messenger. Delivery never blocks the session engine:
// slow subscribers lose messages rather than stalling the turn loop.
type Hub struct {
	renderer Renderer // may be nil

	mu       sync.Mutex
	subs     map[string][]chan game.Payload
	backlogs map[string][]game.Payload
}

// NewHub returns a hub with an optional renderer attached.
func NewHub(renderer Renderer) *Hub {
	return &Hub{
		renderer: renderer,
		subs:     make(map[string][]chan game.Payload),
		backlogs: make(map[string][]game.Payload),
	}
}

// Deliver renders (best effort) and fans the payload out to the player's
// connected transports, or parks it in the backlog when none is connected.
func (h *Hub) Deliver(ctx context.Context, userID string, p game.Payload) error {
	if h.renderer != nil && p.Kind == game.PayloadScene {
		if img, err := h.renderer.Render(ctx, p.Text); err != nil {
			// Rendering is a side transformation: never drop the text.
			log.Printf("[push] render failed for user=%s, falling back to text: %v", userID, err)
		} else {
			p.Image = img
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	subs := h.subs[userID]
	if len(subs) == 0 {
		backlog := append(h.backlogs[userID], p)
		if len(backlog) > backlogLimit {
			backlog = backlog[len(backlog)-backlogLimit:]
		}
		h.backlogs[userID] = backlog
		return nil
	}

	for _, ch := range subs {
		select {
		case ch <- p:
		default:
			log.Printf("[push] subscriber for user=%s is slow, dropping payload kind=%s", userID, p.Kind)
		}
	}
	return nil
}

// Subscribe registers a transport for userID, flushing any backlog into the
// returned channel. The cancel func must be called when the transport closes.
func (h *Hub) Subscribe(userID string) (<-chan game.Payload, func()) {
	ch := make(chan game.Payload, subscriberBuffer)

	h.mu.Lock()
	for _, p := range h.backlogs[userID] {
		select {
		case ch <- p:
		default:
		}
	}
	delete(h.backlogs, userID)
	h.subs[userID] = append(h.subs[userID], ch)
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		chans := h.subs[userID]
		for i, c := range chans {
			if c == ch {
				h.subs[userID] = append(chans[:i], chans[i+1:]...)
				break
			}
		}
		if len(h.subs[userID]) == 0 {
			delete(h.subs, userID)
		}
	}
	return ch, cancel
}
