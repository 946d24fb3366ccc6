package events

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/oyxning/textventure/backend/internal/push"
	"github.com/oyxning/textventure/backend/pkg/utils"
)

// Handler streams outbound game payloads to a player over SSE, for clients
// that cannot hold a WebSocket.
type Handler struct {
	hub *push.Hub
}

// New creates the SSE transport handler.
func New(hub *push.Hub) *Handler {
	return &Handler{hub: hub}
}

// RegisterRoutes mounts the event stream route.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/events/{userID}", h.handleEvents)
}

func (h *Handler) handleEvents(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	utils.SetupSSEHeaders(w)

	payloads, cancel := h.hub.Subscribe(userID)
	defer cancel()

	ctx := r.Context()
	log.Printf("[sse] opening event stream for user=%s", userID)

	utils.SendSSEEvent(w, flusher, "status", map[string]string{"message": "stream established"})

	ticker := time.NewTicker(8 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Printf("[sse] closing event stream for user=%s", userID)
			return
		case p := <-payloads:
			utils.SendSSEEvent(w, flusher, p.Kind, map[string]any{
				"text":  p.Text,
				"image": p.Image,
				"time":  time.Now().UTC().Format(time.RFC3339),
			})
		case t := <-ticker.C:
			utils.SendSSEEvent(w, flusher, "heartbeat", map[string]string{
				"time": t.UTC().Format(time.RFC3339),
			})
		}
	}
}
