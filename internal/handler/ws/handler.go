package ws

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/oyxning/textventure/backend/internal/push"
	gameservice "github.com/oyxning/textventure/backend/internal/service/game"
)

// Handler 冒险会话的WebSocket传输层：推送场景与提示，接收玩家行动。
type Handler struct {
	hub      *push.Hub
	mgr      *gameservice.Manager
	upgrader websocket.Upgrader
}

// New 创建WebSocket处理器
func New(hub *push.Hub, mgr *gameservice.Manager) *Handler {
	return &Handler{
		hub: hub,
		mgr: mgr,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes 注册WebSocket路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ws/{userID}", h.handleWebSocket)
}

type inboundMessage struct {
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
}

// ActionMessage 玩家行动
type ActionMessage struct {
	Text string `json:"text"`
}

type outgoingMessage struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

type scenePayload struct {
	Text  string `json:"text"`
	Image []byte `json:"image,omitempty"` // base64 in JSON
}

func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade failed user=%s: %v", userID, err)
		return
	}
	defer conn.Close()

	payloads, cancel := h.hub.Subscribe(userID)
	defer cancel()

	log.Printf("[ws] connected user=%s", userID)

	var writeMu sync.Mutex
	write := func(msg outgoingMessage) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		return conn.WriteJSON(msg)
	}

	done := make(chan struct{})

	// Writer: hub payloads out to the socket.
	go func() {
		for {
			select {
			case <-done:
				return
			case p, ok := <-payloads:
				if !ok {
					return
				}
				msg := outgoingMessage{
					Type:      p.Kind,
					Data:      scenePayload{Text: p.Text, Image: p.Image},
					Timestamp: time.Now().UnixMilli(),
				}
				if err := write(msg); err != nil {
					log.Printf("[ws] write failed user=%s: %v", userID, err)
					return
				}
			}
		}
	}()

	// Reader: player actions into the session inbox.
	for {
		var msg inboundMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[ws] read failed user=%s: %v", userID, err)
			}
			break
		}

		switch msg.Type {
		case "action":
			var action ActionMessage
			if err := json.Unmarshal(msg.Data, &action); err != nil {
				h.writeError(write, "invalid action payload")
				continue
			}
			if err := h.mgr.Submit(userID, action.Text); err != nil {
				h.writeError(write, submitErrorText(err))
			}
		case "ping":
			_ = write(outgoingMessage{Type: "pong", Timestamp: time.Now().UnixMilli()})
		default:
			h.writeError(write, "unknown message type: "+msg.Type)
		}
	}

	close(done)
	log.Printf("[ws] disconnected user=%s", userID)
}

func (h *Handler) writeError(write func(outgoingMessage) error, text string) {
	_ = write(outgoingMessage{
		Type:      "error",
		Data:      map[string]string{"message": text},
		Timestamp: time.Now().UnixMilli(),
	})
}

func submitErrorText(err error) string {
	switch {
	case errors.Is(err, gameservice.ErrNoSession):
		return "您当前没有正在进行的冒险。"
	case errors.Is(err, gameservice.ErrBusy):
		return "AI正在构思下一幕，请稍后再试。"
	default:
		return err.Error()
	}
}
