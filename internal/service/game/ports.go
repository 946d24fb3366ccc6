package game

import (
	"context"

	gamemodel "github.com/oyxning/textventure/backend/internal/model/game"
)

// Generator produces the next scene from the full conversation transcript.
// A call may take seconds and may fail; the engine never retries.
type Generator interface {
	Generate(ctx context.Context, sessionID string, transcript []gamemodel.Entry) (string, error)
}

// Payload is one outbound message for a player. Image carries an optional
// rendered variant of Text; transports that cannot show it ignore it.
type Payload struct {
	Kind  string `json:"kind"` // scene / notice / error
	Text  string `json:"text"`
	Image []byte `json:"image,omitempty"`
}

const (
	PayloadScene  = "scene"
	PayloadNotice = "notice"
	PayloadError  = "error"
)

// Messenger delivers outbound payloads to a player.
type Messenger interface {
	Deliver(ctx context.Context, userID string, p Payload) error
}
