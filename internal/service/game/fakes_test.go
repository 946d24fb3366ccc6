package game_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	gamemodel "github.com/oyxning/textventure/backend/internal/model/game"
	game "github.com/oyxning/textventure/backend/internal/service/game"
)

// genStep scripts one generator call. started is closed when the call
// begins; the call blocks until release is closed when release is non-nil.
type genStep struct {
	started chan struct{}
	release chan struct{}
	text    string
	err     error
}

type fakeGenerator struct {
	mu    sync.Mutex
	steps []genStep
	calls int
}

func (g *fakeGenerator) push(steps ...genStep) {
	g.mu.Lock()
	g.steps = append(g.steps, steps...)
	g.mu.Unlock()
}

func (g *fakeGenerator) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

func (g *fakeGenerator) Generate(_ context.Context, _ string, _ []gamemodel.Entry) (string, error) {
	g.mu.Lock()
	if len(g.steps) == 0 {
		g.mu.Unlock()
		return "", errors.New("unexpected generator call")
	}
	step := g.steps[0]
	g.steps = g.steps[1:]
	g.calls++
	g.mu.Unlock()

	if step.started != nil {
		close(step.started)
	}
	if step.release != nil {
		<-step.release
	}
	if step.err != nil {
		return "", step.err
	}
	return step.text, nil
}

type fakeMessenger struct {
	mu       sync.Mutex
	payloads []game.Payload
	ch       chan game.Payload
}

func newFakeMessenger() *fakeMessenger {
	return &fakeMessenger{ch: make(chan game.Payload, 64)}
}

func (m *fakeMessenger) Deliver(_ context.Context, _ string, p game.Payload) error {
	m.mu.Lock()
	m.payloads = append(m.payloads, p)
	m.mu.Unlock()
	m.ch <- p
	return nil
}

func (m *fakeMessenger) all() []game.Payload {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]game.Payload, len(m.payloads))
	copy(out, m.payloads)
	return out
}

// waitFor blocks until a payload containing substr arrives.
func (m *fakeMessenger) waitFor(t *testing.T, substr string) game.Payload {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case p := <-m.ch:
			if strings.Contains(p.Text, substr) {
				return p
			}
		case <-deadline:
			t.Fatalf("no payload containing %q delivered; saw %d payloads", substr, len(m.all()))
		}
	}
}

// expectNone asserts no payload containing substr arrives within wait.
func (m *fakeMessenger) expectNone(t *testing.T, substr string, wait time.Duration) {
	t.Helper()
	deadline := time.After(wait)
	for {
		select {
		case p := <-m.ch:
			if strings.Contains(p.Text, substr) {
				t.Fatalf("unexpected payload delivered: %q", p.Text)
			}
		case <-deadline:
			return
		}
	}
}

func waitOutcome(t *testing.T, ch <-chan gamemodel.Outcome) gamemodel.Outcome {
	t.Helper()
	select {
	case o := <-ch:
		return o
	case <-time.After(2 * time.Second):
		t.Fatal("engine did not terminate")
		return gamemodel.OutcomeNone
	}
}
