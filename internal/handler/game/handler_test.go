package game

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/oyxning/textventure/backend/internal/config"
	gamemodel "github.com/oyxning/textventure/backend/internal/model/game"
	gameservice "github.com/oyxning/textventure/backend/internal/service/game"
)

type stubGenerator struct{}

func (stubGenerator) Generate(context.Context, string, []gamemodel.Entry) (string, error) {
	return "生成的场景", nil
}

type discardMessenger struct{}

func (discardMessenger) Deliver(context.Context, string, gameservice.Payload) error { return nil }

func setupRouter(gen gameservice.Generator) (*chi.Mux, *gameservice.Registry) {
	reg := gameservice.NewRegistry()
	themes := gamemodel.NewMemoryThemeStore(gamemodel.SeedThemes())
	mgr := gameservice.NewManager(reg, gen, discardMessenger{},
		func(theme string) string { return "prompt " + theme }, themes,
		gameservice.Options{DefaultTheme: "奇幻世界", TurnTimeout: time.Second})

	handler := New(mgr, themes, config.GameConfig{AdminIDs: []string{"admin"}})

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r, reg
}

func postJSON(t *testing.T, r http.Handler, path string, body map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestStartCreatesSession(t *testing.T) {
	r, reg := setupRouter(stubGenerator{})

	resp := postJSON(t, r, "/adventure/start", map[string]string{"userId": "u1", "theme": "cyberpunk"})
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	if reg.Len() != 1 {
		t.Fatalf("registry entries = %d, want 1", reg.Len())
	}

	var body map[string]string
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if body["theme"] != "赛博朋克" {
		t.Fatalf("theme = %q, want resolved preset", body["theme"])
	}
}

func TestStartDuplicateConflict(t *testing.T) {
	r, _ := setupRouter(stubGenerator{})

	postJSON(t, r, "/adventure/start", map[string]string{"userId": "u1"})
	resp := postJSON(t, r, "/adventure/start", map[string]string{"userId": "u1"})
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.Code)
	}
}

func TestStartMissingUserID(t *testing.T) {
	r, _ := setupRouter(stubGenerator{})

	resp := postJSON(t, r, "/adventure/start", map[string]string{})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestStartWithoutGeneratorUnavailable(t *testing.T) {
	r, _ := setupRouter(nil)

	resp := postJSON(t, r, "/adventure/start", map[string]string{"userId": "u1"})
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.Code)
	}
}

func TestInputWithoutSession(t *testing.T) {
	r, _ := setupRouter(stubGenerator{})

	resp := postJSON(t, r, "/adventure/input", map[string]string{"userId": "nobody", "text": "hi"})
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestStopWithoutSession(t *testing.T) {
	r, _ := setupRouter(stubGenerator{})

	resp := postJSON(t, r, "/adventure/stop", map[string]string{"userId": "nobody"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var body map[string]any
	json.Unmarshal(resp.Body.Bytes(), &body)
	if stopped, _ := body["stopped"].(bool); stopped {
		t.Fatal("stopped must be false without a session")
	}
}

func TestForceStopRemovesEntry(t *testing.T) {
	r, reg := setupRouter(stubGenerator{})

	postJSON(t, r, "/adventure/start", map[string]string{"userId": "u1"})
	resp := postJSON(t, r, "/adventure/stop/force", map[string]string{"userId": "u1"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if reg.Len() != 0 {
		t.Fatalf("registry entries = %d after force stop, want 0", reg.Len())
	}
}

func TestStopAllRequiresAdmin(t *testing.T) {
	r, reg := setupRouter(stubGenerator{})

	postJSON(t, r, "/adventure/start", map[string]string{"userId": "u1"})
	resp := postJSON(t, r, "/adventure/stopall", map[string]string{"userId": "u1"})
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.Code)
	}
	if reg.Len() != 1 {
		t.Fatal("non-admin stopall must stop nothing")
	}
}

func TestStopAllAsAdmin(t *testing.T) {
	r, reg := setupRouter(stubGenerator{})

	postJSON(t, r, "/adventure/start", map[string]string{"userId": "u1"})
	resp := postJSON(t, r, "/adventure/stopall", map[string]string{"userId": "admin"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if reg.Len() != 0 {
		t.Fatalf("registry entries = %d after admin stopall, want 0", reg.Len())
	}
}

func TestStatusEndpoints(t *testing.T) {
	r, _ := setupRouter(stubGenerator{})

	req := httptest.NewRequest(http.MethodGet, "/adventure/nobody/status", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}

	postJSON(t, r, "/adventure/start", map[string]string{"userId": "u1"})
	req = httptest.NewRequest(http.MethodGet, "/adventure/u1/status", nil)
	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
}

func TestHelpAndThemes(t *testing.T) {
	r, _ := setupRouter(stubGenerator{})

	req := httptest.NewRequest(http.MethodGet, "/adventure/help", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("help: expected 200, got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/themes", nil)
	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("themes: expected 200, got %d", resp.Code)
	}
	var themes []gamemodel.Theme
	if err := json.Unmarshal(resp.Body.Bytes(), &themes); err != nil {
		t.Fatalf("bad themes body: %v", err)
	}
	if len(themes) == 0 {
		t.Fatal("expected seeded themes")
	}
}
