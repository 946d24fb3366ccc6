package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/oyxning/textventure/backend/internal/config"
	eventsHandler "github.com/oyxning/textventure/backend/internal/handler/events"
	gameHandler "github.com/oyxning/textventure/backend/internal/handler/game"
	wsHandler "github.com/oyxning/textventure/backend/internal/handler/ws"
	middlewarePkg "github.com/oyxning/textventure/backend/internal/middleware"
	gamemodel "github.com/oyxning/textventure/backend/internal/model/game"
	"github.com/oyxning/textventure/backend/internal/push"
	gameservice "github.com/oyxning/textventure/backend/internal/service/game"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(mgr *gameservice.Manager, hub *push.Hub, themes gamemodel.ThemeStore, gameCfg config.GameConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	adventure := gameHandler.New(mgr, themes, gameCfg)
	events := eventsHandler.New(hub)
	sockets := wsHandler.New(hub, mgr)

	r.Route("/api", func(api chi.Router) {
		adventure.RegisterRoutes(api)
		events.RegisterRoutes(api)
		sockets.RegisterRoutes(api)
	})

	return r
}
