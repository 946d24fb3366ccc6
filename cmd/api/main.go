package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/oyxning/textventure/backend/internal/config"
	"github.com/oyxning/textventure/backend/internal/handler"
	gamemodel "github.com/oyxning/textventure/backend/internal/model/game"
	"github.com/oyxning/textventure/backend/internal/push"
	"github.com/oyxning/textventure/backend/internal/render"
	"github.com/oyxning/textventure/backend/internal/service/ai"
	gameservice "github.com/oyxning/textventure/backend/internal/service/game"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	log.Printf("--- 文字冒险配置 ---")
	log.Printf("默认主题: %s", cfg.Game.DefaultTheme)
	log.Printf("会话超时: %s", cfg.Game.TurnTimeout)
	log.Printf("--------------------")

	themeStore := gamemodel.NewMemoryThemeStore(gamemodel.SeedThemes())

	// Initialize the generator when Ark credentials are present.
	var generator gameservice.Generator
	if cfg.AI.Enabled() {
		aiService, err := ai.NewService(ctx, cfg.AI)
		if err != nil {
			log.Printf("warning: failed to initialize AI service: %v", err)
			log.Println("continuing without AI functionality - 请检查 Ark 模型相关环境变量")
		} else {
			generator = aiService
			log.Println("AI service initialized successfully")
		}
	} else {
		log.Println("Ark 凭证未配置，跳过 AI 功能初始化")
	}

	// Optional text-to-image rendering; delivery falls back to text on failure.
	var renderer push.Renderer
	if cfg.Render.Enabled() {
		renderer = render.NewClient(cfg.Render.URL, cfg.Render.Timeout)
		log.Printf("render service enabled at %s", cfg.Render.URL)
	} else {
		log.Println("渲染服务未配置，仅发送文本")
	}

	hub := push.NewHub(renderer)
	registry := gameservice.NewRegistry()
	mgr := gameservice.NewManager(registry, generator, hub,
		ai.PromptBuilder(cfg.Game.PromptTemplate), themeStore,
		gameservice.Options{
			DefaultTheme: cfg.Game.DefaultTheme,
			TurnTimeout:  cfg.Game.TurnTimeout,
		})

	router := handler.NewRouter(mgr, hub, themeStore, cfg.Game)

	startServer(ctx, cfg.Server, router)

	// Server is down; end every live adventure before exit.
	if n := mgr.Shutdown(); n > 0 {
		log.Printf("terminated %d active adventures on shutdown", n)
	}
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("Textventure backend listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
