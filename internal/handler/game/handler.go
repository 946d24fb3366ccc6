package game

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/oyxning/textventure/backend/internal/config"
	gamemodel "github.com/oyxning/textventure/backend/internal/model/game"
	gameservice "github.com/oyxning/textventure/backend/internal/service/game"
	"github.com/oyxning/textventure/backend/pkg/utils"
)

// Handler 冒险指令的HTTP处理器
type Handler struct {
	mgr    *gameservice.Manager
	themes gamemodel.ThemeStore
	cfg    config.GameConfig
}

// New 创建冒险处理器
func New(mgr *gameservice.Manager, themes gamemodel.ThemeStore, cfg config.GameConfig) *Handler {
	return &Handler{mgr: mgr, themes: themes, cfg: cfg}
}

// RegisterRoutes 注册冒险相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/adventure/start", h.handleStart)
	r.Post("/adventure/input", h.handleInput)
	r.Post("/adventure/stop", h.handleStop)
	r.Post("/adventure/stop/force", h.handleForceStop)
	r.Post("/adventure/stopall", h.handleStopAll)
	r.Get("/adventure/{userID}/status", h.handleStatus)
	r.Get("/adventure/help", h.handleHelp)
	r.Get("/themes", h.handleThemes)
}

type userRequest struct {
	UserID string `json:"userId"`
	Theme  string `json:"theme,omitempty"`
	Text   string `json:"text,omitempty"`
}

func decodeUserRequest(w http.ResponseWriter, r *http.Request) (userRequest, bool) {
	var payload userRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return userRequest{}, false
	}
	if payload.UserID == "" {
		utils.RespondError(w, http.StatusBadRequest, "userId is required")
		return userRequest{}, false
	}
	return payload, true
}

// handleStart 开始一场新冒险
func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	payload, ok := decodeUserRequest(w, r)
	if !ok {
		return
	}

	sess, err := h.mgr.Start(r.Context(), payload.UserID, payload.Theme)
	switch {
	case errors.Is(err, gameservice.ErrSessionExists):
		utils.RespondJSON(w, http.StatusConflict, map[string]string{
			"error": "您已经有一个正在进行的冒险了！\n- 如需继续，请直接输入您的行动。\n- 如需结束，请发送 结束冒险 或 强制结束冒险。",
		})
		return
	case errors.Is(err, gameservice.ErrNoGenerator):
		utils.RespondError(w, http.StatusServiceUnavailable, "抱歉，当前没有可用的LLM服务。请联系管理员。")
		return
	case err != nil:
		log.Printf("[handler] start failed user=%s: %v", payload.UserID, err)
		utils.RespondError(w, http.StatusInternalServerError, "failed to start adventure")
		return
	}

	utils.RespondJSON(w, http.StatusCreated, map[string]string{
		"sessionId": sess.ID,
		"theme":     sess.Theme,
		"status":    string(sess.Status()),
	})
}

// handleInput 提交一次玩家行动
func (h *Handler) handleInput(w http.ResponseWriter, r *http.Request) {
	payload, ok := decodeUserRequest(w, r)
	if !ok {
		return
	}

	switch err := h.mgr.Submit(payload.UserID, payload.Text); {
	case errors.Is(err, gameservice.ErrNoSession):
		utils.RespondError(w, http.StatusNotFound, "您当前没有正在进行的冒险。")
	case errors.Is(err, gameservice.ErrBusy):
		utils.RespondError(w, http.StatusTooManyRequests, "AI正在构思下一幕，请稍后再试。")
	case err != nil:
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
	default:
		utils.RespondJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
	}
}

// handleStop 优雅结束当前冒险
func (h *Handler) handleStop(w http.ResponseWriter, r *http.Request) {
	payload, ok := decodeUserRequest(w, r)
	if !ok {
		return
	}

	if !h.mgr.Stop(payload.UserID) {
		utils.RespondJSON(w, http.StatusOK, map[string]any{
			"stopped": false,
			"message": "您当前没有正在进行的冒险。",
		})
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"stopped": true,
		"message": "✅ **冒险结束指令已发出**。\n游戏将在当前回合结束后终止。如果游戏卡住，请使用 强制结束冒险。",
	})
}

// handleForceStop 立即强制结束当前冒险
func (h *Handler) handleForceStop(w http.ResponseWriter, r *http.Request) {
	payload, ok := decodeUserRequest(w, r)
	if !ok {
		return
	}

	if !h.mgr.ForceStop(payload.UserID) {
		utils.RespondJSON(w, http.StatusOK, map[string]any{
			"stopped": false,
			"message": "您当前没有正在进行的冒险。",
		})
		return
	}

	log.Printf("[handler] adventure force-stopped user=%s", payload.UserID)
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"stopped": true,
		"message": "💥 **冒险已强制终止！**\n您可以随时通过 开始冒险 开启新的旅程。",
	})
}

// handleStopAll 管理员命令：强制结束所有冒险
func (h *Handler) handleStopAll(w http.ResponseWriter, r *http.Request) {
	payload, ok := decodeUserRequest(w, r)
	if !ok {
		return
	}

	if !h.cfg.IsAdmin(payload.UserID) {
		utils.RespondError(w, http.StatusForbidden, "❌ 权限不足，只有管理员可操作此命令。")
		return
	}

	count := h.mgr.StopAll()
	if count == 0 {
		utils.RespondJSON(w, http.StatusOK, map[string]any{
			"stopped": 0,
			"message": "当前没有活跃的文字冒险游戏。",
		})
		return
	}

	log.Printf("[handler] admin %s force-stopped all %d adventures", payload.UserID, count)
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"stopped": count,
		"message": fmt.Sprintf("✅ **管理员操作完成**。\n已强制终止所有 %d 个活跃的文字冒险游戏。", count),
	})
}

// handleStatus 查询会话状态
func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	sess, ok := h.mgr.Session(userID)
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "您当前没有正在进行的冒险。")
		return
	}

	var deadline string
	if d, ok := h.mgr.TurnDeadline(userID); ok && !d.IsZero() {
		deadline = d.UTC().Format(time.RFC3339)
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"sessionId": sess.ID,
		"theme":     sess.Theme,
		"status":    string(sess.Status()),
		"turns":     sess.Turns(),
		"deadline":  deadline,
	})
}

// handleHelp 返回帮助手册
func (h *Handler) handleHelp(w http.ResponseWriter, _ *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]string{"help": gameservice.HelpText()})
}

// handleThemes 返回预设主题列表
func (h *Handler) handleThemes(w http.ResponseWriter, _ *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.themes.List())
}
