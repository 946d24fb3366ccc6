package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// Config 聚合整个服务的配置项。
type Config struct {
	Server ServerConfig
	AI     AIConfig
	Game   GameConfig
	Render RenderConfig
}

// Load 从环境变量加载配置。
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	game, err := loadGameConfig()
	if err != nil {
		return nil, err
	}

	render, err := loadRenderConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, AI: ai, Game: game, Render: render}, nil
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr string
}

// loadServerConfig 解析服务器监听地址。
func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":8080" 或 "127.0.0.1:8080"。
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// AIConfig 描述大模型相关配置。
type AIConfig struct {
	APIKey      string
	AccessKey   string
	SecretKey   string
	Model       string
	BaseURL     string
	Region      string
	Temperature *float64
	TopP        *float64
	MaxTokens   *int
}

// GameConfig carries the session core tunables: default theme, per-turn
// timeout, system prompt template and the admin allowlist.
type GameConfig struct {
	DefaultTheme   string
	TurnTimeout    time.Duration
	PromptTemplate string
	AdminIDs       []string
}

// RenderConfig 描述可选的文本转图片渲染服务。
type RenderConfig struct {
	URL     string
	Timeout time.Duration
}

// Enabled 表示是否提供了必需的密钥。
func (c AIConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// Enabled 表示是否配置了渲染服务地址。
func (c RenderConfig) Enabled() bool {
	return c.URL != ""
}

// IsAdmin reports whether userID belongs to the configured admin allowlist.
func (c GameConfig) IsAdmin(userID string) bool {
	for _, id := range c.AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// NewChatModel 使用配置创建一个模型实例。
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("Ark 凭证或模型配置缺失，至少提供 ARK_API_KEY + Model 或 AK/SK 组合")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	var topP *float32
	if c.TopP != nil {
		val := float32(*c.TopP)
		topP = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   c.MaxTokens,
		Temperature: temperature,
		TopP:        topP,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadAIConfig() (AIConfig, error) {
	temperature, err := parseOptionalFloatEnv("ARK_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}

	topP, err := parseOptionalFloatEnv("ARK_TOP_P")
	if err != nil {
		return AIConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("ARK_MAX_TOKENS")
	if err != nil {
		return AIConfig{}, err
	}

	return AIConfig{
		APIKey:      strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		AccessKey:   strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		SecretKey:   strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		Model:       strings.TrimSpace(os.Getenv("Model")),
		BaseURL:     getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		Region:      getEnvOrDefault("ARK_REGION", "cn-beijing"),
		Temperature: temperature,
		TopP:        topP,
		MaxTokens:   maxTokens,
	}, nil
}

func loadGameConfig() (GameConfig, error) {
	timeoutSeconds := 300
	if override, err := parseOptionalIntEnv("ADVENTURE_SESSION_TIMEOUT"); err != nil {
		return GameConfig{}, err
	} else if override != nil {
		if *override < 1 {
			return GameConfig{}, fmt.Errorf("invalid ADVENTURE_SESSION_TIMEOUT value %d: must be positive", *override)
		}
		timeoutSeconds = *override
	}

	var adminIDs []string
	for _, id := range strings.Split(os.Getenv("ADVENTURE_ADMIN_IDS"), ",") {
		if id = strings.TrimSpace(id); id != "" {
			adminIDs = append(adminIDs, id)
		}
	}

	return GameConfig{
		DefaultTheme:   getEnvOrDefault("ADVENTURE_DEFAULT_THEME", "奇幻世界"),
		TurnTimeout:    time.Duration(timeoutSeconds) * time.Second,
		PromptTemplate: strings.TrimSpace(os.Getenv("ADVENTURE_PROMPT_TEMPLATE")),
		AdminIDs:       adminIDs,
	}, nil
}

func loadRenderConfig() (RenderConfig, error) {
	timeoutSeconds := 10
	if override, err := parseOptionalIntEnv("RENDER_TIMEOUT"); err != nil {
		return RenderConfig{}, err
	} else if override != nil && *override > 0 {
		timeoutSeconds = *override
	}

	return RenderConfig{
		URL:     strings.TrimSpace(os.Getenv("RENDER_URL")),
		Timeout: time.Duration(timeoutSeconds) * time.Second,
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
