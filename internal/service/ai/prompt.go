package ai

import (
	"log"
	"strings"
)

// themePlaceholder is the token the configured template must contain.
const themePlaceholder = "{game_theme}"

// defaultPromptTemplate mirrors the shipped game-master prompt.
const defaultPromptTemplate = "你是一位经验丰富的文字冒险游戏主持人(Game Master)。你将在一个'{game_theme}'主题下，根据玩家的行动实时生成独特且逻辑连贯的故事情节。" +
	"你的目标是创造一个引人入胜、充满未知的故事。你的回复应包含：\n" +
	"1. 对场景的生动描述。\n" +
	"2. 玩家的当前状况。\n" +
	"3. 引导玩家思考下一步行动，可以给出几个选项（例如：A. ... B. ...），或直接鼓励玩家自由探索。\n" +
	"请确保故事风格一致，并避免重复。保持回复在200-300字左右。"

// fallbackPromptTemplate is the minimal prompt used when the configured
// template is unusable.
const fallbackPromptTemplate = "你是一位经验丰富的文字冒险游戏主持人(Game Master)。你将在一个'{game_theme}'主题下，根据玩家的行动实时生成独特且逻辑连贯的故事情节。"

// BuildSystemPrompt renders the game-master system prompt for a theme. A
// template missing the {game_theme} placeholder falls back to the built-in
// default instead of failing the start.
func BuildSystemPrompt(template, theme string) string {
	if template == "" {
		template = defaultPromptTemplate
	}
	if !strings.Contains(template, themePlaceholder) {
		log.Printf("[ai] prompt template missing %s placeholder, using fallback", themePlaceholder)
		template = fallbackPromptTemplate
	}
	return strings.ReplaceAll(template, themePlaceholder, theme)
}

// PromptBuilder binds a configured template into a theme -> prompt function.
func PromptBuilder(template string) func(theme string) string {
	return func(theme string) string {
		return BuildSystemPrompt(template, theme)
	}
}
