package game

import "fmt"

// User-facing copy. Kept close to the original plugin text so existing
// players see familiar wording.

const (
	msgBuildingWorld = "正在构筑您的冒险世界，请稍候..."
	msgThinking      = "AI正在构思下一幕...请稍等片刻..."

	actionHint = "\n\n**[提示: 请直接输入你的行动]**"

	msgCommandBlocked = "游戏正在进行中。如需结束，请使用 结束冒险 或 强制结束冒险。"

	msgStartFailed = "抱歉，无法开始冒险，LLM服务出现问题。"
	msgTurnFailed  = "抱歉，AI的思绪似乎被卡住了，游戏暂时无法继续。请尝试 强制结束冒险 并重新开始。"

	msgTimeout = "⏱️ **冒险超时！**\n你的角色在原地陷入了沉睡，游戏已自动结束。使用 开始冒险 来唤醒他/她，或开始新的冒险。"

	openingAction = "故事开始了，我的第一个场景是什么？"
)

func msgIdle(userID string) string {
	return fmt.Sprintf("你静静地站着，什么也没做。要继续冒险，请输入你的行动。\n(玩家ID: %s)", userID)
}

func msgDisclaimer(timeoutSeconds int) string {
	return fmt.Sprintf(
		"📜 **动态文字冒险 - 游戏须知** 📜\n\n"+
			"**免责声明**：本游戏由AI驱动，故事内容由大语言模型实时生成。\n\n"+
			"**💡 游戏玩法**：\n"+
			"1. AI游戏主持人会描述场景，你可以自由输入行动。\n"+
			"2. 每回合有 **%d秒** 行动时间，超时游戏将自动结束。\n"+
			"3. 随时发送 结束冒险 或 强制结束冒险 来退出游戏。\n\n"+
			"现在，冒险即将开始... 祝你旅途愉快！",
		timeoutSeconds,
	)
}

// HelpText returns the static command manual. No state interaction.
func HelpText() string {
	return "📜 **动态文字冒险 - 帮助手册** 📜\n\n" +
		"欢迎来到由AI驱动的文字冒险世界！\n\n" +
		"**基本指令**:\n" +
		"  - 开始冒险 [可选主题]：开始一场新冒险。若不指定主题，则使用默认主题。\n" +
		"  - 结束冒险：**优雅结束**当前游戏。会在当前AI回合结束后停止。\n" +
		"  - 强制结束冒险：**立即结束**当前游戏。当游戏卡住时使用此指令。\n\n" +
		"**管理员指令**:\n" +
		"  - 结束全部冒险：强制结束所有正在进行的游戏。\n\n" +
		"**💡 游戏玩法**:\n" +
		"  - 游戏开始后，AI游戏主持人会为您生成故事场景。\n" +
		"  - 您只需直接输入您的行动（例如「调查那个奇怪的符号」），AI便会根据您的输入推进故事发展。"
}
