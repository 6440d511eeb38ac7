package scoring

import (
	"context"
	"log/slog"
	"strings"

	"aidigest/app/content"
)

const (
	insightEmptyContext  = "今日 AI 领域稳步发展。"
	insightEmptyResponse = "今日 AI 领域有新动态值得关注。"
	insightError         = "今日 AI 领域持续活跃，值得关注。"
)

const insightSystemPrompt = "你是 AI 晨报编辑。请生成今日洞察，要求：\n" +
	"1. 第一句：今天最重要的一件事（加粗处理）\n" +
	"2. 第二句：为什么重要 / 对开发者意味着什么\n" +
	"3. 第三句（可选）：另一个值得关注的动向\n\n" +
	"规则：\n" +
	"- 总共不超过 80 字\n" +
	"- 不要用\"今日AI领域\"这样的套话开头\n" +
	"- 直接说事，像发给朋友的消息一样\n" +
	"- 用中文"

// DailyInsight produces a short editorial blurb from the formatted top
// 3 context. It always returns usable text: placeholders cover the
// empty-context, empty-response and error cases.
func (p *Processor) DailyInsight(ctx context.Context, top3Context string) string {
	if top3Context == "" {
		return insightEmptyContext
	}

	if p.client == nil {
		return insightError
	}

	user := "以下是今日 Top 3 内容（已按重要性排序）：\n" + top3Context + "\n\n请生成洞察："

	insight, err := p.client.Chat(ctx, insightSystemPrompt, user)
	if err != nil {
		slog.Warn("Failed to generate daily insight", "error", err)
		return insightError
	}

	insight = strings.TrimSpace(insight)
	if insight == "" {
		return insightEmptyResponse
	}

	return insight
}

// Top3Context formats the global top 3 for the insight prompt.
func Top3Context(top3 []content.ScoredItem) string {
	var lines []string
	for _, item := range top3 {
		lines = append(lines, "- ["+item.Tag+"] "+item.Title+": "+item.Reason)
	}
	return strings.Join(lines, "\n")
}
