// Package scoring runs content through the LLM for scoring, tagging,
// insights and summaries, with deterministic rule-based fallbacks so a
// digest always goes out even when the LLM is down.
package scoring

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"aidigest/app/content"
	"aidigest/app/llm"
)

// Tier tags assigned by score.
const (
	TagMustRead = "🔥 必看"
	TagDeepDive = "📖 深度"
	TagQuickly  = "⚡ 速览"
)

const defaultReason = "值得关注的内容"

const scoringSystemPrompt = "你是 AI 资讯筛选助手。请对以下内容逐条打分和标签。\n\n" +
	"打分规则（1-10）：\n" +
	"- 热度（star数、引用量）占 30%\n" +
	"- 新颖度（首次出现的新项目/概念）占 30%\n" +
	"- 实用价值（可直接使用的工具 > 纯理论研究）占 40%\n\n" +
	"标签规则：\n" +
	"- 🔥 必看：≥ 8 分，重大突破或超高热度\n" +
	"- 📖 深度：5-7 分，值得深入了解\n" +
	"- ⚡ 速览：< 5 分，了解即可\n\n" +
	"输出格式（严格 JSON）：\n" +
	`[{"index": 1, "score": 8, "tag": "🔥 必看", "reason": "一句话推荐理由"}, ...]`

// Processor wraps an LLM client. A nil client skips the LLM entirely
// and always applies fallback rules.
type Processor struct {
	client llm.Client
}

func NewProcessor(client llm.Client) *Processor {
	return &Processor{client: client}
}

// TagFor maps a score to its tier tag.
func TagFor(score int) string {
	switch {
	case score >= 8:
		return TagMustRead
	case score >= 5:
		return TagDeepDive
	default:
		return TagQuickly
	}
}

type scoreEntry struct {
	Index  int    `json:"index"`
	Score  int    `json:"score"`
	Tag    string `json:"tag"`
	Reason string `json:"reason"`
}

// ScoreAndTag scores every item 1-10 and attaches a tier tag and a
// one-line reason. It never fails: any LLM or parse error falls back
// to rule-based scoring.
func (p *Processor) ScoreAndTag(ctx context.Context, items []content.Item) []content.ScoredItem {
	if len(items) == 0 {
		return []content.ScoredItem{}
	}

	if p.client == nil {
		return p.fallback(items)
	}

	var lines []string
	for i, item := range items {
		lines = append(lines, fmt.Sprintf("%d. [%s] %s (stars: %d)\n   %s",
			i+1, item.Type, item.Title, item.Engagement, truncateRunes(item.Summary, 200)))
	}

	user := fmt.Sprintf("请对以下内容逐条打分（共 %d 条）：\n\n%s\n\n请返回 JSON 数组：",
		len(items), strings.Join(lines, "\n\n"))

	response, err := p.client.Chat(ctx, scoringSystemPrompt, user)
	if err != nil {
		slog.Warn("AI scoring call failed, using fallback", "error", err)
		return p.fallback(items)
	}

	var entries []scoreEntry
	if err := json.Unmarshal([]byte(stripCodeFence(response)), &entries); err != nil {
		slog.Warn("Failed to parse AI scoring response, using fallback", "error", err)
		return p.fallback(items)
	}

	if len(entries) != len(items) {
		slog.Warn("AI scoring length mismatch, using fallback",
			"expected", len(items), "got", len(entries))
		return p.fallback(items)
	}

	scored := make([]content.ScoredItem, 0, len(items))
	for i, item := range items {
		entry := entries[i]
		if entry.Score == 0 {
			entry.Score = 5
		}
		if entry.Tag == "" {
			entry.Tag = TagDeepDive
		}
		if entry.Reason == "" {
			entry.Reason = defaultReason
		}
		scored = append(scored, content.ScoredItem{
			Item:   item,
			Score:  entry.Score,
			Tag:    entry.Tag,
			Reason: entry.Reason,
		})
	}

	return scored
}

// fallback applies rule-based scoring: base 5, +3 for GitHub repos
// above 500 stars (+1 above 100), +1 for arXiv papers, clamped to
// [1, 10].
func (p *Processor) fallback(items []content.Item) []content.ScoredItem {
	scored := make([]content.ScoredItem, 0, len(items))

	for _, item := range items {
		score := 5

		if item.Type == content.SourceGitHub {
			if item.Engagement > 500 {
				score += 3
			} else if item.Engagement > 100 {
				score += 1
			}
		}

		if item.Type == content.SourceArxiv {
			score += 1
		}

		if score > 10 {
			score = 10
		}
		if score < 1 {
			score = 1
		}

		reason := item.Summary
		if runes := []rune(reason); len(runes) > 40 {
			reason = string(runes[:40]) + "..."
		}
		if reason == "" {
			reason = defaultReason
		}

		scored = append(scored, content.ScoredItem{
			Item:   item,
			Score:  score,
			Tag:    TagFor(score),
			Reason: reason,
		})
	}

	slog.Warn("Fallback scoring applied", "count", len(items))
	return scored
}

// stripCodeFence removes a surrounding markdown code fence, with or
// without a json language hint.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)

	if idx := strings.Index(s, "```json"); idx != -1 {
		inner := s[idx+len("```json"):]
		if end := strings.Index(inner, "```"); end != -1 {
			inner = inner[:end]
		}
		return strings.TrimSpace(inner)
	}

	if idx := strings.Index(s, "```"); idx != -1 {
		inner := s[idx+3:]
		if end := strings.Index(inner, "```"); end != -1 {
			inner = inner[:end]
		}
		return strings.TrimSpace(inner)
	}

	return s
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
