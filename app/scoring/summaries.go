package scoring

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"aidigest/app/content"
)

const paperSystemPrompt = "你是学术论文助手。用 1-2 句话概括论文核心贡献。\n" +
	"规则：\n" +
	"- 控制在 60 字以内\n" +
	"- 第一句说\"做了什么\"，第二句说\"效果如何\"\n" +
	"- 不要用\"本文\"\"该研究\"等学术套话"

const tweetSystemPrompt = "You are a research communicator. Summarize the paper abstract " +
	"as a single engaging tweet under 230 characters. State the key result plainly, " +
	"no hashtags, no emoji spam, no academic boilerplate."

const botSummarySystemPrompt = "You run an automated arXiv digest account. Write a short " +
	"opening tweet (under 200 characters) announcing today's thread. Mention how many new " +
	"papers were scanned and how many made the cut. End with a thread pointer like 👇"

// maxSummarizedPapers caps per-paper LLM calls to keep token costs down.
const maxSummarizedPapers = 3

// SummarizePaper produces a 1-2 sentence Chinese summary. Best effort:
// returns an empty string when the LLM is unavailable or fails.
func (p *Processor) SummarizePaper(ctx context.Context, title, abstract string) string {
	if p.client == nil {
		return ""
	}

	user := fmt.Sprintf("标题: %s\n\n摘要: %s\n\n一句话概括:", title, truncateRunes(abstract, 800))

	summary, err := p.client.Chat(ctx, paperSystemPrompt, user)
	if err != nil {
		slog.Warn("Failed to summarize paper", "title", title, "error", err)
		return ""
	}

	return strings.TrimSpace(summary)
}

// BatchSummarize summarizes the first maxSummarizedPapers items and
// stores each summary under Metadata["summary"]. Remaining items pass
// through unchanged. Input items are not mutated.
func (p *Processor) BatchSummarize(ctx context.Context, items []content.ScoredItem) []content.ScoredItem {
	results := make([]content.ScoredItem, 0, len(items))

	for i, item := range items {
		if i >= maxSummarizedPapers {
			results = append(results, item)
			continue
		}

		slog.Info("Summarizing paper", "position", i+1, "title", item.Title)
		summary := p.SummarizePaper(ctx, item.Title, item.Summary)

		copied := item
		copied.Metadata = cloneMetadata(item.Metadata)
		copied.Metadata["summary"] = summary
		results = append(results, copied)
	}

	return results
}

// SummarizeAbstract produces the tweet text for a single paper. Unlike
// the digest summaries this is not best effort: the bot skips papers
// it could not summarize.
func (p *Processor) SummarizeAbstract(ctx context.Context, abstract string) (string, error) {
	if p.client == nil {
		return "", fmt.Errorf("no LLM client configured")
	}

	tweet, err := p.client.Chat(ctx, tweetSystemPrompt, truncateRunes(abstract, 800))
	if err != nil {
		return "", fmt.Errorf("failed to summarize abstract: %w", err)
	}

	tweet = strings.TrimSpace(tweet)
	if tweet == "" {
		return "", fmt.Errorf("empty tweet summary")
	}

	return tweet, nil
}

// BotSummary produces the opening tweet of a thread.
func (p *Processor) BotSummary(ctx context.Context, retrieved, summarized int) (string, error) {
	if p.client == nil {
		return "", fmt.Errorf("no LLM client configured")
	}

	user := fmt.Sprintf("Papers scanned: %d\nPapers in today's thread: %d", retrieved, summarized)

	tweet, err := p.client.Chat(ctx, botSummarySystemPrompt, user)
	if err != nil {
		return "", fmt.Errorf("failed to generate summary tweet: %w", err)
	}

	tweet = strings.TrimSpace(tweet)
	if tweet == "" {
		return "", fmt.Errorf("empty summary tweet")
	}

	return tweet, nil
}

func cloneMetadata(m map[string]string) map[string]string {
	cloned := make(map[string]string, len(m)+1)
	for k, v := range m {
		cloned[k] = v
	}
	return cloned
}
