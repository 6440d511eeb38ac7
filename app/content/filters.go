package content

import (
	"log/slog"
	"strings"
)

// DefaultKeywords are the relevance keywords applied to blog, Twitter
// and YouTube items before scoring.
var DefaultKeywords = []string{
	"AI", "artificial intelligence", "machine learning", "deep learning",
	"LLM", "large language model", "GPT", "Claude", "transformer",
	"neural network", "computer vision", "NLP", "multimodal",
	"reinforcement learning", "diffusion", "stable diffusion",
	"fine-tuning", "training", "model", "paper", "research",
}

// DefaultEngagementThresholds are the per-type minimum engagement
// scores. Types not listed pass unconditionally.
var DefaultEngagementThresholds = map[SourceType]int{
	SourceTwitter: 100,
	SourceYouTube: 10000,
}

// FilterByKeywords keeps items whose title, content or summary contains
// at least one of the keywords (case-insensitive). An empty keyword
// list keeps everything.
func FilterByKeywords(items []Item, keywords []string) []Item {
	if len(keywords) == 0 {
		return items
	}

	filtered := make([]Item, 0, len(items))
	for _, item := range items {
		text := strings.ToLower(item.Title + " " + item.Content + " " + item.Summary)
		for _, kw := range keywords {
			if strings.Contains(text, strings.ToLower(kw)) {
				filtered = append(filtered, item)
				break
			}
		}
	}

	slog.Info("Keyword filter applied", "matched", len(filtered), "total", len(items))
	return filtered
}

// FilterByEngagement keeps items whose engagement score meets the
// threshold configured for their source type.
func FilterByEngagement(items []Item, thresholds map[SourceType]int) []Item {
	if thresholds == nil {
		thresholds = DefaultEngagementThresholds
	}

	filtered := make([]Item, 0, len(items))
	for _, item := range items {
		if item.Engagement >= thresholds[item.Type] {
			filtered = append(filtered, item)
		}
	}

	slog.Info("Engagement filter applied", "passed", len(filtered), "total", len(items))
	return filtered
}
