package content

import (
	"fmt"
	"time"
)

// SourceType identifies where a content item came from. The three
// HuggingFace variants are kept distinct so that models, datasets and
// spaces get their own sections in the digest.
type SourceType string

const (
	SourceArxiv     SourceType = "arxiv"
	SourceGitHub    SourceType = "github"
	SourceHFModel   SourceType = "hf_model"
	SourceHFDataset SourceType = "hf_dataset"
	SourceHFSpace   SourceType = "hf_space"
	SourceBlog      SourceType = "blog"
	SourceTwitter   SourceType = "twitter"
	SourceYouTube   SourceType = "youtube"
)

// Category collapses the HuggingFace variants into a single bucket for
// per-source counting.
func (s SourceType) Category() string {
	switch s {
	case SourceHFModel, SourceHFDataset, SourceHFSpace:
		return "huggingface"
	default:
		return string(s)
	}
}

// Item is the unified shape every source normalizes into.
type Item struct {
	ID          string
	Title       string
	Source      string
	Type        SourceType
	URL         string
	PublishedOn time.Time
	Author      string
	Summary     string
	Content     string
	Engagement  int
	Metadata    map[string]string
}

// DisplayTitle returns a title suitable for rendering. Tweets have no
// real title, so the (possibly truncated) body is used instead.
func (c Item) DisplayTitle() string {
	if c.Type == SourceTwitter {
		body := c.Content
		if body == "" {
			body = c.Summary
		}
		runes := []rune(body)
		if len(runes) > 100 {
			return string(runes[:97]) + "..."
		}
		return body
	}
	return c.Title
}

// EngagementDisplay formats the engagement count for rendering
// (1234 -> "1.2K", 2500000 -> "2.5M"). Zero renders as empty.
func (c Item) EngagementDisplay() string {
	switch {
	case c.Engagement == 0:
		return ""
	case c.Engagement >= 1000000:
		return fmt.Sprintf("%.1fM", float64(c.Engagement)/1000000)
	case c.Engagement >= 1000:
		return fmt.Sprintf("%.1fK", float64(c.Engagement)/1000)
	default:
		return fmt.Sprintf("%d", c.Engagement)
	}
}

// ScoredItem is an Item after scoring. Score is 1-10, Tag is one of the
// three tier tags, Reason is a one-line recommendation.
type ScoredItem struct {
	Item
	Score  int
	Tag    string
	Reason string
}

// Paper is an arXiv paper candidate for the bot pipeline.
type Paper struct {
	ArxivID     string
	Title       string
	Abstract    string
	URL         string
	Score       int
	PublishedOn time.Time
	Categories  []string
	Summary     string
}

// Digest is the fully assembled daily digest, ready for rendering by
// any of the publishers.
type Digest struct {
	Date       string
	Insight    string
	GlobalTop3 []ScoredItem

	GitHubTop3     []ScoredItem
	HFModelsTop3   []ScoredItem
	HFDatasetsTop3 []ScoredItem
	HFSpacesTop3   []ScoredItem
	ArxivTop3      []ScoredItem
	BlogTop3       []ScoredItem
	TwitterTop3    []ScoredItem
	YouTubeTop3    []ScoredItem

	// All scored items sorted by score, best first.
	All []ScoredItem
}

// CountByCategory returns the number of items per source category in
// the full scored set, with the HuggingFace variants merged.
func (d Digest) CountByCategory() map[string]int {
	counts := make(map[string]int)
	for _, item := range d.All {
		counts[item.Type.Category()]++
	}
	return counts
}
