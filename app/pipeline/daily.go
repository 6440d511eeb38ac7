package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"aidigest/app/content"
	"aidigest/app/digest"
	"aidigest/app/email"
	"aidigest/app/scoring"
	"aidigest/app/sources"
)

type GitHubSource interface {
	FetchTrending(ctx context.Context, limit int) ([]content.Item, error)
}

type HuggingFaceSource interface {
	FetchModels(ctx context.Context, limit int) ([]content.Item, error)
	FetchDatasets(ctx context.Context, limit int) ([]content.Item, error)
	FetchSpaces(ctx context.Context, limit int) ([]content.Item, error)
}

type ArxivSource interface {
	FetchPapers(ctx context.Context, windowStart, windowStop int) ([]content.Paper, error)
	Items(papers []content.Paper) []content.Item
}

type BlogSource interface {
	FetchRecent(ctx context.Context, days, limitPerSource int) []content.Item
}

type TweetSource interface {
	FetchRecent(ctx context.Context, accounts []string, days, minEngagement, maxPerUser int) ([]content.Item, error)
}

type VideoSource interface {
	FetchRecent(ctx context.Context, channels []string, days, maxPerChannel int, keywords []string) ([]content.Item, error)
}

type Scorer interface {
	ScoreAndTag(ctx context.Context, items []content.Item) []content.ScoredItem
	BatchSummarize(ctx context.Context, items []content.ScoredItem) []content.ScoredItem
	DailyInsight(ctx context.Context, top3Context string) string
}

type NotionPublisher interface {
	SendDigest(ctx context.Context, d content.Digest) (string, error)
}

var errNoSender = errors.New("no email transport configured")

// DailyDeps wires the digest flow. Optional channels (tweets, videos,
// email, notion) may be nil.
type DailyDeps struct {
	GitHub      GitHubSource
	HuggingFace HuggingFaceSource
	Arxiv       ArxivSource
	Blogs       BlogSource
	Tweets      TweetSource
	Videos      VideoSource

	Lists     sources.Lists
	Processor Scorer
	Assembler *digest.Assembler
	Renderer  *email.Renderer
	Email     email.Sender
	Notion    NotionPublisher

	ToEmail   string
	FromEmail string
}

// Options are the per-run fetch limits of the digest.
type Options struct {
	GitHubLimit     int
	HFModelsLimit   int
	HFDatasetsLimit int
	HFSpacesLimit   int
	ArxivLimit      int
	BlogDays        int
	BlogLimit       int

	Dry         bool
	PreviewPath string
}

// DailyDigest gathers content from every enabled source, scores it,
// and publishes the assembled digest.
type DailyDigest struct {
	deps DailyDeps
}

func NewDailyDigest(deps DailyDeps) *DailyDigest {
	return &DailyDigest{deps: deps}
}

func (d *DailyDigest) Run(ctx context.Context, date time.Time, opts Options) error {
	slog.Info("Daily digest starting", "date", date.Format("2006-01-02"), "dry", opts.Dry)

	items := d.gather(ctx, opts)
	if len(items) == 0 {
		slog.Warn("No content gathered, skipping digest")
		return nil
	}
	slog.Info("Content gathered", "count", len(items))

	scored := d.deps.Processor.ScoreAndTag(ctx, items)

	// A first assembly establishes the top 3 lists for summaries and
	// the insight prompt.
	dateStr := date.Format("2006-01-02")
	preliminary := d.deps.Assembler.Run(scored, "", dateStr)

	if !opts.Dry && len(preliminary.ArxivTop3) > 0 {
		summarized := d.deps.Processor.BatchSummarize(ctx, preliminary.ArxivTop3)
		scored = applySummaries(scored, summarized)
	}

	insight := d.deps.Processor.DailyInsight(ctx, scoring.Top3Context(preliminary.GlobalTop3))

	final := d.deps.Assembler.Run(scored, insight, dateStr)

	if opts.Dry {
		return d.preview(final, opts.PreviewPath)
	}
	return d.publish(ctx, final)
}

func (d *DailyDigest) gather(ctx context.Context, opts Options) []content.Item {
	var items []content.Item

	if d.deps.GitHub != nil {
		repos, err := d.deps.GitHub.FetchTrending(ctx, opts.GitHubLimit)
		if err != nil {
			slog.Error("Failed to fetch GitHub trending", "error", err)
		} else {
			items = append(items, repos...)
		}
	}

	if d.deps.HuggingFace != nil {
		for _, fetch := range []struct {
			name  string
			limit int
			fn    func(context.Context, int) ([]content.Item, error)
		}{
			{"models", opts.HFModelsLimit, d.deps.HuggingFace.FetchModels},
			{"datasets", opts.HFDatasetsLimit, d.deps.HuggingFace.FetchDatasets},
			{"spaces", opts.HFSpacesLimit, d.deps.HuggingFace.FetchSpaces},
		} {
			fetched, err := fetch.fn(ctx, fetch.limit)
			if err != nil {
				slog.Error("Failed to fetch HuggingFace content", "kind", fetch.name, "error", err)
				continue
			}
			items = append(items, fetched...)
		}
	}

	if d.deps.Arxiv != nil {
		papers, err := d.deps.Arxiv.FetchPapers(ctx, 24, 0)
		if err != nil {
			slog.Error("Failed to fetch arXiv papers", "error", err)
		} else {
			if len(papers) > opts.ArxivLimit {
				papers = papers[:opts.ArxivLimit]
			}
			items = append(items, d.deps.Arxiv.Items(papers)...)
		}
	}

	if d.deps.Blogs != nil {
		items = append(items, d.deps.Blogs.FetchRecent(ctx, opts.BlogDays, opts.BlogLimit)...)
	}

	if d.deps.Tweets != nil {
		minEngagement := content.DefaultEngagementThresholds[content.SourceTwitter]
		tweets, err := d.deps.Tweets.FetchRecent(ctx, d.deps.Lists.TwitterAccounts, 1, minEngagement, 5)
		if err != nil {
			slog.Error("Failed to fetch tweets", "error", err)
		} else {
			items = append(items, content.FilterByKeywords(tweets, content.DefaultKeywords)...)
		}
	}

	if d.deps.Videos != nil {
		videos, err := d.deps.Videos.FetchRecent(ctx, d.deps.Lists.YouTubeChannels, 2, 3, nil)
		if err != nil {
			slog.Error("Failed to fetch videos", "error", err)
		} else {
			items = append(items, videos...)
		}
	}

	// Engagement gate across everything gathered; search-side filters
	// are best effort and some clients return unfiltered results.
	return content.FilterByEngagement(items, nil)
}

// applySummaries copies generated paper summaries back onto the full
// scored list by item id.
func applySummaries(scored, summarized []content.ScoredItem) []content.ScoredItem {
	byID := make(map[string]string, len(summarized))
	for _, s := range summarized {
		if summary := s.Metadata["summary"]; summary != "" {
			byID[s.ID] = summary
		}
	}
	if len(byID) == 0 {
		return scored
	}

	for i, item := range scored {
		summary, ok := byID[item.ID]
		if !ok {
			continue
		}
		metadata := make(map[string]string, len(item.Metadata)+1)
		for k, v := range item.Metadata {
			metadata[k] = v
		}
		metadata["summary"] = summary
		scored[i].Metadata = metadata
	}
	return scored
}

func (d *DailyDigest) preview(final content.Digest, path string) error {
	if path == "" {
		path = "./digest_preview.html"
	}

	slog.Info("Dry run, not sending digest",
		"items", len(final.All),
		"top3", len(final.GlobalTop3),
		"insight", final.Insight)

	if err := os.WriteFile(path, []byte(d.deps.Renderer.Render(final)), 0o644); err != nil {
		return fmt.Errorf("failed to write preview: %w", err)
	}
	slog.Info("Preview written", "path", path)
	return nil
}

func (d *DailyDigest) publish(ctx context.Context, final content.Digest) error {
	if d.deps.Email == nil {
		return errNoSender
	}

	// Channels fail independently: a broken email transport must not
	// keep the digest out of Notion, and vice versa.
	emailErr := d.deps.Email.SendDigest(ctx, final, d.deps.ToEmail, d.deps.FromEmail)
	if emailErr != nil {
		slog.Error("Failed to send digest email", "error", emailErr)
	}

	if d.deps.Notion != nil {
		if url, err := d.deps.Notion.SendDigest(ctx, final); err != nil {
			slog.Error("Failed to write digest to Notion", "error", err)
		} else {
			slog.Info("Digest written to Notion", "url", url)
		}
	}

	return emailErr
}
