package sources

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"aidigest/app/content"
)

// BlogClient fetches posts from the configured tech blog RSS feeds.
// Feeds are independent: one broken feed never fails the whole run.
type BlogClient struct {
	fetcher   *Fetcher
	feeds     map[string]string
	parser    *gofeed.Parser
	extractor *ContentExtractor
}

func NewBlogClient(fetcher *Fetcher, feeds map[string]string) *BlogClient {
	return &BlogClient{
		fetcher:   fetcher,
		feeds:     feeds,
		parser:    gofeed.NewParser(),
		extractor: NewContentExtractor(),
	}
}

// FetchRecent returns posts newer than days, at most limitPerSource
// per feed, newest first.
func (c *BlogClient) FetchRecent(ctx context.Context, days, limitPerSource int) []content.Item {
	cutoff := time.Now().UTC().AddDate(0, 0, -days)

	var all []content.Item
	for source, feedURL := range c.feeds {
		posts, err := c.fetchFeed(ctx, source, feedURL, cutoff, limitPerSource)
		if err != nil {
			slog.Warn("Failed to fetch blog feed", "source", source, "error", err)
			continue
		}
		all = append(all, posts...)
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].PublishedOn.After(all[j].PublishedOn)
	})

	slog.Info("Fetched blog posts", "count", len(all), "feeds", len(c.feeds))
	return all
}

func (c *BlogClient) fetchFeed(ctx context.Context, source, feedURL string, cutoff time.Time, limit int) ([]content.Item, error) {
	body, err := c.fetcher.Get(ctx, feedURL, nil)
	if err != nil {
		return nil, err
	}

	feed, err := c.parser.ParseString(string(body))
	if err != nil {
		return nil, err
	}

	var posts []content.Item
	for _, entry := range feed.Items {
		if len(posts) >= limit {
			break
		}

		published := entryDate(entry)
		if published.Before(cutoff) {
			continue
		}

		summary := htmlToText(entry.Description)
		if summary == "" {
			summary = htmlToText(entry.Content)
		}
		if summary == "" && entry.Link != "" {
			summary = c.extractSummary(ctx, entry.Link)
		}

		author := ""
		if len(entry.Authors) > 0 {
			author = entry.Authors[0].Name
		}

		posts = append(posts, content.Item{
			ID:          "blog-" + slugify(source) + "-" + slugify(entry.Title),
			Title:       strings.TrimSpace(entry.Title),
			Source:      source,
			Type:        content.SourceBlog,
			URL:         entry.Link,
			PublishedOn: published,
			Author:      author,
			Summary:     summary,
		})
	}

	return posts, nil
}

// extractSummary fetches the post page and runs readability over it.
// Best effort: a failed extraction just leaves the summary empty.
func (c *BlogClient) extractSummary(ctx context.Context, link string) string {
	body, err := c.fetcher.Get(ctx, link, nil)
	if err != nil {
		return ""
	}

	text, err := c.extractor.Run(body)
	if err != nil {
		return ""
	}

	return text
}

func entryDate(entry *gofeed.Item) time.Time {
	if entry.PublishedParsed != nil {
		return entry.PublishedParsed.UTC()
	}
	if entry.UpdatedParsed != nil {
		return entry.UpdatedParsed.UTC()
	}
	return time.Time{}
}

// htmlToText strips markup from a feed description and collapses
// whitespace.
func htmlToText(html string) string {
	if html == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return strings.TrimSpace(html)
	}

	return strings.Join(strings.Fields(doc.Text()), " ")
}

func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	lastDash := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash && b.Len() > 0 {
				b.WriteRune('-')
				lastDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}
