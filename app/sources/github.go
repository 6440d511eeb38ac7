package sources

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"aidigest/app/content"
)

const githubTrendingURL = "https://github.com/trending"

// GitHubTrendingClient scrapes github.com/trending.
type GitHubTrendingClient struct {
	fetcher  *Fetcher
	baseURL  string
	language string // optional language filter
	since    string // daily, weekly or monthly
}

func NewGitHubTrendingClient(fetcher *Fetcher) *GitHubTrendingClient {
	return &GitHubTrendingClient{fetcher: fetcher, baseURL: githubTrendingURL, since: "daily"}
}

// FetchTrending returns up to limit trending repositories.
func (c *GitHubTrendingClient) FetchTrending(ctx context.Context, limit int) ([]content.Item, error) {
	body, err := c.fetcher.Get(ctx, c.buildURL(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch GitHub trending: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse GitHub trending page: %w", err)
	}

	var items []content.Item
	doc.Find("article.Box-row").EachWithBreak(func(_ int, article *goquery.Selection) bool {
		item, ok := parseTrendingRepo(article)
		if ok {
			items = append(items, item)
		}
		return len(items) < limit
	})

	slog.Info("Fetched GitHub trending repositories", "count", len(items))
	return items, nil
}

func (c *GitHubTrendingClient) buildURL() string {
	url := c.baseURL
	if c.language != "" {
		url += "/" + c.language
	}
	return url + "?since=" + c.since
}

func parseTrendingRepo(article *goquery.Selection) (content.Item, bool) {
	href, _ := article.Find("h2 a").First().Attr("href")
	name := strings.Trim(strings.TrimSpace(href), "/")
	if name == "" {
		return content.Item{}, false
	}

	description := strings.TrimSpace(article.Find("p.col-9").First().Text())
	language := strings.TrimSpace(article.Find(`span[itemprop="programmingLanguage"]`).First().Text())

	starsTotal := 0
	article.Find("a.Link--muted").EachWithBreak(func(_ int, link *goquery.Selection) bool {
		if stars, ok := parseStarCount(link.Text()); ok {
			starsTotal = stars
			return false
		}
		return true
	})

	starsToday := 0
	todayText := strings.TrimSpace(article.Find("span.float-sm-right").First().Text())
	if fields := strings.Fields(strings.ReplaceAll(todayText, ",", "")); len(fields) > 0 {
		if n, err := strconv.Atoi(fields[0]); err == nil {
			starsToday = n
		}
	}

	item := content.Item{
		ID:          "github-" + strings.ReplaceAll(name, "/", "-"),
		Title:       name,
		Source:      "GitHub Trending",
		Type:        content.SourceGitHub,
		URL:         "https://github.com/" + name,
		PublishedOn: time.Now().UTC(),
		Summary:     description,
		Engagement:  starsTotal,
		Metadata: map[string]string{
			"stars_today": strconv.Itoa(starsToday),
			"language":    language,
		},
	}

	return item, true
}

// parseStarCount handles "12,345" and "1.2k" star formats.
func parseStarCount(text string) (int, bool) {
	text = strings.TrimSpace(strings.ReplaceAll(text, ",", ""))
	if text == "" {
		return 0, false
	}

	multiplier := 1.0
	lower := strings.ToLower(text)
	if strings.HasSuffix(lower, "k") {
		multiplier = 1000
		text = text[:len(text)-1]
	} else if strings.HasSuffix(lower, "m") {
		multiplier = 1000000
		text = text[:len(text)-1]
	}

	value, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, false
	}

	return int(value * multiplier), true
}
