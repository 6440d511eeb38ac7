package sources

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"aidigest/app/content"
)

const (
	arxivBaseURL      = "https://arxiv.org"
	arxivListPageSize = 200
)

var arxivDateExpr = regexp.MustCompile(`\d{1,2} [A-Za-z]{3} \d{4}`)

// ArxivClient scrapes the arXiv listing pages of the configured
// categories.
type ArxivClient struct {
	fetcher    *Fetcher
	categories []string
	pageSize   int
}

func NewArxivClient(fetcher *Fetcher, categories []string) *ArxivClient {
	return &ArxivClient{
		fetcher:    fetcher,
		categories: categories,
		pageSize:   arxivListPageSize,
	}
}

// FetchPapers returns papers published between now-windowStart and
// now-windowStop (both in hours, windowStart > windowStop). Duplicates
// across categories are collapsed.
func (c *ArxivClient) FetchPapers(ctx context.Context, windowStart, windowStop int) ([]content.Paper, error) {
	now := time.Now().UTC()
	after := now.Add(-time.Duration(windowStart) * time.Hour)
	before := now.Add(-time.Duration(windowStop) * time.Hour)

	var papers []content.Paper
	seen := map[string]struct{}{}

	for _, category := range c.categories {
		listURL := fmt.Sprintf("%s/list/%s/recent", arxivBaseURL, category)

		skip := 0
		for {
			pageURL, err := buildListURL(listURL, skip, c.pageSize)
			if err != nil {
				return nil, fmt.Errorf("category %s: %w", category, err)
			}

			body, err := c.fetcher.Get(ctx, pageURL, nil)
			if err != nil {
				return nil, fmt.Errorf("category %s: %w", category, err)
			}

			doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
			if err != nil {
				return nil, fmt.Errorf("category %s: failed to parse listing: %w", category, err)
			}

			pagePapers, processed, keepGoing := c.extractPapers(doc, category, after, before)
			for _, paper := range pagePapers {
				if _, ok := seen[paper.ArxivID]; ok {
					continue
				}
				seen[paper.ArxivID] = struct{}{}
				papers = append(papers, paper)
			}

			if !keepGoing || processed < c.pageSize {
				break
			}
			skip += c.pageSize
		}
	}

	slog.Info("Fetched arXiv papers", "count", len(papers), "categories", len(c.categories))
	return papers, nil
}

// Items converts papers to the unified content shape for the digest
// pipeline.
func (c *ArxivClient) Items(papers []content.Paper) []content.Item {
	items := make([]content.Item, 0, len(papers))
	for _, paper := range papers {
		items = append(items, content.Item{
			ID:          "arxiv-" + paper.ArxivID,
			Title:       paper.Title,
			Source:      "arXiv",
			Type:        content.SourceArxiv,
			URL:         paper.URL,
			PublishedOn: paper.PublishedOn,
			Summary:     paper.Abstract,
			Engagement:  paper.Score,
		})
	}
	return items
}

func (c *ArxivClient) extractPapers(doc *goquery.Document, category string, after, before time.Time) ([]content.Paper, int, bool) {
	var (
		papers    []content.Paper
		processed int
		keepGoing = true
	)

	doc.Find("dl > dt").EachWithBreak(func(_ int, dt *goquery.Selection) bool {
		dd := dt.Next()
		processed++

		paper, publishedAt, err := parseArxivEntry(dt, dd, category)
		if err != nil {
			return true
		}

		// Undated entries cannot be window-checked; keep them rather
		// than dropping fresh papers.
		if publishedAt.IsZero() {
			papers = append(papers, paper)
			return true
		}

		if publishedAt.Before(after) {
			// Listings are newest first; everything below is older still
			keepGoing = false
			return false
		}
		if !publishedAt.After(before) {
			papers = append(papers, paper)
		}

		return true
	})

	return papers, processed, keepGoing
}

func parseArxivEntry(dt, dd *goquery.Selection, category string) (content.Paper, time.Time, error) {
	link := dt.Find(`a[href*="/abs/"]`).First()

	id := strings.TrimSpace(link.Text())
	id = strings.TrimPrefix(id, "arXiv:")

	href, _ := link.Attr("href")
	if id == "" {
		id = strings.TrimPrefix(href, "/abs/")
	}
	if id == "" {
		return content.Paper{}, time.Time{}, fmt.Errorf("entry without arXiv id")
	}

	if !strings.HasPrefix(href, "http") {
		href = arxivBaseURL + href
	}

	title := strings.TrimSpace(dd.Find(".list-title").First().Text())
	title = strings.TrimSpace(strings.TrimPrefix(title, "Title:"))

	// Titles carry class="list-title mathjax", so the abstract match
	// must be scoped to the paragraph element.
	abstract := strings.TrimSpace(dd.Find("p.mathjax").First().Text())
	abstract = strings.TrimSpace(strings.TrimPrefix(abstract, "Abstract:"))
	if abstract == "" {
		abstract = strings.TrimSpace(dd.Find("p.abstract").First().Text())
	}

	dateText := strings.TrimSpace(dd.Find(".list-date").First().Text())
	if dateText == "" {
		dateText = strings.TrimSpace(dd.Find(".list-dateline").First().Text())
	}

	// Zero when the listing carries no parsable date; the caller keeps
	// such entries instead of guessing a timestamp.
	var publishedAt time.Time
	if match := arxivDateExpr.FindString(dateText); match != "" {
		if parsed, err := time.Parse("2 Jan 2006", match); err == nil {
			publishedAt = parsed
		}
	}

	paper := content.Paper{
		ArxivID:     id,
		Title:       title,
		Abstract:    abstract,
		URL:         href,
		Score:       1,
		PublishedOn: publishedAt,
		Categories:  []string{category},
	}

	return paper, publishedAt, nil
}

func buildListURL(base string, skip, pageSize int) (string, error) {
	parsed, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid listing url %s: %w", base, err)
	}

	query := parsed.Query()
	query.Set("skip", strconv.Itoa(skip))
	query.Set("show", strconv.Itoa(pageSize))
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}
