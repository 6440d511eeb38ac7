package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"aidigest/app/content"
)

const hfAPIBase = "https://huggingface.co/api"

// HuggingFaceClient fetches trending models, datasets and spaces from
// the public HuggingFace API.
type HuggingFaceClient struct {
	fetcher *Fetcher
	baseURL string
}

func NewHuggingFaceClient(fetcher *Fetcher) *HuggingFaceClient {
	return &HuggingFaceClient{fetcher: fetcher, baseURL: hfAPIBase}
}

type hfEntry struct {
	ID        string   `json:"id"`
	ModelID   string   `json:"modelId"`
	Downloads int      `json:"downloads"`
	Likes     int      `json:"likes"`
	Tags      []string `json:"tags"`
}

func (e hfEntry) name() string {
	if e.ModelID != "" {
		return e.ModelID
	}
	return e.ID
}

// FetchModels returns the most downloaded models.
func (c *HuggingFaceClient) FetchModels(ctx context.Context, limit int) ([]content.Item, error) {
	url := fmt.Sprintf("%s/models?sort=downloads&direction=-1&limit=%d", c.baseURL, limit)
	return c.fetchEntries(ctx, url, content.SourceHFModel, "")
}

// FetchDatasets returns the most downloaded datasets.
func (c *HuggingFaceClient) FetchDatasets(ctx context.Context, limit int) ([]content.Item, error) {
	url := fmt.Sprintf("%s/datasets?sort=downloads&direction=-1&limit=%d", c.baseURL, limit)
	return c.fetchEntries(ctx, url, content.SourceHFDataset, "datasets/")
}

// FetchSpaces returns the most liked spaces. Spaces have no download
// counts, so likes are the engagement signal.
func (c *HuggingFaceClient) FetchSpaces(ctx context.Context, limit int) ([]content.Item, error) {
	url := fmt.Sprintf("%s/spaces?sort=likes&direction=-1&limit=%d", c.baseURL, limit)
	return c.fetchEntries(ctx, url, content.SourceHFSpace, "spaces/")
}

func (c *HuggingFaceClient) fetchEntries(ctx context.Context, url string, sourceType content.SourceType, urlPrefix string) ([]content.Item, error) {
	body, err := c.fetcher.Get(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch HuggingFace %s: %w", sourceType, err)
	}

	var entries []hfEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse HuggingFace %s response: %w", sourceType, err)
	}

	items := make([]content.Item, 0, len(entries))
	for _, entry := range entries {
		name := entry.name()
		if name == "" {
			continue
		}

		engagement := entry.Downloads
		if engagement == 0 {
			engagement = entry.Likes
		}

		items = append(items, content.Item{
			ID:          "hf-" + strings.TrimPrefix(string(sourceType), "hf_") + "-" + strings.ReplaceAll(name, "/", "-"),
			Title:       name,
			Source:      "HuggingFace",
			Type:        sourceType,
			URL:         "https://huggingface.co/" + urlPrefix + name,
			PublishedOn: time.Now().UTC(),
			Summary:     strings.Join(topTags(entry.Tags, 5), ", "),
			Engagement:  engagement,
			Metadata: map[string]string{
				"downloads": strconv.Itoa(entry.Downloads),
				"likes":     strconv.Itoa(entry.Likes),
			},
		})
	}

	slog.Info("Fetched HuggingFace entries", "type", sourceType, "count", len(items))
	return items, nil
}

func topTags(tags []string, n int) []string {
	if len(tags) < n {
		n = len(tags)
	}
	return tags[:n]
}
