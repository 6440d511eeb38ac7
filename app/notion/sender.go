// Package notion writes the daily digest into a Notion database as a
// structured page, parallel to the email channel.
package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"aidigest/app/content"
)

const (
	notionAPIBase = "https://api.notion.com"
	notionVersion = "2022-06-28"

	maxRichTextLength   = 2000
	maxBlocksPerRequest = 100
	maxToggleChildren   = 50
)

// Sender creates digest pages through the Notion REST API.
type Sender struct {
	token      string
	databaseID string
	baseURL    string
	client     *http.Client
}

func NewSender(token, databaseID string) (*Sender, error) {
	if token == "" || databaseID == "" {
		return nil, errors.New("notion token and database id required")
	}

	return &Sender{
		token:      token,
		databaseID: databaseID,
		baseURL:    notionAPIBase,
		client:     &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// SendDigest creates a page for the digest and returns its URL. The
// page is created first; a failure while appending body blocks is
// logged but does not discard the page.
func (s *Sender) SendDigest(ctx context.Context, d content.Digest) (string, error) {
	page, err := s.createPage(ctx, buildProperties(d))
	if err != nil {
		return "", fmt.Errorf("failed to create notion page: %w", err)
	}
	slog.Info("Notion page created", "url", page.URL)

	if err := s.appendBlocks(ctx, page.ID, buildBlocks(d)); err != nil {
		slog.Error("Failed to append blocks to Notion page", "page_id", page.ID, "error", err)
	}

	return page.URL, nil
}

func buildProperties(d content.Digest) map[string]any {
	hotProjects := make([]content.ScoredItem, 0, 12)
	hotProjects = append(hotProjects, d.GitHubTop3...)
	hotProjects = append(hotProjects, d.HFModelsTop3...)
	hotProjects = append(hotProjects, d.HFDatasetsTop3...)
	hotProjects = append(hotProjects, d.HFSpacesTop3...)

	return map[string]any{
		"标题":   map[string]any{"title": []any{textSpan(d.Date + " AI 晨报")}},
		"日期":   map[string]any{"date": map[string]any{"start": d.Date}},
		"今日洞察": richTextProperty(truncateText(d.Insight, maxRichTextLength)),
		"热门项目": richTextProperty(formatPropertyContent(hotProjects)),
		"论文精选": richTextProperty(formatPropertyContent(d.ArxivTop3)),
		"博客速递": richTextProperty(formatPropertyContent(d.BlogTop3)),
		"我的笔记": map[string]any{"rich_text": []any{}},
		"标签":   map[string]any{"multi_select": multiSelect(extractTags(d.GlobalTop3))},
		"重要程度": map[string]any{"select": map[string]any{"name": calculateImportance(d.GlobalTop3)}},
	}
}

func textSpan(text string) map[string]any {
	return map[string]any{"text": map[string]any{"content": text}}
}

func richTextProperty(text string) map[string]any {
	if text == "" {
		return map[string]any{"rich_text": []any{}}
	}
	return map[string]any{"rich_text": []any{textSpan(text)}}
}

func multiSelect(names []string) []any {
	options := make([]any, 0, len(names))
	for _, name := range names {
		options = append(options, map[string]any{"name": name})
	}
	return options
}

type page struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

func (s *Sender) createPage(ctx context.Context, properties map[string]any) (*page, error) {
	payload := map[string]any{
		"parent":     map[string]any{"database_id": s.databaseID},
		"properties": properties,
	}

	var created page
	if err := s.post(ctx, http.MethodPost, "/v1/pages", payload, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// appendBlocks respects the API limit of 100 blocks per request.
func (s *Sender) appendBlocks(ctx context.Context, pageID string, blocks []block) error {
	for start := 0; start < len(blocks); start += maxBlocksPerRequest {
		end := min(start+maxBlocksPerRequest, len(blocks))

		payload := map[string]any{"children": blocks[start:end]}
		path := "/v1/blocks/" + pageID + "/children"
		if err := s.post(ctx, http.MethodPatch, path, payload, nil); err != nil {
			return err
		}
		slog.Debug("Appended block batch", "count", end-start)
	}
	return nil
}

func (s *Sender) post(ctx context.Context, method, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Notion-Version", notionVersion)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("notion api returned status %d: %s", resp.StatusCode, data)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
