package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"aidigest/app/content"
)

const youtubeAPIBase = "https://www.googleapis.com/youtube/v3"

const (
	youtubeMinViews       = 10000
	youtubeMinDurationMin = 5
)

var durationExpr = regexp.MustCompile(`PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?`)

// YouTubeClient fetches recent video metadata from curated channels
// via the YouTube Data API v3. Only metadata is touched, never video
// content.
type YouTubeClient struct {
	fetcher *Fetcher
	apiKey  string
	baseURL string
}

func NewYouTubeClient(fetcher *Fetcher, apiKey string) *YouTubeClient {
	return &YouTubeClient{fetcher: fetcher, apiKey: apiKey, baseURL: youtubeAPIBase}
}

// FetchRecent returns AI-related videos from the given channels posted
// within days, filtered by view count, duration and keywords, at most
// maxPerChannel per channel. Sorted by views, highest first.
func (c *YouTubeClient) FetchRecent(ctx context.Context, channels []string, days, maxPerChannel int, keywords []string) ([]content.Item, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("YOUTUBE_API_KEY not set")
	}
	if len(keywords) == 0 {
		keywords = content.DefaultKeywords
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -days)

	var all []content.Item
	for _, channelID := range channels {
		videos, err := c.fetchChannelVideos(ctx, channelID, cutoff, maxPerChannel, keywords)
		if err != nil {
			slog.Warn("Failed to fetch channel videos", "channel_id", channelID, "error", err)
			continue
		}
		all = append(all, videos...)
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Engagement > all[j].Engagement
	})

	slog.Info("Fetched YouTube videos", "count", len(all), "channels", len(channels))
	return all, nil
}

type youtubeVideo struct {
	ID      string `json:"id"`
	Snippet struct {
		Title        string `json:"title"`
		Description  string `json:"description"`
		PublishedAt  string `json:"publishedAt"`
		ChannelTitle string `json:"channelTitle"`
	} `json:"snippet"`
	Statistics struct {
		ViewCount string `json:"viewCount"`
		LikeCount string `json:"likeCount"`
	} `json:"statistics"`
	ContentDetails struct {
		Duration string `json:"duration"`
	} `json:"contentDetails"`
}

func (c *YouTubeClient) fetchChannelVideos(ctx context.Context, channelID string, cutoff time.Time, maxResults int, keywords []string) ([]content.Item, error) {
	uploadsID, err := c.uploadsPlaylist(ctx, channelID)
	if err != nil {
		return nil, err
	}

	videoIDs, err := c.playlistVideoIDs(ctx, uploadsID, maxResults*3)
	if err != nil {
		return nil, err
	}
	if len(videoIDs) == 0 {
		return nil, nil
	}

	videosURL := fmt.Sprintf("%s/videos?part=snippet,statistics,contentDetails&id=%s&key=%s",
		c.baseURL, url.QueryEscape(strings.Join(videoIDs, ",")), c.apiKey)

	body, err := c.fetcher.Get(ctx, videosURL, nil)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Items []youtubeVideo `json:"items"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse videos response: %w", err)
	}

	var items []content.Item
	for _, video := range parsed.Items {
		if len(items) >= maxResults {
			break
		}
		if item, ok := parseVideo(video, cutoff, keywords); ok {
			items = append(items, item)
		}
	}

	return items, nil
}

func (c *YouTubeClient) uploadsPlaylist(ctx context.Context, channelID string) (string, error) {
	channelURL := fmt.Sprintf("%s/channels?part=contentDetails&id=%s&key=%s",
		c.baseURL, channelID, c.apiKey)

	body, err := c.fetcher.Get(ctx, channelURL, nil)
	if err != nil {
		return "", err
	}

	var parsed struct {
		Items []struct {
			ContentDetails struct {
				RelatedPlaylists struct {
					Uploads string `json:"uploads"`
				} `json:"relatedPlaylists"`
			} `json:"contentDetails"`
		} `json:"items"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse channel response: %w", err)
	}
	if len(parsed.Items) == 0 {
		return "", fmt.Errorf("channel %s not found", channelID)
	}

	return parsed.Items[0].ContentDetails.RelatedPlaylists.Uploads, nil
}

func (c *YouTubeClient) playlistVideoIDs(ctx context.Context, playlistID string, max int) ([]string, error) {
	if max > 20 {
		max = 20
	}

	playlistURL := fmt.Sprintf("%s/playlistItems?part=contentDetails&playlistId=%s&maxResults=%d&key=%s",
		c.baseURL, playlistID, max, c.apiKey)

	body, err := c.fetcher.Get(ctx, playlistURL, nil)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Items []struct {
			ContentDetails struct {
				VideoID string `json:"videoId"`
			} `json:"contentDetails"`
		} `json:"items"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse playlist response: %w", err)
	}

	var ids []string
	for _, item := range parsed.Items {
		if item.ContentDetails.VideoID != "" {
			ids = append(ids, item.ContentDetails.VideoID)
		}
	}
	return ids, nil
}

func parseVideo(video youtubeVideo, cutoff time.Time, keywords []string) (content.Item, bool) {
	published, err := time.Parse(time.RFC3339, video.Snippet.PublishedAt)
	if err != nil {
		published = time.Now().UTC()
	}
	if published.Before(cutoff) {
		return content.Item{}, false
	}

	if parseDurationMinutes(video.ContentDetails.Duration) < youtubeMinDurationMin {
		return content.Item{}, false
	}

	views, _ := strconv.Atoi(video.Statistics.ViewCount)
	if views < youtubeMinViews {
		return content.Item{}, false
	}

	combined := strings.ToLower(video.Snippet.Title + " " + video.Snippet.Description)
	matched := false
	for _, kw := range keywords {
		if strings.Contains(combined, strings.ToLower(kw)) {
			matched = true
			break
		}
	}
	if !matched {
		return content.Item{}, false
	}

	item := content.Item{
		ID:          "youtube-" + video.ID,
		Title:       video.Snippet.Title,
		Source:      video.Snippet.ChannelTitle,
		Type:        content.SourceYouTube,
		URL:         "https://youtube.com/watch?v=" + video.ID,
		PublishedOn: published.UTC(),
		Author:      video.Snippet.ChannelTitle,
		Summary:     truncateText(video.Snippet.Description, 300),
		Content:     video.Snippet.Description,
		Engagement:  views,
		Metadata: map[string]string{
			"view_count": strconv.Itoa(views),
			"like_count": video.Statistics.LikeCount,
			"duration":   video.ContentDetails.Duration,
		},
	}

	return item, true
}

// parseDurationMinutes converts an ISO 8601 duration (PT#H#M#S) to
// minutes, rounding up from 30 seconds.
func parseDurationMinutes(duration string) int {
	match := durationExpr.FindStringSubmatch(duration)
	if match == nil {
		return 0
	}

	hours, _ := strconv.Atoi(match[1])
	minutes, _ := strconv.Atoi(match[2])
	seconds, _ := strconv.Atoi(match[3])

	total := hours*60 + minutes
	if seconds >= 30 {
		total++
	}
	return total
}
