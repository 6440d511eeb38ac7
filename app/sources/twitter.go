package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"aidigest/app/content"
)

const twitterAPIBase = "https://api.twitter.com/2"

// TwitterClient reads recent tweets from curated accounts via the
// Twitter API v2 (bearer token auth).
type TwitterClient struct {
	fetcher     *Fetcher
	bearerToken string
	baseURL     string
}

func NewTwitterClient(fetcher *Fetcher, bearerToken string) *TwitterClient {
	return &TwitterClient{
		fetcher:     fetcher,
		bearerToken: bearerToken,
		baseURL:     twitterAPIBase,
	}
}

type twitterUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

type twitterTweet struct {
	ID            string `json:"id"`
	Text          string `json:"text"`
	CreatedAt     string `json:"created_at"`
	PublicMetrics struct {
		LikeCount    int `json:"like_count"`
		RetweetCount int `json:"retweet_count"`
		ReplyCount   int `json:"reply_count"`
	} `json:"public_metrics"`
}

// FetchRecent returns tweets from the given accounts posted within the
// last days, with engagement (likes + 2x retweets) of at least
// minEngagement, at most maxPerUser per account. Sorted by engagement,
// highest first.
func (c *TwitterClient) FetchRecent(ctx context.Context, accounts []string, days, minEngagement, maxPerUser int) ([]content.Item, error) {
	if c.bearerToken == "" {
		return nil, fmt.Errorf("TWITTER_BEARER_TOKEN not set")
	}

	users, err := c.lookupUsers(ctx, accounts)
	if err != nil {
		return nil, err
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -days)

	var all []content.Item
	for _, user := range users {
		tweets, err := c.fetchUserTweets(ctx, user, cutoff, minEngagement, maxPerUser)
		if err != nil {
			slog.Warn("Failed to fetch tweets", "username", user.Username, "error", err)
			continue
		}
		all = append(all, tweets...)
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Engagement > all[j].Engagement
	})

	slog.Info("Fetched tweets", "count", len(all), "accounts", len(users))
	return all, nil
}

func (c *TwitterClient) lookupUsers(ctx context.Context, accounts []string) ([]twitterUser, error) {
	lookupURL := fmt.Sprintf("%s/users/by?usernames=%s",
		c.baseURL, url.QueryEscape(strings.Join(accounts, ",")))

	body, err := c.fetcher.Get(ctx, lookupURL, c.authHeader())
	if err != nil {
		return nil, fmt.Errorf("failed to look up Twitter users: %w", err)
	}

	var parsed struct {
		Data []twitterUser `json:"data"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse user lookup response: %w", err)
	}

	return parsed.Data, nil
}

func (c *TwitterClient) fetchUserTweets(ctx context.Context, user twitterUser, cutoff time.Time, minEngagement, maxPerUser int) ([]content.Item, error) {
	tweetsURL := fmt.Sprintf(
		"%s/users/%s/tweets?max_results=20&exclude=retweets,replies&tweet.fields=public_metrics,created_at",
		c.baseURL, user.ID)

	body, err := c.fetcher.Get(ctx, tweetsURL, c.authHeader())
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Data []twitterTweet `json:"data"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse tweets response: %w", err)
	}

	var items []content.Item
	for _, tweet := range parsed.Data {
		if len(items) >= maxPerUser {
			break
		}

		created, err := time.Parse(time.RFC3339, tweet.CreatedAt)
		if err != nil {
			created = time.Now().UTC()
		}
		if created.Before(cutoff) {
			continue
		}

		engagement := tweet.PublicMetrics.LikeCount + 2*tweet.PublicMetrics.RetweetCount
		if engagement < minEngagement {
			continue
		}

		items = append(items, content.Item{
			ID:          "twitter-" + tweet.ID,
			Title:       "@" + user.Username,
			Source:      "@" + user.Username,
			Type:        content.SourceTwitter,
			URL:         fmt.Sprintf("https://twitter.com/%s/status/%s", user.Username, tweet.ID),
			PublishedOn: created.UTC(),
			Author:      user.Name,
			Summary:     truncateText(tweet.Text, 300),
			Content:     tweet.Text,
			Engagement:  engagement,
		})
	}

	return items, nil
}

func (c *TwitterClient) authHeader() http.Header {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+c.bearerToken)
	return header
}

func truncateText(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
