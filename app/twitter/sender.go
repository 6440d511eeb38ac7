// Package twitter posts tweets through the v2 API with OAuth1 user
// context, which is what the create-tweet endpoint requires.
package twitter

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

	"github.com/dghubble/oauth1"
)

const createTweetURL = "https://api.twitter.com/2/tweets"

// Sender posts a tweet, optionally as a reply, and returns its URL
// and id.
type Sender interface {
	Send(ctx context.Context, text, inReplyToID string) (url, id string, err error)
}

// Credentials holds the four OAuth1 values of the posting account.
type Credentials struct {
	ConsumerKey    string
	ConsumerSecret string
	AccessToken    string
	AccessSecret   string
}

func (c Credentials) complete() bool {
	return c.ConsumerKey != "" && c.ConsumerSecret != "" && c.AccessToken != "" && c.AccessSecret != ""
}

// OAuth1Sender signs create-tweet requests with the account's user
// tokens.
type OAuth1Sender struct {
	client  *http.Client
	baseURL string
}

func NewOAuth1Sender(creds Credentials) (*OAuth1Sender, error) {
	if !creds.complete() {
		return nil, errors.New("all four twitter oauth credentials required")
	}

	config := oauth1.NewConfig(creds.ConsumerKey, creds.ConsumerSecret)
	token := oauth1.NewToken(creds.AccessToken, creds.AccessSecret)

	client := config.Client(oauth1.NoContext, token)
	client.Timeout = 30 * time.Second

	return &OAuth1Sender{client: client, baseURL: createTweetURL}, nil
}

type createTweetRequest struct {
	Text  string      `json:"text"`
	Reply *tweetReply `json:"reply,omitempty"`
}

type tweetReply struct {
	InReplyToTweetID string `json:"in_reply_to_tweet_id"`
}

type createTweetResponse struct {
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

func (s *OAuth1Sender) Send(ctx context.Context, text, inReplyToID string) (string, string, error) {
	payload := createTweetRequest{Text: text}
	if inReplyToID != "" {
		payload.Reply = &tweetReply{InReplyToTweetID: inReplyToID}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("create tweet request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", "", fmt.Errorf("twitter api returned status %d: %s", resp.StatusCode, data)
	}

	var created createTweetResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", "", fmt.Errorf("failed to decode create tweet response: %w", err)
	}
	if created.Data.ID == "" {
		return "", "", errors.New("twitter api returned no tweet id")
	}

	url := tweetURL(created.Data.ID)
	slog.Info("Tweet sent", "id", created.Data.ID, "url", url)
	return url, created.Data.ID, nil
}

func tweetURL(id string) string {
	return "https://twitter.com/i/web/status/" + id
}

// DrySender logs instead of posting. Returned ids are sequential so
// reply threading still links up in dry runs.
type DrySender struct {
	next int
}

func (d *DrySender) Send(ctx context.Context, text, inReplyToID string) (string, string, error) {
	d.next++
	id := fmt.Sprintf("dry-%d", d.next)
	slog.Info("Dry run, tweet not sent", "text", text, "in_reply_to", inReplyToID, "id", id)
	return tweetURL(id), id, nil
}
