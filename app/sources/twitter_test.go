package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestTwitterFetchRecent(t *testing.T) {
	now := time.Now().UTC()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer token-123" {
			t.Errorf("Unexpected Authorization header: %q", got)
		}

		switch {
		case strings.HasPrefix(r.URL.Path, "/users/by"):
			w.Write([]byte(`{"data": [{"id": "1", "username": "karpathy", "name": "Andrej Karpathy"}]}`))
		case strings.HasPrefix(r.URL.Path, "/users/1/tweets"):
			fmt.Fprintf(w, `{"data": [
				{"id": "100", "text": "training runs are fun", "created_at": %q,
				 "public_metrics": {"like_count": 500, "retweet_count": 100}},
				{"id": "101", "text": "low engagement tweet", "created_at": %q,
				 "public_metrics": {"like_count": 10, "retweet_count": 2}}
			]}`, now.Add(-2*time.Hour).Format(time.RFC3339), now.Add(-3*time.Hour).Format(time.RFC3339))
		default:
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
	}))
	defer server.Close()

	client := NewTwitterClient(NewFetcher(server.Client(), "test"), "token-123")
	client.baseURL = server.URL

	items, err := client.FetchRecent(context.Background(), []string{"karpathy"}, 7, 100, 5)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("Expected 1 tweet above the engagement floor, got %d", len(items))
	}

	tweet := items[0]
	if tweet.Engagement != 700 {
		t.Errorf("Expected engagement 500 + 2*100 = 700, got %d", tweet.Engagement)
	}
	if tweet.URL != "https://twitter.com/karpathy/status/100" {
		t.Errorf("Unexpected URL: %q", tweet.URL)
	}
	if tweet.Source != "@karpathy" {
		t.Errorf("Unexpected source: %q", tweet.Source)
	}
	if tweet.Content != "training runs are fun" {
		t.Errorf("Unexpected content: %q", tweet.Content)
	}
}

func TestTwitterFetchRecentNoToken(t *testing.T) {
	client := NewTwitterClient(NewFetcher(nil, "test"), "")

	if _, err := client.FetchRecent(context.Background(), []string{"a"}, 7, 100, 5); err == nil {
		t.Errorf("Expected error without bearer token")
	}
}
