package notion

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"aidigest/app/content"
)

func TestSendDigest(t *testing.T) {
	var createBody map[string]any
	appendCalls := 0

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer secret_token" {
			t.Errorf("Unexpected Authorization header: %q", got)
		}
		if got := r.Header.Get("Notion-Version"); got != notionVersion {
			t.Errorf("Unexpected Notion-Version header: %q", got)
		}

		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/v1/pages":
			if err := json.NewDecoder(r.Body).Decode(&createBody); err != nil {
				t.Errorf("Failed to decode create request: %v", err)
			}
			fmt.Fprintf(w, `{"id": "page-1", "url": "https://notion.so/page-1"}`)
		case r.Method == http.MethodPatch && r.URL.Path == "/v1/blocks/page-1/children":
			appendCalls++
			w.Write([]byte(`{}`))
		default:
			t.Errorf("Unexpected request: %s %s", r.Method, r.URL.Path)
		}
	}))
	defer server.Close()

	sender, err := NewSender("secret_token", "db-1")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	sender.baseURL = server.URL
	sender.client = server.Client()

	d := content.Digest{
		Date:    "2026-08-25",
		Insight: "今日 AI 领域稳步发展。",
		GlobalTop3: []content.ScoredItem{
			scored("github-a", content.SourceGitHub, "org/a", "", 9),
		},
		All: []content.ScoredItem{
			scored("github-a", content.SourceGitHub, "org/a", "", 9),
		},
	}

	url, err := sender.SendDigest(context.Background(), d)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if url != "https://notion.so/page-1" {
		t.Errorf("Unexpected page URL: %q", url)
	}
	if appendCalls != 1 {
		t.Errorf("Expected 1 block append call, got %d", appendCalls)
	}

	parent, _ := createBody["parent"].(map[string]any)
	if parent["database_id"] != "db-1" {
		t.Errorf("Unexpected parent: %v", createBody["parent"])
	}

	properties, _ := createBody["properties"].(map[string]any)
	if _, ok := properties["标题"]; !ok {
		t.Errorf("Expected title property, got %v", properties)
	}
	if _, ok := properties["重要程度"]; !ok {
		t.Errorf("Expected importance property")
	}
}

func TestSendDigestCreateError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message": "database not found"}`, http.StatusNotFound)
	}))
	defer server.Close()

	sender, _ := NewSender("secret_token", "db-1")
	sender.baseURL = server.URL
	sender.client = server.Client()

	if _, err := sender.SendDigest(context.Background(), content.Digest{Date: "2026-08-25"}); err == nil {
		t.Fatalf("Expected error when page creation fails")
	}
}

func TestNewSenderValidation(t *testing.T) {
	if _, err := NewSender("", "db"); err == nil {
		t.Errorf("Expected error without token")
	}
	if _, err := NewSender("token", ""); err == nil {
		t.Errorf("Expected error without database id")
	}
}
