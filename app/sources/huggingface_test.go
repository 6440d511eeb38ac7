package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"aidigest/app/content"
)

func TestFetchModels(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/models") {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("sort") != "downloads" {
			t.Errorf("Expected sort=downloads, got %q", r.URL.Query().Get("sort"))
		}
		w.Write([]byte(`[
			{"modelId": "meta-llama/Llama-3-8B", "downloads": 500000, "likes": 12000, "tags": ["text-generation", "llama"]},
			{"id": "no-downloads/model", "likes": 42}
		]`))
	}))
	defer server.Close()

	client := NewHuggingFaceClient(NewFetcher(server.Client(), "test"))
	client.baseURL = server.URL

	items, err := client.FetchModels(context.Background(), 5)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("Expected 2 models, got %d", len(items))
	}

	first := items[0]
	if first.Title != "meta-llama/Llama-3-8B" {
		t.Errorf("Unexpected name: %q", first.Title)
	}
	if first.Type != content.SourceHFModel {
		t.Errorf("Unexpected type: %q", first.Type)
	}
	if first.Engagement != 500000 {
		t.Errorf("Expected downloads as engagement, got %d", first.Engagement)
	}
	if first.URL != "https://huggingface.co/meta-llama/Llama-3-8B" {
		t.Errorf("Unexpected URL: %q", first.URL)
	}
	if first.ID != "hf-model-meta-llama-Llama-3-8B" {
		t.Errorf("Unexpected id: %q", first.ID)
	}

	// Likes back up engagement when downloads are missing
	if items[1].Engagement != 42 {
		t.Errorf("Expected likes fallback, got %d", items[1].Engagement)
	}
}

func TestFetchDatasetsAndSpacesURLs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/datasets"):
			w.Write([]byte(`[{"id": "squad", "downloads": 10000}]`))
		case strings.HasPrefix(r.URL.Path, "/spaces"):
			if r.URL.Query().Get("sort") != "likes" {
				t.Errorf("Spaces must sort by likes, got %q", r.URL.Query().Get("sort"))
			}
			w.Write([]byte(`[{"id": "stabilityai/stable-diffusion", "likes": 9000}]`))
		default:
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
	}))
	defer server.Close()

	client := NewHuggingFaceClient(NewFetcher(server.Client(), "test"))
	client.baseURL = server.URL

	datasets, err := client.FetchDatasets(context.Background(), 3)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if datasets[0].URL != "https://huggingface.co/datasets/squad" {
		t.Errorf("Unexpected dataset URL: %q", datasets[0].URL)
	}
	if datasets[0].Type != content.SourceHFDataset {
		t.Errorf("Unexpected dataset type: %q", datasets[0].Type)
	}

	spaces, err := client.FetchSpaces(context.Background(), 3)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if spaces[0].URL != "https://huggingface.co/spaces/stabilityai/stable-diffusion" {
		t.Errorf("Unexpected space URL: %q", spaces[0].URL)
	}
	if spaces[0].Engagement != 9000 {
		t.Errorf("Expected likes as space engagement, got %d", spaces[0].Engagement)
	}
}

func TestFetchModelsBadJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer server.Close()

	client := NewHuggingFaceClient(NewFetcher(server.Client(), "test"))
	client.baseURL = server.URL

	if _, err := client.FetchModels(context.Background(), 5); err == nil {
		t.Errorf("Expected error for invalid JSON")
	}
}
