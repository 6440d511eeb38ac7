package twitter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testCreds() Credentials {
	return Credentials{
		ConsumerKey:    "ck",
		ConsumerSecret: "cs",
		AccessToken:    "at",
		AccessSecret:   "as",
	}
}

func TestOAuth1SenderSend(t *testing.T) {
	var got createTweetRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); auth == "" {
			t.Errorf("Expected OAuth1 Authorization header")
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"data": {"id": "1234567890", "text": "hello"}}`))
	}))
	defer server.Close()

	sender, err := NewOAuth1Sender(testCreds())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	sender.baseURL = server.URL

	url, id, err := sender.Send(context.Background(), "hello", "")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if id != "1234567890" {
		t.Errorf("Unexpected tweet id: %q", id)
	}
	if url != "https://twitter.com/i/web/status/1234567890" {
		t.Errorf("Unexpected tweet URL: %q", url)
	}
	if got.Text != "hello" || got.Reply != nil {
		t.Errorf("Unexpected request payload: %+v", got)
	}
}

func TestOAuth1SenderSendReply(t *testing.T) {
	var got createTweetRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"data": {"id": "2", "text": "reply"}}`))
	}))
	defer server.Close()

	sender, _ := NewOAuth1Sender(testCreds())
	sender.baseURL = server.URL

	if _, _, err := sender.Send(context.Background(), "reply", "1"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got.Reply == nil || got.Reply.InReplyToTweetID != "1" {
		t.Errorf("Expected reply threading, got %+v", got.Reply)
	}
}

func TestOAuth1SenderSendAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"title": "Forbidden"}`, http.StatusForbidden)
	}))
	defer server.Close()

	sender, _ := NewOAuth1Sender(testCreds())
	sender.baseURL = server.URL

	if _, _, err := sender.Send(context.Background(), "nope", ""); err == nil {
		t.Fatalf("Expected error for 403 response")
	}
}

func TestNewOAuth1SenderValidation(t *testing.T) {
	creds := testCreds()
	creds.AccessSecret = ""

	if _, err := NewOAuth1Sender(creds); err == nil {
		t.Errorf("Expected error with incomplete credentials")
	}
}

func TestDrySender(t *testing.T) {
	var d DrySender

	url1, id1, err := d.Send(context.Background(), "first", "")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	_, id2, _ := d.Send(context.Background(), "second", id1)

	if id1 == id2 {
		t.Errorf("Expected distinct dry-run ids")
	}
	if url1 != "https://twitter.com/i/web/status/"+id1 {
		t.Errorf("Unexpected dry-run URL: %q", url1)
	}
}
