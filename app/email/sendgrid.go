package email

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

const sendgridSendURL = "https://api.sendgrid.com/v3/mail/send"

// SendGridSender delivers digests through the SendGrid v3 REST API.
type SendGridSender struct {
	apiKey   string
	baseURL  string
	client   *http.Client
	renderer *Renderer
}

func NewSendGridSender(apiKey string, renderer *Renderer) (*SendGridSender, error) {
	if apiKey == "" {
		return nil, errors.New("sendgrid api key required")
	}

	return &SendGridSender{
		apiKey:   apiKey,
		baseURL:  sendgridSendURL,
		client:   &http.Client{Timeout: 30 * time.Second},
		renderer: renderer,
	}, nil
}

type sendgridAddress struct {
	Email string `json:"email"`
}

type sendgridContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type sendgridPersonalization struct {
	To []sendgridAddress `json:"to"`
}

type sendgridRequest struct {
	Personalizations []sendgridPersonalization `json:"personalizations"`
	From             sendgridAddress           `json:"from"`
	Subject          string                    `json:"subject"`
	Content          []sendgridContent         `json:"content"`
}

func (s *SendGridSender) SendDigest(ctx context.Context, digest content.Digest, to, from string) error {
	date, err := time.Parse("2006-01-02", digest.Date)
	if err != nil {
		date = time.Now()
	}

	payload := sendgridRequest{
		Personalizations: []sendgridPersonalization{{To: []sendgridAddress{{Email: to}}}},
		From:             sendgridAddress{Email: from},
		Subject:          Subject(date),
		Content:          []sendgridContent{{Type: "text/html", Value: s.renderer.Render(digest)}},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode sendgrid request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("sendgrid request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("sendgrid returned status %d: %s", resp.StatusCode, data)
	}

	slog.Info("Digest email sent", "transport", "sendgrid", "to", to, "status", resp.StatusCode)
	return nil
}
