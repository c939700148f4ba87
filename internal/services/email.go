package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// EmailSender delivers transactional mail. The waitlist flow treats delivery
// as best-effort, so implementations should fail fast rather than retry.
type EmailSender interface {
	Send(ctx context.Context, to, subject, html string) error
}

// EmailClient posts through a Resend-compatible HTTP API.
type EmailClient struct {
	endpoint   string
	apiKey     string
	from       string
	httpClient *http.Client
	log        *zap.Logger
}

func NewEmailClient(endpoint, apiKey, from string, log *zap.Logger) *EmailClient {
	return &EmailClient{
		endpoint: strings.TrimRight(endpoint, "/"),
		apiKey:   apiKey,
		from:     from,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: log,
	}
}

func (c *EmailClient) Send(ctx context.Context, to, subject, html string) error {
	if c.apiKey == "" {
		return fmt.Errorf("email delivery is not configured")
	}

	body, err := json.Marshal(map[string]any{
		"from":    c.from,
		"to":      []string{to},
		"subject": subject,
		"html":    html,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/emails", strings.NewReader(string(body)))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("email service unavailable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("email service returned %d: %s", resp.StatusCode, string(b))
	}
	return nil
}
