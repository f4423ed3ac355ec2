package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultTimeout         = 10 * time.Second
	defaultMailtrapBaseURL = "https://send.api.mailtrap.io/api/send"
)

// ErrNotConfigured is returned when a transport lacks credentials.
var ErrNotConfigured = errors.New("notify: api token not configured")

// MailtrapClient sends email through the Mailtrap send API.
// See https://api-docs.mailtrap.io/docs/mailtrap-api-docs/.
type MailtrapClient struct {
	APIToken   string
	BaseURL    string
	HTTPClient *http.Client
}

// NewMailtrapClient returns a client for the given API token and optional base URL.
// timeout <= 0 uses 10s.
func NewMailtrapClient(apiToken, baseURL string, timeout time.Duration) *MailtrapClient {
	if baseURL == "" {
		baseURL = defaultMailtrapBaseURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &MailtrapClient{
		APIToken:   apiToken,
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

type mailtrapAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type mailtrapRequest struct {
	From     mailtrapAddress   `json:"from"`
	To       []mailtrapAddress `json:"to"`
	Subject  string            `json:"subject"`
	HTML     string            `json:"html,omitempty"`
	Text     string            `json:"text,omitempty"`
	Category string            `json:"category,omitempty"`
}

// Send posts e to Mailtrap. Does not log the message body.
func (c *MailtrapClient) Send(ctx context.Context, e Email) error {
	if c.APIToken == "" {
		return ErrNotConfigured
	}
	raw, err := json.Marshal(mailtrapRequest{
		From:     mailtrapAddress{Email: e.From, Name: "Company Registration"},
		To:       []mailtrapAddress{{Email: e.To}},
		Subject:  e.Subject,
		HTML:     e.HTML,
		Text:     e.Text,
		Category: e.Category,
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIToken)
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("mailtrap: request failed status=%d body=%s", resp.StatusCode, string(b))
	}
	return nil
}
