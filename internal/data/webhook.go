package data

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/zeksm/telegram-to-sql/internal/biz/domain"
	"github.com/zeksm/telegram-to-sql/internal/biz/repo"
)

// Webhook posts event summaries to a configured endpoint, best
// effort: failures are logged by the caller, never retried.
type Webhook struct {
	endpoint string
	client   *http.Client
}

// NewWebhook creates the notifier. An empty endpoint returns nil,
// which disables notification entirely.
func NewWebhook(endpoint string) *Webhook {
	if endpoint == "" {
		return nil
	}
	return &Webhook{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Notify posts the composed summary as a single form field. The
// response body is not interpreted beyond the status code.
func (w *Webhook) Notify(ctx context.Context, category domain.Category, chat, sender, body string) error {
	text := "New " + string(category) + " message in " + chat
	if sender != "" {
		text += " from " + sender
	}
	text += "\n\n" + body

	form := url.Values{"value1": {text}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.endpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to build notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("notification endpoint returned %s", resp.Status)
	}
	return nil
}

var _ repo.Notifier = (*Webhook)(nil)
