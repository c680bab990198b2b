// Package sink provides downstream notification targets for emitted scores.
// Delivery is best-effort: the emitter records sink failures but never fails
// an emission because of one.
package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ArnoldoM23/pess/internal/contract"
	"github.com/ArnoldoM23/pess/schema"
)

const webhookClientTimeout = 30 * time.Second

// WebhookSink posts emitted scores as JSON to a configured HTTP endpoint.
// The HTTP client is built once and reused across notifications.
type WebhookSink struct {
	url    string
	client *http.Client
}

var _ contract.NotifySink = &WebhookSink{} // Compile-time check

// NewWebhookSink creates a webhook sink for the given URL. An empty URL
// produces a disabled sink.
func NewWebhookSink(url string) *WebhookSink {
	return &WebhookSink{
		url: url,
		client: &http.Client{
			// Outer bound only; the per-notification context carries the
			// delivery timeout.
			Timeout: webhookClientTimeout,
		},
	}
}

// Name implements the NotifySink interface.
func (s *WebhookSink) Name() string {
	return "webhook"
}

// Enabled implements the NotifySink interface.
func (s *WebhookSink) Enabled() bool {
	return s.url != ""
}

// Notify implements the NotifySink interface.
func (s *WebhookSink) Notify(ctx context.Context, n *schema.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook delivery failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	// Drain so the connection can be reused
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("webhook returned http %d", resp.StatusCode)
	}
	return nil
}
