package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/weeklyreport/weeklyreport/internal/config"
)

// Notifier posts reminders to every configured webhook.
type Notifier struct {
	webhooks []config.WebhookConfig
	client   *http.Client
}

// New returns a Notifier for webhooks. A nil client gets a 10s timeout.
func New(webhooks []config.WebhookConfig, client *http.Client) *Notifier {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Notifier{webhooks: webhooks, client: client}
}

// Remind delivers message to all targets. Per-target failures are logged and
// joined into the returned error; one failure does not stop the others.
func (n *Notifier) Remind(ctx context.Context, missing []string, message string) error {
	if len(missing) == 0 {
		slog.Debug("notify: nobody missing, nothing sent")
		return nil
	}

	var errs []error
	for _, wh := range n.webhooks {
		url := wh.URL()
		if url == "" {
			slog.Warn("notify: webhook url not set, skipping", "type", wh.Type, "url_env", wh.URLEnv)
			continue
		}

		var body []byte
		switch wh.Type {
		case "slack":
			body = slackPayload(message)
		case "teams":
			body = teamsPayload(missing, message)
		case "http":
			body = httpPayload(missing, message)
		default:
			slog.Warn("notify: unknown webhook type, skipping", "type", wh.Type)
			continue
		}

		if err := n.post(ctx, url, body); err != nil {
			slog.Error("notify: webhook delivery failed", "type", wh.Type, "err", err)
			errs = append(errs, fmt.Errorf("%s webhook: %w", wh.Type, err))
			continue
		}
		slog.Debug("notify: webhook delivered", "type", wh.Type, "missing", len(missing))
	}
	return errors.Join(errs...)
}

func slackPayload(message string) []byte {
	body, _ := json.Marshal(map[string]string{"text": message})
	return body
}

func teamsPayload(missing []string, message string) []byte {
	body, _ := json.Marshal(map[string]interface{}{
		"@type":      "MessageCard",
		"@context":   "http://schema.org/extensions",
		"themeColor": "FFAB40",
		"summary":    fmt.Sprintf("%d weekly reports missing", len(missing)),
		"title":      "Weekly report reminder",
		"text":       message,
	})
	return body
}

func httpPayload(missing []string, message string) []byte {
	body, _ := json.Marshal(map[string]interface{}{
		"missing": missing,
		"message": message,
	})
	return body
}

func (n *Notifier) post(ctx context.Context, url string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("http post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned HTTP %d", resp.StatusCode)
	}
	return nil
}
