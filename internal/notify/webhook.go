package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"lantern/internal/observability/metrics"
)

// WebhookNotifier posts run summaries to a chat webhook.
type WebhookNotifier struct {
	url    string
	tpl    *Template
	client *http.Client
}

type webhookPayload struct {
	MsgType string      `json:"msgtype"`
	Text    webhookText `json:"text"`
	Run     RunMessage  `json:"run"`
}

type webhookText struct {
	Content string `json:"content"`
}

// NewWebhookNotifier constructs a notifier. A nil template uses DefaultTemplate.
func NewWebhookNotifier(url string, tpl *Template) (*WebhookNotifier, error) {
	if url == "" {
		return nil, errors.New("webhook notifier: empty url")
	}
	if tpl == nil {
		var err error
		if tpl, err = NewTemplate(""); err != nil {
			return nil, err
		}
	}
	return &WebhookNotifier{
		url:    url,
		tpl:    tpl,
		client: &http.Client{Timeout: 10 * time.Second},
	}, nil
}

// Notify sends a run summary to the webhook.
func (n *WebhookNotifier) Notify(ctx context.Context, msg RunMessage) error {
	err := n.send(ctx, msg)
	result := metrics.ResultSuccess
	if err != nil {
		result = metrics.ResultError
	}
	metrics.IncNotify("webhook", result)
	return err
}

func (n *WebhookNotifier) send(ctx context.Context, msg RunMessage) error {
	if n == nil || n.url == "" {
		return errors.New("webhook notifier: empty url")
	}
	content, err := n.tpl.Render(msg)
	if err != nil {
		return err
	}
	payload := webhookPayload{
		MsgType: "text",
		Text:    webhookText{Content: strings.TrimSpace(content)},
		Run:     msg,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return errors.New("webhook notifier: non-2xx")
	}
	return nil
}
