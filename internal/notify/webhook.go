package notify

import (
	"context"
	"fmt"
	"net/http"

	"vulnreport/internal/model"
)

// WebhookSender posts the payload itself as JSON to an arbitrary URL.
type WebhookSender struct {
	webhookClient
}

func NewWebhookSender(client *http.Client) *WebhookSender {
	return &WebhookSender{webhookClient{Client: client}}
}

type webhookBody struct {
	model.NotificationPayload
	Headline   string `json:"headline"`
	Blocking   bool   `json:"blocking"`
	TotalCount int    `json:"total"`
}

func (w *WebhookSender) Send(ctx context.Context, payload model.NotificationPayload, cfg map[string]any) error {
	s, err := ParseWebhookSettings("webhook", cfg)
	if err != nil {
		return err
	}
	body := webhookBody{
		NotificationPayload: payload,
		Headline:            headline(payload.Summary),
		Blocking:            payload.Summary.HasBlockingFindings(),
		TotalCount:          payload.Summary.Totals().Total,
	}
	if err := w.postJSON(ctx, s, body); err != nil {
		return fmt.Errorf("failed to send webhook notification: %w", err)
	}
	return nil
}
