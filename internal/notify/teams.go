package notify

import (
	"context"
	"fmt"
	"net/http"

	"vulnreport/internal/model"
)

// TeamsSender posts an Adaptive Card to a Microsoft Teams incoming webhook.
type TeamsSender struct {
	webhookClient
}

func NewTeamsSender(client *http.Client) *TeamsSender {
	return &TeamsSender{webhookClient{Client: client}}
}

func (t *TeamsSender) Send(ctx context.Context, payload model.NotificationPayload, cfg map[string]any) error {
	s, err := ParseWebhookSettings("teams", cfg)
	if err != nil {
		return err
	}
	if err := t.postJSON(ctx, s, adaptiveCard(payload)); err != nil {
		return fmt.Errorf("failed to send teams notification: %w", err)
	}
	return nil
}

func adaptiveCard(p model.NotificationPayload) map[string]any {
	text := headline(p.Summary)
	body := []any{
		map[string]any{"type": "TextBlock", "text": p.ReportTitle, "weight": "Bolder", "size": "Large"},
		map[string]any{"type": "TextBlock", "text": text, "wrap": true, "spacing": "Medium", "color": cardColor(p.Summary)},
		map[string]any{"type": "FactSet", "facts": facts(p)},
	}
	if p.DetailsURL != "" {
		body = append(body, map[string]any{
			"type": "ActionSet",
			"actions": []any{
				map[string]any{"type": "Action.OpenUrl", "title": "View full report", "url": p.DetailsURL},
			},
		})
	}

	return map[string]any{
		"type": "message",
		"attachments": []any{
			map[string]any{
				"contentType": "application/vnd.microsoft.card.adaptive",
				"content": map[string]any{
					"type":       "AdaptiveCard",
					"version":    "1.4",
					"summary":    text,
					"themeColor": themeColor(p.Summary),
					"body":       body,
				},
			},
		},
	}
}

// cardColor maps the theme colour onto an Adaptive Card text colour.
func cardColor(s model.SeveritySummary) string {
	switch themeColor(s) {
	case colorCritical:
		return "Attention"
	case colorHigh, colorNotice:
		return "Warning"
	default:
		return "Good"
	}
}
