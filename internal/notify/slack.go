package notify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/slack-go/slack"

	"vulnreport/internal/model"
)

// SlackSender posts to a Slack incoming webhook.
type SlackSender struct {
	webhookClient
}

func NewSlackSender(client *http.Client) *SlackSender {
	return &SlackSender{webhookClient{Client: client}}
}

func (s *SlackSender) Send(ctx context.Context, payload model.NotificationPayload, cfg map[string]any) error {
	settings, err := ParseWebhookSettings("slack", cfg)
	if err != nil {
		return err
	}
	msg := slackMessage(payload, settings.Username)
	client := s.httpClient(settings)

	err = withRetry(ctx, settings, func(ctx context.Context) error {
		err := slack.PostWebhookCustomHTTPContext(ctx, settings.WebhookURL, client, msg)
		if err == nil || ctx.Err() != nil {
			return err
		}
		var status slack.StatusCodeError
		if errors.As(err, &status) && status.Code != http.StatusTooManyRequests && status.Code < 500 {
			return err
		}
		return retry.RetryableError(err)
	})
	if err != nil {
		return fmt.Errorf("failed to send slack notification: %w", err)
	}
	return nil
}

func slackMessage(p model.NotificationPayload, username string) *slack.WebhookMessage {
	fields := make([]slack.AttachmentField, 0, len(model.Severities))
	for _, sev := range model.Severities {
		fields = append(fields, slack.AttachmentField{
			Title: severityLabel(sev),
			Value: countLine(p.Summary.Counts(sev)),
			Short: true,
		})
	}

	return &slack.WebhookMessage{
		Username: username,
		Text:     headline(p.Summary),
		Attachments: []slack.Attachment{{
			Color:     "#" + themeColor(p.Summary),
			Title:     p.ReportTitle,
			TitleLink: p.DetailsURL,
			Fields:    fields,
			Footer:    "vulnreport · " + scanTime(p).Format(time.RFC1123),
		}},
	}
}
