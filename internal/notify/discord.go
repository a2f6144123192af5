package notify

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"vulnreport/internal/model"
)

// DiscordSender posts an embed to a Discord webhook.
type DiscordSender struct {
	webhookClient
}

func NewDiscordSender(client *http.Client) *DiscordSender {
	return &DiscordSender{webhookClient{Client: client}}
}

type discordMessage struct {
	Username string         `json:"username,omitempty"`
	Content  string         `json:"content"`
	Embeds   []discordEmbed `json:"embeds"`
}

type discordEmbed struct {
	Title     string         `json:"title"`
	URL       string         `json:"url,omitempty"`
	Color     int            `json:"color"`
	Fields    []discordField `json:"fields"`
	Timestamp string         `json:"timestamp"`
}

type discordField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

func (d *DiscordSender) Send(ctx context.Context, payload model.NotificationPayload, cfg map[string]any) error {
	s, err := ParseWebhookSettings("discord", cfg)
	if err != nil {
		return err
	}
	if err := d.postJSON(ctx, s, discordPayload(payload, s.Username)); err != nil {
		return fmt.Errorf("failed to send discord notification: %w", err)
	}
	return nil
}

func discordPayload(p model.NotificationPayload, username string) discordMessage {
	fields := make([]discordField, 0, len(model.Severities))
	for _, sev := range model.Severities {
		fields = append(fields, discordField{
			Name:   severityLabel(sev),
			Value:  countLine(p.Summary.Counts(sev)),
			Inline: true,
		})
	}
	color, _ := strconv.ParseInt(themeColor(p.Summary), 16, 32)

	return discordMessage{
		Username: username,
		Content:  headline(p.Summary),
		Embeds: []discordEmbed{{
			Title:     p.ReportTitle,
			URL:       p.DetailsURL,
			Color:     int(color),
			Fields:    fields,
			Timestamp: scanTime(p).UTC().Format("2006-01-02T15:04:05Z"),
		}},
	}
}
