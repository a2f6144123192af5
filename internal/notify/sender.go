// Package notify fans a scan summary out to notification channels.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/sethvargo/go-retry"

	"vulnreport/internal/model"
)

const (
	defaultRetries = 2
	defaultTimeout = 10 * time.Second
	defaultBackoff = 500 * time.Millisecond
)

// Sender delivers a payload to one channel. cfg is the channel's config
// mapping from the configuration file with its keys as written. Senders
// must not modify it.
type Sender interface {
	Send(ctx context.Context, payload model.NotificationPayload, cfg map[string]any) error
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, payload model.NotificationPayload, cfg map[string]any) error

func (f SenderFunc) Send(ctx context.Context, payload model.NotificationPayload, cfg map[string]any) error {
	return f(ctx, payload, cfg)
}

// WebhookSettings are the options every webhook based channel accepts.
// Keys match case-insensitively, since the config loader lower-cases them.
type WebhookSettings struct {
	WebhookURL string            `mapstructure:"webhookUrl"`
	Retries    *int              `mapstructure:"retries"`
	Timeout    time.Duration     `mapstructure:"timeout"`
	Backoff    time.Duration     `mapstructure:"backoff"`
	Headers    map[string]string `mapstructure:"headers"`
	Username   string            `mapstructure:"username"`
}

// ParseWebhookSettings decodes cfg and applies defaults.
func ParseWebhookSettings(channel string, cfg map[string]any) (WebhookSettings, error) {
	var s WebhookSettings
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &s,
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return s, err
	}
	if err := dec.Decode(cfg); err != nil {
		return s, fmt.Errorf("invalid %s config: %w", channel, err)
	}
	if s.WebhookURL == "" {
		return s, fmt.Errorf("%s webhook URL is not configured", channel)
	}
	if s.Retries == nil {
		n := defaultRetries
		s.Retries = &n
	}
	if *s.Retries < 0 {
		return s, fmt.Errorf("invalid %s config: retries must not be negative", channel)
	}
	if s.Timeout <= 0 {
		s.Timeout = defaultTimeout
	}
	if s.Backoff <= 0 {
		s.Backoff = defaultBackoff
	}
	return s, nil
}

// StatusError reports a non-2xx webhook response.
type StatusError struct {
	Code   int
	Status string
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("unexpected status %s: %s", e.Status, e.Body)
	}
	return fmt.Sprintf("unexpected status %s", e.Status)
}

func (e *StatusError) retryable() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

// webhookClient posts JSON bodies with bounded retries.
type webhookClient struct {
	// Client overrides the per-channel client built from the timeout.
	Client *http.Client
}

func (w webhookClient) httpClient(s WebhookSettings) *http.Client {
	if w.Client != nil {
		return w.Client
	}
	return &http.Client{Timeout: s.Timeout}
}

// withRetry runs fn until it succeeds, returns a permanent error, or the
// channel's retry budget runs out.
func withRetry(ctx context.Context, s WebhookSettings, fn func(ctx context.Context) error) error {
	b := retry.WithMaxRetries(uint64(*s.Retries), retry.NewExponential(s.Backoff))
	return retry.Do(ctx, b, fn)
}

func (w webhookClient) postJSON(ctx context.Context, s WebhookSettings, body any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}
	client := w.httpClient(s)

	return withRetry(ctx, s, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.WebhookURL, bytes.NewReader(data))
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		for k, v := range s.Headers {
			req.Header.Set(k, v)
		}

		resp, err := client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return err
			}
			return retry.RetryableError(err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			_, _ = io.Copy(io.Discard, resp.Body)
			return nil
		}
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		serr := &StatusError{Code: resp.StatusCode, Status: resp.Status, Body: string(bytes.TrimSpace(snippet))}
		if serr.retryable() {
			return retry.RetryableError(serr)
		}
		return serr
	})
}
