package notify

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"sync"

	"github.com/sourcegraph/conc/pool"

	vrerrors "vulnreport/internal/errors"
	"vulnreport/internal/model"
)

// Channel types registered by NewDefaultDispatcher.
const (
	ChannelTeams   = "teams"
	ChannelSlack   = "slack"
	ChannelDiscord = "discord"
	ChannelWebhook = "webhook"
)

// Observer is told the outcome of every channel send. err is nil on success.
// It is called from the sending goroutines, possibly concurrently.
type Observer func(channel string, err error)

// Dispatcher sends a payload to every enabled channel at once.
type Dispatcher struct {
	mu      sync.RWMutex
	senders map[string]Sender

	logger   *slog.Logger
	observer Observer
	client   *http.Client
}

type Option func(*Dispatcher)

func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = l
	}
}

func WithObserver(o Observer) Option {
	return func(d *Dispatcher) {
		d.observer = o
	}
}

// WithHTTPClient makes the built-in senders share client instead of
// building one per channel from its timeout.
func WithHTTPClient(c *http.Client) Option {
	return func(d *Dispatcher) {
		d.client = c
	}
}

// NewDispatcher returns a dispatcher with no channels registered.
func NewDispatcher(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		senders: make(map[string]Sender),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// NewDefaultDispatcher registers the teams, slack, discord and webhook senders.
func NewDefaultDispatcher(opts ...Option) *Dispatcher {
	d := NewDispatcher(opts...)
	d.Register(ChannelTeams, NewTeamsSender(d.client))
	d.Register(ChannelSlack, NewSlackSender(d.client))
	d.Register(ChannelDiscord, NewDiscordSender(d.client))
	d.Register(ChannelWebhook, NewWebhookSender(d.client))
	return d
}

// Register adds or replaces the sender for a channel type.
func (d *Dispatcher) Register(channel string, s Sender) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.senders[channel] = s
}

// Lookup returns the sender for channel or an UnknownChannelError.
func (d *Dispatcher) Lookup(channel string) (Sender, error) {
	d.mu.RLock()
	s, ok := d.senders[channel]
	d.mu.RUnlock()
	if !ok {
		return nil, &vrerrors.UnknownChannelError{Type: channel, Registered: d.Channels()}
	}
	return s, nil
}

// Channels returns the registered channel types, sorted.
func (d *Dispatcher) Channels() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]string, 0, len(d.senders))
	for name := range d.senders {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Dispatch sends payload to every config whose Enabled is not false. All
// sends run concurrently and Dispatch waits for all of them; a failing
// channel never stops another from being attempted and nothing already
// sent is undone. Unregistered types are only discovered when their turn
// comes. Failures are returned together as a *errors.DispatchError.
func (d *Dispatcher) Dispatch(ctx context.Context, payload model.NotificationPayload, configs []model.NotifierConfig) error {
	enabled := make([]model.NotifierConfig, 0, len(configs))
	for _, c := range configs {
		if c.IsEnabled() {
			enabled = append(enabled, c)
		}
	}
	if len(enabled) == 0 {
		d.logger.Debug("no notification channels enabled")
		return nil
	}

	var (
		mu       sync.Mutex
		failures []error
	)
	p := pool.New().WithContext(ctx)
	for i, cfg := range enabled {
		p.Go(func(ctx context.Context) error {
			err := d.send(ctx, i, cfg, payload)
			if err != nil {
				mu.Lock()
				failures = append(failures, err)
				mu.Unlock()
			}
			return err
		})
	}
	if err := p.Wait(); err == nil {
		return nil
	}
	return &vrerrors.DispatchError{Failures: failures}
}

func (d *Dispatcher) send(ctx context.Context, index int, cfg model.NotifierConfig, payload model.NotificationPayload) error {
	logger := d.logger.With("channel", cfg.Type, "index", index)

	sender, err := d.Lookup(cfg.Type)
	if err != nil {
		logger.Error("notification channel not registered", "error", err)
		d.observe(cfg.Type, err)
		return err
	}

	if err := sender.Send(ctx, payload, cfg.Config); err != nil {
		logger.Error("notification failed", "error", err)
		d.observe(cfg.Type, err)
		return &vrerrors.ChannelSendError{Channel: cfg.Type, Index: index, Err: err}
	}

	logger.Info("notification sent")
	d.observe(cfg.Type, nil)
	return nil
}

func (d *Dispatcher) observe(channel string, err error) {
	if d.observer != nil {
		d.observer(channel, err)
	}
}
