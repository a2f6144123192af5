package notify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vulnreport/internal/config"
	vrerrors "vulnreport/internal/errors"
	"vulnreport/internal/model"
)

type countingSender struct {
	calls atomic.Int32
	err   error
	delay time.Duration
}

func (c *countingSender) Send(ctx context.Context, _ model.NotificationPayload, _ map[string]any) error {
	c.calls.Add(1)
	if c.delay > 0 {
		time.Sleep(c.delay)
	}
	return c.err
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func boolPtr(b bool) *bool { return &b }

func TestDispatch_NoEnabledChannels(t *testing.T) {
	s := &countingSender{}
	d := NewDispatcher(WithLogger(quietLogger()))
	d.Register("a", s)

	err := d.Dispatch(context.Background(), model.NotificationPayload{}, nil)
	require.NoError(t, err)

	err = d.Dispatch(context.Background(), model.NotificationPayload{}, []model.NotifierConfig{
		{Type: "a", Config: map[string]any{}, Enabled: boolPtr(false)},
		{Type: "unregistered", Config: map[string]any{}, Enabled: boolPtr(false)},
	})
	require.NoError(t, err)
	assert.Zero(t, s.calls.Load())
}

func TestDispatch_SkipsDisabled(t *testing.T) {
	a, b, c := &countingSender{}, &countingSender{}, &countingSender{}
	d := NewDispatcher(WithLogger(quietLogger()))
	d.Register("a", a)
	d.Register("b", b)
	d.Register("c", c)

	err := d.Dispatch(context.Background(), model.NotificationPayload{}, []model.NotifierConfig{
		{Type: "a", Config: map[string]any{}},
		{Type: "b", Config: map[string]any{}, Enabled: boolPtr(false)},
		{Type: "c", Config: map[string]any{}, Enabled: boolPtr(true)},
	})

	require.NoError(t, err)
	assert.EqualValues(t, 1, a.calls.Load())
	assert.EqualValues(t, 0, b.calls.Load())
	assert.EqualValues(t, 1, c.calls.Load())
}

func TestDispatch_FailureDoesNotBlockOthers(t *testing.T) {
	for failAt := 0; failAt < 3; failAt++ {
		senders := []*countingSender{{}, {}, {}}
		senders[failAt].err = errors.New("boom")

		d := NewDispatcher(WithLogger(quietLogger()))
		configs := make([]model.NotifierConfig, 0, len(senders))
		for i, s := range senders {
			name := string(rune('a' + i))
			d.Register(name, s)
			configs = append(configs, model.NotifierConfig{Type: name, Config: map[string]any{}})
		}

		err := d.Dispatch(context.Background(), model.NotificationPayload{}, configs)
		require.Error(t, err)

		for i, s := range senders {
			assert.EqualValues(t, 1, s.calls.Load(), "sender %d with failure at %d", i, failAt)
		}

		var dispatchErr *vrerrors.DispatchError
		require.ErrorAs(t, err, &dispatchErr)
		require.Len(t, dispatchErr.Failures, 1)

		var sendErr *vrerrors.ChannelSendError
		require.ErrorAs(t, err, &sendErr)
		assert.Equal(t, string(rune('a'+failAt)), sendErr.Channel)
		assert.Equal(t, failAt, sendErr.Index)
		assert.EqualError(t, sendErr.Err, "boom")
	}
}

func TestDispatch_RunsConcurrently(t *testing.T) {
	d := NewDispatcher(WithLogger(quietLogger()))
	var configs []model.NotifierConfig
	for _, name := range []string{"a", "b", "c", "d"} {
		d.Register(name, &countingSender{delay: 200 * time.Millisecond})
		configs = append(configs, model.NotifierConfig{Type: name, Config: map[string]any{}})
	}

	start := time.Now()
	require.NoError(t, d.Dispatch(context.Background(), model.NotificationPayload{}, configs))
	assert.Less(t, time.Since(start), 700*time.Millisecond)
}

func TestDispatch_UnknownChannel(t *testing.T) {
	known := &countingSender{}
	d := NewDispatcher(WithLogger(quietLogger()))
	d.Register("teams", known)
	d.Register("slack", &countingSender{})

	err := d.Dispatch(context.Background(), model.NotificationPayload{}, []model.NotifierConfig{
		{Type: "teams", Config: map[string]any{}},
		{Type: "pager", Config: map[string]any{}},
	})

	var unknown *vrerrors.UnknownChannelError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "pager", unknown.Type)
	assert.Equal(t, []string{"slack", "teams"}, unknown.Registered)
	assert.Contains(t, err.Error(), `"pager"`)
	assert.EqualValues(t, 1, known.calls.Load())
}

func TestDispatch_ObserverSeesEveryOutcome(t *testing.T) {
	var (
		mu      sync.Mutex
		results = map[string]error{}
	)
	d := NewDispatcher(
		WithLogger(quietLogger()),
		WithObserver(func(channel string, err error) {
			mu.Lock()
			defer mu.Unlock()
			results[channel] = err
		}),
	)
	d.Register("ok", &countingSender{})
	d.Register("bad", &countingSender{err: errors.New("nope")})

	err := d.Dispatch(context.Background(), model.NotificationPayload{}, []model.NotifierConfig{
		{Type: "ok", Config: map[string]any{}},
		{Type: "bad", Config: map[string]any{}},
	})
	require.Error(t, err)

	require.Contains(t, results, "ok")
	assert.NoError(t, results["ok"])
	assert.EqualError(t, results["bad"], "nope")
}

func TestDispatch_PassesConfigThrough(t *testing.T) {
	var got map[string]any
	d := NewDispatcher(WithLogger(quietLogger()))
	d.Register("fn", SenderFunc(func(_ context.Context, p model.NotificationPayload, cfg map[string]any) error {
		got = cfg
		assert.Equal(t, "Nightly scan", p.ReportTitle)
		return nil
	}))

	cfg := map[string]any{"webhookUrl": "https://example.test"}
	err := d.Dispatch(context.Background(), model.NotificationPayload{ReportTitle: "Nightly scan"},
		[]model.NotifierConfig{{Type: "fn", Config: cfg}})

	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestDispatch_LoadedConfigReachesCustomSender(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".vuln-config.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
notify:
  notifiers:
    - type: pager
      config:
        webhookUrl: https://example.test/hook
        channelId: C123
`), 0o644))
	cfg, err := config.Load(path)
	require.NoError(t, err)

	var url, channel any
	d := NewDispatcher(WithLogger(quietLogger()))
	d.Register("pager", SenderFunc(func(_ context.Context, _ model.NotificationPayload, cfg map[string]any) error {
		url, channel = cfg["webhookUrl"], cfg["channelId"]
		return nil
	}))

	require.NoError(t, d.Dispatch(context.Background(), model.NotificationPayload{}, cfg.Notifiers))
	assert.Equal(t, "https://example.test/hook", url)
	assert.Equal(t, "C123", channel)
}

func TestNewDefaultDispatcher_Channels(t *testing.T) {
	d := NewDefaultDispatcher(WithLogger(quietLogger()))
	assert.Equal(t, []string{"discord", "slack", "teams", "webhook"}, d.Channels())
}
