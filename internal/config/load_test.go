package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vrerrors "vulnreport/internal/errors"
	"vulnreport/internal/model"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.NoError(t, err)
	assert.Empty(t, cfg.Rules)
	assert.Empty(t, cfg.Notifiers)
	assert.Empty(t, cfg.Source)
}

func TestLoad_Full(t *testing.T) {
	path := writeConfig(t, ".vuln-config.yml", `
ignore:
  rules:
    - cve: CVE-2023-001
      package: lodash
      expires: 2024-12-31
      reason: "waiting on upstream"
    - cve: CVE-2023-002
      expires: "2025-01-15T12:00:00Z"
      reason: false positive
    - cve: CVE-2023-003
      reason: never expires
notify:
  notifiers:
    - type: teams
      config:
        webhookUrl: https://example.test/teams
    - type: slack
      enabled: false
      config:
        webhookUrl: https://example.test/slack
        retries: 0
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, cfg.Source)

	require.Len(t, cfg.Rules, 3)
	assert.Equal(t, model.SuppressionRule{
		CVE:     "CVE-2023-001",
		Package: "lodash",
		Expires: time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
		Reason:  "waiting on upstream",
	}, cfg.Rules[0])
	assert.True(t, cfg.Rules[1].Expires.Equal(time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)))
	assert.False(t, cfg.Rules[2].HasExpiry())

	require.Len(t, cfg.Notifiers, 2)
	assert.Equal(t, "teams", cfg.Notifiers[0].Type)
	assert.True(t, cfg.Notifiers[0].IsEnabled())
	assert.Len(t, cfg.Notifiers[0].Config, 1)
	assert.Equal(t, "slack", cfg.Notifiers[1].Type)
	assert.False(t, cfg.Notifiers[1].IsEnabled())
}

func TestLoad_RuleValidation(t *testing.T) {
	tests := []struct {
		name     string
		rules    string
		position int
		field    string
	}{
		{"missing cve", "    - reason: r\n", 1, "cve"},
		{"missing reason", "    - cve: CVE-1\n      reason: r\n    - cve: CVE-2\n", 2, "reason"},
		{"bad expiry", "    - cve: CVE-1\n      reason: r\n      expires: next week\n", 1, "expires"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, "c.yml", "ignore:\n  rules:\n"+tt.rules)

			_, err := Load(path)
			var verr *vrerrors.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, "rule", verr.Section)
			assert.Equal(t, tt.position, verr.Position)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestLoad_NotifierValidation(t *testing.T) {
	tests := []struct {
		name      string
		notifiers string
		index     int
		field     string
	}{
		{"missing type", "    - config: {webhookUrl: x}\n", 0, "type"},
		{"missing config", "    - type: teams\n      config: {webhookUrl: x}\n    - type: slack\n", 1, "config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, "c.yml", "notify:\n  notifiers:\n"+tt.notifiers)

			_, err := Load(path)
			var verr *vrerrors.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, "notifier", verr.Section)
			assert.Equal(t, tt.index, verr.Position)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestLoad_ChannelConfigKeepsKeyCase(t *testing.T) {
	path := writeConfig(t, "c.yml", `
notify:
  notifiers:
    - type: teams
      config:
        webhookUrl: https://example.test/hook
        channelId: C123
        headers:
          X-Api-Key: secret
    - type: slack
      enabled: false
      config: {webhookUrl: https://example.test/slack}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Len(t, cfg.Notifiers, 2)

	first := cfg.Notifiers[0].Config
	assert.Equal(t, "https://example.test/hook", first["webhookUrl"])
	assert.Equal(t, "C123", first["channelId"])
	assert.NotContains(t, first, "webhookurl")
	assert.Equal(t, map[string]any{"X-Api-Key": "secret"}, first["headers"])
	assert.Equal(t, "https://example.test/slack", cfg.Notifiers[1].Config["webhookUrl"])
	assert.False(t, cfg.Notifiers[1].IsEnabled())
}

func TestLoad_NonMappingEntry(t *testing.T) {
	path := writeConfig(t, "c.yml", "ignore:\n  rules:\n    - CVE-2023-1\n")

	_, err := Load(path)
	var verr *vrerrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, err.Error(), "must be a mapping")
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "c.yml", "ignore: [unclosed\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadDefault(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadDefault(dir)
	require.NoError(t, err)
	assert.Empty(t, cfg.Source)

	second := filepath.Join(dir, ".vuln-config.yaml")
	require.NoError(t, os.WriteFile(second, []byte("ignore:\n  rules:\n    - cve: A\n      reason: r\n"), 0o644))
	cfg, err = LoadDefault(dir)
	require.NoError(t, err)
	assert.Equal(t, second, cfg.Source)
	assert.Len(t, cfg.Rules, 1)

	first := filepath.Join(dir, ".vuln-config.yml")
	require.NoError(t, os.WriteFile(first, []byte("{}\n"), 0o644))
	cfg, err = LoadDefault(dir)
	require.NoError(t, err)
	assert.Equal(t, first, cfg.Source)
	assert.Empty(t, cfg.Rules)
}

func TestParseExpiry(t *testing.T) {
	d, err := ParseExpiry("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), d)

	_, err = ParseExpiry("2024-02-30")
	assert.Error(t, err)
}

func TestWrite_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".vuln-config.yml")
	enabled := false
	f := File{
		Ignore: IgnoreSection{Rules: []RuleEntry{{CVE: "CVE-1", Expires: "2030-01-01", Reason: "accepted"}}},
		Notify: NotifySection{Notifiers: []NotifierEntry{{
			Type:    "discord",
			Enabled: &enabled,
			Config:  map[string]any{"webhookUrl": "https://example.test"},
		}}},
	}
	require.NoError(t, Write(path, f, false))
	assert.Error(t, Write(path, f, false))
	require.NoError(t, Write(path, f, true))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Len(t, cfg.Rules, 1)
	assert.Equal(t, "accepted", cfg.Rules[0].Reason)
	require.Len(t, cfg.Notifiers, 1)
	assert.False(t, cfg.Notifiers[0].IsEnabled())
}
