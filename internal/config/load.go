// Package config loads suppression rules and notification channels from
// the project's vulnerability config file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	vrerrors "vulnreport/internal/errors"
	"vulnreport/internal/model"
)

// DefaultPaths are probed in order when no config file is given.
var DefaultPaths = []string{".vuln-config.yml", ".vuln-config.yaml"}

const dateLayout = "2006-01-02"

// Config is the validated content of a config file.
type Config struct {
	Rules     []model.SuppressionRule
	Notifiers []model.NotifierConfig
	// Source is the file the config was read from, empty when none existed.
	Source string
}

// rawFile keeps list entries untyped so each one can be validated on its
// own and reported by position.
type rawFile struct {
	Ignore struct {
		Rules []any `mapstructure:"rules"`
	} `mapstructure:"ignore"`
	Notify struct {
		Notifiers []any `mapstructure:"notifiers"`
	} `mapstructure:"notify"`
}

// channelFile reads notifier entries with their key case intact. Viper
// folds every key to lower case, channel configs must reach senders as
// written.
type channelFile struct {
	Notify struct {
		Notifiers []any `yaml:"notifiers"`
	} `yaml:"notify"`
}

// Load reads and validates the config file at path. A missing file is not
// an error and yields an empty Config.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var raw rawFile
	if err := v.Unmarshal(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode config file %s: %w", path, err)
	}

	configs, err := readChannelConfigs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to decode config file %s: %w", path, err)
	}

	cfg, err := build(raw, configs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.Source = path
	return cfg, nil
}

// LoadDefault loads the first of DefaultPaths that exists in dir.
func LoadDefault(dir string) (*Config, error) {
	if path, ok := Find(dir); ok {
		return Load(path)
	}
	return &Config{}, nil
}

// Find returns the first default config file present in dir.
func Find(dir string) (string, bool) {
	for _, name := range DefaultPaths {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
	}
	return "", false
}

// readChannelConfigs returns the config mapping of each notifier entry by
// position, nil where the entry has none.
func readChannelConfigs(path string) ([]map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f channelFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	configs := make([]map[string]any, len(f.Notify.Notifiers))
	for i, entry := range f.Notify.Notifiers {
		m, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		if c, ok := m["config"].(map[string]any); ok {
			configs[i] = c
		}
	}
	return configs, nil
}

func build(raw rawFile, configs []map[string]any) (*Config, error) {
	cfg := &Config{
		Rules:     make([]model.SuppressionRule, 0, len(raw.Ignore.Rules)),
		Notifiers: make([]model.NotifierConfig, 0, len(raw.Notify.Notifiers)),
	}

	for i, entry := range raw.Ignore.Rules {
		rule, err := parseRule(i+1, entry)
		if err != nil {
			return nil, err
		}
		cfg.Rules = append(cfg.Rules, rule)
	}

	for i, entry := range raw.Notify.Notifiers {
		n, err := parseNotifier(i, entry)
		if err != nil {
			return nil, err
		}
		if i < len(configs) && configs[i] != nil {
			n.Config = configs[i]
		}
		cfg.Notifiers = append(cfg.Notifiers, n)
	}
	return cfg, nil
}

// parseRule validates one rule; position is 1-based.
func parseRule(position int, entry any) (model.SuppressionRule, error) {
	var r RuleEntry
	if err := decodeEntry(entry, &r); err != nil {
		return model.SuppressionRule{}, vrerrors.NewValidationError("rule", position, "", err.Error())
	}
	if strings.TrimSpace(r.CVE) == "" {
		return model.SuppressionRule{}, vrerrors.NewValidationError("rule", position, "cve", "is required")
	}
	if strings.TrimSpace(r.Reason) == "" {
		return model.SuppressionRule{}, vrerrors.NewValidationError("rule", position, "reason", "is required")
	}

	rule := model.SuppressionRule{CVE: r.CVE, Package: r.Package, Reason: r.Reason}
	if r.Expires != "" {
		expires, err := ParseExpiry(r.Expires)
		if err != nil {
			return model.SuppressionRule{}, vrerrors.NewValidationError("rule", position, "expires", err.Error())
		}
		rule.Expires = expires
	}
	return rule, nil
}

// parseNotifier validates one channel entry; index is 0-based.
func parseNotifier(index int, entry any) (model.NotifierConfig, error) {
	var n NotifierEntry
	if err := decodeEntry(entry, &n); err != nil {
		return model.NotifierConfig{}, vrerrors.NewValidationError("notifier", index, "", err.Error())
	}
	if strings.TrimSpace(n.Type) == "" {
		return model.NotifierConfig{}, vrerrors.NewValidationError("notifier", index, "type", "is required")
	}
	if n.Config == nil {
		return model.NotifierConfig{}, vrerrors.NewValidationError("notifier", index, "config", "is required")
	}
	return model.NotifierConfig{Type: n.Type, Config: n.Config, Enabled: n.Enabled}, nil
}

// ParseExpiry accepts a calendar date or an RFC 3339 timestamp.
func ParseExpiry(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("must be a date (YYYY-MM-DD) or RFC 3339 timestamp, got %q", s)
}

func decodeEntry(entry any, out any) error {
	if entry == nil {
		return errors.New("entry is empty")
	}
	if _, ok := entry.(map[string]any); !ok {
		return fmt.Errorf("must be a mapping, got %T", entry)
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		DecodeHook:       timeToDateHook,
	})
	if err != nil {
		return err
	}
	return dec.Decode(entry)
}

// timeToDateHook turns YAML timestamps back into text so unquoted dates
// and quoted ones are handled alike.
func timeToDateHook(from, to reflect.Type, data any) (any, error) {
	if to.Kind() != reflect.String {
		return data, nil
	}
	t, ok := data.(time.Time)
	if !ok {
		return data, nil
	}
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format(dateLayout), nil
	}
	return t.Format(time.RFC3339), nil
}
