package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the on-disk shape of the configuration file.
type File struct {
	Ignore IgnoreSection `yaml:"ignore" mapstructure:"ignore"`
	Notify NotifySection `yaml:"notify" mapstructure:"notify"`
}

type IgnoreSection struct {
	Rules []RuleEntry `yaml:"rules" mapstructure:"rules"`
}

type NotifySection struct {
	Notifiers []NotifierEntry `yaml:"notifiers" mapstructure:"notifiers"`
}

type RuleEntry struct {
	CVE     string `yaml:"cve" mapstructure:"cve"`
	Package string `yaml:"package,omitempty" mapstructure:"package"`
	// Expires is YYYY-MM-DD or an RFC 3339 timestamp.
	Expires string `yaml:"expires,omitempty" mapstructure:"expires"`
	Reason  string `yaml:"reason" mapstructure:"reason"`
}

type NotifierEntry struct {
	Type    string         `yaml:"type" mapstructure:"type"`
	Enabled *bool          `yaml:"enabled,omitempty" mapstructure:"enabled"`
	Config  map[string]any `yaml:"config" mapstructure:"config"`
}

// Write encodes f as YAML to path. Existing files are only replaced when
// overwrite is set.
func Write(path string, f File, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file %s already exists", path)
		}
	}

	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
