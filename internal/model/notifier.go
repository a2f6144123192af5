package model

import "time"

// NotifierConfig configures one notification channel.
type NotifierConfig struct {
	// Type names the registered channel sender, e.g. "teams".
	Type string
	// Config is passed to the sender untouched.
	Config map[string]any
	// Enabled defaults to true when nil.
	Enabled *bool
}

// IsEnabled reports whether the channel should be dispatched to.
func (c NotifierConfig) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// NotificationPayload is what every channel sender receives.
type NotificationPayload struct {
	Summary     SeveritySummary `json:"summary"`
	ReportTitle string          `json:"reportTitle"`
	DetailsURL  string          `json:"detailsUrl,omitempty"`
	GeneratedAt time.Time       `json:"generatedAt"`
}
