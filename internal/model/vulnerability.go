package model

// Vulnerability is the tool-agnostic record every scanner adapter produces.
type Vulnerability struct {
	ID               string   `json:"id"`
	PackageName      string   `json:"packageName"`
	InstalledVersion string   `json:"installedVersion"`
	FixedVersion     string   `json:"fixedVersion,omitempty"`
	Severity         Severity `json:"severity"`
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	References       []string `json:"references,omitempty"`
}

// VerdictedVulnerability is a Vulnerability after suppression rules were applied.
// Reason is only set when Suppressed is true.
type VerdictedVulnerability struct {
	Vulnerability
	Suppressed bool   `json:"suppressed"`
	Reason     string `json:"suppressionReason,omitempty"`
}

// Status returns "suppressed" or "active".
func (v VerdictedVulnerability) Status() string {
	if v.Suppressed {
		return StatusSuppressed
	}
	return StatusActive
}

const (
	StatusActive     = "active"
	StatusSuppressed = "suppressed"
)
