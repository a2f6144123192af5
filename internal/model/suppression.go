package model

import "time"

// SuppressionRule marks findings with a given advisory ID as non-actionable.
type SuppressionRule struct {
	// CVE is the advisory ID to match, exactly.
	CVE string
	// Package optionally restricts the rule to one package name.
	Package string
	// Expires is the last calendar day the rule applies. Zero means never.
	Expires time.Time
	Reason  string
}

// HasExpiry reports whether the rule carries an expiry date.
func (r SuppressionRule) HasExpiry() bool {
	return !r.Expires.IsZero()
}

// Matches reports whether the rule targets v, ignoring expiry.
func (r SuppressionRule) Matches(v Vulnerability) bool {
	if r.CVE != v.ID {
		return false
	}
	return r.Package == "" || r.Package == v.PackageName
}
