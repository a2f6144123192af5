// Package suppress applies suppression rules to normalized findings and
// folds the verdicts into per-severity counts.
package suppress

import (
	"time"

	"vulnreport/internal/model"
)

// Engine evaluates findings against an ordered rule list. The first rule
// matching a finding decides its verdict. When that rule has expired the
// finding stays active, even if a later rule would still apply.
type Engine struct {
	rules []model.SuppressionRule
	now   func() time.Time
}

type Option func(*Engine)

// WithClock overrides the clock used to decide which day "today" is.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

func NewEngine(rules []model.SuppressionRule, opts ...Option) *Engine {
	e := &Engine{
		rules: append([]model.SuppressionRule(nil), rules...),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Rules returns a copy of the engine's rules.
func (e *Engine) Rules() []model.SuppressionRule {
	return append([]model.SuppressionRule(nil), e.rules...)
}

// Evaluate returns one verdict per finding, in input order.
func (e *Engine) Evaluate(vulns []model.Vulnerability) []model.VerdictedVulnerability {
	today := e.now()
	out := make([]model.VerdictedVulnerability, len(vulns))
	for i, v := range vulns {
		out[i] = model.VerdictedVulnerability{Vulnerability: v}
		rule, ok := e.match(v)
		if !ok || Expired(rule, today) {
			continue
		}
		out[i].Suppressed = true
		out[i].Reason = rule.Reason
	}
	return out
}

// Match returns the rule deciding v's verdict, if any.
func (e *Engine) Match(v model.Vulnerability) (model.SuppressionRule, bool) {
	return e.match(v)
}

func (e *Engine) match(v model.Vulnerability) (model.SuppressionRule, bool) {
	for _, r := range e.rules {
		if r.Matches(v) {
			return r, true
		}
	}
	return model.SuppressionRule{}, false
}

// ExpiredRules lists the rules that no longer apply as of now.
func (e *Engine) ExpiredRules() []model.SuppressionRule {
	today := e.now()
	var expired []model.SuppressionRule
	for _, r := range e.rules {
		if Expired(r, today) {
			expired = append(expired, r)
		}
	}
	return expired
}

// Expired reports whether r's expiry day lies strictly before the calendar
// day of now. Both sides are compared as dates in their own location, so
// the rule still applies for the whole of its expiry day.
func Expired(r model.SuppressionRule, now time.Time) bool {
	if !r.HasExpiry() {
		return false
	}
	return civilDate(r.Expires).Before(civilDate(now))
}

func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
