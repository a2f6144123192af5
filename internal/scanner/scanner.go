// Package scanner maps scanner names to adapters and picks the adapter for
// a decoded report, either by name or by inspecting the document's shape.
package scanner

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	vrerrors "vulnreport/internal/errors"
	"vulnreport/internal/model"
)

// Auto asks Resolve to detect the format from the document.
const Auto = "auto"

// Adapter recognises and normalises one scanner's report format.
type Adapter interface {
	// Detect reports whether raw is a report this adapter understands.
	// It must not panic on arbitrary input.
	Detect(raw any) bool
	// ParseReport normalises raw into vulnerabilities in report order.
	// raw is not modified.
	ParseReport(raw any) ([]model.Vulnerability, error)
}

// Registry is an ordered set of named adapters. Detection tries adapters in
// registration order, so the first registration wins when shapes overlap.
type Registry struct {
	mu       sync.RWMutex
	names    []string
	adapters map[string]Adapter
}

func NewRegistry() *Registry {
	return &Registry{adapters: make(map[string]Adapter)}
}

// Register adds a under name. Registering an existing name replaces the
// adapter but keeps its original detection position.
func (r *Registry) Register(name string, a Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.adapters[name]; !ok {
		r.names = append(r.names, name)
	}
	r.adapters[name] = a
}

func (r *Registry) Get(name string) (Adapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.adapters[name]
	return a, ok
}

// List returns the registered names in registration order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.names...)
}

// Detect returns the first adapter whose predicate accepts raw.
func (r *Registry) Detect(raw any) (Adapter, string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, name := range r.names {
		if a := r.adapters[name]; a.Detect(raw) {
			return a, name, nil
		}
	}
	return nil, "", vrerrors.NewFormatError("", append([]string(nil), r.names...))
}

// Resolve returns the adapter named by format, or detects one when format
// is empty or Auto. A pinned format is trusted without running its
// predicate.
func (r *Registry) Resolve(format string, raw any) (Adapter, string, error) {
	if format == "" || format == Auto {
		return r.Detect(raw)
	}
	a, ok := r.Get(format)
	if !ok {
		return nil, "", vrerrors.NewFormatError(format, r.List())
	}
	return a, format, nil
}

// Parse resolves the adapter for raw and parses it.
func (r *Registry) Parse(format string, raw any) ([]model.Vulnerability, string, error) {
	a, name, err := r.Resolve(format, raw)
	if err != nil {
		return nil, "", err
	}
	vulns, err := a.ParseReport(raw)
	if err != nil {
		return nil, name, fmt.Errorf("failed to parse %s report: %w", name, err)
	}
	return vulns, name, nil
}

// DecodeReport reads a JSON document into its untyped form.
func DecodeReport(rd io.Reader) (any, error) {
	var raw any
	if err := json.NewDecoder(rd).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode scan report: %w", err)
	}
	return raw, nil
}
