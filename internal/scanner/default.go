package scanner

import (
	"vulnreport/internal/scanner/grype"
	"vulnreport/internal/scanner/npmaudit"
	"vulnreport/internal/scanner/trivy"
)

// NewDefaultRegistry returns a registry with every built-in adapter,
// in detection order.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(trivy.Name, trivy.New())
	r.Register(grype.Name, grype.New())
	r.Register(npmaudit.Name, npmaudit.New())
	return r
}
