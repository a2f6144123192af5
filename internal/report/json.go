package report

import (
	"encoding/json"
	"io"

	"vulnreport/internal/model"
)

// JSONWriter writes Data as indented JSON.
type JSONWriter struct{}

func (JSONWriter) Write(w io.Writer, d Data) error {
	if d.Vulnerabilities == nil {
		d.Vulnerabilities = []model.VerdictedVulnerability{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}
