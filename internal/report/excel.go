package report

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"vulnreport/internal/model"
)

const (
	summarySheet = "Summary"
	detailsSheet = "Vulnerabilities"
)

var detailHeaders = []any{
	"CVE ID", "Package", "Installed Version", "Fixed Version", "Severity",
	"Title", "Description", "Reference", "Status", "Suppression Reason",
}

var detailWidths = []float64{20, 15, 15, 15, 12, 30, 50, 40, 12, 20}

var severityFill = map[model.Severity]string{
	model.SeverityCritical: "FF0000",
	model.SeverityHigh:     "FF8C00",
	model.SeverityMedium:   "FFD700",
	model.SeverityLow:      "32CD32",
}

// ExcelWriter produces a workbook with a summary sheet and a details sheet.
type ExcelWriter struct{}

func (ExcelWriter) Write(w io.Writer, d Data) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return err
	}
	if err := writeSummarySheet(f, d); err != nil {
		return fmt.Errorf("summary sheet: %w", err)
	}
	if _, err := f.NewSheet(detailsSheet); err != nil {
		return err
	}
	if err := writeDetailsSheet(f, d.Vulnerabilities); err != nil {
		return fmt.Errorf("details sheet: %w", err)
	}
	f.SetActiveSheet(0)

	return f.Write(w)
}

func writeSummarySheet(f *excelize.File, d Data) error {
	generated := d.GeneratedAt
	if generated.IsZero() {
		generated = time.Now()
	}
	totals := d.Summary.Totals()

	rows := [][]any{
		{"Vulnerability Scan Summary"},
		{"Report Title", d.Title},
		{"Generated At", generated.UTC().Format(time.RFC3339)},
		{"Details URL", orNA(d.DetailsURL)},
		{},
		{"Severity", "Active", "Suppressed", "Total"},
	}
	for _, sev := range model.Severities {
		c := d.Summary.Counts(sev)
		rows = append(rows, []any{string(sev), c.Active, c.Suppressed, c.Total})
	}
	rows = append(rows, []any{}, []any{"Total Vulnerabilities", totals.Active, totals.Suppressed, totals.Total})

	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return err
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	for _, cell := range []string{"A1", "A6", "B6", "C6", "D6", fmt.Sprintf("A%d", len(rows))} {
		if err := f.SetCellStyle(summarySheet, cell, cell, bold); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(summarySheet, "A", "A", 22); err != nil {
		return err
	}
	return f.SetColWidth(summarySheet, "B", "D", 15)
}

func writeDetailsSheet(f *excelize.File, vulns []model.VerdictedVulnerability) error {
	if len(vulns) == 0 {
		return f.SetCellValue(detailsSheet, "A1", "No vulnerabilities found")
	}

	if err := f.SetSheetRow(detailsSheet, "A1", &detailHeaders); err != nil {
		return err
	}
	for i, width := range detailWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(detailsSheet, col, col, width); err != nil {
			return err
		}
	}

	styles, err := severityStyles(f)
	if err != nil {
		return err
	}
	for i, v := range vulns {
		rowNum := i + 2
		row := []any{
			v.ID,
			v.PackageName,
			v.InstalledVersion,
			orNA(v.FixedVersion),
			string(v.Severity),
			v.Title,
			v.Description,
			orNA(firstReference(v)),
			v.Status(),
			orNA(v.Reason),
		}
		cell, err := excelize.CoordinatesToCellName(1, rowNum)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(detailsSheet, cell, &row); err != nil {
			return err
		}
		if style, ok := styles[v.Severity]; ok {
			sevCell := fmt.Sprintf("E%d", rowNum)
			if err := f.SetCellStyle(detailsSheet, sevCell, sevCell, style); err != nil {
				return err
			}
		}
	}
	return f.AutoFilter(detailsSheet, fmt.Sprintf("A1:J%d", len(vulns)+1), nil)
}

func severityStyles(f *excelize.File) (map[model.Severity]int, error) {
	styles := make(map[model.Severity]int, len(severityFill))
	for sev, color := range severityFill {
		id, err := f.NewStyle(&excelize.Style{
			Font: &excelize.Font{Bold: true},
			Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}},
		})
		if err != nil {
			return nil, err
		}
		styles[sev] = id
	}
	return styles, nil
}
