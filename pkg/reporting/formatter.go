package reporting

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jihwankim/dram-fault-sim/pkg/fault"
)

// ReportFormat represents the report output format
type ReportFormat string

const (
	ReportFormatHTML ReportFormat = "html"
	ReportFormatText ReportFormat = "text"
	ReportFormatJSON ReportFormat = "json"
)

// Formatter generates formatted output files from a run summary.
type Formatter struct {
	logger *Logger
}

// NewFormatter creates a new report formatter
func NewFormatter(logger *Logger) *Formatter {
	return &Formatter{
		logger: logger,
	}
}

// GenerateReport generates a report in the specified format
func (f *Formatter) GenerateReport(summary *RunSummary, format ReportFormat, outputPath string) error {
	switch format {
	case ReportFormatHTML:
		return f.generateHTMLReport(summary, outputPath)
	case ReportFormatText:
		return f.generateTextReport(summary, outputPath)
	case ReportFormatJSON:
		return fmt.Errorf("JSON format is automatically saved by storage")
	default:
		return fmt.Errorf("unsupported report format: %s", format)
	}
}

// generateTextReport writes the canonical <prefix>.S.<faultKind> text
// file: a header line, Retire/DUE/SDC per-year probability sections, and
// per-year per-kind percentage breakdowns.
func (f *Formatter) generateTextReport(summary *RunSummary, outputPath string) error {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "After %d runs\n\n", summary.RunCnt)

	buf.WriteString("Retire\n")
	writeFloatRow(&buf, summary.RetireProbability)

	buf.WriteString("\nDUE\n")
	writeFloatRow(&buf, summary.DUEProbability)

	buf.WriteString("\nSDC\n")
	writeFloatRow(&buf, summary.SDCProbability)
	buf.WriteString("\n")

	for _, stats := range summary.FaultStats {
		for k := fault.SBIT; k <= fault.MWL; k++ {
			if pct, ok := stats.SDCPercent[k]; ok && pct != 0 {
				fmt.Fprintf(&buf, "Percent of error on SDC at %d for %s: %.4f\n", stats.Year, k, pct)
			}
		}
		for k := fault.SBIT; k <= fault.MWL; k++ {
			if pct, ok := stats.DUEPercent[k]; ok && pct != 0 {
				fmt.Fprintf(&buf, "Percent of error on DUE at %d for %s: %.4f\n", stats.Year, k, pct)
			}
		}
	}

	if err := os.WriteFile(outputPath, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write text report: %w", err)
	}

	f.logger.Info("text report generated", "path", outputPath)
	return nil
}

func writeFloatRow(buf *bytes.Buffer, values []float64) {
	for i, v := range values {
		if i > 0 {
			buf.WriteString(" ")
		}
		fmt.Fprintf(buf, "%.6f", v)
	}
	buf.WriteString("\n")
}

// generateHTMLReport generates an HTML rendering of the same run summary.
func (f *Formatter) generateHTMLReport(summary *RunSummary, outputPath string) error {
	tmpl, err := template.New("report").Funcs(template.FuncMap{
		"formatTime": func(t time.Time) string {
			return t.Format("2006-01-02 15:04:05")
		},
	}).Parse(htmlTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse HTML template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, summary); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	if err := os.WriteFile(outputPath, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write HTML report: %w", err)
	}

	f.logger.Info("HTML report generated", "path", outputPath)
	return nil
}

// CompareReports generates a side-by-side comparison of multiple run
// summaries' per-year DUE/SDC/Retire probabilities.
func (f *Formatter) CompareReports(summaries []*RunSummary, outputPath string) error {
	if len(summaries) < 2 {
		return fmt.Errorf("need at least 2 run summaries to compare")
	}

	var buf bytes.Buffer
	buf.WriteString(strings.Repeat("=", 80) + "\n")
	buf.WriteString("   RUN COMPARISON\n")
	buf.WriteString(strings.Repeat("=", 80) + "\n\n")

	for _, s := range summaries {
		fmt.Fprintf(&buf, "%s (%s, %d runs)\n", s.RunID, s.ECCScheme, s.RunCnt)
		for y := range s.DUEProbability {
			fmt.Fprintf(&buf, "  year %d: retire=%.6f due=%.6f sdc=%.6f\n",
				y, s.RetireProbability[y], s.DUEProbability[y], s.SDCProbability[y])
		}
		buf.WriteString("\n")
	}

	if err := os.WriteFile(outputPath, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write comparison report: %w", err)
	}

	f.logger.Info("comparison report generated", "path", outputPath)
	return nil
}

// GetReportPath generates a report file path based on a run summary and format.
func GetReportPath(summary *RunSummary, format ReportFormat, outputDir string) string {
	timestamp := summary.StartTime.Format("20060102-150405")
	ext := string(format)
	filename := fmt.Sprintf("report-%s-%s.%s", timestamp, summary.RunID, ext)
	return filepath.Join(outputDir, filename)
}

const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>DRAM Fault Simulation Run - {{.RunID}}</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif; max-width: 900px; margin: 0 auto; padding: 20px; }
        table { width: 100%; border-collapse: collapse; margin: 20px 0; }
        th, td { padding: 8px 12px; text-align: right; border-bottom: 1px solid #ddd; }
        th:first-child, td:first-child { text-align: left; }
        th { background-color: #2c3e50; color: white; }
    </style>
</head>
<body>
    <h1>DRAM Fault Simulation Run</h1>
    <p>ECC scheme: {{.ECCScheme}} &middot; {{.RunCnt}} runs &middot; status: {{.Status}}</p>
    <p>{{formatTime .StartTime}} &rarr; {{formatTime .EndTime}} ({{.Duration}})</p>

    <table>
        <thead><tr><th>Year</th><th>Retire</th><th>DUE</th><th>SDC</th></tr></thead>
        <tbody>
        {{range $i, $v := .RetireProbability}}
        <tr><td>{{$i}}</td><td>{{$v}}</td><td>{{index $.DUEProbability $i}}</td><td>{{index $.SDCProbability $i}}</td></tr>
        {{end}}
        </tbody>
    </table>

    {{if .Errors}}
    <h2>Errors</h2>
    <ul>{{range .Errors}}<li>{{.}}</li>{{end}}</ul>
    {{end}}
</body>
</html>
`
