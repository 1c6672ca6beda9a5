package reporting

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// OutputFormat represents the progress output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
	FormatTUI  OutputFormat = "tui"
)

// ProgressReporter reports simulation progress to the console as the outer
// Monte Carlo loop advances.
type ProgressReporter struct {
	format OutputFormat
	logger *Logger
}

// NewProgressReporter creates a new progress reporter
func NewProgressReporter(format OutputFormat, logger *Logger) *ProgressReporter {
	return &ProgressReporter{
		format: format,
		logger: logger,
	}
}

// ReportRunStarted reports the start of a simulation run.
func (pr *ProgressReporter) ReportRunStarted(eccScheme string, runCnt int) {
	switch pr.format {
	case FormatJSON:
		data, _ := json.Marshal(map[string]interface{}{
			"event":     "run_started",
			"ecc":       eccScheme,
			"run_cnt":   runCnt,
			"timestamp": time.Now(),
		})
		fmt.Println(string(data))
	default:
		fmt.Printf("[RUN] starting %d iterations under %s\n", runCnt, eccScheme)
	}
	pr.logger.Info("run started", "ecc", eccScheme, "run_cnt", runCnt)
}

// ReportIterationMilestone reports progress every milestone iterations,
// at Debug level, so long sweeps stay observable without flooding output.
func (pr *ProgressReporter) ReportIterationMilestone(completed, total int) {
	pr.logger.Debug("iteration milestone", "completed", completed, "total", total)
	if pr.format == FormatTUI {
		pr.clearLine()
		fmt.Printf("\r[%d/%d] iterations complete", completed, total)
	}
}

// ReportRetirement reports a rank retirement event at Debug level.
func (pr *ProgressReporter) ReportRetirement(year int, blkCount int) {
	pr.logger.Debug("rank retired", "year", year, "retired_blk_count", blkCount)
}

// ReportDUE reports a DUE (detected uncorrectable error) event at Debug level.
func (pr *ProgressReporter) ReportDUE(year int) {
	pr.logger.Debug("DUE", "year", year)
}

// ReportSDC reports an SDC (silent data corruption) event at Debug level.
func (pr *ProgressReporter) ReportSDC(year int) {
	pr.logger.Debug("SDC", "year", year)
}

// ReportRunCompleted reports the final run summary.
func (pr *ProgressReporter) ReportRunCompleted(summary *RunSummary) {
	switch pr.format {
	case FormatJSON:
		data, _ := json.Marshal(map[string]interface{}{
			"event":     "run_completed",
			"summary":   summary,
			"timestamp": time.Now(),
		})
		fmt.Println(string(data))
	case FormatTUI:
		pr.clearLine()
		pr.printSummary(summary)
	default:
		pr.printSummary(summary)
	}
	pr.logger.Info("run completed", "run_cnt", summary.RunCnt, "status", summary.Status)
}

// printSummary prints a run summary in plain text, used by both FormatText
// and FormatTUI (which otherwise behaves identically at completion time).
func (pr *ProgressReporter) printSummary(summary *RunSummary) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 80))
	fmt.Println("   RUN SUMMARY")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Status:      %s\n", summary.Status)
	fmt.Printf("ECC scheme:  %s\n", summary.ECCScheme)
	fmt.Printf("Run count:   %d\n", summary.RunCnt)
	fmt.Printf("Duration:    %s\n", summary.Duration)

	fmt.Println()
	fmt.Println("Year     Retire       DUE          SDC")
	for y := range summary.RetireProbability {
		fmt.Printf("%4d  %10.6f  %10.6f  %10.6f\n", y, summary.RetireProbability[y], summary.DUEProbability[y], summary.SDCProbability[y])
	}

	if len(summary.Errors) > 0 {
		fmt.Println()
		fmt.Println("Errors:")
		for _, e := range summary.Errors {
			fmt.Printf("  - %s\n", e)
		}
	}
	fmt.Println(strings.Repeat("=", 80))
}

// clearLine clears the current terminal line (ANSI escape).
func (pr *ProgressReporter) clearLine() {
	fmt.Print("\033[K")
}
