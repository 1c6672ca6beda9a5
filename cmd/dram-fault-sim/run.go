package main

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jihwankim/dram-fault-sim/pkg/config"
	"github.com/jihwankim/dram-fault-sim/pkg/domaingroup"
	"github.com/jihwankim/dram-fault-sim/pkg/emergency"
	"github.com/jihwankim/dram-fault-sim/pkg/fault"
	"github.com/jihwankim/dram-fault-sim/pkg/reporting"
	"github.com/jihwankim/dram-fault-sim/pkg/scrubber"
	"github.com/jihwankim/dram-fault-sim/pkg/tester"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the Monte Carlo DUE/SDC/Retire sweep",
	Long: `run drives execution.run_count independent iterations per configured
fault kind, advancing simulated time until a rank retires, suffers a
detected-uncorrectable or silent data corruption error, or crosses the
fixed simulated horizon of tester.MaxYear-1 years (execution.max_years is
not consulted), and writes the per-year result to reporting.output_dir.`,
	RunE: runRun,
}

// observeMarginal converts cumulative per-year-and-after counts (as
// SystemResult stores them) back into one-time-per-occurrence events and
// reports each at its actual year, so a metrics counter isn't inflated by
// the carry-forward in the cumulative representation.
func observeMarginal(observe func(year int), cumulative []int) {
	prev := 0
	for y, count := range cumulative {
		for i := 0; i < count-prev; i++ {
			observe(y)
		}
		prev = count
	}
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logLevel := reporting.LogLevel(cfg.Framework.LogLevel)
	if verbose {
		logLevel = reporting.LogLevelDebug
	}
	logger := reporting.NewLogger(reporting.LoggerConfig{
		Level:  logLevel,
		Format: reporting.LogFormat(cfg.Framework.LogFormat),
	})

	rateInfo, err := config.LoadFaultRateTable(cfg.FaultRates.TablePath)
	if err != nil {
		return fmt.Errorf("failed to load fault rate table: %w", err)
	}

	geom := buildGeometry(cfg)
	eccScheme, err := buildECC(cfg.ECC, geom, cfg.Execution.Seed)
	if err != nil {
		return fmt.Errorf("failed to build ECC scheme: %w", err)
	}

	var scrub scrubber.Scrubber = scrubber.NoScrubber{}
	if cfg.Scrubbing.PeriodHours > 0 {
		scrub = scrubber.NewPeriodic(cfg.Scrubbing.PeriodHours)
	}

	killSwitch := emergency.New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	killSwitch.Start(ctx)

	var metrics *reporting.Metrics
	if metricsAddr != "" {
		metrics = reporting.NewMetrics()
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		server := &http.Server{Addr: metricsAddr, Handler: mux}
		go func() {
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Warn("metrics server stopped", "error", err)
			}
		}()
		defer server.Close()
		logger.Info("metrics endpoint listening", "addr", metricsAddr)
	}

	storage, err := reporting.NewStorage(cfg.Reporting.OutputDir, cfg.Reporting.KeepLastN, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize report storage: %w", err)
	}
	formatter := reporting.NewFormatter(logger)

	progressFormat := reporting.FormatText
	if verbose {
		progressFormat = reporting.FormatTUI
	}
	progress := reporting.NewProgressReporter(progressFormat, logger)

	faultKindNames := cfg.Execution.FaultKindNames
	if len(faultKindNames) == 0 {
		faultKindNames = []string{"SBIT"}
	}

	for _, faultKind := range faultKindNames {
		dg := domaingroup.New(cfg.Geometry.DomainCount, geom, func() *fault.RateInfo { return rateInfo }, tester.MaxYear)
		dg.SetHBM(cfg.Geometry.HBM)

		rng := rand.New(rand.NewSource(cfg.Execution.Seed))
		system := tester.NewTesterSystem(rng, killSwitch)
		if cfg.Execution.WeakCellMode {
			system.SetInherentConfig(tester.TesterConfig{
				Mode:          tester.ModeDualWeakCell,
				RatioWC:       cfg.Execution.RatioWC,
				ActiveProbWC:  cfg.Execution.ActiveProbWC,
				RatioFWC:      cfg.Execution.RatioFWC,
				ActiveProbFWC: cfg.Execution.ActiveProbFWC,
			})
		}

		startTime := time.Now()
		progress.ReportRunStarted(cfg.ECC.Scheme, cfg.Execution.RunCount)
		if metrics != nil {
			metrics.SetActiveRuns(cfg.Execution.RunCount)
		}

		result := system.Test(dg, eccScheme, scrub, cfg.Execution.RunCount, cfg.Execution.FaultCount)

		if metrics != nil {
			metrics.SetActiveRuns(0)
			observeMarginal(metrics.ObserveDUE, result.DUECntYear[:])
			observeMarginal(metrics.ObserveSDC, result.SDCCntYear[:])
			observeMarginal(metrics.ObserveRetire, result.RetireCntYear[:])
		}

		summary := &reporting.RunSummary{
			RunID:             uuid.NewString(),
			StartTime:         startTime,
			EndTime:           time.Now(),
			Duration:          time.Since(startTime).String(),
			ECCScheme:         cfg.ECC.Scheme,
			OutputPrefix:      cfg.Reporting.Prefix,
			FaultKindNames:    []string{faultKind},
			FaultCount:        cfg.Execution.FaultCount,
			RunCnt:            result.RunCnt,
			RetireProbability: result.RetireProbability[:],
			DUEProbability:    result.DUEProbability[:],
			SDCProbability:    result.SDCProbability[:],
			FaultStats:        result.FaultStats,
		}
		if result.Interrupted {
			summary.Status = reporting.StatusStopped
		} else {
			summary.Status = reporting.StatusCompleted
		}

		progress.ReportRunCompleted(summary)

		if _, err := storage.SaveReport(summary); err != nil {
			logger.Warn("failed to save run summary", "error", err)
		}

		outputPath := cfg.Reporting.OutputDir + "/" + summary.OutputFileName()
		for _, format := range cfg.Reporting.Formats {
			var reportFormat reporting.ReportFormat
			switch format {
			case "html":
				reportFormat = reporting.ReportFormatHTML
			default:
				reportFormat = reporting.ReportFormatText
			}
			path := outputPath
			if reportFormat == reporting.ReportFormatHTML {
				path += ".html"
			}
			if err := formatter.GenerateReport(summary, reportFormat, path); err != nil {
				logger.Warn("failed to generate report", "format", format, "error", err)
			}
		}

		if result.Interrupted {
			break
		}
	}

	return nil
}
