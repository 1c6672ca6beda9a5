package main

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jihwankim/dram-fault-sim/pkg/domaingroup"
	"github.com/jihwankim/dram-fault-sim/pkg/errtype"
	"github.com/jihwankim/dram-fault-sim/pkg/fault"
	"github.com/jihwankim/dram-fault-sim/pkg/reporting"
	"github.com/jihwankim/dram-fault-sim/pkg/tester"
)

var scenarioCmd = &cobra.Command{
	Use:   "scenario",
	Short: "Run a fixed-fault-count scenario sweep",
	Long: `scenario injects execution.fault_count simultaneous faults of the
configured kinds (fewer when execution.chip_overlap_check cannot place one
on an unused chip) into a single cacheline per trial, skipping the
simulated-time advance run does, and reports the resulting NE/CE/DUE/SDC
distribution across execution.run_count trials.`,
	RunE: runScenario,
}

func runScenario(cmd *cobra.Command, args []string) error {
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

	geom := buildGeometry(cfg)
	eccScheme, err := buildECC(cfg.ECC, geom, cfg.Execution.Seed)
	if err != nil {
		return fmt.Errorf("failed to build ECC scheme: %w", err)
	}

	dg := domaingroup.New(1, geom, func() *fault.RateInfo { return fault.NewRateInfo(nil) }, tester.MaxYear)

	faultKindNames := cfg.Execution.FaultKindNames
	if len(faultKindNames) == 0 {
		faultKindNames = []string{"SBIT"}
	}

	rng := rand.New(rand.NewSource(cfg.Execution.Seed))
	scenario := tester.NewTesterScenario(rng)

	startTime := time.Now()
	result := scenario.Test(dg, eccScheme, cfg.Execution.RunCount, cfg.Execution.FaultCount, faultKindNames, cfg.Execution.ChipOverlapCheck)

	logger.Info("scenario completed",
		"run_cnt", result.RunCnt,
		"ne", result.Probability[errtype.NE],
		"ce", result.Probability[errtype.CE],
		"due", result.Probability[errtype.DUE],
		"sdc", result.Probability[errtype.SDC],
	)
	if len(result.Histogram) > 0 {
		logger.Debug("correction distance histogram", "histogram", result.Histogram)
	}

	summary := &reporting.RunSummary{
		RunID:          uuid.NewString(),
		StartTime:      startTime,
		EndTime:        time.Now(),
		Duration:       time.Since(startTime).String(),
		Status:         reporting.StatusCompleted,
		ECCScheme:      cfg.ECC.Scheme,
		OutputPrefix:   cfg.Reporting.Prefix,
		FaultKindNames: faultKindNames,
		FaultCount:     cfg.Execution.FaultCount,
		RunCnt:         result.RunCnt,
	}

	storage, err := reporting.NewStorage(cfg.Reporting.OutputDir, cfg.Reporting.KeepLastN, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize report storage: %w", err)
	}
	if _, err := storage.SaveReport(summary); err != nil {
		logger.Warn("failed to save scenario summary", "error", err)
	}

	return nil
}
