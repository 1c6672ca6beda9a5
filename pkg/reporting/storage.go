package reporting

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// Storage handles persistence of run summaries
type Storage struct {
	outputDir string
	keepLastN int
	logger    *Logger
}

// NewStorage creates a new storage instance
func NewStorage(outputDir string, keepLastN int, logger *Logger) (*Storage, error) {
	// Create output directory if it doesn't exist
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	return &Storage{
		outputDir: outputDir,
		keepLastN: keepLastN,
		logger:    logger,
	}, nil
}

// SaveReport saves a run summary to a JSON file
func (s *Storage) SaveReport(summary *RunSummary) (string, error) {
	// Generate filename: run-<timestamp>-<runID>.json
	timestamp := summary.StartTime.Format("20060102-150405")
	filename := fmt.Sprintf("run-%s-%s.json", timestamp, summary.RunID)
	filepath := filepath.Join(s.outputDir, filename)

	// Marshal summary to JSON with indentation
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal run summary: %w", err)
	}

	// Write to file
	if err := os.WriteFile(filepath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write run summary file: %w", err)
	}

	s.logger.Info("Run summary saved", "path", filepath)

	// Cleanup old reports if necessary
	if s.keepLastN > 0 {
		if err := s.cleanupOldReports(); err != nil {
			s.logger.Warn("Failed to cleanup old reports", "error", err)
		}
	}

	return filepath, nil
}

// LoadReport loads a run summary from a JSON file
func (s *Storage) LoadReport(filepath string) (*RunSummary, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read run summary file: %w", err)
	}

	var summary RunSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run summary: %w", err)
	}

	return &summary, nil
}

// ListReports lists all run summaries in the output directory
func (s *Storage) ListReports() ([]ReportSummary, error) {
	entries, err := os.ReadDir(s.outputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read output directory: %w", err)
	}

	summaries := make([]ReportSummary, 0)
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}

		// Load summary
		path := filepath.Join(s.outputDir, entry.Name())
		summary, err := s.LoadReport(path)
		if err != nil {
			s.logger.Warn("Failed to load run summary", "path", path, "error", err)
			continue
		}

		summaries = append(summaries, ReportSummary{
			RunID:     summary.RunID,
			ECCScheme: summary.ECCScheme,
			StartTime: summary.StartTime,
			Duration:  summary.Duration,
			Status:    summary.Status,
			Filepath:  path,
		})
	}

	// Sort by start time (newest first)
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].StartTime.After(summaries[j].StartTime)
	})

	return summaries, nil
}

// FindReportByRunID finds a run summary by run ID
func (s *Storage) FindReportByRunID(runID string) (*RunSummary, error) {
	summaries, err := s.ListReports()
	if err != nil {
		return nil, err
	}

	for _, summary := range summaries {
		if summary.RunID == runID {
			return s.LoadReport(summary.Filepath)
		}
	}

	return nil, fmt.Errorf("run summary not found for run ID: %s", runID)
}

// cleanupOldReports removes old report files, keeping only the last N
func (s *Storage) cleanupOldReports() error {
	summaries, err := s.ListReports()
	if err != nil {
		return err
	}

	if len(summaries) <= s.keepLastN {
		return nil
	}

	// Delete oldest reports
	toDelete := summaries[s.keepLastN:]
	for _, summary := range toDelete {
		if err := os.Remove(summary.Filepath); err != nil {
			s.logger.Warn("Failed to delete old report", "path", summary.Filepath, "error", err)
		} else {
			s.logger.Debug("Deleted old report", "path", summary.Filepath)
		}
	}

	return nil
}

// GetOutputDir returns the output directory path
func (s *Storage) GetOutputDir() string {
	return s.outputDir
}

// ReportSummary is the lightweight index entry ListReports returns for one
// stored run summary, without loading its full per-kind breakdown.
type ReportSummary struct {
	RunID     string    `json:"run_id"`
	ECCScheme string    `json:"ecc_scheme"`
	StartTime time.Time `json:"start_time"`
	Duration  string    `json:"duration"`
	Status    RunStatus `json:"status"`
	Filepath  string    `json:"filepath"`
}
