package reporting

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// Storage handles persistence of transform reports
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

// SaveReport saves a transform report to a JSON file
func (s *Storage) SaveReport(report *TransformReport) (string, error) {
	// Generate filename: transform-<timestamp>-<transformID>.json
	timestamp := report.StartTime.Format("20060102-150405")
	filename := fmt.Sprintf("transform-%s-%s.json", timestamp, report.TransformID)
	filepath := filepath.Join(s.outputDir, filename)

	// Marshal report to JSON with indentation
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}

	// Write to file
	if err := os.WriteFile(filepath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write report file: %w", err)
	}

	s.logger.Info("Transform report saved", "path", filepath)

	// Cleanup old reports if necessary
	if s.keepLastN > 0 {
		if err := s.cleanupOldReports(); err != nil {
			s.logger.Warn("Failed to cleanup old reports", "error", err)
		}
	}

	return filepath, nil
}

// LoadReport loads a transform report from a JSON file
func (s *Storage) LoadReport(filepath string) (*TransformReport, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read report file: %w", err)
	}

	var report TransformReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report: %w", err)
	}

	return &report, nil
}

// ListReports lists all test reports in the output directory
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

		// Load report
		path := filepath.Join(s.outputDir, entry.Name())
		report, err := s.LoadReport(path)
		if err != nil {
			s.logger.Warn("Failed to load report", "path", path, "error", err)
			continue
		}

		// Create summary
		summaries = append(summaries, ReportSummary{
			TransformID: report.TransformID,
			SourcePath:  report.SourcePath,
			StartTime:   report.StartTime,
			Duration:    report.Duration,
			Status:      report.Status,
			Success:     report.Success,
			Filepath:    path,
		})
	}

	// Sort by start time (newest first)
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].StartTime.After(summaries[j].StartTime)
	})

	return summaries, nil
}

// FindReportByTransformID finds a report by transform ID
func (s *Storage) FindReportByTransformID(transformID string) (*TransformReport, error) {
	summaries, err := s.ListReports()
	if err != nil {
		return nil, err
	}

	for _, summary := range summaries {
		if summary.TransformID == transformID {
			return s.LoadReport(summary.Filepath)
		}
	}

	return nil, fmt.Errorf("report not found for transform ID: %s", transformID)
}

// cleanupOldReports retires old report files, keeping only the last keepLastN
// runs *per source path* rather than globally. A source re-transformed on
// every CI run would otherwise evict an unrelated, rarely-touched file's
// entire history the moment the two together cross keepLastN; scoping
// retention to SourcePath keeps every file's own recent runs around
// regardless of how often its neighbors in the batch get re-run.
func (s *Storage) cleanupOldReports() error {
	summaries, err := s.ListReports()
	if err != nil {
		return err
	}

	bySource := make(map[string][]ReportSummary)
	for _, sum := range summaries {
		bySource[sum.SourcePath] = append(bySource[sum.SourcePath], sum)
	}

	for _, group := range bySource {
		if len(group) <= s.keepLastN {
			continue
		}
		// group is already newest-first, inherited from ListReports' sort.
		for _, summary := range group[s.keepLastN:] {
			if err := os.Remove(summary.Filepath); err != nil {
				s.logger.Warn("Failed to delete old report", "path", summary.Filepath, "error", err)
			} else {
				s.logger.Debug("Deleted old report", "path", summary.Filepath, "source", summary.SourcePath)
			}
		}
	}

	return nil
}

// GetOutputDir returns the output directory path
func (s *Storage) GetOutputDir() string {
	return s.outputDir
}

// BatchSummary aggregates every report currently on disk into one
// batch-level view: how many runs succeeded, and how many times each
// construct appeared across all of them, mirroring the shape a multi-file
// transform run reports at the end of a batch.
type BatchSummary struct {
	TotalReports   int            `json:"total_reports"`
	SuccessCount   int            `json:"success_count"`
	FailureCount   int            `json:"failure_count"`
	ConstructUsage map[string]int `json:"construct_usage"`
}

// AggregateReports loads every report in the output directory and folds
// their per-file ConstructUsage counts into one batch-level BatchSummary, so
// a caller can report "across this whole run, ~ish appeared 40 times"
// without re-reading individual report files itself.
func (s *Storage) AggregateReports() (*BatchSummary, error) {
	summaries, err := s.ListReports()
	if err != nil {
		return nil, err
	}

	batch := &BatchSummary{ConstructUsage: make(map[string]int)}
	for _, sum := range summaries {
		report, err := s.LoadReport(sum.Filepath)
		if err != nil {
			s.logger.Warn("Failed to load report for aggregation", "path", sum.Filepath, "error", err)
			continue
		}
		batch.TotalReports++
		if report.Success {
			batch.SuccessCount++
		} else {
			batch.FailureCount++
		}
		for construct, count := range report.ConstructUsage {
			batch.ConstructUsage[construct] += count
		}
	}

	return batch, nil
}

// ReportSummary contains a summary of a transform report
type ReportSummary struct {
	TransformID string          `json:"transform_id"`
	SourcePath  string          `json:"source_path"`
	StartTime   time.Time       `json:"start_time"`
	Duration    string          `json:"duration"`
	Status      TransformStatus `json:"status"`
	Success     bool            `json:"success"`
	Filepath    string          `json:"filepath"`
}
