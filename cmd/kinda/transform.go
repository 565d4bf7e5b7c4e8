package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jihwankim/kinda/pkg/metrics"
	"github.com/jihwankim/kinda/pkg/registry"
	"github.com/jihwankim/kinda/pkg/reporting"
	"github.com/jihwankim/kinda/pkg/security"
	"github.com/jihwankim/kinda/pkg/transform"
	"github.com/jihwankim/kinda/pkg/worker"
)

var transformCmd = &cobra.Command{
	Use:   "transform <file.kinda> [more.kinda ...]",
	Args:  cobra.MinimumNArgs(1),
	Short: "Rewrite kinda source files into plain host-language code",
	Long: `Runs each input file through Scan -> SecurityCheck -> Rewrite -> Emit and
writes the transformed output alongside the input (.out by default). Multiple
files are transformed concurrently.`,
	RunE: runTransform,
}

func init() {
	transformCmd.Flags().String("out-suffix", ".out", "suffix appended to each input's path for its transformed output")
	transformCmd.Flags().Int("workers", 4, "max concurrent file transforms")
	transformCmd.Flags().Bool("report", false, "save a JSON+text transform report per file")
	transformCmd.Flags().String("progress", "text", "progress output: text|json|tui|none")
}

func runTransform(cmd *cobra.Command, args []string) error {
	outSuffix, _ := cmd.Flags().GetString("out-suffix")
	workers, _ := cmd.Flags().GetInt("workers")
	wantReport, _ := cmd.Flags().GetBool("report")
	progressFormat, _ := cmd.Flags().GetString("progress")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	m := metrics.New()

	var progress *reporting.ProgressReporter
	if progressFormat != "none" {
		progress = reporting.NewProgressReporter(reporting.OutputFormat(progressFormat), logger)
	}

	reg, err := registry.Build()
	if err != nil {
		return fmt.Errorf("build registry: %w", err)
	}

	pipeline := transform.NewPipeline(reg, transform.PipelineConfig{
		Security: security.Config{
			MaxInputSize: int(cfg.Limits.MaxInputSize),
		},
		FastPathThreshold: 50,
		MaxNestingDepth:   cfg.Limits.MaxNestingDepth,
		Timeout:           time.Duration(cfg.Limits.TransformTimeoutMs) * time.Millisecond,
		Logger:            logger,
		Metrics:           m,
	})

	pool := worker.New(pipeline, workers)
	defer pool.StopWait()

	files := make([]worker.File, 0, len(args))
	for _, path := range args {
		src, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		files = append(files, worker.File{Path: path, Source: src})
		if progress != nil {
			progress.ReportFileStarted(path)
		}
	}

	var storage *reporting.Storage
	var formatter *reporting.Formatter
	if wantReport {
		storage, err = reporting.NewStorage(cfg.Reporting.OutputDir, cfg.Reporting.KeepLastN, logger)
		if err != nil {
			return fmt.Errorf("create report storage: %w", err)
		}
		formatter = reporting.NewFormatter(logger)
	}

	results := pool.TransformMany(context.Background(), files)

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "%s: %v\n", r.Path, r.Err)
			continue
		}

		outPath := r.Path + outSuffix
		out := string(r.Result.Runtime) + strings.Join(r.Result.Lines, "\n") + "\n"
		if err := os.WriteFile(outPath, []byte(out), 0644); err != nil {
			return fmt.Errorf("write %s: %w", outPath, err)
		}
		fmt.Fprintf(stdout, "%s -> %s (%d helpers, %d bytes runtime)\n",
			r.Path, outPath, len(r.Result.Helpers), len(r.Result.Runtime))

		report := buildReport(r.Path, r.Result)
		if progress != nil {
			progress.ReportSecurityResult(r.Path, report.Security)
			progress.ReportFileCompleted(report)
		}

		if wantReport {
			if _, err := storage.SaveReport(report); err != nil {
				logger.Warn("failed to save report", "path", r.Path, "error", err.Error())
			}
			textPath := reporting.GetReportPath(report, reporting.ReportFormatText, storage.GetOutputDir())
			if err := formatter.GenerateReport(report, reporting.ReportFormatText, textPath); err != nil {
				logger.Warn("failed to render report", "path", r.Path, "error", err.Error())
			}
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed to transform", failed, len(files))
	}
	return nil
}

func buildReport(path string, res *transform.Result) *reporting.TransformReport {
	now := time.Now()
	secInfo := reporting.SecurityInfo{IsSafe: true, RiskLevel: string(security.RiskNone)}
	if res.Security != nil {
		secInfo = reporting.SecurityInfo{
			IsSafe:    res.Security.IsSafe,
			RiskLevel: string(res.Security.RiskLevel),
			Errors:    res.Security.Errors,
			Warnings:  res.Security.Warnings,
		}
	}
	return &reporting.TransformReport{
		TransformID: filepath.Base(path),
		SourcePath:  path,
		StartTime:   now,
		EndTime:     now,
		Status:         reporting.StatusCompleted,
		Success:        true,
		Security:       secInfo,
		ConstructUsage: res.ConstructUsage,
		Helpers:        res.Helpers,
		LineCount:      len(res.Lines),
		RuntimeBytes:   len(res.Runtime),
	}
}
