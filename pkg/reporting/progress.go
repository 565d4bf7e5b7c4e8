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

// ProgressReporter reports batch transform progress
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

// ReportState reports the current batch state
func (pr *ProgressReporter) ReportState(state LiveTransformState) {
	switch pr.format {
	case FormatJSON:
		pr.reportJSON(state)
	case FormatTUI:
		pr.reportTUI(state)
	default:
		pr.reportText(state)
	}
}

// ReportStateTransition reports a pipeline phase transition
func (pr *ProgressReporter) ReportStateTransition(from, to string) {
	switch pr.format {
	case FormatJSON:
		data, _ := json.Marshal(map[string]interface{}{
			"event":      "phase_transition",
			"from_phase": from,
			"to_phase":   to,
			"timestamp":  time.Now(),
		})
		fmt.Println(string(data))
	case FormatTUI:
		pr.clearLine()
		fmt.Printf("🔄 Phase: %s → %s\n", from, to)
	default:
		fmt.Printf("[PHASE] %s → %s\n", from, to)
	}
}

// ReportFileStarted reports that a file entered the pipeline
func (pr *ProgressReporter) ReportFileStarted(path string) {
	switch pr.format {
	case FormatJSON:
		data, _ := json.Marshal(map[string]interface{}{
			"event":     "file_started",
			"path":      path,
			"timestamp": time.Now(),
		})
		fmt.Println(string(data))
	case FormatTUI:
		pr.clearLine()
		fmt.Printf("▶ Transforming: %s\n", path)
	default:
		fmt.Printf("[FILE] %s\n", path)
	}
}

// ReportSecurityResult reports a security scan outcome
func (pr *ProgressReporter) ReportSecurityResult(path string, info SecurityInfo) {
	status := "✅ SAFE"
	if !info.IsSafe {
		status = "🛑 REJECTED"
	}

	switch pr.format {
	case FormatJSON:
		data, _ := json.Marshal(map[string]interface{}{
			"event":     "security_result",
			"path":      path,
			"security":  info,
			"timestamp": time.Now(),
		})
		fmt.Println(string(data))
	case FormatTUI:
		pr.clearLine()
		fmt.Printf("%s %s (risk=%s)\n", status, path, info.RiskLevel)
	default:
		fmt.Printf("[SECURITY] %s %s: risk=%s\n", status, path, info.RiskLevel)
	}
}

// ReportFileCompleted reports completion of a single file's transform
func (pr *ProgressReporter) ReportFileCompleted(report *TransformReport) {
	switch pr.format {
	case FormatJSON:
		data, _ := json.Marshal(map[string]interface{}{
			"event":     "file_completed",
			"report":    report,
			"timestamp": time.Now(),
		})
		fmt.Println(string(data))
	case FormatTUI:
		pr.clearLine()
		pr.printTestSummary(report)
	default:
		pr.printTextSummary(report)
	}
}

// reportText outputs progress in plain text format
func (pr *ProgressReporter) reportText(state LiveTransformState) {
	elapsed := time.Since(state.StartTime).Round(time.Second)
	fmt.Printf("[%s] %s | Elapsed: %s | %d/%d files\n",
		time.Now().Format("15:04:05"),
		state.State,
		elapsed,
		state.FilesCompleted,
		state.FilesTotal,
	)

	if state.CurrentFile != "" {
		fmt.Printf("  Current: %s\n", state.CurrentFile)
	}
	if state.FilesFailed > 0 {
		fmt.Printf("  Failed: %d\n", state.FilesFailed)
	}
}

// reportJSON outputs progress in JSON format
func (pr *ProgressReporter) reportJSON(state LiveTransformState) {
	data, err := json.Marshal(state)
	if err != nil {
		pr.logger.Error("Failed to marshal state", "error", err)
		return
	}
	fmt.Println(string(data))
}

// reportTUI outputs progress in terminal UI format
func (pr *ProgressReporter) reportTUI(state LiveTransformState) {
	pr.clearScreen()

	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("   kinda transform: %s\n", state.BatchID)
	fmt.Println(strings.Repeat("=", 80))
	fmt.Println()

	fmt.Printf("📊 State: %s\n", state.State)
	fmt.Printf("⏱️  Elapsed: %s\n", state.Elapsed.Round(time.Second))
	fmt.Printf("📁 Files: %d/%d completed", state.FilesCompleted, state.FilesTotal)
	if state.FilesFailed > 0 {
		fmt.Printf(", %d failed", state.FilesFailed)
	}
	fmt.Println()
	if state.CurrentFile != "" {
		fmt.Printf("▶ Current: %s\n", state.CurrentFile)
	}
	fmt.Println()

	fmt.Println(strings.Repeat("─", 80))
}

// printTestSummary prints a transform summary in TUI format
func (pr *ProgressReporter) printTestSummary(report *TransformReport) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 80))
	fmt.Println("   TRANSFORM SUMMARY")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Println()

	statusIcon := "✅"
	statusText := "COMPLETED"
	if !report.Success {
		statusIcon = "❌"
		statusText = "FAILED"
	}
	if report.Status == StatusRejected {
		statusIcon = "🛑"
		statusText = "REJECTED"
	}

	fmt.Printf("%s Transform %s\n", statusIcon, statusText)
	fmt.Printf("   Source: %s\n", report.SourcePath)
	fmt.Printf("   Transform ID: %s\n", report.TransformID)
	fmt.Printf("   Duration: %s\n", report.Duration)
	fmt.Println()

	if len(report.Helpers) > 0 {
		fmt.Printf("🧩 Helpers emitted (%d): %s\n", len(report.Helpers), strings.Join(report.Helpers, ", "))
		fmt.Println()
	}

	fmt.Printf("🔒 Security: risk=%s, safe=%t\n", report.Security.RiskLevel, report.Security.IsSafe)
	fmt.Println()

	fmt.Println(strings.Repeat("=", 80))
}

// printTextSummary prints a transform summary in plain text format
func (pr *ProgressReporter) printTextSummary(report *TransformReport) {
	status := "COMPLETED"
	if !report.Success {
		status = "FAILED"
	}
	if report.Status == StatusRejected {
		status = "REJECTED"
	}

	fmt.Printf("\n[TRANSFORM SUMMARY] %s\n", status)
	fmt.Printf("  Source: %s\n", report.SourcePath)
	fmt.Printf("  Transform ID: %s\n", report.TransformID)
	fmt.Printf("  Duration: %s\n", report.Duration)
	fmt.Printf("  Constructs used: %d\n", len(report.ConstructUsage))
	fmt.Printf("  Helpers emitted: %d\n", len(report.Helpers))
	fmt.Printf("  Security risk: %s\n", report.Security.RiskLevel)
	fmt.Println()
}

// clearScreen clears the terminal screen
func (pr *ProgressReporter) clearScreen() {
	fmt.Print("\033[2J\033[H")
}

// clearLine clears the current line
func (pr *ProgressReporter) clearLine() {
	fmt.Print("\033[K")
}
