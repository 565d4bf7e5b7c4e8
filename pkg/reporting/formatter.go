package reporting

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ReportFormat represents the report output format
type ReportFormat string

const (
	ReportFormatHTML ReportFormat = "html"
	ReportFormatText ReportFormat = "text"
	ReportFormatJSON ReportFormat = "json"
)

// Formatter generates formatted reports from transform data
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
func (f *Formatter) GenerateReport(report *TransformReport, format ReportFormat, outputPath string) error {
	switch format {
	case ReportFormatHTML:
		return f.generateHTMLReport(report, outputPath)
	case ReportFormatText:
		return f.generateTextReport(report, outputPath)
	case ReportFormatJSON:
		// Already handled by storage
		return fmt.Errorf("JSON format is automatically saved by storage")
	default:
		return fmt.Errorf("unsupported report format: %s", format)
	}
}

// generateHTMLReport generates an HTML report
func (f *Formatter) generateHTMLReport(report *TransformReport, outputPath string) error {
	tmpl, err := template.New("report").Funcs(template.FuncMap{
		"formatTime": func(t time.Time) string {
			return t.Format("2006-01-02 15:04:05")
		},
		"statusClass": func(passed bool) string {
			if passed {
				return "pass"
			}
			return "fail"
		},
		"statusIcon": func(passed bool) string {
			if passed {
				return "✅"
			}
			return "❌"
		},
	}).Parse(htmlTemplate)

	if err != nil {
		return fmt.Errorf("failed to parse HTML template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, report); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	if err := os.WriteFile(outputPath, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write HTML report: %w", err)
	}

	f.logger.Info("HTML report generated", "path", outputPath)
	return nil
}

// generateTextReport generates a plain text report
func (f *Formatter) generateTextReport(report *TransformReport, outputPath string) error {
	var buf bytes.Buffer

	buf.WriteString(strings.Repeat("=", 80) + "\n")
	buf.WriteString("   TRANSFORM REPORT\n")
	buf.WriteString(strings.Repeat("=", 80) + "\n\n")

	status := "COMPLETED"
	if !report.Success {
		status = "FAILED"
	}
	if report.Status == StatusRejected {
		status = "REJECTED"
	}

	buf.WriteString("SUMMARY\n")
	buf.WriteString(strings.Repeat("-", 80) + "\n")
	buf.WriteString(fmt.Sprintf("Status:       %s\n", status))
	buf.WriteString(fmt.Sprintf("Transform ID: %s\n", report.TransformID))
	buf.WriteString(fmt.Sprintf("Source:       %s\n", report.SourcePath))
	buf.WriteString(fmt.Sprintf("Start Time:   %s\n", report.StartTime.Format("2006-01-02 15:04:05")))
	buf.WriteString(fmt.Sprintf("End Time:     %s\n", report.EndTime.Format("2006-01-02 15:04:05")))
	buf.WriteString(fmt.Sprintf("Duration:     %s\n", report.Duration))
	if report.Message != "" {
		buf.WriteString(fmt.Sprintf("Message:      %s\n", report.Message))
	}
	buf.WriteString("\n")

	buf.WriteString("SECURITY SCAN\n")
	buf.WriteString(strings.Repeat("-", 80) + "\n")
	buf.WriteString(fmt.Sprintf("Safe:  %t\n", report.Security.IsSafe))
	buf.WriteString(fmt.Sprintf("Risk:  %s\n", report.Security.RiskLevel))
	if len(report.Security.Errors) > 0 {
		buf.WriteString(fmt.Sprintf("Errors:   %s\n", strings.Join(report.Security.Errors, "; ")))
	}
	if len(report.Security.Warnings) > 0 {
		buf.WriteString(fmt.Sprintf("Warnings: %s\n", strings.Join(report.Security.Warnings, "; ")))
	}
	buf.WriteString("\n")

	if len(report.ConstructUsage) > 0 {
		buf.WriteString("CONSTRUCTS USED\n")
		buf.WriteString(strings.Repeat("-", 80) + "\n")
		names := make([]string, 0, len(report.ConstructUsage))
		for name := range report.ConstructUsage {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			buf.WriteString(fmt.Sprintf("  %-30s %d\n", name, report.ConstructUsage[name]))
		}
		buf.WriteString("\n")
	}

	if len(report.Helpers) > 0 {
		buf.WriteString("RUNTIME HELPERS EMITTED\n")
		buf.WriteString(strings.Repeat("-", 80) + "\n")
		buf.WriteString(fmt.Sprintf("  %s\n", strings.Join(report.Helpers, ", ")))
		buf.WriteString(fmt.Sprintf("  (%d bytes)\n\n", report.RuntimeBytes))
	}

	if len(report.ReplayLog) > 0 {
		buf.WriteString("REPLAY AUDIT LOG\n")
		buf.WriteString(strings.Repeat("-", 80) + "\n")
		for i, entry := range report.ReplayLog {
			mark := "✓"
			if !entry.Success {
				mark = "✗"
			}
			buf.WriteString(fmt.Sprintf("%d. [%s] %s %s\n",
				i+1,
				entry.Timestamp.Format("15:04:05"),
				mark,
				entry.Action,
			))
			if entry.Construct != "" {
				buf.WriteString(fmt.Sprintf("   Construct: %s\n", entry.Construct))
			}
			if entry.Details != "" {
				buf.WriteString(fmt.Sprintf("   Details:   %s\n", entry.Details))
			}
			if entry.Error != "" {
				buf.WriteString(fmt.Sprintf("   Error:     %s\n", entry.Error))
			}
			buf.WriteString("\n")
		}
	}

	if len(report.Errors) > 0 {
		buf.WriteString("ERRORS\n")
		buf.WriteString(strings.Repeat("-", 80) + "\n")
		for i, err := range report.Errors {
			buf.WriteString(fmt.Sprintf("%d. %s\n", i+1, err))
		}
		buf.WriteString("\n")
	}

	buf.WriteString(strings.Repeat("=", 80) + "\n")
	buf.WriteString(fmt.Sprintf("Generated: %s\n", time.Now().Format("2006-01-02 15:04:05")))
	buf.WriteString(strings.Repeat("=", 80) + "\n")

	if err := os.WriteFile(outputPath, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write text report: %w", err)
	}

	f.logger.Info("Text report generated", "path", outputPath)
	return nil
}

// CompareReports generates a comparison report for multiple transform runs
func (f *Formatter) CompareReports(reports []*TransformReport, outputPath string) error {
	if len(reports) < 2 {
		return fmt.Errorf("need at least 2 reports to compare")
	}

	var buf bytes.Buffer

	buf.WriteString(strings.Repeat("=", 80) + "\n")
	buf.WriteString("   TRANSFORM COMPARISON\n")
	buf.WriteString(strings.Repeat("=", 80) + "\n\n")

	sort.Slice(reports, func(i, j int) bool {
		return reports[i].StartTime.Before(reports[j].StartTime)
	})

	buf.WriteString("SUMMARY\n")
	buf.WriteString(strings.Repeat("-", 80) + "\n")
	buf.WriteString(fmt.Sprintf("%-22s %-30s %-12s %-10s\n",
		"Transform ID", "Source", "Status", "Duration"))
	buf.WriteString(strings.Repeat("-", 80) + "\n")

	for _, report := range reports {
		status := "COMPLETED"
		if !report.Success {
			status = "FAILED"
		}
		buf.WriteString(fmt.Sprintf("%-22s %-30s %-12s %-10s\n",
			report.TransformID[:min(22, len(report.TransformID))],
			report.SourcePath[:min(30, len(report.SourcePath))],
			status,
			report.Duration,
		))
	}
	buf.WriteString("\n")

	buf.WriteString("CONSTRUCT USAGE COMPARISON\n")
	buf.WriteString(strings.Repeat("-", 80) + "\n")

	constructNames := make(map[string]bool)
	for _, report := range reports {
		for name := range report.ConstructUsage {
			constructNames[name] = true
		}
	}

	names := make([]string, 0, len(constructNames))
	for name := range constructNames {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		buf.WriteString(fmt.Sprintf("\n%s:\n", name))
		for _, report := range reports {
			count, used := report.ConstructUsage[name]
			if used {
				buf.WriteString(fmt.Sprintf("  [%s] %d use(s)\n",
					report.TransformID[:min(12, len(report.TransformID))], count))
			} else {
				buf.WriteString(fmt.Sprintf("  [%s] not used\n",
					report.TransformID[:min(12, len(report.TransformID))]))
			}
		}
	}
	buf.WriteString("\n")

	if err := os.WriteFile(outputPath, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write comparison report: %w", err)
	}

	f.logger.Info("Comparison report generated", "path", outputPath)
	return nil
}

// GetReportPath generates a report file path based on a transform report and format
func GetReportPath(report *TransformReport, format ReportFormat, outputDir string) string {
	timestamp := report.StartTime.Format("20060102-150405")
	ext := string(format)
	filename := fmt.Sprintf("report-%s-%s.%s", timestamp, report.TransformID, ext)
	return filepath.Join(outputDir, filename)
}

// Helper function
func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// HTML template for report generation
const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Transform Report - {{.TransformID}}</title>
    <style>
        body {
            font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, "Helvetica Neue", Arial, sans-serif;
            line-height: 1.6;
            color: #333;
            max-width: 1200px;
            margin: 0 auto;
            padding: 20px;
            background-color: #f5f5f5;
        }
        .container {
            background-color: white;
            border-radius: 8px;
            box-shadow: 0 2px 4px rgba(0,0,0,0.1);
            padding: 30px;
        }
        h1, h2 {
            color: #2c3e50;
            border-bottom: 2px solid #3498db;
            padding-bottom: 10px;
        }
        .header {
            background: linear-gradient(135deg, #667eea 0%, #764ba2 100%);
            color: white;
            padding: 30px;
            border-radius: 8px 8px 0 0;
            margin: -30px -30px 30px -30px;
        }
        .status {
            display: inline-block;
            padding: 5px 15px;
            border-radius: 4px;
            font-weight: bold;
            margin-left: 10px;
        }
        .status.pass {
            background-color: #27ae60;
            color: white;
        }
        .status.fail {
            background-color: #e74c3c;
            color: white;
        }
        .info-grid {
            display: grid;
            grid-template-columns: repeat(auto-fit, minmax(250px, 1fr));
            gap: 20px;
            margin: 20px 0;
        }
        .info-box {
            background-color: #ecf0f1;
            padding: 15px;
            border-radius: 4px;
        }
        .info-label {
            font-weight: bold;
            color: #7f8c8d;
            font-size: 0.9em;
            margin-bottom: 5px;
        }
        .info-value {
            font-size: 1.1em;
            color: #2c3e50;
        }
        table {
            width: 100%;
            border-collapse: collapse;
            margin: 20px 0;
        }
        th, td {
            padding: 12px;
            text-align: left;
            border-bottom: 1px solid #ddd;
        }
        th {
            background-color: #3498db;
            color: white;
        }
        tr:hover {
            background-color: #f5f5f5;
        }
        .audit-entry {
            padding: 10px;
            margin: 5px 0;
            border-radius: 4px;
            background-color: #f9f9f9;
        }
        .audit-success {
            border-left: 4px solid #27ae60;
        }
        .audit-failure {
            border-left: 4px solid #e74c3c;
        }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>Transform Report</h1>
            <p>{{.SourcePath}}</p>
            <p>Transform ID: {{.TransformID}}</p>
        </div>

        <h2>Summary<span class="status {{statusClass .Success}}">{{if .Success}}COMPLETED{{else}}FAILED{{end}}</span></h2>
        <div class="info-grid">
            <div class="info-box">
                <div class="info-label">Start Time</div>
                <div class="info-value">{{formatTime .StartTime}}</div>
            </div>
            <div class="info-box">
                <div class="info-label">End Time</div>
                <div class="info-value">{{formatTime .EndTime}}</div>
            </div>
            <div class="info-box">
                <div class="info-label">Duration</div>
                <div class="info-value">{{.Duration}}</div>
            </div>
            <div class="info-box">
                <div class="info-label">Status</div>
                <div class="info-value">{{.Status}}</div>
            </div>
        </div>

        <h2>Security Scan<span class="status {{statusClass .Security.IsSafe}}">{{.Security.RiskLevel}}</span></h2>
        {{if .Security.Errors}}
        <p><strong>Errors:</strong> {{range .Security.Errors}}{{.}}; {{end}}</p>
        {{end}}
        {{if .Security.Warnings}}
        <p><strong>Warnings:</strong> {{range .Security.Warnings}}{{.}}; {{end}}</p>
        {{end}}

        {{if .ConstructUsage}}
        <h2>Constructs Used</h2>
        <table>
            <thead>
                <tr>
                    <th>Construct</th>
                    <th>Count</th>
                </tr>
            </thead>
            <tbody>
                {{range $name, $count := .ConstructUsage}}
                <tr>
                    <td>{{$name}}</td>
                    <td>{{$count}}</td>
                </tr>
                {{end}}
            </tbody>
        </table>
        {{end}}

        {{if .ReplayLog}}
        <h2>Replay Audit Log</h2>
        {{range .ReplayLog}}
        <div class="audit-entry {{if .Success}}audit-success{{else}}audit-failure{{end}}">
            <strong>{{formatTime .Timestamp}}</strong> {{.Action}} {{if .Construct}}({{.Construct}}){{end}}
            {{if .Details}}<div>{{.Details}}</div>{{end}}
            {{if .Error}}<div>Error: {{.Error}}</div>{{end}}
        </div>
        {{end}}
        {{end}}

        {{if .Errors}}
        <h2>Errors</h2>
        <ul>
            {{range .Errors}}
            <li>{{.}}</li>
            {{end}}
        </ul>
        {{end}}

        <p style="text-align: center; color: #7f8c8d; margin-top: 30px;">
            Generated by kinda • {{formatTime .EndTime}}
        </p>
    </div>
</body>
</html>
`
