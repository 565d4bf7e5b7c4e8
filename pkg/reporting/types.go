package reporting

import "time"

// TransformReport represents a complete record of one file's run through the
// pipeline: what it used, what the scanner found, and how it came out.
type TransformReport struct {
	// File metadata
	TransformID string    `json:"transform_id"`
	SourcePath  string    `json:"source_path"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Duration    string    `json:"duration"`

	// Result
	Status  TransformStatus `json:"status"`
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`

	// Security scan
	Security SecurityInfo `json:"security"`

	// Constructs the file actually used, and the helpers the emitter
	// produced a runtime block for
	ConstructUsage map[string]int `json:"construct_usage,omitempty"`
	Helpers        []string       `json:"helpers,omitempty"`

	// Output sizes, for at-a-glance diffing across runs
	LineCount    int `json:"line_count"`
	RuntimeBytes int `json:"runtime_bytes"`

	// Audit trail of record/replay driver activity for this run, if any
	ReplayLog []AuditEntry `json:"replay_log,omitempty"`

	// Errors encountered
	Errors []string `json:"errors,omitempty"`
}

// TransformStatus represents the terminal status of a transform run.
type TransformStatus string

const (
	StatusRunning   TransformStatus = "running"
	StatusCompleted TransformStatus = "completed"
	StatusFailed    TransformStatus = "failed"
	StatusRejected  TransformStatus = "rejected"
)

// SecurityInfo mirrors security.Result in a report-friendly, JSON-tagged
// shape so reports don't need to import pkg/security directly.
type SecurityInfo struct {
	IsSafe    bool     `json:"is_safe"`
	RiskLevel string   `json:"risk_level"`
	Errors    []string `json:"errors,omitempty"`
	Warnings  []string `json:"warnings,omitempty"`
}

// AuditEntry is one recorded driver decision during a record or replay
// session: which call it was, what the engine returned, and whether replay
// accepted or flagged it as a mismatch.
type AuditEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
	Construct string    `json:"construct,omitempty"`
	Success   bool      `json:"success"`
	Error     string    `json:"error,omitempty"`
	Details   string    `json:"details,omitempty"`
}

// LiveTransformState represents the current state of a running batch
// transform, reported through ProgressReporter while pkg/worker fans files
// out across the pool.
type LiveTransformState struct {
	BatchID   string        `json:"batch_id"`
	State     string        `json:"state"`
	StartTime time.Time     `json:"start_time"`
	Elapsed   time.Duration `json:"elapsed"`

	FilesTotal     int `json:"files_total"`
	FilesCompleted int `json:"files_completed"`
	FilesFailed    int `json:"files_failed"`

	CurrentFile string `json:"current_file,omitempty"`
}
