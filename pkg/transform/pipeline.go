package transform

import (
	"context"
	"fmt"
	"time"

	"github.com/jihwankim/kinda/pkg/emit"
	"github.com/jihwankim/kinda/pkg/metrics"
	"github.com/jihwankim/kinda/pkg/registry"
	"github.com/jihwankim/kinda/pkg/reporting"
	"github.com/jihwankim/kinda/pkg/security"
)

// Phase represents the current stage of a single file's transform pipeline.
type Phase int

const (
	PhaseScan Phase = iota
	PhaseSecurityCheck
	PhaseRewrite
	PhaseEmit
	PhaseDone
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseScan:
		return "SCAN"
	case PhaseSecurityCheck:
		return "SECURITY_CHECK"
	case PhaseRewrite:
		return "REWRITE"
	case PhaseEmit:
		return "EMIT"
	case PhaseDone:
		return "DONE"
	case PhaseFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// RejectedError is returned when the Security Scanner marks source unsafe.
// Fail-closed: the pipeline never reaches PhaseRewrite
// for source the scanner flags.
type RejectedError struct {
	Result *security.Result
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("security: rejected (risk=%s): %d error(s), %d warning(s)",
		e.Result.RiskLevel, len(e.Result.Errors), len(e.Result.Warnings))
}

// PipelineConfig tunes the Pipeline's stages. Zero values fall back to
// package defaults.
type PipelineConfig struct {
	Security          security.Config
	FastPathThreshold int
	MaxNestingDepth   int
	Timeout           time.Duration
	Logger            *reporting.Logger
	Metrics           *metrics.Metrics
}

// Pipeline wires C3 (Security Scanner), C4 (Line Transformer), and C5
// (Block Transformer) into the single Scan -> SecurityCheck -> Rewrite ->
// Emit -> Done/Failed sequence, each phase transition logged.
type Pipeline struct {
	scanner *security.Scanner
	block   *BlockTransformer
	timeout time.Duration
	log     *reporting.Logger
	metrics *metrics.Metrics
}

// NewPipeline builds a Pipeline backed by reg's construct table.
func NewPipeline(reg *registry.Registry, cfg PipelineConfig) *Pipeline {
	lt := NewLineTransformer(reg)
	bt := NewBlockTransformer(lt, cfg.FastPathThreshold, cfg.MaxNestingDepth)

	log := cfg.Logger
	if log == nil {
		log = reporting.NewLogger(reporting.LoggerConfig{Level: reporting.LogLevelInfo})
	}

	return &Pipeline{
		scanner: security.New(cfg.Security),
		block:   bt,
		timeout: cfg.Timeout,
		log:     log,
		metrics: cfg.Metrics,
	}
}

// Run transforms source end to end with no file path of its own to tag log
// lines with; see RunNamed for the batch-aware variant.
func (p *Pipeline) Run(ctx context.Context, source []byte) (*Result, error) {
	return p.RunNamed(ctx, source, "")
}

// RunNamed is Run with sourcePath attached to every log line the run emits,
// so a worker pool fanning out across many files can grep one file's
// progress out of the interleaved output. sourcePath may be empty.
func (p *Pipeline) RunNamed(ctx context.Context, source []byte, sourcePath string) (*Result, error) {
	start := time.Now()
	if p.metrics != nil {
		defer func() { p.metrics.TransformSeconds.Observe(time.Since(start).Seconds()) }()
	}

	log := p.log
	if sourcePath != "" {
		log = log.WithSource(sourcePath)
	}

	phase := PhaseScan
	log.Stage(phase.String())

	lines := splitLines(source)

	phase = PhaseSecurityCheck
	log.Stage(phase.String())
	secResult, err := p.scanner.Scan(source)
	if err != nil {
		phase = PhaseFailed
		log.Stage(phase.String(), "error", err.Error())
		return nil, err
	}
	if !secResult.IsSafe {
		phase = PhaseFailed
		log.Stage(phase.String(), "risk", string(secResult.RiskLevel))
		if p.metrics != nil {
			p.metrics.ObserveSecurityRejection(string(secResult.RiskLevel))
		}
		return nil, &RejectedError{Result: secResult}
	}

	phase = PhaseRewrite
	log.Stage(phase.String())
	res, err := RunWithDeadline(ctx, p.timeout, func() (*Result, error) {
		return p.block.Transform(lines)
	})
	if err != nil {
		phase = PhaseFailed
		log.Stage(phase.String(), "error", err.Error())
		return nil, err
	}
	res.Security = secResult

	phase = PhaseEmit
	log.Stage(phase.String())
	runtime, err := emit.FromHelpers(res.Helpers)
	if err != nil {
		phase = PhaseFailed
		log.Stage(phase.String(), "error", err.Error())
		return nil, fmt.Errorf("pipeline: emit: %w", err)
	}
	res.Runtime = runtime

	if p.metrics != nil {
		p.metrics.ObserveConstructUsage(res.ConstructUsage)
	}

	phase = PhaseDone
	log.Stage(phase.String(), "lines", len(res.Lines), "helpers", len(res.Helpers))
	log.Summary(sourcePath, res.ConstructUsage, len(res.Helpers))
	return res, nil
}

// splitLines splits source on '\n', stripping a single trailing '\r' from
// each line so CRLF input doesn't leak carriage returns into emitted output.
func splitLines(source []byte) []string {
	var lines []string
	start := 0
	for i := 0; i < len(source); i++ {
		if source[i] == '\n' {
			lines = append(lines, trimCR(string(source[start:i])))
			start = i + 1
		}
	}
	if start < len(source) {
		lines = append(lines, trimCR(string(source[start:])))
	}
	return lines
}

func trimCR(s string) string {
	if len(s) > 0 && s[len(s)-1] == '\r' {
		return s[:len(s)-1]
	}
	return s
}
