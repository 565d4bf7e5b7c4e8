// Package security implements the Security Scanner (C3): a pre-transformation
// syntactic check on raw source text. Modeled on
// pkg/scenario/validator/validator.go's Errors/Warnings accumulator shape,
// generalized from YAML-scenario checks to source-text checks.
package security

import (
	"fmt"
	"strings"
)

// defaultMaxInputSize is 10 MiB.
const defaultMaxInputSize = 10 * 1024 * 1024

// defaultMaxDensityPerKiB bounds candidate construct markers per KiB as a
// defence against pathological inputs (e.g. a file that is nothing but
// "~~~~~~~~~~..."). Ordinary kinda source is construct-dense by design — a
// short all-construct file lands around 100 markers/KiB — so the cap sits
// well above that, where only adversarial input reaches.
const defaultMaxDensityPerKiB = 300.0

// defaultMaxWarnCategories is how many distinct warning categories a file
// may accumulate before the aggregate risk escalates to an error.
const defaultMaxWarnCategories = 2

// RiskLevel is the scanner's coarse risk classification.
type RiskLevel string

const (
	RiskNone   RiskLevel = "none"
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Result is the outcome of a scan. Fail-closed: IsSafe is false whenever
// Errors is non-empty OR the aggregate-risk rule below is tripped —
// warnings alone can reject a file once they spread across enough
// categories.
type Result struct {
	IsSafe    bool
	RiskLevel RiskLevel
	Errors    []string
	Warnings  []string
}

// Config tunes the scanner's thresholds. Zero values fall back to the
// defaults above.
type Config struct {
	MaxInputSize      int
	MaxDensityPerKiB  float64
	MaxWarnCategories int
	Patterns          []DangerousPattern
}

// Scanner runs its checks in order: size, density,
// dangerous-pattern scan, then risk aggregation.
type Scanner struct {
	maxInputSize      int
	maxDensityPerKiB  float64
	maxWarnCategories int
	patterns          []DangerousPattern
}

// New returns a Scanner configured with cfg, falling back to the defaults
// for any zero field.
func New(cfg Config) *Scanner {
	s := &Scanner{
		maxInputSize:      cfg.MaxInputSize,
		maxDensityPerKiB:  cfg.MaxDensityPerKiB,
		maxWarnCategories: cfg.MaxWarnCategories,
		patterns:          cfg.Patterns,
	}
	if s.maxInputSize <= 0 {
		s.maxInputSize = defaultMaxInputSize
	}
	if s.maxDensityPerKiB <= 0 {
		s.maxDensityPerKiB = defaultMaxDensityPerKiB
	}
	if s.maxWarnCategories <= 0 {
		s.maxWarnCategories = defaultMaxWarnCategories
	}
	if s.patterns == nil {
		s.patterns = defaultPatterns
	}
	return s
}

// SizeError is returned when source exceeds the configured max input size.
type SizeError struct {
	Size, Max int
}

func (e *SizeError) Error() string {
	return fmt.Sprintf("security: input size %d exceeds max %d", e.Size, e.Max)
}

// DensityError is returned when construct-marker density exceeds the
// configured cap, guarding against pathologically marker-dense inputs.
type DensityError struct {
	Density, Max float64
}

func (e *DensityError) Error() string {
	return fmt.Sprintf("security: construct density %.2f/KiB exceeds max %.2f/KiB", e.Density, e.Max)
}

// Scan runs every check against source and returns the aggregate Result.
// Size and density violations are returned as errors directly (they halt
// before any pattern scan is meaningful); dangerous-pattern findings are
// folded into Result instead, since callers get a Result even for
// "safe but noted" inputs.
func (s *Scanner) Scan(source []byte) (*Result, error) {
	if len(source) > s.maxInputSize {
		return nil, &SizeError{Size: len(source), Max: s.maxInputSize}
	}

	density := markerDensityPerKiB(source)
	if density > s.maxDensityPerKiB {
		return nil, &DensityError{Density: density, Max: s.maxDensityPerKiB}
	}

	text := string(source)
	result := &Result{IsSafe: true, RiskLevel: RiskNone}

	warnCategories := make(map[string]bool)
	for _, p := range s.patterns {
		if !p.Regex.MatchString(text) {
			continue
		}
		msg := fmt.Sprintf("%s: %s", p.Name, p.Rationale)
		switch p.Severity {
		case SeverityError:
			result.Errors = append(result.Errors, msg)
		default:
			result.Warnings = append(result.Warnings, msg)
			warnCategories[p.Category] = true
		}
	}

	result.RiskLevel, result.IsSafe = aggregateRisk(result.Errors, warnCategories, s.maxWarnCategories)
	return result, nil
}

// aggregateRisk implements the fail-closed rule: risk is "high"
// (and therefore is_safe=false) if any single hit is an error, OR if the
// count of warning hits on distinct categories exceeds the threshold.
func aggregateRisk(errs []string, warnCategories map[string]bool, maxWarnCategories int) (RiskLevel, bool) {
	if len(errs) > 0 {
		return RiskHigh, false
	}
	n := len(warnCategories)
	if n > maxWarnCategories {
		return RiskHigh, false
	}
	switch n {
	case 0:
		return RiskNone, true
	case 1:
		return RiskLow, true
	default:
		return RiskMedium, true
	}
}

// markerDensityPerKiB counts '~' sigils per kibibyte of source, including
// occurrences inside string literals and comments — deliberately
// conservative, since the density check is a defence against pathological
// input, not a correctness check on construct recognition.
func markerDensityPerKiB(source []byte) float64 {
	if len(source) == 0 {
		return 0
	}
	count := strings.Count(string(source), "~")
	kib := float64(len(source)) / 1024.0
	if kib == 0 {
		kib = 1
	}
	return float64(count) / kib
}

// Report renders Errors and Warnings as a human-readable multi-line string.
func (r *Result) Report() string {
	var sb strings.Builder
	if len(r.Errors) > 0 {
		sb.WriteString("ERRORS:\n")
		for _, e := range r.Errors {
			sb.WriteString(fmt.Sprintf("  - %s\n", e))
		}
	}
	if len(r.Warnings) > 0 {
		sb.WriteString("\nWARNINGS:\n")
		for _, wmsg := range r.Warnings {
			sb.WriteString(fmt.Sprintf("  - %s\n", wmsg))
		}
	}
	if len(r.Errors) == 0 && len(r.Warnings) == 0 {
		sb.WriteString("Security scan passed with no issues.\n")
	}
	return sb.String()
}
