package validate

import (
	"fmt"
	"sort"
	"strings"
)

// Severity ranks how much a finding threatens the integrity of the
// token corpus
type Severity string

const (
	// SeverityCritical findings mean the corpus cannot be safely used
	// or transformed at all
	SeverityCritical Severity = "critical"

	// SeverityHigh findings break a concrete consumer-visible behavior
	SeverityHigh Severity = "high"

	// SeverityMedium findings degrade the corpus but nothing is broken
	SeverityMedium Severity = "medium"

	// SeverityLow findings are stylistic or informational
	SeverityLow Severity = "low"
)

// Finding kinds, one per class of structural or semantic problem
const (
	KindMissingFile         = "missing-file"
	KindInvalidJSON         = "invalid-json"
	KindStructuralMismatch  = "structural-mismatch"
	KindUnresolvedReference = "unresolved-reference"
	KindCircularReference   = "circular-reference"
	KindFormatIssue         = "format-issue"
	KindThemeMisconfigured  = "theme-misconfiguration"
	KindMissingType         = "missing-type"
	KindRoundtripDrift      = "roundtrip-drift"
)

// Issue is one validation finding
type Issue struct {
	Kind       string   `json:"kind"`
	Severity   Severity `json:"severity"`
	Path       string   `json:"path,omitempty"`
	Message    string   `json:"message"`
	Suggestion string   `json:"suggestion,omitempty"`
}

func (i Issue) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", i.Severity, i.Message)
	if i.Suggestion != "" {
		fmt.Fprintf(&b, " Suggestion: %s", i.Suggestion)
	}
	return b.String()
}

// Report aggregates the findings of one validation pass
type Report struct {
	Issues   []Issue  `json:"issues"`
	Warnings []string `json:"warnings,omitempty"`
}

// Add records a finding
func (r *Report) Add(issue Issue) {
	r.Issues = append(r.Issues, issue)
}

// Warn records a non-finding observation
func (r *Report) Warn(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Merge folds another report's findings into this one
func (r *Report) Merge(other *Report) {
	if other == nil {
		return
	}
	r.Issues = append(r.Issues, other.Issues...)
	r.Warnings = append(r.Warnings, other.Warnings...)
}

// Valid reports whether the corpus passed: no critical or high
// severity findings. Medium and low findings do not fail validation.
func (r *Report) Valid() bool {
	for _, i := range r.Issues {
		if i.Severity == SeverityCritical || i.Severity == SeverityHigh {
			return false
		}
	}
	return true
}

// Count returns the number of findings at the given severity
func (r *Report) Count(sev Severity) int {
	n := 0
	for _, i := range r.Issues {
		if i.Severity == sev {
			n++
		}
	}
	return n
}

// Sort orders findings by severity (critical first), then path
func (r *Report) Sort() {
	rank := map[Severity]int{
		SeverityCritical: 0,
		SeverityHigh:     1,
		SeverityMedium:   2,
		SeverityLow:      3,
	}
	sort.SliceStable(r.Issues, func(a, b int) bool {
		if rank[r.Issues[a].Severity] != rank[r.Issues[b].Severity] {
			return rank[r.Issues[a].Severity] < rank[r.Issues[b].Severity]
		}
		return r.Issues[a].Path < r.Issues[b].Path
	})
}
