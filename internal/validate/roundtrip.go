package validate

import (
	"fmt"

	"github.com/google/go-cmp/cmp"

	"tokensmith/internal/modular"
	"tokensmith/internal/transform"
)

// Roundtrip verifies that consolidating the tree and splitting the
// result leaves the resolved token graph untouched. Any drifted path is
// a critical finding: transformation must never change what a token
// resolves to.
func (v *Validator) Roundtrip(tree *modular.Tree) *Report {
	report := &Report{}
	engine := v.engine()

	doc, err := engine.Consolidate(tree)
	if err != nil {
		report.Add(Issue{
			Kind:     KindRoundtripDrift,
			Severity: SeverityCritical,
			Message:  fmt.Sprintf("consolidation failed during round-trip verification: %v.", err),
		})
		return report
	}

	// resolution failures are References' business; this check only
	// cares about drift between the two sides
	before, _ := engine.ResolvedGraph(doc)

	reSplit, err := engine.Split(doc, nil)
	if err != nil {
		report.Add(Issue{
			Kind:     KindRoundtripDrift,
			Severity: SeverityCritical,
			Message:  fmt.Sprintf("re-splitting failed during round-trip verification: %v.", err),
		})
		return report
	}

	rebuilt, err := engine.Consolidate(reSplit)
	if err != nil {
		report.Add(Issue{
			Kind:     KindRoundtripDrift,
			Severity: SeverityCritical,
			Message:  fmt.Sprintf("reassembly failed during round-trip verification: %v.", err),
		})
		return report
	}

	after, _ := engine.ResolvedGraph(rebuilt)
	for _, diff := range transform.DiffResolved(before, after) {
		report.Add(Issue{
			Kind:     KindRoundtripDrift,
			Severity: SeverityCritical,
			Path:     diff.Path,
			Message:  fmt.Sprintf("round-trip changed the resolved value at %q: %v became %v.", diff.Path, diff.Before, diff.After),
		})
	}

	if themeDrift(tree.Themes, reSplit.Themes) {
		report.Add(Issue{
			Kind:     KindRoundtripDrift,
			Severity: SeverityCritical,
			Message:  "round-trip changed the theme declarations.",
		})
	}

	return report
}

// RoundtripAgainst compares the tree against the canonical document it
// is supposed to represent: consolidating the tree must yield the same
// resolved graph as the document on disk.
func (v *Validator) RoundtripAgainst(tree *modular.Tree, canonicalPath string) *Report {
	report := &Report{}
	engine := v.engine()

	doc, _, err := modular.ReadCanonical(canonicalPath)
	if err != nil {
		report.Add(classifyReadError(err))
		return report
	}

	rebuilt, err := engine.Consolidate(tree)
	if err != nil {
		report.Add(Issue{
			Kind:     KindRoundtripDrift,
			Severity: SeverityCritical,
			Message:  fmt.Sprintf("consolidation failed while comparing against %s: %v.", canonicalPath, err),
		})
		return report
	}

	want, _ := engine.ResolvedGraph(doc)
	got, _ := engine.ResolvedGraph(rebuilt)
	for _, diff := range transform.DiffResolved(want, got) {
		report.Add(Issue{
			Kind:     KindRoundtripDrift,
			Severity: SeverityCritical,
			Path:     diff.Path,
			Message: fmt.Sprintf("the tree and %s disagree at %q: %v there, %v here.",
				canonicalPath, diff.Path, diff.Before, diff.After),
			Suggestion: "Re-run split or consolidate so both representations agree.",
		})
	}
	return report
}

// themeDrift reports whether theme declarations changed, style
// references included
func themeDrift(before, after []modular.Theme) bool {
	if len(before) == 0 && len(after) == 0 {
		return false
	}
	return !cmp.Equal(before, after)
}
