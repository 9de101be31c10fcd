package validate

import (
	"errors"
	"fmt"
	"strings"

	"tokensmith/internal/modular"
	"tokensmith/internal/resolver"
	"tokensmith/internal/tokens"
)

// References resolves every reference in the tree against the merged
// index. Unresolved references are high severity; circular chains are
// critical; references that only resolve through a naming-convention
// rewrite are flagged as format issues so the author can align the
// spelling with the token it points at.
func (v *Validator) References(tree *modular.Tree) *Report {
	report := &Report{}

	ix, err := resolver.NewIndex(tree.Metadata.TokenSetOrder, tree.Sets)
	if err != nil {
		var invalid *tokens.InvalidNodeError
		if errors.As(err, &invalid) {
			report.Add(Issue{
				Kind:     KindStructuralMismatch,
				Severity: SeverityHigh,
				Path:     strings.Join(invalid.Path, "."),
				Message:  err.Error(),
			})
			return report
		}
		report.Add(Issue{
			Kind:     KindStructuralMismatch,
			Severity: SeverityHigh,
			Message:  err.Error(),
		})
		return report
	}

	for _, setName := range tree.Metadata.TokenSetOrder {
		set, ok := tree.Sets[setName]
		if !ok {
			continue
		}
		flat, err := tokens.Flatten(set)
		if err != nil {
			continue
		}
		for _, name := range tokens.SortedNames(flat) {
			tok := flat[name]
			qualified := setName + "." + name
			v.checkTokenReferences(ix, qualified, tok, report)
		}
	}

	// cycles that no single resolution walked all the way around
	graph := resolver.BuildDependencyGraphFromIndex(ix)
	if cycle := graph.FindCycle(); cycle != nil {
		if !hasCircularFinding(report) {
			report.Add(Issue{
				Kind:       KindCircularReference,
				Severity:   SeverityCritical,
				Path:       cycle[0],
				Message:    fmt.Sprintf("circular reference chain: %s.", strings.Join(cycle, " -> ")),
				Suggestion: "Break the cycle by giving one token in the chain a concrete value.",
			})
		}
	}

	return report
}

func (v *Validator) checkTokenReferences(ix *resolver.Index, qualified string, tok *tokens.Token, report *Report) {
	refs := resolver.ReferencesIn(tok.Value)
	if len(refs) == 0 {
		return
	}

	for _, ref := range refs {
		res := ix.ResolveWithLimit("{"+ref+"}", v.hopLimit())
		if res.Resolved {
			if res.Rewritten != "" {
				report.Add(Issue{
					Kind:     KindFormatIssue,
					Severity: SeverityLow,
					Path:     qualified,
					Message: fmt.Sprintf("reference {%s} in %q only resolves via the alternative spelling %q.",
						ref, qualified, res.Rewritten),
					Suggestion: fmt.Sprintf("Rewrite the reference as {%s}.", res.Rewritten),
				})
			}
			continue
		}
		for _, resErr := range res.Errors {
			report.Add(classifyResolutionError(qualified, resErr))
		}
	}
}

func classifyResolutionError(qualified string, err error) Issue {
	var circular *resolver.CircularReferenceError
	if errors.As(err, &circular) {
		return Issue{
			Kind:       KindCircularReference,
			Severity:   SeverityCritical,
			Path:       qualified,
			Message:    err.Error(),
			Suggestion: "Break the cycle by giving one token in the chain a concrete value.",
		}
	}
	var unresolved *resolver.UnresolvedReferenceError
	issue := Issue{
		Kind:     KindUnresolvedReference,
		Severity: SeverityHigh,
		Path:     qualified,
		Message:  err.Error(),
	}
	if errors.As(err, &unresolved) && len(unresolved.Suggestions) > 0 {
		issue.Suggestion = fmt.Sprintf("Did you mean %s?", strings.Join(unresolved.Suggestions, ", "))
	}
	return issue
}

func hasCircularFinding(report *Report) bool {
	for _, i := range report.Issues {
		if i.Kind == KindCircularReference {
			return true
		}
	}
	return false
}
