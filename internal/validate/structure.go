package validate

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"tokensmith/internal/color"
	"tokensmith/internal/modular"
	"tokensmith/internal/resolver"
	"tokensmith/internal/tokens"
)

// Structure checks the modular directory's file layout: required files
// present and parseable, and a bijection between tokenSetOrder and the
// set files on disk. It returns the tree when the layout is readable so
// later checks can reuse it; a nil tree means the directory is too
// broken to continue.
func (v *Validator) Structure(dir string) (*modular.Tree, *Report) {
	report := &Report{}

	tree, err := modular.ReadTree(dir)
	if err != nil {
		report.Add(classifyReadError(err))
		return nil, report
	}

	for _, w := range tree.Warnings {
		report.Warn("%s", w)
	}

	seen := map[string]bool{}
	for _, name := range tree.Metadata.TokenSetOrder {
		if seen[name] {
			report.Add(Issue{
				Kind:       KindStructuralMismatch,
				Severity:   SeverityHigh,
				Path:       name,
				Message:    fmt.Sprintf("token set %q appears more than once in tokenSetOrder.", name),
				Suggestion: fmt.Sprintf("Remove the duplicate %q entry from %s.", name, modular.MetadataFile),
			})
		}
		seen[name] = true
	}

	v.checkExpectedSets(tree, report)
	v.checkTokenShapes(tree, report)

	return tree, report
}

// checkExpectedSets compares the declared order against the configured
// set layout. A self-consistent alternate layout is only worth a
// warning; validation does not force one naming scheme on every corpus.
func (v *Validator) checkExpectedSets(tree *modular.Tree, report *Report) {
	if len(v.ExpectedSets) == 0 {
		return
	}
	declared := map[string]bool{}
	for _, name := range tree.Metadata.TokenSetOrder {
		declared[name] = true
	}
	var missing []string
	for _, want := range v.ExpectedSets {
		if !declared[want] {
			missing = append(missing, want)
		}
	}
	if len(missing) > 0 && len(missing) < len(v.ExpectedSets) {
		report.Warn("expected token sets not declared: %v", missing)
	}
}

// checkTokenShapes walks every set looking for leaves without a usable
// $type. Inference during normalization classifies most untyped leaves;
// the ones it falls back to the catch-all type on were too ambiguous
// and need an explicit $type from the author.
func (v *Validator) checkTokenShapes(tree *modular.Tree, report *Report) {
	for _, name := range tree.Metadata.TokenSetOrder {
		set, ok := tree.Sets[name]
		if !ok {
			continue
		}
		walkUntyped(name, set, report)
	}
}

func walkUntyped(prefix string, node map[string]any, report *Report) {
	if value, hasValue := node["$value"]; hasValue {
		t, _ := node["$type"].(string)
		// reference-valued leaves take their type from the token they
		// point at, so the catch-all type is fine there
		if (t == "" || t == tokens.TypeOther) && len(resolver.ReferencesIn(value)) == 0 {
			report.Add(Issue{
				Kind:       KindMissingType,
				Severity:   SeverityMedium,
				Path:       prefix,
				Message:    fmt.Sprintf("token %q has no usable $type and its type could not be inferred from the value.", prefix),
				Suggestion: "Add an explicit $type to the token.",
			})
		}
		if t == tokens.TypeColor && len(resolver.ReferencesIn(value)) == 0 && !color.Valid(value) {
			report.Add(Issue{
				Kind:       KindFormatIssue,
				Severity:   SeverityMedium,
				Path:       prefix,
				Message:    fmt.Sprintf("token %q is typed color but its value %v does not parse as one.", prefix, value),
				Suggestion: "Use a CSS color string or a structured value with colorSpace and components.",
			})
		}
		return
	}
	for key, child := range node {
		if len(key) > 0 && key[0] == '$' {
			continue
		}
		if childMap, ok := child.(map[string]any); ok {
			walkUntyped(prefix+"."+key, childMap, report)
		}
	}
}

// classifyReadError maps a tree read failure onto a finding
func classifyReadError(err error) Issue {
	var missing *modular.MissingRequiredFileError
	if errors.As(err, &missing) {
		return Issue{
			Kind:       KindMissingFile,
			Severity:   SeverityCritical,
			Path:       missing.Path,
			Message:    err.Error(),
			Suggestion: fmt.Sprintf("Restore %s from a backup or rebuild it with the repair command.", filepath.Base(missing.Path)),
		}
	}
	var invalid *modular.InvalidJSONError
	if errors.As(err, &invalid) {
		return Issue{
			Kind:       KindInvalidJSON,
			Severity:   SeverityCritical,
			Path:       invalid.Path,
			Message:    err.Error(),
			Suggestion: "Fix the syntax error or run the repair command to attempt an automatic fix.",
		}
	}
	var mismatch *modular.StructuralMismatchError
	if errors.As(err, &mismatch) {
		return Issue{
			Kind:       KindStructuralMismatch,
			Severity:   SeverityHigh,
			Path:       mismatch.SetName,
			Message:    err.Error(),
			Suggestion: fmt.Sprintf("Create %s or remove %q from tokenSetOrder.", modular.SetFileName(mismatch.SetName), mismatch.SetName),
		}
	}
	if errors.Is(err, os.ErrPermission) {
		return Issue{
			Kind:     KindMissingFile,
			Severity: SeverityCritical,
			Message:  err.Error(),
		}
	}
	return Issue{
		Kind:     KindStructuralMismatch,
		Severity: SeverityCritical,
		Message:  err.Error(),
	}
}
