package validate

import (
	"fmt"

	"tokensmith/internal/modular"
)

// Themes checks that every theme's set selections point at declared
// sets and that the corpus keeps a usable source layer
func (v *Validator) Themes(tree *modular.Tree) *Report {
	report := &Report{}

	declared := map[string]bool{}
	for _, name := range tree.Metadata.TokenSetOrder {
		declared[name] = true
	}

	seenIDs := map[string]string{}
	for _, theme := range tree.Themes {
		label := theme.Name
		if label == "" {
			label = theme.ID
		}

		if theme.ID != "" {
			if prev, dup := seenIDs[theme.ID]; dup {
				report.Add(Issue{
					Kind:       KindThemeMisconfigured,
					Severity:   SeverityMedium,
					Path:       label,
					Message:    fmt.Sprintf("themes %q and %q share the id %q.", prev, label, theme.ID),
					Suggestion: "Give each theme a unique id.",
				})
			}
			seenIDs[theme.ID] = label
		}

		if len(theme.SelectedTokenSets) == 0 {
			report.Warn("theme %q selects no token sets", label)
		}

		for set, state := range theme.SelectedTokenSets {
			if !declared[set] {
				report.Add(Issue{
					Kind:       KindThemeMisconfigured,
					Severity:   SeverityHigh,
					Path:       label,
					Message:    fmt.Sprintf("theme %q selects token set %q, which is not declared in tokenSetOrder.", label, set),
					Suggestion: fmt.Sprintf("Create %s and declare it, or remove the selection from the theme.", modular.SetFileName(set)),
				})
			}
			switch state {
			case modular.SetSource, modular.SetEnabled, modular.SetDisabled:
			default:
				report.Add(Issue{
					Kind:       KindThemeMisconfigured,
					Severity:   SeverityMedium,
					Path:       label,
					Message:    fmt.Sprintf("theme %q marks set %q with unknown state %q.", label, set, state),
					Suggestion: `Use one of "source", "enabled" or "disabled".`,
				})
			}
		}
	}

	v.checkSourceLayer(tree, report)

	return report
}

// checkSourceLayer verifies the foundational set every other layer
// builds on is present and marked as source somewhere
func (v *Validator) checkSourceLayer(tree *modular.Tree, report *Report) {
	if v.SourceSet == "" || len(tree.Themes) == 0 {
		return
	}

	declared := false
	for _, name := range tree.Metadata.TokenSetOrder {
		if name == v.SourceSet {
			declared = true
			break
		}
	}
	if !declared {
		report.Warn("source set %q is not declared in tokenSetOrder", v.SourceSet)
		return
	}

	for _, src := range tree.SourceSets() {
		if src == v.SourceSet {
			return
		}
	}
	report.Add(Issue{
		Kind:       KindThemeMisconfigured,
		Severity:   SeverityMedium,
		Path:       v.SourceSet,
		Message:    fmt.Sprintf("no theme marks the foundational set %q as source.", v.SourceSet),
		Suggestion: fmt.Sprintf("Mark %q as \"source\" in at least one theme so its tokens resolve underneath every other layer.", v.SourceSet),
	})
}
