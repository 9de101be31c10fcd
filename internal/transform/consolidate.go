package transform

import (
	"sort"

	"tokensmith/internal/modular"
	"tokensmith/internal/tokens"
)

// Consolidate recombines a modular tree into the canonical single-file
// document. Sets keep their own top-level group, except the residual set
// and the targets of group renames, whose groups are re-expanded to the
// top level (the inverse of how Split collected them). The metadata and
// themes sections are reassembled into the layout the upstream design
// tool imports directly.
func (e *Engine) Consolidate(tree *modular.Tree) (map[string]any, error) {
	doc := map[string]any{}
	var order []string

	targets := e.mappedTargets()
	for _, name := range tree.Metadata.TokenSetOrder {
		set, ok := tree.Sets[name]
		if !ok {
			return nil, modular.NewStructuralMismatchError(name, "listed in tokenSetOrder but not loaded")
		}
		if name == e.Policy.ResidualSet || targets[name] {
			for _, group := range sortedGroupNames(set) {
				content, ok := set[group].(map[string]any)
				if !ok {
					return nil, tokens.NewInvalidNodeError([]string{name, group}, "collected set entries must be objects")
				}
				expanded, err := denormalizeSet(content)
				if err != nil {
					return nil, err
				}
				doc[group] = expanded
				order = append(order, group)
			}
			continue
		}
		expanded, err := denormalizeSet(set)
		if err != nil {
			return nil, err
		}
		doc[name] = expanded
		order = append(order, name)
	}

	doc["$metadata"] = map[string]any{"tokenSetOrder": toAnySlice(order)}

	themes := tree.Themes
	if themes == nil {
		themes = []modular.Theme{}
	}
	doc["$themes"] = themes

	return doc, nil
}

// denormalizeSet projects a normalized set back to the canonical nested
// shape. Tokens are flattened and re-expanded so every leaf carries the
// full $type/$value form the canonical document expects.
func denormalizeSet(set map[string]any) (map[string]any, error) {
	flat, err := tokens.Flatten(set)
	if err != nil {
		return nil, err
	}
	expanded := tokens.Expand(flat)
	// carry group-level $ metadata across
	for key, value := range set {
		if len(key) > 0 && key[0] == '$' {
			expanded[key] = value
		}
	}
	return expanded, nil
}

func toAnySlice(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func sortedGroupNames(set map[string]any) []string {
	var names []string
	for name := range set {
		if len(name) > 0 && name[0] == '$' {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
