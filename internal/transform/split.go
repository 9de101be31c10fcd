package transform

import (
	"encoding/json"
	"fmt"
	"sort"

	"tokensmith/internal/modular"
	"tokensmith/internal/tokens"
)

// Split partitions a canonical document into a modular tree. keyOrder is
// the document's top-level keys in source order (from
// modular.ReadCanonical); it breaks ties for groups the policy does not
// rank. Themes and their third-party style references pass through
// verbatim.
func (e *Engine) Split(doc map[string]any, keyOrder []string) (*modular.Tree, error) {
	tree := &modular.Tree{Sets: map[string]map[string]any{}}

	if keyOrder == nil {
		for key := range doc {
			keyOrder = append(keyOrder, key)
		}
		sort.Strings(keyOrder)
	}

	// honor an embedded $metadata order when the document carries one
	declaredOrder := declaredSetOrder(doc)

	var residual map[string]any
	var assigned []string
	targets := e.mappedTargets()
	for _, key := range keyOrder {
		if key == "$themes" || key == "$metadata" {
			continue
		}
		group, ok := doc[key]
		if !ok {
			continue
		}
		groupMap, isMap := group.(map[string]any)
		if !isMap {
			return nil, tokens.NewInvalidNodeError([]string{key}, "top-level group must be an object")
		}

		setName, toResidual := e.assignGroup(key, declaredOrder)
		normalized, err := tokens.NormalizeSet(groupMap)
		if err != nil {
			return nil, fmt.Errorf("normalize group %q: %w", key, err)
		}

		if toResidual {
			if residual == nil {
				residual = map[string]any{}
			}
			residual[key] = normalized
			continue
		}
		if targets[setName] {
			// renamed by GroupMapping: every group in the target set
			// nests under its original name so Consolidate can put each
			// one back at the top level
			target, ok := tree.Sets[setName]
			if !ok {
				target = map[string]any{}
				tree.Sets[setName] = target
				assigned = append(assigned, setName)
			}
			target[key] = normalized
			continue
		}
		tree.Sets[setName] = normalized
		assigned = append(assigned, setName)
	}
	if residual != nil {
		tree.Sets[e.Policy.ResidualSet] = residual
		assigned = append(assigned, e.Policy.ResidualSet)
	}

	tree.Metadata.TokenSetOrder = e.orderSets(assigned, declaredOrder)

	themes, err := extractThemes(doc)
	if err != nil {
		return nil, err
	}
	tree.Themes = themes

	return tree, nil
}

// assignGroup decides which set owns a canonical top-level group.
// Explicit mapping wins; a group named like a known set keeps its name;
// everything else lands in the residual set.
func (e *Engine) assignGroup(group string, declaredOrder []string) (set string, residual bool) {
	if mapped, ok := e.Policy.GroupMapping[group]; ok {
		return mapped, false
	}
	for _, known := range e.Policy.SetOrder {
		if group == known {
			return group, false
		}
	}
	for _, known := range declaredOrder {
		if group == known {
			return group, false
		}
	}
	return "", true
}

// mappedTargets returns the sets that receive renamed groups through
// GroupMapping. Identity mappings keep their group flat and are not
// targets.
func (e *Engine) mappedTargets() map[string]bool {
	targets := map[string]bool{}
	for group, set := range e.Policy.GroupMapping {
		if group != set {
			targets[set] = true
		}
	}
	return targets
}

// orderSets derives tokenSetOrder: the canonical priority list first,
// then the document's declared order, then source order for the rest
func (e *Engine) orderSets(assigned, declaredOrder []string) []string {
	present := map[string]bool{}
	for _, name := range assigned {
		present[name] = true
	}

	var order []string
	used := map[string]bool{}
	appendSet := func(name string) {
		if present[name] && !used[name] {
			used[name] = true
			order = append(order, name)
		}
	}
	for _, name := range e.Policy.SetOrder {
		appendSet(name)
	}
	for _, name := range declaredOrder {
		appendSet(name)
	}
	for _, name := range assigned {
		appendSet(name)
	}
	return order
}

func declaredSetOrder(doc map[string]any) []string {
	meta, ok := doc["$metadata"].(map[string]any)
	if !ok {
		return nil
	}
	rawOrder, ok := meta["tokenSetOrder"].([]any)
	if !ok {
		return nil
	}
	var order []string
	for _, item := range rawOrder {
		if s, ok := item.(string); ok {
			order = append(order, s)
		}
	}
	return order
}

// extractThemes pulls theme declarations out of the canonical document,
// round-tripping through JSON so unknown fields inside
// figmaStyleReferences survive untouched
func extractThemes(doc map[string]any) ([]modular.Theme, error) {
	raw, ok := doc["$themes"]
	if !ok {
		return []modular.Theme{}, nil
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("marshal $themes: %w", err)
	}
	var themes []modular.Theme
	if err := json.Unmarshal(data, &themes); err != nil {
		return nil, fmt.Errorf("parse $themes: %w", err)
	}
	return themes, nil
}
