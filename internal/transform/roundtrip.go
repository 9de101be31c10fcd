package transform

import (
	"fmt"
	"sort"

	"github.com/google/go-cmp/cmp"

	"tokensmith/internal/resolver"
	"tokensmith/internal/tokens"
)

// ResolvedGraph computes the canonical document's token graph with every
// reference fully resolved, keyed by set-qualified path. Two documents
// are round-trip equivalent when their resolved graphs are equal, even
// if whitespace, key order, or reference spellings differ.
func (e *Engine) ResolvedGraph(doc map[string]any) (map[string]any, []error) {
	sets := map[string]map[string]any{}
	var names []string
	for key, value := range doc {
		if len(key) > 0 && key[0] == '$' {
			continue
		}
		group, ok := value.(map[string]any)
		if !ok {
			return nil, []error{tokens.NewInvalidNodeError([]string{key}, "top-level group must be an object")}
		}
		normalized, err := tokens.NormalizeSet(group)
		if err != nil {
			return nil, []error{err}
		}
		sets[key] = normalized
		names = append(names, key)
	}

	order := graphOrder(names, declaredSetOrder(doc))
	ix, err := resolver.NewIndex(order, sets)
	if err != nil {
		return nil, []error{err}
	}

	graph := map[string]any{}
	var errs []error
	for _, name := range order {
		flat, err := tokens.Flatten(sets[name])
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for _, path := range tokens.SortedNames(flat) {
			value, valueErrs := ix.ResolveTokenValue(path, flat[path].Value, e.hopLimit())
			errs = append(errs, valueErrs...)
			graph[name+"."+path] = value
		}
	}
	return graph, errs
}

// graphOrder keeps the declared order for sets that appear in it and
// appends the rest sorted, so the overlay is deterministic
func graphOrder(names, declared []string) []string {
	present := map[string]bool{}
	for _, name := range names {
		present[name] = true
	}
	var order []string
	used := map[string]bool{}
	for _, name := range declared {
		if present[name] && !used[name] {
			used[name] = true
			order = append(order, name)
		}
	}
	var rest []string
	for _, name := range names {
		if !used[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(order, rest...)
}

// Difference reports one path whose resolved value differs between two
// token graphs
type Difference struct {
	Path   string
	Before any
	After  any
	Detail string
}

func (d Difference) String() string {
	return fmt.Sprintf("%s: %v != %v", d.Path, d.Before, d.After)
}

// DiffResolved compares two resolved graphs path by path
func DiffResolved(before, after map[string]any) []Difference {
	paths := map[string]bool{}
	for p := range before {
		paths[p] = true
	}
	for p := range after {
		paths[p] = true
	}
	var sorted []string
	for p := range paths {
		sorted = append(sorted, p)
	}
	sort.Strings(sorted)

	var diffs []Difference
	for _, path := range sorted {
		b, inBefore := before[path]
		a, inAfter := after[path]
		switch {
		case !inBefore:
			diffs = append(diffs, Difference{Path: path, After: a, Detail: "only present after transformation"})
		case !inAfter:
			diffs = append(diffs, Difference{Path: path, Before: b, Detail: "lost by transformation"})
		case !cmp.Equal(b, a):
			diffs = append(diffs, Difference{Path: path, Before: b, After: a, Detail: cmp.Diff(b, a)})
		}
	}
	return diffs
}
