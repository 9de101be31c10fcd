package resolver

import (
	"regexp"
	"sort"

	"tokensmith/internal/tokens"
)

// ReferenceRegexp matches curly brace token references: {token.reference.path}
var ReferenceRegexp = regexp.MustCompile(`\{([^}]+)\}`)

// Index is a flattened view over all active token sets, built in
// tokenSetOrder so that later sets override earlier sets at identical
// paths. Every token is reachable under two spellings: its bare path
// within the set ("color.primary", subject to later-set overrides) and
// its set-qualified path ("core.color.primary", unambiguous). The index
// is immutable once built; each operation builds a fresh one.
type Index struct {
	byPath    map[string]*tokens.Token
	qualified map[string]*tokens.Token
	setOf     map[string]string
	order     []string
}

// NewIndex flattens each set in order into a single overlay index.
// Later sets win at identical bare paths (last-writer by declared
// order); qualified paths never collide.
func NewIndex(order []string, sets map[string]map[string]any) (*Index, error) {
	ix := &Index{
		byPath:    map[string]*tokens.Token{},
		qualified: map[string]*tokens.Token{},
		setOf:     map[string]string{},
		order:     append([]string(nil), order...),
	}
	for _, name := range order {
		set, ok := sets[name]
		if !ok {
			continue
		}
		flat, err := tokens.Flatten(set)
		if err != nil {
			return nil, err
		}
		for path, tok := range flat {
			ix.byPath[path] = tok
			ix.qualified[name+"."+path] = tok
			ix.setOf[path] = name
		}
	}
	return ix, nil
}

// Lookup returns the token at an exact dotted path, trying the
// set-qualified spelling first
func (ix *Index) Lookup(path string) (*tokens.Token, bool) {
	if tok, ok := ix.qualified[path]; ok {
		return tok, true
	}
	tok, ok := ix.byPath[path]
	return tok, ok
}

// SetOf returns the name of the set that provided the token at path
// (the last set in order holding that path)
func (ix *Index) SetOf(path string) string {
	return ix.setOf[path]
}

// Paths returns every indexed token path, bare and set-qualified, in
// lexical order
func (ix *Index) Paths() []string {
	paths := make([]string, 0, len(ix.byPath)+len(ix.qualified))
	for p := range ix.byPath {
		paths = append(paths, p)
	}
	for p := range ix.qualified {
		if _, clash := ix.byPath[p]; !clash {
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)
	return paths
}

// Order returns the set order the index was built with
func (ix *Index) Order() []string {
	return ix.order
}

// Len returns the number of indexed tokens
func (ix *Index) Len() int {
	return len(ix.byPath)
}

// ExtractReferences returns every {dotted.path} reference embedded in s
func ExtractReferences(s string) []string {
	var refs []string
	for _, match := range ReferenceRegexp.FindAllStringSubmatch(s, -1) {
		if len(match) > 1 {
			refs = append(refs, match[1])
		}
	}
	return refs
}

// ReferencesIn returns every reference reachable from a token value,
// descending into composite sub-properties
func ReferencesIn(value any) []string {
	switch v := value.(type) {
	case string:
		return ExtractReferences(v)
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var refs []string
		for _, k := range keys {
			refs = append(refs, ReferencesIn(v[k])...)
		}
		return refs
	case []any:
		var refs []string
		for _, item := range v {
			refs = append(refs, ReferencesIn(item)...)
		}
		return refs
	default:
		return nil
	}
}
