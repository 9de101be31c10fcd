package resolver

import (
	"fmt"
	"strings"

	"tokensmith/internal/collections"
	"tokensmith/internal/tokens"
)

// DefaultHopLimit bounds reference chains. A chain longer than this is
// treated as circular: it signals an unbounded chain, not a legitimate
// token graph.
const DefaultHopLimit = 32

// Resolution is the outcome of resolving one reference against an Index
type Resolution struct {
	// Resolved is true when the reference reached a concrete value
	Resolved bool

	// Value is the concrete value reached (valid when Resolved)
	Value any

	// Path is the dotted path of the concrete token reached
	Path string

	// Rewritten is the alternative-format path that matched, when the
	// reference only resolved through a known naming-convention rewrite
	Rewritten string

	// Chain is the sequence of paths visited during resolution
	Chain []string

	// Errors holds the classified failures, empty when Resolved
	Errors []error
}

// Resolve resolves a reference (with or without surrounding braces)
// against the index using the default hop limit
func (ix *Index) Resolve(ref string) Resolution {
	return ix.ResolveWithLimit(ref, DefaultHopLimit)
}

// ResolveWithLimit resolves a reference with an explicit hop limit.
// Resolution is deterministic for a given index and reference.
func (ix *Index) ResolveWithLimit(ref string, limit int) Resolution {
	visiting := collections.NewSet[string]()
	return ix.resolvePath(parseReference(ref), visiting, limit)
}

// ResolveTokenValue fully resolves a token's value, following whole-value
// references, embedded references, and composite sub-properties. The
// token's own path seeds the cycle guard so self-references are caught.
func (ix *Index) ResolveTokenValue(path string, value any, limit int) (any, []error) {
	visiting := collections.NewSet(path)
	return ix.resolveValue(value, visiting, limit)
}

func parseReference(ref string) string {
	ref = strings.TrimSpace(ref)
	ref = strings.TrimPrefix(ref, "{")
	ref = strings.TrimSuffix(ref, "}")
	return ref
}

// resolvePath follows whole-value references iteratively until a concrete
// value is reached, the visiting set detects re-entry, or the hop limit
// is exceeded.
func (ix *Index) resolvePath(path string, visiting collections.Set[string], limit int) Resolution {
	res := Resolution{}
	cur := path
	for hops := 0; ; hops++ {
		if hops >= limit {
			res.Errors = append(res.Errors, NewCircularReferenceError(append(res.Chain, cur)))
			return res
		}
		if visiting.Has(cur) {
			res.Errors = append(res.Errors, NewCircularReferenceError(append(res.Chain, cur)))
			return res
		}
		visiting.Add(cur)
		res.Chain = append(res.Chain, cur)

		tok, matched, ok := ix.lookupWithRewrites(cur)
		if !ok {
			res.Errors = append(res.Errors, NewUnresolvedReferenceError("{"+cur+"}", ix.Suggest(cur)))
			return res
		}
		if matched != cur && res.Rewritten == "" {
			res.Rewritten = matched
		}

		if s, isStr := tok.Value.(string); isStr && tokens.IsReferenceValue(s) {
			cur = parseReference(s)
			continue
		}

		value, errs := ix.resolveValue(tok.Value, visiting, limit)
		res.Errors = append(res.Errors, errs...)
		res.Value = value
		res.Path = matched
		res.Resolved = len(res.Errors) == 0
		return res
	}
}

// resolveValue resolves embedded references inside strings and composite
// values. Each branch resolves against a copy of the visiting set so that
// sibling references to the same token are not mistaken for cycles.
func (ix *Index) resolveValue(value any, visiting collections.Set[string], limit int) (any, []error) {
	switch v := value.(type) {
	case string:
		if !strings.Contains(v, "{") {
			return v, nil
		}
		if tokens.IsReferenceValue(v) {
			// whole-value reference: keep the target's value shape
			// (a composite target must not be stringified)
			sub := ix.resolvePath(parseReference(v), cloneSet(visiting), limit)
			if len(sub.Errors) > 0 {
				return value, sub.Errors
			}
			return sub.Value, nil
		}
		var errs []error
		resolved := ReferenceRegexp.ReplaceAllStringFunc(v, func(match string) string {
			sub := ix.resolvePath(parseReference(match), cloneSet(visiting), limit)
			if len(sub.Errors) > 0 {
				errs = append(errs, sub.Errors...)
				return match
			}
			return fmt.Sprintf("%v", sub.Value)
		})
		if len(errs) > 0 {
			return value, errs
		}
		return resolved, nil
	case map[string]any:
		out := make(map[string]any, len(v))
		var errs []error
		for key, sub := range v {
			resolved, subErrs := ix.resolveValue(sub, visiting, limit)
			errs = append(errs, subErrs...)
			out[key] = resolved
		}
		if len(errs) > 0 {
			return value, errs
		}
		return out, nil
	case []any:
		out := make([]any, len(v))
		var errs []error
		for i, sub := range v {
			resolved, subErrs := ix.resolveValue(sub, visiting, limit)
			errs = append(errs, subErrs...)
			out[i] = resolved
		}
		if len(errs) > 0 {
			return value, errs
		}
		return out, nil
	default:
		return value, nil
	}
}

func cloneSet(s collections.Set[string]) collections.Set[string] {
	out := collections.NewSet[string]()
	out.Add(s.Members()...)
	return out
}

// lookupWithRewrites tries the exact path first, then the fixed list of
// alternative-format rewrites (legacy fragmented naming vs Studio group
// naming) before giving up
func (ix *Index) lookupWithRewrites(path string) (*tokens.Token, string, bool) {
	if tok, ok := ix.Lookup(path); ok {
		return tok, path, true
	}
	for _, alt := range ix.alternativePaths(path) {
		if tok, ok := ix.Lookup(alt); ok {
			return tok, alt, true
		}
	}
	return nil, "", false
}

// alternativePaths returns candidate rewrites of a path, in the fixed
// order they are tried:
//  1. plural/singular first segment ("colors.x" <-> "color.x")
//  2. hyphenated last segment split into dotted segments, and the reverse
//  3. the path prefixed with each set name, later sets first
func (ix *Index) alternativePaths(path string) []string {
	var alts []string
	segs := strings.Split(path, ".")

	first := segs[0]
	if strings.HasSuffix(first, "s") {
		alts = append(alts, strings.Join(append([]string{strings.TrimSuffix(first, "s")}, segs[1:]...), "."))
	} else {
		alts = append(alts, strings.Join(append([]string{first + "s"}, segs[1:]...), "."))
	}

	last := segs[len(segs)-1]
	if strings.Contains(last, "-") {
		dotted := append(append([]string{}, segs[:len(segs)-1]...), strings.Split(last, "-")...)
		alts = append(alts, strings.Join(dotted, "."))
	}
	if len(segs) >= 2 {
		joined := append(append([]string{}, segs[:len(segs)-2]...), segs[len(segs)-2]+"-"+last)
		alts = append(alts, strings.Join(joined, "."))
	}

	for i := len(ix.order) - 1; i >= 0; i-- {
		alts = append(alts, ix.order[i]+"."+path)
	}
	return alts
}
