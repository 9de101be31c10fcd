package tokens

import (
	"sort"
	"strings"
)

// Flatten walks a normalized set and returns a map from dotted path to Token.
// The input must already be in Studio form (see Normalize).
func Flatten(set map[string]any) (map[string]*Token, error) {
	out := map[string]*Token{}
	if err := flattenInto(set, nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

func flattenInto(node map[string]any, path []string, out map[string]*Token) error {
	if IsTokenNode(node) {
		if len(path) == 0 {
			return NewInvalidNodeError(nil, "a token set cannot itself be a token")
		}
		tok := &Token{Path: append([]string(nil), path...)}
		tok.Value = node["$value"]
		if typ, ok := node["$type"].(string); ok {
			tok.Type = typ
		}
		if desc, ok := node["$description"].(string); ok {
			tok.Description = desc
		}
		if ext, ok := node["$extensions"].(map[string]any); ok {
			tok.Extensions = ext
		}
		out[tok.Name()] = tok
		return nil
	}

	for key, child := range node {
		if len(key) > 0 && key[0] == '$' {
			continue
		}
		childMap, ok := child.(map[string]any)
		if !ok {
			return NewInvalidNodeError(append(path, key), "expected an object")
		}
		if err := flattenInto(childMap, append(path, key), out); err != nil {
			return err
		}
	}
	return nil
}

// Expand rebuilds the nested set structure from a flat path-to-token map
func Expand(flat map[string]*Token) map[string]any {
	root := map[string]any{}
	for _, name := range SortedNames(flat) {
		tok := flat[name]
		node := root
		for _, seg := range tok.Path[:len(tok.Path)-1] {
			child, ok := node[seg].(map[string]any)
			if !ok {
				child = map[string]any{}
				node[seg] = child
			}
			node = child
		}
		node[tok.Path[len(tok.Path)-1]] = Denormalize(tok)
	}
	return root
}

// SortedNames returns the token names of a flat map in lexical order
func SortedNames(flat map[string]*Token) []string {
	names := make([]string, 0, len(flat))
	for name := range flat {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SplitPath splits a dotted token path into segments
func SplitPath(path string) []string {
	return strings.Split(path, ".")
}
