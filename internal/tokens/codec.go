package tokens

// The codec converts between the canonical nested-object representation and
// the flat, typed Studio token representation. Nodes carrying a value marker
// ($value, or legacy "value") are tokens; every other object is a group and
// is recursed into. The codec is pure: it never mutates its input.

// IsTokenNode reports whether a raw node is a token leaf (value-bearing)
// rather than a group
func IsTokenNode(node map[string]any) bool {
	if _, ok := node["$value"]; ok {
		return true
	}
	_, ok := node["value"]
	return ok
}

// Normalize converts a raw node (token or group) into Studio form:
// legacy value/type/description keys become $-prefixed, and a missing
// $type is inferred from the value shape. Explicit types are preserved.
func Normalize(node any, path []string) (map[string]any, error) {
	m, ok := node.(map[string]any)
	if !ok {
		return nil, NewInvalidNodeError(path, "expected an object")
	}

	if IsTokenNode(m) {
		return normalizeToken(m, path)
	}

	out := make(map[string]any, len(m))
	for key, child := range m {
		// group-level $ metadata passes through untouched
		if len(key) > 0 && key[0] == '$' {
			out[key] = child
			continue
		}
		normalized, err := Normalize(child, append(path, key))
		if err != nil {
			return nil, err
		}
		out[key] = normalized
	}
	return out, nil
}

// NormalizeSet normalizes every node of a whole token set. The root of
// a set must be a group; a bare token there has no path to live at.
func NormalizeSet(raw map[string]any) (map[string]any, error) {
	if IsTokenNode(raw) {
		return nil, NewInvalidNodeError(nil, "a token set cannot itself be a token")
	}
	return Normalize(raw, nil)
}

func normalizeToken(m map[string]any, path []string) (map[string]any, error) {
	out := make(map[string]any, len(m))

	value, ok := m["$value"]
	if !ok {
		value = m["value"]
	}
	switch value.(type) {
	case string, float64, int, bool, map[string]any:
	default:
		return nil, NewInvalidNodeError(path, "unsupported $value shape")
	}
	out["$value"] = value

	typ, _ := stringField(m, "$type", "type")
	if typ == "" {
		typ = InferType(value)
		if typ == "" {
			// whole-value reference with no declared type; type follows
			// the referenced token and stays implicit
			typ = TypeOther
		}
	}
	out["$type"] = typ

	if desc, ok := stringField(m, "$description", "description"); ok && desc != "" {
		out["$description"] = desc
	}
	if ext, ok := extensionsField(m); ok {
		out["$extensions"] = ext
	}
	return out, nil
}

func stringField(m map[string]any, key, legacyKey string) (string, bool) {
	if s, ok := m[key].(string); ok {
		return s, true
	}
	if s, ok := m[legacyKey].(string); ok {
		return s, true
	}
	return "", false
}

func extensionsField(m map[string]any) (map[string]any, bool) {
	if ext, ok := m["$extensions"].(map[string]any); ok {
		return ext, true
	}
	if ext, ok := m["extensions"].(map[string]any); ok {
		return ext, true
	}
	return nil, false
}

// Denormalize converts a Token back into its raw canonical node shape
func Denormalize(t *Token) map[string]any {
	node := map[string]any{
		"$type":  t.Type,
		"$value": t.Value,
	}
	if t.Description != "" {
		node["$description"] = t.Description
	}
	if len(t.Extensions) > 0 {
		node["$extensions"] = t.Extensions
	}
	return node
}
