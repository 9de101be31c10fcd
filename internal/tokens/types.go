package tokens

import "strings"

// Token type names following the Design Tokens Community Group format.
const (
	TypeColor        = "color"
	TypeDimension    = "dimension"
	TypeNumber       = "number"
	TypeFontFamily   = "fontFamily"
	TypeFontWeight   = "fontWeight"
	TypeTypography   = "typography"
	TypeBoxShadow    = "boxShadow"
	TypeSpacing      = "spacing"
	TypeBorderRadius = "borderRadius"
	TypeOpacity      = "opacity"
	TypeOther        = "other"
)

// Token represents a single design token in its normalized (Studio) form.
// Value is either a string or a composite map of sub-properties, each of
// which may itself contain a reference.
type Token struct {
	// Path is the dotted path segments to this token within its set
	Path []string

	// Type is the token's $type. Never empty after codec normalization.
	Type string

	// Value is the token's $value: a string or a map[string]any composite
	Value any

	// Description is the optional $description
	Description string

	// Extensions carries $extensions verbatim (opaque passthrough)
	Extensions map[string]any
}

// Name returns the dotted path of the token (e.g. "color.brand.primary")
func (t *Token) Name() string {
	return strings.Join(t.Path, ".")
}

// ReferenceString returns the reference form of this token's path,
// e.g. "{color.brand.primary}"
func (t *Token) ReferenceString() string {
	return "{" + t.Name() + "}"
}

// IsReference reports whether the token's whole value is a single
// symbolic reference like "{color.base}"
func (t *Token) IsReference() bool {
	s, ok := t.Value.(string)
	return ok && IsReferenceValue(s)
}

// IsReferenceValue reports whether s is exactly one {dotted.path} reference
func IsReferenceValue(s string) bool {
	if !strings.HasPrefix(s, "{") || !strings.HasSuffix(s, "}") {
		return false
	}
	inner := s[1 : len(s)-1]
	return inner != "" && !strings.ContainsAny(inner, "{}")
}
