package tokens

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/mazznoer/csscolorparser"
)

var (
	dimensionRegexp  = regexp.MustCompile(`^-?\d+(\.\d+)?(px|rem|em|%|pt|vh|vw)$`)
	fontWeightRegexp = regexp.MustCompile(`^(100|200|300|400|500|600|700|800|900)$`)
)

var fontWeightKeywords = map[string]bool{
	"thin": true, "light": true, "regular": true, "normal": true,
	"medium": true, "semibold": true, "bold": true, "black": true,
}

// InferType infers a token type from the shape of its value. It is used
// only when $type is absent; an explicit type is never overwritten.
// Reference values cannot be classified from shape alone and yield "".
func InferType(value any) string {
	switch v := value.(type) {
	case string:
		return inferStringType(v)
	case float64, int, int64:
		return TypeNumber
	case map[string]any:
		return inferCompositeType(v)
	default:
		return TypeOther
	}
}

func inferStringType(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return TypeOther
	}
	if IsReferenceValue(s) {
		// type follows the referenced token; leave for the resolver
		return ""
	}
	if strings.HasPrefix(s, "#") {
		return TypeColor
	}
	if strings.HasPrefix(s, "rgb") || strings.HasPrefix(s, "hsl") || strings.HasPrefix(s, "oklch") {
		if _, err := csscolorparser.Parse(s); err == nil {
			return TypeColor
		}
	}
	if dimensionRegexp.MatchString(s) {
		return TypeDimension
	}
	// weight hundreds beat the generic number check
	if fontWeightRegexp.MatchString(s) || fontWeightKeywords[strings.ToLower(s)] {
		return TypeFontWeight
	}
	if _, err := strconv.ParseFloat(s, 64); err == nil {
		return TypeNumber
	}
	// named CSS colors ("rebeccapurple") parse cleanly too
	if _, err := csscolorparser.Parse(s); err == nil {
		return TypeColor
	}
	return TypeOther
}

func inferCompositeType(m map[string]any) string {
	if _, ok := m["fontFamily"]; ok {
		return TypeTypography
	}
	if _, ok := m["fontSize"]; ok {
		return TypeTypography
	}
	if _, ok := m["colorSpace"]; ok {
		return TypeColor
	}
	_, hasBlur := m["blur"]
	_, hasSpread := m["spread"]
	if hasBlur || hasSpread {
		return TypeBoxShadow
	}
	return TypeOther
}
