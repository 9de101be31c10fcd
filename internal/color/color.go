// Package color renders design token color values as CSS strings and
// checks that they parse. Both spellings of a color token are handled:
// a plain CSS string, and the structured object form with colorSpace,
// components and optional alpha or hex fields.
package color

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/mazznoer/csscolorparser"
)

// ToCSS renders a color token value as a CSS color string. Returns
// ok=false when the value is neither a string nor a well-formed
// structured color.
func ToCSS(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, v != ""
	case map[string]any:
		return structuredToCSS(v)
	default:
		return "", false
	}
}

// Valid reports whether a color token value parses as a CSS color.
// Structured values in color spaces csscolorparser does not read are
// rendered through the CSS color() function and accepted as-is.
func Valid(value any) bool {
	css, ok := ToCSS(value)
	if !ok {
		return false
	}
	if strings.HasPrefix(css, "color(") || strings.HasPrefix(css, "lab(") ||
		strings.HasPrefix(css, "lch(") || strings.HasPrefix(css, "oklab(") {
		return true
	}
	_, err := csscolorparser.Parse(css)
	return err == nil
}

func structuredToCSS(v map[string]any) (string, bool) {
	if hex, ok := v["hex"].(string); ok && hex != "" {
		return hex, true
	}

	space, _ := v["colorSpace"].(string)
	space = strings.ToLower(space)

	raw, ok := v["components"].([]any)
	if !ok || len(raw) < 3 {
		return "", false
	}
	components := make([]float64, len(raw))
	for i, c := range raw {
		components[i] = toFloat(c)
	}

	alpha := 1.0
	if a, ok := v["alpha"]; ok {
		alpha = toFloat(a)
	}

	switch space {
	case "srgb":
		return srgbToCSS(components, alpha), true
	case "hsl":
		return withAlpha(fmt.Sprintf("hsl(%.1f %.1f%% %.1f%%", components[0], components[1], components[2]), alpha), true
	case "hwb":
		return withAlpha(fmt.Sprintf("hwb(%.1f %.1f%% %.1f%%", components[0], components[1], components[2]), alpha), true
	case "oklch":
		return withAlpha(fmt.Sprintf("oklch(%.2f %.2f %.1f", components[0], components[1], components[2]), alpha), true
	case "oklab":
		return withAlpha(fmt.Sprintf("oklab(%.2f %.2f %.2f", components[0], components[1], components[2]), alpha), true
	case "lch":
		return withAlpha(fmt.Sprintf("lch(%.1f %.1f %.1f", components[0], components[1], components[2]), alpha), true
	case "lab":
		return withAlpha(fmt.Sprintf("lab(%.1f %.1f %.1f", components[0], components[1], components[2]), alpha), true
	default:
		// display-p3, rec2020, xyz and friends go through the CSS
		// color() function; unknown spaces too, so the consumer decides
		return colorFunction(space, components, alpha), true
	}
}

func srgbToCSS(components []float64, alpha float64) string {
	r := int(math.Round(clamp01(components[0]) * 255))
	g := int(math.Round(clamp01(components[1]) * 255))
	b := int(math.Round(clamp01(components[2]) * 255))
	if alpha >= 0.999 {
		return fmt.Sprintf("#%02x%02x%02x", r, g, b)
	}
	return fmt.Sprintf("rgba(%d, %d, %d, %.2f)", r, g, b, alpha)
}

func colorFunction(space string, components []float64, alpha float64) string {
	parts := make([]string, len(components))
	for i, c := range components {
		parts[i] = fmt.Sprintf("%.4g", c)
	}
	body := fmt.Sprintf("color(%s %s", space, strings.Join(parts, " "))
	return withAlpha(body, alpha)
}

func withAlpha(open string, alpha float64) string {
	if alpha >= 0.999 {
		return open + ")"
	}
	return fmt.Sprintf("%s / %.2f)", open, alpha)
}

func clamp01(f float64) float64 {
	return math.Max(0, math.Min(1, f))
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case json.Number:
		f, _ := n.Float64()
		return f
	default:
		return 0
	}
}
