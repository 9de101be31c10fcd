package color_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tokensmith/internal/color"
)

func TestToCSS(t *testing.T) {
	t.Run("string colors pass through", func(t *testing.T) {
		css, ok := color.ToCSS("#112233")
		assert.True(t, ok)
		assert.Equal(t, "#112233", css)
	})

	t.Run("structured hex field wins", func(t *testing.T) {
		css, ok := color.ToCSS(map[string]any{
			"colorSpace": "srgb",
			"components": []any{0.0, 0.0, 0.0},
			"hex":        "#ff0000",
		})
		assert.True(t, ok)
		assert.Equal(t, "#ff0000", css)
	})

	t.Run("srgb components render as hex", func(t *testing.T) {
		css, ok := color.ToCSS(map[string]any{
			"colorSpace": "srgb",
			"components": []any{1.0, 0.0, 0.0},
		})
		assert.True(t, ok)
		assert.Equal(t, "#ff0000", css)
	})

	t.Run("alpha uses rgba", func(t *testing.T) {
		css, ok := color.ToCSS(map[string]any{
			"colorSpace": "srgb",
			"components": []any{1.0, 0.0, 0.0},
			"alpha":      0.5,
		})
		assert.True(t, ok)
		assert.Equal(t, "rgba(255, 0, 0, 0.50)", css)
	})

	t.Run("oklch renders the modern syntax", func(t *testing.T) {
		css, ok := color.ToCSS(map[string]any{
			"colorSpace": "oklch",
			"components": []any{0.7, 0.1, 250.0},
		})
		assert.True(t, ok)
		assert.Equal(t, "oklch(0.70 0.10 250.0)", css)
	})

	t.Run("display-p3 goes through the color function", func(t *testing.T) {
		css, ok := color.ToCSS(map[string]any{
			"colorSpace": "display-p3",
			"components": []any{1.0, 0.5, 0.0},
		})
		assert.True(t, ok)
		assert.Equal(t, "color(display-p3 1 0.5 0)", css)
	})

	t.Run("missing components fail", func(t *testing.T) {
		_, ok := color.ToCSS(map[string]any{"colorSpace": "srgb"})
		assert.False(t, ok)
	})
}

func TestValid(t *testing.T) {
	assert.True(t, color.Valid("#112233"))
	assert.True(t, color.Valid("rgb(1, 2, 3)"))
	assert.True(t, color.Valid("rebeccapurple"))
	assert.False(t, color.Valid("not a color"))
	assert.False(t, color.Valid(42))
	assert.True(t, color.Valid(map[string]any{
		"colorSpace": "srgb",
		"components": []any{0.2, 0.4, 0.6},
	}))
	// spaces the parser does not read are accepted once rendered
	assert.True(t, color.Valid(map[string]any{
		"colorSpace": "rec2020",
		"components": []any{0.2, 0.4, 0.6},
	}))
}
