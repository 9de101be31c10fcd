package modular_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokensmith/internal/modular"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func writeValidTree(t *testing.T, dir string) {
	t.Helper()
	writeFile(t, filepath.Join(dir, "$metadata.json"), `{"tokenSetOrder":["core","global"]}`)
	writeFile(t, filepath.Join(dir, "$themes.json"), `[
		{"id":"light","name":"Light","selectedTokenSets":{"core":"source","global":"enabled"}}
	]`)
	writeFile(t, filepath.Join(dir, "core.json"), `{
		"color": {"primary": {"$type": "color", "$value": "#112233"}}
	}`)
	writeFile(t, filepath.Join(dir, "global.json"), `{
		"color": {"accent": {"$type": "color", "$value": "{color.primary}"}}
	}`)
}

func TestReadTree(t *testing.T) {
	t.Run("reads a well-formed tree", func(t *testing.T) {
		dir := t.TempDir()
		writeValidTree(t, dir)

		tree, err := modular.ReadTree(dir)
		require.NoError(t, err)

		assert.Equal(t, []string{"core", "global"}, tree.Metadata.TokenSetOrder)
		require.Len(t, tree.Themes, 1)
		assert.Equal(t, "Light", tree.Themes[0].Name)
		assert.Equal(t, []string{"core"}, tree.SourceSets())
		require.Contains(t, tree.Sets, "core")
		require.Contains(t, tree.Sets, "global")
		assert.Empty(t, tree.Warnings)
	})

	t.Run("missing metadata file", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "$themes.json"), `[]`)

		_, err := modular.ReadTree(dir)
		assert.ErrorIs(t, err, modular.ErrMissingRequiredFile)
	})

	t.Run("missing themes file", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "$metadata.json"), `{"tokenSetOrder":[]}`)

		_, err := modular.ReadTree(dir)
		assert.ErrorIs(t, err, modular.ErrMissingRequiredFile)
	})

	t.Run("set in order without file is a structural mismatch", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "$metadata.json"), `{"tokenSetOrder":["core","brand"]}`)
		writeFile(t, filepath.Join(dir, "$themes.json"), `[]`)
		writeFile(t, filepath.Join(dir, "core.json"), `{}`)

		_, err := modular.ReadTree(dir)
		assert.ErrorIs(t, err, modular.ErrStructuralMismatch)
	})

	t.Run("extra set file is appended with a warning", func(t *testing.T) {
		dir := t.TempDir()
		writeValidTree(t, dir)
		writeFile(t, filepath.Join(dir, "brand.json"), `{
			"color": {"logo": {"$type": "color", "$value": "#ff0000"}}
		}`)

		tree, err := modular.ReadTree(dir)
		require.NoError(t, err)
		assert.Equal(t, []string{"core", "global", "brand"}, tree.Metadata.TokenSetOrder)
		require.Len(t, tree.Warnings, 1)
		assert.Contains(t, tree.Warnings[0], "brand")
	})

	t.Run("malformed JSON reports the byte offset", func(t *testing.T) {
		dir := t.TempDir()
		writeValidTree(t, dir)
		writeFile(t, filepath.Join(dir, "core.json"), `{"color": {"primary": }}`)

		_, err := modular.ReadTree(dir)
		require.Error(t, err)
		assert.ErrorIs(t, err, modular.ErrInvalidJSON)
		var jsonErr *modular.InvalidJSONError
		require.ErrorAs(t, err, &jsonErr)
		assert.Greater(t, jsonErr.Offset, int64(0))
	})

	t.Run("jsonc comments are tolerated", func(t *testing.T) {
		dir := t.TempDir()
		writeValidTree(t, dir)
		writeFile(t, filepath.Join(dir, "core.json"), `{
			// brand palette
			"color": {"primary": {"$type": "color", "$value": "#112233"}}
		}`)

		tree, err := modular.ReadTree(dir)
		require.NoError(t, err)
		assert.Contains(t, tree.Sets, "core")
	})

	t.Run("nested set names map to subdirectories", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "$metadata.json"), `{"tokenSetOrder":["components/button"]}`)
		writeFile(t, filepath.Join(dir, "$themes.json"), `[]`)
		writeFile(t, filepath.Join(dir, "components", "button.json"), `{
			"padding": {"$type": "dimension", "$value": "8px"}
		}`)

		tree, err := modular.ReadTree(dir)
		require.NoError(t, err)
		assert.Contains(t, tree.Sets, "components/button")
	})
}

func TestWriteTree(t *testing.T) {
	t.Run("round-trips through disk", func(t *testing.T) {
		dir := t.TempDir()
		writeValidTree(t, dir)
		tree, err := modular.ReadTree(dir)
		require.NoError(t, err)

		out := t.TempDir()
		require.NoError(t, modular.WriteTree(out, tree))

		reread, err := modular.ReadTree(out)
		require.NoError(t, err)
		assert.Equal(t, tree.Metadata, reread.Metadata)
		assert.Equal(t, tree.Themes, reread.Themes)
		assert.Equal(t, tree.Sets, reread.Sets)
	})

	t.Run("set missing from tree is rejected", func(t *testing.T) {
		tree := &modular.Tree{
			Metadata: modular.Metadata{TokenSetOrder: []string{"ghost"}},
			Sets:     map[string]map[string]any{},
		}
		err := modular.WriteTree(t.TempDir(), tree)
		assert.ErrorIs(t, err, modular.ErrStructuralMismatch)
	})

	t.Run("writes leave no temp files behind", func(t *testing.T) {
		dir := t.TempDir()
		writeValidTree(t, dir)
		tree, err := modular.ReadTree(dir)
		require.NoError(t, err)

		out := t.TempDir()
		require.NoError(t, modular.WriteTree(out, tree))

		entries, err := os.ReadDir(out)
		require.NoError(t, err)
		for _, entry := range entries {
			assert.NotContains(t, entry.Name(), ".tokensmith-")
		}
	})
}

func TestReadCanonical(t *testing.T) {
	t.Run("returns top-level keys in source order", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "tokens.json")
		writeFile(t, path, `{
			"zeta": {"x": {"$type": "color", "$value": "#fff"}},
			"alpha": {"y": {"$type": "color", "$value": "#000"}},
			"$metadata": {"tokenSetOrder": ["zeta", "alpha"]},
			"$themes": []
		}`)

		doc, keys, err := modular.ReadCanonical(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"zeta", "alpha", "$metadata", "$themes"}, keys)
		assert.Contains(t, doc, "zeta")
		assert.Contains(t, doc, "$themes")
	})

	t.Run("missing file", func(t *testing.T) {
		_, _, err := modular.ReadCanonical(filepath.Join(t.TempDir(), "nope.json"))
		assert.ErrorIs(t, err, modular.ErrMissingRequiredFile)
	})
}
