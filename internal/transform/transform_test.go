package transform_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokensmith/internal/modular"
	"tokensmith/internal/session"
	"tokensmith/internal/tokens"
	"tokensmith/internal/transform"
)

func sampleDoc() map[string]any {
	return map[string]any{
		"core": map[string]any{
			"color": map[string]any{
				"primary": map[string]any{"$type": "color", "$value": "#112233"},
			},
		},
		"global": map[string]any{
			"color": map[string]any{
				"accent": map[string]any{"$type": "color", "$value": "{core.color.primary}"},
			},
		},
		"$metadata": map[string]any{"tokenSetOrder": []any{"core", "global"}},
		"$themes": []any{
			map[string]any{
				"id":                "light",
				"name":              "Light",
				"selectedTokenSets": map[string]any{"core": "source", "global": "enabled"},
				"figmaStyleReferences": map[string]any{
					"opaque": map[string]any{"keep": "me"},
				},
			},
		},
	}
}

func TestSplit(t *testing.T) {
	engine := transform.New(transform.DefaultPolicy())

	t.Run("produces one set per declared group", func(t *testing.T) {
		tree, err := engine.Split(sampleDoc(), []string{"core", "global", "$metadata", "$themes"})
		require.NoError(t, err)

		assert.Equal(t, []string{"core", "global"}, tree.Metadata.TokenSetOrder)
		require.Contains(t, tree.Sets, "core")
		require.Contains(t, tree.Sets, "global")

		require.Len(t, tree.Themes, 1)
		assert.Equal(t, "Light", tree.Themes[0].Name)
		// third-party style metadata is opaque passthrough
		assert.Equal(t, map[string]any{"keep": "me"},
			tree.Themes[0].FigmaStyleReferences["opaque"])
	})

	t.Run("unmatched groups land in the residual set", func(t *testing.T) {
		doc := map[string]any{
			"core": map[string]any{
				"color": map[string]any{"base": map[string]any{"$type": "color", "$value": "#000"}},
			},
			"stray": map[string]any{
				"thing": map[string]any{"$type": "dimension", "$value": "4px"},
			},
		}

		tree, err := engine.Split(doc, []string{"core", "stray"})
		require.NoError(t, err)

		require.Contains(t, tree.Sets, "misc")
		residual := tree.Sets["misc"]
		require.Contains(t, residual, "stray")
		assert.Equal(t, []string{"core", "misc"}, tree.Metadata.TokenSetOrder)
	})

	t.Run("priority order wins over source order", func(t *testing.T) {
		doc := map[string]any{
			"brand": map[string]any{"b": map[string]any{"$type": "color", "$value": "#111"}},
			"core":  map[string]any{"c": map[string]any{"$type": "color", "$value": "#222"}},
		}

		tree, err := engine.Split(doc, []string{"brand", "core"})
		require.NoError(t, err)
		assert.Equal(t, []string{"core", "brand"}, tree.Metadata.TokenSetOrder)
	})

	t.Run("legacy token shapes are normalized during split", func(t *testing.T) {
		doc := map[string]any{
			"core": map[string]any{
				"space": map[string]any{"sm": map[string]any{"value": "4px"}},
			},
		}

		tree, err := engine.Split(doc, []string{"core"})
		require.NoError(t, err)

		leaf := tree.Sets["core"]["space"].(map[string]any)["sm"].(map[string]any)
		assert.Equal(t, "4px", leaf["$value"])
		assert.Equal(t, "dimension", leaf["$type"])
	})
}

func TestConsolidate(t *testing.T) {
	engine := transform.New(transform.DefaultPolicy())

	t.Run("reassembles the canonical layout", func(t *testing.T) {
		tree, err := engine.Split(sampleDoc(), []string{"core", "global", "$metadata", "$themes"})
		require.NoError(t, err)

		doc, err := engine.Consolidate(tree)
		require.NoError(t, err)

		assert.Contains(t, doc, "core")
		assert.Contains(t, doc, "global")
		assert.Contains(t, doc, "$metadata")
		assert.Contains(t, doc, "$themes")

		meta := doc["$metadata"].(map[string]any)
		assert.Equal(t, []any{"core", "global"}, meta["tokenSetOrder"])
	})

	t.Run("residual groups are expanded back to the top level", func(t *testing.T) {
		doc := map[string]any{
			"core": map[string]any{
				"color": map[string]any{"base": map[string]any{"$type": "color", "$value": "#000"}},
			},
			"stray": map[string]any{
				"thing": map[string]any{"$type": "dimension", "$value": "4px"},
			},
		}

		tree, err := engine.Split(doc, []string{"core", "stray"})
		require.NoError(t, err)
		rebuilt, err := engine.Consolidate(tree)
		require.NoError(t, err)

		assert.Contains(t, rebuilt, "stray")
		assert.NotContains(t, rebuilt, "misc")
	})

	t.Run("missing set is a structural mismatch", func(t *testing.T) {
		tree := &modular.Tree{
			Metadata: modular.Metadata{TokenSetOrder: []string{"ghost"}},
			Sets:     map[string]map[string]any{},
		}
		_, err := engine.Consolidate(tree)
		assert.ErrorIs(t, err, modular.ErrStructuralMismatch)
	})

	t.Run("set that is itself a token is rejected, not expanded", func(t *testing.T) {
		tree := &modular.Tree{
			Metadata: modular.Metadata{TokenSetOrder: []string{"core"}},
			Sets: map[string]map[string]any{
				"core": {"$type": "color", "$value": "#112233"},
			},
		}
		_, err := engine.Consolidate(tree)
		require.Error(t, err)
		assert.ErrorIs(t, err, tokens.ErrInvalidNode)
	})
}

func TestGroupMapping(t *testing.T) {
	policy := transform.DefaultPolicy()
	policy.GroupMapping = map[string]string{"palette": "core"}
	engine := transform.New(policy)

	doc := map[string]any{
		"palette": map[string]any{
			"color": map[string]any{"red": map[string]any{"$type": "color", "$value": "#ff0000"}},
		},
		"core": map[string]any{
			"color": map[string]any{"primary": map[string]any{"$type": "color", "$value": "#112233"}},
		},
	}

	t.Run("groups landing in a mapped set nest under their own names", func(t *testing.T) {
		tree, err := engine.Split(doc, []string{"palette", "core"})
		require.NoError(t, err)

		require.Contains(t, tree.Sets, "core")
		set := tree.Sets["core"]
		assert.Contains(t, set, "palette")
		assert.Contains(t, set, "core")
		assert.Equal(t, []string{"core"}, tree.Metadata.TokenSetOrder)
	})

	t.Run("consolidate restores the original top-level groups", func(t *testing.T) {
		tree, err := engine.Split(doc, []string{"palette", "core"})
		require.NoError(t, err)
		rebuilt, err := engine.Consolidate(tree)
		require.NoError(t, err)

		assert.Contains(t, rebuilt, "palette")
		assert.Contains(t, rebuilt, "core")

		before, errs := engine.ResolvedGraph(doc)
		require.Empty(t, errs)
		after, errs := engine.ResolvedGraph(rebuilt)
		require.Empty(t, errs)
		assert.Empty(t, transform.DiffResolved(before, after))
	})

	t.Run("two groups mapped onto one new set both survive", func(t *testing.T) {
		policy := transform.DefaultPolicy()
		policy.GroupMapping = map[string]string{"marketing": "brand", "product": "brand"}
		engine := transform.New(policy)

		doc := map[string]any{
			"marketing": map[string]any{
				"color": map[string]any{"hero": map[string]any{"$type": "color", "$value": "#0a0a0a"}},
			},
			"product": map[string]any{
				"color": map[string]any{"cta": map[string]any{"$type": "color", "$value": "#00ff00"}},
			},
		}

		tree, err := engine.Split(doc, []string{"marketing", "product"})
		require.NoError(t, err)
		require.Contains(t, tree.Sets, "brand")
		assert.Contains(t, tree.Sets["brand"], "marketing")
		assert.Contains(t, tree.Sets["brand"], "product")

		rebuilt, err := engine.Consolidate(tree)
		require.NoError(t, err)
		assert.Contains(t, rebuilt, "marketing")
		assert.Contains(t, rebuilt, "product")

		before, errs := engine.ResolvedGraph(doc)
		require.Empty(t, errs)
		after, errs := engine.ResolvedGraph(rebuilt)
		require.Empty(t, errs)
		assert.Empty(t, transform.DiffResolved(before, after))
	})
}

func TestRoundtrip(t *testing.T) {
	engine := transform.New(transform.DefaultPolicy())

	t.Run("split then consolidate preserves the resolved graph", func(t *testing.T) {
		doc := sampleDoc()
		tree, err := engine.Split(doc, []string{"core", "global", "$metadata", "$themes"})
		require.NoError(t, err)
		rebuilt, err := engine.Consolidate(tree)
		require.NoError(t, err)

		before, errs := engine.ResolvedGraph(doc)
		require.Empty(t, errs)
		after, errs := engine.ResolvedGraph(rebuilt)
		require.Empty(t, errs)

		assert.Empty(t, transform.DiffResolved(before, after))
		// the reference resolved through the chain
		assert.Equal(t, "#112233", after["global.color.accent"])
	})

	t.Run("split is idempotent across a round-trip", func(t *testing.T) {
		doc := sampleDoc()
		first, err := engine.Split(doc, []string{"core", "global", "$metadata", "$themes"})
		require.NoError(t, err)

		rebuilt, err := engine.Consolidate(first)
		require.NoError(t, err)
		second, err := engine.Split(rebuilt, nil)
		require.NoError(t, err)

		assert.Equal(t, first.Metadata, second.Metadata)
		assert.Equal(t, first.Sets, second.Sets)
		assert.Equal(t, first.Themes, second.Themes)
	})

	t.Run("diff reports drifted paths", func(t *testing.T) {
		before := map[string]any{"a.x": "#111", "a.y": "#222"}
		after := map[string]any{"a.x": "#111", "a.y": "#999", "a.z": "new"}

		diffs := transform.DiffResolved(before, after)
		require.Len(t, diffs, 2)
		assert.Equal(t, "a.y", diffs[0].Path)
		assert.Equal(t, "a.z", diffs[1].Path)
	})
}

func TestSplitFile(t *testing.T) {
	t.Run("writes the modular tree and verifies the round trip", func(t *testing.T) {
		dir := t.TempDir()
		canonical := filepath.Join(dir, "tokens.json")
		content := `{
			"core": {"color": {"primary": {"$type": "color", "$value": "#112233"}}},
			"global": {"color": {"accent": {"$type": "color", "$value": "{core.color.primary}"}}},
			"$metadata": {"tokenSetOrder": ["core", "global"]},
			"$themes": []
		}`
		require.NoError(t, os.WriteFile(canonical, []byte(content), 0o644))

		sess := session.New()
		engine := transform.New(transform.DefaultPolicy())
		engine.Session = sess
		engine.VerifyRoundtrip = true

		outDir := filepath.Join(dir, "tokens")
		tree, backupID, err := engine.SplitFile(canonical, outDir)
		require.NoError(t, err)
		assert.Empty(t, backupID) // nothing existed to back up
		require.NotNil(t, tree)

		assert.FileExists(t, filepath.Join(outDir, "$metadata.json"))
		assert.FileExists(t, filepath.Join(outDir, "$themes.json"))
		assert.FileExists(t, filepath.Join(outDir, "core.json"))
		assert.FileExists(t, filepath.Join(outDir, "global.json"))
		assert.NotEmpty(t, sess.TouchedFiles())
	})

	t.Run("backup hook runs before writes touch existing files", func(t *testing.T) {
		dir := t.TempDir()
		canonical := filepath.Join(dir, "tokens.json")
		require.NoError(t, os.WriteFile(canonical, []byte(`{
			"core": {"color": {"primary": {"$type": "color", "$value": "#112233"}}},
			"$metadata": {"tokenSetOrder": ["core"]},
			"$themes": []
		}`), 0o644))

		outDir := filepath.Join(dir, "tokens")
		engine := transform.New(transform.DefaultPolicy())
		_, _, err := engine.SplitFile(canonical, outDir)
		require.NoError(t, err)

		var backedUp []string
		engine.Backup = func(op string, paths []string) (string, error) {
			backedUp = append(backedUp, paths...)
			return "backup-1", nil
		}
		_, backupID, err := engine.SplitFile(canonical, outDir)
		require.NoError(t, err)
		assert.Equal(t, "backup-1", backupID)
		assert.Contains(t, backedUp, filepath.Join(outDir, "core.json"))
	})
}

func TestConsolidateDir(t *testing.T) {
	t.Run("full file round trip", func(t *testing.T) {
		dir := t.TempDir()
		canonical := filepath.Join(dir, "tokens.json")
		content := `{
			"core": {"color": {"primary": {"$type": "color", "$value": "#112233"}}},
			"global": {"color": {"accent": {"$type": "color", "$value": "{core.color.primary}"}}},
			"$metadata": {"tokenSetOrder": ["core", "global"]},
			"$themes": []
		}`
		require.NoError(t, os.WriteFile(canonical, []byte(content), 0o644))

		engine := transform.New(transform.DefaultPolicy())
		engine.VerifyRoundtrip = true

		outDir := filepath.Join(dir, "tokens")
		_, _, err := engine.SplitFile(canonical, outDir)
		require.NoError(t, err)

		rebuiltPath := filepath.Join(dir, "rebuilt.json")
		doc, _, err := engine.ConsolidateDir(outDir, rebuiltPath)
		require.NoError(t, err)
		assert.FileExists(t, rebuiltPath)

		graph, errs := engine.ResolvedGraph(doc)
		require.Empty(t, errs)
		assert.Equal(t, "#112233", graph["global.color.accent"])
	})
}
