package validate_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokensmith/internal/config"
	"tokensmith/internal/modular"
	"tokensmith/internal/validate"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func newValidator() *validate.Validator {
	return validate.New(config.Default())
}

func findByKind(issues []validate.Issue, kind string) *validate.Issue {
	for i := range issues {
		if issues[i].Kind == kind {
			return &issues[i]
		}
	}
	return nil
}

func TestValidateAll(t *testing.T) {
	t.Run("well-formed corpus passes", func(t *testing.T) {
		dir := writeTree(t, map[string]string{
			"$metadata.json": `{"tokenSetOrder": ["core", "global"]}`,
			"$themes.json": `[{"id": "t1", "name": "Light",
				"selectedTokenSets": {"core": "source", "global": "enabled"}}]`,
			"core.json":   `{"color": {"primary": {"$type": "color", "$value": "#112233"}}}`,
			"global.json": `{"color": {"accent": {"$type": "color", "$value": "{core.color.primary}"}}}`,
		})

		report := newValidator().All(dir)
		assert.True(t, report.Valid(), "unexpected issues: %v", report.Issues)
	})

	t.Run("unresolved reference is a high finding with the token path", func(t *testing.T) {
		dir := writeTree(t, map[string]string{
			"$metadata.json": `{"tokenSetOrder": ["core", "global"]}`,
			"$themes.json":   `[]`,
			"core.json":      `{"color": {"primary": {"$type": "color", "$value": "#112233"}}}`,
			"global.json":    `{"color": {"accent": {"$type": "color", "$value": "{core.color.primry}"}}}`,
		})

		report := newValidator().All(dir)
		assert.False(t, report.Valid())

		issue := findByKind(report.Issues, validate.KindUnresolvedReference)
		require.NotNil(t, issue)
		assert.Equal(t, validate.SeverityHigh, issue.Severity)
		assert.Equal(t, "global.color.accent", issue.Path)
		assert.Contains(t, issue.Message, "core.color.primry")
		// a near miss should surface the real token as a suggestion
		assert.Contains(t, issue.Message, "core.color.primary")
	})

	t.Run("circular reference is critical", func(t *testing.T) {
		dir := writeTree(t, map[string]string{
			"$metadata.json": `{"tokenSetOrder": ["core"]}`,
			"$themes.json":   `[]`,
			"core.json": `{"color": {
				"a": {"$type": "color", "$value": "{color.b}"},
				"b": {"$type": "color", "$value": "{color.a}"}
			}}`,
		})

		report := newValidator().All(dir)
		assert.False(t, report.Valid())

		issue := findByKind(report.Issues, validate.KindCircularReference)
		require.NotNil(t, issue)
		assert.Equal(t, validate.SeverityCritical, issue.Severity)
		assert.Contains(t, issue.Message, "color.a")
		assert.Contains(t, issue.Message, "color.b")
	})

	t.Run("theme selecting an unknown set is a high finding", func(t *testing.T) {
		dir := writeTree(t, map[string]string{
			"$metadata.json": `{"tokenSetOrder": ["core"]}`,
			"$themes.json": `[{"id": "t1", "name": "Dark",
				"selectedTokenSets": {"core": "source", "ghost": "enabled"}}]`,
			"core.json": `{"color": {"primary": {"$type": "color", "$value": "#112233"}}}`,
		})

		report := newValidator().All(dir)
		assert.False(t, report.Valid())

		issue := findByKind(report.Issues, validate.KindThemeMisconfigured)
		require.NotNil(t, issue)
		assert.Equal(t, validate.SeverityHigh, issue.Severity)
		assert.Equal(t, "Dark", issue.Path)
		assert.Contains(t, issue.Message, "ghost")
	})

	t.Run("malformed JSON is critical and carries the byte offset", func(t *testing.T) {
		dir := writeTree(t, map[string]string{
			"$metadata.json": `{"tokenSetOrder": ["core"]}`,
			"$themes.json":   `[]`,
			"core.json":      `{"color": {"primary": {"$type": "color", "$value": }}}`,
		})

		report := newValidator().All(dir)
		assert.False(t, report.Valid())

		issue := findByKind(report.Issues, validate.KindInvalidJSON)
		require.NotNil(t, issue)
		assert.Equal(t, validate.SeverityCritical, issue.Severity)
		assert.Contains(t, issue.Message, "byte offset")
	})

	t.Run("color token with an unparseable value is a format issue", func(t *testing.T) {
		dir := writeTree(t, map[string]string{
			"$metadata.json": `{"tokenSetOrder": ["core"]}`,
			"$themes.json":   `[]`,
			"core.json":      `{"color": {"bad": {"$type": "color", "$value": "not a color"}}}`,
		})

		report := newValidator().All(dir)
		issue := findByKind(report.Issues, validate.KindFormatIssue)
		require.NotNil(t, issue)
		assert.Equal(t, validate.SeverityMedium, issue.Severity)
		assert.Equal(t, "core.color.bad", issue.Path)
	})

	t.Run("unclassifiable untyped token is a missing-type finding", func(t *testing.T) {
		dir := writeTree(t, map[string]string{
			"$metadata.json": `{"tokenSetOrder": ["core"]}`,
			"$themes.json":   `[]`,
			"core.json":      `{"content": {"tagline": {"$value": "ship early and often"}}}`,
		})

		report := newValidator().All(dir)
		issue := findByKind(report.Issues, validate.KindMissingType)
		require.NotNil(t, issue)
		assert.Equal(t, validate.SeverityMedium, issue.Severity)
		assert.Equal(t, "core.content.tagline", issue.Path)
	})

	t.Run("untyped reference token is not flagged", func(t *testing.T) {
		dir := writeTree(t, map[string]string{
			"$metadata.json": `{"tokenSetOrder": ["core"]}`,
			"$themes.json":   `[]`,
			"core.json": `{"color": {
				"primary": {"$type": "color", "$value": "#112233"},
				"cta": {"$value": "{color.primary}"}
			}}`,
		})

		report := newValidator().All(dir)
		assert.Nil(t, findByKind(report.Issues, validate.KindMissingType))
	})

	t.Run("missing metadata file is critical", func(t *testing.T) {
		dir := writeTree(t, map[string]string{
			"$themes.json": `[]`,
			"core.json":    `{"color": {"x": {"$type": "color", "$value": "#000"}}}`,
		})

		report := newValidator().All(dir)
		assert.False(t, report.Valid())
		issue := findByKind(report.Issues, validate.KindMissingFile)
		require.NotNil(t, issue)
		assert.Equal(t, validate.SeverityCritical, issue.Severity)
	})
}

func TestReferences(t *testing.T) {
	t.Run("alternative-spelling resolution is a format issue", func(t *testing.T) {
		tree := &modular.Tree{
			Metadata: modular.Metadata{TokenSetOrder: []string{"core"}},
			Sets: map[string]map[string]any{
				"core": {
					"colors": map[string]any{
						"primary": map[string]any{"$type": "color", "$value": "#112233"},
					},
					"semantic": map[string]any{
						"link": map[string]any{"$type": "color", "$value": "{color.primary}"},
					},
				},
			},
		}

		report := newValidator().References(tree)
		assert.True(t, report.Valid(), "a rewrite hit should not fail validation")

		issue := findByKind(report.Issues, validate.KindFormatIssue)
		require.NotNil(t, issue)
		assert.Equal(t, validate.SeverityLow, issue.Severity)
		assert.Contains(t, issue.Message, "colors.primary")
	})

	t.Run("later set override resolves cleanly", func(t *testing.T) {
		tree := &modular.Tree{
			Metadata: modular.Metadata{TokenSetOrder: []string{"core", "brand"}},
			Sets: map[string]map[string]any{
				"core": {
					"color": map[string]any{"primary": map[string]any{"$type": "color", "$value": "#111"}},
				},
				"brand": {
					"color": map[string]any{"primary": map[string]any{"$type": "color", "$value": "#222"}},
					"cta":   map[string]any{"$type": "color", "$value": "{color.primary}"},
				},
			},
		}

		report := newValidator().References(tree)
		assert.Empty(t, report.Issues)
	})
}

func TestThemes(t *testing.T) {
	t.Run("unknown selection state is a medium finding", func(t *testing.T) {
		tree := &modular.Tree{
			Metadata: modular.Metadata{TokenSetOrder: []string{"core"}},
			Themes: []modular.Theme{{
				ID: "t1", Name: "Light",
				SelectedTokenSets: map[string]string{"core": "active"},
			}},
			Sets: map[string]map[string]any{"core": {}},
		}

		report := newValidator().Themes(tree)
		issue := findByKind(report.Issues, validate.KindThemeMisconfigured)
		require.NotNil(t, issue)
		assert.Equal(t, validate.SeverityMedium, issue.Severity)
	})

	t.Run("missing source marking is a medium finding", func(t *testing.T) {
		tree := &modular.Tree{
			Metadata: modular.Metadata{TokenSetOrder: []string{"core"}},
			Themes: []modular.Theme{{
				ID: "t1", Name: "Light",
				SelectedTokenSets: map[string]string{"core": "enabled"},
			}},
			Sets: map[string]map[string]any{"core": {}},
		}

		report := newValidator().Themes(tree)
		issue := findByKind(report.Issues, validate.KindThemeMisconfigured)
		require.NotNil(t, issue)
		assert.Equal(t, validate.SeverityMedium, issue.Severity)
		assert.Contains(t, issue.Message, "source")
	})
}

func TestRoundtrip(t *testing.T) {
	t.Run("stable corpus reports no drift", func(t *testing.T) {
		tree := &modular.Tree{
			Metadata: modular.Metadata{TokenSetOrder: []string{"core", "global"}},
			Themes:   []modular.Theme{},
			Sets: map[string]map[string]any{
				"core": {
					"color": map[string]any{"primary": map[string]any{"$type": "color", "$value": "#112233"}},
				},
				"global": {
					"color": map[string]any{"accent": map[string]any{"$type": "color", "$value": "{core.color.primary}"}},
				},
			},
		}

		report := newValidator().Roundtrip(tree)
		assert.Empty(t, report.Issues)
	})
}

func TestRoundtripAgainst(t *testing.T) {
	treeFiles := map[string]string{
		"$metadata.json": `{"tokenSetOrder": ["core"]}`,
		"$themes.json":   `[]`,
		"core.json":      `{"color": {"primary": {"$type": "color", "$value": "#112233"}}}`,
	}

	t.Run("agreeing representations pass", func(t *testing.T) {
		dir := writeTree(t, treeFiles)
		canonical := filepath.Join(t.TempDir(), "tokens.json")
		require.NoError(t, os.WriteFile(canonical, []byte(`{
			"core": {"color": {"primary": {"$type": "color", "$value": "#112233"}}},
			"$metadata": {"tokenSetOrder": ["core"]},
			"$themes": []
		}`), 0o644))

		report := newValidator().All(dir, canonical)
		assert.True(t, report.Valid(), "unexpected issues: %v", report.Issues)
	})

	t.Run("diverged canonical document is critical", func(t *testing.T) {
		dir := writeTree(t, treeFiles)
		canonical := filepath.Join(t.TempDir(), "tokens.json")
		require.NoError(t, os.WriteFile(canonical, []byte(`{
			"core": {"color": {"primary": {"$type": "color", "$value": "#ff0000"}}},
			"$metadata": {"tokenSetOrder": ["core"]},
			"$themes": []
		}`), 0o644))

		report := newValidator().All(dir, canonical)
		assert.False(t, report.Valid())
		issue := findByKind(report.Issues, validate.KindRoundtripDrift)
		require.NotNil(t, issue)
		assert.Equal(t, "core.color.primary", issue.Path)
	})
}

func TestReportOrdering(t *testing.T) {
	report := &validate.Report{}
	report.Add(validate.Issue{Kind: validate.KindFormatIssue, Severity: validate.SeverityLow, Path: "a"})
	report.Add(validate.Issue{Kind: validate.KindCircularReference, Severity: validate.SeverityCritical, Path: "b"})
	report.Add(validate.Issue{Kind: validate.KindUnresolvedReference, Severity: validate.SeverityHigh, Path: "c"})
	report.Sort()

	assert.Equal(t, validate.SeverityCritical, report.Issues[0].Severity)
	assert.Equal(t, validate.SeverityHigh, report.Issues[1].Severity)
	assert.Equal(t, validate.SeverityLow, report.Issues[2].Severity)
	assert.Equal(t, 1, report.Count(validate.SeverityCritical))
}
