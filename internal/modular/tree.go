package modular

// Required files in the modular layout
const (
	MetadataFile = "$metadata.json"
	ThemesFile   = "$themes.json"
)

// Theme set selection states
const (
	SetSource   = "source"
	SetEnabled  = "enabled"
	SetDisabled = "disabled"
)

// Metadata is the modular tree's metadata document
type Metadata struct {
	TokenSetOrder []string `json:"tokenSetOrder"`
}

// Theme is a named view over token sets: which sets are active, and in
// what role, for one presentation context. FigmaStyleReferences is
// third-party metadata carried verbatim, never interpreted.
type Theme struct {
	ID                   string            `json:"id"`
	Name                 string            `json:"name"`
	SelectedTokenSets    map[string]string `json:"selectedTokenSets"`
	FigmaStyleReferences map[string]any    `json:"figmaStyleReferences,omitempty"`
}

// Tree is the in-memory form of a modular token directory
type Tree struct {
	Metadata Metadata
	Themes   []Theme

	// Sets maps set name to its normalized nested token structure
	Sets map[string]map[string]any

	// Warnings collects non-fatal observations made while reading,
	// e.g. set files found on disk but absent from tokenSetOrder
	Warnings []string
}

// SetNames returns the set names in evaluation order
func (t *Tree) SetNames() []string {
	return t.Metadata.TokenSetOrder
}

// SourceSets returns the names of sets any theme marks as "source"
func (t *Tree) SourceSets() []string {
	seen := map[string]bool{}
	var out []string
	for _, theme := range t.Themes {
		for set, state := range theme.SelectedTokenSets {
			if state == SetSource && !seen[set] {
				seen[set] = true
				out = append(out, set)
			}
		}
	}
	return out
}
