package modular

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/tidwall/jsonc"

	"tokensmith/internal/tokens"
)

// maxPathLength is the platform path-length limit enforced before any
// read or write touches the filesystem
var maxPathLength = func() int {
	if runtime.GOOS == "windows" {
		return 260
	}
	return 4096
}()

// CheckPathLength reports a PathTooLongError when the path exceeds the
// platform limit. Operations abort rather than silently truncate.
func CheckPathLength(path string) error {
	if len(path) > maxPathLength {
		return NewPathTooLongError(path, maxPathLength)
	}
	return nil
}

// SetFileName maps a token set name to its file path relative to the
// tree root. Set names containing "/" map to subdirectories.
func SetFileName(name string) string {
	return filepath.FromSlash(name) + ".json"
}

// SetNameFromFile maps a relative file path back to a set name
func SetNameFromFile(rel string) string {
	rel = filepath.ToSlash(rel)
	return strings.TrimSuffix(rel, ".json")
}

// ReadJSONFile reads and unmarshals a JSON file, tolerating JSONC
// comments on the way in. I/O and parse failures come back as the
// package's classified errors, never raw.
func ReadJSONFile(path string, v any) error {
	if err := CheckPathLength(path); err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		switch {
		case errors.Is(err, fs.ErrNotExist):
			return NewMissingRequiredFileError(path)
		case errors.Is(err, fs.ErrPermission):
			return NewPermissionDeniedError(path, "read")
		default:
			return fmt.Errorf("read %s: %w", path, err)
		}
	}
	return unmarshalJSONC(path, data, v)
}

// unmarshalJSONC strips comments and unmarshals, keeping byte offsets
// accurate (jsonc replaces comments with whitespace in place)
func unmarshalJSONC(path string, data []byte, v any) error {
	clean := jsonc.ToJSON(data)
	if err := json.Unmarshal(clean, v); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return NewInvalidJSONError(path, syntaxErr.Offset, syntaxErr.Error())
		}
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return NewInvalidJSONError(path, typeErr.Offset, typeErr.Error())
		}
		return NewInvalidJSONError(path, 0, err.Error())
	}
	return nil
}

// DiscoverSetFiles globs the tree for token set files, skipping the
// required $-files and any dot-prefixed directory (backups, VCS)
func DiscoverSetFiles(dir string) ([]string, error) {
	matches, err := doublestar.Glob(os.DirFS(dir), "**/*.json")
	if err != nil {
		return nil, fmt.Errorf("glob token set files in %s: %w", dir, err)
	}
	var out []string
	for _, rel := range matches {
		base := filepath.Base(rel)
		if base == MetadataFile || base == ThemesFile {
			continue
		}
		if strings.HasPrefix(base, ".") || hasDotComponent(rel) {
			continue
		}
		out = append(out, rel)
	}
	sort.Strings(out)
	return out, nil
}

func hasDotComponent(rel string) bool {
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}

// ReadTree loads a modular token directory into memory. The metadata and
// themes files are required; every set named in tokenSetOrder must have a
// file. Set files on disk but missing from the order are appended to it
// with a warning (forward compatible with externally added sets).
func ReadTree(dir string) (*Tree, error) {
	tree := &Tree{Sets: map[string]map[string]any{}}

	if err := ReadJSONFile(filepath.Join(dir, MetadataFile), &tree.Metadata); err != nil {
		return nil, err
	}
	if err := ReadJSONFile(filepath.Join(dir, ThemesFile), &tree.Themes); err != nil {
		return nil, err
	}

	for _, name := range tree.Metadata.TokenSetOrder {
		path := filepath.Join(dir, SetFileName(name))
		var raw map[string]any
		if err := ReadJSONFile(path, &raw); err != nil {
			if errors.Is(err, ErrMissingRequiredFile) {
				return nil, NewStructuralMismatchError(name, "listed in tokenSetOrder but has no file")
			}
			return nil, err
		}
		normalized, err := tokens.NormalizeSet(raw)
		if err != nil {
			return nil, fmt.Errorf("normalize token set %q: %w", name, err)
		}
		tree.Sets[name] = normalized
	}

	// pick up set files that are not listed in the order
	known := map[string]bool{}
	for _, name := range tree.Metadata.TokenSetOrder {
		known[name] = true
	}
	discovered, err := DiscoverSetFiles(dir)
	if err != nil {
		return nil, err
	}
	for _, rel := range discovered {
		name := SetNameFromFile(rel)
		if known[name] {
			continue
		}
		var raw map[string]any
		if err := ReadJSONFile(filepath.Join(dir, rel), &raw); err != nil {
			return nil, err
		}
		normalized, err := tokens.NormalizeSet(raw)
		if err != nil {
			return nil, fmt.Errorf("normalize token set %q: %w", name, err)
		}
		tree.Sets[name] = normalized
		tree.Metadata.TokenSetOrder = append(tree.Metadata.TokenSetOrder, name)
		tree.Warnings = append(tree.Warnings,
			fmt.Sprintf("token set file %s was not listed in tokenSetOrder; appended %q to the order", rel, name))
	}

	return tree, nil
}

// ReadCanonical loads the canonical single-file document, returning the
// parsed document and its top-level keys in source order (needed for a
// deterministic split of groups the policy does not name)
func ReadCanonical(path string) (map[string]any, []string, error) {
	if err := CheckPathLength(path); err != nil {
		return nil, nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		switch {
		case errors.Is(err, fs.ErrNotExist):
			return nil, nil, NewMissingRequiredFileError(path)
		case errors.Is(err, fs.ErrPermission):
			return nil, nil, NewPermissionDeniedError(path, "read")
		default:
			return nil, nil, fmt.Errorf("read %s: %w", path, err)
		}
	}

	clean := jsonc.ToJSON(data)
	var doc map[string]any
	if err := unmarshalJSONC(path, data, &doc); err != nil {
		return nil, nil, err
	}
	keys, err := topLevelKeys(clean)
	if err != nil {
		return nil, nil, NewInvalidJSONError(path, 0, err.Error())
	}
	return doc, keys, nil
}

// topLevelKeys scans the document's first-level object keys in source
// order. encoding/json maps lose ordering, so we walk the token stream.
func topLevelKeys(data []byte) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected top-level object, got %v", tok)
	}

	var keys []string
	depth := 0
	expectKey := true
	for dec.More() || depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return keys, nil
		}
		switch t := tok.(type) {
		case json.Delim:
			switch t {
			case '{', '[':
				depth++
			case '}', ']':
				depth--
			}
			expectKey = depth == 0
		case string:
			if depth == 0 && expectKey {
				keys = append(keys, t)
				expectKey = false
			} else if depth == 0 {
				expectKey = true
			}
		default:
			if depth == 0 {
				expectKey = true
			}
		}
	}
	return keys, nil
}
