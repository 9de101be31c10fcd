package modular

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// WriteJSONAtomic marshals v with stable two-space indentation and writes
// it atomically: the bytes go to a temp file in the target directory,
// then a rename moves it into place. A crash mid-write leaves at worst a
// stray temp file, never a half-written document.
func WriteJSONAtomic(path string, v any) error {
	if err := CheckPathLength(path); err != nil {
		return err
	}

	data, err := marshalStable(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return NewPermissionDeniedError(dir, "create directory")
		}
		return fmt.Errorf("create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".tokensmith-*")
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return NewPermissionDeniedError(dir, "write")
		}
		return fmt.Errorf("create temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		if errors.Is(err, fs.ErrPermission) {
			return NewPermissionDeniedError(path, "replace")
		}
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

// marshalStable renders JSON with 2-space indentation, a trailing
// newline, and without HTML escaping, matching how design tools emit
// their token files
func marshalStable(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteTree persists a modular tree: metadata, themes, and one file per
// token set, each written atomically
func WriteTree(dir string, tree *Tree) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return NewPermissionDeniedError(dir, "create directory")
		}
		return fmt.Errorf("create directory %s: %w", dir, err)
	}

	if err := WriteJSONAtomic(filepath.Join(dir, MetadataFile), tree.Metadata); err != nil {
		return err
	}
	themes := tree.Themes
	if themes == nil {
		themes = []Theme{}
	}
	if err := WriteJSONAtomic(filepath.Join(dir, ThemesFile), themes); err != nil {
		return err
	}
	for _, name := range tree.Metadata.TokenSetOrder {
		set, ok := tree.Sets[name]
		if !ok {
			return NewStructuralMismatchError(name, "listed in tokenSetOrder but not present in the tree")
		}
		if err := WriteJSONAtomic(filepath.Join(dir, SetFileName(name)), set); err != nil {
			return err
		}
	}
	return nil
}

// WriteCanonical persists the canonical single-file document
func WriteCanonical(path string, doc map[string]any) error {
	return WriteJSONAtomic(path, doc)
}
