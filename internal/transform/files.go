package transform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"tokensmith/internal/modular"
)

// ErrRoundtripDrift indicates a transformation changed the resolved
// token graph
var ErrRoundtripDrift = errors.New("round-trip drift detected")

// RoundtripDriftError lists the paths whose resolved values changed
// across a transformation
type RoundtripDriftError struct {
	Differences []Difference
}

func (e *RoundtripDriftError) Error() string {
	return fmt.Sprintf("round-trip drift detected at %d path(s), first: %s\nSuggestion: inspect the listed paths; the backup taken before this operation can be rolled back", len(e.Differences), e.Differences[0])
}

func (e *RoundtripDriftError) Unwrap() error {
	return ErrRoundtripDrift
}

// SplitFile reads the canonical document, splits it, and persists the
// modular tree to outDir. The write is preceded by a backup (when the
// engine has a backup hook) and followed by round-trip verification when
// enabled. Returns the tree and the id of the backup taken.
func (e *Engine) SplitFile(canonicalPath, outDir string) (*modular.Tree, string, error) {
	op := e.log().Start("split",
		zap.String("canonical", canonicalPath),
		zap.String("out", outDir))

	doc, keys, err := modular.ReadCanonical(canonicalPath)
	if err != nil {
		op.Fail(err)
		return nil, "", err
	}

	tree, err := e.Split(doc, keys)
	if err != nil {
		op.Fail(err)
		return nil, "", err
	}

	backupID, err := e.takeBackup("split", treePaths(outDir, tree))
	if err != nil {
		op.Fail(err)
		return nil, "", err
	}

	if err := modular.WriteTree(outDir, tree); err != nil {
		op.Fail(err)
		return nil, backupID, err
	}
	e.recordTreeWrites(outDir, tree)

	if e.VerifyRoundtrip {
		if err := e.verifyAgainst(doc, tree); err != nil {
			op.Fail(err)
			return tree, backupID, err
		}
	}

	op.Complete(zap.Int("sets", len(tree.Sets)), zap.String("backup", backupID))
	return tree, backupID, nil
}

// ConsolidateDir reads a modular tree and writes the canonical document.
// Mirror image of SplitFile: backup first, then write, then verify.
func (e *Engine) ConsolidateDir(dir, canonicalPath string) (map[string]any, string, error) {
	op := e.log().Start("consolidate",
		zap.String("dir", dir),
		zap.String("canonical", canonicalPath))

	tree, err := modular.ReadTree(dir)
	if err != nil {
		op.Fail(err)
		return nil, "", err
	}
	for _, warning := range tree.Warnings {
		e.log().Warn(warning)
	}

	doc, err := e.Consolidate(tree)
	if err != nil {
		op.Fail(err)
		return nil, "", err
	}

	backupID, err := e.takeBackup("consolidate", []string{canonicalPath})
	if err != nil {
		op.Fail(err)
		return nil, "", err
	}

	if err := modular.WriteCanonical(canonicalPath, doc); err != nil {
		op.Fail(err)
		return nil, backupID, err
	}
	e.Session.Record(canonicalPath, "write")

	if e.VerifyRoundtrip {
		// split the document we just wrote and check the opposite
		// direction preserves the graph
		reSplit, err := e.Split(doc, nil)
		if err != nil {
			op.Fail(err)
			return doc, backupID, err
		}
		if err := e.verifyAgainst(doc, reSplit); err != nil {
			op.Fail(err)
			return doc, backupID, err
		}
	}

	op.Complete(zap.Int("sets", len(tree.Sets)), zap.String("backup", backupID))
	return doc, backupID, nil
}

// takeBackup invokes the engine's backup hook over the paths that exist.
// A path-too-long condition aborts the backup with a warning, not the
// operation.
func (e *Engine) takeBackup(opName string, paths []string) (string, error) {
	if e.Backup == nil {
		return "", nil
	}
	var existing []string
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			existing = append(existing, path)
		}
	}
	if len(existing) == 0 {
		return "", nil
	}
	id, err := e.Backup(opName, existing)
	if err != nil {
		if errors.Is(err, modular.ErrPathTooLong) {
			e.log().Warn("backup skipped", zap.Error(err))
			return "", nil
		}
		return "", fmt.Errorf("backup before %s: %w", opName, err)
	}
	return id, nil
}

// verifyAgainst fails when the tree's consolidated form resolves to a
// different token graph than doc
func (e *Engine) verifyAgainst(doc map[string]any, tree *modular.Tree) error {
	rebuilt, err := e.Consolidate(tree)
	if err != nil {
		return err
	}
	before, _ := e.ResolvedGraph(doc)
	after, _ := e.ResolvedGraph(rebuilt)
	if diffs := DiffResolved(before, after); len(diffs) > 0 {
		return &RoundtripDriftError{Differences: diffs}
	}
	return nil
}

func treePaths(dir string, tree *modular.Tree) []string {
	paths := []string{
		filepath.Join(dir, modular.MetadataFile),
		filepath.Join(dir, modular.ThemesFile),
	}
	for _, name := range tree.Metadata.TokenSetOrder {
		paths = append(paths, filepath.Join(dir, modular.SetFileName(name)))
	}
	return paths
}

func (e *Engine) recordTreeWrites(dir string, tree *modular.Tree) {
	for _, path := range treePaths(dir, tree) {
		e.Session.Record(path, "write")
	}
}
