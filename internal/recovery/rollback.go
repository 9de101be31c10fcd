package recovery

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// ErrDivergedSinceBackup indicates files changed after the backup was
// taken and rollback was not forced
var ErrDivergedSinceBackup = errors.New("files diverged since backup")

// DivergedError lists the files whose current content no longer matches
// what the backup expects to overwrite
type DivergedError struct {
	BackupID string
	Paths    []string
}

func (e *DivergedError) Error() string {
	return fmt.Sprintf("refusing to roll back %s: %d file(s) changed since the backup was taken (%s)\nSuggestion: re-run with --force to overwrite them, or --dry-run to see the full plan",
		e.BackupID, len(e.Paths), strings.Join(e.Paths, ", "))
}

func (e *DivergedError) Unwrap() error {
	return ErrDivergedSinceBackup
}

// RollbackOptions controls how a rollback proceeds
type RollbackOptions struct {
	// DryRun plans the restore without touching any file
	DryRun bool

	// Force restores even over files that changed since the backup
	Force bool
}

// RollbackPlan describes what a rollback will do (or did)
type RollbackPlan struct {
	BackupID string `json:"backupId"`

	// Restored lists files the rollback writes back
	Restored []string `json:"restored"`

	// Diverged lists restored files whose current content differs from
	// the backup copy
	Diverged []string `json:"diverged,omitempty"`

	// SafetyBackupID is the snapshot of the current state taken right
	// before restoring, so the rollback itself can be undone
	SafetyBackupID string `json:"safetyBackupId,omitempty"`
}

// Rollback restores every file recorded in the named backup. Current
// files that differ from the backup copies abort the restore unless
// forced; a fresh backup of the current state is always taken first so
// a rollback is itself reversible.
func (m *Manager) Rollback(id string, opts RollbackOptions) (*RollbackPlan, error) {
	manifest, err := m.Get(id)
	if err != nil {
		return nil, err
	}

	op := m.log().Start("rollback",
		zap.String("backup", manifest.ID),
		zap.Bool("dryRun", opts.DryRun),
		zap.Bool("force", opts.Force))

	plan := &RollbackPlan{BackupID: manifest.ID}
	for _, entry := range manifest.Files {
		plan.Restored = append(plan.Restored, entry.OriginalPath)
		same, err := contentMatches(entry.OriginalPath, entry.BackupPath)
		if err != nil {
			op.Fail(err)
			return nil, err
		}
		if !same {
			plan.Diverged = append(plan.Diverged, entry.OriginalPath)
		}
	}

	if opts.DryRun {
		op.Complete(zap.Int("files", len(plan.Restored)), zap.Int("diverged", len(plan.Diverged)))
		return plan, nil
	}

	if len(plan.Diverged) > 0 && !opts.Force {
		err := &DivergedError{BackupID: manifest.ID, Paths: plan.Diverged}
		op.Fail(err)
		return plan, err
	}

	safetyID, err := m.Create("pre-rollback", plan.Restored)
	if err != nil {
		op.Fail(err)
		return plan, fmt.Errorf("snapshot current state before rollback: %w", err)
	}
	plan.SafetyBackupID = safetyID

	for _, entry := range manifest.Files {
		if err := os.MkdirAll(filepath.Dir(entry.OriginalPath), 0o755); err != nil {
			op.Fail(err)
			return plan, fmt.Errorf("restore %s: %w", entry.OriginalPath, err)
		}
		if err := copyFile(entry.BackupPath, entry.OriginalPath); err != nil {
			op.Fail(err)
			return plan, fmt.Errorf("restore %s: %w", entry.OriginalPath, err)
		}
	}

	op.Complete(
		zap.Int("files", len(plan.Restored)),
		zap.String("safetyBackup", safetyID))
	return plan, nil
}

// contentMatches reports whether the live file and the backup copy hold
// identical bytes. A missing live file counts as diverged: something
// deleted it after the backup.
func contentMatches(livePath, backupPath string) (bool, error) {
	live, err := os.ReadFile(livePath)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read %s: %w", livePath, err)
	}
	stored, err := os.ReadFile(backupPath)
	if err != nil {
		return false, fmt.Errorf("read backup copy %s: %w", backupPath, err)
	}
	return bytes.Equal(live, stored), nil
}
