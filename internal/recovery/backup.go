// Package recovery protects mutations of the token corpus: snapshot
// backups before every destructive operation, rollback to a prior
// snapshot, and bounded automatic repair of common corruption.
package recovery

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tokensmith/internal/modular"
	"tokensmith/internal/oplog"
)

const manifestName = "manifest.json"

// ErrBackupNotFound indicates no backup matches the requested id
var ErrBackupNotFound = errors.New("backup not found")

// BackupNotFoundError reports a lookup that matched no stored backup
type BackupNotFoundError struct {
	ID string
}

func (e *BackupNotFoundError) Error() string {
	return fmt.Sprintf("no backup matches %q\nSuggestion: run backup list to see the stored backups", e.ID)
}

func (e *BackupNotFoundError) Unwrap() error {
	return ErrBackupNotFound
}

// FileEntry pairs a protected file with its stored copy
type FileEntry struct {
	OriginalPath string `json:"originalPath"`
	BackupPath   string `json:"backupPath"`
}

// Manifest describes one backup: when it was taken, for which
// operation, and where each file's copy lives
type Manifest struct {
	ID        string      `json:"id"`
	Timestamp time.Time   `json:"timestamp"`
	Operation string      `json:"operation"`
	Files     []FileEntry `json:"files"`
}

// Manager stores and restores backups under a root directory, keeping
// at most Keep of them
type Manager struct {
	Root string
	Keep int
	Log  *oplog.Logger
}

// NewManager creates a backup manager rooted at dir
func NewManager(dir string, keep int) *Manager {
	return &Manager{Root: dir, Keep: keep}
}

func (m *Manager) log() *oplog.Logger {
	if m.Log != nil {
		return m.Log
	}
	return oplog.Nop()
}

// Create snapshots the given paths into a new backup and returns its
// id. Directories are walked and every file inside is recorded as its
// own entry. Paths that do not exist are skipped; files under the
// backup root itself are never included. Any copy failure aborts the
// whole backup so a half-taken snapshot is never trusted.
func (m *Manager) Create(operation string, paths []string) (string, error) {
	id := uuid.NewString()
	dir := filepath.Join(m.Root, id)

	if err := modular.CheckPathLength(dir); err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create backup directory: %w", err)
	}

	manifest := Manifest{
		ID:        id,
		Timestamp: time.Now().UTC(),
		Operation: operation,
	}

	root, _ := filepath.Abs(m.Root)
	underRoot := func(path string) bool {
		abs, err := filepath.Abs(path)
		return err == nil && root != "" && strings.HasPrefix(abs, root+string(filepath.Separator))
	}

	n := 0
	addFile := func(path string) error {
		if underRoot(path) {
			return nil
		}
		copyName := fmt.Sprintf("%03d-%s", n, filepath.Base(path))
		copyPath := filepath.Join(dir, copyName)
		if err := modular.CheckPathLength(copyPath); err != nil {
			return err
		}
		if err := copyFile(path, copyPath); err != nil {
			return fmt.Errorf("copy %s into backup: %w", path, err)
		}
		manifest.Files = append(manifest.Files, FileEntry{
			OriginalPath: path,
			BackupPath:   copyPath,
		})
		n++
		return nil
	}

	for _, path := range paths {
		if underRoot(path) {
			continue
		}
		info, err := os.Stat(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			os.RemoveAll(dir)
			return "", fmt.Errorf("stat %s: %w", path, err)
		}
		if info.IsDir() {
			walkErr := filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if d.IsDir() {
					return nil
				}
				return addFile(p)
			})
			if walkErr != nil {
				os.RemoveAll(dir)
				return "", fmt.Errorf("back up directory %s: %w", path, walkErr)
			}
			continue
		}
		if err := addFile(path); err != nil {
			os.RemoveAll(dir)
			return "", err
		}
	}

	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		os.RemoveAll(dir)
		return "", fmt.Errorf("encode manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, manifestName), append(data, '\n'), 0o644); err != nil {
		os.RemoveAll(dir)
		return "", fmt.Errorf("write manifest: %w", err)
	}

	m.log().Event("backup created",
		zap.String("id", id),
		zap.String("operation", operation),
		zap.Int("files", len(manifest.Files)))

	if err := m.prune(); err != nil {
		m.log().Warn("prune old backups", zap.Error(err))
	}

	return id, nil
}

// List returns the stored backups, newest first
func (m *Manager) List() ([]Manifest, error) {
	entries, err := os.ReadDir(m.Root)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read backup root: %w", err)
	}

	var manifests []Manifest
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		manifest, err := m.readManifest(entry.Name())
		if err != nil {
			m.log().Warn("skip unreadable backup", zap.String("id", entry.Name()), zap.Error(err))
			continue
		}
		manifests = append(manifests, manifest)
	}

	sort.Slice(manifests, func(a, b int) bool {
		return manifests[a].Timestamp.After(manifests[b].Timestamp)
	})
	return manifests, nil
}

// Get finds a backup by full id or unique id prefix
func (m *Manager) Get(id string) (Manifest, error) {
	manifests, err := m.List()
	if err != nil {
		return Manifest{}, err
	}

	var matches []Manifest
	for _, manifest := range manifests {
		if manifest.ID == id {
			return manifest, nil
		}
		if strings.HasPrefix(manifest.ID, id) {
			matches = append(matches, manifest)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return Manifest{}, &BackupNotFoundError{ID: id}
	default:
		return Manifest{}, fmt.Errorf("backup id %q is ambiguous: %d backups match", id, len(matches))
	}
}

func (m *Manager) readManifest(id string) (Manifest, error) {
	data, err := os.ReadFile(filepath.Join(m.Root, id, manifestName))
	if err != nil {
		return Manifest{}, err
	}
	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return Manifest{}, err
	}
	return manifest, nil
}

// prune removes the oldest backups beyond the retention limit
func (m *Manager) prune() error {
	if m.Keep <= 0 {
		return nil
	}
	manifests, err := m.List()
	if err != nil {
		return err
	}
	for _, old := range manifests[min(m.Keep, len(manifests)):] {
		if err := os.RemoveAll(filepath.Join(m.Root, old.ID)); err != nil {
			return err
		}
		m.log().Event("backup pruned", zap.String("id", old.ID))
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
