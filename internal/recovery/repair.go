package recovery

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/tidwall/jsonc"
	"go.uber.org/zap"

	"tokensmith/internal/modular"
	"tokensmith/internal/oplog"
	"tokensmith/internal/tokens"
)

// Repairer applies bounded fixes to a modular token directory. Every
// strategy is conservative: content is never discarded, and a backup of
// the affected files is taken before anything is rewritten.
type Repairer struct {
	Backups *Manager
	Log     *oplog.Logger
}

// RepairAction records one fix that was applied
type RepairAction struct {
	Path   string `json:"path"`
	Action string `json:"action"`
}

// RepairOutcome summarizes a repair pass
type RepairOutcome struct {
	Actions  []RepairAction `json:"actions"`
	BackupID string         `json:"backupId,omitempty"`

	// Unrepaired lists problems the bounded strategies could not fix
	Unrepaired []string `json:"unrepaired,omitempty"`
}

// Repair inspects dir and applies every applicable fix: rebuild a
// missing $metadata.json from the set files on disk, recreate a missing
// $themes.json as an empty list, mend malformed JSON, and fill in
// missing $type fields via normalization. Unresolved references are
// reported, never rewritten: guessing a target would silently change
// what tokens resolve to.
func (r *Repairer) Repair(dir string) (*RepairOutcome, error) {
	op := r.log().Start("repair", zap.String("dir", dir))
	outcome := &RepairOutcome{}

	targets, err := r.planTargets(dir)
	if err != nil {
		op.Fail(err)
		return nil, err
	}
	if len(targets) > 0 && r.Backups != nil {
		id, err := r.Backups.Create("repair", targets)
		if err != nil {
			op.Fail(err)
			return nil, fmt.Errorf("backup before repair: %w", err)
		}
		outcome.BackupID = id
	}

	if err := r.repairMetadata(dir, outcome); err != nil {
		op.Fail(err)
		return outcome, err
	}
	if err := r.repairThemes(dir, outcome); err != nil {
		op.Fail(err)
		return outcome, err
	}
	if err := r.repairSetFiles(dir, outcome); err != nil {
		op.Fail(err)
		return outcome, err
	}

	op.Complete(
		zap.Int("actions", len(outcome.Actions)),
		zap.Int("unrepaired", len(outcome.Unrepaired)))
	return outcome, nil
}

func (r *Repairer) log() *oplog.Logger {
	if r.Log != nil {
		return r.Log
	}
	if r.Backups != nil && r.Backups.Log != nil {
		return r.Backups.Log
	}
	return oplog.Nop()
}

// planTargets lists every file a repair pass may rewrite, for the
// pre-repair backup
func (r *Repairer) planTargets(dir string) ([]string, error) {
	files, err := modular.DiscoverSetFiles(dir)
	if err != nil {
		return nil, err
	}
	targets := []string{
		filepath.Join(dir, modular.MetadataFile),
		filepath.Join(dir, modular.ThemesFile),
	}
	for _, f := range files {
		targets = append(targets, filepath.Join(dir, f))
	}
	return targets, nil
}

// repairMetadata rebuilds $metadata.json from the set files present
// when it is missing or unreadable
func (r *Repairer) repairMetadata(dir string, outcome *RepairOutcome) error {
	path := filepath.Join(dir, modular.MetadataFile)
	if fileParses(path) {
		return nil
	}
	missing := fileMissing(path)

	files, err := modular.DiscoverSetFiles(dir)
	if err != nil {
		return err
	}
	var order []string
	for _, f := range files {
		order = append(order, modular.SetNameFromFile(f))
	}

	meta := modular.Metadata{TokenSetOrder: order}
	if err := modular.WriteJSONAtomic(path, meta); err != nil {
		return err
	}

	action := "rebuilt from the set files on disk"
	if !missing {
		action = "replaced unreadable metadata, order rebuilt from the set files on disk"
	}
	outcome.Actions = append(outcome.Actions, RepairAction{Path: path, Action: action})
	return nil
}

// repairThemes recreates a missing or unreadable $themes.json as an
// empty theme list
func (r *Repairer) repairThemes(dir string, outcome *RepairOutcome) error {
	path := filepath.Join(dir, modular.ThemesFile)
	if fileParses(path) {
		return nil
	}
	if err := modular.WriteJSONAtomic(path, []modular.Theme{}); err != nil {
		return err
	}
	outcome.Actions = append(outcome.Actions, RepairAction{Path: path, Action: "recreated as an empty theme list"})
	return nil
}

// repairSetFiles mends each set file: JSON syntax first, then token
// shape normalization
func (r *Repairer) repairSetFiles(dir string, outcome *RepairOutcome) error {
	files, err := modular.DiscoverSetFiles(dir)
	if err != nil {
		return err
	}
	for _, f := range files {
		path := filepath.Join(dir, f)
		if err := r.repairSetFile(path, outcome); err != nil {
			return err
		}
	}
	return nil
}

func (r *Repairer) repairSetFile(path string, outcome *RepairOutcome) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	var raw map[string]any
	repairedSyntax := false
	if err := json.Unmarshal(jsonc.ToJSON(data), &raw); err != nil {
		fixed, ok := mendJSON(data)
		if ok {
			ok = json.Unmarshal(fixed, &raw) == nil
		}
		if !ok {
			// too damaged to mend: fall back to an empty set so the
			// tree stays loadable, the original lives in the backup
			if err := modular.WriteJSONAtomic(path, map[string]any{}); err != nil {
				return err
			}
			outcome.Actions = append(outcome.Actions, RepairAction{
				Path:   path,
				Action: "replaced undecodable content with an empty set (original preserved in the backup)",
			})
			outcome.Unrepaired = append(outcome.Unrepaired,
				fmt.Sprintf("%s: JSON too damaged to mend, content moved to the backup", path))
			return nil
		}
		repairedSyntax = true
	}

	normalized, err := tokens.NormalizeSet(raw)
	if err != nil {
		outcome.Unrepaired = append(outcome.Unrepaired,
			fmt.Sprintf("%s: %v", path, err))
		if !repairedSyntax {
			return nil
		}
		// the syntax fix alone is still worth persisting
		normalized = raw
	}

	changed := repairedSyntax || !jsonEqual(raw, normalized)
	if !changed {
		return nil
	}
	if err := modular.WriteJSONAtomic(path, normalized); err != nil {
		return err
	}

	switch {
	case repairedSyntax:
		outcome.Actions = append(outcome.Actions, RepairAction{Path: path, Action: "mended JSON syntax"})
	default:
		outcome.Actions = append(outcome.Actions, RepairAction{Path: path, Action: "normalized token shapes"})
	}
	return nil
}

// trailing commas before a closing bracket or brace
var trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)

// mendJSON applies the bounded syntax fixes: strip comments, remove
// trailing commas, and close unbalanced brackets at the end of the
// file. Returns ok=false when the result still is not plausible JSON.
func mendJSON(data []byte) ([]byte, bool) {
	out := jsonc.ToJSON(data)
	out = trailingCommaRe.ReplaceAll(out, []byte("$1"))

	var opens []byte
	inString := false
	escaped := false
	for _, c := range out {
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{' || c == '[':
			opens = append(opens, c)
		case c == '}' || c == ']':
			if len(opens) > 0 {
				opens = opens[:len(opens)-1]
			}
		}
	}
	if inString {
		return nil, false
	}
	closers := make([]byte, 0, len(opens))
	for i := len(opens) - 1; i >= 0; i-- {
		if opens[i] == '{' {
			closers = append(closers, '}')
		} else {
			closers = append(closers, ']')
		}
	}
	out = append(bytesTrimRightSpace(out), closers...)
	return out, json.Valid(out)
}

func bytesTrimRightSpace(b []byte) []byte {
	return []byte(strings.TrimRight(string(b), " \t\r\n,"))
}

func fileParses(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	return json.Valid(jsonc.ToJSON(data))
}

func fileMissing(path string) bool {
	_, err := os.Stat(path)
	return errors.Is(err, fs.ErrNotExist)
}

func jsonEqual(a, b any) bool {
	aj, errA := json.Marshal(a)
	bj, errB := json.Marshal(b)
	return errA == nil && errB == nil && string(aj) == string(bj)
}
