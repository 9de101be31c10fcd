// Package transform is the transformation engine: the sole authority for
// converting between the canonical single-file document and the modular
// multi-file tree. Every operation loads, computes, and writes fresh
// state; nothing is cached across operations.
package transform

import (
	"tokensmith/internal/oplog"
	"tokensmith/internal/session"
)

// BackupFunc is called with the operation name and the paths it is about
// to mutate, before any write happens. Wiring is the caller's concern;
// a nil hook means no backups are taken.
type BackupFunc func(op string, paths []string) (backupID string, err error)

// Policy controls how canonical top-level groups are assigned to token
// sets during a split. The assignment is deterministic and explicit; the
// residual set guarantees no group is ever dropped.
type Policy struct {
	// SetOrder is the canonical priority list for deriving tokenSetOrder
	SetOrder []string

	// GroupMapping maps a canonical group name to its owning set
	GroupMapping map[string]string

	// ResidualSet receives groups matched by neither GroupMapping nor
	// SetOrder
	ResidualSet string
}

// DefaultPolicy matches the common Tokens Studio layout
func DefaultPolicy() Policy {
	return Policy{
		SetOrder:     []string{"core", "global", "semantic", "brand", "components"},
		GroupMapping: map[string]string{},
		ResidualSet:  "misc",
	}
}

// Engine orchestrates split and consolidate
type Engine struct {
	Policy   Policy
	HopLimit int

	// Backup, when set, is invoked before every mutating file operation
	Backup BackupFunc

	// Log receives operation start/completion events
	Log *oplog.Logger

	// Session, when set, records every file the engine writes
	Session *session.Session

	// VerifyRoundtrip re-validates the resolved token graph after each
	// file transformation and fails the operation on drift
	VerifyRoundtrip bool
}

// New creates an engine with the given policy and defaults elsewhere
func New(policy Policy) *Engine {
	return &Engine{
		Policy:   policy,
		HopLimit: 32,
		Log:      oplog.Nop(),
	}
}

func (e *Engine) hopLimit() int {
	if e.HopLimit <= 0 {
		return 32
	}
	return e.HopLimit
}

func (e *Engine) log() *oplog.Logger {
	if e.Log == nil {
		return oplog.Nop()
	}
	return e.Log
}
