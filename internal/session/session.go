// Package session provides advisory bookkeeping for an editing session:
// which files an operation touched and in what order. A Session is an
// explicit value owned by the caller and threaded through calls; it is
// not a process-wide singleton and carries no locking semantics.
package session

import (
	"time"

	"github.com/google/uuid"
)

// Change records one file mutation within a session
type Change struct {
	Path string    `json:"path"`
	Op   string    `json:"op"`
	At   time.Time `json:"at"`
}

// Session tracks the files an editor or operation has touched
type Session struct {
	ID        string    `json:"id"`
	StartedAt time.Time `json:"startedAt"`
	Changes   []Change  `json:"changes"`
}

// New creates a session with a fresh id
func New() *Session {
	return &Session{
		ID:        uuid.NewString(),
		StartedAt: time.Now(),
	}
}

// Record appends a change entry. Safe to call on a nil session.
func (s *Session) Record(path, op string) {
	if s == nil {
		return
	}
	s.Changes = append(s.Changes, Change{Path: path, Op: op, At: time.Now()})
}

// TouchedFiles returns the distinct file paths in first-touch order
func (s *Session) TouchedFiles() []string {
	if s == nil {
		return nil
	}
	seen := map[string]bool{}
	var out []string
	for _, c := range s.Changes {
		if !seen[c.Path] {
			seen[c.Path] = true
			out = append(out, c.Path)
		}
	}
	return out
}
