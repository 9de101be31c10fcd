package modular

import (
	"errors"
	"fmt"
)

// Sentinel errors for error type checking
var (
	// ErrMissingRequiredFile indicates a required modular file is absent
	ErrMissingRequiredFile = errors.New("missing required file")

	// ErrInvalidJSON indicates a file failed to parse as JSON
	ErrInvalidJSON = errors.New("invalid JSON")

	// ErrPathTooLong indicates a path exceeds the platform limit
	ErrPathTooLong = errors.New("path too long")

	// ErrPermissionDenied indicates the filesystem refused access
	ErrPermissionDenied = errors.New("permission denied")

	// ErrStructuralMismatch indicates tokenSetOrder and set files disagree
	ErrStructuralMismatch = errors.New("structural mismatch")

	// ErrThemeMisconfiguration indicates a theme selects unknown token sets
	ErrThemeMisconfiguration = errors.New("theme misconfiguration")
)

// MissingRequiredFileError reports an absent required file
type MissingRequiredFileError struct {
	Path string
}

func (e *MissingRequiredFileError) Error() string {
	return fmt.Sprintf("missing required file %s\nSuggestion: run recover to recreate it with a minimal valid default", e.Path)
}

func (e *MissingRequiredFileError) Unwrap() error {
	return ErrMissingRequiredFile
}

// NewMissingRequiredFileError creates a new missing required file error
func NewMissingRequiredFileError(path string) error {
	return &MissingRequiredFileError{Path: path}
}

// InvalidJSONError reports a malformed JSON file, with the byte offset of
// the fault when the decoder provides one
type InvalidJSONError struct {
	Path   string
	Offset int64
	Reason string
}

func (e *InvalidJSONError) Error() string {
	msg := fmt.Sprintf("invalid JSON in %s", e.Path)
	if e.Offset > 0 {
		msg += fmt.Sprintf(" at byte offset %d", e.Offset)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg + "\nSuggestion: fix the syntax or run recover to attempt automatic repair"
}

func (e *InvalidJSONError) Unwrap() error {
	return ErrInvalidJSON
}

// NewInvalidJSONError creates a new invalid JSON error
func NewInvalidJSONError(path string, offset int64, reason string) error {
	return &InvalidJSONError{Path: path, Offset: offset, Reason: reason}
}

// PathTooLongError reports a path exceeding the platform limit
type PathTooLongError struct {
	Path  string
	Limit int
}

func (e *PathTooLongError) Error() string {
	return fmt.Sprintf("path exceeds the platform limit of %d characters: %s\nSuggestion: shorten the token set name or move the workspace closer to the filesystem root", e.Limit, e.Path)
}

func (e *PathTooLongError) Unwrap() error {
	return ErrPathTooLong
}

// NewPathTooLongError creates a new path too long error
func NewPathTooLongError(path string, limit int) error {
	return &PathTooLongError{Path: path, Limit: limit}
}

// PermissionDeniedError reports a filesystem permission failure
type PermissionDeniedError struct {
	Path string
	Op   string
}

func (e *PermissionDeniedError) Error() string {
	return fmt.Sprintf("permission denied while trying to %s %s\nSuggestion: check file ownership and mode bits", e.Op, e.Path)
}

func (e *PermissionDeniedError) Unwrap() error {
	return ErrPermissionDenied
}

// NewPermissionDeniedError creates a new permission denied error
func NewPermissionDeniedError(path, op string) error {
	return &PermissionDeniedError{Path: path, Op: op}
}

// StructuralMismatchError reports a set listed in tokenSetOrder without a
// file, or the reverse
type StructuralMismatchError struct {
	SetName string
	Reason  string
}

func (e *StructuralMismatchError) Error() string {
	return fmt.Sprintf("structural mismatch for token set %q: %s\nSuggestion: align tokenSetOrder in $metadata.json with the set files on disk", e.SetName, e.Reason)
}

func (e *StructuralMismatchError) Unwrap() error {
	return ErrStructuralMismatch
}

// NewStructuralMismatchError creates a new structural mismatch error
func NewStructuralMismatchError(setName, reason string) error {
	return &StructuralMismatchError{SetName: setName, Reason: reason}
}

// ThemeMisconfigurationError reports a theme referencing unknown sets
type ThemeMisconfigurationError struct {
	Theme   string
	SetName string
}

func (e *ThemeMisconfigurationError) Error() string {
	return fmt.Sprintf("theme %q selects token set %q which does not exist\nSuggestion: remove the selection or create the set file and add it to tokenSetOrder", e.Theme, e.SetName)
}

func (e *ThemeMisconfigurationError) Unwrap() error {
	return ErrThemeMisconfiguration
}

// NewThemeMisconfigurationError creates a new theme misconfiguration error
func NewThemeMisconfigurationError(theme, setName string) error {
	return &ThemeMisconfigurationError{Theme: theme, SetName: setName}
}
