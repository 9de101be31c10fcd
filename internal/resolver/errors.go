package resolver

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for error type checking
var (
	// ErrUnresolvedReference indicates a reference points to no known token
	ErrUnresolvedReference = errors.New("unresolved reference")

	// ErrCircularReference indicates a reference chain re-enters itself
	ErrCircularReference = errors.New("circular reference detected")
)

// UnresolvedReferenceError reports a reference that matched no token path,
// including after the alternative-format rewrites were tried
type UnresolvedReferenceError struct {
	Reference   string
	Suggestions []string
}

func (e *UnresolvedReferenceError) Error() string {
	msg := fmt.Sprintf("unresolved reference %s: no token at that path", e.Reference)
	if len(e.Suggestions) > 0 {
		msg += "\nSuggestion: did you mean " + strings.Join(e.Suggestions, " or ") + "?"
	} else {
		msg += "\nSuggestion: check the token path against the set files"
	}
	return msg
}

func (e *UnresolvedReferenceError) Unwrap() error {
	return ErrUnresolvedReference
}

// NewUnresolvedReferenceError creates a new unresolved reference error
func NewUnresolvedReferenceError(reference string, suggestions []string) error {
	return &UnresolvedReferenceError{Reference: reference, Suggestions: suggestions}
}

// CircularReferenceError reports a reference cycle with its full chain
type CircularReferenceError struct {
	ReferenceChain []string
}

func (e *CircularReferenceError) Error() string {
	chain := strings.Join(e.ReferenceChain, " -> ")
	return fmt.Sprintf("circular reference detected: %s\nSuggestion: break the dependency chain so every reference reaches a concrete value", chain)
}

func (e *CircularReferenceError) Unwrap() error {
	return ErrCircularReference
}

// NewCircularReferenceError creates a new circular reference error
func NewCircularReferenceError(chain []string) error {
	return &CircularReferenceError{ReferenceChain: chain}
}
