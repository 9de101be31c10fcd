package tokens

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidNode indicates a node is neither a valid token shape nor a group
var ErrInvalidNode = errors.New("invalid token node")

// InvalidNodeError reports a node that could not be classified as a Token
// or a Group during normalization
type InvalidNodeError struct {
	Path   []string
	Reason string
}

func (e *InvalidNodeError) Error() string {
	return fmt.Sprintf("invalid node at %q: %s\nSuggestion: Token leaves must be objects with a $value field; groups must be objects",
		strings.Join(e.Path, "."), e.Reason)
}

func (e *InvalidNodeError) Unwrap() error {
	return ErrInvalidNode
}

// NewInvalidNodeError creates a new invalid node error
func NewInvalidNodeError(path []string, reason string) error {
	return &InvalidNodeError{Path: path, Reason: reason}
}
