package contract

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrViolation is matched by every *ViolationError.
	ErrViolation = errors.New("contract: payload violates schema")
	// ErrUnknownOperation reports a method/path pair absent from the document.
	ErrUnknownOperation = errors.New("contract: unknown operation")
)

// Issue describes one schema failure. Path is a dotted property path such as
// "departure_advice.leave_at_local"; empty means the document root.
type Issue struct {
	Path    string
	Message string
}

// ViolationError lists every issue found in one payload.
type ViolationError struct {
	Operation string
	Issues    []Issue
}

func (e *ViolationError) Error() string {
	if e == nil {
		return ""
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		if issue.Path == "" {
			parts = append(parts, issue.Message)
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", issue.Path, issue.Message))
	}
	return fmt.Sprintf("contract: %s: %s", e.Operation, strings.Join(parts, "; "))
}

// Is reports whether target is ErrViolation.
func (e *ViolationError) Is(target error) bool {
	return target == ErrViolation
}
