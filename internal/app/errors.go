package app

import (
	"errors"
	"fmt"
)

// Editor errors.
var (
	// ErrDocumentNotFound indicates a document is not open.
	ErrDocumentNotFound = errors.New("document not found")

	// ErrUnknownCommand indicates no handler is registered for a command.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrCancelled indicates a pre-command hook cancelled a command.
	ErrCancelled = errors.New("command cancelled")

	// ErrNoTag indicates no tag pair surrounds the caret.
	ErrNoTag = errors.New("no tag at caret")

	// ErrNoAbbreviation indicates text that is not in an abbreviation
	// context.
	ErrNoAbbreviation = errors.New("not an abbreviation context")

	// ErrNoCompletion indicates a commit without a matching completion.
	ErrNoCompletion = errors.New("no completion to commit")

	// ErrInvalidScript indicates a malformed replay script.
	ErrInvalidScript = errors.New("invalid script")

	// ErrInvalidArgument indicates a command argument of the wrong type.
	ErrInvalidArgument = errors.New("invalid argument")
)

// OperationError represents an error that occurred during a specific operation.
type OperationError struct {
	Op     string // Operation name, such as a command name
	Target string // Target of the operation, such as a document name
	Err    error  // Underlying error
}

// NewOperationError creates a new OperationError.
func NewOperationError(op, target string, err error) *OperationError {
	return &OperationError{
		Op:     op,
		Target: target,
		Err:    err,
	}
}

func (e *OperationError) Error() string {
	if e == nil {
		return ""
	}

	msg := e.Op
	if e.Target != "" {
		msg = fmt.Sprintf("%s %s", e.Op, e.Target)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *OperationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
