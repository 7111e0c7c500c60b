package core

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound         = errors.New("tournament not found")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrData             = errors.New("malformed stored data")
)

// ValidationError carries every problem found in a rejected draft.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Problems, "; ")
}

// NewValidationError returns nil when there is nothing to report.
func NewValidationError(problems ...string) error {
	if len(problems) == 0 {
		return nil
	}
	return &ValidationError{Problems: problems}
}

// StoreError wraps a collaborator failure. Kind is ErrStoreUnavailable or ErrData.
type StoreError struct {
	Op   string
	Kind error
	Err  error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func (e *StoreError) Is(target error) bool { return target == e.Kind }

// Unavailable reports a store that could not be reached or failed to execute op.
func Unavailable(op string, err error) error {
	return &StoreError{Op: op, Kind: ErrStoreUnavailable, Err: err}
}

// Malformed reports a stored row that could not be decoded.
func Malformed(op string, err error) error {
	return &StoreError{Op: op, Kind: ErrData, Err: err}
}
