package store

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no aggregate has been persisted yet. It is
	// distinct from an empty aggregate.
	ErrNotFound = errors.New("patient data not found")

	// ErrUnavailable marks a backend that could not be opened.
	ErrUnavailable = errors.New("storage unavailable")
)

// StorageError reports a failed backend operation. Only a failed open
// matches ErrUnavailable; the other ops are transaction failures.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return fmt.Sprintf("storage %s failed: %v", e.Op, e.Err) }
func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool {
	return target == ErrUnavailable && e.Op == opOpen
}

const opOpen = "open"

func storageErr(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}
