package patient

import (
	"errors"
	"fmt"
)

var (
	ErrDocumentRequired = errors.New("document required")
	ErrPatientNotFound  = errors.New("patient not found")
	ErrVisitNotFound    = errors.New("visit not found for this patient")
)

// ValidationError reports a submission rejected before storage is touched.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string { return fmt.Sprintf("invalid %s: %v", e.Field, e.Err) }
func (e *ValidationError) Unwrap() error { return e.Err }
