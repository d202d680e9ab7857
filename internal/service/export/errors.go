package export

import (
	"errors"
	"fmt"
)

var (
	ErrNotConfigured = errors.New("export endpoint is not configured")
	ErrQueueFull     = errors.New("export queue is full")
	ErrQueueStopped  = errors.New("export queue is stopped")
)

// RemoteError is a rejection reported by the spreadsheet endpoint.
type RemoteError struct {
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("spreadsheet endpoint returned %d: %s", e.StatusCode, e.Message)
	}
	return "spreadsheet endpoint rejected the record: " + e.Message
}
