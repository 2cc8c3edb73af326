package structure

import (
	"errors"
	"fmt"
)

// ErrStructuringInProgress is returned when a structuring run is requested for
// a document that already has one in flight.
var ErrStructuringInProgress = errors.New("structuring already in progress for this document")

// NotFoundError reports a missing document or node.
type NotFoundError struct {
	Resource string
	ID       int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

// FormatError reports input that cannot be structured: markup that does not
// parse, a rendition format the engine does not understand, or a subtree
// request whose target is not a header node.
type FormatError struct {
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return e.Reason
}

func (e *FormatError) Unwrap() error { return e.Err }

// StorageError reports a failed persistence batch. The batch is rolled back
// before this is returned, so nothing partial persists.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
