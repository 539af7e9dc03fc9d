package types

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrInvalidInput is returned before any store call when a required argument is missing.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound is returned when the referenced record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrNoFieldsProvided is returned by updates that carry no modifiable field.
	ErrNoFieldsProvided = fmt.Errorf("%w: no fields to update", ErrInvalidInput)
	// ErrAlreadyExists surfaces an id collision on insert.
	ErrAlreadyExists = errors.New("record already exists")

	// ErrStorageUnavailable covers transport, availability and capacity failures of the store.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrStorageRejected is returned when the store refused a request as malformed.
	ErrStorageRejected = errors.New("storage rejected request")
	// ErrOperationFailed hides the store failure cause from service callers.
	ErrOperationFailed = errors.New("operation failed")

	ErrInvalidBackend = errors.New("invalid backend")
)

func Err(typedError error, innerErr error, msgTemplate string, args ...any) error {
	if msgTemplate == "" {
		return errors.Join(typedError, innerErr)
	} else {
		return errors.Join(typedError, innerErr, fmt.Errorf(msgTemplate, args...))
	}
}

// NotFoundError names the record that could not be found.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("client with id %s not found", e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// NotFound returns a *NotFoundError for id.
func NotFound(id string) error { return &NotFoundError{ID: id} }

// BatchError reports the inputs of a batch insert that were not written.
// Inputs not listed in Failed were inserted.
type BatchError struct {
	Total  int
	Failed map[int]error
}

func (e *BatchError) Error() string {
	idx := e.FailedIndexes()
	parts := make([]string, 0, len(idx))
	for _, i := range idx {
		parts = append(parts, fmt.Sprintf("#%d: %v", i, e.Failed[i]))
	}
	return fmt.Sprintf("batch insert is not atomic: %d of %d inputs failed (%s)",
		len(e.Failed), e.Total, strings.Join(parts, "; "))
}

// FailedIndexes returns the failed input positions in ascending order.
func (e *BatchError) FailedIndexes() []int {
	idx := make([]int, 0, len(e.Failed))
	for i := range e.Failed {
		idx = append(idx, i)
	}
	sort.Ints(idx)
	return idx
}

func (e *BatchError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failed))
	for _, i := range e.FailedIndexes() {
		errs = append(errs, e.Failed[i])
	}
	return errs
}
