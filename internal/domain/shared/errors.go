package shared

import (
	"errors"
	"fmt"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Error codes of the synchronization engine
const (
	CodeValidation    = "VALIDATION_ERROR"
	CodeMissingParent = "MISSING_PARENT"
	CodeDuplicateKey  = "DUPLICATE_KEY"
	CodeRangeOverlap  = "RANGE_OVERLAP"
	CodeConsistency   = "CONSISTENCY_ERROR"
	CodePersistence   = "PERSISTENCE_ERROR"
	CodeTransient     = "TRANSIENT_ERROR"
	CodeNotFound      = "NOT_FOUND"
)

// Common domain errors
var (
	ErrNotFound = NewDomainError(CodeNotFound, "Resource not found")
)

// NewValidationError creates a field/shape-level validation error
func NewValidationError(format string, args ...any) *DomainError {
	return NewDomainError(CodeValidation, fmt.Sprintf(format, args...))
}

// NewMissingParentError reports a child referencing a parent that does not exist
func NewMissingParentError(entity string, key Key) *DomainError {
	return NewDomainError(CodeMissingParent, fmt.Sprintf("referenced %s (%s) does not exist", entity, key))
}

// NewDuplicateKeyError reports a key collision within one batch or aggregate
func NewDuplicateKeyError(entity string, key Key) *DomainError {
	return NewDomainError(CodeDuplicateKey, fmt.Sprintf("duplicate %s key (%s)", entity, key))
}

// NewRangeOverlapError reports a date-range conflict
func NewRangeOverlapError(message string) *DomainError {
	return NewDomainError(CodeRangeOverlap, message)
}

// NewConsistencyError reports an aggregate-level consistency violation
func NewConsistencyError(format string, args ...any) *DomainError {
	return NewDomainError(CodeConsistency, fmt.Sprintf(format, args...))
}

// NewPersistenceError wraps an opaque storage failure. The underlying cause
// is kept out of the message; callers log it through their own channel.
func NewPersistenceError() *DomainError {
	return NewDomainError(CodePersistence, "storage operation failed")
}

// NewTransientError marks a storage failure that is safe to retry
func NewTransientError() *DomainError {
	return NewDomainError(CodeTransient, "transient storage failure")
}

// IsCode reports whether err is a DomainError carrying the given code
func IsCode(err error, code string) bool {
	var de *DomainError
	return errors.As(err, &de) && de.Code == code
}

// ItemError ties a domain error to the batch item that caused it.
// Item positions are 1-based in messages, matching how ERP operators count
// records in their export files.
type ItemError struct {
	Index int          `json:"index"`
	Err   *DomainError `json:"error"`
}

// Error implements the error interface
func (e *ItemError) Error() string {
	return fmt.Sprintf("item %d: %s", e.Index+1, e.Err.Message)
}

// BatchError aggregates every violation found in one batch or aggregate.
// It is returned instead of the first error so the caller can fix the whole
// payload in one round trip.
type BatchError struct {
	Items []*ItemError
}

// Error implements the error interface
func (e *BatchError) Error() string {
	if len(e.Items) == 1 {
		return e.Items[0].Error()
	}
	return fmt.Sprintf("%d items failed validation", len(e.Items))
}

// Messages returns one human-readable message per failing item, in batch order
func (e *BatchError) Messages() []string {
	msgs := make([]string, 0, len(e.Items))
	for _, item := range e.Items {
		msgs = append(msgs, item.Error())
	}
	return msgs
}

// Add appends a violation for the item at the given index
func (e *BatchError) Add(index int, err *DomainError) {
	e.Items = append(e.Items, &ItemError{Index: index, Err: err})
}

// HasErrors reports whether any violation was collected
func (e *BatchError) HasErrors() bool {
	return len(e.Items) > 0
}
