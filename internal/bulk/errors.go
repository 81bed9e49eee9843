package bulk

import (
	"errors"
	"fmt"
)

var (
	// ErrAttributeIndex is returned when an attribute index is outside the row.
	ErrAttributeIndex = errors.New("attribute index out of range")
	// ErrUnknownAttribute is returned when no attribute of the row has the given id.
	ErrUnknownAttribute = errors.New("attribute not found in row")
	// ErrNoRequiredInfo is returned when the attribute's selection requires no supplemental info.
	ErrNoRequiredInfo = errors.New("attribute does not require supplemental info")
	// ErrLoadInProgress is returned when a load is started while another one runs.
	ErrLoadInProgress = errors.New("assessment list is already loading")
	// ErrNoTaskID is returned when the backend accepted a completion without starting a task.
	ErrNoTaskID = errors.New("backend did not return a background task id")
	// ErrUnknownAssessment is returned when no loaded row matches an assessment reference.
	ErrUnknownAssessment = errors.New("assessment not loaded")
)

// RowError ties an error to the assessment row it happened in.
type RowError struct {
	Slug string
	Err  error
}

// Error implements the error interface for RowError.
func (e *RowError) Error() string {
	return fmt.Sprintf("assessment %s: %v", e.Slug, e.Err)
}

// Unwrap returns the underlying error for error wrapping support.
func (e *RowError) Unwrap() error {
	return e.Err
}
