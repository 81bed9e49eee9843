package validation

import (
	"fmt"
	"strings"

	"github.com/harrison/bulkcomplete/internal/models"
)

// ValidationError represents one attribute that keeps an assessment from being ready
type ValidationError struct {
	AssessmentID int64
	Slug         string
	Attribute    string
	Message      string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("assessment %s: %s - %s", e.Slug, e.Attribute, e.Message)
}

// ValidationResult contains all blockers found across rows
type ValidationResult struct {
	Errors []ValidationError
}

// Error returns aggregated error message
func (r *ValidationResult) Error() string {
	if len(r.Errors) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d attribute(s) still need answers:\n", len(r.Errors)))
	for _, err := range r.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// HasErrors returns true if any row is blocked
func (r *ValidationResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// ForAssessment returns the blockers of a single assessment.
func (r *ValidationResult) ForAssessment(id int64) []ValidationError {
	var out []ValidationError
	for _, e := range r.Errors {
		if e.AssessmentID == id {
			out = append(out, e)
		}
	}
	return out
}

// Report collects every invalid applicable attribute of the given rows.
// It reads the validation state as is and does not re-validate.
func Report(rows []models.Row) *ValidationResult {
	result := &ValidationResult{}
	for _, row := range rows {
		for i := range row.Attributes {
			attr := &row.Attributes[i]
			msg := MissingInfo(attr)
			if msg == "" {
				continue
			}
			result.Errors = append(result.Errors, ValidationError{
				AssessmentID: row.AssessmentID,
				Slug:         row.Slug,
				Attribute:    attr.Title,
				Message:      msg,
			})
		}
	}
	return result
}
