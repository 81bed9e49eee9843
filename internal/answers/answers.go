// Package answers reads answers files and applies them to loaded assessments.
//
// An answers file maps an assessment (slug or numeric id) to attribute titles
// and the value to set, optionally with the comment, URLs and evidence files a
// dropdown option requires. YAML and Markdown documents are supported; both
// decode into the same Document.
package answers

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/harrison/bulkcomplete/internal/models"
)

var (
	// ErrUnsupportedFormat is returned for files that are neither YAML nor Markdown.
	ErrUnsupportedFormat = errors.New("unsupported answers file format")
	// ErrInvalidValue is returned when a value cannot be converted to the attribute type.
	ErrInvalidValue = errors.New("invalid value")
	// ErrUnknownOption is returned when a dropdown or multiselect value is not an option.
	ErrUnknownOption = errors.New("not one of the attribute options")
	// ErrNotApplicable is returned when an answer targets a non-applicable attribute.
	ErrNotApplicable = errors.New("attribute is not applicable")
)

// Document is a parsed answers file. Entries keep file order.
type Document struct {
	Entries []Entry
}

// Entry holds the answers for one assessment.
type Entry struct {
	Key     string // slug or numeric id
	Answers []Answer
}

// Answer is the input for one attribute. Values are kept as text and
// converted once the attribute type is known.
type Answer struct {
	Attribute string
	Values    []string
	HasValue  bool
	Comment   *string
	URLs      []string
	Files     []models.File
}

// HasInfo reports whether the answer carries supplemental info.
func (a Answer) HasInfo() bool {
	return a.Comment != nil || a.URLs != nil || a.Files != nil
}

// AnswerError ties a failure to an entry of the answers file.
type AnswerError struct {
	Key       string
	Attribute string
	Err       error
}

// Error implements the error interface for AnswerError.
func (e *AnswerError) Error() string {
	if e.Attribute == "" {
		return fmt.Sprintf("%s: %v", e.Key, e.Err)
	}
	return fmt.Sprintf("%s / %s: %v", e.Key, e.Attribute, e.Err)
}

// Unwrap returns the underlying error for error wrapping support.
func (e *AnswerError) Unwrap() error {
	return e.Err
}

// Load reads path and parses it according to its extension.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read answers file: %w", err)
	}

	var doc *Document
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		doc, err = ParseYAML(data)
	case ".md", ".markdown":
		doc, err = ParseMarkdown(data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Base(path))
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return doc, nil
}
