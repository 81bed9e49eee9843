// Package validation validates custom attribute answers of assessments.
//
// Validation mutates the attribute's Validation block in place and is
// synchronous: after Validate returns, Validation reflects the current value
// and attachments. Dropdown options may require supplemental info (comment,
// evidence, URL), encoded as a per-option bitmask on the attribute definition.
package validation

import (
	"strings"

	"github.com/harrison/bulkcomplete/internal/models"
)

// TextExtractor turns rich text into plain text.
type TextExtractor interface {
	Extract(s string) string
}

// Validator validates attributes.
type Validator struct {
	plain TextExtractor
}

// NewValidator creates a Validator. A nil extractor falls back to the goldmark based one.
func NewValidator(plain TextExtractor) *Validator {
	if plain == nil {
		plain = NewPlainTextExtractor()
	}
	return &Validator{plain: plain}
}

// Validate recomputes the validation state of a single attribute.
// Non-applicable attributes are left untouched.
func (v *Validator) Validate(a *models.Attribute) {
	if !a.IsApplicable {
		return
	}

	switch a.Type {
	case models.TypeDropdown:
		v.validateDropdown(a)
	case models.TypeInput, models.TypeText, models.TypeDate, models.TypeCheckbox,
		models.TypeMultiselect, models.TypePerson:
		v.validateDefault(a)
	}
}

// validateDefault only re-derives Valid for mandatory attributes.
func (v *Validator) validateDefault(a *models.Attribute) {
	if !a.Validation.Mandatory {
		return
	}
	a.Validation.Valid = v.hasAnswer(a)
}

func (v *Validator) hasAnswer(a *models.Attribute) bool {
	switch a.Type {
	case models.TypeText:
		return v.plain.Extract(a.Value.Text()) != ""
	case models.TypePerson:
		return len(a.Value.People()) > 0
	case models.TypeInput, models.TypeDate, models.TypeCheckbox,
		models.TypeDropdown, models.TypeMultiselect:
		return a.Value.Truthy()
	default:
		return false
	}
}

func (v *Validator) validateDropdown(a *models.Attribute) {
	info := RequiredInfoFor(a)
	a.Validation.RequiresAttachment = info.Any()

	if info.Any() {
		if a.Attachments != nil {
			applyRequiredInfo(a, info)
			return
		}
		a.Attachments = models.NewEmptyAttachments()
		a.Validation.Valid = false
		a.Validation.HasMissingInfo = true
		return
	}

	a.Attachments = nil
	if a.Validation.Mandatory {
		a.Validation.Valid = a.Value.Text() != ""
	} else {
		a.Validation.Valid = true
	}
	a.Validation.HasMissingInfo = false
}

// ValidateRequiredInfo re-checks only the supplemental info of a dropdown
// attribute against its current selection. The selected option is assumed unchanged.
func (v *Validator) ValidateRequiredInfo(a *models.Attribute) {
	applyRequiredInfo(a, RequiredInfoFor(a))
}

func applyRequiredInfo(a *models.Attribute, info RequiredInfo) {
	att := a.Attachments
	if att == nil {
		att = &models.Attachments{}
	}

	hasValidComment := !info.Comment || att.Comment != nil
	hasValidURLs := !info.URL || len(att.URLs) > 0
	hasValidFiles := !info.Attachment || len(att.Files) > 0

	valid := hasValidComment && hasValidURLs && hasValidFiles
	a.Validation.Valid = valid
	a.Validation.HasMissingInfo = !valid
}

// IsRowReady reports whether every applicable attribute of the row is valid.
// A row without applicable attributes is ready.
func IsRowReady(attrs []models.Attribute) bool {
	for i := range attrs {
		if !attrs[i].IsApplicable {
			continue
		}
		if !attrs[i].Validation.Valid {
			return false
		}
	}
	return true
}

// MissingInfo describes what still blocks an attribute, for display.
func MissingInfo(a *models.Attribute) string {
	if !a.IsApplicable || a.Validation.Valid {
		return ""
	}
	if !a.Validation.HasMissingInfo {
		return "answer required"
	}

	info := RequiredInfoFor(a)
	var missing []string
	att := a.Attachments
	if info.Comment && (att == nil || att.Comment == nil) {
		missing = append(missing, "comment")
	}
	if info.Attachment && (att == nil || len(att.Files) == 0) {
		missing = append(missing, "evidence")
	}
	if info.URL && (att == nil || len(att.URLs) == 0) {
		missing = append(missing, "url")
	}
	if len(missing) == 0 {
		return "required info missing"
	}
	return "missing " + strings.Join(missing, ", ")
}
