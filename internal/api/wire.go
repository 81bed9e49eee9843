package api

import (
	"encoding/json"
	"fmt"

	"github.com/harrison/bulkcomplete/internal/models"
)

// searchResponse is the body returned by the bulk search endpoint.
type searchResponse struct {
	Assessments []wireAssessment `json:"assessments"`
	Attributes  []wireHeader     `json:"attributes"`
}

type wireAssessment struct {
	ID             int64           `json:"id"`
	Title          string          `json:"title"`
	Status         string          `json:"status"`
	Slug           string          `json:"slug"`
	AssessmentType string          `json:"assessment_type"`
	Attributes     []wireAttribute `json:"attributes"`
}

type wireAttribute struct {
	ID                   *int64           `json:"id"`
	Title                string           `json:"title"`
	Type                 string           `json:"type"`
	Value                json.RawMessage  `json:"value"`
	DefaultValue         json.RawMessage  `json:"default_value"`
	Mandatory            bool             `json:"mandatory"`
	IsApplicable         *bool            `json:"is_applicable"`
	MultiChoiceOptions   string           `json:"multi_choice_options"`
	MultiChoiceMandatory string           `json:"multi_choice_mandatory"`
	Attachments          *wireAttachments `json:"attachments"`
}

type wireAttachments struct {
	Comment *string       `json:"comment"`
	URLs    []string      `json:"urls"`
	Files   []models.File `json:"files"`
}

type wireHeader struct {
	Title     string `json:"title"`
	Type      string `json:"type"`
	Mandatory bool   `json:"mandatory"`
}

func (r searchResponse) toResult() (*models.SearchResult, error) {
	out := &models.SearchResult{
		Rows:    make([]models.Row, 0, len(r.Assessments)),
		Headers: make([]models.AttributeHeader, 0, len(r.Attributes)),
	}

	for _, h := range r.Attributes {
		typ, err := models.ParseAttributeType(h.Type)
		if err != nil {
			return nil, fmt.Errorf("attribute column %q: %w", h.Title, err)
		}
		out.Headers = append(out.Headers, models.AttributeHeader{Title: h.Title, Type: typ, Mandatory: h.Mandatory})
	}

	for _, a := range r.Assessments {
		row := models.Row{
			AssessmentID:   a.ID,
			Title:          a.Title,
			Status:         a.Status,
			Slug:           a.Slug,
			AssessmentType: a.AssessmentType,
			Attributes:     make([]models.Attribute, 0, len(a.Attributes)),
		}
		for _, wa := range a.Attributes {
			attr, err := wa.toAttribute()
			if err != nil {
				return nil, fmt.Errorf("assessment %s: %w", a.Slug, err)
			}
			row.Attributes = append(row.Attributes, attr)
		}
		out.Rows = append(out.Rows, row)
	}
	return out, nil
}

// toAttribute decodes one attribute. A missing value falls back to the
// default value; non-mandatory attributes start out valid.
func (w wireAttribute) toAttribute() (models.Attribute, error) {
	typ, err := models.ParseAttributeType(w.Type)
	if err != nil {
		return models.Attribute{}, fmt.Errorf("attribute %q: %w", w.Title, err)
	}

	defaultValue, err := models.DecodeValue(typ, w.DefaultValue)
	if err != nil {
		return models.Attribute{}, fmt.Errorf("attribute %q default: %w", w.Title, err)
	}
	value := defaultValue
	if !isNull(w.Value) {
		value, err = models.DecodeValue(typ, w.Value)
		if err != nil {
			return models.Attribute{}, fmt.Errorf("attribute %q: %w", w.Title, err)
		}
	}

	attr := models.Attribute{
		ID:           w.ID,
		Title:        w.Title,
		Type:         typ,
		Value:        value,
		DefaultValue: defaultValue,
		IsApplicable: w.IsApplicable == nil || *w.IsApplicable,
		Validation: models.Validation{
			Mandatory: w.Mandatory,
			Valid:     !w.Mandatory,
		},
	}
	if typ.HasOptions() {
		attr.Options = models.ParseMultiChoiceOptions(w.MultiChoiceOptions, w.MultiChoiceMandatory)
	}
	if w.Attachments != nil && typ == models.TypeDropdown {
		attr.Attachments = &models.Attachments{
			Comment: w.Attachments.Comment,
			URLs:    append([]string{}, w.Attachments.URLs...),
			Files:   append([]models.File{}, w.Attachments.Files...),
		}
	}
	return attr, nil
}

func isNull(raw json.RawMessage) bool {
	s := string(raw)
	return len(raw) == 0 || s == "null"
}
