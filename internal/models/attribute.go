package models

import (
	"strconv"
	"strings"
)

// File is a document attached as evidence for a dropdown answer.
type File struct {
	Title    string `json:"title" yaml:"title"`
	SourceID string `json:"source_id" yaml:"source_id"`
}

// Attachments holds the supplemental info a dropdown option may require.
// A nil Comment means no comment was supplied.
type Attachments struct {
	Comment *string
	URLs    []string
	Files   []File
}

// NewEmptyAttachments returns the shape used the first time an option requires info.
func NewEmptyAttachments() *Attachments {
	return &Attachments{
		Comment: nil,
		URLs:    []string{},
		Files:   []File{},
	}
}

// Clone returns a deep copy. Cloning nil yields nil.
func (a *Attachments) Clone() *Attachments {
	if a == nil {
		return nil
	}
	out := &Attachments{
		URLs:  append([]string{}, a.URLs...),
		Files: append([]File{}, a.Files...),
	}
	if a.Comment != nil {
		c := *a.Comment
		out.Comment = &c
	}
	return out
}

// MultiChoiceOptions lists dropdown/multiselect options and the
// requirement bitmask configured for each of them.
type MultiChoiceOptions struct {
	Values []string
	Config map[string]int
}

// ParseMultiChoiceOptions builds options from the comma separated strings the backend
// stores for an attribute definition. Masks are positional; a missing or malformed
// mask leaves the option out of the config map.
func ParseMultiChoiceOptions(options, masks string) *MultiChoiceOptions {
	mco := &MultiChoiceOptions{Config: map[string]int{}}
	if strings.TrimSpace(options) == "" {
		return mco
	}

	values := strings.Split(options, ",")
	var maskParts []string
	if strings.TrimSpace(masks) != "" {
		maskParts = strings.Split(masks, ",")
	}

	for i, v := range values {
		v = strings.TrimSpace(v)
		mco.Values = append(mco.Values, v)
		if i >= len(maskParts) {
			continue
		}
		if mask, ok := parseMask(maskParts[i]); ok {
			mco.Config[v] = mask
		}
	}
	return mco
}

func parseMask(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// Mask returns the bitmask for an option and whether the option is configured.
func (m *MultiChoiceOptions) Mask(option string) (int, bool) {
	if m == nil || m.Config == nil {
		return 0, false
	}
	mask, ok := m.Config[option]
	return mask, ok
}

// Has reports whether option is one of the listed values.
func (m *MultiChoiceOptions) Has(option string) bool {
	if m == nil {
		return false
	}
	for _, v := range m.Values {
		if v == option {
			return true
		}
	}
	return false
}

// Clone returns a deep copy.
func (m *MultiChoiceOptions) Clone() *MultiChoiceOptions {
	if m == nil {
		return nil
	}
	out := &MultiChoiceOptions{
		Values: append([]string(nil), m.Values...),
		Config: make(map[string]int, len(m.Config)),
	}
	for k, v := range m.Config {
		out.Config[k] = v
	}
	return out
}

// Validation is the validation state of a single attribute.
type Validation struct {
	Mandatory          bool
	Valid              bool
	RequiresAttachment bool
	HasMissingInfo     bool
}

// Attribute is one custom attribute value on one assessment.
type Attribute struct {
	ID           *int64 // nil until the attribute value record exists
	Title        string
	Type         AttributeType
	Value        Value
	DefaultValue Value
	IsApplicable bool
	Modified     bool
	Options      *MultiChoiceOptions
	Attachments  *Attachments
	Validation   Validation
}

// HasID reports whether the attribute value record exists.
func (a *Attribute) HasID() bool {
	return a.ID != nil
}

// IDValue returns the record id or 0 when it is not set.
func (a *Attribute) IDValue() int64 {
	if a.ID == nil {
		return 0
	}
	return *a.ID
}

// Clone returns a deep copy of the attribute.
func (a Attribute) Clone() Attribute {
	out := a
	if a.ID != nil {
		id := *a.ID
		out.ID = &id
	}
	out.Value = a.Value.Clone()
	out.DefaultValue = a.DefaultValue.Clone()
	out.Options = a.Options.Clone()
	out.Attachments = a.Attachments.Clone()
	return out
}

// AttributeHeader describes one column of the bulk-complete grid.
type AttributeHeader struct {
	Title     string
	Type      AttributeType
	Mandatory bool
}
