package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// AttributeType identifies the kind of a custom attribute.
// The set is closed: every switch over it is expected to be exhaustive.
type AttributeType string

const (
	TypeInput       AttributeType = "input"
	TypeText        AttributeType = "text"
	TypeDate        AttributeType = "date"
	TypeCheckbox    AttributeType = "checkbox"
	TypeDropdown    AttributeType = "dropdown"
	TypeMultiselect AttributeType = "multiselect"
	TypePerson      AttributeType = "person"
)

// ErrUnknownAttributeType is returned when a type string is not part of the closed set.
var ErrUnknownAttributeType = errors.New("unknown attribute type")

// ErrValueKind is returned when a value does not match the attribute it is assigned to.
var ErrValueKind = errors.New("value kind does not match attribute type")

// ParseAttributeType converts a wire type name into an AttributeType.
// Matching is case-insensitive; "rich text" and "map:person" aliases are accepted.
func ParseAttributeType(s string) (AttributeType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "input":
		return TypeInput, nil
	case "text", "rich text":
		return TypeText, nil
	case "date":
		return TypeDate, nil
	case "checkbox":
		return TypeCheckbox, nil
	case "dropdown":
		return TypeDropdown, nil
	case "multiselect":
		return TypeMultiselect, nil
	case "person", "map:person":
		return TypePerson, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownAttributeType, s)
	}
}

// HasOptions reports whether attributes of this type carry multi-choice options.
func (t AttributeType) HasOptions() bool {
	return t == TypeDropdown || t == TypeMultiselect
}

// PersonRef references a person stored on the backend.
type PersonRef struct {
	ID    int64  `json:"id" yaml:"id"`
	Type  string `json:"type,omitempty" yaml:"type,omitempty"`
	Email string `json:"email,omitempty" yaml:"email,omitempty"`
}

// Value is a tagged attribute value. Its kind always equals the owning attribute's type.
// Text-like kinds (input, text, date, dropdown, multiselect) carry a string,
// checkbox carries a bool and person carries a list of references.
type Value struct {
	kind   AttributeType
	text   string
	flag   bool
	people []PersonRef
}

// TextValue builds a value for one of the string-carrying kinds.
func TextValue(kind AttributeType, s string) Value {
	return Value{kind: kind, text: s}
}

// CheckboxValue builds a checkbox value.
func CheckboxValue(checked bool) Value {
	return Value{kind: TypeCheckbox, flag: checked}
}

// PersonValue builds a person value. A nil list is stored as empty.
func PersonValue(people []PersonRef) Value {
	cp := make([]PersonRef, len(people))
	copy(cp, people)
	return Value{kind: TypePerson, people: cp}
}

// EmptyValue returns the zero value for the given kind.
func EmptyValue(kind AttributeType) Value {
	switch kind {
	case TypeCheckbox:
		return CheckboxValue(false)
	case TypePerson:
		return PersonValue(nil)
	default:
		return TextValue(kind, "")
	}
}

// Kind returns the attribute type the value belongs to.
func (v Value) Kind() AttributeType { return v.kind }

// Text returns the string payload of text-like kinds.
func (v Value) Text() string { return v.text }

// Checked returns the checkbox state.
func (v Value) Checked() bool { return v.flag }

// People returns a copy of the person references.
func (v Value) People() []PersonRef {
	cp := make([]PersonRef, len(v.people))
	copy(cp, v.people)
	return cp
}

// Truthy reports whether the value would count as answered.
func (v Value) Truthy() bool {
	switch v.kind {
	case TypeCheckbox:
		return v.flag
	case TypePerson:
		return len(v.people) > 0
	case TypeInput, TypeText, TypeDate, TypeDropdown, TypeMultiselect:
		return v.text != ""
	default:
		return false
	}
}

// Raw returns the value as it would be serialized for the backend before type coercion.
func (v Value) Raw() interface{} {
	switch v.kind {
	case TypeCheckbox:
		return v.flag
	case TypePerson:
		return v.People()
	default:
		return v.text
	}
}

// String renders the value for display.
func (v Value) String() string {
	switch v.kind {
	case TypeCheckbox:
		if v.flag {
			return "yes"
		}
		return "no"
	case TypePerson:
		parts := make([]string, 0, len(v.people))
		for _, p := range v.people {
			if p.Email != "" {
				parts = append(parts, p.Email)
			} else {
				parts = append(parts, fmt.Sprintf("person#%d", p.ID))
			}
		}
		return strings.Join(parts, ", ")
	default:
		return v.text
	}
}

// Clone returns a deep copy of the value.
func (v Value) Clone() Value {
	out := v
	if v.people != nil {
		out.people = v.People()
	}
	return out
}

// DecodeValue decodes a wire value for an attribute of the given kind.
// null and missing values decode to the kind's empty value.
func DecodeValue(kind AttributeType, raw json.RawMessage) (Value, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return EmptyValue(kind), nil
	}

	switch kind {
	case TypeCheckbox:
		var b bool
		if err := json.Unmarshal(trimmed, &b); err == nil {
			return CheckboxValue(b), nil
		}
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			return CheckboxValue(isCheckedString(s)), nil
		}
		var n float64
		if err := json.Unmarshal(trimmed, &n); err == nil {
			return CheckboxValue(n != 0), nil
		}
		return Value{}, fmt.Errorf("decode checkbox value %s: %w", trimmed, ErrValueKind)
	case TypePerson:
		var people []PersonRef
		if err := json.Unmarshal(trimmed, &people); err != nil {
			return Value{}, fmt.Errorf("decode person value: %w", err)
		}
		return PersonValue(people), nil
	case TypeInput, TypeText, TypeDate, TypeDropdown, TypeMultiselect:
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			return TextValue(kind, s), nil
		}
		var n json.Number
		if err := json.Unmarshal(trimmed, &n); err == nil {
			return TextValue(kind, n.String()), nil
		}
		return Value{}, fmt.Errorf("decode %s value %s: %w", kind, trimmed, ErrValueKind)
	default:
		return Value{}, fmt.Errorf("%w: %q", ErrUnknownAttributeType, kind)
	}
}

func isCheckedString(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
