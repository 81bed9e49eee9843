package models

import "strings"

// Row is one assessment together with its attribute set.
type Row struct {
	AssessmentID      int64
	Title             string
	Status            string
	Slug              string
	AssessmentType    string
	Attributes        []Attribute
	IsReadyToComplete bool
}

// Clone returns a deep copy of the row.
func (r Row) Clone() Row {
	out := r
	out.Attributes = make([]Attribute, len(r.Attributes))
	for i, a := range r.Attributes {
		out.Attributes[i] = a.Clone()
	}
	return out
}

// AttributeIndexByID returns the index of the attribute with the given record id, or -1.
func (r *Row) AttributeIndexByID(id int64) int {
	for i := range r.Attributes {
		if r.Attributes[i].ID != nil && *r.Attributes[i].ID == id {
			return i
		}
	}
	return -1
}

// AttributeIndexByTitle returns the index of the attribute whose title matches
// case-insensitively, or -1.
func (r *Row) AttributeIndexByTitle(title string) int {
	title = strings.TrimSpace(title)
	for i := range r.Attributes {
		if strings.EqualFold(r.Attributes[i].Title, title) {
			return i
		}
	}
	return -1
}

// ModifiedCount returns the number of applicable attributes edited in this session.
func (r *Row) ModifiedCount() int {
	n := 0
	for _, a := range r.Attributes {
		if a.Modified && a.IsApplicable {
			n++
		}
	}
	return n
}
