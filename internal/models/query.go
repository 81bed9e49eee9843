package models

// ObjectRef points at a backend object such as the audit a list is scoped to.
type ObjectRef struct {
	Type string `json:"type" yaml:"type" validate:"required"`
	ID   int64  `json:"id" yaml:"id" validate:"required,gt=0"`
}

// Operator names a query API operation.
type Operator struct {
	Name string `json:"name"`
}

// Expression is a node of a query API filter expression.
// Binary nodes use Left/Op/Right; relationship nodes use ObjectName/Op/IDs.
type Expression struct {
	Left       interface{} `json:"left,omitempty"`
	Op         Operator    `json:"op"`
	Right      interface{} `json:"right,omitempty"`
	ObjectName string      `json:"object_name,omitempty"`
	IDs        []int64     `json:"ids,omitempty"`
}

// QueryFilters wraps the root expression of a query.
type QueryFilters struct {
	Expression *Expression `json:"expression"`
}

// ListRequest is a query API request for the assessments to show.
type ListRequest struct {
	ObjectName string       `json:"object_name"`
	Filters    QueryFilters `json:"filters"`
	Type       string       `json:"type"`
}

// And joins expressions, skipping nil ones. It returns nil when all are nil.
func And(exprs ...*Expression) *Expression {
	var out *Expression
	for _, e := range exprs {
		if e == nil {
			continue
		}
		if out == nil {
			out = e
			continue
		}
		out = &Expression{Left: out, Op: Operator{Name: "AND"}, Right: e}
	}
	return out
}

// In builds "field IN values".
func In(field string, values []string) *Expression {
	return &Expression{Left: field, Op: Operator{Name: "IN"}, Right: values}
}

// Contains builds "field ~ value".
func Contains(field, value string) *Expression {
	return &Expression{Left: field, Op: Operator{Name: "~"}, Right: value}
}

// Relevant builds a relationship filter to the given object.
func Relevant(ref ObjectRef) *Expression {
	return &Expression{ObjectName: ref.Type, Op: Operator{Name: "relevant"}, IDs: []int64{ref.ID}}
}
