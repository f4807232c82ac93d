// internal/schema/schema.go
// Package schema declares the loan application form schema and validates raw
// form input against it. Validation is pure and total: every field is checked
// and every violation reported, so a form can surface all problems at once.
package schema

// Kind is the coercion target for a field.
type Kind string

const (
	KindEnum    Kind = "enum"
	KindNumber  Kind = "number"
	KindInteger Kind = "integer"
)

// Field is one declarative entry of the form schema. Name is the wire name
// used both for form input keys and for the prediction request body.
type Field struct {
	Name    string   `json:"name"`
	Kind    Kind     `json:"kind"`
	Options []string `json:"options,omitempty"` // enum literals, exact match
	Min     *float64 `json:"min,omitempty"`
	Max     *float64 `json:"max,omitempty"`
	OneOf   []int    `json:"oneOf,omitempty"` // exact integer membership
}

func ptr(v float64) *float64 { return &v }

// fields is the fixed form schema, in form order. Order matters: validation
// errors are reported in this order.
var fields = []Field{
	{Name: "Gender", Kind: KindEnum, Options: []string{"Male", "Female"}},
	{Name: "Married", Kind: KindEnum, Options: []string{"Yes", "No"}},
	{Name: "Dependents", Kind: KindInteger, Min: ptr(0), Max: ptr(3)},
	{Name: "Education", Kind: KindEnum, Options: []string{"Graduate", "Not Graduate"}},
	{Name: "Self_Employed", Kind: KindEnum, Options: []string{"Yes", "No"}},
	{Name: "ApplicantIncome", Kind: KindNumber, Min: ptr(1)},
	{Name: "CoapplicantIncome", Kind: KindNumber, Min: ptr(0)},
	{Name: "LoanAmount", Kind: KindNumber, Min: ptr(1)},
	{Name: "Loan_Amount_Term", Kind: KindNumber, Min: ptr(1)},
	{Name: "Credit_History", Kind: KindInteger, OneOf: []int{0, 1}},
	{Name: "Property_Area", Kind: KindEnum, Options: []string{"Rural", "Urban", "Semiurban"}},
}

// Fields returns a copy of the form schema, in declared order.
func Fields() []Field {
	out := make([]Field, len(fields))
	copy(out, fields)
	return out
}

// FieldNames returns the wire names of all schema fields, in declared order.
func FieldNames() []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.Name
	}
	return out
}
