// internal/schema/validate.go
package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"loan-intake/internal/models"
)

// Validation error codes.
const (
	CodeInvalidEnum = "INVALID_ENUM"
	CodeNotANumber  = "NOT_A_NUMBER"
	CodeOutOfRange  = "OUT_OF_RANGE"
)

// FieldError is a validation failure scoped to one named input field.
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Validate coerces and checks raw form values against the form schema.
// It returns either a fully normalized LoanApplication or the complete list
// of field errors in form order; never both. There are no cross-field rules.
func Validate(raw map[string]string) (*models.LoanApplication, []FieldError) {
	validated := make(map[string]interface{}, len(fields))
	var errs []FieldError

	for _, f := range fields {
		value, fieldErr := validateField(f, raw[f.Name])
		if fieldErr != nil {
			errs = append(errs, *fieldErr)
			continue
		}
		validated[f.Name] = value
	}

	if len(errs) > 0 {
		return nil, errs
	}

	// The validated map is keyed by wire names, which are the struct's JSON
	// tags, so a marshal round-trip builds the typed record.
	payload, err := json.Marshal(validated)
	if err != nil {
		return nil, []FieldError{{Field: "", Code: CodeNotANumber, Message: err.Error()}}
	}
	var app models.LoanApplication
	if err := json.Unmarshal(payload, &app); err != nil {
		return nil, []FieldError{{Field: "", Code: CodeNotANumber, Message: err.Error()}}
	}
	return &app, nil
}

func validateField(f Field, raw string) (interface{}, *FieldError) {
	switch f.Kind {
	case KindEnum:
		return validateEnum(f, raw)
	case KindNumber, KindInteger:
		return validateNumeric(f, raw)
	default:
		return nil, &FieldError{
			Field:   f.Name,
			Code:    CodeOutOfRange,
			Message: fmt.Sprintf("unknown field kind %q", f.Kind),
		}
	}
}

// validateEnum requires an exact, case-sensitive match against the declared
// options. A missing key arrives as "" and fails like any other mismatch.
func validateEnum(f Field, raw string) (interface{}, *FieldError) {
	for _, opt := range f.Options {
		if raw == opt {
			return raw, nil
		}
	}
	return nil, &FieldError{
		Field:   f.Name,
		Code:    CodeInvalidEnum,
		Message: fmt.Sprintf("value must be one of: %s", strings.Join(f.Options, ", ")),
	}
}

func validateNumeric(f Field, raw string) (interface{}, *FieldError) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return nil, &FieldError{
			Field:   f.Name,
			Code:    CodeNotANumber,
			Message: "value must be a number",
		}
	}

	if f.Kind == KindInteger && v != math.Trunc(v) {
		return nil, &FieldError{
			Field:   f.Name,
			Code:    CodeOutOfRange,
			Message: constraintText(f),
		}
	}

	if len(f.OneOf) > 0 {
		for _, allowed := range f.OneOf {
			if v == float64(allowed) {
				return allowed, nil
			}
		}
		return nil, &FieldError{
			Field:   f.Name,
			Code:    CodeOutOfRange,
			Message: constraintText(f),
		}
	}

	if (f.Min != nil && v < *f.Min) || (f.Max != nil && v > *f.Max) {
		return nil, &FieldError{
			Field:   f.Name,
			Code:    CodeOutOfRange,
			Message: constraintText(f),
		}
	}

	if f.Kind == KindInteger {
		return int(v), nil
	}
	return v, nil
}

func constraintText(f Field) string {
	if len(f.OneOf) > 0 {
		parts := make([]string, len(f.OneOf))
		for i, n := range f.OneOf {
			parts[i] = strconv.Itoa(n)
		}
		return fmt.Sprintf("value must be exactly one of: %s", strings.Join(parts, ", "))
	}

	noun := "a number"
	if f.Kind == KindInteger {
		noun = "an integer"
	}
	switch {
	case f.Min != nil && f.Max != nil:
		return fmt.Sprintf("value must be %s between %g and %g", noun, *f.Min, *f.Max)
	case f.Min != nil:
		return fmt.Sprintf("value must be %s >= %g", noun, *f.Min)
	case f.Max != nil:
		return fmt.Sprintf("value must be %s <= %g", noun, *f.Max)
	default:
		return fmt.Sprintf("value must be %s", noun)
	}
}
