// pkg/formspec/formspec.go
// Package formspec publishes a machine-readable description of the loan
// application form so clients can render controls and mirror the validation
// rules without hardcoding them.
package formspec

import "loan-intake/internal/schema"

// Document is the versioned form description served to clients.
type Document struct {
	Version string         `json:"version"`
	Fields  []schema.Field `json:"fields"`
}

// Version bumps when a field, option or constraint changes.
const Version = "1.0.0"

// Describe returns the current form schema document.
func Describe() Document {
	return Document{
		Version: Version,
		Fields:  schema.Fields(),
	}
}
