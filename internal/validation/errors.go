package validation

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrInvalidSubmission marks a strict parse that received input it should never see
var ErrInvalidSubmission = errors.New("invalid form submission")

// FieldErrors maps a form field name to its messages in rule order
type FieldErrors map[string][]string

// Add appends a message for the field
func (e FieldErrors) Add(field, message string) {
	e[field] = append(e[field], message)
}

// Has reports whether the field has any error
func (e FieldErrors) Has(field string) bool {
	return len(e[field]) > 0
}

// Error renders the errors with fields in sorted order
func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, strings.Join(e[field], "; ")))
	}
	return strings.Join(parts, ", ")
}

// orNil keeps "no errors" as a nil map for callers
func (e FieldErrors) orNil() FieldErrors {
	if len(e) == 0 {
		return nil
	}
	return e
}

// strict converts field errors into a fatal error
func strict(errs FieldErrors) error {
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvalidSubmission, errs.Error())
}
