package validation

import (
	"fmt"
	"strings"
)

// ValidationError lists the fields that failed validation.
//
//nolint:revive // ValidationError reads better than validation.Error at call sites
type ValidationError struct {
	Errors []FieldError `json:"errors"`
}

// FieldError is one failing field. Field is the JSON name.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (ve *ValidationError) Error() string {
	switch len(ve.Errors) {
	case 0:
		return "validation failed"
	case 1:
		return fmt.Sprintf("validation failed: %s", ve.Errors[0].Message)
	default:
		return fmt.Sprintf("validation failed: %d errors", len(ve.Errors))
	}
}

// ErrorKind reports the failure category understood by apierror.Classify.
func (ve *ValidationError) ErrorKind() string { return "validation" }

// UserMessage joins the field messages, one per line.
func (ve *ValidationError) UserMessage() string {
	msgs := make([]string, 0, len(ve.Errors))
	for _, e := range ve.Errors {
		msgs = append(msgs, e.Message)
	}
	return strings.Join(msgs, "\n")
}

// Field returns the message for the named field, or "".
func (ve *ValidationError) Field(name string) string {
	for _, e := range ve.Errors {
		if e.Field == name {
			return e.Message
		}
	}
	return ""
}

// NewFieldError reports a single failing field.
func NewFieldError(field, message string) *ValidationError {
	return &ValidationError{Errors: []FieldError{{Field: field, Message: message}}}
}
