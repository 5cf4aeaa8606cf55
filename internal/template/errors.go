package template

import (
	"errors"
	"fmt"
)

// ErrTemplate is the base error for template processing failures.
var ErrTemplate = errors.New("template error")

// TemplateError carries the failing template (truncated) and, when known,
// the variable that caused the failure.
type TemplateError struct {
	Message  string
	Template string
	Variable string
}

// Error implements the error interface.
func (e *TemplateError) Error() string {
	if e.Variable != "" {
		return fmt.Sprintf("%s (variable %q)", e.Message, e.Variable)
	}
	return e.Message
}

// Unwrap returns ErrTemplate so errors.Is works.
func (e *TemplateError) Unwrap() error {
	return ErrTemplate
}

func newTemplateError(template, variable, format string, args ...interface{}) *TemplateError {
	const maxTemplate = 100
	if len(template) > maxTemplate {
		template = template[:maxTemplate] + "..."
	}
	return &TemplateError{
		Message:  fmt.Sprintf(format, args...),
		Template: template,
		Variable: variable,
	}
}
