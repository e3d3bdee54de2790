// Package errors defines the structured error type shared by hopehaven
// packages. Errors carry a category, a stable code for matching and an
// optional cause, and are wrapped with %w as they cross package boundaries.
package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeIO         ErrorType = "io"
	ErrorTypeNetwork    ErrorType = "network"
	ErrorTypeInternal   ErrorType = "internal"
)

// Stable codes used across packages.
const (
	CodeInvalidEmail      = "INVALID_EMAIL"
	CodeRequiredField     = "REQUIRED_FIELD"
	CodeMessageTooLong    = "MESSAGE_TOO_LONG"
	CodeUnknownInterest   = "UNKNOWN_INTEREST"
	CodeEmptyCarousel     = "EMPTY_CAROUSEL"
	CodeIndexOutOfRange   = "INDEX_OUT_OF_RANGE"
	CodeInvalidContent    = "INVALID_CONTENT"
	CodeInvalidConfig     = "INVALID_CONFIG"
	CodeContentRead       = "CONTENT_READ"
	CodeSubmissionFailed  = "SUBMISSION_FAILED"
	CodeInvalidMessage    = "INVALID_MESSAGE"
	CodeControllerStopped = "CONTROLLER_STOPPED"
	CodeInvalidOrigin     = "INVALID_ORIGIN"
)

// SiteError is a structured error type with context.
type SiteError struct {
	Type        ErrorType
	Code        string
	Message     string
	Field       string
	Cause       error
	Context     map[string]interface{}
	Recoverable bool
}

// Error implements the error interface.
func (e *SiteError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}
	if e.Field != "" {
		parts = append(parts, "field:"+e.Field)
	}
	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")
	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}
	return result
}

// Unwrap returns the underlying cause error.
func (e *SiteError) Unwrap() error {
	return e.Cause
}

// Is matches another SiteError with the same type and code.
func (e *SiteError) Is(target error) bool {
	var t *SiteError
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}
	return false
}

// WithContext adds context information to the error.
func (e *SiteError) WithContext(key string, value interface{}) *SiteError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithField attaches the offending form or config field.
func (e *SiteError) WithField(field string) *SiteError {
	e.Field = field
	return e
}

// NewValidationError creates a validation error.
func NewValidationError(code, message string) *SiteError {
	return &SiteError{
		Type:        ErrorTypeValidation,
		Code:        code,
		Message:     message,
		Recoverable: true,
	}
}

// NewConfigError creates a configuration error.
func NewConfigError(code, message string, cause error) *SiteError {
	return &SiteError{
		Type:    ErrorTypeConfig,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewIOError creates an I/O error.
func NewIOError(code, message string, cause error) *SiteError {
	return &SiteError{
		Type:    ErrorTypeIO,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewNetworkError creates a network error. Network errors are recoverable
// because the peer may reconnect.
func NewNetworkError(code, message string, cause error) *SiteError {
	return &SiteError{
		Type:        ErrorTypeNetwork,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: true,
	}
}

// NewInternalError creates an internal error.
func NewInternalError(code, message string, cause error) *SiteError {
	return &SiteError{
		Type:    ErrorTypeInternal,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// IsRecoverable checks if an error is recoverable.
func IsRecoverable(err error) bool {
	var fe FieldErrors
	if errors.As(err, &fe) {
		return true
	}
	var se *SiteError
	if errors.As(err, &se) {
		return se.Recoverable
	}
	return false
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool {
	return HasType(err, ErrorTypeValidation)
}

// HasType reports whether err is a SiteError of the given type. FieldErrors
// count as validation errors.
func HasType(err error, t ErrorType) bool {
	var fe FieldErrors
	if errors.As(err, &fe) {
		return t == ErrorTypeValidation && len(fe) > 0
	}
	var se *SiteError
	if errors.As(err, &se) {
		return se.Type == t
	}
	return false
}

// HasCode reports whether err is a SiteError with the given code. For
// FieldErrors any field with that code matches.
func HasCode(err error, code string) bool {
	var fe FieldErrors
	if errors.As(err, &fe) {
		for _, fieldErr := range fe {
			if fieldErr.Code == code {
				return true
			}
		}
		return false
	}
	var se *SiteError
	if errors.As(err, &se) {
		return se.Code == code
	}
	return false
}

// FieldErrors collects validation failures keyed by field name.
type FieldErrors map[string]*SiteError

// Add records a validation failure for field, keeping the first one.
func (fe FieldErrors) Add(field, code, message string) {
	if _, exists := fe[field]; exists {
		return
	}
	fe[field] = NewValidationError(code, message).WithField(field)
}

// Message returns the message for field, or "" when the field is valid.
func (fe FieldErrors) Message(field string) string {
	if err, ok := fe[field]; ok {
		return err.Message
	}
	return ""
}

// Err returns nil when no failures were recorded.
func (fe FieldErrors) Err() error {
	if len(fe) == 0 {
		return nil
	}
	return fe
}

// Error implements the error interface with fields in stable order.
func (fe FieldErrors) Error() string {
	fields := make([]string, 0, len(fe))
	for field := range fe {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	msgs := make([]string, 0, len(fields))
	for _, field := range fields {
		msgs = append(msgs, fe[field].Error())
	}
	return strings.Join(msgs, "; ")
}

// Is lets errors.Is(err, &SiteError{Type: validation}) match aggregated
// field errors.
func (fe FieldErrors) Is(target error) bool {
	var t *SiteError
	if !errors.As(target, &t) {
		return false
	}
	for _, err := range fe {
		if err.Is(t) {
			return true
		}
	}
	return false
}
