package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSiteError_Error(t *testing.T) {
	testCases := []struct {
		name     string
		err      *SiteError
		expected string
	}{
		{
			name:     "code and message",
			err:      NewValidationError(CodeInvalidEmail, "Please enter a valid email."),
			expected: "[INVALID_EMAIL] Please enter a valid email.",
		},
		{
			name:     "with field",
			err:      NewValidationError(CodeRequiredField, "required").WithField("name"),
			expected: "[REQUIRED_FIELD] field:name required",
		},
		{
			name:     "with cause",
			err:      NewIOError(CodeContentRead, "reading content", errors.New("no such file")),
			expected: "[CONTENT_READ] reading content: no such file",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.err.Error())
		})
	}
}

func TestSiteError_IsAndUnwrap(t *testing.T) {
	cause := errors.New("disk gone")
	err := fmt.Errorf("loading: %w", NewIOError(CodeContentRead, "reading content", cause))

	assert.True(t, errors.Is(err, cause))
	assert.True(t, errors.Is(err, &SiteError{Type: ErrorTypeIO, Code: CodeContentRead}))
	assert.False(t, errors.Is(err, &SiteError{Type: ErrorTypeIO, Code: CodeInvalidConfig}))
	assert.True(t, HasType(err, ErrorTypeIO))
	assert.True(t, HasCode(err, CodeContentRead))
	assert.False(t, IsRecoverable(err))
}

func TestSiteError_WithContext(t *testing.T) {
	err := NewInternalError(CodeControllerStopped, "stopped", nil).
		WithContext("frames", 12).
		WithContext("reason", "teardown")

	assert.Equal(t, 12, err.Context["frames"])
	assert.Equal(t, "teardown", err.Context["reason"])
}

func TestRecoverability(t *testing.T) {
	assert.True(t, IsRecoverable(NewValidationError(CodeInvalidEmail, "bad")))
	assert.True(t, IsRecoverable(NewNetworkError(CodeInvalidMessage, "bad frame", nil)))
	assert.False(t, IsRecoverable(NewConfigError(CodeInvalidConfig, "bad port", nil)))
	assert.False(t, IsRecoverable(errors.New("plain")))
}

func TestFieldErrors(t *testing.T) {
	fe := FieldErrors{}
	require.NoError(t, fe.Err())

	fe.Add("email", CodeInvalidEmail, "Please enter a valid email.")
	fe.Add("email", CodeRequiredField, "second failure is ignored")
	fe.Add("name", CodeRequiredField, "Please enter your name.")

	err := fe.Err()
	require.Error(t, err)
	assert.Equal(t, "Please enter a valid email.", fe.Message("email"))
	assert.Empty(t, fe.Message("message"))
	assert.Equal(t,
		"[INVALID_EMAIL] field:email Please enter a valid email.; [REQUIRED_FIELD] field:name Please enter your name.",
		err.Error())

	wrapped := fmt.Errorf("contact: %w", err)
	assert.True(t, IsValidation(wrapped))
	assert.True(t, IsRecoverable(wrapped))
	assert.True(t, errors.Is(wrapped, &SiteError{Type: ErrorTypeValidation, Code: CodeInvalidEmail}))
	assert.False(t, errors.Is(wrapped, &SiteError{Type: ErrorTypeValidation, Code: CodeUnknownInterest}))
}

func TestHasCode_FieldErrors(t *testing.T) {
	fe := FieldErrors{}
	fe.Add("email", CodeInvalidEmail, "bad email")
	fe.Add("message", CodeMessageTooLong, "too long")
	wrapped := fmt.Errorf("contact: %w", fe.Err())

	assert.True(t, IsValidation(wrapped))
	assert.True(t, HasCode(wrapped, CodeInvalidEmail))
	assert.True(t, HasCode(wrapped, CodeMessageTooLong))
	assert.False(t, HasCode(wrapped, CodeRequiredField))
	assert.False(t, HasCode(FieldErrors{}.Err(), CodeInvalidEmail))
}
