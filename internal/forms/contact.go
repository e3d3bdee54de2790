package forms

import (
	"context"
	"net/url"
	"strings"
	"time"

	siteerrors "github.com/conneroisu/hopehaven/internal/errors"
)

// MaxMessageLength caps the free text message.
const MaxMessageLength = 5000

// ContactForm is the in-memory field bag of the contact section.
type ContactForm struct {
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Interest Interest `json:"interest"`
	Message  string   `json:"message"`
}

// ContactFromValues reads a form-encoded contact submission.
func ContactFromValues(v url.Values) ContactForm {
	return ContactForm{
		Name:     strings.TrimSpace(v.Get("name")),
		Email:    strings.TrimSpace(v.Get("email")),
		Interest: Interest(strings.TrimSpace(v.Get("interest"))),
		Message:  strings.TrimSpace(v.Get("message")),
	}
}

// Validate returns FieldErrors describing every invalid field, or nil.
func (f ContactForm) Validate() error {
	errs := siteerrors.FieldErrors{}

	if strings.TrimSpace(f.Name) == "" {
		errs.Add("name", siteerrors.CodeRequiredField, "Please enter your name.")
	}
	if !ValidEmail(f.Email) {
		errs.Add("email", siteerrors.CodeInvalidEmail, InvalidEmailMessage)
	}
	if !f.Interest.Valid() {
		errs.Add("interest", siteerrors.CodeUnknownInterest, "Please choose one of the listed options.")
	}
	switch message := strings.TrimSpace(f.Message); {
	case message == "":
		errs.Add("message", siteerrors.CodeRequiredField, "Please tell us how you'd like to help.")
	case len(message) > MaxMessageLength:
		errs.Add("message", siteerrors.CodeMessageTooLong, "Please keep your message under 5000 characters.")
	}

	return errs.Err()
}

// ContactResult is the outcome of handling a contact submission.
type ContactResult struct {
	Form   ContactForm
	Errors siteerrors.FieldErrors
	ID     string
	Sent   bool
}

// ContactHandler validates and submits contact forms.
type ContactHandler struct {
	submitter Submitter
	now       func() time.Time
}

// NewContactHandler creates a handler delivering to submitter.
func NewContactHandler(submitter Submitter) *ContactHandler {
	return &ContactHandler{submitter: submitter, now: time.Now}
}

// Handle validates form and submits it when valid. Validation failures are
// reported in the result, not as an error; the error is reserved for a
// failing Submitter.
func (h *ContactHandler) Handle(ctx context.Context, form ContactForm) (ContactResult, error) {
	result := ContactResult{Form: form, Errors: siteerrors.FieldErrors{}}

	if err := form.Validate(); err != nil {
		if fe, ok := err.(siteerrors.FieldErrors); ok {
			result.Errors = fe
		}
		return result, nil
	}

	sub := newSubmission(KindContact, h.now(), map[string]string{
		"name":     form.Name,
		"email":    form.Email,
		"interest": string(form.Interest),
		"message":  form.Message,
	})
	if err := h.submitter.Submit(ctx, sub); err != nil {
		return result, submitFailed(err)
	}

	return ContactResult{Errors: siteerrors.FieldErrors{}, ID: sub.ID, Sent: true}, nil
}
