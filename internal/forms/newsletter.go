package forms

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Status is the newsletter signup state.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusSending Status = "sending"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Newsletter holds the footer signup form: one email field and a status.
type Newsletter struct {
	submitter Submitter
	now       func() time.Time

	mu      sync.Mutex
	email   string
	status  Status
	message string
}

// NewNewsletter creates an idle signup form.
func NewNewsletter(submitter Submitter) *Newsletter {
	return &Newsletter{submitter: submitter, now: time.Now, status: StatusIdle}
}

// NewsletterState is a read-only view of the form.
type NewsletterState struct {
	Email   string `json:"email"`
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
}

// State returns the current form state.
func (n *Newsletter) State() NewsletterState {
	n.mu.Lock()
	defer n.mu.Unlock()
	return NewsletterState{Email: n.email, Status: n.status, Message: n.message}
}

// Subscribe validates email and submits it. An invalid address moves the
// form to the error state and keeps the typed value; success clears the
// field.
func (n *Newsletter) Subscribe(ctx context.Context, email string) NewsletterState {
	email = strings.TrimSpace(email)

	n.mu.Lock()
	n.email = email
	if !ValidEmail(email) {
		n.status = StatusError
		n.message = InvalidEmailMessage
		n.mu.Unlock()
		return n.State()
	}
	n.status = StatusSending
	n.message = ""
	n.mu.Unlock()

	err := n.submitter.Submit(ctx, newSubmission(KindNewsletter, n.now(), map[string]string{"email": email}))

	n.mu.Lock()
	if err != nil {
		n.status = StatusError
		n.message = "Something went wrong. Please try again."
	} else {
		n.status = StatusSuccess
		n.message = "Thanks, you're subscribed!"
		n.email = ""
	}
	n.mu.Unlock()

	return n.State()
}
