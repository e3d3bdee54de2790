// Package forms validates the contact and newsletter forms.
//
// Neither form is delivered anywhere: a Submitter receives accepted
// submissions, and the stock LogSubmitter only records them in the log.
package forms

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	siteerrors "github.com/conneroisu/hopehaven/internal/errors"
	"github.com/conneroisu/hopehaven/internal/logging"
)

// InvalidEmailMessage is shown inline when an address fails the format check.
const InvalidEmailMessage = "Please enter a valid email."

var emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)

// ValidEmail applies the basic something@something.something check.
func ValidEmail(email string) bool {
	email = strings.TrimSpace(email)
	return email != "" && emailPattern.MatchString(email)
}

// Interest is the contact form's "how would you like to help" category.
type Interest string

const (
	InterestNone      Interest = ""
	InterestDonation  Interest = "donation"
	InterestVolunteer Interest = "volunteer"
	InterestSponsor   Interest = "sponsor"
	InterestPartner   Interest = "partner"
)

// Interests lists the selectable categories in display order.
var Interests = []Interest{InterestDonation, InterestVolunteer, InterestSponsor, InterestPartner}

var interestLabels = map[Interest]string{
	InterestDonation:  "making a donation",
	InterestVolunteer: "volunteering",
	InterestSponsor:   "child sponsorship",
	InterestPartner:   "partnership",
}

var titleCaser = cases.Title(language.English)

// Label returns the human readable option text.
func (i Interest) Label() string {
	if label, ok := interestLabels[i]; ok {
		return titleCaser.String(label)
	}
	return "Select an option"
}

// Valid reports whether i is empty or a known category.
func (i Interest) Valid() bool {
	if i == InterestNone {
		return true
	}
	_, ok := interestLabels[i]
	return ok
}

// Kind tells a Submitter which form produced a submission.
type Kind string

const (
	KindContact    Kind = "contact"
	KindNewsletter Kind = "newsletter"
)

// Submission is an accepted form submission.
type Submission struct {
	ID          string
	Kind        Kind
	SubmittedAt time.Time
	Fields      map[string]string
}

// Submitter receives accepted submissions.
type Submitter interface {
	Submit(ctx context.Context, s Submission) error
}

// SubmitterFunc adapts a function to Submitter.
type SubmitterFunc func(ctx context.Context, s Submission) error

// Submit calls f.
func (f SubmitterFunc) Submit(ctx context.Context, s Submission) error {
	return f(ctx, s)
}

// LogSubmitter records submissions in the log and nowhere else.
type LogSubmitter struct {
	log logging.Logger
}

// NewLogSubmitter creates a LogSubmitter.
func NewLogSubmitter(logger logging.Logger) *LogSubmitter {
	if logger == nil {
		logger = logging.Nop()
	}
	return &LogSubmitter{log: logger.WithComponent("forms")}
}

// Submit logs s.
func (l *LogSubmitter) Submit(ctx context.Context, s Submission) error {
	fields := []interface{}{"id", s.ID, "kind", string(s.Kind)}
	for k, v := range s.Fields {
		fields = append(fields, k, logging.SanitizeForLog(v))
	}
	l.log.Info(ctx, "Form submitted", fields...)
	return nil
}

func newSubmission(kind Kind, now time.Time, fields map[string]string) Submission {
	return Submission{
		ID:          uuid.NewString(),
		Kind:        kind,
		SubmittedAt: now,
		Fields:      fields,
	}
}

func submitFailed(err error) error {
	return siteerrors.NewInternalError(siteerrors.CodeSubmissionFailed, "submission failed", err)
}
