// internal/interest/errors.go

package interest

import (
	"errors"
	"fmt"
)

var (
	ErrInterestNotFound = errors.New("interest not found")
	ErrProfileNotFound  = errors.New("profile not found")
	ErrNotRequester     = errors.New("only the requester may perform this action")
	ErrNotRecipient     = errors.New("only the recipient may perform this action")
)

// ValidationError reports malformed input. Never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// PreconditionFailedError reports a legal-state violation with a
// user-facing reason. Callers must not retry blindly.
type PreconditionFailedError struct {
	Reason string
}

func (e *PreconditionFailedError) Error() string {
	return e.Reason
}

// IsValidation reports whether err is a ValidationError
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsPreconditionFailed reports whether err is a PreconditionFailedError
func IsPreconditionFailed(err error) bool {
	var pe *PreconditionFailedError
	return errors.As(err, &pe)
}
