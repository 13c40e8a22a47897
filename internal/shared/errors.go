package shared

import (
	"errors"
	"fmt"
)

// Kind classifies engine errors so handlers can map them to responses.
type Kind int

const (
	KindUnknown Kind = iota
	// KindValidation marks business-rule violations. Recoverable, user-facing.
	KindValidation
	// KindNotFound marks missing referenced records.
	KindNotFound
	// KindConsistency marks corrupted structural data (cycles, mismatched legs).
	KindConsistency
	// KindConflict marks optimistic-lock failures on balance updates.
	KindConflict
)

// Error carries the classification plus the ids needed to render an
// actionable message.
type Error struct {
	Kind      Kind
	Rule      string
	EntityID  string
	AccountID string
	Err       error
}

func (e *Error) Error() string {
	msg := e.Rule
	if e.Err != nil {
		msg = e.Err.Error()
	}
	switch {
	case e.EntityID != "" && e.AccountID != "":
		return fmt.Sprintf("%s (entity %s, account %s)", msg, e.EntityID, e.AccountID)
	case e.EntityID != "":
		return fmt.Sprintf("%s (entity %s)", msg, e.EntityID)
	case e.AccountID != "":
		return fmt.Sprintf("%s (account %s)", msg, e.AccountID)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Validation builds a user-facing business-rule error.
func Validation(rule string) *Error {
	return &Error{Kind: KindValidation, Rule: rule}
}

// NotFound builds a missing-record error.
func NotFound(rule string) *Error {
	return &Error{Kind: KindNotFound, Rule: rule}
}

// Consistency builds a structural-corruption error.
func Consistency(rule string) *Error {
	return &Error{Kind: KindConsistency, Rule: rule}
}

// Conflict builds an optimistic-lock error.
func Conflict(rule string) *Error {
	return &Error{Kind: KindConflict, Rule: rule}
}

// WithEntity attaches the entity id for message context.
func (e *Error) WithEntity(id string) *Error {
	e.EntityID = id
	return e
}

// WithAccount attaches the account id for message context.
func (e *Error) WithAccount(id string) *Error {
	e.AccountID = id
	return e
}

// KindOf extracts the classification from an error chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsValidation reports whether err is a business-rule violation.
func IsValidation(err error) bool { return KindOf(err) == KindValidation }

// IsNotFound reports whether err is a missing-record error.
func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }

// IsConflict reports whether err is an optimistic-lock failure.
func IsConflict(err error) bool { return KindOf(err) == KindConflict }

// UserSafeMessage returns a message safe to surface to the client.
func UserSafeMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Error()
	}
	return "an unexpected error occurred, please retry"
}
