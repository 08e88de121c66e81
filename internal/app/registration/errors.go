package registration

import (
	"fmt"
	"net/http"

	"github.com/mmu-rhsf/fellowhub/internal/domain/models"
)

// Error codes carried in API responses.
const (
	CodeNotFound       = "NOT_FOUND"
	CodeNotAccepting   = "NOT_ACCEPTING"
	CodeValidation     = "VALIDATION_ERROR"
	CodeDuplicateEmail = "DUPLICATE_EMAIL"
	CodeStorage        = "STORAGE_ERROR"
)

// Error is the failure type returned by every Service operation.
//
// Reason is set for NOT_ACCEPTING (expired, full or inactive) and Field for
// VALIDATION_ERROR. Err holds the underlying store error for STORAGE_ERROR;
// it is logged, never shown to callers.
type Error struct {
	Code    string
	Reason  string
	Field   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return e.Code + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on Code, and on Reason/Field when the target sets them, so
// errors.Is(err, ErrNotAccepting) and errors.Is(err, NotAccepting("full"))
// both work.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Code != e.Code {
		return false
	}
	if t.Reason != "" && t.Reason != e.Reason {
		return false
	}
	return t.Field == "" || t.Field == e.Field
}

// Status is the HTTP status for the error's code.
func (e *Error) Status() int {
	switch e.Code {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeNotAccepting, CodeValidation, CodeDuplicateEmail:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Sentinels for errors.Is.
var (
	ErrNotFound       = &Error{Code: CodeNotFound}
	ErrNotAccepting   = &Error{Code: CodeNotAccepting}
	ErrValidation     = &Error{Code: CodeValidation}
	ErrDuplicateEmail = &Error{Code: CodeDuplicateEmail}
	ErrStorage        = &Error{Code: CodeStorage}
)

func NotFound() *Error {
	return &Error{Code: CodeNotFound, Message: "Registration form not found"}
}

func NotAccepting(reason string) *Error {
	msg := "This registration form is not accepting submissions"
	switch reason {
	case models.ReasonExpired:
		msg = "This registration form has expired"
	case models.ReasonFull:
		msg = "This registration form is full"
	case models.ReasonInactive:
		msg = "This registration form is not active"
	}
	return &Error{Code: CodeNotAccepting, Reason: reason, Message: msg}
}

var fieldLabels = map[string]string{
	"name":       "Name",
	"email":      "Email",
	"phone":      "Phone",
	"department": "Department",

	"maxSubmissions": "Max submissions",
	"expiresInDays":  "Expiry days",
}

func Validation(field string) *Error {
	return &Error{Code: CodeValidation, Field: field, Message: label(field) + " is required"}
}

func label(field string) string {
	if l, ok := fieldLabels[field]; ok {
		return l
	}
	return field
}

// OutOfRange reports a numeric field above max.
func OutOfRange(field string, max int) *Error {
	return &Error{Code: CodeValidation, Field: field, Message: fmt.Sprintf("%s must be at most %d", label(field), max)}
}

func DuplicateEmail() *Error {
	return &Error{Code: CodeDuplicateEmail, Message: "A member with this email already exists"}
}

func Storage(err error) *Error {
	return &Error{Code: CodeStorage, Message: "Server error", Err: err}
}
