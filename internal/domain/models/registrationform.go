// internal/domain/models/registrationform.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Reasons a form refuses submissions, in the order they are reported.
const (
	ReasonExpired  = "expired"
	ReasonFull     = "full"
	ReasonInactive = "inactive"
)

// RegistrationForm is a shareable, capacity- and time-bounded public
// self-registration endpoint.
//
// NOTE:
//   - FormID is the public lookup key; ID is never exposed as one.
//   - CurrentSubmissions always equals len(Submissions). Both are only
//     changed together, by a single update.
//   - Expiry/capacity state is never stored; call Acceptance on every read.
type RegistrationForm struct {
	ID                 primitive.ObjectID  `bson:"_id" json:"id"`
	FormID             string              `bson:"form_id" json:"form_id"`
	Title              string              `bson:"title" json:"title"`
	Description        string              `bson:"description" json:"description"`
	IsActive           bool                `bson:"is_active" json:"is_active"`
	ExpiresAt          time.Time           `bson:"expires_at" json:"expires_at"`
	MaxSubmissions     int                 `bson:"max_submissions" json:"max_submissions"`
	CurrentSubmissions int                 `bson:"current_submissions" json:"current_submissions"`
	Submissions        []SubmissionReceipt `bson:"submissions" json:"submissions"`
	CreatedBy          string              `bson:"created_by" json:"created_by"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// SubmissionReceipt records one accepted submission. IP and UserAgent are
// kept for audit only.
type SubmissionReceipt struct {
	MemberID    primitive.ObjectID `bson:"member_id" json:"member_id"`
	SubmittedAt time.Time          `bson:"submitted_at" json:"submitted_at"`
	IPAddress   string             `bson:"ip_address,omitempty" json:"ip_address,omitempty"`
	UserAgent   string             `bson:"user_agent,omitempty" json:"user_agent,omitempty"`
}

// Acceptance is the derived state of a form at a point in time.
type Acceptance struct {
	IsActive             bool
	IsExpired            bool
	IsFull               bool
	CanAcceptSubmissions bool
}

// Acceptance evaluates the form against now. It has no side effects.
func (f RegistrationForm) Acceptance(now time.Time) Acceptance {
	expired := now.After(f.ExpiresAt)
	full := f.CurrentSubmissions >= f.MaxSubmissions
	return Acceptance{
		IsActive:             f.IsActive,
		IsExpired:            expired,
		IsFull:               full,
		CanAcceptSubmissions: f.IsActive && !expired && !full,
	}
}

// Reason returns the first refusal reason (expired, then full, then
// inactive), or "" when submissions are accepted.
func (a Acceptance) Reason() string {
	switch {
	case a.IsExpired:
		return ReasonExpired
	case a.IsFull:
		return ReasonFull
	case !a.IsActive:
		return ReasonInactive
	}
	return ""
}
