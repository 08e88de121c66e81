package registration

import (
	"time"

	"github.com/mmu-rhsf/fellowhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FormView is a form as shown to its owner, with derived acceptance state.
type FormView struct {
	ID                   primitive.ObjectID `json:"id"`
	FormID               string             `json:"formId"`
	FormURL              string             `json:"formUrl"`
	Title                string             `json:"title"`
	Description          string             `json:"description"`
	IsActive             bool               `json:"isActive"`
	IsExpired            bool               `json:"isExpired"`
	IsFull               bool               `json:"isFull"`
	CanAcceptSubmissions bool               `json:"canAcceptSubmissions"`
	ExpiresAt            time.Time          `json:"expiresAt"`
	MaxSubmissions       int                `json:"maxSubmissions"`
	CurrentSubmissions   int                `json:"currentSubmissions"`
	Submissions          []ReceiptView      `json:"submissions"`
	CreatedBy            string             `json:"createdBy"`
	CreatedAt            time.Time          `json:"createdAt"`
	UpdatedAt            time.Time          `json:"updatedAt"`
}

// ReceiptView is one accepted submission. Member is nil when the member
// record no longer exists.
type ReceiptView struct {
	MemberID    primitive.ObjectID `json:"memberId"`
	SubmittedAt time.Time          `json:"submittedAt"`
	IPAddress   string             `json:"ipAddress,omitempty"`
	UserAgent   string             `json:"userAgent,omitempty"`
	Member      *MemberRef         `json:"member,omitempty"`
}

type MemberRef struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Department string `json:"department"`
}

// PublicSummary is all an unauthenticated caller learns about a form.
type PublicSummary struct {
	FormID             string `json:"formId"`
	Title              string `json:"title"`
	Description        string `json:"description"`
	CurrentSubmissions int    `json:"currentSubmissions"`
	MaxSubmissions     int    `json:"maxSubmissions"`
}

func (s *Service) view(f models.RegistrationForm, now time.Time, members map[primitive.ObjectID]models.Member) FormView {
	a := f.Acceptance(now)
	receipts := make([]ReceiptView, 0, len(f.Submissions))
	for _, r := range f.Submissions {
		rv := ReceiptView{
			MemberID:    r.MemberID,
			SubmittedAt: r.SubmittedAt,
			IPAddress:   r.IPAddress,
			UserAgent:   r.UserAgent,
		}
		if m, ok := members[r.MemberID]; ok {
			rv.Member = &MemberRef{Name: m.Name, Email: m.Email, Department: m.Department}
		}
		receipts = append(receipts, rv)
	}
	return FormView{
		ID:                   f.ID,
		FormID:               f.FormID,
		FormURL:              s.FormURL(f.FormID),
		Title:                f.Title,
		Description:          f.Description,
		IsActive:             a.IsActive,
		IsExpired:            a.IsExpired,
		IsFull:               a.IsFull,
		CanAcceptSubmissions: a.CanAcceptSubmissions,
		ExpiresAt:            f.ExpiresAt,
		MaxSubmissions:       f.MaxSubmissions,
		CurrentSubmissions:   f.CurrentSubmissions,
		Submissions:          receipts,
		CreatedBy:            f.CreatedBy,
		CreatedAt:            f.CreatedAt,
		UpdatedAt:            f.UpdatedAt,
	}
}
