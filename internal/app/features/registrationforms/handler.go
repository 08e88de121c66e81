// internal/app/features/registrationforms/handler.go
package registrationforms

import (
	"context"
	"errors"
	"net/http"

	"github.com/mmu-rhsf/fellowhub/internal/app/registration"
	"github.com/mmu-rhsf/fellowhub/internal/app/system/auditlog"
	"github.com/mmu-rhsf/fellowhub/internal/app/system/respond"
	"go.uber.org/zap"
)

// Service is the registration workflow the handlers drive.
// *registration.Service satisfies it.
type Service interface {
	Create(ctx context.Context, in registration.CreateInput, owner string) (registration.FormView, error)
	ListForms(ctx context.Context, owner string) ([]registration.FormView, error)
	GetPublicFormSummary(ctx context.Context, formID string) (registration.PublicSummary, error)
	Submit(ctx context.Context, formID string, in registration.SubmitInput, origin registration.Origin) (registration.SubmitResult, error)
	Deactivate(ctx context.Context, formID, owner string) error
	Delete(ctx context.Context, formID, owner string) error
}

type Handler struct {
	Svc   Service
	Audit *auditlog.Logger
	Log   *zap.Logger
}

// NewHandler constructs the registration forms handler. audit may be nil.
func NewHandler(svc Service, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{Svc: svc, Audit: audit, Log: logger}
}

// writeError maps a service error to the envelope. Storage failures get
// failMsg instead of the generic service message.
func (h *Handler) writeError(w http.ResponseWriter, err error, failMsg string) {
	var e *registration.Error
	if !errors.As(err, &e) {
		h.Log.Error("unexpected registration error", zap.Error(err))
		e = registration.Storage(err)
	}
	msg := e.Message
	if e.Code == registration.CodeStorage && failMsg != "" {
		msg = failMsg
	}
	respond.JSON(w, e.Status(), respond.Envelope{
		Success: false,
		Code:    e.Code,
		Reason:  e.Reason,
		Field:   e.Field,
		Message: msg,
	})
}

func badBody(w http.ResponseWriter) {
	respond.Error(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body")
}
