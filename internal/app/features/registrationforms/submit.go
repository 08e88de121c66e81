package registrationforms

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mmu-rhsf/fellowhub/internal/app/registration"
	"github.com/mmu-rhsf/fellowhub/internal/app/system/ratelimit"
	"github.com/mmu-rhsf/fellowhub/internal/app/system/respond"
	"github.com/mmu-rhsf/fellowhub/internal/app/system/timeouts"
)

// HandleSubmit handles POST /api/registration/forms/{formId}/submit. No auth.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	formID := chi.URLParam(r, "formId")

	var in registration.SubmitInput
	if err := respond.Decode(r, &in); err != nil {
		badBody(w)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "registration submit")
	defer cancel()

	res, err := h.Svc.Submit(ctx, formID, in, registration.Origin{
		RemoteAddr: ratelimit.ClientIP(r),
		UserAgent:  r.UserAgent(),
	})
	if err != nil {
		var e *registration.Error
		if errors.As(err, &e) {
			detail := e.Reason
			if detail == "" {
				detail = e.Field
			}
			h.Audit.RegistrationRejected(ctx, r, formID, e.Code, detail)
		}
		h.writeError(w, err, "Failed to submit registration")
		return
	}

	h.Audit.RegistrationSubmitted(ctx, r, formID, res.MemberID)
	respond.OK(w, http.StatusCreated, "Registration submitted successfully! Welcome to the fellowship.", res)
}
