package registrationforms

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mmu-rhsf/fellowhub/internal/app/system/auth"
	"github.com/mmu-rhsf/fellowhub/internal/app/system/respond"
	"github.com/mmu-rhsf/fellowhub/internal/app/system/timeouts"
)

// HandleDeactivate handles PATCH /api/registration/forms/{formId}/deactivate.
func (h *Handler) HandleDeactivate(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)
	formID := chi.URLParam(r, "formId")

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "registration deactivate")
	defer cancel()

	if err := h.Svc.Deactivate(ctx, formID, u.ID); err != nil {
		h.writeError(w, err, "Failed to deactivate form")
		return
	}
	h.Audit.FormDeactivated(ctx, r, u.ID, formID)
	respond.OK(w, http.StatusOK, "Registration form deactivated successfully", nil)
}

// HandleDelete handles DELETE /api/registration/forms/{formId}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)
	formID := chi.URLParam(r, "formId")

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "registration delete")
	defer cancel()

	if err := h.Svc.Delete(ctx, formID, u.ID); err != nil {
		h.writeError(w, err, "Failed to delete form")
		return
	}
	h.Audit.FormDeleted(ctx, r, u.ID, formID)
	respond.OK(w, http.StatusOK, "Registration form deleted successfully", nil)
}
