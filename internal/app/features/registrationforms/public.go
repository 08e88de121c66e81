package registrationforms

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mmu-rhsf/fellowhub/internal/app/system/respond"
	"github.com/mmu-rhsf/fellowhub/internal/app/system/timeouts"
)

// ServePublicForm handles GET /api/registration/forms/{formId}. No auth.
func (h *Handler) ServePublicForm(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "registration public form")
	defer cancel()

	s, err := h.Svc.GetPublicFormSummary(ctx, chi.URLParam(r, "formId"))
	if err != nil {
		h.writeError(w, err, "Failed to fetch form details")
		return
	}
	respond.OK(w, http.StatusOK, "", s)
}
