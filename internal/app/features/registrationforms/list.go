package registrationforms

import (
	"net/http"

	"github.com/mmu-rhsf/fellowhub/internal/app/system/auth"
	"github.com/mmu-rhsf/fellowhub/internal/app/system/respond"
	"github.com/mmu-rhsf/fellowhub/internal/app/system/timeouts"
)

// ServeList handles GET /api/registration/forms: the caller's forms, newest first.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "registration list")
	defer cancel()

	forms, err := h.Svc.ListForms(ctx, u.ID)
	if err != nil {
		h.writeError(w, err, "Failed to fetch registration forms")
		return
	}
	respond.OK(w, http.StatusOK, "", forms)
}
