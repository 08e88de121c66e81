package registrationforms

import (
	"errors"
	"io"
	"net/http"

	"github.com/mmu-rhsf/fellowhub/internal/app/registration"
	"github.com/mmu-rhsf/fellowhub/internal/app/system/auth"
	"github.com/mmu-rhsf/fellowhub/internal/app/system/respond"
	"github.com/mmu-rhsf/fellowhub/internal/app/system/timeouts"
)

// HandleGenerate handles POST /api/registration/generate.
// Every body field is optional; an empty body creates a form with defaults.
func (h *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	var in registration.CreateInput
	if err := respond.Decode(r, &in); err != nil && !errors.Is(err, io.EOF) {
		badBody(w)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "registration generate")
	defer cancel()

	v, err := h.Svc.Create(ctx, in, u.ID)
	if err != nil {
		h.writeError(w, err, "Failed to generate registration form")
		return
	}

	h.Audit.FormCreated(ctx, r, u.ID, v.FormID, v.Title)
	respond.OK(w, http.StatusCreated, "Registration form created successfully", v)
}
