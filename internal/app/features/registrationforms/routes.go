// internal/app/features/registrationforms/routes.go
package registrationforms

import (
	"github.com/go-chi/chi/v5"
	"github.com/mmu-rhsf/fellowhub/internal/app/system/auth"
	"github.com/mmu-rhsf/fellowhub/internal/app/system/ratelimit"
	"github.com/mmu-rhsf/fellowhub/internal/app/system/respond"
)

// Routes mounts the registration routes (typically under "/api/registration").
//
// Reading a form's summary and submitting it are public; submission is rate
// limited per client IP. Everything else requires an admin token.
func Routes(h *Handler, authn *auth.Authenticator, submitLimit *ratelimit.Limiter) chi.Router {
	r := chi.NewRouter()

	r.Get("/forms/{formId}", h.ServePublicForm)
	r.With(ratelimit.Middleware(submitLimit, respond.TooManyRequests)).
		Post("/forms/{formId}/submit", h.HandleSubmit)

	r.Group(func(pr chi.Router) {
		pr.Use(authn.RequireUser)
		pr.Use(auth.RequireRole(auth.RoleAdmin))

		pr.Post("/generate", h.HandleGenerate)
		pr.Get("/forms", h.ServeList)
		pr.Patch("/forms/{formId}/deactivate", h.HandleDeactivate)
		pr.Delete("/forms/{formId}", h.HandleDelete)
	})

	return r
}
