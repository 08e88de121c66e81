// internal/app/features/auditlog/routes.go
package auditlog

import (
	"github.com/go-chi/chi/v5"
	"github.com/mmu-rhsf/fellowhub/internal/app/system/auth"
)

// Routes mounts the audit log routes (typically under "/api/audit").
// Access is restricted to admins.
func Routes(h *Handler, authn *auth.Authenticator) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(authn.RequireUser)
		pr.Use(auth.RequireRole(auth.RoleAdmin))

		pr.Get("/", h.ServeList)
	})

	return r
}
