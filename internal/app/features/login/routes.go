// internal/app/features/login/routes.go
package login

import (
	"github.com/go-chi/chi/v5"
	"github.com/mmu-rhsf/fellowhub/internal/app/system/auth"
	"github.com/mmu-rhsf/fellowhub/internal/app/system/ratelimit"
)

// Routes mounts the auth endpoints (typically under "/api/auth").
func Routes(h *Handler, authn *auth.Authenticator) chi.Router {
	r := chi.NewRouter()
	r.Use(ratelimit.Middleware(h.Limit, h.rateLimited))

	r.Post("/login", h.HandleLogin)
	r.With(authn.RequireUser).Get("/profile", h.ServeProfile)
	r.With(authn.RequireUser).Post("/logout", h.HandleLogout)
	return r
}
