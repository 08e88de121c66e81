// Package auth authenticates API callers with bearer tokens and scopes
// administration routes to a role.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/mmu-rhsf/fellowhub/internal/app/system/normalize"
	"github.com/mmu-rhsf/fellowhub/internal/app/system/respond"
	"go.uber.org/zap"
)

// Roles
const (
	RoleAdmin = "admin"
)

// Error codes returned in the response envelope.
const (
	CodeNoToken                 = "NO_TOKEN"
	CodeInvalidToken            = "INVALID_TOKEN"
	CodeTokenExpired            = "TOKEN_EXPIRED"
	CodeInsufficientPermissions = "INSUFFICIENT_PERMISSIONS"
)

// User is the authenticated caller. ID is the owner identity recorded on
// the forms the caller creates.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role"`
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the user placed in context by Middleware.
func CurrentUser(r *http.Request) (*User, bool) {
	u, ok := r.Context().Value(currentUserKey).(*User)
	return u, ok
}

// WithTestUser injects u directly, bypassing token verification.
func WithTestUser(r *http.Request, u *User) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

// Authenticator verifies bearer tokens on incoming requests.
type Authenticator struct {
	tokens *TokenManager
	log    *zap.Logger
}

func NewAuthenticator(tokens *TokenManager, logger *zap.Logger) *Authenticator {
	return &Authenticator{tokens: tokens, log: logger}
}

// tokenFrom reads "Authorization: Bearer <t>", falling back to ?token=<t>.
func tokenFrom(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if scheme, t, ok := strings.Cut(h, " "); ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(t)
		}
	}
	return strings.TrimSpace(r.URL.Query().Get("token"))
}

// RequireUser rejects requests without a valid token with 401.
func (a *Authenticator) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t := tokenFrom(r)
		if t == "" {
			respond.Error(w, http.StatusUnauthorized, CodeNoToken, "Access denied. No token provided.")
			return
		}
		u, err := a.tokens.Parse(t)
		if err != nil {
			if errors.Is(err, ErrExpiredToken) {
				respond.Error(w, http.StatusUnauthorized, CodeTokenExpired, "Token has expired.")
				return
			}
			a.log.Debug("rejected bearer token", zap.Error(err))
			respond.Error(w, http.StatusUnauthorized, CodeInvalidToken, "Invalid token.")
			return
		}
		next.ServeHTTP(w, WithTestUser(r, &u))
	})
}

// RequireRole allows only users whose role is in allowed. It must run
// after RequireUser.
func RequireRole(allowed ...string) func(http.Handler) http.Handler {
	set := make(map[string]struct{}, len(allowed))
	for _, role := range allowed {
		set[normalize.Role(role)] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := CurrentUser(r)
			if !ok {
				respond.Error(w, http.StatusUnauthorized, CodeNoToken, "Access denied. No token provided.")
				return
			}
			if _, has := set[normalize.Role(u.Role)]; !has {
				respond.Error(w, http.StatusForbidden, CodeInsufficientPermissions, "Access denied. Insufficient permissions.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
