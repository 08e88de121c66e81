// internal/app/features/login/handler.go
package login

import (
	"crypto/subtle"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/mmu-rhsf/fellowhub/internal/app/system/auditlog"
	"github.com/mmu-rhsf/fellowhub/internal/app/system/auth"
	"github.com/mmu-rhsf/fellowhub/internal/app/system/ratelimit"
	"github.com/mmu-rhsf/fellowhub/internal/app/system/respond"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Admin is the single configured administrator account.
type Admin struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string // bcrypt
}

type Handler struct {
	Admin    Admin
	Tokens   *auth.TokenManager
	Limit    *ratelimit.Limiter // per-IP attempts; cleared on success
	AuditLog *auditlog.Logger
	Log      *zap.Logger
}

func NewHandler(admin Admin, tokens *auth.TokenManager, limit *ratelimit.Limiter, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Admin:    admin,
		Tokens:   tokens,
		Limit:    limit,
		AuditLog: audit,
		Log:      logger,
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt int64     `json:"expiresAt"`
	User      auth.User `json:"user"`
}

func (h *Handler) user() auth.User {
	return auth.User{
		ID:       h.Admin.ID,
		Username: h.Admin.Username,
		Email:    h.Admin.Email,
		Role:     auth.RoleAdmin,
	}
}

// checkPassword always runs bcrypt so an unknown username costs the same
// as a wrong password.
func (h *Handler) checkPassword(username, password string) bool {
	hashErr := bcrypt.CompareHashAndPassword([]byte(h.Admin.PasswordHash), []byte(password))
	nameOK := subtle.ConstantTimeCompare([]byte(username), []byte(h.Admin.Username)) == 1
	return nameOK && hashErr == nil && h.Admin.Username != ""
}

// HandleLogin handles POST /api/auth/login.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := respond.Decode(r, &req); err != nil && !errors.Is(err, io.EOF) {
		respond.Error(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body")
		return
	}
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		respond.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Username and password are required")
		return
	}

	if !h.checkPassword(username, req.Password) {
		h.AuditLog.LoginFailed(r.Context(), r, username)
		respond.Error(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid credentials")
		return
	}

	u := h.user()
	token, exp, err := h.Tokens.Issue(u)
	if err != nil {
		h.Log.Error("issue token failed", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "SERVER_ERROR", "Error during login")
		return
	}

	h.Limit.Reset(ratelimit.ClientIP(r))
	h.AuditLog.LoginSuccess(r.Context(), r, u.ID, u.Username)
	h.Log.Info("admin logged in", zap.String("username", u.Username))
	respond.OK(w, http.StatusOK, "Login successful", loginResponse{
		Token:     token,
		ExpiresAt: exp.Unix(),
		User:      u,
	})
}

// ServeProfile handles GET /api/auth/profile.
func (h *Handler) ServeProfile(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		respond.Error(w, http.StatusUnauthorized, auth.CodeNoToken, "Access denied. No token provided.")
		return
	}
	respond.OK(w, http.StatusOK, "", map[string]auth.User{"user": *u})
}

// HandleLogout handles POST /api/auth/logout. Tokens are stateless, so the
// client discards its copy.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	respond.OK(w, http.StatusOK, "Logout successful", nil)
}

// rateLimited rejects a throttled login attempt and records it.
func (h *Handler) rateLimited(w http.ResponseWriter, r *http.Request) {
	h.AuditLog.LoginRateLimited(r.Context(), r)
	respond.TooManyRequests(w, r)
}
