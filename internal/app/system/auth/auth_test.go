package auth_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mmu-rhsf/fellowhub/internal/app/system/auth"
	"go.uber.org/zap"
)

func newAuthenticator(ttl time.Duration) (*auth.Authenticator, *auth.TokenManager) {
	tm := auth.NewTokenManager("test-secret", ttl)
	return auth.NewAuthenticator(tm, zap.NewNop()), tm
}

func okHandler(called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	})
}

func decodeCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return body.Code
}

func TestRequireUser_NoToken(t *testing.T) {
	a, _ := newAuthenticator(time.Hour)
	called := false
	rec := httptest.NewRecorder()

	a.RequireUser(okHandler(&called)).ServeHTTP(rec, httptest.NewRequest("GET", "/api/registration/forms", nil))

	if called {
		t.Error("handler should not be called")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if code := decodeCode(t, rec); code != auth.CodeNoToken {
		t.Errorf("code: got %q, want %q", code, auth.CodeNoToken)
	}
}

func TestRequireUser_BearerHeader(t *testing.T) {
	a, tm := newAuthenticator(time.Hour)
	token, _, err := tm.Issue(auth.User{ID: "admin", Username: "admin", Role: auth.RoleAdmin})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	var got *auth.User
	h := a.RequireUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = auth.CurrentUser(r)
	}))
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	h.ServeHTTP(httptest.NewRecorder(), req)

	if got == nil {
		t.Fatal("expected user in context")
	}
	if got.ID != "admin" || got.Role != auth.RoleAdmin {
		t.Errorf("user: got %+v", got)
	}
}

func TestRequireUser_QueryToken(t *testing.T) {
	a, tm := newAuthenticator(time.Hour)
	token, _, _ := tm.Issue(auth.User{ID: "admin", Role: auth.RoleAdmin})

	called := false
	rec := httptest.NewRecorder()
	a.RequireUser(okHandler(&called)).ServeHTTP(rec, httptest.NewRequest("GET", "/?token="+token, nil))

	if !called {
		t.Errorf("handler not called, status %d", rec.Code)
	}
}

func TestRequireUser_InvalidToken(t *testing.T) {
	a, _ := newAuthenticator(time.Hour)
	other := auth.NewTokenManager("other-secret", time.Hour)
	forged, _, _ := other.Issue(auth.User{ID: "admin", Role: auth.RoleAdmin})

	for name, tok := range map[string]string{"garbage": "not-a-jwt", "wrong secret": forged} {
		t.Run(name, func(t *testing.T) {
			called := false
			rec := httptest.NewRecorder()
			req := httptest.NewRequest("GET", "/", nil)
			req.Header.Set("Authorization", "Bearer "+tok)
			a.RequireUser(okHandler(&called)).ServeHTTP(rec, req)

			if called {
				t.Error("handler should not be called")
			}
			if code := decodeCode(t, rec); code != auth.CodeInvalidToken {
				t.Errorf("code: got %q, want %q", code, auth.CodeInvalidToken)
			}
		})
	}
}

func TestRequireUser_ExpiredToken(t *testing.T) {
	a, tm := newAuthenticator(-time.Minute)
	token, _, _ := tm.Issue(auth.User{ID: "admin", Role: auth.RoleAdmin})

	called := false
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	a.RequireUser(okHandler(&called)).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if code := decodeCode(t, rec); code != auth.CodeTokenExpired {
		t.Errorf("code: got %q, want %q", code, auth.CodeTokenExpired)
	}
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name   string
		user   *auth.User
		status int
	}{
		{"no user", nil, http.StatusUnauthorized},
		{"wrong role", &auth.User{ID: "x", Role: "member"}, http.StatusForbidden},
		{"admin", &auth.User{ID: "x", Role: auth.RoleAdmin}, http.StatusOK},
		{"case insensitive", &auth.User{ID: "x", Role: "Admin"}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			req := httptest.NewRequest("GET", "/", nil)
			if tt.user != nil {
				req = auth.WithTestUser(req, tt.user)
			}
			rec := httptest.NewRecorder()
			auth.RequireRole(auth.RoleAdmin)(okHandler(&called)).ServeHTTP(rec, req)

			if rec.Code != tt.status {
				t.Errorf("status: got %d, want %d", rec.Code, tt.status)
			}
			if called != (tt.status == http.StatusOK) {
				t.Errorf("handler called = %v", called)
			}
		})
	}
}

func TestTokenManager_RoundTripsClaims(t *testing.T) {
	tm := auth.NewTokenManager("s", 24*time.Hour)
	in := auth.User{ID: "admin", Username: "root", Email: "root@example.com", Role: auth.RoleAdmin}

	token, exp, err := tm.Issue(in)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if d := time.Until(exp); d < 23*time.Hour || d > 25*time.Hour {
		t.Errorf("expiry %v not about 24h away", exp)
	}

	out, err := tm.Parse(token)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if out != in {
		t.Errorf("Parse: got %+v, want %+v", out, in)
	}
}
