package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/mmu-rhsf/fellowhub/internal/app/system/auth"
	"github.com/mmu-rhsf/fellowhub/internal/app/system/respond"
)

// AdminUser returns an authenticated administrator.
func AdminUser() *auth.User {
	return &auth.User{
		ID:       "admin",
		Username: "admin",
		Email:    "admin@test.com",
		Role:     auth.RoleAdmin,
	}
}

// NewRequest creates a request with an optional JSON body.
func NewRequest(method, target, body string) *http.Request {
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	r := httptest.NewRequest(method, target, rdr)
	if body != "" {
		r.Header.Set("Content-Type", "application/json")
	}
	return r
}

// NewAuthenticatedRequest creates a request with user already in context.
func NewAuthenticatedRequest(method, target, body string, user *auth.User) *http.Request {
	return auth.WithTestUser(NewRequest(method, target, body), user)
}

// ResponseRecorder wraps httptest.ResponseRecorder with helper methods.
type ResponseRecorder struct {
	*httptest.ResponseRecorder
}

func NewRecorder() *ResponseRecorder {
	return &ResponseRecorder{httptest.NewRecorder()}
}

type errorfer interface {
	Errorf(string, ...any)
	Fatalf(string, ...any)
	Helper()
}

// AssertStatus checks the response status code.
func (r *ResponseRecorder) AssertStatus(t errorfer, expected int) {
	t.Helper()
	if r.Code != expected {
		t.Errorf("status code: got %d, want %d (body %s)", r.Code, expected, r.Body.String())
	}
}

// Envelope decodes the response body. data, when non-nil, receives the
// envelope's data field.
func (r *ResponseRecorder) Envelope(t errorfer, data any) respond.Envelope {
	t.Helper()
	var env struct {
		respond.Envelope
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(r.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (body %s)", err, r.Body.String())
	}
	if data != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, data); err != nil {
			t.Fatalf("decode envelope data: %v", err)
		}
	}
	return env.Envelope
}
