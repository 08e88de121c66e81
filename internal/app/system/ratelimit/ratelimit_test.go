package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func newTestLimiter(limit int, period time.Duration) (*Limiter, *fakeClock) {
	clk := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	l := New(limit, period)
	l.now = clk.now
	return l, clk
}

func TestLimiter_AllowWithinWindow(t *testing.T) {
	l, clk := newTestLimiter(2, time.Minute)

	if !l.Allow("a") || !l.Allow("a") {
		t.Fatal("first two requests should be allowed")
	}
	if l.Allow("a") {
		t.Error("third request should be limited")
	}
	if !l.Allow("b") {
		t.Error("other keys have their own window")
	}

	clk.t = clk.t.Add(time.Minute + time.Second)
	if !l.Allow("a") {
		t.Error("request after window expiry should be allowed")
	}
}

func TestLimiter_ZeroLimitDisables(t *testing.T) {
	l := New(0, time.Minute)
	for i := 0; i < 100; i++ {
		if !l.Allow("x") {
			t.Fatalf("request %d limited with limit 0", i)
		}
	}
}

func TestLimiter_ResetAndSweep(t *testing.T) {
	l, clk := newTestLimiter(1, time.Minute)
	l.Allow("a")
	l.Allow("b")

	l.Reset("a")
	if !l.Allow("a") {
		t.Error("Reset should clear the window")
	}

	clk.t = clk.t.Add(2 * time.Minute)
	if n := l.Sweep(); n != 2 {
		t.Errorf("Sweep removed %d windows, want 2", n)
	}
}

func TestMiddleware(t *testing.T) {
	l, _ := newTestLimiter(1, time.Minute)
	rejected := 0
	h := Middleware(l, func(w http.ResponseWriter, r *http.Request) {
		rejected++
		w.WriteHeader(http.StatusTooManyRequests)
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.RemoteAddr = "10.0.0.1:5555"

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("first request: got %d, want %d", rec.Code, http.StatusNoContent)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("second request: got %d, want %d", rec.Code, http.StatusTooManyRequests)
	}
	if rec.Header().Get("Retry-After") != "60" {
		t.Errorf("Retry-After: got %q, want %q", rec.Header().Get("Retry-After"), "60")
	}
	if rejected != 1 {
		t.Errorf("reject called %d times, want 1", rejected)
	}
}

func TestClientIP_IgnoresForwardedHeaders(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"remote addr", nil, "192.0.2.7:1234", "192.0.2.7"},
		{"remote addr without port", nil, "192.0.2.7", "192.0.2.7"},
		{"ipv6 remote addr", nil, "[2001:db8::1]:443", "2001:db8::1"},
		{"forwarded for", map[string]string{"X-Forwarded-For": "203.0.113.1"}, "192.0.2.7:1", "192.0.2.7"},
		{"real ip", map[string]string{"X-Real-IP": "198.51.100.4"}, "192.0.2.7:1", "192.0.2.7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := ClientIP(r); got != tt.want {
				t.Errorf("ClientIP: got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseTrustedProxies(t *testing.T) {
	got, err := ParseTrustedProxies(" 10.0.0.0/8, 127.0.0.1 ,,::1")
	if err != nil {
		t.Fatalf("ParseTrustedProxies: %v", err)
	}
	want := []string{"10.0.0.0/8", "127.0.0.1/32", "::1/128"}
	if len(got) != len(want) {
		t.Fatalf("got %d prefixes, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].String() != want[i] {
			t.Errorf("prefix %d: got %s, want %s", i, got[i], want[i])
		}
	}

	if got, err := ParseTrustedProxies(""); err != nil || len(got) != 0 {
		t.Errorf("blank list: got %v, %v", got, err)
	}
	if _, err := ParseTrustedProxies("10.0.0.0/8, proxy.internal"); err == nil {
		t.Error("expected error for hostname entry")
	}
}

func TestTrustProxies(t *testing.T) {
	trusted, err := ParseTrustedProxies("10.0.0.0/8")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		trusted []netip.Prefix
		remote  string
		headers map[string]string
		want    string
	}{
		{"no trusted proxies ignores header", nil, "10.0.0.2:1", map[string]string{"X-Forwarded-For": "203.0.113.1"}, "10.0.0.2"},
		{"untrusted peer cannot spoof", trusted, "192.0.2.50:1", map[string]string{"X-Forwarded-For": "203.0.113.1"}, "192.0.2.50"},
		{"trusted peer forwards client", trusted, "10.0.0.2:1", map[string]string{"X-Forwarded-For": "203.0.113.1"}, "203.0.113.1"},
		{"rightmost untrusted hop wins", trusted, "10.0.0.2:1", map[string]string{"X-Forwarded-For": "1.1.1.1, 203.0.113.1, 10.0.0.9"}, "203.0.113.1"},
		{"all hops trusted uses first", trusted, "10.0.0.2:1", map[string]string{"X-Forwarded-For": "10.0.0.7, 10.0.0.9"}, "10.0.0.7"},
		{"garbage hop keeps peer", trusted, "10.0.0.2:1", map[string]string{"X-Forwarded-For": "not-an-ip"}, "10.0.0.2"},
		{"real ip from trusted peer", trusted, "10.0.0.2:1", map[string]string{"X-Real-IP": " 198.51.100.4 "}, "198.51.100.4"},
		{"trusted peer without headers", trusted, "10.0.0.2:1", nil, "10.0.0.2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			h := TrustProxies(tt.trusted)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = ClientIP(r)
			}))
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			h.ServeHTTP(httptest.NewRecorder(), r)
			if got != tt.want {
				t.Errorf("client ip: got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMiddleware_RotatingForwardedForStillLimited(t *testing.T) {
	l := New(1, time.Minute)
	h := Middleware(l, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	for i, xff := range []string{"203.0.113.1", "203.0.113.2"} {
		r := httptest.NewRequest(http.MethodPost, "/", nil)
		r.RemoteAddr = "192.0.2.7:1234"
		r.Header.Set("X-Forwarded-For", xff)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		if i == 1 && rec.Code != http.StatusTooManyRequests {
			t.Errorf("second request with new X-Forwarded-For: got %d, want 429", rec.Code)
		}
	}
}
