package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	domainAccount "courtside/internal/domain/account"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

// TestSessionStore_CreateGetDelete covers the session lifecycle.
func TestSessionStore_CreateGetDelete(t *testing.T) {
	ss := NewSessionStore()
	token, err := ss.Create("acc-1", "riley@test.com", domainAccount.RolePlayer)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	sess, ok := ss.Get(token)
	if !ok {
		t.Fatal("expected session to exist")
	}
	if sess.AccountID != "acc-1" || sess.Role != domainAccount.RolePlayer {
		t.Errorf("session = %+v", sess)
	}

	ss.Delete(token)
	if _, ok := ss.Get(token); ok {
		t.Error("expected session to be gone after Delete")
	}
}

// TestSessionStore_Expiry verifies sessions older than 24h are rejected.
func TestSessionStore_Expiry(t *testing.T) {
	ss := NewSessionStore()
	token, _ := ss.Create("acc-1", "riley@test.com", domainAccount.RolePlayer)

	ss.mu.Lock()
	sess := ss.sessions[token]
	sess.CreatedAt = time.Now().Add(-25 * time.Hour)
	ss.sessions[token] = sess
	ss.mu.Unlock()

	if _, ok := ss.Get(token); ok {
		t.Error("expected expired session to be rejected")
	}
}

// TestAuth_InjectsSession verifies the cookie is resolved into context.
func TestAuth_InjectsSession(t *testing.T) {
	ss := NewSessionStore()
	token, _ := ss.Create("acc-1", "riley@test.com", domainAccount.RolePlayer)

	var got Session
	var found bool
	handler := Auth(ss)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, found = GetSessionFromContext(r.Context())
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: "courtside_session", Value: token})
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if !found || got.AccountID != "acc-1" {
		t.Errorf("session = %+v, found = %v", got, found)
	}
}

// TestAuth_PassesThroughWithoutCookie verifies anonymous requests proceed.
func TestAuth_PassesThroughWithoutCookie(t *testing.T) {
	ss := NewSessionStore()
	handler := Auth(ss)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetSessionFromContext(r.Context()); ok {
			t.Error("expected no session")
		}
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))
	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rr.Code)
	}
}

// TestRequireRole covers the allowed, forbidden and anonymous paths.
func TestRequireRole(t *testing.T) {
	handler := RequireRole(domainAccount.RoleAdmin)(okHandler())

	t.Run("admin allowed", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		ctx := ContextWithSession(req.Context(), Session{AccountID: "a", Role: domainAccount.RoleAdmin})
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req.WithContext(ctx))
		if rr.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rr.Code)
		}
	})

	t.Run("player forbidden", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		ctx := ContextWithSession(req.Context(), Session{AccountID: "p", Role: domainAccount.RolePlayer})
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req.WithContext(ctx))
		if rr.Code != http.StatusForbidden {
			t.Errorf("status = %d, want 403", rr.Code)
		}
	})

	t.Run("anonymous redirected", func(t *testing.T) {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))
		if rr.Code != http.StatusSeeOther {
			t.Errorf("status = %d, want 303", rr.Code)
		}
	})
}

// TestRateLimiter_Allows verifies requests under the limit pass.
func TestRateLimiter_Allows(t *testing.T) {
	rl := NewRateLimiter(3, time.Second)
	for i := 0; i < 3; i++ {
		if !rl.Allow("1.2.3.4") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
}

// TestRateLimiter_Blocks verifies the limit is enforced per IP.
func TestRateLimiter_Blocks(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	rl.Allow("1.2.3.4")
	rl.Allow("1.2.3.4")
	if rl.Allow("1.2.3.4") {
		t.Error("third request should be blocked")
	}
	// A different IP has its own bucket.
	if !rl.Allow("5.6.7.8") {
		t.Error("other IP should be allowed")
	}
}

// TestRateLimitMiddleware verifies the 429 response.
func TestRateLimitMiddleware(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	handler := RateLimit(rl)(okHandler())

	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "9.9.9.9:1234"

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("first request: status = %d, want 200", rr.Code)
	}

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusTooManyRequests {
		t.Errorf("second request: status = %d, want 429", rr.Code)
	}
}

// TestSecurityHeaders verifies the OWASP headers are set.
func TestSecurityHeaders(t *testing.T) {
	handler := SecurityHeaders(okHandler())
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))

	if rr.Header().Get("X-Frame-Options") != "DENY" {
		t.Errorf("X-Frame-Options = %q", rr.Header().Get("X-Frame-Options"))
	}
	if rr.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", rr.Header().Get("X-Content-Type-Options"))
	}
	if !strings.Contains(rr.Header().Get("Content-Security-Policy"), "default-src 'self'") {
		t.Errorf("CSP = %q", rr.Header().Get("Content-Security-Policy"))
	}
}

// TestCSRF_JSONExempt verifies JSON API requests bypass CSRF checks.
func TestCSRF_JSONExempt(t *testing.T) {
	key := make([]byte, 32)
	handler := CSRF(key)(okHandler())

	req := httptest.NewRequest("POST", "/api/login", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("JSON request: status = %d, want 200", rr.Code)
	}
}

// TestCSRF_FormBlocked verifies form posts without a token are rejected.
func TestCSRF_FormBlocked(t *testing.T) {
	key := make([]byte, 32)
	handler := CSRF(key)(okHandler())

	req := httptest.NewRequest("POST", "/submit", strings.NewReader("a=b"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Errorf("form post without token: status = %d, want 403", rr.Code)
	}
}

// TestChain verifies middleware ordering (last listed runs outermost).
func TestChain(t *testing.T) {
	var order []string
	mw := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	handler := Chain(okHandler(), mw("inner"), mw("outer"))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))

	if len(order) != 2 || order[0] != "outer" || order[1] != "inner" {
		t.Errorf("order = %v", order)
	}
}
