package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
)

func keyReq(remoteAddr string, headers map[string]string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = remoteAddr
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return req
}

func TestKeyByIP(t *testing.T) {
	fn := KeyByIP(false)

	if got := fn(keyReq("9.9.9.9:1234", nil)); got != "9.9.9.9" {
		t.Fatalf("expected remote host, got %q", got)
	}
	if got := fn(keyReq("", nil)); got != "unknown" {
		t.Fatalf("expected unknown fallback, got %q", got)
	}

	// X-Forwarded-For is honored only when explicitly trusted.
	headers := map[string]string{"X-Forwarded-For": "5.5.5.5, 6.6.6.6"}
	if got := fn(keyReq("9.9.9.9:1234", headers)); got != "9.9.9.9" {
		t.Fatalf("untrusted XFF must be ignored, got %q", got)
	}
	if got := KeyByIP(true)(keyReq("9.9.9.9:1234", headers)); got != "5.5.5.5" {
		t.Fatalf("expected first XFF entry, got %q", got)
	}
}

func TestKeyByHeader(t *testing.T) {
	fn := KeyByHeader("X-API-Key", false)

	if got := fn(keyReq("9.9.9.9:1234", map[string]string{"X-API-Key": "abc"})); got != "abc" {
		t.Fatalf("expected header value, got %q", got)
	}
	if got := fn(keyReq("9.9.9.9:1234", nil)); got != "9.9.9.9" {
		t.Fatalf("expected IP fallback, got %q", got)
	}
}

func TestKeyByJWTSubject(t *testing.T) {
	secret := []byte("test-secret")
	keyFn := func(*jwt.Token) (any, error) { return secret, nil }
	fn := KeyByJWTSubject(keyFn, false)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-1",
	}).SignedString(secret)
	if err != nil {
		t.Fatalf("signing failed: %v", err)
	}

	got := fn(keyReq("9.9.9.9:1234", map[string]string{"Authorization": "Bearer " + token}))
	if got != "sub:user-1" {
		t.Fatalf("expected subject key, got %q", got)
	}

	// Missing, malformed, or forged tokens fall back to the client IP.
	if got := fn(keyReq("9.9.9.9:1234", nil)); got != "9.9.9.9" {
		t.Fatalf("expected IP fallback without token, got %q", got)
	}
	if got := fn(keyReq("9.9.9.9:1234", map[string]string{"Authorization": "Bearer garbage"})); got != "9.9.9.9" {
		t.Fatalf("expected IP fallback for malformed token, got %q", got)
	}

	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-1",
	}).SignedString([]byte("wrong-secret"))
	if err != nil {
		t.Fatalf("signing failed: %v", err)
	}
	if got := fn(keyReq("9.9.9.9:1234", map[string]string{"Authorization": "Bearer " + forged})); got != "9.9.9.9" {
		t.Fatalf("expected IP fallback for forged token, got %q", got)
	}
}
