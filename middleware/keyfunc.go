package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// KeyFunc derives the rate-limit partition key from a request.
type KeyFunc func(r *http.Request) string

// KeyByIP partitions by client address: the first X-Forwarded-For entry when
// trustForwarded is set, otherwise the RemoteAddr host.
func KeyByIP(trustForwarded bool) KeyFunc {
	return func(r *http.Request) string {
		if trustForwarded {
			if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
				first, _, _ := strings.Cut(xff, ",")
				if ip := strings.TrimSpace(first); ip != "" {
					return ip
				}
			}
		}

		host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
		if err == nil && host != "" {
			return host
		}
		if r.RemoteAddr != "" {
			return r.RemoteAddr
		}
		return "unknown"
	}
}

// KeyByHeader partitions by a request header, falling back to the client IP
// when the header is empty.
func KeyByHeader(header string, trustForwarded bool) KeyFunc {
	byIP := KeyByIP(trustForwarded)
	return func(r *http.Request) string {
		if v := strings.TrimSpace(r.Header.Get(header)); v != "" {
			return v
		}
		return byIP(r)
	}
}

// KeyByJWTSubject partitions by the verified subject claim of the bearer
// token, so authenticated callers are limited per identity rather than per
// address. Requests without a valid token fall back to the client IP.
func KeyByJWTSubject(keyFn jwt.Keyfunc, trustForwarded bool) KeyFunc {
	byIP := KeyByIP(trustForwarded)
	return func(r *http.Request) string {
		raw, ok := bearerToken(r.Header.Get("Authorization"))
		if !ok {
			return byIP(r)
		}

		token, err := jwt.Parse(raw, keyFn)
		if err != nil || !token.Valid {
			return byIP(r)
		}
		sub, err := token.Claims.GetSubject()
		if err != nil || sub == "" {
			return byIP(r)
		}
		return "sub:" + sub
	}
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}
