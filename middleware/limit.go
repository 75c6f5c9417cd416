package middleware

import (
	"context"
	"errors"
	"net/http"

	rategate "github.com/rategate/rategate"
)

// RequestLimit returns middleware that counts every request against the
// gate's limit. The partition key is extracted, the gate is consulted, and a
// blocked request is answered with 429 Too Many Requests and the gate's
// configured message; the wrapped handler never runs. Allowed requests are
// counted and passed through.
func RequestLimit(gate *rategate.Gate, keyFn KeyFunc) func(http.Handler) http.Handler {
	if keyFn == nil {
		keyFn = KeyByIP(false)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			partition := keyFn(r)

			dec := gate.Allow(r.Context(), partition)
			if dec.Blocked {
				http.Error(w, gate.Message(), http.StatusTooManyRequests)
				return
			}

			gate.Record(r.Context(), partition)
			next.ServeHTTP(w, r)
		})
	}
}

// HandlerFunc is an HTTP handler that reports failures as error values
// instead of writing its own error responses.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// GuardFunc adapts an error-returning handler to the gate's error-counting
// variant: only failures matching the gate's predicate count against the
// limit, and a blocked request is answered with 429 and the configured
// message before the handler runs. Handler failures that survive the gate
// are answered with 500.
func GuardFunc(gate *rategate.Gate, keyFn KeyFunc, handler HandlerFunc) http.Handler {
	if keyFn == nil {
		keyFn = KeyByIP(false)
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		partition := keyFn(r)

		err := gate.Guard(r.Context(), partition, func(ctx context.Context) error {
			return handler(w, r.WithContext(ctx))
		})
		if err == nil {
			return
		}
		if errors.Is(err, rategate.ErrRateLimited) {
			http.Error(w, gate.Message(), http.StatusTooManyRequests)
			return
		}
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	})
}
