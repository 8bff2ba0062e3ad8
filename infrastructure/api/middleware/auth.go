package middleware

import (
	"net/http"
)

// APIKeyHeader carries the key that unlocks protected routes.
const APIKeyHeader = "X-API-KEY"

// RequireAPIKey returns a middleware that rejects requests without one of
// apiKeys in the X-API-KEY header. Empty keys are ignored; with no keys left
// every request passes.
func RequireAPIKey(apiKeys []string) func(http.Handler) http.Handler {
	keys := make(map[string]struct{}, len(apiKeys))
	for _, k := range apiKeys {
		if k != "" {
			keys[k] = struct{}{}
		}
	}

	return func(next http.Handler) http.Handler {
		if len(keys) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(APIKeyHeader)
			if key == "" {
				WriteError(w, r, NewAuthenticationError(APIKeyHeader+" header is required"), nil)
				return
			}
			if _, ok := keys[key]; !ok {
				WriteError(w, r, NewAuthenticationError("invalid API key"), nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
