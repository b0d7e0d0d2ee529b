package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/soleares/authgate"
)

// APIKeyHeader is where clients present the shared administrative key.
const APIKeyHeader = "X-Api-Key"

// APIKey guards administrative routes with a shared secret supplied in
// the X-Api-Key header. The comparison is constant time so the guard
// leaks nothing about how much of the key matched.
func APIKey(key string) func(http.Handler) http.Handler {
	expected := []byte(key)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(expected) == 0 {
				writeError(w, authgate.NewUnauthorized("api key access is not configured"))
				return
			}

			presented := []byte(r.Header.Get(APIKeyHeader))
			if subtle.ConstantTimeCompare(expected, presented) != 1 {
				writeError(w, authgate.NewUnauthorized("invalid api key"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
