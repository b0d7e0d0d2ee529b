package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/soleares/authgate"
	"github.com/soleares/authgate/jwt"
	"github.com/soleares/authgate/session"
)

// RefreshHeader carries a silently rotated token back to the client when
// the presented one is within the refresh threshold of expiry.
const RefreshHeader = "Refresh-Token"

type claimsContextKey struct{}

// ClaimsFromContext returns the verified claims stored by [TokenAuth].
func ClaimsFromContext(ctx context.Context) (*jwt.Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey{}).(*jwt.Claims)
	return claims, ok
}

// TokenAuth guards routes with a bearer token. The token must verify
// against the signing secret and must still have a live session for the
// requesting device; either failure yields a 401 envelope.
//
// When the remaining lifetime drops below threshold, a replacement token
// for the same session is written to the Refresh-Token header. A
// threshold of zero disables rotation. onRefresh, if non-nil, is invoked
// after each successful rotation.
func TokenAuth(reg *session.Registry, threshold time.Duration, onRefresh func(*jwt.Claims)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				writeError(w, authgate.NewUnauthorized("missing bearer token"))
				return
			}

			device := r.UserAgent()
			claims, _, err := reg.VerifyToken(r.Context(), token, device)
			if err != nil {
				writeError(w, authgate.NewUnauthorized(err.Error()))
				return
			}

			if threshold > 0 && claims.ExpiresAt != nil {
				if time.Until(claims.ExpiresAt.Time) < threshold {
					refreshed, err := reg.GenerateToken(r.Context(), claims.Payload(), true)
					if err == nil {
						w.Header().Set(RefreshHeader, refreshed)
						if onRefresh != nil {
							onRefresh(claims)
						}
					}
				}
			}

			ctx := context.WithValue(r.Context(), claimsContextKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
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

func writeError(w http.ResponseWriter, apiErr *authgate.Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apiErr.Status)
	_ = json.NewEncoder(w).Encode(authgate.Fail[struct{}](apiErr))
}
