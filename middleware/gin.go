package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/soleares/authgate/jwt"
	"github.com/soleares/authgate/session"
)

// GinTokenAuth adapts [TokenAuth] to a Gin handler chain. The bridge
// executes the net/http guard and stops the Gin chain whenever the guard
// has already written a response.
func GinTokenAuth(reg *session.Registry, threshold time.Duration, onRefresh func(*jwt.Claims)) gin.HandlerFunc {
	guard := TokenAuth(reg, threshold, onRefresh)
	return bridge(guard)
}

// GinAPIKey adapts [APIKey] to a Gin handler chain.
func GinAPIKey(key string) gin.HandlerFunc {
	guard := APIKey(key)
	return bridge(guard)
}

func bridge(guard func(http.Handler) http.Handler) gin.HandlerFunc {
	return func(c *gin.Context) {
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c.Request = r
			c.Next()
		})

		guard(next).ServeHTTP(c.Writer, c.Request)

		if c.Writer.Written() && c.Writer.Status() >= http.StatusBadRequest {
			c.Abort()
		}
	}
}
