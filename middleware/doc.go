// Package middleware provides net/http guards for token-protected and
// API-key-protected routes, plus Gin adapters for embedding them in a
// Gin router.
//
// TokenAuth verifies the bearer token against both the signature and the
// session registry, so a token signed with the right secret is still
// rejected once its session has been invalidated. When the token is close
// to expiry the guard silently mints a replacement for the same session
// and exposes it in the Refresh-Token response header.
package middleware
