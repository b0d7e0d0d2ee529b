// Package jwt signs and verifies the compact, time-bound tokens used by the
// session registry. Tokens are HS256-signed with a process-wide shared
// secret and embed the payload alongside issued-at and expiry claims.
//
// The codec is stateless and side-effect free; pairing tokens with cache
// entries is the session package's job.
package jwt
