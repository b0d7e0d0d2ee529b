// Package authgate provides a session-oriented authentication layer: local
// email/password signup and login, JWT issuance and verification, and a
// Redis-backed multi-device session registry with a concurrent-session limit.
//
// The package is designed for concurrent server workloads: Service methods are
// safe to call from multiple goroutines after construction.
//
// # Architecture boundaries
//
// authgate is the orchestration surface. It exposes [Service], [Users],
// [Config], the [Response] envelope, and the error taxonomy. Token signing
// lives in the jwt subpackage, session/cache bookkeeping in the session
// subpackage, password hashing in the password subpackage, and HTTP concerns
// in middleware and httpapi.
//
// # What this package must NOT do
//
//   - Expose Redis clients or cache key layouts in its public API beyond
//     [session.CachedSession].
//   - Perform I/O outside of Service and Users methods (constructors are
//     allocation-only).
//   - Throw across the service boundary: every Service and Users method
//     resolves to a [Response] envelope; only the lower-level registry and
//     codec operations return bare errors, which are wrapped one layer up.
package authgate
