// Package session owns the mapping between a user, their active devices,
// and cached token records in Redis.
//
// Each active session is one cache entry keyed "user:<userId>:<sessionId>"
// holding {token, device} with a TTL equal to the token's remaining
// lifetime. A session's lifecycle is absent -> active (on GenerateToken)
// -> absent (explicit delete or TTL expiry); revocation is deletion, there
// is no revoked-but-retained state. The cache is authoritative: a token
// whose session entry is gone fails verification even while its own exp
// claim is still in the future.
package session
