// Package password hashes and verifies credentials with bcrypt at a fixed
// work factor. Verification is constant-time by construction of the bcrypt
// comparison.
package password
