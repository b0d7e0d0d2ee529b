// Package store provides implementations of the authgate.UserStore
// contract: a Postgres-backed store for production and an in-memory store
// for tests and examples.
package store
