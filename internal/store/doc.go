// Package store provides the thread-safe in-memory task store: CRUD and
// query operations over task records plus a cancellable retention job that
// removes records older than the configured age.
package store
