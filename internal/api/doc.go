// Package api implements the HTTP status surface: task creation and
// cancellation, status and history queries, and performance metrics, with
// consistent error mapping and sanitized responses.
package api
