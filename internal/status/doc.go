// Package status composes the task store and the state machine into
// externally consumable status responses, filtered queries with pagination,
// and per-task and aggregated performance metrics.
package status
