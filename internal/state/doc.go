// Package state tracks task lifecycle state: the transition graph, per-task
// transition history with timestamps, an event system for state-change
// listeners, and the TaskStateManager that owns all histories.
package state
