// Package publish defines the resilient execution contract shared by all
// platform adapters: the adapter capability interface, the error taxonomy
// with pure retry classification, the retrying executor with exponential
// backoff, and the resumable chunked transfer protocol for large media.
package publish
