// Package config handles configuration loading, parsing, and validation
// from environment variables and optional config files. It provides
// type-safe access to the settings the composition root wires into the
// store, the retention job, and the platform adapters.
package config
