// Package domain defines the core business entities of the publishing
// pipeline: task records, progress and result values, media metadata, and
// platform configuration. Entities validate themselves and carry no
// dependencies on storage or transport.
package domain
