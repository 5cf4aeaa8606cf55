package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrEmptyTaskID is returned when a task ID is empty or blank.
	ErrEmptyTaskID = errors.New("task ID cannot be empty")

	// ErrInvalidTaskStatus is returned when a task status is not one of the
	// known status values.
	ErrInvalidTaskStatus = errors.New("invalid task status")

	// ErrInvalidTransition is returned when a status change violates the
	// task transition table.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrMissingErrorDetail is returned when a failed task or result lacks
	// failure information.
	ErrMissingErrorDetail = errors.New("failed tasks must carry error information")

	// ErrEmptyPlatform is returned when a platform name is empty.
	ErrEmptyPlatform = errors.New("platform name cannot be empty")

	// ErrInvalidProgress is returned when progress amounts are negative or
	// the current amount exceeds the total.
	ErrInvalidProgress = errors.New("invalid progress amounts")
)
