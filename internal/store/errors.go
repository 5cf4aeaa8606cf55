package store

import (
	"errors"
	"fmt"
)

// Common store errors.
var (
	// ErrTaskStore is the base error for task store operations.
	ErrTaskStore = errors.New("task store error")

	// ErrNilTask is returned when a nil task is passed to the store.
	ErrNilTask = fmt.Errorf("%w: task cannot be nil", ErrTaskStore)

	// ErrEmptyTaskID is returned when a task ID is empty or blank.
	ErrEmptyTaskID = fmt.Errorf("%w: task ID cannot be empty", ErrTaskStore)

	// ErrTaskExists is returned when storing a task whose ID is already
	// present.
	ErrTaskExists = fmt.Errorf("%w: task already exists", ErrTaskStore)

	// ErrTaskNotFound is returned when updating a task that is not in the
	// store.
	ErrTaskNotFound = fmt.Errorf("%w: task not found", ErrTaskStore)
)
