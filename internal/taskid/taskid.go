// Package taskid generates and parses the task identifiers used across the
// store and the state machine. IDs embed a prefix, an optional task type, a
// UTC timestamp, and a random suffix so they sort roughly by creation time
// while staying collision free.
package taskid

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// timestampLayout is the compact UTC form embedded in every ID.
const timestampLayout = "20060102150405"

// suffixLength is how many characters of the random UUID survive in the ID.
const suffixLength = 8

// ErrInvalidTaskID indicates a string that does not follow the
// prefix[_type]_timestamp_suffix layout.
var ErrInvalidTaskID = errors.New("invalid task ID")

// Components are the parsed parts of a task ID.
type Components struct {
	Prefix    string
	TaskType  string
	CreatedAt time.Time
	Suffix    string
}

// Generate builds a task ID like "publish_video_20260825120000_1a2b3c4d".
// The task type is optional; prefix and type must not contain underscores
// so the ID stays parseable.
func Generate(prefix, taskType string) (string, error) {
	if strings.TrimSpace(prefix) == "" {
		return "", fmt.Errorf("%w: prefix must not be empty", ErrInvalidTaskID)
	}
	if strings.Contains(prefix, "_") {
		return "", fmt.Errorf("%w: prefix must not contain underscores", ErrInvalidTaskID)
	}
	if strings.Contains(taskType, "_") {
		return "", fmt.Errorf("%w: task type must not contain underscores", ErrInvalidTaskID)
	}

	timestamp := time.Now().UTC().Format(timestampLayout)
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:suffixLength]

	if taskType == "" {
		return fmt.Sprintf("%s_%s_%s", prefix, timestamp, suffix), nil
	}
	return fmt.Sprintf("%s_%s_%s_%s", prefix, taskType, timestamp, suffix), nil
}

// Parse splits a task ID back into its components.
func Parse(taskID string) (*Components, error) {
	parts := strings.Split(taskID, "_")
	if len(parts) != 3 && len(parts) != 4 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTaskID, taskID)
	}

	components := &Components{
		Prefix: parts[0],
		Suffix: parts[len(parts)-1],
	}
	if len(parts) == 4 {
		components.TaskType = parts[1]
	}

	rawTimestamp := parts[len(parts)-2]
	createdAt, err := time.Parse(timestampLayout, rawTimestamp)
	if err != nil {
		return nil, fmt.Errorf("%w: bad timestamp %q in %q", ErrInvalidTaskID, rawTimestamp, taskID)
	}
	components.CreatedAt = createdAt

	if components.Prefix == "" || len(components.Suffix) != suffixLength {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTaskID, taskID)
	}

	return components, nil
}

// Validate reports whether the string is a well-formed task ID.
func Validate(taskID string) error {
	_, err := Parse(taskID)
	return err
}
