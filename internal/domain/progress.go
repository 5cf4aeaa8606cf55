package domain

import (
	"fmt"
	"math"
	"time"
)

// Progress reports how far an upload or publish operation has advanced.
// Current and Total are in whatever unit the operation uses (bytes for
// uploads, steps for publishes).
type Progress struct {
	Current    int64     `json:"current"`
	Total      int64     `json:"total"`
	Percentage float64   `json:"percentage"`
	Status     string    `json:"status"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewProgress builds a Progress value, validating 0 <= current <= total and
// deriving the rounded percentage. A zero total yields 0%.
func NewProgress(current, total int64, status string) (*Progress, error) {
	if current < 0 {
		return nil, fmt.Errorf("%w: current cannot be negative", ErrInvalidProgress)
	}

	if total < 0 {
		return nil, fmt.Errorf("%w: total cannot be negative", ErrInvalidProgress)
	}

	if current > total {
		return nil, fmt.Errorf("%w: current cannot exceed total", ErrInvalidProgress)
	}

	percentage := 0.0
	if total > 0 {
		percentage = math.Round(float64(current)/float64(total)*100*100) / 100
	}

	return &Progress{
		Current:    current,
		Total:      total,
		Percentage: percentage,
		Status:     status,
		Timestamp:  time.Now().UTC(),
	}, nil
}
