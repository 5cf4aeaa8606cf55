package status

import (
	"fmt"
	"time"

	"github.com/setka-project/medusa/internal/domain"
)

// TaskStatusQuery filters and paginates the task snapshot. Construct with
// NewTaskStatusQuery so malformed queries fail fast instead of silently
// returning wrong pages.
type TaskStatusQuery struct {
	statuses      map[domain.TaskStatus]bool
	createdAfter  *time.Time
	createdBefore *time.Time
	limit         int
	offset        int
}

// NewTaskStatusQuery validates and builds a query. A nil or empty statuses
// slice matches every status; nil time bounds are open ends; a limit of
// zero means unlimited. Negative limit or offset, an unknown status, or an
// inverted time range all fail.
func NewTaskStatusQuery(
	statuses []domain.TaskStatus,
	createdAfter, createdBefore *time.Time,
	limit, offset int,
) (*TaskStatusQuery, error) {
	if limit < 0 {
		return nil, fmt.Errorf("%w: limit must not be negative, got %d", ErrInvalidQuery, limit)
	}
	if offset < 0 {
		return nil, fmt.Errorf("%w: offset must not be negative, got %d", ErrInvalidQuery, offset)
	}
	if createdAfter != nil && createdBefore != nil && createdAfter.After(*createdBefore) {
		return nil, fmt.Errorf("%w: created_after is later than created_before", ErrInvalidQuery)
	}

	var wanted map[domain.TaskStatus]bool
	if len(statuses) > 0 {
		wanted = make(map[domain.TaskStatus]bool, len(statuses))
		for _, status := range statuses {
			if !domain.IsValidTaskStatus(status) {
				return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidQuery, status)
			}
			wanted[status] = true
		}
	}

	return &TaskStatusQuery{
		statuses:      wanted,
		createdAfter:  createdAfter,
		createdBefore: createdBefore,
		limit:         limit,
		offset:        offset,
	}, nil
}

// matches reports whether the task passes the status filter and the
// half-open [created_after, created_before) time range.
func (q *TaskStatusQuery) matches(task *domain.TaskRecord) bool {
	if q.statuses != nil && !q.statuses[task.Status] {
		return false
	}
	if q.createdAfter != nil && task.CreatedAt.Before(*q.createdAfter) {
		return false
	}
	if q.createdBefore != nil && !task.CreatedAt.Before(*q.createdBefore) {
		return false
	}
	return true
}

// paginate applies offset then limit to an already-sorted slice.
func (q *TaskStatusQuery) paginate(tasks []*domain.TaskRecord) []*domain.TaskRecord {
	if q.offset >= len(tasks) {
		return nil
	}
	tasks = tasks[q.offset:]

	if q.limit > 0 && q.limit < len(tasks) {
		tasks = tasks[:q.limit]
	}
	return tasks
}
