package task

import (
	"time"

	"github.com/google/uuid"
)

type Status string
type Priority string

const (
	StatusNotStarted Status = "Not Started"
	StatusInProgress Status = "In Progress"
	StatusCompleted  Status = "Completed"
)

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

func (s Status) Valid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// ActivityEntry is a single record in a task's activity log.
type ActivityEntry struct {
	Action string    `json:"action"`
	Date   time.Time `json:"date"`
}

type Task struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	OwnerID     uuid.UUID       `json:"-" db:"owner_id"`
	Title       string          `json:"title" db:"title"`
	Description string          `json:"description" db:"description"`
	Status      Status          `json:"status" db:"status"`
	Priority    Priority        `json:"priority" db:"priority"`
	DueDate     *time.Time      `json:"dueDate,omitempty" db:"due_date"`
	ActivityLog []ActivityEntry `json:"activityLog" db:"activity_log"`
	CreatedAt   time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt   *time.Time      `json:"updatedAt,omitempty" db:"updated_at"`
}

// AppendActivity adds one entry to the end of the log. The log is append-only,
// entries are never reordered or removed.
func (t *Task) AppendActivity(action string) {
	t.ActivityLog = append(t.ActivityLog, ActivityEntry{
		Action: action,
		Date:   time.Now(),
	})
}
