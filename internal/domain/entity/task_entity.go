package entity

import "time"

// Task limits.
const (
	TaskTitleMaxLen       = 100
	TaskDescriptionMaxLen = 500
)

// Task is a to-do item owned by exactly one user.
type Task struct {
	ID          int64
	Title       string
	Description *string
	IsCompleted bool
	CreatedAt   time.Time
	OwnerID     int64
}

// TaskPatch holds the fields of an update; nil fields are left unchanged.
type TaskPatch struct {
	Title       *string
	Description *string
	IsCompleted *bool
}

// Apply copies every set field of p onto t.
func (p TaskPatch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		d := *p.Description
		t.Description = &d
	}
	if p.IsCompleted != nil {
		t.IsCompleted = *p.IsCompleted
	}
}
