// Package tasksvc holds the task domain model. A Task is only created through
// NewTask and only changed through its mutator methods, so every record that
// reaches the store has passed validation.
package tasksvc

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

type Priority int

const (
	PriorityLow Priority = iota + 1
	PriorityMedium
	PriorityHigh
	PriorityCritical
)

func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "Low"
	case PriorityMedium:
		return "Medium"
	case PriorityHigh:
		return "High"
	case PriorityCritical:
		return "Critical"
	}
	return fmt.Sprintf("Priority(%d)", int(p))
}

func (p Priority) Valid() bool {
	return p >= PriorityLow && p <= PriorityCritical
}

// ParsePriority accepts the enum name (case-insensitive) or its numeric value.
func ParsePriority(s string) (Priority, error) {
	switch strings.ToLower(s) {
	case "low":
		return PriorityLow, nil
	case "medium":
		return PriorityMedium, nil
	case "high":
		return PriorityHigh, nil
	case "critical":
		return PriorityCritical, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		if p := Priority(n); p.Valid() {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown priority %q", s)
}

type Status int

const (
	StatusPending Status = iota + 1
	StatusInProgress
	StatusCompleted
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusInProgress:
		return "InProgress"
	case StatusCompleted:
		return "Completed"
	case StatusCancelled:
		return "Cancelled"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

func (s Status) Valid() bool {
	return s >= StatusPending && s <= StatusCancelled
}

// ParseStatus accepts the enum name (case-insensitive) or its numeric value.
func ParseStatus(v string) (Status, error) {
	switch strings.ToLower(v) {
	case "pending":
		return StatusPending, nil
	case "inprogress":
		return StatusInProgress, nil
	case "completed":
		return StatusCompleted, nil
	case "cancelled":
		return StatusCancelled, nil
	}
	if n, err := strconv.Atoi(v); err == nil {
		if s := Status(n); s.Valid() {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown status %q", v)
}

const (
	maxTitleLen       = 200
	maxDescriptionLen = 1000
)

// ValidationError carries every input violation found, in the order checked.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, "; ")
}

type Task struct {
	ID             uint64     `gorm:"primarykey" json:"id"`
	Title          string     `gorm:"size:200;not null" json:"title"`
	Description    string     `gorm:"size:1000" json:"description"`
	DueDate        *time.Time `json:"dueDate,omitempty"`
	Priority       Priority   `gorm:"not null" json:"priority"`
	Status         Status     `gorm:"not null;index" json:"status"`
	AssignedUserID *uint64    `gorm:"index" json:"assignedUserId,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	CreatedBy      string     `gorm:"size:100" json:"createdBy"`
	UpdatedAt      *time.Time `gorm:"autoUpdateTime:false" json:"updatedAt,omitempty"`
	UpdatedBy      string     `gorm:"size:100" json:"updatedBy,omitempty"`
}

// NewTask validates the inputs and returns a Pending task. The due date, when
// present, must be strictly in the future at this moment; it is not
// re-validated as time passes (staleness becomes IsOverdue, not an error).
func NewTask(title, description string, dueDate *time.Time, priority Priority, createdBy string) (*Task, error) {
	title, description, err := validateDetails(title, description, dueDate)
	if err != nil {
		return nil, err
	}

	return &Task{
		Title:       title,
		Description: description,
		DueDate:     dueDate,
		Priority:    priority,
		Status:      StatusPending,
		CreatedAt:   time.Now().UTC(),
		CreatedBy:   createdBy,
	}, nil
}

// UpdateDetails applies the same validation as NewTask before touching any
// field, so a failed update leaves the task unchanged.
func (t *Task) UpdateDetails(title, description string, dueDate *time.Time, priority Priority, updatedBy string) error {
	title, description, err := validateDetails(title, description, dueDate)
	if err != nil {
		return err
	}

	t.Title = title
	t.Description = description
	t.DueDate = dueDate
	t.Priority = priority
	t.touch(updatedBy)
	return nil
}

// UpdateStatus sets the status unconditionally. Transitions are deliberately
// unconstrained; only deletion is guarded, via CanBeDeleted.
func (t *Task) UpdateStatus(status Status, updatedBy string) {
	t.Status = status
	t.touch(updatedBy)
}

func (t *Task) AssignTo(userID uint64, updatedBy string) {
	t.AssignedUserID = &userID
	t.touch(updatedBy)
}

func (t *Task) Unassign(updatedBy string) {
	t.AssignedUserID = nil
	t.touch(updatedBy)
}

// IsOverdue reports whether the due date has passed without the task being
// completed. Derived at evaluation time, never stored.
func (t *Task) IsOverdue() bool {
	return t.DueDate != nil && t.DueDate.Before(time.Now().UTC()) && t.Status != StatusCompleted
}

// CanBeDeleted is false only while the task is in progress.
func (t *Task) CanBeDeleted() bool {
	return t.Status != StatusInProgress
}

func (t *Task) touch(updatedBy string) {
	now := time.Now().UTC()
	t.UpdatedAt = &now
	t.UpdatedBy = updatedBy
}

func validateDetails(title, description string, dueDate *time.Time) (string, string, error) {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)

	var messages []string
	if title == "" {
		messages = append(messages, "Title cannot be empty")
	} else if utf8.RuneCountInString(title) > maxTitleLen {
		messages = append(messages, "Title cannot exceed 200 characters")
	}
	if utf8.RuneCountInString(description) > maxDescriptionLen {
		messages = append(messages, "Description cannot exceed 1000 characters")
	}
	if dueDate != nil && !dueDate.After(time.Now().UTC()) {
		messages = append(messages, "Due date cannot be in the past")
	}

	if len(messages) > 0 {
		return "", "", &ValidationError{Messages: messages}
	}
	return title, description, nil
}

// TaskRepository is the store abstraction the services consume. Mutations
// commit when the call returns; Transact groups calls into one transaction
// for callers that need atomicity across steps.
type TaskRepository interface {
	Find(ctx context.Context, id uint64) (*Task, error)
	FindAll(ctx context.Context) ([]*Task, error)
	FindByUser(ctx context.Context, userID uint64) ([]*Task, error)
	FindByStatus(ctx context.Context, status Status) ([]*Task, error)
	FindOverdue(ctx context.Context, now time.Time) ([]*Task, error)
	CountByUser(ctx context.Context, userID uint64) (int64, error)
	Create(ctx context.Context, task *Task) error
	Update(ctx context.Context, task *Task) error
	Delete(ctx context.Context, task *Task) error
	Transact(ctx context.Context, fn func(TaskRepository) error) error
}

var ErrTaskNotFound = errors.New("task not found")
