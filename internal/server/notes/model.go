// Package notes implements the server-side note store: persistence,
// validation, ownership checks and the reminder scheduler.
package notes

import (
	"fmt"
	"strings"
	"time"

	"github.com/avelichko/notekeeper/internal/common"
)

// Priority mirrors the client's priority scale. The empty string is
// normalized to "normal" on write.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

func validPriority(p Priority) bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Note is the persisted representation. UserID scopes every operation;
// it never leaves the server.
type Note struct {
	ID           string     `json:"id"`
	UserID       string     `json:"-"`
	Title        string     `json:"title"`
	Content      string     `json:"content"`
	Priority     Priority   `json:"priority"`
	Pinned       bool       `json:"pinned"`
	ReminderAt   *time.Time `json:"reminder_at,omitempty"`
	ReminderSent bool       `json:"reminder_sent"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"-"`
}

// Draft carries the user-editable fields for create and update calls.
type Draft struct {
	Title      string     `json:"title"`
	Content    string     `json:"content"`
	Priority   Priority   `json:"priority"`
	ReminderAt *time.Time `json:"reminder_at,omitempty"`
}

func (d *Draft) validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return fmt.Errorf("%w: title must not be empty", common.ErrValidation)
	}
	if strings.TrimSpace(d.Content) == "" {
		return fmt.Errorf("%w: content must not be empty", common.ErrValidation)
	}
	if d.Priority == "" {
		d.Priority = PriorityNormal
	}
	if !validPriority(d.Priority) {
		return fmt.Errorf("%w: unknown priority %q", common.ErrValidation, d.Priority)
	}
	return nil
}
