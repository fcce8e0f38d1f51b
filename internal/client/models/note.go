// Package models defines the client-side domain types: notes, sessions and
// push events. The wire representation matches the server's JSON exactly.
package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/avelichko/notekeeper/internal/common"
)

// Priority is the user-assigned importance of a note.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// ParsePriority maps user input to a Priority. The empty string selects
// the default. Unknown values are a validation error.
func ParsePriority(s string) (Priority, error) {
	switch Priority(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return PriorityNormal, nil
	case PriorityLow:
		return PriorityLow, nil
	case PriorityNormal:
		return PriorityNormal, nil
	case PriorityHigh:
		return PriorityHigh, nil
	case PriorityUrgent:
		return PriorityUrgent, nil
	default:
		return "", fmt.Errorf("%w: unknown priority %q", common.ErrValidation, s)
	}
}

// Note is a single note as returned by the remote store. The ID is
// server-assigned and never fabricated on the client; ReminderSent only
// transitions false to true, and that transition happens server-side.
type Note struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Content      string     `json:"content"`
	Priority     Priority   `json:"priority"`
	Pinned       bool       `json:"pinned"`
	ReminderAt   *time.Time `json:"reminder_at,omitempty"`
	ReminderSent bool       `json:"reminder_sent"`
	CreatedAt    time.Time  `json:"created_at"`
}

// NoteDraft carries the user-editable fields of a note for create and
// update calls.
type NoteDraft struct {
	Title      string     `json:"title"`
	Content    string     `json:"content"`
	Priority   Priority   `json:"priority"`
	ReminderAt *time.Time `json:"reminder_at,omitempty"`
}

// Validate rejects a draft before any network call is issued.
func (d NoteDraft) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return fmt.Errorf("%w: title must not be empty", common.ErrValidation)
	}
	if strings.TrimSpace(d.Content) == "" {
		return fmt.Errorf("%w: content must not be empty", common.ErrValidation)
	}
	if _, err := ParsePriority(string(d.Priority)); err != nil {
		return err
	}
	return nil
}
