package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/avelichko/notekeeper/internal/client/models"
)

// reminderLayout is the human-friendly format accepted when entering a
// reminder time, interpreted in the local timezone.
const reminderLayout = "2006-01-02 15:04"

// List prints a one-line summary for every note visible under the current
// search term. Pinned notes carry a marker; the server controls ordering.
func (a *App) List(ctx context.Context) error {
	notes := a.orch.Visible()
	if term := a.orch.SearchTerm(); term != "" {
		printlnFn(fmt.Sprintf("Notes matching %q: %d", term, len(notes)))
	}
	if len(notes) == 0 {
		printlnFn("No notes.")
		return nil
	}
	for _, n := range notes {
		printlnFn(formatNoteLine(n))
	}
	return nil
}

func formatNoteLine(n models.Note) string {
	pin := " "
	if n.Pinned {
		pin = "*"
	}
	line := fmt.Sprintf("%s [%s] (%s) %s", pin, n.ID, n.Priority, n.Title)
	if n.ReminderAt != nil && !n.ReminderSent {
		line += " ⏰ " + n.ReminderAt.Local().Format(reminderLayout)
	}
	return line
}

// Show displays a single note in full, prompting for its ID.
func (a *App) Show(ctx context.Context) error {
	id, err := getSimpleText(a.reader, "Enter note id to show", os.Stdout)
	if err != nil {
		return err
	}

	for _, n := range a.orch.Visible() {
		if n.ID == id {
			printlnFn("Title:   ", n.Title)
			printlnFn("Priority:", string(n.Priority))
			printlnFn("Pinned:  ", n.Pinned)
			if n.ReminderAt != nil {
				printlnFn("Reminder:", n.ReminderAt.Local().Format(reminderLayout))
			}
			printlnFn("Created: ", n.CreatedAt.Local().Format(reminderLayout))
			printlnFn("")
			printlnFn(n.Content)
			return nil
		}
	}

	printlnFn("No such note:", id)
	return nil
}

// Add collects the fields of a new note and creates it. The collection is
// refetched from the server once the create succeeds.
func (a *App) Add(ctx context.Context) error {
	draft, err := a.inputDraft(ctx)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	if err := a.orch.CreateNote(ctx, draft); err != nil {
		log.Printf("error: %v", err)
		return err
	}
	printlnFn("Note added.")
	return nil
}

// Edit prompts for a note ID and replacement fields, then updates the note.
func (a *App) Edit(ctx context.Context) error {
	id, err := getSimpleText(a.reader, "Enter note id to edit", os.Stdout)
	if err != nil {
		return err
	}
	draft, err := a.inputDraft(ctx)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	if err := a.orch.UpdateNote(ctx, id, draft); err != nil {
		log.Printf("error: %v", err)
		return err
	}
	printlnFn("Note updated.")
	return nil
}

// Delete prompts for a note ID and asks for confirmation before removing
// the note. Declining leaves everything untouched.
func (a *App) Delete(ctx context.Context) error {
	id, err := getSimpleText(a.reader, "Enter note id to delete", os.Stdout)
	if err != nil {
		return err
	}
	err = a.orch.DeleteNote(ctx, id, func() bool {
		return Confirm(a.reader, "Delete this note?", os.Stdout)
	})
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	return nil
}

// Pin toggles the pinned flag of a note by ID.
func (a *App) Pin(ctx context.Context) error {
	id, err := getSimpleText(a.reader, "Enter note id to pin/unpin", os.Stdout)
	if err != nil {
		return err
	}
	if err := a.orch.TogglePin(ctx, id); err != nil {
		log.Printf("error: %v", err)
		return err
	}
	return nil
}

// Search sets the current search term and lists the matching notes.
// An empty term clears the filter.
func (a *App) Search(ctx context.Context, term string) error {
	a.orch.SetSearchTerm(term)
	return a.List(ctx)
}

// Refresh refetches the collection from the server on explicit request.
func (a *App) Refresh(ctx context.Context) error {
	if err := a.orch.Refresh(ctx); err != nil {
		log.Printf("error: %v", err)
		return err
	}
	printlnFn("Synced.")
	return nil
}

// inputDraft gathers the editable fields of a note from the terminal.
func (a *App) inputDraft(ctx context.Context) (models.NoteDraft, error) {
	var zero models.NoteDraft

	title, err := getSimpleText(a.reader, "Enter title", os.Stdout)
	if err != nil {
		return zero, fmt.Errorf("get title: %w", err)
	}

	content, err := GetMultiline(a.reader, "Enter note text (double Enter to finish):", os.Stdout)
	if err != nil {
		return zero, err
	}
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	rawPriority, err := getSimpleText(a.reader, "Enter priority (low/normal/high/urgent, empty for normal)", os.Stdout)
	if err != nil {
		return zero, err
	}
	priority, err := models.ParsePriority(rawPriority)
	if err != nil {
		return zero, err
	}

	draft := models.NoteDraft{Title: title, Content: content, Priority: priority}

	rawReminder, err := getSimpleText(a.reader, "Enter reminder time as \"YYYY-MM-DD HH:MM\" (empty for none)", os.Stdout)
	if err != nil {
		return zero, err
	}
	if rawReminder != "" {
		at, err := time.ParseInLocation(reminderLayout, rawReminder, time.Local)
		if err != nil {
			return zero, fmt.Errorf("parse reminder time: %w", err)
		}
		draft.ReminderAt = &at
	}

	return draft, nil
}
