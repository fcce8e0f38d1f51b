package cli

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/avelichko/notekeeper/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatNoteLine(t *testing.T) {
	at := time.Date(2026, 3, 1, 9, 30, 0, 0, time.Local)

	plain := formatNoteLine(models.Note{ID: "n1", Title: "Groceries", Priority: models.PriorityNormal})
	assert.Contains(t, plain, "[n1]")
	assert.Contains(t, plain, "Groceries")
	assert.NotContains(t, plain, "⏰")

	pinned := formatNoteLine(models.Note{ID: "n2", Title: "Taxes", Priority: models.PriorityHigh, Pinned: true})
	assert.True(t, strings.HasPrefix(pinned, "*"))

	due := formatNoteLine(models.Note{ID: "n3", Title: "Call", Priority: models.PriorityNormal, ReminderAt: &at})
	assert.Contains(t, due, "⏰")
	assert.Contains(t, due, "2026-03-01 09:30")

	// an already-fired reminder is not shown again
	sent := formatNoteLine(models.Note{ID: "n4", Title: "Done", Priority: models.PriorityNormal, ReminderAt: &at, ReminderSent: true})
	assert.NotContains(t, sent, "⏰")
}

func TestTerminalNotifier_PrintsTitle(t *testing.T) {
	origPrint := printlnFn
	var lines []string
	printlnFn = func(args ...any) (int, error) {
		for _, a := range args {
			if s, ok := a.(string); ok {
				lines = append(lines, s)
			}
		}
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = origPrint })

	var n terminalNotifier
	require.NoError(t, n.Notify(context.Background(), models.Note{Title: "water the plants"}))

	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "water the plants")
}
