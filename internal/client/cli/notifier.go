package cli

import (
	"context"
	"fmt"

	"github.com/avelichko/notekeeper/internal/client/models"
)

// terminalNotifier delivers due reminders to the terminal. Delivery is
// serial: the dispatcher calls Notify one reminder at a time, in arrival
// order, and each print counts as delivered.
type terminalNotifier struct{}

func (terminalNotifier) Notify(ctx context.Context, note models.Note) error {
	_, err := printlnFn(fmt.Sprintf("\n⏰ REMINDER: %s", note.Title))
	return err
}
