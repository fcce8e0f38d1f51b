// Package reminder surfaces due-reminder push events to the user.
//
// Events are delivered strictly in arrival order, one at a time, and are
// not deduplicated: if the push channel redelivers an event the user is
// notified again. Marking a reminder as sent is the server's job and
// arrives with the next refetch, not from here.
package reminder

import (
	"context"

	"github.com/avelichko/notekeeper/internal/client/models"
	"github.com/avelichko/notekeeper/internal/logging"
)

// Notifier presents one user-acknowledged notification naming the note's
// title. Notify blocks until the user acknowledges (or ctx is done), which
// is what serializes delivery.
type Notifier interface {
	Notify(ctx context.Context, note models.Note) error
}

const queueSize = 16

type Dispatcher struct {
	notifier Notifier
	logger   logging.Logger
	queue    chan models.Note
}

func New(notifier Notifier, logger logging.Logger) *Dispatcher {
	return &Dispatcher{
		notifier: notifier,
		logger:   logger,
		queue:    make(chan models.Note, queueSize),
	}
}

// Dispatch enqueues a due note for delivery. It never blocks the caller:
// if the queue is full the event is dropped with a warning, matching the
// channel's at-most-once delivery contract.
func (d *Dispatcher) Dispatch(note models.Note) {
	select {
	case d.queue <- note:
	default:
		d.logger.Warn(context.Background(), "reminder queue full, dropping event", "note_id", note.ID)
	}
}

// Run delivers queued reminders until ctx is cancelled. Call it from a
// single goroutine; one-at-a-time delivery is its invariant.
func (d *Dispatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case note := <-d.queue:
			if err := d.notifier.Notify(ctx, note); err != nil {
				d.logger.Error(ctx, "reminder notification failed", "note_id", note.ID, "error", err)
			}
		}
	}
}
