package notes

import (
	"context"
	"time"

	"github.com/avelichko/notekeeper/internal/logging"
)

// Broadcaster pushes an event to every live connection of one user.
// The websocket hub satisfies it.
type Broadcaster interface {
	Broadcast(userID, eventType string, note *Note)
}

// Scheduler periodically claims due reminders and pushes a reminder-due
// event to each note's owner. Claiming and marking happen in one statement,
// so a reminder fires at most once even if several server instances poll
// the same database.
type Scheduler struct {
	repo     Repository
	hub      Broadcaster
	interval time.Duration
	logger   logging.Logger
}

func NewScheduler(repo Repository, hub Broadcaster, interval time.Duration, logger logging.Logger) *Scheduler {
	return &Scheduler{repo: repo, hub: hub, interval: interval, logger: logger}
}

// Run polls until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.tick(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	due, err := s.repo.ClaimDueReminders(ctx, time.Now())
	if err != nil {
		s.logger.Error(ctx, "claiming due reminders", "error", err)
		return
	}

	for i := range due {
		note := due[i]
		s.logger.Info(ctx, "reminder due", "note", note.ID, "user", note.UserID)
		s.hub.Broadcast(note.UserID, "reminder-due", &note)
	}
}
