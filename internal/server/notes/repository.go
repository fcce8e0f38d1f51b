package notes

import (
	"context"
	"time"
)

type Repository interface {
	ListByUser(ctx context.Context, userID string) ([]Note, error)
	Create(ctx context.Context, note *Note) (*Note, error)
	Update(ctx context.Context, note *Note) (*Note, error)
	Delete(ctx context.Context, userID, id string) error
	TogglePin(ctx context.Context, userID, id string) (*Note, error)

	// ClaimDueReminders atomically marks every unsent reminder due at or
	// before now as sent and returns the affected notes. Each reminder is
	// claimed at most once across concurrent callers.
	ClaimDueReminders(ctx context.Context, now time.Time) ([]Note, error)
}
