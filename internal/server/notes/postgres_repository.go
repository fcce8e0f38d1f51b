package notes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/avelichko/notekeeper/internal/common"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const noteColumns = `id, user_id, title, content, priority, pinned, reminder_at, reminder_sent, created_at, updated_at`

func scanNote(row interface{ Scan(...any) error }) (*Note, error) {
	n := &Note{}
	err := row.Scan(&n.ID, &n.UserID, &n.Title, &n.Content, &n.Priority, &n.Pinned,
		&n.ReminderAt, &n.ReminderSent, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return n, nil
}

// ListByUser returns the user's notes in presentation order: pinned first,
// then newest first. The client renders them as received.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]Note, error) {

	query :=
		`SELECT ` + noteColumns + ` FROM notes
		 WHERE user_id = $1
		 ORDER BY pinned DESC, created_at DESC
		 `

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %v", err)
	}
	defer rows.Close()

	notes := make([]Note, 0)
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning row: %v", err)
		}
		notes = append(notes, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %v", err)
	}

	return notes, nil
}

func (r *PostgresRepository) Create(ctx context.Context, note *Note) (*Note, error) {

	query :=
		`INSERT INTO notes (id, user_id, title, content, priority, reminder_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING ` + noteColumns + `
		 `

	row := r.db.QueryRowContext(ctx, query,
		note.ID, note.UserID, note.Title, note.Content, note.Priority, note.ReminderAt)

	created, err := scanNote(row)
	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %v", err)
	}

	return created, nil
}

// Update replaces the editable fields. Changing the reminder time re-arms
// it, so reminder_sent is reset only then; editing title or content of a
// note whose reminder already fired must not make it fire again.
func (r *PostgresRepository) Update(ctx context.Context, note *Note) (*Note, error) {

	query :=
		`UPDATE notes
		 SET title = $1, content = $2, priority = $3, reminder_at = $4,
		     reminder_sent = CASE WHEN reminder_at IS DISTINCT FROM $4 THEN FALSE ELSE reminder_sent END,
		     updated_at = now()
		 WHERE id = $5 AND user_id = $6
		 RETURNING ` + noteColumns + `
		 `

	row := r.db.QueryRowContext(ctx, query,
		note.Title, note.Content, note.Priority, note.ReminderAt, note.ID, note.UserID)

	updated, err := scanNote(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("error performing sql request: %v", err)
	}

	return updated, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, id string) error {

	query := `DELETE FROM notes WHERE id = $1 AND user_id = $2`

	res, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("error performing sql request: %v", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking affected rows: %v", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}

	return nil
}

func (r *PostgresRepository) TogglePin(ctx context.Context, userID, id string) (*Note, error) {

	query :=
		`UPDATE notes
		 SET pinned = NOT pinned, updated_at = now()
		 WHERE id = $1 AND user_id = $2
		 RETURNING ` + noteColumns + `
		 `

	row := r.db.QueryRowContext(ctx, query, id, userID)

	updated, err := scanNote(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("error performing sql request: %v", err)
	}

	return updated, nil
}

// ClaimDueReminders flips reminder_sent in a single UPDATE so that two
// concurrent schedulers can never both claim the same note.
func (r *PostgresRepository) ClaimDueReminders(ctx context.Context, now time.Time) ([]Note, error) {

	query :=
		`UPDATE notes
		 SET reminder_sent = TRUE, updated_at = now()
		 WHERE reminder_at IS NOT NULL AND reminder_at <= $1 AND NOT reminder_sent
		 RETURNING ` + noteColumns + `
		 `

	rows, err := r.db.QueryContext(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %v", err)
	}
	defer rows.Close()

	notes := make([]Note, 0)
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning row: %v", err)
		}
		notes = append(notes, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %v", err)
	}

	return notes, nil
}
