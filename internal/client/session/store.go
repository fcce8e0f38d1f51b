// Package session owns the authenticated session: the live in-memory copy
// and its persisted mirror in the client's local sqlite database.
//
// During a run the in-memory Session is the single source of truth; the
// persisted fields exist only so a session survives process restarts.
// Establish writes credential and identity in one transaction and Evict
// clears them in one transaction, so the two can never diverge.
package session

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/avelichko/notekeeper/internal/client/models"
	"github.com/avelichko/notekeeper/internal/client/repositories/metadata"
	"github.com/avelichko/notekeeper/internal/common"
	"github.com/avelichko/notekeeper/internal/dbx"
)

const (
	keyCredential = "credential"
	keyUserID     = "user_id"
	keyUserEmail  = "user_email"
)

type Store struct {
	db *sql.DB

	mu      sync.RWMutex
	current *models.Session
}

// Open opens the local database at dsn and returns a Store with no live
// session. Call Restore to pick up a persisted one.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := initDatabase(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("session store init: %w", err)
	}
	return &Store{db: db}, nil
}

// NewWithDB wraps an already-migrated database. Used by tests.
func NewWithDB(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Restore establishes a session from persisted state without a network
// round-trip. It fails silently: if any field is absent or malformed there
// is simply no session and (nil, nil) is returned.
func (s *Store) Restore(ctx context.Context) (*models.Session, error) {
	repo := metadata.NewSQLiteRepository(s.db)

	cred, err := repo.Get(ctx, keyCredential)
	if err != nil {
		return nil, err
	}
	userID, err := repo.Get(ctx, keyUserID)
	if err != nil {
		return nil, err
	}
	email, err := repo.Get(ctx, keyUserEmail)
	if err != nil {
		return nil, err
	}

	if len(cred) == 0 || len(userID) == 0 || len(email) == 0 {
		return nil, nil
	}

	sess := &models.Session{
		Identity:      models.Identity{ID: string(userID), Email: string(email)},
		Credential:    string(cred),
		EstablishedAt: time.Now(),
	}

	s.mu.Lock()
	s.current = sess
	s.mu.Unlock()

	return s.snapshot(), nil
}

// Establish persists the identity and credential together and makes the
// session live. Called after a successful login or registration.
func (s *Store) Establish(ctx context.Context, identity models.Identity, credential string) (*models.Session, error) {
	if credential == "" || identity.ID == "" || identity.Email == "" {
		return nil, fmt.Errorf("%w: incomplete session", common.ErrValidation)
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, keyCredential, []byte(credential)); err != nil {
			return err
		}
		if err := repo.Set(ctx, keyUserID, []byte(identity.ID)); err != nil {
			return err
		}
		return repo.Set(ctx, keyUserEmail, []byte(identity.Email))
	})
	if err != nil {
		return nil, fmt.Errorf("persisting session: %w", err)
	}

	sess := &models.Session{
		Identity:      identity,
		Credential:    credential,
		EstablishedAt: time.Now(),
	}

	s.mu.Lock()
	s.current = sess
	s.mu.Unlock()

	return s.snapshot(), nil
}

// Evict destroys the live session and clears the persisted fields in one
// transaction. Safe to call when no session is live.
func (s *Store) Evict(ctx context.Context) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return metadata.NewSQLiteRepository(tx).Clear(ctx)
	})
	if err != nil {
		return fmt.Errorf("clearing persisted session: %w", err)
	}

	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()

	return nil
}

// Current returns a copy of the live session, or nil when unauthenticated.
func (s *Store) Current() *models.Session {
	return s.snapshot()
}

// Credential returns the live bearer credential. It implements
// api.CredentialSource, so outgoing calls always see the latest state.
func (s *Store) Credential() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return "", common.ErrNoSession
	}
	return s.current.Credential, nil
}

func (s *Store) snapshot() *models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	cp := *s.current
	return &cp
}
