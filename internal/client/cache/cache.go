// Package cache owns the in-memory mirror of the user's notes.
//
// The mirror is only ever replaced wholesale by a successful refetch; there
// is no optimistic patching, so it always reflects the remote store as of
// the last successful fetch. Concurrent refetches follow last-issued-wins:
// only the most recently issued refetch may update the mirror, and a result
// from a superseded refetch is discarded even if it completes later.
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/avelichko/notekeeper/internal/client/models"
)

// Fetcher lists the full note collection for the live session.
// api.Client satisfies it.
type Fetcher interface {
	ListNotes(ctx context.Context) ([]models.Note, error)
}

type Cache struct {
	fetcher Fetcher

	mu         sync.Mutex
	notes      []models.Note
	lastSync   time.Time
	generation uint64
}

func New(fetcher Fetcher) *Cache {
	return &Cache{fetcher: fetcher}
}

// RefetchAll requests the full collection and, on success, replaces the
// mirror wholesale. On failure the existing mirror is left untouched and the
// error is returned unchanged, so callers can distinguish an unauthorized
// response (evict) from a transient one (stale-but-available view).
func (c *Cache) RefetchAll(ctx context.Context) error {
	c.mu.Lock()
	c.generation++
	gen := c.generation
	c.mu.Unlock()

	notes, err := c.fetcher.ListNotes(ctx)
	if err != nil {
		return fmt.Errorf("refetching notes: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// A newer refetch was issued while this one was in flight; its result
	// must not overwrite newer state.
	if gen != c.generation {
		return nil
	}

	c.notes = cloneNotes(notes)
	c.lastSync = time.Now()
	return nil
}

// Snapshot returns a copy of the mirrored collection in server order.
func (c *Cache) Snapshot() []models.Note {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneNotes(c.notes)
}

// Len reports the number of mirrored notes.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.notes)
}

// LastSync reports when the mirror last matched the remote store;
// zero if it never has.
func (c *Cache) LastSync() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastSync
}

// Clear empties the mirror. Called on session eviction; superseding any
// in-flight refetch keeps a late result from resurrecting evicted notes.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.notes = nil
	c.lastSync = time.Time{}
}

func cloneNotes(notes []models.Note) []models.Note {
	if notes == nil {
		return nil
	}
	cp := make([]models.Note, len(notes))
	copy(cp, notes)
	return cp
}
