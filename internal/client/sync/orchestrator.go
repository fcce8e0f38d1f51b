// Package sync coordinates every remote operation triggered by user intents
// and push events against the session store and the note cache. It owns the
// per-session state machine:
//
//	Unauthenticated -> Syncing   on establish/restore (refetch + open push)
//	Syncing         -> Idle      on refetch success
//	Syncing         -> Error     on a non-auth refetch failure
//	Idle|Error      -> Syncing   on a successful mutation or a push event
//	*               -> Unauthenticated on eviction (logout or unauthorized)
//
// Every mutation is a two-step protocol: the remote call first, then on
// success exactly one full refetch. Failures leave the current collection
// untouched; an unauthorized response anywhere evicts the session.
package sync

import (
	"context"
	"errors"
	"sync"

	"github.com/avelichko/notekeeper/internal/client/api"
	"github.com/avelichko/notekeeper/internal/client/cache"
	"github.com/avelichko/notekeeper/internal/client/models"
	"github.com/avelichko/notekeeper/internal/client/push"
	"github.com/avelichko/notekeeper/internal/client/view"
	"github.com/avelichko/notekeeper/internal/common"
	"github.com/avelichko/notekeeper/internal/logging"
)

// State is the orchestrator's position in the per-session state machine.
type State string

const (
	StateUnauthenticated State = "unauthenticated"
	StateSyncing         State = "syncing"
	StateIdle            State = "idle"
	StateError           State = "error"
)

// SessionStore is the slice of the session store the orchestrator uses.
type SessionStore interface {
	Restore(ctx context.Context) (*models.Session, error)
	Establish(ctx context.Context, identity models.Identity, credential string) (*models.Session, error)
	Evict(ctx context.Context) error
	Current() *models.Session
}

// DialFunc opens the push channel for the given bearer credential.
type DialFunc func(ctx context.Context, credential string) (push.Channel, error)

// ReminderSink receives due-reminder notes for user-visible delivery.
// reminder.Dispatcher satisfies it.
type ReminderSink interface {
	Dispatch(note models.Note)
}

type Orchestrator struct {
	api       api.Client
	sessions  SessionStore
	cache     *cache.Cache
	reminders ReminderSink
	dialPush  DialFunc
	logger    logging.Logger

	mu      sync.Mutex
	state   State
	term    string
	channel push.Channel
}

func New(apiClient api.Client, sessions SessionStore, c *cache.Cache, reminders ReminderSink, dial DialFunc, logger logging.Logger) *Orchestrator {
	return &Orchestrator{
		api:       apiClient,
		sessions:  sessions,
		cache:     c,
		reminders: reminders,
		dialPush:  dial,
		logger:    logger,
		state:     StateUnauthenticated,
	}
}

// State reports the current machine state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *Orchestrator) setState(s State) {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()
}

// SetSearchTerm updates the live search term. The term is ephemeral view
// state; it is never persisted and is discarded on eviction.
func (o *Orchestrator) SetSearchTerm(term string) {
	o.mu.Lock()
	o.term = term
	o.mu.Unlock()
}

// SearchTerm returns the live search term.
func (o *Orchestrator) SearchTerm() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.term
}

// Visible projects the cached collection through the live search term.
func (o *Orchestrator) Visible() []models.Note {
	return view.Project(o.cache.Snapshot(), o.SearchTerm())
}

// Session returns the live session, or nil when unauthenticated.
func (o *Orchestrator) Session() *models.Session {
	return o.sessions.Current()
}

// Restore picks up a persisted session at startup. It reports whether a
// session was restored; absence of one is not an error.
func (o *Orchestrator) Restore(ctx context.Context) (bool, error) {
	sess, err := o.sessions.Restore(ctx)
	if err != nil {
		return false, err
	}
	if sess == nil {
		return false, nil
	}
	return true, o.beginSession(ctx)
}

// Login authenticates against the auth service and, on success, establishes
// the session and begins syncing. A rejected login does not touch any state.
// A session that is already live is superseded: it is evicted, and its push
// channel closed, before the new one is established.
func (o *Orchestrator) Login(ctx context.Context, email, password string) error {
	res, err := o.api.Login(ctx, email, password)
	if err != nil {
		return err
	}
	if o.sessions.Current() != nil {
		o.evict(ctx)
	}
	if _, err := o.sessions.Establish(ctx, res.User, res.Token); err != nil {
		return err
	}
	return o.beginSession(ctx)
}

// Register creates an account and establishes the returned session. Like
// Login, it supersedes any session that is already live.
func (o *Orchestrator) Register(ctx context.Context, email, password string) error {
	res, err := o.api.Register(ctx, email, password)
	if err != nil {
		return err
	}
	if o.sessions.Current() != nil {
		o.evict(ctx)
	}
	if _, err := o.sessions.Establish(ctx, res.User, res.Token); err != nil {
		return err
	}
	return o.beginSession(ctx)
}

// beginSession opens the push channel and performs the initial refetch.
func (o *Orchestrator) beginSession(ctx context.Context) error {
	sess := o.sessions.Current()
	if sess == nil {
		return common.ErrNoSession
	}

	ch, err := o.dialPush(ctx, sess.Credential)
	if err != nil {
		if errors.Is(err, common.ErrUnauthorized) {
			o.evict(ctx)
			return err
		}
		// Degraded: the session stays live and the user can still work;
		// refreshes just won't arrive until the next login.
		o.logger.Warn(ctx, "push channel unavailable", "error", err)
	} else {
		o.mu.Lock()
		o.channel = ch
		o.mu.Unlock()
		go o.consumeEvents(ch)
	}

	o.setState(StateSyncing)
	return o.refetch(ctx)
}

// refetch drives one cache refresh and the resulting state transition.
func (o *Orchestrator) refetch(ctx context.Context) error {
	err := o.cache.RefetchAll(ctx)
	if err == nil {
		o.setState(StateIdle)
		return nil
	}
	if errors.Is(err, common.ErrUnauthorized) {
		o.evict(ctx)
		return err
	}
	o.setState(StateError)
	return err
}

// Refresh re-syncs on explicit user request, re-entering the same path a
// push event uses.
func (o *Orchestrator) Refresh(ctx context.Context) error {
	if o.sessions.Current() == nil {
		return common.ErrNoSession
	}
	o.setState(StateSyncing)
	return o.refetch(ctx)
}

// CreateNote validates the draft, issues the remote create and, on success,
// refetches the collection.
func (o *Orchestrator) CreateNote(ctx context.Context, draft models.NoteDraft) error {
	if err := draft.Validate(); err != nil {
		return err
	}
	return o.mutate(ctx, func(ctx context.Context) error {
		_, err := o.api.CreateNote(ctx, draft)
		return err
	})
}

// UpdateNote validates the draft, issues the remote update and, on success,
// refetches the collection.
func (o *Orchestrator) UpdateNote(ctx context.Context, id string, draft models.NoteDraft) error {
	if err := draft.Validate(); err != nil {
		return err
	}
	return o.mutate(ctx, func(ctx context.Context) error {
		_, err := o.api.UpdateNote(ctx, id, draft)
		return err
	})
}

// TogglePin flips the pinned flag remotely and refetches.
func (o *Orchestrator) TogglePin(ctx context.Context, id string) error {
	return o.mutate(ctx, func(ctx context.Context) error {
		_, err := o.api.TogglePin(ctx, id)
		return err
	})
}

// DeleteNote requires an explicit confirmation before the destructive call
// is issued. Declining aborts with no remote side effect.
func (o *Orchestrator) DeleteNote(ctx context.Context, id string, confirm func() bool) error {
	if confirm == nil || !confirm() {
		return nil
	}
	return o.mutate(ctx, func(ctx context.Context) error {
		return o.api.DeleteNote(ctx, id)
	})
}

// Logout evicts the session on explicit user request.
func (o *Orchestrator) Logout(ctx context.Context) error {
	o.evict(ctx)
	return nil
}

// mutate runs the two-step mutation protocol: the remote call, then on
// success exactly one refetch. On failure the current state and collection
// are untouched, except that an unauthorized response evicts.
func (o *Orchestrator) mutate(ctx context.Context, op func(ctx context.Context) error) error {
	if o.sessions.Current() == nil {
		return common.ErrNoSession
	}
	if err := op(ctx); err != nil {
		if errors.Is(err, common.ErrUnauthorized) {
			o.evict(ctx)
		}
		return err
	}
	o.setState(StateSyncing)
	return o.refetch(ctx)
}

// evict tears down everything scoped to the session: persisted and live
// credentials, the push channel, the cached collection and the search term.
// Stale notes must never be visible without a session.
func (o *Orchestrator) evict(ctx context.Context) {
	if err := o.sessions.Evict(ctx); err != nil {
		o.logger.Error(ctx, "session eviction failed", "error", err)
	}

	o.mu.Lock()
	ch := o.channel
	o.channel = nil
	o.term = ""
	o.state = StateUnauthenticated
	o.mu.Unlock()

	if ch != nil {
		if err := ch.Close(); err != nil {
			o.logger.Warn(ctx, "closing push channel", "error", err)
		}
	}

	o.cache.Clear()
}

// consumeEvents is the push channel's single consumer. It re-enters the
// same refetch path used by user-triggered syncs and forwards due reminders
// to the dispatcher. It exits when the channel's event stream closes.
func (o *Orchestrator) consumeEvents(ch push.Channel) {
	ctx := context.Background()
	for ev := range ch.Events() {
		switch ev.Type {
		case models.EventCollectionChanged:
			o.setState(StateSyncing)
			if err := o.refetch(ctx); err != nil {
				o.logger.Warn(ctx, "push-triggered refetch failed", "error", err)
			}
		case models.EventReminderDue:
			if ev.Note != nil {
				o.reminders.Dispatch(*ev.Note)
			}
		}
	}
}
