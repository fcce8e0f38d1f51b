package sync

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/avelichko/notekeeper/internal/client/api"
	"github.com/avelichko/notekeeper/internal/client/cache"
	"github.com/avelichko/notekeeper/internal/client/models"
	"github.com/avelichko/notekeeper/internal/client/push"
	"github.com/avelichko/notekeeper/internal/client/session"
	"github.com/avelichko/notekeeper/internal/common"
	"github.com/avelichko/notekeeper/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI implements api.Client with canned state and call counters.
type fakeAPI struct {
	mu    sync.Mutex
	notes []models.Note

	listCalls   int
	createCalls int
	updateCalls int
	deleteCalls int
	pinCalls    int

	listErr   error
	createErr error
	deleteErr error
}

func (f *fakeAPI) Login(ctx context.Context, email, password string) (*api.AuthResult, error) {
	return &api.AuthResult{Token: "tok-1", User: models.Identity{ID: "u1", Email: email}}, nil
}

func (f *fakeAPI) Register(ctx context.Context, email, password string) (*api.AuthResult, error) {
	return &api.AuthResult{Token: "tok-1", User: models.Identity{ID: "u1", Email: email}}, nil
}

func (f *fakeAPI) ListNotes(ctx context.Context) ([]models.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]models.Note, len(f.notes))
	copy(out, f.notes)
	return out, nil
}

func (f *fakeAPI) CreateNote(ctx context.Context, draft models.NoteDraft) (*models.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	n := models.Note{ID: "new", Title: draft.Title, Content: draft.Content, Priority: draft.Priority}
	f.notes = append(f.notes, n)
	return &n, nil
}

func (f *fakeAPI) UpdateNote(ctx context.Context, id string, draft models.NoteDraft) (*models.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateCalls++
	for i := range f.notes {
		if f.notes[i].ID == id {
			f.notes[i].Title = draft.Title
			f.notes[i].Content = draft.Content
			return &f.notes[i], nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeAPI) DeleteNote(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls++
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for i := range f.notes {
		if f.notes[i].ID == id {
			f.notes = append(f.notes[:i], f.notes[i+1:]...)
			return nil
		}
	}
	return common.ErrNotFound
}

func (f *fakeAPI) TogglePin(ctx context.Context, id string) (*models.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pinCalls++
	for i := range f.notes {
		if f.notes[i].ID == id {
			f.notes[i].Pinned = !f.notes[i].Pinned
			return &f.notes[i], nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeAPI) listCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}

// fakeChannel is a controllable push channel.
type fakeChannel struct {
	events chan models.Event
	once   sync.Once
	closed bool
	mu     sync.Mutex
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{events: make(chan models.Event, 8)}
}

func (c *fakeChannel) Events() <-chan models.Event { return c.events }

func (c *fakeChannel) Close() error {
	c.once.Do(func() {
		c.mu.Lock()
		c.closed = true
		c.mu.Unlock()
		close(c.events)
	})
	return nil
}

func (c *fakeChannel) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

type recordingSink struct {
	mu    sync.Mutex
	notes []models.Note
}

func (r *recordingSink) Dispatch(n models.Note) {
	r.mu.Lock()
	r.notes = append(r.notes, n)
	r.mu.Unlock()
}

func (r *recordingSink) seen() []models.Note {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Note(nil), r.notes...)
}

type fixture struct {
	orch     *Orchestrator
	api      *fakeAPI
	sessions *session.Store
	channel  *fakeChannel
	sink     *recordingSink
	dials    int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	sessions, err := session.Open(context.Background(), filepath.Join(t.TempDir(), "client.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sessions.Close() })

	f := &fixture{
		api:      &fakeAPI{},
		sessions: sessions,
		channel:  newFakeChannel(),
		sink:     &recordingSink{},
	}

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	dial := func(ctx context.Context, credential string) (push.Channel, error) {
		f.dials++
		return f.channel, nil
	}

	f.orch = New(f.api, sessions, cache.New(f.api), f.sink, dial, logger)
	return f
}

func TestLogin_EstablishesSessionAndSyncs(t *testing.T) {
	f := newFixture(t)
	f.api.notes = []models.Note{{ID: "1", Title: "a", Content: "x"}}

	require.NoError(t, f.orch.Login(context.Background(), "a@b.c", "pw"))

	assert.Equal(t, StateIdle, f.orch.State())
	assert.Equal(t, 1, f.dials, "push channel opened exactly once")
	assert.Len(t, f.orch.Visible(), 1)
	require.NotNil(t, f.orch.Session())
	assert.Equal(t, "a@b.c", f.orch.Session().Identity.Email)
}

func TestRelogin_SupersedesLiveSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.api.notes = []models.Note{{ID: "1", Title: "a", Content: "x"}}

	require.NoError(t, f.orch.Login(ctx, "a@b.c", "pw"))
	first := f.channel

	// second login while the first session is still live
	f.channel = newFakeChannel()
	require.NoError(t, f.orch.Login(ctx, "a@b.c", "pw"))

	assert.True(t, first.isClosed(), "superseded push channel is closed")
	assert.False(t, f.channel.isClosed(), "replacement channel stays open")
	assert.Equal(t, 2, f.dials, "one dial per login")
	assert.Equal(t, StateIdle, f.orch.State())
	require.NotNil(t, f.orch.Session())

	// only the live channel drives refetches now
	lists := f.api.listCount()
	f.channel.events <- models.Event{Type: models.EventCollectionChanged}
	require.Eventually(t, func() bool { return f.api.listCount() == lists+1 }, time.Second, time.Millisecond)
}

func TestRestore_WithoutPersistedSession(t *testing.T) {
	f := newFixture(t)

	restored, err := f.orch.Restore(context.Background())
	require.NoError(t, err)
	assert.False(t, restored)
	assert.Equal(t, StateUnauthenticated, f.orch.State())
	assert.Zero(t, f.api.listCount(), "no network traffic without a session")
}

func TestMutation_TriggersExactlyOneRefetch(t *testing.T) {
	f := newFixture(t)
	f.api.notes = []models.Note{
		{ID: "1", Title: "a", Content: "x"},
		{ID: "2", Title: "b", Content: "y"},
		{ID: "3", Title: "c", Content: "z"},
	}
	ctx := context.Background()

	require.NoError(t, f.orch.Login(ctx, "a@b.c", "pw"))
	require.Equal(t, 1, f.api.listCount())

	err := f.orch.CreateNote(ctx, models.NoteDraft{Title: "d", Content: "w"})
	require.NoError(t, err)

	assert.Equal(t, 2, f.api.listCount(), "exactly one refetch per mutation")
	assert.Equal(t, StateIdle, f.orch.State())
	assert.Len(t, f.orch.Visible(), 4)
}

func TestCreate_ValidationFailure_NoNetworkCall(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.orch.Login(ctx, "a@b.c", "pw"))

	err := f.orch.CreateNote(ctx, models.NoteDraft{Title: "", Content: "w"})
	require.ErrorIs(t, err, common.ErrValidation)
	assert.Zero(t, f.api.createCalls)
	assert.Equal(t, 1, f.api.listCount(), "no refetch either")
}

func TestDelete_WithoutConfirmation_NoRemoteCalls(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.api.notes = []models.Note{{ID: "1", Title: "a", Content: "x"}}
	require.NoError(t, f.orch.Login(ctx, "a@b.c", "pw"))

	require.NoError(t, f.orch.DeleteNote(ctx, "1", func() bool { return false }))

	assert.Zero(t, f.api.deleteCalls)
	assert.Equal(t, 1, f.api.listCount())
	assert.Len(t, f.orch.Visible(), 1)
}

func TestDelete_Confirmed_DeletesAndRefetches(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.api.notes = []models.Note{{ID: "1", Title: "a", Content: "x"}}
	require.NoError(t, f.orch.Login(ctx, "a@b.c", "pw"))

	require.NoError(t, f.orch.DeleteNote(ctx, "1", func() bool { return true }))

	assert.Equal(t, 1, f.api.deleteCalls)
	assert.Equal(t, 2, f.api.listCount())
	assert.Empty(t, f.orch.Visible())
}

func TestMutationFailure_KeepsStateAndCollection(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.api.notes = []models.Note{{ID: "1", Title: "a", Content: "x"}}
	require.NoError(t, f.orch.Login(ctx, "a@b.c", "pw"))

	f.api.createErr = common.ErrUnavailable
	err := f.orch.CreateNote(ctx, models.NoteDraft{Title: "d", Content: "w"})
	require.ErrorIs(t, err, common.ErrUnavailable)

	assert.Equal(t, StateIdle, f.orch.State(), "failed mutation leaves state unchanged")
	assert.Len(t, f.orch.Visible(), 1)
	assert.Equal(t, 1, f.api.listCount(), "no refetch after a failed mutation")
}

func TestUnauthorizedRefetch_EvictsInSameHandlingPass(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.api.notes = []models.Note{{ID: "1", Title: "a", Content: "x"}}
	require.NoError(t, f.orch.Login(ctx, "a@b.c", "pw"))

	f.api.listErr = common.ErrUnauthorized
	err := f.orch.Refresh(ctx)
	require.ErrorIs(t, err, common.ErrUnauthorized)

	assert.Equal(t, StateUnauthenticated, f.orch.State())
	assert.Nil(t, f.orch.Session())
	assert.Empty(t, f.orch.Visible())
	assert.True(t, f.channel.isClosed(), "push channel closed on eviction")

	// persisted state is gone too: a restore finds nothing
	restored, err := f.orch.Restore(ctx)
	require.NoError(t, err)
	assert.False(t, restored)
}

func TestUnauthorizedMutation_Evicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.orch.Login(ctx, "a@b.c", "pw"))

	f.api.deleteErr = common.ErrUnauthorized
	err := f.orch.DeleteNote(ctx, "1", func() bool { return true })
	require.ErrorIs(t, err, common.ErrUnauthorized)
	assert.Equal(t, StateUnauthenticated, f.orch.State())
}

func TestTransientRefetchFailure_KeepsStaleCollection(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.api.notes = []models.Note{{ID: "1", Title: "a", Content: "x"}}
	require.NoError(t, f.orch.Login(ctx, "a@b.c", "pw"))

	f.api.listErr = common.ErrUnavailable
	err := f.orch.Refresh(ctx)
	require.ErrorIs(t, err, common.ErrUnavailable)

	assert.Equal(t, StateError, f.orch.State())
	assert.Len(t, f.orch.Visible(), 1, "stale-but-available view survives")
	require.NotNil(t, f.orch.Session(), "transient failure never destroys the session")

	// the next successful intent recovers
	f.api.listErr = nil
	require.NoError(t, f.orch.Refresh(ctx))
	assert.Equal(t, StateIdle, f.orch.State())
}

func TestLogout_ClearsEverything(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.api.notes = []models.Note{{ID: "1", Title: "a", Content: "x"}}
	require.NoError(t, f.orch.Login(ctx, "a@b.c", "pw"))
	f.orch.SetSearchTerm("a")

	require.NoError(t, f.orch.Logout(ctx))

	assert.Equal(t, StateUnauthenticated, f.orch.State())
	assert.Empty(t, f.orch.Visible())
	assert.Empty(t, f.orch.SearchTerm())
	assert.Nil(t, f.orch.Session())
	assert.True(t, f.channel.isClosed())
}

func TestPushCollectionChanged_TriggersRefetch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.api.notes = []models.Note{{ID: "1", Title: "a", Content: "x"}}
	require.NoError(t, f.orch.Login(ctx, "a@b.c", "pw"))
	require.Equal(t, 1, f.api.listCount())

	// another session mutated the collection
	f.api.mu.Lock()
	f.api.notes = append(f.api.notes, models.Note{ID: "2", Title: "b", Content: "y"})
	f.api.mu.Unlock()

	f.channel.events <- models.Event{Type: models.EventCollectionChanged}

	require.Eventually(t, func() bool { return f.api.listCount() == 2 }, time.Second, time.Millisecond)
	require.Eventually(t, func() bool { return len(f.orch.Visible()) == 2 }, time.Second, time.Millisecond)
	assert.Equal(t, StateIdle, f.orch.State())
}

func TestPushReminderDue_ForwardedToSink(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.orch.Login(ctx, "a@b.c", "pw"))

	f.channel.events <- models.Event{
		Type: models.EventReminderDue,
		Note: &models.Note{ID: "n1", Title: "water the plants"},
	}

	require.Eventually(t, func() bool { return len(f.sink.seen()) == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, "water the plants", f.sink.seen()[0].Title)
	assert.Equal(t, 1, f.api.listCount(), "reminder events do not refetch by themselves")
}

func TestSearch_FiltersVisibleNotes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.api.notes = []models.Note{
		{ID: "1", Title: "Groceries", Content: "milk"},
		{ID: "2", Title: "Taxes", Content: "april"},
	}
	require.NoError(t, f.orch.Login(ctx, "a@b.c", "pw"))

	f.orch.SetSearchTerm("gro")
	vis := f.orch.Visible()
	require.Len(t, vis, 1)
	assert.Equal(t, "Groceries", vis[0].Title)

	f.orch.SetSearchTerm("")
	assert.Len(t, f.orch.Visible(), 2)
}

func TestEndToEnd_LoginCreateLogout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.api.notes = []models.Note{
		{ID: "1", Title: "a", Content: "x"},
		{ID: "2", Title: "b", Content: "y"},
		{ID: "3", Title: "c", Content: "z"},
	}

	// login: session established, push channel opens, initial refetch
	require.NoError(t, f.orch.Login(ctx, "a@b.c", "pw"))
	require.Len(t, f.orch.Visible(), 3)
	require.Equal(t, 1, f.dials)
	listsBefore := f.api.listCount()

	// create a 4th note: exactly one additional refetch
	require.NoError(t, f.orch.CreateNote(ctx, models.NoteDraft{Title: "d", Content: "w"}))
	require.Equal(t, listsBefore+1, f.api.listCount())
	require.Len(t, f.orch.Visible(), 4)

	// logout: collection empty, channel closed
	require.NoError(t, f.orch.Logout(ctx))
	assert.Empty(t, f.orch.Visible())
	assert.True(t, f.channel.isClosed())
}
