package push

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/avelichko/notekeeper/internal/client/models"
	"github.com/avelichko/notekeeper/internal/common"
	"github.com/avelichko/notekeeper/internal/logging"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var upgrader = websocket.Upgrader{}

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// startPushServer runs a websocket endpoint that checks the bearer header
// and then feeds the given events to the client.
func startPushServer(t *testing.T, wantToken string, events []models.Event) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+wantToken {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for _, ev := range events {
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		}
		// hold the connection open until the client goes away
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestDial_UnauthorizedHandshake(t *testing.T) {
	url := startPushServer(t, "good-token", nil)

	_, err := Dial(context.Background(), url, "bad-token", testLogger())
	assert.ErrorIs(t, err, common.ErrUnauthorized)
}

func TestDial_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	srv.Close()

	_, err := Dial(context.Background(), url, "tok", testLogger())
	assert.ErrorIs(t, err, common.ErrUnavailable)
}

func TestSubscriber_DeliversTypedEvents(t *testing.T) {
	note := &models.Note{ID: "n1", Title: "water the plants"}
	url := startPushServer(t, "tok", []models.Event{
		{Type: models.EventCollectionChanged},
		{Type: models.EventReminderDue, Note: note},
	})

	s, err := Dial(context.Background(), url, "tok", testLogger())
	require.NoError(t, err)
	defer s.Close()

	ev1 := recv(t, s.Events())
	assert.Equal(t, models.EventCollectionChanged, ev1.Type)

	ev2 := recv(t, s.Events())
	assert.Equal(t, models.EventReminderDue, ev2.Type)
	require.NotNil(t, ev2.Note)
	assert.Equal(t, "water the plants", ev2.Note.Title)
}

func TestSubscriber_UnknownEventsAreSkipped(t *testing.T) {
	url := startPushServer(t, "tok", []models.Event{
		{Type: "mystery"},
		{Type: models.EventCollectionChanged},
	})

	s, err := Dial(context.Background(), url, "tok", testLogger())
	require.NoError(t, err)
	defer s.Close()

	ev := recv(t, s.Events())
	assert.Equal(t, models.EventCollectionChanged, ev.Type)
}

func TestSubscriber_CloseEndsEventStream(t *testing.T) {
	url := startPushServer(t, "tok", nil)

	s, err := Dial(context.Background(), url, "tok", testLogger())
	require.NoError(t, err)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close(), "Close must be idempotent")

	select {
	case _, ok := <-s.Events():
		assert.False(t, ok, "events channel must be closed")
	case <-time.After(time.Second):
		t.Fatal("events channel did not close")
	}
}

func recv(t *testing.T, ch <-chan models.Event) models.Event {
	t.Helper()
	select {
	case ev, ok := <-ch:
		require.True(t, ok, "event stream closed early")
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return models.Event{}
	}
}
