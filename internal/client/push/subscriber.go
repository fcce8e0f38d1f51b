// Package push consumes the server-to-client event stream. The channel is
// identity-scoped: it is opened exactly once when a session becomes live and
// closed exactly once when the session is evicted.
package push

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/avelichko/notekeeper/internal/client/models"
	"github.com/avelichko/notekeeper/internal/common"
	"github.com/avelichko/notekeeper/internal/logging"
	"github.com/gorilla/websocket"
)

// Channel is the surface the orchestrator depends on. Events() is closed
// when the stream ends, whether by Close or by a broken connection.
type Channel interface {
	Events() <-chan models.Event
	Close() error
}

type Subscriber struct {
	conn   *websocket.Conn
	events chan models.Event
	logger logging.Logger

	closeOnce sync.Once
}

// Dial opens the push channel at wsURL (e.g. "ws://127.0.0.1:8080/ws"),
// authenticating with the given bearer credential. A rejected handshake with
// an unauthorized status maps to common.ErrUnauthorized so the caller can
// evict the session.
func Dial(ctx context.Context, wsURL, credential string, logger logging.Logger) (*Subscriber, error) {
	header := http.Header{}
	header.Set(common.AuthorizationHeaderName, common.BearerPrefix+credential)

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, header)
	if err != nil {
		if resp != nil && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) {
			return nil, common.ErrUnauthorized
		}
		return nil, fmt.Errorf("%w: dialing push channel: %v", common.ErrUnavailable, err)
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	s := &Subscriber{
		conn:   conn,
		events: make(chan models.Event, 16),
		logger: logger,
	}
	go s.readLoop()
	return s, nil
}

// Events returns the inbound event stream. It has a single consumer: the
// sync orchestrator.
func (s *Subscriber) Events() <-chan models.Event {
	return s.events
}

// Close shuts the channel down. Idempotent.
func (s *Subscriber) Close() error {
	var err error
	s.closeOnce.Do(func() {
		err = s.conn.Close()
	})
	return err
}

func (s *Subscriber) readLoop() {
	defer close(s.events)
	for {
		var ev models.Event
		if err := s.conn.ReadJSON(&ev); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug(context.Background(), "push channel closed", "error", err)
			}
			return
		}

		switch ev.Type {
		case models.EventCollectionChanged, models.EventReminderDue:
			s.events <- ev
		default:
			s.logger.Warn(context.Background(), "unknown push event", "type", ev.Type)
		}
	}
}
