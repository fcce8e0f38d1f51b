// Package httpapi exposes the NoteKeeper REST API and the push websocket
// endpoint.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/avelichko/notekeeper/internal/common"
	"github.com/avelichko/notekeeper/internal/logging"
	"github.com/avelichko/notekeeper/internal/server/notes"
	"github.com/avelichko/notekeeper/internal/server/users"
)

// AuthService is the slice of users.Service the handlers need.
type AuthService interface {
	Register(ctx context.Context, email, password string) (*users.AuthResult, error)
	Login(ctx context.Context, email, password string) (*users.AuthResult, error)
}

// NotesService is the slice of notes.Service the handlers need.
type NotesService interface {
	List(ctx context.Context, userID string) ([]notes.Note, error)
	Create(ctx context.Context, userID string, draft notes.Draft) (*notes.Note, error)
	Update(ctx context.Context, userID, id string, draft notes.Draft) (*notes.Note, error)
	Delete(ctx context.Context, userID, id string) error
	TogglePin(ctx context.Context, userID, id string) (*notes.Note, error)
}

// PushHub accepts websocket connections and fans events out per user.
// hub.Hub satisfies it.
type PushHub interface {
	Register(userID string, conn *websocket.Conn)
	HandleConnection(conn *websocket.Conn)
	Broadcast(userID, eventType string, note *notes.Note)
}

type Router struct {
	auth      AuthService
	notes     NotesService
	hub       PushHub
	jwtSecret []byte
	logger    logging.Logger
}

func NewRouter(auth AuthService, notesService NotesService, pushHub PushHub, jwtSecret []byte, logger logging.Logger) http.Handler {
	r := &Router{auth: auth, notes: notesService, hub: pushHub, jwtSecret: jwtSecret, logger: logger}
	mux := chi.NewRouter()

	mux.Get("/health", r.handleHealth)
	mux.Post("/api/auth/register", r.handleRegister)
	mux.Post("/api/auth/login", r.handleLogin)

	mux.Group(func(pr chi.Router) {
		pr.Use(r.authMiddleware)
		pr.Get("/api/notes", r.handleListNotes)
		pr.Post("/api/notes", r.handleCreateNote)
		pr.Put("/api/notes/{id}", r.handleUpdateNote)
		pr.Delete("/api/notes/{id}", r.handleDeleteNote)
		pr.Put("/api/notes/{id}/toggle-pin", r.handleTogglePin)
		pr.Get("/ws", r.handleWebsocket)
	})

	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the service sentinels onto HTTP statuses with a JSON
// {"error": ...} body, matching what the client's status mapping expects.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, common.ErrValidation):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, common.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, common.ErrUnauthorized), errors.Is(err, common.ErrInvalidToken):
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}
