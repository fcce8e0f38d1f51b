package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/avelichko/notekeeper/internal/server/notes"
)

func (r *Router) handleListNotes(w http.ResponseWriter, req *http.Request) {
	userID := getUserID(req.Context())

	list, err := r.notes.List(req.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (r *Router) handleCreateNote(w http.ResponseWriter, req *http.Request) {
	userID := getUserID(req.Context())

	var draft notes.Draft
	if err := json.NewDecoder(req.Body).Decode(&draft); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	note, err := r.notes.Create(req.Context(), userID, draft)
	if err != nil {
		writeError(w, err)
		return
	}

	r.hub.Broadcast(userID, "collection-changed", nil)
	writeJSON(w, http.StatusCreated, note)
}

func (r *Router) handleUpdateNote(w http.ResponseWriter, req *http.Request) {
	userID := getUserID(req.Context())
	id := chi.URLParam(req, "id")

	var draft notes.Draft
	if err := json.NewDecoder(req.Body).Decode(&draft); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	note, err := r.notes.Update(req.Context(), userID, id, draft)
	if err != nil {
		writeError(w, err)
		return
	}

	r.hub.Broadcast(userID, "collection-changed", nil)
	writeJSON(w, http.StatusOK, note)
}

func (r *Router) handleDeleteNote(w http.ResponseWriter, req *http.Request) {
	userID := getUserID(req.Context())
	id := chi.URLParam(req, "id")

	if err := r.notes.Delete(req.Context(), userID, id); err != nil {
		writeError(w, err)
		return
	}

	r.hub.Broadcast(userID, "collection-changed", nil)
	w.WriteHeader(http.StatusNoContent)
}

func (r *Router) handleTogglePin(w http.ResponseWriter, req *http.Request) {
	userID := getUserID(req.Context())
	id := chi.URLParam(req, "id")

	note, err := r.notes.TogglePin(req.Context(), userID, id)
	if err != nil {
		writeError(w, err)
		return
	}

	r.hub.Broadcast(userID, "collection-changed", nil)
	writeJSON(w, http.StatusOK, note)
}
