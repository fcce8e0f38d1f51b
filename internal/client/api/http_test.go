package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/avelichko/notekeeper/internal/client/models"
	"github.com/avelichko/notekeeper/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticCreds string

func (s staticCreds) Credential() (string, error) { return string(s), nil }

func newTestClient(t *testing.T, handler http.Handler) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewHTTPClient(srv.URL, staticCreds("tok-123"), 5*time.Second)
}

func TestHTTPClient_Login_DecodesAuthResult(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/auth/login", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "a@b.c", body["email"])
		require.Equal(t, "secret", body["password"])

		json.NewEncoder(w).Encode(AuthResult{
			Token: "issued-token",
			User:  models.Identity{ID: "u1", Email: "a@b.c"},
		})
	}))

	res, err := c.Login(context.Background(), "a@b.c", "secret")
	require.NoError(t, err)
	assert.Equal(t, "issued-token", res.Token)
	assert.Equal(t, "u1", res.User.ID)
}

func TestHTTPClient_ListNotes_AttachesBearer(t *testing.T) {
	var gotAuth string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode([]models.Note{
			{ID: "n1", Title: "Groceries"},
			{ID: "n2", Title: "Taxes"},
		})
	}))

	notes, err := c.ListNotes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", gotAuth)
	require.Len(t, notes, 2)
	assert.Equal(t, "n1", notes[0].ID)
}

func TestHTTPClient_StatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"unauthorized", http.StatusUnauthorized, "", common.ErrUnauthorized},
		{"forbidden", http.StatusForbidden, "", common.ErrUnauthorized},
		{"not found", http.StatusNotFound, "", common.ErrNotFound},
		{"bad request", http.StatusBadRequest, `{"error":"title must not be empty"}`, common.ErrValidation},
		{"server error", http.StatusInternalServerError, "", common.ErrUnavailable},
		{"bad gateway", http.StatusBadGateway, "", common.ErrUnavailable},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				if tc.body != "" {
					w.Write([]byte(tc.body))
				}
			}))

			_, err := c.ListNotes(context.Background())
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestHTTPClient_ValidationErrorKeepsServerMessage(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"unknown priority"}`))
	}))

	_, err := c.CreateNote(context.Background(), models.NoteDraft{Title: "a", Content: "b"})
	require.ErrorIs(t, err, common.ErrValidation)
	assert.Contains(t, err.Error(), "unknown priority")
}

func TestHTTPClient_TransportErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close() // nothing is listening anymore

	c := NewHTTPClient(url, staticCreds("tok"), time.Second)
	_, err := c.ListNotes(context.Background())
	assert.ErrorIs(t, err, common.ErrUnavailable)
}

func TestHTTPClient_DeleteNote_NoBody(t *testing.T) {
	var gotPath, gotMethod string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotMethod = r.URL.Path, r.Method
		w.WriteHeader(http.StatusNoContent)
	}))

	require.NoError(t, c.DeleteNote(context.Background(), "n42"))
	assert.Equal(t, "/api/notes/n42", gotPath)
	assert.Equal(t, http.MethodDelete, gotMethod)
}

func TestHTTPClient_TogglePin_Path(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/notes/n1/toggle-pin", r.URL.Path)
		require.Equal(t, http.MethodPut, r.Method)
		json.NewEncoder(w).Encode(models.Note{ID: "n1", Pinned: true})
	}))

	note, err := c.TogglePin(context.Background(), "n1")
	require.NoError(t, err)
	assert.True(t, note.Pinned)
}
