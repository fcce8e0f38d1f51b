// Package api contains the remote-store client: the interface consumed by
// the sync layer and an HTTP implementation speaking the server's REST API.
package api

import (
	"context"

	"github.com/avelichko/notekeeper/internal/client/models"
)

// AuthResult is the auth service's response to login and registration.
type AuthResult struct {
	Token string          `json:"token"`
	User  models.Identity `json:"user"`
}

// CredentialSource supplies the bearer credential for authenticated calls.
// The session store implements it; the client never holds the credential
// itself, so establish/evict take effect on the very next call.
type CredentialSource interface {
	Credential() (string, error)
}

// Client defines the remote operations the sync layer depends on.
//
// Every method maps remote failures to the shared sentinel errors:
// common.ErrUnauthorized for an invalid or expired credential,
// common.ErrUnavailable for transport and server errors,
// common.ErrValidation for rejected payloads, common.ErrNotFound for
// missing notes. Callers switch on errors.Is only.
type Client interface {
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Register(ctx context.Context, email, password string) (*AuthResult, error)
	ListNotes(ctx context.Context) ([]models.Note, error)
	CreateNote(ctx context.Context, draft models.NoteDraft) (*models.Note, error)
	UpdateNote(ctx context.Context, id string, draft models.NoteDraft) (*models.Note, error)
	DeleteNote(ctx context.Context, id string) error
	TogglePin(ctx context.Context, id string) (*models.Note, error)
}
