package models

import "time"

// Identity is the authenticated user as reported by the auth service.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session is the live authenticated identity plus bearer credential for the
// current client run. Exactly one Session is live at a time; it is owned by
// the session store and the credential is only ever attached to outgoing
// calls, never handed to presentation code.
type Session struct {
	Identity      Identity
	Credential    string
	EstablishedAt time.Time
}
