package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/avelichko/notekeeper/internal/client/models"
	"github.com/avelichko/notekeeper/internal/common"
)

const defaultRequestTimeout = 12 * time.Second

// HTTPClient talks to the note store and auth service over REST.
// Authenticated calls attach the bearer credential from the
// CredentialSource on every request.
type HTTPClient struct {
	baseURL string
	creds   CredentialSource
	http    *http.Client
	timeout time.Duration
}

// NewHTTPClient builds a client for the given base URL, e.g.
// "http://127.0.0.1:8080". A zero timeout selects the default.
func NewHTTPClient(baseURL string, creds CredentialSource, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		creds:   creds,
		http:    &http.Client{},
		timeout: timeout,
	}
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	var res AuthResult
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", body, &res, false); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *HTTPClient) Register(ctx context.Context, email, password string) (*AuthResult, error) {
	var res AuthResult
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", body, &res, false); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *HTTPClient) ListNotes(ctx context.Context) ([]models.Note, error) {
	var notes []models.Note
	if err := c.do(ctx, http.MethodGet, "/api/notes", nil, &notes, true); err != nil {
		return nil, err
	}
	return notes, nil
}

func (c *HTTPClient) CreateNote(ctx context.Context, draft models.NoteDraft) (*models.Note, error) {
	var note models.Note
	if err := c.do(ctx, http.MethodPost, "/api/notes", draft, &note, true); err != nil {
		return nil, err
	}
	return &note, nil
}

func (c *HTTPClient) UpdateNote(ctx context.Context, id string, draft models.NoteDraft) (*models.Note, error) {
	var note models.Note
	if err := c.do(ctx, http.MethodPut, "/api/notes/"+id, draft, &note, true); err != nil {
		return nil, err
	}
	return &note, nil
}

func (c *HTTPClient) DeleteNote(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/notes/"+id, nil, nil, true)
}

func (c *HTTPClient) TogglePin(ctx context.Context, id string) (*models.Note, error) {
	var note models.Note
	if err := c.do(ctx, http.MethodPut, "/api/notes/"+id+"/toggle-pin", nil, &note, true); err != nil {
		return nil, err
	}
	return &note, nil
}

// do performs one JSON round-trip and decodes the response into out
// (out may be nil for calls with no useful body).
func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any, authed bool) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		token, err := c.creds.Credential()
		if err != nil {
			return err
		}
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if err := mapStatus(resp); err != nil {
		return err
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// mapStatus converts non-2xx responses into sentinel errors. The body of an
// error response is `{"error": "..."}` and its message is preserved where it
// helps the user (validation).
func mapStatus(resp *http.Response) error {
	if resp.StatusCode < 300 {
		return nil
	}

	var payload struct {
		Error string `json:"error"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&payload)

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return common.ErrUnauthorized
	case http.StatusNotFound:
		return common.ErrNotFound
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		if payload.Error != "" {
			return fmt.Errorf("%w: %s", common.ErrValidation, payload.Error)
		}
		return common.ErrValidation
	default:
		return fmt.Errorf("%w: unexpected status %s", common.ErrUnavailable, resp.Status)
	}
}
