// Package backend is the HTTP adapter for the external document store that
// owns all user records. It is the only package that sees the store's wire
// format; everything above it works with model.User.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// defaultTimeout bounds every backend call.
	defaultTimeout = 10 * time.Second

	// maxErrorBody limits how much of an error response body is read.
	maxErrorBody = 4 << 10
)

// ErrNotFound indicates the backend has no record for the given key.
var ErrNotFound = errors.New("backend: record not found")

// ConflictError is returned when the backend rejects a create with HTTP 409.
// Message carries the backend's plain-text explanation verbatim; the UI
// surfaces it to the operator without rewording.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return "backend: conflict: " + e.Message
}

// Client issues POST-JSON requests to the backend API.
type Client struct {
	baseURL string
	secret  string
	http    *http.Client
}

// New creates a backend client. secret may be empty when the backend does
// not require authentication (local development).
func New(baseURL, secret string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		secret:  secret,
		http:    &http.Client{Timeout: defaultTimeout},
	}
}

// CreateUserParams is the payload for user creation and the real-user upsert.
type CreateUserParams struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Sex        string `json:"sex"`
	Profession string `json:"profession"`
}

// GetUserByID fetches a single user envelope by its backend-assigned ID.
func (c *Client) GetUserByID(ctx context.Context, id string) (Envelope, error) {
	var env Envelope
	err := c.post(ctx, "/users/get/id", map[string]string{"userId": id}, &env)
	return env, err
}

// ListUsers fetches one page of user envelopes plus the total count.
func (c *Client) ListUsers(ctx context.Context, page, perPage int) (ListEnvelope, error) {
	var list ListEnvelope
	err := c.post(ctx, "/users/get", map[string]int{"page": page, "perPage": perPage}, &list)
	return list, err
}

// CreateUser creates a user record. A duplicate yields a *ConflictError
// carrying the backend's message.
func (c *Client) CreateUser(ctx context.Context, params CreateUserParams) (Envelope, error) {
	var env Envelope
	err := c.post(ctx, "/users/create", params, &env)
	return env, err
}

// SyncUser upserts the signed-in operator's own record, keyed by email.
// The backend contract is that repeated calls with the same email are
// idempotent; concurrent identical calls (two tabs logging in at once) rely
// on that contract; this client does not serialize them across requests.
func (c *Client) SyncUser(ctx context.Context, params CreateUserParams) error {
	return c.post(ctx, "/realusers/create", params, nil)
}

// GetRealUserByEmail fetches the operator's own record by email.
func (c *Client) GetRealUserByEmail(ctx context.Context, email string) (Envelope, error) {
	var env Envelope
	err := c.post(ctx, "/realusers/get/email", map[string]string{"email": email}, &env)
	return env, err
}

// post sends a JSON body to path and decodes the JSON response into out
// (skipped when out is nil).
func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding request for %s: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("building request for %s: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if c.secret != "" {
		req.Header.Set("Authorization", "Bearer "+c.secret)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("backend request %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusConflict:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &ConflictError{Message: strings.TrimSpace(string(msg))}
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("backend %s returned %d: %s", path, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response from %s: %w", path, err)
	}
	return nil
}
