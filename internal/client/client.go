// Package client talks to the roster API and keeps a local, optimistically
// updated copy of each resource list.
//
// Client is the typed transport. View layers the load/create/update/delete
// state machine on top of it.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aanand-mishra/roster-api/internal/types"
)

// DefaultBaseURL is where the API listens when nothing else is configured.
const DefaultBaseURL = "http://localhost:4000"

// APIError is returned for every non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("api error: %d: %s", e.StatusCode, e.Message)
}

// StatusCode extracts the HTTP status from err, or 0 if err is not an
// *APIError.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// TokenSource hands out the bearer token attached to student mutations.
// It is asked immediately before every such request.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a TokenSource that always returns the same token.
type StaticToken string

func (t StaticToken) Token(context.Context) (string, error) {
	if t == "" {
		return "", errors.New("empty token")
	}
	return string(t), nil
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func(ctx context.Context) (string, error)

func (f TokenFunc) Token(ctx context.Context) (string, error) { return f(ctx) }

// Client is a typed HTTP client for the roster API.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTokenSource sets the source of bearer tokens for student mutations.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// New returns a Client for baseURL.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Tokens returns the configured token source, or nil.
func (c *Client) Tokens() TokenSource {
	return c.tokens
}

// ListUsers calls GET /users.
func (c *Client) ListUsers(ctx context.Context) ([]types.User, error) {
	var out []types.User
	err := c.do(ctx, http.MethodGet, "/users", false, nil, &out)
	return out, err
}

// GetUser calls GET /users/{id}.
func (c *Client) GetUser(ctx context.Context, id int64) (types.User, error) {
	var out types.User
	err := c.do(ctx, http.MethodGet, "/users/"+itoa(id), false, nil, &out)
	return out, err
}

// CreateUser calls POST /users.
func (c *Client) CreateUser(ctx context.Context, in types.UserInput) (types.User, error) {
	var out types.User
	err := c.do(ctx, http.MethodPost, "/users", false, in, &out)
	return out, err
}

// UpdateUser calls PUT /users/{id}.
func (c *Client) UpdateUser(ctx context.Context, id int64, in types.UserInput) (types.User, error) {
	var out types.User
	err := c.do(ctx, http.MethodPut, "/users/"+itoa(id), false, in, &out)
	return out, err
}

// DeleteUser calls DELETE /users/{id} and returns the deleted user.
func (c *Client) DeleteUser(ctx context.Context, id int64) (types.User, error) {
	var out struct {
		Message string     `json:"message"`
		User    types.User `json:"user"`
	}
	err := c.do(ctx, http.MethodDelete, "/users/"+itoa(id), false, nil, &out)
	return out.User, err
}

// ListStudents calls GET /students. Reads never carry a token.
func (c *Client) ListStudents(ctx context.Context) ([]types.Student, error) {
	var out []types.Student
	err := c.do(ctx, http.MethodGet, "/students", false, nil, &out)
	return out, err
}

// GetStudent calls GET /students/{id}.
func (c *Client) GetStudent(ctx context.Context, id int64) (types.Student, error) {
	var out types.Student
	err := c.do(ctx, http.MethodGet, "/students/"+itoa(id), false, nil, &out)
	return out, err
}

// CreateStudent calls POST /students with a bearer token.
func (c *Client) CreateStudent(ctx context.Context, in types.StudentInput) (types.Student, error) {
	var out types.Student
	err := c.do(ctx, http.MethodPost, "/students", true, in, &out)
	return out, err
}

// BulkCreateStudents calls POST /students/bulk with a bearer token.
func (c *Client) BulkCreateStudents(ctx context.Context, in []types.StudentInput) ([]types.Student, error) {
	var out []types.Student
	err := c.do(ctx, http.MethodPost, "/students/bulk", true, in, &out)
	return out, err
}

// UpdateStudent calls PUT /students/{id} with a bearer token.
func (c *Client) UpdateStudent(ctx context.Context, id int64, in types.StudentInput) (types.Student, error) {
	var out types.Student
	err := c.do(ctx, http.MethodPut, "/students/"+itoa(id), true, in, &out)
	return out, err
}

// DeleteStudent calls DELETE /students/{id} with a bearer token and
// returns the deleted student.
func (c *Client) DeleteStudent(ctx context.Context, id int64) (types.Student, error) {
	var out struct {
		Message string        `json:"message"`
		Student types.Student `json:"student"`
	}
	err := c.do(ctx, http.MethodDelete, "/students/"+itoa(id), true, nil, &out)
	return out.Student, err
}

func (c *Client) do(ctx context.Context, method, path string, withToken bool, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	if withToken && c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return fmt.Errorf("get token: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var env struct {
			Message string `json:"message"`
		}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		if json.Unmarshal(raw, &env) != nil {
			env.Message = strings.TrimSpace(string(raw))
		}
		return &APIError{StatusCode: resp.StatusCode, Message: env.Message}
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
