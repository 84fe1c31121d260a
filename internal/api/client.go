// Package api is the JSON transport to the task backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tgienger/teamboard/internal/logger"
)

// Resource paths and query parameter names. Every call site goes through
// these so the backend contract is spelled out once.
const (
	PathTeams    = "/teams"
	PathProjects = "/projects"
	PathTasks    = "/tasks"
	PathComments = "/comments"
	PathLogin    = "/auth/login"
	PathRegister = "/auth/register"

	ParamProjectID = "projectId"
	ParamTaskID    = "taskId"
)

// ItemPath returns the path of a single resource, e.g. /tasks/7
func ItemPath(collection string, id int64) string {
	return collection + "/" + strconv.FormatInt(id, 10)
}

// MembersPath returns the members sub-resource of a team
func MembersPath(teamID int64) string {
	return ItemPath(PathTeams, teamID) + "/members"
}

// Doer sends one JSON request. Services depend on this rather than *Client.
type Doer interface {
	Do(ctx context.Context, method, path string, query url.Values, body, out any) error
}

// Client talks to the REST backend
type Client struct {
	baseURL string
	http    *http.Client
	session *Session

	mu       sync.Mutex
	onUnauth map[int]func()
	nextID   int
}

// Option customizes a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// NewClient creates a client for baseURL (e.g. http://localhost:3000/api)
func NewClient(baseURL string, session *Session, opts ...Option) *Client {
	if session == nil {
		session = NewSession(context.Background(), nil)
	}
	c := &Client{
		baseURL:  baseURL,
		http:     &http.Client{Timeout: 15 * time.Second},
		session:  session,
		onUnauth: make(map[int]func()),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Session returns the session whose token is attached to requests
func (c *Client) Session() *Session {
	return c.session
}

// OnUnauthenticated registers fn to run after any 401. The session token has
// already been cleared when fn runs.
func (c *Client) OnUnauthenticated(fn func()) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.onUnauth[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.onUnauth, id)
		c.mu.Unlock()
	}
}

// envelope is the optional {"success":..,"data":..} wrapper some endpoints use
type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Do sends a JSON request and decodes the response into out. A nil out or an
// empty response body leaves out untouched.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		logger.Warn("%s %s failed after %s (request %s): %v", method, path, time.Since(start), requestID, err)
		return &Error{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Status: 0, Method: method, Path: path, Err: fmt.Errorf("read body: %w", err)}
	}
	logger.Debug("%s %s -> %d in %s (request %s)", method, path, resp.StatusCode, time.Since(start), requestID)

	if resp.StatusCode >= 400 {
		apiErr := &Error{Status: resp.StatusCode, Method: method, Path: path}
		var eb errorBody
		if json.Unmarshal(raw, &eb) == nil {
			apiErr.Message = eb.Error
			if apiErr.Message == "" {
				apiErr.Message = eb.Message
			}
		}
		logger.Error("%s %s: %d %s (request %s)", method, path, resp.StatusCode, apiErr.Message, requestID)
		if resp.StatusCode == http.StatusUnauthorized {
			c.unauthenticated(ctx)
		}
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(unwrap(raw), out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// unwrap strips the success/data envelope when present
func unwrap(raw []byte) []byte {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return raw
	}
	var env envelope
	if json.Unmarshal(trimmed, &env) != nil || env.Success == nil || len(env.Data) == 0 {
		return raw
	}
	return env.Data
}

func (c *Client) unauthenticated(ctx context.Context) {
	c.session.Clear(ctx)

	c.mu.Lock()
	fns := make([]func(), 0, len(c.onUnauth))
	for _, fn := range c.onUnauth {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
