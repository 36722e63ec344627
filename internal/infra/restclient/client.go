package restclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	dom "example.com/user-admin/internal/domain/user"
)

// Client talks to the users resource of a remote user store.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

// Option customises client instantiation.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

// WithToken sends token as a bearer credential on every request.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = strings.TrimSpace(token)
	}
}

// New constructs a Client pointing at the store base URL.
func New(base string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimSpace(base)
	if trimmed == "" {
		trimmed = "http://localhost:3001"
	}
	if !strings.HasPrefix(trimmed, "http://") && !strings.HasPrefix(trimmed, "https://") {
		trimmed = "http://" + trimmed
	}
	if _, err := url.Parse(trimmed); err != nil {
		return nil, fmt.Errorf("invalid store base url: %w", err)
	}
	cli := &Client{
		baseURL:    strings.TrimRight(trimmed, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(cli)
	}
	return cli, nil
}

func (c *Client) List(ctx context.Context) ([]dom.User, error) {
	users := []dom.User{}
	if err := c.do(ctx, http.MethodGet, "/users", nil, &users); err != nil {
		return nil, err
	}
	if users == nil {
		users = []dom.User{}
	}
	return users, nil
}

func (c *Client) Get(ctx context.Context, id int64) (dom.User, error) {
	var u dom.User
	err := c.do(ctx, http.MethodGet, userPath(id), nil, &u)
	return u, err
}

func (c *Client) Create(ctx context.Context, in dom.Candidate) (dom.User, error) {
	var u dom.User
	err := c.do(ctx, http.MethodPost, "/users", in, &u)
	return u, err
}

// Update sends every field of u. The store keeps the id from the path.
func (c *Client) Update(ctx context.Context, u dom.User) (dom.User, error) {
	var out dom.User
	err := c.do(ctx, http.MethodPatch, userPath(u.ID), u, &out)
	return out, err
}

// Patch sends only the fields set in p.
func (c *Client) Patch(ctx context.Context, id int64, p dom.Patch) (dom.User, error) {
	var out dom.User
	err := c.do(ctx, http.MethodPatch, userPath(id), p, &out)
	return out, err
}

func (c *Client) Delete(ctx context.Context, id int64) (dom.Ack, error) {
	ack := dom.Ack{}
	if err := c.do(ctx, http.MethodDelete, userPath(id), nil, &ack); err != nil {
		return nil, err
	}
	return ack, nil
}

func userPath(id int64) string {
	return "/users/" + strconv.FormatInt(id, 10)
}

func (c *Client) do(ctx context.Context, method, path string, body any, v any) error {
	if ctx == nil {
		ctx = context.Background()
	}
	fail := func(status int, reason string, cause error) error {
		return &RequestFailedError{Method: method, Path: path, Status: status, Reason: reason, Err: cause}
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fail(0, "create request", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fail(0, "perform request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fail(resp.StatusCode, extractError(resp), nil)
	}

	if v == nil {
		return nil
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fail(resp.StatusCode, "read response", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fail(resp.StatusCode, "decode response", err)
	}
	return nil
}

// extractError prefers the store's {"error": "..."} message and falls back to the status text.
func extractError(resp *http.Response) string {
	data, err := io.ReadAll(resp.Body)
	if err == nil && len(data) > 0 {
		var payload struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &payload) == nil && strings.TrimSpace(payload.Error) != "" {
			return strings.TrimSpace(payload.Error)
		}
	}
	return http.StatusText(resp.StatusCode)
}
