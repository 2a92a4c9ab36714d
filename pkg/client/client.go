// Package client is the Go consumer of the acervo REST API: a thin HTTP
// wrapper with a retry policy, a staleness-window cache with request
// coalescing, and the search loop that ties filter state, debouncing and
// fetching together.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"acervo/pkg/model"
)

// Error taxonomy. API failures unwrap to one of these so callers can branch
// without string matching.
var (
	ErrNotFound      = errors.New("resource not found")
	ErrUnauthorized  = errors.New("authentication required")
	ErrForbidden     = errors.New("access denied")
	ErrSelfDemotion  = errors.New("você não pode remover seus próprios privilégios de administrador")
	ErrUnreachable   = errors.New("server unreachable")
)

// APIError is a non-2xx response decoded from the server's error envelope.
type APIError struct {
	Status   int
	Code     string
	Message  string
	Messages []string
}

func (e *APIError) Error() string {
	if len(e.Messages) > 0 {
		return fmt.Sprintf("%s: %s", e.Code, strings.Join(e.Messages, "; "))
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap maps the HTTP status to the error taxonomy.
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	default:
		return nil
	}
}

const (
	defaultRetries  = 2
	defaultPageSize = 9
	defaultCookie   = "acervo_session"
)

// Client talks to one acervo server.
type Client struct {
	baseURL    string
	httpc      *http.Client
	token      string
	retries    int
	pageSize   int
	cookieName string
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpc = h }
}

// WithToken sets the session token used for Bearer authentication.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithRetries sets how many times a failed read is retried.
func WithRetries(n int) Option {
	return func(c *Client) { c.retries = n }
}

// WithPageSize sets the listing page size.
func WithPageSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// New returns a Client for the given base URL ("http://host:port").
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpc:      &http.Client{Timeout: 30 * time.Second},
		retries:    defaultRetries,
		pageSize:   defaultPageSize,
		cookieName: defaultCookie,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken replaces the session token (after Login, or from saved state).
func (c *Client) SetToken(token string) { c.token = token }

// Token returns the current session token.
func (c *Client) Token() string { return c.token }

// PageSize returns the configured listing page size.
func (c *Client) PageSize() int { return c.pageSize }

type envelope struct {
	Success  bool            `json:"success"`
	Data     json.RawMessage `json:"data"`
	Error    string          `json:"error"`
	Message  string          `json:"message"`
	Messages []string        `json:"messages"`
	Pagination struct {
		Total  int `json:"total"`
		Limit  int `json:"limit"`
		Offset int `json:"offset"`
		Pages  int `json:"pages"`
	} `json:"pagination"`
}

// do runs one request and decodes the response envelope. Reads (nil body)
// are retried on network failures and 5xx responses; requests with a body
// are sent exactly once.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body []byte, contentType string) (*envelope, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	attempts := 1
	if body == nil && method == http.MethodGet {
		attempts += c.retries
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * 100 * time.Millisecond):
			}
		}

		var r io.Reader
		if body != nil {
			r = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, u, r)
		if err != nil {
			return nil, err
		}
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}

		resp, err := c.httpc.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: %v", ErrUnreachable, err)
			continue
		}

		env, err := decodeEnvelope(resp)
		if err != nil {
			var apiErr *APIError
			if errors.As(err, &apiErr) && apiErr.Status >= 500 {
				lastErr = err
				continue
			}
			return nil, err
		}
		return env, nil
	}
	return nil, lastErr
}

func decodeEnvelope(resp *http.Response) (*envelope, error) {
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return &envelope{Success: true}, nil
	}

	var env envelope
	dec := json.NewDecoder(resp.Body)
	if err := dec.Decode(&env); err != nil {
		if resp.StatusCode >= 400 {
			return nil, &APIError{Status: resp.StatusCode, Code: "HTTP_ERROR", Message: resp.Status}
		}
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if resp.StatusCode >= 400 || !env.Success {
		code := env.Error
		if code == "" {
			code = "HTTP_ERROR"
		}
		return nil, &APIError{
			Status:   resp.StatusCode,
			Code:     code,
			Message:  env.Message,
			Messages: env.Messages,
		}
	}
	return &env, nil
}

// Login authenticates and keeps the session token for later calls.
func (c *Client) Login(ctx context.Context, email, password string) (*model.User, error) {
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return nil, err
	}

	// Raw request: the token travels in the Set-Cookie header.
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/login", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}

	for _, ck := range resp.Cookies() {
		if ck.Name == c.cookieName && ck.Value != "" {
			c.token = ck.Value
		}
	}

	env, err := decodeEnvelope(resp)
	if err != nil {
		return nil, err
	}
	var user model.User
	if err := json.Unmarshal(env.Data, &user); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	return &user, nil
}

// Logout drops the session on both sides.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, "/auth/logout", nil, []byte("{}"), "application/json")
	c.token = ""
	return err
}

// Me returns the authenticated account.
func (c *Client) Me(ctx context.Context) (*model.User, error) {
	env, err := c.do(ctx, http.MethodGet, "/auth/me", nil, nil, "")
	if err != nil {
		return nil, err
	}
	var user model.User
	if err := json.Unmarshal(env.Data, &user); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	return &user, nil
}
