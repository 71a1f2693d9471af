package attend

import (
	"fmt"
	"net/url"
	"strings"
	"sync"
)

// Client talks to the attendance backend. It owns the bearer credential for
// the process: every outgoing request is decorated with it, and a 401 from
// any endpoint demotes the client back to anonymous before the caller sees
// the error.
type Client struct {
	baseURL   *url.URL
	creds     CredentialStore
	mu        sync.Mutex
	token     string
	onExpired func()
}

// New creates a client for the backend at rawURL. The credential store is
// read once to seed the initial state; pass a MemoryCredentialStore when no
// persistence is wanted.
func New(rawURL string, creds CredentialStore) (*Client, error) {
	parsed, err := url.Parse(strings.TrimRight(rawURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid backend URL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid backend URL %q: scheme and host are required", rawURL)
	}

	token, err := creds.Load()
	if err != nil {
		return nil, err
	}

	return &Client{baseURL: parsed, creds: creds, token: token}, nil
}

// resolveURL builds a full URL from the base URL and the given path segments.
// A query string in the last segment is split off so JoinPath only receives
// path material.
func (c *Client) resolveURL(pathSegments ...string) string {
	if len(pathSegments) == 0 {
		return c.baseURL.String()
	}
	last := pathSegments[len(pathSegments)-1]
	if pathPart, query, ok := strings.Cut(last, "?"); ok {
		pathSegments[len(pathSegments)-1] = pathPart
		result := c.baseURL.JoinPath(pathSegments...)
		result.RawQuery = query
		return result.String()
	}
	return c.baseURL.JoinPath(pathSegments...).String()
}

// BaseURL returns the backend origin the client was created with.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// ResolveLocator resolves a relative image locator returned by the backend
// (e.g. "/users/7/face/2") against the backend origin.
func (c *Client) ResolveLocator(locator string) string {
	return c.baseURL.JoinPath(locator).String()
}

// SetCredential sets or clears the active credential and persists the change.
// An empty token clears it.
func (c *Client) SetCredential(token string) error {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()

	if token == "" {
		return c.creds.Clear()
	}
	return c.creds.Save(token)
}

// Credential returns the active bearer token, or "" when anonymous.
func (c *Client) Credential() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// Authenticated reports whether a credential is present. Its presence is the
// sole determinant of the authenticated state.
func (c *Client) Authenticated() bool {
	return c.Credential() != ""
}

// OnAuthExpired registers a hook invoked exactly once per transition from
// authenticated to anonymous caused by a 401 response. The hook runs before
// the failing call returns to its caller.
func (c *Client) OnAuthExpired(fn func()) {
	c.mu.Lock()
	c.onExpired = fn
	c.mu.Unlock()
}

// expireCredential clears the token in response to a 401 and fires the hook.
// Concurrent 401s collapse into a single transition.
func (c *Client) expireCredential() {
	c.mu.Lock()
	if c.token == "" {
		c.mu.Unlock()
		return
	}
	c.token = ""
	hook := c.onExpired
	c.mu.Unlock()

	// Best effort: the in-memory state is already anonymous even if the
	// store cannot be written.
	_ = c.creds.Clear()

	if hook != nil {
		hook()
	}
}
