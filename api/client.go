// Package api is a thin client for the Openclawd HTTP API.
//
// Every method issues exactly one HTTP request and hands the decoded JSON
// object back to the caller untouched. Whether a body reporting
// "success": false is fatal is up to the caller.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultServer  = "localhost"
	DefaultTimeout = 5 * time.Second
)

// Doer is the subset of *http.Client the client needs.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

type Client struct {
	baseURL    string
	creds      Credentials
	auth       bool
	timeout    time.Duration
	httpClient Doer
	logger     *slog.Logger
}

type Option func(*Client)

// WithBasicAuth attaches HTTP Basic credentials to every request. When only
// one of username and password is set, no credentials are sent at all.
func WithBasicAuth(username, password string) Option {
	return func(c *Client) {
		c.creds = Credentials{Username: username, Password: password}
	}
}

// WithTimeout sets the timeout applied to requests whose context carries no
// deadline. Zero or negative disables it.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

func WithHTTPClient(doer Doer) Option {
	return func(c *Client) {
		if doer != nil {
			c.httpClient = doer
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient builds a client for the given server address. It performs no
// network I/O.
func NewClient(server string, opts ...Option) (*Client, error) {
	baseURL, err := BaseURL(server)
	if err != nil {
		return nil, err
	}

	c := &Client{
		baseURL:    baseURL,
		timeout:    DefaultTimeout,
		httpClient: &http.Client{},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	switch err := c.creds.Validate(); {
	case err != nil:
		c.logger.Warn("ignoring partial credentials, requests will be sent without authentication",
			"server", c.baseURL, "error", err)
	case !c.creds.Empty():
		c.auth = true
	}

	return c, nil
}

// BaseURL normalises a server address such as "192.168.1.100",
// "host:3000" or "https://host/prefix" into a base URL without a trailing
// slash. Addresses without a scheme use http. User info is dropped so that
// credentials only travel through WithBasicAuth.
func BaseURL(server string) (string, error) {
	server = strings.TrimSpace(server)
	if server == "" {
		server = DefaultServer
	}
	if !strings.Contains(server, "://") {
		server = "http://" + server
	}

	u, err := url.Parse(server)
	if err != nil {
		return "", fmt.Errorf("%w %q: %v", ErrInvalidServer, server, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w %q: unsupported scheme %q", ErrInvalidServer, server, u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%w %q: missing host", ErrInvalidServer, server)
	}

	u.User = nil
	u.RawQuery = ""
	u.Fragment = ""
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawPath = ""

	return u.String(), nil
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// AuthEnabled reports whether requests carry an Authorization header.
func (c *Client) AuthEnabled() bool {
	return c.auth
}

func (c *Client) String() string {
	return fmt.Sprintf("Openclawd Client{baseURL: %s, auth: %t, password: ########}", c.baseURL, c.auth)
}

func (c *Client) HealthCheck(ctx context.Context) (Body, error) {
	return c.doRequest(ctx, "health check", http.MethodGet, "/health", nil, nil)
}

func (c *Client) GetStatus(ctx context.Context) (Body, error) {
	return c.doRequest(ctx, "get status", http.MethodGet, "/status", nil, nil)
}
