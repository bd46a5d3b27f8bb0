// Package api talks to the auth/data backend and to object storage.
//
// Every exported method is one domain operation. Read operations that the
// UI should never block on (chat and message listing, uploads) degrade to
// empty or placeholder results instead of returning errors.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/skriptik666-dev/flick-messenger/internal/config"
	"github.com/skriptik666-dev/flick-messenger/internal/models"
)

// TokenStore persists the bearer token between runs.
type TokenStore interface {
	Token() string
	SetToken(token string) error
}

// ObjectStore saves uploaded files and returns their public URL.
type ObjectStore interface {
	Save(ctx context.Context, up models.Upload) (string, error)
}

// Client is the remote access layer.
type Client struct {
	authURL string
	apiURL  string
	http    *http.Client
	tokens  TokenStore
	objects ObjectStore
	logger  *slog.Logger

	localSendDelay      time.Duration
	uploadFallbackDelay time.Duration

	mu         sync.Mutex
	self       models.User
	localChats map[string]models.Chat
	localOrder []string
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithObjectStore enables direct uploads. Without one, uploads always
// return fallback URLs.
func WithObjectStore(s ObjectStore) Option {
	return func(c *Client) { c.objects = s }
}

// WithLogger sets the logger used for degraded paths.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a Client for the backends in cfg.
func New(cfg config.Config, tokens TokenStore, opts ...Option) *Client {
	if tokens == nil {
		tokens = &MemoryTokens{}
	}
	c := &Client{
		authURL:             strings.TrimSuffix(cfg.AuthURL, "/"),
		apiURL:              strings.TrimSuffix(cfg.APIURL, "/"),
		http:                &http.Client{Timeout: cfg.HTTPTimeout},
		tokens:              tokens,
		logger:              slog.Default(),
		localSendDelay:      cfg.LocalSendDelay,
		uploadFallbackDelay: cfg.UploadFallbackDelay,
		localChats:          make(map[string]models.Chat),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Self returns the user of the current session, if any.
func (c *Client) Self() models.User {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.self
}

func (c *Client) setSelf(u models.User) {
	c.mu.Lock()
	c.self = u
	c.mu.Unlock()
}

// do sends a JSON request and returns the response body. Non-2xx responses
// become *RequestError.
func (c *Client) do(ctx context.Context, method, url, token string, body any) ([]byte, error) {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		r = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, r)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newRequestError(resp, data)
	}
	return data, nil
}

// authed is do with the saved bearer token.
func (c *Client) authed(ctx context.Context, method, url string, body any) ([]byte, error) {
	return c.do(ctx, method, url, c.tokens.Token(), body)
}

// MemoryTokens is a TokenStore that forgets everything on exit.
type MemoryTokens struct {
	mu    sync.Mutex
	token string
}

func (m *MemoryTokens) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

func (m *MemoryTokens) SetToken(token string) error {
	m.mu.Lock()
	m.token = token
	m.mu.Unlock()
	return nil
}
