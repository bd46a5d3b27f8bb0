package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/skriptik666-dev/flick-messenger/internal/mapper"
	"github.com/skriptik666-dev/flick-messenger/internal/models"
	"github.com/skriptik666-dev/flick-messenger/internal/transport"
)

type credentials struct {
	Email    string `json:"email"`
	Username string `json:"username,omitempty"`
	Password string `json:"password"`
}

// Authenticate logs in with email and password. When the login response
// omits the profile it is fetched with the returned token.
func (c *Client) Authenticate(ctx context.Context, email, password string) (models.Session, error) {
	return c.establish(ctx, "login", transport.PathLogin, credentials{Email: email, Password: password})
}

// Register creates an account and logs into it.
func (c *Client) Register(ctx context.Context, email, username, password string) (models.Session, error) {
	return c.establish(ctx, "signup", transport.PathSignup, credentials{Email: email, Username: username, Password: password})
}

func (c *Client) establish(ctx context.Context, op, path string, creds credentials) (models.Session, error) {
	data, err := c.do(ctx, http.MethodPost, c.authURL+path, "", creds)
	if err != nil {
		return models.Session{}, &AuthError{Op: op, Err: err}
	}

	p := mapper.Decode(data).Unwrap()
	token := p.String("token", "accessToken", "access_token", "jwt")
	if token == "" {
		if sess, ok := p.Object("session"); ok {
			token = sess.String("access_token", "accessToken", "token")
		}
	}
	if token == "" {
		return models.Session{}, &AuthError{Op: op, Err: fmt.Errorf("response has no token")}
	}

	user, err := profileFrom(p)
	if err != nil {
		user, err = c.fetchProfile(ctx, token)
		if err != nil {
			return models.Session{}, &AuthError{Op: op, Err: err}
		}
	}

	if err := c.tokens.SetToken(token); err != nil {
		c.logger.Warn("failed to persist token", "error", err)
	}
	c.setSelf(user)
	c.logger.Info("session established", "op", op, "user_id", user.ID)
	return models.Session{Token: token, User: user}, nil
}

// Me re-establishes the session user from the saved token.
func (c *Client) Me(ctx context.Context) (models.User, error) {
	token := c.tokens.Token()
	if token == "" {
		return models.User{}, &AuthError{Op: "restore", Err: ErrNoToken}
	}
	user, err := c.fetchProfile(ctx, token)
	if err != nil {
		return models.User{}, &AuthError{Op: "restore", Err: err}
	}
	c.setSelf(user)
	return user, nil
}

// fetchProfile asks "who am I", first on the current endpoint and then on
// the compatibility one.
func (c *Client) fetchProfile(ctx context.Context, token string) (models.User, error) {
	get := func(path string) strategy[models.User] {
		return strategy[models.User]{
			name: path,
			run: func(ctx context.Context) (models.User, error) {
				data, err := c.do(ctx, http.MethodGet, c.authURL+path, token, nil)
				if err != nil {
					return models.User{}, err
				}
				return profileFrom(mapper.Decode(data).Unwrap())
			},
		}
	}
	return firstSuccess(ctx, c.logger, get(transport.PathAuthMe), get(transport.PathMe))
}

// profileFrom extracts the user from a response that either is the user or
// wraps it.
func profileFrom(p mapper.Payload) (models.User, error) {
	if u, ok := p.Object("user", "profile"); ok {
		p = u
	}
	if p.String("id", "_id", "userId", "user_id", "uid") == "" {
		return models.User{}, ErrNoProfile
	}
	return mapper.User(p), nil
}

// SignOut forgets the saved token and every local-only chat.
func (c *Client) SignOut() error {
	c.mu.Lock()
	c.self = models.User{}
	c.localChats = make(map[string]models.Chat)
	c.localOrder = nil
	c.mu.Unlock()
	return c.tokens.SetToken("")
}

// Ping checks that the data API is reachable and returns the round trip.
func (c *Client) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if _, err := c.do(ctx, http.MethodGet, c.apiURL+transport.PathPing, "", nil); err != nil {
		return 0, err
	}
	return time.Since(start), nil
}
