package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/skriptik666-dev/flick-messenger/internal/mapper"
	"github.com/skriptik666-dev/flick-messenger/internal/models"
	"github.com/skriptik666-dev/flick-messenger/internal/transport"
)

// UpdateUser saves profile changes, trying the user resource first and the
// "update my own profile" endpoint second.
//
// Some deployments answer with a bare acknowledgement; the returned user then
// has an empty ID and callers should keep their own merged copy.
func (c *Client) UpdateUser(ctx context.Context, userID string, patch models.UserPatch) (models.User, error) {
	patchAt := func(name, endpoint string) strategy[models.User] {
		return strategy[models.User]{
			name: name,
			run: func(ctx context.Context) (models.User, error) {
				data, err := c.authed(ctx, http.MethodPatch, endpoint, patch)
				if err != nil {
					return models.User{}, err
				}
				u, err := profileFrom(mapper.Decode(data).Unwrap())
				if errors.Is(err, ErrNoProfile) {
					return models.User{}, nil
				}
				return u, err
			},
		}
	}

	u, err := firstSuccess(ctx, c.logger,
		patchAt("user", c.apiURL+transport.PathUser+url.PathEscape(userID)),
		patchAt("me", c.authURL+transport.PathMe),
	)
	if err != nil {
		return models.User{}, &ProfileUpdateError{UserID: userID, Err: err}
	}

	c.mu.Lock()
	if u.ID != "" && u.ID == c.self.ID {
		c.self = u
	} else if c.self.ID == userID {
		c.self = patch.Apply(c.self)
	}
	c.mu.Unlock()
	return u, nil
}
