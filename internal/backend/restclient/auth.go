package restclient

import (
	"context"
	"net/http"
	"time"

	"github.com/vedran77/huddle/internal/domain"
)

type authResponse struct {
	User        *domain.User `json:"user"`
	AccessToken string       `json:"access_token"`
	ExpiresAt   time.Time    `json:"expires_at"`
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c *Client) SignUp(ctx context.Context, email, password string) (*domain.User, error) {
	return c.authenticate(ctx, apiPrefix+"/auth/signup", email, password)
}

func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*domain.User, error) {
	return c.authenticate(ctx, apiPrefix+"/auth/token", email, password)
}

func (c *Client) authenticate(ctx context.Context, path, email, password string) (*domain.User, error) {
	var resp authResponse
	err := c.do(ctx, request{method: http.MethodPost, path: path, body: credentials{Email: email, Password: password}}, &resp)
	if err != nil {
		return nil, err
	}
	if err := c.setSession(&Session{AccessToken: resp.AccessToken, ExpiresAt: resp.ExpiresAt, User: resp.User}); err != nil {
		c.log.WithError(err).Warn("persisting session failed")
	}
	return resp.User, nil
}

// SignOut revokes the token on the server and forgets the local session. The
// local session is dropped even when the server call fails.
func (c *Client) SignOut(ctx context.Context) error {
	if c.token() == "" {
		return nil
	}
	err := c.do(ctx, request{method: http.MethodPost, path: apiPrefix + "/auth/logout"}, nil)
	if clearErr := c.setSession(nil); clearErr != nil {
		c.log.WithError(clearErr).Warn("clearing session failed")
	}
	if err != nil && !isStatus(err, http.StatusUnauthorized) {
		return err
	}
	return nil
}

func (c *Client) CurrentUser(ctx context.Context) (*domain.User, error) {
	if c.token() == "" {
		return nil, nil
	}

	var user domain.User
	err := c.do(ctx, request{method: http.MethodGet, path: apiPrefix + "/auth/user"}, &user)
	if isStatus(err, http.StatusUnauthorized) {
		c.log.Debug("stored session is no longer valid")
		if clearErr := c.setSession(nil); clearErr != nil {
			c.log.WithError(clearErr).Warn("clearing session failed")
		}
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

