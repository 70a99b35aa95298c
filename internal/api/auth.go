package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/sakif/blogkit/internal/apperror"
	"github.com/sakif/blogkit/internal/model"
)

// Register creates a new account. The server answers 406 with a plain
// message when the username or email is taken; that message surfaces
// through the returned error.
func (c *Client) Register(ctx context.Context, req model.RegisterRequest) (*model.RegisterResult, error) {
	var result model.RegisterResult
	if err := c.do(ctx, http.MethodPost, "/register", req, &result, false, http.StatusOK); err != nil {
		return nil, err
	}
	return &result, nil
}

// Login exchanges credentials for a user record and a token.
func (c *Client) Login(ctx context.Context, req model.LoginRequest) (*model.LoginResult, error) {
	var result model.LoginResult
	if err := c.do(ctx, http.MethodPost, "/login", req, &result, false, http.StatusOK); err != nil {
		return nil, err
	}
	if result.Token == "" {
		return nil, apperror.APIFailure(http.StatusOK, "login response did not include a token")
	}
	return &result, nil
}

// Profile fetches the current user's profile. The endpoint returns an
// array with the profile as its first element; the array is unwrapped here.
func (c *Client) Profile(ctx context.Context) (*model.User, error) {
	var records []model.User
	if err := c.do(ctx, http.MethodGet, "/user-profile", nil, &records, true, http.StatusOK); err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, apperror.APIFailure(http.StatusOK, "profile response was empty")
	}
	return &records[0], nil
}

// UpdateProfile saves profile changes and returns the updated record.
func (c *Client) UpdateProfile(ctx context.Context, user model.User) (*model.User, error) {
	var updated model.User
	if err := c.do(ctx, http.MethodPut, "/edit-profile", user, &updated, true, http.StatusOK); err != nil {
		return nil, err
	}
	return &updated, nil
}

// AllUsers lists every account. Admin dashboard only.
func (c *Client) AllUsers(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := c.do(ctx, http.MethodGet, "/all-users", nil, &users, true, http.StatusOK); err != nil {
		return nil, err
	}
	return users, nil
}

// DeleteUser removes an account. Admin dashboard only.
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	path := fmt.Sprintf("/user/%s/remove", url.PathEscape(id))
	return c.do(ctx, http.MethodDelete, path, nil, nil, true, http.StatusOK)
}

// HomeUsers lists the public landing-page user sample. No auth required.
func (c *Client) HomeUsers(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := c.do(ctx, http.MethodGet, "/home-users", nil, &users, false, http.StatusOK); err != nil {
		return nil, err
	}
	return users, nil
}
