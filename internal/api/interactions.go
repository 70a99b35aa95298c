package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/sakif/blogkit/internal/model"
)

// LikePost records (or withdraws) the current user's like on a post. The
// returned membership set is authoritative: whether the endpoint toggled or
// incremented server-side, LikedBy is what the client must believe.
func (c *Client) LikePost(ctx context.Context, id string) (*model.LikeResult, error) {
	var result model.LikeResult
	path := fmt.Sprintf("/post/%s/like", url.PathEscape(id))
	if err := c.do(ctx, http.MethodPut, path, struct{}{}, &result, true, http.StatusOK); err != nil {
		return nil, err
	}
	return &result, nil
}

// ViewPost records the current user's view of a post.
func (c *Client) ViewPost(ctx context.Context, id string) (*model.ViewResult, error) {
	var result model.ViewResult
	path := fmt.Sprintf("/post/%s/viewPost", url.PathEscape(id))
	if err := c.do(ctx, http.MethodPut, path, struct{}{}, &result, true, http.StatusOK); err != nil {
		return nil, err
	}
	return &result, nil
}

// FollowUser adds id to the current user's following set.
func (c *Client) FollowUser(ctx context.Context, id string) (*model.FollowResult, error) {
	var result model.FollowResult
	path := fmt.Sprintf("/user/follow/%s", url.PathEscape(id))
	if err := c.do(ctx, http.MethodPost, path, struct{}{}, &result, true, http.StatusOK); err != nil {
		return nil, err
	}
	return &result, nil
}

// UnfollowUser removes id from the current user's following set.
func (c *Client) UnfollowUser(ctx context.Context, id string) (*model.FollowResult, error) {
	var result model.FollowResult
	path := fmt.Sprintf("/user/unfollow/%s", url.PathEscape(id))
	if err := c.do(ctx, http.MethodPost, path, struct{}{}, &result, true, http.StatusOK); err != nil {
		return nil, err
	}
	return &result, nil
}
