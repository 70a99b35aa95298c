package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/sakif/blogkit/internal/apperror"
	"github.com/sakif/blogkit/internal/model"
)

// AddPost publishes a new post and returns the server's record.
func (c *Client) AddPost(ctx context.Context, input model.PostInput) (*model.Post, error) {
	var post model.Post
	if err := c.do(ctx, http.MethodPost, "/add-blog", input, &post, true, http.StatusCreated); err != nil {
		return nil, err
	}
	return &post, nil
}

// AllPosts lists every post on the platform.
func (c *Client) AllPosts(ctx context.Context) ([]model.Post, error) {
	var posts []model.Post
	if err := c.do(ctx, http.MethodGet, "/get-allBlogs", nil, &posts, true, http.StatusOK); err != nil {
		return nil, err
	}
	return posts, nil
}

// UserPosts lists the current user's own posts.
func (c *Client) UserPosts(ctx context.Context) ([]model.Post, error) {
	var posts []model.Post
	if err := c.do(ctx, http.MethodGet, "/user-blogs", nil, &posts, true, http.StatusOK); err != nil {
		return nil, err
	}
	return posts, nil
}

// GetPost fetches one post including its likes, views and comments sets.
func (c *Client) GetPost(ctx context.Context, id string) (*model.Post, error) {
	var post model.Post
	path := fmt.Sprintf("/blog/%s/view", url.PathEscape(id))
	if err := c.do(ctx, http.MethodGet, path, nil, &post, true, http.StatusOK); err != nil {
		return nil, err
	}
	if post.ID == "" {
		return nil, apperror.NotFound("post", id)
	}
	return &post, nil
}

// UpdatePost saves edits to an existing post and returns the updated record.
func (c *Client) UpdatePost(ctx context.Context, id string, input model.PostInput) (*model.Post, error) {
	var post model.Post
	path := fmt.Sprintf("/blog/%s/edit", url.PathEscape(id))
	if err := c.do(ctx, http.MethodPut, path, input, &post, true, http.StatusOK); err != nil {
		return nil, err
	}
	return &post, nil
}

// DeletePost removes a post.
func (c *Client) DeletePost(ctx context.Context, id string) error {
	path := fmt.Sprintf("/blog/%s/remove", url.PathEscape(id))
	return c.do(ctx, http.MethodDelete, path, nil, nil, true, http.StatusOK)
}

// FollowedFeed lists posts authored by users the current user follows.
func (c *Client) FollowedFeed(ctx context.Context) ([]model.Post, error) {
	var result model.FeedResult
	if err := c.do(ctx, http.MethodGet, "/followed", nil, &result, true, http.StatusOK); err != nil {
		return nil, err
	}
	if !result.Success {
		return nil, apperror.APIFailure(http.StatusOK, "feed request was not successful")
	}
	return result.Data, nil
}

// HomePosts lists the public landing-page post sample. No auth required.
func (c *Client) HomePosts(ctx context.Context) ([]model.Post, error) {
	var posts []model.Post
	if err := c.do(ctx, http.MethodGet, "/home-posts", nil, &posts, false, http.StatusOK); err != nil {
		return nil, err
	}
	return posts, nil
}

// CategoryCounts tallies posts per category. No auth required.
func (c *Client) CategoryCounts(ctx context.Context) ([]model.CategoryCount, error) {
	var counts []model.CategoryCount
	if err := c.do(ctx, http.MethodGet, "/category-wise-count", nil, &counts, false, http.StatusOK); err != nil {
		return nil, err
	}
	return counts, nil
}
