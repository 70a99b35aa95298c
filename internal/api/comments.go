package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sakif/blogkit/internal/model"
)

// wireComment covers both author shapes the API uses for comments: list
// responses nest {user: {_id, username}}, create responses return a flat
// user id plus an author name. Normalization happens here so everything
// above the boundary sees model.Comment only.
type wireComment struct {
	ID        string          `json:"_id"`
	PostID    string          `json:"postId"`
	Text      string          `json:"text"`
	Author    string          `json:"author"`
	User      json.RawMessage `json:"user"`
	CreatedAt time.Time       `json:"createdAt"`
}

type wireCommentUser struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
}

func (w wireComment) normalize() model.Comment {
	c := model.Comment{
		ID:        w.ID,
		PostID:    w.PostID,
		Author:    w.Author,
		Text:      w.Text,
		CreatedAt: w.CreatedAt,
	}

	if len(w.User) > 0 {
		var nested wireCommentUser
		if err := json.Unmarshal(w.User, &nested); err == nil && nested.ID != "" {
			c.UserID = nested.ID
			if nested.Username != "" {
				c.Author = nested.Username
			}
			return c
		}
		var flat string
		if err := json.Unmarshal(w.User, &flat); err == nil {
			c.UserID = flat
		}
	}
	return c
}

// Comments lists a post's comments in the server's order.
func (c *Client) Comments(ctx context.Context, postID string) ([]model.Comment, error) {
	var result struct {
		Comments []wireComment `json:"comments"`
	}
	path := fmt.Sprintf("/post/%s/comments", url.PathEscape(postID))
	if err := c.do(ctx, http.MethodGet, path, nil, &result, true, http.StatusOK); err != nil {
		return nil, err
	}

	comments := make([]model.Comment, 0, len(result.Comments))
	for _, w := range result.Comments {
		comments = append(comments, w.normalize())
	}
	return comments, nil
}

// AddComment posts a comment. The server may answer 200 or 201, and the
// returned record may omit fields (including the id); callers fill the gaps
// from what they sent.
func (c *Client) AddComment(ctx context.Context, postID string, input model.CommentInput) (*model.Comment, error) {
	var created wireComment
	path := fmt.Sprintf("/post/%s/comment", url.PathEscape(postID))
	err := c.do(ctx, http.MethodPost, path, input, &created, true, http.StatusOK, http.StatusCreated)
	if err != nil {
		return nil, err
	}
	comment := created.normalize()
	return &comment, nil
}

// DeleteComment removes a comment from a post.
func (c *Client) DeleteComment(ctx context.Context, postID, commentID string) error {
	path := fmt.Sprintf("/post/%s/comment/%s", url.PathEscape(postID), url.PathEscape(commentID))
	return c.do(ctx, http.MethodDelete, path, nil, nil, true, http.StatusOK)
}

// AllComments lists every comment on the platform. Admin dashboard only.
func (c *Client) AllComments(ctx context.Context) ([]model.Comment, error) {
	var wires []wireComment
	if err := c.do(ctx, http.MethodGet, "/all-comments", nil, &wires, true, http.StatusOK); err != nil {
		return nil, err
	}

	comments := make([]model.Comment, 0, len(wires))
	for _, w := range wires {
		comments = append(comments, w.normalize())
	}
	return comments, nil
}
