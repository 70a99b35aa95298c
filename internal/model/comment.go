package model

import "time"

// Comment is a normalized comment record.
//
// The API returns comment authors in two shapes: a nested user object
// ({user: {_id, username}}) on list responses, and flat user/author fields
// on create responses. The api package normalizes both into this struct at
// the boundary, so nothing above it deals with the wire variants.
//
// ID may temporarily be a client-generated placeholder when the create
// response omits one; the next full fetch replaces it with the server id.
type Comment struct {
	ID        string    `json:"_id"`
	PostID    string    `json:"postId,omitempty"` // set on admin-wide listings
	UserID    string    `json:"userId"`
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// CommentInput is the request body for adding a comment.
type CommentInput struct {
	Text   string `json:"text"`
	Author string `json:"author"`
	User   string `json:"user"`
}
