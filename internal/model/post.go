package model

import "time"

// CategoryAll is the pseudo-category matching every post.
const CategoryAll = "All"

// KnownCategories is the fixed category list the collection sidebar renders.
// The sidebar always shows every entry, with a zero count when no post in
// the current fetch belongs to it.
var KnownCategories = []string{
	CategoryAll,
	"Technology",
	"Travel",
	"Food",
	"Lifestyle",
	"Health",
	"Business",
	"Art",
	"Science",
}

// Post represents a blog post as the API returns it.
//
// Likes and Views are interaction sets of user ids. LikeCount and ViewCount
// are server-authoritative mirrors of the set cardinalities — the client
// never computes them locally except to display what the server last
// returned. Comments are ordered newest-first after a client-side prepend
// on creation, but the server's fetch order is authoritative on load.
type Post struct {
	ID        string    `json:"_id"`
	UserID    string    `json:"userId"`
	Username  string    `json:"username"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Category  string    `json:"category"`
	BlogImage string    `json:"blogImage,omitempty"`
	Likes     []string  `json:"likes"`
	Views     []string  `json:"views"`
	LikeCount int       `json:"likeCount"`
	ViewCount int       `json:"viewCount"`
	Comments  []Comment `json:"comments,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// LikedBy reports whether userID is in the post's like set.
func (p *Post) LikedBy(userID string) bool {
	return p != nil && Contains(p.Likes, userID)
}

// ViewedBy reports whether userID is in the post's view set.
func (p *Post) ViewedBy(userID string) bool {
	return p != nil && Contains(p.Views, userID)
}

// PostInput is the request body for creating or editing a post.
type PostInput struct {
	Title     string `json:"title"`
	Content   string `json:"content"`
	Category  string `json:"category"`
	BlogImage string `json:"blogImage,omitempty"`
}

// CategoryCount is one entry of the category-wise post tally.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}
