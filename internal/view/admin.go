package view

import (
	"context"
	"sync"

	"github.com/sakif/blogkit/internal/model"
)

// AdminAPI is the slice of the API client the admin screen consumes. The
// admin surface talks to the client directly: there are no business rules
// to add, only authorization, and the server enforces that.
type AdminAPI interface {
	AllUsers(ctx context.Context) ([]model.User, error)
	AllPosts(ctx context.Context) ([]model.Post, error)
	AllComments(ctx context.Context) ([]model.Comment, error)
	DeleteUser(ctx context.Context, id string) error
	DeletePost(ctx context.Context, id string) error
	DeleteComment(ctx context.Context, postID, commentID string) error
}

// AdminStats are the platform-wide totals on the admin landing cards.
type AdminStats struct {
	Users    int
	Posts    int
	Comments int
}

// Admin is the state behind the admin screen: every user, post and comment
// on the platform, with confirmed destructive deletes.
type Admin struct {
	mu      sync.Mutex
	mounted bool

	users    []model.User
	posts    []model.Post
	comments []model.Comment

	api AdminAPI
}

func NewAdmin(api AdminAPI) *Admin {
	return &Admin{api: api}
}

// Mount fetches all three listings.
func (a *Admin) Mount(ctx context.Context) error {
	a.mu.Lock()
	a.mounted = true
	a.mu.Unlock()
	return a.Refresh(ctx)
}

func (a *Admin) Unmount() {
	a.mu.Lock()
	a.mounted = false
	a.mu.Unlock()
}

// Refresh re-fetches everything.
func (a *Admin) Refresh(ctx context.Context) error {
	users, err := a.api.AllUsers(ctx)
	if err != nil {
		return err
	}
	posts, err := a.api.AllPosts(ctx)
	if err != nil {
		return err
	}
	comments, err := a.api.AllComments(ctx)
	if err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.mounted {
		return nil
	}
	a.users = users
	a.posts = posts
	a.comments = comments
	return nil
}

// DeleteUser removes an account after confirmation, then re-fetches.
func (a *Admin) DeleteUser(ctx context.Context, id string, confirm func(string) bool) error {
	if confirm != nil && !confirm("Remove this account and all its content?") {
		return nil
	}
	if err := a.api.DeleteUser(ctx, id); err != nil {
		return err
	}
	return a.Refresh(ctx)
}

// DeletePost removes a post after confirmation, then re-fetches.
func (a *Admin) DeletePost(ctx context.Context, id string, confirm func(string) bool) error {
	if confirm != nil && !confirm("Remove this post?") {
		return nil
	}
	if err := a.api.DeletePost(ctx, id); err != nil {
		return err
	}
	return a.Refresh(ctx)
}

// DeleteComment removes a comment after confirmation, then re-fetches.
func (a *Admin) DeleteComment(ctx context.Context, postID, commentID string, confirm func(string) bool) error {
	if confirm != nil && !confirm("Remove this comment?") {
		return nil
	}
	if err := a.api.DeleteComment(ctx, postID, commentID); err != nil {
		return err
	}
	return a.Refresh(ctx)
}

// Users returns the fetched accounts.
func (a *Admin) Users() []model.User {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.users
}

// Posts returns the fetched posts.
func (a *Admin) Posts() []model.Post {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.posts
}

// Comments returns the fetched comments.
func (a *Admin) Comments() []model.Comment {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.comments
}

// Stats tallies the fetched listings.
func (a *Admin) Stats() AdminStats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return AdminStats{Users: len(a.users), Posts: len(a.posts), Comments: len(a.comments)}
}
