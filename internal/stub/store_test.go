package stub

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/blogkit/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(":memory:")
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func seedUser(t *testing.T, store *Store, username, email string) *userRecord {
	t.Helper()
	u := &userRecord{PasswordHash: "hash"}
	u.Username = username
	u.Email = email
	if err := store.createUser(context.Background(), u); err != nil {
		t.Fatalf("createUser() error = %v", err)
	}
	return u
}

func seedPost(t *testing.T, store *Store, user *userRecord, title, category string) *model.Post {
	t.Helper()
	p := &model.Post{UserID: user.ID, Username: user.Username, Title: title, Category: category}
	if err := store.createPost(context.Background(), p); err != nil {
		t.Fatalf("createPost() error = %v", err)
	}
	return p
}

func TestStoreUserLookups(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seedUser(t, store, "amina", "amina@example.com")

	t.Run("by email is case-insensitive on stored form", func(t *testing.T) {
		u, err := store.userByEmail(ctx, "amina@example.com")
		if err != nil {
			t.Fatalf("userByEmail() error = %v", err)
		}
		if u.Username != "amina" {
			t.Errorf("username = %q, want %q", u.Username, "amina")
		}
		if u.Role != model.RoleUser {
			t.Errorf("role = %q, want default %q", u.Role, model.RoleUser)
		}
	})

	t.Run("exists checks both username and email", func(t *testing.T) {
		for _, tc := range []struct {
			username, email string
			want            bool
		}{
			{"amina", "new@example.com", true},
			{"newname", "amina@example.com", true},
			{"newname", "new@example.com", false},
		} {
			got, err := store.userExists(ctx, tc.username, tc.email)
			if err != nil {
				t.Fatalf("userExists() error = %v", err)
			}
			if got != tc.want {
				t.Errorf("userExists(%q, %q) = %v, want %v", tc.username, tc.email, got, tc.want)
			}
		}
	})

	t.Run("missing user yields errNoRecord", func(t *testing.T) {
		_, err := store.userByID(ctx, "nope")
		if !errors.Is(err, errNoRecord) {
			t.Errorf("userByID() error = %v, want errNoRecord", err)
		}
	})
}

func TestStoreInteractionSetsRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	author := seedUser(t, store, "amina", "amina@example.com")
	post := seedPost(t, store, author, "T", "Art")

	likes := []string{"u1", "u2"}
	views := []string{"u1"}
	if err := store.updatePostSets(ctx, post.ID, likes, views); err != nil {
		t.Fatalf("updatePostSets() error = %v", err)
	}

	got, err := store.postByID(ctx, post.ID)
	if err != nil {
		t.Fatalf("postByID() error = %v", err)
	}
	if len(got.Likes) != 2 || len(got.Views) != 1 {
		t.Errorf("sets = %v/%v, want 2 likes and 1 view", got.Likes, got.Views)
	}

	// Nil sets come back as empty, never null.
	if err := store.updatePostSets(ctx, post.ID, nil, nil); err != nil {
		t.Fatalf("updatePostSets(nil) error = %v", err)
	}
	got, err = store.postByID(ctx, post.ID)
	if err != nil {
		t.Fatalf("postByID() error = %v", err)
	}
	if got.Likes == nil || got.Views == nil {
		t.Error("cleared sets should decode as empty slices")
	}
}

func TestStoreCategoryCounts(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	author := seedUser(t, store, "amina", "amina@example.com")
	seedPost(t, store, author, "a", "Art")
	seedPost(t, store, author, "b", "Art")
	seedPost(t, store, author, "c", "Travel")

	counts, err := store.categoryCounts(ctx)
	if err != nil {
		t.Fatalf("categoryCounts() error = %v", err)
	}

	byName := map[string]int{}
	for _, c := range counts {
		byName[c.Category] = c.Count
	}
	if byName["Art"] != 2 || byName["Travel"] != 1 {
		t.Errorf("counts = %v, want Art:2 Travel:1", byName)
	}
}

func TestStoreDeleteUserCascades(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	author := seedUser(t, store, "amina", "amina@example.com")
	post := seedPost(t, store, author, "T", "Art")

	comment := &model.Comment{PostID: post.ID, UserID: author.ID, Author: "amina", Text: "hi"}
	if err := store.createComment(ctx, comment); err != nil {
		t.Fatalf("createComment() error = %v", err)
	}

	if err := store.deleteUser(ctx, author.ID); err != nil {
		t.Fatalf("deleteUser() error = %v", err)
	}

	if _, err := store.postByID(ctx, post.ID); !errors.Is(err, errNoRecord) {
		t.Errorf("post after user delete: error = %v, want errNoRecord", err)
	}
	comments, err := store.commentsByPost(ctx, post.ID)
	if err != nil {
		t.Fatalf("commentsByPost() error = %v", err)
	}
	if len(comments) != 0 {
		t.Errorf("comments after cascade = %d, want 0", len(comments))
	}
}

func TestStoreFollowedPosts(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	a := seedUser(t, store, "amina", "amina@example.com")
	b := seedUser(t, store, "bashir", "bashir@example.com")
	seedUser(t, store, "chidi", "chidi@example.com")

	seedPost(t, store, a, "from amina", "Art")
	seedPost(t, store, b, "from bashir", "Art")

	posts, err := store.listPostsByUsers(ctx, []string{a.ID, b.ID})
	if err != nil {
		t.Fatalf("listPostsByUsers() error = %v", err)
	}
	if len(posts) != 2 {
		t.Errorf("posts = %d, want 2", len(posts))
	}

	posts, err = store.listPostsByUsers(ctx, nil)
	if err != nil {
		t.Fatalf("listPostsByUsers(nil) error = %v", err)
	}
	if len(posts) != 0 {
		t.Errorf("posts for empty following = %d, want 0", len(posts))
	}
}
