package view_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/blogkit/internal/model"
	"github.com/sakif/blogkit/internal/notify"
	"github.com/sakif/blogkit/internal/session"
	"github.com/sakif/blogkit/internal/view"
)

type fakeLoader struct {
	post *model.Post
	err  error
}

func (f *fakeLoader) Get(context.Context, string) (*model.Post, error) {
	if f.err != nil {
		return nil, f.err
	}
	cp := *f.post
	return &cp, nil
}

type fakeInteractions struct {
	likeRes   *model.LikeResult
	likeLiked bool
	following map[string]bool

	viewCalls int
}

func (f *fakeInteractions) ToggleLike(context.Context, string) (bool, *model.LikeResult, error) {
	return f.likeLiked, f.likeRes, nil
}

func (f *fakeInteractions) EnsureViewed(_ context.Context, post *model.Post) (*model.ViewResult, error) {
	f.viewCalls++
	views := model.AddMember(post.Views, "u1")
	return &model.ViewResult{Views: len(views), ViewedBy: views}, nil
}

func (f *fakeInteractions) Follow(_ context.Context, id string) (*model.FollowResult, error) {
	f.following[id] = true
	return &model.FollowResult{}, nil
}

func (f *fakeInteractions) Unfollow(_ context.Context, id string) (*model.FollowResult, error) {
	delete(f.following, id)
	return &model.FollowResult{}, nil
}

func (f *fakeInteractions) IsFollowing(id string) bool { return f.following[id] }

type fakeThread struct {
	comments []model.Comment
}

func (f *fakeThread) Load(context.Context, string) ([]model.Comment, error) {
	return f.comments, nil
}

func (f *fakeThread) Add(_ context.Context, _ string, text string, existing []model.Comment) ([]model.Comment, error) {
	return append([]model.Comment{{ID: "new", Text: text}}, existing...), nil
}

func (f *fakeThread) Delete(_ context.Context, _ string, c model.Comment, confirm func(string) bool) (bool, error) {
	if confirm != nil && !confirm("") {
		return false, nil
	}
	return true, nil
}

func newDetail(post *model.Post) (*view.PostDetail, *fakeInteractions, *session.Session) {
	bus := notify.NewBus()
	sess := session.New(bus, testLogger())
	sess.Login("tok", &model.User{ID: "u1", Username: "amina"})

	interactions := &fakeInteractions{following: map[string]bool{}}
	detail := view.NewPostDetail(
		&fakeLoader{post: post},
		interactions,
		&fakeThread{comments: []model.Comment{{ID: "c1", Text: "old", UserID: "u2"}}},
		sess,
		testLogger(),
	)
	return detail, interactions, sess
}

func TestPostDetailMountDerivesState(t *testing.T) {
	post := &model.Post{ID: "p1", UserID: "author", Likes: []string{"u1", "u9"}}
	detail, interactions, _ := newDetail(post)

	require.NoError(t, detail.Mount(context.Background(), "p1"))
	defer detail.Unmount()

	assert.True(t, detail.HasLiked(), "user u1 is in the like set")
	assert.False(t, detail.IsFollowing())
	assert.Equal(t, 1, interactions.viewCalls, "mount records the view once")
	assert.Len(t, detail.Comments(), 1)
	assert.Equal(t, 1, detail.Post().ViewCount, "view count reflects the recorded view")
}

func TestPostDetailLikeTogglesFromServerAnswer(t *testing.T) {
	post := &model.Post{ID: "p1", UserID: "author"}
	detail, interactions, _ := newDetail(post)
	require.NoError(t, detail.Mount(context.Background(), "p1"))
	defer detail.Unmount()

	assert.False(t, detail.HasLiked())

	interactions.likeLiked = true
	interactions.likeRes = &model.LikeResult{Likes: 1, LikedBy: []string{"u1"}}
	detail.ToggleLike(context.Background())

	assert.True(t, detail.HasLiked())
	assert.Equal(t, 1, detail.Post().LikeCount)

	interactions.likeLiked = false
	interactions.likeRes = &model.LikeResult{Likes: 0, LikedBy: []string{}}
	detail.ToggleLike(context.Background())

	assert.False(t, detail.HasLiked())
	assert.Equal(t, 0, detail.Post().LikeCount)
}

func TestPostDetailToggleFollow(t *testing.T) {
	post := &model.Post{ID: "p1", UserID: "author"}
	detail, interactions, _ := newDetail(post)
	require.NoError(t, detail.Mount(context.Background(), "p1"))
	defer detail.Unmount()

	require.NoError(t, detail.ToggleFollow(context.Background()))
	assert.True(t, detail.IsFollowing())
	assert.True(t, interactions.following["author"])

	require.NoError(t, detail.ToggleFollow(context.Background()))
	assert.False(t, detail.IsFollowing())
	assert.False(t, interactions.following["author"])
}

func TestPostDetailCommentLifecycle(t *testing.T) {
	post := &model.Post{ID: "p1", UserID: "author"}
	detail, _, _ := newDetail(post)
	require.NoError(t, detail.Mount(context.Background(), "p1"))
	defer detail.Unmount()

	require.NoError(t, detail.AddComment(context.Background(), "fresh"))
	thread := detail.Comments()
	require.Len(t, thread, 2)
	assert.Equal(t, "fresh", thread[0].Text, "new comment leads the thread")

	// Delete exactly the old comment; the new one stays.
	err := detail.DeleteComment(context.Background(), "c1", func(string) bool { return true })
	require.NoError(t, err)
	thread = detail.Comments()
	require.Len(t, thread, 1)
	assert.Equal(t, "new", thread[0].ID)
}

func TestPostDetailIgnoresActionsAfterUnmount(t *testing.T) {
	post := &model.Post{ID: "p1", UserID: "author"}
	detail, interactions, _ := newDetail(post)
	require.NoError(t, detail.Mount(context.Background(), "p1"))

	detail.Unmount()

	interactions.likeLiked = true
	interactions.likeRes = &model.LikeResult{Likes: 1, LikedBy: []string{"u1"}}
	detail.ToggleLike(context.Background())

	assert.False(t, detail.HasLiked(), "an unmounted view must not apply late results")
}
