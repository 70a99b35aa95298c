package service

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/blogkit/internal/apperror"
	"github.com/sakif/blogkit/internal/model"
	"github.com/sakif/blogkit/internal/notify"
)

type fakePostAPI struct {
	addRes    *model.Post
	addErr    error
	updateRes *model.Post
	updateErr error
	deleteErr error
	countsRes []model.CategoryCount
	countsErr error

	deleteCalls int
	lastInput   model.PostInput
	lastID      string
}

func (f *fakePostAPI) AddPost(_ context.Context, input model.PostInput) (*model.Post, error) {
	f.lastInput = input
	return f.addRes, f.addErr
}

func (f *fakePostAPI) AllPosts(context.Context) ([]model.Post, error)  { return nil, nil }
func (f *fakePostAPI) UserPosts(context.Context) ([]model.Post, error) { return nil, nil }

func (f *fakePostAPI) GetPost(_ context.Context, id string) (*model.Post, error) {
	f.lastID = id
	return &model.Post{ID: id}, nil
}

func (f *fakePostAPI) UpdatePost(_ context.Context, id string, input model.PostInput) (*model.Post, error) {
	f.lastID = id
	f.lastInput = input
	return f.updateRes, f.updateErr
}

func (f *fakePostAPI) DeletePost(_ context.Context, id string) error {
	f.deleteCalls++
	f.lastID = id
	return f.deleteErr
}

func (f *fakePostAPI) FollowedFeed(context.Context) ([]model.Post, error) { return nil, nil }

func (f *fakePostAPI) CategoryCounts(context.Context) ([]model.CategoryCount, error) {
	return f.countsRes, f.countsErr
}

func TestPostServiceCreateValidation(t *testing.T) {
	tests := []struct {
		name  string
		input model.PostInput
	}{
		{"missing title", model.PostInput{Content: "c", Category: "Art"}},
		{"blank content", model.PostInput{Title: "t", Content: "   ", Category: "Art"}},
		{"missing category", model.PostInput{Title: "t", Content: "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakePostAPI{}
			signals := &notify.Signals{}
			svc := NewPostService(api, signals, testLogger())

			_, err := svc.Create(context.Background(), tt.input)
			if !errors.Is(err, apperror.ErrValidation) {
				t.Fatalf("Create(%+v) error = %v, want validation error", tt.input, err)
			}
			if signals.PostAdded.Rev() != 0 {
				t.Error("rejected input must not bump the added signal")
			}
		})
	}
}

func TestPostServiceCreateBumpsSignal(t *testing.T) {
	api := &fakePostAPI{addRes: &model.Post{ID: "p1", Title: "t"}}
	signals := &notify.Signals{}
	svc := NewPostService(api, signals, testLogger())

	post, err := svc.Create(context.Background(), model.PostInput{
		Title: "  t  ", Content: "c", Category: "Art",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if post.ID != "p1" {
		t.Errorf("post id = %q, want %q", post.ID, "p1")
	}
	if api.lastInput.Title != "t" {
		t.Errorf("title sent = %q, want trimmed %q", api.lastInput.Title, "t")
	}
	if signals.PostAdded.Rev() != 1 {
		t.Error("create should bump the added signal exactly once")
	}
}

func TestPostServiceDeleteHonorsConfirmation(t *testing.T) {
	t.Run("declined", func(t *testing.T) {
		api := &fakePostAPI{}
		svc := NewPostService(api, &notify.Signals{}, testLogger())

		deleted, err := svc.Delete(context.Background(), "p1", func(string) bool { return false })
		if err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		if deleted {
			t.Error("declined confirmation must not delete")
		}
		if api.deleteCalls != 0 {
			t.Error("declined confirmation must not reach the API")
		}
	})

	t.Run("accepted", func(t *testing.T) {
		api := &fakePostAPI{}
		signals := &notify.Signals{}
		svc := NewPostService(api, signals, testLogger())

		deleted, err := svc.Delete(context.Background(), "p1", func(string) bool { return true })
		if err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		if !deleted || api.deleteCalls != 1 {
			t.Errorf("deleted = %v, calls = %d, want true/1", deleted, api.deleteCalls)
		}
		if signals.PostEdited.Rev() != 1 {
			t.Error("delete should bump the edited signal so listings refetch")
		}
	})
}

func TestPostServiceGetNormalizesRouteID(t *testing.T) {
	api := &fakePostAPI{}
	svc := NewPostService(api, &notify.Signals{}, testLogger())

	if _, err := svc.Get(context.Background(), ":p1"); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if api.lastID != "p1" {
		t.Errorf("id sent = %q, want %q", api.lastID, "p1")
	}
}

func TestPostServiceCategoryCountsIncludeEmpty(t *testing.T) {
	api := &fakePostAPI{
		countsRes: []model.CategoryCount{
			{Category: "Travel", Count: 3},
			{Category: "Art", Count: 1},
		},
	}
	svc := NewPostService(api, &notify.Signals{}, testLogger())

	counts, err := svc.CategoryCounts(context.Background())
	if err != nil {
		t.Fatalf("CategoryCounts() error = %v", err)
	}

	if len(counts) != len(model.KnownCategories) {
		t.Fatalf("count entries = %d, want %d (every known category)", len(counts), len(model.KnownCategories))
	}
	if counts[0].Category != model.CategoryAll || counts[0].Count != 4 {
		t.Errorf("first entry = %+v, want All with total 4", counts[0])
	}

	byName := make(map[string]int)
	for _, c := range counts {
		byName[c.Category] = c.Count
	}
	if byName["Travel"] != 3 {
		t.Errorf("Travel count = %d, want 3", byName["Travel"])
	}
	if got, ok := byName["Science"]; !ok || got != 0 {
		t.Errorf("Science entry = %d (present=%v), want 0 entry present", got, ok)
	}
}
