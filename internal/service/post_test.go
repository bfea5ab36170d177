package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"testing"

	"github.com/sakif/age-wisdom/internal/apperror"
	"github.com/sakif/age-wisdom/internal/model"
	"github.com/sakif/age-wisdom/internal/repository"
)

// =========================================================================
// MOCK REPOSITORY
// =========================================================================
//
// mockPostRepo implements repository.PostRepository in memory. The service
// doesn't know or care which implementation it gets — that's the point of
// programming to the interface. The calls counter lets validation tests
// assert that rejected input never reaches the store.

type mockPostRepo struct {
	posts  map[string]*model.Post
	nextID int
	calls  int // storage round trips observed
}

func newMockPostRepo() *mockPostRepo {
	return &mockPostRepo{posts: make(map[string]*model.Post)}
}

func (m *mockPostRepo) Create(_ context.Context, post *model.Post) error {
	m.calls++
	m.nextID++
	post.ID = fmt.Sprintf("mock-%d", m.nextID)
	post.IsActive = true
	stored := *post
	m.posts[post.ID] = &stored
	return nil
}

func (m *mockPostRepo) GetByID(_ context.Context, id string) (*model.Post, error) {
	m.calls++
	post, ok := m.posts[id]
	if !ok {
		return nil, apperror.NotFound("post", id)
	}
	result := *post
	return &result, nil
}

func (m *mockPostRepo) ListByTargetAge(_ context.Context, targetAge int, opts repository.ListOptions) ([]model.Post, int, error) {
	m.calls++
	matched := make([]model.Post, 0)
	for _, p := range m.posts {
		if p.TargetAge == targetAge && p.IsActive {
			matched = append(matched, *p)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].LikeCount != matched[j].LikeCount {
			return matched[i].LikeCount > matched[j].LikeCount
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	return window(matched, opts), len(matched), nil
}

func (m *mockPostRepo) ListByUser(_ context.Context, userID string, opts repository.ListOptions) ([]model.Post, int, error) {
	m.calls++
	matched := make([]model.Post, 0)
	for _, p := range m.posts {
		if p.UserID == userID && p.IsActive {
			matched = append(matched, *p)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	return window(matched, opts), len(matched), nil
}

func (m *mockPostRepo) SumLikesByUser(_ context.Context, userID string) (int, error) {
	m.calls++
	sum := 0
	for _, p := range m.posts {
		if p.UserID == userID && p.IsActive {
			sum += p.LikeCount
		}
	}
	return sum, nil
}

func (m *mockPostRepo) Deactivate(_ context.Context, id string) error {
	m.calls++
	post, ok := m.posts[id]
	if !ok || !post.IsActive {
		return apperror.NotFound("post", id)
	}
	post.IsActive = false
	return nil
}

func window(posts []model.Post, opts repository.ListOptions) []model.Post {
	if opts.Offset >= len(posts) {
		return []model.Post{}
	}
	posts = posts[opts.Offset:]
	if opts.Limit > 0 && opts.Limit < len(posts) {
		posts = posts[:opts.Limit]
	}
	return posts
}

// =========================================================================
// TEST HELPERS
// =========================================================================

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestPostService(t *testing.T) (*PostService, *mockPostRepo) {
	t.Helper()
	repo := newMockPostRepo()
	return NewPostService(repo, testLogger()), repo
}

// =========================================================================
// CREATE TESTS
// =========================================================================

func TestPostCreate_Success(t *testing.T) {
	svc, _ := newTestPostService(t)

	post, err := svc.Create(context.Background(), 30, 45, "  invest in friendships  ", "", "")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if post.ID == "" {
		t.Error("expected post to have an ID")
	}
	if post.Content != "invest in friendships" {
		t.Errorf("Content = %q, want trimmed content", post.Content)
	}
	if post.UserID != "" {
		t.Errorf("UserID = %q, want anonymous", post.UserID)
	}
}

func TestPostCreate_AgeBoundaries(t *testing.T) {
	// Ages 7 and 91 are valid; 6 and 92 are not — and the invalid ones must
	// be rejected before any storage call.
	tests := []struct {
		age     int
		wantErr bool
	}{
		{6, true},
		{7, false},
		{91, false},
		{92, true},
		{0, true},
		{-3, true},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("target_age=%d", tt.age), func(t *testing.T) {
			svc, repo := newTestPostService(t)

			_, err := svc.Create(context.Background(), tt.age, 30, "content", "", "")
			if tt.wantErr {
				if !errors.Is(err, apperror.ErrValidation) {
					t.Errorf("error = %v, want ErrValidation", err)
				}
				if repo.calls != 0 {
					t.Errorf("repo calls = %d, want 0 for rejected input", repo.calls)
				}
			} else if err != nil {
				t.Errorf("Create() error = %v, want success", err)
			}
		})
	}
}

func TestPostCreate_AuthorAgeValidated(t *testing.T) {
	svc, repo := newTestPostService(t)

	_, err := svc.Create(context.Background(), 30, 120, "content", "", "")
	if !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("error = %v, want ErrValidation", err)
	}
	if repo.calls != 0 {
		t.Errorf("repo calls = %d, want 0", repo.calls)
	}
}

func TestPostCreate_ContentBoundaries(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr bool
	}{
		{"empty", "", true},
		{"whitespace only", "   ", true},
		{"exactly 1 char", "x", false},
		{"exactly 500 chars", strings.Repeat("a", 500), false},
		{"501 chars", strings.Repeat("a", 501), true},
		{"501 chars trimmed to 500", " " + strings.Repeat("a", 500) + " ", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestPostService(t)

			_, err := svc.Create(context.Background(), 30, 30, tt.content, "", "")
			if tt.wantErr {
				if !errors.Is(err, apperror.ErrValidation) {
					t.Errorf("error = %v, want ErrValidation", err)
				}
			} else if err != nil {
				t.Errorf("Create() error = %v, want success", err)
			}
		})
	}
}

// =========================================================================
// LISTING TESTS
// =========================================================================

func TestListByAge_InvalidAge(t *testing.T) {
	svc, repo := newTestPostService(t)

	_, _, err := svc.ListByAge(context.Background(), 120, 1, 20)
	if !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("error = %v, want ErrValidation", err)
	}
	if repo.calls != 0 {
		t.Errorf("repo calls = %d, want 0 for rejected age", repo.calls)
	}
}

func TestListByAge_PageMath(t *testing.T) {
	svc, _ := newTestPostService(t)
	ctx := context.Background()

	// 5 posts, page size 2 → pages of 2, 2, 1.
	for i := 0; i < 5; i++ {
		if _, err := svc.Create(ctx, 30, 30, fmt.Sprintf("post %d", i), "", ""); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	for _, tt := range []struct {
		page     int
		wantSize int
	}{
		{1, 2},
		{2, 2},
		{3, 1},
		{4, 0},
	} {
		posts, total, err := svc.ListByAge(ctx, 30, tt.page, 2)
		if err != nil {
			t.Fatalf("ListByAge(page=%d) error = %v", tt.page, err)
		}
		if total != 5 {
			t.Errorf("total = %d, want 5", total)
		}
		if len(posts) != tt.wantSize {
			t.Errorf("page %d size = %d, want %d", tt.page, len(posts), tt.wantSize)
		}
	}
}

func TestListByAge_NormalizesPaging(t *testing.T) {
	svc, _ := newTestPostService(t)

	// page 0 and a negative limit fall back to defaults instead of erroring.
	_, _, err := svc.ListByAge(context.Background(), 30, 0, -5)
	if err != nil {
		t.Fatalf("ListByAge() error = %v", err)
	}
}

// =========================================================================
// USER LISTING TESTS
// =========================================================================

func TestListByUser_RequiresUserID(t *testing.T) {
	svc, repo := newTestPostService(t)

	_, _, _, err := svc.ListByUser(context.Background(), "  ", 1, 20)
	if !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("error = %v, want ErrValidation", err)
	}
	if repo.calls != 0 {
		t.Errorf("repo calls = %d, want 0", repo.calls)
	}
}

func TestListByUser_Stats(t *testing.T) {
	svc, repo := newTestPostService(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		post, err := svc.Create(ctx, 30, 30, fmt.Sprintf("post %d", i), "user-1", "author")
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		repo.posts[post.ID].LikeCount = 3
	}

	posts, total, stats, err := svc.ListByUser(ctx, "user-1", 1, 20)
	if err != nil {
		t.Fatalf("ListByUser() error = %v", err)
	}
	if total != 2 || len(posts) != 2 {
		t.Errorf("got %d posts (total %d), want 2", len(posts), total)
	}
	if stats.TotalPosts != 2 || stats.TotalLikes != 6 {
		t.Errorf("stats = %+v, want {TotalPosts:2 TotalLikes:6}", stats)
	}
}

// =========================================================================
// DELETE TESTS
// =========================================================================

func TestPostDelete_OnlyAuthor(t *testing.T) {
	svc, _ := newTestPostService(t)
	ctx := context.Background()

	post, err := svc.Create(ctx, 30, 30, "mine", "owner", "owner")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := svc.Delete(ctx, post.ID, "stranger"); !errors.Is(err, apperror.ErrForbidden) {
		t.Errorf("Delete() by stranger error = %v, want ErrForbidden", err)
	}
	if err := svc.Delete(ctx, post.ID, "owner"); err != nil {
		t.Errorf("Delete() by owner error = %v", err)
	}
}

func TestPostDelete_AnonymousPost(t *testing.T) {
	svc, _ := newTestPostService(t)
	ctx := context.Background()

	post, err := svc.Create(ctx, 30, 30, "nobody's", "", "")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := svc.Delete(ctx, post.ID, "anyone"); !errors.Is(err, apperror.ErrForbidden) {
		t.Errorf("Delete() of anonymous post error = %v, want ErrForbidden", err)
	}
}
