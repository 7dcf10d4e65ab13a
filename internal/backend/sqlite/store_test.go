package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ghazighazi3030/blogueee/internal/auth"
	"github.com/ghazighazi3030/blogueee/internal/backend"
	"github.com/ghazighazi3030/blogueee/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:?_foreign_keys=on", auth.NewTokenIssuer("test-secret", time.Hour))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func signUp(t *testing.T, s *Store, email string, role models.Role) *models.Profile {
	t.Helper()
	p, err := s.SignUp(context.Background(), models.NewUser{
		Email:    email,
		Password: "secret123",
		FullName: "Test User",
		Role:     role,
	})
	if err != nil {
		t.Fatalf("sign up %s: %v", email, err)
	}
	return p
}

func TestSignInSessionLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := signUp(t, s, "admin@example.com", models.RoleAdmin)

	var events []backend.AuthEventType
	sub := s.OnAuthStateChange(func(ev backend.AuthEvent) { events = append(events, ev.Type) })
	defer sub.Unsubscribe()

	sess, err := s.SignIn(ctx, models.Credentials{Email: "admin@example.com", Password: "secret123"})
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if sess.User.ID != user.ID || sess.AccessToken == "" {
		t.Fatalf("unexpected session %+v", sess)
	}

	got, err := s.GetSession(ctx, sess.AccessToken)
	if err != nil || got == nil {
		t.Fatalf("get session: %v, %v", got, err)
	}
	if got.User.Role != models.RoleAdmin {
		t.Fatalf("expected admin role, got %s", got.User.Role)
	}

	if err := s.SignOut(ctx, sess.AccessToken); err != nil {
		t.Fatalf("sign out: %v", err)
	}
	got, err = s.GetSession(ctx, sess.AccessToken)
	if err != nil || got != nil {
		t.Fatalf("expected no session after sign out, got %v, %v", got, err)
	}

	if len(events) != 2 || events[0] != backend.EventSignedIn || events[1] != backend.EventSignedOut {
		t.Fatalf("unexpected events %v", events)
	}
}

func TestSignInRejectsBadCredentials(t *testing.T) {
	s := newTestStore(t)
	signUp(t, s, "writer@example.com", models.RoleAuthor)

	cases := []models.Credentials{
		{Email: "writer@example.com", Password: "wrong-pass"},
		{Email: "nobody@example.com", Password: "secret123"},
	}
	for _, c := range cases {
		_, err := s.SignIn(context.Background(), c)
		if err == nil {
			t.Fatalf("expected sign-in failure for %s", c.Email)
		}
		if backend.Message(err) != "Invalid login credentials" {
			t.Fatalf("unexpected message %q", backend.Message(err))
		}
	}
}

func TestSignUpDuplicateEmail(t *testing.T) {
	s := newTestStore(t)
	signUp(t, s, "dup@example.com", "")

	_, err := s.SignUp(context.Background(), models.NewUser{Email: "DUP@example.com", Password: "secret123", FullName: "Dup"})
	if !errors.Is(err, auth.ErrEmailExists) {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}
}

func TestGetSessionIgnoresGarbageToken(t *testing.T) {
	s := newTestStore(t)
	sess, err := s.GetSession(context.Background(), "not-a-jwt")
	if err != nil || sess != nil {
		t.Fatalf("expected (nil, nil), got %v, %v", sess, err)
	}
}

func TestPostCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	author := signUp(t, s, "author@example.com", models.RoleAuthor)

	cat, err := s.GetCategoryBySlug(ctx, "football")
	if err != nil {
		t.Fatalf("default category: %v", err)
	}

	post, err := s.CreatePost(ctx, models.PostInput{
		Title:      "Derby Day",
		Slug:       "derby-day",
		Content:    "A close match.",
		Status:     models.PostPublished,
		CategoryID: &cat.ID,
		AuthorID:   author.ID,
	})
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	if post.AuthorName != "Test User" || post.Category == nil || post.Category.Slug != "football" {
		t.Fatalf("joins not populated: %+v", post)
	}
	if post.PublishedAt == nil {
		t.Fatal("published post should have published_at")
	}

	if _, err := s.CreatePost(ctx, models.PostInput{Title: "Other", Slug: "derby-day"}); err == nil {
		t.Fatal("expected duplicate slug error")
	}

	published, err := s.ListPosts(ctx, models.PostFilter{Status: models.PostPublished, CategorySlug: "football"})
	if err != nil || len(published) != 1 {
		t.Fatalf("list published: %v, %v", published, err)
	}

	updated, err := s.UpdatePost(ctx, post.ID, models.PostInput{Title: "Derby Day!", Slug: "derby-day", Status: models.PostDraft})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Category != nil || updated.Title != "Derby Day!" {
		t.Fatalf("unexpected update result %+v", updated)
	}

	if err := s.IncrementViews(ctx, post.ID); err != nil {
		t.Fatalf("increment: %v", err)
	}
	bySlug, err := s.GetPostBySlug(ctx, "derby-day")
	if err != nil || bySlug.ViewCount != 1 {
		t.Fatalf("views: %v, %v", bySlug, err)
	}

	if err := s.DeletePost(ctx, post.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.GetPost(ctx, post.ID); !errors.Is(err, backend.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := s.DeletePost(ctx, post.ID); !errors.Is(err, backend.ErrNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestCategoryDeleteUncategorizesPosts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	cat, err := s.CreateCategory(ctx, models.CategoryInput{Name: "Cricket", Slug: "cricket"})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	if _, err := s.CreateCategory(ctx, models.CategoryInput{Name: "Cricket", Slug: "cricket-2"}); err == nil {
		t.Fatal("expected duplicate name error")
	}
	post, err := s.CreatePost(ctx, models.PostInput{Title: "Ashes", Slug: "ashes", CategoryID: &cat.ID})
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	if err := s.DeleteCategory(ctx, cat.ID); err != nil {
		t.Fatalf("delete category: %v", err)
	}
	got, err := s.GetPost(ctx, post.ID)
	if err != nil {
		t.Fatalf("get post: %v", err)
	}
	if got.CategoryID != nil {
		t.Fatalf("expected post to become uncategorized, got %v", *got.CategoryID)
	}
}

func TestCommentModeration(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	post, err := s.CreatePost(ctx, models.PostInput{Title: "Final", Slug: "final", Status: models.PostPublished})
	if err != nil {
		t.Fatalf("create post: %v", err)
	}

	c, err := s.CreateComment(ctx, models.CommentInput{PostID: post.ID, AuthorName: "Fan", AuthorEmail: "fan@example.com", Content: "Great!"})
	if err != nil {
		t.Fatalf("create comment: %v", err)
	}
	if c.Status != models.CommentPending {
		t.Fatalf("expected pending, got %s", c.Status)
	}

	approved, _ := s.ListPostComments(ctx, post.ID, models.CommentApproved)
	if len(approved) != 0 {
		t.Fatalf("pending comment should not be listed as approved")
	}
	if err := s.UpdateCommentStatus(ctx, c.ID, models.CommentApproved); err != nil {
		t.Fatalf("approve: %v", err)
	}
	approved, err = s.ListPostComments(ctx, post.ID, models.CommentApproved)
	if err != nil || len(approved) != 1 {
		t.Fatalf("approved list: %v, %v", approved, err)
	}

	all, err := s.ListComments(ctx)
	if err != nil || len(all) != 1 || all[0].PostTitle != "Final" {
		t.Fatalf("all comments: %+v, %v", all, err)
	}
	if err := s.UpdateCommentStatus(ctx, c.ID, "bogus"); err == nil {
		t.Fatal("expected invalid status error")
	}
	if _, err := s.CreateComment(ctx, models.CommentInput{PostID: "missing", AuthorName: "X", Content: "y"}); !errors.Is(err, backend.ErrNotFound) {
		t.Fatalf("expected not found for unknown post, got %v", err)
	}
	if err := s.DeleteComment(ctx, c.ID); err != nil {
		t.Fatalf("delete comment: %v", err)
	}
}

func TestUserEventsAndSessionRevocation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := signUp(t, s, "editor@example.com", models.RoleEditor)
	sess, err := s.SignIn(ctx, models.Credentials{Email: "editor@example.com", Password: "secret123"})
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}

	var events []backend.AuthEvent
	sub := s.OnAuthStateChange(func(ev backend.AuthEvent) { events = append(events, ev) })
	defer sub.Unsubscribe()

	if _, err := s.UpdateUser(ctx, user.ID, models.ProfileInput{FullName: "Chief Editor", Role: models.RoleAdmin}); err != nil {
		t.Fatalf("update user: %v", err)
	}
	if _, err := s.UpdateUser(ctx, user.ID, models.ProfileInput{FullName: "X", Role: "owner"}); err == nil {
		t.Fatal("expected invalid role error")
	}
	if err := s.DeleteUser(ctx, user.ID); err != nil {
		t.Fatalf("delete user: %v", err)
	}

	if len(events) != 2 || events[0].Type != backend.EventUserUpdated || events[1].Type != backend.EventUserDeleted {
		t.Fatalf("unexpected events %+v", events)
	}
	got, err := s.GetSession(ctx, sess.AccessToken)
	if err != nil || got != nil {
		t.Fatalf("deleted user's session should be gone, got %v, %v", got, err)
	}
}

func TestMediaCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	m, err := s.CreateMedia(ctx, models.MediaInput{Filename: "a.png", URL: "/uploads/a.png", MimeType: "image/png", SizeBytes: 42})
	if err != nil {
		t.Fatalf("create media: %v", err)
	}
	items, err := s.ListMedia(ctx)
	if err != nil || len(items) != 1 || items[0].UploadedBy != nil {
		t.Fatalf("list media: %+v, %v", items, err)
	}
	if _, err := s.GetMedia(ctx, m.ID); err != nil {
		t.Fatalf("get media: %v", err)
	}
	if err := s.DeleteMedia(ctx, m.ID); err != nil {
		t.Fatalf("delete media: %v", err)
	}
	if _, err := s.GetMedia(ctx, m.ID); !errors.Is(err, backend.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSettingsDefaultsAndUpdate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	site, err := s.GetSiteSettings(ctx)
	if err != nil {
		t.Fatalf("get settings: %v", err)
	}
	if site != models.DefaultSiteSettings() {
		t.Fatalf("expected defaults, got %+v", site)
	}

	site.PostsPerPage = 5
	site.AllowComments = false
	if err := s.UpdateSiteSettings(ctx, site); err != nil {
		t.Fatalf("update settings: %v", err)
	}
	site.PostsPerPage = 7
	if err := s.UpdateSiteSettings(ctx, site); err != nil {
		t.Fatalf("second update: %v", err)
	}
	got, _ := s.GetSiteSettings(ctx)
	if got.PostsPerPage != 7 || got.AllowComments {
		t.Fatalf("settings not saved: %+v", got)
	}

	seo := models.DefaultSEOSettings()
	seo.RobotsTxt = "User-agent: *\nDisallow: /admin"
	if err := s.UpdateSEOSettings(ctx, seo); err != nil {
		t.Fatalf("update seo: %v", err)
	}
	gotSEO, _ := s.GetSEOSettings(ctx)
	if gotSEO.RobotsTxt != seo.RobotsTxt {
		t.Fatalf("robots not saved: %q", gotSEO.RobotsTxt)
	}
}

func TestGetStats(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	signUp(t, s, "a@example.com", models.RoleAdmin)
	post, err := s.CreatePost(ctx, models.PostInput{Title: "One", Slug: "one"})
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	s.IncrementViews(ctx, post.ID)
	s.IncrementViews(ctx, post.ID)
	if _, err := s.CreateComment(ctx, models.CommentInput{PostID: post.ID, AuthorName: "Fan", Content: "hi"}); err != nil {
		t.Fatalf("create comment: %v", err)
	}

	st, err := s.GetStats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.PostCount != 1 || st.CommentCount != 1 || st.UserCount != 1 || st.TotalViews != 2 {
		t.Fatalf("unexpected counters %+v", st)
	}
	if len(st.Monthly) != StatsMonths {
		t.Fatalf("expected %d months, got %d", StatsMonths, len(st.Monthly))
	}
	last := st.Monthly[len(st.Monthly)-1]
	if last.Posts != 1 || last.Comments != 1 {
		t.Fatalf("current month bucket = %+v", last)
	}
}
