package handlers

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ghazighazi3030/blogueee/internal/auth"
	"github.com/ghazighazi3030/blogueee/internal/backend/sqlite"
	"github.com/ghazighazi3030/blogueee/internal/media"
	"github.com/ghazighazi3030/blogueee/internal/models"
	"github.com/ghazighazi3030/blogueee/internal/query"
	"github.com/ghazighazi3030/blogueee/internal/session"
)

type harness struct {
	h       *Handler
	store   *sqlite.Store
	admin   models.Profile
	state   session.State
	cookies []*http.Cookie
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	store, err := sqlite.Open(":memory:?_foreign_keys=on", auth.NewTokenIssuer("test-secret", time.Hour))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	ctx := context.Background()
	if _, err := store.SignUp(ctx, models.NewUser{
		Email: "admin@example.com", Password: "secret123", FullName: "Ada Admin", Role: models.RoleAdmin,
	}); err != nil {
		t.Fatalf("sign up: %v", err)
	}
	sess, err := store.SignIn(ctx, models.Credentials{Email: "admin@example.com", Password: "secret123"})
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}

	disk, err := media.NewDiskStore(t.TempDir(), 1<<20)
	if err != nil {
		t.Fatalf("disk store: %v", err)
	}
	h := New(store, query.New(time.Minute), session.NewManager(time.Hour, false), disk)
	return &harness{
		h:     h,
		store: store,
		admin: sess.User,
		state: session.State{Session: sess, User: &sess.User},
	}
}

// serve runs fn behind the session manager, as the server does, carrying
// the web session cookie from one request to the next.
func (x *harness) serve(fn http.HandlerFunc, req *http.Request, signedIn bool) *httptest.ResponseRecorder {
	for _, c := range x.cookies {
		req.AddCookie(c)
	}
	wrapped := x.h.Sessions.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if signedIn {
			r = r.WithContext(session.NewContext(r.Context(), x.state))
		}
		fn(w, r)
	}))
	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, req)
	if got := rec.Result().Cookies(); len(got) > 0 {
		x.cookies = got
	}
	return rec
}

func get(path string, values map[string]string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range values {
		req.SetPathValue(k, v)
	}
	return req
}

func formRequest(path string, form url.Values, values map[string]string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for k, v := range values {
		req.SetPathValue(k, v)
	}
	return req
}

func expectRedirect(t *testing.T, rec *httptest.ResponseRecorder, to string) {
	t.Helper()
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d: %s", rec.Code, rec.Body.String())
	}
	if loc := rec.Header().Get("Location"); loc != to {
		t.Fatalf("expected redirect to %s, got %s", to, loc)
	}
}

func (x *harness) createPost(t *testing.T, title, slug string, status models.PostStatus) *models.Post {
	t.Helper()
	p, err := x.store.CreatePost(context.Background(), models.PostInput{
		Title: title, Slug: slug, Content: "First paragraph.\n\nSecond paragraph.",
		Status: status, AuthorID: x.admin.ID,
	})
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	return p
}

func TestCreateCategoryShowsUpOnNextLoad(t *testing.T) {
	x := newHarness(t)

	rec := x.serve(x.h.CategoriesAdminHandler, get("/admin/categories", nil), true)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "Esports") {
		t.Fatal("category listed before it exists")
	}

	form := url.Values{"name": {"Esports"}, "description": {"Competitive gaming"}}
	rec = x.serve(x.h.CategoriesAdminHandler, formRequest("/admin/categories", form, nil), true)
	expectRedirect(t, rec, "/admin/categories")

	rec = x.serve(x.h.CategoriesAdminHandler, get("/admin/categories", nil), true)
	body := rec.Body.String()
	if !strings.Contains(body, "Esports") || !strings.Contains(body, "esports") {
		t.Fatal("new category missing after create")
	}
	if !strings.Contains(body, "Category created successfully") {
		t.Fatal("expected success flash")
	}
}

func TestCreateCategoryFailureFlashesBackendMessage(t *testing.T) {
	x := newHarness(t)

	form := url.Values{"name": {"Tennis"}, "slug": {"tennis"}}
	rec := x.serve(x.h.CategoriesAdminHandler, formRequest("/admin/categories", form, nil), true)
	expectRedirect(t, rec, "/admin/categories")

	rec = x.serve(x.h.CategoriesAdminHandler, get("/admin/categories", nil), true)
	if !strings.Contains(rec.Body.String(), "Failed to create category: a category with this name or slug already exists") {
		t.Fatalf("expected backend message in flash, got:\n%s", rec.Body.String())
	}
}

func TestCreateCategoryValidation(t *testing.T) {
	x := newHarness(t)

	form := url.Values{"name": {"X"}}
	rec := x.serve(x.h.CategoriesAdminHandler, formRequest("/admin/categories", form, nil), true)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Name must be at least 2 characters") {
		t.Fatal("expected field error")
	}
}

func TestDeletePostRemovesItFromList(t *testing.T) {
	x := newHarness(t)
	post := x.createPost(t, "Cup Final Report", "cup-final-report", models.PostPublished)

	rec := x.serve(x.h.PostsHandler, get("/admin/posts", nil), true)
	if !strings.Contains(rec.Body.String(), "Cup Final Report") {
		t.Fatal("post missing from list")
	}

	req := formRequest("/admin/posts/delete/"+post.ID, url.Values{}, map[string]string{"id": post.ID})
	rec = x.serve(x.h.DeletePostHandler, req, true)
	expectRedirect(t, rec, "/admin/posts")

	rec = x.serve(x.h.PostsHandler, get("/admin/posts", nil), true)
	if strings.Contains(rec.Body.String(), "Cup Final Report") {
		t.Fatal("deleted post still listed")
	}
}

func TestNewPostDerivesSlugFromTitle(t *testing.T) {
	x := newHarness(t)

	form := url.Values{
		"title":       {"Derby Day Preview"},
		"content":     {"Who wins?"},
		"status":      {"published"},
		"category_id": {uncategorized},
	}
	rec := x.serve(x.h.NewPostHandler, formRequest("/admin/posts/new", form, nil), true)
	expectRedirect(t, rec, "/admin/posts")

	post, err := x.store.GetPostBySlug(context.Background(), "derby-day-preview")
	if err != nil {
		t.Fatalf("expected derived slug: %v", err)
	}
	if post.AuthorID != x.admin.ID {
		t.Fatalf("expected author %s, got %s", x.admin.ID, post.AuthorID)
	}
	if post.CategoryID != nil {
		t.Fatalf("expected uncategorized post, got %v", *post.CategoryID)
	}
}

func TestNewPostValidation(t *testing.T) {
	x := newHarness(t)

	cases := []struct {
		name string
		form url.Values
		want string
	}{
		{"short title", url.Values{"title": {"ab"}, "slug": {"valid-slug"}, "status": {"draft"}}, "Title must be at least 3 characters"},
		{"short slug", url.Values{"title": {"Valid"}, "slug": {"a"}, "status": {"draft"}}, "Slug must be at least 3 characters"},
		{"bad status", url.Values{"title": {"Valid"}, "status": {"live"}}, "Choose a valid status"},
		{"long excerpt", url.Values{"title": {"Valid"}, "status": {"draft"}, "excerpt": {strings.Repeat("x", 301)}}, "Excerpt must be at most 300 characters"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := x.serve(x.h.NewPostHandler, formRequest("/admin/posts/new", tc.form, nil), true)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
			if !strings.Contains(rec.Body.String(), tc.want) {
				t.Fatalf("expected %q in body", tc.want)
			}
		})
	}
}

func TestEditPostUpdatesAndRefreshesCache(t *testing.T) {
	x := newHarness(t)
	post := x.createPost(t, "Old Title", "old-title", models.PostDraft)
	ids := map[string]string{"id": post.ID}

	rec := x.serve(x.h.EditPostHandler, get("/admin/posts/edit/"+post.ID, ids), true)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Old Title") {
		t.Fatalf("expected edit form, got %d", rec.Code)
	}

	form := url.Values{"_method": {"PUT"}, "title": {"New Title"}, "slug": {"old-title"}, "status": {"published"}}
	rec = x.serve(x.h.EditPostHandler, formRequest("/admin/posts/edit/"+post.ID, form, ids), true)
	expectRedirect(t, rec, "/admin/posts")

	rec = x.serve(x.h.EditPostHandler, get("/admin/posts/edit/"+post.ID, ids), true)
	if !strings.Contains(rec.Body.String(), "New Title") {
		t.Fatal("edit form shows stale post")
	}
}

func TestEditUnknownPostIs404(t *testing.T) {
	x := newHarness(t)
	rec := x.serve(x.h.EditPostHandler, get("/admin/posts/edit/missing", map[string]string{"id": "missing"}), true)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestPostPage(t *testing.T) {
	x := newHarness(t)
	published := x.createPost(t, "Transfer Window", "transfer-window", models.PostPublished)
	x.createPost(t, "Secret Draft", "secret-draft", models.PostDraft)

	cases := []struct {
		slug   string
		status int
	}{
		{"transfer-window", http.StatusOK},
		{"secret-draft", http.StatusNotFound},
		{"nowhere", http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.slug, func(t *testing.T) {
			rec := x.serve(x.h.PostHandler, get("/post/"+tc.slug, map[string]string{"slug": tc.slug}), false)
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rec.Code)
			}
		})
	}

	got, err := x.store.GetPost(context.Background(), published.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.ViewCount != 1 {
		t.Fatalf("expected 1 view, got %d", got.ViewCount)
	}
}

func TestCommentModeration(t *testing.T) {
	x := newHarness(t)
	post := x.createPost(t, "Match Day", "match-day", models.PostPublished)
	slugs := map[string]string{"slug": post.Slug}
	comment := func(content string) url.Values {
		return url.Values{"author_name": {"Reader"}, "author_email": {"reader@example.com"}, "content": {content}}
	}

	rec := x.serve(x.h.CreateCommentHandler, formRequest("/post/match-day/comments", comment("Held back"), slugs), false)
	expectRedirect(t, rec, "/post/match-day#comments")
	rec = x.serve(x.h.PostHandler, get("/post/match-day", slugs), false)
	if strings.Contains(rec.Body.String(), "Held back") {
		t.Fatal("pending comment shown publicly")
	}
	if !strings.Contains(rec.Body.String(), "awaiting moderation") {
		t.Fatal("expected moderation notice")
	}

	site := models.DefaultSiteSettings()
	site.ModerateComments = false
	if err := x.store.UpdateSiteSettings(context.Background(), site); err != nil {
		t.Fatal(err)
	}
	x.h.Cache.Invalidate(keySettings)

	rec = x.serve(x.h.CreateCommentHandler, formRequest("/post/match-day/comments", comment("Straight in"), slugs), false)
	expectRedirect(t, rec, "/post/match-day#comments")
	rec = x.serve(x.h.PostHandler, get("/post/match-day", slugs), false)
	if !strings.Contains(rec.Body.String(), "Straight in") {
		t.Fatal("approved comment missing")
	}

	site.AllowComments = false
	if err := x.store.UpdateSiteSettings(context.Background(), site); err != nil {
		t.Fatal(err)
	}
	x.h.Cache.Invalidate(keySettings)
	rec = x.serve(x.h.CreateCommentHandler, formRequest("/post/match-day/comments", comment("Too late"), slugs), false)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 with comments closed, got %d", rec.Code)
	}
}

func TestCommentValidation(t *testing.T) {
	x := newHarness(t)
	x.createPost(t, "Match Day", "match-day", models.PostPublished)

	form := url.Values{"author_name": {"R"}, "author_email": {"not-an-email"}, "content": {"hi"}}
	rec := x.serve(x.h.CreateCommentHandler, formRequest("/post/match-day/comments", form, map[string]string{"slug": "match-day"}), false)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"Name must be 2-80 characters", "Enter a valid email address"} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in body", want)
		}
	}
}

func TestCommentStatusChange(t *testing.T) {
	x := newHarness(t)
	post := x.createPost(t, "Match Day", "match-day", models.PostPublished)
	c, err := x.store.CreateComment(context.Background(), models.CommentInput{
		PostID: post.ID, AuthorName: "Reader", AuthorEmail: "r@example.com", Content: "Nice", Status: models.CommentPending,
	})
	if err != nil {
		t.Fatal(err)
	}
	ids := map[string]string{"id": c.ID}

	rec := x.serve(x.h.CommentStatusHandler, formRequest("/admin/comments/"+c.ID+"/status", url.Values{"status": {"approved"}}, ids), true)
	expectRedirect(t, rec, "/admin/comments")

	approved, err := x.store.ListPostComments(context.Background(), post.ID, models.CommentApproved)
	if err != nil || len(approved) != 1 {
		t.Fatalf("expected one approved comment, got %v, %v", approved, err)
	}

	rec = x.serve(x.h.CommentStatusHandler, formRequest("/admin/comments/"+c.ID+"/status", url.Values{"status": {"bogus"}}, ids), true)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestLoginHandler(t *testing.T) {
	x := newHarness(t)

	rec := x.serve(x.h.LoginHandler, get("/admin", nil), false)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `name="password"`) {
		t.Fatalf("expected login form, got %d", rec.Code)
	}

	bad := url.Values{"email": {"admin@example.com"}, "password": {"wrong"}}
	rec = x.serve(x.h.LoginHandler, formRequest("/admin", bad, nil), false)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Invalid login credentials") {
		t.Fatal("expected backend message on failed login")
	}

	good := url.Values{"email": {"admin@example.com"}, "password": {"secret123"}}
	rec = x.serve(x.h.LoginHandler, formRequest("/admin", good, nil), false)
	expectRedirect(t, rec, dashboardPath)

	var token string
	x.serve(func(w http.ResponseWriter, r *http.Request) {
		token = session.Token(r.Context(), x.h.Sessions)
	}, get("/", nil), false)
	if token == "" {
		t.Fatal("expected access token in web session")
	}

	rec = x.serve(x.h.LoginHandler, get("/admin", nil), true)
	expectRedirect(t, rec, dashboardPath)
}

func TestLogoutHandler(t *testing.T) {
	x := newHarness(t)
	good := url.Values{"email": {"admin@example.com"}, "password": {"secret123"}}
	x.serve(x.h.LoginHandler, formRequest("/admin", good, nil), false)

	var token string
	x.serve(func(w http.ResponseWriter, r *http.Request) {
		token = session.Token(r.Context(), x.h.Sessions)
	}, get("/", nil), false)

	rec := x.serve(x.h.LogoutHandler, formRequest("/admin/logout", url.Values{}, nil), true)
	expectRedirect(t, rec, "/admin")

	sess, err := x.store.GetSession(context.Background(), token)
	if err != nil || sess != nil {
		t.Fatalf("expected revoked session, got %v, %v", sess, err)
	}
}

func TestSettingsHandler(t *testing.T) {
	x := newHarness(t)

	form := url.Values{
		"blog_title": {"Weekend Sports"}, "timezone": {"est"},
		"admin_email": {"a@example.com"}, "from_email": {"b@example.com"},
		"posts_per_page": {"5"}, "excerpt_length": {"40"}, "allow_comments": {"on"},
	}
	rec := x.serve(x.h.SettingsHandler, formRequest("/admin/settings", form, nil), true)
	expectRedirect(t, rec, "/admin/settings")

	saved, err := x.store.GetSiteSettings(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if saved.BlogTitle != "Weekend Sports" || saved.PostsPerPage != 5 || !saved.AllowComments || saved.ModerateComments {
		t.Fatalf("unexpected settings %+v", saved)
	}

	form.Set("posts_per_page", "0")
	rec = x.serve(x.h.SettingsHandler, formRequest("/admin/settings", form, nil), true)
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "Posts per page must be between 1 and 100") {
		t.Fatalf("expected validation error, got %d", rec.Code)
	}
}

func TestSEOAndRobots(t *testing.T) {
	x := newHarness(t)

	rec := x.serve(x.h.RobotsHandler, get("/robots.txt", nil), false)
	if !strings.HasPrefix(rec.Body.String(), "User-agent: *") {
		t.Fatalf("expected default robots, got %q", rec.Body.String())
	}

	form := url.Values{"site_title": {"ASA"}, "robots_txt": {"User-agent: *\r\nDisallow: /admin"}}
	rec = x.serve(x.h.SEOHandler, formRequest("/admin/seo", form, nil), true)
	expectRedirect(t, rec, "/admin/seo")

	rec = x.serve(x.h.RobotsHandler, get("/robots.txt", nil), false)
	if rec.Body.String() != "User-agent: *\nDisallow: /admin" {
		t.Fatalf("robots not refreshed: %q", rec.Body.String())
	}

	form.Set("google_analytics_id", "nope")
	rec = x.serve(x.h.SEOHandler, formRequest("/admin/seo", form, nil), true)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestDashboardHandler(t *testing.T) {
	x := newHarness(t)
	x.createPost(t, "Season Opener", "season-opener", models.PostPublished)

	rec := x.serve(x.h.DashboardHandler, get("/admin/dashboard", nil), true)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"Total views", "Season Opener", "Ada Admin"} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q on dashboard", want)
		}
	}
}

func TestMediaUploadAndDelete(t *testing.T) {
	x := newHarness(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "goal.png")
	if err != nil {
		t.Fatal(err)
	}
	fw.Write(append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 64)...))
	mw.WriteField("alt_text", "Winning goal")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/admin/media", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := x.serve(x.h.MediaHandler, req, true)
	expectRedirect(t, rec, "/admin/media")

	items, err := x.store.ListMedia(context.Background())
	if err != nil || len(items) != 1 {
		t.Fatalf("expected one media row, got %v, %v", items, err)
	}
	item := items[0]
	if item.MimeType != "image/png" || item.AltText != "Winning goal" {
		t.Fatalf("unexpected media %+v", item)
	}
	onDisk := filepath.Join(x.h.Media.Dir, strings.TrimPrefix(item.URL, media.URLPrefix))
	if _, err := os.Stat(onDisk); err != nil {
		t.Fatalf("expected stored file: %v", err)
	}

	req = formRequest("/admin/media/"+item.ID+"/delete", url.Values{}, map[string]string{"id": item.ID})
	rec = x.serve(x.h.DeleteMediaHandler, req, true)
	expectRedirect(t, rec, "/admin/media")
	if _, err := os.Stat(onDisk); !os.IsNotExist(err) {
		t.Fatalf("expected file removed, got %v", err)
	}
}

func TestUserEditAndSelfDelete(t *testing.T) {
	x := newHarness(t)
	ids := map[string]string{"id": x.admin.ID}

	form := url.Values{"full_name": {"Ada Lovelace"}, "role": {"editor"}}
	rec := x.serve(x.h.EditUserHandler, formRequest("/admin/users/"+x.admin.ID, form, ids), true)
	expectRedirect(t, rec, "/admin/users")

	p, err := x.store.GetUser(context.Background(), x.admin.ID)
	if err != nil || p.FullName != "Ada Lovelace" || p.Role != models.RoleEditor {
		t.Fatalf("profile not updated: %+v, %v", p, err)
	}

	rec = x.serve(x.h.DeleteUserHandler, formRequest("/admin/users/"+x.admin.ID+"/delete", url.Values{}, ids), true)
	expectRedirect(t, rec, "/admin/users")
	if _, err := x.store.GetUser(context.Background(), x.admin.ID); err != nil {
		t.Fatalf("self delete must be refused: %v", err)
	}
}

func TestPublicPages(t *testing.T) {
	x := newHarness(t)
	x.createPost(t, "Grand Slam Recap", "grand-slam-recap", models.PostPublished)

	cases := []struct {
		name   string
		fn     http.HandlerFunc
		req    *http.Request
		status int
		want   string
	}{
		{"home", x.h.HomeHandler, get("/", nil), http.StatusOK, "Grand Slam Recap"},
		{"unknown path", x.h.HomeHandler, get("/nope", nil), http.StatusNotFound, "404"},
		{"about", x.h.AboutHandler, get("/about", nil), http.StatusOK, "About"},
		{"categories", x.h.CategoriesHandler, get("/categories", nil), http.StatusOK, "Tennis"},
		{"category", x.h.CategoryHandler, get("/categories/tennis", map[string]string{"slug": "tennis"}), http.StatusOK, "Tennis"},
		{"unknown category", x.h.CategoryHandler, get("/categories/curling", map[string]string{"slug": "curling"}), http.StatusNotFound, "404"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := x.serve(tc.fn, tc.req, false)
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rec.Code)
			}
			if !strings.Contains(rec.Body.String(), tc.want) {
				t.Fatalf("expected %q in body", tc.want)
			}
		})
	}
}

func TestFormatBytes(t *testing.T) {
	cases := map[int64]string{0: "0 B", 512: "512 B", 2048: "2.0 KB", 10485760: "10.0 MB"}
	for in, want := range cases {
		if got := formatBytes(in); got != want {
			t.Errorf("formatBytes(%d) = %q, want %q", in, got, want)
		}
	}
}
