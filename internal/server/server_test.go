package server

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ghazighazi3030/blogueee/internal/auth"
	"github.com/ghazighazi3030/blogueee/internal/backend/sqlite"
	"github.com/ghazighazi3030/blogueee/internal/handlers"
	"github.com/ghazighazi3030/blogueee/internal/media"
	"github.com/ghazighazi3030/blogueee/internal/middleware"
	"github.com/ghazighazi3030/blogueee/internal/models"
	"github.com/ghazighazi3030/blogueee/internal/query"
	"github.com/ghazighazi3030/blogueee/internal/session"
)

type testServer struct {
	*httptest.Server
	store *sqlite.Store
	admin *models.Profile
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store, err := sqlite.Open(":memory:?_foreign_keys=on", auth.NewTokenIssuer("test-secret", time.Hour))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	admin, err := store.SignUp(context.Background(), models.NewUser{
		Email: "admin@example.com", Password: "secret123", FullName: "Ada Admin", Role: models.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}

	disk, err := media.NewDiskStore(t.TempDir(), 1<<20)
	if err != nil {
		t.Fatal(err)
	}
	static := t.TempDir()
	if err := os.WriteFile(filepath.Join(static, "site.css"), []byte("body{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	cache := query.New(time.Minute)
	tracker := session.NewTracker(store, cache, time.Second)
	tracker.Start()
	t.Cleanup(tracker.Close)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	h := handlers.New(store, cache, session.NewManager(time.Hour, false), disk)
	srv := httptest.NewServer(Routes(Deps{
		Handler:   h,
		Tracker:   tracker,
		Limiter:   middleware.NewRateLimiter(ctx, 100, time.Minute),
		StaticDir: static,
	}))
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, store: store, admin: admin}
}

// login signs the admin in and returns a client holding the session cookie.
func login(t *testing.T, srv *testServer) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatal(err)
	}
	client := noRedirects(jar)
	resp, err := client.PostForm(srv.URL+"/admin", url.Values{
		"email": {"admin@example.com"}, "password": {"secret123"},
	})
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("login: expected 303, got %d", resp.StatusCode)
	}
	return client
}

func noRedirects(jar http.CookieJar) *http.Client {
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func TestAdminRoutesRequireSession(t *testing.T) {
	srv := newTestServer(t)
	client := noRedirects(nil)

	for _, path := range []string{
		"/admin/dashboard", "/admin/posts", "/admin/posts/new", "/admin/posts/edit/abc",
		"/admin/categories", "/admin/comments", "/admin/media", "/admin/users",
		"/admin/seo", "/admin/settings", "/admin/unknown",
	} {
		t.Run(path, func(t *testing.T) {
			resp, err := client.Get(srv.URL + path)
			if err != nil {
				t.Fatal(err)
			}
			resp.Body.Close()
			if resp.StatusCode != http.StatusFound {
				t.Fatalf("expected 302, got %d", resp.StatusCode)
			}
			if loc := resp.Header.Get("Location"); loc != "/admin" {
				t.Fatalf("expected redirect to /admin, got %q", loc)
			}
		})
	}

	resp, err := client.Get(srv.URL + "/admin")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login page: expected 200, got %d", resp.StatusCode)
	}
}

func TestLoginThenAdminPages(t *testing.T) {
	srv := newTestServer(t)
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatal(err)
	}
	client := noRedirects(jar)

	resp, err := client.PostForm(srv.URL+"/admin", url.Values{
		"email": {"admin@example.com"}, "password": {"secret123"},
	})
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther || resp.Header.Get("Location") != "/admin/dashboard" {
		t.Fatalf("expected redirect to dashboard, got %d %s", resp.StatusCode, resp.Header.Get("Location"))
	}

	resp, err = client.Get(srv.URL + "/admin/dashboard")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("dashboard: expected 200, got %d", resp.StatusCode)
	}
	if cc := resp.Header.Get("Cache-Control"); cc != "no-store" {
		t.Fatalf("expected no-store, got %q", cc)
	}

	// A DELETE sent through the _method override reaches the delete handler.
	resp, err = client.PostForm(srv.URL+"/admin/categories/missing/delete", url.Values{"_method": {"DELETE"}})
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected redirect after delete, got %d", resp.StatusCode)
	}

	resp, err = client.PostForm(srv.URL+"/admin/logout", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	resp, err = client.Get(srv.URL + "/admin/dashboard")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("expected redirect after logout, got %d", resp.StatusCode)
	}
}

func TestPublicRoutes(t *testing.T) {
	srv := newTestServer(t)
	client := noRedirects(nil)

	cases := []struct {
		path   string
		status int
		header string
		want   string
	}{
		{"/", http.StatusOK, "text/html; charset=utf-8", ""},
		{"/categories", http.StatusOK, "text/html; charset=utf-8", ""},
		{"/post/missing", http.StatusNotFound, "text/html; charset=utf-8", ""},
		{"/robots.txt", http.StatusOK, "text/plain; charset=utf-8", ""},
		{"/static/site.css", http.StatusOK, "", "body{}"},
		{"/static/", http.StatusNotFound, "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			resp, err := client.Get(srv.URL + tc.path)
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, resp.StatusCode)
			}
			if tc.header != "" && resp.Header.Get("Content-Type") != tc.header {
				t.Fatalf("content type %q", resp.Header.Get("Content-Type"))
			}
			if resp.Header.Get("X-Frame-Options") != "DENY" {
				t.Fatal("missing secure headers")
			}
			if tc.want != "" {
				body, _ := io.ReadAll(resp.Body)
				if !strings.Contains(string(body), tc.want) {
					t.Fatalf("expected %q in body", tc.want)
				}
			}
		})
	}
}

func TestDeletePostThroughRouter(t *testing.T) {
	srv := newTestServer(t)
	post, err := srv.store.CreatePost(context.Background(), models.PostInput{
		Title: "Cup Final Report", Slug: "cup-final-report", Content: "Full time.",
		Status: models.PostPublished, AuthorID: srv.admin.ID,
	})
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	client := login(t, srv)

	body := func(path string) string {
		t.Helper()
		resp, err := client.Get(srv.URL + path)
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()
		b, _ := io.ReadAll(resp.Body)
		return string(b)
	}

	list := body("/admin/posts")
	if !strings.Contains(list, "Cup Final Report") {
		t.Fatal("post missing from list")
	}
	if !strings.Contains(list, "/admin/posts/delete/"+post.ID) {
		t.Fatal("list does not link the delete route")
	}
	if !strings.Contains(body("/admin/posts/edit/"+post.ID), "Cup Final Report") {
		t.Fatal("edit form does not show the post")
	}

	resp, err := client.PostForm(srv.URL+"/admin/posts/delete/"+post.ID, nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther || resp.Header.Get("Location") != "/admin/posts" {
		t.Fatalf("expected redirect to posts, got %d %s", resp.StatusCode, resp.Header.Get("Location"))
	}
	if strings.Contains(body("/admin/posts"), "Cup Final Report") {
		t.Fatal("deleted post still listed")
	}
}
