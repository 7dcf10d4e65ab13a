package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/ghazighazi3030/blogueee/internal/handlers"
	"github.com/ghazighazi3030/blogueee/internal/middleware"
	"github.com/ghazighazi3030/blogueee/internal/session"
)

// applyMiddleware wraps h so that the first middleware is the outermost.
func applyMiddleware(h http.Handler, m ...func(http.Handler) http.Handler) http.Handler {
	for i := len(m) - 1; i >= 0; i-- {
		h = m[i](h)
	}
	return h
}

// Deps are the pieces the router is assembled from.
type Deps struct {
	Handler   *handlers.Handler
	Tracker   *session.Tracker
	Limiter   *middleware.RateLimiter
	StaticDir string
}

// Routes registers every page and wraps the mux in the global middleware
// chain.
func Routes(d Deps) http.Handler {
	h := d.Handler
	mux := http.NewServeMux()

	fs := http.FileServer(http.Dir(d.StaticDir))
	mux.Handle("/static/", http.StripPrefix("/static/", handlers.ProtectStatic(fs)))
	mux.Handle("/uploads/", handlers.ProtectStatic(h.Media.Handler()))

	// Public pages
	mux.HandleFunc("/", h.HomeHandler)
	mux.HandleFunc("/about", h.AboutHandler)
	mux.HandleFunc("/categories", h.CategoriesHandler)
	mux.HandleFunc("/categories/{slug}", h.CategoryHandler)
	mux.HandleFunc("/post/{slug}", h.PostHandler)
	mux.HandleFunc("/post/{slug}/comments", h.CreateCommentHandler)
	mux.HandleFunc("/robots.txt", h.RobotsHandler)

	// The login page is the only admin route outside the gate.
	mux.Handle("/admin", d.Limiter.Limit(http.HandlerFunc(h.LoginHandler)))

	gate := middleware.RequireAdmin(h.PlaceholderHandler())
	admin := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, gate(fn))
	}
	admin("/admin/", handlers.NotFoundHandler)
	admin("/admin/logout", h.LogoutHandler)
	admin("/admin/dashboard", h.DashboardHandler)
	admin("/admin/posts", h.PostsHandler)
	admin("/admin/posts/new", h.NewPostHandler)
	admin("/admin/posts/edit/{id}", h.EditPostHandler)
	admin("/admin/posts/delete/{id}", h.DeletePostHandler)
	admin("/admin/categories", h.CategoriesAdminHandler)
	admin("/admin/categories/{id}", h.EditCategoryHandler)
	admin("/admin/categories/{id}/delete", h.DeleteCategoryHandler)
	admin("/admin/comments", h.CommentsAdminHandler)
	admin("/admin/comments/{id}/status", h.CommentStatusHandler)
	admin("/admin/comments/{id}/delete", h.DeleteCommentHandler)
	admin("/admin/media", h.MediaHandler)
	admin("/admin/media/{id}/delete", h.DeleteMediaHandler)
	admin("/admin/users", h.UsersHandler)
	admin("/admin/users/{id}", h.EditUserHandler)
	admin("/admin/users/{id}/delete", h.DeleteUserHandler)
	admin("/admin/seo", h.SEOHandler)
	admin("/admin/settings", h.SettingsHandler)

	return applyMiddleware(mux,
		middleware.RecoverMiddleware,
		middleware.LoggerMiddleware,
		middleware.TracingMiddleware,
		middleware.SecureHeadersMiddleware,
		middleware.MethodOverrideMiddleware,
		h.Sessions.LoadAndSave,
		middleware.SessionMiddleware(h.Sessions, d.Tracker),
	)
}

// Run serves handler on addr until ctx is cancelled, then shuts down,
// giving in-flight requests up to shutdownTimeout to finish.
func Run(ctx context.Context, addr string, handler http.Handler, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Println("Server stopped.")
	return nil
}
