package middleware

import (
	"log"
	"net/http"
	"strings"

	"github.com/alexedwards/scs/v2"

	"github.com/ghazighazi3030/blogueee/internal/backend"
	"github.com/ghazighazi3030/blogueee/internal/session"
)

// LoginPath is where unauthenticated admin requests are sent.
const LoginPath = "/admin"

// SessionMiddleware resolves the access token kept in the web session and
// stores the resulting session.State in the request context. The token is
// also attached for adapters that authorize per request. It must run inside
// sm.LoadAndSave.
func SessionMiddleware(sm *scs.SessionManager, tracker *session.Tracker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := session.Token(r.Context(), sm)
			st := tracker.Resolve(r.Context(), token)

			if token != "" && !st.Loading && !st.SignedIn() {
				// The backend no longer knows this token; forget it.
				if err := session.ClearToken(r.Context(), sm); err != nil {
					log.Printf("Failed to clear stale access token: %v", err)
				}
				token = ""
			}

			ctx := session.NewContext(r.Context(), st)
			ctx = backend.WithAccessToken(ctx, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin gates the admin area. While the session is still being
// resolved it serves placeholder instead of the page; without a session it
// redirects to the login page.
func RequireAdmin(placeholder http.Handler) func(http.Handler) http.Handler {
	if placeholder == nil {
		placeholder = http.HandlerFunc(defaultPlaceholder)
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			st := session.FromContext(r.Context())
			w.Header().Set("Cache-Control", "no-store")

			switch {
			case st.Loading:
				placeholder.ServeHTTP(w, r)
			case !st.SignedIn():
				if isAJAX(r) {
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusUnauthorized)
					w.Write([]byte(`{"error":"Unauthorized"}`))
					return
				}
				http.Redirect(w, r, LoginPath, http.StatusFound)
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}

func isAJAX(r *http.Request) bool {
	return r.Header.Get("X-Requested-With") == "XMLHttpRequest" ||
		strings.Contains(r.Header.Get("Accept"), "application/json")
}

func defaultPlaceholder(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(`<!doctype html><html><head><meta http-equiv="refresh" content="2"><title>Loading…</title></head><body><p>Loading…</p></body></html>`))
}
