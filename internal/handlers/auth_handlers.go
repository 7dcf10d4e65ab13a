package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/ghazighazi3030/blogueee/internal/backend"
	"github.com/ghazighazi3030/blogueee/internal/models"
	"github.com/ghazighazi3030/blogueee/internal/session"
)

const dashboardPath = "/admin/dashboard"

// LoginHandler displays and processes the admin login form. A visitor who
// is already signed in goes straight to the dashboard.
func (h *Handler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/admin" {
		Render404(w, r)
		return
	}
	st := session.FromContext(r.Context())

	switch r.Method {
	case http.MethodGet:
		if st.SignedIn() {
			http.Redirect(w, r, dashboardPath, http.StatusSeeOther)
			return
		}
		data := h.data(r)
		data.Title = "Admin Login"
		renderTemplate(w, r, "admin_login.html", data)
	case http.MethodPost:
		email := strings.TrimSpace(r.FormValue("email"))
		password := r.FormValue("password")

		sess, err := h.Backend.SignIn(r.Context(), models.Credentials{Email: email, Password: password})
		if err != nil {
			log.Printf("LoginHandler: sign in failed for %s: %v", email, err)
			data := h.data(r)
			data.Title = "Admin Login"
			data.Error = "Login failed: " + backend.Message(err)
			data.Form = map[string]string{"email": email}
			renderStatus(w, r, http.StatusUnauthorized, "admin_login.html", data)
			return
		}

		if err := session.SaveToken(r.Context(), h.Sessions, sess.AccessToken); err != nil {
			Render500(w, r, "Failed to store session: "+err.Error())
			return
		}
		log.Printf("LoginHandler: %s (%s) signed in", sess.User.Email, sess.User.ID)
		h.flash(r, session.FlashSuccess, "Welcome back, "+displayName(sess.User))
		http.Redirect(w, r, dashboardPath, http.StatusSeeOther)
	default:
		Render405(w, r)
	}
}

// LogoutHandler ends the backend session and forgets the stored token.
func (h *Handler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		Render405(w, r)
		return
	}

	token := session.Token(r.Context(), h.Sessions)
	if token != "" {
		if err := h.Backend.SignOut(r.Context(), token); err != nil {
			// The local session is dropped either way.
			log.Printf("LogoutHandler: sign out failed: %v", err)
		}
	}
	if err := session.ClearToken(r.Context(), h.Sessions); err != nil {
		log.Printf("LogoutHandler: clear session: %v", err)
	}
	h.flash(r, session.FlashInfo, "You have been signed out.")
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

func displayName(p models.Profile) string {
	if p.FullName != "" {
		return p.FullName
	}
	return p.Email
}
