package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ghazighazi3030/blogueee/internal/backend"
	"github.com/ghazighazi3030/blogueee/internal/media"
	"github.com/ghazighazi3030/blogueee/internal/models"
	"github.com/ghazighazi3030/blogueee/internal/query"
	"github.com/ghazighazi3030/blogueee/internal/session"
	webtemplates "github.com/ghazighazi3030/blogueee/internal/templates"
)

// Global templates variable to parse templates once at startup
var templates *template.Template

var numbers = message.NewPrinter(language.English)

// TemplateData holds data passed to HTML templates.
type TemplateData struct {
	User   *models.Profile
	Flash  *session.Flash
	Error  string
	Title  string
	Active string // admin navigation section

	Site models.SiteSettings
	SEO  models.SEOSettings

	Posts          []models.Post
	Post           *models.Post
	Categories     []models.Category
	Category       *models.Category
	Comments       []models.Comment
	Users          []models.Profile
	Profile        *models.Profile
	Media          []models.Media
	Stats          models.Stats
	RecentComments []models.Comment

	// Form holds submitted values to re-render after a validation failure;
	// Errors maps a field name to its message.
	Form   map[string]string
	Errors map[string]string

	Statuses        []models.PostStatus
	CommentStatuses []models.CommentStatus
	Roles           []models.Role
	Timezones       []struct{ Value, Label string }

	CommentsOpen   bool
	MaxUploadBytes int64
}

type postCard struct {
	Post  models.Post
	Words int
}

var funcs = template.FuncMap{
	"add": func(a, b int) int { return a + b },
	"inc": func(a int) int { return a + 1 },
	"formatDateTime": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("Jan 02, 2006 at 15:04")
	},
	"formatDate": func(t any) string {
		switch v := t.(type) {
		case time.Time:
			if v.IsZero() {
				return ""
			}
			return v.Format("Jan 02, 2006")
		case *time.Time:
			if v == nil || v.IsZero() {
				return ""
			}
			return v.Format("Jan 02, 2006")
		}
		return ""
	},
	"formatNumber": func(n any) string { return numbers.Sprintf("%d", n) },
	"formatBytes":  formatBytes,
	"summary": func(p models.Post, words int) string {
		return p.Summary(words)
	},
	// card bundles a post with the excerpt length for the post_card partial.
	"card": func(p models.Post, words int) postCard {
		return postCard{Post: p, Words: words}
	},
	"paragraphs": func(s string) []string {
		var out []string
		for _, block := range strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n\n") {
			if block = strings.TrimSpace(block); block != "" {
				out = append(out, block)
			}
		}
		return out
	},
	"same": func(a, b any) bool { return fmt.Sprint(a) == fmt.Sprint(b) },
	"deref": func(p *string) string {
		if p == nil {
			return ""
		}
		return *p
	},
	"percent": func(v, max int) int {
		if max <= 0 {
			return 0
		}
		return v * 100 / max
	},
	"maxMonthly": func(months []models.MonthStat) int {
		m := 0
		for _, s := range months {
			m = max(m, s.Posts, s.Comments)
		}
		return m
	},
	"isImage": func(mime string) bool { return strings.HasPrefix(mime, "image/") },
}

func init() {
	templates = template.Must(template.New("").Funcs(funcs).ParseFS(webtemplates.FS, "*.html"))
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}

// Handler serves every page of the blog. Reads go through Cache and writes
// go straight to Backend, followed by an invalidation of the affected keys.
type Handler struct {
	Backend  backend.Client
	Cache    *query.Cache
	Sessions *scs.SessionManager
	Media    *media.DiskStore
}

// New returns a Handler wired to its collaborators.
func New(client backend.Client, cache *query.Cache, sm *scs.SessionManager, store *media.DiskStore) *Handler {
	return &Handler{Backend: client, Cache: cache, Sessions: sm, Media: store}
}

// data starts the template data of a page: the signed-in user, a pending
// flash notice and the site settings for the layout.
func (h *Handler) data(r *http.Request) TemplateData {
	st := session.FromContext(r.Context())
	return TemplateData{
		User:  st.User,
		Flash: session.PopFlash(r.Context(), h.Sessions),
		Site:  h.siteSettings(r.Context()),
	}
}

func (h *Handler) siteSettings(ctx context.Context) models.SiteSettings {
	s, err := query.Fetch(ctx, h.Cache, keySettings, h.Backend.GetSiteSettings)
	if err != nil {
		log.Printf("siteSettings: falling back to defaults: %v", err)
		return models.DefaultSiteSettings()
	}
	return s
}

func (h *Handler) flash(r *http.Request, kind, msg string) {
	session.PutFlash(r.Context(), h.Sessions, kind, msg)
}

// done finishes a successful mutation: the keys are invalidated before the
// redirect so the next page load refetches.
func (h *Handler) done(w http.ResponseWriter, r *http.Request, to, msg string, keys ...query.Key) {
	h.Cache.InvalidateAll(keys...)
	h.flash(r, session.FlashSuccess, msg)
	http.Redirect(w, r, to, http.StatusSeeOther)
}

// failed reports a rejected mutation with the backend's message.
func (h *Handler) failed(w http.ResponseWriter, r *http.Request, to, action string, err error) {
	log.Printf("%s: %v", action, err)
	h.flash(r, session.FlashError, "Failed to "+action+": "+backend.Message(err))
	http.Redirect(w, r, to, http.StatusSeeOther)
}

// renderTemplate executes name into a buffer first so a failing template
// never sends a partial page.
func renderTemplate(w http.ResponseWriter, r *http.Request, templateName string, data TemplateData) {
	renderStatus(w, r, http.StatusOK, templateName, data)
}

func renderStatus(w http.ResponseWriter, r *http.Request, status int, templateName string, data TemplateData) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, templateName, data); err != nil {
		log.Printf("Error rendering template %s: %v", templateName, err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

func renderError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	data := TemplateData{Error: msg, Site: models.DefaultSiteSettings()}
	if st := session.FromContext(r.Context()); st.User != nil {
		data.User = st.User
	}
	renderStatus(w, r, status, "error.html", data)
}

// HTTP error pages.
func Render400(w http.ResponseWriter, r *http.Request, message string) {
	renderError(w, r, http.StatusBadRequest, "400 Bad Request: "+message)
}

func Render403(w http.ResponseWriter, r *http.Request, message string) {
	renderError(w, r, http.StatusForbidden, "403 Forbidden: "+message)
}

func Render404(w http.ResponseWriter, r *http.Request) {
	renderError(w, r, http.StatusNotFound, "404 Not Found")
}

func Render405(w http.ResponseWriter, r *http.Request) {
	renderError(w, r, http.StatusMethodNotAllowed, "405 Method Not Allowed")
}

func Render500(w http.ResponseWriter, r *http.Request, message string) {
	log.Printf("Internal Server Error: %s", message)
	renderError(w, r, http.StatusInternalServerError, "500 Internal Server Error")
}

// renderLookupError maps a failed single-row read to a 404 or a 500.
func renderLookupError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, backend.ErrNotFound) {
		Render404(w, r)
		return
	}
	Render500(w, r, backend.Message(err))
}

// PlaceholderHandler is shown by the admin gate while the session is still
// unresolved. The page refreshes itself until the backend answers.
func (h *Handler) PlaceholderHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		renderTemplate(w, r, "admin_loading.html", TemplateData{Title: "Loading", Site: models.DefaultSiteSettings()})
	})
}

// NotFoundHandler renders the 404 page.
func NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	Render404(w, r)
}

// ProtectStatic hides directory listings of the static file server.
func ProtectStatic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			Render404(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
