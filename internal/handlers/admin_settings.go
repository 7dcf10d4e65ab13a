package handlers

import (
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/ghazighazi3030/blogueee/internal/backend"
	"github.com/ghazighazi3030/blogueee/internal/models"
	"github.com/ghazighazi3030/blogueee/internal/query"
)

const (
	seoPath      = "/admin/seo"
	settingsPath = "/admin/settings"
)

func seoForm(r *http.Request) models.SEOSettings {
	return models.SEOSettings{
		SiteTitle:         strings.TrimSpace(r.FormValue("site_title")),
		SiteDescription:   strings.TrimSpace(r.FormValue("site_description")),
		Keywords:          strings.TrimSpace(r.FormValue("keywords")),
		RobotsTxt:         strings.ReplaceAll(r.FormValue("robots_txt"), "\r\n", "\n"),
		GoogleAnalyticsID: strings.TrimSpace(r.FormValue("google_analytics_id")),
		SearchConsoleCode: strings.TrimSpace(r.FormValue("search_console_code")),
	}
}

// SEOHandler displays and saves the SEO settings.
func (h *Handler) SEOHandler(w http.ResponseWriter, r *http.Request) {
	data := h.data(r)
	data.Title = "SEO"
	data.Active = "seo"

	switch r.Method {
	case http.MethodGet:
		seo, err := query.Fetch(r.Context(), h.Cache, keySEO, h.Backend.GetSEOSettings)
		if err != nil {
			log.Printf("SEOHandler: %v", err)
			data.Error = "Could not load SEO settings: " + backend.Message(err)
			seo = models.DefaultSEOSettings()
		}
		data.SEO = seo
		renderTemplate(w, r, "admin_seo.html", data)
	case http.MethodPost, http.MethodPut:
		seo := seoForm(r)
		if errs := validateSEO(seo); len(errs) > 0 {
			data.SEO, data.Errors = seo, errs
			renderStatus(w, r, http.StatusBadRequest, "admin_seo.html", data)
			return
		}
		if err := h.Backend.UpdateSEOSettings(r.Context(), seo); err != nil {
			h.failed(w, r, seoPath, "save SEO settings", err)
			return
		}
		h.done(w, r, seoPath, "SEO settings saved", keySEO)
	default:
		Render405(w, r)
	}
}

func settingsForm(r *http.Request) models.SiteSettings {
	checked := func(name string) bool {
		v, _ := strconv.ParseBool(r.FormValue(name))
		return v || r.FormValue(name) == "on"
	}
	return models.SiteSettings{
		BlogTitle:        strings.TrimSpace(r.FormValue("blog_title")),
		Tagline:          strings.TrimSpace(r.FormValue("tagline")),
		Description:      strings.TrimSpace(r.FormValue("description")),
		Timezone:         r.FormValue("timezone"),
		AdminEmail:       strings.TrimSpace(r.FormValue("admin_email")),
		FromEmail:        strings.TrimSpace(r.FormValue("from_email")),
		NotifyOnComment:  checked("notify_on_comment"),
		NotifyOnUser:     checked("notify_on_user"),
		PostsPerPage:     formInt(r.FormValue("posts_per_page")),
		ExcerptLength:    formInt(r.FormValue("excerpt_length")),
		AllowComments:    checked("allow_comments"),
		ModerateComments: checked("moderate_comments"),
	}
}

// SettingsHandler displays and saves the general blog settings.
func (h *Handler) SettingsHandler(w http.ResponseWriter, r *http.Request) {
	data := h.data(r)
	data.Title = "Settings"
	data.Active = "settings"
	data.Timezones = models.Timezones

	switch r.Method {
	case http.MethodGet:
		renderTemplate(w, r, "admin_settings.html", data)
	case http.MethodPost, http.MethodPut:
		s := settingsForm(r)
		if errs := validateSettings(s); len(errs) > 0 {
			data.Site, data.Errors = s, errs
			renderStatus(w, r, http.StatusBadRequest, "admin_settings.html", data)
			return
		}
		if err := h.Backend.UpdateSiteSettings(r.Context(), s); err != nil {
			h.failed(w, r, settingsPath, "save settings", err)
			return
		}
		// Public lists are keyed by posts per page.
		h.done(w, r, settingsPath, "Settings saved", keySettings, keyPosts)
	default:
		Render405(w, r)
	}
}
