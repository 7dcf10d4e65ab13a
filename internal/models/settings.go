package models

// Timezones offered by the settings form, keyed by stored value.
var Timezones = []struct {
	Value string
	Label string
}{
	{"utc", "UTC"},
	{"est", "Eastern Time"},
	{"pst", "Pacific Time"},
	{"cst", "Central Time"},
}

// SiteSettings are the general blog settings edited on /admin/settings.
type SiteSettings struct {
	BlogTitle        string `json:"blog_title"`
	Tagline          string `json:"tagline"`
	Description      string `json:"description"`
	Timezone         string `json:"timezone"`
	AdminEmail       string `json:"admin_email"`
	FromEmail        string `json:"from_email"`
	NotifyOnComment  bool   `json:"notify_on_comment"`
	NotifyOnUser     bool   `json:"notify_on_user"`
	PostsPerPage     int    `json:"posts_per_page"`
	ExcerptLength    int    `json:"excerpt_length"`
	AllowComments    bool   `json:"allow_comments"`
	ModerateComments bool   `json:"moderate_comments"`
}

// DefaultSiteSettings are used until an admin saves the settings form.
func DefaultSiteSettings() SiteSettings {
	return SiteSettings{
		BlogTitle:        "ASA Sports Blog",
		Tagline:          "Your premier sports destination",
		Description:      "Comprehensive sports coverage, analysis, and insights.",
		Timezone:         "utc",
		AdminEmail:       "admin@asasportsblog.com",
		FromEmail:        "noreply@asasportsblog.com",
		NotifyOnComment:  true,
		NotifyOnUser:     true,
		PostsPerPage:     10,
		ExcerptLength:    50,
		AllowComments:    true,
		ModerateComments: true,
	}
}

// SEOSettings are the search-engine settings edited on /admin/seo.
type SEOSettings struct {
	SiteTitle         string `json:"site_title"`
	SiteDescription   string `json:"site_description"`
	Keywords          string `json:"keywords"`
	RobotsTxt         string `json:"robots_txt"`
	GoogleAnalyticsID string `json:"google_analytics_id"`
	SearchConsoleCode string `json:"search_console_code"`
}

// DefaultSEOSettings are used until an admin saves the SEO form.
func DefaultSEOSettings() SEOSettings {
	return SEOSettings{
		SiteTitle:       "ASA Sports Blog",
		SiteDescription: "Your premier destination for comprehensive sports coverage, analysis, and insights.",
		Keywords:        "sports, news, analysis, blog",
		RobotsTxt:       "User-agent: *\nAllow: /\n\nSitemap: https://example.com/sitemap.xml",
	}
}

// Setting keys in the backend's key/value settings table.
const (
	SettingsKeySite = "site"
	SettingsKeySEO  = "seo"
)
