package handlers

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/ghazighazi3030/blogueee/internal/auth"
	"github.com/ghazighazi3030/blogueee/internal/models"
)

const (
	minTitleLen      = 3
	minPostSlugLen   = 3
	maxExcerptLen    = 300
	minCategoryLen   = 2
	minFullNameLen   = 2
	minCommenterLen  = 2
	maxCommenterLen  = 80
	maxCommentLen    = 2000
	minPostsPerPage  = 1
	maxPostsPerPage  = 100
	minExcerptLength = 10
	maxExcerptLength = 500
)

// uncategorized is the form value of the empty category choice.
const uncategorized = "uncategorized"

var analyticsID = regexp.MustCompile(`^(G-[A-Z0-9]{4,}|UA-\d{4,}-\d+)$`)

// countRunes counts the number of runes (Unicode characters) in a string
func countRunes(s string) int {
	return utf8.RuneCountInString(s)
}

type fieldErrors map[string]string

func (e fieldErrors) check(ok bool, field, msg string) {
	if !ok {
		if _, seen := e[field]; !seen {
			e[field] = msg
		}
	}
}

func validatePost(in models.PostInput) fieldErrors {
	errs := fieldErrors{}
	errs.check(countRunes(in.Title) >= minTitleLen, "title", fmt.Sprintf("Title must be at least %d characters", minTitleLen))
	errs.check(countRunes(in.Slug) >= minPostSlugLen, "slug", fmt.Sprintf("Slug must be at least %d characters", minPostSlugLen))
	errs.check(countRunes(in.Excerpt) <= maxExcerptLen, "excerpt", fmt.Sprintf("Excerpt must be at most %d characters", maxExcerptLen))
	errs.check(in.Status.Valid(), "status", "Choose a valid status")
	return errs
}

func validateCategory(in models.CategoryInput) fieldErrors {
	errs := fieldErrors{}
	errs.check(countRunes(in.Name) >= minCategoryLen, "name", fmt.Sprintf("Name must be at least %d characters", minCategoryLen))
	errs.check(countRunes(in.Slug) >= minCategoryLen, "slug", fmt.Sprintf("Slug must be at least %d characters", minCategoryLen))
	return errs
}

func validateProfile(in models.ProfileInput) fieldErrors {
	errs := fieldErrors{}
	errs.check(countRunes(in.FullName) >= minFullNameLen, "full_name", fmt.Sprintf("Full name must be at least %d characters", minFullNameLen))
	errs.check(in.Role.Valid(), "role", "Choose a valid role")
	return errs
}

func validateComment(in models.CommentInput) fieldErrors {
	errs := fieldErrors{}
	n := countRunes(in.AuthorName)
	errs.check(n >= minCommenterLen && n <= maxCommenterLen, "author_name",
		fmt.Sprintf("Name must be %d-%d characters", minCommenterLen, maxCommenterLen))
	errs.check(auth.ValidEmail(in.AuthorEmail), "author_email", "Enter a valid email address")
	n = countRunes(in.Content)
	errs.check(n >= 1 && n <= maxCommentLen, "content", fmt.Sprintf("Comment must be 1-%d characters", maxCommentLen))
	return errs
}

func validTimezone(tz string) bool {
	for _, z := range models.Timezones {
		if z.Value == tz {
			return true
		}
	}
	return false
}

func validateSettings(s models.SiteSettings) fieldErrors {
	errs := fieldErrors{}
	errs.check(strings.TrimSpace(s.BlogTitle) != "", "blog_title", "Blog title is required")
	errs.check(s.PostsPerPage >= minPostsPerPage && s.PostsPerPage <= maxPostsPerPage, "posts_per_page",
		fmt.Sprintf("Posts per page must be between %d and %d", minPostsPerPage, maxPostsPerPage))
	errs.check(s.ExcerptLength >= minExcerptLength && s.ExcerptLength <= maxExcerptLength, "excerpt_length",
		fmt.Sprintf("Excerpt length must be between %d and %d words", minExcerptLength, maxExcerptLength))
	errs.check(auth.ValidEmail(s.AdminEmail), "admin_email", "Enter a valid admin email")
	errs.check(auth.ValidEmail(s.FromEmail), "from_email", "Enter a valid sender email")
	errs.check(validTimezone(s.Timezone), "timezone", "Choose a valid timezone")
	return errs
}

func validateSEO(s models.SEOSettings) fieldErrors {
	errs := fieldErrors{}
	errs.check(strings.TrimSpace(s.SiteTitle) != "", "site_title", "Site title is required")
	errs.check(s.GoogleAnalyticsID == "" || analyticsID.MatchString(s.GoogleAnalyticsID), "google_analytics_id",
		"Analytics ID must look like G-XXXXXXX or UA-0000-0")
	return errs
}

// formInt parses a numeric form field; a malformed value becomes -1 so the
// range checks reject it.
func formInt(v string) int {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return -1
	}
	return n
}
