package models

import (
	"strings"
	"time"
)

// PostStatus is the publication state of a post.
type PostStatus string

const (
	PostDraft     PostStatus = "draft"
	PostPublished PostStatus = "published"
	PostScheduled PostStatus = "scheduled"
	PostArchived  PostStatus = "archived"
)

// PostStatuses lists the statuses in the order the editor offers them.
var PostStatuses = []PostStatus{PostDraft, PostPublished, PostScheduled, PostArchived}

// Valid reports whether s is one of the known statuses.
func (s PostStatus) Valid() bool {
	for _, known := range PostStatuses {
		if s == known {
			return true
		}
	}
	return false
}

type Post struct {
	ID            string
	Title         string
	Slug          string
	Content       string
	Excerpt       string
	Status        PostStatus
	CategoryID    *string
	AuthorID      string
	ViewCount     int
	FeaturedImage string
	PublishedAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
	AuthorName    string    // Full name of the author profile
	Category      *Category // Joined category, nil when uncategorized
}

// Summary returns the excerpt, or the first words of the content when the
// excerpt is empty.
func (p Post) Summary(words int) string {
	if strings.TrimSpace(p.Excerpt) != "" {
		return p.Excerpt
	}
	fields := strings.Fields(p.Content)
	if words <= 0 || len(fields) <= words {
		return strings.Join(fields, " ")
	}
	return strings.Join(fields[:words], " ") + "…"
}

// PostInput carries the writable fields of a post.
type PostInput struct {
	Title         string
	Slug          string
	Content       string
	Excerpt       string
	Status        PostStatus
	CategoryID    *string
	AuthorID      string
	FeaturedImage string
}

// PostFilter narrows ListPosts. Zero values mean "no filter".
type PostFilter struct {
	Status       PostStatus
	CategorySlug string
	Limit        int
}
