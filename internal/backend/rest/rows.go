package rest

import (
	"time"

	"github.com/ghazighazi3030/blogueee/internal/models"
)

// Row types mirror the JSON the table API returns.

type profileRow struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  *string   `json:"full_name"`
	Role      *string   `json:"role"`
	AvatarURL *string   `json:"avatar_url"`
	CreatedAt time.Time `json:"created_at"`
}

func (r profileRow) model() models.Profile {
	p := models.Profile{ID: r.ID, Email: r.Email, FullName: deref(r.FullName), AvatarURL: deref(r.AvatarURL), CreatedAt: r.CreatedAt}
	p.Role = models.Role(deref(r.Role))
	if p.Role == "" {
		p.Role = models.RoleAuthor
	}
	return p
}

type categoryRow struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

func (r categoryRow) model() models.Category {
	return models.Category{ID: r.ID, Name: r.Name, Slug: r.Slug, Description: deref(r.Description), CreatedAt: r.CreatedAt}
}

type postRow struct {
	ID            string       `json:"id"`
	Title         string       `json:"title"`
	Slug          string       `json:"slug"`
	Content       *string      `json:"content"`
	Excerpt       *string      `json:"excerpt"`
	Status        string       `json:"status"`
	CategoryID    *string      `json:"category_id"`
	AuthorID      *string      `json:"author_id"`
	ViewCount     *int         `json:"view_count"`
	FeaturedImage *string      `json:"featured_image"`
	PublishedAt   *time.Time   `json:"published_at"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
	Author        *profileRow  `json:"author"`
	Category      *categoryRow `json:"category"`
}

func (r postRow) model() models.Post {
	p := models.Post{
		ID:            r.ID,
		Title:         r.Title,
		Slug:          r.Slug,
		Content:       deref(r.Content),
		Excerpt:       deref(r.Excerpt),
		Status:        models.PostStatus(r.Status),
		CategoryID:    r.CategoryID,
		AuthorID:      deref(r.AuthorID),
		FeaturedImage: deref(r.FeaturedImage),
		PublishedAt:   r.PublishedAt,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
	if r.ViewCount != nil {
		p.ViewCount = *r.ViewCount
	}
	if r.Author != nil {
		p.AuthorName = deref(r.Author.FullName)
	}
	if r.Category != nil {
		c := r.Category.model()
		p.Category = &c
	}
	return p
}

// postWrite is the body of post inserts and updates.
type postWrite struct {
	Title         string     `json:"title"`
	Slug          string     `json:"slug"`
	Content       string     `json:"content"`
	Excerpt       string     `json:"excerpt"`
	Status        string     `json:"status"`
	CategoryID    *string    `json:"category_id"`
	AuthorID      *string    `json:"author_id,omitempty"`
	FeaturedImage string     `json:"featured_image"`
	PublishedAt   *time.Time `json:"published_at,omitempty"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

type commentRow struct {
	ID          string    `json:"id"`
	PostID      string    `json:"post_id"`
	AuthorName  string    `json:"author_name"`
	AuthorEmail *string   `json:"author_email"`
	Content     string    `json:"content"`
	Status      *string   `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	Post        *struct {
		Title string `json:"title"`
	} `json:"post"`
}

func (r commentRow) model() models.Comment {
	c := models.Comment{
		ID:          r.ID,
		PostID:      r.PostID,
		AuthorName:  r.AuthorName,
		AuthorEmail: deref(r.AuthorEmail),
		Content:     r.Content,
		Status:      models.CommentStatus(deref(r.Status)),
		CreatedAt:   r.CreatedAt,
	}
	if c.Status == "" {
		c.Status = models.CommentPending
	}
	if r.Post != nil {
		c.PostTitle = r.Post.Title
	}
	return c
}

type mediaRow struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	URL        string    `json:"url"`
	MimeType   *string   `json:"mime_type"`
	SizeBytes  *int64    `json:"size_bytes"`
	AltText    *string   `json:"alt_text"`
	UploadedBy *string   `json:"uploaded_by"`
	CreatedAt  time.Time `json:"created_at"`
}

func (r mediaRow) model() models.Media {
	m := models.Media{
		ID:         r.ID,
		Filename:   r.Filename,
		URL:        r.URL,
		MimeType:   deref(r.MimeType),
		AltText:    deref(r.AltText),
		UploadedBy: r.UploadedBy,
		CreatedAt:  r.CreatedAt,
	}
	if r.SizeBytes != nil {
		m.SizeBytes = *r.SizeBytes
	}
	return m
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
