package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/ghazighazi3030/blogueee/internal/backend"
	"github.com/ghazighazi3030/blogueee/internal/models"
	"github.com/ghazighazi3030/blogueee/internal/query"
	"github.com/ghazighazi3030/blogueee/internal/session"
	"github.com/ghazighazi3030/blogueee/internal/slug"
)

const (
	recentLimit = 5
	postsPath   = "/admin/posts"
)

func (h *Handler) adminPosts(ctx context.Context) ([]models.Post, error) {
	return query.Fetch(ctx, h.Cache, keyAdminPosts(), func(ctx context.Context) ([]models.Post, error) {
		return h.Backend.ListPosts(ctx, models.PostFilter{})
	})
}

func (h *Handler) adminComments(ctx context.Context) ([]models.Comment, error) {
	return query.Fetch(ctx, h.Cache, keyComments, h.Backend.ListComments)
}

// DashboardHandler shows the stat cards, the monthly chart and the latest
// posts and comments.
func (h *Handler) DashboardHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		Render405(w, r)
		return
	}
	data := h.data(r)
	data.Title = "Dashboard"
	data.Active = "dashboard"

	var failures []string
	stats, err := query.Fetch(r.Context(), h.Cache, keyStats, h.Backend.GetStats)
	if err != nil {
		log.Printf("DashboardHandler: stats: %v", err)
		failures = append(failures, "stats: "+backend.Message(err))
	}
	data.Stats = stats

	if posts, err := h.adminPosts(r.Context()); err != nil {
		failures = append(failures, "posts: "+backend.Message(err))
	} else {
		data.Posts = posts[:min(len(posts), recentLimit)]
	}
	if comments, err := h.adminComments(r.Context()); err != nil {
		failures = append(failures, "comments: "+backend.Message(err))
	} else {
		data.RecentComments = comments[:min(len(comments), recentLimit)]
	}
	if len(failures) > 0 {
		data.Error = "Could not load " + strings.Join(failures, "; ")
	}
	renderTemplate(w, r, "admin_dashboard.html", data)
}

// PostsHandler lists every post regardless of status.
func (h *Handler) PostsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		Render405(w, r)
		return
	}
	data := h.data(r)
	data.Title = "Posts"
	data.Active = "posts"
	posts, err := h.adminPosts(r.Context())
	if err != nil {
		log.Printf("PostsHandler: %v", err)
		data.Error = "Could not load posts: " + backend.Message(err)
	}
	data.Posts = posts
	renderTemplate(w, r, "admin_posts.html", data)
}

// postForm reads the editor fields. The slug is derived from the title
// when left empty.
func postForm(r *http.Request) (models.PostInput, map[string]string) {
	in := models.PostInput{
		Title:         strings.TrimSpace(r.FormValue("title")),
		Content:       r.FormValue("content"),
		Excerpt:       strings.TrimSpace(r.FormValue("excerpt")),
		Status:        models.PostStatus(r.FormValue("status")),
		FeaturedImage: strings.TrimSpace(r.FormValue("featured_image")),
	}
	in.Slug = slug.Derive(in.Title, r.FormValue("slug"))
	category := r.FormValue("category_id")
	if category != "" && category != uncategorized {
		in.CategoryID = &category
	}
	form := map[string]string{
		"title":          in.Title,
		"slug":           in.Slug,
		"content":        in.Content,
		"excerpt":        in.Excerpt,
		"status":         string(in.Status),
		"category_id":    category,
		"featured_image": in.FeaturedImage,
	}
	return in, form
}

func formFromPost(p *models.Post) map[string]string {
	category := uncategorized
	if p.CategoryID != nil {
		category = *p.CategoryID
	}
	return map[string]string{
		"title":          p.Title,
		"slug":           p.Slug,
		"content":        p.Content,
		"excerpt":        p.Excerpt,
		"status":         string(p.Status),
		"category_id":    category,
		"featured_image": p.FeaturedImage,
	}
}

func (h *Handler) renderPostForm(w http.ResponseWriter, r *http.Request, status int, data TemplateData) {
	data.Active = "posts"
	data.Statuses = models.PostStatuses
	cats, err := h.categories(r.Context())
	if err != nil {
		log.Printf("renderPostForm: categories: %v", err)
		data.Error = "Could not load categories: " + backend.Message(err)
	}
	data.Categories = cats
	renderStatus(w, r, status, "admin_post_form.html", data)
}

// NewPostHandler displays and processes the new post form.
func (h *Handler) NewPostHandler(w http.ResponseWriter, r *http.Request) {
	data := h.data(r)
	data.Title = "New Post"

	switch r.Method {
	case http.MethodGet:
		data.Form = map[string]string{"status": string(models.PostDraft), "category_id": uncategorized}
		h.renderPostForm(w, r, http.StatusOK, data)
	case http.MethodPost:
		in, form := postForm(r)
		if errs := validatePost(in); len(errs) > 0 {
			data.Form, data.Errors = form, errs
			h.renderPostForm(w, r, http.StatusBadRequest, data)
			return
		}
		in.AuthorID = session.FromContext(r.Context()).User.ID

		post, err := h.Backend.CreatePost(r.Context(), in)
		if err != nil {
			h.failed(w, r, postsPath+"/new", "create post", err)
			return
		}
		log.Printf("NewPostHandler: created post %s (%s)", post.ID, post.Slug)
		h.done(w, r, postsPath, "Post created successfully", postWrites...)
	default:
		Render405(w, r)
	}
}

// EditPostHandler displays and processes the edit form of one post.
func (h *Handler) EditPostHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	post, err := query.Fetch(r.Context(), h.Cache, keyPost(id), func(ctx context.Context) (*models.Post, error) {
		return h.Backend.GetPost(ctx, id)
	})
	if err != nil {
		renderLookupError(w, r, err)
		return
	}

	data := h.data(r)
	data.Title = "Edit Post"
	data.Post = post

	switch r.Method {
	case http.MethodGet:
		data.Form = formFromPost(post)
		h.renderPostForm(w, r, http.StatusOK, data)
	case http.MethodPost, http.MethodPut:
		in, form := postForm(r)
		if errs := validatePost(in); len(errs) > 0 {
			data.Form, data.Errors = form, errs
			h.renderPostForm(w, r, http.StatusBadRequest, data)
			return
		}
		in.AuthorID = post.AuthorID

		if _, err := h.Backend.UpdatePost(r.Context(), id, in); err != nil {
			h.failed(w, r, postsPath+"/edit/"+id, "update post", err)
			return
		}
		h.done(w, r, postsPath, "Post updated successfully", postWrites...)
	default:
		Render405(w, r)
	}
}

// DeletePostHandler removes a post.
func (h *Handler) DeletePostHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost && r.Method != http.MethodDelete {
		Render405(w, r)
		return
	}
	id := r.PathValue("id")
	if err := h.Backend.DeletePost(r.Context(), id); err != nil {
		h.failed(w, r, postsPath, "delete post", err)
		return
	}
	log.Printf("DeletePostHandler: deleted post %s", id)
	h.done(w, r, postsPath, "Post deleted successfully", postWrites...)
}
