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
)

func (h *Handler) publishedPosts(ctx context.Context, categorySlug string, limit int) ([]models.Post, error) {
	return query.Fetch(ctx, h.Cache, keyPublishedPosts(categorySlug, limit), func(ctx context.Context) ([]models.Post, error) {
		return h.Backend.ListPosts(ctx, models.PostFilter{Status: models.PostPublished, CategorySlug: categorySlug, Limit: limit})
	})
}

func (h *Handler) categories(ctx context.Context) ([]models.Category, error) {
	return query.Fetch(ctx, h.Cache, keyCategories, h.Backend.ListCategories)
}

// HomeHandler lists the latest published posts.
func (h *Handler) HomeHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		Render404(w, r)
		return
	}
	if r.Method != http.MethodGet {
		Render405(w, r)
		return
	}

	data := h.data(r)
	posts, err := h.publishedPosts(r.Context(), "", data.Site.PostsPerPage)
	if err != nil {
		log.Printf("HomeHandler: %v", err)
		data.Error = "Could not load posts: " + backend.Message(err)
	}
	data.Posts = posts
	if cats, err := h.categories(r.Context()); err == nil {
		data.Categories = cats
	}
	renderTemplate(w, r, "home.html", data)
}

// AboutHandler renders the static about page.
func (h *Handler) AboutHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		Render405(w, r)
		return
	}
	data := h.data(r)
	data.Title = "About"
	renderTemplate(w, r, "about.html", data)
}

// CategoriesHandler lists every category.
func (h *Handler) CategoriesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		Render405(w, r)
		return
	}
	data := h.data(r)
	data.Title = "Categories"
	cats, err := h.categories(r.Context())
	if err != nil {
		log.Printf("CategoriesHandler: %v", err)
		data.Error = "Could not load categories: " + backend.Message(err)
	}
	data.Categories = cats
	renderTemplate(w, r, "categories.html", data)
}

// CategoryHandler shows one category and its published posts.
func (h *Handler) CategoryHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		Render405(w, r)
		return
	}
	slug := r.PathValue("slug")

	cat, err := query.Fetch(r.Context(), h.Cache, keyCategorySlug(slug), func(ctx context.Context) (*models.Category, error) {
		return h.Backend.GetCategoryBySlug(ctx, slug)
	})
	if err != nil {
		renderLookupError(w, r, err)
		return
	}

	data := h.data(r)
	data.Title = cat.Name
	data.Category = cat
	posts, err := h.publishedPosts(r.Context(), cat.Slug, 0)
	if err != nil {
		log.Printf("CategoryHandler: %v", err)
		data.Error = "Could not load posts: " + backend.Message(err)
	}
	data.Posts = posts
	renderTemplate(w, r, "category.html", data)
}

func (h *Handler) publishedPost(ctx context.Context, slug string) (*models.Post, error) {
	p, err := query.Fetch(ctx, h.Cache, keyPostSlug(slug), func(ctx context.Context) (*models.Post, error) {
		return h.Backend.GetPostBySlug(ctx, slug)
	})
	if err != nil {
		return nil, err
	}
	if p.Status != models.PostPublished {
		return nil, backend.NotFound("get post", "post")
	}
	return p, nil
}

func (h *Handler) renderPost(w http.ResponseWriter, r *http.Request, status int, post *models.Post, data TemplateData) {
	data.Title = post.Title
	data.Post = post
	data.CommentsOpen = data.Site.AllowComments
	comments, err := query.Fetch(r.Context(), h.Cache, keyPostComments(post.ID), func(ctx context.Context) ([]models.Comment, error) {
		return h.Backend.ListPostComments(ctx, post.ID, models.CommentApproved)
	})
	if err != nil {
		log.Printf("PostHandler: comments for %s: %v", post.ID, err)
		data.Error = "Could not load comments: " + backend.Message(err)
	}
	data.Comments = comments
	renderStatus(w, r, status, "post.html", data)
}

// PostHandler shows a published post with its approved comments and counts
// the view.
func (h *Handler) PostHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		Render405(w, r)
		return
	}
	post, err := h.publishedPost(r.Context(), r.PathValue("slug"))
	if err != nil {
		renderLookupError(w, r, err)
		return
	}
	if err := h.Backend.IncrementViews(r.Context(), post.ID); err != nil {
		log.Printf("PostHandler: increment views of %s: %v", post.ID, err)
	}
	h.renderPost(w, r, http.StatusOK, post, h.data(r))
}

// CreateCommentHandler accepts a reader comment. It is held for moderation
// when the settings ask for it and refused when comments are closed.
func (h *Handler) CreateCommentHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		Render405(w, r)
		return
	}
	post, err := h.publishedPost(r.Context(), r.PathValue("slug"))
	if err != nil {
		renderLookupError(w, r, err)
		return
	}
	back := "/post/" + post.Slug + "#comments"

	site := h.siteSettings(r.Context())
	if !site.AllowComments {
		Render403(w, r, "Comments are closed.")
		return
	}

	in := models.CommentInput{
		PostID:      post.ID,
		AuthorName:  strings.TrimSpace(r.FormValue("author_name")),
		AuthorEmail: strings.TrimSpace(r.FormValue("author_email")),
		Content:     strings.TrimSpace(r.FormValue("content")),
		Status:      models.CommentApproved,
	}
	if site.ModerateComments {
		in.Status = models.CommentPending
	}

	if errs := validateComment(in); len(errs) > 0 {
		data := h.data(r)
		data.Errors = errs
		data.Form = map[string]string{
			"author_name":  in.AuthorName,
			"author_email": in.AuthorEmail,
			"content":      in.Content,
		}
		h.renderPost(w, r, http.StatusBadRequest, post, data)
		return
	}

	if _, err := h.Backend.CreateComment(r.Context(), in); err != nil {
		h.failed(w, r, back, "post comment", err)
		return
	}
	h.Cache.InvalidateAll(commentWrites...)
	if in.Status == models.CommentPending {
		h.flash(r, session.FlashInfo, "Thanks! Your comment is awaiting moderation.")
	} else {
		h.flash(r, session.FlashSuccess, "Your comment has been posted.")
	}
	http.Redirect(w, r, back, http.StatusSeeOther)
}

// RobotsHandler serves robots.txt from the SEO settings.
func (h *Handler) RobotsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		Render405(w, r)
		return
	}
	seo, err := query.Fetch(r.Context(), h.Cache, keySEO, h.Backend.GetSEOSettings)
	if err != nil {
		log.Printf("RobotsHandler: %v", err)
		seo = models.DefaultSEOSettings()
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(seo.RobotsTxt))
}
