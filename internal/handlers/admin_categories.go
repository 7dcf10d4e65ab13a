package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/ghazighazi3030/blogueee/internal/backend"
	"github.com/ghazighazi3030/blogueee/internal/models"
	"github.com/ghazighazi3030/blogueee/internal/query"
	"github.com/ghazighazi3030/blogueee/internal/slug"
)

const categoriesPath = "/admin/categories"

func categoryForm(r *http.Request) (models.CategoryInput, map[string]string) {
	in := models.CategoryInput{
		Name:        strings.TrimSpace(r.FormValue("name")),
		Description: strings.TrimSpace(r.FormValue("description")),
	}
	in.Slug = slug.Derive(in.Name, r.FormValue("slug"))
	return in, map[string]string{"name": in.Name, "slug": in.Slug, "description": in.Description}
}

func (h *Handler) renderCategories(w http.ResponseWriter, r *http.Request, status int, data TemplateData) {
	data.Title = "Categories"
	data.Active = "categories"
	cats, err := h.categories(r.Context())
	if err != nil {
		log.Printf("CategoriesAdminHandler: %v", err)
		data.Error = "Could not load categories: " + backend.Message(err)
	}
	data.Categories = cats
	renderStatus(w, r, status, "admin_categories.html", data)
}

// CategoriesAdminHandler lists the categories and creates new ones.
func (h *Handler) CategoriesAdminHandler(w http.ResponseWriter, r *http.Request) {
	data := h.data(r)
	switch r.Method {
	case http.MethodGet:
		h.renderCategories(w, r, http.StatusOK, data)
	case http.MethodPost:
		in, form := categoryForm(r)
		if errs := validateCategory(in); len(errs) > 0 {
			data.Form, data.Errors = form, errs
			h.renderCategories(w, r, http.StatusBadRequest, data)
			return
		}
		if _, err := h.Backend.CreateCategory(r.Context(), in); err != nil {
			h.failed(w, r, categoriesPath, "create category", err)
			return
		}
		h.done(w, r, categoriesPath, "Category created successfully", categoryWrites...)
	default:
		Render405(w, r)
	}
}

// EditCategoryHandler displays and processes the edit form of a category.
func (h *Handler) EditCategoryHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	cat, err := query.Fetch(r.Context(), h.Cache, keyCategory(id), func(ctx context.Context) (*models.Category, error) {
		return h.Backend.GetCategory(ctx, id)
	})
	if err != nil {
		renderLookupError(w, r, err)
		return
	}

	data := h.data(r)
	data.Title = "Edit Category"
	data.Active = "categories"
	data.Category = cat

	switch r.Method {
	case http.MethodGet:
		data.Form = map[string]string{"name": cat.Name, "slug": cat.Slug, "description": cat.Description}
		renderTemplate(w, r, "admin_category_form.html", data)
	case http.MethodPost, http.MethodPut:
		in, form := categoryForm(r)
		if errs := validateCategory(in); len(errs) > 0 {
			data.Form, data.Errors = form, errs
			renderStatus(w, r, http.StatusBadRequest, "admin_category_form.html", data)
			return
		}
		if _, err := h.Backend.UpdateCategory(r.Context(), id, in); err != nil {
			h.failed(w, r, categoriesPath+"/"+id, "update category", err)
			return
		}
		h.done(w, r, categoriesPath, "Category updated successfully", categoryWrites...)
	default:
		Render405(w, r)
	}
}

// DeleteCategoryHandler removes a category. Its posts become uncategorized.
func (h *Handler) DeleteCategoryHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost && r.Method != http.MethodDelete {
		Render405(w, r)
		return
	}
	if err := h.Backend.DeleteCategory(r.Context(), r.PathValue("id")); err != nil {
		h.failed(w, r, categoriesPath, "delete category", err)
		return
	}
	h.done(w, r, categoriesPath, "Category deleted successfully", categoryWrites...)
}
