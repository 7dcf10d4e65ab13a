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

const usersPath = "/admin/users"

// UsersHandler lists the user profiles.
func (h *Handler) UsersHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		Render405(w, r)
		return
	}
	data := h.data(r)
	data.Title = "Users"
	data.Active = "users"
	users, err := query.Fetch(r.Context(), h.Cache, keyUsers, h.Backend.ListUsers)
	if err != nil {
		log.Printf("UsersHandler: %v", err)
		data.Error = "Could not load users: " + backend.Message(err)
	}
	data.Users = users
	renderTemplate(w, r, "admin_users.html", data)
}

// EditUserHandler changes the full name and role of a profile.
func (h *Handler) EditUserHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	profile, err := query.Fetch(r.Context(), h.Cache, keyUser(id), func(ctx context.Context) (*models.Profile, error) {
		return h.Backend.GetUser(ctx, id)
	})
	if err != nil {
		renderLookupError(w, r, err)
		return
	}

	data := h.data(r)
	data.Title = "Edit User"
	data.Active = "users"
	data.Profile = profile
	data.Roles = models.Roles

	switch r.Method {
	case http.MethodGet:
		data.Form = map[string]string{"full_name": profile.FullName, "role": string(profile.Role)}
		renderTemplate(w, r, "admin_user_form.html", data)
	case http.MethodPost, http.MethodPut:
		in := models.ProfileInput{
			FullName: strings.TrimSpace(r.FormValue("full_name")),
			Role:     models.Role(r.FormValue("role")),
		}
		if errs := validateProfile(in); len(errs) > 0 {
			data.Form = map[string]string{"full_name": in.FullName, "role": string(in.Role)}
			data.Errors = errs
			renderStatus(w, r, http.StatusBadRequest, "admin_user_form.html", data)
			return
		}
		if _, err := h.Backend.UpdateUser(r.Context(), id, in); err != nil {
			h.failed(w, r, usersPath+"/"+id, "update user", err)
			return
		}
		h.done(w, r, usersPath, "User updated successfully", userWrites...)
	default:
		Render405(w, r)
	}
}

// DeleteUserHandler deletes an account. Admins cannot delete themselves.
func (h *Handler) DeleteUserHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost && r.Method != http.MethodDelete {
		Render405(w, r)
		return
	}
	id := r.PathValue("id")
	if me := session.FromContext(r.Context()).User; me != nil && me.ID == id {
		h.flash(r, session.FlashError, "You cannot delete your own account.")
		http.Redirect(w, r, usersPath, http.StatusSeeOther)
		return
	}
	if err := h.Backend.DeleteUser(r.Context(), id); err != nil {
		h.failed(w, r, usersPath, "delete user", err)
		return
	}
	log.Printf("DeleteUserHandler: deleted user %s", id)
	h.done(w, r, usersPath, "User deleted successfully", userWrites...)
}
