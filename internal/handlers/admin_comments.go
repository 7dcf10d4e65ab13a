package handlers

import (
	"log"
	"net/http"

	"github.com/ghazighazi3030/blogueee/internal/backend"
	"github.com/ghazighazi3030/blogueee/internal/models"
)

const commentsPath = "/admin/comments"

var commentStatuses = []models.CommentStatus{
	models.CommentPending, models.CommentApproved, models.CommentRejected, models.CommentSpam,
}

// CommentsAdminHandler lists every comment with its moderation state.
func (h *Handler) CommentsAdminHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		Render405(w, r)
		return
	}
	data := h.data(r)
	data.Title = "Comments"
	data.Active = "comments"
	data.CommentStatuses = commentStatuses
	comments, err := h.adminComments(r.Context())
	if err != nil {
		log.Printf("CommentsAdminHandler: %v", err)
		data.Error = "Could not load comments: " + backend.Message(err)
	}
	data.Comments = comments
	renderTemplate(w, r, "admin_comments.html", data)
}

// CommentStatusHandler approves, rejects or flags a comment.
func (h *Handler) CommentStatusHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost && r.Method != http.MethodPatch {
		Render405(w, r)
		return
	}
	status := models.CommentStatus(r.FormValue("status"))
	if !status.Valid() {
		Render400(w, r, "unknown comment status")
		return
	}
	if err := h.Backend.UpdateCommentStatus(r.Context(), r.PathValue("id"), status); err != nil {
		h.failed(w, r, commentsPath, "update comment", err)
		return
	}
	// Public post pages cache approved comments under the same prefix.
	h.done(w, r, commentsPath, "Comment marked as "+string(status), commentWrites...)
}

// DeleteCommentHandler removes a comment.
func (h *Handler) DeleteCommentHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost && r.Method != http.MethodDelete {
		Render405(w, r)
		return
	}
	if err := h.Backend.DeleteComment(r.Context(), r.PathValue("id")); err != nil {
		h.failed(w, r, commentsPath, "delete comment", err)
		return
	}
	h.done(w, r, commentsPath, "Comment deleted successfully", commentWrites...)
}
