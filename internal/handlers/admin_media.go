package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/ghazighazi3030/blogueee/internal/backend"
	"github.com/ghazighazi3030/blogueee/internal/media"
	"github.com/ghazighazi3030/blogueee/internal/models"
	"github.com/ghazighazi3030/blogueee/internal/query"
	"github.com/ghazighazi3030/blogueee/internal/session"
)

const mediaPath = "/admin/media"

// multipart overhead allowed on top of the file size limit
const formOverhead = 1 << 20

// MediaHandler lists the media library and accepts uploads.
func (h *Handler) MediaHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		data := h.data(r)
		data.Title = "Media"
		data.Active = "media"
		data.MaxUploadBytes = h.Media.MaxBytes
		items, err := query.Fetch(r.Context(), h.Cache, keyMedia, h.Backend.ListMedia)
		if err != nil {
			log.Printf("MediaHandler: %v", err)
			data.Error = "Could not load media: " + backend.Message(err)
		}
		data.Media = items
		renderTemplate(w, r, "admin_media.html", data)
	case http.MethodPost:
		h.upload(w, r)
	default:
		Render405(w, r)
	}
}

func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.Media.MaxBytes+formOverhead)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			err = media.ErrTooLarge
		}
		h.failed(w, r, mediaPath, "upload file", err)
		return
	}
	defer file.Close()

	stored, err := h.Media.Save(header.Filename, file)
	if err != nil {
		h.failed(w, r, mediaPath, "upload file", err)
		return
	}

	uploader := session.FromContext(r.Context()).User.ID
	_, err = h.Backend.CreateMedia(r.Context(), models.MediaInput{
		Filename:   stored.Filename,
		URL:        stored.URL,
		MimeType:   stored.MimeType,
		SizeBytes:  stored.SizeBytes,
		AltText:    strings.TrimSpace(r.FormValue("alt_text")),
		UploadedBy: &uploader,
	})
	if err != nil {
		if derr := h.Media.Delete(stored.URL); derr != nil {
			log.Printf("MediaHandler: remove orphaned upload %s: %v", stored.URL, derr)
		}
		h.failed(w, r, mediaPath, "upload file", err)
		return
	}
	log.Printf("MediaHandler: stored %s (%d bytes, %s)", stored.URL, stored.SizeBytes, stored.MimeType)
	h.done(w, r, mediaPath, "File uploaded successfully", mediaWrites...)
}

// DeleteMediaHandler removes a media row and its stored file.
func (h *Handler) DeleteMediaHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost && r.Method != http.MethodDelete {
		Render405(w, r)
		return
	}
	id := r.PathValue("id")
	item, err := query.Fetch(r.Context(), h.Cache, query.Key{"media", "id", id}, func(ctx context.Context) (*models.Media, error) {
		return h.Backend.GetMedia(ctx, id)
	})
	if err != nil {
		h.failed(w, r, mediaPath, "delete file", err)
		return
	}
	if err := h.Backend.DeleteMedia(r.Context(), id); err != nil {
		h.failed(w, r, mediaPath, "delete file", err)
		return
	}
	if err := h.Media.Delete(item.URL); err != nil {
		log.Printf("DeleteMediaHandler: remove %s: %v", item.URL, err)
	}
	h.done(w, r, mediaPath, "File deleted successfully", mediaWrites...)
}
