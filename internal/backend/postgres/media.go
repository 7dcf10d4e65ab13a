package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ghazighazi3030/blogueee/internal/backend"
	"github.com/ghazighazi3030/blogueee/internal/models"
)

const mediaSelect = "SELECT id, filename, url, mime_type, size_bytes, alt_text, uploaded_by, created_at FROM media"

func scanMedia(row pgx.Row) (models.Media, error) {
	var m models.Media
	err := row.Scan(&m.ID, &m.Filename, &m.URL, &m.MimeType, &m.SizeBytes, &m.AltText, &m.UploadedBy, &m.CreatedAt)
	return m, err
}

func (s *Store) ListMedia(ctx context.Context) ([]models.Media, error) {
	rows, err := s.pool.Query(ctx, mediaSelect+" ORDER BY created_at DESC")
	if err != nil {
		return nil, backend.Fail("list media", err)
	}
	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Media, error) {
		return scanMedia(row)
	})
	if err != nil {
		return nil, backend.Fail("list media", err)
	}
	return items, nil
}

func (s *Store) GetMedia(ctx context.Context, id string) (*models.Media, error) {
	m, err := scanMedia(s.pool.QueryRow(ctx, mediaSelect+" WHERE id = $1", id))
	if isNoRows(err) {
		return nil, backend.NotFound("get media", "media")
	}
	if err != nil {
		return nil, backend.Fail("get media", err)
	}
	return &m, nil
}

func (s *Store) CreateMedia(ctx context.Context, in models.MediaInput) (*models.Media, error) {
	m := models.Media{
		ID:         uuid.NewString(),
		Filename:   in.Filename,
		URL:        in.URL,
		MimeType:   in.MimeType,
		SizeBytes:  in.SizeBytes,
		AltText:    in.AltText,
		UploadedBy: nullable(in.UploadedBy),
		CreatedAt:  s.utcNow(),
	}
	_, err := s.pool.Exec(ctx,
		"INSERT INTO media (id, filename, url, mime_type, size_bytes, alt_text, uploaded_by, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)",
		m.ID, m.Filename, m.URL, m.MimeType, m.SizeBytes, m.AltText, m.UploadedBy, m.CreatedAt)
	if err != nil {
		return nil, backend.Fail("create media", err)
	}
	return &m, nil
}

func (s *Store) DeleteMedia(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM media WHERE id = $1", id)
	if err != nil {
		return backend.Fail("delete media", err)
	}
	return checkAffected("delete media", "media", tag)
}
