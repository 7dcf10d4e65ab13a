package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/ghazighazi3030/blogueee/internal/backend"
	"github.com/ghazighazi3030/blogueee/internal/models"
)

const mediaSelect = "SELECT id, filename, url, mime_type, size_bytes, alt_text, uploaded_by, created_at FROM media"

func scanMedia(row rowScanner) (models.Media, error) {
	var (
		m  models.Media
		by sql.NullString
	)
	err := row.Scan(&m.ID, &m.Filename, &m.URL, &m.MimeType, &m.SizeBytes, &m.AltText, &by, &m.CreatedAt)
	m.UploadedBy = stringPtr(by)
	return m, err
}

func (s *Store) ListMedia(ctx context.Context) ([]models.Media, error) {
	rows, err := s.db.QueryContext(ctx, mediaSelect+" ORDER BY created_at DESC")
	if err != nil {
		return nil, backend.Fail("list media", err)
	}
	defer rows.Close()

	var items []models.Media
	for rows.Next() {
		m, err := scanMedia(rows)
		if err != nil {
			return nil, backend.Fail("list media", err)
		}
		items = append(items, m)
	}
	if err := rows.Err(); err != nil {
		return nil, backend.Fail("list media", err)
	}
	return items, nil
}

func (s *Store) GetMedia(ctx context.Context, id string) (*models.Media, error) {
	m, err := scanMedia(s.db.QueryRowContext(ctx, mediaSelect+" WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
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
		UploadedBy: in.UploadedBy,
		CreatedAt:  s.utcNow(),
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO media (id, filename, url, mime_type, size_bytes, alt_text, uploaded_by, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		m.ID, m.Filename, m.URL, m.MimeType, m.SizeBytes, m.AltText, nullString(m.UploadedBy), m.CreatedAt)
	if err != nil {
		return nil, backend.Fail("create media", err)
	}
	return &m, nil
}

func (s *Store) DeleteMedia(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM media WHERE id = ?", id)
	if err != nil {
		return backend.Fail("delete media", err)
	}
	return checkAffected("delete media", "media", res)
}
