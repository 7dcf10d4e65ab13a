package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/ghazighazi3030/blogueee/internal/backend"
	"github.com/ghazighazi3030/blogueee/internal/models"
)

// loadSetting decodes the stored JSON for key onto dst. dst keeps its
// defaults when nothing has been saved yet.
func (s *Store) loadSetting(ctx context.Context, op, key string, dst any) error {
	var raw string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM settings WHERE key = ?", key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return backend.Fail(op, err)
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return backend.Fail(op, err)
	}
	return nil
}

func (s *Store) saveSetting(ctx context.Context, op, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return backend.Fail(op, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, string(raw), s.utcNow())
	return backend.Fail(op, err)
}

func (s *Store) GetSiteSettings(ctx context.Context) (models.SiteSettings, error) {
	settings := models.DefaultSiteSettings()
	err := s.loadSetting(ctx, "get settings", models.SettingsKeySite, &settings)
	return settings, err
}

func (s *Store) UpdateSiteSettings(ctx context.Context, settings models.SiteSettings) error {
	return s.saveSetting(ctx, "update settings", models.SettingsKeySite, settings)
}

func (s *Store) GetSEOSettings(ctx context.Context) (models.SEOSettings, error) {
	seo := models.DefaultSEOSettings()
	err := s.loadSetting(ctx, "get seo settings", models.SettingsKeySEO, &seo)
	return seo, err
}

func (s *Store) UpdateSEOSettings(ctx context.Context, seo models.SEOSettings) error {
	return s.saveSetting(ctx, "update seo settings", models.SettingsKeySEO, seo)
}
