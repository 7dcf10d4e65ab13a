package postgres

import (
	"context"
	"encoding/json"

	"github.com/ghazighazi3030/blogueee/internal/backend"
	"github.com/ghazighazi3030/blogueee/internal/models"
)

func (s *Store) loadSetting(ctx context.Context, op, key string, dst any) error {
	var raw []byte
	err := s.pool.QueryRow(ctx, "SELECT value FROM settings WHERE key = $1", key).Scan(&raw)
	if isNoRows(err) {
		return nil
	}
	if err != nil {
		return backend.Fail(op, err)
	}
	return backend.Fail(op, json.Unmarshal(raw, dst))
}

func (s *Store) saveSetting(ctx context.Context, op, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return backend.Fail(op, err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO settings (key, value, updated_at) VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
		key, raw, s.utcNow())
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
