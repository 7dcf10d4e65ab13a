package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/ghazighazi3030/blogueee/internal/backend"
	"github.com/ghazighazi3030/blogueee/internal/models"
)

type settingRow struct {
	Key       string          `json:"key"`
	Value     json.RawMessage `json:"value"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (c *Client) loadSetting(ctx context.Context, op, key string, dst any) error {
	var rows []settingRow
	q := url.Values{"select": {"key,value"}, "key": {eq(key)}}
	if _, err := c.do(ctx, request{op: op, method: http.MethodGet, path: table("settings"), query: q}, &rows); err != nil {
		return err
	}
	if len(rows) == 0 || len(rows[0].Value) == 0 {
		return nil
	}
	return backend.Fail(op, json.Unmarshal(rows[0].Value, dst))
}

// saveSetting upserts the row for key.
func (c *Client) saveSetting(ctx context.Context, op, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return backend.Fail(op, err)
	}
	_, err = c.do(ctx, request{
		op:     op,
		method: http.MethodPost,
		path:   table("settings"),
		query:  url.Values{"on_conflict": {"key"}},
		body:   settingRow{Key: key, Value: raw, UpdatedAt: c.now().UTC()},
		prefer: "resolution=merge-duplicates",
	}, nil)
	return err
}

func (c *Client) GetSiteSettings(ctx context.Context) (models.SiteSettings, error) {
	settings := models.DefaultSiteSettings()
	err := c.loadSetting(ctx, "get settings", models.SettingsKeySite, &settings)
	return settings, err
}

func (c *Client) UpdateSiteSettings(ctx context.Context, settings models.SiteSettings) error {
	return c.saveSetting(ctx, "update settings", models.SettingsKeySite, settings)
}

func (c *Client) GetSEOSettings(ctx context.Context) (models.SEOSettings, error) {
	seo := models.DefaultSEOSettings()
	err := c.loadSetting(ctx, "get seo settings", models.SettingsKeySEO, &seo)
	return seo, err
}

func (c *Client) UpdateSEOSettings(ctx context.Context, seo models.SEOSettings) error {
	return c.saveSetting(ctx, "update seo settings", models.SettingsKeySEO, seo)
}
