package wmpostgres

import (
	"context"
	"database/sql"

	"github.com/pixelmint/genmark/internal/model"
	"github.com/wb-go/wbf/dbpg"
)

// SettingsRepo - persistence for the id=1 watermark_settings row.
// Concurrent saves are last-writer-wins: a singleton admin-configured resource
// needs no optimistic concurrency token.
type SettingsRepo struct {
	DB *dbpg.DB
}

const settingsRowID = 1

func (p SettingsRepo) Load(ctx context.Context) (*model.WatermarkSettings, error) {
	query := `SELECT visible_enabled, hidden_enabled, visible_text_template, hidden_key,
	visible_position, visible_opacity, visible_bar, font_scale,
	visible_font_family, visible_font_data_url, updated_at
	FROM watermark_settings
	WHERE id = $1`

	var s model.WatermarkSettings
	var family, dataURL sql.NullString

	err := p.DB.QueryRowContext(ctx, query, settingsRowID).Scan(
		&s.VisibleEnabled,
		&s.HiddenEnabled,
		&s.VisibleTextTemplate,
		&s.HiddenKey,
		&s.VisiblePosition,
		&s.VisibleOpacity,
		&s.VisibleBar,
		&s.FontScale,
		&family,
		&dataURL,
		&s.UpdatedAt)
	if err != nil {
		return nil, err // sql.ErrNoRows included - service decides on defaults
	}

	if family.Valid {
		s.VisibleFontFamily = &family.String
	}
	if dataURL.Valid {
		s.VisibleFontDataURL = &dataURL.String
	}
	return &s, nil
}

func (p SettingsRepo) Save(ctx context.Context, s *model.WatermarkSettings) error {
	query := `INSERT INTO watermark_settings (id, visible_enabled, hidden_enabled, visible_text_template, hidden_key,
	visible_position, visible_opacity, visible_bar, font_scale, visible_font_family, visible_font_data_url, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, now())
	ON CONFLICT (id) DO UPDATE SET
		visible_enabled = EXCLUDED.visible_enabled,
		hidden_enabled = EXCLUDED.hidden_enabled,
		visible_text_template = EXCLUDED.visible_text_template,
		hidden_key = EXCLUDED.hidden_key,
		visible_position = EXCLUDED.visible_position,
		visible_opacity = EXCLUDED.visible_opacity,
		visible_bar = EXCLUDED.visible_bar,
		font_scale = EXCLUDED.font_scale,
		visible_font_family = EXCLUDED.visible_font_family,
		visible_font_data_url = EXCLUDED.visible_font_data_url,
		updated_at = now()`

	var family, dataURL sql.NullString
	if s.VisibleFontFamily != nil {
		family = sql.NullString{String: *s.VisibleFontFamily, Valid: true}
	}
	if s.VisibleFontDataURL != nil {
		dataURL = sql.NullString{String: *s.VisibleFontDataURL, Valid: true}
	}

	return p.DB.QueryRowContext(ctx, query, settingsRowID,
		s.VisibleEnabled,
		s.HiddenEnabled,
		s.VisibleTextTemplate,
		s.HiddenKey,
		s.VisiblePosition,
		s.VisibleOpacity,
		s.VisibleBar,
		s.FontScale,
		family,
		dataURL).Err()
}
