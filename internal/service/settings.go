package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/pixelmint/genmark/internal/model"
	"github.com/pixelmint/genmark/internal/mwlogger"
	"github.com/pixelmint/genmark/internal/repository"
)

// SettingsService owns the watermark-settings singleton: defaulting on first
// access and field-level normalization on save. The pipeline always gets a
// fully-populated struct, never a partially filled record.
type SettingsService struct {
	repo repository.SettingsRepo
}

func NewSettingsService(repo repository.SettingsRepo) *SettingsService {
	return &SettingsService{repo: repo}
}

// Load returns the current settings, creating the default row on first access.
func (s SettingsService) Load(ctx context.Context) (model.WatermarkSettings, error) {
	logger := mwlogger.LoggerFromContext(ctx)

	stored, err := s.repo.Load(ctx)
	if err == nil {
		return *stored, nil
	}

	if !errors.Is(err, sql.ErrNoRows) {
		logger.Error().Err(err).Msg("Failed to load watermark settings from DB")
		return model.WatermarkSettings{}, model.ErrCommon500
	}

	defaults := model.DefaultWatermarkSettings()
	if err := s.repo.Save(ctx, &defaults); err != nil {
		// keep serving defaults, the row creation can succeed on the next access
		logger.Warn().Err(err).Msg("Failed to persist default watermark settings")
	}
	return defaults, nil
}

// Save merges the partial update onto defaults, normalizes and persists it.
// Concurrent saves resolve last-writer-wins.
func (s SettingsService) Save(ctx context.Context, upd *model.WatermarkSettingsUpdate) (model.WatermarkSettings, error) {
	logger := mwlogger.LoggerFromContext(ctx)

	merged := normalizeSettingsUpdate(upd)
	if err := s.repo.Save(ctx, &merged); err != nil {
		logger.Error().Err(err).Msg("Failed to save watermark settings in DB")
		return model.WatermarkSettings{}, model.ErrCommon500
	}
	return merged, nil
}
