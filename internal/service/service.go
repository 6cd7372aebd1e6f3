// Package service provides business-logic for the app
package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/pixelmint/genmark/internal/model"
	"github.com/pixelmint/genmark/internal/mwlogger"
	"github.com/pixelmint/genmark/internal/repository"
	"github.com/wb-go/wbf/retry"
)

type GenerationService struct {
	repo            repository.GenerationRepo
	publisher       TaskPublisher
	storage         ImageStorage
	srcKeyPrefix    string
	resultKeyPrefix string
}

func NewGenerationService(repo repository.GenerationRepo, pub TaskPublisher, strg ImageStorage, srcPrefix, resultPrefix string) *GenerationService {
	return &GenerationService{
		repo:            repo,
		publisher:       pub,
		storage:         strg,
		srcKeyPrefix:    srcPrefix,
		resultKeyPrefix: resultPrefix,
	}
}

// TaskPublisher - contract for the watermark task queue
type TaskPublisher interface {
	SendWithRetry(ctx context.Context, strategy retry.Strategy, key []byte, v []byte) error
}

// ImageStorage - contract for the object store holding raw and final images
type ImageStorage interface {
	Delete(ctx context.Context, key string) error
	Get(ctx context.Context, key string) (output io.ReadCloser, ctype string, err error)
	GetBytes(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, size int64, contentType string, r io.Reader) error
}

// Queue-publish retry strategy - candidates for config/env later
var retryStrategy = retry.Strategy{
	Attempts: 5,
	Delay:    3 * time.Second,
	Backoff:  1.5,
}

func (c GenerationService) Create(ctx context.Context, data *model.GenerationCreateData) (*model.Generation, error) {
	logger := mwlogger.LoggerFromContext(ctx)
	newGen := &model.Generation{}

	if err := validateNormalizeGenerationInfo(data, newGen); err != nil {
		return nil, err
	}

	newGen.UID = uuid.New()

	srcKey := c.srcKeyPrefix + newGen.UID.String() + ".png"
	if err := c.storage.Put(ctx, srcKey, data.ImgSize, data.ContentType, data.Img); err != nil {
		logger.Error().Err(err).Msg("Failed to save raw image in Storage")
		return nil, model.ErrCommon500
	}
	newGen.SourceKey = srcKey

	newGen.Status = model.StatusCreated
	now := time.Now().UTC()
	newGen.CreatedAt = &now

	if err := c.repo.Create(ctx, newGen); err != nil {
		logger.Error().Err(err).Msg("Failed to create generation in DB")
		return nil, model.ErrCommon500
	}

	if err := c.publisher.SendWithRetry(ctx, retryStrategy, []byte(newGen.UID.String()), nil); err != nil {
		logger.Error().Err(err).Msg(fmt.Sprintf("Failed to publish generation %q to task-queue", newGen.UID))
		return nil, model.ErrCommon500
	}
	return newGen, nil
}

func (c GenerationService) GetList(ctx context.Context, req *model.ListRequest) ([]model.Generation, error) {
	logger := mwlogger.LoggerFromContext(ctx)
	validateQueryParams(req)

	res, err := c.repo.GetList(ctx, req)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to fetch generations list from DB")
		return nil, model.ErrCommon500
	}

	return res, nil
}

func (c GenerationService) Get(ctx context.Context, id string) (*model.Generation, error) {
	logger := mwlogger.LoggerFromContext(ctx)
	if err := uuid.Validate(id); err != nil {
		return nil, model.ErrIncorrectID
	}

	res, err := c.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrImageNotFound) {
			return nil, model.ErrImageNotFound
		}
		logger.Error().Err(err).Msg(fmt.Sprintf("Failed to fetch generation %q from DB", id))
		return nil, model.ErrCommon500
	}

	return res, nil
}

func (c GenerationService) LoadResult(ctx context.Context, id string) (io.ReadCloser, string, error) {
	logger := mwlogger.LoggerFromContext(ctx)

	res, err := c.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if res.Status != model.StatusDone {
		return nil, "", model.ErrResultNotReady
	}

	data, cType, err := c.storage.Get(ctx, res.ResultKey)
	if err != nil {
		logger.Error().Err(err).Msg(fmt.Sprintf("Failed to fetch result-image %q from Storage", id))
		return nil, "", model.ErrCommon500
	}
	return data, cType, nil
}

func (c GenerationService) Delete(ctx context.Context, id string) error {
	logger := mwlogger.LoggerFromContext(ctx)
	if err := uuid.Validate(id); err != nil {
		return model.ErrIncorrectID
	}

	res, err := c.repo.Get(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrImageNotFound), errors.Is(err, sql.ErrNoRows):
			return model.ErrImageNotFound // 404
		default:
			logger.Error().Err(err).Msg(fmt.Sprintf("Failed to fetch generation %q from DB", id))
			return model.ErrCommon500
		}
	}

	if err := c.repo.Delete(ctx, id); err != nil {
		logger.Error().Err(err).Msg("Failed to delete generation from DB")
		return model.ErrCommon500
	}

	if err := c.storage.Delete(ctx, res.SourceKey); err != nil {
		logger.Error().Err(err).Msg("Failed to delete raw image from Storage")
		return model.ErrCommon500
	}
	if res.Status == model.StatusDone && res.ResultKey != "" {
		if err := c.storage.Delete(ctx, res.ResultKey); err != nil {
			logger.Error().Err(err).Msg("Failed to delete result-image from Storage")
			return model.ErrCommon500
		}
	}

	return nil
}

func (c GenerationService) UpdateStatus(ctx context.Context, id string, newStat model.Status) error {
	if err := uuid.Validate(id); err != nil {
		return model.ErrIncorrectID
	}

	logger := mwlogger.LoggerFromContext(ctx)

	if err := c.repo.UpdateStatus(ctx, id, newStat); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return model.ErrImageNotFound // 404
		default:
			logger.Error().Err(err).Msg("Failed to update generation status in DB")
			return model.ErrCommon500 // 500
		}
	}

	return nil
}

func (c GenerationService) SaveResult(ctx context.Context, input *model.Generation) error {
	logger := mwlogger.LoggerFromContext(ctx)
	t := time.Now().UTC()
	input.UpdatedAt = &t
	if err := c.repo.SaveResult(ctx, input); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return model.ErrImageNotFound // 404
		default:
			logger.Error().Err(err).Msg("Failed to save result generation in DB")
			return model.ErrCommon500 // 500
		}
	}

	return nil
}

func (c GenerationService) ReviveOrphans(ctx context.Context, limit int) {
	logger := mwlogger.LoggerFromContext(ctx)

	orphans, err := c.repo.FetchOrphans(ctx, limit)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load orphans from DB")
		return
	}

	for _, v := range orphans {
		if err := c.publisher.SendWithRetry(ctx, retryStrategy, []byte(v), nil); err != nil {
			logger.Error().Err(err).Msg("Failed to publish orphan to queue")
		}
	}
}
