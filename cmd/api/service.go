package main

import (
	"context"
	"io"

	"github.com/pixelmint/genmark/internal/model"
)

type GenerationAPIService interface {
	Create(context.Context, *model.GenerationCreateData) (*model.Generation, error)
	LoadResult(ctx context.Context, id string) (io.ReadCloser, string, error)
	GetList(ctx context.Context, req *model.ListRequest) ([]model.Generation, error)
	Delete(ctx context.Context, id string) error
	ReviveOrphans(ctx context.Context, limit int)
}
