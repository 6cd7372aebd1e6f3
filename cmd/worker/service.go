package main

import (
	"context"

	"github.com/pixelmint/genmark/internal/model"
	"github.com/wb-go/wbf/retry"
)

type GenerationWorkerService interface {
	UpdateStatus(ctx context.Context, id string, newStat model.Status) error
	SaveResult(ctx context.Context, res *model.Generation) error
	Get(ctx context.Context, id string) (*model.Generation, error)
}

// NoopPublisher - the worker never enqueues tasks, it only consumes them
type NoopPublisher struct{}

func (NoopPublisher) SendWithRetry(ctx context.Context, strategy retry.Strategy, k []byte, v []byte) error {
	return nil
}
