// Package worker contains methods for worker to init at start, and to watermark images
package worker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/pixelmint/genmark/internal/model"
	"github.com/pixelmint/genmark/internal/service"
	"github.com/pixelmint/genmark/internal/watermark"
	kafkago "github.com/segmentio/kafka-go"
	wbfkafka "github.com/wb-go/wbf/kafka"
)

type GenerationWorkerService interface {
	UpdateStatus(ctx context.Context, id string, newStat model.Status) error
	SaveResult(ctx context.Context, res *model.Generation) error
	Get(ctx context.Context, id string) (*model.Generation, error)
}

// SettingsLoader - loaded fresh per task so admin edits apply to the very next
// generation without a worker restart
type SettingsLoader interface {
	Load(ctx context.Context) (model.WatermarkSettings, error)
}

type Worker struct {
	storage      service.ImageStorage
	service      GenerationWorkerService
	settings     SettingsLoader
	queue        <-chan kafkago.Message
	consumer     *wbfkafka.Consumer
	resultPrefix string
}

func NewWorkerInstance(strg service.ImageStorage, svc GenerationWorkerService, settings SettingsLoader, q <-chan kafkago.Message, cons *wbfkafka.Consumer, resPr string) *Worker {
	return &Worker{storage: strg, service: svc, settings: settings, queue: q, consumer: cons, resultPrefix: resPr}
}

func (w *Worker) StartWorker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-w.queue:
			if !ok {
				log.Println("Queue channel closed, stopping worker...")
				return
			}
			id := string(msg.Key)
			if err := w.initProcessor(ctx, id); err != nil && !errors.Is(err, model.ErrImageNotFound) {
				log.Printf("Task %s failed: %v", id, err)
				continue
			}
			if err := w.consumer.Commit(ctx, msg); err != nil {
				log.Printf("Failed to commit queue-message: %v", err)
			}
		}
	}
}

func (w *Worker) initProcessor(ctx context.Context, id string) error {
	task, err := w.service.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("Worker failed to fetch generation info %q from DB: %w", id, err)
	}

	switch task.Status {
	case model.StatusDone:
		return nil
	case model.StatusInProgress:
		return fmt.Errorf("already in progress")
	}

	// the result could have landed before the status flip
	if strings.Contains(task.ResultKey, w.resultPrefix) {
		if err := w.service.UpdateStatus(ctx, id, model.StatusDone); err != nil {
			return fmt.Errorf("failed to update status of already-done task in DB: %w", err)
		}
		return nil
	}

	if err := w.service.UpdateStatus(ctx, id, model.StatusInProgress); err != nil {
		return fmt.Errorf("failed to update status of task %q to `in_progress` in DB: %w", id, err)
	}

	if pErr := w.processTask(ctx, task); pErr != nil {
		if uErr := w.service.UpdateStatus(ctx, id, model.StatusFailed); uErr != nil {
			return fmt.Errorf("failed to set status of task %q to `failed` in DB: %w \nAFTER\n error while processing task: %w", id, uErr, pErr)
		}
		return fmt.Errorf("failed to process task %q: %w", id, pErr)
	}

	return nil
}

func (w *Worker) processTask(ctx context.Context, task *model.Generation) error {
	src, err := w.storage.GetBytes(ctx, task.SourceKey)
	if err != nil {
		return fmt.Errorf("worker failed to fetch raw image from storage: %w", err)
	}
	if !bytes.HasPrefix(src, []byte("\x89PNG\r\n\x1a\n")) {
		return fmt.Errorf("worker fetched non-PNG raw image %q", task.SourceKey)
	}

	settings, err := w.settings.Load(ctx)
	if err != nil {
		return fmt.Errorf("worker failed to load watermark settings: %w", err)
	}

	in := watermark.Input{
		UserEmail: task.UserEmail,
		Prompt:    task.Prompt,
		Filename:  task.Filename,
	}
	result := watermark.Apply(ctx, src, in, settings)

	resKey := w.resultPrefix + task.UID.String() + ".png"
	if err := w.storage.Put(ctx, resKey, int64(len(result)), model.PNG, bytes.NewReader(result)); err != nil {
		return fmt.Errorf("worker failed to put result image to storage: %w", err)
	}

	task.Status = model.StatusDone
	task.ResultKey = resKey

	if err := w.service.SaveResult(ctx, task); err != nil {
		return fmt.Errorf("worker failed to save result to DB: %w", err)
	}
	return nil
}
