package worker

import (
	"bytes"
	"context"
	"errors"
	"image"
	"io"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/pixelmint/genmark/internal/model"
	"github.com/pixelmint/genmark/internal/watermark"
	"github.com/stretchr/testify/require"
)

func TestWorker_initProcessor(t *testing.T) {
	ctx := context.Background()
	id := uuid.New().String()

	tests := []struct {
		name      string
		gen       *model.Generation
		getErr    error
		updateErr error
		wantErr   bool
	}{
		{
			name:    "already done",
			gen:     &model.Generation{Status: model.StatusDone},
			wantErr: false,
		},
		{
			name:    "in progress",
			gen:     &model.Generation{Status: model.StatusInProgress},
			wantErr: true,
		},
		{
			name:    "generation not found",
			getErr:  model.ErrImageNotFound,
			wantErr: true,
		},
		{
			name:      "update status error",
			gen:       &model.Generation{Status: model.StatusCreated},
			updateErr: errors.New("db down"),
			wantErr:   true,
		},
		{
			name:    "result already saved",
			gen:     &model.Generation{Status: model.StatusCreated, ResultKey: "res/a.png"},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockWorkerService{
				getFn: func(ctx context.Context, _ string) (*model.Generation, error) {
					return tt.gen, tt.getErr
				},
				updateFn: func(ctx context.Context, _ string, _ model.Status) error {
					return tt.updateErr
				},
				saveResultFn: func(ctx context.Context, _ *model.Generation) error {
					return nil
				},
			}

			w := &Worker{
				service:      svc,
				storage:      &mockStorage{},
				resultPrefix: "res/",
			}

			err := w.initProcessor(ctx, id)

			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestWorker_processTask_OK(t *testing.T) {
	ctx := context.Background()

	gen := &model.Generation{
		UID:       uuid.New(),
		UserEmail: "u@x.com",
		Prompt:    "a cat",
		Filename:  "cat.png",
		Status:    model.StatusInProgress,
		SourceKey: "src/cat.png",
	}

	var stored []byte
	storage := &mockStorage{
		getBytesFn: func(ctx context.Context, key string) ([]byte, error) {
			require.Equal(t, "src/cat.png", key)
			return validPNG(t), nil
		},
		putFn: func(ctx context.Context, key string, size int64, ct string, r io.Reader) error {
			require.Contains(t, key, "res/")
			require.Equal(t, model.PNG, ct)
			var err error
			stored, err = io.ReadAll(r)
			require.NoError(t, err)
			require.Equal(t, size, int64(len(stored)))
			return nil
		},
	}

	svc := &mockWorkerService{
		saveResultFn: func(ctx context.Context, g *model.Generation) error {
			require.Equal(t, model.StatusDone, g.Status)
			require.Equal(t, "res/"+g.UID.String()+".png", g.ResultKey)
			return nil
		},
	}

	settings := &mockSettings{
		loadFn: func(ctx context.Context) (model.WatermarkSettings, error) {
			return model.DefaultWatermarkSettings(), nil
		},
	}

	w := &Worker{
		storage:      storage,
		service:      svc,
		settings:     settings,
		resultPrefix: "res/",
	}

	require.NoError(t, w.processTask(ctx, gen))

	// both layers applied with default settings
	found, _, err := watermark.DecodeText(stored, model.DefaultHiddenKey)
	require.NoError(t, err)
	require.True(t, found)
}

func TestWorker_processTask_SourceError(t *testing.T) {
	w := &Worker{
		storage: &mockStorage{
			getBytesFn: func(ctx context.Context, key string) ([]byte, error) {
				return nil, errors.New("storage down")
			},
		},
	}

	err := w.processTask(context.Background(), &model.Generation{SourceKey: "src/x.png"})
	require.Error(t, err)
}

func TestWorker_processTask_NotAPNG(t *testing.T) {
	w := &Worker{
		storage: &mockStorage{
			getBytesFn: func(ctx context.Context, key string) ([]byte, error) {
				return []byte("not-an-image"), nil
			},
		},
	}

	err := w.processTask(context.Background(), &model.Generation{SourceKey: "src/x.bin"})
	require.Error(t, err)
}

func TestWorker_processTask_SettingsError(t *testing.T) {
	w := &Worker{
		storage: &mockStorage{
			getBytesFn: func(ctx context.Context, key string) ([]byte, error) {
				return validPNG(t), nil
			},
		},
		settings: &mockSettings{
			loadFn: func(ctx context.Context) (model.WatermarkSettings, error) {
				return model.WatermarkSettings{}, errors.New("db down")
			},
		},
	}

	err := w.processTask(context.Background(), &model.Generation{SourceKey: "src/x.png"})
	require.Error(t, err)
}

func validPNG(t *testing.T) []byte {
	t.Helper()

	var buf bytes.Buffer
	img := imaging.New(256, 256, image.White.C)
	require.NoError(t, imaging.Encode(&buf, img, imaging.PNG))
	return buf.Bytes()
}
