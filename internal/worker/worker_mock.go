package worker

import (
	"context"
	"io"

	"github.com/pixelmint/genmark/internal/model"
)

type mockWorkerService struct {
	getFn        func(ctx context.Context, id string) (*model.Generation, error)
	updateFn     func(ctx context.Context, id string, st model.Status) error
	saveResultFn func(ctx context.Context, g *model.Generation) error
}

func (m *mockWorkerService) Get(ctx context.Context, id string) (*model.Generation, error) {
	return m.getFn(ctx, id)
}

func (m *mockWorkerService) UpdateStatus(ctx context.Context, id string, st model.Status) error {
	return m.updateFn(ctx, id, st)
}

func (m *mockWorkerService) SaveResult(ctx context.Context, g *model.Generation) error {
	return m.saveResultFn(ctx, g)
}

//----------------------------------

type mockStorage struct {
	getBytesFn func(ctx context.Context, key string) ([]byte, error)
	putFn      func(ctx context.Context, key string, size int64, ct string, r io.Reader) error
}

func (m *mockStorage) Get(ctx context.Context, key string) (io.ReadCloser, string, error) {
	return nil, "", nil
}

func (m *mockStorage) GetBytes(ctx context.Context, key string) ([]byte, error) {
	return m.getBytesFn(ctx, key)
}

func (m *mockStorage) Put(ctx context.Context, key string, size int64, ct string, r io.Reader) error {
	return m.putFn(ctx, key, size, ct, r)
}

func (m *mockStorage) Delete(ctx context.Context, key string) error {
	return nil
}

//----------------------------------

type mockSettings struct {
	loadFn func(ctx context.Context) (model.WatermarkSettings, error)
}

func (m *mockSettings) Load(ctx context.Context) (model.WatermarkSettings, error) {
	return m.loadFn(ctx)
}
