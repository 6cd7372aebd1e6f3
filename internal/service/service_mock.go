package service

import (
	"bytes"
	"context"
	"io"

	"github.com/pixelmint/genmark/internal/model"
	"github.com/wb-go/wbf/retry"
)

// MOCK GENERATION REPOSITORY

type mockGenRepo struct {
	createFn       func(ctx context.Context, g *model.Generation) error
	getFn          func(ctx context.Context, id string) (*model.Generation, error)
	getListFn      func(ctx context.Context, req *model.ListRequest) ([]model.Generation, error)
	deleteFn       func(ctx context.Context, id string) error
	updateStatusFn func(ctx context.Context, id string, st model.Status) error
	saveResultFn   func(ctx context.Context, g *model.Generation) error
	fetchOrphansFn func(ctx context.Context, limit int) ([]string, error)
}

func (m *mockGenRepo) Create(ctx context.Context, g *model.Generation) error {
	return m.createFn(ctx, g)
}

func (m *mockGenRepo) Get(ctx context.Context, id string) (*model.Generation, error) {
	return m.getFn(ctx, id)
}

func (m *mockGenRepo) GetList(ctx context.Context, req *model.ListRequest) ([]model.Generation, error) {
	return m.getListFn(ctx, req)
}

func (m *mockGenRepo) Delete(ctx context.Context, id string) error {
	return m.deleteFn(ctx, id)
}

func (m *mockGenRepo) UpdateStatus(ctx context.Context, id string, st model.Status) error {
	return m.updateStatusFn(ctx, id, st)
}

func (m *mockGenRepo) SaveResult(ctx context.Context, g *model.Generation) error {
	return m.saveResultFn(ctx, g)
}

func (m *mockGenRepo) FetchOrphans(ctx context.Context, limit int) ([]string, error) {
	return m.fetchOrphansFn(ctx, limit)
}

// MOCK SETTINGS REPOSITORY

type mockSettingsRepo struct {
	loadFn func(ctx context.Context) (*model.WatermarkSettings, error)
	saveFn func(ctx context.Context, s *model.WatermarkSettings) error
}

func (m *mockSettingsRepo) Load(ctx context.Context) (*model.WatermarkSettings, error) {
	return m.loadFn(ctx)
}

func (m *mockSettingsRepo) Save(ctx context.Context, s *model.WatermarkSettings) error {
	return m.saveFn(ctx, s)
}

// MOCK STORAGE

type mockStorage struct {
	putFn      func(ctx context.Context, key string, size int64, ct string, r io.Reader) error
	getFn      func(ctx context.Context, key string) (io.ReadCloser, string, error)
	getBytesFn func(ctx context.Context, key string) ([]byte, error)
	deleteFn   func(ctx context.Context, key string) error
}

func (m *mockStorage) Put(ctx context.Context, key string, size int64, ct string, r io.Reader) error {
	return m.putFn(ctx, key, size, ct, r)
}

func (m *mockStorage) Get(ctx context.Context, key string) (io.ReadCloser, string, error) {
	return m.getFn(ctx, key)
}

func (m *mockStorage) GetBytes(ctx context.Context, key string) ([]byte, error) {
	return m.getBytesFn(ctx, key)
}

func (m *mockStorage) Delete(ctx context.Context, key string) error {
	return m.deleteFn(ctx, key)
}

// MOCK PUBLISHER

type mockPublisher struct {
	sendFn func(ctx context.Context, s retry.Strategy, key []byte, v []byte) error
}

func (m *mockPublisher) SendWithRetry(ctx context.Context, s retry.Strategy, key []byte, v []byte) error {
	return m.sendFn(ctx, s, key, v)
}

// fakeFile - in-memory stand-in for a multipart.File

type fakeFile struct {
	*bytes.Reader
}

func (fakeFile) Close() error { return nil }

func newFakeFile(content string) fakeFile {
	return fakeFile{bytes.NewReader([]byte(content))}
}

func validCreateData() *model.GenerationCreateData {
	return &model.GenerationCreateData{
		UserEmail:   "u@x.com",
		Prompt:      "a cat",
		Img:         newFakeFile("png-bytes"),
		ImgSize:     9,
		ContentType: model.PNG,
	}
}
