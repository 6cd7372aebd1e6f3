package transport

import (
	"context"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/pixelmint/genmark/internal/model"
)

type mockGenerationService struct {
	createFn     func(ctx context.Context, d *model.GenerationCreateData) (*model.Generation, error)
	deleteFn     func(ctx context.Context, id string) error
	loadResultFn func(ctx context.Context, id string) (io.ReadCloser, string, error)
	getListFn    func(ctx context.Context, req *model.ListRequest) ([]model.Generation, error)
}

func (m *mockGenerationService) Create(ctx context.Context, d *model.GenerationCreateData) (*model.Generation, error) {
	return m.createFn(ctx, d)
}

func (m *mockGenerationService) Delete(ctx context.Context, id string) error {
	return m.deleteFn(ctx, id)
}

func (m *mockGenerationService) LoadResult(ctx context.Context, id string) (io.ReadCloser, string, error) {
	return m.loadResultFn(ctx, id)
}

func (m *mockGenerationService) GetList(ctx context.Context, req *model.ListRequest) ([]model.Generation, error) {
	return m.getListFn(ctx, req)
}

type mockSettingsService struct {
	loadFn func(ctx context.Context) (model.WatermarkSettings, error)
	saveFn func(ctx context.Context, upd *model.WatermarkSettingsUpdate) (model.WatermarkSettings, error)
}

func (m *mockSettingsService) Load(ctx context.Context) (model.WatermarkSettings, error) {
	return m.loadFn(ctx)
}

func (m *mockSettingsService) Save(ctx context.Context, upd *model.WatermarkSettingsUpdate) (model.WatermarkSettings, error) {
	return m.saveFn(ctx, upd)
}

type mockInspector struct {
	inspectFn func(ctx context.Context, req *model.InspectRequest) (*model.InspectReport, error)
}

func (m *mockInspector) Inspect(ctx context.Context, req *model.InspectRequest) (*model.InspectReport, error) {
	return m.inspectFn(ctx, req)
}

func init() {
	gin.SetMode(gin.TestMode)
}
