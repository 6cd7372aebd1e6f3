package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/pixelmint/genmark/internal/model"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/retry"
)

// CREATE - SUCCESS
func TestGenerationService_Create_OK(t *testing.T) {
	ctx := context.Background()

	repo := &mockGenRepo{
		createFn: func(ctx context.Context, g *model.Generation) error {
			require.NotEmpty(t, g.UID)
			require.Equal(t, model.StatusCreated, g.Status)
			require.True(t, strings.HasPrefix(g.SourceKey, "src/"))
			return nil
		},
	}

	storage := &mockStorage{
		putFn: func(ctx context.Context, key string, size int64, ct string, r io.Reader) error {
			require.Equal(t, model.PNG, ct)
			return nil
		},
	}

	pub := &mockPublisher{
		sendFn: func(ctx context.Context, s retry.Strategy, key []byte, v []byte) error {
			require.NotEmpty(t, key)
			return nil
		},
	}

	svc := GenerationService{
		repo:         repo,
		storage:      storage,
		publisher:    pub,
		srcKeyPrefix: "src/",
	}

	gen, err := svc.Create(ctx, validCreateData())
	require.NoError(t, err)
	require.NotNil(t, gen)
	require.Equal(t, "u@x.com", gen.UserEmail)
}

// CREATE - VALIDATION FAIL
func TestGenerationService_Create_InvalidInput(t *testing.T) {
	svc := GenerationService{}

	tests := []struct {
		name    string
		mutate  func(*model.GenerationCreateData)
		wantErr error
	}{
		{
			name:    "empty email",
			mutate:  func(d *model.GenerationCreateData) { d.UserEmail = "  " },
			wantErr: model.ErrEmptyEmail,
		},
		{
			name:    "empty prompt",
			mutate:  func(d *model.GenerationCreateData) { d.Prompt = "\n " },
			wantErr: model.ErrEmptyPrompt,
		},
		{
			name:    "missing image",
			mutate:  func(d *model.GenerationCreateData) { d.Img = nil },
			wantErr: model.ErrEmptySource,
		},
		{
			name:    "wrong content type",
			mutate:  func(d *model.GenerationCreateData) { d.ContentType = "image/jpeg" },
			wantErr: model.ErrEmptySource,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := validCreateData()
			tt.mutate(data)

			_, err := svc.Create(context.Background(), data)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

// CREATE - STORAGE PUT FAIL
func TestGenerationService_Create_StorageError(t *testing.T) {
	repo := &mockGenRepo{}
	storage := &mockStorage{
		putFn: func(ctx context.Context, key string, size int64, ct string, r io.Reader) error {
			return errors.New("storage is down")
		},
	}

	svc := GenerationService{
		repo:         repo,
		storage:      storage,
		srcKeyPrefix: "src/",
	}

	_, err := svc.Create(context.Background(), validCreateData())
	require.ErrorIs(t, err, model.ErrCommon500)
}

// CREATE - FILENAME GENERATED WHEN ABSENT
func TestGenerationService_Create_GeneratesFilename(t *testing.T) {
	var saved *model.Generation
	repo := &mockGenRepo{
		createFn: func(ctx context.Context, g *model.Generation) error {
			saved = g
			return nil
		},
	}
	storage := &mockStorage{
		putFn: func(ctx context.Context, key string, size int64, ct string, r io.Reader) error { return nil },
	}
	pub := &mockPublisher{
		sendFn: func(ctx context.Context, s retry.Strategy, key []byte, v []byte) error { return nil },
	}

	svc := GenerationService{repo: repo, storage: storage, publisher: pub, srcKeyPrefix: "src/"}

	data := validCreateData()
	data.Prompt = "a cat, photo!"

	_, err := svc.Create(context.Background(), data)
	require.NoError(t, err)
	require.NotNil(t, saved)
	require.True(t, strings.HasPrefix(saved.Filename, "gen_"))
	require.True(t, strings.HasSuffix(saved.Filename, "_a_cat__photo_.png"))
}

// GETLIST - SUCCESS WITH PARAM DEFAULTING
func TestGenerationService_GetList_OK(t *testing.T) {
	repo := &mockGenRepo{
		getListFn: func(ctx context.Context, req *model.ListRequest) ([]model.Generation, error) {
			require.Equal(t, 1, req.Page)
			require.Equal(t, 30, req.Limit)
			require.Equal(t, "created_at", req.Sort)
			require.Equal(t, "DESC", req.Order)
			return []model.Generation{{UID: uuid.New()}}, nil
		},
	}

	svc := GenerationService{repo: repo}

	res, err := svc.GetList(context.Background(), &model.ListRequest{})
	require.NoError(t, err)
	require.Len(t, res, 1)
}

// LOADRESULT - NOT READY
func TestGenerationService_LoadResult_NotReady(t *testing.T) {
	repo := &mockGenRepo{
		getFn: func(ctx context.Context, id string) (*model.Generation, error) {
			return &model.Generation{Status: model.StatusInProgress}, nil
		},
	}

	svc := GenerationService{repo: repo}

	_, _, err := svc.LoadResult(context.Background(), uuid.New().String())
	require.ErrorIs(t, err, model.ErrResultNotReady)
}

// LOADRESULT - BAD ID
func TestGenerationService_LoadResult_BadID(t *testing.T) {
	svc := GenerationService{}

	_, _, err := svc.LoadResult(context.Background(), "not-a-uuid")
	require.ErrorIs(t, err, model.ErrIncorrectID)
}

// DELETE - FULL CLEANUP
func TestGenerationService_Delete_OK(t *testing.T) {
	id := uuid.New()
	deleted := map[string]bool{}

	repo := &mockGenRepo{
		getFn: func(ctx context.Context, _ string) (*model.Generation, error) {
			return &model.Generation{
				UID:       id,
				SourceKey: "src/a.png",
				ResultKey: "res/a.png",
				Status:    model.StatusDone,
			}, nil
		},
		deleteFn: func(ctx context.Context, _ string) error { return nil },
	}
	storage := &mockStorage{
		deleteFn: func(ctx context.Context, key string) error {
			deleted[key] = true
			return nil
		},
	}

	svc := GenerationService{repo: repo, storage: storage}

	require.NoError(t, svc.Delete(context.Background(), id.String()))
	require.True(t, deleted["src/a.png"])
	require.True(t, deleted["res/a.png"])
}

// DELETE - NOT FOUND
func TestGenerationService_Delete_NotFound(t *testing.T) {
	repo := &mockGenRepo{
		getFn: func(ctx context.Context, _ string) (*model.Generation, error) {
			return nil, model.ErrImageNotFound
		},
	}

	svc := GenerationService{repo: repo}

	err := svc.Delete(context.Background(), uuid.New().String())
	require.ErrorIs(t, err, model.ErrImageNotFound)
}

// REVIVEORPHANS - PUBLISHES EVERY ORPHAN
func TestGenerationService_ReviveOrphans(t *testing.T) {
	published := 0

	repo := &mockGenRepo{
		fetchOrphansFn: func(ctx context.Context, limit int) ([]string, error) {
			return []string{"a", "b", "c"}, nil
		},
	}
	pub := &mockPublisher{
		sendFn: func(ctx context.Context, s retry.Strategy, key []byte, v []byte) error {
			published++
			return nil
		},
	}

	svc := GenerationService{repo: repo, publisher: pub}

	svc.ReviveOrphans(context.Background(), 20)
	require.Equal(t, 3, published)
}
