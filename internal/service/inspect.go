package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pixelmint/genmark/internal/model"
	"github.com/pixelmint/genmark/internal/mwlogger"
	"github.com/pixelmint/genmark/internal/repository"
	"github.com/pixelmint/genmark/internal/watermark"
)

// maxInspectBytes caps how much of a remote image the inspector will buffer
const maxInspectBytes = 64 << 20

// Inspector resolves an image reference (generation id or URL) into bytes and
// reports the hidden tEXt payload. Unlike the pipeline this path is an explicit
// diagnostic action, so fetch failures surface as errors instead of degrading.
type Inspector struct {
	repo       repository.GenerationRepo
	storage    ImageStorage
	http       *http.Client
	publicBase string
}

func NewInspector(repo repository.GenerationRepo, strg ImageStorage, publicBase string) *Inspector {
	return &Inspector{
		repo:       repo,
		storage:    strg,
		http:       &http.Client{Timeout: 15 * time.Second},
		publicBase: strings.TrimRight(publicBase, "/"),
	}
}

func (i Inspector) Inspect(ctx context.Context, req *model.InspectRequest) (*model.InspectReport, error) {
	logger := mwlogger.LoggerFromContext(ctx)

	key := req.Key
	if key == "" {
		key = model.DefaultHiddenKey
	}

	var data []byte
	var imageURL, fullURL string
	var err error

	switch {
	case req.ImageID != "":
		data, imageURL, fullURL, err = i.fetchByID(ctx, req.ImageID)
	case req.ImageURL != "":
		data, imageURL, fullURL, err = i.fetchByURL(ctx, req.ImageURL)
	default:
		return nil, model.ErrIncorrectQuery
	}
	if err != nil {
		return nil, err
	}

	report := &model.InspectReport{
		ImageURL:      imageURL,
		FullURL:       fullURL,
		Key:           key,
		AllTextChunks: []model.TextChunk{},
	}

	decoded, err := watermark.ListText(data)
	if err != nil {
		// unparseable image is still a report, not an error: found=false
		logger.Warn().Err(err).Msg("Inspector failed to parse PNG chunk stream")
		return report, nil
	}

	report.AllTextChunks = decoded
	for _, d := range decoded {
		if d.Key == key {
			value := d.Text
			report.Found = true
			report.Value = &value
			break
		}
	}
	return report, nil
}

func (i Inspector) fetchByID(ctx context.Context, id string) (data []byte, imageURL, fullURL string, err error) {
	logger := mwlogger.LoggerFromContext(ctx)

	if err := uuid.Validate(id); err != nil {
		return nil, "", "", model.ErrIncorrectID
	}

	gen, err := i.repo.Get(ctx, id)
	if err != nil {
		return nil, "", "", model.ErrImageNotFound
	}
	if gen.Status != model.StatusDone || gen.ResultKey == "" {
		return nil, "", "", model.ErrResultNotReady
	}

	data, err = i.storage.GetBytes(ctx, gen.ResultKey)
	if err != nil {
		logger.Error().Err(err).Msg(fmt.Sprintf("Inspector failed to fetch %q from Storage", gen.ResultKey))
		return nil, "", "", model.ErrFetchFailed
	}

	return data, "/generations/" + gen.UID.String(), gen.ResultKey, nil
}

func (i Inspector) fetchByURL(ctx context.Context, rawURL string) (data []byte, imageURL, fullURL string, err error) {
	logger := mwlogger.LoggerFromContext(ctx)

	fullURL = rawURL
	if !strings.HasPrefix(rawURL, "http") {
		fullURL = i.publicBase + rawURL
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, "", "", model.ErrIncorrectQuery
	}

	resp, err := i.http.Do(httpReq)
	if err != nil {
		logger.Error().Err(err).Msg(fmt.Sprintf("Inspector failed to fetch %q", fullURL))
		return nil, "", "", model.ErrFetchFailed
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Warn().Err(err).Msg("Inspector failed to close response body")
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, "", "", model.ErrFetchFailed
	}

	data, err = io.ReadAll(io.LimitReader(resp.Body, maxInspectBytes))
	if err != nil {
		return nil, "", "", model.ErrFetchFailed
	}

	return data, rawURL, fullURL, nil
}
