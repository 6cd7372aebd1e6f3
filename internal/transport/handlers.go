// Package transport provides methods for processing requests from endpoints
package transport

import (
	"context"
	"io"
	"log"
	"strconv"

	"github.com/pixelmint/genmark/internal/model"
	"github.com/wb-go/wbf/ginext"
)

type GenerationHandler struct {
	service    GenerationService
	settings   SettingsService
	inspector  WatermarkInspector
	adminToken string
}

type GenerationService interface {
	Create(ctx context.Context, data *model.GenerationCreateData) (*model.Generation, error)
	Delete(ctx context.Context, id string) error
	LoadResult(ctx context.Context, id string) (io.ReadCloser, string, error)
	GetList(ctx context.Context, req *model.ListRequest) ([]model.Generation, error)
}

type SettingsService interface {
	Load(ctx context.Context) (model.WatermarkSettings, error)
	Save(ctx context.Context, upd *model.WatermarkSettingsUpdate) (model.WatermarkSettings, error)
}

type WatermarkInspector interface {
	Inspect(ctx context.Context, req *model.InspectRequest) (*model.InspectReport, error)
}

func NewGenerationHandler(svc GenerationService, settings SettingsService, insp WatermarkInspector, adminToken string) *GenerationHandler {
	return &GenerationHandler{
		service:    svc,
		settings:   settings,
		inspector:  insp,
		adminToken: adminToken,
	}
}

func (h GenerationHandler) SimplePinger(ctx *ginext.Context) {
	ctx.JSON(200, map[string]string{"message": "pong"})
}

func (h GenerationHandler) Create(ctx *ginext.Context) {
	userEmail := ctx.PostForm("user_email")
	prompt := ctx.PostForm("prompt")
	filename := ctx.PostForm("filename")

	// optional declared dimensions
	var width, height int
	if v := ctx.PostForm("width"); v != "" {
		width, _ = strconv.Atoi(v)
	}
	if v := ctx.PostForm("height"); v != "" {
		height, _ = strconv.Atoi(v)
	}

	imageFile, imageHeader, err := ctx.Request.FormFile("image")
	if err != nil {
		ctx.JSON(400, map[string]string{"error": "image is required"})
		return
	}
	defer closeFileFlow(imageFile)

	newGenRaw := model.GenerationCreateData{
		UserEmail:   userEmail,
		Prompt:      prompt,
		Filename:    filename,
		Width:       width,
		Height:      height,
		Img:         imageFile,
		ContentType: imageHeader.Header.Get("Content-Type"),
		ImgSize:     imageHeader.Size,
	}

	res, err := h.service.Create(ctx.Request.Context(), &newGenRaw)
	if err != nil {
		ctx.JSON(errorCodeDefiner(err), map[string]string{"error": err.Error()})
		return
	}

	ctx.JSON(201, res)
}

func (h GenerationHandler) GetAllGenerations(ctx *ginext.Context) {
	var req model.ListRequest

	if err := ctx.ShouldBindQuery(&req); err != nil {
		ctx.JSON(400, map[string]string{"error": "failed to parse query-params"})
		return
	}

	res, err := h.service.GetList(ctx.Request.Context(), &req)
	if err != nil {
		ctx.JSON(errorCodeDefiner(err), map[string]string{"error": err.Error()})
		return
	}

	ctx.JSON(200, res)
}

func (h GenerationHandler) LoadResult(ctx *ginext.Context) {
	id := ctx.Param("id")

	res, cType, err := h.service.LoadResult(ctx.Request.Context(), id)
	if err != nil {
		ctx.JSON(errorCodeDefiner(err), map[string]string{"error": err.Error()})
		return
	}
	defer closeFileFlow(res)

	ctx.Writer.Header().Set("Content-Type", cType)
	ctx.Writer.WriteHeader(200)
	if n, err := io.Copy(ctx.Writer, res); err != nil {
		log.Printf("Failed to write response at byte %d for generation id %q: %v", n, id, err)
	}
}

func (h GenerationHandler) Delete(ctx *ginext.Context) {
	id := ctx.Param("id")
	if err := h.service.Delete(ctx.Request.Context(), id); err != nil {
		ctx.JSON(errorCodeDefiner(err), map[string]string{"error": err.Error()})
		return
	}

	ctx.Status(204)
}

func (h GenerationHandler) GetWatermarkSettings(ctx *ginext.Context) {
	res, err := h.settings.Load(ctx.Request.Context())
	if err != nil {
		ctx.JSON(errorCodeDefiner(err), map[string]string{"error": err.Error()})
		return
	}

	ctx.JSON(200, res)
}

func (h GenerationHandler) PutWatermarkSettings(ctx *ginext.Context) {
	// empty configured token means the guard is off
	if h.adminToken != "" && ctx.Request.Header.Get("X-Admin-Token") != h.adminToken {
		ctx.JSON(errorCodeDefiner(model.ErrUnauthorized), map[string]string{"error": model.ErrUnauthorized.Error()})
		return
	}

	var upd model.WatermarkSettingsUpdate
	if err := ctx.BindJSON(&upd); err != nil {
		ctx.JSON(400, map[string]string{"error": "failed to parse settings payload"})
		return
	}

	res, err := h.settings.Save(ctx.Request.Context(), &upd)
	if err != nil {
		ctx.JSON(errorCodeDefiner(err), map[string]string{"error": err.Error()})
		return
	}

	ctx.JSON(200, res)
}

func (h GenerationHandler) InspectWatermark(ctx *ginext.Context) {
	var req model.InspectRequest

	if err := ctx.ShouldBindQuery(&req); err != nil {
		ctx.JSON(400, map[string]string{"error": "failed to parse query-params"})
		return
	}

	res, err := h.inspector.Inspect(ctx.Request.Context(), &req)
	if err != nil {
		ctx.JSON(errorCodeDefiner(err), map[string]string{"error": err.Error()})
		return
	}

	ctx.JSON(200, res)
}
