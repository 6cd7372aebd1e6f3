package service

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/pixelmint/genmark/internal/model"
)

func validateQueryParams(req *model.ListRequest) {
	// empty values fall back to defaults
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.Limit <= 0 || req.Limit > 100 {
		req.Limit = 30
	}
	if req.Sort == "" {
		req.Sort = model.ByCreated
	}
	if req.Order == "" {
		req.Order = model.OrderDESC
	}

	req.Sort = strings.ToLower(strings.TrimSpace(req.Sort))
	switch {
	case strings.Contains(req.Sort, model.ByUUID):
		req.Sort = "gen_uid"
	case strings.Contains(req.Sort, model.ByCreated):
		req.Sort = "created_at"
	default:
		req.Sort = "created_at"
	}

	req.Order = strings.ToLower(strings.TrimSpace(req.Order))
	switch {
	case strings.Contains(req.Order, model.OrderASC):
		req.Order = "ASC"
	case strings.Contains(req.Order, model.OrderDESC):
		req.Order = "DESC"
	default:
		req.Order = "DESC" // newest first
	}
}

func validateNormalizeGenerationInfo(raw *model.GenerationCreateData, clean *model.Generation) error {
	clean.UserEmail = strings.TrimSpace(raw.UserEmail)
	if clean.UserEmail == "" {
		return model.ErrEmptyEmail
	}

	clean.Prompt = strings.TrimSpace(raw.Prompt)
	if clean.Prompt == "" {
		return model.ErrEmptyPrompt
	}

	if raw.Img == nil || raw.ImgSize <= 0 || !model.InImageTypeMap[raw.ContentType] {
		return model.ErrEmptySource
	}

	clean.Width = raw.Width
	clean.Height = raw.Height

	clean.Filename = strings.TrimSpace(raw.Filename)
	if clean.Filename == "" {
		clean.Filename = generateFilename(clean.Prompt)
	}

	return nil
}

// generateFilename mirrors the public naming scheme: timestamp plus a
// sanitized prompt prefix.
func generateFilename(prompt string) string {
	safe := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) && r < unicode.MaxASCII || unicode.IsDigit(r) && r < unicode.MaxASCII {
			return r
		}
		return '_'
	}, prompt)
	if len(safe) > 30 {
		safe = safe[:30]
	}
	return fmt.Sprintf("gen_%d_%s.png", time.Now().UnixMilli(), safe)
}

// normalizeSettingsUpdate expands a partial save payload into full settings:
// nil or invalid fields take the server defaults.
func normalizeSettingsUpdate(upd *model.WatermarkSettingsUpdate) model.WatermarkSettings {
	s := model.DefaultWatermarkSettings()
	if upd == nil {
		return s
	}

	if upd.VisibleEnabled != nil {
		s.VisibleEnabled = *upd.VisibleEnabled
	}
	if upd.HiddenEnabled != nil {
		s.HiddenEnabled = *upd.HiddenEnabled
	}
	if upd.VisibleTextTemplate != nil && strings.TrimSpace(*upd.VisibleTextTemplate) != "" {
		s.VisibleTextTemplate = *upd.VisibleTextTemplate
	}
	if upd.HiddenKey != nil && isASCIIKeyword(*upd.HiddenKey) {
		s.HiddenKey = *upd.HiddenKey
	}
	if upd.VisiblePosition != nil && model.PositionMap[model.Position(*upd.VisiblePosition)] {
		s.VisiblePosition = model.Position(*upd.VisiblePosition)
	}
	if upd.VisibleOpacity != nil && *upd.VisibleOpacity >= 0 && *upd.VisibleOpacity <= 1 {
		s.VisibleOpacity = *upd.VisibleOpacity
	}
	if upd.VisibleBar != nil {
		s.VisibleBar = *upd.VisibleBar
	}
	if upd.FontScale != nil && *upd.FontScale > 0 && *upd.FontScale <= 1 {
		s.FontScale = *upd.FontScale
	}
	if upd.VisibleFontFamily != nil && *upd.VisibleFontFamily != "" {
		s.VisibleFontFamily = upd.VisibleFontFamily
	}
	if upd.VisibleFontFamily != nil && *upd.VisibleFontFamily == "" {
		s.VisibleFontFamily = nil
	}
	s.VisibleFontDataURL = nil
	if upd.VisibleFontDataURL != nil && *upd.VisibleFontDataURL != "" {
		s.VisibleFontDataURL = upd.VisibleFontDataURL
	}

	return s
}

func isASCIIKeyword(key string) bool {
	if len(key) == 0 || len(key) > 79 {
		return false
	}
	for i := 0; i < len(key); i++ {
		if key[i] == 0x00 || key[i] > 0x7F {
			return false
		}
	}
	return true
}
