// Package model provides data-structs for internal app-usage
package model

import (
	"errors"
	"mime/multipart"
	"time"

	"github.com/google/uuid"
)

type (
	Status   string
	Position string
)

const (
	StatusCreated    Status = "created"
	StatusInProgress Status = "in_progress"
	StatusFailed     Status = "failed"
	StatusDone       Status = "done"
)

var StatusMap = map[Status]bool{
	StatusCreated:    true,
	StatusInProgress: true,
	StatusFailed:     true,
	StatusDone:       true,
}

const (
	PosBottomRight Position = "bottom-right"
	PosBottomLeft  Position = "bottom-left"
	PosTopRight    Position = "top-right"
	PosTopLeft     Position = "top-left"
)

var PositionMap = map[Position]bool{
	PosBottomRight: true,
	PosBottomLeft:  true,
	PosTopRight:    true,
	PosTopLeft:     true,
}

//---------------------

// Generation - one record per generated image passing through the watermark pipeline
type Generation struct {
	UID       uuid.UUID  `json:"uid"`
	UserEmail string     `json:"user_email"`
	Prompt    string     `json:"prompt"`
	Filename  string     `json:"filename"`
	Width     int        `json:"width,omitempty"`
	Height    int        `json:"height,omitempty"`
	SourceKey string     `json:"-"`
	ResultKey string     `json:"-"`
	Status    Status     `json:"status,omitempty"`
	ErrMsg    string     `json:"error,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

type GenerationCreateData struct {
	UserEmail   string
	Prompt      string
	Filename    string
	Width       int
	Height      int
	Img         multipart.File
	ContentType string
	ImgSize     int64
}

//-------------------

type ListRequest struct {
	Page  int    `form:"page"`
	Limit int    `form:"limit"`
	Sort  string `form:"sort"`
	Order string `form:"order"`
}

const (
	ByUUID    = "uid"
	ByCreated = "created"
	OrderASC  = "ascend"
	OrderDESC = "descend"
)

//-------------------

// WatermarkSettings - singleton config row (id=1) governing both watermark layers.
// JSON shape matches the admin GET/PUT endpoints.
type WatermarkSettings struct {
	VisibleEnabled      bool      `json:"visible_enabled"`
	HiddenEnabled       bool      `json:"hidden_enabled"`
	VisibleTextTemplate string    `json:"visible_text_template"`
	HiddenKey           string    `json:"hidden_key"`
	VisiblePosition     Position  `json:"visible_position"`
	VisibleOpacity      float64   `json:"visible_opacity"`
	VisibleBar          bool      `json:"visible_bar"`
	FontScale           float64   `json:"font_scale"`
	VisibleFontFamily   *string   `json:"visible_font_family"`
	VisibleFontDataURL  *string   `json:"visible_font_data_url"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// WatermarkSettingsUpdate - partial save payload, nil fields fall back to defaults
type WatermarkSettingsUpdate struct {
	VisibleEnabled      *bool    `json:"visible_enabled"`
	HiddenEnabled       *bool    `json:"hidden_enabled"`
	VisibleTextTemplate *string  `json:"visible_text_template"`
	HiddenKey           *string  `json:"hidden_key"`
	VisiblePosition     *string  `json:"visible_position"`
	VisibleOpacity      *float64 `json:"visible_opacity"`
	VisibleBar          *bool    `json:"visible_bar"`
	FontScale           *float64 `json:"font_scale"`
	VisibleFontFamily   *string  `json:"visible_font_family"`
	VisibleFontDataURL  *string  `json:"visible_font_data_url"`
}

const (
	DefaultVisibleTemplate = "Image Generator • {email} • {timestamp}"
	DefaultHiddenKey       = "watermark"
	DefaultOpacity         = 0.15
	DefaultFontScale       = 0.03
	DefaultFontFamily      = "Inter, Arial, Helvetica, sans-serif"
)

// DefaultWatermarkSettings - what Load returns before the admin ever saved anything
func DefaultWatermarkSettings() WatermarkSettings {
	family := DefaultFontFamily
	return WatermarkSettings{
		VisibleEnabled:      true,
		HiddenEnabled:       true,
		VisibleTextTemplate: DefaultVisibleTemplate,
		HiddenKey:           DefaultHiddenKey,
		VisiblePosition:     PosBottomRight,
		VisibleOpacity:      DefaultOpacity,
		VisibleBar:          true,
		FontScale:           DefaultFontScale,
		VisibleFontFamily:   &family,
		UpdatedAt:           time.Now().UTC(),
	}
}

//-------------------

// WatermarkPayload - hidden-chunk value, serialized to JSON. Deterministic for
// a given (user, ts, filename, prompt) - no randomness.
type WatermarkPayload struct {
	User       string `json:"user"`
	TS         string `json:"ts"`
	Filename   string `json:"filename"`
	PromptHash string `json:"promptHash"`
}

//-------------------

type InspectRequest struct {
	ImageID  string `form:"image_id"`
	ImageURL string `form:"image_url"`
	Key      string `form:"key"`
}

type TextChunk struct {
	Key  string `json:"key"`
	Text string `json:"text"`
}

type InspectReport struct {
	ImageURL      string      `json:"image_url"`
	FullURL       string      `json:"full_url"`
	Key           string      `json:"key"`
	Found         bool        `json:"found"`
	Value         *string     `json:"value"`
	AllTextChunks []TextChunk `json:"all_text_chunks"`
}

// ------------------

var (
	ErrCommon500       error = errors.New("something went wrong. Try again later") // 500
	ErrIncorrectQuery  error = errors.New("incorrect query parameters")            // 400
	ErrIncorrectID     error = errors.New("incorrect generation UUID")             // 400
	ErrImageNotFound   error = errors.New("specified image doesn't exist")         // 404
	ErrResultNotReady  error = errors.New("requested image is not processed yet")  // 404
	ErrEmptySource     error = errors.New("empty/incorrect source image provided") // 400
	ErrEmptyEmail      error = errors.New("user email is required")                // 400
	ErrEmptyPrompt     error = errors.New("prompt is required")                    // 400
	ErrIncorrectStatus error = errors.New("incorrect status provided")             // 400
	ErrFetchFailed     error = errors.New("failed to fetch referenced image")      // 502
	ErrUnauthorized    error = errors.New("admin token is missing or invalid")     // 401
)

//--------------------

const (
	PNG = "image/png"
)

var InImageTypeMap = map[string]bool{
	PNG: true,
}
