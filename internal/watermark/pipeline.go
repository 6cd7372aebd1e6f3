package watermark

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"github.com/pixelmint/genmark/internal/model"
	"github.com/pixelmint/genmark/internal/mwlogger"
)

// Input - per-generation data the pipeline stamps into both layers
type Input struct {
	UserEmail string
	Prompt    string
	Filename  string
	Now       time.Time // zero value means time.Now().UTC()
}

// Apply runs the full watermark chain over raw PNG bytes: render the visible
// template, composite the overlay, then embed the hidden payload chunk.
// The order is fixed - compositing re-encodes the PNG and would strip a
// previously embedded tEXt chunk, so the hidden layer always goes last.
//
// Both layers are best-effort: a failed step logs a warning and the current
// bytes carry forward. Apply never fails the enclosing generation.
func Apply(ctx context.Context, src []byte, in Input, s model.WatermarkSettings) []byte {
	logger := mwlogger.LoggerFromContext(ctx)

	ts := in.Now
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	tokens := Tokens{
		Email:     in.UserEmail,
		Timestamp: ts.Format(time.RFC3339),
		Filename:  in.Filename,
	}

	out := src

	if s.VisibleEnabled {
		if text := RenderTemplate(s.VisibleTextTemplate, tokens); text != "" {
			opts := OverlayOptions{
				Position:  s.VisiblePosition,
				Opacity:   s.VisibleOpacity,
				Bar:       s.VisibleBar,
				FontScale: s.FontScale,
			}
			if s.VisibleFontFamily != nil {
				opts.FontFamily = *s.VisibleFontFamily
			}
			if s.VisibleFontDataURL != nil {
				opts.FontDataURL = *s.VisibleFontDataURL
			}

			composited, err := ApplyVisible(out, text, opts)
			if err != nil {
				logger.Warn().Err(err).Msg("Visible watermark failed, keeping bytes unmodified")
			} else {
				out = composited
			}
		}
	}

	if s.HiddenEnabled {
		payload := model.WatermarkPayload{
			User:       in.UserEmail,
			TS:         tokens.Timestamp,
			Filename:   in.Filename,
			PromptHash: HashPrompt(in.Prompt),
		}
		raw, err := json.Marshal(payload)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to serialize hidden payload, skipping hidden watermark")
			return out
		}

		embedded, err := EncodeText(out, s.HiddenKey, string(raw))
		if err != nil {
			logger.Warn().Err(err).Msg("Hidden watermark failed, keeping bytes unmodified")
		} else {
			out = embedded
		}
	}

	return out
}

// HashPrompt - hex sha256 of the trimmed prompt, so prompts differing only in
// surrounding whitespace produce the same hash.
func HashPrompt(prompt string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(prompt)))
	return hex.EncodeToString(sum[:])
}
