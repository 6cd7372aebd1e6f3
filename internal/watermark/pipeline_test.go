package watermark

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/pixelmint/genmark/internal/model"
	"github.com/stretchr/testify/require"
)

func testSettings() model.WatermarkSettings {
	s := model.DefaultWatermarkSettings()
	s.VisibleFontFamily = nil
	return s
}

func TestApply_EndToEnd(t *testing.T) {
	ctx := context.Background()
	src := testPNG(t, 512, 512)

	s := testSettings()
	s.VisibleTextTemplate = "{email}"

	in := Input{
		UserEmail: "u@x.com",
		Prompt:    "a cat",
		Filename:  "gen_1.png",
		Now:       time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC),
	}

	out := Apply(ctx, src, in, s)
	require.NotEqual(t, src, out)

	// hidden payload decodes under the configured key
	found, value, err := DecodeText(out, "watermark")
	require.NoError(t, err)
	require.True(t, found)

	var payload model.WatermarkPayload
	require.NoError(t, json.Unmarshal([]byte(value), &payload))
	require.Equal(t, "u@x.com", payload.User)
	require.Equal(t, "gen_1.png", payload.Filename)
	require.Equal(t, "2026-09-01T12:00:00Z", payload.TS)
	require.Equal(t, HashPrompt("a cat"), payload.PromptHash)

	// visible layer: bottom-right region is no longer the uniform source color
	img, err := imaging.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	r, g, b, _ := img.At(256, 505).RGBA()
	require.NotEqual(t, [3]uint32{100, 100, 200}, [3]uint32{r >> 8, g >> 8, b >> 8})
}

// Hidden chunk must be embedded after compositing - the reverse order loses it
func TestApply_OrderSensitivity(t *testing.T) {
	src := testPNG(t, 256, 256)

	embedded, err := EncodeText(src, "watermark", "payload")
	require.NoError(t, err)

	composited, err := ApplyVisible(embedded, "text", defaultOverlayOptions())
	require.NoError(t, err)

	found, _, err := DecodeText(composited, "watermark")
	require.NoError(t, err)
	require.False(t, found, "compositing re-encodes the PNG and strips the chunk")

	// correct order survives
	composited, err = ApplyVisible(src, "text", defaultOverlayOptions())
	require.NoError(t, err)
	withChunk, err := EncodeText(composited, "watermark", "payload")
	require.NoError(t, err)

	found, value, err := DecodeText(withChunk, "watermark")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "payload", value)
}

func TestApply_TogglesAndDegradation(t *testing.T) {
	ctx := context.Background()
	src := testPNG(t, 256, 256)
	in := Input{UserEmail: "u@x.com", Prompt: "p", Filename: "f.png"}

	tests := []struct {
		name      string
		mutate    func(*model.WatermarkSettings)
		unchanged bool
		hidden    bool
	}{
		{
			name:      "both disabled returns original bytes",
			mutate:    func(s *model.WatermarkSettings) { s.VisibleEnabled = false; s.HiddenEnabled = false },
			unchanged: true,
		},
		{
			name:   "hidden only",
			mutate: func(s *model.WatermarkSettings) { s.VisibleEnabled = false },
			hidden: true,
		},
		{
			name:   "visible only",
			mutate: func(s *model.WatermarkSettings) { s.HiddenEnabled = false },
		},
		{
			name: "empty rendered text skips visible layer",
			mutate: func(s *model.WatermarkSettings) {
				s.VisibleTextTemplate = ""
				s.HiddenEnabled = false
			},
			unchanged: true,
		},
		{
			name: "corrupt font degrades to original bytes",
			mutate: func(s *model.WatermarkSettings) {
				bad := "data:font/ttf;base64,@@broken@@"
				s.VisibleFontDataURL = &bad
				s.HiddenEnabled = false
			},
			unchanged: true,
		},
		{
			name: "hidden layer survives visible failure",
			mutate: func(s *model.WatermarkSettings) {
				bad := "data:font/ttf;base64,@@broken@@"
				s.VisibleFontDataURL = &bad
			},
			hidden: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testSettings()
			tt.mutate(&s)

			out := Apply(ctx, src, in, s)

			if tt.unchanged {
				require.Equal(t, src, out)
			} else {
				require.NotEqual(t, src, out)
			}

			if tt.hidden {
				found, _, err := DecodeText(out, s.HiddenKey)
				require.NoError(t, err)
				require.True(t, found)
			}
		})
	}
}

// Broken source bytes must pass through both layers untouched
func TestApply_BrokenSourcePassesThrough(t *testing.T) {
	src := []byte("not-a-png")
	out := Apply(context.Background(), src, Input{UserEmail: "u@x.com"}, testSettings())
	require.Equal(t, src, out)
}

func TestHashPrompt_TrimsWhitespace(t *testing.T) {
	require.Equal(t, HashPrompt("a cat"), HashPrompt("  a cat \n"))
	require.NotEqual(t, HashPrompt("a cat"), HashPrompt("a dog"))
	// sha256("a cat")
	require.Equal(t, "51e467415607798220a3776f6ae1a2a09ddc7e5dcdc955d685477b4cf05ade22", HashPrompt("a cat"))
}
