package watermark

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/disintegration/imaging"
	"github.com/pixelmint/genmark/internal/model"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// Font size never drops below 16px - the rendering path's minimum, which also
// governs the admin preview.
const minFontSize = 16

const minPadding = 10

// OverlayOptions - visible-layer knobs, taken from the settings snapshot.
// Opacity is used as-is, callers are expected to keep it within [0,1].
type OverlayOptions struct {
	Position    model.Position
	Opacity     float64
	Bar         bool
	FontScale   float64
	FontFamily  string
	FontDataURL string
}

// ApplyVisible rasterizes the text (and optional full-width bar) onto the
// source PNG and returns the re-encoded bytes. On any failure the caller keeps
// the original bytes instead.
func ApplyVisible(src []byte, text string, opts OverlayOptions) ([]byte, error) {
	base, err := imaging.Decode(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("decode source image: %w", err)
	}

	w := base.Bounds().Dx()
	h := base.Bounds().Dy()

	padding := max(minPadding, int(math.Round(float64(w)*0.02)))
	fontSize := max(minFontSize, int(math.Round(float64(w)*opts.FontScale)))

	face, err := resolveFace(opts.FontDataURL, opts.FontFamily, float64(fontSize))
	if err != nil {
		return nil, fmt.Errorf("resolve typeface: %w", err)
	}
	defer face.Close()

	overlay := image.NewNRGBA(image.Rect(0, 0, w, h))

	top := topAnchored(opts.Position)
	if opts.Bar {
		barH := fontSize + 2*padding
		barY := h - barH
		if top {
			barY = 0
		}
		barColor := image.NewUniform(color.NRGBA{A: alphaByte(opts.Opacity)})
		draw.Draw(overlay, image.Rect(0, barY, w, barY+barH), barColor, image.Point{}, draw.Src)
	}

	drawer := font.Drawer{
		Dst:  overlay,
		Src:  image.NewUniform(color.NRGBA{R: 255, G: 255, B: 255, A: alphaByte(textAlpha(opts.Opacity))}),
		Face: face,
	}

	x := padding
	if rightAnchored(opts.Position) {
		x = w - padding - drawer.MeasureString(text).Ceil()
	}
	y := h - padding
	if top {
		y = padding + fontSize
	}
	drawer.Dot = fixed.P(x, y)
	drawer.DrawString(text)

	result := imaging.Overlay(base, overlay, image.Point{}, 1.0)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, result, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode result image: %w", err)
	}
	return buf.Bytes(), nil
}

func topAnchored(p model.Position) bool {
	return p == model.PosTopLeft || p == model.PosTopRight
}

func rightAnchored(p model.Position) bool {
	return p == model.PosTopRight || p == model.PosBottomRight
}

// textAlpha derives the text opacity from the bar opacity, saturating at 1.0
// so opacity=1 renders exactly opaque and never overshoots.
func textAlpha(opacity float64) float64 {
	return math.Min(1, opacity+0.55)
}

func alphaByte(a float64) uint8 {
	return uint8(math.Round(a * 255))
}
