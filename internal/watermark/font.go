package watermark

import (
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// Typeface resolution order: embedded data URL, then a system font matching the
// requested family, then the bundled Go Regular. Only the data-URL branch can
// fail - corrupt admin-supplied font data must surface as an error so the
// compositor can fall back to unmodified bytes.

var systemFontPaths = []string{
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/truetype/inter/Inter-Regular.ttf",
	"/usr/share/fonts/TTF/DejaVuSans.ttf",
	"/usr/share/fonts/TTF/arial.ttf",
	"/System/Library/Fonts/Helvetica.ttc",
	"/Library/Fonts/Arial.ttf",
	"/Windows/Fonts/arial.ttf",
}

func resolveFace(dataURL, family string, size float64) (font.Face, error) {
	if dataURL != "" {
		raw, err := decodeFontDataURL(dataURL)
		if err != nil {
			return nil, err
		}
		return newFace(raw, size)
	}

	if raw := lookupFamily(family); raw != nil {
		if face, err := newFace(raw, size); err == nil {
			return face, nil
		}
	}

	return newFace(goregular.TTF, size)
}

func newFace(raw []byte, size float64) (font.Face, error) {
	parsed, err := opentype.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse font data: %w", err)
	}

	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("build font face: %w", err)
	}
	return face, nil
}

// decodeFontDataURL accepts "data:font/ttf;base64,..." style URLs as stored in
// the settings row, or a bare base64 string.
func decodeFontDataURL(dataURL string) ([]byte, error) {
	payload := dataURL
	if strings.HasPrefix(dataURL, "data:") {
		idx := strings.Index(dataURL, "base64,")
		if idx < 0 {
			return nil, fmt.Errorf("font data URL is not base64-encoded")
		}
		payload = dataURL[idx+len("base64,"):]
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("decode font data URL: %w", err)
	}
	return raw, nil
}

// lookupFamily tries to find a system font file matching the first name of a
// CSS-style family list ("Inter, Arial, sans-serif"). Best effort only.
func lookupFamily(family string) []byte {
	if family == "" {
		return nil
	}

	names := strings.Split(family, ",")
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" || name == "sans-serif" || name == "serif" || name == "monospace" {
			continue
		}
		name = strings.ReplaceAll(name, " ", "")
		for _, path := range systemFontPaths {
			base := strings.ToLower(path[strings.LastIndex(path, "/")+1:])
			if !strings.Contains(strings.ReplaceAll(base, "-", ""), name) {
				continue
			}
			if raw, err := os.ReadFile(path); err == nil {
				return raw
			}
		}
	}
	return nil
}
