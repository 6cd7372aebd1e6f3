package watermark

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"
)

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 100, G: 100, B: 200, A: 255})
		}
	}

	var buf bytes.Buffer
	err := imaging.Encode(&buf, img, imaging.PNG)
	require.NoError(t, err)

	return buf.Bytes()
}

func TestEncodeDecodeText_RoundTrip(t *testing.T) {
	src := testPNG(t, 32, 32)

	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "plain", key: "watermark", value: "hello"},
		{name: "json value", key: "watermark", value: `{"user":"a@b.com","ts":"T"}`},
		{name: "utf8 value", key: "wm", value: "наклейка • 透かし"},
		{name: "empty value", key: "k", value: ""},
		{name: "long key", key: "some-diagnostic-keyword-under-79-chars", value: "v"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := EncodeText(src, tt.key, tt.value)
			require.NoError(t, err)

			found, value, err := DecodeText(out, tt.key)
			require.NoError(t, err)
			require.True(t, found)
			require.Equal(t, tt.value, value)

			// result must still be a decodable PNG
			_, err = imaging.Decode(bytes.NewReader(out))
			require.NoError(t, err)
		})
	}
}

func TestEncodeText_InvalidInput(t *testing.T) {
	src := testPNG(t, 16, 16)

	tests := []struct {
		name  string
		src   []byte
		key   string
		value string
	}{
		{name: "not a PNG", src: []byte("definitely not a png"), key: "k", value: "v"},
		{name: "truncated stream", src: src[:len(src)-6], key: "k", value: "v"},
		{name: "empty key", src: src, key: "", value: "v"},
		{name: "non-ASCII key", src: src, key: "ключ", value: "v"},
		{name: "NUL in value", src: src, key: "k", value: "a\x00b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := EncodeText(tt.src, tt.key, tt.value)
			require.Error(t, err)
		})
	}
}

func TestDecodeText_KeyMismatch(t *testing.T) {
	src := testPNG(t, 16, 16)

	out, err := EncodeText(src, "watermark", "v")
	require.NoError(t, err)

	found, _, err := DecodeText(out, "other-key")
	require.NoError(t, err)
	require.False(t, found)
}

func TestDecodeText_CorruptStream(t *testing.T) {
	_, _, err := DecodeText([]byte("broken"), "watermark")
	require.Error(t, err)
}

func TestListText_MultipleChunks(t *testing.T) {
	src := testPNG(t, 16, 16)

	out, err := EncodeText(src, "first", "1")
	require.NoError(t, err)
	out, err = EncodeText(out, "second", "2")
	require.NoError(t, err)

	decoded, err := ListText(out)
	require.NoError(t, err)
	require.Len(t, decoded, 2)
	require.Equal(t, "first", decoded[0].Key)
	require.Equal(t, "1", decoded[0].Text)
	require.Equal(t, "second", decoded[1].Key)
	require.Equal(t, "2", decoded[1].Text)
}

// Tampering with the embedded payload must break the CRC check
func TestParseChunks_DetectsTampering(t *testing.T) {
	src := testPNG(t, 16, 16)

	out, err := EncodeText(src, "watermark", "original")
	require.NoError(t, err)

	idx := bytes.Index(out, []byte("original"))
	require.Positive(t, idx)
	out[idx] = 'X'

	_, _, err = DecodeText(out, "watermark")
	require.ErrorIs(t, err, ErrBadChunk)
}
