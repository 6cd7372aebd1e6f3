package watermark

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"

	"github.com/pixelmint/genmark/internal/model"
)

// PNG re-encoding through image libraries drops ancillary chunks, so the hidden
// payload lives in a hand-spliced tEXt chunk inserted right before IEND.

var pngSignature = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

var (
	ErrNotPNG       = errors.New("data is not a PNG stream")
	ErrBadChunk     = errors.New("malformed PNG chunk stream")
	ErrBadKeyword   = errors.New("tEXt keyword must be 1-79 ASCII chars without NUL")
	ErrBadTextValue = errors.New("tEXt value must not contain NUL")
)

type chunk struct {
	typ  string
	data []byte
}

func hasPNGSignature(data []byte) bool {
	return len(data) >= len(pngSignature) && bytes.Equal(data[:len(pngSignature)], pngSignature)
}

// parseChunks splits a PNG byte stream into its chunks, verifying each CRC.
func parseChunks(data []byte) ([]chunk, error) {
	if !hasPNGSignature(data) {
		return nil, ErrNotPNG
	}

	var chunks []chunk
	offset := len(pngSignature)
	for offset < len(data) {
		if offset+8 > len(data) {
			return nil, fmt.Errorf("%w: truncated chunk header at offset %d", ErrBadChunk, offset)
		}
		length := int(binary.BigEndian.Uint32(data[offset : offset+4]))
		typ := string(data[offset+4 : offset+8])
		end := offset + 8 + length + 4
		if end > len(data) {
			return nil, fmt.Errorf("%w: chunk %q extends beyond data", ErrBadChunk, typ)
		}

		payload := data[offset+8 : offset+8+length]
		wantCRC := binary.BigEndian.Uint32(data[offset+8+length : end])
		crc := crc32.NewIEEE()
		crc.Write(data[offset+4 : offset+8])
		crc.Write(payload)
		if crc.Sum32() != wantCRC {
			return nil, fmt.Errorf("%w: CRC mismatch in chunk %q", ErrBadChunk, typ)
		}

		chunks = append(chunks, chunk{typ: typ, data: payload})
		offset = end

		if typ == "IEND" {
			break
		}
	}

	if len(chunks) == 0 || chunks[len(chunks)-1].typ != "IEND" {
		return nil, fmt.Errorf("%w: missing IEND", ErrBadChunk)
	}
	return chunks, nil
}

// serializeChunks rebuilds a full PNG stream, recomputing every CRC.
func serializeChunks(chunks []chunk) []byte {
	size := len(pngSignature)
	for _, c := range chunks {
		size += 12 + len(c.data)
	}

	out := make([]byte, 0, size)
	out = append(out, pngSignature...)
	for _, c := range chunks {
		var header [8]byte
		binary.BigEndian.PutUint32(header[:4], uint32(len(c.data)))
		copy(header[4:], c.typ)
		out = append(out, header[:]...)
		out = append(out, c.data...)

		crc := crc32.NewIEEE()
		crc.Write([]byte(c.typ))
		crc.Write(c.data)
		var sum [4]byte
		binary.BigEndian.PutUint32(sum[:], crc.Sum32())
		out = append(out, sum[:]...)
	}
	return out
}

func validateKeyword(key string) error {
	if len(key) == 0 || len(key) > 79 {
		return ErrBadKeyword
	}
	for i := 0; i < len(key); i++ {
		if key[i] == 0x00 || key[i] > 0x7F {
			return ErrBadKeyword
		}
	}
	return nil
}

// EncodeText inserts one tEXt chunk (keyword=key, text=value) immediately
// before IEND and re-serializes the stream. The input bytes are not modified.
func EncodeText(src []byte, key, value string) ([]byte, error) {
	if err := validateKeyword(key); err != nil {
		return nil, err
	}
	if bytes.IndexByte([]byte(value), 0x00) >= 0 {
		return nil, ErrBadTextValue
	}

	chunks, err := parseChunks(src)
	if err != nil {
		return nil, fmt.Errorf("parse PNG chunks: %w", err)
	}

	payload := make([]byte, 0, len(key)+1+len(value))
	payload = append(payload, key...)
	payload = append(payload, 0x00)
	payload = append(payload, value...)

	// IEND is guaranteed last by parseChunks
	withText := make([]chunk, 0, len(chunks)+1)
	withText = append(withText, chunks[:len(chunks)-1]...)
	withText = append(withText, chunk{typ: "tEXt", data: payload})
	withText = append(withText, chunks[len(chunks)-1])

	return serializeChunks(withText), nil
}

// ListText decodes every tEXt chunk in the stream for diagnostic display.
// Malformed individual chunks are skipped, a malformed stream is an error.
func ListText(src []byte) ([]model.TextChunk, error) {
	chunks, err := parseChunks(src)
	if err != nil {
		return nil, fmt.Errorf("parse PNG chunks: %w", err)
	}

	decoded := make([]model.TextChunk, 0, 1)
	for _, c := range chunks {
		if c.typ != "tEXt" {
			continue
		}
		sep := bytes.IndexByte(c.data, 0x00)
		if sep <= 0 {
			continue
		}
		decoded = append(decoded, model.TextChunk{
			Key:  string(c.data[:sep]),
			Text: string(c.data[sep+1:]),
		})
	}
	return decoded, nil
}

// DecodeText returns the value of the first tEXt chunk whose keyword equals key.
func DecodeText(src []byte, key string) (found bool, value string, err error) {
	decoded, err := ListText(src)
	if err != nil {
		return false, "", err
	}
	for _, d := range decoded {
		if d.Key == key {
			return true, d.Text, nil
		}
	}
	return false, "", nil
}
