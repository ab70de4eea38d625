package photostore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var (
	jpegHeader = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}
	pngHeader  = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n'}
	gifHeader  = []byte("GIF89a")
	webpHeader = []byte{'R', 'I', 'F', 'F', 0x00, 0x00, 0x00, 0x00, 'W', 'E', 'B', 'P'}
	pdfHeader  = []byte("%PDF-1.7\n")
)

func TestDetectImage(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		mime string
		ok   bool
	}{
		{"jpeg", jpegHeader, "image/jpeg", true},
		{"png", pngHeader, "image/png", true},
		{"gif", gifHeader, "image/gif", true},
		{"webp", webpHeader, "image/webp", true},
		{"pdf is not an image", pdfHeader, "", false},
		{"text", []byte("hello world"), "", false},
		{"riff but not webp", []byte("RIFF\x00\x00\x00\x00WAVE"), "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mime, ok := DetectImage(tt.data)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.mime, mime)
		})
	}
}

func TestDetectDocument(t *testing.T) {
	mime, ok := DetectDocument(pdfHeader)
	assert.True(t, ok)
	assert.Equal(t, "application/pdf", mime)

	mime, ok = DetectDocument(pngHeader)
	assert.True(t, ok)
	assert.Equal(t, "image/png", mime)

	_, ok = DetectDocument([]byte("<html></html>"))
	assert.False(t, ok)
}

func TestExtRoundTrip(t *testing.T) {
	assert.Equal(t, ".pdf", Ext("application/pdf"))
	assert.Equal(t, ".bin", Ext("text/plain"))
	assert.Equal(t, "image/webp", MimeType(".webp"))
	assert.Equal(t, "application/octet-stream", MimeType(".exe"))
}
