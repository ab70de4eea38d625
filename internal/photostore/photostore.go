// Package photostore persists uploaded binary files such as equipment photos
// and service manuals. Records in the database refer to blobs by key.
package photostore

import (
	"context"
	"io"
)

type Store interface {
	// Save writes r under a new key beginning with prefix.
	Save(ctx context.Context, prefix, mimeType string, r io.Reader) (key string, err error)
	// Get opens the blob at key and reports its MIME type.
	Get(ctx context.Context, key string) (io.ReadCloser, string, error)
	Delete(ctx context.Context, key string) error
}

var extensions = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/gif":       ".gif",
	"image/webp":      ".webp",
	"application/pdf": ".pdf",
}

// Ext returns the file extension used for mimeType.
func Ext(mimeType string) string {
	if ext, ok := extensions[mimeType]; ok {
		return ext
	}
	return ".bin"
}

// MimeType is the inverse of Ext.
func MimeType(ext string) string {
	for mime, e := range extensions {
		if e == ext {
			return mime
		}
	}
	return "application/octet-stream"
}
