package photostore

import "net/http"

// MaxUploadSize bounds a single uploaded file.
const MaxUploadSize = 50 * 1024 * 1024

// net/http.DetectContentType handles JPEG, PNG, GIF and PDF via magic-byte
// sniffing. WebP is detected separately because the WHATWG sniff algorithm
// (and therefore the stdlib) has no WebP signature.
var imageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

func isWebP(data []byte) bool {
	return len(data) >= 12 &&
		string(data[0:4]) == "RIFF" &&
		string(data[8:12]) == "WEBP"
}

// DetectImage returns the MIME type of data and true if it is an accepted
// image format.
func DetectImage(data []byte) (string, bool) {
	if isWebP(data) {
		return "image/webp", true
	}
	mime := http.DetectContentType(data)
	if imageTypes[mime] {
		return mime, true
	}
	return "", false
}

// DetectDocument accepts PDFs as well as images.
func DetectDocument(data []byte) (string, bool) {
	if mime := http.DetectContentType(data); mime == "application/pdf" {
		return mime, true
	}
	return DetectImage(data)
}
