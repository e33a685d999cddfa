// Package ocr recovers text from listing screenshots and photos. The
// production implementation sends the image to Gemini vision; the Reader
// interface keeps the pipeline testable without network access.
package ocr

import (
	"context"
	"mime"
	"path/filepath"
	"strings"
)

// Reader extracts the visible text from an image.
type Reader interface {
	ExtractText(ctx context.Context, imageData []byte, mimeType string) (string, error)
}

// Image formats the OCR path accepts.
var supportedMIMETypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/tiff": true,
	"image/bmp":  true,
}

var supportedExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true,
	".webp": true, ".tif": true, ".tiff": true, ".bmp": true,
}

// IsSupportedImage reports whether a file can go through OCR, judged by
// declared MIME type first and file extension as a fallback.
func IsSupportedImage(filename, mimeType string) bool {
	if mimeType != "" {
		base, _, err := mime.ParseMediaType(mimeType)
		if err == nil && supportedMIMETypes[base] {
			return true
		}
	}
	return supportedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// MIMETypeFor guesses the MIME type from a filename, defaulting to JPEG
// when the extension is unknown.
func MIMETypeFor(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".tif", ".tiff":
		return "image/tiff"
	case ".bmp":
		return "image/bmp"
	default:
		return "image/jpeg"
	}
}
