package ocr_test

import (
	"testing"

	"github.com/anerudhh/Realistly-mvp/internal/ocr"
)

func TestIsSupportedImage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		filename string
		mimeType string
		want     bool
	}{
		{name: "jpeg by mime", filename: "upload.bin", mimeType: "image/jpeg", want: true},
		{name: "png by extension", filename: "IMG-20231225-WA0001.png", mimeType: "", want: true},
		{name: "webp", filename: "photo.webp", mimeType: "image/webp", want: true},
		{name: "tiff by extension", filename: "scan.TIFF", mimeType: "", want: true},
		{name: "bmp", filename: "shot.bmp", mimeType: "application/octet-stream", want: true},
		{name: "mime with parameters", filename: "x", mimeType: "image/png; charset=binary", want: true},
		{name: "gif rejected", filename: "anim.gif", mimeType: "image/gif", want: false},
		{name: "pdf rejected", filename: "doc.pdf", mimeType: "application/pdf", want: false},
		{name: "no hints", filename: "mystery", mimeType: "", want: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := ocr.IsSupportedImage(tc.filename, tc.mimeType); got != tc.want {
				t.Errorf("IsSupportedImage(%q, %q) = %v, want %v", tc.filename, tc.mimeType, got, tc.want)
			}
		})
	}
}

func TestMIMETypeFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		filename string
		want     string
	}{
		{filename: "a.png", want: "image/png"},
		{filename: "a.webp", want: "image/webp"},
		{filename: "a.tif", want: "image/tiff"},
		{filename: "a.bmp", want: "image/bmp"},
		{filename: "a.jpg", want: "image/jpeg"},
		{filename: "unknown", want: "image/jpeg"},
	}

	for _, tc := range tests {
		if got := ocr.MIMETypeFor(tc.filename); got != tc.want {
			t.Errorf("MIMETypeFor(%q) = %q, want %q", tc.filename, got, tc.want)
		}
	}
}
