package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"
)

func encodedPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func decodeDataURI(t *testing.T, uri string) image.Image {
	t.Helper()
	const prefix = "data:image/jpeg;base64,"
	if !strings.HasPrefix(uri, prefix) {
		t.Fatalf("unexpected data URI prefix: %.40s", uri)
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, prefix))
	if err != nil {
		t.Fatalf("decode base64: %v", err)
	}
	img, err := jpeg.Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("decode jpeg payload: %v", err)
	}
	return img
}

func TestNormalizeUploadKeepsSmallImages(t *testing.T) {
	uri, err := NormalizeUpload(encodedPNG(t, 800, 600))
	if err != nil {
		t.Fatalf("NormalizeUpload: %v", err)
	}
	img := decodeDataURI(t, uri)
	if img.Bounds().Dx() != 800 || img.Bounds().Dy() != 600 {
		t.Errorf("size = %dx%d, want 800x600 (no upscaling or shrinking)", img.Bounds().Dx(), img.Bounds().Dy())
	}
}

func TestNormalizeUploadCapsLongestSide(t *testing.T) {
	tests := []struct {
		name         string
		w, h         int
		wantW, wantH int
	}{
		{"wide", 3200, 1600, 1600, 800},
		{"tall", 1000, 2000, 800, 1600},
		{"square", 2000, 2000, 1600, 1600},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uri, err := NormalizeUpload(encodedPNG(t, tt.w, tt.h))
			if err != nil {
				t.Fatalf("NormalizeUpload: %v", err)
			}
			img := decodeDataURI(t, uri)
			if img.Bounds().Dx() != tt.wantW || img.Bounds().Dy() != tt.wantH {
				t.Errorf("size = %dx%d, want %dx%d", img.Bounds().Dx(), img.Bounds().Dy(), tt.wantW, tt.wantH)
			}
		})
	}
}

func TestNormalizeUploadRejectsNonImage(t *testing.T) {
	if _, err := NormalizeUpload([]byte("definitely not an image")); err == nil {
		t.Error("expected error for non-image data")
	}
}
