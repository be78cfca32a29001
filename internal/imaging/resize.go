// Package imaging normalizes uploaded slide images: decode, cap the longest
// side, re-encode as JPEG, and wrap the result in a data URI so the deck can
// carry it without touching disk.
package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
)

const (
	// maxDimension caps the longest side of an uploaded image.
	maxDimension = 1600
	jpegQuality  = 85
)

// NormalizeUpload decodes an uploaded image, scales it down so its longest
// side is at most 1600px (aspect preserved, never upscaled), re-encodes it
// as JPEG, and returns a data URI. Non-image data is rejected.
func NormalizeUpload(data []byte) (string, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("decode uploaded image: %w", err)
	}

	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	tw, th := fitWithin(w, h, maxDimension)

	out := src
	if tw != w || th != h {
		dst := image.NewRGBA(image.Rect(0, 0, tw, th))
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
		out = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, out, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return "", fmt.Errorf("encode jpeg: %w", err)
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// fitWithin scales (w, h) so the longest side is at most max, preserving the
// aspect ratio. Images already within bounds keep their size.
func fitWithin(w, h, max int) (int, int) {
	if w <= max && h <= max {
		return w, h
	}
	if w > h {
		return max, h * max / w
	}
	return w * max / h, max
}
