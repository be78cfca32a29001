package handlers

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"smart-lesson/internal/export"
	"smart-lesson/internal/models"
	"smart-lesson/internal/services"
)

func newDropFixture(t *testing.T) (*DeckHandler, *services.DeckService) {
	t.Helper()
	decks := services.NewDeckService(nil)
	decks.Store().Replace([]models.Slide{
		{ID: "s1", Title: "a"},
		{ID: "s2", Title: "b"},
	})
	h := NewDeckHandler(decks, nil, nil, nil, export.JSONExporter{})
	return h, decks
}

func pngUpload(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	img.Set(0, 0, color.RGBA{R: 0xff, A: 0xff})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestDragDropFileAttachesImage(t *testing.T) {
	h, decks := newDropFixture(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("targetIndex", "1"); err != nil {
		t.Fatalf("write field: %v", err)
	}
	fw, err := mw.CreateFormFile("image", "drop.png")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write(pngUpload(t)); err != nil {
		t.Fatalf("write file: %v", err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/deck/drag/drop", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.DragDrop(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	slide, err := decks.Store().Get("s2")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !strings.HasPrefix(slide.ImageURL, "data:image/png;base64,") {
		t.Errorf("dropped file was not attached, ImageURL = %q", slide.ImageURL)
	}
}

func TestDragDropJSONCommitsReorder(t *testing.T) {
	h, decks := newDropFixture(t)
	if err := decks.Drag().DragStart("s1"); err != nil {
		t.Fatalf("DragStart: %v", err)
	}
	if err := decks.Drag().DragOver(1); err != nil {
		t.Fatalf("DragOver: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/deck/drag/drop",
		strings.NewReader(`{"targetIndex": 1}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.DragDrop(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if got := decks.Store().Slides(); got[0].ID != "s2" || got[1].ID != "s1" {
		t.Errorf("order = %s,%s after drop", got[0].ID, got[1].ID)
	}
}

func TestDragDropMultipartRequiresTargetIndex(t *testing.T) {
	h, _ := newDropFixture(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/deck/drag/drop", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.DragDrop(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
