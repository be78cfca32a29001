package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"smart-lesson/internal/deck"
	"smart-lesson/internal/export"
	"smart-lesson/internal/genai"
	"smart-lesson/internal/generate"
	"smart-lesson/internal/models"
	"smart-lesson/internal/quota"
	"smart-lesson/internal/services"
)

var validate = validator.New()

// maxUploadBytes bounds slide image uploads (form data included).
const maxUploadBytes = 20 << 20

// DeckHandler handles HTTP requests for deck generation, editing, and
// export.
type DeckHandler struct {
	decks    *services.DeckService
	saved    *services.SavedPresentationStore
	gate     quota.Gate
	ai       *genai.Client
	exporter export.Exporter
}

// NewDeckHandler creates a new deck handler.
func NewDeckHandler(decks *services.DeckService, saved *services.SavedPresentationStore, gate quota.Gate, ai *genai.Client, exporter export.Exporter) *DeckHandler {
	return &DeckHandler{
		decks:    decks,
		saved:    saved,
		gate:     gate,
		ai:       ai,
		exporter: exporter,
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// decodeValid decodes the request body and runs struct validation.
func decodeValid(w http.ResponseWriter, r *http.Request, req interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return false
	}
	if err := validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

// upgradeRequired answers a metered request that is over its plan limit.
func upgradeRequired(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusPaymentRequired, map[string]interface{}{
		"error":   message,
		"upgrade": true,
	})
}

// GenerateRequest selects one content source for a new deck.
type GenerateRequest struct {
	Source     string             `json:"source" validate:"required,oneof=topic text lessonPlan"`
	Topic      string             `json:"topic"`
	Grade      string             `json:"grade"`
	Language   string             `json:"language" validate:"required,oneof=ar en"`
	SlideCount int                `json:"slideCount" validate:"omitempty,min=3,max=30"`
	Text       string             `json:"text"`
	Plan       *models.LessonPlan `json:"lessonPlan"`
}

// StartGeneration kicks off a deck generation run
// POST /api/generate
func (h *DeckHandler) StartGeneration(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if !decodeValid(w, r, &req) {
		return
	}
	switch req.Source {
	case "topic":
		if req.Topic == "" {
			http.Error(w, "topic is required", http.StatusBadRequest)
			return
		}
	case "text":
		if req.Text == "" {
			http.Error(w, "text is required", http.StatusBadRequest)
			return
		}
	case "lessonPlan":
		if req.Plan == nil {
			http.Error(w, "lessonPlan is required", http.StatusBadRequest)
			return
		}
	}
	if req.SlideCount == 0 {
		req.SlideCount = 10
	}

	ok, err := h.gate.CanGenerate()
	if err != nil {
		http.Error(w, "Failed to check quota", http.StatusInternalServerError)
		return
	}
	if !ok {
		upgradeRequired(w, "Generation limit reached. Upgrade your plan to create more presentations.")
		return
	}

	genReq := generate.Request{
		Topic:      req.Topic,
		Grade:      req.Grade,
		Language:   req.Language,
		SlideCount: req.SlideCount,
	}
	if req.Source == "text" {
		genReq.Text = req.Text
	}
	if req.Source == "lessonPlan" {
		genReq.Plan = req.Plan
		if genReq.Topic == "" {
			genReq.Topic = req.Plan.LessonTitle
		}
		if genReq.Grade == "" {
			genReq.Grade = req.Plan.Grade
		}
	}

	h.decks.StartGeneration(genReq)
	if err := h.gate.IncrementUsage(quota.KindGeneration); err != nil {
		log.Printf("Failed to record generation usage: %v", err)
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "started"})
}

// GenerationStatus reports pipeline progress
// GET /api/generate/status
func (h *DeckHandler) GenerationStatus(w http.ResponseWriter, r *http.Request) {
	job, err := h.decks.Status()
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// DeckResponse is the full working deck.
type DeckResponse struct {
	Slides   []models.Slide `json:"slides"`
	Theme    string         `json:"theme"`
	Topic    string         `json:"topic"`
	Grade    string         `json:"grade"`
	Language string         `json:"language"`
}

// GetDeck returns the working deck
// GET /api/deck
func (h *DeckHandler) GetDeck(w http.ResponseWriter, r *http.Request) {
	gctx := h.decks.Context()
	writeJSON(w, http.StatusOK, DeckResponse{
		Slides:   h.decks.Store().Slides(),
		Theme:    h.decks.Theme(),
		Topic:    gctx.Topic,
		Grade:    gctx.Grade,
		Language: gctx.Language,
	})
}

// SetThemeRequest selects a deck theme.
type SetThemeRequest struct {
	Theme string `json:"theme" validate:"required"`
}

// SetTheme switches the deck theme
// PUT /api/deck/theme
func (h *DeckHandler) SetTheme(w http.ResponseWriter, r *http.Request) {
	var req SetThemeRequest
	if !decodeValid(w, r, &req) {
		return
	}
	if _, ok := models.Themes[req.Theme]; !ok {
		http.Error(w, "Unknown theme", http.StatusBadRequest)
		return
	}
	h.decks.SetTheme(req.Theme)
	writeJSON(w, http.StatusOK, map[string]string{"theme": req.Theme})
}

// slideError maps deck errors to HTTP status codes.
func slideError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, deck.ErrSlideNotFound):
		http.Error(w, "Slide not found", http.StatusNotFound)
	case errors.Is(err, deck.ErrNotConfirmed):
		http.Error(w, "Deletion requires confirmation", http.StatusBadRequest)
	case errors.Is(err, deck.ErrInvalidYouTubeURL):
		http.Error(w, "Could not extract a video ID from the URL", http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// UpdateSlideRequest carries the editable text fields; nil fields are left
// untouched.
type UpdateSlideRequest struct {
	Title        *string `json:"title"`
	SpeakerNotes *string `json:"speakerNotes"`
	ImagePrompt  *string `json:"imagePrompt"`
}

// UpdateSlide edits a slide's text fields
// PATCH /api/slides/{id}
func (h *DeckHandler) UpdateSlide(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req UpdateSlideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	store := h.decks.Store()
	if req.Title != nil {
		if err := store.SetTitle(id, *req.Title); err != nil {
			slideError(w, err)
			return
		}
	}
	if req.SpeakerNotes != nil {
		if err := store.SetNotes(id, *req.SpeakerNotes); err != nil {
			slideError(w, err)
			return
		}
	}
	if req.ImagePrompt != nil {
		if err := store.SetImagePrompt(id, *req.ImagePrompt); err != nil {
			slideError(w, err)
			return
		}
	}
	slide, err := store.Get(id)
	if err != nil {
		slideError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, slide)
}

// SetBulletRequest replaces one bullet's text.
type SetBulletRequest struct {
	Index int    `json:"index" validate:"min=0"`
	Text  string `json:"text"`
}

// SetBullet replaces a bullet point
// PUT /api/slides/{id}/bullets
func (h *DeckHandler) SetBullet(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req SetBulletRequest
	if !decodeValid(w, r, &req) {
		return
	}
	if err := h.decks.Store().SetBullet(id, req.Index, req.Text); err != nil {
		slideError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// AddBullet appends an empty bullet
// POST /api/slides/{id}/bullets
func (h *DeckHandler) AddBullet(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.decks.Store().AddBullet(id); err != nil {
		slideError(w, err)
		return
	}
	slide, err := h.decks.Store().Get(id)
	if err != nil {
		slideError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, slide)
}

// RemoveBulletRequest removes one bullet by index.
type RemoveBulletRequest struct {
	Index int `json:"index" validate:"min=0"`
}

// RemoveBullet deletes a bullet point
// DELETE /api/slides/{id}/bullets
func (h *DeckHandler) RemoveBullet(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req RemoveBulletRequest
	if !decodeValid(w, r, &req) {
		return
	}
	if err := h.decks.Store().RemoveBullet(id, req.Index); err != nil {
		slideError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// InsertSlideRequest inserts a slide at a position. When generated is true
// the backend writes content that bridges the neighbors; otherwise a blank
// placeholder slide is inserted.
type InsertSlideRequest struct {
	BeforeIndex int  `json:"beforeIndex" validate:"min=0"`
	Generated   bool `json:"generated"`
}

// InsertSlide adds a slide
// POST /api/slides
func (h *DeckHandler) InsertSlide(w http.ResponseWriter, r *http.Request) {
	var req InsertSlideRequest
	if !decodeValid(w, r, &req) {
		return
	}
	if req.Generated {
		slide, err := h.decks.Editor().InsertGenerated(r.Context(), req.BeforeIndex)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		writeJSON(w, http.StatusCreated, slide)
		return
	}
	slide := h.decks.Store().InsertBlank(req.BeforeIndex, h.decks.Context().Language)
	writeJSON(w, http.StatusCreated, slide)
}

// DeleteSlideRequest confirms a slide deletion.
type DeleteSlideRequest struct {
	Confirmed bool `json:"confirmed"`
}

// DeleteSlide removes a slide after confirmation
// DELETE /api/slides/{id}
func (h *DeckHandler) DeleteSlide(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req DeleteSlideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if err := h.decks.Store().Delete(id, req.Confirmed); err != nil {
		slideError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// RegenerateSlide rewrites a slide's content in place
// POST /api/slides/{id}/regenerate
func (h *DeckHandler) RegenerateSlide(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.decks.Editor().Regenerate(r.Context(), id); err != nil {
		if errors.Is(err, deck.ErrSlideNotFound) {
			slideError(w, err)
			return
		}
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	slide, err := h.decks.Store().Get(id)
	if err != nil {
		slideError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, slide)
}

// AIImageRequest generates an image for a slide.
type AIImageRequest struct {
	Prompt      string `json:"prompt" validate:"required"`
	AspectRatio string `json:"aspectRatio" validate:"omitempty,oneof=1:1 16:9 9:16 4:3 3:4"`
}

// GenerateSlideImage attaches an AI-generated image
// POST /api/slides/{id}/image/ai
func (h *DeckHandler) GenerateSlideImage(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req AIImageRequest
	if !decodeValid(w, r, &req) {
		return
	}
	if err := h.decks.Editor().AttachAIImage(r.Context(), id, req.Prompt, req.AspectRatio); err != nil {
		if errors.Is(err, deck.ErrSlideNotFound) {
			slideError(w, err)
			return
		}
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// UploadSlideImage attaches an uploaded image, resized and re-encoded
// POST /api/slides/{id}/image/upload
func (h *DeckHandler) UploadSlideImage(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "Invalid upload", http.StatusBadRequest)
		return
	}
	file, _, err := r.FormFile("image")
	if err != nil {
		http.Error(w, "image file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "Failed to read upload", http.StatusBadRequest)
		return
	}
	if err := h.decks.Editor().AttachUpload(id, data); err != nil {
		if errors.Is(err, deck.ErrSlideNotFound) {
			slideError(w, err)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// AttachVideoRequest links a YouTube video to a slide.
type AttachVideoRequest struct {
	URL string `json:"url" validate:"required"`
}

// AttachVideo links a YouTube video
// POST /api/slides/{id}/video
func (h *DeckHandler) AttachVideo(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req AttachVideoRequest
	if !decodeValid(w, r, &req) {
		return
	}
	if err := h.decks.Store().AttachYouTube(id, req.URL); err != nil {
		slideError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// DetachMedia clears a slide's image or video
// DELETE /api/slides/{id}/media
func (h *DeckHandler) DetachMedia(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.decks.Store().DetachMedia(id); err != nil {
		slideError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// MoveSlideRequest moves a slide between positions.
type MoveSlideRequest struct {
	From int `json:"from" validate:"min=0"`
	To   int `json:"to" validate:"min=0"`
}

// MoveSlide reorders the deck directly
// POST /api/deck/reorder
func (h *DeckHandler) MoveSlide(w http.ResponseWriter, r *http.Request) {
	var req MoveSlideRequest
	if !decodeValid(w, r, &req) {
		return
	}
	if err := h.decks.Store().Move(req.From, req.To); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// DragStartRequest begins a drag with the slide being moved.
type DragStartRequest struct {
	SlideID string `json:"slideId" validate:"required"`
}

// DragStart begins a drag gesture
// POST /api/deck/drag/start
func (h *DeckHandler) DragStart(w http.ResponseWriter, r *http.Request) {
	var req DragStartRequest
	if !decodeValid(w, r, &req) {
		return
	}
	if err := h.decks.Drag().DragStart(req.SlideID); err != nil {
		slideError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// DragTargetRequest carries the hovered or dropped position.
type DragTargetRequest struct {
	TargetIndex int `json:"targetIndex" validate:"min=0"`
}

// DragOver previews the reorder while hovering
// POST /api/deck/drag/over
func (h *DeckHandler) DragOver(w http.ResponseWriter, r *http.Request) {
	var req DragTargetRequest
	if !decodeValid(w, r, &req) {
		return
	}
	if err := h.decks.Drag().DragOver(req.TargetIndex); err != nil {
		if errors.Is(err, deck.ErrNoActiveDrag) {
			http.Error(w, "No drag in progress", http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"slides":  h.decks.Store().Slides(),
	})
}

// DragDrop commits the drag. A multipart body with an "image" file is a
// file drop: with no reorder drag in progress the image is attached to the
// slide at targetIndex instead.
// POST /api/deck/drag/drop
func (h *DeckHandler) DragDrop(w http.ResponseWriter, r *http.Request) {
	var req DragTargetRequest
	var fileData []byte
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			http.Error(w, "Invalid upload", http.StatusBadRequest)
			return
		}
		idx, err := strconv.Atoi(r.FormValue("targetIndex"))
		if err != nil || idx < 0 {
			http.Error(w, "targetIndex is required", http.StatusBadRequest)
			return
		}
		req.TargetIndex = idx
		if file, _, err := r.FormFile("image"); err == nil {
			defer file.Close()
			fileData, err = io.ReadAll(file)
			if err != nil {
				http.Error(w, "Failed to read upload", http.StatusBadRequest)
				return
			}
		}
	} else if !decodeValid(w, r, &req) {
		return
	}
	if err := h.decks.Drag().Drop(req.TargetIndex, fileData); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"slides":  h.decks.Store().Slides(),
	})
}

// DragEnd cancels any drag in progress
// POST /api/deck/drag/end
func (h *DeckHandler) DragEnd(w http.ResponseWriter, r *http.Request) {
	h.decks.Drag().DragEnd()
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// SavePresentation stores the working deck in the save slot
// POST /api/deck/save
func (h *DeckHandler) SavePresentation(w http.ResponseWriter, r *http.Request) {
	gctx := h.decks.Context()
	err := h.saved.Save(&services.SavedPresentation{
		Topic:    gctx.Topic,
		Grade:    gctx.Grade,
		Language: gctx.Language,
		Theme:    h.decks.Theme(),
		Slides:   h.decks.Store().Slides(),
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// LoadPresentation restores the saved deck as the working deck
// POST /api/deck/load
func (h *DeckHandler) LoadPresentation(w http.ResponseWriter, r *http.Request) {
	saved, ok, err := h.saved.Load()
	if err != nil {
		http.Error(w, "Failed to load presentation", http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Error(w, "No saved presentation", http.StatusNotFound)
		return
	}
	h.decks.Restore(saved)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"slides":  h.decks.Store().Slides(),
		"topic":   saved.Topic,
		"theme":   h.decks.Theme(),
	})
}

// ClearSaved empties the save slot
// DELETE /api/deck/saved
func (h *DeckHandler) ClearSaved(w http.ResponseWriter, r *http.Request) {
	if err := h.saved.Clear(); err != nil {
		http.Error(w, "Failed to clear saved presentation", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// ExportDeck builds the export document and runs it through the exporter
// POST /api/deck/export
func (h *DeckHandler) ExportDeck(w http.ResponseWriter, r *http.Request) {
	ok, err := h.gate.CanDownload()
	if err != nil {
		http.Error(w, "Failed to check quota", http.StatusInternalServerError)
		return
	}
	if !ok {
		upgradeRequired(w, "Download limit reached. Upgrade your plan to export more presentations.")
		return
	}

	slides := h.decks.Store().Slides()
	if len(slides) == 0 {
		http.Error(w, "The deck is empty", http.StatusBadRequest)
		return
	}
	gctx := h.decks.Context()
	theme := models.ThemeOrDefault(h.decks.Theme())
	doc := export.Build(gctx.Topic, slides, theme, gctx.Language)

	data, ext, err := h.exporter.Export(doc)
	if err != nil {
		http.Error(w, "Export failed", http.StatusInternalServerError)
		return
	}
	if err := h.gate.IncrementUsage(quota.KindDownload); err != nil {
		log.Printf("Failed to record download usage: %v", err)
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", `attachment; filename="presentation.`+ext+`"`)
	w.Write(data)
}
