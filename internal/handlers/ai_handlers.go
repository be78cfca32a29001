package handlers

import (
	"io"
	"net/http"

	"smart-lesson/internal/genai"
	"smart-lesson/internal/models"
)

// AIHandler handles the assistant endpoints that sit outside the deck:
// lesson-plan generation, text refinement, OCR, transcription, and image
// analysis.
type AIHandler struct {
	ai *genai.Client
}

// NewAIHandler creates a new AI handler.
func NewAIHandler(ai *genai.Client) *AIHandler {
	return &AIHandler{ai: ai}
}

// LessonPlanRequest asks for a structured daily lesson plan.
type LessonPlanRequest struct {
	Subject         string `json:"subject" validate:"required"`
	Grade           string `json:"grade" validate:"required"`
	Topic           string `json:"topic" validate:"required"`
	Language        string `json:"language" validate:"required,oneof=ar en"`
	DurationMinutes int    `json:"durationMinutes" validate:"required,min=10,max=180"`
	TextbookContent string `json:"textbookContent"`
}

// GenerateLessonPlan produces a lesson plan
// POST /api/lesson-plan
func (h *AIHandler) GenerateLessonPlan(w http.ResponseWriter, r *http.Request) {
	var req LessonPlanRequest
	if !decodeValid(w, r, &req) {
		return
	}
	plan, err := h.ai.GenerateLessonPlan(r.Context(), req.Subject, req.Grade, req.Topic, req.Language, req.DurationMinutes, req.TextbookContent)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

// RefineTextRequest rewrites a lesson text segment.
type RefineTextRequest struct {
	Text        string `json:"text" validate:"required"`
	Instruction string `json:"instruction" validate:"required"`
	Subject     string `json:"subject"`
	Grade       string `json:"grade"`
	Topic       string `json:"topic"`
	Language    string `json:"language" validate:"required,oneof=ar en"`
}

// RefineTextResponse carries the rewritten text.
type RefineTextResponse struct {
	Text string `json:"text"`
}

// RefineText rewrites a text segment per the instruction
// POST /api/refine
func (h *AIHandler) RefineText(w http.ResponseWriter, r *http.Request) {
	var req RefineTextRequest
	if !decodeValid(w, r, &req) {
		return
	}
	gctx := models.GenerationContext{Topic: req.Topic, Grade: req.Grade, Language: req.Language}
	text, err := h.ai.RefineText(r.Context(), req.Text, req.Instruction, gctx, req.Subject)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, RefineTextResponse{Text: text})
}

// TextResponse carries extracted or transcribed text.
type TextResponse struct {
	Text string `json:"text"`
}

// readUploadedFile pulls one multipart file field, bounded in size.
func readUploadedFile(w http.ResponseWriter, r *http.Request, field string) ([]byte, string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "Invalid upload", http.StatusBadRequest)
		return nil, "", false
	}
	file, header, err := r.FormFile(field)
	if err != nil {
		http.Error(w, field+" file is required", http.StatusBadRequest)
		return nil, "", false
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "Failed to read upload", http.StatusBadRequest)
		return nil, "", false
	}
	return data, header.Header.Get("Content-Type"), true
}

// ExtractText runs OCR over an uploaded image
// POST /api/ocr
func (h *AIHandler) ExtractText(w http.ResponseWriter, r *http.Request) {
	data, mime, ok := readUploadedFile(w, r, "image")
	if !ok {
		return
	}
	text, err := h.ai.ExtractText(r.Context(), data, mime)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, TextResponse{Text: text})
}

// TranscribeAudio transcribes an uploaded recording
// POST /api/transcribe
func (h *AIHandler) TranscribeAudio(w http.ResponseWriter, r *http.Request) {
	data, mime, ok := readUploadedFile(w, r, "audio")
	if !ok {
		return
	}
	text, err := h.ai.TranscribeAudio(r.Context(), data, mime)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, TextResponse{Text: text})
}

// AnalyzeImage answers a free-form question about an uploaded image
// POST /api/analyze
func (h *AIHandler) AnalyzeImage(w http.ResponseWriter, r *http.Request) {
	data, mime, ok := readUploadedFile(w, r, "image")
	if !ok {
		return
	}
	prompt := r.FormValue("prompt")
	if prompt == "" {
		http.Error(w, "prompt is required", http.StatusBadRequest)
		return
	}
	text, err := h.ai.AnalyzeImage(r.Context(), data, mime, prompt)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, TextResponse{Text: text})
}
