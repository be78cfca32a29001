package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"smart-lesson/internal/annotate"
	"smart-lesson/internal/live"
	"smart-lesson/internal/models"
	"smart-lesson/internal/services"
	"smart-lesson/internal/tts"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Same-origin policy is handled by the reverse proxy in production.
		return true
	},
}

// LiveHandler upgrades connections into classroom live sessions. Step
// timings come from the working deck, or from a lesson plan posted ahead
// of the session.
type LiveHandler struct {
	mu     sync.Mutex
	decks  *services.DeckService
	speech *tts.Client
	plan   *models.LessonPlan
}

// NewLiveHandler creates a new live-session handler.
func NewLiveHandler(decks *services.DeckService, speech *tts.Client) *LiveHandler {
	return &LiveHandler{decks: decks, speech: speech}
}

// SetPlan stores the lesson plan used by plan-sourced sessions
// PUT /api/live/plan
func (h *LiveHandler) SetPlan(w http.ResponseWriter, r *http.Request) {
	var plan models.LessonPlan
	if err := json.NewDecoder(r.Body).Decode(&plan); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	h.mu.Lock()
	h.plan = &plan
	h.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Steps previews the step list a session would run
// GET /api/live/steps?source=deck|plan
func (h *LiveHandler) Steps(w http.ResponseWriter, r *http.Request) {
	steps, err := h.buildSteps(r.URL.Query().Get("source"))
	if err != "" {
		http.Error(w, err, http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, steps)
}

// buildSteps returns the step list, or a non-empty error message.
func (h *LiveHandler) buildSteps(source string) ([]models.LessonStep, string) {
	lang := h.decks.Context().Language
	switch source {
	case "plan":
		h.mu.Lock()
		plan := h.plan
		h.mu.Unlock()
		if plan == nil {
			return nil, "No lesson plan has been set"
		}
		return live.StepsFromPlan(plan, lang), ""
	case "", "deck":
		slides := h.decks.Store().Slides()
		if len(slides) == 0 {
			return nil, "The deck is empty"
		}
		return live.StepsFromDeck(slides), ""
	default:
		return nil, "Unknown source"
	}
}

// Connect upgrades the request and runs a live session until disconnect
// GET /ws/live?source=deck|plan
func (h *LiveHandler) Connect(w http.ResponseWriter, r *http.Request) {
	steps, errMsg := h.buildSteps(r.URL.Query().Get("source"))
	if errMsg != "" {
		http.Error(w, errMsg, http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	lang := h.decks.Context().Language
	session, err := services.NewLiveSession(conn, steps, lang, annotate.NewStore(), h.speech)
	if err != nil {
		log.Printf("Failed to start live session: %v", err)
		conn.Close()
		return
	}
	session.Run()
}
