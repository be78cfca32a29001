package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

// SetupRoutes wires all HTTP and websocket routes.
func SetupRoutes(deckHandler *DeckHandler, aiHandler *AIHandler, liveHandler *LiveHandler) *mux.Router {
	router := mux.NewRouter()

	api := router.PathPrefix("/api").Subrouter()

	// Generation
	api.HandleFunc("/generate", deckHandler.StartGeneration).Methods(http.MethodPost)
	api.HandleFunc("/generate/status", deckHandler.GenerationStatus).Methods(http.MethodGet)

	// Deck
	api.HandleFunc("/deck", deckHandler.GetDeck).Methods(http.MethodGet)
	api.HandleFunc("/deck/theme", deckHandler.SetTheme).Methods(http.MethodPut)
	api.HandleFunc("/deck/reorder", deckHandler.MoveSlide).Methods(http.MethodPost)
	api.HandleFunc("/deck/drag/start", deckHandler.DragStart).Methods(http.MethodPost)
	api.HandleFunc("/deck/drag/over", deckHandler.DragOver).Methods(http.MethodPost)
	api.HandleFunc("/deck/drag/drop", deckHandler.DragDrop).Methods(http.MethodPost)
	api.HandleFunc("/deck/drag/end", deckHandler.DragEnd).Methods(http.MethodPost)
	api.HandleFunc("/deck/save", deckHandler.SavePresentation).Methods(http.MethodPost)
	api.HandleFunc("/deck/load", deckHandler.LoadPresentation).Methods(http.MethodPost)
	api.HandleFunc("/deck/saved", deckHandler.ClearSaved).Methods(http.MethodDelete)
	api.HandleFunc("/deck/export", deckHandler.ExportDeck).Methods(http.MethodPost)

	// Slides
	api.HandleFunc("/slides", deckHandler.InsertSlide).Methods(http.MethodPost)
	api.HandleFunc("/slides/{id}", deckHandler.UpdateSlide).Methods(http.MethodPatch)
	api.HandleFunc("/slides/{id}", deckHandler.DeleteSlide).Methods(http.MethodDelete)
	api.HandleFunc("/slides/{id}/bullets", deckHandler.SetBullet).Methods(http.MethodPut)
	api.HandleFunc("/slides/{id}/bullets", deckHandler.AddBullet).Methods(http.MethodPost)
	api.HandleFunc("/slides/{id}/bullets", deckHandler.RemoveBullet).Methods(http.MethodDelete)
	api.HandleFunc("/slides/{id}/regenerate", deckHandler.RegenerateSlide).Methods(http.MethodPost)
	api.HandleFunc("/slides/{id}/image/ai", deckHandler.GenerateSlideImage).Methods(http.MethodPost)
	api.HandleFunc("/slides/{id}/image/upload", deckHandler.UploadSlideImage).Methods(http.MethodPost)
	api.HandleFunc("/slides/{id}/video", deckHandler.AttachVideo).Methods(http.MethodPost)
	api.HandleFunc("/slides/{id}/media", deckHandler.DetachMedia).Methods(http.MethodDelete)

	// Assistant
	api.HandleFunc("/lesson-plan", aiHandler.GenerateLessonPlan).Methods(http.MethodPost)
	api.HandleFunc("/refine", aiHandler.RefineText).Methods(http.MethodPost)
	api.HandleFunc("/ocr", aiHandler.ExtractText).Methods(http.MethodPost)
	api.HandleFunc("/transcribe", aiHandler.TranscribeAudio).Methods(http.MethodPost)
	api.HandleFunc("/analyze", aiHandler.AnalyzeImage).Methods(http.MethodPost)

	// Live lesson
	api.HandleFunc("/live/plan", liveHandler.SetPlan).Methods(http.MethodPut)
	api.HandleFunc("/live/steps", liveHandler.Steps).Methods(http.MethodGet)
	router.HandleFunc("/ws/live", liveHandler.Connect)

	return router
}
