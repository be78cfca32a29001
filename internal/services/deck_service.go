package services

import (
	"context"
	"fmt"
	"log"
	"sync"

	"smart-lesson/internal/deck"
	"smart-lesson/internal/genai"
	"smart-lesson/internal/generate"
	"smart-lesson/internal/models"
)

// DeckService owns the working deck and everything that mutates it: the
// generation pipeline, the editor, and the drag controller. One working
// deck per server; starting a new generation abandons the previous run and
// replaces the deck.
type DeckService struct {
	mu       sync.Mutex
	ai       *genai.Client
	store    *deck.Store
	editor   *deck.Editor
	drag     *deck.DragController
	pipeline *generate.Pipeline
	gctx     models.GenerationContext
	theme    string
}

// NewDeckService creates the service with an empty deck.
func NewDeckService(ai *genai.Client) *DeckService {
	s := &DeckService{
		ai:    ai,
		store: deck.NewStore(),
		theme: "default",
	}
	s.rewire(models.GenerationContext{})
	return s
}

// rewire must be called with the lock held (or before the service is
// shared). The editor and drag controller capture the generation context,
// so they are rebuilt whenever it changes.
func (s *DeckService) rewire(gctx models.GenerationContext) {
	s.gctx = gctx
	s.editor = deck.NewEditor(s.store, s.ai, gctx)
	s.drag = deck.NewDragController(s.store, s.editor)
}

// StartGeneration abandons any in-flight run and starts a new one in the
// background. Status is polled via Status.
func (s *DeckService) StartGeneration(req generate.Request) {
	s.mu.Lock()
	if s.pipeline != nil {
		s.pipeline.Abandon()
	}
	s.rewire(models.GenerationContext{
		Topic:    req.Topic,
		Grade:    req.Grade,
		Language: req.Language,
	})
	p := generate.NewPipeline(s.ai, s.store)
	s.pipeline = p
	s.mu.Unlock()

	go func() {
		if err := p.Run(context.Background(), req); err != nil {
			log.Printf("Generation failed: %v", err)
		}
	}()
}

// Status returns the state of the most recent generation run.
func (s *DeckService) Status() (generate.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pipeline == nil {
		return generate.Job{}, fmt.Errorf("no generation has been started")
	}
	return s.pipeline.Current(), nil
}

// Store exposes the working deck.
func (s *DeckService) Store() *deck.Store {
	return s.store
}

// Editor exposes the generation-backed edit operations.
func (s *DeckService) Editor() *deck.Editor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editor
}

// Drag exposes the reorder controller.
func (s *DeckService) Drag() *deck.DragController {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drag
}

// Context returns the presentation-level generation context.
func (s *DeckService) Context() models.GenerationContext {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gctx
}

// Theme returns the active theme key.
func (s *DeckService) Theme() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.theme
}

// SetTheme switches the active theme.
func (s *DeckService) SetTheme(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.theme = key
}

// Restore replaces the working deck and context from a saved presentation.
// Any in-flight generation is abandoned first.
func (s *DeckService) Restore(p *SavedPresentation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pipeline != nil {
		s.pipeline.Abandon()
		s.pipeline = nil
	}
	s.store.Replace(p.Slides)
	s.theme = p.Theme
	if s.theme == "" {
		s.theme = "default"
	}
	s.rewire(models.GenerationContext{
		Topic:    p.Topic,
		Grade:    p.Grade,
		Language: p.Language,
	})
}
