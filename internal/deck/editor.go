package deck

import (
	"context"
	"errors"
	"fmt"
	"log"

	"smart-lesson/internal/imaging"
	"smart-lesson/internal/models"
)

// AI is the slice of the generation backend the editor needs. Each call is
// single-shot; there is no retry, a failed operation is a no-op the user may
// re-trigger.
type AI interface {
	RegenerateSlide(ctx context.Context, slide models.Slide, gctx models.GenerationContext) (models.SlideDraft, error)
	InsertedSlide(ctx context.Context, prev, next *models.Slide, gctx models.GenerationContext) (models.SlideDraft, error)
	GenerateImage(ctx context.Context, prompt, aspectRatio string) (string, error)
}

// Editor drives the asynchronous deck operations that call out to the
// generation backend. Completions resolve their target slide by stable ID,
// so a reorder or delete racing the request cannot misdirect the result.
type Editor struct {
	store *Store
	ai    AI
	gctx  models.GenerationContext
}

// NewEditor wires an editor over the store with the presentation context.
func NewEditor(store *Store, ai AI, gctx models.GenerationContext) *Editor {
	return &Editor{store: store, ai: ai, gctx: gctx}
}

// Regenerate replaces the slide's title, content, notes, and image prompt
// with a fresh generation, preserving existing media and the loading flag.
// On failure the slide is left unchanged.
func (e *Editor) Regenerate(ctx context.Context, id string) error {
	slide, err := e.store.Get(id)
	if err != nil {
		return err
	}
	draft, err := e.ai.RegenerateSlide(ctx, slide, e.gctx)
	if err != nil {
		return fmt.Errorf("regenerate slide: %w", err)
	}
	err = e.store.update(id, func(sl *models.Slide) {
		sl.Title = draft.Title
		sl.Content = append([]string(nil), draft.Content...)
		sl.SpeakerNotes = draft.SpeakerNotes
		sl.ImagePrompt = draft.ImagePrompt
	})
	if errors.Is(err, ErrSlideNotFound) {
		// Slide was deleted while the request was in flight.
		log.Printf("Discarding regenerated content for removed slide %s", id)
		return nil
	}
	return err
}

// InsertGenerated asks the backend for a slide that fits between the
// neighbors of the given position and inserts it there. At either deck
// boundary the missing neighbor is passed as nil.
func (e *Editor) InsertGenerated(ctx context.Context, beforeIndex int) (models.Slide, error) {
	var prev, next *models.Slide
	if p, err := e.store.At(beforeIndex - 1); err == nil {
		prev = &p
	}
	if n, err := e.store.At(beforeIndex); err == nil {
		next = &n
	}
	draft, err := e.ai.InsertedSlide(ctx, prev, next, e.gctx)
	if err != nil {
		return models.Slide{}, fmt.Errorf("insert generated slide: %w", err)
	}
	slide := NewSlide(draft)
	e.store.InsertAt(e.insertIndex(prev, next, beforeIndex), slide)
	return slide, nil
}

// insertIndex re-resolves the insertion point after the backend call. The
// neighbors may have moved or disappeared while the request was in flight:
// the new slide goes directly before next, or directly after prev, falling
// back to the originally requested position only when both are gone.
func (e *Editor) insertIndex(prev, next *models.Slide, requested int) int {
	if next != nil {
		if i := e.store.IndexOf(next.ID); i >= 0 {
			return i
		}
	}
	if prev != nil {
		if i := e.store.IndexOf(prev.ID); i >= 0 {
			return i + 1
		}
	}
	return requested
}

// AttachAIImage clears existing media, marks the slide loading, and requests
// an image. On success the image is attached; on failure only the loading
// flag is cleared and the slide keeps no media.
func (e *Editor) AttachAIImage(ctx context.Context, id, prompt, aspectRatio string) error {
	err := e.store.update(id, func(sl *models.Slide) {
		sl.ClearMedia()
		sl.ImageLoading = true
	})
	if err != nil {
		return err
	}
	url, err := e.ai.GenerateImage(ctx, prompt, aspectRatio)
	if err != nil {
		if clearErr := e.store.SetImageLoading(id, false); clearErr != nil && !errors.Is(clearErr, ErrSlideNotFound) {
			log.Printf("Failed to clear loading flag for slide %s: %v", id, clearErr)
		}
		return fmt.Errorf("image generation: %w", err)
	}
	err = e.store.AttachImage(id, url)
	if errors.Is(err, ErrSlideNotFound) {
		log.Printf("Discarding generated image for removed slide %s", id)
		return nil
	}
	return err
}

// AttachUpload resizes and re-encodes an uploaded image client-side style
// (no backend call) and attaches the resulting data URI.
func (e *Editor) AttachUpload(id string, data []byte) error {
	dataURI, err := imaging.NormalizeUpload(data)
	if err != nil {
		return err
	}
	return e.store.AttachImage(id, dataURI)
}
