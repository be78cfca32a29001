package deck

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"smart-lesson/internal/models"
)

// ErrSlideNotFound is returned when no slide with the given ID exists. Async
// completions treat it as "deleted while in flight" and discard their result.
var ErrSlideNotFound = errors.New("slide not found")

// ErrNotConfirmed is returned when a destructive operation lacks the
// confirmed flag.
var ErrNotConfirmed = errors.New("deletion not confirmed")

// Store is the in-memory slide deck: the single source of truth mutated by
// the generation pipeline, the editing operations, and the drag controller.
// All mutations go through its API; there is no minimum-slide guard, a deck
// may be edited down to zero slides.
type Store struct {
	mu     sync.RWMutex
	slides []models.Slide
}

// NewStore creates an empty deck.
func NewStore() *Store {
	return &Store{}
}

// NewSlide builds a slide with a fresh stable identity.
func NewSlide(draft models.SlideDraft) models.Slide {
	return models.Slide{
		ID:           uuid.NewString(),
		Title:        draft.Title,
		Content:      append([]string(nil), draft.Content...),
		SpeakerNotes: draft.SpeakerNotes,
		ImagePrompt:  draft.ImagePrompt,
		Duration:     draft.Duration,
	}
}

// Replace swaps the whole deck for the given slides.
func (s *Store) Replace(slides []models.Slide) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slides = make([]models.Slide, 0, len(slides))
	for _, sl := range slides {
		s.slides = append(s.slides, sl.Clone())
	}
}

// Slides returns a deep copy of the deck in presentation order.
func (s *Store) Slides() []models.Slide {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Slide, 0, len(s.slides))
	for _, sl := range s.slides {
		out = append(out, sl.Clone())
	}
	return out
}

// Len returns the number of slides.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.slides)
}

// Get returns a copy of the slide with the given ID.
func (s *Store) Get(id string) (models.Slide, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOf(id)
	if i < 0 {
		return models.Slide{}, fmt.Errorf("%w: %s", ErrSlideNotFound, id)
	}
	return s.slides[i].Clone(), nil
}

// At returns a copy of the slide at the given position.
func (s *Store) At(index int) (models.Slide, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if index < 0 || index >= len(s.slides) {
		return models.Slide{}, fmt.Errorf("slide index %d out of range", index)
	}
	return s.slides[index].Clone(), nil
}

// IndexOf returns the current position of a slide, or -1.
func (s *Store) IndexOf(id string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexOf(id)
}

// indexOf must be called with the lock held.
func (s *Store) indexOf(id string) int {
	for i := range s.slides {
		if s.slides[i].ID == id {
			return i
		}
	}
	return -1
}

// update applies fn to the slide with the given ID under the lock. Updates
// are keyed by stable identity, never by a captured index, so completions of
// async operations land on the right slide after a reorder.
func (s *Store) update(id string, fn func(*models.Slide)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrSlideNotFound, id)
	}
	fn(&s.slides[i])
	return nil
}

// SetTitle replaces the slide title.
func (s *Store) SetTitle(id, title string) error {
	return s.update(id, func(sl *models.Slide) { sl.Title = title })
}

// SetBullet replaces one content line.
func (s *Store) SetBullet(id string, bullet int, text string) error {
	var rangeErr error
	err := s.update(id, func(sl *models.Slide) {
		if bullet < 0 || bullet >= len(sl.Content) {
			rangeErr = fmt.Errorf("bullet index %d out of range", bullet)
			return
		}
		sl.Content[bullet] = text
	})
	if err != nil {
		return err
	}
	return rangeErr
}

// AddBullet appends an empty content line.
func (s *Store) AddBullet(id string) error {
	return s.update(id, func(sl *models.Slide) { sl.Content = append(sl.Content, "") })
}

// RemoveBullet deletes one content line.
func (s *Store) RemoveBullet(id string, bullet int) error {
	var rangeErr error
	err := s.update(id, func(sl *models.Slide) {
		if bullet < 0 || bullet >= len(sl.Content) {
			rangeErr = fmt.Errorf("bullet index %d out of range", bullet)
			return
		}
		sl.Content = append(sl.Content[:bullet], sl.Content[bullet+1:]...)
	})
	if err != nil {
		return err
	}
	return rangeErr
}

// SetNotes replaces the speaker notes.
func (s *Store) SetNotes(id, notes string) error {
	return s.update(id, func(sl *models.Slide) { sl.SpeakerNotes = notes })
}

// SetImagePrompt replaces the image generation hint.
func (s *Store) SetImagePrompt(id, prompt string) error {
	return s.update(id, func(sl *models.Slide) { sl.ImagePrompt = prompt })
}

// SetImageLoading flips the transient image-fetch flag.
func (s *Store) SetImageLoading(id string, loading bool) error {
	return s.update(id, func(sl *models.Slide) { sl.ImageLoading = loading })
}

// InsertAt places a slide at the given position, clamping to the deck bounds.
func (s *Store) InsertAt(index int, slide models.Slide) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 {
		index = 0
	}
	if index > len(s.slides) {
		index = len(s.slides)
	}
	s.slides = append(s.slides, models.Slide{})
	copy(s.slides[index+1:], s.slides[index:])
	s.slides[index] = slide.Clone()
}

// InsertBlank inserts a default-empty slide at the given position and
// returns it. Placeholder text follows the presentation language.
func (s *Store) InsertBlank(index int, lang string) models.Slide {
	title, bullet := "New Slide", "New point"
	if lang == "ar" {
		title, bullet = "شريحة جديدة", "نقطة جديدة"
	}
	slide := models.Slide{
		ID:      uuid.NewString(),
		Title:   title,
		Content: []string{bullet},
	}
	s.InsertAt(index, slide)
	return slide
}

// Delete removes the slide with the given ID. The interactive surface asks
// the user first; the confirmed flag carries that precondition here.
func (s *Store) Delete(id string, confirmed bool) error {
	if !confirmed {
		return ErrNotConfirmed
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrSlideNotFound, id)
	}
	s.slides = append(s.slides[:i], s.slides[i+1:]...)
	return nil
}

// Move extracts the slide at from and reinserts it at to, preserving the
// relative order of all other slides. Out-of-range positions are rejected;
// from == to is a no-op.
func (s *Store) Move(from, to int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if from < 0 || from >= len(s.slides) {
		return fmt.Errorf("move source %d out of range", from)
	}
	if to < 0 || to >= len(s.slides) {
		return fmt.Errorf("move target %d out of range", to)
	}
	if from == to {
		return nil
	}
	slide := s.slides[from]
	rest := append(s.slides[:from], s.slides[from+1:]...)
	rest = append(rest, models.Slide{})
	copy(rest[to+1:], rest[to:])
	rest[to] = slide
	s.slides = rest
	return nil
}
