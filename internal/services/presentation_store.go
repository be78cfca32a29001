package services

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"smart-lesson/internal/models"
)

// The single save slot every deck save overwrites.
const savedSlotKey = "saved_presentation"

// SavedPresentation is the payload persisted in the save slot.
type SavedPresentation struct {
	Topic    string         `json:"topic"`
	Grade    string         `json:"grade"`
	Language string         `json:"language"`
	Theme    string         `json:"theme"`
	Slides   []models.Slide `json:"slides"`
	SavedAt  time.Time      `json:"savedAt"`
}

// SavedPresentationStore persists one presentation per installation in the
// presentation_slot table. Saving overwrites the previous entry.
type SavedPresentationStore struct {
	mu sync.Mutex
	db *sql.DB
}

// NewSavedPresentationStore creates a store over the given database handle.
func NewSavedPresentationStore(db *sql.DB) *SavedPresentationStore {
	return &SavedPresentationStore{db: db}
}

// Save overwrites the slot with the given presentation.
func (s *SavedPresentationStore) Save(p *SavedPresentation) error {
	if p == nil {
		return fmt.Errorf("presentation is required")
	}
	if len(p.Slides) == 0 {
		return fmt.Errorf("cannot save an empty deck")
	}
	p.SavedAt = time.Now().UTC()

	payload, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal presentation: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.Exec(`
		INSERT INTO presentation_slot (slot_key, payload, saved_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(slot_key) DO UPDATE SET payload = excluded.payload, saved_at = CURRENT_TIMESTAMP`,
		savedSlotKey, string(payload))
	if err != nil {
		return fmt.Errorf("failed to save presentation: %w", err)
	}

	log.Printf("Saved presentation: %d slides, topic=%q", len(p.Slides), p.Topic)
	return nil
}

// Load returns the saved presentation, or (nil, false) when the slot is
// empty. A payload that no longer parses is treated as absent and the slot
// is cleared so it cannot keep failing.
func (s *SavedPresentationStore) Load() (*SavedPresentation, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var payload string
	err := s.db.QueryRow(`SELECT payload FROM presentation_slot WHERE slot_key = ?`, savedSlotKey).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to load presentation: %w", err)
	}

	var p SavedPresentation
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		log.Printf("Saved presentation is corrupt, clearing slot: %v", err)
		if _, delErr := s.db.Exec(`DELETE FROM presentation_slot WHERE slot_key = ?`, savedSlotKey); delErr != nil {
			log.Printf("Failed to clear corrupt slot: %v", delErr)
		}
		return nil, false, nil
	}

	return &p, true, nil
}

// Clear empties the save slot.
func (s *SavedPresentationStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec(`DELETE FROM presentation_slot WHERE slot_key = ?`, savedSlotKey); err != nil {
		return fmt.Errorf("failed to clear presentation slot: %w", err)
	}
	return nil
}
