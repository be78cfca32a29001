package services

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"smart-lesson/internal/models"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	schema := []string{
		`CREATE TABLE presentation_slot (
			slot_key TEXT PRIMARY KEY,
			payload TEXT NOT NULL,
			saved_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE usage_counters (
			kind TEXT PRIMARY KEY,
			used INTEGER NOT NULL DEFAULT 0,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`,
	}
	for _, stmt := range schema {
		if _, err := database.Exec(stmt); err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}
	return database
}

func testPresentation() *SavedPresentation {
	return &SavedPresentation{
		Topic:    "Photosynthesis",
		Grade:    "Grade 7",
		Language: "en",
		Theme:    "ocean",
		Slides: []models.Slide{
			{ID: "s1", Title: "Intro", Content: []string{"one"}},
			{ID: "s2", Title: "Body", Content: []string{"two"}},
		},
	}
}

func TestSaveLoadRoundtrip(t *testing.T) {
	store := NewSavedPresentationStore(newTestDB(t))

	if err := store.Save(testPresentation()); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, ok, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !ok {
		t.Fatal("Load found nothing after Save")
	}
	if got.Topic != "Photosynthesis" || got.Theme != "ocean" {
		t.Errorf("loaded = %+v", got)
	}
	if len(got.Slides) != 2 || got.Slides[0].ID != "s1" {
		t.Errorf("slides = %+v", got.Slides)
	}
	if got.SavedAt.IsZero() {
		t.Error("SavedAt was not stamped")
	}
}

func TestSaveOverwritesSlot(t *testing.T) {
	store := NewSavedPresentationStore(newTestDB(t))
	if err := store.Save(testPresentation()); err != nil {
		t.Fatalf("Save: %v", err)
	}

	second := testPresentation()
	second.Topic = "The Water Cycle"
	if err := store.Save(second); err != nil {
		t.Fatalf("second Save: %v", err)
	}

	got, ok, err := store.Load()
	if err != nil || !ok {
		t.Fatalf("Load: ok=%v err=%v", ok, err)
	}
	if got.Topic != "The Water Cycle" {
		t.Errorf("Topic = %q, want the overwritten value", got.Topic)
	}
}

func TestSaveRejectsEmptyDeck(t *testing.T) {
	store := NewSavedPresentationStore(newTestDB(t))
	if err := store.Save(&SavedPresentation{Topic: "empty"}); err == nil {
		t.Error("expected error for empty deck")
	}
}

func TestLoadEmptySlot(t *testing.T) {
	store := NewSavedPresentationStore(newTestDB(t))
	_, ok, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if ok {
		t.Error("Load reported a presentation in an empty slot")
	}
}

func TestCorruptPayloadTreatedAsAbsentAndCleared(t *testing.T) {
	database := newTestDB(t)
	store := NewSavedPresentationStore(database)

	if _, err := database.Exec(
		`INSERT INTO presentation_slot (slot_key, payload) VALUES (?, ?)`,
		"saved_presentation", "{not valid json"); err != nil {
		t.Fatalf("seed corrupt payload: %v", err)
	}

	_, ok, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if ok {
		t.Error("corrupt payload was reported as present")
	}

	var count int
	if err := database.QueryRow(`SELECT COUNT(*) FROM presentation_slot`).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Error("corrupt slot was not cleared")
	}
}

func TestClear(t *testing.T) {
	store := NewSavedPresentationStore(newTestDB(t))
	if err := store.Save(testPresentation()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, ok, _ := store.Load(); ok {
		t.Error("slot still occupied after Clear")
	}
}
