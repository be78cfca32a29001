package generate

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"smart-lesson/internal/deck"
	"smart-lesson/internal/models"
)

// fakeService records the order of backend calls and lets tests fail
// specific prompts.
type fakeService struct {
	drafts     []models.SlideDraft
	contentErr error
	imageCalls []string
	failImages map[string]bool
}

func (f *fakeService) DeckFromTopic(ctx context.Context, topic, grade, lang string, slideCount int) ([]models.SlideDraft, error) {
	return f.drafts, f.contentErr
}

func (f *fakeService) DeckFromText(ctx context.Context, text, topic, grade, lang string, slideCount int) ([]models.SlideDraft, error) {
	return f.drafts, f.contentErr
}

func (f *fakeService) DeckFromPlan(ctx context.Context, plan *models.LessonPlan, lang string) ([]models.SlideDraft, error) {
	return f.drafts, f.contentErr
}

func (f *fakeService) GenerateImage(ctx context.Context, prompt, aspectRatio string) (string, error) {
	f.imageCalls = append(f.imageCalls, prompt)
	if f.failImages[prompt] {
		return "", errors.New("image backend error")
	}
	return "data:image/png;base64," + prompt, nil
}

// newTestPipeline swaps the real inter-request sleep for a counter.
func newTestPipeline(ai Service, store *deck.Store) (*Pipeline, *int) {
	p := NewPipeline(ai, store)
	sleeps := 0
	p.sleep = func(ctx context.Context, d time.Duration) error {
		sleeps++
		return ctx.Err()
	}
	return p, &sleeps
}

func draftsWithImages(n int) []models.SlideDraft {
	out := make([]models.SlideDraft, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, models.SlideDraft{
			Title:       fmt.Sprintf("slide %d", i),
			Content:     []string{"point"},
			ImagePrompt: fmt.Sprintf("prompt %d", i),
		})
	}
	return out
}

func TestRunCompletesAndAttachesImages(t *testing.T) {
	store := deck.NewStore()
	ai := &fakeService{drafts: draftsWithImages(3)}
	p, sleeps := newTestPipeline(ai, store)

	if err := p.Run(context.Background(), Request{Topic: "plants", Language: "en", SlideCount: 3}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	job := p.Current()
	if job.Status != StatusComplete {
		t.Errorf("Status = %s, want complete", job.Status)
	}
	if job.Progress != 100 {
		t.Errorf("Progress = %v, want 100", job.Progress)
	}
	if job.CompletedImages != 3 || job.TotalImages != 3 {
		t.Errorf("images %d/%d, want 3/3", job.CompletedImages, job.TotalImages)
	}
	// Delay before every request except the first.
	if *sleeps != 2 {
		t.Errorf("sleeps = %d, want 2", *sleeps)
	}
	for _, slide := range store.Slides() {
		if slide.ImageURL == "" {
			t.Errorf("slide %q has no image", slide.Title)
		}
		if slide.ImageLoading {
			t.Errorf("slide %q still marked loading", slide.Title)
		}
	}
}

func TestRunImageRequestsAreSequentialAndOrdered(t *testing.T) {
	store := deck.NewStore()
	ai := &fakeService{drafts: draftsWithImages(4)}
	p, _ := newTestPipeline(ai, store)

	if err := p.Run(context.Background(), Request{Topic: "t", Language: "en"}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := []string{"prompt 0", "prompt 1", "prompt 2", "prompt 3"}
	if len(ai.imageCalls) != len(want) {
		t.Fatalf("imageCalls = %v", ai.imageCalls)
	}
	for i := range want {
		if ai.imageCalls[i] != want[i] {
			t.Errorf("call %d = %q, want %q", i, ai.imageCalls[i], want[i])
		}
	}
}

func TestRunSkipsSlidesWithoutPrompt(t *testing.T) {
	store := deck.NewStore()
	drafts := draftsWithImages(2)
	drafts = append(drafts, models.SlideDraft{Title: "Questions?", Content: []string{""}})
	ai := &fakeService{drafts: drafts}
	p, sleeps := newTestPipeline(ai, store)

	if err := p.Run(context.Background(), Request{Topic: "t", Language: "en"}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(ai.imageCalls) != 2 {
		t.Errorf("imageCalls = %v, want 2 calls", ai.imageCalls)
	}
	if *sleeps != 1 {
		t.Errorf("sleeps = %d, want 1", *sleeps)
	}
	last, _ := store.At(2)
	if last.ImageLoading || last.ImageURL != "" {
		t.Error("promptless slide should stay imageless and not loading")
	}
	if p.Current().TotalImages != 2 {
		t.Errorf("TotalImages = %d, want 2", p.Current().TotalImages)
	}
}

func TestRunContentFailureIsAtomic(t *testing.T) {
	store := deck.NewStore()
	ai := &fakeService{contentErr: errors.New("backend down")}
	p, _ := newTestPipeline(ai, store)

	err := p.Run(context.Background(), Request{Topic: "t", Language: "en"})
	var cerr *ContentError
	if !errors.As(err, &cerr) {
		t.Fatalf("got %v, want ContentError", err)
	}
	if p.Current().Status != StatusFailed {
		t.Errorf("Status = %s, want failed", p.Current().Status)
	}
	if store.Len() != 0 {
		t.Error("failed content stage must not populate the deck")
	}
	if len(ai.imageCalls) != 0 {
		t.Error("no image requests after a content failure")
	}
}

func TestRunImageFailureIsIsolated(t *testing.T) {
	store := deck.NewStore()
	ai := &fakeService{
		drafts:     draftsWithImages(3),
		failImages: map[string]bool{"prompt 1": true},
	}
	p, _ := newTestPipeline(ai, store)

	if err := p.Run(context.Background(), Request{Topic: "t", Language: "en"}); err != nil {
		t.Fatalf("an image failure must not fail the run: %v", err)
	}
	if p.Current().Status != StatusComplete {
		t.Errorf("Status = %s, want complete", p.Current().Status)
	}

	slides := store.Slides()
	if slides[1].ImageURL != "" {
		t.Error("failed slide should have no image")
	}
	if slides[1].ImageLoading {
		t.Error("failed slide should not stay in loading state")
	}
	if slides[0].ImageURL == "" || slides[2].ImageURL == "" {
		t.Error("failures must not affect the other slides")
	}
}

func TestRunProgressFormula(t *testing.T) {
	store := deck.NewStore()
	ai := &fakeService{drafts: draftsWithImages(3)}
	p, _ := newTestPipeline(ai, store)

	var reported []float64
	req := Request{Topic: "t", Language: "en", OnProgress: func(pct float64, msg string) {
		reported = append(reported, pct)
	}}
	if err := p.Run(context.Background(), req); err != nil {
		t.Fatalf("Run: %v", err)
	}

	// 1 content step plus 3 images: 0, 25, 50, 75, 100, then the final 100.
	want := []float64{0, 25, 50, 75, 100, 100}
	if len(reported) != len(want) {
		t.Fatalf("reported %v", reported)
	}
	for i := range want {
		if reported[i] != want[i] {
			t.Errorf("report %d = %v, want %v", i, reported[i], want[i])
		}
	}
}

func TestRunImageForDeletedSlideIsDiscarded(t *testing.T) {
	store := deck.NewStore()
	ai := &fakeService{drafts: draftsWithImages(2)}
	p, _ := newTestPipeline(ai, store)

	// Delete the second slide after its content lands but before its image
	// request completes, by hooking the sleep between requests.
	p.sleep = func(ctx context.Context, d time.Duration) error {
		second, err := store.At(1)
		if err != nil {
			return nil
		}
		return store.Delete(second.ID, true)
	}

	if err := p.Run(context.Background(), Request{Topic: "t", Language: "en"}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if store.Len() != 1 {
		t.Fatalf("Len = %d, want 1", store.Len())
	}
	remaining, _ := store.At(0)
	if remaining.ImageURL == "" {
		t.Error("surviving slide should still get its image")
	}
}

func TestAbandonDiscardsLateResults(t *testing.T) {
	store := deck.NewStore()
	ai := &fakeService{drafts: draftsWithImages(2)}
	p, _ := newTestPipeline(ai, store)
	p.sleep = func(ctx context.Context, d time.Duration) error {
		p.Abandon()
		return nil
	}

	if err := p.Run(context.Background(), Request{Topic: "t", Language: "en"}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	slides := store.Slides()
	if slides[1].ImageURL != "" {
		t.Error("abandoned run must not apply later images")
	}
}
