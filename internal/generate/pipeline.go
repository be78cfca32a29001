// Package generate orchestrates deck creation: one atomic content stage,
// then a strictly sequential, rate-limit-friendly image stage with per-slide
// failure isolation.
package generate

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"smart-lesson/internal/deck"
	"smart-lesson/internal/models"
)

// Status tracks the generation job lifecycle.
type Status string

const (
	StatusPending          Status = "pending"
	StatusContentDone      Status = "content_done"
	StatusImagesInProgress Status = "images_in_progress"
	StatusComplete         Status = "complete"
	StatusFailed           Status = "failed"
)

// SourceKind names where the deck content comes from.
type SourceKind string

const (
	SourceTopic      SourceKind = "topic"
	SourceText       SourceKind = "text"
	SourceLessonPlan SourceKind = "lessonPlan"
)

// Job is a snapshot of the current generation run.
type Job struct {
	Source          SourceKind `json:"source"`
	Status          Status     `json:"status"`
	CompletedImages int        `json:"completedImageCount"`
	TotalImages     int        `json:"totalImageCount"`
	Progress        float64    `json:"progress"` // percent
	LastError       string     `json:"lastError,omitempty"`
}

// ContentError marks a Stage A failure: the whole job fails, no usable deck.
type ContentError struct {
	Err error
}

func (e *ContentError) Error() string {
	return fmt.Sprintf("generation failed: %v", e.Err)
}

func (e *ContentError) Unwrap() error { return e.Err }

// Request selects exactly one content source plus the target language.
type Request struct {
	Topic      string
	Grade      string
	Language   string
	SlideCount int
	Text       string             // non-empty selects the text source
	Plan       *models.LessonPlan // non-nil selects the lesson-plan source
	OnProgress func(percent float64, message string)
}

// Service is the generation backend consumed by the pipeline. Deck calls
// succeed or fail atomically; there is no partial-list contract.
type Service interface {
	DeckFromTopic(ctx context.Context, topic, grade, lang string, slideCount int) ([]models.SlideDraft, error)
	DeckFromText(ctx context.Context, text, topic, grade, lang string, slideCount int) ([]models.SlideDraft, error)
	DeckFromPlan(ctx context.Context, plan *models.LessonPlan, lang string) ([]models.SlideDraft, error)
	GenerateImage(ctx context.Context, prompt, aspectRatio string) (string, error)
}

// Pipeline populates a deck store from a generation request. One run at a
// time; image requests are issued one by one with a fixed delay between
// them to stay under the backend's rate limits.
type Pipeline struct {
	ai    Service
	store *deck.Store
	delay time.Duration
	sleep func(ctx context.Context, d time.Duration) error

	mu        sync.RWMutex
	job       Job
	abandoned bool
}

// NewPipeline wires a pipeline over the deck store with a 1s inter-request
// delay.
func NewPipeline(ai Service, store *deck.Store) *Pipeline {
	return &Pipeline{
		ai:    ai,
		store: store,
		delay: time.Second,
		sleep: sleepCtx,
	}
}

// sleepCtx waits for d unless the context ends first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Current returns a snapshot of the job state.
func (p *Pipeline) Current() Job {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.job
}

// Abandon stops further deck updates from in-flight work. Requests already
// issued run to completion and their results are discarded.
func (p *Pipeline) Abandon() {
	p.mu.Lock()
	p.abandoned = true
	p.mu.Unlock()
}

func (p *Pipeline) isAbandoned() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.abandoned
}

func (p *Pipeline) setJob(fn func(*Job)) {
	p.mu.Lock()
	fn(&p.job)
	p.mu.Unlock()
}

// Run executes both stages. Stage A fails atomically; each Stage B image
// request is isolated, a failed image only clears that slide's loading flag
// and the job still completes.
func (p *Pipeline) Run(ctx context.Context, req Request) error {
	source := SourceTopic
	if req.Plan != nil {
		source = SourceLessonPlan
	} else if req.Text != "" {
		source = SourceText
	}
	p.setJob(func(j *Job) {
		*j = Job{Source: source, Status: StatusPending}
	})
	report(req.OnProgress, 0, "Generating slide content...")

	drafts, err := p.generateContent(ctx, source, req)
	if err != nil {
		cerr := &ContentError{Err: err}
		p.setJob(func(j *Job) {
			j.Status = StatusFailed
			j.LastError = cerr.Error()
		})
		return cerr
	}

	slides := make([]models.Slide, 0, len(drafts))
	needImages := 0
	for _, d := range drafts {
		slide := deck.NewSlide(d)
		if slide.ImagePrompt != "" {
			slide.ImageLoading = true
			needImages++
		}
		slides = append(slides, slide)
	}
	if !p.isAbandoned() {
		p.store.Replace(slides)
	}

	totalSteps := 1 + needImages
	completed := 1
	p.setJob(func(j *Job) {
		j.Status = StatusContentDone
		j.TotalImages = needImages
		j.Progress = percent(completed, totalSteps)
	})
	report(req.OnProgress, percent(completed, totalSteps), fmt.Sprintf("Generating images (0 / %d)...", needImages))

	if needImages > 0 {
		p.setJob(func(j *Job) { j.Status = StatusImagesInProgress })
		requests := 0
		for _, slide := range slides {
			if slide.ImagePrompt == "" {
				continue
			}
			// Fixed delay before every request except the first.
			if requests > 0 {
				if err := p.sleep(ctx, p.delay); err != nil {
					break
				}
			}
			requests++
			p.generateSlideImage(ctx, slide.ID, slide.ImagePrompt)
			completed++
			p.setJob(func(j *Job) {
				j.CompletedImages = completed - 1
				j.Progress = percent(completed, totalSteps)
			})
			report(req.OnProgress, percent(completed, totalSteps),
				fmt.Sprintf("Generating images (%d / %d)...", completed-1, needImages))
		}
	}

	p.setJob(func(j *Job) {
		j.Status = StatusComplete
		j.Progress = 100
	})
	report(req.OnProgress, 100, "Done")
	return nil
}

// generateContent dispatches Stage A by source kind.
func (p *Pipeline) generateContent(ctx context.Context, source SourceKind, req Request) ([]models.SlideDraft, error) {
	switch source {
	case SourceLessonPlan:
		return p.ai.DeckFromPlan(ctx, req.Plan, req.Language)
	case SourceText:
		return p.ai.DeckFromText(ctx, req.Text, req.Topic, req.Grade, req.Language, req.SlideCount)
	default:
		return p.ai.DeckFromTopic(ctx, req.Topic, req.Grade, req.Language, req.SlideCount)
	}
}

// generateSlideImage issues one image request and applies the result by
// slide ID. Failures only clear the loading flag; the rest of the run is
// unaffected.
func (p *Pipeline) generateSlideImage(ctx context.Context, slideID, prompt string) {
	url, err := p.ai.GenerateImage(ctx, prompt, "16:9")
	if p.isAbandoned() {
		return
	}
	if err != nil {
		log.Printf("Image generation failed for slide %s: %v", slideID, err)
		if err := p.store.SetImageLoading(slideID, false); err != nil {
			log.Printf("Failed to clear loading flag for slide %s: %v", slideID, err)
		}
		return
	}
	if err := p.store.AttachImage(slideID, url); err != nil {
		log.Printf("Discarding image for slide %s: %v", slideID, err)
	}
}

func percent(completed, total int) float64 {
	if total == 0 {
		return 100
	}
	return float64(completed) / float64(total) * 100
}

func report(cb func(float64, string), pct float64, msg string) {
	if cb != nil {
		cb(pct, msg)
	}
}
