package live

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"smart-lesson/internal/models"
)

// State names the runner lifecycle. A session starts Ready (paused on step
// 0) and ends Finished when Next is called on the last step.
type State string

const (
	StateReady    State = "ready"
	StateRunning  State = "running"
	StatePaused   State = "paused"
	StateFinished State = "finished"
)

// ErrNoSteps is returned when a runner is built over an empty step list.
var ErrNoSteps = errors.New("lesson has no steps")

// Alert is the expiry notification: an audible tone plus a spoken phrase
// announcing the finished step and what comes next.
type Alert struct {
	StepTitle string `json:"stepTitle"`
	NextTitle string `json:"nextTitle,omitempty"`
	Phrase    string `json:"phrase"`
}

// Snapshot is the externally visible runner state.
type Snapshot struct {
	State            State  `json:"state"`
	StepIndex        int    `json:"stepIndex"`
	SecondsRemaining int    `json:"secondsRemaining"`
	ElapsedSeconds   int    `json:"elapsedSeconds"`
	TotalSeconds     int    `json:"totalSeconds"`
	Progress         float64 `json:"progress"` // percent of total time, clamped
}

// Runner is the live lesson state machine. A repeating 1-second tick drives
// the countdown while running; expiry pauses the runner and fires exactly
// one alert. Step navigation resets the countdown to the new step's
// duration and clears that step's annotation layer via OnStepChange.
type Runner struct {
	mu        sync.Mutex
	steps     []models.LessonStep
	lang      string
	state     State
	index     int
	remaining int
	elapsed   int
	total     int
	alerted   bool

	stop     chan struct{}
	stopOnce sync.Once

	// OnTick, OnAlert, and OnStepChange are invoked from the tick loop and
	// navigation calls without the runner lock held.
	OnTick       func(Snapshot)
	OnAlert      func(Alert)
	OnStepChange func(stepID string)
	OnFinish     func()
}

// NewRunner builds a runner positioned at step 0, paused.
func NewRunner(steps []models.LessonStep, lang string) (*Runner, error) {
	if len(steps) == 0 {
		return nil, ErrNoSteps
	}
	total := 0
	for _, s := range steps {
		total += s.DurationMinutes * 60
	}
	return &Runner{
		steps:     steps,
		lang:      lang,
		state:     StateReady,
		remaining: steps[0].DurationMinutes * 60,
		total:     total,
		stop:      make(chan struct{}),
	}, nil
}

// Start begins (or resumes) the countdown.
func (r *Runner) Start() {
	r.mu.Lock()
	if r.state == StateReady || r.state == StatePaused {
		r.state = StateRunning
	}
	snap := r.snapshot()
	r.mu.Unlock()
	r.emitTick(snap)
}

// PauseToggle flips between running and paused.
func (r *Runner) PauseToggle() {
	r.mu.Lock()
	switch r.state {
	case StateRunning:
		r.state = StatePaused
	case StateReady, StatePaused:
		r.state = StateRunning
	}
	snap := r.snapshot()
	r.mu.Unlock()
	r.emitTick(snap)
}

// Next advances to the following step, resets the countdown, clears the new
// step's annotation layer, and resumes running. On the last step it
// finishes the session instead.
func (r *Runner) Next() {
	r.mu.Lock()
	if r.state == StateFinished {
		r.mu.Unlock()
		return
	}
	if r.index >= len(r.steps)-1 {
		r.state = StateFinished
		r.mu.Unlock()
		r.Close()
		if r.OnFinish != nil {
			r.OnFinish()
		}
		return
	}
	r.index++
	r.remaining = r.steps[r.index].DurationMinutes * 60
	r.alerted = false
	r.state = StateRunning
	stepID := r.steps[r.index].ID
	snap := r.snapshot()
	r.mu.Unlock()

	if r.OnStepChange != nil {
		r.OnStepChange(stepID)
	}
	r.emitTick(snap)
}

// Prev retreats one step, resets the countdown, clears the step's
// annotation layer, and forces a pause for manual review.
func (r *Runner) Prev() {
	r.mu.Lock()
	if r.index == 0 || r.state == StateFinished {
		r.mu.Unlock()
		return
	}
	r.index--
	r.remaining = r.steps[r.index].DurationMinutes * 60
	r.alerted = false
	r.state = StatePaused
	stepID := r.steps[r.index].ID
	snap := r.snapshot()
	r.mu.Unlock()

	if r.OnStepChange != nil {
		r.OnStepChange(stepID)
	}
	r.emitTick(snap)
}

// Tick advances the clock by one second. Exported so the loop and tests
// share one code path. When the countdown of a timed step reaches zero the
// runner pauses and fires the alert exactly once; untimed steps never
// alert.
func (r *Runner) Tick() {
	r.mu.Lock()
	if r.state != StateRunning {
		r.mu.Unlock()
		return
	}
	r.elapsed++
	var alert *Alert
	step := r.steps[r.index]
	if step.DurationMinutes > 0 && r.remaining > 0 {
		r.remaining--
		if r.remaining == 0 && !r.alerted {
			r.alerted = true
			r.state = StatePaused
			a := r.buildAlert()
			alert = &a
		}
	}
	snap := r.snapshot()
	r.mu.Unlock()

	if alert != nil && r.OnAlert != nil {
		r.OnAlert(*alert)
	}
	r.emitTick(snap)
}

// buildAlert must be called with the lock held.
func (r *Runner) buildAlert() Alert {
	step := r.steps[r.index]
	a := Alert{StepTitle: step.Title}
	if r.index < len(r.steps)-1 {
		a.NextTitle = r.steps[r.index+1].Title
	}
	if r.lang == "ar" {
		if a.NextTitle != "" {
			a.Phrase = fmt.Sprintf("انتهى وقت %s. النشاط التالي هو %s", a.StepTitle, a.NextTitle)
		} else {
			a.Phrase = fmt.Sprintf("انتهى وقت %s. انتهى الدرس", a.StepTitle)
		}
	} else {
		if a.NextTitle != "" {
			a.Phrase = fmt.Sprintf("Time is up for %s. Next is %s", a.StepTitle, a.NextTitle)
		} else {
			a.Phrase = fmt.Sprintf("Time is up for %s. Lesson complete", a.StepTitle)
		}
	}
	return a
}

// Snapshot returns the current runner state.
func (r *Runner) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshot()
}

// CurrentStep returns the active step.
func (r *Runner) CurrentStep() models.LessonStep {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.steps[r.index]
}

// Steps returns the full step list.
func (r *Runner) Steps() []models.LessonStep {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.LessonStep(nil), r.steps...)
}

// snapshot must be called with the lock held.
func (r *Runner) snapshot() Snapshot {
	progress := 0.0
	if r.total > 0 {
		progress = float64(r.elapsed) / float64(r.total) * 100
		if progress > 100 {
			progress = 100
		}
	}
	return Snapshot{
		State:            r.state,
		StepIndex:        r.index,
		SecondsRemaining: r.remaining,
		ElapsedSeconds:   r.elapsed,
		TotalSeconds:     r.total,
		Progress:         progress,
	}
}

func (r *Runner) emitTick(snap Snapshot) {
	if r.OnTick != nil {
		r.OnTick(snap)
	}
}

// Loop drives the runner with a real 1-second ticker until Close. Callers
// must Close the runner on teardown; an orphaned ticker would keep mutating
// state after the session is gone.
func (r *Runner) Loop() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
			r.Tick()
		}
	}
}

// Close stops the tick loop. Safe to call more than once.
func (r *Runner) Close() {
	r.stopOnce.Do(func() { close(r.stop) })
}
