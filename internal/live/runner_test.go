package live

import (
	"errors"
	"strings"
	"testing"

	"smart-lesson/internal/models"
)

func testSteps(minutes ...int) []models.LessonStep {
	steps := make([]models.LessonStep, 0, len(minutes))
	for i, m := range minutes {
		steps = append(steps, models.LessonStep{
			ID:              string(rune('a' + i)),
			Title:           "Step " + string(rune('A'+i)),
			DurationMinutes: m,
		})
	}
	return steps
}

func newTestRunner(t *testing.T, minutes ...int) *Runner {
	t.Helper()
	r, err := NewRunner(testSteps(minutes...), "en")
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	return r
}

func tick(r *Runner, n int) {
	for i := 0; i < n; i++ {
		r.Tick()
	}
}

func TestNewRunnerEmptySteps(t *testing.T) {
	if _, err := NewRunner(nil, "en"); !errors.Is(err, ErrNoSteps) {
		t.Errorf("got %v, want ErrNoSteps", err)
	}
}

func TestRunnerStartsReadyAtStepZero(t *testing.T) {
	r := newTestRunner(t, 5, 10)
	snap := r.Snapshot()
	if snap.State != StateReady {
		t.Errorf("State = %s, want ready", snap.State)
	}
	if snap.StepIndex != 0 || snap.SecondsRemaining != 300 {
		t.Errorf("snapshot = %+v", snap)
	}
	if snap.TotalSeconds != 900 {
		t.Errorf("TotalSeconds = %d, want 900", snap.TotalSeconds)
	}
}

func TestTickOnlyWhileRunning(t *testing.T) {
	r := newTestRunner(t, 5)
	tick(r, 3)
	if snap := r.Snapshot(); snap.SecondsRemaining != 300 || snap.ElapsedSeconds != 0 {
		t.Errorf("ticks while ready mutated state: %+v", snap)
	}

	r.Start()
	tick(r, 3)
	if snap := r.Snapshot(); snap.SecondsRemaining != 297 || snap.ElapsedSeconds != 3 {
		t.Errorf("after 3 running ticks: %+v", snap)
	}

	r.PauseToggle()
	tick(r, 3)
	if snap := r.Snapshot(); snap.SecondsRemaining != 297 {
		t.Errorf("ticks while paused mutated the countdown: %+v", snap)
	}
}

func TestExpiryPausesAndAlertsOnce(t *testing.T) {
	r := newTestRunner(t, 1, 2)
	var alerts []Alert
	r.OnAlert = func(a Alert) { alerts = append(alerts, a) }

	r.Start()
	tick(r, 60)

	snap := r.Snapshot()
	if snap.State != StatePaused {
		t.Errorf("State = %s, want paused at expiry", snap.State)
	}
	if snap.SecondsRemaining != 0 {
		t.Errorf("SecondsRemaining = %d", snap.SecondsRemaining)
	}
	if len(alerts) != 1 {
		t.Fatalf("alerts = %d, want exactly 1", len(alerts))
	}
	if alerts[0].StepTitle != "Step A" || alerts[0].NextTitle != "Step B" {
		t.Errorf("alert = %+v", alerts[0])
	}
	if !strings.Contains(alerts[0].Phrase, "Time is up for Step A") {
		t.Errorf("phrase = %q", alerts[0].Phrase)
	}

	// Resuming after expiry must not re-alert.
	r.Start()
	tick(r, 30)
	if len(alerts) != 1 {
		t.Errorf("alerts after resume = %d, want still 1", len(alerts))
	}
}

func TestExpiryPhraseOnLastStep(t *testing.T) {
	r := newTestRunner(t, 1)
	var alert Alert
	r.OnAlert = func(a Alert) { alert = a }
	r.Start()
	tick(r, 60)
	if alert.NextTitle != "" {
		t.Errorf("NextTitle = %q, want empty on the last step", alert.NextTitle)
	}
	if !strings.Contains(alert.Phrase, "Lesson complete") {
		t.Errorf("phrase = %q", alert.Phrase)
	}
}

func TestArabicAlertPhrase(t *testing.T) {
	r, err := NewRunner(testSteps(1, 5), "ar")
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	var alert Alert
	r.OnAlert = func(a Alert) { alert = a }
	r.Start()
	tick(r, 60)
	if !strings.Contains(alert.Phrase, "انتهى وقت") {
		t.Errorf("phrase = %q", alert.Phrase)
	}
}

func TestUntimedStepNeverAlerts(t *testing.T) {
	r := newTestRunner(t, 0)
	alerted := false
	r.OnAlert = func(Alert) { alerted = true }
	r.Start()
	tick(r, 120)
	snap := r.Snapshot()
	if alerted {
		t.Error("untimed step fired an alert")
	}
	if snap.State != StateRunning {
		t.Errorf("State = %s, want still running", snap.State)
	}
	if snap.ElapsedSeconds != 120 {
		t.Errorf("ElapsedSeconds = %d, elapsed should keep counting", snap.ElapsedSeconds)
	}
}

func TestNextResetsCountdownAndResumes(t *testing.T) {
	r := newTestRunner(t, 5, 10)
	var changes []string
	r.OnStepChange = func(id string) { changes = append(changes, id) }

	r.Start()
	tick(r, 30)
	r.Next()

	snap := r.Snapshot()
	if snap.StepIndex != 1 || snap.SecondsRemaining != 600 {
		t.Errorf("after Next: %+v", snap)
	}
	if snap.State != StateRunning {
		t.Errorf("State = %s, want running after Next", snap.State)
	}
	if len(changes) != 1 || changes[0] != "b" {
		t.Errorf("step changes = %v", changes)
	}
	if snap.ElapsedSeconds != 30 {
		t.Errorf("ElapsedSeconds = %d, elapsed carries across steps", snap.ElapsedSeconds)
	}
}

func TestPrevForcesPause(t *testing.T) {
	r := newTestRunner(t, 5, 10)
	r.Start()
	r.Next()
	tick(r, 10)
	r.Prev()

	snap := r.Snapshot()
	if snap.StepIndex != 0 || snap.SecondsRemaining != 300 {
		t.Errorf("after Prev: %+v", snap)
	}
	if snap.State != StatePaused {
		t.Errorf("State = %s, want paused after Prev", snap.State)
	}

	// Prev at the first step is a no-op.
	r.Prev()
	if snap := r.Snapshot(); snap.StepIndex != 0 {
		t.Errorf("Prev at step 0 moved to %d", snap.StepIndex)
	}
}

func TestNextOnLastStepFinishes(t *testing.T) {
	r := newTestRunner(t, 1, 1)
	finished := false
	r.OnFinish = func() { finished = true }

	r.Start()
	r.Next()
	r.Next()

	if snap := r.Snapshot(); snap.State != StateFinished {
		t.Errorf("State = %s, want finished", snap.State)
	}
	if !finished {
		t.Error("OnFinish was not invoked")
	}

	// Navigation after finish is inert.
	r.Next()
	r.Prev()
	tick(r, 5)
	if snap := r.Snapshot(); snap.State != StateFinished {
		t.Errorf("State = %s after post-finish calls", snap.State)
	}
}

func TestProgressClamped(t *testing.T) {
	r := newTestRunner(t, 1)
	r.Start()
	tick(r, 59)
	if p := r.Snapshot().Progress; p < 98 || p > 99 {
		t.Errorf("Progress = %v, want ~98.3", p)
	}
	// Expiry pauses; resume and run past the total.
	tick(r, 1)
	r.Start()
	tick(r, 120)
	if p := r.Snapshot().Progress; p != 100 {
		t.Errorf("Progress = %v, want clamped to 100", p)
	}
}

func TestCloseStopsLoop(t *testing.T) {
	r := newTestRunner(t, 1)
	done := make(chan struct{})
	go func() {
		r.Loop()
		close(done)
	}()
	r.Close()
	<-done
	// Double close must not panic.
	r.Close()
}
