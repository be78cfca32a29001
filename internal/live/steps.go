// Package live implements the classroom runtime: lesson steps, the timed
// runner state machine, and expiry notifications.
package live

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"smart-lesson/internal/models"
)

// defaultStepMinutes is used when a time field has no parseable integer.
// Closure steps always use it; the plan form has no closure time field.
const defaultStepMinutes = 5

var firstInt = regexp.MustCompile(`(\d+)`)

// ParseDuration extracts the first integer substring of a free-text time
// field ("10 mins" -> 10), defaulting to 5 minutes.
func ParseDuration(timeStr string) int {
	m := firstInt.FindString(timeStr)
	if m == "" {
		return defaultStepMinutes
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return defaultStepMinutes
	}
	return n
}

// StepsFromPlan flattens a lesson plan into starter, main activities, and
// closure steps with localized titles.
func StepsFromPlan(plan *models.LessonPlan, lang string) []models.LessonStep {
	isAr := lang == "ar"
	steps := make([]models.LessonStep, 0, len(plan.MainActivities)+2)

	starterTitle := "Starter"
	if isAr {
		starterTitle = "التهيئة"
	}
	steps = append(steps, models.LessonStep{
		ID:              uuid.NewString(),
		Title:           starterTitle,
		Content:         plan.Starter.Activity,
		DurationMinutes: ParseDuration(plan.Starter.Time),
		Kind:            models.StepStarter,
	})

	for i, act := range plan.MainActivities {
		title := fmt.Sprintf("Main Activity %d", i+1)
		if isAr {
			title = fmt.Sprintf("النشاط الرئيسي %d", i+1)
		}
		steps = append(steps, models.LessonStep{
			ID:              uuid.NewString(),
			Title:           title,
			Subtitle:        act.TeacherStrategy,
			Content:         act.StudentActivity,
			DurationMinutes: ParseDuration(act.Time),
			Kind:            models.StepMain,
		})
	}

	closureTitle := "Closure"
	if isAr {
		closureTitle = "الغلق الختامي"
	}
	steps = append(steps, models.LessonStep{
		ID:              uuid.NewString(),
		Title:           closureTitle,
		Content:         plan.Closure,
		DurationMinutes: defaultStepMinutes,
		Kind:            models.StepClosure,
	})
	return steps
}

// StepsFromDeck aliases deck slides 1:1 as lesson steps for the classroom
// view of a presentation. Slides without a duration stay untimed.
func StepsFromDeck(slides []models.Slide) []models.LessonStep {
	steps := make([]models.LessonStep, 0, len(slides))
	for _, sl := range slides {
		steps = append(steps, models.LessonStep{
			ID:              sl.ID,
			Title:           sl.Title,
			Content:         strings.Join(sl.Content, "\n"),
			DurationMinutes: sl.Duration,
			Kind:            models.StepMain,
		})
	}
	return steps
}
