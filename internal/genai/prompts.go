package genai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"smart-lesson/internal/models"
)

func languageName(lang string) string {
	if lang == "ar" {
		return "Arabic"
	}
	return "English"
}

func localized(lang, ar, en string) string {
	if lang == "ar" {
		return ar
	}
	return en
}

// Every prompt repeats this because the image pipeline only works with
// English prompts, regardless of the deck language.
const imagePromptRule = `Image Prompts: for each slide, you MUST generate a creative, descriptive prompt for an AI image generator in the 'imagePrompt' field. This prompt MUST be in ENGLISH, even if the rest of the presentation is in Arabic. For slides that don't need an image (like the Title or Q&A slide), the 'imagePrompt' MUST be an empty string.`

const slideShapeRule = `Each slide object has the fields: "title" (string), "content" (array of short bullet-point strings), "speakerNotes" (string, tips for the teacher only), "imagePrompt" (string, English), and "duration" (integer minutes, 0 when untimed).`

// DeckFromTopic generates a full deck for a topic and grade.
func (c *Client) DeckFromTopic(ctx context.Context, topic, grade, lang string, slideCount int) ([]models.SlideDraft, error) {
	coreSlides := slideCount - 4
	if coreSlides < 1 {
		coreSlides = 1
	}
	prompt := fmt.Sprintf(`Create a comprehensive and visually clear slide deck for a teacher to present on a smartboard.
The presentation is for students in '%s' and covers the topic: '%s'.
The output MUST be a valid JSON array of slide objects. %s
The entire presentation content must be in %s.

Instructions for Slide Generation:
1. Title Slide: an engaging title slide with the lesson topic and the grade level.
2. Learning Objectives Slide: infer 2-3 key learning objectives. Title it "%s". List the objectives as clear, student-friendly "%s" statements.
3. Introduction/Hook Slide: a slide to introduce the topic and grab students' attention. Title it "%s".
4. Core Content Slides (%d slides): break the topic into logical sub-topics, one slide each, with a clear title and bulleted content.
5. Activity Slide: a simple interactive activity or worked example. Title it "%s". Suggest a duration in minutes in the 'duration' field.
6. Summary Slide: the key takeaways. Title it "%s".
7. Q&A Slide: a final slide titled "%s".
8. %s

The total number of slides should be approximately %d.
Keep the text on each slide concise; the language and complexity must suit the grade level.`,
		grade, topic, slideShapeRule, languageName(lang),
		localized(lang, "أهداف التعلم", "Learning Objectives"),
		localized(lang, "سأكون قادراً على...", "I can..."),
		localized(lang, "مقدمة", "Introduction"),
		coreSlides,
		localized(lang, "نشاط تطبيقي", "Activity"),
		localized(lang, "الملخص", "Summary"),
		localized(lang, "هل هناك أسئلة؟", "Questions?"),
		imagePromptRule, slideCount)

	var drafts []models.SlideDraft
	if err := c.generateJSON(ctx, prompt, &drafts); err != nil {
		return nil, fmt.Errorf("generate deck from topic: %w", err)
	}
	return drafts, nil
}

// DeckFromText structures user-provided source text into a deck.
func (c *Client) DeckFromText(ctx context.Context, text, topic, grade, lang string, slideCount int) ([]models.SlideDraft, error) {
	coreSlides := slideCount - 3
	if coreSlides < 1 {
		coreSlides = 1
	}
	prompt := fmt.Sprintf(`Analyze the following text and structure it into a compelling slide deck for a teacher to present on a smartboard.
The presentation is for students in '%s' and should be titled '%s'.
The output MUST be a valid JSON array of slide objects. %s
The entire presentation content must be in %s.

Source Text to Summarize and Structure:
"""
%s
"""

Instructions for Slide Generation:
1. Title Slide: use the provided topic '%s' and the grade level.
2. Introduction/Summary Slide: one slide introducing the main ideas of the source text.
3. Core Content Slides: identify the key themes and create approximately %d slides detailing them, each summarizing a part of the text into bullet points.
4. Conclusion Slide: the key takeaways from the text.
5. Q&A Slide: a final slide titled "%s".
6. %s

Base all slide content directly on the provided source text; do not introduce new information.`,
		grade, topic, slideShapeRule, languageName(lang), text, topic, coreSlides,
		localized(lang, "هل هناك أسئلة؟", "Questions?"),
		imagePromptRule)

	var drafts []models.SlideDraft
	if err := c.generateJSON(ctx, prompt, &drafts); err != nil {
		return nil, fmt.Errorf("generate deck from text: %w", err)
	}
	return drafts, nil
}

// DeckFromPlan turns a structured lesson plan into a deck, carrying the
// plan's activity timings into the slides' duration fields.
func (c *Client) DeckFromPlan(ctx context.Context, plan *models.LessonPlan, lang string) ([]models.SlideDraft, error) {
	planJSON, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal lesson plan: %w", err)
	}

	prompt := fmt.Sprintf(`Based on the provided lesson plan JSON, create a compelling and visually clear slide deck for a teacher to present on a smartboard.
The output MUST be a valid JSON array of slide objects. %s
The entire presentation content must be in %s.

Lesson Plan Details:
%s

Instructions for Slide Generation:
1. Title Slide: an engaging title slide with the lesson title and the grade level.
2. Learning Outcomes Slide: titled "%s". List the learning outcomes as clear, student-friendly "%s" statements.
3. Starter Slide: titled "%s", clearly explaining the starter activity. IMPORTANT: extract the numeric time from the starter's 'time' field and assign it to this slide's 'duration'.
4. Main Activity Slides: one dedicated slide per object in 'mainActivities', with a descriptive title and content summarizing the 'studentActivity'. IMPORTANT: extract the numeric time from each activity's 'time' field into that slide's 'duration'.
5. Closure Slide: titled "%s", summarizing the key takeaways or final task.
6. Q&A Slide: a final slide titled "%s".
7. %s

Keep the text on each slide concise; the language must suit the grade level.`,
		slideShapeRule, languageName(lang), string(planJSON),
		localized(lang, "أهداف التعلم", "Learning Outcomes"),
		localized(lang, "سأكون قادراً على...", "I can..."),
		localized(lang, "التهيئة", "Starter"),
		localized(lang, "الغلق الختامي", "Closure"),
		localized(lang, "هل هناك أسئلة؟", "Questions?"),
		imagePromptRule)

	var drafts []models.SlideDraft
	if err := c.generateJSON(ctx, prompt, &drafts); err != nil {
		return nil, fmt.Errorf("generate deck from plan: %w", err)
	}
	return drafts, nil
}

// RegenerateSlide produces improved content for one slide, keeping the
// presentation context.
func (c *Client) RegenerateSlide(ctx context.Context, slide models.Slide, gctx models.GenerationContext) (models.SlideDraft, error) {
	slideJSON, err := json.MarshalIndent(models.SlideDraft{
		Title:        slide.Title,
		Content:      slide.Content,
		SpeakerNotes: slide.SpeakerNotes,
		ImagePrompt:  slide.ImagePrompt,
		Duration:     slide.Duration,
	}, "", "  ")
	if err != nil {
		return models.SlideDraft{}, fmt.Errorf("marshal slide: %w", err)
	}

	prompt := fmt.Sprintf(`Regenerate the content for the following presentation slide to make it more engaging and clear for students.
The output MUST be a single valid JSON slide object. %s
The language for the new content MUST be %s.

Overall Presentation Context:
- Topic: %s
- Grade: %s

Current Slide Content (to be improved):
%s

Instructions:
- Generate a new, improved version; rephrase, add detail, or simplify as needed. The title may change.
- The new 'content' must be a list of clear, concise bullet points.
- The new 'speakerNotes' must provide practical guidance for the teacher.
- %s`,
		slideShapeRule, languageName(gctx.Language), gctx.Topic, gctx.Grade, string(slideJSON), imagePromptRule)

	var draft models.SlideDraft
	if err := c.generateJSON(ctx, prompt, &draft); err != nil {
		return models.SlideDraft{}, fmt.Errorf("regenerate slide: %w", err)
	}
	return draft, nil
}

// InsertedSlide produces one slide that fits between its neighbors. A nil
// neighbor means the new slide sits at that deck boundary.
func (c *Client) InsertedSlide(ctx context.Context, prev, next *models.Slide, gctx models.GenerationContext) (models.SlideDraft, error) {
	describe := func(s *models.Slide, fallback string) string {
		if s == nil {
			return fallback
		}
		data, err := json.MarshalIndent(models.SlideDraft{
			Title:        s.Title,
			Content:      s.Content,
			SpeakerNotes: s.SpeakerNotes,
			ImagePrompt:  s.ImagePrompt,
		}, "", "  ")
		if err != nil {
			return fallback
		}
		return string(data)
	}

	prompt := fmt.Sprintf(`You are an expert curriculum and presentation designer. Generate a single new slide that logically fits between a preceding and a following slide.
The output MUST be a single valid JSON slide object. %s
The language for the new content MUST be %s.

Overall Presentation Context:
- Topic: %s
- Grade: %s

Preceding Slide Content:
%s

Following Slide Content:
%s

Instructions:
- The new slide must serve as a smooth transition or logical continuation between the two provided slides.
- The 'content' must be a list of clear, concise bullet points.
- The 'speakerNotes' must provide practical guidance for the teacher.
- %s`,
		slideShapeRule, languageName(gctx.Language), gctx.Topic, gctx.Grade,
		describe(prev, "This is the first slide."),
		describe(next, "This is the last slide."),
		imagePromptRule)

	var draft models.SlideDraft
	if err := c.generateJSON(ctx, prompt, &draft); err != nil {
		return models.SlideDraft{}, fmt.Errorf("generate inserted slide: %w", err)
	}
	return draft, nil
}

// GenerateLessonPlan produces a structured daily lesson plan. When
// textbookContent is non-empty the plan is derived exclusively from it.
func (c *Client) GenerateLessonPlan(ctx context.Context, subject, grade, topic, lang string, lessonDuration int, textbookContent string) (*models.LessonPlan, error) {
	coreInstruction := "Create a detailed daily lesson plan for the following topic, following the official Qatar Ministry of Education template structure."
	textbookSection := ""
	if textbookContent != "" {
		coreInstruction = "Based exclusively on the provided 'Relevant Textbook Content', create a detailed daily lesson plan. Analyze the text to derive all lesson components. The user-provided 'Lesson Topic' is the title, but the substance of the plan MUST originate from the textbook content."
		textbookSection = fmt.Sprintf("- Relevant Textbook Content: \"\"\"%s\"\"\"\n", textbookContent)
	}

	curriculumContext := ""
	if isInternationalSubject(subject) {
		curriculumContext = fmt.Sprintf(`The subject is an International Qualification (%s). The 'learningOutcomes' and lesson content MUST be fully compatible with Cambridge Assessment International Education (CAIE) or Pearson Edexcel syllabus specifications, using official syllabus terminology and matching the rigor of the level.
`, subject)
	}

	prompt := fmt.Sprintf(`%s
%s
The output MUST be a valid JSON object matching the lesson-plan structure used by this application (camelCase field names: academicYear, teacherName, grade, date, day, subject, unit, lessonTitle, learningOutcomes, mainResource, supportingResources, resources, strategies, starter, mainActivities, closure, assignments, nationalAndEducationalValues, integration, selfReflection).
The lesson plan content must be written in %s.

Lesson Details:
- Subject: %s
- Grade: %s
- Lesson Topic: %s
- Total Lesson Duration: %d minutes
%s
Instructions:
- For 'nationalAndEducationalValues', thoughtfully connect the lesson topic to one or more of the core Qatari values: إخاء (Brotherhood), أصيل (Authenticity), نفسك أمانة (Yourself is a trust), فطرة (Innate goodness), and التبحر الآمن (Safe Exploration). Write a cohesive paragraph.
- The time allocated for 'starter' plus all 'mainActivities' MUST sum to %d minutes. Time fields are strings like '10 mins'.
- 'mainActivities' must contain 2 to 4 distinct, sequential activities, each with learningObjective, teacherStrategy, studentActivity, assessment, and time.
- Boolean fields in 'resources' and 'strategies' are true only when applicable. If 'otherResourceText' or 'otherStrategyText' is filled, set the matching boolean to true.
- 'academicYear' is '2024-2025'. 'teacherName', 'day', and 'selfReflection' must be empty strings.
- 'date' is today's date in YYYY-MM-DD format.`,
		coreInstruction, curriculumContext, languageName(lang),
		subject, grade, topic, lessonDuration, textbookSection, lessonDuration)

	var plan models.LessonPlan
	if err := c.generateJSON(ctx, prompt, &plan); err != nil {
		return nil, fmt.Errorf("generate lesson plan: %w", err)
	}
	if !isISODate(plan.Date) {
		plan.Date = time.Now().Format("2006-01-02")
	}
	return &plan, nil
}

func isInternationalSubject(subject string) bool {
	return strings.Contains(subject, "IGCSE") ||
		strings.Contains(subject, "AS Level") ||
		strings.Contains(subject, "A Level")
}

func isISODate(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

func refinePrompt(text, instruction string, gctx models.GenerationContext, subject string) string {
	return fmt.Sprintf(`You are an expert educational content editor. Rewrite the provided text segment from a lesson plan based on the user's instruction.

Lesson Context:
- Subject: %s
- Grade: %s
- Topic: %s

Original Text:
"""
%s
"""

Instruction for Rewrite:
"%s"

Output Requirements:
- Return ONLY the rewritten text. No quotes, explanations, or conversational filler.
- The tone must be appropriate for the grade level.
- The language MUST be %s.`,
		subject, gctx.Grade, gctx.Topic, text, instruction, languageName(gctx.Language))
}
