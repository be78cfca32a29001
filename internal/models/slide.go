package models

// Slide represents one deck entry. ID is assigned at creation and survives
// reordering, so async completions can find their target slide.
type Slide struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Content        []string `json:"content"`
	SpeakerNotes   string   `json:"speakerNotes"`
	ImagePrompt    string   `json:"imagePrompt,omitempty"`
	ImageURL       string   `json:"imageUrl,omitempty"`
	YouTubeVideoID string   `json:"youtubeVideoId,omitempty"`
	ImageLoading   bool     `json:"isImageLoading,omitempty"`
	Duration       int      `json:"duration,omitempty"` // minutes, 0 means untimed
}

// HasMedia reports whether the slide carries an image or a YouTube video.
func (s *Slide) HasMedia() bool {
	return s.ImageURL != "" || s.YouTubeVideoID != ""
}

// SetImage attaches an image and clears any YouTube video. At most one media
// variant may be populated at a time.
func (s *Slide) SetImage(url string) {
	s.ImageURL = url
	s.YouTubeVideoID = ""
}

// SetYouTube attaches a YouTube video and clears any image.
func (s *Slide) SetYouTube(videoID string) {
	s.YouTubeVideoID = videoID
	s.ImageURL = ""
}

// ClearMedia removes whichever media variant is present.
func (s *Slide) ClearMedia() {
	s.ImageURL = ""
	s.YouTubeVideoID = ""
}

// Clone returns a deep copy of the slide.
func (s Slide) Clone() Slide {
	out := s
	out.Content = append([]string(nil), s.Content...)
	return out
}

// SlideDraft is the body of a slide as returned by the generation backend:
// content only, no identity and no media.
type SlideDraft struct {
	Title        string   `json:"title"`
	Content      []string `json:"content"`
	SpeakerNotes string   `json:"speakerNotes"`
	ImagePrompt  string   `json:"imagePrompt"`
	Duration     int      `json:"duration,omitempty"`
}

// GenerationContext carries the presentation-level context passed to the
// backend with per-slide requests (regenerate, insert-between).
type GenerationContext struct {
	Topic    string `json:"topic"`
	Grade    string `json:"grade"`
	Language string `json:"language"` // "ar" or "en"
}

// StepKind classifies a lesson step within the classroom runtime.
type StepKind string

const (
	StepStarter StepKind = "starter"
	StepMain    StepKind = "main"
	StepClosure StepKind = "closure"
)

// LessonStep is one timed unit of the live lesson runtime, derived from a
// lesson plan or aliased 1:1 to deck slides.
type LessonStep struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Subtitle        string   `json:"subtitle,omitempty"`
	Content         string   `json:"content"`
	DurationMinutes int      `json:"durationMinutes"`
	Kind            StepKind `json:"kind"`
}
