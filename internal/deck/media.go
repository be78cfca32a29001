package deck

import (
	"errors"
	"regexp"

	"smart-lesson/internal/models"
)

// ErrInvalidYouTubeURL is returned when a URL matches no recognized YouTube
// form. The slide is left untouched.
var ErrInvalidYouTubeURL = errors.New("invalid YouTube URL")

// Matches the standard watch, short, embed, and shorts URL forms and
// captures the 11-character video ID.
var youtubeIDPattern = regexp.MustCompile(`(?:https?://)?(?:www\.)?(?:youtube\.com/(?:[^/\n\s]+/\S+/|(?:v|e(?:mbed)?)/|\S*?[?&]v=)|youtu\.be/|youtube\.com/shorts/)([a-zA-Z0-9_-]{11})`)

// ExtractYouTubeID pulls the video ID out of a YouTube URL, or returns
// ErrInvalidYouTubeURL.
func ExtractYouTubeID(url string) (string, error) {
	m := youtubeIDPattern.FindStringSubmatch(url)
	if m == nil {
		return "", ErrInvalidYouTubeURL
	}
	return m[1], nil
}

// AttachImage sets the slide's image, clearing any YouTube video and the
// loading flag.
func (s *Store) AttachImage(id, url string) error {
	return s.update(id, func(sl *models.Slide) {
		sl.SetImage(url)
		sl.ImageLoading = false
	})
}

// AttachYouTube validates the URL and, on match, sets the video and clears
// any image. On no match nothing is mutated.
func (s *Store) AttachYouTube(id, url string) error {
	videoID, err := ExtractYouTubeID(url)
	if err != nil {
		return err
	}
	return s.update(id, func(sl *models.Slide) { sl.SetYouTube(videoID) })
}

// DetachMedia clears whichever media variant is present.
func (s *Store) DetachMedia(id string) error {
	return s.update(id, func(sl *models.Slide) { sl.ClearMedia() })
}
