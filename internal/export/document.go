// Package export builds a presentation document model from the deck and
// hands it to a pluggable exporter. The document describes slide geometry
// in inches on a standard 10x5.63 widescreen canvas so any sink (pptx
// writer, JSON dump) can lay out the same deck.
package export

import (
	"fmt"
	"strings"

	"smart-lesson/internal/models"
)

const (
	slideWidthIn  = 10.0
	slideHeightIn = 5.63

	watermarkText = "Powered by Smart Lesson"
)

// Box is a positioned text or media region, in inches from the top-left
// corner.
type Box struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// TextStyle carries the render attributes of a text region.
type TextStyle struct {
	FontSize int    `json:"fontSize"`
	Bold     bool   `json:"bold"`
	Color    string `json:"color"`
	Align    string `json:"align"`
	RTL      bool   `json:"rtl"`
}

// TextBlock is a laid-out text region of a slide.
type TextBlock struct {
	Box
	Style TextStyle `json:"style"`
	Lines []string  `json:"lines"`
}

// MediaBlock is an image or linked video region of a slide.
type MediaBlock struct {
	Box
	ImageURL  string `json:"imageUrl,omitempty"`
	Hyperlink string `json:"hyperlink,omitempty"`
}

// Page is one laid-out slide.
type Page struct {
	Background   string      `json:"background"`
	Title        TextBlock   `json:"title"`
	Content      TextBlock   `json:"content"`
	Media        *MediaBlock `json:"media,omitempty"`
	SpeakerNotes string      `json:"speakerNotes,omitempty"`
	Watermark    TextBlock   `json:"watermark"`
}

// Document is the full presentation handed to an exporter.
type Document struct {
	Title  string `json:"title"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	RTL    bool   `json:"rtl"`
	Pages  []Page `json:"pages"`
}

// Exporter writes a document to its output format.
type Exporter interface {
	// Export renders the document and returns the file bytes plus the
	// suggested filename extension (without dot).
	Export(doc *Document) ([]byte, string, error)
}

// Build lays out the deck into a document using the given theme. Arabic
// decks are laid out right-to-left.
func Build(title string, slides []models.Slide, theme models.Theme, language string) *Document {
	rtl := language == "ar"
	align := "left"
	if rtl {
		align = "right"
	}

	doc := &Document{
		Title:  title,
		Width:  slideWidthIn,
		Height: slideHeightIn,
		RTL:    rtl,
		Pages:  make([]Page, 0, len(slides)),
	}

	for _, slide := range slides {
		page := Page{
			Background: theme.Bg,
			Title: TextBlock{
				Box: Box{X: 0.5, Y: 0.3, W: 9.0, H: 1.0},
				Style: TextStyle{
					FontSize: 32,
					Bold:     true,
					Color:    theme.Title,
					Align:    align,
					RTL:      rtl,
				},
				Lines: []string{slide.Title},
			},
			SpeakerNotes: slide.SpeakerNotes,
			Watermark: TextBlock{
				Box: Box{X: 0.5, Y: slideHeightIn - 0.4, W: 9.0, H: 0.3},
				Style: TextStyle{
					FontSize: 10,
					Color:    theme.Accent,
					Align:    "center",
				},
				Lines: []string{watermarkText},
			},
		}

		content := TextBlock{
			Style: TextStyle{
				FontSize: 18,
				Color:    theme.Text,
				Align:    align,
				RTL:      rtl,
			},
			Lines: bulleted(slide.Content),
		}

		if slide.HasMedia() {
			// Media shares the body: text narrows to the start side and
			// the media block fills the other half.
			content.Box = Box{X: contentX(rtl, true), Y: 1.8, W: 4.5, H: 3.2}
			page.Media = mediaBlock(slide, rtl)
		} else {
			content.Box = Box{X: 0.5, Y: 1.5, W: 9.0, H: 3.6}
		}
		page.Content = content

		doc.Pages = append(doc.Pages, page)
	}

	return doc
}

// contentX puts the text column on the reading-start side when media is
// present.
func contentX(rtl, withMedia bool) float64 {
	if !withMedia {
		return 0.5
	}
	if rtl {
		return 5.0
	}
	return 0.5
}

func mediaBlock(slide models.Slide, rtl bool) *MediaBlock {
	box := Box{X: 5.3, Y: 1.8, W: 4.2, H: 3.2}
	if rtl {
		box.X = 0.5
	}
	if slide.YouTubeVideoID != "" {
		// Exported decks cannot embed video, so the thumbnail links to the
		// watch page instead.
		return &MediaBlock{
			Box:       box,
			ImageURL:  fmt.Sprintf("https://img.youtube.com/vi/%s/0.jpg", slide.YouTubeVideoID),
			Hyperlink: fmt.Sprintf("https://www.youtube.com/watch?v=%s", slide.YouTubeVideoID),
		}
	}
	return &MediaBlock{Box: box, ImageURL: slide.ImageURL}
}

func bulleted(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, line)
	}
	return out
}
