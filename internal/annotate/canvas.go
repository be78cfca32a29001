// Package annotate provides the freehand drawing overlay of the classroom
// view: one raster buffer per slide, persisted on stroke end and restored
// when the slide becomes active again. Overlays never touch slide content
// and are discarded with the session.
package annotate

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"sync"
)

// Store keeps one encoded raster snapshot per slide ID. Entries are created
// lazily on the first stroke, overwritten on every stroke end, and removed
// on explicit clear.
type Store struct {
	mu        sync.RWMutex
	snapshots map[string][]byte
}

// NewStore creates an empty annotation store.
func NewStore() *Store {
	return &Store{snapshots: make(map[string][]byte)}
}

// Put replaces the snapshot for a slide.
func (s *Store) Put(slideID string, data []byte) {
	s.mu.Lock()
	s.snapshots[slideID] = data
	s.mu.Unlock()
}

// Get returns the snapshot for a slide, if any.
func (s *Store) Get(slideID string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.snapshots[slideID]
	return data, ok
}

// Delete removes a slide's snapshot.
func (s *Store) Delete(slideID string) {
	s.mu.Lock()
	delete(s.snapshots, slideID)
	s.mu.Unlock()
}

// Canvas renders freehand strokes onto the active slide's raster buffer.
// Strokes use round caps and joins (painted as stamped discs along the
// path). Switching the active slide blanks the buffer and restores the
// stored snapshot for the new slide if one exists.
type Canvas struct {
	mu       sync.Mutex
	store    *Store
	active   string
	img      *image.RGBA
	w, h     int
	stroking bool
	last     image.Point
	brush    color.RGBA
	radius   int
}

// NewCanvas creates a canvas sized to the presentation surface.
func NewCanvas(store *Store, width, height int) *Canvas {
	return &Canvas{
		store: store,
		w:     width,
		h:     height,
		img:   image.NewRGBA(image.Rect(0, 0, width, height)),
	}
}

// SetActiveSlide switches the overlay target. Any stroke in progress is
// dropped, the visible buffer is cleared, and the stored snapshot for the
// new slide is restored if present.
func (c *Canvas) SetActiveSlide(slideID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stroking = false
	c.active = slideID
	c.img = image.NewRGBA(image.Rect(0, 0, c.w, c.h))
	if data, ok := c.store.Get(slideID); ok {
		if saved, err := png.Decode(bytes.NewReader(data)); err == nil {
			draw.Draw(c.img, c.img.Bounds(), saved, image.Point{}, draw.Src)
		}
	}
}

// BeginStroke starts a stroke path at the pointer position with the given
// brush color (hex, "#rrggbb") and width.
func (c *Canvas) BeginStroke(x, y int, hexColor string, width int) error {
	brush, err := parseHexColor(hexColor)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if width < 1 {
		width = 1
	}
	c.stroking = true
	c.brush = brush
	c.radius = width / 2
	if c.radius < 1 {
		c.radius = 1
	}
	c.last = image.Point{X: x, Y: y}
	c.stampDisc(c.last)
	return nil
}

// ExtendStroke continues the active stroke to the pointer position.
func (c *Canvas) ExtendStroke(x, y int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.stroking {
		return
	}
	next := image.Point{X: x, Y: y}
	c.stampSegment(c.last, next)
	c.last = next
}

// EndStroke finishes the stroke and persists the raster for the active
// slide.
func (c *Canvas) EndStroke() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.stroking {
		return nil
	}
	c.stroking = false
	return c.persist()
}

// Clear wipes the visible buffer and removes the stored entry for the
// active slide.
func (c *Canvas) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stroking = false
	c.img = image.NewRGBA(image.Rect(0, 0, c.w, c.h))
	c.store.Delete(c.active)
}

// Snapshot encodes the current visible buffer.
func (c *Canvas) Snapshot() ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return encodePNG(c.img)
}

// persist must be called with the lock held.
func (c *Canvas) persist() error {
	data, err := encodePNG(c.img)
	if err != nil {
		return err
	}
	c.store.Put(c.active, data)
	return nil
}

// stampSegment paints discs along the segment at 1px spacing, which yields
// round caps and joins without path geometry.
func (c *Canvas) stampSegment(from, to image.Point) {
	dx := to.X - from.X
	dy := to.Y - from.Y
	steps := max(abs(dx), abs(dy))
	if steps == 0 {
		c.stampDisc(to)
		return
	}
	for i := 0; i <= steps; i++ {
		p := image.Point{
			X: from.X + dx*i/steps,
			Y: from.Y + dy*i/steps,
		}
		c.stampDisc(p)
	}
}

func (c *Canvas) stampDisc(center image.Point) {
	r := c.radius
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy > r*r {
				continue
			}
			x, y := center.X+dx, center.Y+dy
			if x < 0 || y < 0 || x >= c.w || y >= c.h {
				continue
			}
			c.img.SetRGBA(x, y, c.brush)
		}
	}
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode annotation: %w", err)
	}
	return buf.Bytes(), nil
}

// parseHexColor parses "#rrggbb" into an opaque RGBA.
func parseHexColor(s string) (color.RGBA, error) {
	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "#%02x%02x%02x", &r, &g, &b); err != nil {
		return color.RGBA{}, fmt.Errorf("invalid brush color %q", s)
	}
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
