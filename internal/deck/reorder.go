package deck

import (
	"errors"
	"sync"
)

// ErrNoActiveDrag is returned when a drag-over or drop arrives in idle state.
var ErrNoActiveDrag = errors.New("no active drag")

// DragController tracks a pointer-driven reorder: idle → dragging → idle.
// Moves are applied live on every drag-over, so drag-end needs no rollback.
// The same surface accepts external file drops, which attach an image to the
// slide under the cursor instead of reordering.
type DragController struct {
	mu     sync.Mutex
	store  *Store
	editor *Editor
	dragID string // empty while idle
}

// NewDragController wires the controller over the store and editor.
func NewDragController(store *Store, editor *Editor) *DragController {
	return &DragController{store: store, editor: editor}
}

// DragStart captures the dragged slide.
func (d *DragController) DragStart(id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.store.IndexOf(id) < 0 {
		return ErrSlideNotFound
	}
	d.dragID = id
	return nil
}

// DragOver performs a live move of the dragged slide to the target position.
// The dragged slide's tracked position is its current index, so successive
// drag-over events compose without double-moving. Hovering the slide's own
// position is a no-op.
func (d *DragController) DragOver(targetIndex int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.dragID == "" {
		return ErrNoActiveDrag
	}
	from := d.store.IndexOf(d.dragID)
	if from < 0 {
		d.dragID = ""
		return ErrSlideNotFound
	}
	if from == targetIndex {
		return nil
	}
	return d.store.Move(from, targetIndex)
}

// Drop ends the gesture. When file data is present and no slide drag is in
// progress, the file is attached as an image to the slide at the drop
// position; otherwise the live moves already applied stand.
func (d *DragController) Drop(targetIndex int, fileData []byte) error {
	d.mu.Lock()
	dragging := d.dragID != ""
	d.dragID = ""
	d.mu.Unlock()

	if !dragging && len(fileData) > 0 {
		target, err := d.store.At(targetIndex)
		if err != nil {
			return err
		}
		return d.editor.AttachUpload(target.ID, fileData)
	}
	return nil
}

// DragEnd returns to idle, covering drops outside any valid target.
func (d *DragController) DragEnd() {
	d.mu.Lock()
	d.dragID = ""
	d.mu.Unlock()
}
