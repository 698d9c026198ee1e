// Package reorder turns drag gestures and keyboard commands into moves on
// a document. Gesture bookkeeping lives in Controller; the moves themselves
// are the pure document.Reorder and document.MoveAdjacent operations.
package reorder

import (
	"inkwell/api/internal/document"
)

// Origin identifies the element an input event was aimed at.
type Origin string

const (
	// OriginHandle is the drag handle or the block chrome around it.
	OriginHandle Origin = "handle"
	// OriginControl is a move-up / move-down button.
	OriginControl Origin = "control"
	// OriginText is a text control inside the block (input, textarea,
	// contenteditable). Events aimed here belong to editing, never to reordering.
	OriginText Origin = "text"
)

// Rect is the vertical extent of a rendered block, in document order.
type Rect struct {
	ID     string  `json:"id"`
	Top    float64 `json:"top"`
	Height float64 `json:"height"`
}

// TargetIndex computes where a block dragged from index from lands when the
// pointer is at pointerY: the number of block midpoints above the pointer,
// adjusted for the dragged block itself being removed first.
func TargetIndex(from int, pointerY float64, layout []Rect) int {
	if len(layout) == 0 {
		return 0
	}
	passed := 0
	for _, r := range layout {
		if r.Top+r.Height/2 < pointerY {
			passed++
		}
	}
	to := passed
	if from >= 0 && passed > from {
		to = passed - 1
	}
	return min(max(to, 0), len(layout)-1)
}

// Controller tracks one drag gesture at a time.
type Controller struct {
	active  bool
	blockID string
	from    int
	target  int
}

// DragStart begins dragging the block with the given id. Gestures that
// start on a text control are refused so text selection keeps working.
func (c *Controller) DragStart(doc document.Document, id string, origin Origin) bool {
	if origin == OriginText {
		return false
	}
	i := doc.IndexOf(id)
	if i < 0 {
		return false
	}
	*c = Controller{active: true, blockID: id, from: i, target: i}
	return true
}

// DragOver updates the candidate target index from the pointer position.
func (c *Controller) DragOver(pointerY float64, layout []Rect) (int, bool) {
	if !c.active {
		return 0, false
	}
	from := c.from
	for i, r := range layout {
		if r.ID == c.blockID {
			from = i
			break
		}
	}
	c.target = TargetIndex(from, pointerY, layout)
	return c.target, true
}

// DragEnd commits the gesture through document.Reorder and resets the controller.
func (c *Controller) DragEnd(doc document.Document) (document.Document, bool) {
	if !c.active {
		return doc, false
	}
	id, target := c.blockID, c.target
	c.Cancel()
	from := doc.IndexOf(id)
	if from < 0 || doc.Len() == 0 {
		return doc, false
	}
	target = min(max(target, 0), doc.Len()-1)
	if from == target {
		return doc, false
	}
	return doc.Reorder(from, target), true
}

// Cancel abandons the current gesture without moving anything.
func (c *Controller) Cancel() {
	*c = Controller{}
}

// Dragging reports the block being dragged and its current target.
func (c *Controller) Dragging() (id string, target int, ok bool) {
	return c.blockID, c.target, c.active
}

// KeyEvent is a key press on or inside a block.
type KeyEvent struct {
	BlockID string `json:"blockId"`
	Key     string `json:"key"`
	Alt     bool   `json:"alt"`
	Origin  Origin `json:"origin"`
}

// HandleKey applies the keyboard reorder path. Arrow keys on the handle
// (or Alt+Arrow on a move control) move the block by one. Keys aimed at a
// text control are never consumed: handled is false and doc is returned as is.
func HandleKey(doc document.Document, ev KeyEvent) (document.Document, bool) {
	if ev.Origin == OriginText {
		return doc, false
	}
	if ev.Origin == OriginControl && !ev.Alt {
		return doc, false
	}
	var dir document.Direction
	switch ev.Key {
	case "ArrowUp":
		dir = document.Up
	case "ArrowDown":
		dir = document.Down
	default:
		return doc, false
	}
	if doc.IndexOf(ev.BlockID) < 0 {
		return doc, false
	}
	return doc.MoveAdjacent(ev.BlockID, dir), true
}

// Move is the click path of the move-up / move-down controls.
func Move(doc document.Document, id string, dir document.Direction) document.Document {
	return doc.MoveAdjacent(id, dir)
}
