package reorder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkwell/api/internal/block"
	"inkwell/api/internal/document"
)

func fourBlocks() (document.Document, []Rect) {
	doc := document.New(
		block.New(block.TypeParagraph),
		block.New(block.TypeHeading),
		block.New(block.TypeImage),
		block.New(block.TypeQuote),
	)
	layout := make([]Rect, doc.Len())
	for i, id := range doc.IDs() {
		layout[i] = Rect{ID: id, Top: float64(i * 100), Height: 100}
	}
	return doc, layout
}

func TestTargetIndex(t *testing.T) {
	_, layout := fourBlocks()

	assert.Equal(t, 0, TargetIndex(2, 10, layout))
	assert.Equal(t, 1, TargetIndex(2, 120, layout))
	assert.Equal(t, 2, TargetIndex(2, 260, layout), "hovering over itself")
	assert.Equal(t, 3, TargetIndex(0, 390, layout))
	assert.Equal(t, 3, TargetIndex(0, 10_000, layout))
	assert.Equal(t, 0, TargetIndex(0, -50, nil))
}

func TestDragGestureCommitsReorder(t *testing.T) {
	doc, layout := fourBlocks()
	ids := doc.IDs()

	var c Controller
	require.True(t, c.DragStart(doc, ids[1], OriginHandle))

	target, ok := c.DragOver(10, layout)
	require.True(t, ok)
	assert.Equal(t, 0, target)

	moved, changed := c.DragEnd(doc)
	require.True(t, changed)
	assert.Equal(t, []string{ids[1], ids[0], ids[2], ids[3]}, moved.IDs())

	_, _, active := c.Dragging()
	assert.False(t, active)
}

func TestDragWithoutMovementIsNoop(t *testing.T) {
	doc, _ := fourBlocks()
	var c Controller
	require.True(t, c.DragStart(doc, doc.IDs()[2], OriginHandle))
	same, changed := c.DragEnd(doc)
	assert.False(t, changed)
	assert.Equal(t, doc.IDs(), same.IDs())
}

func TestDragRefusedFromTextControl(t *testing.T) {
	doc, layout := fourBlocks()
	var c Controller
	assert.False(t, c.DragStart(doc, doc.IDs()[0], OriginText))
	_, ok := c.DragOver(300, layout)
	assert.False(t, ok)
	same, changed := c.DragEnd(doc)
	assert.False(t, changed)
	assert.Equal(t, doc.IDs(), same.IDs())
}

func TestCancelDropsGesture(t *testing.T) {
	doc, layout := fourBlocks()
	var c Controller
	require.True(t, c.DragStart(doc, doc.IDs()[0], OriginHandle))
	c.DragOver(390, layout)
	c.Cancel()
	_, changed := c.DragEnd(doc)
	assert.False(t, changed)
}

func TestKeyboardPath(t *testing.T) {
	doc, _ := fourBlocks()
	ids := doc.IDs()

	moved, handled := HandleKey(doc, KeyEvent{BlockID: ids[1], Key: "ArrowUp", Origin: OriginHandle})
	require.True(t, handled)
	assert.Equal(t, []string{ids[1], ids[0], ids[2], ids[3]}, moved.IDs())

	moved, handled = HandleKey(doc, KeyEvent{BlockID: ids[3], Key: "ArrowDown", Alt: true, Origin: OriginControl})
	assert.True(t, handled)
	assert.Equal(t, ids, moved.IDs(), "boundary is a no-op")

	_, handled = HandleKey(doc, KeyEvent{BlockID: ids[1], Key: "ArrowUp", Alt: true, Origin: OriginText})
	assert.False(t, handled, "keys typed into text controls are never consumed")

	_, handled = HandleKey(doc, KeyEvent{BlockID: ids[1], Key: "a", Origin: OriginHandle})
	assert.False(t, handled)
}

func TestMove(t *testing.T) {
	doc, _ := fourBlocks()
	ids := doc.IDs()
	assert.Equal(t, []string{ids[0], ids[2], ids[1], ids[3]}, Move(doc, ids[1], document.Down).IDs())
}
