// Package document holds the ordered block sequence of one article. Every
// operation returns a new Document; the receiver is never modified, which
// keeps autosave snapshots stable.
package document

import (
	"inkwell/api/internal/block"
)

type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// Document is an immutable, ordered sequence of blocks with unique ids.
type Document struct {
	blocks []block.Block
}

// New builds a document from blocks, dropping duplicate ids. An empty input
// yields the single empty paragraph every new article starts with.
func New(blocks ...block.Block) Document {
	seen := make(map[string]struct{}, len(blocks))
	out := make([]block.Block, 0, len(blocks))
	for _, b := range blocks {
		if _, dup := seen[b.ID]; dup || b.ID == "" {
			continue
		}
		seen[b.ID] = struct{}{}
		out = append(out, b)
	}
	if len(out) == 0 {
		out = append(out, block.New(block.TypeParagraph))
	}
	return Document{blocks: out}
}

// Blocks returns a copy of the sequence.
func (d Document) Blocks() []block.Block {
	out := make([]block.Block, len(d.blocks))
	copy(out, d.blocks)
	return out
}

func (d Document) Len() int { return len(d.blocks) }

// At returns the block at index i.
func (d Document) At(i int) (block.Block, bool) {
	if i < 0 || i >= len(d.blocks) {
		return block.Block{}, false
	}
	return d.blocks[i], true
}

// IndexOf returns the position of id, or -1.
func (d Document) IndexOf(id string) int {
	for i, b := range d.blocks {
		if b.ID == id {
			return i
		}
	}
	return -1
}

// Find returns the block with the given id.
func (d Document) Find(id string) (block.Block, bool) {
	return d.At(d.IndexOf(id))
}

// Insert places b at the optional index, appending by default. Indexes past
// either end are clamped. A block whose id is already present is rejected.
func (d Document) Insert(b block.Block, at ...int) Document {
	if b.ID == "" || d.IndexOf(b.ID) >= 0 {
		return d
	}
	index := len(d.blocks)
	if len(at) > 0 {
		index = min(max(at[0], 0), len(d.blocks))
	}
	out := make([]block.Block, 0, len(d.blocks)+1)
	out = append(out, d.blocks[:index]...)
	out = append(out, b)
	out = append(out, d.blocks[index:]...)
	return Document{blocks: out}
}

// Patch lists the block fields to replace; nil fields are kept.
type Patch struct {
	Content  *string
	Heading  *string
	ImageURL *string
	Data     block.Payload
}

// Update applies patch to the block with the given id.
func (d Document) Update(id string, patch Patch) Document {
	return d.Replace(id, func(b block.Block) block.Block {
		if patch.Content != nil {
			b.Content = *patch.Content
		}
		if patch.Heading != nil {
			b.Heading = *patch.Heading
		}
		if patch.ImageURL != nil {
			b.ImageURL = *patch.ImageURL
		}
		if patch.Data != nil && patch.Data.Kind() == b.Type {
			b.Data = patch.Data
		}
		return b
	})
}

// Replace swaps the block with the given id for fn's result. Id and type
// are preserved whatever fn returns.
func (d Document) Replace(id string, fn func(block.Block) block.Block) Document {
	i := d.IndexOf(id)
	if i < 0 {
		return d
	}
	out := d.Blocks()
	next := fn(out[i])
	next.ID, next.Type = out[i].ID, out[i].Type
	out[i] = next
	return Document{blocks: out}
}

// Delete removes the block with the given id. Removing the last remaining
// block is rejected.
func (d Document) Delete(id string) Document {
	i := d.IndexOf(id)
	if i < 0 || len(d.blocks) <= 1 {
		return d
	}
	out := make([]block.Block, 0, len(d.blocks)-1)
	out = append(out, d.blocks[:i]...)
	out = append(out, d.blocks[i+1:]...)
	return Document{blocks: out}
}

// MoveAdjacent swaps the block with its neighbour; no-op at the boundaries.
func (d Document) MoveAdjacent(id string, dir Direction) Document {
	i := d.IndexOf(id)
	if i < 0 {
		return d
	}
	j := i - 1
	if dir == Down {
		j = i + 1
	} else if dir != Up {
		return d
	}
	if j < 0 || j >= len(d.blocks) {
		return d
	}
	out := d.Blocks()
	out[i], out[j] = out[j], out[i]
	return Document{blocks: out}
}

// Reorder removes the element at from and inserts it at to, shifting the
// elements in between by one. Out-of-range indexes are a no-op.
func (d Document) Reorder(from, to int) Document {
	n := len(d.blocks)
	if from < 0 || from >= n || to < 0 || to >= n || from == to {
		return d
	}
	moved := d.blocks[from]
	out := make([]block.Block, 0, n)
	out = append(out, d.blocks[:from]...)
	out = append(out, d.blocks[from+1:]...)
	out = append(out[:to], append([]block.Block{moved}, out[to:]...)...)
	return Document{blocks: out}
}

// IDs returns the block ids in order.
func (d Document) IDs() []string {
	ids := make([]string, len(d.blocks))
	for i, b := range d.blocks {
		ids[i] = b.ID
	}
	return ids
}
