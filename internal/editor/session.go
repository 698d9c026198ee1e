// Package editor keeps the server side of open editing surfaces: one
// Session per article wires the document store, the reorder controller,
// the renderer and the autosave engine together.
package editor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"inkwell/api/internal/article"
	"inkwell/api/internal/autosave"
	"inkwell/api/internal/block"
	"inkwell/api/internal/document"
	"inkwell/api/internal/render"
	"inkwell/api/internal/reorder"
	"inkwell/api/internal/upload"
)

var (
	ErrSessionNotFound = errors.New("editor session not found")
	ErrBlockNotFound   = errors.New("block not found")
	ErrUnknownType     = errors.New("unknown block type")
	ErrNotUploadable   = errors.New("block does not take uploads")
	ErrSessionClosed   = errors.New("editor session closed")
	ErrNoUploader      = errors.New("uploads are not configured")
)

// Uploader stores files for media blocks.
type Uploader interface {
	Upload(ctx context.Context, f upload.File, opts upload.Options) (upload.Result, error)
	DeleteURL(ctx context.Context, rawURL string) error
}

// SavedEvent describes content that has just reached the store.
type SavedEvent struct {
	Article article.Article
	Blocks  []block.Block
	// PreviousSlug is set when the save renamed a stored article.
	PreviousSlug string
}

// View is the client-facing state of a session.
type View struct {
	ID       string         `json:"id"`
	Autosave autosave.State `json:"autosave"`
	Fields   article.Fields `json:"fields"`
	Blocks   []block.Block  `json:"blocks"`
	OpenedAt time.Time      `json:"openedAt"`
	Dragging *DragView      `json:"dragging,omitempty"`
}

type DragView struct {
	BlockID string `json:"blockId"`
	Target  int    `json:"target"`
}

// Session is one open editing surface. Mutations are serialized by mu; the
// autosave engine reads the same state through snapshot.
type Session struct {
	ID       string
	openedAt time.Time

	mu     sync.Mutex
	doc    document.Document
	fields article.Fields
	drag   reorder.Controller
	closed bool

	engine   *autosave.Engine
	uploader Uploader
	folder   string
	log      zerolog.Logger
}

func (s *Session) snapshot() autosave.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return autosave.Snapshot{Fields: s.fields, Blocks: s.doc.Blocks()}
}

// mutate runs fn under the session lock and reports a change to the
// autosave engine when fn returns true.
func (s *Session) mutate(fn func() (bool, error)) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	changed, err := fn()
	s.mu.Unlock()
	if err != nil {
		return err
	}
	if changed {
		s.engine.MarkChanged()
	}
	return nil
}

// View returns the current state.
func (s *Session) View() View {
	st := s.engine.State()
	s.mu.Lock()
	defer s.mu.Unlock()
	v := View{
		ID:       s.ID,
		Autosave: st,
		Fields:   s.fields,
		Blocks:   s.doc.Blocks(),
		OpenedAt: s.openedAt,
	}
	if id, target, ok := s.drag.Dragging(); ok {
		v.Dragging = &DragView{BlockID: id, Target: target}
	}
	return v
}

func (s *Session) ArticleID() string { return s.engine.ArticleID() }

// PatchFields merges a JSON object into the article fields. Keys that are
// absent keep their value.
func (s *Session) PatchFields(raw json.RawMessage) error {
	return s.mutate(func() (bool, error) {
		next := s.fields
		next.Tags = append([]string(nil), s.fields.Tags...)
		if next.ScheduledAt != nil {
			at := *next.ScheduledAt
			next.ScheduledAt = &at
		}
		if err := json.Unmarshal(raw, &next); err != nil {
			return false, fmt.Errorf("decode fields: %w", err)
		}
		s.fields = next
		return true, nil
	})
}

// InsertBlock adds a default block of type t at index at, or at the end
// when at is nil.
func (s *Session) InsertBlock(t block.Type, at *int) (block.Block, error) {
	if !block.IsKnown(t) {
		return block.Block{}, fmt.Errorf("%w: %s", ErrUnknownType, t)
	}
	b := block.New(t)
	err := s.mutate(func() (bool, error) {
		if at != nil {
			s.doc = s.doc.Insert(b, *at)
		} else {
			s.doc = s.doc.Insert(b)
		}
		return true, nil
	})
	return b, err
}

// ApplyChange routes an edit form change to the block it came from.
func (s *Session) ApplyChange(blockID string, c render.Change) (block.Block, error) {
	var out block.Block
	err := s.mutate(func() (bool, error) {
		b, ok := s.doc.Find(blockID)
		if !ok {
			return false, ErrBlockNotFound
		}
		next, err := render.Apply(b, c)
		if err != nil {
			return false, err
		}
		s.doc = s.doc.Replace(blockID, func(block.Block) block.Block { return next })
		out, _ = s.doc.Find(blockID)
		return true, nil
	})
	return out, err
}

// DeleteBlock removes a block. The last block of a document stays.
func (s *Session) DeleteBlock(id string) error {
	return s.mutate(func() (bool, error) {
		if s.doc.IndexOf(id) < 0 {
			return false, ErrBlockNotFound
		}
		before := s.doc.Len()
		s.doc = s.doc.Delete(id)
		return s.doc.Len() != before, nil
	})
}

// MoveBlock is the move-up / move-down control.
func (s *Session) MoveBlock(id string, dir document.Direction) error {
	return s.mutate(func() (bool, error) {
		i := s.doc.IndexOf(id)
		if i < 0 {
			return false, ErrBlockNotFound
		}
		s.doc = reorder.Move(s.doc, id, dir)
		return s.doc.IndexOf(id) != i, nil
	})
}

func (s *Session) DragStart(id string, origin reorder.Origin) (bool, error) {
	var started bool
	err := s.mutate(func() (bool, error) {
		started = s.drag.DragStart(s.doc, id, origin)
		return false, nil
	})
	return started, err
}

func (s *Session) DragOver(pointerY float64, layout []reorder.Rect) (int, bool, error) {
	var (
		target int
		ok     bool
	)
	err := s.mutate(func() (bool, error) {
		target, ok = s.drag.DragOver(pointerY, layout)
		return false, nil
	})
	return target, ok, err
}

// DragEnd drops the dragged block at its last target.
func (s *Session) DragEnd() (bool, error) {
	var moved bool
	err := s.mutate(func() (bool, error) {
		s.doc, moved = s.drag.DragEnd(s.doc)
		return moved, nil
	})
	return moved, err
}

func (s *Session) DragCancel() error {
	return s.mutate(func() (bool, error) {
		s.drag.Cancel()
		return false, nil
	})
}

// HandleKey runs the keyboard reorder path. handled is false for keys that
// belong to text editing.
func (s *Session) HandleKey(ev reorder.KeyEvent) (bool, error) {
	var handled bool
	err := s.mutate(func() (bool, error) {
		before := s.doc.IndexOf(ev.BlockID)
		s.doc, handled = reorder.HandleKey(s.doc, ev)
		return handled && s.doc.IndexOf(ev.BlockID) != before, nil
	})
	return handled, err
}

// Save is the explicit save action.
func (s *Session) Save(ctx context.Context) error {
	if err := s.engine.SaveNow(ctx); err != nil {
		if errors.Is(err, autosave.ErrStopped) {
			return ErrSessionClosed
		}
		return err
	}
	return nil
}

// EditHTML renders every block in its edit form.
func (s *Session) EditHTML() string {
	return render.EditAll(s.snapshot().Blocks)
}

func (s *Session) Preview(device render.Device) string {
	return render.Preview(s.snapshot().Blocks, device)
}

// Upload stores f and writes its URL into the block. The block is left as
// it was when the upload fails; an object whose block vanished meanwhile
// is removed again.
func (s *Session) Upload(ctx context.Context, blockID string, f upload.File) (block.Block, error) {
	s.mu.Lock()
	b, ok := s.doc.Find(blockID)
	closed := s.closed
	s.mu.Unlock()
	switch {
	case closed:
		return block.Block{}, ErrSessionClosed
	case s.uploader == nil:
		return block.Block{}, ErrNoUploader
	case !ok:
		return block.Block{}, ErrBlockNotFound
	case !uploadable(b.Type):
		return block.Block{}, fmt.Errorf("%w: %s", ErrNotUploadable, b.Type)
	case f.ContentType != "" && !upload.Accepts(b.Type, f.ContentType):
		return block.Block{}, fmt.Errorf("%w: %s for %s", upload.ErrContentType, f.ContentType, b.Type)
	}

	res, err := s.uploader.Upload(ctx, f, upload.Options{Folder: s.folder})
	if err != nil {
		s.log.Warn().Err(err).Str("block_id", blockID).Msg("upload failed")
		return block.Block{}, err
	}

	var out block.Block
	err = s.mutate(func() (bool, error) {
		current, ok := s.doc.Find(blockID)
		if !ok {
			return false, ErrBlockNotFound
		}
		out = withUpload(current, res, f.Name)
		s.doc = s.doc.Replace(blockID, func(block.Block) block.Block { return out })
		return true, nil
	})
	if err != nil {
		if delErr := s.uploader.DeleteURL(context.WithoutCancel(ctx), res.URL); delErr != nil {
			s.log.Warn().Err(delErr).Str("url", res.URL).Msg("remove orphaned upload")
		}
		return block.Block{}, err
	}
	return out, nil
}

func uploadable(t block.Type) bool {
	switch t {
	case block.TypeImage, block.TypeGallery, block.TypeVideo, block.TypeAudio, block.TypeFile, block.TypePDF:
		return true
	}
	return false
}

func withUpload(b block.Block, res upload.Result, name string) block.Block {
	if b.Type == block.TypeImage {
		b.ImageURL = res.URL
		return b
	}
	p := block.Clone(b.Payload())
	switch d := p.(type) {
	case *block.GalleryData:
		p = d.AddImage(res.URL, "")
	case *block.VideoData:
		d.URL = res.URL
	case *block.AudioData:
		d.URL = res.URL
	case *block.PDFData:
		d.URL = res.URL
	case *block.FileData:
		d.URL = res.URL
		d.FileName = name
		d.FileSize = res.Size
	}
	return b.WithData(p)
}

// Close stops the autosave timer. A save in flight finishes first; nothing
// reaches the store afterwards.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.engine.Stop()
}
