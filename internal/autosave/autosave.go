// Package autosave keeps an article's in-memory edits and its persisted
// state consistent. An Engine watches a snapshot source, saves on a fixed
// interval when the snapshot changed, and handles the first save that
// creates the article and assigns its id.
package autosave

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/blake2b"

	"inkwell/api/internal/article"
	"inkwell/api/internal/block"
)

const DefaultInterval = 30 * time.Second

var ErrStopped = errors.New("autosave stopped")

type Status string

const (
	StatusIdle    Status = "idle"
	StatusUnsaved Status = "unsaved"
	StatusSaving  Status = "saving"
	StatusSaved   Status = "saved"
	StatusError   Status = "error"
)

// Adapter is the persistence boundary the engine saves through.
type Adapter interface {
	CreateArticle(ctx context.Context, f article.Fields) (article.Article, error)
	UpdateArticle(ctx context.Context, id string, f article.Fields) (article.Article, error)
	BulkUpsertSections(ctx context.Context, articleID string, sections []article.Section) error
}

// Snapshot is every editable piece of an article at one instant.
type Snapshot struct {
	Fields article.Fields `json:"fields"`
	Blocks []block.Block  `json:"blocks"`
}

// Fingerprint hashes the canonical JSON form of the snapshot. Two snapshots
// with equal fingerprints are treated as the same content.
func (s Snapshot) Fingerprint() ([32]byte, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return [32]byte{}, fmt.Errorf("encode snapshot: %w", err)
	}
	return blake2b.Sum256(raw), nil
}

// State is a point-in-time view of the engine for status displays.
type State struct {
	Status    Status    `json:"status"`
	ArticleID string    `json:"articleId,omitempty"`
	SavedAt   time.Time `json:"savedAt,omitempty"`
	Error     string    `json:"error,omitempty"`
}

type Option func(*Engine)

func WithInterval(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.interval = d
		}
	}
}

func WithLogger(log zerolog.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithArticleID starts the engine for an article that already exists.
func WithArticleID(id string) Option {
	return func(e *Engine) { e.articleID = id }
}

// WithStatusHook registers fn to be called after every status transition.
// fn may be called from the timer goroutine.
func WithStatusHook(fn func(Status)) Option {
	return func(e *Engine) { e.hook = fn }
}

// creation is the memoized first-save CreateArticle call.
type creation struct {
	done chan struct{}
	id   string
	err  error
}

type Engine struct {
	adapter  Adapter
	source   func() Snapshot
	interval time.Duration
	log      zerolog.Logger
	hook     func(Status)

	// guard holds a token while a save is in flight.
	guard chan struct{}

	mu            sync.Mutex
	status        Status
	baseline      [32]byte
	articleID     string
	creation      *creation
	// changes counts MarkChanged calls. A save compares it with the value
	// read before its snapshot to find edits the snapshot may have missed.
	changes uint64
	savedAt       time.Time
	lastErr       error
	stopped       bool

	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	startOnce sync.Once
	stopOnce  sync.Once
}

// New builds an engine over source. The snapshot at construction time is
// the baseline: it counts as already saved.
func New(adapter Adapter, source func() Snapshot, opts ...Option) *Engine {
	ctx, cancel := context.WithCancel(context.Background())
	e := &Engine{
		adapter:  adapter,
		source:   source,
		interval: DefaultInterval,
		log:      zerolog.Nop(),
		guard:    make(chan struct{}, 1),
		status:   StatusIdle,
		ctx:      ctx,
		cancel:   cancel,
	}
	for _, opt := range opts {
		opt(e)
	}
	if fp, err := e.snapshot().Fingerprint(); err == nil {
		e.baseline = fp
	}
	e.log = e.log.With().Str("component", "autosave").Logger()
	return e
}

func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// ArticleID returns the persisted identity, empty until the first save.
func (e *Engine) ArticleID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.articleID
}

func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	st := State{Status: e.status, ArticleID: e.articleID, SavedAt: e.savedAt}
	if e.lastErr != nil && e.status == StatusError {
		st.Error = e.lastErr.Error()
	}
	return st
}

// MarkChanged tells the engine an editable field may have changed. The
// snapshot is compared with the last saved one; equal snapshots leave the
// engine clean.
func (e *Engine) MarkChanged() {
	fp, err := e.snapshot().Fingerprint()
	if err != nil {
		e.log.Error().Err(err).Msg("fingerprint snapshot")
		return
	}
	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return
	}
	e.changes++
	var next Status
	switch {
	case e.status == StatusSaving:
		// settled by save once the store call returns
	case fp != e.baseline:
		next = StatusUnsaved
	case e.status == StatusUnsaved:
		next = e.cleanStatus()
	}
	e.mu.Unlock()
	if next != "" {
		e.setStatus(next)
	}
}

// cleanStatus is the status of an engine with nothing to save. Caller holds mu.
func (e *Engine) cleanStatus() Status {
	if e.savedAt.IsZero() {
		return StatusIdle
	}
	return StatusSaved
}

func (e *Engine) setStatus(s Status) {
	e.mu.Lock()
	changed := e.status != s
	e.status = s
	e.mu.Unlock()
	if changed && e.hook != nil {
		e.hook(s)
	}
}

// Start launches the interval timer. It is a no-op after the first call.
func (e *Engine) Start() {
	e.startOnce.Do(func() {
		e.wg.Add(1)
		go e.loop()
	})
}

func (e *Engine) loop() {
	defer e.wg.Done()
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()
	for {
		select {
		case <-e.ctx.Done():
			return
		case <-ticker.C:
			if err := e.AutosaveOnce(e.ctx); err != nil && !errors.Is(err, ErrStopped) {
				e.log.Warn().Err(err).Msg("autosave failed")
			}
		}
	}
}

// Stop ends the timer and waits for an in-flight save. No adapter call is
// made once Stop returns; every later call reports ErrStopped.
func (e *Engine) Stop() {
	e.stopOnce.Do(func() {
		e.mu.Lock()
		e.stopped = true
		e.mu.Unlock()
		e.cancel()
		e.wg.Wait()
		// Taking the token for good blocks every later save.
		e.guard <- struct{}{}
	})
}

func (e *Engine) isStopped() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stopped
}

// AutosaveOnce is one timer tick. It saves only when the engine is unsaved
// or in error, no save is in flight and the snapshot differs from the last
// saved one. Invalid snapshots are skipped.
func (e *Engine) AutosaveOnce(ctx context.Context) error {
	if e.isStopped() {
		return ErrStopped
	}
	if s := e.Status(); s != StatusUnsaved && s != StatusError {
		return nil
	}
	select {
	case e.guard <- struct{}{}:
	default:
		e.log.Debug().Msg("save in flight, tick dropped")
		return nil
	}
	defer e.release()
	if e.isStopped() {
		return ErrStopped
	}

	gen := e.changeCount()
	snap := e.snapshot()
	if err := article.Validate(snap.Fields); err != nil {
		e.log.Debug().Err(err).Msg("snapshot not saveable yet")
		return nil
	}
	fp, err := snap.Fingerprint()
	if err != nil {
		return err
	}
	e.mu.Lock()
	clean := fp == e.baseline
	next := e.cleanStatus()
	if e.changes != gen {
		next = StatusUnsaved
	}
	e.mu.Unlock()
	if clean {
		e.setStatus(next)
		return nil
	}
	return e.save(ctx, snap, fp, gen)
}

// SaveNow is the explicit save action. It validates first, waits for any
// in-flight save and then saves regardless of the dirty state.
func (e *Engine) SaveNow(ctx context.Context) error {
	if e.isStopped() {
		return ErrStopped
	}
	if err := article.Validate(e.snapshot().Fields); err != nil {
		return err
	}
	select {
	case e.guard <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	case <-e.ctx.Done():
		return ErrStopped
	}
	defer e.release()
	if e.isStopped() {
		return ErrStopped
	}

	gen := e.changeCount()
	snap := e.snapshot()
	if err := article.Validate(snap.Fields); err != nil {
		return err
	}
	fp, err := snap.Fingerprint()
	if err != nil {
		return err
	}
	return e.save(ctx, snap, fp, gen)
}

func (e *Engine) changeCount() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.changes
}

func (e *Engine) release() { <-e.guard }

func (e *Engine) snapshot() Snapshot {
	snap := e.source()
	snap.Fields = article.Normalize(snap.Fields)
	return snap
}

// save runs with the guard held. gen is the change count read before snap
// was taken; any MarkChanged since then leaves the engine unsaved.
func (e *Engine) save(ctx context.Context, snap Snapshot, fp [32]byte, gen uint64) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer context.AfterFunc(e.ctx, cancel)()

	e.setStatus(StatusSaving)

	start := time.Now()
	id, err := e.persist(ctx, snap)
	if err != nil {
		e.mu.Lock()
		e.lastErr = err
		e.mu.Unlock()
		e.setStatus(StatusError)
		e.log.Warn().Err(err).Str("article_id", id).Msg("save failed")
		return err
	}

	e.mu.Lock()
	e.baseline = fp
	e.savedAt = time.Now()
	e.lastErr = nil
	next := StatusSaved
	if e.changes != gen {
		next = StatusUnsaved
	}
	e.mu.Unlock()
	e.setStatus(next)
	e.log.Debug().
		Str("article_id", id).
		Int("sections", len(snap.Blocks)).
		Int64("duration_ms", time.Since(start).Milliseconds()).
		Msg("saved")
	return nil
}

func (e *Engine) persist(ctx context.Context, snap Snapshot) (string, error) {
	id, created, err := e.ensureArticle(ctx, snap.Fields)
	if err != nil {
		return "", err
	}
	if !created {
		if err := ctx.Err(); err != nil {
			return id, err
		}
		if _, err := e.adapter.UpdateArticle(ctx, id, snap.Fields); err != nil {
			return id, fmt.Errorf("update article: %w", err)
		}
	}
	if err := ctx.Err(); err != nil {
		return id, err
	}
	if err := e.adapter.BulkUpsertSections(ctx, id, article.SectionsFromBlocks(id, snap.Blocks)); err != nil {
		return id, fmt.Errorf("upsert sections: %w", err)
	}
	return id, nil
}

// ensureArticle returns the article id, creating the article on first use.
// Concurrent callers share one CreateArticle call; a failed creation is
// forgotten so the next save tries again.
func (e *Engine) ensureArticle(ctx context.Context, f article.Fields) (id string, created bool, err error) {
	e.mu.Lock()
	if existing := e.articleID; existing != "" {
		e.mu.Unlock()
		return existing, false, nil
	}
	if c := e.creation; c != nil {
		e.mu.Unlock()
		select {
		case <-c.done:
			return c.id, false, c.err
		case <-ctx.Done():
			return "", false, ctx.Err()
		}
	}
	c := &creation{done: make(chan struct{})}
	e.creation = c
	e.mu.Unlock()

	if ctxErr := ctx.Err(); ctxErr != nil {
		c.err = ctxErr
	} else if a, createErr := e.adapter.CreateArticle(ctx, f); createErr != nil {
		c.err = fmt.Errorf("create article: %w", createErr)
	} else if a.ID == "" {
		c.err = errors.New("create article: store returned no id")
	} else {
		c.id = a.ID
	}

	e.mu.Lock()
	if c.err != nil {
		e.creation = nil
	} else {
		e.articleID = c.id
	}
	e.mu.Unlock()
	close(c.done)
	if c.err == nil {
		e.log.Info().Str("article_id", c.id).Msg("article created")
	}
	return c.id, c.err == nil, c.err
}
