package editor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"inkwell/api/internal/article"
	"inkwell/api/internal/autosave"
	"inkwell/api/internal/document"
	"inkwell/api/internal/util"
)

// Store is everything a session needs from persistence.
type Store interface {
	autosave.Adapter
	GetArticle(ctx context.Context, id string) (article.Article, error)
	ListSections(ctx context.Context, articleID string) ([]article.Section, error)
}

type ManagerOption func(*Manager)

func WithAutosaveInterval(d time.Duration) ManagerOption {
	return func(m *Manager) { m.interval = d }
}

// OnSaved registers fn to run after every successful save. fn runs on the
// saving goroutine and should not block.
func OnSaved(fn func(SavedEvent)) ManagerOption {
	return func(m *Manager) { m.onSaved = fn }
}

// Manager owns the open sessions. There is at most one session per
// article; opening an article that is already open returns its session.
type Manager struct {
	store    Store
	uploader Uploader
	interval time.Duration
	onSaved  func(SavedEvent)
	log      zerolog.Logger

	mu        sync.Mutex
	sessions  map[string]*Session
	byArticle map[string]string
}

func NewManager(store Store, uploader Uploader, log zerolog.Logger, opts ...ManagerOption) *Manager {
	m := &Manager{
		store:     store,
		uploader:  uploader,
		interval:  autosave.DefaultInterval,
		log:       log.With().Str("component", "editor").Logger(),
		sessions:  make(map[string]*Session),
		byArticle: make(map[string]string),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Open starts a session. An empty articleID opens a new, unsaved article
// holding one empty paragraph; otherwise the article and its sections are
// loaded from the store.
func (m *Manager) Open(ctx context.Context, articleID string) (*Session, error) {
	if articleID != "" {
		m.mu.Lock()
		if id, ok := m.byArticle[articleID]; ok {
			s := m.sessions[id]
			m.mu.Unlock()
			return s, nil
		}
		m.mu.Unlock()
	}

	s := &Session{
		ID:       util.NewID("ses"),
		openedAt: time.Now().UTC(),
		doc:      document.New(),
		uploader: m.uploader,
		folder:   "articles",
	}
	s.log = m.log.With().Str("session_id", s.ID).Logger()

	opts := []autosave.Option{
		autosave.WithInterval(m.interval),
		autosave.WithLogger(s.log),
	}
	adapter := &notifyingAdapter{
		Adapter: m.store,
		notify:  m.notify,
		created: func(id string) { m.bind(id, s.ID) },
	}
	if articleID != "" {
		a, err := m.store.GetArticle(ctx, articleID)
		if err != nil {
			return nil, fmt.Errorf("load article: %w", err)
		}
		sections, err := m.store.ListSections(ctx, articleID)
		if err != nil {
			return nil, fmt.Errorf("load sections: %w", err)
		}
		s.fields = a.Fields
		s.doc = document.New(article.BlocksFromSections(sections)...)
		s.folder = "articles/" + a.ID
		opts = append(opts, autosave.WithArticleID(a.ID))
		adapter.slug = a.Slug
	}

	s.engine = autosave.New(adapter, s.snapshot, opts...)

	m.mu.Lock()
	if id, ok := m.byArticle[articleID]; ok && articleID != "" {
		existing := m.sessions[id]
		m.mu.Unlock()
		s.engine.Stop()
		return existing, nil
	}
	m.sessions[s.ID] = s
	if articleID != "" {
		m.byArticle[articleID] = s.ID
	}
	m.mu.Unlock()

	s.engine.Start()
	s.log.Info().Str("article_id", articleID).Msg("session opened")
	return s, nil
}

// Get returns an open session.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Close tears a session down: the autosave timer stops and the session is
// forgotten. Unsaved changes are not flushed.
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
		for articleID, sid := range m.byArticle {
			if sid == id {
				delete(m.byArticle, articleID)
			}
		}
	}
	m.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	s.Close()
	s.log.Info().Msg("session closed")
	return nil
}

// CloseAll closes every session; used on shutdown.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	m.mu.Unlock()
	for _, id := range ids {
		_ = m.Close(id)
	}
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// bind records the article a new session created on first save, so a
// later Open of that article finds the session.
func (m *Manager) bind(articleID, sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, open := m.sessions[sessionID]; !open {
		return
	}
	if _, ok := m.byArticle[articleID]; !ok {
		m.byArticle[articleID] = sessionID
	}
}

func (m *Manager) notify(ev SavedEvent) {
	if m.onSaved != nil {
		m.onSaved(ev)
	}
}

// notifyingAdapter reports every completed save. Calls for one engine are
// serialized by its save guard, so last and slug need no lock.
type notifyingAdapter struct {
	autosave.Adapter
	notify  func(SavedEvent)
	created func(id string)
	last    article.Article
	// slug is the one reported by the previous event, or loaded on open.
	slug string
}

func (a *notifyingAdapter) CreateArticle(ctx context.Context, f article.Fields) (article.Article, error) {
	out, err := a.Adapter.CreateArticle(ctx, f)
	if err == nil {
		a.last = out
		a.created(out.ID)
	}
	return out, err
}

func (a *notifyingAdapter) UpdateArticle(ctx context.Context, id string, f article.Fields) (article.Article, error) {
	out, err := a.Adapter.UpdateArticle(ctx, id, f)
	if err == nil {
		a.last = out
	}
	return out, err
}

func (a *notifyingAdapter) BulkUpsertSections(ctx context.Context, articleID string, sections []article.Section) error {
	if err := a.Adapter.BulkUpsertSections(ctx, articleID, sections); err != nil {
		return err
	}
	if a.last.ID == articleID {
		ev := SavedEvent{Article: a.last, Blocks: article.BlocksFromSections(sections)}
		if a.slug != a.last.Slug {
			ev.PreviousSlug = a.slug
		}
		a.slug = a.last.Slug
		a.notify(ev)
	}
	return nil
}
