package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"inkwell/api/internal/article"
	"inkwell/api/internal/block"
	"inkwell/api/internal/cache"
	"inkwell/api/internal/config"
	"inkwell/api/internal/document"
	"inkwell/api/internal/editor"
	"inkwell/api/internal/export"
	"inkwell/api/internal/render"
	"inkwell/api/internal/search"
	"inkwell/api/internal/util"
)

type dataStore interface {
	Ping(context.Context) error
	CreateArticle(context.Context, article.Fields) (article.Article, error)
	UpdateArticle(context.Context, string, article.Fields) (article.Article, error)
	BulkUpsertSections(context.Context, string, []article.Section) error
	GetArticle(context.Context, string) (article.Article, error)
	GetArticleBySlug(context.Context, string) (article.Article, error)
	ListSections(context.Context, string) ([]article.Section, error)
	ListArticles(context.Context, article.Status, int) ([]article.Article, error)
	ListPublishedArticles(context.Context, int) ([]article.Article, error)
}

type pageCache interface {
	Get(ctx context.Context, slug string) (cache.Page, bool, error)
	Set(ctx context.Context, slug string, page cache.Page) error
	Invalidate(ctx context.Context, slugs ...string) error
}

type searcher interface {
	Search(q search.Query) search.Response
	Sync(rec search.ArticleRecord)
}

type exporter interface {
	Export(ctx context.Context, req export.Request) (*export.Result, error)
}

// Deps are the optional collaborators of the service. Nil members are
// replaced by no-op versions.
type Deps struct {
	Cache    pageCache
	Search   searcher
	Exporter exporter
	Uploader editor.Uploader
}

type Service struct {
	cfg      config.Config
	store    dataStore
	cache    pageCache
	search   searcher
	exporter exporter
	editors  *editor.Manager
	log      zerolog.Logger
}

// ArticleView is an article together with its ordered blocks.
type ArticleView struct {
	article.Article
	Blocks []block.Block `json:"blocks"`
}

func New(cfg config.Config, store dataStore, deps Deps, log zerolog.Logger) *Service {
	s := &Service{
		cfg:      cfg,
		store:    store,
		cache:    deps.Cache,
		search:   deps.Search,
		exporter: deps.Exporter,
		log:      log,
	}
	if s.cache == nil {
		s.cache = cache.Nop{}
	}
	if s.search == nil {
		s.search = nopSearch{}
	}
	s.editors = editor.NewManager(store, deps.Uploader, log,
		editor.WithAutosaveInterval(cfg.AutosaveInterval),
		editor.OnSaved(s.afterSave),
	)
	return s
}

func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// Shutdown closes every editor session.
func (s *Service) Shutdown() {
	s.editors.CloseAll()
}

func (s *Service) CreateArticle(ctx context.Context, fields article.Fields, blocks []block.Block) (ArticleView, error) {
	fields = article.Normalize(fields)
	if err := article.Validate(fields); err != nil {
		return ArticleView{}, err
	}
	a, err := s.store.CreateArticle(ctx, fields)
	if err != nil {
		return ArticleView{}, fmt.Errorf("create article: %w", err)
	}
	blocks = bodyOf(blocks)
	if err := s.store.BulkUpsertSections(ctx, a.ID, article.SectionsFromBlocks(a.ID, blocks)); err != nil {
		return ArticleView{}, fmt.Errorf("save sections: %w", err)
	}
	s.afterSave(editor.SavedEvent{Article: a, Blocks: blocks})
	return ArticleView{Article: a, Blocks: blocks}, nil
}

func (s *Service) UpdateArticle(ctx context.Context, id string, fields article.Fields) (ArticleView, error) {
	fields = article.Normalize(fields)
	if err := article.Validate(fields); err != nil {
		return ArticleView{}, err
	}
	before, err := s.store.GetArticle(ctx, id)
	if err != nil {
		return ArticleView{}, err
	}
	a, err := s.store.UpdateArticle(ctx, id, fields)
	if err != nil {
		return ArticleView{}, fmt.Errorf("update article: %w", err)
	}
	blocks, err := s.blocksOf(ctx, id)
	if err != nil {
		return ArticleView{}, err
	}
	if before.Slug != a.Slug {
		s.invalidate(before.Slug)
	}
	s.afterSave(editor.SavedEvent{Article: a, Blocks: blocks})
	return ArticleView{Article: a, Blocks: blocks}, nil
}

// ReplaceSections stores blocks as the complete body of an article.
func (s *Service) ReplaceSections(ctx context.Context, id string, blocks []block.Block) (ArticleView, error) {
	a, err := s.store.GetArticle(ctx, id)
	if err != nil {
		return ArticleView{}, err
	}
	blocks = bodyOf(blocks)
	if err := s.store.BulkUpsertSections(ctx, id, article.SectionsFromBlocks(id, blocks)); err != nil {
		return ArticleView{}, fmt.Errorf("save sections: %w", err)
	}
	s.afterSave(editor.SavedEvent{Article: a, Blocks: blocks})
	return ArticleView{Article: a, Blocks: blocks}, nil
}

// bodyOf holds a client-sent body to the editor's document rules. Blocks
// without an id get one, a repeated id keeps its first block and an empty
// body becomes one empty paragraph.
func bodyOf(blocks []block.Block) []block.Block {
	in := make([]block.Block, len(blocks))
	for i, b := range blocks {
		if b.ID == "" {
			b.ID = util.NewID("blk")
		}
		in[i] = b
	}
	return document.New(in...).Blocks()
}

func (s *Service) GetArticle(ctx context.Context, id string) (ArticleView, error) {
	a, err := s.store.GetArticle(ctx, id)
	if err != nil {
		return ArticleView{}, err
	}
	blocks, err := s.blocksOf(ctx, id)
	if err != nil {
		return ArticleView{}, err
	}
	return ArticleView{Article: a, Blocks: blocks}, nil
}

func (s *Service) ListArticles(ctx context.Context, status string, limit int) ([]article.Article, error) {
	st := article.Status(status)
	if status != "" && !st.Valid() {
		return nil, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", fmt.Sprintf("unknown status %q", status), nil)
	}
	if st == article.StatusPublished {
		return s.store.ListPublishedArticles(ctx, limit)
	}
	return s.store.ListArticles(ctx, st, limit)
}

func (s *Service) blocksOf(ctx context.Context, id string) ([]block.Block, error) {
	sections, err := s.store.ListSections(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}
	return article.BlocksFromSections(sections), nil
}

// PublicPage returns the rendered page of a published article, from the
// cache when possible. Anything not published is reported as missing.
func (s *Service) PublicPage(ctx context.Context, slug string) (string, error) {
	if page, ok, err := s.cache.Get(ctx, slug); err != nil {
		s.log.Warn().Err(err).Str("slug", slug).Msg("page cache read failed")
	} else if ok {
		return page.HTML, nil
	}

	a, err := s.store.GetArticleBySlug(ctx, slug)
	if err != nil {
		return "", err
	}
	if a.Status != article.StatusPublished {
		return "", sql.ErrNoRows
	}
	blocks, err := s.blocksOf(ctx, a.ID)
	if err != nil {
		return "", err
	}
	data := render.PageData{
		Title:         a.Title,
		Subtitle:      a.Subtitle,
		Introduction:  a.Introduction,
		Conclusion:    a.Conclusion,
		FeaturedImage: a.FeaturedImage,
		Tags:          a.Tags,
		Blocks:        blocks,
	}
	if a.PublishedAt != nil {
		data.PublishedAt = *a.PublishedAt
	}
	html, err := render.Page(data)
	if err != nil {
		return "", err
	}
	if err := s.cache.Set(ctx, slug, cache.Page{ArticleID: a.ID, HTML: html, RenderedAt: time.Now().UTC()}); err != nil {
		s.log.Warn().Err(err).Str("slug", slug).Msg("page cache write failed")
	}
	return html, nil
}

func (s *Service) Search(q search.Query) search.Response {
	return s.search.Search(q)
}

func (s *Service) Export(ctx context.Context, id string, format export.Format) (*export.Result, error) {
	if s.exporter == nil {
		return nil, domainError(http.StatusServiceUnavailable, "EXPORT_UNAVAILABLE", "Export is not configured", nil)
	}
	return s.exporter.Export(ctx, export.Request{ArticleID: id, Format: format})
}

func (s *Service) OpenEditor(ctx context.Context, articleID string) (*editor.Session, error) {
	return s.editors.Open(ctx, articleID)
}

func (s *Service) Editor(id string) (*editor.Session, error) {
	return s.editors.Get(id)
}

func (s *Service) CloseEditor(id string) error {
	return s.editors.Close(id)
}

// afterSave keeps the page cache and the search index in line with a
// saved article.
func (s *Service) afterSave(ev editor.SavedEvent) {
	if ev.PreviousSlug != "" && ev.PreviousSlug != ev.Article.Slug {
		s.invalidate(ev.PreviousSlug)
	}
	s.invalidate(ev.Article.Slug)
	s.search.Sync(search.RecordFor(ev.Article, ev.Blocks))
}

func (s *Service) invalidate(slug string) {
	if slug == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.cache.Invalidate(ctx, slug); err != nil && !errors.Is(err, context.Canceled) {
		s.log.Warn().Err(err).Str("slug", slug).Msg("page cache invalidate failed")
	}
}

type nopSearch struct{}

func (nopSearch) Search(q search.Query) search.Response {
	return search.Response{Results: []search.Result{}, Query: q.Text}
}

func (nopSearch) Sync(search.ArticleRecord) {}
