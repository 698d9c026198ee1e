package export

import (
	"context"
	"fmt"
	"html/template"

	"github.com/rs/zerolog"

	"inkwell/api/internal/article"
	"inkwell/api/internal/render"
)

// DataStore defines the interface for data access
type DataStore interface {
	GetArticle(ctx context.Context, id string) (article.Article, error)
	ListSections(ctx context.Context, articleID string) ([]article.Section, error)
}

// Service provides article export functionality
type Service struct {
	store DataStore
	log   zerolog.Logger

	pdf  func(ctx context.Context, html, title string) (*Result, error)
	docx func(ctx context.Context, html, title string) (*Result, error)
}

// NewService creates a new export service
func NewService(store DataStore, log zerolog.Logger) *Service {
	return &Service{
		store: store,
		log:   log.With().Str("component", "export").Logger(),
		pdf:   exportPDF,
		docx:  exportDOCX,
	}
}

// Export generates an export in the requested format
func (s *Service) Export(ctx context.Context, req Request) (*Result, error) {
	a, err := s.store.GetArticle(ctx, req.ArticleID)
	if err != nil {
		return nil, fmt.Errorf("get article: %w", err)
	}
	sections, err := s.store.ListSections(ctx, req.ArticleID)
	if err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}

	body := render.Sanitize(render.DisplayAll(article.BlocksFromSections(sections)))
	data := TemplateData{
		Title:        a.Title,
		Subtitle:     a.Subtitle,
		Introduction: a.Introduction,
		Conclusion:   a.Conclusion,
		Author:       a.AuthorRef,
		Tags:         a.Tags,
		PublishedAt:  a.PublishedAt,
		BodyHTML:     template.HTML(body),
	}

	html, err := RenderArticleHTML(data)
	if err != nil {
		return nil, fmt.Errorf("render template: %w", err)
	}

	name := filename(a)
	s.log.Debug().Str("article_id", a.ID).Str("format", string(req.Format)).Msg("exporting article")

	switch req.Format {
	case FormatPDF:
		return s.pdf(ctx, html, name)
	case FormatDOCX:
		return s.docx(ctx, html, name)
	case FormatMarkdown:
		return exportMarkdown(data, name)
	case FormatHTML:
		return &Result{Data: []byte(html), Filename: name + ".html", MimeType: "text/html; charset=utf-8"}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, req.Format)
	}
}

func filename(a article.Article) string {
	name := a.Slug
	if name == "" {
		name = article.Slugify(a.Title)
	}
	if len(name) > 50 {
		name = name[:50]
	}
	if name == "" {
		return "article"
	}
	return name
}
