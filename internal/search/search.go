package search

import (
	"strings"
	"time"

	"inkwell/api/internal/article"
	"inkwell/api/internal/block"
	"inkwell/api/internal/render"
)

// Result is a single search hit returned to the caller.
type Result struct {
	ID          string     `json:"id"`
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	Snippet     string     `json:"snippet"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
}

// Query describes a search request.
type Query struct {
	Text   string
	Tag    string
	Limit  int
	Offset int
}

// Response is the envelope returned by the search endpoint.
type Response struct {
	Results []Result `json:"results"`
	Total   int      `json:"total"`
	Query   string   `json:"query"`
}

// Searcher can execute a full-text search.
type Searcher interface {
	Search(q Query) ([]Result, int, error)
	Healthy() bool
}

// Indexer can push articles into a search index.
type Indexer interface {
	IndexArticle(rec ArticleRecord) error
	IndexArticles(recs []ArticleRecord) error
	DeleteArticle(id string) error
}

// ArticleRecord is the data we index for a published article.
type ArticleRecord struct {
	ID          string   `json:"id"`
	Slug        string   `json:"slug"`
	Title       string   `json:"title"`
	Subtitle    string   `json:"subtitle"`
	Tags        []string `json:"tags"`
	Body        string   `json:"body"`
	Status      string   `json:"status"`
	PublishedAt int64    `json:"publishedAt"`
}

// RecordFor builds the index record of a, using the display text of its
// blocks as the body.
func RecordFor(a article.Article, blocks []block.Block) ArticleRecord {
	body := render.PlainText(render.DisplayAll(blocks))
	if intro := strings.TrimSpace(a.Introduction); intro != "" {
		body = strings.TrimSpace(intro + " " + body)
	}
	rec := ArticleRecord{
		ID:       a.ID,
		Slug:     a.Slug,
		Title:    a.Title,
		Subtitle: a.Subtitle,
		Tags:     a.Tags,
		Body:     body,
		Status:   string(a.Status),
	}
	if rec.Tags == nil {
		rec.Tags = []string{}
	}
	if a.PublishedAt != nil {
		rec.PublishedAt = a.PublishedAt.Unix()
	}
	return rec
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return 20
	}
	return min(limit, 100)
}
