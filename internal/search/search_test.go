package search

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	meili "github.com/meilisearch/meilisearch-go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkwell/api/internal/article"
	"inkwell/api/internal/block"
)

type fakeEngine struct {
	mu       sync.Mutex
	healthy  bool
	searchFn func(Query) ([]Result, int, error)
	indexed  []ArticleRecord
	deleted  []string
}

func (f *fakeEngine) Search(q Query) ([]Result, int, error) { return f.searchFn(q) }
func (f *fakeEngine) Healthy() bool                          { return f.healthy }

func (f *fakeEngine) IndexArticle(rec ArticleRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.indexed = append(f.indexed, rec)
	return nil
}

func (f *fakeEngine) IndexArticles(recs []ArticleRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.indexed = append(f.indexed, recs...)
	return nil
}

func (f *fakeEngine) DeleteArticle(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeSearcher struct {
	calls   int
	results []Result
	err     error
}

func (f *fakeSearcher) Search(Query) ([]Result, int, error) {
	f.calls++
	return f.results, len(f.results), f.err
}
func (f *fakeSearcher) Healthy() bool { return true }

type loaderFunc func(ctx context.Context) ([]ArticleRecord, error)

func (fn loaderFunc) LoadRecords(ctx context.Context) ([]ArticleRecord, error) { return fn(ctx) }

func TestServiceSearchPrefersHealthyPrimary(t *testing.T) {
	primary := &fakeEngine{healthy: true, searchFn: func(q Query) ([]Result, int, error) {
		return []Result{{ID: "art_1", Title: q.Text}}, 1, nil
	}}
	fallback := &fakeSearcher{}
	svc := &Service{primary: primary, fallback: fallback, log: zerolog.Nop()}

	resp := svc.Search(Query{Text: "go"})
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "go", resp.Results[0].Title)
	assert.Equal(t, 0, fallback.calls)
}

func TestServiceSearchFallsBack(t *testing.T) {
	fallback := &fakeSearcher{results: []Result{{ID: "art_2"}}}

	t.Run("primary error", func(t *testing.T) {
		primary := &fakeEngine{healthy: true, searchFn: func(Query) ([]Result, int, error) {
			return nil, 0, errors.New("boom")
		}}
		svc := &Service{primary: primary, fallback: fallback, log: zerolog.Nop()}
		resp := svc.Search(Query{Text: "go"})
		require.Len(t, resp.Results, 1)
		assert.Equal(t, "art_2", resp.Results[0].ID)
	})

	t.Run("primary unhealthy", func(t *testing.T) {
		primary := &fakeEngine{searchFn: func(Query) ([]Result, int, error) {
			t.Fatal("unhealthy primary must not be queried")
			return nil, 0, nil
		}}
		svc := &Service{primary: primary, fallback: fallback, log: zerolog.Nop()}
		assert.Equal(t, 1, svc.Search(Query{Text: "go"}).Total)
	})

	t.Run("no primary", func(t *testing.T) {
		svc := NewService(nil, nil, zerolog.Nop())
		svc.fallback = fallback
		assert.Len(t, svc.Search(Query{Text: "go"}).Results, 1)
	})
}

func TestServiceSearchNeverReturnsNilResults(t *testing.T) {
	svc := &Service{fallback: &fakeSearcher{err: errors.New("down")}, log: zerolog.Nop()}
	resp := svc.Search(Query{Text: "go"})
	assert.NotNil(t, resp.Results)
	assert.Empty(t, resp.Results)

	resp = NewService(nil, nil, zerolog.Nop()).Search(Query{Text: "go"})
	assert.NotNil(t, resp.Results)
}

func TestServiceSyncIndexesPublishedAndDropsOthers(t *testing.T) {
	primary := &fakeEngine{healthy: true}
	svc := &Service{primary: primary, log: zerolog.Nop()}

	svc.Sync(ArticleRecord{ID: "art_1", Status: "published"})
	svc.Sync(ArticleRecord{ID: "art_2", Status: "draft"})
	svc.Wait()

	require.Len(t, primary.indexed, 1)
	assert.Equal(t, "art_1", primary.indexed[0].ID)
	assert.Equal(t, []string{"art_2"}, primary.deleted)
}

func TestServiceSyncSkipsWhenPrimaryDown(t *testing.T) {
	primary := &fakeEngine{}
	svc := &Service{primary: primary, log: zerolog.Nop()}
	svc.Sync(ArticleRecord{ID: "art_1", Status: "published"})
	svc.Wait()
	assert.Empty(t, primary.indexed)
}

func TestServiceReindexAll(t *testing.T) {
	primary := &fakeEngine{healthy: true}
	svc := &Service{
		primary: primary,
		loader: loaderFunc(func(context.Context) ([]ArticleRecord, error) {
			return []ArticleRecord{{ID: "a"}, {ID: "b"}}, nil
		}),
		log: zerolog.Nop(),
	}
	n, err := svc.ReindexAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Len(t, primary.indexed, 2)

	svc.primary = &fakeEngine{}
	_, err = svc.ReindexAll(context.Background())
	assert.ErrorIs(t, err, errUnhealthy)
}

func TestBuildFTSQuery(t *testing.T) {
	data, count, args := buildFTSQuery(Query{Text: "  "})
	assert.Empty(t, data)
	assert.Empty(t, count)
	assert.Nil(t, args)

	data, count, args = buildFTSQuery(Query{Text: "go channels", Tag: "golang", Limit: 500, Offset: -4})
	assert.Equal(t, []any{"go channels", "golang"}, args)
	assert.Contains(t, count, "a.tags ? $2")
	assert.Contains(t, data, "a.status = 'published'")
	assert.Contains(t, data, "LIMIT 100 OFFSET 0")
}

func TestHitToResultPrefersFormattedValues(t *testing.T) {
	hit := meili.Hit{
		"id":          json.RawMessage(`"art_1"`),
		"slug":        json.RawMessage(`"getting-started"`),
		"title":       json.RawMessage(`"Getting started"`),
		"subtitle":    json.RawMessage(`"First steps"`),
		"publishedAt": json.RawMessage(`1700000000`),
		"_formatted":  json.RawMessage(`{"title":"<mark>Getting</mark> started","body":"…about <mark>getting</mark>…","publishedAt":1700000000}`),
	}
	r := hitToResult(hit)
	assert.Equal(t, "art_1", r.ID)
	assert.Equal(t, "getting-started", r.Slug)
	assert.Equal(t, "<mark>Getting</mark> started", r.Title)
	assert.Equal(t, "…about <mark>getting</mark>…", r.Snippet)
	require.NotNil(t, r.PublishedAt)
	assert.Equal(t, int64(1700000000), r.PublishedAt.Unix())
}

func TestHitToResultFallsBackToRawFields(t *testing.T) {
	hit := meili.Hit{
		"id":       json.RawMessage(`"art_1"`),
		"title":    json.RawMessage(`"Plain"`),
		"subtitle": json.RawMessage(`"Sub"`),
	}
	r := hitToResult(hit)
	assert.Equal(t, "Plain", r.Title)
	assert.Equal(t, "Sub", r.Snippet)
	assert.Nil(t, r.PublishedAt)
}

func TestFiltersFor(t *testing.T) {
	assert.Equal(t, []string{`status = "published"`}, filtersFor(Query{}))
	assert.Equal(t, []string{`status = "published"`, `tags = "go"`}, filtersFor(Query{Tag: " go "}))
}

func TestRecordFor(t *testing.T) {
	published := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	a := article.Article{
		ID: "art_1",
		Fields: article.Fields{
			Slug:         "getting-started",
			Title:        "Getting started",
			Status:       article.StatusPublished,
			Introduction: "Welcome.",
		},
		PublishedAt: &published,
	}
	para := block.New(block.TypeParagraph)
	para.Content = "Blocks are   the unit of content."

	rec := RecordFor(a, []block.Block{para})
	assert.Equal(t, "Welcome. Blocks are the unit of content.", rec.Body)
	assert.Equal(t, []string{}, rec.Tags)
	assert.Equal(t, "published", rec.Status)
	assert.Equal(t, published.Unix(), rec.PublishedAt)
}
