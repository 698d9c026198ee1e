package search

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

type engine interface {
	Searcher
	Indexer
}

type recordLoader interface {
	LoadRecords(ctx context.Context) ([]ArticleRecord, error)
}

// Service is the facade that tries Meilisearch first and falls back to PG FTS.
type Service struct {
	primary  engine
	fallback Searcher
	loader   recordLoader
	log      zerolog.Logger
	pending  sync.WaitGroup
}

// NewService creates a search service. meili may be nil if Meilisearch is not configured.
func NewService(meili *Meili, pgfts *PgFTS, log zerolog.Logger) *Service {
	s := &Service{log: log.With().Str("component", "search").Logger()}
	if meili != nil {
		s.primary = meili
	}
	if pgfts != nil {
		s.fallback = pgfts
		s.loader = pgfts
	}
	return s
}

func (s *Service) primaryReady() bool {
	return s.primary != nil && s.primary.Healthy()
}

// Search tries Meilisearch if healthy, otherwise falls back to PG FTS.
func (s *Service) Search(q Query) Response {
	if s.primaryReady() {
		results, total, err := s.primary.Search(q)
		if err == nil {
			return Response{Results: nonNil(results), Total: total, Query: q.Text}
		}
		s.log.Warn().Err(err).Msg("meilisearch error, falling back to pgfts")
	}
	if s.fallback == nil {
		return Response{Results: []Result{}, Query: q.Text}
	}

	results, total, err := s.fallback.Search(q)
	if err != nil {
		s.log.Error().Err(err).Msg("pgfts search failed")
		return Response{Results: []Result{}, Total: 0, Query: q.Text}
	}
	return Response{Results: nonNil(results), Total: total, Query: q.Text}
}

// Sync brings the index entry of rec in line with its status: published
// articles are indexed, anything else is removed. The call returns at once.
func (s *Service) Sync(rec ArticleRecord) {
	if !s.primaryReady() {
		return
	}
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		var err error
		if rec.Status == "published" {
			err = s.primary.IndexArticle(rec)
		} else {
			err = s.primary.DeleteArticle(rec.ID)
		}
		if err != nil {
			s.log.Warn().Err(err).Str("article_id", rec.ID).Msg("sync search index")
		}
	}()
}

// Wait blocks until every pending Sync has finished.
func (s *Service) Wait() {
	s.pending.Wait()
}

// ReindexAll reads every published article from PG and pushes them to
// Meilisearch. It returns the number of records sent.
func (s *Service) ReindexAll(ctx context.Context) (int, error) {
	if !s.primaryReady() {
		return 0, errUnhealthy
	}
	if s.loader == nil {
		return 0, errors.New("search: no record source configured")
	}
	records, err := s.loader.LoadRecords(ctx)
	if err != nil {
		return 0, fmt.Errorf("reindex load: %w", err)
	}
	if err := s.primary.IndexArticles(records); err != nil {
		return 0, fmt.Errorf("reindex articles: %w", err)
	}
	return len(records), nil
}

func nonNil(r []Result) []Result {
	if r == nil {
		return []Result{}
	}
	return r
}
