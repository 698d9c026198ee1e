package search

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
)

// PgFTS implements Searcher using PostgreSQL full-text search as a fallback.
type PgFTS struct {
	db *sql.DB
}

// NewPgFTS creates a PostgreSQL FTS searcher.
func NewPgFTS(db *sql.DB) *PgFTS {
	return &PgFTS{db: db}
}

// Healthy always returns true; if Postgres is down the whole app is down.
func (p *PgFTS) Healthy() bool {
	return true
}

// Search ranks published articles by their stored search vector using
// plainto_tsquery and ts_rank, with ts_headline over the body for snippets.
func (p *PgFTS) Search(q Query) ([]Result, int, error) {
	sqlText, countSQL, args := buildFTSQuery(q)
	if sqlText == "" {
		return nil, 0, nil
	}

	ctx := context.Background()

	var total int
	if err := p.db.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("pgfts count: %w", err)
	}

	rows, err := p.db.QueryContext(ctx, sqlText, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("pgfts query: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		var published sql.NullTime
		if err := rows.Scan(&r.ID, &r.Slug, &r.Title, &r.Snippet, &published); err != nil {
			return nil, 0, fmt.Errorf("pgfts scan: %w", err)
		}
		if published.Valid {
			t := published.Time
			r.PublishedAt = &t
		}
		results = append(results, r)
	}
	return results, total, rows.Err()
}

// buildFTSQuery returns the data and count statements for q, or empty
// strings when the query has no text.
func buildFTSQuery(q Query) (dataSQL, countSQL string, args []any) {
	if strings.TrimSpace(q.Text) == "" {
		return "", "", nil
	}

	tsQuery := "plainto_tsquery('simple', $1)"
	args = []any{q.Text}
	where := "a.status = 'published' AND a.search_vector @@ " + tsQuery
	if tag := strings.TrimSpace(q.Tag); tag != "" {
		args = append(args, tag)
		where += fmt.Sprintf(" AND a.tags ? $%d", len(args))
	}

	countSQL = "SELECT count(*) FROM articles a WHERE " + where
	dataSQL = fmt.Sprintf(`
		SELECT a.id, a.slug, a.title,
			ts_headline('simple', coalesce(nullif(a.body_text, ''), a.subtitle), %s, 'MaxFragments=1,MaxWords=30') AS snippet,
			a.published_at
		FROM articles a
		WHERE %s
		ORDER BY ts_rank(a.search_vector, %s) DESC, a.published_at DESC NULLS LAST
		LIMIT %d OFFSET %d`,
		tsQuery, where, tsQuery, normalizeLimit(q.Limit), max(q.Offset, 0))
	return dataSQL, countSQL, args
}

// LoadRecords returns every published article for full reindexing. The body
// is the text aggregated by the last section save.
func (p *PgFTS) LoadRecords(ctx context.Context) ([]ArticleRecord, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, slug, title, subtitle, tags::text, body_text, status, published_at
		FROM articles
		WHERE status = 'published'
		ORDER BY published_at DESC NULLS LAST
	`)
	if err != nil {
		return nil, fmt.Errorf("load articles: %w", err)
	}
	defer rows.Close()

	records := make([]ArticleRecord, 0)
	for rows.Next() {
		var (
			rec       ArticleRecord
			tags      string
			published sql.NullTime
		)
		if err := rows.Scan(&rec.ID, &rec.Slug, &rec.Title, &rec.Subtitle, &tags, &rec.Body, &rec.Status, &published); err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		rec.Tags = decodeTags(tags)
		if published.Valid {
			rec.PublishedAt = published.Time.Unix()
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate articles: %w", err)
	}
	return records, nil
}

func decodeTags(raw string) []string {
	tags := []string{}
	if raw == "" {
		return tags
	}
	_ = json.Unmarshal([]byte(raw), &tags)
	return tags
}
