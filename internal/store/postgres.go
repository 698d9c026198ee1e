package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"inkwell/api/internal/article"
	"inkwell/api/internal/block"
	"inkwell/api/internal/util"
)

var (
	ErrSlugTaken       = errors.New("slug already in use")
	ErrInvalidSections = errors.New("sections must be numbered 0..n-1 for one article")
)

const uniqueViolation = "23505"

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// CreateArticle inserts the article row and returns it with its new id.
func (s *PostgresStore) CreateArticle(ctx context.Context, f article.Fields) (article.Article, error) {
	tags, err := encodeTags(f.Tags)
	if err != nil {
		return article.Article{}, err
	}
	query := `
		INSERT INTO articles (id, slug, title, subtitle, status, introduction, conclusion, featured_image,
			category_ref, author_ref, tags, scheduled_at, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11::jsonb, $12,
			CASE WHEN $5 = 'published' THEN NOW() END)
		RETURNING ` + articleColumns
	row := s.db.QueryRowContext(ctx, query,
		util.NewID("art"), f.Slug, f.Title, f.Subtitle, string(f.Status), f.Introduction, f.Conclusion,
		f.FeaturedImage, f.CategoryRef, f.AuthorRef, tags, f.ScheduledAt,
	)
	a, err := scanArticle(row)
	if err != nil {
		return article.Article{}, fmt.Errorf("insert article: %w", translate(err))
	}
	return a, nil
}

// UpdateArticle replaces the editable fields. published_at is set the first
// time the article is published and kept afterwards.
func (s *PostgresStore) UpdateArticle(ctx context.Context, id string, f article.Fields) (article.Article, error) {
	tags, err := encodeTags(f.Tags)
	if err != nil {
		return article.Article{}, err
	}
	query := `
		UPDATE articles SET
			slug=$2, title=$3, subtitle=$4, status=$5, introduction=$6, conclusion=$7, featured_image=$8,
			category_ref=$9, author_ref=$10, tags=$11::jsonb, scheduled_at=$12,
			published_at=CASE WHEN $5 = 'published' AND published_at IS NULL THEN NOW() ELSE published_at END,
			updated_at=NOW()
		WHERE id=$1
		RETURNING ` + articleColumns
	row := s.db.QueryRowContext(ctx, query,
		id, f.Slug, f.Title, f.Subtitle, string(f.Status), f.Introduction, f.Conclusion,
		f.FeaturedImage, f.CategoryRef, f.AuthorRef, tags, f.ScheduledAt,
	)
	a, err := scanArticle(row)
	if err != nil {
		return article.Article{}, fmt.Errorf("update article: %w", translate(err))
	}
	return a, nil
}

// BulkUpsertSections stores the full ordered section set of an article in
// one transaction. Rows are keyed by (article_id, order_index); rows past
// the new length are removed so the stored set always equals the submitted one.
func (s *PostgresStore) BulkUpsertSections(ctx context.Context, articleID string, sections []article.Section) error {
	if err := validateSections(articleID, sections); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin sections tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const upsert = `
		INSERT INTO article_sections (article_id, order_index, block_id, block_type, content, heading, image_url, block_data)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8::jsonb)
		ON CONFLICT (article_id, order_index) DO UPDATE SET
			block_id=EXCLUDED.block_id, block_type=EXCLUDED.block_type, content=EXCLUDED.content,
			heading=EXCLUDED.heading, image_url=EXCLUDED.image_url, block_data=EXCLUDED.block_data,
			updated_at=NOW()
	`
	stmt, err := tx.PrepareContext(ctx, upsert)
	if err != nil {
		return fmt.Errorf("prepare section upsert: %w", err)
	}
	defer stmt.Close()

	for _, sec := range sections {
		data := sec.BlockData
		if data == nil {
			data = map[string]any{}
		}
		encoded, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("encode section %d: %w", sec.OrderIndex, err)
		}
		if _, err := stmt.ExecContext(ctx, articleID, sec.OrderIndex, sec.BlockID, string(sec.BlockType),
			sec.Content, sec.Heading, sec.ImageURL, string(encoded)); err != nil {
			return fmt.Errorf("upsert section %d: %w", sec.OrderIndex, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM article_sections WHERE article_id=$1 AND order_index >= $2`, articleID, len(sections)); err != nil {
		return fmt.Errorf("trim sections: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE articles SET
			body_text = (
				SELECT coalesce(string_agg(btrim(heading || ' ' || content), ' ' ORDER BY order_index), '')
				FROM article_sections WHERE article_id=$1
			),
			updated_at = NOW()
		WHERE id=$1
	`, articleID)
	if err != nil {
		return fmt.Errorf("touch article: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("touch article %s: %w", articleID, sql.ErrNoRows)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit sections: %w", err)
	}
	return nil
}

func validateSections(articleID string, sections []article.Section) error {
	for i, sec := range sections {
		if sec.OrderIndex != i {
			return fmt.Errorf("section %d has order index %d: %w", i, sec.OrderIndex, ErrInvalidSections)
		}
		if sec.ArticleID != "" && sec.ArticleID != articleID {
			return fmt.Errorf("section %d belongs to %s: %w", i, sec.ArticleID, ErrInvalidSections)
		}
		if sec.BlockType == "" {
			return fmt.Errorf("section %d has no block type: %w", i, ErrInvalidSections)
		}
	}
	return nil
}

func (s *PostgresStore) GetArticle(ctx context.Context, id string) (article.Article, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+articleColumns+` FROM articles WHERE id=$1`, id)
	a, err := scanArticle(row)
	if err != nil {
		return article.Article{}, err
	}
	return a, nil
}

func (s *PostgresStore) GetArticleBySlug(ctx context.Context, slug string) (article.Article, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+articleColumns+` FROM articles WHERE slug=$1`, slug)
	a, err := scanArticle(row)
	if err != nil {
		return article.Article{}, err
	}
	return a, nil
}

// ListSections returns the sections of an article in order_index order.
func (s *PostgresStore) ListSections(ctx context.Context, articleID string) ([]article.Section, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT article_id, order_index, block_id, block_type, content, heading, image_url, block_data
		FROM article_sections
		WHERE article_id=$1
		ORDER BY order_index ASC
	`, articleID)
	if err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}
	defer rows.Close()

	items := make([]article.Section, 0)
	for rows.Next() {
		var (
			sec       article.Section
			blockType string
			dataRaw   []byte
		)
		if err := rows.Scan(&sec.ArticleID, &sec.OrderIndex, &sec.BlockID, &blockType, &sec.Content, &sec.Heading, &sec.ImageURL, &dataRaw); err != nil {
			return nil, fmt.Errorf("scan section: %w", err)
		}
		sec.BlockType = block.Type(blockType)
		sec.BlockData = map[string]any{}
		if len(dataRaw) > 0 {
			if err := json.Unmarshal(dataRaw, &sec.BlockData); err != nil {
				return nil, fmt.Errorf("decode section %d: %w", sec.OrderIndex, err)
			}
		}
		items = append(items, sec)
	}
	return items, rows.Err()
}

// ListArticles returns articles by most recent update, optionally filtered by status.
func (s *PostgresStore) ListArticles(ctx context.Context, status article.Status, limit int) ([]article.Article, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+articleColumns+`
		FROM articles
		WHERE ($1 = '' OR status = $1)
		ORDER BY updated_at DESC
		LIMIT $2
	`, string(status), limit)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	defer rows.Close()
	return collectArticles(rows)
}

// ListPublishedArticles returns published articles, newest first.
func (s *PostgresStore) ListPublishedArticles(ctx context.Context, limit int) ([]article.Article, error) {
	if limit <= 0 {
		limit = 1000
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+articleColumns+`
		FROM articles
		WHERE status='published'
		ORDER BY published_at DESC NULLS LAST
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list published articles: %w", err)
	}
	defer rows.Close()
	return collectArticles(rows)
}

func collectArticles(rows *sql.Rows) ([]article.Article, error) {
	items := make([]article.Article, 0)
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

func translate(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == "idx_articles_slug" {
		return ErrSlugTaken
	}
	return err
}
