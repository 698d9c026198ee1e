package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"inkwell/api/internal/article"
)

const articleColumns = `id, slug, title, subtitle, status, introduction, conclusion, featured_image,
	category_ref, author_ref, tags, scheduled_at, published_at, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArticle(row rowScanner) (article.Article, error) {
	var (
		a           article.Article
		status      string
		tagsRaw     []byte
		scheduledAt sql.NullTime
		publishedAt sql.NullTime
	)
	err := row.Scan(
		&a.ID, &a.Slug, &a.Title, &a.Subtitle, &status, &a.Introduction, &a.Conclusion, &a.FeaturedImage,
		&a.CategoryRef, &a.AuthorRef, &tagsRaw, &scheduledAt, &publishedAt, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return article.Article{}, err
	}
	a.Status = article.Status(status)
	a.Tags = []string{}
	if len(tagsRaw) > 0 {
		if err := json.Unmarshal(tagsRaw, &a.Tags); err != nil {
			return article.Article{}, fmt.Errorf("decode tags: %w", err)
		}
	}
	a.ScheduledAt = nullTime(scheduledAt)
	a.PublishedAt = nullTime(publishedAt)
	return a, nil
}

func nullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	raw, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("encode tags: %w", err)
	}
	return string(raw), nil
}
