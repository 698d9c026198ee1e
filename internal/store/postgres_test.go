package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkwell/api/internal/article"
	"inkwell/api/internal/block"
)

func TestValidateSections(t *testing.T) {
	ok := []article.Section{
		{ArticleID: "art_1", OrderIndex: 0, BlockType: block.TypeHeading},
		{OrderIndex: 1, BlockType: block.TypeParagraph},
	}
	assert.NoError(t, validateSections("art_1", ok))
	assert.NoError(t, validateSections("art_1", nil))

	gap := []article.Section{{OrderIndex: 0, BlockType: block.TypeHeading}, {OrderIndex: 2, BlockType: block.TypeHeading}}
	assert.ErrorIs(t, validateSections("art_1", gap), ErrInvalidSections)

	foreign := []article.Section{{ArticleID: "art_2", OrderIndex: 0, BlockType: block.TypeHeading}}
	assert.ErrorIs(t, validateSections("art_1", foreign), ErrInvalidSections)

	untyped := []article.Section{{OrderIndex: 0}}
	assert.ErrorIs(t, validateSections("art_1", untyped), ErrInvalidSections)
}

func openTestStore(t *testing.T) *PostgresStore {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	dsn := strings.TrimSpace(os.Getenv("INKWELL_TEST_DATABASE_URL"))
	if dsn == "" {
		t.Skip("INKWELL_TEST_DATABASE_URL is not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := Open(ctx, dsn, Pool{MaxOpen: 4})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = ApplyMigrations(ctx, db, os.DirFS(migrationsDir))
	require.NoError(t, err)
	return NewPostgresStore(db)
}

func sectionsOf(articleID string, contents ...string) []article.Section {
	blocks := make([]block.Block, len(contents))
	for i, c := range contents {
		blocks[i] = block.New(block.TypeParagraph)
		blocks[i].Content = c
	}
	return article.SectionsFromBlocks(articleID, blocks)
}

func TestArticleLifecyclePostgres(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	slug := "lifecycle-" + time.Now().Format("150405.000000")
	slug = strings.ReplaceAll(slug, ".", "-")

	created, err := s.CreateArticle(ctx, article.Fields{Title: "Lifecycle", Slug: slug, Status: article.StatusDraft, Tags: []string{"go"}})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	assert.Nil(t, created.PublishedAt)
	assert.Equal(t, []string{"go"}, created.Tags)

	_, err = s.CreateArticle(ctx, article.Fields{Title: "Dup", Slug: slug, Status: article.StatusDraft})
	assert.ErrorIs(t, err, ErrSlugTaken)

	require.NoError(t, s.BulkUpsertSections(ctx, created.ID, sectionsOf(created.ID, "a", "b", "c")))
	require.NoError(t, s.BulkUpsertSections(ctx, created.ID, sectionsOf(created.ID, "c", "a")))

	sections, err := s.ListSections(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, sections, 2)
	assert.Equal(t, "c", sections[0].Content)
	assert.Equal(t, "a", sections[1].Content)
	assert.Equal(t, block.TypeParagraph, sections[1].BlockType)
	assert.Equal(t, "left", sections[1].BlockData["align"])

	f := created.Fields
	f.Status = article.StatusPublished
	updated, err := s.UpdateArticle(ctx, created.ID, f)
	require.NoError(t, err)
	require.NotNil(t, updated.PublishedAt)

	bySlug, err := s.GetArticleBySlug(ctx, slug)
	require.NoError(t, err)
	assert.Equal(t, created.ID, bySlug.ID)

	_, err = s.GetArticle(ctx, "art_missing")
	assert.True(t, errors.Is(err, sql.ErrNoRows))

	err = s.BulkUpsertSections(ctx, "art_missing", nil)
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}
