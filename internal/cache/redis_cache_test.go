package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func setupTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	s := miniredis.RunT(t)
	c, err := NewRedisCache("redis://"+s.Addr(), time.Minute)
	if err != nil {
		t.Fatalf("failed to create redis cache: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c, s
}

func TestNewRedisCacheRejectsBadURL(t *testing.T) {
	if _, err := NewRedisCache("not a url", time.Minute); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestSetAndGetPage(t *testing.T) {
	c, _ := setupTestCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "hello-world", Page{ArticleID: "art_1", HTML: "<h1>Hello</h1>"}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	page, ok, err := c.Get(ctx, "hello-world")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !ok {
		t.Fatal("expected cache hit")
	}
	if page.HTML != "<h1>Hello</h1>" || page.ArticleID != "art_1" {
		t.Errorf("unexpected page %+v", page)
	}
	if page.RenderedAt.IsZero() {
		t.Error("expected render time to be set")
	}
}

func TestMissAndExpiry(t *testing.T) {
	c, s := setupTestCache(t)
	ctx := context.Background()

	if _, ok, err := c.Get(ctx, "nothing"); err != nil || ok {
		t.Fatalf("expected clean miss, got ok=%v err=%v", ok, err)
	}

	if err := c.Set(ctx, "short-lived", Page{HTML: "x"}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	s.FastForward(2 * time.Minute)

	if _, ok, _ := c.Get(ctx, "short-lived"); ok {
		t.Error("expected page to expire")
	}
}

func TestInvalidate(t *testing.T) {
	c, s := setupTestCache(t)
	ctx := context.Background()

	for _, slug := range []string{"old-slug", "new-slug", "other"} {
		if err := c.Set(ctx, slug, Page{HTML: slug}); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}
	if err := c.Invalidate(ctx, "old-slug", "", "new-slug"); err != nil {
		t.Fatalf("Invalidate failed: %v", err)
	}
	if s.Exists("page:old-slug") || s.Exists("page:new-slug") {
		t.Error("expected invalidated keys to be gone")
	}
	if !s.Exists("page:other") {
		t.Error("expected unrelated key to survive")
	}
	if err := c.Invalidate(ctx); err != nil {
		t.Errorf("empty invalidate failed: %v", err)
	}
}

func TestNopAlwaysMisses(t *testing.T) {
	var c Nop
	ctx := context.Background()
	_ = c.Set(ctx, "a", Page{HTML: "x"})
	if _, ok, _ := c.Get(ctx, "a"); ok {
		t.Error("Nop cache must miss")
	}
}
