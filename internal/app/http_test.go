package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkwell/api/internal/article"
	"inkwell/api/internal/block"
	"inkwell/api/internal/config"
	"inkwell/api/internal/upload"
)

type fakeUploader struct {
	uploadFn func(context.Context, upload.File, upload.Options) (upload.Result, error)
	deleted  []string
}

func (u *fakeUploader) Upload(ctx context.Context, f upload.File, opts upload.Options) (upload.Result, error) {
	if u.uploadFn != nil {
		return u.uploadFn(ctx, f, opts)
	}
	data, err := io.ReadAll(f.Body)
	if err != nil {
		return upload.Result{}, err
	}
	return upload.Result{
		URL:         "http://media.test/inkwell-media/" + opts.Folder + "/" + f.Name,
		Path:        opts.Folder + "/" + f.Name,
		Size:        int64(len(data)),
		ContentType: f.ContentType,
	}, nil
}

func (u *fakeUploader) DeleteURL(_ context.Context, rawURL string) error {
	u.deleted = append(u.deleted, rawURL)
	return nil
}

type httpEnv struct {
	*testEnv
	uploader *fakeUploader
	handler  http.Handler
}

func newHTTPEnv(t *testing.T) *httpEnv {
	t.Helper()
	env := &testEnv{store: newFakeStore(), cache: newFakeCache(), search: &fakeSearch{}}
	uploader := &fakeUploader{}
	env.svc = New(config.Config{AutosaveInterval: time.Hour}, env.store, Deps{
		Cache:    env.cache,
		Search:   env.search,
		Uploader: uploader,
	}, zerolog.Nop())
	t.Cleanup(env.svc.Shutdown)
	return &httpEnv{
		testEnv:  env,
		uploader: uploader,
		handler:  NewHTTPServer(env.svc, "*", zerolog.Nop()).Handler(),
	}
}

func (e *httpEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	e.handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}

type errorBody struct {
	Code    string         `json:"code"`
	Error   string         `json:"error"`
	Details map[string]any `json:"details"`
}

type viewBody struct {
	ID       string        `json:"id"`
	Blocks   []block.Block `json:"blocks"`
	Autosave struct {
		Status    string `json:"status"`
		ArticleID string `json:"articleId"`
	} `json:"autosave"`
}

func TestArticleLifecycleOverHTTP(t *testing.T) {
	env := newHTTPEnv(t)

	rr := env.do(t, http.MethodPost, "/api/articles", map[string]any{
		"title":  "Edge Cases",
		"status": "published",
		"tags":   []string{"go", " "},
		"blocks": []map[string]any{{"id": "b1", "type": "paragraph", "content": "hello"}},
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	created := decode[ArticleView](t, rr)
	assert.Equal(t, "edge-cases", created.Slug)
	assert.Equal(t, []string{"go"}, created.Tags)

	rr = env.do(t, http.MethodGet, "/api/articles/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	got := decode[ArticleView](t, rr)
	require.Len(t, got.Blocks, 1)
	assert.Equal(t, "b1", got.Blocks[0].ID)

	rr = env.do(t, http.MethodPut, "/api/articles/"+created.ID+"/sections", map[string]any{
		"blocks": []map[string]any{
			{"id": "b2", "type": "heading", "content": "Title", "blockData": map[string]any{"headingLevel": "h3"}},
			{"id": "b1", "type": "paragraph", "content": "hello"},
		},
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = env.do(t, http.MethodGet, "/api/articles?status=published", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	list := decode[map[string][]article.Article](t, rr)
	assert.Len(t, list["articles"], 1)

	req := httptest.NewRequest(http.MethodGet, "/p/edge-cases", nil)
	page := httptest.NewRecorder()
	env.handler.ServeHTTP(page, req)
	require.Equal(t, http.StatusOK, page.Code)
	assert.True(t, strings.HasPrefix(page.Header().Get("Content-Type"), "text/html"))
	assert.Contains(t, page.Body.String(), "Title")
	assert.Less(t, strings.Index(page.Body.String(), "Title</h3>"), strings.Index(page.Body.String(), "hello"))
}

func TestArticleErrorsOverHTTP(t *testing.T) {
	env := newHTTPEnv(t)

	rr := env.do(t, http.MethodPost, "/api/articles", map[string]any{"title": ""})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	body := decode[errorBody](t, rr)
	assert.Equal(t, "VALIDATION_ERROR", body.Code)
	assert.Equal(t, "title", body.Details["field"])

	rr = env.do(t, http.MethodPost, "/api/articles", map[string]any{"title": "Twice"})
	require.Equal(t, http.StatusCreated, rr.Code)
	rr = env.do(t, http.MethodPost, "/api/articles", map[string]any{"title": "Twice"})
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "SLUG_TAKEN", decode[errorBody](t, rr).Code)

	rr = env.do(t, http.MethodGet, "/api/articles/art_missing", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = env.do(t, http.MethodGet, "/p/twice", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = env.do(t, http.MethodGet, "/api/articles/art_1/export?format=rtf", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "UNSUPPORTED_FORMAT", decode[errorBody](t, rr).Code)

	req := httptest.NewRequest(http.MethodPost, "/api/articles", strings.NewReader("{"))
	bad := httptest.NewRecorder()
	env.handler.ServeHTTP(bad, req)
	assert.Equal(t, http.StatusBadRequest, bad.Code)
}

func TestSearchEndpoint(t *testing.T) {
	env := newHTTPEnv(t)

	rr := env.do(t, http.MethodGet, "/api/search?q=+hello+&tag=go&limit=5", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	require.Len(t, env.search.queries, 1)
	q := env.search.queries[0]
	assert.Equal(t, "hello", q.Text)
	assert.Equal(t, "go", q.Tag)
	assert.Equal(t, 5, q.Limit)
}

func TestEditorSessionOverHTTP(t *testing.T) {
	env := newHTTPEnv(t)

	rr := env.do(t, http.MethodPost, "/api/editor/sessions", map[string]any{})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	view := decode[viewBody](t, rr)
	require.Len(t, view.Blocks, 1)
	assert.Equal(t, block.TypeParagraph, view.Blocks[0].Type)
	base := "/api/editor/sessions/" + view.ID
	first := view.Blocks[0].ID

	rr = env.do(t, http.MethodPost, base+"/blocks", map[string]any{"type": "quote"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	inserted := decode[struct {
		Block block.Block `json:"block"`
		HTML  string      `json:"html"`
	}](t, rr)
	assert.Equal(t, block.TypeQuote, inserted.Block.Type)
	assert.NotEmpty(t, inserted.HTML)

	rr = env.do(t, http.MethodPatch, base+"/blocks/"+inserted.Block.ID, map[string]any{"path": "content", "value": "Be brief."})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = env.do(t, http.MethodPost, base+"/blocks/"+inserted.Block.ID+"/move", map[string]any{"direction": "up"})
	require.Equal(t, http.StatusOK, rr.Code)
	view = decode[viewBody](t, rr)
	assert.Equal(t, []string{inserted.Block.ID, first}, []string{view.Blocks[0].ID, view.Blocks[1].ID})

	rr = env.do(t, http.MethodPost, base+"/keys", map[string]any{"blockId": inserted.Block.ID, "key": "ArrowDown", "origin": "text"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, false, decode[map[string]any](t, rr)["handled"])

	rr = env.do(t, http.MethodPost, base+"/blocks", map[string]any{"type": "hologram"})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr = env.do(t, http.MethodPost, base+"/save", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr = env.do(t, http.MethodPatch, base+"/fields", map[string]any{"title": "Brevity"})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = env.do(t, http.MethodPost, base+"/save", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	view = decode[viewBody](t, rr)
	assert.Equal(t, "saved", view.Autosave.Status)
	require.NotEmpty(t, view.Autosave.ArticleID)

	sections := env.store.sections[view.Autosave.ArticleID]
	require.Len(t, sections, 2)
	assert.Equal(t, "Be brief.", sections[0].Content)

	req := httptest.NewRequest(http.MethodGet, base+"/preview?device=mobile", nil)
	preview := httptest.NewRecorder()
	env.handler.ServeHTTP(preview, req)
	require.Equal(t, http.StatusOK, preview.Code)
	assert.Contains(t, preview.Body.String(), "375px")

	rr = env.do(t, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	rr = env.do(t, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "SESSION_NOT_FOUND", decode[errorBody](t, rr).Code)
}

func TestEditorDragOverHTTP(t *testing.T) {
	env := newHTTPEnv(t)

	rr := env.do(t, http.MethodPost, "/api/editor/sessions", nil)
	require.Equal(t, http.StatusCreated, rr.Code)
	view := decode[viewBody](t, rr)
	base := "/api/editor/sessions/" + view.ID

	ids := []string{view.Blocks[0].ID}
	for range 2 {
		rr = env.do(t, http.MethodPost, base+"/blocks", map[string]any{"type": "paragraph"})
		require.Equal(t, http.StatusCreated, rr.Code)
		ids = append(ids, decode[struct {
			Block block.Block `json:"block"`
		}](t, rr).Block.ID)
	}

	rr = env.do(t, http.MethodPost, base+"/drag/start", map[string]any{"blockId": ids[0], "origin": "handle"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, true, decode[map[string]any](t, rr)["started"])

	layout := []map[string]any{
		{"id": ids[0], "top": 0, "height": 100},
		{"id": ids[1], "top": 100, "height": 100},
		{"id": ids[2], "top": 200, "height": 100},
	}
	rr = env.do(t, http.MethodPost, base+"/drag/over", map[string]any{"pointerY": 260, "layout": layout})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, float64(2), decode[map[string]any](t, rr)["target"])

	rr = env.do(t, http.MethodPost, base+"/drag/end", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	ended := decode[struct {
		Moved   bool     `json:"moved"`
		Session viewBody `json:"session"`
	}](t, rr)
	assert.True(t, ended.Moved)
	assert.Equal(t, ids[0], ended.Session.Blocks[2].ID)
}

func TestEditorUploadOverHTTP(t *testing.T) {
	env := newHTTPEnv(t)

	rr := env.do(t, http.MethodPost, "/api/editor/sessions", nil)
	require.Equal(t, http.StatusCreated, rr.Code)
	base := "/api/editor/sessions/" + decode[viewBody](t, rr).ID

	rr = env.do(t, http.MethodPost, base+"/blocks", map[string]any{"type": "image"})
	require.Equal(t, http.StatusCreated, rr.Code)
	imageID := decode[struct {
		Block block.Block `json:"block"`
	}](t, rr).Block.ID

	send := func(contentType string) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", `form-data; name="file"; filename="cover.png"`)
		header.Set("Content-Type", contentType)
		part, err := mw.CreatePart(header)
		require.NoError(t, err)
		_, _ = part.Write([]byte("\x89PNG\r\n\x1a\nfake"))
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, base+"/blocks/"+imageID+"/upload", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		out := httptest.NewRecorder()
		env.handler.ServeHTTP(out, req)
		return out
	}

	rr = send("image/png")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	uploaded := decode[struct {
		Block block.Block `json:"block"`
	}](t, rr)
	assert.Equal(t, "http://media.test/inkwell-media/articles/cover.png", uploaded.Block.ImageURL)

	rr = send("application/zip")
	assert.Equal(t, http.StatusUnsupportedMediaType, rr.Code)

	env.uploader.uploadFn = func(context.Context, upload.File, upload.Options) (upload.Result, error) {
		return upload.Result{}, upload.ErrTooLarge
	}
	rr = send("image/png")
	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
}
